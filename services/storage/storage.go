package storage

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// StorageServiceImpl implements StorageService backed by Cloudinary.
type StorageServiceImpl struct {
	cld       *cloudinary.Cloudinary
	cloudName string
}

// NewStorageService creates a new StorageServiceImpl instance.
func NewStorageService(cld *cloudinary.Cloudinary, cloudName string) StorageService {
	return &StorageServiceImpl{
		cld:       cld,
		cloudName: cloudName,
	}
}

// UploadFile uploads a file to Cloudinary into the specified folder and
// returns its public URL.
func (s *StorageServiceImpl) UploadFile(ctx context.Context, localFilePath, destFolder string) (string, error) {
	uploadParams := uploader.UploadParams{
		Folder: destFolder,
	}
	result, err := s.cld.Upload.Upload(ctx, localFilePath, uploadParams)
	if err != nil {
		return "", fmt.Errorf("StorageServiceImpl: failed to upload file: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("StorageServiceImpl: no URL returned for upload")
	}
	return result.SecureURL, nil
}

// DeleteFile deletes a file from Cloudinary given its public ID.
func (s *StorageServiceImpl) DeleteFile(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("StorageServiceImpl: failed to delete file: %w", err)
	}
	return nil
}

// UploadEvidence uploads the problem-report images for a booking. Uploads
// are sequential; on failure the already uploaded URLs are discarded and the
// error is returned so the caller can retry the whole submission. Nothing is
// written to the booking record until every upload has succeeded.
func (s *StorageServiceImpl) UploadEvidence(ctx context.Context, bookingID string, localFilePaths []string) ([]string, error) {
	folder := fmt.Sprintf("problem_reports/%s", bookingID)
	urls := make([]string, 0, len(localFilePaths))
	for _, path := range localFilePaths {
		url, err := s.UploadFile(ctx, path, folder)
		if err != nil {
			return nil, fmt.Errorf("failed to upload evidence image %q: %w", path, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}
