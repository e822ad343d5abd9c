package storage

import "context"

// StorageService defines the interface for evidence file storage.
type StorageService interface {
	// UploadFile uploads a single local file into the given folder and
	// returns its public URL.
	UploadFile(ctx context.Context, localFilePath, destFolder string) (string, error)
	// DeleteFile removes an uploaded file given its public ID.
	DeleteFile(ctx context.Context, publicID string) error
	// UploadEvidence uploads the problem-report images for a booking and
	// returns their remote URLs, in input order.
	UploadEvidence(ctx context.Context, bookingID string, localFilePaths []string) ([]string, error)
}
