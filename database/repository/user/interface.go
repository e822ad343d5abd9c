package userRepo

import (
	"context"
	"errors"

	"settisfy/models"
)

var ErrNotFound = errors.New("user not found")

// UserRepository defines methods for user data access. The booking lifecycle
// only reads user records; account management lives elsewhere.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
}
