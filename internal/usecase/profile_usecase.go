package usecase

import (
	"context"

	"github.com/google/uuid"
)

// UpdateProfileInput defines the mutable fields of an account. Zero-value
// fields are left unchanged.
type UpdateProfileInput struct {
	UserID uuid.UUID
	Name   string
	Email  string
	Role   string
}

// ProfileUsecase defines account self-service operations for an
// authenticated user.
type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserOutput, error)
	UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error)
}
