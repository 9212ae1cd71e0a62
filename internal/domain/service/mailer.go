package service

import "context"

// Mailer defines the outbound mail collaborator used by the password reset
// flow. Delivery is fire-and-forget from the caller's point of view: the flow
// logs failures but never surfaces them to the requester.
type Mailer interface {
	// SendPasswordResetEmail dispatches a reset link carrying the raw token
	// to the given address.
	SendPasswordResetEmail(ctx context.Context, email, token string) error
}
