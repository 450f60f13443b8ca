package auth

import (
	"context"

	"github.com/divvyapp/divvy/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password,
// passkeys, OAuth, etc.) without changing the service layer code.
type Authenticator interface {
	// Register creates a new user account with the given email and credential.
	// The credential format depends on the implementation.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
