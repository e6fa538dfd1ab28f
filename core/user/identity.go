package user

import (
	"context"
	"errors"
)

// Identity provider errors, mapped to user-facing copy at the API layer.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password is too weak")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrNotSupported       = errors.New("operation not supported by this identity provider")
)

// Identity is the authentication collaborator: it owns credentials and session
// tokens; the rest of the application only ever sees verified Users.
type Identity interface {
	// SignUp registers the credentials with the provider and creates the
	// matching User record.
	SignUp(ctx context.Context, nu NewUser) (User, error)
	// Authenticate verifies the credentials and returns a signed session token
	// along with the authenticated User. Failures surface as ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (string, User, error)
	// VerifyToken checks a session token and resolves it to its User.
	VerifyToken(ctx context.Context, token string) (User, error)
	// SendPasswordReset emails a reset link to the address, best-effort.
	// Unknown addresses are not an error (no account enumeration).
	SendPasswordReset(ctx context.Context, email string) error
	// ConfirmPasswordReset consumes a reset token and sets the new password.
	// Providers that run their own hosted reset flow return ErrNotSupported.
	ConfirmPasswordReset(ctx context.Context, cp ConfirmPasswordReset) error
}
