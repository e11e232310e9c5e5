package ports

import (
	"context"

	"github.com/prevencar/inspection-system/internal/core/domain"
)

// UserRepository persists user profiles.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Delete removes the user from the team list only; historical
	// inspections keep the denormalized inspector name.
	Delete(ctx context.Context, id string) error
}

// PasswordResetRepository persists single-use reset tokens.
type PasswordResetRepository interface {
	Insert(ctx context.Context, r *domain.PasswordReset) error
	FindByToken(ctx context.Context, token string) (*domain.PasswordReset, error)
	MarkUsed(ctx context.Context, token string) error
}

// SaveUserInput carries the admin-side user form. Password empty on edit
// keeps the current hash.
type SaveUserInput struct {
	ID       string
	Name     string
	Email    string
	Role     string
	Password string
}

// AuthService implements login, user administration and password reset.
type AuthService interface {
	// Login validates credentials and returns a signed token plus profile.
	// A valid credential without a profile document is a fatal
	// inconsistency (domain.ErrProfileInconsistency).
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	SaveUser(ctx context.Context, in SaveUserInput, actor Actor) (*domain.User, error)
	ListUsers(ctx context.Context, actor Actor) ([]*domain.User, error)
	DeleteUser(ctx context.Context, id string, actor Actor) error
	// RequestPasswordReset issues a reset token for the email. Unknown
	// emails return no error to avoid account enumeration.
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}
