package domain

import "time"

// Roles known to the system. Role gates nearly every operation.
const (
	RoleAdmin       = "admin"
	RoleFinanceiro  = "financeiro"
	RoleVistoriador = "vistoriador"
)

// ValidRole reports whether r is one of the three known roles.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleFinanceiro || r == RoleVistoriador
}

// CanManageFinance reports whether the role may operate on closures, bulk
// financial updates and the catalog.
func CanManageFinance(role string) bool {
	return role == RoleAdmin || role == RoleFinanceiro
}

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         string    `json:"role" bson:"role"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// PasswordReset is a single-use token allowing a user to set a new password.
type PasswordReset struct {
	Token     string    `json:"token" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Email     string    `json:"email" bson:"email"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	UsedAt    time.Time `json:"used_at,omitempty" bson:"used_at,omitempty"`
}

// Expired reports whether the token can no longer be consumed.
func (p *PasswordReset) Expired(now time.Time) bool {
	return !p.UsedAt.IsZero() || now.After(p.ExpiresAt)
}
