package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prevencar/inspection-system/internal/core/domain"
	"github.com/prevencar/inspection-system/internal/core/ports"
)

const resetTokenTTL = 1 * time.Hour

// AuthService implements login, team administration and password reset.
type AuthService struct {
	users     ports.UserRepository
	resets    ports.PasswordResetRepository
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	resets ports.PasswordResetRepository,
	jwtSecret string,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		resets:    resets,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Login validates credentials and returns a signed token plus the profile.
// A credential that checks out but whose profile document cannot be loaded
// again is a fatal inconsistency: the session must not start half-formed.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	profile, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("credential ok but profile missing")
		return "", nil, domain.ErrProfileInconsistency
	}

	token, err := s.generateToken(profile)
	if err != nil {
		return "", nil, err
	}
	return token, profile, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
		"exp":   s.now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// SaveUser creates or updates a team member. Admin only. An empty password on
// edit keeps the current hash.
func (s *AuthService) SaveUser(ctx context.Context, in ports.SaveUserInput, actor ports.Actor) (*domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrPermissionDenied
	}

	var problems []string
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" {
		problems = append(problems, "nome é obrigatório")
	}
	if email == "" {
		problems = append(problems, "email é obrigatório")
	}
	if !domain.ValidRole(in.Role) {
		problems = append(problems, "perfil inválido")
	}
	if in.ID == "" && in.Password == "" {
		problems = append(problems, "senha é obrigatória para novo usuário")
	}
	if len(problems) > 0 {
		return nil, &domain.ValidationError{Messages: problems}
	}

	if existing, err := s.users.FindByEmail(ctx, email); err == nil && existing.ID != in.ID {
		return nil, domain.ErrUserExists
	} else if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	now := s.now()
	if in.ID == "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user := &domain.User{
			ID:           uuid.NewString(),
			Name:         name,
			Email:        email,
			PasswordHash: string(hash),
			Role:         in.Role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		created, err := s.users.Create(ctx, user)
		if err != nil {
			return nil, err
		}
		s.logger.Info().Str("user_id", created.ID).Str("role", created.Role).Str("by", actor.Name).Msg("user created")
		return created, nil
	}

	user, err := s.users.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	user.Name = name
	user.Email = email
	user.Role = in.Role
	user.UpdatedAt = now
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Str("by", actor.Name).Msg("user updated")
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context, actor ports.Actor) ([]*domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrPermissionDenied
	}
	return s.users.List(ctx)
}

// DeleteUser removes a team member. Admin only; self-deletion is rejected so
// an installation cannot lock itself out.
func (s *AuthService) DeleteUser(ctx context.Context, id string, actor ports.Actor) error {
	if actor.Role != domain.RoleAdmin {
		return domain.ErrPermissionDenied
	}
	if id == actor.ID {
		return &domain.ValidationError{Messages: []string{"não é possível remover o próprio usuário"}}
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Str("by", actor.Name).Msg("user deleted")
	return nil
}

// RequestPasswordReset issues a single-use token for the account. Unknown
// emails return no error so the endpoint cannot be used to enumerate
// accounts; the token is empty in that case.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", nil
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	reset := &domain.PasswordReset{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: s.now().Add(resetTokenTTL),
	}
	if err := s.resets.Insert(ctx, reset); err != nil {
		return "", err
	}
	s.logger.Info().Str("user_id", user.ID).Msg("password reset requested")
	return reset.Token, nil
}

// ResetPassword consumes a reset token and stores the new password hash.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return domain.ErrResetTokenInvalid
	}

	reset, err := s.resets.FindByToken(ctx, token)
	if errors.Is(err, domain.ErrResetTokenInvalid) || errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrResetTokenInvalid
	}
	if err != nil {
		return err
	}
	if reset.Expired(s.now()) {
		return domain.ErrResetTokenInvalid
	}

	user, err := s.users.FindByID(ctx, reset.UserID)
	if err != nil {
		return domain.ErrResetTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	if err := s.resets.MarkUsed(ctx, token); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to mark reset token used")
	}
	s.logger.Info().Str("user_id", user.ID).Msg("password reset completed")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
