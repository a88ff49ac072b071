package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/estately/estately/internal/domain"
	"github.com/estately/estately/internal/infrastructure/redis"
	"github.com/estately/estately/internal/notification"
	"github.com/estately/estately/internal/security/auth"
)

// CodeStore holds short-lived one-shot codes. Backed by Redis in production.
type CodeStore interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetDel(ctx context.Context, key string) (string, error)
}

// AuthService handles signup, signin, verification, and password lifecycle
type AuthService struct {
	userRepo  domain.UserRepository
	tokens    *auth.TokenManager
	codes     CodeStore
	mailer    *notification.Mailer
	verifyTTL time.Duration
	resetTTL  time.Duration
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo domain.UserRepository,
	tokens *auth.TokenManager,
	codes CodeStore,
	mailer *notification.Mailer,
	verifyTTL, resetTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		userRepo:  userRepo,
		tokens:    tokens,
		codes:     codes,
		mailer:    mailer,
		verifyTTL: verifyTTL,
		resetTTL:  resetTTL,
		logger:    logger,
	}
}

// SignInResult represents a successful signin
type SignInResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// SignUp creates a new account and mails a verification code
func (s *AuthService) SignUp(ctx context.Context, email, fullName, password string, role domain.Role) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || fullName == "" {
		return nil, fmt.Errorf("email and full name are required: %w", domain.ErrInvalid)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters: %w", domain.ErrInvalid)
	}
	if role == "" {
		role = domain.RoleTenant
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q: %w", role, domain.ErrInvalid)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	user := &domain.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	code := randomDigits(6)
	if err := s.codes.Set(ctx, verifyKey(user.ID), code, s.verifyTTL); err != nil {
		s.logger.Error("failed to store verification code", slog.String("error", err.Error()))
	} else {
		s.mailer.SendVerificationCode(user.Email, code)
	}

	s.logger.Info("user signed up",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

// SignIn authenticates a user and returns a token
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required: %w", domain.ErrInvalid)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Info("signin attempt with unknown email", slog.String("email", email))
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("signin failed with wrong password", slog.String("email", email))
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("user signed in", slog.String("user_id", user.ID))
	return &SignInResult{User: user, Token: token}, nil
}

// VerifyEmail consumes the one-shot code and marks the account verified
func (s *AuthService) VerifyEmail(ctx context.Context, userID, code string) error {
	stored, err := s.codes.GetDel(ctx, verifyKey(userID))
	if err != nil {
		if !redis.IsNil(err) {
			s.logger.Error("failed to read verification code", slog.String("error", err.Error()))
		}
		return fmt.Errorf("verification code expired or unknown: %w", domain.ErrInvalid)
	}
	if stored != code {
		return fmt.Errorf("verification code does not match: %w", domain.ErrInvalid)
	}
	return s.userRepo.SetVerified(ctx, userID)
}

// ForgotPassword issues a reset token to the account email. Unknown emails
// get the same response as known ones so the endpoint cannot be used to probe
// for accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Info("password reset requested for unknown email", slog.String("email", email))
		return nil
	}

	token := randomToken(32)
	if err := s.codes.Set(ctx, resetKey(token), user.ID, s.resetTTL); err != nil {
		s.logger.Error("failed to store reset token", slog.String("error", err.Error()))
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	s.mailer.SendPasswordReset(user.Email, token)
	return nil
}

// ResetPassword consumes a reset token and replaces the password
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", domain.ErrInvalid)
	}

	userID, err := s.codes.GetDel(ctx, resetKey(token))
	if err != nil {
		if !redis.IsNil(err) {
			s.logger.Error("failed to read reset token", slog.String("error", err.Error()))
		}
		return fmt.Errorf("reset token expired or unknown: %w", domain.ErrInvalid)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.SetPasswordHash(ctx, userID, string(hash)); err != nil {
		return err
	}

	s.logger.Info("password reset", slog.String("user_id", userID))
	return nil
}

// ChangePassword replaces the password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("new password must be at least 8 characters: %w", domain.ErrInvalid)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.SetPasswordHash(ctx, userID, string(hash)); err != nil {
		return err
	}

	s.logger.Info("user changed password", slog.String("user_id", userID))
	return nil
}

// GetProfile returns the account for the authenticated user
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func verifyKey(userID string) string { return "verify:" + userID }
func resetKey(token string) string   { return "reset:" + token }

func randomDigits(n int) string {
	const digits = "0123456789"
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i := range buf {
		buf[i] = digits[int(buf[i])%len(digits)]
	}
	return string(buf)
}

func randomToken(nBytes int) string {
	buf := make([]byte, nBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
