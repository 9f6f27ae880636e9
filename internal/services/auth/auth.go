// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth implements registration, login, token refresh and the
// account operations of the authenticated user.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"codeberg.org/oliverandrich/school-auth/internal/apperror"
	"codeberg.org/oliverandrich/school-auth/internal/models"
	"codeberg.org/oliverandrich/school-auth/internal/repository"
	"codeberg.org/oliverandrich/school-auth/internal/services/password"
	"codeberg.org/oliverandrich/school-auth/internal/services/token"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// TokenTypeBearer is the token_type reported to clients.
const TokenTypeBearer = "Bearer"

// Store is the persistence the service depends on.
type Store interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	GetUserByID(ctx context.Context, id int64, scope repository.Scope) (models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	GetUserByEmailWithRoles(ctx context.Context, email string) (models.User, []string, error)
	GetRoleNames(ctx context.Context, userID int64) ([]string, error)
	UpdateUser(ctx context.Context, u models.User) (models.User, error)
	SoftDeleteUser(ctx context.Context, id int64) error
}

// Service orchestrates the credential hasher, the token service and the store.
type Service struct {
	store             Store
	hasher            *password.Hasher
	tokens            *token.Service
	passwordValidator *PasswordValidator
	dummyHash         string
}

// NewService creates the auth service. A nil validator selects
// DefaultPasswordValidator.
func NewService(store Store, hasher *password.Hasher, tokens *token.Service, validator *PasswordValidator) (*Service, error) {
	if validator == nil {
		validator = DefaultPasswordValidator()
	}

	// Compared against on logins for unknown emails so both paths cost one bcrypt run.
	dummyHash, err := hasher.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, err
	}

	return &Service{
		store:             store,
		hasher:            hasher,
		tokens:            tokens,
		passwordValidator: validator,
		dummyHash:         dummyHash,
	}, nil
}

// RegisterParams holds the parameters for user registration
type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

// TokenPair is a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Session is the result of a successful login.
type Session struct {
	User *models.Identity `json:"user"`
	TokenPair
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.Identity, error) {
	email := NormalizeEmail(params.Email)
	name := strings.TrimSpace(params.Name)

	validation := s.passwordValidator.Validate(params.Password)
	if !validation.Valid {
		return nil, validation.Err("password")
	}

	exists, err := s.store.EmailExists(ctx, email)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to check existing user: %w", err))
	}
	if exists {
		slog.Warn("register_failed", "email", email, "reason", "email_exists")
		return nil, emailExists()
	}

	passwordHash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user, err := s.store.CreateUser(ctx, models.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	})
	if err != nil {
		// Lost a race against a concurrent registration; the unique index decides.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			slog.Warn("register_failed", "email", email, "reason", "email_exists")
			return nil, emailExists()
		}
		return nil, apperror.Internal(fmt.Errorf("failed to create user: %w", err))
	}

	slog.Info("register_success", "user_id", user.ID, "email", email)

	identity := user.Identity(nil)
	return &identity, nil
}

// Login authenticates a user and returns a new token pair with the user's identity.
func (s *Service) Login(ctx context.Context, email, plaintext string) (*Session, error) {
	email = NormalizeEmail(email)

	user, roles, err := s.store.GetUserByEmailWithRoles(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_, _ = s.hasher.Verify(plaintext, s.dummyHash)
			slog.Warn("login_failed", "email", email, "reason", "user_not_found")
			return nil, invalidCredentials()
		}
		return nil, apperror.Internal(fmt.Errorf("failed to get user: %w", err))
	}

	ok, err := s.hasher.Verify(plaintext, user.PasswordHash)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !ok {
		slog.Warn("login_failed", "email", email, "reason", "invalid_password")
		return nil, invalidCredentials()
	}
	if !user.IsActive {
		slog.Warn("login_failed", "email", email, "reason", "inactive")
		return nil, invalidCredentials()
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, err
	}

	slog.Info("login_success", "user_id", user.ID, "email", email)

	identity := user.Identity(roles)
	return &Session{User: &identity, TokenPair: *pair}, nil
}

// Refresh exchanges a valid refresh token for a new token pair bound to the
// same subject. The presented refresh token stays valid until it expires.
func (s *Service) Refresh(_ context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		slog.Warn("refresh_failed", "error", err)
		return nil, apperror.Unauthorized(apperror.MsgInvalidRefreshToken).WithCause(err)
	}

	userID, err := claims.SubjectID()
	if err != nil {
		slog.Warn("refresh_failed", "error", err)
		return nil, apperror.Unauthorized(apperror.MsgInvalidRefreshToken).WithCause(err)
	}

	return s.issuePair(userID)
}

// Profile returns the identity of an active user with its roles.
func (s *Service) Profile(ctx context.Context, userID int64) (*models.Identity, error) {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.identity(ctx, user)
}

// UpdateProfileParams lists the profile fields to change. Nil fields are
// left untouched.
type UpdateProfileParams struct {
	Name  *string
	Email *string
}

// UpdateProfile changes the name or email of an active user.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, params UpdateProfileParams) (*models.Identity, error) {
	current, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := current
	if params.Name != nil {
		next.Name = strings.TrimSpace(*params.Name)
	}
	if params.Email != nil {
		next.Email = NormalizeEmail(*params.Email)
	}
	if next == current {
		return s.identity(ctx, current)
	}

	updated, err := s.store.UpdateUser(ctx, next)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, emailExists()
		case errors.Is(err, repository.ErrNotFound):
			return nil, unknownSubject()
		}
		return nil, apperror.Internal(fmt.Errorf("failed to update user: %w", err))
	}

	slog.Info("profile_updated", "user_id", userID)
	return s.identity(ctx, updated)
}

// ChangePassword changes a user's password (when they know their current password)
func (s *Service) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(currentPassword, user.PasswordHash)
	if err != nil {
		return apperror.Internal(err)
	}
	if !ok {
		slog.Warn("password_change_failed", "user_id", userID, "reason", "invalid_password")
		return invalidCredentials()
	}

	validation := s.passwordValidator.Validate(newPassword)
	if !validation.Valid {
		return validation.Err("new_password")
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperror.Internal(err)
	}

	next := user
	next.PasswordHash = passwordHash
	if _, err := s.store.UpdateUser(ctx, next); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unknownSubject()
		}
		return apperror.Internal(fmt.Errorf("failed to update password: %w", err))
	}

	slog.Info("password_changed", "user_id", userID)
	return nil
}

// DeleteAccount soft deletes an active user.
func (s *Service) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.store.SoftDeleteUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unknownSubject()
		}
		return apperror.Internal(fmt.Errorf("failed to delete user: %w", err))
	}

	slog.Info("account_deleted", "user_id", userID)
	return nil
}

func (s *Service) issuePair(userID int64) (*TokenPair, error) {
	subject := strconv.FormatInt(userID, 10)

	access, err := s.tokens.IssueAccess(subject)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	refresh, err := s.tokens.IssueRefresh(subject)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

func (s *Service) activeUser(ctx context.Context, userID int64) (models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID, repository.Active)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.User{}, unknownSubject()
		}
		return models.User{}, apperror.Internal(fmt.Errorf("failed to get user: %w", err))
	}
	return user, nil
}

func (s *Service) identity(ctx context.Context, user models.User) (*models.Identity, error) {
	roles, err := s.store.GetRoleNames(ctx, user.ID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to load roles: %w", err))
	}
	identity := user.Identity(roles)
	return &identity, nil
}

func emailExists() error {
	return apperror.Conflict(apperror.MsgEmailExists).WithCause(ErrUserExists)
}

func invalidCredentials() error {
	return apperror.Unauthorized(apperror.MsgInvalidCredentials).WithCause(ErrInvalidCredentials)
}

// unknownSubject rejects tokens whose subject no longer resolves to an active user.
func unknownSubject() error {
	return apperror.Unauthorized(apperror.MsgInvalidToken).WithCause(ErrUserNotFound)
}
