// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token issues and verifies HS256 access and refresh tokens.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Type tags a token as access or refresh.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// Default lifetimes.
const (
	DefaultAccessTTL  = 900 * time.Second
	DefaultRefreshTTL = 604800 * time.Second
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrWrongTokenType = errors.New("wrong token type")
	ErrMissingSecret  = errors.New("signing secret is required")
)

// Claims is the payload of a token.
type Claims struct {
	TokenType Type `json:"token_type"`
	jwt.RegisteredClaims
}

// SubjectID parses the subject as a numeric user ID.
func (c *Claims) SubjectID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: subject %q is not a user id", ErrInvalidToken, c.Subject)
	}
	return id, nil
}

// Config configures the token service.
type Config struct {
	Secret        string
	RefreshSecret string // falls back to Secret when empty
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Service signs and verifies tokens. It is safe for concurrent use.
type Service struct {
	now        func() time.Time
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService creates a token service from cfg.
func NewService(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}

	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}

	return &Service{
		now:        time.Now,
		accessKey:  []byte(cfg.Secret),
		refreshKey: []byte(refreshSecret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

// AccessTTL returns the lifetime of access tokens.
func (s *Service) AccessTTL() time.Duration {
	return s.accessTTL
}

// IssueAccess returns a signed access token for subject.
func (s *Service) IssueAccess(subject string) (string, error) {
	return s.issue(subject, TypeAccess)
}

// IssueRefresh returns a signed refresh token for subject.
func (s *Service) IssueRefresh(subject string) (string, error) {
	return s.issue(subject, TypeRefresh)
}

// VerifyAccess validates raw as an access token.
func (s *Service) VerifyAccess(raw string) (*Claims, error) {
	return s.verify(raw, TypeAccess)
}

// VerifyRefresh validates raw as a refresh token.
func (s *Service) VerifyRefresh(raw string) (*Claims, error) {
	return s.verify(raw, TypeRefresh)
}

func (s *Service) issue(subject string, typ Type) (string, error) {
	now := s.now()
	claims := &Claims{
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl(typ))),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key(typ))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

func (s *Service) verify(raw string, want Type) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return s.key(want), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tok.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != want {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongTokenType, claims.TokenType, want)
	}
	return claims, nil
}

func (s *Service) key(typ Type) []byte {
	if typ == TypeRefresh {
		return s.refreshKey
	}
	return s.accessKey
}

func (s *Service) ttl(typ Type) time.Duration {
	if typ == TypeRefresh {
		return s.refreshTTL
	}
	return s.accessTTL
}
