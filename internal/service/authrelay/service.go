// Package authrelay relays merchant logins to the backend and checks the
// returned bearer token before it is forwarded on admin calls.
package authrelay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vitrine/internal/domain"
	"vitrine/internal/validation"
)

// ErrExpired is wrapped with domain.ErrUnauthorized for tokens past exp.
var ErrExpired = errors.New("token expired")

type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, domain.User, error)
	Me(ctx context.Context, token string) (domain.User, error)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is a relayed login: the token, its owner and when it stops working.
type Session struct {
	Token     string
	User      domain.User
	ExpiresAt time.Time
}

type Service struct {
	auth       Authenticator
	defaultTTL time.Duration
	now        func() time.Time
}

// New builds the relay. defaultTTL applies to tokens without an exp claim.
func New(auth Authenticator, defaultTTL time.Duration) *Service {
	if defaultTTL <= 0 {
		defaultTTL = 12 * time.Hour
	}
	return &Service{auth: auth, defaultTTL: defaultTTL, now: time.Now}
}

func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := validation.Struct(in); err != nil {
		return Session{}, err
	}
	token, user, err := s.auth.Login(ctx, in.Email, in.Password)
	if err != nil {
		return Session{}, fmt.Errorf("login: %w", err)
	}
	exp, err := s.expiry(token)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: user, ExpiresAt: exp}, nil
}

// Check rejects empty, malformed and expired tokens. The signature is left
// to the backend, which verifies every call.
func (s *Service) Check(token string) error {
	_, err := s.expiry(token)
	return err
}

func (s *Service) Me(ctx context.Context, token string) (domain.User, error) {
	if err := s.Check(token); err != nil {
		return domain.User{}, err
	}
	return s.auth.Me(ctx, token)
}

func (s *Service) expiry(token string) (time.Time, error) {
	if strings.TrimSpace(token) == "" {
		return time.Time{}, domain.ErrUnauthorized
	}
	exp, ok, err := TokenExpiry(token)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	now := s.now()
	if !ok {
		return now.Add(s.defaultTTL), nil
	}
	if !exp.After(now) {
		return time.Time{}, fmt.Errorf("%w: %w", domain.ErrUnauthorized, ErrExpired)
	}
	return exp, nil
}

// TokenExpiry reads the exp claim without verifying the signature.
func TokenExpiry(token string) (time.Time, bool, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false, fmt.Errorf("parse token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read exp: %w", err)
	}
	if exp == nil {
		return time.Time{}, false, nil
	}
	return exp.Time, true, nil
}
