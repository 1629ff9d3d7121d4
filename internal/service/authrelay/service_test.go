package authrelay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vitrine/internal/domain"
)

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

type stubAuth struct {
	token string
	err   error
	email string
}

func (s *stubAuth) Login(_ context.Context, email, _ string) (string, domain.User, error) {
	s.email = email
	return s.token, domain.User{ID: "u1", Email: email, StoreSlug: "pizzaria"}, s.err
}

func (s *stubAuth) Me(context.Context, string) (domain.User, error) {
	return domain.User{ID: "u1"}, nil
}

func newService(auth Authenticator) *Service {
	s := New(auth, time.Hour)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestLoginReturnsTokenExpiry(t *testing.T) {
	exp := fixedNow.Add(3 * time.Hour)
	auth := &stubAuth{token: signed(t, jwt.MapClaims{"sub": "u1", "exp": exp.Unix()})}
	svc := newService(auth)

	sess, err := svc.Login(context.Background(), LoginInput{Email: " Owner@Pizzaria.com ", Password: "secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !sess.ExpiresAt.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, sess.ExpiresAt)
	}
	if auth.email != "owner@pizzaria.com" {
		t.Fatalf("email not normalised: %q", auth.email)
	}
}

func TestLoginWithoutExpUsesDefault(t *testing.T) {
	svc := newService(&stubAuth{token: signed(t, jwt.MapClaims{"sub": "u1"})})
	sess, err := svc.Login(context.Background(), LoginInput{Email: "a@b.co", Password: "x"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !sess.ExpiresAt.Equal(fixedNow.Add(time.Hour)) {
		t.Fatalf("unexpected default expiry %v", sess.ExpiresAt)
	}
}

func TestLoginValidation(t *testing.T) {
	svc := newService(&stubAuth{})
	_, err := svc.Login(context.Background(), LoginInput{Email: "not-an-email", Password: "x"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "email" {
		t.Fatalf("expected email validation error, got %v", err)
	}
}

func TestLoginBackendRejection(t *testing.T) {
	svc := newService(&stubAuth{err: domain.ErrUnauthorized})
	if _, err := svc.Login(context.Background(), LoginInput{Email: "a@b.co", Password: "x"}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestCheck(t *testing.T) {
	svc := newService(&stubAuth{})
	live := signed(t, jwt.MapClaims{"exp": fixedNow.Add(time.Minute).Unix()})
	expired := signed(t, jwt.MapClaims{"exp": fixedNow.Add(-time.Minute).Unix()})

	if err := svc.Check(live); err != nil {
		t.Fatalf("live token rejected: %v", err)
	}
	err := svc.Check(expired)
	if !errors.Is(err, domain.ErrUnauthorized) || !errors.Is(err, ErrExpired) {
		t.Fatalf("expected expired unauthorized, got %v", err)
	}
	if err := svc.Check("garbage"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected malformed token to be unauthorized, got %v", err)
	}
	if err := svc.Check(""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected empty token to be unauthorized, got %v", err)
	}
}
