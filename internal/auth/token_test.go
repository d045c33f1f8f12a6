package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(NewMemStore(), "test-secret", opts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestTokenRoundTrip(t *testing.T) {
	svc := testService(t)
	user := &User{ID: 7, Username: "operador1", Role: RoleOperator}

	token, err := svc.issueToken(user)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	ident, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if ident.UserID != 7 || ident.Username != "operador1" || ident.Role != RoleOperator {
		t.Fatalf("unexpected identity: %+v", ident)
	}
}

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	svc := testService(t, WithClock(clock), WithTokenTTL(8*time.Hour))

	token, err := svc.issueToken(&User{ID: 1, Username: "admin", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}

	now = now.Add(7 * time.Hour)
	if _, err := svc.VerifyToken(token); err != nil {
		t.Fatalf("token rejected before expiry: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := svc.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token: got %v, want ErrInvalidToken", err)
	}
}

func TestTokenTampered(t *testing.T) {
	svc := testService(t)
	token, err := svc.issueToken(&User{ID: 1, Username: "admin", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %s", token)
	}
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := svc.VerifyToken(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("tampered token: got %v, want ErrInvalidToken", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := testService(t)
	token, err := issuer.issueToken(&User{ID: 1, Username: "admin", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}

	other, err := NewService(NewMemStore(), "another-secret")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, err := other.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign token: got %v, want ErrInvalidToken", err)
	}
}

func TestTokenMalformed(t *testing.T) {
	svc := testService(t)
	for _, token := range []string{"", "   ", "abc", "a.b.c"} {
		if _, err := svc.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: got %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestNewServiceRequiresSecret(t *testing.T) {
	if _, err := NewService(NewMemStore(), "  "); err == nil {
		t.Fatal("empty secret accepted")
	}
	if _, err := NewService(nil, "secret"); err == nil {
		t.Fatal("nil store accepted")
	}
}

func TestTokenCarriesUniqueID(t *testing.T) {
	svc := testService(t)
	user := &User{ID: 3, Username: "viewer1", Role: RoleViewer}
	t1, err := svc.issueToken(user)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	t2, err := svc.issueToken(user)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	if t1 == t2 {
		t.Fatal("two tokens for the same user are identical")
	}
}
