package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"mavi-fit-game/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	m, err := NewTokenManager("secret", 0)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	m.WithClock(func() time.Time { return now })

	actor := domain.Actor{UserID: "u1", Role: domain.RoleStoreManager, StoreCode: "IST01"}
	token, expires, err := m.Issue(actor)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !expires.Equal(now.Add(DefaultTokenTTL)) {
		t.Fatalf("unexpected expiry %v", expires)
	}
	got, err := m.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != actor {
		t.Fatalf("expected %+v, got %+v", actor, got)
	}
}

func TestTokenRejected(t *testing.T) {
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	m, _ := NewTokenManager("secret", time.Hour)
	m.WithClock(func() time.Time { return now })
	token, _, _ := m.Issue(domain.Actor{UserID: "u1", Role: domain.RoleEmployee})

	other, _ := NewTokenManager("other", time.Hour)
	other.WithClock(func() time.Time { return now })
	if _, err := other.Parse(token); err != ErrInvalidToken {
		t.Fatalf("expected signature rejection, got %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := m.Parse(token); err != ErrInvalidToken {
		t.Fatalf("expected expiry rejection, got %v", err)
	}

	if _, err := m.Parse("not.a.token"); err != ErrInvalidToken {
		t.Fatalf("expected garbage rejection, got %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: domain.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "x", Issuer: issuer}})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := m.Parse(unsigned); err != ErrInvalidToken {
		t.Fatalf("expected alg none rejection, got %v", err)
	}
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	if _, err := NewTokenManager("", time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestHasher(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	hash, err := h.Hash("secret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if strings.Contains(hash, "secret-pass") {
		t.Fatalf("hash leaks password")
	}
	if err := h.Compare(hash, "secret-pass"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := h.Compare(hash, "wrong"); err == nil {
		t.Fatalf("expected mismatch")
	}
	if NewHasher(0).Cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost")
	}
}
