package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iwc-recycling/accounts-api/internal/core/domain"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, err := svc.Issue("acc_42")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	id, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if id != "acc_42" {
		t.Fatalf("expected acc_42, got %q", id)
	}
}

func TestTokenService_DefaultTTL(t *testing.T) {
	svc := NewTokenService("secret", 0)
	if svc.ttl != 30*24*time.Hour {
		t.Fatalf("expected 30-day default TTL, got %v", svc.ttl)
	}
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, err := svc.issueAt("acc_42", time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("issueAt failed: %v", err)
	}
	if _, err := svc.Verify(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_Tampered(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, err := svc.Issue("acc_42")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Flip a character in the signature segment.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", token)
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := svc.Verify(tampered); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Hour)
	verifier := NewTokenService("secret-b", time.Hour)

	token, err := issuer.Issue("acc_42")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_Garbage(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	for _, bad := range []string{"", "not.a.token", "a.b"} {
		if _, err := svc.Verify(bad); !errors.Is(err, domain.ErrTokenInvalid) {
			t.Fatalf("Verify(%q): expected ErrTokenInvalid, got %v", bad, err)
		}
	}
}
