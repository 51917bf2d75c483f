package auth

import (
	"testing"
	"time"

	"creator-platform/internal/config"
)

func TestIssueAndVerifyAccessToken(t *testing.T) {
	m, err := NewManager(config.AuthConfig{
		JWTSecret:       "secret",
		JWTIssuer:       "issuer",
		JWTAudience:     "aud",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	now := time.Unix(1700000000, 0).UTC()
	pair, err := m.IssuePair(now, "user-1", "creator")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected token strings")
	}

	claims, err := m.Verify(pair.AccessToken, TokenTypeAccess, now.Add(1*time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != "creator" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsWrongTokenType(t *testing.T) {
	m, _ := NewManager(config.AuthConfig{JWTSecret: "secret", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})
	p, err := m.IssuePair(time.Now(), "u", "fan")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(p.RefreshToken, TokenTypeAccess, time.Now()); err == nil {
		t.Fatalf("expected token_type mismatch")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m, _ := NewManager(config.AuthConfig{JWTSecret: "secret", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})
	now := time.Unix(1700000000, 0).UTC()
	p, err := m.IssuePair(now, "u", "fan")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(p.AccessToken, TokenTypeAccess, now.Add(2*time.Hour)); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestVerifyUsesInjectedClockNotWallClock(t *testing.T) {
	m, _ := NewManager(config.AuthConfig{JWTSecret: "secret", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})

	// Issued far in the past relative to the wall clock; only the injected
	// verification time decides expiry.
	issued := time.Unix(1500000000, 0).UTC()
	p, err := m.IssuePair(issued, "u", "fan")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(p.AccessToken, TokenTypeAccess, issued.Add(30*time.Second)); err != nil {
		t.Fatalf("verify within ttl: %v", err)
	}
	if _, err := m.Verify(p.AccessToken, TokenTypeAccess, issued.Add(2*time.Minute)); err == nil {
		t.Fatalf("expected expiry at injected time")
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	issuerA, _ := NewManager(config.AuthConfig{JWTSecret: "secret", JWTIssuer: "a", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})
	issuerB, _ := NewManager(config.AuthConfig{JWTSecret: "secret", JWTIssuer: "b", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})

	now := time.Now()
	p, err := issuerA.IssuePair(now, "u", "fan")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := issuerB.Verify(p.AccessToken, TokenTypeAccess, now); err == nil {
		t.Fatalf("expected issuer mismatch")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	m1, _ := NewManager(config.AuthConfig{JWTSecret: "secret-a", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})
	m2, _ := NewManager(config.AuthConfig{JWTSecret: "secret-b", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})

	p, err := m1.IssuePair(time.Now(), "u", "fan")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m2.Verify(p.AccessToken, TokenTypeAccess, time.Now()); err == nil {
		t.Fatalf("expected signature error")
	}
}
