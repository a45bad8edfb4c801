package jwt

import (
	"testing"
	"time"

	"hospital-records/config"
)

func newTestService(secret string, access time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{Secret: secret, AccessExpiry: access, RefreshExpiry: time.Hour})
}

func TestGenerateAndValidate(t *testing.T) {
	s := newTestService("secret", time.Minute)

	token, tokenID, err := s.GenerateAccessToken("alice", "patient")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	claims, err := s.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Username != "alice" || claims.Role != "patient" || claims.TokenType != AccessToken || claims.Issuer != Issuer {
		t.Errorf("claims = %+v", claims)
	}
	if claims.TokenID != tokenID || tokenID == "" {
		t.Errorf("token id = %q, returned %q", claims.TokenID, tokenID)
	}

	refresh, refreshID, err := s.GenerateRefreshToken("alice", "patient")
	if err != nil {
		t.Fatal(err)
	}
	if refreshID == tokenID {
		t.Error("token ids should be unique")
	}
	rc, err := s.ValidateToken(refresh)
	if err != nil || rc.TokenType != RefreshToken {
		t.Errorf("refresh claims = %+v, %v", rc, err)
	}
}

func TestValidateRejectsForeignAndExpiredTokens(t *testing.T) {
	s := newTestService("secret", time.Minute)
	other := newTestService("other-secret", time.Minute)

	token, _, err := other.GenerateAccessToken("mallory", "admin")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.ValidateToken(token); err == nil {
		t.Error("token signed with another secret accepted")
	}

	expired := newTestService("secret", -time.Minute)
	token, _, err = expired.GenerateAccessToken("alice", "patient")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.ValidateToken(token); err == nil {
		t.Error("expired token accepted")
	}

	if _, err := s.ValidateToken("not.a.token"); err == nil {
		t.Error("garbage accepted")
	}
}
