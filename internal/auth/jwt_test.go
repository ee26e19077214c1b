package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testConfig() *JWTConfig {
	return &JWTConfig{
		Secret: []byte("test-secret-change-me"),
		Issuer: "test",
		TTL:    time.Hour,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	cfg := testConfig()

	token, err := GenerateToken(cfg, "Samuel Amenyedor")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(cfg, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Member != "Samuel Amenyedor" {
		t.Fatalf("unexpected member %q", claims.Member)
	}
}

func TestValidateTokenRejectsWrongSecretAndIssuer(t *testing.T) {
	cfg := testConfig()
	token, _ := GenerateToken(cfg, "Ammiel Yawson")

	other := testConfig()
	other.Secret = []byte("another-secret")
	if _, err := ValidateToken(other, token); err == nil {
		t.Fatal("expected signature error")
	}

	other = testConfig()
	other.Issuer = "someone-else"
	if _, err := ValidateToken(other, token); err == nil {
		t.Fatal("expected issuer error")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	cfg := testConfig()
	cfg.TTL = -time.Minute

	token, _ := GenerateToken(cfg, "Ammiel Yawson")
	if _, err := ValidateToken(cfg, token); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestDisabledConfig(t *testing.T) {
	cfg := &JWTConfig{}
	if _, err := GenerateToken(cfg, "x"); !errors.Is(err, ErrIdentityDisabled) {
		t.Fatalf("expected ErrIdentityDisabled, got %v", err)
	}
	if _, err := ValidateToken(nil, "x"); !errors.Is(err, ErrIdentityDisabled) {
		t.Fatalf("expected ErrIdentityDisabled, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc", want: "abc"},
		{header: "bearer abc", want: "abc"},
		{header: "Basic abc", wantErr: true},
		{header: "Bearer", wantErr: true},
		{header: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := BearerToken(tt.header)
		if tt.wantErr {
			if !errors.Is(err, ErrMalformedHeader) {
				t.Errorf("BearerToken(%q): expected ErrMalformedHeader, got %v", tt.header, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("BearerToken(%q) = %q, %v", tt.header, got, err)
		}
	}
}

func TestMemberContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := MemberFromContext(ctx); ok {
		t.Fatal("expected no member on empty context")
	}

	ctx = WithMember(ctx, "Daniel Amenyedor")
	if m, ok := MemberFromContext(ctx); !ok || m != "Daniel Amenyedor" {
		t.Fatalf("unexpected member %q (%v)", m, ok)
	}
}
