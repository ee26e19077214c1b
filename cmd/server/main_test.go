package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/chatql-server/internal/auth"
)

func TestTokenCommandPrintsValidToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "auth:\n  jwt_secret: cli-secret\n  jwt_issuer: chatql\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", path, "--log-level", "error", "token", "--member", "Samuel Amenyedor"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	claims, err := auth.ValidateToken(&auth.JWTConfig{Secret: []byte("cli-secret"), Issuer: "chatql"}, strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("validate printed token: %v", err)
	}
	if claims.Member != "Samuel Amenyedor" {
		t.Fatalf("unexpected member %q", claims.Member)
	}
}

func TestTokenCommandRequiresSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: error\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "token", "--member", "Samuel Amenyedor"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error without a signing secret")
	}
}
