package inspector

import (
	"context"
	"testing"
	"time"

	"github.com/amurg-ai/streamkit/internal/config"
)

func TestIssueAndValidateHMACToken(t *testing.T) {
	svc, err := NewService(config.InspectorConfig{JWTSecret: "a-very-long-test-secret-value-123"})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	token, err := svc.IssueToken("user-1", "admin", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	id, err := svc.ValidateToken(context.Background(), token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if id.Subject != "user-1" || id.Role != "admin" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc, err := NewService(config.InspectorConfig{JWTSecret: "a-very-long-test-secret-value-123"})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	token, err := svc.IssueToken("user-1", "viewer", -time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := svc.ValidateToken(context.Background(), token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestBootstrapTokenAuth(t *testing.T) {
	hash, err := HashBootstrapToken("letmein")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	svc, err := NewService(config.InspectorConfig{BootstrapTokenHash: hash})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	id, err := svc.ValidateToken(context.Background(), "letmein")
	if err != nil {
		t.Fatalf("validate bootstrap token: %v", err)
	}
	if id.Role != "admin" {
		t.Fatalf("expected admin role, got %q", id.Role)
	}

	if _, err := svc.ValidateToken(context.Background(), "wrong"); err == nil {
		t.Fatalf("expected wrong bootstrap token rejected")
	}
}

func TestValidateTokenWithNoSecretRejectsEverything(t *testing.T) {
	svc, err := NewService(config.InspectorConfig{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.ValidateToken(context.Background(), "anything"); err == nil {
		t.Fatalf("expected unauthorized with no secret configured")
	}
}
