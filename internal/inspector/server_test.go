package inspector

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amurg-ai/streamkit/boardagent"
	"github.com/amurg-ai/streamkit/hub"
	"github.com/amurg-ai/streamkit/internal/config"
)

func newTestHub(t *testing.T) *hub.Hub {
	t.Helper()
	h := hub.New(nil)
	h.Init(boardagent.DefBoardIn, boardagent.DefBoardOut, boardagent.DefVarIn, boardagent.DefVarOut)
	h.Ready()
	t.Cleanup(h.Quit)
	return h
}

func newTestAuthService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(config.InspectorConfig{JWTSecret: "test-secret-value-long-enough-here"})
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return svc
}

func TestHealthzIsUnauthenticated(t *testing.T) {
	h := newTestHub(t)
	s := NewServer(h, nil, newTestAuthService(t), config.InspectorConfig{RateLimitRPS: 100, RateLimitBurst: 100}, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthenticatedRoutesRejectMissingToken(t *testing.T) {
	h := newTestHub(t)
	s := NewServer(h, nil, newTestAuthService(t), config.InspectorConfig{RateLimitRPS: 100, RateLimitBurst: 100}, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/streams", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticatedRoutesAcceptValidToken(t *testing.T) {
	h := newTestHub(t)
	authSvc := newTestAuthService(t)
	s := NewServer(h, nil, authSvc, config.InspectorConfig{RateLimitRPS: 100, RateLimitBurst: 100}, slog.Default())

	token, err := authSvc.IssueToken("tester", "admin", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/streams", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestListStreamsReflectsHubState(t *testing.T) {
	h := newTestHub(t)
	authSvc := newTestAuthService(t)
	s := NewServer(h, nil, authSvc, config.InspectorConfig{RateLimitRPS: 100, RateLimitBurst: 100}, slog.Default())

	if _, err := h.NewAgentStream("demo"); err != nil {
		t.Fatalf("new agent stream: %v", err)
	}

	token, err := authSvc.IssueToken("tester", "admin", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/streams", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("expected non-empty stream listing body")
	}
}

func TestRateLimitRejectsBurstOverflow(t *testing.T) {
	h := newTestHub(t)
	authSvc := newTestAuthService(t)
	s := NewServer(h, nil, authSvc, config.InspectorConfig{RateLimitRPS: 1, RateLimitBurst: 1}, slog.Default())

	token, err := authSvc.IssueToken("tester", "admin", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do(); code != http.StatusOK {
		t.Fatalf("expected first request OK, got %d", code)
	}
	if code := do(); code != http.StatusTooManyRequests {
		t.Fatalf("expected second immediate request rate-limited, got %d", code)
	}
}
