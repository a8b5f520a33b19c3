package inspector

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/amurg-ai/streamkit/hub"
	"github.com/amurg-ai/streamkit/internal/config"
	"github.com/amurg-ai/streamkit/internal/store"
	"github.com/amurg-ai/streamkit/observer"
)

// Server is the inspector's HTTP surface: a read-mostly view over a
// single Hub (stream/agent listing, config specs) plus a live event feed
// over SSE and websocket. Grounded on the teacher's api.Server, trimmed
// to the observation-only scope this runtime needs (no sessions, no
// multi-tenant org model).
type Server struct {
	hub          *hub.Hub
	store        store.Store // optional; pinged by /readyz when set
	authProvider Provider
	logger       *slog.Logger
	mux          *chi.Mux
	rl           *limiterSet
	startTime    time.Time
}

// NewServer builds the inspector's handler tree. st may be nil when the
// host runs without persistence.
func NewServer(h *hub.Hub, st store.Store, authProvider Provider, cfg config.InspectorConfig, logger *slog.Logger) *Server {
	s := &Server{
		hub:          h,
		store:        st,
		authProvider: authProvider,
		logger:       logger.With("component", "inspector"),
		rl:           newLimiterSet(cfg.RateLimitRPS, cfg.RateLimitBurst),
		startTime:    time.Now(),
	}

	mux := chi.NewRouter()
	mux.Use(chimw.Recoverer)
	mux.Use(chimw.RealIP)
	mux.Use(securityHeadersMiddleware)
	mux.Use(corsMiddleware(cfg.AllowedOrigins))

	mux.Get("/healthz", s.handleHealthz)
	mux.Get("/readyz", s.handleReadyz)

	mux.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Use(rateLimitMiddleware(s.rl))

		r.Get("/api/streams", s.handleListStreams)
		r.Get("/api/streams/{id}", s.handleGetStream)
		r.Get("/api/agents", s.handleListAgents)
		r.Get("/api/definitions", s.handleListDefinitions)
		r.Get("/api/definitions/{name}/config-specs", s.handleConfigSpecs)
		r.Get("/events", s.handleEventsSSE)
		r.Get("/ws/events", s.handleEventsWS)
	})

	s.mux = mux
	return s
}

// Handler returns the inspector's http.Handler.
func (s *Server) Handler() http.Handler { return s.mux }

// StartBackgroundTasks runs periodic rate-limiter cleanup until ctx is
// canceled.
func (s *Server) StartBackgroundTasks(ctx context.Context) {
	s.rl.cleanupStale(ctx, 5*time.Minute, 10*time.Minute)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.startTime).Truncate(time.Second).String(),
	})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type streamSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Running bool   `json:"running"`
	Agents  int    `json:"agent_count"`
}

func (s *Server) handleListStreams(w http.ResponseWriter, r *http.Request) {
	streams := s.hub.Streams()
	out := make([]streamSummary, 0, len(streams))
	for _, st := range streams {
		out = append(out, streamSummary{ID: st.ID, Name: st.Name, Running: st.Running, Agents: len(st.AgentIDs)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetStream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	info, err := s.hub.StreamInfo(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type agentSummary struct {
	ID      string `json:"id"`
	DefName string `json:"def_name"`
	Status  string `json:"status"`
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	ids := s.hub.AgentIDs()
	out := make([]agentSummary, 0, len(ids))
	for _, id := range ids {
		inst, ok := s.hub.Agent(id)
		if !ok {
			continue
		}
		out = append(out, agentSummary{ID: inst.ID(), DefName: inst.DefName(), Status: inst.Status().String()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListDefinitions(w http.ResponseWriter, r *http.Request) {
	defs := s.hub.Definitions()
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleConfigSpecs(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	specs, err := s.hub.AgentConfigSpecs(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, specs)
}

// handleEventsSSE streams the observer bus as Server-Sent Events until
// the client disconnects.
func (s *Server) handleEventsSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ch := s.hub.Observer().Subscribe()
	defer s.hub.Observer().Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			if err := writeSSEEvent(w, e); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleEventsWS streams the observer bus as JSON websocket text frames
// until the client disconnects or a write fails.
func (s *Server) handleEventsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("events ws: upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ch := s.hub.Observer().Subscribe()
	defer s.hub.Observer().Unsubscribe(ch)

	for e := range ch {
		if err := conn.WriteJSON(eventJSON(e)); err != nil {
			return
		}
	}
}

type eventWire struct {
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	AgentID   string    `json:"agent_id,omitempty"`
	Pin       string    `json:"pin,omitempty"`
	Key       string    `json:"key,omitempty"`
	Message   string    `json:"message,omitempty"`
	Value     any       `json:"value,omitempty"`
}

func eventJSON(e observer.Event) eventWire {
	return eventWire{
		Kind: string(e.Kind), Timestamp: e.Timestamp, AgentID: e.AgentID,
		Pin: e.Pin, Key: e.Key, Message: e.Message, Value: e.Value,
	}
}
