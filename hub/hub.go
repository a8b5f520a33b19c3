// Package hub implements the runtime's central coordinator: the agent,
// channel, board, and config tables; the single event-loop task that
// routes AgentOut/BoardOut events; and the per-agent mailbox/worker
// model. It is grounded on the teacher's session.Manager (mutex-guarded
// map of live sessions, logger.With-scoped per-entity logging) and
// eventbus.Bus (non-blocking fan-out), generalized to the full runtime
// contract the spec describes.
package hub

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/amurg-ai/streamkit/agent"
	"github.com/amurg-ai/streamkit/internal/errs"
	"github.com/amurg-ai/streamkit/internal/registry"
	"github.com/amurg-ai/streamkit/observer"
	"github.com/amurg-ai/streamkit/value"
)

// MessageLimit is each agent mailbox's bounded capacity.
const MessageLimit = 1024

// EventQueueDepth is the central event loop's queue capacity.
const EventQueueDepth = 4096

// runningAgent pairs a live Agent with its worker's mailbox sender.
type runningAgent struct {
	instance agent.Agent
	mailbox  chan mailboxMessage // nil unless running
}

// channelEntry is one (target, source_pin, target_pin) triple stored
// under its source agent id.
type channelEntry struct {
	targetID  string
	sourcePin string
	targetPin string
}

// Hub is the central coordinator. The zero value is not usable; build
// one with New. A *Hub is cheap to share: all mutation goes through its
// internal locks, so multiple goroutines (agent workers, external
// callers) can hold the same pointer safely.
type Hub struct {
	logger *slog.Logger

	registry *registry.Registry
	observer *observer.Bus

	mu            sync.RWMutex
	agents        map[string]*runningAgent
	channels      map[string][]channelEntry
	boards        map[string]value.Value
	boardSubs     map[string][]string // board name -> agent ids, insertion order
	globalConfigs map[string]agent.Configs
	streams       map[string]*Stream

	eventMu  sync.Mutex
	eventTx  chan agentEvent // present between ready() and quit()
	cancel   context.CancelFunc
	loopWg   sync.WaitGroup // event-loop task only
	agentsWg sync.WaitGroup // agent worker goroutines; awaited before the event loop is torn down
}

// New creates a Hub with empty tables. Call Init then Ready before
// driving any messages through it.
func New(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:        logger.With("component", "hub"),
		registry:      registry.New(),
		observer:      observer.New(),
		agents:        make(map[string]*runningAgent),
		channels:      make(map[string][]channelEntry),
		boards:        make(map[string]value.Value),
		boardSubs:     make(map[string][]string),
		globalConfigs: make(map[string]agent.Configs),
		streams:       make(map[string]*Stream),
	}
}

// Init registers the given definitions (typically the built-in board
// agents plus any host-supplied catalogue) and seeds their global
// config tables from each definition's GlobalConfigs.
func (h *Hub) Init(defs ...agent.Definition) {
	for _, d := range defs {
		h.RegisterDefinition(d)
	}
}

// RegisterDefinition adds one definition to the registry and seeds
// global_configs[def.Name] from its GlobalConfigs defaults.
func (h *Hub) RegisterDefinition(def agent.Definition) {
	h.registry.Register(def)
	h.mu.Lock()
	h.globalConfigs[def.Name] = def.GlobalConfigs.Defaults()
	h.mu.Unlock()
}

// Definition looks up a registered definition by name.
func (h *Hub) Definition(name string) (agent.Definition, error) {
	return h.registry.Get(name)
}

// Definitions returns every registered definition.
func (h *Hub) Definitions() []agent.Definition {
	return h.registry.All()
}

// Observer returns the hub's observer bus for subscription.
func (h *Hub) Observer() *observer.Bus {
	return h.observer
}

// Ready spawns the central event-loop task. Required before any message
// flows; calling runtime APIs beforehand returns TxNotInitialized.
func (h *Hub) Ready() {
	h.eventMu.Lock()
	defer h.eventMu.Unlock()
	if h.eventTx != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.eventTx = make(chan agentEvent, EventQueueDepth)
	h.loopWg.Add(1)
	go h.runEventLoop(ctx, h.eventTx)
}

// Quit stops the event loop and every running agent. Agent shutdown runs
// concurrently via errgroup since stopping one agent never depends on
// another having stopped first; the group only reports the first error,
// but StopAgent practically never returns one (best-effort mailbox send).
func (h *Hub) Quit() {
	h.eventMu.Lock()
	if h.eventTx == nil {
		h.eventMu.Unlock()
		return
	}
	h.eventMu.Unlock()

	h.mu.Lock()
	ids := make([]string, 0, len(h.agents))
	for id := range h.agents {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	// Agents must be stopped, and their workers fully drained, with the
	// event loop still running: StopAgent only closes an agent's mailbox,
	// and the worker's in-flight Process/Stop calls may still Emit into
	// the event loop on their way out. Stop every agent and wait for every
	// worker goroutine before tearing down the loop.
	var g errgroup.Group
	for _, id := range ids {
		id := id
		g.Go(func() error {
			return h.StopAgent(id)
		})
	}
	if err := g.Wait(); err != nil {
		h.logger.Warn("error stopping agent during quit", "error", err)
	}
	h.agentsWg.Wait()

	h.eventMu.Lock()
	h.cancel()
	h.eventMu.Unlock()
	h.loopWg.Wait()

	h.eventMu.Lock()
	h.eventTx = nil
	h.eventMu.Unlock()
	h.observer.Close()
}

func (h *Hub) txOrErr() (chan agentEvent, error) {
	h.eventMu.Lock()
	defer h.eventMu.Unlock()
	if h.eventTx == nil {
		return nil, errs.New(errs.TxNotInitialized, "hub not ready: call Ready() first")
	}
	return h.eventTx, nil
}

// GlobalConfigs returns a snapshot of def_name's global configs.
func (h *Hub) GlobalConfigs(defName string) agent.Configs {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.globalConfigs[defName]
}

// SetGlobalConfigs merges cfg key-by-key into def_name's entry,
// creating it if absent.
func (h *Hub) SetGlobalConfigs(defName string, cfg agent.Configs) {
	h.mu.Lock()
	defer h.mu.Unlock()
	existing, ok := h.globalConfigs[defName]
	if !ok {
		existing = agent.NewConfigs()
	}
	h.globalConfigs[defName] = existing.Merge(cfg)
}
