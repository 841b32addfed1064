package controller

import (
	"fmt"
	"log"
	"sync"

	uuid "github.com/satori/go.uuid"

	"github.com/combinedb/combine/pkg/combine"
)

// Sessions is the registry of live combine sessions behind the HTTP
// surface. The registry serializes nothing beyond its own map: each
// session keeps the single-writer contract of the engine, which the
// handlers honor by locking per session.
type Sessions struct {
	// Defaults fill session config fields a create request omits.
	Defaults combine.Config

	mu       sync.RWMutex
	sessions map[string]*Handle
}

// Handle pairs a live session with the lock serializing its use.
type Handle struct {
	sync.Mutex
	Session *combine.Session
}

func NewSessions(defaults combine.Config) *Sessions {
	return &Sessions{
		Defaults: defaults,
		sessions: make(map[string]*Handle),
	}
}

// Create builds a new session from cfg, filling unset budget and spill
// directory from the registry defaults, and returns its id.
func (c *Sessions) Create(cfg combine.Config) (string, error) {
	if cfg.MemoryBudget == 0 {
		cfg.MemoryBudget = c.Defaults.MemoryBudget
	}
	if cfg.SpillDir == "" {
		cfg.SpillDir = c.Defaults.SpillDir
	}

	session, err := combine.NewSession(cfg)
	if err != nil {
		return "", err
	}

	id := uuid.NewV4().String()

	c.mu.Lock()
	c.sessions[id] = &Handle{Session: session}
	c.mu.Unlock()

	return id, nil
}

func (c *Sessions) Get(id string) (*Handle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	h, ok := c.sessions[id]
	return h, ok
}

// Remove closes the session and discards all of its state, including
// any spill storage.
func (c *Sessions) Remove(id string) error {
	c.mu.Lock()
	h, ok := c.sessions[id]
	delete(c.sessions, id)
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("unknown session %q", id)
	}

	h.Lock()
	defer h.Unlock()
	return h.Session.Close()
}

// CloseAll discards every live session, e.g. on server shutdown.
func (c *Sessions) CloseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, h := range c.sessions {
		h.Lock()
		if err := h.Session.Close(); err != nil {
			log.Printf("Failed to close session %q: %v", id, err)
		}
		h.Unlock()
		delete(c.sessions, id)
	}
}
