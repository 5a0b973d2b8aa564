// internal/app/console/registry.go
package console

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientFactory builds the API client for a new console. Each console gets
// its own client so backend sessions never mix.
type ClientFactory func() (API, error)

// Registry maps console ids (kept in the browser's console session) to
// live consoles.
type Registry struct {
	mu       sync.Mutex
	consoles map[string]*Console

	newAPI        ClientFactory
	alertDuration time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

func NewRegistry(newAPI ClientFactory, alertDuration time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		consoles:      make(map[string]*Console),
		newAPI:        newAPI,
		alertDuration: alertDuration,
		logger:        logger,
		now:           time.Now,
	}
}

// Get returns the console with id and marks it as used.
func (r *Registry) Get(id string) (*Console, bool) {
	if id == "" {
		return nil, false
	}
	r.mu.Lock()
	c, ok := r.consoles[id]
	r.mu.Unlock()
	if ok {
		c.touch(r.now())
	}
	return c, ok
}

// Create starts a new console under a fresh id.
func (r *Registry) Create() (*Console, error) {
	api, err := r.newAPI()
	if err != nil {
		return nil, err
	}
	c := New(uuid.NewString(), api, r.alertDuration, r.logger)
	c.touch(r.now())

	r.mu.Lock()
	r.consoles[c.ID] = c
	r.mu.Unlock()
	return c, nil
}

// Remove closes and forgets a console.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	c, ok := r.consoles[id]
	delete(r.consoles, id)
	r.mu.Unlock()
	if ok {
		c.Close()
	}
}

// Sweep removes consoles unused for longer than idle and returns how many
// were removed.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var stale []*Console
	for id, c := range r.consoles {
		if c.idleSince().Before(cutoff) {
			stale = append(stale, c)
			delete(r.consoles, id)
		}
	}
	r.mu.Unlock()

	for _, c := range stale {
		c.Close()
	}
	return len(stale)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.consoles)
}
