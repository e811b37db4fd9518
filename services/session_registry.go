package services

import (
	"context"
	"sync"
	"time"

	"github.com/portfolio-site/contact-backend/logger"
	"github.com/portfolio-site/contact-backend/store"
	"github.com/portfolio-site/contact-backend/types"
	"go.uber.org/zap"
)

type session struct {
	controller *ContactFormController
	lastSeen   time.Time
}

// SessionRegistry keeps one ContactFormController per visitor. Each visitor's
// last-submission timestamp lives under its own scoped storage key so the
// cooldown follows the visitor rather than the server.
type SessionRegistry struct {
	store      store.KeyValueStore
	sender     types.EmailSender
	storageKey string
	idleTTL    time.Duration
	opts       []ContactFormOption
	metrics    *ContactMetrics
	now        func() time.Time
	log        *zap.SugaredLogger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessionRegistry creates a registry. opts are applied to every controller
// it creates, before the visitor-scoped storage key.
func NewSessionRegistry(kv store.KeyValueStore, sender types.EmailSender, storageKey string, idleTTL time.Duration, metrics *ContactMetrics, opts ...ContactFormOption) *SessionRegistry {
	if storageKey == "" {
		storageKey = DefaultStorageKey
	}
	return &SessionRegistry{
		store:      kv,
		sender:     sender,
		storageKey: storageKey,
		idleTTL:    idleTTL,
		opts:       opts,
		metrics:    metrics,
		now:        time.Now,
		log:        logger.GetLogger(),
		sessions:   make(map[string]*session),
	}
}

// Get returns the visitor's controller, creating it on first use.
func (r *SessionRegistry) Get(ctx context.Context, visitorID string) (*ContactFormController, error) {
	r.mu.Lock()
	if s, ok := r.sessions[visitorID]; ok {
		s.lastSeen = r.now()
		r.mu.Unlock()
		return s.controller, nil
	}
	r.mu.Unlock()

	opts := append([]ContactFormOption{}, r.opts...)
	opts = append(opts,
		WithStorageKey(store.ScopedKey(r.storageKey, visitorID)),
		WithMetrics(r.metrics),
	)
	controller, err := NewContactFormController(ctx, r.store, r.sender, opts...)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another request for the same visitor may have won the race.
	if s, ok := r.sessions[visitorID]; ok {
		controller.Close()
		s.lastSeen = r.now()
		return s.controller, nil
	}
	r.sessions[visitorID] = &session{controller: controller, lastSeen: r.now()}
	r.metrics.setActiveSessions(len(r.sessions))
	r.log.Debugw("Created contact session", "visitor_id", visitorID)
	return controller, nil
}

// End closes and forgets the visitor's controller. The persisted timestamp is
// kept, so a new session for the same visitor restores the cooldown.
func (r *SessionRegistry) End(visitorID string) bool {
	r.mu.Lock()
	s, ok := r.sessions[visitorID]
	if ok {
		delete(r.sessions, visitorID)
		r.metrics.setActiveSessions(len(r.sessions))
	}
	r.mu.Unlock()

	if ok {
		s.controller.Close()
	}
	return ok
}

// Sweep closes sessions idle for longer than the configured TTL and returns
// how many were removed.
func (r *SessionRegistry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}

	cutoff := r.now().Add(-r.idleTTL)
	var expired []*ContactFormController

	r.mu.Lock()
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			expired = append(expired, s.controller)
			delete(r.sessions, id)
		}
	}
	r.metrics.setActiveSessions(len(r.sessions))
	r.mu.Unlock()

	for _, c := range expired {
		c.Close()
	}
	if len(expired) > 0 {
		r.log.Debugw("Swept idle contact sessions", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps idle sessions every interval until ctx is done.
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// CloseAll closes every controller, typically on shutdown.
func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*session)
	r.metrics.setActiveSessions(0)
	r.mu.Unlock()

	for _, s := range sessions {
		s.controller.Close()
	}
}

// Count returns the number of live sessions.
func (r *SessionRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
