package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/target/storefront-web/internal/domain/auth"
	"github.com/target/storefront-web/internal/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore keeps visitor sessions in process memory with an idle TTL.
// Sessions do not survive a restart.
type SessionStore struct {
	lru     *LRU
	idleTTL time.Duration
}

// SessionStoreOptions configures a SessionStore.
type SessionStoreOptions struct {
	// Capacity bounds the number of live sessions; the least recently used is evicted.
	Capacity int
	IdleTTL  time.Duration
	Now      func() time.Time
}

// NewSessionStore creates an in-memory session store.
func NewSessionStore(opts SessionStoreOptions) *SessionStore {
	ttl := opts.IdleTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = 100_000
	}
	return &SessionStore{
		lru:     NewLRU(LRUConfig{Capacity: capacity, Now: opts.Now}),
		idleTTL: ttl,
	}
}

func (s *SessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	s.lru.Set(sess.ID, data, s.idleTTL)
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	// Reads count as activity.
	data, ok := s.lru.GetTouch(id, s.idleTTL)
	if !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	var sess domainauth.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return sess, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	if id != "" {
		s.lru.Delete(id)
	}
	return nil
}

// Len returns the number of stored sessions, including expired ones not yet swept.
func (s *SessionStore) Len() int { return s.lru.Len() }

// RunJanitor sweeps expired sessions every interval until ctx is done.
func (s *SessionStore) RunJanitor(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.lru.Sweep(); n > 0 {
				logger.Debug("swept expired sessions", "count", n)
			}
		}
	}
}
