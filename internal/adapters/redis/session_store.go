package redis

// Package redis provides Redis-based adapters for the storefront.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/target/storefront-web/internal/domain/auth"
	"github.com/target/storefront-web/internal/ports"
)

// DefaultSessionPrefix namespaces visitor session keys.
const DefaultSessionPrefix = "storefront:session:"

// maxUpdateAttempts bounds optimistic retries when another instance writes the same session.
const maxUpdateAttempts = 8

var (
	_ ports.SessionStore   = (*SessionStore)(nil)
	_ ports.SessionUpdater = (*SessionStore)(nil)
)

// SessionStore keeps visitor sessions in Redis. Reads and writes both refresh the idle TTL.
type SessionStore struct {
	client  redis.UniversalClient
	prefix  string
	idleTTL time.Duration
}

// SessionStoreOptions configures a SessionStore.
type SessionStoreOptions struct {
	Client  redis.UniversalClient
	Prefix  string
	IdleTTL time.Duration
}

// NewSessionStore creates a new Redis-based session store.
func NewSessionStore(opts SessionStoreOptions) *SessionStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultSessionPrefix
	}
	ttl := opts.IdleTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionStore{client: opts.Client, prefix: prefix, idleTTL: ttl}
}

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, s.prefix+sess.ID, data, s.idleTTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}

	data, err := s.client.GetEx(ctx, s.prefix+id, s.idleTTL).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, ports.ErrSessionNotFound
		}
		return domainauth.Session{}, fmt.Errorf("redis getex: %w", err)
	}
	return decodeSession(data)
}

// Update runs load, fn, save under WATCH so a write from another instance
// between the load and the save aborts and retries the whole step.
func (s *SessionStore) Update(
	ctx context.Context,
	id string,
	fn func(*domainauth.Session),
) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	key := s.prefix + id

	var out domainauth.Session
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ports.ErrSessionNotFound
			}
			return fmt.Errorf("redis get: %w", err)
		}
		sess, err := decodeSession(data)
		if err != nil {
			return err
		}
		fn(&sess)
		encoded, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, s.idleTTL)
			return nil
		}); err != nil {
			return err
		}
		out = sess
		return nil
	}

	for range maxUpdateAttempts {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return domainauth.Session{}, err
		}
	}
	return domainauth.Session{}, ports.ErrSessionConflict
}

func decodeSession(data []byte) (domainauth.Session, error) {
	var sess domainauth.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+id).Err()
}

// Health pings the underlying client.
func (s *SessionStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
