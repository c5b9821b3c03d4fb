package config

import (
	"fmt"
	"strings"
	"time"
)

// SessionStoreKind selects where visitor sessions live.
type SessionStoreKind string

const (
	// SessionStoreMemory keeps sessions in process. Sessions do not survive restarts.
	SessionStoreMemory SessionStoreKind = "memory"
	// SessionStoreRedis shares sessions across instances.
	SessionStoreRedis SessionStoreKind = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionStoreKind.
func (k *SessionStoreKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "memory", "redis":
		*k = SessionStoreKind(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionStoreKind: %q (valid options: memory, redis)", v)
	}
}

// SessionConfig controls visitor sessions and the auth gates. Loaded with the SESSION_ prefix.
type SessionConfig struct {
	CookieName string           `env:"COOKIE_NAME" envDefault:"sf_session"`
	IdleTTL    time.Duration    `env:"IDLE_TTL"    envDefault:"30m"`
	Store      SessionStoreKind `env:"STORE"       envDefault:"memory"`

	// Capacity bounds the in-memory store.
	Capacity int `env:"CAPACITY" envDefault:"100000"`

	// GateWait is how long a gate waits for an in-flight fetch before showing the placeholder.
	GateWait time.Duration `env:"GATE_WAIT" envDefault:"3s"`

	// FetchDedup collapses concurrent current-user fetches for one session.
	FetchDedup bool `env:"FETCH_DEDUP" envDefault:"true"`

	// JanitorInterval is how often the in-memory store sweeps expired sessions.
	JanitorInterval time.Duration `env:"JANITOR_INTERVAL" envDefault:"1m"`
}

// Sanitize applies defaults to zero or negative values.
func (s *SessionConfig) Sanitize() {
	if s.CookieName = strings.TrimSpace(s.CookieName); s.CookieName == "" {
		s.CookieName = "sf_session"
	}
	if s.IdleTTL <= 0 {
		s.IdleTTL = 30 * time.Minute
	}
	if s.Store == "" {
		s.Store = SessionStoreMemory
	}
	if s.Capacity <= 0 {
		s.Capacity = 100000
	}
	if s.GateWait < 0 {
		s.GateWait = 0
	}
	if s.JanitorInterval <= 0 {
		s.JanitorInterval = time.Minute
	}
}
