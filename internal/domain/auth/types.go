package auth

// Package auth contains domain-level types for visitor sessions and route gating.
// It is pure and free of framework/adapter concerns.

import (
	"encoding/json"
	"time"
)

// NotAuthenticatedMessage tags every failed current-user lookup.
const NotAuthenticatedMessage = "Not authenticated"

type unauthenticatedError struct{}

func (unauthenticatedError) Error() string { return NotAuthenticatedMessage }

// ErrUnauthenticated is the single result every session fetch failure collapses to.
// Transport errors, non-2xx replies and malformed payloads are not distinguished.
var ErrUnauthenticated error = unauthenticatedError{}

// User is the backend's record of the caller. Only presence matters to gates;
// fields the storefront does not model are kept in Extra.
type User struct {
	ID    string         `json:"id"`
	Email string         `json:"email"`
	Name  string         `json:"name"`
	Extra map[string]any `json:"extra,omitempty"`
}

// DisplayName returns the name shown in the navbar.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// UnmarshalJSON accepts both "_id" and "id" and collects unknown fields into Extra.
func (u *User) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*u = User{}
	for key, val := range raw {
		switch key {
		case "_id", "id":
			if s, ok := val.(string); ok && s != "" {
				u.ID = s
			}
		case "email":
			u.Email, _ = val.(string)
		case "name":
			u.Name, _ = val.(string)
		case "extra":
			if m, ok := val.(map[string]any); ok {
				u.mergeExtra(m)
			}
		default:
			u.mergeExtra(map[string]any{key: val})
		}
	}
	return nil
}

func (u *User) mergeExtra(m map[string]any) {
	if len(m) == 0 {
		return
	}
	if u.Extra == nil {
		u.Extra = make(map[string]any, len(m))
	}
	for k, v := range m {
		u.Extra[k] = v
	}
}

// State is the client-held belief about the current identity.
type State struct {
	User          *User  `json:"user"`
	IsLoadingUser bool   `json:"isLoadingUser"`
	Error         string `json:"error,omitempty"`
}

// InitialState is the state of a visitor nobody has asked the backend about yet.
func InitialState() State {
	return State{IsLoadingUser: true}
}

// Phase names the coarse position of a State in the session state machine.
type Phase string

const (
	PhaseLoading       Phase = "loading"
	PhaseAuthenticated Phase = "authenticated"
	PhaseAnonymous     Phase = "anonymous"
)

// Phase classifies the state. Loading wins over user presence.
func (s State) Phase() Phase {
	switch {
	case s.IsLoadingUser:
		return PhaseLoading
	case s.User != nil:
		return PhaseAuthenticated
	default:
		return PhaseAnonymous
	}
}

// Authenticated reports whether a user is present, regardless of loading.
func (s State) Authenticated() bool { return s.User != nil }

// Credential is one backend cookie held on behalf of the visitor.
type Credential struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Credentials is an ordered set of backend cookies; later entries win on name clash.
type Credentials []Credential

// Merge returns c with every entry of other applied on top.
func (c Credentials) Merge(other Credentials) Credentials {
	out := make(Credentials, 0, len(c)+len(other))
	index := make(map[string]int, len(c)+len(other))
	for _, list := range []Credentials{c, other} {
		for _, cred := range list {
			if cred.Name == "" {
				continue
			}
			if i, ok := index[cred.Name]; ok {
				out[i] = cred
				continue
			}
			index[cred.Name] = len(out)
			out = append(out, cred)
		}
	}
	return out
}

// Without returns c minus the named credentials.
func (c Credentials) Without(names ...string) Credentials {
	if len(names) == 0 {
		return c
	}
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	out := make(Credentials, 0, len(c))
	for _, cred := range c {
		if _, ok := drop[cred.Name]; !ok {
			out = append(out, cred)
		}
	}
	return out
}

// Session is the server-side record persisted per visitor.
// ID is the opaque value of the visitor cookie.
type Session struct {
	ID          string      `json:"id"`
	State       State       `json:"state"`
	Credentials Credentials `json:"credentials,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
