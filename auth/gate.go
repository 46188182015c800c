// Package auth wraps the identity provider behind a small gate: sign in,
// sign out, and observation of the current session. Mutating operations
// elsewhere check the gate (or a per-request token session) before touching
// the store.
package auth

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrInvalidCredentials is returned by Login for a bad email/password
	// pair. The gate stays signed out.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Identity is a signed-in admin.
type Identity struct {
	ID    uint
	Email string
	Name  string
}

// Provider authenticates credentials against the identity backend.
type Provider interface {
	Authenticate(ctx context.Context, email, password string) (*Identity, error)
}

// Gate tracks the session state of one admin console. Observers are invoked
// with the current identity (or nil) on registration and on every change.
type Gate struct {
	provider Provider

	mu        sync.Mutex
	current   *Identity
	observers []func(*Identity)
}

// NewGate builds a gate over the provider, starting signed out.
func NewGate(p Provider) *Gate {
	return &Gate{provider: p}
}

// SignedIn reports whether an admin is signed in.
func (g *Gate) SignedIn() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current != nil
}

// Current returns the signed-in identity, or nil.
func (g *Gate) Current() *Identity {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return nil
	}
	id := *g.current
	return &id
}

// Login authenticates and transitions to signed in. On failure the gate
// stays signed out and the error is returned.
func (g *Gate) Login(ctx context.Context, email, password string) (*Identity, error) {
	id, err := g.provider.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.current = id
	observers := append(([]func(*Identity))(nil), g.observers...)
	g.mu.Unlock()

	copy := *id
	for _, fn := range observers {
		fn(&copy)
	}
	return id, nil
}

// Logout clears the session. It always succeeds from the caller's
// perspective.
func (g *Gate) Logout() {
	g.mu.Lock()
	g.current = nil
	observers := append(([]func(*Identity))(nil), g.observers...)
	g.mu.Unlock()

	for _, fn := range observers {
		fn(nil)
	}
}

// Restore adopts an existing session, as on process start with a cached
// token still valid.
func (g *Gate) Restore(id *Identity) {
	g.mu.Lock()
	g.current = id
	observers := append(([]func(*Identity))(nil), g.observers...)
	g.mu.Unlock()

	for _, fn := range observers {
		fn(id)
	}
}

// Observe registers a session observer. It is invoked immediately with the
// current state, then on every login/logout. The returned function detaches
// it.
func (g *Gate) Observe(fn func(*Identity)) (cancel func()) {
	g.mu.Lock()
	g.observers = append(g.observers, fn)
	idx := len(g.observers) - 1
	current := g.current
	g.mu.Unlock()

	fn(current)

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if idx < len(g.observers) {
			g.observers[idx] = func(*Identity) {}
		}
	}
}
