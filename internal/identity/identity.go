// Package identity supplies principals: an anonymous provider for client sessions and
// token verifiers for the HTTP surface.
package identity

import (
	"context"
	"errors"
	"sync"

	"taskboard/internal/model"

	"github.com/google/uuid"
)

// ErrUnverified is returned by a Chain when no verifier accepts the token.
var ErrUnverified = errors.New("token not accepted by any verifier")

// Provider hands out the principal of the current client.
type Provider interface {
	GetOrCreatePrincipal(ctx context.Context) (model.Principal, error)
	// Changes delivers the new principal whenever it changes after the first call to
	// GetOrCreatePrincipal. Only the newest change is kept for a slow reader.
	Changes() <-chan model.Principal
}

// TokenVerifier resolves a bearer token to the principal it was issued to.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (model.Principal, error)
}

var _ Provider = (*Anonymous)(nil)

// Anonymous issues random, stable principals with no credentials.
type Anonymous struct {
	mu        sync.Mutex
	principal model.Principal
	changes   chan model.Principal
}

func NewAnonymous() *Anonymous {
	return &Anonymous{changes: make(chan model.Principal, 1)}
}

// NewPrincipal returns a fresh anonymous principal.
func NewPrincipal() model.Principal {
	return model.Principal("anon-" + uuid.NewString())
}

// GetOrCreatePrincipal returns the current principal, creating one on first use.
func (a *Anonymous) GetOrCreatePrincipal(_ context.Context) (model.Principal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.principal == "" {
		a.principal = NewPrincipal()
	}
	return a.principal, nil
}

func (a *Anonymous) Changes() <-chan model.Principal { return a.changes }

// SignIn switches to principal, e.g. after restoring a saved session.
func (a *Anonymous) SignIn(principal model.Principal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if principal == a.principal {
		return
	}
	a.principal = principal
	a.emit(principal)
}

// Reset discards the current principal and starts a new anonymous one.
func (a *Anonymous) Reset() model.Principal {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.principal = NewPrincipal()
	a.emit(a.principal)
	return a.principal
}

// emit must be called with the lock held.
func (a *Anonymous) emit(principal model.Principal) {
	select {
	case <-a.changes:
	default:
	}
	a.changes <- principal
}

// Chain tries each verifier in order and returns the first principal accepted.
type Chain []TokenVerifier

func (c Chain) Verify(ctx context.Context, token string) (model.Principal, error) {
	errs := make([]error, 0, len(c))
	for _, v := range c {
		principal, err := v.Verify(ctx, token)
		if err == nil {
			return principal, nil
		}
		errs = append(errs, err)
	}
	return "", errors.Join(append([]error{ErrUnverified}, errs...)...)
}
