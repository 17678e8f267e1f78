// Package transport wraps an http.RoundTripper with the request and
// response interception the session core needs: attaching the stored bearer
// token on the way out, and turning transport failures and 401 responses
// into classified errors and unauthorized events on the way back.
//
// The transport deliberately reads the token from the credential store, not
// from in-memory session state. A request dispatched before the startup
// restore finishes must still be authorized correctly, and the low-level
// HTTP layer must not depend on the higher-level session package.
package transport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/farmtrack/mobile-core/internal/bus"
	"github.com/farmtrack/mobile-core/internal/credstore"
	"github.com/farmtrack/mobile-core/internal/token"
)

type ctxKey int

const suppressUnauthorizedKey ctxKey = iota

// WithoutUnauthorizedSignal marks a request so a 401 response does not
// publish an unauthorized event. Used by the best-effort remote logout call,
// whose token is often already dead; without this guard a single sign-out
// could re-trigger itself through the bus.
func WithoutUnauthorizedSignal(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressUnauthorizedKey, true)
}

func unauthorizedSuppressed(ctx context.Context) bool {
	v, _ := ctx.Value(suppressUnauthorizedKey).(bool)
	return v
}

// AuthTransport is an http.RoundTripper that authorizes outgoing requests
// from the credential store and reports session-invalidating responses on
// the bus. It never touches session state itself; the session manager is the
// only writer.
type AuthTransport struct {
	// Base performs the actual request. http.DefaultTransport when nil.
	Base http.RoundTripper
	// Store is read for the auth_token key on every request.
	Store credstore.Store
	// Bus receives the unauthorized event on 401 responses. Optional.
	Bus *bus.Bus
	// ProbeURL is the known-good host used to distinguish "offline" from
	// "server down". DefaultProbeURL when empty.
	ProbeURL string
	// Now is the clock used for token expiry checks. time.Now when nil.
	Now func() time.Time
}

func (t *AuthTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *AuthTransport) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// RoundTrip implements http.RoundTripper.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	// Request phase. An existing Authorization header (the explicit bearer
	// on the remote logout call) wins over the stored token.
	if req.Header.Get("Authorization") == "" {
		tok, err := t.Store.Get(ctx, credstore.KeyAuthToken)
		switch {
		case errors.Is(err, credstore.ErrNotFound):
			// No credential: forward unmodified.
		case err != nil:
			// Storage trouble is not this layer's problem to surface; the
			// server will reject the bare request.
			slog.Warn("transport: credential read failed", "error", err)
		case !token.IsValid(tok, t.now()):
			// Expired or malformed. Drop it from storage and let the server
			// reject the bare request; flipping session state here would
			// break single-writer discipline.
			if derr := t.Store.Delete(ctx, credstore.KeyAuthToken); derr != nil {
				slog.Warn("transport: expired token delete failed", "error", derr)
			}
		default:
			clone := req.Clone(ctx)
			clone.Header.Set("Authorization", "Bearer "+tok)
			req = clone
		}
	}

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		// No response at all: decide offline vs server-down, advisory only.
		return nil, t.classifyTransportFailure(err)
	}

	if resp.StatusCode == http.StatusUnauthorized && t.Bus != nil && !unauthorizedSuppressed(ctx) {
		t.Bus.Publish(bus.EventUnauthorized, "your session has expired, please log in again")
	}
	return resp, nil
}
