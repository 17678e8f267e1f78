package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/farmtrack/mobile-core/internal/bus"
	"github.com/farmtrack/mobile-core/internal/credstore"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{"sub": float64(1), "exp": exp.Unix()}).SignedString([]byte("s"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// echoAuthServer records the Authorization header of the last request and
// answers with the configured status.
type echoAuthServer struct {
	*httptest.Server
	lastAuth string
	status   int
}

func newEchoAuthServer(t *testing.T) *echoAuthServer {
	s := &echoAuthServer{status: http.StatusOK}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.lastAuth = r.Header.Get("Authorization")
		w.WriteHeader(s.status)
	}))
	t.Cleanup(s.Close)
	return s
}

func newClient(store credstore.Store, b *bus.Bus) *http.Client {
	return &http.Client{Transport: &AuthTransport{
		Store: store,
		Bus:   b,
		Now:   func() time.Time { return testNow },
	}}
}

func TestRequestPhase(t *testing.T) {
	ctx := context.Background()

	t.Run("NoToken", func(t *testing.T) {
		srv := newEchoAuthServer(t)
		client := newClient(credstore.NewMemoryStore(), bus.New())

		resp, err := client.Get(srv.URL)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if srv.lastAuth != "" {
			t.Errorf("Authorization = %q, want empty", srv.lastAuth)
		}
	})

	t.Run("ValidToken", func(t *testing.T) {
		srv := newEchoAuthServer(t)
		store := credstore.NewMemoryStore()
		tok := mintToken(t, testNow.Add(time.Hour))
		store.Set(ctx, credstore.KeyAuthToken, tok)
		client := newClient(store, bus.New())

		resp, err := client.Get(srv.URL)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if srv.lastAuth != "Bearer "+tok {
			t.Errorf("Authorization = %q, want bearer token", srv.lastAuth)
		}
	})

	t.Run("ExpiredTokenDroppedFromStorage", func(t *testing.T) {
		srv := newEchoAuthServer(t)
		store := credstore.NewMemoryStore()
		store.Set(ctx, credstore.KeyAuthToken, mintToken(t, testNow.Add(-time.Hour)))
		client := newClient(store, bus.New())

		resp, err := client.Get(srv.URL)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if srv.lastAuth != "" {
			t.Errorf("Authorization = %q, want empty for expired token", srv.lastAuth)
		}
		if _, err := store.Get(ctx, credstore.KeyAuthToken); !errors.Is(err, credstore.ErrNotFound) {
			t.Errorf("expired token still in storage, err = %v", err)
		}
	})

	t.Run("ExplicitHeaderWins", func(t *testing.T) {
		srv := newEchoAuthServer(t)
		store := credstore.NewMemoryStore()
		store.Set(ctx, credstore.KeyAuthToken, mintToken(t, testNow.Add(time.Hour)))
		client := newClient(store, bus.New())

		req, _ := http.NewRequest(http.MethodPost, srv.URL, nil)
		req.Header.Set("Authorization", "Bearer explicit-token")
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if srv.lastAuth != "Bearer explicit-token" {
			t.Errorf("Authorization = %q, want the explicit header", srv.lastAuth)
		}
	})
}

func TestUnauthorizedResponsePublishes(t *testing.T) {
	srv := newEchoAuthServer(t)
	srv.status = http.StatusUnauthorized
	b := bus.New()
	published := 0
	b.Subscribe(bus.EventUnauthorized, func(string) { published++ })
	client := newClient(credstore.NewMemoryStore(), b)

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 forwarded", resp.StatusCode)
	}
	if published != 1 {
		t.Errorf("unauthorized published %d times, want 1", published)
	}
}

func TestUnauthorizedSignalSuppressed(t *testing.T) {
	srv := newEchoAuthServer(t)
	srv.status = http.StatusUnauthorized
	b := bus.New()
	published := 0
	b.Subscribe(bus.EventUnauthorized, func(string) { published++ })
	client := newClient(credstore.NewMemoryStore(), b)

	req, _ := http.NewRequestWithContext(
		WithoutUnauthorizedSignal(context.Background()), http.MethodPost, srv.URL, nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if published != 0 {
		t.Errorf("unauthorized published %d times on a suppressed request", published)
	}
}

func TestTransportFailureClassification(t *testing.T) {
	// A just-closed server gives a connection-refused URL.
	dead := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	t.Run("ServerUnreachable", func(t *testing.T) {
		probe := newEchoAuthServer(t)
		client := &http.Client{Transport: &AuthTransport{
			Store:    credstore.NewMemoryStore(),
			ProbeURL: probe.URL,
		}}

		_, err := client.Get(deadURL)
		var sue *ServerUnreachableError
		if !errors.As(err, &sue) {
			t.Errorf("err = %v, want *ServerUnreachableError", err)
		}
	})

	t.Run("NoConnectivity", func(t *testing.T) {
		client := &http.Client{Transport: &AuthTransport{
			Store:    credstore.NewMemoryStore(),
			ProbeURL: deadURL, // probe host down too: offline
		}}

		_, err := client.Get(deadURL)
		var nce *NoConnectivityError
		if !errors.As(err, &nce) {
			t.Errorf("err = %v, want *NoConnectivityError", err)
		}
	})
}

func TestResponseError(t *testing.T) {
	t.Run("ValidationMessageSurfaced", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"message":"The tag number field is required."}`))
		}))
		defer srv.Close()

		resp, err := http.Get(srv.URL)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		rerr := ResponseError(resp)
		var he *HTTPError
		if !errors.As(rerr, &he) {
			t.Fatalf("err = %T, want *HTTPError", rerr)
		}
		if he.Message != "The tag number field is required." {
			t.Errorf("Message = %q, want the server validation message", he.Message)
		}
		if he.Status != http.StatusUnprocessableEntity {
			t.Errorf("Status = %d, want 422", he.Status)
		}
	})

	t.Run("OtherStatusesPassThrough", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"message":"upstream exploded"}`))
		}))
		defer srv.Close()

		resp, err := http.Get(srv.URL)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		rerr := ResponseError(resp)
		var he *HTTPError
		if !errors.As(rerr, &he) {
			t.Fatalf("err = %T, want *HTTPError", rerr)
		}
		if he.Message != http.StatusText(http.StatusBadGateway) {
			t.Errorf("Message = %q, want status text for non-422", he.Message)
		}
		if !strings.Contains(string(he.Body), "upstream exploded") {
			t.Errorf("Body lost: %q", he.Body)
		}
	})
}
