// Package api is the typed client for the remote FarmTrack API. It speaks
// the login/logout endpoints the session core needs plus the authorized
// resource calls the rest of the app issues through the same intercepted
// HTTP client.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/farmtrack/mobile-core/internal/model"
	"github.com/farmtrack/mobile-core/internal/transport"
)

// InvalidCredentialsError is a login rejected by the server with a
// success:false envelope, independent of HTTP status. User-correctable.
type InvalidCredentialsError struct {
	Message string
}

func (e *InvalidCredentialsError) Error() string { return e.Message }

// NetworkError is a request that produced no response at all. It wraps the
// transport classification, so errors.As still reaches
// *transport.NoConnectivityError / *transport.ServerUnreachableError.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network failure: " + e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }

// Client calls the remote API. The http.Client is expected to carry an
// *transport.AuthTransport so authorized calls pick up the stored token.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given base URL, e.g. "https://api.farmtrack.example".
func New(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// LoginData is the payload of a successful login response.
type LoginData struct {
	User      model.User `json:"user"`
	Token     string     `json:"token"`
	TokenType string     `json:"token_type"`
	ExpiresIn int64      `json:"expires_in"`
}

// loginEnvelope is the wire shape of the login endpoint, success or failure.
// Success is a pointer so a generic error body without a success field (a
// plain 500 or a 422 validation message) is not mistaken for a credentials
// rejection: only a literal success:false means bad credentials.
type loginEnvelope struct {
	Success *bool      `json:"success"`
	Message string     `json:"message"`
	Data    *LoginData `json:"data"`
}

// Login exchanges credentials for a token and user record. Exactly one of
// four outcomes occurs: success, *InvalidCredentialsError (bad credentials,
// whatever the HTTP status), *NetworkError (no response at all), or
// *transport.HTTPError (any other server condition).
func (c *Client) Login(ctx context.Context, email, password string) (*LoginData, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/auth/mobile/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: unwrapURLError(err)}
	}

	// The failure envelope can arrive on any status, so decode before
	// looking at the status code.
	raw, _ := readBody(resp)
	var env loginEnvelope
	if jsonErr := json.Unmarshal(raw, &env); jsonErr == nil && env.Success != nil {
		if !*env.Success {
			return nil, &InvalidCredentialsError{Message: env.Message}
		}
		if resp.StatusCode == http.StatusOK {
			if env.Data == nil || env.Data.Token == "" {
				return nil, &transport.HTTPError{
					Status:     resp.StatusCode,
					StatusText: http.StatusText(resp.StatusCode),
					Message:    "login response missing data",
					Body:       raw,
				}
			}
			return env.Data, nil
		}
	}
	return nil, transport.ResponseError(replayBody(resp, raw))
}

// Logout invalidates the token server side. The explicit bearer header wins
// over whatever the transport would attach, and a 401 on this call never
// publishes an unauthorized event back into the bus.
func (c *Client) Logout(ctx context.Context, bearer string) error {
	ctx = transport.WithoutUnauthorizedSignal(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/auth/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("logout rejected: %s", resp.Status)
	}
	return nil
}

// ListAnimals fetches the livestock records of the caller's farm. Requires
// an authorized session; the transport attaches the stored token.
func (c *Client) ListAnimals(ctx context.Context) ([]model.Animal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/animals", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: unwrapURLError(err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, transport.ResponseError(resp)
	}
	defer resp.Body.Close()
	var out struct {
		Data []model.Animal `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode animals: %w", err)
	}
	return out.Data, nil
}
