package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// DefaultProbeURL answers 204 with no body and is reachable from anywhere
// with internet access.
const DefaultProbeURL = "https://clients3.google.com/generate_204"

const probeTimeout = 3 * time.Second

// classifyTransportFailure runs the connectivity probe and wraps the
// original error accordingly. The distinction is for user messaging only; it
// changes no state.
func (t *AuthTransport) classifyTransportFailure(cause error) error {
	probeURL := t.ProbeURL
	if probeURL == "" {
		probeURL = DefaultProbeURL
	}
	if probeReachable(probeURL) {
		return &ServerUnreachableError{Err: cause}
	}
	return &NoConnectivityError{Err: cause}
}

// probeReachable issues a short HEAD request against the probe host. Any
// response, whatever the status, proves connectivity.
func probeReachable(url string) bool {
	client := &http.Client{Timeout: probeTimeout}
	req, err := http.NewRequest(http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// apiMessage is the failure envelope shape shared by API error bodies.
type apiMessage struct {
	Message string `json:"message"`
}

// ResponseError consumes the body of a non-2xx response and builds the
// matching *HTTPError. A 422 carries the server-side validation message in
// Message; every other status keeps its status text. The raw body stays
// available on the returned error.
func ResponseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()

	he := &HTTPError{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Message:    http.StatusText(resp.StatusCode),
		Body:       body,
	}
	if resp.StatusCode == http.StatusUnprocessableEntity {
		var m apiMessage
		if err := json.Unmarshal(body, &m); err == nil && m.Message != "" {
			he.Message = m.Message
		}
	}
	return he
}
