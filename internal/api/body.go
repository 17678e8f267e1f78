package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"
)

// readBody drains and closes a response body, capped at 1 MiB.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

// replayBody puts an already-read body back on the response so it can be
// consumed again by transport.ResponseError.
func replayBody(resp *http.Response, raw []byte) *http.Response {
	resp.Body = io.NopCloser(bytes.NewReader(raw))
	return resp
}

// unwrapURLError strips the *url.Error wrapper http.Client puts around
// round-trip failures, keeping error messages readable.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}
