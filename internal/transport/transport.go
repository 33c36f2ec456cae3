package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// ErrTransport marks a request that was rejected, timed out or answered with a non-2xx status.
var ErrTransport = errors.New("transport failure")

// StatusError is returned for non-2xx responses. The body is kept so callers can look for an
// error payload.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrTransport
}

// GetJSON issues a GET request and decodes the JSON response into out. out may be nil when the
// body is not needed.
func GetJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	slog.Debug(">>GetJSON", "url", url)
	defer slog.Debug("<<GetJSON", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	if out == nil || len(body) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrTransport, err)
	}

	return nil
}
