package deviceapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/KyleBrandon/vzero-dashboard/internal/transport"
)

// Client talks to the HTTP API of a VZero device.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetPlugins enumerates the device plugins and their sensors.
func (c *Client) GetPlugins(ctx context.Context) ([]Plugin, error) {
	slog.Debug(">>GetPlugins")
	defer slog.Debug("<<GetPlugins")

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	plugins := make([]Plugin, 0)
	if err := transport.GetJSON(ctx, c.httpClient, c.baseURL+"/api/plugins", &plugins); err != nil {
		return nil, fmt.Errorf("device plugins: %w", err)
	}

	return plugins, nil
}

// GetStatus reads the device heartbeat. initial requests the identity fields as well.
func (c *Client) GetStatus(ctx context.Context, initial bool) (Status, error) {
	slog.Debug(">>GetStatus", "initial", initial)
	defer slog.Debug("<<GetStatus")

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + "/api/status"
	if initial {
		u += "?initial=1"
	}

	var status Status
	if err := transport.GetJSON(ctx, c.httpClient, u, &status); err != nil {
		return Status{}, fmt.Errorf("device status: %w", err)
	}

	return status, nil
}

// SetSensorUUID binds a middleware channel to a sensor. An empty uuid clears the binding.
func (c *Client) SetSensorUUID(ctx context.Context, plugin, addr, uuid string) error {
	slog.Debug(">>SetSensorUUID", "plugin", plugin, "addr", addr, "uuid", uuid)
	defer slog.Debug("<<SetSensorUUID")

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("uuid", uuid)
	u := fmt.Sprintf("%s/api/%s/%s?%s", c.baseURL, url.PathEscape(plugin), url.PathEscape(addr), params.Encode())

	var resp updateResponse
	if err := transport.GetJSON(ctx, c.httpClient, u, &resp); err != nil {
		return fmt.Errorf("device update of %s/%s: %w", plugin, addr, err)
	}

	if resp.Error != "" {
		return fmt.Errorf("%w: %s", ErrRejected, resp.Error)
	}

	return nil
}
