package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/KyleBrandon/vzero-dashboard/internal/metrics"
	"github.com/KyleBrandon/vzero-dashboard/internal/transport"
)

// Client talks to a volkszaehler middleware. The base URL may change at runtime when the
// device reports a new middleware setting.
type Client struct {
	mu         sync.RWMutex
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    NormalizeBaseURL(baseURL),
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

func (c *Client) SetBaseURL(raw string) {
	base := NormalizeBaseURL(raw)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.baseURL != base {
		slog.Info("middleware changed", "from", c.baseURL, "to", base)
		c.baseURL = base
	}
}

func (c *Client) FrontendURL() string {
	return FrontendURL(c.BaseURL())
}

// ChannelsByOwner looks up the channels tagged with the owner hash.
func (c *Client) ChannelsByOwner(ctx context.Context, owner string) (Lookup, error) {
	slog.Debug(">>ChannelsByOwner", "owner", owner)
	defer slog.Debug("<<ChannelsByOwner")

	var resp response
	u := c.BaseURL() + "/iot/" + url.PathEscape(owner) + ".json"
	if err := c.get(ctx, "lookup", u, &resp); err != nil {
		return Lookup{}, err
	}

	if resp.Entities == nil {
		return Lookup{Compatible: false}, nil
	}

	return Lookup{Entities: *resp.Entities, Compatible: true}, nil
}

// CreateChannel adds a channel and returns its uuid.
func (c *Client) CreateChannel(ctx context.Context, req ChannelRequest) (string, error) {
	slog.Debug(">>CreateChannel", "type", req.Type, "title", req.Title, "owner", req.Owner)
	defer slog.Debug("<<CreateChannel")

	params := url.Values{}
	params.Set("operation", "add")
	params.Set("type", req.Type)
	params.Set("title", req.Title)
	params.Set("owner", req.Owner)
	params.Set("style", CHANNEL_STYLE)
	params.Set("resolution", strconv.Itoa(CHANNEL_RESOLUTION))

	var resp response
	if err := c.get(ctx, "create", c.BaseURL()+"/channel.json?"+params.Encode(), &resp); err != nil {
		return "", err
	}

	if resp.Exception != nil {
		return "", &ExceptionError{Type: resp.Exception.Type, Message: resp.Exception.Message}
	}

	if resp.Entity == nil || resp.Entity.UUID == "" {
		return "", ErrMalformedResponse
	}

	return resp.Entity.UUID, nil
}

// DeleteChannel removes a channel. An exception payload is returned as *ExceptionError, a
// failed request as a transport error.
func (c *Client) DeleteChannel(ctx context.Context, uuid string) error {
	slog.Debug(">>DeleteChannel", "uuid", uuid)
	defer slog.Debug("<<DeleteChannel")

	var resp response
	u := c.BaseURL() + "/channel/" + url.PathEscape(uuid) + ".json?operation=delete"
	if err := c.get(ctx, "delete", u, &resp); err != nil {
		return err
	}

	if resp.Exception != nil {
		return &ExceptionError{Type: resp.Exception.Type, Message: resp.Exception.Message}
	}

	return nil
}

// get performs a middleware request. Error statuses that still carry an exception payload are
// decoded into resp so callers see the middleware's message instead of a bare status. Such a
// response is an answer, not a transport failure: for an owner lookup it marks a middleware
// without the iot context, and Connect degrades to creating a channel. Only errors without an
// exception body reach callers as ErrTransport.
func (c *Client) get(ctx context.Context, operation string, u string, resp *response) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.MiddlewareRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	err := transport.GetJSON(ctx, c.httpClient, u, resp)
	if err == nil {
		return nil
	}

	var statusErr *transport.StatusError
	if errors.As(err, &statusErr) {
		if jsonErr := json.Unmarshal(statusErr.Body, resp); jsonErr == nil && resp.Exception != nil {
			return nil
		}
	}

	return fmt.Errorf("middleware %s: %w", operation, err)
}
