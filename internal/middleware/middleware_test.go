package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KyleBrandon/vzero-dashboard/internal/transport"
)

func newTestMiddleware(t *testing.T, handler http.HandlerFunc) (*Client, *[]*http.Request) {
	t.Helper()

	requests := make([]*http.Request, 0)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	return NewClient(srv.URL+"/middleware.php/", time.Second), &requests
}

func TestChannelsByOwner(t *testing.T) {
	t.Run("should return the matching entity", func(t *testing.T) {
		c, requests := newTestMiddleware(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"version":"0.3","entities":[{"uuid":"X","type":"temperature"}]}`))
		})

		lookup, err := c.ChannelsByOwner(context.Background(), "abc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if uuid, ok := lookup.Match(); !ok || uuid != "X" {
			t.Errorf("expected match X, got %q %v", uuid, ok)
		}

		if (*requests)[0].URL.Path != "/middleware.php/iot/abc.json" {
			t.Errorf("unexpected path %s", (*requests)[0].URL.Path)
		}
	})

	t.Run("should treat several entities as no match", func(t *testing.T) {
		c, _ := newTestMiddleware(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"entities":[{"uuid":"X"},{"uuid":"Y"}]}`))
		})

		lookup, err := c.ChannelsByOwner(context.Background(), "abc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, ok := lookup.Match(); ok {
			t.Error("expected no match for two entities")
		}

		if !lookup.Compatible {
			t.Error("expected a compatible middleware")
		}
	})

	t.Run("should flag a middleware without an entities list", func(t *testing.T) {
		c, _ := newTestMiddleware(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"version":"0.2"}`))
		})

		lookup, err := c.ChannelsByOwner(context.Background(), "abc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !errors.Is(lookup.Check(), ErrIncompatible) {
			t.Error("expected an incompatible middleware")
		}
	})

	t.Run("should flag an exception from an older middleware as incompatible", func(t *testing.T) {
		c, _ := newTestMiddleware(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"exception":{"type":"Exception","message":"Unknown context: 'iot'"}}`))
		})

		lookup, err := c.ChannelsByOwner(context.Background(), "abc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if lookup.Compatible {
			t.Error("expected an incompatible middleware")
		}
	})

	t.Run("should fail when the middleware is unreachable", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1/middleware.php", 100*time.Millisecond)

		if _, err := c.ChannelsByOwner(context.Background(), "abc"); !errors.Is(err, transport.ErrTransport) {
			t.Errorf("expected transport failure, got %v", err)
		}
	})
}

func TestCreateChannel(t *testing.T) {
	req := ChannelRequest{Type: "temperature", Title: "28-17B6", Owner: "abc"}

	t.Run("should create a channel", func(t *testing.T) {
		c, requests := newTestMiddleware(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"entity":{"uuid":"X","type":"temperature"}}`))
		})

		uuid, err := c.CreateChannel(context.Background(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if uuid != "X" {
			t.Errorf("expected uuid X, got %s", uuid)
		}

		q := (*requests)[0].URL.Query()
		expected := map[string]string{
			"operation":  "add",
			"type":       "temperature",
			"title":      "28-17B6",
			"owner":      "abc",
			"style":      "lines",
			"resolution": "1",
		}
		for k, v := range expected {
			if q.Get(k) != v {
				t.Errorf("expected %s=%s, got %s", k, v, q.Get(k))
			}
		}

		if (*requests)[0].URL.Path != "/middleware.php/channel.json" {
			t.Errorf("unexpected path %s", (*requests)[0].URL.Path)
		}
	})

	t.Run("should return the middleware exception", func(t *testing.T) {
		c, _ := newTestMiddleware(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"exception":{"message":"Invalid type"}}`))
		})

		_, err := c.CreateChannel(context.Background(), req)

		var exception *ExceptionError
		if !errors.As(err, &exception) || exception.Message != "Invalid type" {
			t.Errorf("expected exception 'Invalid type', got %v", err)
		}
	})

	t.Run("should reject a response without an entity", func(t *testing.T) {
		c, _ := newTestMiddleware(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		})

		if _, err := c.CreateChannel(context.Background(), req); !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("expected malformed response, got %v", err)
		}
	})
}

func TestDeleteChannel(t *testing.T) {
	t.Run("should delete a channel", func(t *testing.T) {
		c, requests := newTestMiddleware(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		})

		if err := c.DeleteChannel(context.Background(), "X"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		r := (*requests)[0]
		if r.URL.Path != "/middleware.php/channel/X.json" || r.URL.Query().Get("operation") != "delete" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
	})

	t.Run("should return the middleware exception", func(t *testing.T) {
		c, _ := newTestMiddleware(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"exception":{"message":"Invalid UUID"}}`))
		})

		var exception *ExceptionError
		if err := c.DeleteChannel(context.Background(), "X"); !errors.As(err, &exception) {
			t.Errorf("expected exception, got %v", err)
		}
	})

	t.Run("should fail on a server error without payload", func(t *testing.T) {
		c, _ := newTestMiddleware(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		if err := c.DeleteChannel(context.Background(), "X"); !errors.Is(err, transport.ErrTransport) {
			t.Errorf("expected transport failure, got %v", err)
		}
	})
}

func TestURLs(t *testing.T) {
	t.Run("should normalize the base url", func(t *testing.T) {
		if got := NormalizeBaseURL(""); got != DefaultBaseURL {
			t.Errorf("expected default, got %s", got)
		}
		if got := NormalizeBaseURL("http://host/middleware.php/"); got != "http://host/middleware.php" {
			t.Errorf("expected trailing slash stripped, got %s", got)
		}
	})

	t.Run("should derive the frontend", func(t *testing.T) {
		tests := map[string]string{
			DefaultBaseURL:               "http://localhost:8888/vz/htdocs/frontend",
			DemoBaseURL:                  "http://demo.volkszaehler.org/frontend",
			"http://host/vz/":            "http://host/vz/frontend",
			"http://host/vz/middleware/": "http://host/vz/frontend",
		}
		for base, expected := range tests {
			if got := FrontendURL(base); got != expected {
				t.Errorf("base %s: expected %s, got %s", base, expected, got)
			}
		}
	})

	t.Run("should link several channels", func(t *testing.T) {
		got := MonitorURL(DemoBaseURL, "X", "Y")
		if got != "http://demo.volkszaehler.org/frontend?uuid[]=X&uuid[]=Y" {
			t.Errorf("unexpected monitor url %s", got)
		}
	})

	t.Run("should follow a changed base url", func(t *testing.T) {
		c := NewClient("", time.Second)
		c.SetBaseURL(DemoBaseURL + "/")

		if !strings.HasSuffix(c.FrontendURL(), "/frontend") || c.BaseURL() != DemoBaseURL {
			t.Errorf("unexpected base %s", c.BaseURL())
		}
	})
}
