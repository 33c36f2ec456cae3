package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetJSON(t *testing.T) {
	t.Run("should decode a json response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"name":"1wire"}`))
		}))
		defer srv.Close()

		var out struct {
			Name string `json:"name"`
		}
		if err := GetJSON(context.Background(), srv.Client(), srv.URL, &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if out.Name != "1wire" {
			t.Errorf("expected name 1wire, got %s", out.Name)
		}
	})

	t.Run("should report a non-2xx status as a transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		err := GetJSON(context.Background(), srv.Client(), srv.URL, nil)
		if !errors.Is(err, ErrTransport) {
			t.Fatalf("expected transport failure, got %v", err)
		}

		var statusErr *StatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadRequest {
			t.Errorf("expected status error 400, got %v", err)
		}
	})

	t.Run("should report invalid json as a transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		}))
		defer srv.Close()

		var out map[string]interface{}
		if err := GetJSON(context.Background(), srv.Client(), srv.URL, &out); !errors.Is(err, ErrTransport) {
			t.Errorf("expected transport failure, got %v", err)
		}
	})

	t.Run("should honor the context deadline", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		if err := GetJSON(ctx, srv.Client(), srv.URL, nil); !errors.Is(err, ErrTransport) {
			t.Errorf("expected transport failure, got %v", err)
		}
	})
}
