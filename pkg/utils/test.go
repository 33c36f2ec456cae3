package utils

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestRequest routes a single request through a mux registered with the given pattern so
// path values are populated for the handler.
func TestRequest(t *testing.T, method string, pattern string, url string, body io.Reader, handler func(http.ResponseWriter, *http.Request)) *httptest.ResponseRecorder {
	return TestRequestWithHeaders(t, method, pattern, url, nil, body, handler)
}

func TestRequestWithHeaders(t *testing.T, method string, pattern string, url string, headers map[string][]string, body io.Reader, handler func(http.ResponseWriter, *http.Request)) *httptest.ResponseRecorder {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatal(err)
	}

	for k, v := range headers {
		for _, h := range v {
			req.Header.Add(k, h)
		}
	}

	rr := httptest.NewRecorder()
	router := http.NewServeMux()

	router.HandleFunc(method+" "+pattern, handler)

	router.ServeHTTP(rr, req)

	return rr
}

func TestExpectedStatus(t *testing.T, rr *httptest.ResponseRecorder, statusCode int) {
	t.Helper()
	if rr.Code != statusCode {
		t.Errorf("expected status code %d, got %d", statusCode, rr.Code)
	}
}

func TestExpectedMessage(t *testing.T, rr *httptest.ResponseRecorder, m string) {
	t.Helper()
	if !strings.Contains(rr.Body.String(), m) {
		t.Errorf("received message `%s`, expected message `%s`", rr.Body.String(), m)
	}
}
