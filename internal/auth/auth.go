package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/vzero-dashboard/pkg/utils"
)

var (
	ErrNoAuthHeader  = errors.New("authorization header not found")
	ErrInvalidApiKey = errors.New("invalid api key")
)

func ParseApiKey(r *http.Request) (string, error) {

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrNoAuthHeader
	}

	var apiKey string
	n, err := fmt.Sscanf(authHeader, "ApiKey %s", &apiKey)
	if n != 1 || err != nil {
		return "", ErrNoAuthHeader
	}

	return apiKey, nil
}

// RequireApiKey guards a handler with the configured api key. An empty key leaves the
// handler open.
func RequireApiKey(apiKey string, next http.HandlerFunc) http.HandlerFunc {
	if apiKey == "" {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		key, err := ParseApiKey(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusForbidden, "Missing api key", err)
			return
		}

		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			slog.Warn("rejected api key", "path", r.URL.Path)
			utils.RespondWithError(w, http.StatusForbidden, "Invalid api key", ErrInvalidApiKey)
			return
		}

		next(w, r)
	}
}
