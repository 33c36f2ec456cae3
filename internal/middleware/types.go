package middleware

import (
	"errors"
	"fmt"
)

const (
	DefaultBaseURL = "http://localhost:8888/vz/htdocs/middleware.php"
	DemoBaseURL    = "http://demo.volkszaehler.org/middleware.php"
)

const (
	CHANNEL_STYLE      = "lines"
	CHANNEL_RESOLUTION = 1
)

var (
	// ErrMalformedResponse is returned when a success response lacks the expected entity.
	ErrMalformedResponse = errors.New("malformed middleware response")
	ErrIncompatible      = errors.New("middleware does not support owner lookup")
)

type (
	Entity struct {
		UUID  string `json:"uuid"`
		Type  string `json:"type,omitempty"`
		Title string `json:"title,omitempty"`
	}

	Exception struct {
		Type    string `json:"type,omitempty"`
		Message string `json:"message"`
	}

	// response covers every payload shape the middleware answers with.
	response struct {
		Entities  *[]Entity  `json:"entities"`
		Entity    *Entity    `json:"entity"`
		Exception *Exception `json:"exception"`
	}

	// Lookup is the result of a channel lookup by owner. Compatible is false when the
	// middleware answered without an entities list, which older middleware versions do.
	Lookup struct {
		Entities   []Entity
		Compatible bool
	}

	ChannelRequest struct {
		Type  string
		Title string
		Owner string
	}

	// ExceptionError is an application-level failure reported by the middleware.
	ExceptionError struct {
		Type    string
		Message string
	}
)

func (e *ExceptionError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("middleware exception %s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("middleware exception: %s", e.Message)
}

// Match returns the uuid of the only channel found. More than one match is ambiguous and
// reported as no match.
func (l Lookup) Match() (string, bool) {
	if len(l.Entities) == 1 && l.Entities[0].UUID != "" {
		return l.Entities[0].UUID, true
	}
	return "", false
}

// Check returns ErrIncompatible when the lookup came from a middleware without owner support.
func (l Lookup) Check() error {
	if !l.Compatible {
		return ErrIncompatible
	}
	return nil
}
