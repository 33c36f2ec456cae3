package middleware

import (
	"net/url"
	"strings"
)

// NormalizeBaseURL applies the default middleware and strips trailing slashes.
func NormalizeBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		base = DefaultBaseURL
	}

	return strings.TrimRight(base, "/")
}

// FrontendURL derives the frontend location from a middleware base: everything from the
// "middleware" segment on is replaced by "/frontend".
func FrontendURL(base string) string {
	fe := NormalizeBaseURL(base)

	if i := strings.Index(fe, "middleware"); i > 0 {
		fe = fe[:i-1]
	} else if i == 0 {
		fe = ""
	}

	return strings.TrimRight(fe, "/") + "/frontend"
}

// MonitorURL links the frontend to one or more channels.
func MonitorURL(base string, uuids ...string) string {
	fe := FrontendURL(base)
	if len(uuids) == 0 {
		return fe
	}

	params := make([]string, 0, len(uuids))
	for _, u := range uuids {
		params = append(params, "uuid[]="+url.QueryEscape(u))
	}

	return fe + "?" + strings.Join(params, "&")
}
