package validators

import (
	"net/http"
	"strconv"
	"strings"
)

// QueryString returns a trimmed query parameter value.
func QueryString(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}

// QueryBool parses a boolean query parameter, defaulting to false.
func QueryBool(r *http.Request, name string) bool {
	value, err := strconv.ParseBool(QueryString(r, name))
	if err != nil {
		return false
	}
	return value
}

// QueryInt parses an integer query parameter, returning fallback on absence
// or parse failure.
func QueryInt(r *http.Request, name string, fallback int) int {
	raw := QueryString(r, name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
