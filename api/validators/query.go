package validators

import (
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	pkgerrors "github.com/paintqueue/paintqueue-backend/pkg/errors"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseQueryBool accepts only the literal "true"; anything else is false.
func ParseQueryBool(r *http.Request, key string) bool {
	return strings.TrimSpace(r.URL.Query().Get(key)) == "true"
}

// QueryString returns the trimmed query value. Values longer than maxLen
// runes are rejected rather than shortened; maxLen <= 0 means unbounded.
func QueryString(r *http.Request, key string, maxLen int) (string, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if maxLen > 0 && utf8.RuneCountInString(value) > maxLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter too long").WithDetails(map[string]any{"field": key, "max": maxLen})
	}
	return value, nil
}
