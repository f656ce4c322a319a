// Package dispatcher implements the RPC Dispatcher (spec.md §4.E): a
// name-to-handler registry reachable identically from the CLI's invoke
// subcommand and the HTTP Gateway's /api/invoke endpoint, with a single
// casing-normalization pass so handlers never have to tolerate camelCase vs
// snake_case argument keys themselves.
//
// Grounded on original_source/src-tauri/src/web.rs's invoke command match
// and its str_arg_from/array_arg_from helpers (direct key lookup against an
// ordered key-alias list). Normalization is moved up front here instead of
// repeated per handler, per spec.md §9's recommendation.
package dispatcher

import (
	"fmt"
	"unicode"

	"github.com/Vg34100/agent-board/internal/domain"
)

// Args is a request's arguments after normalization: every key is present
// under its canonical snake_case form regardless of which casing the caller
// used.
type Args map[string]any

// String returns args[key] as a string.
func (a Args) String(key string) (string, bool) {
	v, ok := a[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// StringOr returns args[key] as a string, or def if absent or not a string.
func (a Args) StringOr(key, def string) string {
	if s, ok := a.String(key); ok {
		return s
	}
	return def
}

// RequireString returns args[key] as a string, or a wrapped
// ErrMissingArgument naming key.
func (a Args) RequireString(key string) (string, error) {
	s, ok := a.String(key)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrMissingArgument, key)
	}
	return s, nil
}

// Array returns args[key] as a slice.
func (a Args) Array(key string) ([]any, bool) {
	v, ok := a[key]
	if !ok {
		return nil, false
	}
	arr, ok := v.([]any)
	return arr, ok
}

// RequireArray returns args[key] as a slice, or a wrapped
// ErrMissingArgument naming key.
func (a Args) RequireArray(key string) ([]any, error) {
	arr, ok := a.Array(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingArgument, key)
	}
	return arr, nil
}

// Bool returns args[key] as a bool.
func (a Args) Bool(key string) (bool, bool) {
	v, ok := a[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Raw returns the value stored at args[key] unconverted, e.g. to pass a
// nested object or array through to json.Marshal/Unmarshal unchanged.
func (a Args) Raw(key string) (any, bool) {
	v, ok := a[key]
	return v, ok
}

// normalizeArgs returns a copy of raw with every key mirrored under both its
// camelCase and snake_case spelling, so handlers can always read the
// canonical snake_case key regardless of which casing the caller sent.
func normalizeArgs(raw map[string]any) Args {
	out := make(Args, len(raw)*2)
	for k, v := range raw {
		out[k] = v
		out[toSnakeCase(k)] = v
		out[toCamelCase(k)] = v
	}
	return out
}

func toSnakeCase(s string) string {
	var b []rune
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b = append(b, '_')
			}
			b = append(b, unicode.ToLower(r))
			continue
		}
		b = append(b, r)
	}
	return string(b)
}

func toCamelCase(s string) string {
	var b []rune
	upperNext := false
	for _, r := range s {
		if r == '_' {
			upperNext = true
			continue
		}
		if upperNext {
			b = append(b, unicode.ToUpper(r))
			upperNext = false
			continue
		}
		b = append(b, r)
	}
	return string(b)
}
