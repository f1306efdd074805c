package logging

import (
	"log/slog"
	"strings"
)

// RedactedValue replaces the value of a redacted attribute.
const RedactedValue = "***"

// DefaultRedactKeys are the proxy credential fields found in Clash
// configurations.
var DefaultRedactKeys = []string{
	"password",
	"uuid",
	"psk",
	"private-key",
	"pre-shared-key",
	"auth-str",
	"token",
	"obfs-password",
}

// Redactor masks attribute values by key. Keys match case-insensitively
// and also inside groups.
type Redactor struct {
	keys map[string]struct{}
}

// NewRedactor creates a redactor for keys.
func NewRedactor(keys []string) *Redactor {
	r := &Redactor{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		r.keys[strings.ToLower(k)] = struct{}{}
	}
	return r
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr function.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if len(r.keys) == 0 {
		return a
	}
	if _, ok := r.keys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, RedactedValue)
	}
	return a
}

// RedactMap returns a copy of m with redacted keys masked, recursing into
// nested maps and sequences. It is used when a proxy entry is logged.
func (r *Redactor) RedactMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if _, ok := r.keys[strings.ToLower(k)]; ok {
			out[k] = RedactedValue
			continue
		}
		out[k] = r.redactValue(v)
	}
	return out
}

func (r *Redactor) redactValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return r.RedactMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = r.redactValue(e)
		}
		return out
	default:
		return v
	}
}
