// Package redact masks plaintext messages and credentials before they are
// written to audit logs.
package redact

import (
	"fmt"
	"regexp"
	"strings"
)

const redactedSecret = "[REDACTED_SECRET]"

// MessageKeys are metadata keys whose values are always plaintext and are
// replaced wholesale, keeping only their length.
var MessageKeys = []string{"message", "plaintext", "recovered", "input", "output", "text"}

type stringer interface {
	String() string
}

var (
	emailRe    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	kvSecretRe = regexp.MustCompile(`(?i)((?:api|token|secret|key|password)[-_ ]*(?:id|key|token)?\s*[:=]\s*)(['\"]?)([A-Za-z0-9+/=_\-]{8,})(['\"]?)`)
	bearerRe   = regexp.MustCompile(`(?i)\b(bearer|token)\s+([A-Za-z0-9._\-]{10,})`)
	jwtRe      = regexp.MustCompile(`\beyJ[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+`)
)

// Message returns the mask used in place of a plaintext message.
func Message(msg string) string {
	return fmt.Sprintf("[REDACTED_MESSAGE len=%d]", len([]rune(msg)))
}

// String redacts credentials and e-mail addresses from the provided string.
func String(in string) string {
	if strings.TrimSpace(in) == "" {
		return in
	}
	masked := emailRe.ReplaceAllString(in, "[REDACTED_EMAIL]")
	masked = jwtRe.ReplaceAllString(masked, redactedSecret)
	masked = kvSecretRe.ReplaceAllString(masked, `$1$2[REDACTED_SECRET]$4`)
	masked = bearerRe.ReplaceAllString(masked, `$1 [REDACTED_SECRET]`)
	return masked
}

// Interface redacts recognised sensitive values within nested structures.
func Interface(value any) any {
	switch v := value.(type) {
	case string:
		return String(v)
	case stringer:
		return String(v.String())
	case []string:
		return Slice(v)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = Interface(elem)
		}
		return out
	case map[string]string:
		return MapString(v)
	case map[string]any:
		return Map(v)
	default:
		return value
	}
}

// Map redacts a metadata map. Values under MessageKeys are replaced by
// Message; everything else goes through Interface.
func Map(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		if isMessageKey(k) {
			out[k] = Message(fmt.Sprint(v))
			continue
		}
		out[k] = Interface(v)
	}
	return out
}

// MapString is Map for string maps.
func MapString(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		if isMessageKey(k) {
			out[k] = Message(v)
			continue
		}
		out[k] = String(v)
	}
	return out
}

// Slice redacts sensitive values within a slice of strings.
func Slice(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = String(v)
	}
	return out
}

func isMessageKey(key string) bool {
	key = strings.TrimSpace(key)
	for _, k := range MessageKeys {
		if strings.EqualFold(key, k) {
			return true
		}
	}
	return false
}
