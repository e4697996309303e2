package logger

import "strings"

// RedactSession masks a session identifier for safe logging, keeping enough
// prefix to correlate entries: "2f1c9a4e-..." → "2f1c9a***".
// Identifiers of 6 chars or fewer are fully masked.
func RedactSession(id string) string {
	if len(id) <= 6 {
		return "***"
	}
	return id[:6] + "***"
}

func redactVisitorValue(key, val string) string {
	key = strings.ToLower(key)
	if strings.Contains(key, "session") || strings.Contains(key, "visitor") {
		return RedactSession(val)
	}
	if key == "ip" || strings.HasSuffix(key, "_ip") {
		// Drop the final octet of IPv4 addresses.
		if i := strings.LastIndex(val, "."); i > 0 {
			return val[:i] + ".x"
		}
	}
	return val
}
