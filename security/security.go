package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// GenerateCSRFToken returns a random URL-safe token for form protection.
func GenerateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate CSRF token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ValidateContentType checks a request Content-Type header against an
// allow-list, ignoring any parameters such as boundary or charset.
func ValidateContentType(contentType string, allowed ...string) bool {
	base := strings.TrimSpace(strings.Split(contentType, ";")[0])
	for _, a := range allowed {
		if strings.EqualFold(base, a) {
			return true
		}
	}
	return false
}
