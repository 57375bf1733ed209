package security

import (
	"net/http"
	"strings"
)

var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"apikey":              true,
	"x-api-key":           true,
	"proxy-authorization": true,
}

const redactedValue = "[REDACTED]"

// SanitizeHeaders flattens headers for logging, redacting credentials.
func SanitizeHeaders(headers http.Header) map[string]string {
	sanitized := make(map[string]string, len(headers))
	for key, values := range headers {
		if sensitiveHeaders[strings.ToLower(key)] {
			sanitized[key] = redactedValue
			continue
		}
		sanitized[key] = strings.Join(values, ", ")
	}
	return sanitized
}

// MaskDPI keeps the last four digits of a national id.
func MaskDPI(dpi string) string {
	digits := make([]rune, 0, len(dpi))
	for _, r := range dpi {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) <= 4 {
		return "***"
	}
	return strings.Repeat("*", len(digits)-4) + string(digits[len(digits)-4:])
}

// MaskPhone keeps the last two characters of a phone number.
func MaskPhone(phone string) string {
	runes := []rune(phone)
	n := len(runes)
	if n <= 4 {
		return "***"
	}
	masked := make([]rune, n)
	for i := range runes {
		if i >= n-2 {
			masked[i] = runes[i]
		} else {
			masked[i] = '*'
		}
	}
	return string(masked)
}

// MaskEmail keeps the first two characters of the local part and the domain.
func MaskEmail(email string) string {
	runes := []rune(email)
	at := -1
	for i, r := range runes {
		if r == '@' {
			at = i
			break
		}
	}
	if at <= 0 {
		return "***"
	}
	local := runes[:at]
	domain := string(runes[at:])
	if len(local) <= 2 {
		return string(local) + "***" + domain
	}
	return string(local[:2]) + "***" + domain
}
