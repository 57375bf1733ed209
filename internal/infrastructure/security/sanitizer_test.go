package security

import (
	"net/http"
	"testing"
)

func TestSanitizeHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Set("Authorization", "Bearer abc")
	headers.Set("Apikey", "anon-key")
	headers.Add("Accept", "application/json")
	headers.Add("Accept", "text/plain")

	got := SanitizeHeaders(headers)

	if got["Authorization"] != redactedValue {
		t.Errorf("expected Authorization redacted, got %q", got["Authorization"])
	}
	if got["Apikey"] != redactedValue {
		t.Errorf("expected Apikey redacted, got %q", got["Apikey"])
	}
	if got["Accept"] != "application/json, text/plain" {
		t.Errorf("unexpected Accept value %q", got["Accept"])
	}
}

func TestMaskDPI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2545678900101", "*********0101"},
		{"2545 67890 0101", "*********0101"},
		{"123", "***"},
		{"", "***"},
	}
	for _, tt := range tests {
		if got := MaskDPI(tt.in); got != tt.want {
			t.Errorf("MaskDPI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMaskPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"5555-1234", "*******34"},
		{"1234", "***"},
	}
	for _, tt := range tests {
		if got := MaskPhone(tt.in); got != tt.want {
			t.Errorf("MaskPhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"maria@example.com", "ma***@example.com"},
		{"al@example.com", "al***@example.com"},
		{"sin-arroba", "***"},
		{"@example.com", "***"},
	}
	for _, tt := range tests {
		if got := MaskEmail(tt.in); got != tt.want {
			t.Errorf("MaskEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
