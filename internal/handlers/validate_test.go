package handlers

import (
	"strings"
	"testing"
)

func TestValidateCreate(t *testing.T) {
	validURL := "https://cdn.example.com/banner.jpg"

	tests := []struct {
		name      string
		title     string
		subtitle  string
		body      string
		bannerURL string
		wantError bool
	}{
		{"valid", "My Title", "A subtitle", "Body text", validURL, false},
		{"empty title", "", "sub", "body", validURL, true},
		{"whitespace title", "   ", "sub", "body", validURL, true},
		{"title too long", strings.Repeat("a", 301), "sub", "body", validURL, true},
		{"empty subtitle", "title", "", "body", validURL, true},
		{"subtitle too long", "title", strings.Repeat("a", 501), "body", validURL, true},
		{"empty body", "title", "sub", "", validURL, true},
		{"body too long", "title", "sub", strings.Repeat("a", 100_001), validURL, true},
		{"empty banner url", "title", "sub", "body", "", true},
		{"relative banner url", "title", "sub", "body", "/images/banner.jpg", true},
		{"non-http scheme", "title", "sub", "body", "ftp://example.com/banner.jpg", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateCreate(tt.title, tt.subtitle, tt.body, tt.bannerURL)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantError bool
	}{
		{"https", "https://example.com/a.jpg", false},
		{"http", "http://example.com/a.jpg", false},
		{"missing scheme", "example.com/a.jpg", true},
		{"missing host", "https:///a.jpg", true},
		{"relative path", "/a.jpg", true},
		{"too long", "https://example.com/" + strings.Repeat("a", 2_000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateURL(tt.raw)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}
