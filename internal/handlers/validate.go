// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// Validation limits for blog fields.
const (
	maxTitleLen    = 300
	maxSubtitleLen = 500
	maxBodyLen     = 100_000
	maxURLLen      = 2_000
)

// validateCreate checks the required create fields and returns the first
// error found, or "" when the input is valid.
func validateCreate(title, subtitle, body, bannerURL string) string {
	if strings.TrimSpace(title) == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if strings.TrimSpace(subtitle) == "" {
		return "Subtitle is required."
	}
	if utf8.RuneCountInString(subtitle) > maxSubtitleLen {
		return "Subtitle is too long (max 500 characters)."
	}
	if strings.TrimSpace(body) == "" {
		return "Body is required."
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return "Body is too long (max 100,000 characters)."
	}
	if strings.TrimSpace(bannerURL) == "" {
		return "Banner image URL is required."
	}
	return validateURL(bannerURL)
}

// validateURL checks that the value parses as an absolute http(s) URL.
func validateURL(raw string) string {
	if utf8.RuneCountInString(raw) > maxURLLen {
		return "URL is too long (max 2,000 characters)."
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "URL must be an absolute http(s) URL."
	}
	return ""
}
