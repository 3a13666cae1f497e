// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import "strings"

// Generate creates a URL-friendly slug from the given string: lowercase
// ASCII letters, digits, and single hyphens. Anything else is dropped.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == ' ' || r == '-':
			// Runs of spaces and hyphens collapse to one separator, and
			// never lead or trail.
			pendingHyphen = true
		}
	}
	return b.String()
}
