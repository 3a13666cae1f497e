// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "github.com/google/uuid"

// Tag is a label from the fixed tag vocabulary. Tags are seeded by
// migration and only ever read by the application, never created or
// deleted through the API.
type Tag struct {
	ID    uuid.UUID `json:"id"`
	Value string    `json:"value"`
	Label string    `json:"label"`
}

// Topic is a label from the fixed topic vocabulary, parallel to Tag.
type Topic struct {
	ID    uuid.UUID `json:"id"`
	Value string    `json:"value"`
	Label string    `json:"label"`
}
