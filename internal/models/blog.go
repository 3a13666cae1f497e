// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Blog represents a published content item. The Slug is derived from the
// title at creation time and never changes afterwards; the ID is stable
// for the record's lifetime.
type Blog struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	Body      string    `json:"body"`
	BannerURL string    `json:"banner_url"`
	VideoURL  *string   `json:"video_url,omitempty"`
	Tags      []string  `json:"tags"`
	Topics    []string  `json:"topics"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// BodyHTML is populated on detail responses only: the markdown body
	// rendered to sanitized HTML with syntax-highlighted code blocks.
	BodyHTML string `json:"body_html,omitempty"`
}

// HasTag reports whether the blog carries the given tag value.
func (b *Blog) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasTopic reports whether the blog carries the given topic value.
func (b *Blog) HasTopic(topic string) bool {
	for _, t := range b.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

// Pagination describes the paging bookkeeping attached to every listing
// response. TotalPages and TotalItems are authoritative only from the
// latest server response for the active filter.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalItems  int `json:"total_items"`
	PageSize    int `json:"page_size"`
}

// BlogPage is a single page of listing results.
type BlogPage struct {
	Items      []Blog     `json:"items"`
	Pagination Pagination `json:"pagination"`
}
