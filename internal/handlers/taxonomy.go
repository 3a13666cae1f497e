// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"inkwell/internal/store"
)

// Taxonomy serves the fixed tag and topic vocabularies.
type Taxonomy struct {
	store *store.TaxonomyStore
}

// NewTaxonomy creates a new Taxonomy handler group.
func NewTaxonomy(taxonomyStore *store.TaxonomyStore) *Taxonomy {
	return &Taxonomy{store: taxonomyStore}
}

// Tags handles GET /api/v1/tags.
func (h *Taxonomy) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.store.ListTags()
	if err != nil {
		respondInternal(w, "list tags", err)
		return
	}
	respondJSON(w, http.StatusOK, tags)
}

// Topics handles GET /api/v1/topics.
func (h *Taxonomy) Topics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.store.ListTopics()
	if err != nil {
		respondInternal(w, "list topics", err)
		return
	}
	respondJSON(w, http.StatusOK, topics)
}
