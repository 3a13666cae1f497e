// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"inkwell/internal/models"
)

// TaxonomyStore reads the fixed tag and topic vocabularies. The API never
// writes to these tables; the seed owns them.
type TaxonomyStore struct {
	db *sql.DB
}

// NewTaxonomyStore creates a new TaxonomyStore with the given database connection.
func NewTaxonomyStore(db *sql.DB) *TaxonomyStore {
	return &TaxonomyStore{db: db}
}

// ListTags returns all tag values, ordered alphabetically.
func (s *TaxonomyStore) ListTags() ([]models.Tag, error) {
	rows, err := s.db.Query(`SELECT id, value, label FROM tags ORDER BY value`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Value, &t.Label); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// ListTopics returns all topic values, ordered alphabetically.
func (s *TaxonomyStore) ListTopics() ([]models.Topic, error) {
	rows, err := s.db.Query(`SELECT id, value, label FROM topics ORDER BY value`)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		var t models.Topic
		if err := rows.Scan(&t.ID, &t.Value, &t.Label); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}
