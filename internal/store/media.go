// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// MediaStore persists metadata for images uploaded to object storage.
type MediaStore struct {
	db *sql.DB
}

// NewMediaStore creates a new MediaStore with the given database connection.
func NewMediaStore(db *sql.DB) *MediaStore {
	return &MediaStore{db: db}
}

// Create inserts an uploaded media record and returns it with the
// generated ID and timestamp.
func (s *MediaStore) Create(m *models.Media) (*models.Media, error) {
	result := &models.Media{}
	err := s.db.QueryRow(`
		INSERT INTO media (original_name, content_type, size_bytes, s3_key, url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, original_name, content_type, size_bytes, s3_key, url, created_at
	`, m.OriginalName, m.ContentType, m.SizeBytes, m.S3Key, m.URL,
	).Scan(
		&result.ID, &result.OriginalName, &result.ContentType,
		&result.SizeBytes, &result.S3Key, &result.URL, &result.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create media: %w", err)
	}
	return result, nil
}

// FindByID retrieves a media record by its UUID. Returns nil if not found.
func (s *MediaStore) FindByID(id uuid.UUID) (*models.Media, error) {
	m := &models.Media{}
	err := s.db.QueryRow(`
		SELECT id, original_name, content_type, size_bytes, s3_key, url, created_at
		FROM media WHERE id = $1
	`, id).Scan(
		&m.ID, &m.OriginalName, &m.ContentType, &m.SizeBytes, &m.S3Key, &m.URL, &m.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find media by id: %w", err)
	}
	return m, nil
}
