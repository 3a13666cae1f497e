// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package client

import (
	"github.com/google/uuid"

	"inkwell/internal/models"
)

// EntityCache holds the normalized view of every blog record the session
// has seen: a flat id→record map. Repeated fetches of the same record
// overwrite the stored copy (last write wins), so all listing contexts
// referencing an id observe the latest known version.
//
// It is not safe for concurrent use; callers confine access to the
// session goroutine, the same way a browser store lives on the UI event
// loop.
type EntityCache struct {
	entities map[uuid.UUID]models.Blog
}

// NewEntityCache creates an empty entity cache.
func NewEntityCache() *EntityCache {
	return &EntityCache{entities: make(map[uuid.UUID]models.Blog)}
}

// MergeRecords upserts every record and returns the ids that were not
// previously known, preserving input order. Merging the same records
// twice yields identical cache state and an empty new-id result the
// second time.
func (c *EntityCache) MergeRecords(records []models.Blog) []uuid.UUID {
	var newIDs []uuid.UUID
	for _, rec := range records {
		if _, known := c.entities[rec.ID]; !known {
			newIDs = append(newIDs, rec.ID)
		}
		c.entities[rec.ID] = rec
	}
	return newIDs
}

// Get returns the cached record for an id.
func (c *EntityCache) Get(id uuid.UUID) (models.Blog, bool) {
	rec, ok := c.entities[id]
	return rec, ok
}

// ListByIDs projects ids to records, silently dropping ids with no
// matching entry. Defensive against partial cache states — never fails.
func (c *EntityCache) ListByIDs(ids []uuid.UUID) []models.Blog {
	records := make([]models.Blog, 0, len(ids))
	for _, id := range ids {
		if rec, ok := c.entities[id]; ok {
			records = append(records, rec)
		}
	}
	return records
}

// All returns every cached record in unspecified order. Callers that
// need a stable presentation order sort the result themselves.
func (c *EntityCache) All() []models.Blog {
	records := make([]models.Blog, 0, len(c.entities))
	for _, rec := range c.entities {
		records = append(records, rec)
	}
	return records
}

// Remove deletes a record, used to roll back optimistic inserts.
func (c *EntityCache) Remove(id uuid.UUID) {
	delete(c.entities, id)
}

// Len returns the number of cached records.
func (c *EntityCache) Len() int {
	return len(c.entities)
}

// Reset clears the cache. Called when the session's view is torn down.
func (c *EntityCache) Reset() {
	c.entities = make(map[uuid.UUID]models.Blog)
}
