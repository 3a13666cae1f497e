// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package client

import (
	"time"

	"github.com/google/uuid"
)

// DefaultQueryTTL is how long a fetched query result is considered fresh.
// It mirrors the server's response cache TTL.
const DefaultQueryTTL = 5 * time.Minute

// FilterKind selects which filter dimension is active. Exactly one is
// active at a time; None means the unfiltered listing.
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterTag
	FilterTopic
	FilterQuery
)

// Filter is the active filter of a listing context.
type Filter struct {
	Kind  FilterKind
	Value string
}

// Signature identifies one fetch: the listing filter plus paging. It is
// a comparable struct rather than a concatenated string so that a new
// result-affecting parameter cannot be silently left out of the key.
type Signature struct {
	Filter   Filter
	Page     int
	PageSize int
}

// queryEntry records when a signature was last fetched and which ids the
// response carried.
type queryEntry struct {
	ids       []uuid.UUID
	fetchedAt time.Time
}

// QueryCache memoizes which query signatures have been fetched recently.
// A fresh hit tells the caller to skip the network and trust the ids
// already merged for that context — which is only correct because the
// visible state was populated by the same signature; this is a session
// cache, not a general-purpose one.
//
// Not safe for concurrent use; session-goroutine confined.
type QueryCache struct {
	entries map[Signature]queryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewQueryCache creates a query cache with the given TTL. A zero TTL
// falls back to DefaultQueryTTL.
func NewQueryCache(ttl time.Duration) *QueryCache {
	if ttl == 0 {
		ttl = DefaultQueryTTL
	}
	return &QueryCache{
		entries: make(map[Signature]queryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Lookup returns the ids recorded for a signature and whether the entry
// is still fresh. Stale or missing entries report fresh=false and the
// caller must fetch.
func (c *QueryCache) Lookup(sig Signature) ([]uuid.UUID, bool) {
	entry, ok := c.entries[sig]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.fetchedAt) >= c.ttl {
		return nil, false
	}
	return entry.ids, true
}

// Store records the ids for a signature at the current time, overwriting
// any prior entry for the exact same signature.
func (c *QueryCache) Store(sig Signature, ids []uuid.UUID) {
	c.entries[sig] = queryEntry{ids: ids, fetchedAt: c.now()}
}

// Reset drops every memoized signature.
func (c *QueryCache) Reset() {
	c.entries = make(map[Signature]queryEntry)
}
