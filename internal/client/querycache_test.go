// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package client

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// fixedClock lets tests move the cache's notion of now.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) now() time.Time          { return c.t }
func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestQueryCache(ttl time.Duration) (*QueryCache, *fixedClock) {
	clock := &fixedClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	qc := NewQueryCache(ttl)
	qc.now = clock.now
	return qc, clock
}

func TestLookupMissingSignature(t *testing.T) {
	qc, _ := newTestQueryCache(0)
	sig := Signature{Filter: Filter{Kind: FilterTag, Value: "ai"}, Page: 1, PageSize: 10}

	if _, fresh := qc.Lookup(sig); fresh {
		t.Error("unseen signature reported fresh")
	}
}

func TestLookupFreshWithinTTL(t *testing.T) {
	qc, clock := newTestQueryCache(5 * time.Minute)
	sig := Signature{Page: 1, PageSize: 10}
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	qc.Store(sig, ids)

	clock.advance(4*time.Minute + 59*time.Second)
	got, fresh := qc.Lookup(sig)
	if !fresh {
		t.Fatal("entry stale at 4m59s with a 5m TTL")
	}
	if len(got) != 2 || got[0] != ids[0] {
		t.Errorf("ids: got %v, want %v", got, ids)
	}
}

func TestLookupStaleAtTTL(t *testing.T) {
	qc, clock := newTestQueryCache(5 * time.Minute)
	sig := Signature{Page: 1, PageSize: 10}
	qc.Store(sig, []uuid.UUID{uuid.New()})

	// Exactly at the TTL the entry is already stale: fresh means
	// strictly younger than the TTL.
	clock.advance(5 * time.Minute)
	if _, fresh := qc.Lookup(sig); fresh {
		t.Error("entry fresh at exactly the TTL")
	}

	clock.advance(time.Second)
	if _, fresh := qc.Lookup(sig); fresh {
		t.Error("entry fresh past the TTL")
	}
}

func TestSignaturesAreDistinctPerParameter(t *testing.T) {
	qc, _ := newTestQueryCache(5 * time.Minute)
	base := Signature{Filter: Filter{Kind: FilterTag, Value: "ai"}, Page: 1, PageSize: 10}
	qc.Store(base, []uuid.UUID{uuid.New()})

	variants := []Signature{
		{Filter: Filter{Kind: FilterTag, Value: "web"}, Page: 1, PageSize: 10},
		{Filter: Filter{Kind: FilterTopic, Value: "ai"}, Page: 1, PageSize: 10},
		{Filter: Filter{Kind: FilterTag, Value: "ai"}, Page: 2, PageSize: 10},
		{Filter: Filter{Kind: FilterTag, Value: "ai"}, Page: 1, PageSize: 20},
		{Page: 1, PageSize: 10},
	}
	for _, sig := range variants {
		if _, fresh := qc.Lookup(sig); fresh {
			t.Errorf("signature %+v unexpectedly shares an entry with %+v", sig, base)
		}
	}
}

func TestStoreOverwritesSameSignature(t *testing.T) {
	qc, clock := newTestQueryCache(5 * time.Minute)
	sig := Signature{Page: 1, PageSize: 10}

	qc.Store(sig, []uuid.UUID{uuid.New()})
	clock.advance(4 * time.Minute)

	replacement := []uuid.UUID{uuid.New(), uuid.New()}
	qc.Store(sig, replacement)

	// The rewrite restarts the TTL clock.
	clock.advance(2 * time.Minute)
	got, fresh := qc.Lookup(sig)
	if !fresh {
		t.Fatal("entry stale after re-store restarted the TTL")
	}
	if len(got) != 2 {
		t.Errorf("ids: got %d, want 2", len(got))
	}
}

func TestResetDropsAllEntries(t *testing.T) {
	qc, _ := newTestQueryCache(5 * time.Minute)
	sig := Signature{Page: 1, PageSize: 10}
	qc.Store(sig, []uuid.UUID{uuid.New()})

	qc.Reset()
	if _, fresh := qc.Lookup(sig); fresh {
		t.Error("entry survived Reset")
	}
}
