// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package client

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"inkwell/internal/models"
)

// FetchState is the per-context fetch lifecycle. Succeeded and Failed
// are resting states equivalent to Idle for the purpose of starting the
// next request; only Loading gates new fetches.
type FetchState int

const (
	StateIdle FetchState = iota
	StateLoading
	StateSucceeded
	StateFailed
)

// Pager coordinates pagination and infinite scroll for one listing
// context: it tracks current page against total pages, appends newly
// fetched ids to the ordered id list without duplication, and enforces
// at most one in-flight fetch per context.
//
// Every fetch carries a monotonic sequence number; a completion whose
// sequence is no longer the latest issued is discarded, so a slow early
// response can never overwrite the effect of a later one.
//
// Not safe for concurrent use; session-goroutine confined.
type Pager struct {
	api      API
	entities *EntityCache
	queries  *QueryCache
	filter   Filter
	pageSize int

	state       FetchState
	lastErr     string
	currentPage int
	totalPages  int
	totalItems  int
	loadedOnce  bool

	orderedIDs []uuid.UUID
	seen       map[uuid.UUID]bool

	lastSeq uint64
}

// NewPager creates a pager for a listing context. Nothing is fetched
// until LoadFirst or SentinelVisible is called.
func NewPager(api API, entities *EntityCache, queries *QueryCache, filter Filter, pageSize int) *Pager {
	return &Pager{
		api:      api,
		entities: entities,
		queries:  queries,
		filter:   filter,
		pageSize: pageSize,
		seen:     make(map[uuid.UUID]bool),
	}
}

// Filter returns the listing context's filter.
func (p *Pager) Filter() Filter { return p.filter }

// State returns the current fetch state.
func (p *Pager) State() FetchState { return p.state }

// LastError returns the message recorded by the most recent failure.
func (p *Pager) LastError() string { return p.lastErr }

// CurrentPage returns the latest reconciled page number (1-based, 0
// before the first fetch).
func (p *Pager) CurrentPage() int { return p.currentPage }

// TotalPages returns the page count from the latest response.
func (p *Pager) TotalPages() int { return p.totalPages }

// TotalItems returns the item count from the latest response.
func (p *Pager) TotalItems() int { return p.totalItems }

// OrderedIDs returns the ids of this context in first-seen order. Each
// id appears at most once no matter how often it recurs across pages.
func (p *Pager) OrderedIDs() []uuid.UUID { return p.orderedIDs }

// Exhausted reports whether every page has been fetched. Sentinel
// triggers are no-ops from then on. A listing with zero matches reports
// zero total pages and is exhausted after its first (empty) response.
// Before any response has arrived (including after adopting memoized
// ids) the listing is not considered exhausted.
func (p *Pager) Exhausted() bool {
	return p.loadedOnce && p.currentPage >= p.totalPages
}

// LoadFirst fetches page 1 of the context. A fresh query-cache hit
// short-circuits the network: the memoized ids are adopted if the
// context has none yet, otherwise the current state is trusted as-is.
func (p *Pager) LoadFirst(ctx context.Context) error {
	return p.fetchPage(ctx, 1)
}

// SentinelVisible is invoked when the infinite-scroll sentinel enters
// the viewport. It requests the next page unless a fetch is already in
// flight or the listing is exhausted.
func (p *Pager) SentinelVisible(ctx context.Context) error {
	if p.state == StateLoading || p.Exhausted() {
		return nil
	}
	return p.fetchPage(ctx, p.currentPage+1)
}

// Retry re-issues the fetch that last failed, with exponential backoff
// between attempts. The target page is unchanged because the failed
// fetch rolled its optimistic advance back.
func (p *Pager) Retry(ctx context.Context) error {
	if p.state == StateLoading {
		return nil
	}
	target := p.currentPage + 1
	if p.currentPage == 0 {
		target = 1
	}

	backoff := retry.WithMaxRetries(3, retry.NewExponential(200*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := p.fetchPage(ctx, target); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// fetchPage runs one page fetch synchronously: begin, network call,
// complete or fail.
func (p *Pager) fetchPage(ctx context.Context, page int) error {
	sig := Signature{Filter: p.filter, Page: page, PageSize: p.pageSize}
	if ids, fresh := p.queries.Lookup(sig); fresh {
		if len(p.orderedIDs) == 0 {
			p.appendIDs(ids)
			if p.currentPage < page {
				p.currentPage = page
			}
		}
		return nil
	}

	seq, prevPage := p.begin(page)
	resp, err := p.api.ListBlogs(ctx, p.filter, page, p.pageSize)
	if err != nil {
		p.fail(seq, prevPage, err)
		return err
	}
	p.complete(seq, sig, resp)
	return nil
}

// begin transitions to Loading, optimistically advances the page, and
// issues a new sequence number. Returns the sequence and the page to
// restore on failure.
func (p *Pager) begin(page int) (uint64, int) {
	p.lastSeq++
	prev := p.currentPage
	p.currentPage = page
	p.state = StateLoading
	p.lastErr = ""
	return p.lastSeq, prev
}

// complete merges a successful response. Responses that are not the
// latest issued fetch are discarded outright: a stale page must not
// overwrite bookkeeping that a newer fetch already established.
func (p *Pager) complete(seq uint64, sig Signature, resp *models.BlogPage) {
	if seq != p.lastSeq {
		return
	}

	p.entities.MergeRecords(resp.Items)

	pageIDs := make([]uuid.UUID, len(resp.Items))
	for i, item := range resp.Items {
		pageIDs[i] = item.ID
	}
	p.appendIDs(pageIDs)
	p.queries.Store(sig, pageIDs)

	p.currentPage = resp.Pagination.CurrentPage
	p.totalPages = resp.Pagination.TotalPages
	p.totalItems = resp.Pagination.TotalItems
	p.loadedOnce = true

	p.state = StateSucceeded
}

// fail rolls back the optimistic page advance and records the error. A
// stale failure is discarded like a stale success.
func (p *Pager) fail(seq uint64, prevPage int, err error) {
	if seq != p.lastSeq {
		return
	}
	p.currentPage = prevPage
	p.lastErr = err.Error()
	p.state = StateFailed
}

// appendIDs appends ids this context has not listed before, preserving
// first-seen order. Dedup is per context: an entity already cached by a
// different context still gets listed here the first time it shows up.
func (p *Pager) appendIDs(ids []uuid.UUID) {
	for _, id := range ids {
		if p.seen[id] {
			continue
		}
		p.seen[id] = true
		p.orderedIDs = append(p.orderedIDs, id)
	}
}

// PrependID inserts a provisional id at the head of the ordering, used
// for optimistic creates in the unfiltered context.
func (p *Pager) PrependID(id uuid.UUID) {
	if p.seen[id] {
		return
	}
	p.seen[id] = true
	p.orderedIDs = append([]uuid.UUID{id}, p.orderedIDs...)
}

// RemoveID drops an id from the ordering, used to roll an optimistic
// insert back.
func (p *Pager) RemoveID(id uuid.UUID) {
	if !p.seen[id] {
		return
	}
	delete(p.seen, id)
	for i, existing := range p.orderedIDs {
		if existing == id {
			p.orderedIDs = append(p.orderedIDs[:i], p.orderedIDs[i+1:]...)
			break
		}
	}
}
