// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package client

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// SearchDebounceWait is how long typing must pause before the remote
// search request is issued. Local substring matching is instant and does
// not wait for this window.
const SearchDebounceWait = 300 * time.Millisecond

// Session is the top-level browsing state machine. It owns the entity
// and query caches, keeps one pager per listing context, and enforces
// that at most one filter dimension (tag, topic, or free-text query) is
// active at a time: activating one deactivates whichever was active.
//
// Pagers are kept per filter so that clearing a filter restores the
// unfiltered listing exactly as it was, without a refetch.
//
// Session methods are safe to call from the single goroutine that owns
// the session; the debounced remote search re-enters through an internal
// lock, so embedders do not have to serialize against the timer.
type Session struct {
	mu       sync.Mutex
	api      API
	entities *EntityCache
	queries  *QueryCache
	pageSize int

	filter Filter
	pagers map[Filter]*Pager

	search       *Debouncer
	localMatches []uuid.UUID
}

// NewSession creates a session over the given API. A non-positive
// pageSize uses the server default of 10.
func NewSession(api API, pageSize int) *Session {
	if pageSize <= 0 {
		pageSize = 10
	}
	s := &Session{
		api:      api,
		entities: NewEntityCache(),
		queries:  NewQueryCache(0),
		pageSize: pageSize,
		pagers:   make(map[Filter]*Pager),
		search:   NewDebouncer(SearchDebounceWait),
	}
	return s
}

func (s *Session) lock()   { s.mu.Lock() }
func (s *Session) unlock() { s.mu.Unlock() }

// Close cancels any pending debounced search. The session must not be
// used afterwards.
func (s *Session) Close() {
	s.search.Cancel()
}

// Entities exposes the normalized record cache, for detail views that
// want a record the listing already fetched. Access it from the session
// goroutine only, with no session call in flight.
func (s *Session) Entities() *EntityCache { return s.entities }

// Filter returns the active filter.
func (s *Session) Filter() Filter {
	s.lock()
	defer s.unlock()
	return s.filter
}

// pager returns the pager for a filter, creating it on first use.
func (s *Session) pager(f Filter) *Pager {
	p, ok := s.pagers[f]
	if !ok {
		p = NewPager(s.api, s.entities, s.queries, f, s.pageSize)
		s.pagers[f] = p
	}
	return p
}

// LoadInitial fetches the first page of the active context. Called once
// after construction (and after FromQuery, when restoring from a URL).
// When the URL carried a page deeper than 1, earlier pages are fetched
// too so the ordered listing has no holes.
func (s *Session) LoadInitial(ctx context.Context, throughPage int) error {
	s.lock()
	defer s.unlock()

	p := s.pager(s.filter)
	if err := p.LoadFirst(ctx); err != nil {
		return err
	}
	for p.CurrentPage() < throughPage && !p.Exhausted() {
		if err := p.SentinelVisible(ctx); err != nil {
			return err
		}
	}
	return nil
}

// SetTag activates a tag filter, deactivating any topic filter or
// search, and loads the context's first page.
func (s *Session) SetTag(ctx context.Context, value string) error {
	return s.activate(ctx, Filter{Kind: FilterTag, Value: value})
}

// SetTopic activates a topic filter, deactivating any tag filter or
// search, and loads the context's first page.
func (s *Session) SetTopic(ctx context.Context, value string) error {
	return s.activate(ctx, Filter{Kind: FilterTopic, Value: value})
}

// Clear deactivates whatever filter is active and returns to the
// unfiltered listing. Its pager is untouched by filtering, so no
// refetch happens unless the unfiltered context was never loaded.
func (s *Session) Clear(ctx context.Context) error {
	return s.activate(ctx, Filter{})
}

// activate switches the session to the given listing context. Unlike
// search, tag and topic activation does not pre-render a local subset
// from already-cached entities: the page-1 fetch is synchronous here,
// and splicing cached guesses in front of it would reorder the listing
// once the server's ordering arrives.
func (s *Session) activate(ctx context.Context, f Filter) error {
	s.search.Cancel()

	s.lock()
	s.filter = f
	s.localMatches = nil
	p := s.pager(f)
	loaded := p.CurrentPage() > 0
	s.unlock()

	if loaded {
		return nil
	}
	return s.load(ctx, f)
}

// load runs a first-page fetch for a context under the lock, so the
// debounced search timer and the owning goroutine never drive a pager
// concurrently.
func (s *Session) load(ctx context.Context, f Filter) error {
	s.lock()
	defer s.unlock()
	return s.pager(f).LoadFirst(ctx)
}

// SetQuery activates free-text search. Matching against already-cached
// records (case-insensitive substring on title and subtitle) is applied
// instantly; the server round trip is debounced behind
// SearchDebounceWait and its results are merged alongside the local
// matches rather than replacing them. An empty query clears the search.
func (s *Session) SetQuery(ctx context.Context, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return s.Clear(ctx)
	}

	f := Filter{Kind: FilterQuery, Value: value}

	s.lock()
	s.filter = f
	s.localMatches = s.matchLocal(value)
	s.unlock()

	s.search.Trigger(func() {
		s.lock()
		// The user may have moved on while the window ran down.
		stale := s.filter != f
		s.unlock()
		if stale {
			return
		}
		_ = s.load(ctx, f)
	})
	return nil
}

// matchLocal scans cached records for a case-insensitive substring match
// on title or subtitle, newest first. Caller holds the lock.
func (s *Session) matchLocal(term string) []uuid.UUID {
	needle := strings.ToLower(term)
	matched := s.entities.All()

	hits := matched[:0]
	for _, rec := range matched {
		if strings.Contains(strings.ToLower(rec.Title), needle) ||
			strings.Contains(strings.ToLower(rec.Subtitle), needle) {
			hits = append(hits, rec)
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if !hits[i].CreatedAt.Equal(hits[j].CreatedAt) {
			return hits[i].CreatedAt.After(hits[j].CreatedAt)
		}
		return hits[i].ID.String() < hits[j].ID.String()
	})

	ids := make([]uuid.UUID, len(hits))
	for i, rec := range hits {
		ids[i] = rec.ID
	}
	return ids
}

// SentinelVisible forwards the infinite-scroll trigger to the active
// context's pager.
func (s *Session) SentinelVisible(ctx context.Context) error {
	s.lock()
	defer s.unlock()
	return s.pager(s.filter).SentinelVisible(ctx)
}

// Retry re-issues the active context's failed fetch.
func (s *Session) Retry(ctx context.Context) error {
	s.lock()
	defer s.unlock()
	return s.pager(s.filter).Retry(ctx)
}

// State returns the active context's fetch state.
func (s *Session) State() FetchState {
	s.lock()
	defer s.unlock()
	return s.pager(s.filter).State()
}

// VisibleIDs returns the ids currently presentable for the active
// context, in order. For a search this is the server-confirmed ids
// followed by instant local matches the server has not (yet) returned,
// so typing never blanks the view while the remote request is pending.
func (s *Session) VisibleIDs() []uuid.UUID {
	s.lock()
	defer s.unlock()
	return s.visibleIDs()
}

// visibleIDs computes the merged ordering. Caller holds the lock.
func (s *Session) visibleIDs() []uuid.UUID {
	ordered := s.pager(s.filter).OrderedIDs()
	if s.filter.Kind != FilterQuery || len(s.localMatches) == 0 {
		return ordered
	}

	present := make(map[uuid.UUID]bool, len(ordered))
	merged := make([]uuid.UUID, 0, len(ordered)+len(s.localMatches))
	for _, id := range ordered {
		present[id] = true
		merged = append(merged, id)
	}
	for _, id := range s.localMatches {
		if !present[id] {
			merged = append(merged, id)
		}
	}
	return merged
}

// VisibleBlogs projects VisibleIDs through the entity cache.
func (s *Session) VisibleBlogs() []models.Blog {
	s.lock()
	defer s.unlock()
	return s.entities.ListByIDs(s.visibleIDs())
}

// CreateOptimistic submits a new record while showing it immediately: a
// provisional record with a locally generated id is prepended to the
// unfiltered listing before the request is sent. On success the
// provisional entry is replaced by the server's record and every
// memoized listing signature is invalidated; on failure the provisional
// entry is removed entirely, restoring the pre-submit view, and the
// error is returned for the form to display.
func (s *Session) CreateOptimistic(ctx context.Context, input CreateInput) (*models.Blog, error) {
	provisional := models.Blog{
		ID:        uuid.New(),
		Title:     input.Title,
		Subtitle:  input.Subtitle,
		Body:      input.Body,
		BannerURL: input.BannerURL,
		VideoURL:  input.VideoURL,
		Tags:      input.Tags,
		Topics:    input.Topics,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	unfiltered := Filter{}

	s.lock()
	s.entities.MergeRecords([]models.Blog{provisional})
	s.pager(unfiltered).PrependID(provisional.ID)
	s.unlock()

	created, err := s.api.CreateBlog(ctx, input)

	s.lock()
	defer s.unlock()

	s.entities.Remove(provisional.ID)
	s.pager(unfiltered).RemoveID(provisional.ID)

	if err != nil {
		return nil, err
	}

	s.entities.MergeRecords([]models.Blog{*created})
	s.pager(unfiltered).PrependID(created.ID)
	s.queries.Reset()
	return created, nil
}

// Update submits a partial edit and merges the returned record so every
// context referencing it shows the new version.
func (s *Session) Update(ctx context.Context, slug string, input UpdateInput) (*models.Blog, error) {
	updated, err := s.api.UpdateBlog(ctx, slug, input)
	if err != nil {
		return nil, err
	}

	s.lock()
	defer s.unlock()
	s.entities.MergeRecords([]models.Blog{*updated})
	s.queries.Reset()
	return updated, nil
}

// FromQuery restores the filter from URL query parameters, the inverse
// of QueryValues. When several filter parameters are present (a
// hand-edited URL), tag wins over topic, topic over q, keeping the
// one-active-filter invariant. It returns the page to restore through,
// for LoadInitial.
func (s *Session) FromQuery(values url.Values) int {
	s.lock()
	defer s.unlock()

	switch {
	case values.Get("tag") != "":
		s.filter = Filter{Kind: FilterTag, Value: values.Get("tag")}
	case values.Get("topic") != "":
		s.filter = Filter{Kind: FilterTopic, Value: values.Get("topic")}
	case values.Get("q") != "":
		s.filter = Filter{Kind: FilterQuery, Value: values.Get("q")}
	default:
		s.filter = Filter{}
	}

	page, err := strconv.Atoi(values.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return page
}

// QueryValues produces the URL query parameters describing the current
// view, for address-bar sync. Exactly one filter parameter is present at
// a time; the unfiltered first page produces no parameters at all.
func (s *Session) QueryValues() url.Values {
	s.lock()
	defer s.unlock()

	values := url.Values{}
	switch s.filter.Kind {
	case FilterTag:
		values.Set("tag", s.filter.Value)
	case FilterTopic:
		values.Set("topic", s.filter.Value)
	case FilterQuery:
		values.Set("q", s.filter.Value)
	}
	if page := s.pager(s.filter).CurrentPage(); page > 1 {
		values.Set("page", strconv.Itoa(page))
	}
	return values
}
