// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// fakeAPI serves a fixed dataset with real pagination and filtering, and
// can be told to fail upcoming calls.
type fakeAPI struct {
	mu         sync.Mutex
	blogs      []models.Blog
	listCalls  int
	failNext   int
	failCreate bool
}

var errUpstream = errors.New("upstream unavailable")

func (f *fakeAPI) ListBlogs(_ context.Context, filter Filter, page, pageSize int) (*models.BlogPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	if f.failNext > 0 {
		f.failNext--
		return nil, errUpstream
	}

	var matched []models.Blog
	for _, b := range f.blogs {
		switch filter.Kind {
		case FilterNone:
		case FilterTag:
			if !b.HasTag(filter.Value) {
				continue
			}
		case FilterTopic:
			if !b.HasTopic(filter.Value) {
				continue
			}
		case FilterQuery:
			needle := strings.ToLower(filter.Value)
			if !strings.Contains(strings.ToLower(b.Title), needle) &&
				!strings.Contains(strings.ToLower(b.Subtitle), needle) {
				continue
			}
		}
		matched = append(matched, b)
	}

	// Same arithmetic as the server: zero matches means zero pages.
	total := len(matched)
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]models.Blog, end-start)
	copy(items, matched[start:end])
	return &models.BlogPage{
		Items: items,
		Pagination: models.Pagination{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalItems:  total,
			PageSize:    pageSize,
		},
	}, nil
}

func (f *fakeAPI) GetBlogBySlug(_ context.Context, slug string) (*models.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.blogs {
		if b.Slug == slug {
			return &b, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
}

func (f *fakeAPI) CreateBlog(_ context.Context, input CreateInput) (*models.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failCreate {
		return nil, errUpstream
	}
	blog := models.Blog{
		ID:        uuid.New(),
		Slug:      strings.ToLower(strings.ReplaceAll(input.Title, " ", "-")),
		Title:     input.Title,
		Subtitle:  input.Subtitle,
		Body:      input.Body,
		BannerURL: input.BannerURL,
		Tags:      input.Tags,
		Topics:    input.Topics,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.blogs = append([]models.Blog{blog}, f.blogs...)
	return &blog, nil
}

func (f *fakeAPI) UpdateBlog(_ context.Context, slug string, input UpdateInput) (*models.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.blogs {
		if f.blogs[i].Slug != slug {
			continue
		}
		if input.Title != nil {
			f.blogs[i].Title = *input.Title
		}
		if input.Body != nil {
			f.blogs[i].Body = *input.Body
		}
		f.blogs[i].UpdatedAt = time.Now()
		blog := f.blogs[i]
		return &blog, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
}

func (f *fakeAPI) ListTags(context.Context) ([]models.Tag, error)     { return nil, nil }
func (f *fakeAPI) ListTopics(context.Context) ([]models.Topic, error) { return nil, nil }

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// seedDataset builds n posts, newest first, alternating tags and topics.
func seedDataset(n int) []models.Blog {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	tags := []string{"ai", "web"}
	topics := []string{"science", "technology"}

	blogs := make([]models.Blog, n)
	for i := 0; i < n; i++ {
		blogs[i] = models.Blog{
			ID:        uuid.New(),
			Slug:      fmt.Sprintf("post-%02d", n-i),
			Title:     fmt.Sprintf("Post %02d", n-i),
			Subtitle:  "A subtitle",
			Tags:      []string{tags[i%2]},
			Topics:    []string{topics[i%2]},
			CreatedAt: base.Add(-time.Duration(i) * time.Hour),
			UpdatedAt: base.Add(-time.Duration(i) * time.Hour),
		}
	}
	return blogs
}

func newTestPager(api API, filter Filter) *Pager {
	return NewPager(api, NewEntityCache(), NewQueryCache(0), filter, 10)
}

func TestLoadFirstPopulatesOrdering(t *testing.T) {
	api := &fakeAPI{blogs: seedDataset(25)}
	p := newTestPager(api, Filter{})

	if err := p.LoadFirst(context.Background()); err != nil {
		t.Fatalf("LoadFirst: %v", err)
	}

	if p.State() != StateSucceeded {
		t.Errorf("state: got %v, want StateSucceeded", p.State())
	}
	if got := len(p.OrderedIDs()); got != 10 {
		t.Errorf("ordered ids: got %d, want 10", got)
	}
	if p.CurrentPage() != 1 || p.TotalPages() != 3 || p.TotalItems() != 25 {
		t.Errorf("pagination: got page %d of %d (%d items), want 1 of 3 (25)",
			p.CurrentPage(), p.TotalPages(), p.TotalItems())
	}
	for i, id := range p.OrderedIDs() {
		if id != api.blogs[i].ID {
			t.Fatalf("id %d out of order", i)
		}
	}
}

func TestSentinelAdvancesThenTerminates(t *testing.T) {
	api := &fakeAPI{blogs: seedDataset(25)}
	p := newTestPager(api, Filter{})
	ctx := context.Background()

	if err := p.LoadFirst(ctx); err != nil {
		t.Fatalf("LoadFirst: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := p.SentinelVisible(ctx); err != nil {
			t.Fatalf("SentinelVisible %d: %v", i, err)
		}
	}

	if got := len(p.OrderedIDs()); got != 25 {
		t.Fatalf("ordered ids after all pages: got %d, want 25", got)
	}
	if !p.Exhausted() {
		t.Fatal("pager not exhausted after last page")
	}

	// Further sentinel triggers never hit the network again.
	before := api.calls()
	for i := 0; i < 3; i++ {
		if err := p.SentinelVisible(ctx); err != nil {
			t.Fatalf("SentinelVisible after exhaustion: %v", err)
		}
	}
	if api.calls() != before {
		t.Errorf("list calls after exhaustion: got %d, want %d", api.calls(), before)
	}
}

func TestEmptyListingExhaustsAfterFirstFetch(t *testing.T) {
	api := &fakeAPI{blogs: seedDataset(25)}
	p := newTestPager(api, Filter{Kind: FilterQuery, Value: "no such post"})
	ctx := context.Background()

	if err := p.LoadFirst(ctx); err != nil {
		t.Fatalf("LoadFirst: %v", err)
	}

	if got := len(p.OrderedIDs()); got != 0 {
		t.Errorf("ordered ids: got %d, want 0", got)
	}
	if p.TotalPages() != 0 || p.TotalItems() != 0 {
		t.Errorf("pagination: got %d pages (%d items), want 0 of 0",
			p.TotalPages(), p.TotalItems())
	}
	if !p.Exhausted() {
		t.Fatal("pager not exhausted after an empty first page")
	}

	// Sentinel triggers on an empty listing never hit the network.
	before := api.calls()
	for i := 0; i < 5; i++ {
		if err := p.SentinelVisible(ctx); err != nil {
			t.Fatalf("SentinelVisible %d: %v", i, err)
		}
	}
	if api.calls() != before {
		t.Errorf("list calls after empty page: got %d, want %d", api.calls(), before)
	}
	if p.CurrentPage() != 1 {
		t.Errorf("current page: got %d, want 1", p.CurrentPage())
	}
}

func TestSentinelNoOpWhileLoading(t *testing.T) {
	api := &fakeAPI{blogs: seedDataset(5)}
	p := newTestPager(api, Filter{})

	// Simulate an in-flight fetch.
	p.begin(1)

	if err := p.SentinelVisible(context.Background()); err != nil {
		t.Fatalf("SentinelVisible: %v", err)
	}
	if api.calls() != 0 {
		t.Errorf("list calls during in-flight fetch: got %d, want 0", api.calls())
	}
}

func TestStaleCompletionDiscarded(t *testing.T) {
	api := &fakeAPI{blogs: seedDataset(25)}
	p := newTestPager(api, Filter{})
	ctx := context.Background()

	// Two fetches issued back to back; the older one resolves last.
	page1, err := api.ListBlogs(ctx, Filter{}, 1, 10)
	if err != nil {
		t.Fatalf("ListBlogs: %v", err)
	}
	page2, err := api.ListBlogs(ctx, Filter{}, 2, 10)
	if err != nil {
		t.Fatalf("ListBlogs: %v", err)
	}

	seq1, _ := p.begin(1)
	seq2, _ := p.begin(2)

	p.complete(seq2, Signature{Page: 2, PageSize: 10}, page2)
	p.complete(seq1, Signature{Page: 1, PageSize: 10}, page1)

	if p.CurrentPage() != 2 {
		t.Errorf("current page: got %d, want 2 (stale completion must not win)", p.CurrentPage())
	}
	if got := len(p.OrderedIDs()); got != 10 {
		t.Errorf("ordered ids: got %d, want 10 (only the newest fetch applies)", got)
	}
	if p.OrderedIDs()[0] != page2.Items[0].ID {
		t.Error("ordering reflects the stale page, not the latest one")
	}
}

func TestStaleFailureDiscarded(t *testing.T) {
	api := &fakeAPI{blogs: seedDataset(25)}
	p := newTestPager(api, Filter{})
	ctx := context.Background()

	page2, err := api.ListBlogs(ctx, Filter{}, 2, 10)
	if err != nil {
		t.Fatalf("ListBlogs: %v", err)
	}

	seq1, prev1 := p.begin(1)
	seq2, _ := p.begin(2)

	p.complete(seq2, Signature{Page: 2, PageSize: 10}, page2)
	p.fail(seq1, prev1, errUpstream)

	if p.State() != StateSucceeded {
		t.Errorf("state: got %v, want StateSucceeded (stale failure must not win)", p.State())
	}
	if p.CurrentPage() != 2 {
		t.Errorf("current page: got %d, want 2", p.CurrentPage())
	}
}

func TestFailureRollsBackOptimisticAdvance(t *testing.T) {
	api := &fakeAPI{blogs: seedDataset(25)}
	p := newTestPager(api, Filter{})
	ctx := context.Background()

	if err := p.LoadFirst(ctx); err != nil {
		t.Fatalf("LoadFirst: %v", err)
	}

	api.failNext = 1
	if err := p.SentinelVisible(ctx); err == nil {
		t.Fatal("expected fetch error")
	}

	if p.State() != StateFailed {
		t.Errorf("state: got %v, want StateFailed", p.State())
	}
	if p.CurrentPage() != 1 {
		t.Errorf("current page after failure: got %d, want 1", p.CurrentPage())
	}
	if p.LastError() == "" {
		t.Error("last error empty after failure")
	}

	// The next trigger targets page 2 again and succeeds.
	if err := p.SentinelVisible(ctx); err != nil {
		t.Fatalf("SentinelVisible after recovery: %v", err)
	}
	if p.CurrentPage() != 2 {
		t.Errorf("current page after recovery: got %d, want 2", p.CurrentPage())
	}
	if got := len(p.OrderedIDs()); got != 20 {
		t.Errorf("ordered ids: got %d, want 20", got)
	}
}

func TestRetryBacksOffUntilSuccess(t *testing.T) {
	api := &fakeAPI{blogs: seedDataset(5), failNext: 1}
	p := newTestPager(api, Filter{})
	ctx := context.Background()

	if err := p.LoadFirst(ctx); err == nil {
		t.Fatal("expected initial failure")
	}

	if err := p.Retry(ctx); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if p.State() != StateSucceeded {
		t.Errorf("state: got %v, want StateSucceeded", p.State())
	}
	if got := len(p.OrderedIDs()); got != 5 {
		t.Errorf("ordered ids: got %d, want 5", got)
	}
}

func TestRepeatedIDsAcrossPagesListedOnce(t *testing.T) {
	api := &fakeAPI{blogs: seedDataset(25)}
	p := newTestPager(api, Filter{})
	ctx := context.Background()

	page1, err := api.ListBlogs(ctx, Filter{}, 1, 10)
	if err != nil {
		t.Fatalf("ListBlogs: %v", err)
	}
	// A record from page 1 shifted onto page 2 between fetches.
	page2, err := api.ListBlogs(ctx, Filter{}, 2, 10)
	if err != nil {
		t.Fatalf("ListBlogs: %v", err)
	}
	page2.Items[0] = page1.Items[9]

	seq1, _ := p.begin(1)
	p.complete(seq1, Signature{Page: 1, PageSize: 10}, page1)
	seq2, _ := p.begin(2)
	p.complete(seq2, Signature{Page: 2, PageSize: 10}, page2)

	ids := p.OrderedIDs()
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("id %s listed twice", id)
		}
		seen[id] = true
	}
	if len(ids) != 19 {
		t.Errorf("ordered ids: got %d, want 19", len(ids))
	}
}

func TestFreshQueryCacheHitSkipsNetwork(t *testing.T) {
	api := &fakeAPI{blogs: seedDataset(25)}
	entities := NewEntityCache()
	queries := NewQueryCache(0)

	first := NewPager(api, entities, queries, Filter{}, 10)
	if err := first.LoadFirst(context.Background()); err != nil {
		t.Fatalf("LoadFirst: %v", err)
	}
	before := api.calls()

	// A second pager over the same caches revisits the same signature
	// within the TTL: the memoized ids are adopted without a fetch.
	revisit := NewPager(api, entities, queries, Filter{}, 10)
	if err := revisit.LoadFirst(context.Background()); err != nil {
		t.Fatalf("revisit LoadFirst: %v", err)
	}

	if api.calls() != before {
		t.Errorf("list calls on fresh revisit: got %d, want %d", api.calls(), before)
	}
	if got := len(revisit.OrderedIDs()); got != 10 {
		t.Errorf("adopted ids: got %d, want 10", got)
	}
}
