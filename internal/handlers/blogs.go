// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/cache"
	"inkwell/internal/markdown"
	"inkwell/internal/models"
	"inkwell/internal/slug"
	"inkwell/internal/store"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// Blogs groups the blog CRUD and listing handlers. Listing and detail
// responses are cached in Redis with a 5-minute TTL; writes invalidate
// the affected keys.
type Blogs struct {
	store   *store.BlogStore
	results *cache.ResultCache
}

// NewBlogs creates a new Blogs handler group.
func NewBlogs(blogStore *store.BlogStore, results *cache.ResultCache) *Blogs {
	return &Blogs{store: blogStore, results: results}
}

// List handles GET /api/v1/blogs. The tag, topic, and q parameters are
// mutually exclusive filters; page is 1-based.
func (h *Blogs) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := store.Filter{
		Tag:   strings.TrimSpace(q.Get("tag")),
		Topic: strings.TrimSpace(q.Get("topic")),
		Query: strings.TrimSpace(q.Get("q")),
	}
	active := 0
	for _, v := range []string{filter.Tag, filter.Topic, filter.Query} {
		if v != "" {
			active++
		}
	}
	if active > 1 {
		respondError(w, http.StatusBadRequest, "tag, topic, and q are mutually exclusive")
		return
	}

	page := parseIntParam(q.Get("page"), 1)
	pageSize := parseIntParam(q.Get("page_size"), defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	sig := cache.Signature{
		Tag: filter.Tag, Topic: filter.Topic, Query: filter.Query,
		Page: page, PageSize: pageSize,
	}
	if cached, ok := h.results.GetPage(ctx, sig); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	items, total, err := h.store.List(filter, page, pageSize)
	if err != nil {
		respondInternal(w, "list blogs", err)
		return
	}

	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}
	if items == nil {
		items = []models.Blog{}
	}

	result := &models.BlogPage{
		Items: items,
		Pagination: models.Pagination{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalItems:  total,
			PageSize:    pageSize,
		},
	}
	h.results.SetPage(ctx, sig, result)
	respondJSON(w, http.StatusOK, result)
}

// GetBySlug handles GET /api/v1/blogs/{slug}. The response includes the
// markdown body rendered to sanitized HTML.
func (h *Blogs) GetBySlug(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")

	if cached, ok := h.results.GetDetail(ctx, slugParam); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	blog, err := h.store.FindBySlug(slugParam)
	if err != nil {
		respondInternal(w, "find blog by slug", err)
		return
	}
	if blog == nil {
		respondError(w, http.StatusNotFound, "blog not found")
		return
	}

	html, err := markdown.ToHTML(blog.Body)
	if err != nil {
		// Serve the record without rendered HTML rather than failing the lookup.
		slog.Warn("markdown render failed", "slug", slugParam, "error", err)
	} else {
		blog.BodyHTML = html
	}

	h.results.SetDetail(ctx, slugParam, blog)
	respondJSON(w, http.StatusOK, blog)
}

// createRequest is the POST /api/v1/blogs payload.
type createRequest struct {
	Title     string   `json:"title"`
	Subtitle  string   `json:"subtitle"`
	Body      string   `json:"body"`
	BannerURL string   `json:"banner_url"`
	VideoURL  *string  `json:"video_url"`
	Slug      string   `json:"slug"`
	Tags      []string `json:"tags"`
	Topics    []string `json:"topics"`
}

// Create handles POST /api/v1/blogs. The slug is derived from the title
// when not supplied; a duplicate slug is a 409.
func (h *Blogs) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if msg := validateCreate(req.Title, req.Subtitle, req.Body, req.BannerURL); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.VideoURL != nil && *req.VideoURL != "" {
		if msg := validateURL(*req.VideoURL); msg != "" {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
	}

	blogSlug := strings.TrimSpace(req.Slug)
	if blogSlug == "" {
		blogSlug = slug.Generate(req.Title)
	}
	if blogSlug == "" {
		respondError(w, http.StatusBadRequest, "Title does not produce a valid slug.")
		return
	}

	created, err := h.store.Create(&models.Blog{
		Slug:      blogSlug,
		Title:     strings.TrimSpace(req.Title),
		Subtitle:  strings.TrimSpace(req.Subtitle),
		Body:      req.Body,
		BannerURL: req.BannerURL,
		VideoURL:  req.VideoURL,
		Tags:      req.Tags,
		Topics:    req.Topics,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateSlug):
			respondError(w, http.StatusConflict, "a blog with this slug already exists")
		case errors.Is(err, store.ErrUnknownTerm):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondInternal(w, "create blog", err)
		}
		return
	}

	h.results.InvalidateLists(ctx)
	respondJSON(w, http.StatusCreated, created)
}

// updateRequest is the PATCH /api/v1/blogs/{slug} payload. Absent fields
// preserve the stored value.
type updateRequest struct {
	Title     *string  `json:"title"`
	Subtitle  *string  `json:"subtitle"`
	Body      *string  `json:"body"`
	BannerURL *string  `json:"banner_url"`
	VideoURL  *string  `json:"video_url"`
	Tags      []string `json:"tags"`
	Topics    []string `json:"topics"`
}

// Update handles PATCH /api/v1/blogs/{slug}. Supplying no fields at all
// is a 400; an unknown slug is a 404. The slug itself is immutable.
func (h *Blogs) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	upd := store.BlogUpdate{
		Title:     nonEmpty(req.Title),
		Subtitle:  nonEmpty(req.Subtitle),
		Body:      nonEmpty(req.Body),
		BannerURL: nonEmpty(req.BannerURL),
		VideoURL:  req.VideoURL,
		Tags:      req.Tags,
		Topics:    req.Topics,
	}
	if upd.IsZero() {
		respondError(w, http.StatusBadRequest, "no fields to update")
		return
	}
	if upd.BannerURL != nil {
		if msg := validateURL(*upd.BannerURL); msg != "" {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
	}

	updated, err := h.store.Update(slugParam, upd)
	if err != nil {
		if errors.Is(err, store.ErrUnknownTerm) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondInternal(w, "update blog", err)
		return
	}
	if updated == nil {
		respondError(w, http.StatusNotFound, "blog not found")
		return
	}

	h.results.InvalidateLists(ctx)
	h.results.InvalidateDetail(ctx, slugParam)
	respondJSON(w, http.StatusOK, updated)
}

// nonEmpty treats empty strings like absent fields: an empty value never
// overwrites the stored one.
func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// parseIntParam parses a positive integer query parameter, falling back
// on the default for missing or malformed values.
func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
