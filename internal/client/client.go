// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package client implements the browsing-session layer a front end runs
// against the Inkwell API: a normalized entity cache, a TTL-bounded
// query-signature cache, an infinite-scroll pagination coordinator, and
// the mutually-exclusive filter/search state machine, together with the
// HTTP consumer of the API itself.
//
// Everything in this package is session-scoped and, unless noted
// otherwise, confined to a single goroutine, matching the event-loop
// execution model of the UI that embeds it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"inkwell/internal/models"
)

// Typed failures the API surfaces. Handlers of these decide between a
// not-found view state, a form-level conflict error, and a retry
// affordance.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// APIError carries a non-success HTTP status and the server's message,
// when one could be extracted from the response body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: unexpected status %d", e.Status)
}

// API is the surface of the remote content service the session consumes.
// The HTTP implementation below is the production one; tests substitute
// fakes.
type API interface {
	ListBlogs(ctx context.Context, filter Filter, page, pageSize int) (*models.BlogPage, error)
	GetBlogBySlug(ctx context.Context, slug string) (*models.Blog, error)
	CreateBlog(ctx context.Context, input CreateInput) (*models.Blog, error)
	UpdateBlog(ctx context.Context, slug string, input UpdateInput) (*models.Blog, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	ListTopics(ctx context.Context) ([]models.Topic, error)
}

// CreateInput is the authoring submission payload.
type CreateInput struct {
	Title     string   `json:"title"`
	Subtitle  string   `json:"subtitle"`
	Body      string   `json:"body"`
	BannerURL string   `json:"banner_url"`
	VideoURL  *string  `json:"video_url,omitempty"`
	Tags      []string `json:"tags"`
	Topics    []string `json:"topics"`
}

// UpdateInput is a partial edit; nil fields preserve stored values.
type UpdateInput struct {
	Title     *string  `json:"title,omitempty"`
	Subtitle  *string  `json:"subtitle,omitempty"`
	Body      *string  `json:"body,omitempty"`
	BannerURL *string  `json:"banner_url,omitempty"`
	VideoURL  *string  `json:"video_url,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Topics    []string `json:"topics,omitempty"`
}

// Client is the HTTP implementation of API.
type Client struct {
	baseURL string
	hc      *http.Client
}

// New creates an API client for the given base URL (e.g.
// "https://api.example.com"). A nil httpClient uses a 15-second-timeout
// default.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: baseURL, hc: httpClient}
}

var _ API = (*Client)(nil)

// ListBlogs fetches one listing page under the given filter.
func (c *Client) ListBlogs(ctx context.Context, filter Filter, page, pageSize int) (*models.BlogPage, error) {
	values := url.Values{}
	switch filter.Kind {
	case FilterTag:
		values.Set("tag", filter.Value)
	case FilterTopic:
		values.Set("topic", filter.Value)
	case FilterQuery:
		values.Set("q", filter.Value)
	}
	values.Set("page", strconv.Itoa(page))
	values.Set("page_size", strconv.Itoa(pageSize))

	var result models.BlogPage
	if err := c.get(ctx, "/api/v1/blogs?"+values.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetBlogBySlug fetches a single record. A missing slug is ErrNotFound,
// not a generic failure.
func (c *Client) GetBlogBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	var result models.Blog
	if err := c.get(ctx, "/api/v1/blogs/"+url.PathEscape(slug), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateBlog submits a new record. A duplicate slug is ErrConflict.
func (c *Client) CreateBlog(ctx context.Context, input CreateInput) (*models.Blog, error) {
	var result models.Blog
	if err := c.send(ctx, http.MethodPost, "/api/v1/blogs", input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateBlog submits a partial edit for a slug.
func (c *Client) UpdateBlog(ctx context.Context, slug string, input UpdateInput) (*models.Blog, error) {
	var result models.Blog
	if err := c.send(ctx, http.MethodPatch, "/api/v1/blogs/"+url.PathEscape(slug), input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListTags fetches the fixed tag vocabulary.
func (c *Client) ListTags(ctx context.Context) ([]models.Tag, error) {
	var result []models.Tag
	if err := c.get(ctx, "/api/v1/tags", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListTopics fetches the fixed topic vocabulary.
func (c *Client) ListTopics(ctx context.Context) ([]models.Topic, error) {
	var result []models.Topic
	if err := c.get(ctx, "/api/v1/topics", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// get issues a GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

// send issues a request with a JSON body and decodes the response into out.
func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// do executes the request and maps non-success statuses to typed errors.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var body struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr == nil {
			apiErr.Message = body.Error
		}
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
		case http.StatusConflict:
			return fmt.Errorf("%w: %s", ErrConflict, apiErr.Message)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
