// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"inkwell/internal/models"
)

func TestSignatureKey(t *testing.T) {
	tests := []struct {
		name string
		sig  Signature
		want string
	}{
		{
			"unfiltered first page",
			Signature{Page: 1, PageSize: 10},
			"blogs:list:tag=:topic=:q=:p=1:s=10",
		},
		{
			"tag filter",
			Signature{Tag: "ai", Page: 2, PageSize: 10},
			"blogs:list:tag=ai:topic=:q=:p=2:s=10",
		},
		{
			"search",
			Signature{Query: "go generics", Page: 1, PageSize: 20},
			"blogs:list:tag=:topic=:q=go generics:p=1:s=20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sig.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSignatureKeysDistinct(t *testing.T) {
	sigs := []Signature{
		{Page: 1, PageSize: 10},
		{Page: 2, PageSize: 10},
		{Page: 1, PageSize: 20},
		{Tag: "ai", Page: 1, PageSize: 10},
		{Topic: "ai", Page: 1, PageSize: 10},
		{Query: "ai", Page: 1, PageSize: 10},
	}

	seen := make(map[string]Signature)
	for _, sig := range sigs {
		key := sig.Key()
		if prior, dup := seen[key]; dup {
			t.Errorf("signatures %+v and %+v share key %q", prior, sig, key)
		}
		seen[key] = sig
	}
}

// testRedisClient returns a Redis client for integration tests, skipping
// when no server is reachable.
func testRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("REDIS_HOST", "localhost")
	port := envOr("REDIS_PORT", "6379")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Redis not reachable: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func samplePage() *models.BlogPage {
	return &models.BlogPage{
		Items: []models.Blog{
			{ID: uuid.New(), Slug: "first-post", Title: "First Post"},
			{ID: uuid.New(), Slug: "second-post", Title: "Second Post"},
		},
		Pagination: models.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 2, PageSize: 10},
	}
}

func TestResultCachePageRoundTrip(t *testing.T) {
	rc := NewResultCache(testRedisClient(t), time.Minute)
	ctx := context.Background()
	sig := Signature{Tag: "ai", Page: 1, PageSize: 10}

	if _, ok := rc.GetPage(ctx, sig); ok {
		t.Fatal("hit before anything was stored")
	}

	page := samplePage()
	rc.SetPage(ctx, sig, page)

	got, ok := rc.GetPage(ctx, sig)
	if !ok {
		t.Fatal("miss after SetPage")
	}
	if len(got.Items) != 2 || got.Items[0].Slug != "first-post" {
		t.Errorf("cached page: got %+v", got)
	}
	if got.Pagination.TotalItems != 2 {
		t.Errorf("pagination: got %+v", got.Pagination)
	}

	// A different signature stays a miss.
	if _, ok := rc.GetPage(ctx, Signature{Tag: "web", Page: 1, PageSize: 10}); ok {
		t.Error("hit on a signature that was never stored")
	}
}

func TestResultCacheTTLExpiry(t *testing.T) {
	rc := NewResultCache(testRedisClient(t), time.Second)
	ctx := context.Background()
	sig := Signature{Page: 1, PageSize: 10}

	rc.SetPage(ctx, sig, samplePage())
	if _, ok := rc.GetPage(ctx, sig); !ok {
		t.Fatal("miss immediately after SetPage")
	}

	time.Sleep(1500 * time.Millisecond)
	if _, ok := rc.GetPage(ctx, sig); ok {
		t.Error("hit after the TTL elapsed")
	}
}

func TestResultCacheDetailRoundTripAndInvalidate(t *testing.T) {
	rc := NewResultCache(testRedisClient(t), time.Minute)
	ctx := context.Background()

	blog := &models.Blog{ID: uuid.New(), Slug: "my-post", Title: "My Post", BodyHTML: "<p>hi</p>"}
	rc.SetDetail(ctx, blog.Slug, blog)

	got, ok := rc.GetDetail(ctx, blog.Slug)
	if !ok {
		t.Fatal("miss after SetDetail")
	}
	if got.BodyHTML != blog.BodyHTML {
		t.Errorf("body html: got %q", got.BodyHTML)
	}

	rc.InvalidateDetail(ctx, blog.Slug)
	if _, ok := rc.GetDetail(ctx, blog.Slug); ok {
		t.Error("hit after InvalidateDetail")
	}
}

func TestResultCacheInvalidateLists(t *testing.T) {
	rc := NewResultCache(testRedisClient(t), time.Minute)
	ctx := context.Background()

	sigs := []Signature{
		{Page: 1, PageSize: 10},
		{Tag: "ai", Page: 1, PageSize: 10},
		{Topic: "science", Page: 3, PageSize: 20},
	}
	for _, sig := range sigs {
		rc.SetPage(ctx, sig, samplePage())
	}
	// A detail entry must survive a listing invalidation.
	blog := &models.Blog{ID: uuid.New(), Slug: "keeper", Title: "Keeper"}
	rc.SetDetail(ctx, blog.Slug, blog)

	rc.InvalidateLists(ctx)

	for _, sig := range sigs {
		if _, ok := rc.GetPage(ctx, sig); ok {
			t.Errorf("listing %q survived InvalidateLists", sig.Key())
		}
	}
	if _, ok := rc.GetDetail(ctx, blog.Slug); !ok {
		t.Error("detail entry was dropped by a listing invalidation")
	}
}
