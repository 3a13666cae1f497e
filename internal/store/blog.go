// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"inkwell/internal/models"
)

// ErrDuplicateSlug is returned by Create when the derived slug is already
// taken by another blog.
var ErrDuplicateSlug = errors.New("slug already exists")

// ErrUnknownTerm is returned when a tag or topic value is not part of the
// fixed vocabulary.
var ErrUnknownTerm = errors.New("unknown tag or topic value")

// Filter narrows a blog listing. At most one of Tag, Topic, and Query is
// set; the handlers enforce mutual exclusivity before the store is called.
type Filter struct {
	Tag   string
	Topic string
	Query string
}

// IsZero reports whether no filter is active.
func (f Filter) IsZero() bool {
	return f.Tag == "" && f.Topic == "" && f.Query == ""
}

// BlogUpdate carries a partial update. Nil fields preserve the stored
// value; non-nil fields overwrite it. Slug is immutable and never updated.
type BlogUpdate struct {
	Title     *string
	Subtitle  *string
	Body      *string
	BannerURL *string
	VideoURL  *string
	Tags      []string
	Topics    []string
}

// IsZero reports whether the update carries no fields at all.
func (u BlogUpdate) IsZero() bool {
	return u.Title == nil && u.Subtitle == nil && u.Body == nil &&
		u.BannerURL == nil && u.VideoURL == nil && u.Tags == nil && u.Topics == nil
}

// BlogStore handles all blog-related database operations.
type BlogStore struct {
	db *sql.DB
}

// NewBlogStore creates a new BlogStore with the given database connection.
func NewBlogStore(db *sql.DB) *BlogStore {
	return &BlogStore{db: db}
}

// List returns one page of blogs matching the filter, newest first, along
// with the total number of matching rows for pagination bookkeeping.
func (s *BlogStore) List(filter Filter, page, pageSize int) ([]models.Blog, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	where, args := buildFilter(filter)

	var total int
	countQuery := `SELECT COUNT(DISTINCT b.id) FROM blogs b` + filterJoins(filter) + where
	if err := s.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count blogs: %w", err)
	}

	listArgs := append(args, pageSize, (page-1)*pageSize)
	query := `
		SELECT DISTINCT b.id, b.slug, b.title, b.subtitle, b.body, b.banner_url,
		       b.video_url, b.created_at, b.updated_at
		FROM blogs b` + filterJoins(filter) + where + fmt.Sprintf(`
		ORDER BY b.created_at DESC
		LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)

	rows, err := s.db.Query(query, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	var items []models.Blog
	for rows.Next() {
		var b models.Blog
		if err := rows.Scan(
			&b.ID, &b.Slug, &b.Title, &b.Subtitle, &b.Body, &b.BannerURL,
			&b.VideoURL, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan blog: %w", err)
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := s.attachTerms(items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// filterJoins returns the JOIN clauses needed for the active filter.
func filterJoins(f Filter) string {
	switch {
	case f.Tag != "":
		return ` JOIN blog_tags bt ON bt.blog_id = b.id JOIN tags t ON t.id = bt.tag_id`
	case f.Topic != "":
		return ` JOIN blog_topics bp ON bp.blog_id = b.id JOIN topics p ON p.id = bp.topic_id`
	default:
		return ""
	}
}

// buildFilter returns the WHERE clause and its arguments for the filter.
func buildFilter(f Filter) (string, []any) {
	switch {
	case f.Tag != "":
		return ` WHERE t.value = $1`, []any{f.Tag}
	case f.Topic != "":
		return ` WHERE p.value = $1`, []any{f.Topic}
	case f.Query != "":
		// Case-insensitive substring match on title and subtitle, the same
		// fields the client matches locally for instant feedback.
		return ` WHERE (b.title ILIKE $1 OR b.subtitle ILIKE $1)`, []any{"%" + f.Query + "%"}
	default:
		return "", nil
	}
}

// FindBySlug retrieves a blog by its slug. Returns nil if not found.
func (s *BlogStore) FindBySlug(slug string) (*models.Blog, error) {
	b := &models.Blog{}
	err := s.db.QueryRow(`
		SELECT id, slug, title, subtitle, body, banner_url, video_url,
		       created_at, updated_at
		FROM blogs WHERE slug = $1
	`, slug).Scan(
		&b.ID, &b.Slug, &b.Title, &b.Subtitle, &b.Body, &b.BannerURL,
		&b.VideoURL, &b.CreatedAt, &b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find blog by slug: %w", err)
	}

	items := []models.Blog{*b}
	if err := s.attachTerms(items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// Create inserts a new blog together with its tag and topic associations,
// in one transaction. Returns ErrDuplicateSlug if the slug is taken and
// ErrUnknownTerm if any tag/topic value is outside the vocabulary.
func (s *BlogStore) Create(b *models.Blog) (*models.Blog, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("create blog begin: %w", err)
	}
	defer tx.Rollback()

	result := &models.Blog{Tags: b.Tags, Topics: b.Topics}
	err = tx.QueryRow(`
		INSERT INTO blogs (slug, title, subtitle, body, banner_url, video_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, slug, title, subtitle, body, banner_url, video_url,
		          created_at, updated_at
	`, b.Slug, b.Title, b.Subtitle, b.Body, b.BannerURL, b.VideoURL,
	).Scan(
		&result.ID, &result.Slug, &result.Title, &result.Subtitle, &result.Body,
		&result.BannerURL, &result.VideoURL, &result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("create blog: %w", err)
	}

	if err := replaceTerms(tx, result.ID, "blog_tags", "tag_id", "tags", b.Tags); err != nil {
		return nil, err
	}
	if err := replaceTerms(tx, result.ID, "blog_topics", "topic_id", "topics", b.Topics); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create blog commit: %w", err)
	}
	return result, nil
}

// Update applies a partial update to the blog with the given slug and
// returns the updated record. Returns nil if the slug does not exist.
func (s *BlogStore) Update(slug string, u BlogUpdate) (*models.Blog, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("update blog begin: %w", err)
	}
	defer tx.Rollback()

	var id uuid.UUID
	err = tx.QueryRow(`SELECT id FROM blogs WHERE slug = $1`, slug).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update blog lookup: %w", err)
	}

	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.Subtitle != nil {
		add("subtitle", *u.Subtitle)
	}
	if u.Body != nil {
		add("body", *u.Body)
	}
	if u.BannerURL != nil {
		add("banner_url", *u.BannerURL)
	}
	if u.VideoURL != nil {
		add("video_url", *u.VideoURL)
	}

	if len(sets) > 0 {
		args = append(args, id)
		query := fmt.Sprintf(
			`UPDATE blogs SET %s, updated_at = NOW() WHERE id = $%d`,
			strings.Join(sets, ", "), len(args),
		)
		if _, err := tx.Exec(query, args...); err != nil {
			return nil, fmt.Errorf("update blog: %w", err)
		}
	} else if u.Tags != nil || u.Topics != nil {
		if _, err := tx.Exec(`UPDATE blogs SET updated_at = NOW() WHERE id = $1`, id); err != nil {
			return nil, fmt.Errorf("update blog timestamp: %w", err)
		}
	}

	if u.Tags != nil {
		if _, err := tx.Exec(`DELETE FROM blog_tags WHERE blog_id = $1`, id); err != nil {
			return nil, fmt.Errorf("clear blog tags: %w", err)
		}
		if err := replaceTerms(tx, id, "blog_tags", "tag_id", "tags", u.Tags); err != nil {
			return nil, err
		}
	}
	if u.Topics != nil {
		if _, err := tx.Exec(`DELETE FROM blog_topics WHERE blog_id = $1`, id); err != nil {
			return nil, fmt.Errorf("clear blog topics: %w", err)
		}
		if err := replaceTerms(tx, id, "blog_topics", "topic_id", "topics", u.Topics); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update blog commit: %w", err)
	}
	return s.FindBySlug(slug)
}

// replaceTerms inserts join rows linking a blog to vocabulary terms,
// resolving each value to its ID. Unknown values yield ErrUnknownTerm.
func replaceTerms(tx *sql.Tx, blogID uuid.UUID, joinTable, joinColumn, termTable string, values []string) error {
	for _, value := range values {
		var termID uuid.UUID
		err := tx.QueryRow(
			fmt.Sprintf(`SELECT id FROM %s WHERE value = $1`, termTable), value,
		).Scan(&termID)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: %q", ErrUnknownTerm, value)
		}
		if err != nil {
			return fmt.Errorf("resolve term %q: %w", value, err)
		}
		_, err = tx.Exec(
			fmt.Sprintf(`INSERT INTO %s (blog_id, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING`, joinTable, joinColumn),
			blogID, termID,
		)
		if err != nil {
			return fmt.Errorf("link term %q: %w", value, err)
		}
	}
	return nil
}

// attachTerms populates Tags and Topics for a slice of blogs with two
// batch queries instead of a pair per blog.
func (s *BlogStore) attachTerms(items []models.Blog) error {
	if len(items) == 0 {
		return nil
	}

	// Passed as text[] and cast server-side; the stdlib driver has no
	// native uuid-array mapping.
	ids := make([]string, len(items))
	index := make(map[uuid.UUID]*models.Blog, len(items))
	for i := range items {
		ids[i] = items[i].ID.String()
		index[items[i].ID] = &items[i]
		items[i].Tags = []string{}
		items[i].Topics = []string{}
	}

	rows, err := s.db.Query(`
		SELECT bt.blog_id, t.value
		FROM blog_tags bt JOIN tags t ON t.id = bt.tag_id
		WHERE bt.blog_id = ANY($1::uuid[])
		ORDER BY t.value
	`, ids)
	if err != nil {
		return fmt.Errorf("load blog tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var blogID uuid.UUID
		var value string
		if err := rows.Scan(&blogID, &value); err != nil {
			return fmt.Errorf("scan blog tag: %w", err)
		}
		if b, ok := index[blogID]; ok {
			b.Tags = append(b.Tags, value)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	topicRows, err := s.db.Query(`
		SELECT bp.blog_id, p.value
		FROM blog_topics bp JOIN topics p ON p.id = bp.topic_id
		WHERE bp.blog_id = ANY($1::uuid[])
		ORDER BY p.value
	`, ids)
	if err != nil {
		return fmt.Errorf("load blog topics: %w", err)
	}
	defer topicRows.Close()
	for topicRows.Next() {
		var blogID uuid.UUID
		var value string
		if err := topicRows.Scan(&blogID, &value); err != nil {
			return fmt.Errorf("scan blog topic: %w", err)
		}
		if b, ok := index[blogID]; ok {
			b.Topics = append(b.Topics, value)
		}
	}
	return topicRows.Err()
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
