// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
)

// Pagination bounds for list queries.
const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// PostFilter is the explicit filter specification for post list queries.
// Handlers build one from request parameters and pass it unchanged into
// the store; every field is optional except the pagination defaults.
type PostFilter struct {
	Page       int
	Limit      int
	CategoryID *uuid.UUID
	AuthorID   *uuid.UUID
	Status     models.PostStatus // empty matches any status
	Search     string            // substring across title, content, excerpt
	SortBy     string            // created_at, published_at, views, title
	SortOrder  string            // asc or desc
	Featured   bool              // only featured posts

	// Viewer is the requesting user, used for the liked_by_me virtual.
	// uuid.Nil for anonymous requests.
	Viewer uuid.UUID
}

// normalize clamps pagination and fills sort defaults.
func (f *PostFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if _, ok := postSortColumns[f.SortBy]; !ok {
		f.SortBy = "created_at"
	}
	if f.SortOrder != "asc" {
		f.SortOrder = "desc"
	}
}

// postSortColumns whitelists sortable columns. Anything else falls back
// to created_at.
var postSortColumns = map[string]string{
	"created_at":   "p.created_at",
	"published_at": "p.published_at",
	"views":        "p.views",
	"title":        "p.title",
}

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// postColumns are the stored post fields; tags are flattened to a
// comma-joined string so they scan without an array codec.
const postColumns = `p.id, p.title, p.slug, p.content, p.excerpt, p.author_id,
	p.category_id, array_to_string(p.tags, ','), p.status, p.published_at,
	p.read_time, p.views, p.is_featured, p.is_editors_pick, p.allow_comments,
	p.created_at, p.updated_at`

// postVirtuals computes the read-side fields. The viewer placeholder is
// always $1 so every post query binds the viewer first.
const postVirtuals = `
	u.display_name, u.email,
	c.name, c.slug, c.color,
	(SELECT COUNT(*) FROM comments cm WHERE cm.post_id = p.id AND cm.is_approved) AS comment_count,
	(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id) AS like_count,
	EXISTS (SELECT 1 FROM post_likes pl WHERE pl.post_id = p.id AND pl.user_id = $1) AS liked_by_me`

const postFrom = `
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id`

// scanPostRow scans one row of a post query including virtual fields.
func scanPostRow(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var (
		p        models.Post
		tags     string
		author   models.UserSummary
		catName  sql.NullString
		catSlug  sql.NullString
		catColor sql.NullString
	)
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.AuthorID,
		&p.CategoryID, &tags, &p.Status, &p.PublishedAt,
		&p.ReadTime, &p.Views, &p.IsFeatured, &p.IsEditorsPick, &p.AllowComments,
		&p.CreatedAt, &p.UpdatedAt,
		&author.DisplayName, &author.Email,
		&catName, &catSlug, &catColor,
		&p.CommentCount, &p.LikeCount, &p.LikedByMe,
	)
	if err != nil {
		return nil, err
	}

	p.Tags = splitStoredTags(tags)
	author.ID = p.AuthorID
	p.Author = &author
	if p.CategoryID != nil {
		p.Category = &models.CategorySummary{
			ID:    *p.CategoryID,
			Name:  catName.String,
			Slug:  catSlug.String,
			Color: catColor.String,
		}
	}
	return &p, nil
}

// splitStoredTags reverses the array_to_string flattening.
func splitStoredTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// List returns a page of posts matching the filter, with pagination
// metadata computed from the total match count.
func (s *PostStore) List(f PostFilter) ([]models.Post, models.Pagination, error) {
	f.normalize()

	conds := []string{}
	args := []any{f.Viewer} // $1 is always the viewer
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		conds = append(conds, "p.status = "+arg(f.Status))
	}
	if f.CategoryID != nil {
		conds = append(conds, "p.category_id = "+arg(*f.CategoryID))
	}
	if f.AuthorID != nil {
		conds = append(conds, "p.author_id = "+arg(*f.AuthorID))
	}
	if f.Featured {
		conds = append(conds, "p.is_featured = TRUE")
	}
	if f.Search != "" {
		pattern := arg("%" + f.Search + "%")
		conds = append(conds, fmt.Sprintf(
			"(p.title ILIKE %[1]s OR p.content ILIKE %[1]s OR p.excerpt ILIKE %[1]s)", pattern))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	// Total count first; it drives the pagination metadata.
	var total int
	countArgs := args[1:] // the count query has no viewer placeholder
	countWhere := renumber(where, -1)
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts p`+countWhere, countArgs...).Scan(&total)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("count posts: %w", err)
	}

	order := postSortColumns[f.SortBy] + " " + strings.ToUpper(f.SortOrder)
	if f.SortBy == "published_at" {
		order += " NULLS LAST"
	}

	query := `SELECT ` + postColumns + `,` + postVirtuals + postFrom + where +
		` ORDER BY ` + order +
		` LIMIT ` + arg(f.Limit) + ` OFFSET ` + arg((f.Page-1)*f.Limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var items []models.Post
	for rows.Next() {
		p, err := scanPostRow(rows)
		if err != nil {
			return nil, models.Pagination{}, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, models.Pagination{}, err
	}

	return items, models.NewPagination(f.Page, f.Limit, total), nil
}

// renumber shifts every $N placeholder in cond by delta. Used to reuse
// the WHERE clause in the count query, which binds no viewer.
func renumber(cond string, delta int) string {
	out := make([]byte, 0, len(cond))
	for i := 0; i < len(cond); i++ {
		if cond[i] != '$' {
			out = append(out, cond[i])
			continue
		}
		j := i + 1
		for j < len(cond) && cond[j] >= '0' && cond[j] <= '9' {
			j++
		}
		var n int
		fmt.Sscanf(cond[i:j], "$%d", &n)
		out = append(out, fmt.Sprintf("$%d", n+delta)...)
		i = j - 1
	}
	return string(out)
}

// FindByID retrieves a post by ID with all virtual fields. Returns nil
// if not found. viewer may be uuid.Nil.
func (s *PostStore) FindByID(id, viewer uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(
		`SELECT `+postColumns+`,`+postVirtuals+postFrom+` WHERE p.id = $2`,
		viewer, id,
	)
	p, err := scanPostRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindBySlug retrieves a post by slug. Returns nil if not found.
func (s *PostStore) FindBySlug(postSlug string, viewer uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(
		`SELECT `+postColumns+`,`+postVirtuals+postFrom+` WHERE p.slug = $2`,
		viewer, postSlug,
	)
	p, err := scanPostRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// FindByIdentifier resolves a post by UUID when the identifier parses as
// one, by slug otherwise.
func (s *PostStore) FindByIdentifier(identifier string, viewer uuid.UUID) (*models.Post, error) {
	if id, err := uuid.Parse(identifier); err == nil {
		return s.FindByID(id, viewer)
	}
	return s.FindBySlug(identifier, viewer)
}

// Create runs the derivation pipeline and inserts a new post.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	p.Derive(nil, time.Now())

	var id uuid.UUID
	err := s.db.QueryRow(`
		INSERT INTO posts (title, slug, content, excerpt, author_id, category_id,
		                   tags, status, published_at, read_time,
		                   is_featured, is_editors_pick, allow_comments)
		VALUES ($1, $2, $3, $4, $5, $6,
		        COALESCE(string_to_array(NULLIF($7, ''), ','), '{}'), $8, $9, $10,
		        $11, $12, $13)
		RETURNING id
	`, p.Title, p.Slug, p.Content, p.Excerpt, p.AuthorID, p.CategoryID,
		strings.Join(p.Tags, ","), p.Status, p.PublishedAt, p.ReadTime,
		p.IsFeatured, p.IsEditorsPick, p.AllowComments,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	return s.FindByID(id, p.AuthorID)
}

// Update runs the derivation pipeline against the stored state and
// persists the result. prev must be the currently stored post.
func (s *PostStore) Update(prev, next *models.Post) (*models.Post, error) {
	next.Derive(prev, time.Now())

	_, err := s.db.Exec(`
		UPDATE posts SET
			title = $1, slug = $2, content = $3, excerpt = $4, category_id = $5,
			tags = COALESCE(string_to_array(NULLIF($6, ''), ','), '{}'),
			status = $7, published_at = $8, read_time = $9,
			is_featured = $10, is_editors_pick = $11, allow_comments = $12,
			updated_at = NOW()
		WHERE id = $13
	`, next.Title, next.Slug, next.Content, next.Excerpt, next.CategoryID,
		strings.Join(next.Tags, ","), next.Status, next.PublishedAt, next.ReadTime,
		next.IsFeatured, next.IsEditorsPick, next.AllowComments, prev.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	return s.FindByID(prev.ID, next.AuthorID)
}

// Delete removes a post and cascades to its comments and their likes.
// The cascade is an explicit routine rather than a schema rule so the
// deletion order is visible and testable.
func (s *PostStore) Delete(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM comment_likes
		WHERE comment_id IN (SELECT id FROM comments WHERE post_id = $1)
	`, id); err != nil {
		return fmt.Errorf("delete post comment likes: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM comments WHERE post_id = $1`, id); err != nil {
		return fmt.Errorf("delete post comments: %w", err)
	}

	res, err := tx.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("post")
	}
	return tx.Commit()
}

// ToggleLike flips the user's membership in the post's like set and
// returns the new state with the updated count.
func (s *PostStore) ToggleLike(postID, userID uuid.UUID) (liked bool, count int, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2
	`, postID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("unlike post: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		// Nothing removed: the user had not liked the post yet.
		if _, err := tx.Exec(`
			INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)
		`, postID, userID); err != nil {
			return false, 0, fmt.Errorf("like post: %w", err)
		}
		liked = true
	}

	err = tx.QueryRow(`SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&count)
	if err != nil {
		return false, 0, fmt.Errorf("count post likes: %w", err)
	}

	return liked, count, tx.Commit()
}

// IncrementViews bumps the view counter. Callers dispatch it from a
// detached goroutine; failures are theirs to log and drop.
func (s *PostStore) IncrementViews(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `UPDATE posts SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// Featured returns the newest published featured posts.
func (s *PostStore) Featured(limit int, viewer uuid.UUID) ([]models.Post, error) {
	if limit < 1 {
		limit = 5
	}
	if limit > 20 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+postColumns+`,`+postVirtuals+postFrom+`
		WHERE p.status = 'published' AND p.is_featured = TRUE
		ORDER BY p.published_at DESC NULLS LAST
		LIMIT $2`,
		viewer, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list featured posts: %w", err)
	}
	defer rows.Close()

	var items []models.Post
	for rows.Next() {
		p, err := scanPostRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// Search returns published posts matching q, ranked by a weighted
// relevance score: title matches count 3, excerpt 2, content 1. Ties
// break on recency.
func (s *PostStore) Search(q string, limit int, viewer uuid.UUID) ([]models.Post, error) {
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	pattern := "%" + q + "%"

	rows, err := s.db.Query(
		`SELECT `+postColumns+`,`+postVirtuals+`,
			(CASE WHEN p.title ILIKE $2 THEN 3 ELSE 0 END +
			 CASE WHEN p.excerpt ILIKE $2 THEN 2 ELSE 0 END +
			 CASE WHEN p.content ILIKE $2 THEN 1 ELSE 0 END) AS score`+
			postFrom+`
		WHERE p.status = 'published'
		  AND (p.title ILIKE $2 OR p.content ILIKE $2 OR p.excerpt ILIKE $2)
		ORDER BY score DESC, p.published_at DESC NULLS LAST
		LIMIT $3`,
		viewer, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	defer rows.Close()

	var items []models.Post
	for rows.Next() {
		var score int
		p, err := scanPostRowWith(rows, &score)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// scanPostRowWith scans a post row that carries extra trailing columns.
type postRowScanner struct {
	scanner interface{ Scan(...any) error }
	extra   []any
}

func (s postRowScanner) Scan(dest ...any) error {
	return s.scanner.Scan(append(dest, s.extra...)...)
}

func scanPostRowWith(scanner interface{ Scan(...any) error }, extra ...any) (*models.Post, error) {
	return scanPostRow(postRowScanner{scanner: scanner, extra: extra})
}
