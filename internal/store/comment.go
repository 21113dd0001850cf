// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
)

// CommentStore manages comments in the database.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore returns a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentColumns = `cm.id, cm.content, cm.author_id, cm.post_id, cm.parent_id,
	cm.is_approved, cm.is_reported, cm.report_count, cm.is_edited, cm.edited_at,
	cm.created_at, cm.updated_at`

// commentVirtuals computes the read-side fields, including the partial
// parent resolution used to render "replying to ..." context. The viewer
// placeholder is always $1.
const commentVirtuals = `
	u.display_name, u.email,
	(SELECT COUNT(*) FROM comments r WHERE r.parent_id = cm.id AND r.is_approved) AS reply_count,
	(SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = cm.id) AS like_count,
	EXISTS (SELECT 1 FROM comment_likes cl WHERE cl.comment_id = cm.id AND cl.user_id = $1) AS liked_by_me,
	pc.id, pc.content, pu.display_name, pc.created_at`

const commentFrom = `
	FROM comments cm
	JOIN users u ON u.id = cm.author_id
	LEFT JOIN comments pc ON pc.id = cm.parent_id
	LEFT JOIN users pu ON pu.id = pc.author_id`

// scanCommentRow scans one row of a comment query including virtuals.
func scanCommentRow(scanner interface{ Scan(...any) error }) (*models.Comment, error) {
	var (
		c          models.Comment
		author     models.UserSummary
		parentID   uuid.NullUUID
		parentBody sql.NullString
		parentName sql.NullString
		parentAt   sql.NullTime
	)
	err := scanner.Scan(
		&c.ID, &c.Content, &c.AuthorID, &c.PostID, &c.ParentID,
		&c.IsApproved, &c.IsReported, &c.ReportCount, &c.IsEdited, &c.EditedAt,
		&c.CreatedAt, &c.UpdatedAt,
		&author.DisplayName, &author.Email,
		&c.ReplyCount, &c.LikeCount, &c.LikedByMe,
		&parentID, &parentBody, &parentName, &parentAt,
	)
	if err != nil {
		return nil, err
	}

	author.ID = c.AuthorID
	c.Author = &author
	if parentID.Valid {
		c.Parent = &models.ParentContext{
			ID:         parentID.UUID,
			Content:    parentBody.String,
			AuthorName: parentName.String,
			CreatedAt:  parentAt.Time,
		}
	}
	return &c, nil
}

// ListByPost returns a page of approved comments for a post, newest
// first. With includeReplies false only top-level comments are returned.
func (s *CommentStore) ListByPost(postID uuid.UUID, page, limit int, includeReplies bool, viewer uuid.UUID) ([]models.Comment, models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	where := ` WHERE cm.post_id = $2 AND cm.is_approved`
	if !includeReplies {
		where += ` AND cm.parent_id IS NULL`
	}

	var total int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM comments cm`+renumber(where, -1), postID).Scan(&total)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("count comments: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT `+commentColumns+`,`+commentVirtuals+commentFrom+where+`
		ORDER BY cm.created_at DESC
		LIMIT $3 OFFSET $4`,
		viewer, postID, limit, (page-1)*limit,
	)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		c, err := scanCommentRow(rows)
		if err != nil {
			return nil, models.Pagination{}, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, models.Pagination{}, err
	}

	return items, models.NewPagination(page, limit, total), nil
}

// ListReplies returns all approved direct replies to a comment, oldest
// first.
func (s *CommentStore) ListReplies(parentID, viewer uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.Query(
		`SELECT `+commentColumns+`,`+commentVirtuals+commentFrom+`
		WHERE cm.parent_id = $2 AND cm.is_approved
		ORDER BY cm.created_at ASC`,
		viewer, parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		c, err := scanCommentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a comment with virtuals. Returns nil if not found.
func (s *CommentStore) FindByID(id, viewer uuid.UUID) (*models.Comment, error) {
	row := s.db.QueryRow(
		`SELECT `+commentColumns+`,`+commentVirtuals+commentFrom+` WHERE cm.id = $2`,
		viewer, id,
	)
	c, err := scanCommentRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	return c, nil
}

// Create inserts a new comment and returns it with virtual fields.
func (s *CommentStore) Create(c *models.Comment) (*models.Comment, error) {
	var id uuid.UUID
	err := s.db.QueryRow(`
		INSERT INTO comments (content, author_id, post_id, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, c.Content, c.AuthorID, c.PostID, c.ParentID).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return s.FindByID(id, c.AuthorID)
}

// UpdateContent replaces a comment's content. The edit markers flip only
// when the content actually changes: is_edited is set once and edited_at
// records the first edit.
func (s *CommentStore) UpdateContent(id uuid.UUID, content string) (*models.Comment, error) {
	res, err := s.db.Exec(`
		UPDATE comments SET
			is_edited = CASE WHEN content IS DISTINCT FROM $2 THEN TRUE ELSE is_edited END,
			edited_at = CASE WHEN content IS DISTINCT FROM $2 AND edited_at IS NULL
			            THEN NOW() ELSE edited_at END,
			content = $2,
			updated_at = NOW()
		WHERE id = $1
	`, id, content)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.FindByID(id, uuid.Nil)
}

// Delete removes a comment and its entire reply subtree. The recursive
// walk covers replies to replies as well: removing only direct children
// would leave orphaned grandchildren behind.
func (s *CommentStore) Delete(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const subtree = `
		WITH RECURSIVE subtree AS (
			SELECT id FROM comments WHERE id = $1
			UNION ALL
			SELECT c.id FROM comments c JOIN subtree s ON c.parent_id = s.id
		)`

	if _, err := tx.Exec(subtree+`
		DELETE FROM comment_likes WHERE comment_id IN (SELECT id FROM subtree)
	`, id); err != nil {
		return fmt.Errorf("delete comment likes: %w", err)
	}

	res, err := tx.Exec(subtree+`
		DELETE FROM comments WHERE id IN (SELECT id FROM subtree)
	`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("comment")
	}
	return tx.Commit()
}

// ToggleLike flips the user's membership in the comment's like set.
// Same contract as PostStore.ToggleLike.
func (s *CommentStore) ToggleLike(commentID, userID uuid.UUID) (liked bool, count int, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2
	`, commentID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("unlike comment: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := tx.Exec(`
			INSERT INTO comment_likes (comment_id, user_id) VALUES ($1, $2)
		`, commentID, userID); err != nil {
			return false, 0, fmt.Errorf("like comment: %w", err)
		}
		liked = true
	}

	err = tx.QueryRow(`SELECT COUNT(*) FROM comment_likes WHERE comment_id = $1`, commentID).Scan(&count)
	if err != nil {
		return false, 0, fmt.Errorf("count comment likes: %w", err)
	}

	return liked, count, tx.Commit()
}

// SetApproved flips the moderation flag.
func (s *CommentStore) SetApproved(id uuid.UUID, approved bool) error {
	res, err := s.db.Exec(`
		UPDATE comments SET is_approved = $2, updated_at = NOW() WHERE id = $1
	`, id, approved)
	if err != nil {
		return fmt.Errorf("set comment approval: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("comment")
	}
	return nil
}

// Report increments the report counter and marks the comment reported.
func (s *CommentStore) Report(id uuid.UUID) error {
	res, err := s.db.Exec(`
		UPDATE comments SET
			is_reported = TRUE,
			report_count = report_count + 1,
			updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("report comment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("comment")
	}
	return nil
}

// StatsByPost aggregates comment activity for a post: approved count,
// total likes across approved comments, and the newest comment time.
func (s *CommentStore) StatsByPost(postID uuid.UUID) (*models.CommentStats, error) {
	stats := &models.CommentStats{}
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM((SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = cm.id)), 0),
		       MAX(cm.created_at)
		FROM comments cm
		WHERE cm.post_id = $1 AND cm.is_approved
	`, postID).Scan(&stats.TotalComments, &stats.TotalLikes, &stats.LatestComment)
	if err != nil {
		return nil, fmt.Errorf("comment stats: %w", err)
	}
	return stats, nil
}
