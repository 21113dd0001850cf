// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a reader comment on a post. ParentID is nil for top-level
// comments and set for replies, giving one visible level of threading.
type Comment struct {
	ID          uuid.UUID  `json:"id"`
	Content     string     `json:"content"`
	AuthorID    uuid.UUID  `json:"author_id"`
	PostID      uuid.UUID  `json:"post_id"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	IsApproved  bool       `json:"is_approved"`
	IsReported  bool       `json:"is_reported"`
	ReportCount int        `json:"report_count"`
	IsEdited    bool       `json:"is_edited"`
	EditedAt    *time.Time `json:"edited_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Virtual fields populated by store methods.
	Author     *UserSummary   `json:"author,omitempty"`
	ReplyCount int            `json:"reply_count"`
	LikeCount  int            `json:"like_count"`
	LikedByMe  bool           `json:"liked_by_me"`
	Parent     *ParentContext `json:"parent,omitempty"`
}

// IsReply returns true if the comment is a reply to another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// ParentContext is the partial parent resolution attached to replies in
// list responses: enough to render "replying to ..." without a full join.
type ParentContext struct {
	ID         uuid.UUID `json:"id"`
	Content    string    `json:"content"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// CommentStats aggregates comment activity for a single post.
type CommentStats struct {
	TotalComments int        `json:"total_comments"`
	TotalLikes    int        `json:"total_likes"`
	LatestComment *time.Time `json:"latest_comment,omitempty"`
}
