// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"inkwell/internal/slug"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
)

// ValidStatus reports whether s is a known post status.
func ValidStatus(s PostStatus) bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

// wordsPerMinute is the reading speed used for the read-time estimate.
const wordsPerMinute = 200

// excerptLength is how many characters of stripped content seed a
// derived excerpt.
const excerptLength = 150

// stripPolicy removes all markup when deriving excerpts from post bodies.
var stripPolicy = bluemonday.StrictPolicy()

// Post is a blog post authored by a user and assigned to a category.
type Post struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt"`
	AuthorID      uuid.UUID  `json:"author_id"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	Tags          []string   `json:"tags"`
	Status        PostStatus `json:"status"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	ReadTime      int        `json:"read_time"`
	Views         int        `json:"views"`
	IsFeatured    bool       `json:"is_featured"`
	IsEditorsPick bool       `json:"is_editors_pick"`
	AllowComments bool       `json:"allow_comments"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Virtual fields populated by store methods.
	Author       *UserSummary     `json:"author,omitempty"`
	Category     *CategorySummary `json:"category,omitempty"`
	CommentCount int              `json:"comment_count"`
	LikeCount    int              `json:"like_count"`
	LikedByMe    bool             `json:"liked_by_me"`
	ContentHTML  string           `json:"content_html,omitempty"`
}

// IsPublished returns true if the post is in published status.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// ComputeReadTime estimates reading time in minutes at 200 words per
// minute, rounding up. Empty content reads in zero minutes.
func ComputeReadTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / wordsPerMinute))
}

// DeriveExcerpt builds an excerpt from the first 150 characters of the
// tag-stripped content, with a trailing ellipsis.
func DeriveExcerpt(content string) string {
	stripped := strings.TrimSpace(stripPolicy.Sanitize(content))
	runes := []rune(stripped)
	if len(runes) > excerptLength {
		runes = runes[:excerptLength]
	}
	return string(runes) + "..."
}

// NormalizeTags lowercases, trims, and deduplicates tags, dropping
// empties. Order of first appearance is preserved. Commas always act
// as separators, never as part of a tag: stored tags are read back
// through a comma-joined representation, so an embedded comma would
// not survive a round trip.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		for _, part := range strings.Split(tag, ",") {
			t := strings.ToLower(strings.TrimSpace(part))
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// SplitTags turns a comma-separated tag string into a normalized tag set.
func SplitTags(s string) []string {
	return NormalizeTags([]string{s})
}

// Derive runs the pre-persistence derivation pipeline: slug, excerpt,
// read time, and the one-time published timestamp. prev is nil on
// creation; on update it carries the stored state so each step can
// detect whether its source field actually changed. now supplies both
// the slug-uniqueness suffix and the publication timestamp.
func (p *Post) Derive(prev *Post, now time.Time) {
	// Slug: regenerate on creation or whenever the title changes. The
	// nanosecond-timestamp suffix keeps slugs unique across identical
	// titles even when they are derived within the same second.
	if prev == nil || prev.Title != p.Title {
		p.Slug = slug.WithSuffix(p.Title, now.UnixNano())
	} else {
		p.Slug = prev.Slug
	}

	// Read time: recompute only when the content changed.
	if prev == nil || prev.Content != p.Content {
		p.ReadTime = ComputeReadTime(p.Content)
	} else {
		p.ReadTime = prev.ReadTime
	}

	// Excerpt: derive from content when absent.
	if strings.TrimSpace(p.Excerpt) == "" {
		p.Excerpt = DeriveExcerpt(p.Content)
	}

	// PublishedAt: set exactly once, on the first transition to
	// published. Re-publishing after archiving keeps the original value.
	if prev != nil && prev.PublishedAt != nil {
		p.PublishedAt = prev.PublishedAt
	} else if p.Status == PostStatusPublished && p.PublishedAt == nil {
		t := now
		p.PublishedAt = &t
	}

	p.Tags = NormalizeTags(p.Tags)
}

// Pagination carries page metadata for list responses.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalPosts  int  `json:"totalPosts"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NewPagination computes page metadata from a total row count.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalPosts:  total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}
