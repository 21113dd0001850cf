// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

// Comments groups the comment endpoints: threaded listing, CRUD, likes,
// moderation, and per-post stats.
type Comments struct {
	comments *store.CommentStore
	posts    *store.PostStore
	dev      bool
}

// NewComments creates a new Comments handler group.
func NewComments(comments *store.CommentStore, posts *store.PostStore, dev bool) *Comments {
	return &Comments{comments: comments, posts: posts, dev: dev}
}

type commentRequest struct {
	Content  string `json:"content"`
	ParentID string `json:"parent_id"`
}

// ListByPost returns a page of approved comments on a post, newest
// first. includeReplies=false restricts the page to top-level comments.
func (h *Comments) ListByPost(w http.ResponseWriter, r *http.Request) {
	postID, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	post, err := h.posts.FindByID(postID, uuid.Nil)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if post == nil {
		respondError(w, apperr.NotFound("post"), h.dev)
		return
	}

	includeReplies := r.URL.Query().Get("includeReplies") != "false"
	items, pagination, err := h.comments.ListByPost(
		postID,
		intQuery(r, "page", 1),
		intQuery(r, "limit", 0),
		includeReplies,
		viewerID(r),
	)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if items == nil {
		items = []models.Comment{}
	}

	respondList(w, items, pagination)
}

// Replies returns the approved direct replies to a comment, oldest first.
func (h *Comments) Replies(w http.ResponseWriter, r *http.Request) {
	parentID, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	parent, err := h.comments.FindByID(parentID, uuid.Nil)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if parent == nil {
		respondError(w, apperr.NotFound("comment"), h.dev)
		return
	}

	items, err := h.comments.ListReplies(parentID, viewerID(r))
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if items == nil {
		items = []models.Comment{}
	}

	respondData(w, http.StatusOK, items)
}

// Create adds a comment to a published post. Replies must point at a
// comment on the same post; replying to a reply is allowed, the thread
// just renders one level deep.
func (h *Comments) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	postID, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err, h.dev)
		return
	}

	if msg := validateComment(req.Content); msg != "" {
		respondError(w, apperr.Validation(msg), h.dev)
		return
	}

	post, err := h.posts.FindByID(postID, uuid.Nil)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if post == nil {
		respondError(w, apperr.NotFound("post"), h.dev)
		return
	}
	if !post.IsPublished() {
		respondError(w, apperr.Validation("comments are only allowed on published posts"), h.dev)
		return
	}
	if !post.AllowComments {
		respondError(w, apperr.Validation("comments are disabled for this post"), h.dev)
		return
	}

	comment := &models.Comment{
		Content:  strings.TrimSpace(req.Content),
		AuthorID: claims.UserID,
		PostID:   postID,
	}

	if req.ParentID != "" {
		parentID, err := uuid.Parse(req.ParentID)
		if err != nil {
			respondError(w, apperr.Validation("invalid parent comment id"), h.dev)
			return
		}
		parent, err := h.comments.FindByID(parentID, uuid.Nil)
		if err != nil {
			respondError(w, err, h.dev)
			return
		}
		if parent == nil {
			respondError(w, apperr.Validation("parent comment does not exist"), h.dev)
			return
		}
		if parent.PostID != postID {
			respondError(w, apperr.Validation("parent comment belongs to a different post"), h.dev)
			return
		}
		comment.ParentID = &parentID
	}

	created, err := h.comments.Create(comment)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	respondData(w, http.StatusCreated, created)
}

// Update replaces a comment's content. Only the author or an admin may
// edit; the edit markers flip on the first real change.
func (h *Comments) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	existing, err := h.comments.FindByID(id, claims.UserID)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if existing == nil {
		respondError(w, apperr.NotFound("comment"), h.dev)
		return
	}
	if !canModify(claims, existing.AuthorID) {
		respondError(w, apperr.Forbidden("you can only edit your own comments"), h.dev)
		return
	}

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err, h.dev)
		return
	}
	if msg := validateComment(req.Content); msg != "" {
		respondError(w, apperr.Validation(msg), h.dev)
		return
	}

	updated, err := h.comments.UpdateContent(id, strings.TrimSpace(req.Content))
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if updated == nil {
		respondError(w, apperr.NotFound("comment"), h.dev)
		return
	}

	respondData(w, http.StatusOK, updated)
}

// Delete removes a comment and its entire reply subtree. The comment
// author, the post author, and admins may delete.
func (h *Comments) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	existing, err := h.comments.FindByID(id, claims.UserID)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if existing == nil {
		respondError(w, apperr.NotFound("comment"), h.dev)
		return
	}

	if !canModify(claims, existing.AuthorID) {
		post, err := h.posts.FindByID(existing.PostID, uuid.Nil)
		if err != nil {
			respondError(w, err, h.dev)
			return
		}
		if post == nil || post.AuthorID != claims.UserID {
			respondError(w, apperr.Forbidden("you can only delete your own comments"), h.dev)
			return
		}
	}

	if err := h.comments.Delete(id); err != nil {
		respondError(w, err, h.dev)
		return
	}

	respondMessage(w, http.StatusOK, "comment deleted")
}

// Like toggles the caller's like on a comment.
func (h *Comments) Like(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	existing, err := h.comments.FindByID(id, claims.UserID)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if existing == nil {
		respondError(w, apperr.NotFound("comment"), h.dev)
		return
	}

	liked, count, err := h.comments.ToggleLike(id, claims.UserID)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	respondData(w, http.StatusOK, likeResult{Liked: liked, LikeCount: count})
}

type approveRequest struct {
	Approved bool `json:"approved"`
}

// Approve sets the moderation flag. Admin-only, enforced by the router.
func (h *Comments) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	var req approveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err, h.dev)
		return
	}

	if err := h.comments.SetApproved(id, req.Approved); err != nil {
		respondError(w, err, h.dev)
		return
	}

	respondMessage(w, http.StatusOK, "comment approval updated")
}

// Report flags a comment for moderation and bumps its report counter.
func (h *Comments) Report(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	if err := h.comments.Report(id); err != nil {
		respondError(w, err, h.dev)
		return
	}

	respondMessage(w, http.StatusOK, "comment reported")
}

// Stats returns aggregate comment activity for a post.
func (h *Comments) Stats(w http.ResponseWriter, r *http.Request) {
	postID, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	post, err := h.posts.FindByID(postID, uuid.Nil)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if post == nil {
		respondError(w, apperr.NotFound("post"), h.dev)
		return
	}

	stats, err := h.comments.StatsByPost(postID)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	respondData(w, http.StatusOK, stats)
}
