// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/cache"
	"inkwell/internal/markdown"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

// Posts groups the post CRUD, like, featured, and search endpoints.
type Posts struct {
	posts      *store.PostStore
	categories *store.CategoryStore
	cache      *cache.Cache
	dev        bool
}

// NewPosts creates a new Posts handler group.
func NewPosts(posts *store.PostStore, categories *store.CategoryStore, c *cache.Cache, dev bool) *Posts {
	return &Posts{posts: posts, categories: categories, cache: c, dev: dev}
}

type postRequest struct {
	Title         string          `json:"title"`
	Content       string          `json:"content"`
	Excerpt       string          `json:"excerpt"`
	CategoryID    string          `json:"category_id"`
	Tags          json.RawMessage `json:"tags"`
	Status        string          `json:"status"`
	IsFeatured    bool            `json:"is_featured"`
	IsEditorsPick bool            `json:"is_editors_pick"`
	AllowComments *bool           `json:"allow_comments"`
}

// postUpdateRequest uses pointers so absent fields stay untouched.
type postUpdateRequest struct {
	Title         *string          `json:"title"`
	Content       *string          `json:"content"`
	Excerpt       *string          `json:"excerpt"`
	CategoryID    *string          `json:"category_id"`
	Tags          *json.RawMessage `json:"tags"`
	Status        *string          `json:"status"`
	IsFeatured    *bool            `json:"is_featured"`
	IsEditorsPick *bool            `json:"is_editors_pick"`
	AllowComments *bool            `json:"allow_comments"`
}

// parseTags accepts either a JSON array of strings or a single
// comma-separated string.
func parseTags(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return models.NormalizeTags(list), nil
	}

	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		return models.SplitTags(joined), nil
	}

	return nil, apperr.Validation("tags must be an array of strings or a comma-separated string")
}

// intQuery parses a query parameter as an int, falling back when absent
// or unparseable.
func intQuery(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// List returns a filtered, paginated page of posts.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	claims := middleware.ClaimsFromCtx(r.Context())

	f := store.PostFilter{
		Page:      intQuery(r, "page", 1),
		Limit:     intQuery(r, "limit", 0),
		Search:    strings.TrimSpace(q.Get("search")),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
		Featured:  q.Get("featured") == "true",
		Viewer:    viewerID(r),
	}

	if a := q.Get("author"); a != "" {
		id, err := uuid.Parse(a)
		if err != nil {
			respondError(w, apperr.Validation("invalid author id"), h.dev)
			return
		}
		f.AuthorID = &id
	}

	if c := q.Get("category"); c != "" {
		cat, err := h.resolveCategory(c)
		if err != nil {
			respondError(w, err, h.dev)
			return
		}
		if cat == nil {
			respondError(w, apperr.NotFound("category"), h.dev)
			return
		}
		f.CategoryID = &cat.ID
	}

	// Drafts and archived posts are listable only by their owner or an
	// admin; everyone else sees published posts.
	status := models.PostStatus(q.Get("status"))
	switch {
	case status == "":
		f.Status = models.PostStatusPublished
	case !models.ValidStatus(status):
		respondError(w, apperr.Validation("invalid status"), h.dev)
		return
	case status == models.PostStatusPublished:
		f.Status = status
	case claims == nil:
		respondError(w, apperr.Unauthenticated("authentication required to list non-published posts"), h.dev)
		return
	default:
		f.Status = status
		if claims.Role != models.RoleAdmin {
			f.AuthorID = &claims.UserID
		}
	}

	items, pagination, err := h.posts.List(f)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if items == nil {
		items = []models.Post{}
	}

	respondList(w, items, pagination)
}

// Get returns a single post by UUID or slug. Reading a post bumps its
// view counter asynchronously; the response never waits for the bump.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	// The id segment accepts either a UUID or a slug.
	identifier := chi.URLParam(r, "id")
	post, err := h.posts.FindByIdentifier(identifier, viewerID(r))
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if post == nil {
		respondError(w, apperr.NotFound("post"), h.dev)
		return
	}

	// Non-published posts read as missing to everyone but the owner and
	// admins.
	if !post.IsPublished() && !canModify(middleware.ClaimsFromCtx(r.Context()), post.AuthorID) {
		respondError(w, apperr.NotFound("post"), h.dev)
		return
	}

	html, err := markdown.ToHTML(post.Content)
	if err != nil {
		slog.Warn("markdown render failed", "post_id", post.ID, "error", err)
	} else {
		post.ContentHTML = html
	}

	go func(id uuid.UUID) {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := h.posts.IncrementViews(ctx, id); err != nil {
			slog.Warn("view increment failed", "post_id", id, "error", err)
		}
	}(post.ID)

	respondData(w, http.StatusOK, post)
}

// Create inserts a new post authored by the caller.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())

	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err, h.dev)
		return
	}

	if msg := validatePost(req.Title, req.Content, req.Excerpt); msg != "" {
		respondError(w, apperr.Validation(msg), h.dev)
		return
	}

	status := models.PostStatus(req.Status)
	if status == "" {
		status = models.PostStatusDraft
	}
	if !models.ValidStatus(status) {
		respondError(w, apperr.Validation("invalid status"), h.dev)
		return
	}

	tags, err := parseTags(req.Tags)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	if req.CategoryID == "" {
		respondError(w, apperr.Validation("category_id is required"), h.dev)
		return
	}
	categoryID, err := h.checkCategory(req.CategoryID)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	allowComments := true
	if req.AllowComments != nil {
		allowComments = *req.AllowComments
	}

	post := &models.Post{
		Title:         strings.TrimSpace(req.Title),
		Content:       req.Content,
		Excerpt:       strings.TrimSpace(req.Excerpt),
		AuthorID:      claims.UserID,
		CategoryID:    &categoryID,
		Tags:          tags,
		Status:        status,
		IsFeatured:    req.IsFeatured,
		IsEditorsPick: req.IsEditorsPick,
		AllowComments: allowComments,
	}

	created, err := h.posts.Create(post)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	h.invalidate(r.Context())
	respondData(w, http.StatusCreated, created)
}

// Update applies a partial update to a post owned by the caller.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	prev, err := h.posts.FindByID(id, claims.UserID)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if prev == nil {
		respondError(w, apperr.NotFound("post"), h.dev)
		return
	}
	if !canModify(claims, prev.AuthorID) {
		respondError(w, apperr.Forbidden("you can only edit your own posts"), h.dev)
		return
	}

	var req postUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err, h.dev)
		return
	}

	next := *prev
	if req.Title != nil {
		next.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		next.Content = *req.Content
	}
	if req.Excerpt != nil {
		// An explicit empty excerpt re-derives from content.
		next.Excerpt = strings.TrimSpace(*req.Excerpt)
	}
	if req.Status != nil {
		status := models.PostStatus(*req.Status)
		if !models.ValidStatus(status) {
			respondError(w, apperr.Validation("invalid status"), h.dev)
			return
		}
		next.Status = status
	}
	if req.Tags != nil {
		tags, err := parseTags(*req.Tags)
		if err != nil {
			respondError(w, err, h.dev)
			return
		}
		next.Tags = tags
	}
	if req.CategoryID != nil {
		categoryID, err := h.checkCategory(*req.CategoryID)
		if err != nil {
			respondError(w, err, h.dev)
			return
		}
		next.CategoryID = &categoryID
	}
	if req.IsFeatured != nil {
		next.IsFeatured = *req.IsFeatured
	}
	if req.IsEditorsPick != nil {
		next.IsEditorsPick = *req.IsEditorsPick
	}
	if req.AllowComments != nil {
		next.AllowComments = *req.AllowComments
	}

	if msg := validatePost(next.Title, next.Content, next.Excerpt); msg != "" {
		respondError(w, apperr.Validation(msg), h.dev)
		return
	}

	updated, err := h.posts.Update(prev, &next)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	h.invalidate(r.Context())
	respondData(w, http.StatusOK, updated)
}

// Delete removes a post and all its comments.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	post, err := h.posts.FindByID(id, claims.UserID)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if post == nil {
		respondError(w, apperr.NotFound("post"), h.dev)
		return
	}
	if !canModify(claims, post.AuthorID) {
		respondError(w, apperr.Forbidden("you can only delete your own posts"), h.dev)
		return
	}

	if err := h.posts.Delete(id); err != nil {
		respondError(w, err, h.dev)
		return
	}

	h.invalidate(r.Context())
	respondMessage(w, http.StatusOK, "post deleted")
}

// Like toggles the caller's like on a post.
func (h *Posts) Like(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	post, err := h.posts.FindByID(id, claims.UserID)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if post == nil {
		respondError(w, apperr.NotFound("post"), h.dev)
		return
	}

	liked, count, err := h.posts.ToggleLike(id, claims.UserID)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	respondData(w, http.StatusOK, likeResult{Liked: liked, LikeCount: count})
}

// defaultFeaturedLimit is the featured list size served from cache.
const defaultFeaturedLimit = 5

// Featured returns the newest published featured posts. The default
// anonymous request is served from cache when warm; viewer-specific
// fields make cached entries wrong for authenticated callers.
func (h *Posts) Featured(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", defaultFeaturedLimit)
	viewer := viewerID(r)
	cacheable := viewer == uuid.Nil && limit == defaultFeaturedLimit

	if cacheable {
		var cached []models.Post
		if h.cache.Get(r.Context(), cache.KeyFeaturedPosts, &cached) {
			respondData(w, http.StatusOK, cached)
			return
		}
	}

	items, err := h.posts.Featured(limit, viewer)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if items == nil {
		items = []models.Post{}
	}

	if cacheable {
		h.cache.Set(r.Context(), cache.KeyFeaturedPosts, items)
	}
	respondData(w, http.StatusOK, items)
}

// Search returns published posts ranked by weighted relevance.
func (h *Posts) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondError(w, apperr.Validation("search query is required"), h.dev)
		return
	}

	items, err := h.posts.Search(q, intQuery(r, "limit", 0), viewerID(r))
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if items == nil {
		items = []models.Post{}
	}

	respondData(w, http.StatusOK, items)
}

// resolveCategory finds a category by UUID or slug. Returns nil when
// missing.
func (h *Posts) resolveCategory(identifier string) (*models.Category, error) {
	if id, err := uuid.Parse(identifier); err == nil {
		return h.categories.FindByID(id)
	}
	return h.categories.FindBySlug(identifier)
}

// checkCategory validates that the given category id exists and returns
// its UUID.
func (h *Posts) checkCategory(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid category id")
	}
	cat, err := h.categories.FindByID(id)
	if err != nil {
		return uuid.Nil, err
	}
	if cat == nil {
		return uuid.Nil, apperr.Validation("category does not exist")
	}
	return id, nil
}

// invalidate drops the aggregate caches touched by post writes.
func (h *Posts) invalidate(ctx context.Context) {
	h.cache.Invalidate(ctx, cache.KeyCategoryCounts, cache.KeyFeaturedPosts)
}
