// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/slug"
	"inkwell/internal/store"
)

// Categories groups the category endpoints. Writes are admin-only,
// enforced by the router.
type Categories struct {
	categories *store.CategoryStore
	cache      *cache.Cache
	dev        bool
}

// NewCategories creates a new Categories handler group.
func NewCategories(categories *store.CategoryStore, c *cache.Cache, dev bool) *Categories {
	return &Categories{categories: categories, cache: c, dev: dev}
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	IsActive    *bool  `json:"is_active"`
	SortOrder   int    `json:"sort_order"`
}

// defaultCategoryColor is used when a category is created without one.
const defaultCategoryColor = "#6b7280"

// List returns all active categories.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.categories.ListActive()
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if items == nil {
		items = []models.Category{}
	}
	respondData(w, http.StatusOK, items)
}

// WithCounts returns every category with its published-post count,
// served from cache when warm.
func (h *Categories) WithCounts(w http.ResponseWriter, r *http.Request) {
	var cached []models.Category
	if h.cache.Get(r.Context(), cache.KeyCategoryCounts, &cached) {
		respondData(w, http.StatusOK, cached)
		return
	}

	items, err := h.categories.ListWithCounts()
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if items == nil {
		items = []models.Category{}
	}

	h.cache.Set(r.Context(), cache.KeyCategoryCounts, items)
	respondData(w, http.StatusOK, items)
}

// Get returns a single category by UUID or slug.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	// The id segment accepts either a UUID or a slug.
	identifier := chi.URLParam(r, "id")

	var (
		category *models.Category
		err      error
	)
	if id, parseErr := uuid.Parse(identifier); parseErr == nil {
		category, err = h.categories.FindByID(id)
	} else {
		category, err = h.categories.FindBySlug(identifier)
	}
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if category == nil {
		respondError(w, apperr.NotFound("category"), h.dev)
		return
	}

	respondData(w, http.StatusOK, category)
}

// Create inserts a new category.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err, h.dev)
		return
	}

	if msg := validateCategory(req.Name, req.Color); msg != "" {
		respondError(w, apperr.Validation(msg), h.dev)
		return
	}

	name := strings.TrimSpace(req.Name)
	existing, err := h.categories.FindBySlug(slug.Generate(name))
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if existing != nil {
		respondError(w, apperr.Validation("a category with this name already exists"), h.dev)
		return
	}

	color := req.Color
	if color == "" {
		color = defaultCategoryColor
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	created, err := h.categories.Create(&models.Category{
		Name:        name,
		Description: req.Description,
		Color:       color,
		Icon:        req.Icon,
		IsActive:    isActive,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	h.cache.Invalidate(r.Context(), cache.KeyCategoryCounts)
	respondData(w, http.StatusCreated, created)
}

// categoryUpdateRequest uses pointers so absent fields stay untouched.
type categoryUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
	IsActive    *bool   `json:"is_active"`
	SortOrder   *int    `json:"sort_order"`
}

// Update applies a partial update to a category.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	existing, err := h.categories.FindByID(id)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if existing == nil {
		respondError(w, apperr.NotFound("category"), h.dev)
		return
	}

	var req categoryUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err, h.dev)
		return
	}

	next := *existing
	if req.Name != nil {
		next.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		next.Description = *req.Description
	}
	if req.Color != nil {
		next.Color = *req.Color
	}
	if req.Icon != nil {
		next.Icon = *req.Icon
	}
	if req.IsActive != nil {
		next.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		next.SortOrder = *req.SortOrder
	}

	if msg := validateCategory(next.Name, next.Color); msg != "" {
		respondError(w, apperr.Validation(msg), h.dev)
		return
	}

	updated, err := h.categories.Update(&next)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if updated == nil {
		respondError(w, apperr.NotFound("category"), h.dev)
		return
	}

	h.cache.Invalidate(r.Context(), cache.KeyCategoryCounts)
	respondData(w, http.StatusOK, updated)
}

// Delete removes a category. Refused while non-archived posts still
// reference it.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	if err := h.categories.Delete(id); err != nil {
		respondError(w, err, h.dev)
		return
	}

	h.cache.Invalidate(r.Context(), cache.KeyCategoryCounts)
	respondMessage(w, http.StatusOK, "category deleted")
}
