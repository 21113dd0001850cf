// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// hexColor matches 3- or 6-digit CSS hex colors like #fff or #1a2b3c.
var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Category groups posts under a unique name and slug.
// Each post has exactly one category assigned.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Virtual field populated by store methods: count of published posts.
	PostCount int `json:"post_count"`
}

// ValidColor reports whether s is a 3- or 6-digit hex color.
func ValidColor(s string) bool {
	return hexColor.MatchString(s)
}

// CategorySummary is the category subset embedded in post responses.
type CategorySummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Slug  string    `json:"slug"`
	Color string    `json:"color"`
}

// Summary returns the subset of the category embedded in post responses.
func (c *Category) Summary() CategorySummary {
	return CategorySummary{ID: c.ID, Name: c.Name, Slug: c.Slug, Color: c.Color}
}
