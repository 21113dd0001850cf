// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"unicode/utf8"

	"inkwell/internal/models"
)

// Validation limits for API inputs.
const (
	minTitleLen        = 5
	maxTitleLen        = 200
	minContentLen      = 50
	maxExcerptLen      = 300
	maxCommentLen      = 1_000
	minCategoryNameLen = 2
	maxCategoryNameLen = 50
	minPasswordLen     = 8
	maxDisplayNameLen  = 100
)

// validatePost checks post fields and returns the first error found.
func validatePost(title, content, excerpt string) string {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) < minTitleLen {
		return "title must be at least 5 characters."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "title is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(strings.TrimSpace(content)) < minContentLen {
		return "content must be at least 50 characters."
	}
	if utf8.RuneCountInString(excerpt) > maxExcerptLen {
		return "excerpt is too long (max 300 characters)."
	}
	return ""
}

// validateComment checks comment content.
func validateComment(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return "comment content is required."
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return "comment is too long (max 1,000 characters)."
	}
	return ""
}

// validateCategory checks category name and color.
func validateCategory(name, color string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < minCategoryNameLen {
		return "category name must be at least 2 characters."
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return "category name is too long (max 50 characters)."
	}
	if color != "" && !models.ValidColor(color) {
		return "color must be a hex value like #1a2b3c."
	}
	return ""
}

// validateCredentials checks registration inputs.
func validateCredentials(email, password, displayName string) string {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return "a valid email address is required."
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "password must be at least 8 characters."
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return "display name is required."
	}
	if utf8.RuneCountInString(displayName) > maxDisplayNameLen {
		return "display name is too long (max 100 characters)."
	}
	return ""
}
