// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

// Auth groups the registration and login endpoints.
type Auth struct {
	users  *store.UserStore
	tokens *auth.Tokens
	dev    bool
}

// NewAuth creates a new Auth handler group.
func NewAuth(users *store.UserStore, tokens *auth.Tokens, dev bool) *Auth {
	return &Auth{users: users, tokens: tokens, dev: dev}
}

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// tokenResponse is the payload for register and login.
type tokenResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates an account with the author role and issues a token.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err, h.dev)
		return
	}

	if msg := validateCredentials(req.Email, req.Password, req.DisplayName); msg != "" {
		respondError(w, apperr.Validation(msg), h.dev)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := h.users.FindByEmail(email)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if existing != nil {
		respondError(w, apperr.Validation("email is already registered"), h.dev)
		return
	}

	user, err := h.users.Create(email, req.Password, strings.TrimSpace(req.DisplayName), models.RoleAuthor)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	respondData(w, http.StatusCreated, tokenResponse{Token: token, User: user})
}

// Login verifies credentials and issues a token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err, h.dev)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.users.Authenticate(email, req.Password)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if user == nil {
		respondError(w, apperr.Unauthenticated("invalid email or password"), h.dev)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	respondData(w, http.StatusOK, tokenResponse{Token: token, User: user})
}

// Me returns the authenticated user's account.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	if claims == nil {
		respondError(w, apperr.Unauthenticated("authentication required"), h.dev)
		return
	}

	user, err := h.users.FindByID(claims.UserID)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}
	if user == nil {
		respondError(w, apperr.NotFound("user"), h.dev)
		return
	}

	respondData(w, http.StatusOK, user)
}
