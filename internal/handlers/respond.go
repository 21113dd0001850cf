// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON API endpoints. Every endpoint
// writes the same response envelope and maps classified errors to HTTP
// status codes; raw database errors never reach clients.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
)

// response is the envelope every endpoint writes.
type response struct {
	Success    bool               `json:"success"`
	Data       any                `json:"data,omitempty"`
	Message    string             `json:"message,omitempty"`
	Error      string             `json:"error,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

// likeResult is the payload returned by post and comment like toggles.
type likeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

func writeJSON(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("write response failed", "error", err)
	}
}

// respondData writes a successful envelope around data.
func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, response{Success: true, Data: data})
}

// respondList writes a successful envelope with pagination metadata.
func respondList(w http.ResponseWriter, data any, p models.Pagination) {
	writeJSON(w, http.StatusOK, response{Success: true, Data: data, Pagination: &p})
}

// respondMessage writes a successful envelope carrying only a message.
func respondMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, response{Success: true, Message: msg})
}

// respondError classifies err and writes the matching status and
// envelope. Internal errors are logged; their detail is exposed only in
// development mode.
func respondError(w http.ResponseWriter, err error, dev bool) {
	kind := apperr.KindOf(err)
	msg := apperr.MessageOf(err)

	var status int
	switch kind {
	case apperr.KindValidation, apperr.KindConflict:
		status = http.StatusBadRequest
	case apperr.KindUnauthenticated:
		status = http.StatusUnauthorized
	case apperr.KindForbidden:
		status = http.StatusForbidden
	case apperr.KindNotFound:
		status = http.StatusNotFound
	default:
		status = http.StatusInternalServerError
		slog.Error("request failed", "error", err)
		if dev {
			msg = err.Error()
		}
	}

	writeJSON(w, status, response{Success: false, Error: msg})
}

// maxBodyBytes caps request bodies at 1 MiB.
const maxBodyBytes = 1 << 20

// decodeJSON parses the request body into dst. Malformed bodies come
// back as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("invalid JSON body")
	}
	return nil
}

// uuidParam parses the named chi URL parameter as a UUID.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Validationf("invalid %s", name)
	}
	return id, nil
}

// viewerID returns the authenticated user's ID, or uuid.Nil for
// anonymous requests. Stores bind it to compute liked_by_me.
func viewerID(r *http.Request) uuid.UUID {
	if claims := middleware.ClaimsFromCtx(r.Context()); claims != nil {
		return claims.UserID
	}
	return uuid.Nil
}

// canModify reports whether the actor owns the resource or is an admin.
func canModify(claims *auth.Claims, ownerID uuid.UUID) bool {
	return claims != nil && (claims.UserID == ownerID || claims.Role == models.RoleAdmin)
}
