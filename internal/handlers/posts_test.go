// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

func TestPostCreateEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, token := createUser(t, env, models.RoleAuthor)
	category := createCategory(t, env)

	body := map[string]any{
		"title":       "An API-created post",
		"content":     strings.Repeat("words in the body of this api created post ", 3),
		"category_id": category.ID.String(),
		"tags":        []string{"Go", " api ", "go"},
		"status":      "published",
	}

	rr, resp := doRequest(t, env, http.MethodPost, "/api/posts", token, body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, body %s", rr.Code, rr.Body.String())
	}

	var post models.Post
	unmarshalData(t, resp, &post)
	t.Cleanup(func() {
		env.DB.Exec(`DELETE FROM posts WHERE id = $1`, post.ID)
	})

	if !strings.HasPrefix(post.Slug, "an-api-created-post-") {
		t.Errorf("slug: got %q", post.Slug)
	}
	if post.ReadTime != 1 {
		t.Errorf("read_time: got %d, want 1", post.ReadTime)
	}
	if !strings.HasSuffix(post.Excerpt, "...") {
		t.Errorf("excerpt not derived: %q", post.Excerpt)
	}
	if len(post.Tags) != 2 || post.Tags[0] != "go" || post.Tags[1] != "api" {
		t.Errorf("tags not normalized: %v", post.Tags)
	}
	if post.PublishedAt == nil {
		t.Error("published_at not set on publish")
	}
}

func TestPostCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	_, token := createUser(t, env, models.RoleAuthor)
	category := createCategory(t, env)

	longEnough := strings.Repeat("content ", 10)

	tests := []struct {
		name      string
		body      map[string]any
		wantError string
	}{
		{
			name:      "missing category",
			body:      map[string]any{"title": "Valid title", "content": longEnough},
			wantError: "category_id is required",
		},
		{
			name: "unknown category",
			body: map[string]any{
				"title": "Valid title", "content": longEnough,
				"category_id": "00000000-0000-0000-0000-000000000001",
			},
			wantError: "category does not exist",
		},
		{
			name: "short title",
			body: map[string]any{
				"title": "Hey", "content": longEnough,
				"category_id": category.ID.String(),
			},
		},
		{
			name: "short content",
			body: map[string]any{
				"title": "Valid title", "content": "too short",
				"category_id": category.ID.String(),
			},
		},
		{
			name: "bad status",
			body: map[string]any{
				"title": "Valid title", "content": longEnough,
				"category_id": category.ID.String(), "status": "pending",
			},
			wantError: "invalid status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, resp := doRequest(t, env, http.MethodPost, "/api/posts", token, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400 (body %s)", rr.Code, rr.Body.String())
			}
			if tt.wantError != "" && resp.Error != tt.wantError {
				t.Errorf("error: got %q, want %q", resp.Error, tt.wantError)
			}
		})
	}
}

func TestPostCreateRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rr, _ := doRequest(t, env, http.MethodPost, "/api/posts", "", map[string]any{})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestPostGetEndpoint(t *testing.T) {
	env := newTestEnv(t)
	author, token := createUser(t, env, models.RoleAuthor)
	category := createCategory(t, env)
	post := createPost(t, env, author, category, models.PostStatusPublished)

	t.Run("by slug with rendered content", func(t *testing.T) {
		rr, resp := doRequest(t, env, http.MethodGet, "/api/posts/"+post.Slug, "", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d", rr.Code)
		}
		var got models.Post
		unmarshalData(t, resp, &got)
		if got.ID != post.ID {
			t.Errorf("got post %s, want %s", got.ID, post.ID)
		}
		if !strings.Contains(got.ContentHTML, "<p>") {
			t.Errorf("content_html missing: %q", got.ContentHTML)
		}
	})

	t.Run("by id", func(t *testing.T) {
		rr, _ := doRequest(t, env, http.MethodGet, "/api/posts/"+post.ID.String(), "", nil)
		if rr.Code != http.StatusOK {
			t.Errorf("status: got %d", rr.Code)
		}
	})

	t.Run("missing", func(t *testing.T) {
		rr, _ := doRequest(t, env, http.MethodGet, "/api/posts/no-such-slug", "", nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("status: got %d, want 404", rr.Code)
		}
	})

	draft := createPost(t, env, author, category, models.PostStatusDraft)

	t.Run("draft hidden from anonymous", func(t *testing.T) {
		rr, _ := doRequest(t, env, http.MethodGet, "/api/posts/"+draft.ID.String(), "", nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("status: got %d, want 404", rr.Code)
		}
	})

	t.Run("draft visible to owner", func(t *testing.T) {
		rr, _ := doRequest(t, env, http.MethodGet, "/api/posts/"+draft.ID.String(), token, nil)
		if rr.Code != http.StatusOK {
			t.Errorf("status: got %d, want 200", rr.Code)
		}
	})

	t.Run("draft hidden from other users", func(t *testing.T) {
		_, otherToken := createUser(t, env, models.RoleAuthor)
		rr, _ := doRequest(t, env, http.MethodGet, "/api/posts/"+draft.ID.String(), otherToken, nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("status: got %d, want 404", rr.Code)
		}
	})
}

func TestPostListEndpoint(t *testing.T) {
	env := newTestEnv(t)
	author, token := createUser(t, env, models.RoleAuthor)
	category := createCategory(t, env)
	published := createPost(t, env, author, category, models.PostStatusPublished)
	draft := createPost(t, env, author, category, models.PostStatusDraft)

	containsPost := func(resp envelope, id string) bool {
		var items []models.Post
		unmarshalData(t, resp, &items)
		for _, p := range items {
			if p.ID.String() == id {
				return true
			}
		}
		return false
	}

	t.Run("default excludes drafts", func(t *testing.T) {
		rr, resp := doRequest(t, env, http.MethodGet,
			"/api/posts?category="+category.Slug, "", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d", rr.Code)
		}
		if !containsPost(resp, published.ID.String()) {
			t.Error("published post missing from default listing")
		}
		if containsPost(resp, draft.ID.String()) {
			t.Error("draft leaked into default listing")
		}
		if resp.Pagination == nil {
			t.Error("pagination missing")
		}
	})

	t.Run("draft listing requires auth", func(t *testing.T) {
		rr, _ := doRequest(t, env, http.MethodGet, "/api/posts?status=draft", "", nil)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
	})

	t.Run("owner lists own drafts", func(t *testing.T) {
		rr, resp := doRequest(t, env, http.MethodGet,
			"/api/posts?status=draft&category="+category.Slug, token, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d", rr.Code)
		}
		if !containsPost(resp, draft.ID.String()) {
			t.Error("owner's draft missing")
		}
	})

	t.Run("other authors do not see foreign drafts", func(t *testing.T) {
		_, otherToken := createUser(t, env, models.RoleAuthor)
		rr, resp := doRequest(t, env, http.MethodGet,
			"/api/posts?status=draft&category="+category.Slug, otherToken, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d", rr.Code)
		}
		if containsPost(resp, draft.ID.String()) {
			t.Error("foreign draft leaked")
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		rr, _ := doRequest(t, env, http.MethodGet, "/api/posts?category=no-such-category", "", nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("status: got %d, want 404", rr.Code)
		}
	})
}

func TestPostUpdateEndpoint(t *testing.T) {
	env := newTestEnv(t)
	author, token := createUser(t, env, models.RoleAuthor)
	category := createCategory(t, env)
	post := createPost(t, env, author, category, models.PostStatusPublished)

	t.Run("partial update keeps absent fields", func(t *testing.T) {
		rr, resp := doRequest(t, env, http.MethodPut, "/api/posts/"+post.ID.String(), token,
			map[string]any{"title": "A freshly retitled post"})
		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d, body %s", rr.Code, rr.Body.String())
		}

		var got models.Post
		unmarshalData(t, resp, &got)
		if got.Title != "A freshly retitled post" {
			t.Errorf("title: got %q", got.Title)
		}
		if got.Content != post.Content {
			t.Error("content changed on title-only update")
		}
		if !strings.HasPrefix(got.Slug, "a-freshly-retitled-post-") {
			t.Errorf("slug not regenerated: %q", got.Slug)
		}
		if got.PublishedAt == nil || !got.PublishedAt.Equal(*post.PublishedAt) {
			t.Error("published_at drifted on update")
		}
	})

	t.Run("forbidden for other authors", func(t *testing.T) {
		_, otherToken := createUser(t, env, models.RoleAuthor)
		rr, _ := doRequest(t, env, http.MethodPut, "/api/posts/"+post.ID.String(), otherToken,
			map[string]any{"title": "Hijacked title here"})
		if rr.Code != http.StatusForbidden {
			t.Errorf("status: got %d, want 403", rr.Code)
		}
	})

	t.Run("admin may edit any post", func(t *testing.T) {
		_, adminToken := createUser(t, env, models.RoleAdmin)
		rr, _ := doRequest(t, env, http.MethodPut, "/api/posts/"+post.ID.String(), adminToken,
			map[string]any{"is_editors_pick": true})
		if rr.Code != http.StatusOK {
			t.Errorf("status: got %d, want 200", rr.Code)
		}
	})

	t.Run("anonymous rejected", func(t *testing.T) {
		rr, _ := doRequest(t, env, http.MethodPut, "/api/posts/"+post.ID.String(), "",
			map[string]any{"title": "Anonymous title edit"})
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
	})
}

func TestPostDeleteEndpoint(t *testing.T) {
	env := newTestEnv(t)
	author, token := createUser(t, env, models.RoleAuthor)
	category := createCategory(t, env)
	post := createPost(t, env, author, category, models.PostStatusPublished)

	t.Run("forbidden for other authors", func(t *testing.T) {
		_, otherToken := createUser(t, env, models.RoleAuthor)
		rr, _ := doRequest(t, env, http.MethodDelete, "/api/posts/"+post.ID.String(), otherToken, nil)
		if rr.Code != http.StatusForbidden {
			t.Errorf("status: got %d, want 403", rr.Code)
		}
	})

	t.Run("owner deletes", func(t *testing.T) {
		rr, resp := doRequest(t, env, http.MethodDelete, "/api/posts/"+post.ID.String(), token, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d", rr.Code)
		}
		if resp.Message != "post deleted" {
			t.Errorf("message: got %q", resp.Message)
		}

		rr, _ = doRequest(t, env, http.MethodGet, "/api/posts/"+post.ID.String(), token, nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("post still readable after delete: %d", rr.Code)
		}
	})
}

func TestPostLikeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	author, _ := createUser(t, env, models.RoleAuthor)
	_, token := createUser(t, env, models.RoleAuthor)
	category := createCategory(t, env)
	post := createPost(t, env, author, category, models.PostStatusPublished)

	var result struct {
		Liked     bool `json:"liked"`
		LikeCount int  `json:"likeCount"`
	}

	rr, resp := doRequest(t, env, http.MethodPost, "/api/posts/"+post.ID.String()+"/like", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	unmarshalData(t, resp, &result)
	if !result.Liked || result.LikeCount != 1 {
		t.Errorf("first toggle: got liked=%v count=%d", result.Liked, result.LikeCount)
	}

	rr, resp = doRequest(t, env, http.MethodPost, "/api/posts/"+post.ID.String()+"/like", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	unmarshalData(t, resp, &result)
	if result.Liked || result.LikeCount != 0 {
		t.Errorf("second toggle: got liked=%v count=%d", result.Liked, result.LikeCount)
	}

	t.Run("anonymous rejected", func(t *testing.T) {
		rr, _ := doRequest(t, env, http.MethodPost, "/api/posts/"+post.ID.String()+"/like", "", nil)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
	})
}

func TestPostSearchEndpoint(t *testing.T) {
	env := newTestEnv(t)
	author, _ := createUser(t, env, models.RoleAuthor)
	category := createCategory(t, env)

	marker := "zylkovite"
	created, err := env.Posts.Create(&models.Post{
		Title:         "A study of " + marker + " minerals",
		Content:       strings.Repeat("geology field notes with many details ", 3),
		AuthorID:      author.ID,
		CategoryID:    &category.ID,
		Status:        models.PostStatusPublished,
		AllowComments: true,
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec(`DELETE FROM posts WHERE id = $1`, created.ID)
	})

	t.Run("missing query", func(t *testing.T) {
		rr, resp := doRequest(t, env, http.MethodGet, "/api/posts/search", "", nil)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status: got %d, want 400", rr.Code)
		}
		if resp.Error != "search query is required" {
			t.Errorf("error: got %q", resp.Error)
		}
	})

	t.Run("match", func(t *testing.T) {
		rr, resp := doRequest(t, env, http.MethodGet, "/api/posts/search?q="+marker, "", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d", rr.Code)
		}
		var items []models.Post
		unmarshalData(t, resp, &items)
		if len(items) != 1 || items[0].ID != created.ID {
			t.Errorf("search results: got %d items", len(items))
		}
	})
}

func TestPostFeaturedEndpoint(t *testing.T) {
	env := newTestEnv(t)
	author, _ := createUser(t, env, models.RoleAuthor)
	category := createCategory(t, env)

	featured, err := env.Posts.Create(&models.Post{
		Title:         "Featured handler post " + uuid.NewString()[:8],
		Content:       strings.Repeat("a featured post body with plenty of words inside ", 2),
		AuthorID:      author.ID,
		CategoryID:    &category.ID,
		Status:        models.PostStatusPublished,
		IsFeatured:    true,
		AllowComments: true,
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec(`DELETE FROM posts WHERE id = $1`, featured.ID)
	})
	plain := createPost(t, env, author, category, models.PostStatusPublished)

	rr, resp := doRequest(t, env, http.MethodGet, "/api/posts/featured?limit=20", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}

	var items []models.Post
	unmarshalData(t, resp, &items)

	var sawFeatured, sawPlain bool
	for _, p := range items {
		if p.ID == featured.ID {
			sawFeatured = true
		}
		if p.ID == plain.ID {
			sawPlain = true
		}
	}
	if !sawFeatured {
		t.Error("featured post missing")
	}
	if sawPlain {
		t.Error("non-featured post included")
	}
}
