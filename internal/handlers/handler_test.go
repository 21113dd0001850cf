// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for API
// integration tests. Requests run through the real router so the
// middleware chain is exercised too. Tests are skipped when PostgreSQL
// is unavailable; the aggregate cache runs disabled (nil client).
package handlers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"inkwell/internal/auth"
	"inkwell/internal/cache"
	"inkwell/internal/database"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/router"
	"inkwell/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testEnv holds all dependencies for API integration tests.
type testEnv struct {
	DB         *sql.DB
	Users      *store.UserStore
	Categories *store.CategoryStore
	Posts      *store.PostStore
	Comments   *store.CommentStore
	Tokens     *auth.Tokens
	Router     http.Handler
}

// newTestEnv builds the full handler stack over a real database.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)

	users := store.NewUserStore(db)
	categories := store.NewCategoryStore(db)
	posts := store.NewPostStore(db)
	comments := store.NewCommentStore(db)

	tokens := auth.NewTokens("handlers-test-secret", time.Hour)
	aggregates := cache.New(nil, time.Minute)

	limiter := middleware.NewRateLimiter(100_000, time.Minute)
	t.Cleanup(limiter.Stop)

	r := router.New(
		tokens,
		limiter,
		handlers.NewAuth(users, tokens, true),
		handlers.NewPosts(posts, categories, aggregates, true),
		handlers.NewCategories(categories, aggregates, true),
		handlers.NewComments(comments, posts, true),
	)

	return &testEnv{
		DB:         db,
		Users:      users,
		Categories: categories,
		Posts:      posts,
		Comments:   comments,
		Tokens:     tokens,
		Router:     r,
	}
}

// envelope mirrors the response wrapper every endpoint writes.
type envelope struct {
	Success    bool               `json:"success"`
	Data       json.RawMessage    `json:"data"`
	Message    string             `json:"message"`
	Error      string             `json:"error"`
	Pagination *models.Pagination `json:"pagination"`
}

// doRequest serves a request through the router. A non-empty token is
// sent as a bearer credential; a non-nil body is sent as JSON.
func doRequest(t *testing.T, env *testEnv, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	env.Router.ServeHTTP(rr, req)

	var resp envelope
	if rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("response is not the JSON envelope: %v\nbody: %s", err, rr.Body.String())
		}
	}
	return rr, resp
}

// unmarshalData decodes the envelope's data field into dest.
func unmarshalData(t *testing.T, resp envelope, dest any) {
	t.Helper()
	if err := json.Unmarshal(resp.Data, dest); err != nil {
		t.Fatalf("decode data: %v\ndata: %s", err, resp.Data)
	}
}

// createUser inserts a user with the given role and returns it with a
// valid bearer token. The row is removed on cleanup.
func createUser(t *testing.T, env *testEnv, role models.Role) (*models.User, string) {
	t.Helper()

	email := fmt.Sprintf("handler-%s@example.com", uuid.NewString()[:8])
	user, err := env.Users.Create(email, "password123", "Handler Tester", role)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec(`DELETE FROM users WHERE id = $1`, user.ID)
	})

	token, err := env.Tokens.Issue(user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return user, token
}

// createCategory inserts a category with a unique name, removed on
// cleanup.
func createCategory(t *testing.T, env *testEnv) *models.Category {
	t.Helper()

	created, err := env.Categories.Create(&models.Category{
		Name:     "Handler Cat " + uuid.NewString()[:8],
		Color:    "#336699",
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec(`UPDATE posts SET category_id = NULL WHERE category_id = $1`, created.ID)
		env.DB.Exec(`DELETE FROM categories WHERE id = $1`, created.ID)
	})
	return created
}

// createPost inserts a post through the store, removed (with comments)
// on cleanup.
func createPost(t *testing.T, env *testEnv, author *models.User, category *models.Category, status models.PostStatus) *models.Post {
	t.Helper()

	created, err := env.Posts.Create(&models.Post{
		Title:         "Handler test post " + uuid.NewString()[:8],
		Content:       "This handler test post body carries enough words to pass the minimum content length validation rule.",
		AuthorID:      author.ID,
		CategoryID:    &category.ID,
		Status:        status,
		AllowComments: true,
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec(`DELETE FROM comment_likes WHERE comment_id IN (SELECT id FROM comments WHERE post_id = $1)`, created.ID)
		env.DB.Exec(`DELETE FROM comments WHERE post_id = $1`, created.ID)
		env.DB.Exec(`DELETE FROM posts WHERE id = $1`, created.ID)
	})
	return created
}

// createComment inserts a comment through the store. Rows are removed
// by the owning post's cleanup.
func createComment(t *testing.T, env *testEnv, author *models.User, post *models.Post, parentID *uuid.UUID) *models.Comment {
	t.Helper()

	created, err := env.Comments.Create(&models.Comment{
		Content:  "A handler test comment.",
		AuthorID: author.ID,
		PostID:   post.ID,
		ParentID: parentID,
	})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return created
}
