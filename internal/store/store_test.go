// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"inkwell/internal/database"
	"inkwell/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser inserts a user with a unique email and registers
// cleanup. Cleanups run LIFO, so dependent rows created later are
// removed first.
func createTestUser(t *testing.T, db *sql.DB, role models.Role) *models.User {
	t.Helper()

	email := "test-" + uuid.NewString()[:8] + "@example.com"
	u, err := NewUserStore(db).Create(email, "test-password-123", "Test "+string(role), role)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

// createTestCategory inserts a category with a unique name and registers
// cleanup.
func createTestCategory(t *testing.T, db *sql.DB) *models.Category {
	t.Helper()

	c, err := NewCategoryStore(db).Create(&models.Category{
		Name:     "Test Category " + uuid.NewString()[:8],
		Color:    "#336699",
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM categories WHERE id = $1", c.ID) })
	return c
}

// createTestPost inserts a post via the store, so the derivation
// pipeline runs, and registers a full cleanup (comments first).
func createTestPost(t *testing.T, db *sql.DB, p *models.Post) *models.Post {
	t.Helper()

	created, err := NewPostStore(db).Create(p)
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	t.Cleanup(func() {
		db.Exec(`DELETE FROM comment_likes WHERE comment_id IN
			(SELECT id FROM comments WHERE post_id = $1)`, created.ID)
		db.Exec("DELETE FROM comments WHERE post_id = $1", created.ID)
		db.Exec("DELETE FROM posts WHERE id = $1", created.ID)
	})
	return created
}

// postFixture builds an unsaved post with required fields filled in.
func postFixture(author *models.User, category *models.Category, status models.PostStatus) *models.Post {
	return &models.Post{
		Title:         "Test Post " + uuid.NewString()[:8],
		Content:       "This is a test post body with enough words to pass the minimum length validation.",
		AuthorID:      author.ID,
		CategoryID:    &category.ID,
		Status:        status,
		AllowComments: true,
	}
}
