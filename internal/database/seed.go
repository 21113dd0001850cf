// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed inserts development fixtures: an admin account and a starter
// category. It is a no-op when users already exist, so it is safe to run
// on every startup in development mode.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("seed count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed hash password: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, 'admin')
	`, "admin@localhost", string(hash), "Admin")
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO categories (name, slug, description, color, sort_order)
		VALUES ('General', 'general', 'Default category for new posts', '#6366f1', 0)
	`)
	if err != nil {
		return fmt.Errorf("seed default category: %w", err)
	}

	slog.Info("development data seeded", "admin", "admin@localhost")
	return nil
}
