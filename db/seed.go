package db

import (
	"context"
	"fmt"
)

// SeedAdmin creates the default administrator when no user exists yet.
// It reports whether an account was created.
func (s *Store) SeedAdmin(ctx context.Context, username, password string, hash func(string) (string, error)) (bool, error) {
	count, err := s.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hashed, err := hash(password)
	if err != nil {
		return false, fmt.Errorf("error hashing admin password: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	// Guarded insert: two instances starting together create one admin.
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash)
		SELECT $1, $2
		WHERE NOT EXISTS (SELECT 1 FROM users)
		ON CONFLICT (username) DO NOTHING
	`, username, hashed)
	if err != nil {
		return false, fmt.Errorf("error seeding admin user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
