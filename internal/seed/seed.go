package seed

import (
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way. The admin account is
// created on first run; a changed ADMIN_PASSWORD re-hashes it on the next.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var current string
	err := tx.QueryRow(`SELECT password_hash FROM users WHERE email = ?`, email).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		hash, err := HashPassword(password)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, hash); err != nil {
			return fmt.Errorf("insert admin user: %w", err)
		}
		stats.Inserts++
		return nil
	case err != nil:
		return fmt.Errorf("query admin user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(current), []byte(password)) == nil {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE users SET password_hash = ? WHERE email = ?`, hash, email); err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	stats.Updates++
	return nil
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash admin password: %w", err)
	}
	return string(hash), nil
}
