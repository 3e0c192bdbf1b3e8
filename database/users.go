package database

import (
	"context"
	"database/sql"
	"fmt"

	"road-condition-service/models"
)

// CreateOrUpdateUser upserts a user row keyed by id.
func (d *Database) CreateOrUpdateUser(ctx context.Context, user *models.User) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO users (id, name, reputation) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE name = VALUES(name)`,
		user.ID, user.Name, user.Reputation)
	if err != nil {
		return fmt.Errorf("failed to create or update user %s: %w", user.ID, err)
	}
	return nil
}

// GetUser fetches a user by id.
func (d *Database) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := d.db.QueryRowContext(ctx,
		`SELECT id, name, reputation, created_at FROM users WHERE id = ?`, id).
		Scan(&user.ID, &user.Name, &user.Reputation, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch user %s: %w", id, err)
	}
	return &user, nil
}

// SearchUsers finds users whose name contains the given fragment,
// case-insensitively.
func (d *Database) SearchUsers(ctx context.Context, name string) ([]models.User, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, name, reputation, created_at FROM users WHERE name LIKE ?`,
		"%"+name+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Reputation, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
