package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cardboxhq/cardbox/internal/storage/models"
)

// UserRepository handles database operations for accounts and friend links.
type UserRepository interface {
	// Get retrieves a user by ID. Returns nil if not found.
	Get(ctx context.Context, id int) (*models.User, error)

	// GetByUsername retrieves a user by username. Returns nil if not found.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Create inserts a new user and returns its ID.
	Create(ctx context.Context, username string) (int, error)

	// AddFriend records a symmetric friend link between two users.
	AddFriend(ctx context.Context, userID, friendID int) error

	// RemoveFriend removes the link in both directions.
	RemoveFriend(ctx context.Context, userID, friendID int) error

	// AreFriends reports whether a link exists from userID to friendID.
	AreFriends(ctx context.Context, userID, friendID int) (bool, error)

	// ListFriends retrieves a user's friends.
	ListFriends(ctx context.Context, userID int) ([]*models.User, error)
}

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Username, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}

func (r *userRepository) Get(ctx context.Context, id int) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, created_at FROM users WHERE id = ?`, id))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, created_at FROM users WHERE username = ?`, username))
}

func (r *userRepository) Create(ctx context.Context, username string) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username) VALUES (?)`, username)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get user ID: %w", err)
	}
	return int(id), nil
}

func (r *userRepository) AddFriend(ctx context.Context, userID, friendID int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO friend_links (user_id, friend_id)
		VALUES (?, ?), (?, ?)
	`, userID, friendID, friendID, userID)
	if err != nil {
		return fmt.Errorf("failed to add friend link: %w", err)
	}
	return nil
}

func (r *userRepository) RemoveFriend(ctx context.Context, userID, friendID int) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM friend_links
		WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)
	`, userID, friendID, friendID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove friend link: %w", err)
	}
	return nil
}

func (r *userRepository) AreFriends(ctx context.Context, userID, friendID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM friend_links WHERE user_id = ? AND friend_id = ?)
	`, userID, friendID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check friend link: %w", err)
	}
	return exists, nil
}

func (r *userRepository) ListFriends(ctx context.Context, userID int) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.created_at
		FROM friend_links f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = ?
		ORDER BY u.username
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friends: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.ID, &u.Username, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friends: %w", err)
	}
	return users, nil
}
