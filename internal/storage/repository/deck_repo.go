package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cardboxhq/cardbox/internal/storage/models"
)

// DeckRepository handles database operations for decks.
type DeckRepository interface {
	// Get retrieves a deck by ID. Returns nil if not found.
	Get(ctx context.Context, id string) (*models.Deck, error)

	// ListByUser retrieves all of a user's decks, newest first.
	ListByUser(ctx context.Context, userID int) ([]*models.Deck, error)

	// Create inserts a new deck.
	Create(ctx context.Context, deck *models.Deck) error

	// Rename updates a deck's name and description.
	Rename(ctx context.Context, id, name string, description *string) error

	// SetColorIdentity overwrites a deck's computed color identity.
	SetColorIdentity(ctx context.Context, id, colorIdentity string) error

	// Touch bumps a deck's updated_at timestamp.
	Touch(ctx context.Context, id string) error

	// Delete removes a deck. Its inventory rows must already be gone.
	Delete(ctx context.Context, id string) error
}

type deckRepository struct {
	db DBTX
}

// NewDeckRepository creates a new deck repository.
func NewDeckRepository(db DBTX) DeckRepository {
	return &deckRepository{db: db}
}

const deckColumns = `id, user_id, name, description, format, color_identity, created_at, updated_at`

func scanDeck(row *sql.Row) (*models.Deck, error) {
	d := &models.Deck{}
	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.Name,
		&d.Description,
		&d.Format,
		&d.ColorIdentity,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan deck: %w", err)
	}
	return d, nil
}

func (r *deckRepository) Get(ctx context.Context, id string) (*models.Deck, error) {
	query := `SELECT ` + deckColumns + ` FROM decks WHERE id = ?`
	return scanDeck(r.db.QueryRowContext(ctx, query, id))
}

func (r *deckRepository) ListByUser(ctx context.Context, userID int) ([]*models.Deck, error) {
	query := `SELECT ` + deckColumns + ` FROM decks WHERE user_id = ? ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query decks: %w", err)
	}
	defer rows.Close()

	var decks []*models.Deck
	for rows.Next() {
		d := &models.Deck{}
		err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.Name,
			&d.Description,
			&d.Format,
			&d.ColorIdentity,
			&d.CreatedAt,
			&d.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decks: %w", err)
	}
	return decks, nil
}

func (r *deckRepository) Create(ctx context.Context, deck *models.Deck) error {
	if deck.CreatedAt.IsZero() {
		deck.CreatedAt = time.Now().UTC()
	}
	deck.UpdatedAt = deck.CreatedAt

	query := `
		INSERT INTO decks (id, user_id, name, description, format, color_identity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		deck.ID,
		deck.UserID,
		deck.Name,
		deck.Description,
		deck.Format,
		deck.ColorIdentity,
		deck.CreatedAt,
		deck.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create deck: %w", err)
	}
	return nil
}

func (r *deckRepository) Rename(ctx context.Context, id, name string, description *string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE decks SET name = ?, description = ?, updated_at = ? WHERE id = ?
	`, name, description, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to rename deck: %w", err)
	}
	return nil
}

func (r *deckRepository) SetColorIdentity(ctx context.Context, id, colorIdentity string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE decks SET color_identity = ?, updated_at = ? WHERE id = ?
	`, colorIdentity, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set deck color identity: %w", err)
	}
	return nil
}

func (r *deckRepository) Touch(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE decks SET updated_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to touch deck: %w", err)
	}
	return nil
}

func (r *deckRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	return nil
}
