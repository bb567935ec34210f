package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cardboxhq/cardbox/internal/storage/models"
)

// CardRepository handles the cached card catalog.
type CardRepository interface {
	// Get retrieves a printing by Scryfall ID. Returns nil if not cached.
	Get(ctx context.Context, scryfallID string) (*models.Card, error)

	// GetByName retrieves any cached printing with the given name,
	// case-insensitively. Returns nil if not cached.
	GetByName(ctx context.Context, name string) (*models.Card, error)

	// GetBySetNumber retrieves the cached printing with the given set code
	// and collector number. Returns nil if not cached.
	GetBySetNumber(ctx context.Context, setCode, collectorNumber string) (*models.Card, error)

	// Upsert inserts or refreshes a cached printing.
	Upsert(ctx context.Context, card *models.Card) error
}

type cardRepository struct {
	db DBTX
}

// NewCardRepository creates a new card repository.
func NewCardRepository(db DBTX) CardRepository {
	return &cardRepository{db: db}
}

const cardColumns = `scryfall_id, oracle_id, name, set_code, set_name, collector_number,
	       color_identity, type_line, rarity, foil_available,
	       usd, usd_foil, image_small, image_normal, last_updated`

func scanCard(row *sql.Row) (*models.Card, error) {
	c := &models.Card{}
	err := row.Scan(
		&c.ScryfallID,
		&c.OracleID,
		&c.Name,
		&c.SetCode,
		&c.SetName,
		&c.CollectorNumber,
		&c.ColorIdentity,
		&c.TypeLine,
		&c.Rarity,
		&c.FoilAvailable,
		&c.USD,
		&c.USDFoil,
		&c.ImageSmall,
		&c.ImageNormal,
		&c.LastUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan card: %w", err)
	}
	return c, nil
}

func (r *cardRepository) Get(ctx context.Context, scryfallID string) (*models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE scryfall_id = ?`
	return scanCard(r.db.QueryRowContext(ctx, query, scryfallID))
}

func (r *cardRepository) GetByName(ctx context.Context, name string) (*models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE name = ? COLLATE NOCASE LIMIT 1`
	return scanCard(r.db.QueryRowContext(ctx, query, name))
}

func (r *cardRepository) GetBySetNumber(ctx context.Context, setCode, collectorNumber string) (*models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards
		WHERE set_code = ? AND collector_number = ? LIMIT 1`
	return scanCard(r.db.QueryRowContext(ctx, query, strings.ToLower(setCode), collectorNumber))
}

func (r *cardRepository) Upsert(ctx context.Context, card *models.Card) error {
	query := `
		INSERT INTO cards (scryfall_id, oracle_id, name, set_code, set_name,
			collector_number, color_identity, type_line, rarity, foil_available,
			usd, usd_foil, image_small, image_normal, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (scryfall_id) DO UPDATE SET
			oracle_id = excluded.oracle_id,
			name = excluded.name,
			set_code = excluded.set_code,
			set_name = excluded.set_name,
			collector_number = excluded.collector_number,
			color_identity = excluded.color_identity,
			type_line = excluded.type_line,
			rarity = excluded.rarity,
			foil_available = excluded.foil_available,
			usd = excluded.usd,
			usd_foil = excluded.usd_foil,
			image_small = excluded.image_small,
			image_normal = excluded.image_normal,
			last_updated = excluded.last_updated
	`

	_, err := r.db.ExecContext(ctx, query,
		card.ScryfallID,
		card.OracleID,
		card.Name,
		card.SetCode,
		card.SetName,
		card.CollectorNumber,
		card.ColorIdentity,
		card.TypeLine,
		card.Rarity,
		card.FoilAvailable,
		card.USD,
		card.USDFoil,
		card.ImageSmall,
		card.ImageNormal,
		card.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert card: %w", err)
	}
	return nil
}
