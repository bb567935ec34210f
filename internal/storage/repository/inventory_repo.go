package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cardboxhq/cardbox/internal/storage/models"
)

// RowUpdate carries optional field edits for an inventory row. Nil fields
// are left unchanged.
type RowUpdate struct {
	Condition        *models.Condition
	PhysicalLocation *string
	Notes            *string
	IsProxy          *bool
	IsCommander      *bool
	PurchasePriceUSD *float64
}

// InventoryRepository handles database operations for the ownership ledger.
type InventoryRepository interface {
	// GetByID retrieves a row with its catalog card joined in.
	// Returns nil if the row does not exist.
	GetByID(ctx context.Context, id int) (*models.InventoryRow, error)

	// FindByKey retrieves the row holding the given printing and finish at
	// the given location. Returns nil if none exists.
	FindByKey(ctx context.Context, cardID string, foil bool, loc models.Location) (*models.InventoryRow, error)

	// Insert creates a new row and returns its ID.
	Insert(ctx context.Context, row *models.InventoryRow) (int, error)

	// SetQuantity overwrites a row's quantity.
	SetQuantity(ctx context.Context, id, quantity int) error

	// AddQuantity adjusts a row's quantity by delta.
	AddQuantity(ctx context.Context, id, delta int) error

	// Delete removes a row.
	Delete(ctx context.Context, id int) error

	// SetLocation rewrites a row's deck assignment in place. The caller
	// must ensure no other row already holds the destination key.
	SetLocation(ctx context.Context, id int, loc models.Location) error

	// SetCard swaps the printing a row points at. The caller must ensure
	// no other row already holds the resulting key.
	SetCard(ctx context.Context, id int, scryfallID string) error

	// Merge adds quantity to the row holding the given key, creating the
	// row when none exists. The write is a single atomic upsert. It
	// returns the row's ID and its quantity after the merge; the row was
	// freshly created exactly when the returned quantity equals qty.
	Merge(ctx context.Context, cardID string, foil bool, qty int, condition models.Condition, physicalLocation *string, loc models.Location) (id, newQty int, err error)

	// ListBox retrieves a user's box rows with catalog cards joined in.
	ListBox(ctx context.Context, userID int) ([]*models.InventoryRow, error)

	// ListDeck retrieves a deck's rows, mainboard first.
	ListDeck(ctx context.Context, deckID string) ([]*models.InventoryRow, error)

	// Update applies the non-nil fields of upd to a row.
	Update(ctx context.Context, id int, upd RowUpdate) error

	// DeckColorIdentities returns the distinct color identity strings of
	// the printings in a deck's mainboard.
	DeckColorIdentities(ctx context.Context, deckID string) ([]string, error)
}

type inventoryRepository struct {
	db DBTX
}

// NewInventoryRepository creates a new inventory repository.
func NewInventoryRepository(db DBTX) InventoryRepository {
	return &inventoryRepository{db: db}
}

const rowColumns = `i.id, i.user_id, i.card_scryfall_id, i.quantity, i.is_foil,
	       i.condition, i.deck_id, i.is_sideboard, i.is_commander, i.is_proxy,
	       i.physical_location, i.purchase_price_usd, i.notes, i.acquired_at`

const rowWithCardColumns = rowColumns + `,
	       c.scryfall_id, c.oracle_id, c.name, c.set_code, c.set_name,
	       c.collector_number, c.color_identity, c.type_line, c.rarity,
	       c.foil_available, c.usd, c.usd_foil, c.image_small, c.image_normal,
	       c.last_updated`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(s rowScanner) (*models.InventoryRow, error) {
	row := &models.InventoryRow{}
	err := s.Scan(
		&row.ID,
		&row.UserID,
		&row.CardScryfallID,
		&row.Quantity,
		&row.IsFoil,
		&row.Condition,
		&row.DeckID,
		&row.IsSideboard,
		&row.IsCommander,
		&row.IsProxy,
		&row.PhysicalLocation,
		&row.PurchasePriceUSD,
		&row.Notes,
		&row.AcquiredAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan inventory row: %w", err)
	}
	return row, nil
}

func scanRowWithCard(s rowScanner) (*models.InventoryRow, error) {
	row := &models.InventoryRow{}
	card := &models.Card{}
	err := s.Scan(
		&row.ID,
		&row.UserID,
		&row.CardScryfallID,
		&row.Quantity,
		&row.IsFoil,
		&row.Condition,
		&row.DeckID,
		&row.IsSideboard,
		&row.IsCommander,
		&row.IsProxy,
		&row.PhysicalLocation,
		&row.PurchasePriceUSD,
		&row.Notes,
		&row.AcquiredAt,
		&card.ScryfallID,
		&card.OracleID,
		&card.Name,
		&card.SetCode,
		&card.SetName,
		&card.CollectorNumber,
		&card.ColorIdentity,
		&card.TypeLine,
		&card.Rarity,
		&card.FoilAvailable,
		&card.USD,
		&card.USDFoil,
		&card.ImageSmall,
		&card.ImageNormal,
		&card.LastUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan inventory row: %w", err)
	}
	row.Card = card
	return row, nil
}

func (r *inventoryRepository) GetByID(ctx context.Context, id int) (*models.InventoryRow, error) {
	query := `
		SELECT ` + rowWithCardColumns + `
		FROM inventory i
		JOIN cards c ON c.scryfall_id = i.card_scryfall_id
		WHERE i.id = ?
	`
	return scanRowWithCard(r.db.QueryRowContext(ctx, query, id))
}

func (r *inventoryRepository) FindByKey(ctx context.Context, cardID string, foil bool, loc models.Location) (*models.InventoryRow, error) {
	if loc.Box() {
		query := `
			SELECT ` + rowColumns + `
			FROM inventory i
			WHERE i.user_id = ? AND i.card_scryfall_id = ? AND i.is_foil = ?
			  AND i.deck_id IS NULL
		`
		return scanRow(r.db.QueryRowContext(ctx, query, loc.OwnerID, cardID, foil))
	}
	query := `
		SELECT ` + rowColumns + `
		FROM inventory i
		WHERE i.user_id = ? AND i.card_scryfall_id = ? AND i.is_foil = ?
		  AND i.deck_id = ? AND i.is_sideboard = ?
	`
	return scanRow(r.db.QueryRowContext(ctx, query, loc.OwnerID, cardID, foil, loc.DeckID, loc.Sideboard))
}

func (r *inventoryRepository) Insert(ctx context.Context, row *models.InventoryRow) (int, error) {
	query := `
		INSERT INTO inventory (user_id, card_scryfall_id, quantity, is_foil,
			condition, deck_id, is_sideboard, is_commander, is_proxy,
			physical_location, purchase_price_usd, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		row.UserID,
		row.CardScryfallID,
		row.Quantity,
		row.IsFoil,
		row.Condition,
		row.DeckID,
		row.IsSideboard,
		row.IsCommander,
		row.IsProxy,
		row.PhysicalLocation,
		row.PurchasePriceUSD,
		row.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert inventory row: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inventory row ID: %w", err)
	}
	return int(id), nil
}

func (r *inventoryRepository) SetQuantity(ctx context.Context, id, quantity int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE inventory SET quantity = ? WHERE id = ?`, quantity, id)
	if err != nil {
		return fmt.Errorf("failed to set quantity: %w", err)
	}
	return nil
}

func (r *inventoryRepository) AddQuantity(ctx context.Context, id, delta int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE inventory SET quantity = quantity + ? WHERE id = ?`, delta, id)
	if err != nil {
		return fmt.Errorf("failed to adjust quantity: %w", err)
	}
	return nil
}

func (r *inventoryRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM inventory WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete inventory row: %w", err)
	}
	return nil
}

func (r *inventoryRepository) SetLocation(ctx context.Context, id int, loc models.Location) error {
	var deckID *string
	if !loc.Box() {
		deckID = &loc.DeckID
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE inventory
		SET deck_id = ?, is_sideboard = ?, is_commander = CASE WHEN ? IS NULL THEN 0 ELSE is_commander END
		WHERE id = ?
	`, deckID, loc.Sideboard, deckID, id)
	if err != nil {
		return fmt.Errorf("failed to set location: %w", err)
	}
	return nil
}

func (r *inventoryRepository) SetCard(ctx context.Context, id int, scryfallID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE inventory SET card_scryfall_id = ? WHERE id = ?`, scryfallID, id)
	if err != nil {
		return fmt.Errorf("failed to set card: %w", err)
	}
	return nil
}

func (r *inventoryRepository) Merge(ctx context.Context, cardID string, foil bool, qty int, condition models.Condition, physicalLocation *string, loc models.Location) (int, int, error) {
	var (
		query string
		args  []any
	)
	if loc.Box() {
		query = `
			INSERT INTO inventory (user_id, card_scryfall_id, quantity, is_foil,
				condition, physical_location)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, card_scryfall_id, is_foil) WHERE deck_id IS NULL
			DO UPDATE SET
				quantity = quantity + excluded.quantity,
				physical_location = COALESCE(physical_location, excluded.physical_location)
			RETURNING id, quantity
		`
		args = []any{loc.OwnerID, cardID, qty, foil, condition, physicalLocation}
	} else {
		query = `
			INSERT INTO inventory (user_id, card_scryfall_id, quantity, is_foil,
				condition, deck_id, is_sideboard)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, card_scryfall_id, is_foil, deck_id, is_sideboard) WHERE deck_id IS NOT NULL
			DO UPDATE SET quantity = quantity + excluded.quantity
			RETURNING id, quantity
		`
		args = []any{loc.OwnerID, cardID, qty, foil, condition, loc.DeckID, loc.Sideboard}
	}

	var id, newQty int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id, &newQty); err != nil {
		return 0, 0, fmt.Errorf("failed to merge inventory row: %w", err)
	}
	return id, newQty, nil
}

func (r *inventoryRepository) ListBox(ctx context.Context, userID int) ([]*models.InventoryRow, error) {
	query := `
		SELECT ` + rowWithCardColumns + `
		FROM inventory i
		JOIN cards c ON c.scryfall_id = i.card_scryfall_id
		WHERE i.user_id = ? AND i.deck_id IS NULL
		ORDER BY c.name, i.is_foil
	`
	return r.list(ctx, query, userID)
}

func (r *inventoryRepository) ListDeck(ctx context.Context, deckID string) ([]*models.InventoryRow, error) {
	query := `
		SELECT ` + rowWithCardColumns + `
		FROM inventory i
		JOIN cards c ON c.scryfall_id = i.card_scryfall_id
		WHERE i.deck_id = ?
		ORDER BY i.is_sideboard, i.is_commander DESC, c.name, i.is_foil
	`
	return r.list(ctx, query, deckID)
}

func (r *inventoryRepository) list(ctx context.Context, query string, args ...any) ([]*models.InventoryRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	var result []*models.InventoryRow
	for rows.Next() {
		row, err := scanRowWithCard(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inventory: %w", err)
	}
	return result, nil
}

func (r *inventoryRepository) Update(ctx context.Context, id int, upd RowUpdate) error {
	set := []string{}
	args := []any{}

	if upd.Condition != nil {
		set = append(set, "condition = ?")
		args = append(args, *upd.Condition)
	}
	if upd.PhysicalLocation != nil {
		set = append(set, "physical_location = ?")
		args = append(args, *upd.PhysicalLocation)
	}
	if upd.Notes != nil {
		set = append(set, "notes = ?")
		args = append(args, *upd.Notes)
	}
	if upd.IsProxy != nil {
		set = append(set, "is_proxy = ?")
		args = append(args, *upd.IsProxy)
	}
	if upd.IsCommander != nil {
		set = append(set, "is_commander = ?")
		args = append(args, *upd.IsCommander)
	}
	if upd.PurchasePriceUSD != nil {
		set = append(set, "purchase_price_usd = ?")
		args = append(args, *upd.PurchasePriceUSD)
	}
	if len(set) == 0 {
		return nil
	}

	query := "UPDATE inventory SET "
	for i, clause := range set {
		if i > 0 {
			query += ", "
		}
		query += clause
	}
	query += " WHERE id = ?"
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update inventory row: %w", err)
	}
	return nil
}

func (r *inventoryRepository) DeckColorIdentities(ctx context.Context, deckID string) ([]string, error) {
	query := `
		SELECT DISTINCT c.color_identity
		FROM inventory i
		JOIN cards c ON c.scryfall_id = i.card_scryfall_id
		WHERE i.deck_id = ?
	`

	rows, err := r.db.QueryContext(ctx, query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to query deck color identities: %w", err)
	}
	defer rows.Close()

	var identities []string
	for rows.Next() {
		var ci string
		if err := rows.Scan(&ci); err != nil {
			return nil, fmt.Errorf("failed to scan color identity: %w", err)
		}
		identities = append(identities, ci)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate color identities: %w", err)
	}
	return identities, nil
}
