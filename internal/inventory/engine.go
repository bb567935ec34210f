// Package inventory implements the ownership ledger. Every mutation moves
// copies between locations through a single relocate primitive, which keeps
// quantities positive and at most one row per identity key while never
// creating or destroying copies.
package inventory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cardboxhq/cardbox/internal/storage"
	"github.com/cardboxhq/cardbox/internal/storage/models"
	"github.com/cardboxhq/cardbox/internal/storage/repository"
)

// MaxQuantity caps how many copies a single request may add or set.
// Merged rows may grow beyond it.
const MaxQuantity = 99

// Engine executes ledger mutations. Every public method runs in its own
// transaction, so concurrent callers cannot observe or create half-applied
// moves.
type Engine struct {
	db *storage.DB
}

// NewEngine creates an engine over the given database.
func NewEngine(db *storage.DB) *Engine {
	return &Engine{db: db}
}

type repos struct {
	inv   repository.InventoryRepository
	decks repository.DeckRepository
	cards repository.CardRepository
	users repository.UserRepository
}

func newRepos(tx *sql.Tx) repos {
	return repos{
		inv:   repository.NewInventoryRepository(tx),
		decks: repository.NewDeckRepository(tx),
		cards: repository.NewCardRepository(tx),
		users: repository.NewUserRepository(tx),
	}
}

func rowLocation(row *models.InventoryRow) models.Location {
	loc := models.Location{OwnerID: row.UserID}
	if row.DeckID != nil {
		loc.DeckID = *row.DeckID
		loc.Sideboard = row.IsSideboard
	}
	return loc
}

// Add merges qty copies of a printing into the given location, creating the
// row when none exists. It reports whether a new row was created.
func (e *Engine) Add(ctx context.Context, actorID int, cardID string, foil bool, qty int, condition models.Condition, physicalLocation *string, loc models.Location) (*models.InventoryRow, bool, error) {
	if qty < 1 || qty > MaxQuantity {
		return nil, false, &ValidationError{Reason: fmt.Sprintf("quantity must be between 1 and %d", MaxQuantity)}
	}
	if condition == "" {
		condition = models.ConditionNearMint
	}
	if !models.ValidCondition(string(condition)) {
		return nil, false, &ValidationError{Reason: fmt.Sprintf("unknown condition %q", condition)}
	}
	if loc.OwnerID != actorID {
		return nil, false, &NotPermittedError{Reason: "cannot add to another user's collection"}
	}

	var (
		result  *models.InventoryRow
		created bool
	)
	err := e.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		r := newRepos(tx)

		card, err := r.cards.Get(ctx, cardID)
		if err != nil {
			return err
		}
		if card == nil {
			return &ValidationError{Reason: fmt.Sprintf("unknown printing %s", cardID)}
		}
		if foil && !card.FoilAvailable {
			return &ValidationError{Reason: fmt.Sprintf("%s has no foil finish in this printing", card.Name)}
		}
		if !loc.Box() {
			if err := requireDeck(ctx, r, actorID, loc.DeckID); err != nil {
				return err
			}
		}

		id, newQty, err := r.inv.Merge(ctx, cardID, foil, qty, condition, physicalLocation, loc)
		if err != nil {
			return err
		}
		// The row existed before exactly when the merged quantity
		// exceeds what we just added.
		created = newQty == qty

		if !loc.Box() {
			if err := refreshDeckIdentity(ctx, r, loc.DeckID); err != nil {
				return err
			}
		}

		result, err = r.inv.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

// Move relocates qty copies from a row to another location in the same
// user's collection. Moving a row onto its own location is a no-op.
func (e *Engine) Move(ctx context.Context, actorID, rowID, qty int, dest models.Location) (*models.InventoryRow, error) {
	if qty < 1 {
		return nil, &ValidationError{Reason: "quantity must be at least 1"}
	}
	if dest.OwnerID != actorID {
		return nil, &NotPermittedError{Reason: "cannot move into another user's collection"}
	}

	var result *models.InventoryRow
	err := e.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		r := newRepos(tx)

		row, err := r.inv.GetByID(ctx, rowID)
		if err != nil {
			return err
		}
		if row == nil || row.UserID != actorID {
			return &RowNotFoundError{ID: rowID}
		}
		if !dest.Box() {
			if err := requireDeck(ctx, r, actorID, dest.DeckID); err != nil {
				return err
			}
		}

		src := rowLocation(row)
		if src == dest {
			result = row
			return nil
		}

		result, err = relocate(ctx, r.inv, row, qty, dest)
		if err != nil {
			return err
		}
		return refreshAffectedDecks(ctx, r, src, dest)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Transfer hands qty copies of a box row to a friend's box. Only box rows
// can change hands, and only between linked users.
func (e *Engine) Transfer(ctx context.Context, actorID, rowID, qty, recipientID int) (*models.InventoryRow, error) {
	if qty < 1 {
		return nil, &ValidationError{Reason: "quantity must be at least 1"}
	}
	if recipientID == actorID {
		return nil, &ValidationError{Reason: "cannot transfer cards to yourself"}
	}

	var result *models.InventoryRow
	err := e.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		r := newRepos(tx)

		row, err := r.inv.GetByID(ctx, rowID)
		if err != nil {
			return err
		}
		if row == nil || row.UserID != actorID {
			return &RowNotFoundError{ID: rowID}
		}
		if !row.InBox() {
			return &NotPermittedError{Reason: "only box cards can be transferred"}
		}

		recipient, err := r.users.Get(ctx, recipientID)
		if err != nil {
			return err
		}
		if recipient == nil {
			return &ValidationError{Reason: fmt.Sprintf("unknown user %d", recipientID)}
		}
		linked, err := r.users.AreFriends(ctx, actorID, recipientID)
		if err != nil {
			return err
		}
		if !linked {
			return &NotPermittedError{Reason: "cards can only be transferred between friends"}
		}

		result, err = relocate(ctx, r.inv, row, qty, models.Location{OwnerID: recipientID})
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SubstitutePrinting swaps one copy of a row to a different printing of the
// same card, merging with an existing row for the new printing when one
// holds the same key. Exactly one copy moves per call.
func (e *Engine) SubstitutePrinting(ctx context.Context, actorID, rowID int, newCardID string) (*models.InventoryRow, error) {
	var result *models.InventoryRow
	err := e.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		r := newRepos(tx)

		row, err := r.inv.GetByID(ctx, rowID)
		if err != nil {
			return err
		}
		if row == nil || row.UserID != actorID {
			return &RowNotFoundError{ID: rowID}
		}
		if newCardID == row.CardScryfallID {
			return &ValidationError{Reason: "row already holds that printing"}
		}

		newCard, err := r.cards.Get(ctx, newCardID)
		if err != nil {
			return err
		}
		if newCard == nil {
			return &ValidationError{Reason: fmt.Sprintf("unknown printing %s", newCardID)}
		}
		if !samePrintingFamily(row.Card, newCard) {
			return &ValidationError{Reason: fmt.Sprintf("%s is not a printing of %s", newCard.Name, row.Card.Name)}
		}
		if row.IsFoil && !newCard.FoilAvailable {
			return &ValidationError{Reason: fmt.Sprintf("%s has no foil finish in this printing", newCard.Name)}
		}

		loc := rowLocation(row)
		if row.Quantity == 1 {
			existing, err := r.inv.FindByKey(ctx, newCardID, row.IsFoil, loc)
			if err != nil {
				return err
			}
			if existing != nil {
				if err := r.inv.AddQuantity(ctx, existing.ID, 1); err != nil {
					return err
				}
				if err := r.inv.Delete(ctx, row.ID); err != nil {
					return err
				}
				result, err = r.inv.GetByID(ctx, existing.ID)
				if err != nil {
					return err
				}
			} else {
				if err := r.inv.SetCard(ctx, row.ID, newCardID); err != nil {
					return err
				}
				result, err = r.inv.GetByID(ctx, row.ID)
				if err != nil {
					return err
				}
			}
		} else {
			if err := r.inv.AddQuantity(ctx, row.ID, -1); err != nil {
				return err
			}
			id, _, err := r.inv.Merge(ctx, newCardID, row.IsFoil, 1, row.Condition, row.PhysicalLocation, loc)
			if err != nil {
				return err
			}
			result, err = r.inv.GetByID(ctx, id)
			if err != nil {
				return err
			}
		}

		if !loc.Box() {
			return refreshDeckIdentity(ctx, r, loc.DeckID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Remove discards qty copies from a row, deleting the row when it empties.
// Returns the remaining row, or nil when the row is gone.
func (e *Engine) Remove(ctx context.Context, actorID, rowID, qty int) (*models.InventoryRow, error) {
	if qty < 1 {
		return nil, &ValidationError{Reason: "quantity must be at least 1"}
	}

	var result *models.InventoryRow
	err := e.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		r := newRepos(tx)

		row, err := r.inv.GetByID(ctx, rowID)
		if err != nil {
			return err
		}
		if row == nil || row.UserID != actorID {
			return &RowNotFoundError{ID: rowID}
		}
		if qty > row.Quantity {
			return &InsufficientQuantityError{RowID: rowID, Have: row.Quantity, Want: qty}
		}

		if qty == row.Quantity {
			if err := r.inv.Delete(ctx, row.ID); err != nil {
				return err
			}
		} else {
			if err := r.inv.AddQuantity(ctx, row.ID, -qty); err != nil {
				return err
			}
			result, err = r.inv.GetByID(ctx, row.ID)
			if err != nil {
				return err
			}
		}

		if row.DeckID != nil {
			return refreshDeckIdentity(ctx, r, *row.DeckID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetQuantity overwrites a row's quantity directly.
func (e *Engine) SetQuantity(ctx context.Context, actorID, rowID, qty int) (*models.InventoryRow, error) {
	if qty < 1 || qty > MaxQuantity {
		return nil, &ValidationError{Reason: fmt.Sprintf("quantity must be between 1 and %d", MaxQuantity)}
	}

	var result *models.InventoryRow
	err := e.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		r := newRepos(tx)

		row, err := r.inv.GetByID(ctx, rowID)
		if err != nil {
			return err
		}
		if row == nil || row.UserID != actorID {
			return &RowNotFoundError{ID: rowID}
		}
		if err := r.inv.SetQuantity(ctx, row.ID, qty); err != nil {
			return err
		}
		result, err = r.inv.GetByID(ctx, row.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// EditRow applies attribute edits (condition, notes, flags) to a row.
func (e *Engine) EditRow(ctx context.Context, actorID, rowID int, upd repository.RowUpdate) (*models.InventoryRow, error) {
	if upd.Condition != nil && !models.ValidCondition(string(*upd.Condition)) {
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown condition %q", *upd.Condition)}
	}

	var result *models.InventoryRow
	err := e.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		r := newRepos(tx)

		row, err := r.inv.GetByID(ctx, rowID)
		if err != nil {
			return err
		}
		if row == nil || row.UserID != actorID {
			return &RowNotFoundError{ID: rowID}
		}
		// Commander is a deck-only flag; box rows ignore it.
		if row.InBox() {
			upd.IsCommander = nil
		}
		if err := r.inv.Update(ctx, row.ID, upd); err != nil {
			return err
		}
		// Editing a deck's row changes the deck, so bump its timestamp.
		if !row.InBox() {
			if err := r.decks.Touch(ctx, *row.DeckID); err != nil {
				return err
			}
		}
		result, err = r.inv.GetByID(ctx, row.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReleaseDeck returns every row of a deck to the owner's box, merging into
// existing box rows, and then deletes the deck.
func (e *Engine) ReleaseDeck(ctx context.Context, actorID int, deckID string) error {
	return e.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		r := newRepos(tx)

		if err := requireDeck(ctx, r, actorID, deckID); err != nil {
			return err
		}

		rows, err := r.inv.ListDeck(ctx, deckID)
		if err != nil {
			return err
		}
		box := models.Location{OwnerID: actorID}
		for _, row := range rows {
			if _, err := relocate(ctx, r.inv, row, row.Quantity, box); err != nil {
				return err
			}
		}
		return r.decks.Delete(ctx, deckID)
	})
}

// RefreshDeckIdentity recomputes a deck's color identity from its current
// mainboard contents.
func (e *Engine) RefreshDeckIdentity(ctx context.Context, actorID int, deckID string) (string, error) {
	var identity string
	err := e.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		r := newRepos(tx)
		if err := requireDeck(ctx, r, actorID, deckID); err != nil {
			return err
		}
		if err := refreshDeckIdentity(ctx, r, deckID); err != nil {
			return err
		}
		deck, err := r.decks.Get(ctx, deckID)
		if err != nil {
			return err
		}
		identity = deck.ColorIdentity
		return nil
	})
	return identity, err
}

// relocate moves qty copies of row to dest. Full moves prefer rewriting the
// row in place so acquisition metadata survives; partial moves decrement
// the source and merge into the destination. The caller has already checked
// that dest differs from the row's location.
func relocate(ctx context.Context, inv repository.InventoryRepository, row *models.InventoryRow, qty int, dest models.Location) (*models.InventoryRow, error) {
	if qty > row.Quantity {
		return nil, &InsufficientQuantityError{RowID: row.ID, Have: row.Quantity, Want: qty}
	}

	if qty == row.Quantity {
		existing, err := inv.FindByKey(ctx, row.CardScryfallID, row.IsFoil, dest)
		if err != nil {
			return nil, err
		}
		switch {
		case existing != nil:
			if err := inv.AddQuantity(ctx, existing.ID, qty); err != nil {
				return nil, err
			}
			if err := inv.Delete(ctx, row.ID); err != nil {
				return nil, err
			}
			return inv.GetByID(ctx, existing.ID)
		case dest.OwnerID == row.UserID:
			if err := inv.SetLocation(ctx, row.ID, dest); err != nil {
				return nil, err
			}
			return inv.GetByID(ctx, row.ID)
		default:
			// Crossing users: recreate the row under the recipient.
			if err := inv.Delete(ctx, row.ID); err != nil {
				return nil, err
			}
			id, _, err := inv.Merge(ctx, row.CardScryfallID, row.IsFoil, qty, row.Condition, nil, dest)
			if err != nil {
				return nil, err
			}
			return inv.GetByID(ctx, id)
		}
	}

	if err := inv.AddQuantity(ctx, row.ID, -qty); err != nil {
		return nil, err
	}
	id, _, err := inv.Merge(ctx, row.CardScryfallID, row.IsFoil, qty, row.Condition, nil, dest)
	if err != nil {
		return nil, err
	}
	return inv.GetByID(ctx, id)
}

func requireDeck(ctx context.Context, r repos, actorID int, deckID string) error {
	deck, err := r.decks.Get(ctx, deckID)
	if err != nil {
		return err
	}
	if deck == nil || deck.UserID != actorID {
		return &DeckNotFoundError{ID: deckID}
	}
	return nil
}

func refreshDeckIdentity(ctx context.Context, r repos, deckID string) error {
	identities, err := r.inv.DeckColorIdentities(ctx, deckID)
	if err != nil {
		return err
	}
	return r.decks.SetColorIdentity(ctx, deckID, CombineColorIdentities(identities))
}

func refreshAffectedDecks(ctx context.Context, r repos, src, dest models.Location) error {
	if !src.Box() {
		if err := refreshDeckIdentity(ctx, r, src.DeckID); err != nil {
			return err
		}
	}
	if !dest.Box() && dest.DeckID != src.DeckID {
		return refreshDeckIdentity(ctx, r, dest.DeckID)
	}
	return nil
}

func samePrintingFamily(a, b *models.Card) bool {
	if a == nil || b == nil {
		return false
	}
	if a.OracleID != nil && b.OracleID != nil {
		return *a.OracleID == *b.OracleID
	}
	return a.Name == b.Name
}
