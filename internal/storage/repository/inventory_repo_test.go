package repository

import (
	"context"
	"sort"
	"testing"

	"github.com/cardboxhq/cardbox/internal/storage/models"
)

func TestInventoryRepository_InsertAndGetByID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	userID := seedUser(t, db, "alice")
	seedCard(t, db, "sol-ring-1", "Sol Ring", "")

	repo := NewInventoryRepository(db)
	id, err := repo.Insert(ctx, &models.InventoryRow{
		UserID:         userID,
		CardScryfallID: "sol-ring-1",
		Quantity:       4,
		Condition:      models.ConditionNearMint,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	row, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if row == nil {
		t.Fatal("expected row, got nil")
	}
	if row.Quantity != 4 {
		t.Errorf("expected quantity 4, got %d", row.Quantity)
	}
	if !row.InBox() {
		t.Error("expected row in box")
	}
	if row.Card == nil || row.Card.Name != "Sol Ring" {
		t.Errorf("expected joined card Sol Ring, got %+v", row.Card)
	}
}

func TestInventoryRepository_GetByID_Missing(t *testing.T) {
	db := openTestDB(t)

	row, err := NewInventoryRepository(db).GetByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if row != nil {
		t.Errorf("expected nil for missing row, got %+v", row)
	}
}

func TestInventoryRepository_FindByKey(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	userID := seedUser(t, db, "alice")
	seedCard(t, db, "sol-ring-1", "Sol Ring", "")
	deckID := seedDeck(t, db, userID, "Artifacts")

	repo := NewInventoryRepository(db)

	boxLoc := models.Location{OwnerID: userID}
	mainLoc := models.Location{OwnerID: userID, DeckID: deckID}
	sideLoc := models.Location{OwnerID: userID, DeckID: deckID, Sideboard: true}

	deckIDCopy := deckID
	for _, row := range []*models.InventoryRow{
		{UserID: userID, CardScryfallID: "sol-ring-1", Quantity: 3, Condition: models.ConditionNearMint},
		{UserID: userID, CardScryfallID: "sol-ring-1", Quantity: 1, Condition: models.ConditionNearMint, DeckID: &deckIDCopy},
		{UserID: userID, CardScryfallID: "sol-ring-1", Quantity: 2, Condition: models.ConditionNearMint, DeckID: &deckIDCopy, IsSideboard: true},
	} {
		if _, err := repo.Insert(ctx, row); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	tests := []struct {
		name    string
		loc     models.Location
		wantQty int
	}{
		{"box", boxLoc, 3},
		{"mainboard", mainLoc, 1},
		{"sideboard", sideLoc, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := repo.FindByKey(ctx, "sol-ring-1", false, tt.loc)
			if err != nil {
				t.Fatalf("FindByKey failed: %v", err)
			}
			if row == nil {
				t.Fatal("expected row, got nil")
			}
			if row.Quantity != tt.wantQty {
				t.Errorf("expected quantity %d, got %d", tt.wantQty, row.Quantity)
			}
		})
	}

	// A different finish is a different key.
	row, err := repo.FindByKey(ctx, "sol-ring-1", true, boxLoc)
	if err != nil {
		t.Fatalf("FindByKey failed: %v", err)
	}
	if row != nil {
		t.Errorf("expected nil for foil key, got %+v", row)
	}
}

func TestInventoryRepository_IdentityUniqueness(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	userID := seedUser(t, db, "alice")
	seedCard(t, db, "sol-ring-1", "Sol Ring", "")

	repo := NewInventoryRepository(db)
	row := &models.InventoryRow{
		UserID:         userID,
		CardScryfallID: "sol-ring-1",
		Quantity:       1,
		Condition:      models.ConditionNearMint,
	}
	if _, err := repo.Insert(ctx, row); err != nil {
		t.Fatalf("first Insert failed: %v", err)
	}
	if _, err := repo.Insert(ctx, row); err == nil {
		t.Error("expected unique constraint violation for duplicate box key")
	}
}

func TestInventoryRepository_QuantityCheckConstraint(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	userID := seedUser(t, db, "alice")
	seedCard(t, db, "sol-ring-1", "Sol Ring", "")

	repo := NewInventoryRepository(db)
	_, err := repo.Insert(ctx, &models.InventoryRow{
		UserID:         userID,
		CardScryfallID: "sol-ring-1",
		Quantity:       0,
		Condition:      models.ConditionNearMint,
	})
	if err == nil {
		t.Error("expected CHECK violation for zero quantity")
	}
}

func TestInventoryRepository_Merge_CreatesThenMerges(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	userID := seedUser(t, db, "alice")
	seedCard(t, db, "sol-ring-1", "Sol Ring", "")

	repo := NewInventoryRepository(db)
	loc := models.Location{OwnerID: userID}

	id1, qty, err := repo.Merge(ctx, "sol-ring-1", false, 3, models.ConditionNearMint, nil, loc)
	if err != nil {
		t.Fatalf("first Merge failed: %v", err)
	}
	if qty != 3 {
		t.Errorf("expected quantity 3 after create, got %d", qty)
	}

	id2, qty, err := repo.Merge(ctx, "sol-ring-1", false, 2, models.ConditionGood, nil, loc)
	if err != nil {
		t.Fatalf("second Merge failed: %v", err)
	}
	if id2 != id1 {
		t.Errorf("expected merge into existing row %d, got new row %d", id1, id2)
	}
	if qty != 5 {
		t.Errorf("expected quantity 5 after merge, got %d", qty)
	}

	// The existing row's condition wins on merge.
	row, err := repo.GetByID(ctx, id1)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if row.Condition != models.ConditionNearMint {
		t.Errorf("expected condition NM preserved, got %s", row.Condition)
	}
}

func TestInventoryRepository_Merge_PhysicalLocationPreserved(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	userID := seedUser(t, db, "alice")
	seedCard(t, db, "sol-ring-1", "Sol Ring", "")

	repo := NewInventoryRepository(db)
	loc := models.Location{OwnerID: userID}

	binder := "binder A"
	shelf := "shelf 3"
	if _, _, err := repo.Merge(ctx, "sol-ring-1", false, 1, models.ConditionNearMint, &binder, loc); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	id, _, err := repo.Merge(ctx, "sol-ring-1", false, 1, models.ConditionNearMint, &shelf, loc)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	row, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if row.PhysicalLocation == nil || *row.PhysicalLocation != "binder A" {
		t.Errorf("expected existing physical location preserved, got %v", row.PhysicalLocation)
	}
}

func TestInventoryRepository_Merge_DeckSidesAreSeparate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	userID := seedUser(t, db, "alice")
	seedCard(t, db, "sol-ring-1", "Sol Ring", "")
	deckID := seedDeck(t, db, userID, "Artifacts")

	repo := NewInventoryRepository(db)
	main := models.Location{OwnerID: userID, DeckID: deckID}
	side := models.Location{OwnerID: userID, DeckID: deckID, Sideboard: true}

	mainID, _, err := repo.Merge(ctx, "sol-ring-1", false, 2, models.ConditionNearMint, nil, main)
	if err != nil {
		t.Fatalf("Merge into mainboard failed: %v", err)
	}
	sideID, qty, err := repo.Merge(ctx, "sol-ring-1", false, 1, models.ConditionNearMint, nil, side)
	if err != nil {
		t.Fatalf("Merge into sideboard failed: %v", err)
	}
	if sideID == mainID {
		t.Error("expected sideboard merge to create a separate row")
	}
	if qty != 1 {
		t.Errorf("expected sideboard quantity 1, got %d", qty)
	}
}

func TestInventoryRepository_SetLocation_ClearsCommanderInBox(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	userID := seedUser(t, db, "alice")
	seedCard(t, db, "atraxa-1", "Atraxa, Praetors' Voice", "WUBG")
	deckID := seedDeck(t, db, userID, "Atraxa")

	repo := NewInventoryRepository(db)
	id, err := repo.Insert(ctx, &models.InventoryRow{
		UserID:         userID,
		CardScryfallID: "atraxa-1",
		Quantity:       1,
		Condition:      models.ConditionNearMint,
		DeckID:         &deckID,
		IsCommander:    true,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := repo.SetLocation(ctx, id, models.Location{OwnerID: userID}); err != nil {
		t.Fatalf("SetLocation failed: %v", err)
	}

	row, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !row.InBox() {
		t.Error("expected row moved to box")
	}
	if row.IsCommander {
		t.Error("expected commander flag cleared on move to box")
	}
}

func TestInventoryRepository_Update(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	userID := seedUser(t, db, "alice")
	seedCard(t, db, "sol-ring-1", "Sol Ring", "")

	repo := NewInventoryRepository(db)
	id, err := repo.Insert(ctx, &models.InventoryRow{
		UserID:         userID,
		CardScryfallID: "sol-ring-1",
		Quantity:       1,
		Condition:      models.ConditionNearMint,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	cond := models.ConditionPlayed
	notes := "signed by artist"
	if err := repo.Update(ctx, id, RowUpdate{Condition: &cond, Notes: &notes}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	row, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if row.Condition != models.ConditionPlayed {
		t.Errorf("expected condition PL, got %s", row.Condition)
	}
	if row.Notes == nil || *row.Notes != "signed by artist" {
		t.Errorf("expected notes updated, got %v", row.Notes)
	}

	// No-op update should not error.
	if err := repo.Update(ctx, id, RowUpdate{}); err != nil {
		t.Fatalf("empty Update failed: %v", err)
	}
}

func TestInventoryRepository_ListDeck_MainboardFirst(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	userID := seedUser(t, db, "alice")
	seedCard(t, db, "sol-ring-1", "Sol Ring", "")
	seedCard(t, db, "island-1", "Island", "U")
	deckID := seedDeck(t, db, userID, "Artifacts")

	repo := NewInventoryRepository(db)
	main := models.Location{OwnerID: userID, DeckID: deckID}
	side := models.Location{OwnerID: userID, DeckID: deckID, Sideboard: true}

	if _, _, err := repo.Merge(ctx, "island-1", false, 4, models.ConditionNearMint, nil, side); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if _, _, err := repo.Merge(ctx, "sol-ring-1", false, 1, models.ConditionNearMint, nil, main); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	rows, err := repo.ListDeck(ctx, deckID)
	if err != nil {
		t.Fatalf("ListDeck failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].IsSideboard {
		t.Error("expected mainboard row first")
	}
	if !rows[1].IsSideboard {
		t.Error("expected sideboard row last")
	}
}

func TestInventoryRepository_DeckColorIdentities(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	userID := seedUser(t, db, "alice")
	seedCard(t, db, "sol-ring-1", "Sol Ring", "")
	seedCard(t, db, "island-1", "Island", "U")
	seedCard(t, db, "bolt-1", "Lightning Bolt", "R")
	deckID := seedDeck(t, db, userID, "Izzet")

	repo := NewInventoryRepository(db)
	main := models.Location{OwnerID: userID, DeckID: deckID}
	side := models.Location{OwnerID: userID, DeckID: deckID, Sideboard: true}

	// Sideboard rows count toward the deck's identity too.
	for card, loc := range map[string]models.Location{
		"sol-ring-1": main,
		"island-1":   main,
		"bolt-1":     side,
	} {
		if _, _, err := repo.Merge(ctx, card, false, 1, models.ConditionNearMint, nil, loc); err != nil {
			t.Fatalf("Merge failed: %v", err)
		}
	}

	identities, err := repo.DeckColorIdentities(ctx, deckID)
	if err != nil {
		t.Fatalf("DeckColorIdentities failed: %v", err)
	}
	sort.Strings(identities)
	want := []string{"", "R", "U"}
	if len(identities) != len(want) {
		t.Fatalf("expected %v, got %v", want, identities)
	}
	for i := range want {
		if identities[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, identities)
		}
	}
}

func TestInventoryRepository_AddQuantityAndDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	userID := seedUser(t, db, "alice")
	seedCard(t, db, "sol-ring-1", "Sol Ring", "")

	repo := NewInventoryRepository(db)
	id, err := repo.Insert(ctx, &models.InventoryRow{
		UserID:         userID,
		CardScryfallID: "sol-ring-1",
		Quantity:       4,
		Condition:      models.ConditionNearMint,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := repo.AddQuantity(ctx, id, -3); err != nil {
		t.Fatalf("AddQuantity failed: %v", err)
	}
	row, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if row.Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", row.Quantity)
	}

	// Decrementing to zero violates the positive-quantity constraint;
	// callers delete the row instead.
	if err := repo.AddQuantity(ctx, id, -1); err == nil {
		t.Error("expected CHECK violation decrementing to zero")
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	row, err = repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if row != nil {
		t.Errorf("expected row deleted, got %+v", row)
	}
}
