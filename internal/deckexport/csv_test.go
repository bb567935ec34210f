package deckexport

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/cardboxhq/cardbox/internal/storage/models"
)

func TestCSV(t *testing.T) {
	loc := "binder A"
	price := 12.5
	acquired := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	rows := []*models.InventoryRow{
		{
			CardScryfallID: "bolt-1", Quantity: 4, IsFoil: true,
			Condition: models.ConditionNearMint, PhysicalLocation: &loc,
			PurchasePriceUSD: &price, AcquiredAt: acquired,
			Card: &models.Card{Name: "Lightning Bolt", SetCode: "lea", CollectorNumber: "161"},
		},
		// Card missing from the catalog cache falls back to the printing ID.
		{CardScryfallID: "mystery-1", Quantity: 1, Condition: models.ConditionGood, AcquiredAt: acquired},
	}

	var b strings.Builder
	if err := CSV(&b, rows); err != nil {
		t.Fatalf("CSV failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(b.String())).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 records, got %d", len(records))
	}
	if records[0][0] != "name" || records[0][10] != "acquired_at" {
		t.Errorf("unexpected header: %v", records[0])
	}

	bolt := records[1]
	if bolt[0] != "Lightning Bolt" || bolt[1] != "lea" || bolt[2] != "161" {
		t.Errorf("unexpected card columns: %v", bolt)
	}
	if bolt[3] != "4" || bolt[4] != "true" || bolt[5] != "NM" {
		t.Errorf("unexpected quantity columns: %v", bolt)
	}
	if bolt[7] != "binder A" || bolt[8] != "12.50" || bolt[10] != "2026-03-01T10:00:00Z" {
		t.Errorf("unexpected detail columns: %v", bolt)
	}

	mystery := records[2]
	if mystery[0] != "mystery-1" || mystery[1] != "" || mystery[8] != "" {
		t.Errorf("unexpected fallback record: %v", mystery)
	}
}
