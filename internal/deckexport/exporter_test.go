package deckexport

import (
	"strings"
	"testing"

	"github.com/cardboxhq/cardbox/internal/decklist"
	"github.com/cardboxhq/cardbox/internal/storage/models"
)

func row(qty int, name, set, num string, foil, sideboard bool) *models.InventoryRow {
	return &models.InventoryRow{
		Quantity:    qty,
		IsFoil:      foil,
		IsSideboard: sideboard,
		Card: &models.Card{
			Name:            name,
			SetCode:         set,
			CollectorNumber: num,
		},
	}
}

func TestText_SectionsAndRoundTrip(t *testing.T) {
	rows := []*models.InventoryRow{
		row(4, "Lightning Bolt", "lea", "161", false, false),
		row(1, "Sol Ring", "c21", "263", true, false),
		row(2, "Pyroblast", "ice", "213", false, true),
	}

	text := Text(rows)

	if !strings.HasPrefix(text, "Deck\n") {
		t.Errorf("expected Deck header, got %q", text)
	}
	if !strings.Contains(text, "\nSideboard\n") {
		t.Errorf("expected Sideboard header, got %q", text)
	}
	if !strings.Contains(text, "1 Sol Ring (C21) 263 *F*") {
		t.Errorf("expected canonical foil line, got %q", text)
	}

	// The export parses back to the same structure.
	parsed, failures := decklist.ParseSectioned(text)
	if len(failures) != 0 {
		t.Fatalf("export did not round-trip: %+v", failures)
	}
	if len(parsed) != 3 {
		t.Fatalf("expected 3 parsed lines, got %d", len(parsed))
	}
	if !parsed[2].Sideboard || parsed[2].Name != "Pyroblast" || parsed[2].Quantity != 2 {
		t.Errorf("unexpected sideboard line: %+v", parsed[2])
	}
	if !parsed[1].Foil || parsed[1].SetCode != "C21" {
		t.Errorf("unexpected foil line: %+v", parsed[1])
	}
}

func TestText_NoSideboardOmitsHeader(t *testing.T) {
	text := Text([]*models.InventoryRow{row(1, "Island", "unf", "235", false, false)})
	if strings.Contains(text, "Sideboard") {
		t.Errorf("expected no sideboard header, got %q", text)
	}
}

func TestBoxText(t *testing.T) {
	text := BoxText([]*models.InventoryRow{
		row(4, "Lightning Bolt", "lea", "161", false, false),
		row(9, "Island", "", "", false, false),
	})

	parsed, failures := decklist.Parse(text)
	if len(failures) != 0 {
		t.Fatalf("box export did not round-trip: %+v", failures)
	}
	if len(parsed) != 2 || parsed[1].Name != "Island" || parsed[1].Quantity != 9 {
		t.Errorf("unexpected parse: %+v", parsed)
	}
}
