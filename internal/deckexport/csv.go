package deckexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cardboxhq/cardbox/internal/storage/models"
)

var csvHeader = []string{
	"name", "set", "collector_number", "quantity", "foil", "condition",
	"sideboard", "physical_location", "purchase_price_usd", "notes", "acquired_at",
}

// CSV writes rows as spreadsheet-friendly CSV with a header line. Cards
// missing from the catalog cache export their printing ID in the name
// column.
func CSV(w io.Writer, rows []*models.InventoryRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.CardScryfallID, "", "",
			strconv.Itoa(row.Quantity),
			strconv.FormatBool(row.IsFoil),
			string(row.Condition),
			strconv.FormatBool(row.IsSideboard),
			stringOrEmpty(row.PhysicalLocation),
			priceOrEmpty(row.PurchasePriceUSD),
			stringOrEmpty(row.Notes),
			row.AcquiredAt.UTC().Format(time.RFC3339),
		}
		if row.Card != nil {
			record[0] = row.Card.Name
			record[1] = row.Card.SetCode
			record[2] = row.Card.CollectorNumber
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func priceOrEmpty(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}
