// Package deckexport renders decks back to decklist text.
package deckexport

import (
	"strings"

	"github.com/cardboxhq/cardbox/internal/decklist"
	"github.com/cardboxhq/cardbox/internal/storage/models"
)

// Text renders deck rows as sectioned decklist text. Mainboard lines come
// first under a Deck header, sideboard lines under a Sideboard header.
// Each line round-trips through the parser to the same card, quantity,
// printing and finish.
func Text(rows []*models.InventoryRow) string {
	var main, side []string
	for _, row := range rows {
		line := decklist.FormatLine(toRequest(row))
		if row.IsSideboard {
			side = append(side, line)
		} else {
			main = append(main, line)
		}
	}

	var b strings.Builder
	b.WriteString("Deck\n")
	for _, line := range main {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if len(side) > 0 {
		b.WriteString("\nSideboard\n")
		for _, line := range side {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// BoxText renders box rows as plain-dialect text, one line per row.
func BoxText(rows []*models.InventoryRow) string {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(decklist.FormatLine(toRequest(row)))
		b.WriteByte('\n')
	}
	return b.String()
}

func toRequest(row *models.InventoryRow) decklist.Request {
	req := decklist.Request{
		Quantity: row.Quantity,
		Foil:     row.IsFoil,
	}
	if row.Card != nil {
		req.Name = row.Card.Name
		req.SetCode = row.Card.SetCode
		req.CollectorNumber = row.Card.CollectorNumber
	} else {
		req.Name = row.CardScryfallID
	}
	return req
}
