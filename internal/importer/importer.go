// Package importer turns decklist text into ledger entries, reporting
// per-line progress as it goes.
package importer

import (
	"context"
	"fmt"

	"github.com/cardboxhq/cardbox/internal/cardlookup"
	"github.com/cardboxhq/cardbox/internal/decklist"
	"github.com/cardboxhq/cardbox/internal/scryfall"
	"github.com/cardboxhq/cardbox/internal/storage/models"
)

// Resolver finds the printing a decklist line refers to.
type Resolver interface {
	Resolve(ctx context.Context, hint cardlookup.Hint) (*models.Card, error)
}

// Ledger is the part of the inventory engine the importer needs.
type Ledger interface {
	Add(ctx context.Context, actorID int, cardID string, foil bool, qty int, condition models.Condition, physicalLocation *string, loc models.Location) (*models.InventoryRow, bool, error)
}

// Request describes one import run.
type Request struct {
	UserID int
	Text   string

	// DeckID targets a deck; empty imports into the box. Deck imports
	// parse section headers, so sideboard lines land on the deck's
	// sideboard.
	DeckID string

	// PhysicalLocation is recorded on newly created box rows.
	PhysicalLocation *string
}

// Importer resolves and merges decklist lines one at a time. Each line
// commits independently, so a cancelled run keeps everything already
// imported.
type Importer struct {
	resolver Resolver
	ledger   Ledger
}

// New creates an importer.
func New(resolver Resolver, ledger Ledger) *Importer {
	return &Importer{resolver: resolver, ledger: ledger}
}

// Stream runs the import and emits events on the returned channel. The
// channel closes after the final done or error event. Cancelling ctx stops
// the run after the line in flight.
func (imp *Importer) Stream(ctx context.Context, req Request) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)
		imp.run(ctx, req, func(e Event) {
			select {
			case events <- e:
			case <-ctx.Done():
			}
		})
	}()
	return events
}

// Import runs the import to completion and returns the summary.
func (imp *Importer) Import(ctx context.Context, req Request) (*Result, error) {
	var (
		result *Result
		runErr error
	)
	imp.run(ctx, req, func(e Event) {
		switch e.Type {
		case EventDone:
			result = &Result{
				Successes:      e.Successes,
				Failures:       e.Failures,
				SuccessDetails: e.SuccessDetails,
				FailureDetails: e.FailureDetails,
			}
		case EventError:
			runErr = fmt.Errorf("import aborted: %s", e.Message)
		}
	})
	if runErr != nil {
		return nil, runErr
	}
	return result, nil
}

func (imp *Importer) run(ctx context.Context, req Request, emit func(Event)) {
	var (
		requests []decklist.Request
		failures []decklist.Failure
	)
	if req.DeckID != "" {
		requests, failures = decklist.ParseSectioned(req.Text)
	} else {
		requests, failures = decklist.Parse(req.Text)
	}

	emit(Event{Type: EventStart, Total: len(requests)})

	var (
		copies    int
		successes []Success
	)
	for i, line := range requests {
		if err := ctx.Err(); err != nil {
			emit(Event{Type: EventError, Message: "import cancelled"})
			return
		}

		card, err := imp.resolve(ctx, line)
		if err != nil {
			reason := "card not found"
			if !scryfall.IsNotFound(err) {
				reason = fmt.Sprintf("lookup failed: %v", err)
			}
			failures = append(failures, decklist.Failure{Line: line.Raw, Reason: reason})
			emit(Event{Type: EventProgress, Current: i + 1, Total: len(requests), Card: line.Name, OK: okPtr(false), Message: reason})
			continue
		}

		loc := models.Location{OwnerID: req.UserID}
		var physicalLocation *string
		if req.DeckID != "" {
			loc.DeckID = req.DeckID
			loc.Sideboard = line.Sideboard
		} else {
			physicalLocation = req.PhysicalLocation
		}

		// A foil mark on a printing with no foil finish degrades to the
		// regular finish rather than failing the line.
		foil := line.Foil && card.FoilAvailable

		_, created, err := imp.ledger.Add(ctx, req.UserID, card.ScryfallID, foil, line.Quantity, "", physicalLocation, loc)
		if err != nil {
			failures = append(failures, decklist.Failure{Line: line.Raw, Reason: err.Error()})
			emit(Event{Type: EventProgress, Current: i + 1, Total: len(requests), Card: card.Name, OK: okPtr(false), Message: err.Error()})
			continue
		}

		copies += line.Quantity
		successes = append(successes, Success{
			Card:     card.Name,
			CardID:   card.ScryfallID,
			Quantity: line.Quantity,
			Created:  created,
		})
		emit(Event{Type: EventProgress, Current: i + 1, Total: len(requests), Card: card.Name, OK: okPtr(true)})
	}

	emit(Event{
		Type:           EventDone,
		Successes:      copies,
		Failures:       len(failures),
		SuccessDetails: successes,
		FailureDetails: failures,
	})
}

// resolve tries the most specific hint the line offers, then falls back to
// a fuzzy name lookup when the card was simply not found. Transient lookup
// failures are never retried as fuzzy: a flaky network must not resolve a
// line to the wrong card.
func (imp *Importer) resolve(ctx context.Context, line decklist.Request) (*models.Card, error) {
	hint := cardlookup.Hint{
		Name:            line.Name,
		SetCode:         line.SetCode,
		CollectorNumber: line.CollectorNumber,
	}
	card, err := imp.resolver.Resolve(ctx, hint)
	if err == nil {
		return card, nil
	}
	if !scryfall.IsNotFound(err) || line.Name == "" {
		return nil, err
	}
	return imp.resolver.Resolve(ctx, cardlookup.Hint{Name: line.Name, Fuzzy: true})
}
