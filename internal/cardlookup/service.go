// Package cardlookup resolves card references to cached catalog entries,
// falling back to the Scryfall API and caching what it finds.
package cardlookup

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cardboxhq/cardbox/internal/scryfall"
	"github.com/cardboxhq/cardbox/internal/storage/models"
	"github.com/cardboxhq/cardbox/internal/storage/repository"
)

// DefaultMaxAge is how long a cached catalog entry is trusted before the
// API is consulted again for fresh prices.
const DefaultMaxAge = 7 * 24 * time.Hour

// Hint identifies the card to resolve. PrintingID wins over set and
// collector number, which win over name. Fuzzy applies to name lookups only.
type Hint struct {
	Name            string
	PrintingID      string
	SetCode         string
	CollectorNumber string
	Fuzzy           bool
}

// Client is the part of the Scryfall client the resolver needs.
type Client interface {
	GetCard(ctx context.Context, id string) (*scryfall.Card, error)
	GetCardByName(ctx context.Context, name string, fuzzy bool) (*scryfall.Card, error)
	GetCardBySetNumber(ctx context.Context, setCode, collectorNumber string) (*scryfall.Card, error)
}

// Service is a cache-through card resolver.
type Service struct {
	cards  repository.CardRepository
	client Client
	maxAge time.Duration
}

// NewService creates a resolver over the given cache and API client.
func NewService(cards repository.CardRepository, client Client) *Service {
	return &Service{cards: cards, client: client, maxAge: DefaultMaxAge}
}

// NewServiceWithMaxAge creates a resolver with a custom cache staleness window.
func NewServiceWithMaxAge(cards repository.CardRepository, client Client, maxAge time.Duration) *Service {
	return &Service{cards: cards, client: client, maxAge: maxAge}
}

// Resolve finds the printing the hint describes. Cached entries are used
// when fresh; otherwise the API is consulted and the result cached. A stale
// cache entry is still returned when the API is unreachable. Not-found API
// responses pass through unchanged so callers can distinguish them from
// transient failures.
func (s *Service) Resolve(ctx context.Context, hint Hint) (*models.Card, error) {
	// Scryfall printing IDs are UUIDs; reject malformed ones before they
	// reach the cache or the API.
	if hint.PrintingID != "" {
		if err := uuid.Validate(hint.PrintingID); err != nil {
			return nil, &scryfall.NotFoundError{URL: hint.PrintingID}
		}
	}

	cached, err := s.fromCache(ctx, hint)
	if err != nil {
		return nil, err
	}
	if cached != nil && time.Since(cached.LastUpdated) < s.maxAge {
		return cached, nil
	}

	apiCard, err := s.fromAPI(ctx, hint)
	if err != nil {
		if cached != nil && !scryfall.IsNotFound(err) {
			return cached, nil
		}
		return nil, err
	}

	card := toModel(apiCard)
	if err := s.cards.Upsert(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to cache card %s: %w", card.Name, err)
	}
	return card, nil
}

func (s *Service) fromCache(ctx context.Context, hint Hint) (*models.Card, error) {
	switch {
	case hint.PrintingID != "":
		return s.cards.Get(ctx, hint.PrintingID)
	case hint.SetCode != "" && hint.CollectorNumber != "":
		return s.cards.GetBySetNumber(ctx, hint.SetCode, hint.CollectorNumber)
	case hint.Name != "" && !hint.Fuzzy:
		return s.cards.GetByName(ctx, hint.Name)
	}
	// Fuzzy lookups always go to the API: the cache only matches exactly.
	return nil, nil
}

func (s *Service) fromAPI(ctx context.Context, hint Hint) (*scryfall.Card, error) {
	switch {
	case hint.PrintingID != "":
		return s.client.GetCard(ctx, hint.PrintingID)
	case hint.SetCode != "" && hint.CollectorNumber != "":
		return s.client.GetCardBySetNumber(ctx, hint.SetCode, hint.CollectorNumber)
	case hint.Name != "":
		return s.client.GetCardByName(ctx, hint.Name, hint.Fuzzy)
	}
	return nil, fmt.Errorf("empty card hint")
}

func toModel(c *scryfall.Card) *models.Card {
	card := &models.Card{
		ScryfallID:      c.ID,
		Name:            c.Name,
		SetCode:         c.SetCode,
		SetName:         c.SetName,
		CollectorNumber: c.CollectorNumber,
		ColorIdentity:   c.ColorIdentityString(),
		TypeLine:        c.TypeLine,
		Rarity:          c.Rarity,
		FoilAvailable:   c.FoilAvailable(),
		LastUpdated:     time.Now().UTC(),
	}
	if c.OracleID != "" {
		oid := c.OracleID
		card.OracleID = &oid
	}
	if p := parsePrice(c.Prices.USD); p != nil {
		card.USD = p
	}
	if p := parsePrice(c.Prices.USDFoil); p != nil {
		card.USDFoil = p
	}
	if images := c.Images(); images != nil {
		if images.Small != "" {
			small := images.Small
			card.ImageSmall = &small
		}
		if images.Normal != "" {
			normal := images.Normal
			card.ImageNormal = &normal
		}
	}
	return card
}

func parsePrice(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
