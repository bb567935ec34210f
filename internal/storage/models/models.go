package models

import "time"

// Condition grades follow the common six-step scale.
type Condition string

const (
	ConditionNearMint      Condition = "NM"
	ConditionExcellent     Condition = "EX"
	ConditionGood          Condition = "GD"
	ConditionLightlyPlayed Condition = "LP"
	ConditionPlayed        Condition = "PL"
	ConditionPoor          Condition = "PO"
)

// ValidCondition reports whether s is one of the recognized grades.
func ValidCondition(s string) bool {
	switch Condition(s) {
	case ConditionNearMint, ConditionExcellent, ConditionGood,
		ConditionLightlyPlayed, ConditionPlayed, ConditionPoor:
		return true
	}
	return false
}

// User is an account that owns inventory rows and decks.
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Card is one cached printing from the catalog. Rows sharing an OracleID are
// different printings of the same card.
type Card struct {
	ScryfallID      string    `json:"scryfallId"`
	OracleID        *string   `json:"oracleId,omitempty"`
	Name            string    `json:"name"`
	SetCode         string    `json:"setCode"`
	SetName         string    `json:"setName"`
	CollectorNumber string    `json:"collectorNumber"`
	ColorIdentity   string    `json:"colorIdentity"` // WUBRG-ordered, e.g. "WU"
	TypeLine        string    `json:"typeLine"`
	Rarity          string    `json:"rarity"`
	FoilAvailable   bool      `json:"foilAvailable"`
	USD             *float64  `json:"usd,omitempty"`
	USDFoil         *float64  `json:"usdFoil,omitempty"`
	ImageSmall      *string   `json:"imageSmall,omitempty"`
	ImageNormal     *string   `json:"imageNormal,omitempty"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// Deck is a named list of cards assembled from a user's collection.
type Deck struct {
	ID            string    `json:"id"`
	UserID        int       `json:"userId"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	Format        string    `json:"format"`
	ColorIdentity string    `json:"colorIdentity"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// InventoryRow is one ledger entry: a positive quantity of a single printing
// at a single location. DeckID nil means the row lives in the user's box.
type InventoryRow struct {
	ID               int       `json:"id"`
	UserID           int       `json:"userId"`
	CardScryfallID   string    `json:"cardScryfallId"`
	Quantity         int       `json:"quantity"`
	IsFoil           bool      `json:"isFoil"`
	Condition        Condition `json:"condition"`
	DeckID           *string   `json:"deckId,omitempty"`
	IsSideboard      bool      `json:"isSideboard"`
	IsCommander      bool      `json:"isCommander"`
	IsProxy          bool      `json:"isProxy"`
	PhysicalLocation *string   `json:"physicalLocation,omitempty"`
	PurchasePriceUSD *float64  `json:"purchasePriceUsd,omitempty"`
	Notes            *string   `json:"notes,omitempty"`
	AcquiredAt       time.Time `json:"acquiredAt"`

	// Card is populated by queries that join the catalog; nil otherwise.
	Card *Card `json:"card,omitempty"`
}

// InBox reports whether the row lives in the user's box.
func (r *InventoryRow) InBox() bool { return r.DeckID == nil }

// Location identifies where inventory rows live: a user's box (empty DeckID)
// or one side of one of their decks.
type Location struct {
	OwnerID   int    `json:"ownerId"`
	DeckID    string `json:"deckId,omitempty"`
	Sideboard bool   `json:"sideboard,omitempty"`
}

// Box reports whether the location is the owner's box.
func (l Location) Box() bool { return l.DeckID == "" }
