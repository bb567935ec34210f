package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cardboxhq/cardbox/internal/api/response"
	"github.com/cardboxhq/cardbox/internal/api/websocket"
	"github.com/cardboxhq/cardbox/internal/deckexport"
	"github.com/cardboxhq/cardbox/internal/importer"
	"github.com/cardboxhq/cardbox/internal/inventory"
	"github.com/cardboxhq/cardbox/internal/storage/models"
	"github.com/cardboxhq/cardbox/internal/storage/repository"
)

// DeckHandler handles deck CRUD and deck imports.
type DeckHandler struct {
	decks    repository.DeckRepository
	inv      repository.InventoryRepository
	engine   *inventory.Engine
	importer *importer.Importer
	hub      *websocket.Hub
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(decks repository.DeckRepository, inv repository.InventoryRepository, engine *inventory.Engine, imp *importer.Importer, hub *websocket.Hub) *DeckHandler {
	return &DeckHandler{decks: decks, inv: inv, engine: engine, importer: imp, hub: hub}
}

// requireDeck loads a deck and checks it belongs to the caller.
func (h *DeckHandler) requireDeck(w http.ResponseWriter, r *http.Request) *models.Deck {
	deckID := chi.URLParam(r, "deckID")
	deck, err := h.decks.Get(r.Context(), deckID)
	if err != nil {
		response.InternalError(w, err)
		return nil
	}
	if deck == nil || deck.UserID != UserID(r) {
		response.NotFound(w, &inventory.DeckNotFoundError{ID: deckID})
		return nil
	}
	return deck
}

// List returns the caller's decks.
func (h *DeckHandler) List(w http.ResponseWriter, r *http.Request) {
	decks, err := h.decks.ListByUser(r.Context(), UserID(r))
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, decks)
}

// CreateDeckRequest represents a request to create a deck. Text, when
// present, is imported into the new deck before the response is written.
type CreateDeckRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Format      string  `json:"format"`
	Text        string  `json:"text,omitempty"`
}

// CreateDeckResponse is the deck plus the import summary when the request
// carried decklist text.
type CreateDeckResponse struct {
	Deck   *models.Deck     `json:"deck"`
	Import *importer.Result `json:"import,omitempty"`
}

// Create creates a deck, optionally seeding it from decklist text.
func (h *DeckHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.Name == "" {
		response.BadRequest(w, errors.New("deck name is required"))
		return
	}
	if req.Format == "" {
		req.Format = "Casual"
	}

	userID := UserID(r)
	deck := &models.Deck{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Format:      req.Format,
	}
	if err := h.decks.Create(r.Context(), deck); err != nil {
		response.InternalError(w, err)
		return
	}

	result := &CreateDeckResponse{Deck: deck}
	if req.Text != "" {
		imported, err := h.importer.Import(r.Context(), importer.Request{
			UserID: userID,
			Text:   req.Text,
			DeckID: deck.ID,
		})
		if err != nil {
			response.InternalError(w, err)
			return
		}
		result.Import = imported

		deck, err = h.decks.Get(r.Context(), deck.ID)
		if err != nil {
			response.InternalError(w, err)
			return
		}
		result.Deck = deck
	}

	response.Created(w, result)
}

// DeckDetail is a deck with its rows split by board, plus card count and
// market value totals. Proxies count toward quantity but never value.
type DeckDetail struct {
	Deck          *models.Deck           `json:"deck"`
	Mainboard     []*models.InventoryRow `json:"mainboard"`
	Sideboard     []*models.InventoryRow `json:"sideboard"`
	TotalQuantity int                    `json:"totalQuantity"`
	TotalValueUSD float64                `json:"totalValueUsd"`
}

// Get returns a deck and its contents.
func (h *DeckHandler) Get(w http.ResponseWriter, r *http.Request) {
	deck := h.requireDeck(w, r)
	if deck == nil {
		return
	}

	rows, err := h.inv.ListDeck(r.Context(), deck.ID)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	detail := DeckDetail{
		Deck:      deck,
		Mainboard: []*models.InventoryRow{},
		Sideboard: []*models.InventoryRow{},
	}
	for _, row := range rows {
		if row.IsSideboard {
			detail.Sideboard = append(detail.Sideboard, row)
		} else {
			detail.Mainboard = append(detail.Mainboard, row)
		}
		detail.TotalQuantity += row.Quantity
		detail.TotalValueUSD += rowValue(row)
	}
	response.Success(w, detail)
}

// UpdateDeckRequest represents a rename.
type UpdateDeckRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// Update renames a deck.
func (h *DeckHandler) Update(w http.ResponseWriter, r *http.Request) {
	deck := h.requireDeck(w, r)
	if deck == nil {
		return
	}

	var req UpdateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.Name == "" {
		response.BadRequest(w, errors.New("deck name is required"))
		return
	}
	if req.Description == nil {
		req.Description = deck.Description
	}

	if err := h.decks.Rename(r.Context(), deck.ID, req.Name, req.Description); err != nil {
		response.InternalError(w, err)
		return
	}

	deck, err := h.decks.Get(r.Context(), deck.ID)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, deck)
}

// Delete releases the deck's cards back to the caller's box and removes
// the deck.
func (h *DeckHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.ReleaseDeck(r.Context(), UserID(r), chi.URLParam(r, "deckID")); err != nil {
		response.DomainError(w, err)
		return
	}
	response.NoContent(w)
}

// Export renders the deck as sectioned decklist text.
func (h *DeckHandler) Export(w http.ResponseWriter, r *http.Request) {
	deck := h.requireDeck(w, r)
	if deck == nil {
		return
	}

	rows, err := h.inv.ListDeck(r.Context(), deck.ID)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="deck.csv"`)
		if err := deckexport.CSV(w, rows); err != nil {
			response.InternalError(w, err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(deckexport.Text(rows)))
}

func (h *DeckHandler) importRequest(w http.ResponseWriter, r *http.Request) (importer.Request, bool) {
	deck := h.requireDeck(w, r)
	if deck == nil {
		return importer.Request{}, false
	}

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return importer.Request{}, false
	}
	if req.Text == "" {
		response.BadRequest(w, errors.New("text is required"))
		return importer.Request{}, false
	}
	return importer.Request{
		UserID: UserID(r),
		Text:   req.Text,
		DeckID: deck.ID,
	}, true
}

// Import parses sectioned decklist text into the deck and returns the
// summary once every line has committed.
func (h *DeckHandler) Import(w http.ResponseWriter, r *http.Request) {
	req, ok := h.importRequest(w, r)
	if !ok {
		return
	}

	result, err := h.importer.Import(r.Context(), req)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, result)
}

// ImportStream is Import with NDJSON progress events streamed as lines
// commit.
func (h *DeckHandler) ImportStream(w http.ResponseWriter, r *http.Request) {
	req, ok := h.importRequest(w, r)
	if !ok {
		return
	}
	streamImport(w, r, h.importer, h.hub, req)
}
