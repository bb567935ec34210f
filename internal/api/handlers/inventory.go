package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cardboxhq/cardbox/internal/api/response"
	"github.com/cardboxhq/cardbox/internal/inventory"
	"github.com/cardboxhq/cardbox/internal/storage/models"
	"github.com/cardboxhq/cardbox/internal/storage/repository"
)

// InventoryHandler handles ledger row operations.
type InventoryHandler struct {
	engine *inventory.Engine
	inv    repository.InventoryRepository
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(engine *inventory.Engine, inv repository.InventoryRepository) *InventoryHandler {
	return &InventoryHandler{engine: engine, inv: inv}
}

func rowID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "rowID"))
	if err != nil || id < 1 {
		return 0, errors.New("invalid row ID")
	}
	return id, nil
}

// AddRequest represents a request to add copies of a printing.
type AddRequest struct {
	CardID           string  `json:"card_id"`
	Quantity         int     `json:"quantity"`
	Foil             bool    `json:"foil"`
	Condition        string  `json:"condition"`
	PhysicalLocation *string `json:"physical_location,omitempty"`
	DeckID           string  `json:"deck_id,omitempty"`
	Sideboard        bool    `json:"sideboard,omitempty"`
}

// Add merges copies of a printing into the caller's box or one of their
// decks, creating the row if needed.
func (h *InventoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.CardID == "" {
		response.BadRequest(w, errors.New("card_id is required"))
		return
	}

	userID := UserID(r)
	loc := models.Location{OwnerID: userID, DeckID: req.DeckID, Sideboard: req.Sideboard}

	row, created, err := h.engine.Add(r.Context(), userID, req.CardID, req.Foil, req.Quantity,
		models.Condition(req.Condition), req.PhysicalLocation, loc)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	if created {
		response.Created(w, row)
		return
	}
	response.Success(w, row)
}

// Get returns a single row.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := rowID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	row, err := h.inv.GetByID(r.Context(), id)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if row == nil || row.UserID != UserID(r) {
		response.NotFound(w, &inventory.RowNotFoundError{ID: id})
		return
	}
	response.Success(w, row)
}

// MoveRequest represents a request to relocate copies of a row.
type MoveRequest struct {
	Quantity  int    `json:"quantity"`
	DeckID    string `json:"deck_id,omitempty"` // empty moves to the box
	Sideboard bool   `json:"sideboard,omitempty"`
}

// Move relocates copies between the caller's box and decks.
func (h *InventoryHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, err := rowID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	userID := UserID(r)
	dest := models.Location{OwnerID: userID, DeckID: req.DeckID, Sideboard: req.Sideboard}

	row, err := h.engine.Move(r.Context(), userID, id, req.Quantity, dest)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.Success(w, row)
}

// TransferRequest represents a request to hand copies to a friend.
type TransferRequest struct {
	Quantity    int `json:"quantity"`
	RecipientID int `json:"recipient_id"`
}

// Transfer hands copies of a box row to a friend's box.
func (h *InventoryHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	id, err := rowID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	row, err := h.engine.Transfer(r.Context(), UserID(r), id, req.Quantity, req.RecipientID)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.Success(w, row)
}

// SubstituteRequest represents a request to swap one copy to another
// printing of the same card.
type SubstituteRequest struct {
	CardID string `json:"card_id"`
}

// SubstitutePrinting swaps one copy of a row to a different printing.
func (h *InventoryHandler) SubstitutePrinting(w http.ResponseWriter, r *http.Request) {
	id, err := rowID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var req SubstituteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.CardID == "" {
		response.BadRequest(w, errors.New("card_id is required"))
		return
	}

	row, err := h.engine.SubstitutePrinting(r.Context(), UserID(r), id, req.CardID)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.Success(w, row)
}

// UpdateRequest represents attribute edits to a row.
type UpdateRequest struct {
	Condition        *string  `json:"condition,omitempty"`
	PhysicalLocation *string  `json:"physical_location,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
	IsProxy          *bool    `json:"is_proxy,omitempty"`
	IsCommander      *bool    `json:"is_commander,omitempty"`
	PurchasePriceUSD *float64 `json:"purchase_price_usd,omitempty"`
	Quantity         *int     `json:"quantity,omitempty"`
}

// Update edits a row's attributes, including its quantity.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := rowID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	userID := UserID(r)

	if req.Quantity != nil {
		if _, err := h.engine.SetQuantity(r.Context(), userID, id, *req.Quantity); err != nil {
			response.DomainError(w, err)
			return
		}
	}

	upd := repository.RowUpdate{
		PhysicalLocation: req.PhysicalLocation,
		Notes:            req.Notes,
		IsProxy:          req.IsProxy,
		IsCommander:      req.IsCommander,
		PurchasePriceUSD: req.PurchasePriceUSD,
	}
	if req.Condition != nil {
		cond := models.Condition(*req.Condition)
		upd.Condition = &cond
	}

	row, err := h.engine.EditRow(r.Context(), userID, id, upd)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.Success(w, row)
}

// Remove discards copies from a row. The quantity query parameter defaults
// to the whole row.
func (h *InventoryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := rowID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	userID := UserID(r)

	qty := 0
	if q := r.URL.Query().Get("quantity"); q != "" {
		qty, err = strconv.Atoi(q)
		if err != nil || qty < 1 {
			response.BadRequest(w, errors.New("invalid quantity"))
			return
		}
	} else {
		row, err := h.inv.GetByID(r.Context(), id)
		if err != nil {
			response.InternalError(w, err)
			return
		}
		if row == nil || row.UserID != userID {
			response.NotFound(w, &inventory.RowNotFoundError{ID: id})
			return
		}
		qty = row.Quantity
	}

	remaining, err := h.engine.Remove(r.Context(), userID, id, qty)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	if remaining == nil {
		response.NoContent(w)
		return
	}
	response.Success(w, remaining)
}
