package handlers

import (
	"errors"
	"net/http"

	"github.com/cardboxhq/cardbox/internal/api/response"
	"github.com/cardboxhq/cardbox/internal/cardlookup"
)

// CardHandler handles catalog lookups.
type CardHandler struct {
	resolver *cardlookup.Service
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(resolver *cardlookup.Service) *CardHandler {
	return &CardHandler{resolver: resolver}
}

// Resolve finds a printing by id, set and collector number, or name.
// fuzzy=1 tolerates misspelled names.
func (h *CardHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	hint := cardlookup.Hint{
		PrintingID:      q.Get("id"),
		Name:            q.Get("name"),
		SetCode:         q.Get("set"),
		CollectorNumber: q.Get("number"),
		Fuzzy:           q.Get("fuzzy") == "1" || q.Get("fuzzy") == "true",
	}
	if hint.PrintingID == "" && hint.Name == "" && (hint.SetCode == "" || hint.CollectorNumber == "") {
		response.BadRequest(w, errors.New("provide id, name, or set and number"))
		return
	}

	card, err := h.resolver.Resolve(r.Context(), hint)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.Success(w, card)
}
