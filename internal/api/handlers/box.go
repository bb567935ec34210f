package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/cardboxhq/cardbox/internal/api/response"
	"github.com/cardboxhq/cardbox/internal/api/websocket"
	"github.com/cardboxhq/cardbox/internal/deckexport"
	"github.com/cardboxhq/cardbox/internal/importer"
	"github.com/cardboxhq/cardbox/internal/storage/models"
	"github.com/cardboxhq/cardbox/internal/storage/repository"
)

// BoxHandler handles the caller's unassigned collection.
type BoxHandler struct {
	inv      repository.InventoryRepository
	importer *importer.Importer
	hub      *websocket.Hub
}

// NewBoxHandler creates a new BoxHandler.
func NewBoxHandler(inv repository.InventoryRepository, imp *importer.Importer, hub *websocket.Hub) *BoxHandler {
	return &BoxHandler{inv: inv, importer: imp, hub: hub}
}

// List returns the caller's box rows. Optional query parameters:
// search (case-insensitive name substring), foil (true/false), and
// sort (name, quantity, value; default is the stored order).
func (h *BoxHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.inv.ListBox(r.Context(), UserID(r))
	if err != nil {
		response.InternalError(w, err)
		return
	}

	q := r.URL.Query()
	rows = filterRows(rows, q.Get("search"), q.Get("foil"))
	if err := sortRows(rows, q.Get("sort")); err != nil {
		response.BadRequest(w, err)
		return
	}
	response.Success(w, rows)
}

func filterRows(rows []*models.InventoryRow, search, foil string) []*models.InventoryRow {
	if search == "" && foil == "" {
		return rows
	}
	search = strings.ToLower(search)

	filtered := rows[:0]
	for _, row := range rows {
		if search != "" {
			if row.Card == nil || !strings.Contains(strings.ToLower(row.Card.Name), search) {
				continue
			}
		}
		if foil == "true" && !row.IsFoil {
			continue
		}
		if foil == "false" && row.IsFoil {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

func sortRows(rows []*models.InventoryRow, key string) error {
	switch key {
	case "":
	case "name":
		sort.SliceStable(rows, func(i, j int) bool {
			return rowName(rows[i]) < rowName(rows[j])
		})
	case "quantity":
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Quantity > rows[j].Quantity
		})
	case "value":
		sort.SliceStable(rows, func(i, j int) bool {
			return rowValue(rows[i]) > rowValue(rows[j])
		})
	default:
		return errors.New("sort must be one of name, quantity, value")
	}
	return nil
}

func rowName(row *models.InventoryRow) string {
	if row.Card == nil {
		return row.CardScryfallID
	}
	return row.Card.Name
}

// rowValue prices a row at quantity times the finish-appropriate USD price.
// Proxies are worthless and unpriced cards count as zero.
func rowValue(row *models.InventoryRow) float64 {
	if row.IsProxy || row.Card == nil {
		return 0
	}
	price := row.Card.USD
	if row.IsFoil {
		price = row.Card.USDFoil
	}
	if price == nil {
		return 0
	}
	return *price * float64(row.Quantity)
}

// Export renders the caller's box as plain decklist text, or as CSV when
// format=csv is given.
func (h *BoxHandler) Export(w http.ResponseWriter, r *http.Request) {
	rows, err := h.inv.ListBox(r.Context(), UserID(r))
	if err != nil {
		response.InternalError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="box.csv"`)
		if err := deckexport.CSV(w, rows); err != nil {
			response.InternalError(w, err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(deckexport.BoxText(rows)))
}

// ImportRequest represents a decklist import.
type ImportRequest struct {
	Text             string  `json:"text"`
	PhysicalLocation *string `json:"physical_location,omitempty"`
}

func (h *BoxHandler) importRequest(w http.ResponseWriter, r *http.Request) (importer.Request, bool) {
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
		UserID:           UserID(r),
		Text:             req.Text,
		PhysicalLocation: req.PhysicalLocation,
	}, true
}

// Import parses decklist text, merges it into the caller's box, and returns
// the summary once every line has committed.
func (h *BoxHandler) Import(w http.ResponseWriter, r *http.Request) {
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
func (h *BoxHandler) ImportStream(w http.ResponseWriter, r *http.Request) {
	req, ok := h.importRequest(w, r)
	if !ok {
		return
	}
	streamImport(w, r, h.importer, h.hub, req)
}

// streamImport runs an import and writes each event as one NDJSON line,
// flushing after every line so clients see progress as it happens. Events
// are mirrored to the WebSocket hub.
func streamImport(w http.ResponseWriter, r *http.Request, imp *importer.Importer, hub *websocket.Hub, req importer.Request) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)

	for event := range imp.Stream(r.Context(), req) {
		if err := enc.Encode(event); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
		if hub != nil {
			hub.Broadcast(websocket.Event{Type: "import_" + event.Type, Data: event})
		}
	}
}
