// Package response provides JSON response helpers for the REST API.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cardboxhq/cardbox/internal/inventory"
	"github.com/cardboxhq/cardbox/internal/scryfall"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// SuccessResponse represents a successful API response with data.
type SuccessResponse struct {
	Data any `json:"data"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// Success writes a successful JSON response.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, SuccessResponse{Data: data})
}

// Created writes a 201 Created response.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error response with the given status code.
func Error(w http.ResponseWriter, status int, err error) {
	JSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Code:    status,
	})
}

// BadRequest writes a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadRequest, err)
}

// Forbidden writes a 403 Forbidden response.
func Forbidden(w http.ResponseWriter, err error) {
	Error(w, http.StatusForbidden, err)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, err error) {
	Error(w, http.StatusNotFound, err)
}

// Conflict writes a 409 Conflict response.
func Conflict(w http.ResponseWriter, err error) {
	Error(w, http.StatusConflict, err)
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, err error) {
	Error(w, http.StatusInternalServerError, err)
}

// DomainError maps ledger and lookup errors onto HTTP statuses: requests
// for missing things get 404, malformed requests 400, permission problems
// 403, and short stock 409. Anything else is a server fault.
func DomainError(w http.ResponseWriter, err error) {
	var (
		rowNF  *inventory.RowNotFoundError
		deckNF *inventory.DeckNotFoundError
		valErr *inventory.ValidationError
		perm   *inventory.NotPermittedError
		short  *inventory.InsufficientQuantityError
	)
	switch {
	case errors.As(err, &rowNF), errors.As(err, &deckNF), scryfall.IsNotFound(err):
		NotFound(w, err)
	case errors.As(err, &valErr):
		BadRequest(w, err)
	case errors.As(err, &perm):
		Forbidden(w, err)
	case errors.As(err, &short):
		Conflict(w, err)
	default:
		InternalError(w, err)
	}
}
