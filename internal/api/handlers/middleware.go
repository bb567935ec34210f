// Package handlers implements the REST API endpoints.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/cardboxhq/cardbox/internal/api/response"
)

type contextKey string

const userIDKey contextKey = "userID"

// Identity resolves the acting user from the X-User-ID header set by the
// authenticating proxy. Requests without one are rejected.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("X-User-ID")
		userID, err := strconv.Atoi(header)
		if err != nil || userID < 1 {
			response.Error(w, http.StatusUnauthorized, errors.New("missing or invalid X-User-ID header"))
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the acting user set by the Identity middleware.
func UserID(r *http.Request) int {
	id, _ := r.Context().Value(userIDKey).(int)
	return id
}
