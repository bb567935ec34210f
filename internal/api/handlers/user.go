package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cardboxhq/cardbox/internal/api/response"
	"github.com/cardboxhq/cardbox/internal/storage/repository"
)

// UserHandler handles accounts and friend links.
type UserHandler struct {
	users repository.UserRepository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users repository.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// CreateUserRequest represents a new account.
type CreateUserRequest struct {
	Username string `json:"username"`
}

// Create registers a new account.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.Username == "" {
		response.BadRequest(w, errors.New("username is required"))
		return
	}

	existing, err := h.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if existing != nil {
		response.Conflict(w, errors.New("username already taken"))
		return
	}

	id, err := h.users.Create(r.Context(), req.Username)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Created(w, user)
}

// Me returns the acting user.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), UserID(r))
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if user == nil {
		response.NotFound(w, errors.New("user not found"))
		return
	}
	response.Success(w, user)
}

// ListFriends returns the acting user's friends.
func (h *UserHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := h.users.ListFriends(r.Context(), UserID(r))
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, friends)
}

func friendID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "friendID"))
	if err != nil || id < 1 {
		return 0, errors.New("invalid friend ID")
	}
	return id, nil
}

// AddFriend links the acting user with another account.
func (h *UserHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	id, err := friendID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	userID := UserID(r)
	if id == userID {
		response.BadRequest(w, errors.New("cannot befriend yourself"))
		return
	}

	friend, err := h.users.Get(r.Context(), id)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if friend == nil {
		response.NotFound(w, errors.New("user not found"))
		return
	}

	if err := h.users.AddFriend(r.Context(), userID, id); err != nil {
		response.InternalError(w, err)
		return
	}
	response.NoContent(w)
}

// RemoveFriend removes the link in both directions.
func (h *UserHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	id, err := friendID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	if err := h.users.RemoveFriend(r.Context(), UserID(r), id); err != nil {
		response.InternalError(w, err)
		return
	}
	response.NoContent(w)
}
