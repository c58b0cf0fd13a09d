package http

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/olegsm/talkie-server/internal/store"
)

// UserHandlers provides HTTP handlers for user operations.
type UserHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(st store.Store, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		store: st,
		log:   logger,
	}
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Status   string `json:"status,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// SearchUsers finds users the caller has not chatted with yet.
// GET /api/user/search?name=query
func (h *UserHandlers) SearchUsers(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	name := strings.TrimSpace(c.Query("name"))

	// Everyone sharing a chat with the caller is excluded, as is the caller.
	exclude := []int64{uid}
	chats, err := h.store.ListChatsForUser(c.Request.Context(), uid)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", uid).Msg("failed to list chats for search")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	seen := map[int64]struct{}{uid: {}}
	for _, chat := range chats {
		members, err := h.store.ListMembers(c.Request.Context(), chat.ID)
		if err != nil {
			h.log.Error().Err(err).Int64("chat_id", chat.ID).Msg("failed to list chat members")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
		for _, id := range members {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				exclude = append(exclude, id)
			}
		}
	}

	users, err := h.store.SearchUsers(c.Request.Context(), name, exclude)
	if err != nil {
		h.log.Error().Err(err).Str("query", name).Msg("failed to search users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, UserResponse{
			ID:       u.ID,
			Name:     u.Name,
			Username: u.Username,
			Avatar:   u.AvatarURL,
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "users": response})
}

// UpdateStatusRequest represents the status update request body.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus sets a user's availability.
// PUT /api/user/:id/status
func (h *UserHandlers) UpdateStatus(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user id and status are required"})
		return
	}

	status := store.UserStatus(req.Status)
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid status, must be 'Available' or 'Busy'"})
		return
	}

	if err := h.store.UpdateUserStatus(c.Request.Context(), userID, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to update user status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	user, err := h.store.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to load user after status update")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Int64("user_id", userID).Str("status", req.Status).Msg("user status updated")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    userResponse(user),
	})
}
