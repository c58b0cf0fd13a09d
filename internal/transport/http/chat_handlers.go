package http

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/olegsm/talkie-server/internal/core"
	"github.com/olegsm/talkie-server/internal/mediaengine"
	"github.com/olegsm/talkie-server/internal/store"
)

const (
	messagesPerPage = 20
	maxAttachments  = 5
)

// ChatHandlers provides HTTP handlers for chat and message endpoints.
type ChatHandlers struct {
	store store.Store
	hub   *core.Hub
	media mediaengine.Engine
	log   *zerolog.Logger
}

// NewChatHandlers creates a new chat handlers instance.
func NewChatHandlers(st store.Store, hub *core.Hub, media mediaengine.Engine, logger *zerolog.Logger) *ChatHandlers {
	return &ChatHandlers{
		store: st,
		hub:   hub,
		media: media,
		log:   logger,
	}
}

// CreateChatRequest represents the create chat request body.
type CreateChatRequest struct {
	Name    string  `json:"name" binding:"max=64"`
	Members []int64 `json:"members" binding:"required,min=1"`
}

// ChatResponse represents a chat in API responses.
type ChatResponse struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	GroupChat bool           `json:"groupChat"`
	CreatorID int64          `json:"creator"`
	Members   []int64        `json:"members,omitempty"`
	Populated []UserResponse `json:"memberDetails,omitempty"`
	CreatedAt string         `json:"createdAt"`
}

// MessageResponse represents a persisted message in API responses.
type MessageResponse struct {
	ID          int64              `json:"id"`
	ChatID      int64              `json:"chat"`
	SenderID    int64              `json:"sender"`
	Content     string             `json:"content"`
	Attachments []store.Attachment `json:"attachments"`
	CreatedAt   string             `json:"createdAt"`
}

// CreateChat handles chat creation. The caller becomes a member; chats with
// more than two members are group chats.
// POST /api/chat
func (h *ChatHandlers) CreateChat(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create chat request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	members := map[int64]struct{}{uid: {}}
	for _, id := range req.Members {
		members[id] = struct{}{}
	}
	groupChat := len(members) > 2

	chat, err := h.store.CreateChat(c.Request.Context(), req.Name, groupChat, uid, req.Members)
	if err != nil {
		h.log.Error().Err(err).Int64("creator_id", uid).Msg("failed to create chat")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Int64("chat_id", chat.ID).Int64("creator_id", uid).Msg("chat created")
	c.JSON(http.StatusCreated, gin.H{"success": true, "chat": chatResponse(chat, nil, nil)})
}

// GetChat returns chat details; with ?populate=true member profiles are embedded.
// GET /api/chat/:id
func (h *ChatHandlers) GetChat(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid chat id"})
		return
	}

	chat, err := h.store.GetChatByID(c.Request.Context(), chatID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "chat not found"})
		return
	}

	members, err := h.store.ListMembers(c.Request.Context(), chatID)
	if err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to list members")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	var populated []UserResponse
	if c.Query("populate") == "true" {
		populated = make([]UserResponse, 0, len(members))
		for _, id := range members {
			user, err := h.store.GetUserByID(c.Request.Context(), id)
			if err != nil {
				continue
			}
			populated = append(populated, UserResponse{
				ID:     user.ID,
				Name:   user.Name,
				Avatar: user.AvatarURL,
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "chat": chatResponse(chat, members, populated)})
}

// GetMessages returns one page of messages, oldest first within the page.
// GET /api/chat/message/:id?page=N
func (h *ChatHandlers) GetMessages(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	chatID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid chat id"})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	if _, err := h.store.GetChatByID(c.Request.Context(), chatID); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "chat not found"})
		return
	}

	member, err := h.store.IsMember(c.Request.Context(), uid, chatID)
	if err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to check membership")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "you are not allowed to access this chat"})
		return
	}

	offset := (page - 1) * messagesPerPage
	messages, err := h.store.ListMessages(c.Request.Context(), chatID, messagesPerPage, offset)
	if err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	total, err := h.store.CountMessages(c.Request.Context(), chatID)
	if err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to count messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	totalPages := (total + messagesPerPage - 1) / messagesPerPage

	// Store returns newest first; the page reads oldest first.
	response := make([]MessageResponse, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		response = append(response, messageResponse(messages[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"messages":   response,
		"totalPages": totalPages,
	})
}

// SendAttachments uploads 1..5 files via the media engine, persists them as
// an attachment message, and relays it to online chat members.
// POST /api/chat/message (multipart)
func (h *ChatHandlers) SendAttachments(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	chatID, err := strconv.ParseInt(c.PostForm("chatId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "chatId is required"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid multipart form"})
		return
	}
	files := form.File["files"]
	if len(files) < 1 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "please upload attachments"})
		return
	}
	if len(files) > maxAttachments {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "files can't be more than 5"})
		return
	}

	chat, err := h.store.GetChatByID(c.Request.Context(), chatID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "chat not found"})
		return
	}

	sender, err := h.store.GetUserByID(c.Request.Context(), uid)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", uid).Msg("failed to load sender")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	uploads := make([]mediaengine.File, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unreadable attachment"})
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unreadable attachment"})
			return
		}
		uploads = append(uploads, mediaengine.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	attachments, err := h.media.Upload(c.Request.Context(), uploads)
	if err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to upload attachments")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to upload attachments"})
		return
	}

	record := &store.Message{
		ChatID:      chatID,
		SenderID:    uid,
		Content:     "",
		Attachments: attachments,
	}
	if err := h.store.SaveMessage(c.Request.Context(), record); err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to save attachment message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	members, err := h.store.ListMembers(c.Request.Context(), chat.ID)
	if err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to list members for relay")
		members = nil
	}

	h.hub.RelayMessage(chatID, members, core.Message{
		ID:          uuid.NewString(),
		ChatID:      chatID,
		SenderID:    sender.ID,
		SenderName:  sender.Name,
		Attachments: attachments,
		CreatedAt:   time.Now(),
	})

	c.JSON(http.StatusOK, gin.H{"success": true, "message": messageResponse(record)})
}

func chatResponse(chat *store.Chat, members []int64, populated []UserResponse) ChatResponse {
	return ChatResponse{
		ID:        chat.ID,
		Name:      chat.Name,
		GroupChat: chat.GroupChat,
		CreatorID: chat.CreatorID,
		Members:   members,
		Populated: populated,
		CreatedAt: chat.CreatedAt.Format(time.RFC3339),
	}
}

func messageResponse(m *store.Message) MessageResponse {
	attachments := m.Attachments
	if attachments == nil {
		attachments = []store.Attachment{}
	}
	return MessageResponse{
		ID:          m.ID,
		ChatID:      m.ChatID,
		SenderID:    m.SenderID,
		Content:     m.Content,
		Attachments: attachments,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
	}
}
