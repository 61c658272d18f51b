// internal/handlers/chat.go
package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bizzyhq/bizzy-backend/internal/i18n"
	"github.com/bizzyhq/bizzy-backend/internal/services"
	"github.com/bizzyhq/bizzy-backend/internal/utils"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// POST /chats
func (h *ChatHandler) SaveSession(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body struct {
		SessionID *uuid.UUID      `json:"session_id,omitempty"`
		Title     string          `json:"title"`
		Summary   string          `json:"summary,omitempty"`
		Messages  json.RawMessage `json:"messages"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	session, err := h.chatService.SaveSession(userID, body.SessionID, &services.SaveChatRequest{
		Title:    body.Title,
		Summary:  body.Summary,
		Messages: body.Messages,
	})
	if err != nil {
		if errors.Is(err, services.ErrChatNotFound) {
			utils.NotFoundResponse(c, "chat")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, session)
}

// GET /chats
func (h *ChatHandler) ListSessions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	sessions, total, err := h.chatService.ListSessions(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponseWithMeta(c, sessions, gin.H{
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	})
}

// GET /chats/:id
func (h *ChatHandler) GetSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	session, err := h.chatService.GetSession(userID, sessionID)
	if err != nil {
		if errors.Is(err, services.ErrChatNotFound) {
			utils.NotFoundResponse(c, "chat")
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"id":       session.ID,
		"title":    session.Title,
		"summary":  session.Summary,
		"messages": json.RawMessage(session.Messages),
	})
}

// DELETE /chats/:id
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.chatService.DeleteSession(userID, sessionID); err != nil {
		if errors.Is(err, services.ErrChatNotFound) {
			utils.NotFoundResponse(c, "chat")
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyChatDeleted),
	})
}
