// internal/handlers/assistant.go
package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/bizzyhq/bizzy-backend/internal/assistant"
	"github.com/bizzyhq/bizzy-backend/internal/i18n"
	"github.com/bizzyhq/bizzy-backend/internal/services"
	"github.com/bizzyhq/bizzy-backend/internal/utils"
)

type AssistantHandler struct {
	runner   *assistant.Runner
	executor *assistant.Executor
}

func NewAssistantHandler(runner *assistant.Runner, executor *assistant.Executor) *AssistantHandler {
	return &AssistantHandler{
		runner:   runner,
		executor: executor,
	}
}

// POST /assistant/chat
func (h *AssistantHandler) Chat(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req assistant.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	result, err := h.runner.Run(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrChatNotFound) {
			utils.NotFoundResponse(c, "chat")
			return
		}
		utils.ErrorResponse(c, 502, "ASSISTANT_ERROR", err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, result)
}

// GET /assistant/tools
func (h *AssistantHandler) ListTools(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{"tools": assistant.Tools})
}

// POST /assistant/tools/execute
// Runs a single tool directly, without the chat loop. Useful for
// frontend quick actions that map one button to one tool.
func (h *AssistantHandler) ExecuteTool(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name      string          `json:"name" binding:"required"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if assistant.ToolByName(req.Name) == nil {
		utils.NotFoundResponse(c, "tool")
		return
	}
	if len(req.Arguments) == 0 {
		req.Arguments = json.RawMessage(`{}`)
	}

	utils.SuccessResponse(c, h.executor.Execute(userID, req.Name, req.Arguments))
}
