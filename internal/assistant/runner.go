// internal/assistant/runner.go
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bizzyhq/bizzy-backend/internal/services"
)

const systemPrompt = `You are Bizzy, a friendly business assistant for small merchants.
You help with bookkeeping, inventory, sales reports and payment links.
Use the available tools for anything involving the user's data; never
invent numbers. Answer in the language the user writes in, and keep
answers short and concrete. Amounts are in the user's currency.`

// Message is one chat turn in completion-API shape.
type Message struct {
	Role       string     `json:"role"` // system, user, assistant, tool
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Completer produces one model turn. Implementations wrap a provider
// SDK; tests inject a scripted fake.
type Completer interface {
	Complete(ctx context.Context, messages []Message, tools []Tool) (*Message, error)
}

// Runner drives the tool-call loop: model turn, tool execution, repeat,
// until the model answers in plain text or the step budget runs out.
type Runner struct {
	completer Completer
	executor  *Executor
	chats     *services.ChatService
	maxSteps  int
}

type RunRequest struct {
	SessionID *uuid.UUID `json:"session_id,omitempty"`
	Message   string     `json:"message" validate:"required,min=1"`
	Title     string     `json:"title,omitempty"`
}

type RunResult struct {
	SessionID uuid.UUID `json:"session_id"`
	Reply     string    `json:"reply"`
	Steps     int       `json:"steps"`
	ToolsUsed []string  `json:"tools_used,omitempty"`
}

func NewRunner(completer Completer, executor *Executor, chats *services.ChatService, maxSteps int) *Runner {
	if maxSteps <= 0 {
		maxSteps = 8
	}
	return &Runner{
		completer: completer,
		executor:  executor,
		chats:     chats,
		maxSteps:  maxSteps,
	}
}

func (r *Runner) Run(ctx context.Context, userID uuid.UUID, req *RunRequest) (*RunResult, error) {
	if req.Message == "" {
		return nil, errors.New("message must not be empty")
	}

	history, err := r.loadHistory(userID, req.SessionID)
	if err != nil {
		return nil, err
	}

	messages := append([]Message{{Role: "system", Content: systemPrompt}}, history...)
	messages = append(messages, Message{Role: "user", Content: req.Message})

	var (
		reply     string
		toolsUsed []string
		steps     int
	)

	for steps < r.maxSteps {
		steps++
		turn, err := r.completer.Complete(ctx, messages, Tools)
		if err != nil {
			return nil, fmt.Errorf("model call failed: %w", err)
		}
		messages = append(messages, *turn)

		if len(turn.ToolCalls) == 0 {
			reply = turn.Content
			break
		}

		for _, call := range turn.ToolCalls {
			toolsUsed = append(toolsUsed, call.Name)

			var resultPayload []byte
			if ToolByName(call.Name) == nil {
				resultPayload, _ = json.Marshal(map[string]interface{}{
					"success": false,
					"error":   fmt.Sprintf("unknown tool: %s", call.Name),
				})
			} else {
				result := r.executor.Execute(userID, call.Name, call.Arguments)
				resultPayload, err = json.Marshal(result)
				if err != nil {
					return nil, fmt.Errorf("failed to encode tool result: %w", err)
				}
			}

			messages = append(messages, Message{
				Role:       "tool",
				Content:    string(resultPayload),
				ToolCallID: call.ID,
				Name:       call.Name,
			})
		}
	}

	if reply == "" {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"steps":   steps,
		}).Warn("Assistant hit step budget without a final answer")
		reply = "Maaf, saya tidak bisa menyelesaikan permintaan itu. Coba pecah menjadi langkah yang lebih kecil."
	}

	session, err := r.persist(userID, req, messages[1:]) // drop system prompt
	if err != nil {
		return nil, err
	}

	return &RunResult{
		SessionID: session,
		Reply:     reply,
		Steps:     steps,
		ToolsUsed: toolsUsed,
	}, nil
}

func (r *Runner) loadHistory(userID uuid.UUID, sessionID *uuid.UUID) ([]Message, error) {
	if sessionID == nil {
		return nil, nil
	}

	session, err := r.chats.GetSession(userID, *sessionID)
	if err != nil {
		return nil, err
	}

	var history []Message
	if err := json.Unmarshal([]byte(session.Messages), &history); err != nil {
		return nil, fmt.Errorf("corrupt transcript for session %s: %w", session.ID, err)
	}
	return history, nil
}

func (r *Runner) persist(userID uuid.UUID, req *RunRequest, transcript []Message) (uuid.UUID, error) {
	payload, err := json.Marshal(transcript)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode transcript: %w", err)
	}

	title := req.Title
	if title == "" {
		title = req.Message
		if len(title) > 80 {
			title = title[:80]
		}
	}

	session, err := r.chats.SaveSession(userID, req.SessionID, &services.SaveChatRequest{
		Title:    title,
		Messages: payload,
	})
	if err != nil {
		return uuid.Nil, err
	}
	return session.ID, nil
}
