// internal/services/chat_service.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bizzyhq/bizzy-backend/internal/models"
	"github.com/bizzyhq/bizzy-backend/internal/utils"
)

var ErrChatNotFound = errors.New("chat session not found")

// ChatService stores assistant conversations. The message array is an
// opaque JSON document owned by the frontend and the assistant runner;
// the service only validates that it is well-formed JSON.
type ChatService struct {
	db *gorm.DB
}

type SaveChatRequest struct {
	Title    string          `json:"title" validate:"required,min=1,max=255"`
	Summary  string          `json:"summary,omitempty" validate:"omitempty,max=2000"`
	Messages json.RawMessage `json:"messages" validate:"required"`
}

type ChatSessionSummary struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary,omitempty"`
	MessageCount int       `json:"message_count"`
	UpdatedAt    string    `json:"updated_at"`
}

func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{db: db}
}

func (s *ChatService) SaveSession(userID uuid.UUID, sessionID *uuid.UUID, req *SaveChatRequest) (*models.ChatSession, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var messages []json.RawMessage
	if err := json.Unmarshal(req.Messages, &messages); err != nil {
		return nil, errors.New("messages must be a JSON array")
	}

	if sessionID != nil {
		session, err := s.GetSession(userID, *sessionID)
		if err != nil {
			return nil, err
		}
		updates := map[string]interface{}{
			"title":    req.Title,
			"messages": string(req.Messages),
		}
		if req.Summary != "" {
			updates["summary"] = req.Summary
		}
		if err := s.db.Model(session).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update chat session: %w", err)
		}
		return s.GetSession(userID, *sessionID)
	}

	session := &models.ChatSession{
		UserID:   userID,
		Title:    req.Title,
		Summary:  req.Summary,
		Messages: string(req.Messages),
	}
	if err := s.db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}
	return session, nil
}

func (s *ChatService) GetSession(userID, sessionID uuid.UUID) (*models.ChatSession, error) {
	var session models.ChatSession
	if err := s.db.Where("id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &session, nil
}

func (s *ChatService) ListSessions(userID uuid.UUID, params utils.PaginationParams) ([]ChatSessionSummary, int64, error) {
	query := s.db.Model(&models.ChatSession{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count chat sessions: %w", err)
	}

	var sessions []models.ChatSession
	if err := query.Order("updated_at DESC").
		Offset(params.Offset()).Limit(params.Limit).
		Find(&sessions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list chat sessions: %w", err)
	}

	summaries := make([]ChatSessionSummary, 0, len(sessions))
	for _, session := range sessions {
		var messages []json.RawMessage
		json.Unmarshal([]byte(session.Messages), &messages)

		summaries = append(summaries, ChatSessionSummary{
			ID:           session.ID,
			Title:        session.Title,
			Summary:      session.Summary,
			MessageCount: len(messages),
			UpdatedAt:    session.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	return summaries, total, nil
}

func (s *ChatService) DeleteSession(userID, sessionID uuid.UUID) error {
	session, err := s.GetSession(userID, sessionID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(session).Error; err != nil {
		return fmt.Errorf("failed to delete chat session: %w", err)
	}
	return nil
}

// AppendMessages adds entries to an existing transcript, creating the
// session when sessionID is nil.
func (s *ChatService) AppendMessages(userID uuid.UUID, sessionID *uuid.UUID, title string, newMessages []json.RawMessage) (*models.ChatSession, error) {
	var existing []json.RawMessage

	if sessionID != nil {
		session, err := s.GetSession(userID, *sessionID)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(session.Messages), &existing); err != nil {
			return nil, fmt.Errorf("corrupt transcript for session %s: %w", session.ID, err)
		}
	}

	combined := append(existing, newMessages...)
	payload, err := json.Marshal(combined)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transcript: %w", err)
	}

	return s.SaveSession(userID, sessionID, &SaveChatRequest{
		Title:    title,
		Messages: payload,
	})
}
