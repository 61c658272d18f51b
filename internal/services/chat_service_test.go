// internal/services/chat_service_test.go
package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/bizzyhq/bizzy-backend/internal/models"
	"github.com/bizzyhq/bizzy-backend/internal/utils"
)

type ChatServiceTestSuite struct {
	suite.Suite
	db    *gorm.DB
	chats *ChatService
	user  *models.User
}

func (s *ChatServiceTestSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	s.chats = NewChatService(s.db)
	s.user = createTestUser(s.T(), s.db, "chat@example.com")
}

func (s *ChatServiceTestSuite) TestSaveAndGetSession() {
	messages := json.RawMessage(`[{"role":"user","content":"berapa omzet hari ini?"}]`)

	session, err := s.chats.SaveSession(s.user.ID, nil, &SaveChatRequest{
		Title:    "Omzet harian",
		Messages: messages,
	})
	s.Require().NoError(err)

	loaded, err := s.chats.GetSession(s.user.ID, session.ID)
	s.Require().NoError(err)
	s.Equal("Omzet harian", loaded.Title)
	s.JSONEq(string(messages), loaded.Messages)
}

func (s *ChatServiceTestSuite) TestSaveRejectsNonArrayMessages() {
	_, err := s.chats.SaveSession(s.user.ID, nil, &SaveChatRequest{
		Title:    "Rusak",
		Messages: json.RawMessage(`{"role":"user"}`),
	})
	s.Require().Error(err)
	s.Contains(err.Error(), "JSON array")
}

func (s *ChatServiceTestSuite) TestUpdateExistingSession() {
	session, err := s.chats.SaveSession(s.user.ID, nil, &SaveChatRequest{
		Title:    "Draft",
		Messages: json.RawMessage(`[]`),
	})
	s.Require().NoError(err)

	updated, err := s.chats.SaveSession(s.user.ID, &session.ID, &SaveChatRequest{
		Title:    "Draft kedua",
		Summary:  "Obrolan soal stok",
		Messages: json.RawMessage(`[{"role":"user","content":"cek stok"}]`),
	})
	s.Require().NoError(err)
	s.Equal(session.ID, updated.ID)
	s.Equal("Draft kedua", updated.Title)
	s.Equal("Obrolan soal stok", updated.Summary)
}

func (s *ChatServiceTestSuite) TestAppendMessages() {
	first := []json.RawMessage{json.RawMessage(`{"role":"user","content":"halo"}`)}
	session, err := s.chats.AppendMessages(s.user.ID, nil, "Sapaan", first)
	s.Require().NoError(err)

	second := []json.RawMessage{json.RawMessage(`{"role":"assistant","content":"Halo juga!"}`)}
	updated, err := s.chats.AppendMessages(s.user.ID, &session.ID, "Sapaan", second)
	s.Require().NoError(err)

	var transcript []json.RawMessage
	s.Require().NoError(json.Unmarshal([]byte(updated.Messages), &transcript))
	s.Len(transcript, 2)
}

func (s *ChatServiceTestSuite) TestOwnershipIsolation() {
	other := createTestUser(s.T(), s.db, "tetangga@example.com")
	session, err := s.chats.SaveSession(other.ID, nil, &SaveChatRequest{
		Title:    "Rahasia tetangga",
		Messages: json.RawMessage(`[]`),
	})
	s.Require().NoError(err)

	_, err = s.chats.GetSession(s.user.ID, session.ID)
	s.Require().ErrorIs(err, ErrChatNotFound)

	err = s.chats.DeleteSession(s.user.ID, session.ID)
	s.Require().ErrorIs(err, ErrChatNotFound)
}

func (s *ChatServiceTestSuite) TestListSessions() {
	for _, title := range []string{"Satu", "Dua", "Tiga"} {
		_, err := s.chats.SaveSession(s.user.ID, nil, &SaveChatRequest{
			Title:    title,
			Messages: json.RawMessage(`[{"role":"user","content":"hai"},{"role":"assistant","content":"hai"}]`),
		})
		s.Require().NoError(err)
	}

	summaries, total, err := s.chats.ListSessions(s.user.ID, utils.PaginationParams{Page: 1, Limit: 2})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Len(summaries, 2)
	s.Equal(2, summaries[0].MessageCount)
}

func (s *ChatServiceTestSuite) TestDeleteSession() {
	session, err := s.chats.SaveSession(s.user.ID, nil, &SaveChatRequest{
		Title:    "Sementara",
		Messages: json.RawMessage(`[]`),
	})
	s.Require().NoError(err)

	s.Require().NoError(s.chats.DeleteSession(s.user.ID, session.ID))

	_, err = s.chats.GetSession(s.user.ID, session.ID)
	s.Require().ErrorIs(err, ErrChatNotFound)
}

func TestChatServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ChatServiceTestSuite))
}
