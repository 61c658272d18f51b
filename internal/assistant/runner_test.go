// internal/assistant/runner_test.go
package assistant

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizzyhq/bizzy-backend/internal/models"
	"github.com/bizzyhq/bizzy-backend/internal/services"
)

func TestRunnerPlainAnswer(t *testing.T) {
	ts := newTestStack(t)
	completer := &scriptedCompleter{turns: []Message{
		textTurn("Halo! Ada yang bisa saya bantu?"),
	}}
	runner := NewRunner(completer, ts.executor, ts.chats, 8)

	result, err := runner.Run(context.Background(), ts.user.ID, &RunRequest{
		Message: "halo",
	})
	require.NoError(t, err)

	assert.Equal(t, "Halo! Ada yang bisa saya bantu?", result.Reply)
	assert.Equal(t, 1, result.Steps)
	assert.Empty(t, result.ToolsUsed)

	// The system prompt goes to the model but never into the stored
	// transcript.
	require.Len(t, completer.requests, 1)
	assert.Equal(t, "system", completer.requests[0][0].Role)

	session, err := ts.chats.GetSession(ts.user.ID, result.SessionID)
	require.NoError(t, err)
	var transcript []Message
	require.NoError(t, json.Unmarshal([]byte(session.Messages), &transcript))
	require.Len(t, transcript, 2)
	assert.Equal(t, "user", transcript[0].Role)
	assert.Equal(t, "assistant", transcript[1].Role)
}

func TestRunnerToolCallLoop(t *testing.T) {
	ts := newTestStack(t)
	ts.seedProduct(t, "Kopi Susu", 15000, 10)

	completer := &scriptedCompleter{turns: []Message{
		toolTurn("call_1", "recordTransaction", `{"type":"income","name":"kopi susu","quantity":2}`),
		textTurn("Sudah dicatat: 2 kopi susu, total Rp30.000."),
	}}
	runner := NewRunner(completer, ts.executor, ts.chats, 8)

	result, err := runner.Run(context.Background(), ts.user.ID, &RunRequest{
		Message: "catat penjualan 2 kopi susu",
	})
	require.NoError(t, err)

	assert.Equal(t, "Sudah dicatat: 2 kopi susu, total Rp30.000.", result.Reply)
	assert.Equal(t, []string{"recordTransaction"}, result.ToolsUsed)
	assert.Equal(t, 2, result.Steps)

	// The tool actually ran against the database
	product, err := ts.products.GetProductByName(ts.user.ID, "Kopi Susu")
	require.NoError(t, err)
	assert.Equal(t, 8, product.CurrentStock)

	// Second model turn saw the tool result
	require.Len(t, completer.requests, 2)
	second := completer.requests[1]
	last := second[len(second)-1]
	assert.Equal(t, "tool", last.Role)
	assert.Equal(t, "call_1", last.ToolCallID)
	assert.Contains(t, last.Content, `"success":true`)
}

func TestRunnerUnknownToolStaysInBand(t *testing.T) {
	ts := newTestStack(t)
	completer := &scriptedCompleter{turns: []Message{
		toolTurn("call_1", "launchRocket", `{}`),
		textTurn("Maaf, saya tidak bisa melakukan itu."),
	}}
	runner := NewRunner(completer, ts.executor, ts.chats, 8)

	result, err := runner.Run(context.Background(), ts.user.ID, &RunRequest{
		Message: "luncurkan roket",
	})
	require.NoError(t, err)
	assert.Equal(t, "Maaf, saya tidak bisa melakukan itu.", result.Reply)

	second := completer.requests[1]
	last := second[len(second)-1]
	assert.Equal(t, "tool", last.Role)
	assert.Contains(t, last.Content, "unknown tool")
}

func TestRunnerStepBudget(t *testing.T) {
	ts := newTestStack(t)
	ts.seedProduct(t, "Kopi Susu", 15000, 100)

	// The model keeps calling tools and never answers
	completer := &scriptedCompleter{turns: []Message{
		toolTurn("call_1", "listProduct", `{}`),
		toolTurn("call_2", "listProduct", `{}`),
		toolTurn("call_3", "listProduct", `{}`),
	}}
	runner := NewRunner(completer, ts.executor, ts.chats, 2)

	result, err := runner.Run(context.Background(), ts.user.ID, &RunRequest{
		Message: "terus saja",
	})
	require.NoError(t, err)

	assert.Contains(t, result.Reply, "Maaf")
	assert.Equal(t, 2, result.Steps)
	assert.Len(t, result.ToolsUsed, 2)
	require.Len(t, completer.requests, 2)
}

func TestRunnerContinuesExistingSession(t *testing.T) {
	ts := newTestStack(t)

	first := &scriptedCompleter{turns: []Message{textTurn("Halo!")}}
	runner := NewRunner(first, ts.executor, ts.chats, 8)
	opening, err := runner.Run(context.Background(), ts.user.ID, &RunRequest{
		Message: "halo",
	})
	require.NoError(t, err)

	second := &scriptedCompleter{turns: []Message{textTurn("Masih di sini.")}}
	runner = NewRunner(second, ts.executor, ts.chats, 8)
	followup, err := runner.Run(context.Background(), ts.user.ID, &RunRequest{
		SessionID: &opening.SessionID,
		Message:   "masih ada?",
	})
	require.NoError(t, err)
	assert.Equal(t, opening.SessionID, followup.SessionID)

	// The second model call saw the whole history
	require.Len(t, second.requests, 1)
	request := second.requests[0]
	require.Len(t, request, 4) // system, halo, Halo!, masih ada?
	assert.Equal(t, "halo", request[1].Content)
	assert.Equal(t, "masih ada?", request[3].Content)

	session, err := ts.chats.GetSession(ts.user.ID, followup.SessionID)
	require.NoError(t, err)
	var transcript []Message
	require.NoError(t, json.Unmarshal([]byte(session.Messages), &transcript))
	assert.Len(t, transcript, 4)
}

func TestRunnerRejectsForeignSession(t *testing.T) {
	ts := newTestStack(t)

	session, err := ts.chats.SaveSession(ts.user.ID, nil, &services.SaveChatRequest{
		Title:    "Milik pemilik",
		Messages: json.RawMessage(`[]`),
	})
	require.NoError(t, err)

	intruder := &models.User{
		Name:         "Tetangga",
		Email:        "tetangga@example.com",
		BusinessName: "Warung Sebelah",
		Currency:     "IDR",
		Status:       models.UserStatusActive,
	}
	require.NoError(t, intruder.SetPassword("rahasia-juga"))
	require.NoError(t, ts.db.Create(intruder).Error)

	runner := NewRunner(&scriptedCompleter{}, ts.executor, ts.chats, 8)
	_, err = runner.Run(context.Background(), intruder.ID, &RunRequest{
		SessionID: &session.ID,
		Message:   "halo",
	})
	require.ErrorIs(t, err, services.ErrChatNotFound)
}

func TestRunnerTitleFromFirstMessage(t *testing.T) {
	ts := newTestStack(t)
	runner := NewRunner(&scriptedCompleter{turns: []Message{textTurn("Baik.")}}, ts.executor, ts.chats, 8)

	result, err := runner.Run(context.Background(), ts.user.ID, &RunRequest{
		Message: "berapa total pendapatan bulan ini?",
	})
	require.NoError(t, err)

	session, err := ts.chats.GetSession(ts.user.ID, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "berapa total pendapatan bulan ini?", session.Title)
}
