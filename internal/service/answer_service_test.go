package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"snapspend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubText struct {
	reply     string
	err       error
	gotPrompt string
	calls     int
}

func (s *stubText) Generate(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.gotPrompt = prompt
	return s.reply, s.err
}

type stubReader struct {
	records  []*models.ExpenseRecord
	err      error
	gotUser  string
	gotLimit int
}

func (s *stubReader) Recent(_ context.Context, userID string, limit int) ([]*models.ExpenseRecord, error) {
	s.gotUser = userID
	s.gotLimit = limit
	return s.records, s.err
}

func TestAnswerEmptyStoreShortCircuits(t *testing.T) {
	text := &stubText{reply: "should never be used"}
	svc := NewAnswerService(&stubReader{}, text, 50, zap.NewNop())

	answer, err := svc.Answer(context.Background(), "demo-user-001", "how much did I spend?")
	require.NoError(t, err)

	assert.Equal(t, NoExpensesReply, answer)
	assert.Zero(t, text.calls, "no model call when there is no data")
}

func TestAnswerEmbedsRecentRecordsInPrompt(t *testing.T) {
	records := []*models.ExpenseRecord{
		{ID: 2, UserID: "u1", Date: "2024-01-06", Merchant: "GreenMart", Category: "groceries", Total: 62.13, Currency: "USD", Notes: "weekly shop"},
		{ID: 1, UserID: "u1", Date: "2024-01-05", Merchant: "Cafe Luna", Category: "coffee", Total: 4.50, Currency: "USD", Notes: "latte"},
	}
	reader := &stubReader{records: records}
	text := &stubText{reply: "You spent 66.63 USD."}
	svc := NewAnswerService(reader, text, 25, zap.NewNop())

	answer, err := svc.Answer(context.Background(), "u1", "what's my total?")
	require.NoError(t, err)
	assert.Equal(t, "You spent 66.63 USD.", answer, "model reply returned unmodified")

	assert.Equal(t, "u1", reader.gotUser)
	assert.Equal(t, 25, reader.gotLimit)
	require.Equal(t, 1, text.calls)

	// The prompt embeds a JSON serialization of exactly the fetched records.
	start := strings.Index(text.gotPrompt, "[")
	end := strings.LastIndex(text.gotPrompt, "]")
	require.True(t, start >= 0 && end > start, "prompt must contain a JSON array")

	var embedded []promptExpense
	require.NoError(t, json.Unmarshal([]byte(text.gotPrompt[start:end+1]), &embedded))
	require.Len(t, embedded, 2)
	assert.Equal(t, "GreenMart", embedded[0].Merchant)
	assert.Equal(t, 62.13, embedded[0].Total)
	assert.Equal(t, "Cafe Luna", embedded[1].Merchant)
	assert.Equal(t, "latte", embedded[1].Notes)

	assert.Contains(t, text.gotPrompt, "what's my total?")
	assert.Contains(t, text.gotPrompt, "ONLY this data")
}

func TestAnswerStoreFailurePropagates(t *testing.T) {
	reader := &stubReader{err: errors.New("disk gone")}
	text := &stubText{}
	svc := NewAnswerService(reader, text, 50, zap.NewNop())

	_, err := svc.Answer(context.Background(), "u1", "anything")
	assert.Error(t, err)
	assert.Zero(t, text.calls)
}

func TestAnswerModelFailurePropagates(t *testing.T) {
	reader := &stubReader{records: []*models.ExpenseRecord{{ID: 1, UserID: "u1"}}}
	text := &stubText{err: errors.New("quota exceeded")}
	svc := NewAnswerService(reader, text, 50, zap.NewNop())

	_, err := svc.Answer(context.Background(), "u1", "anything")
	assert.Error(t, err)
}
