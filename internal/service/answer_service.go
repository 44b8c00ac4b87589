package service

import (
	"context"
	"encoding/json"
	"fmt"

	"snapspend/internal/models"

	"go.uber.org/zap"
)

// TextModel is the hosted text model: prompt in, raw reply text out.
type TextModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ExpenseReader is the read side of the store the answerer grounds on.
type ExpenseReader interface {
	Recent(ctx context.Context, userID string, limit int) ([]*models.ExpenseRecord, error)
}

// NoExpensesReply is returned without a model call when the user has no
// stored expenses, so the empty case stays deterministic and costs nothing.
const NoExpensesReply = "I don't have any expenses on file for you yet. Upload a receipt first and then ask me about your spending."

// AnswerService answers spending questions. Grounding is an honest recency
// fetch: the most recently inserted rows for the user, serialized verbatim
// into the prompt. There is no ranking or semantic retrieval. Arithmetic in
// the reply is the model's own; nothing re-verifies it.
type AnswerService struct {
	store   ExpenseReader
	text    TextModel
	maxRows int
	logger  *zap.Logger
}

func NewAnswerService(store ExpenseReader, text TextModel, maxRows int, logger *zap.Logger) *AnswerService {
	return &AnswerService{
		store:   store,
		text:    text,
		maxRows: maxRows,
		logger:  logger,
	}
}

// promptExpense is the shape each record takes inside the prompt. RawJSON is
// left out: the model needs the structured fields, not the audit copy.
type promptExpense struct {
	Date     string  `json:"date"`
	Merchant string  `json:"merchant"`
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
	Notes    string  `json:"notes,omitempty"`
}

// Answer fetches the user's recent expenses and asks the text model the
// question against them. The model's reply is returned unmodified.
func (s *AnswerService) Answer(ctx context.Context, userID, question string) (string, error) {
	records, err := s.store.Recent(ctx, userID, s.maxRows)
	if err != nil {
		return "", fmt.Errorf("failed to fetch recent expenses: %w", err)
	}

	if len(records) == 0 {
		s.logger.Info("No expenses for user, skipping model call", zap.String("user_id", userID))
		return NoExpensesReply, nil
	}

	prompt, err := buildAnswerPrompt(records, question)
	if err != nil {
		return "", err
	}

	reply, err := s.text.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("answer call failed: %w", err)
	}

	s.logger.Info("Question answered",
		zap.String("user_id", userID),
		zap.Int("context_rows", len(records)),
	)

	return reply, nil
}

func buildAnswerPrompt(records []*models.ExpenseRecord, question string) (string, error) {
	expenses := make([]promptExpense, len(records))
	for i, rec := range records {
		expenses[i] = promptExpense{
			Date:     rec.Date,
			Merchant: rec.Merchant,
			Category: rec.Category,
			Total:    rec.Total,
			Currency: rec.Currency,
			Notes:    rec.Notes,
		}
	}

	data, err := json.Marshal(expenses)
	if err != nil {
		return "", fmt.Errorf("failed to serialize expenses: %w", err)
	}

	return fmt.Sprintf(`Here are the user's recent expenses, most recent first, as a JSON array:

%s

Answer the user's question using ONLY this data. Do not invent amounts, dates, or merchants that are not in it. If the data cannot answer the question, say so.

Question: %s`, string(data), question), nil
}
