package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"snapspend/internal/dto"
	"snapspend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExpenseWriter is the write side of the store.
type ExpenseWriter interface {
	Insert(ctx context.Context, rec *models.ExpenseRecord) (int64, error)
}

// ChatService dispatches one conversational turn: an image goes through
// extraction and storage, a bare message goes to the answerer, neither is a
// no-op. The transcript is ephemeral, held in memory for the life of the
// process; the store is the only durable state.
type ChatService struct {
	extractor *ExtractService
	answerer  *AnswerService
	store     ExpenseWriter
	uploadDir string
	logger    *zap.Logger

	mu      sync.Mutex
	history []dto.ChatTurn
}

func NewChatService(
	extractor *ExtractService,
	answerer *AnswerService,
	store ExpenseWriter,
	uploadDir string,
	logger *zap.Logger,
) *ChatService {
	if uploadDir != "" {
		if err := os.MkdirAll(uploadDir, 0755); err != nil {
			logger.Warn("Failed to create upload directory", zap.Error(err))
		}
	}

	return &ChatService{
		extractor: extractor,
		answerer:  answerer,
		store:     store,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// HandleTurn processes one user turn for the given user and returns the
// updated transcript. A turn that fails past the model call stores nothing:
// extraction has no side effects, so the only durable change is the single
// insert, and a failed insert fails the whole turn cleanly.
func (s *ChatService) HandleTurn(ctx context.Context, userID, message string, image []byte, imageName string) ([]dto.ChatTurn, error) {
	switch {
	case len(image) > 0:
		return s.handleReceipt(ctx, userID, message, image, imageName)
	case message != "":
		return s.handleQuestion(ctx, userID, message)
	default:
		return s.History(), nil
	}
}

// handleReceipt runs extract -> insert -> summary. The message accompanying
// the upload is shown in the transcript but not passed to the extractor.
func (s *ChatService) handleReceipt(ctx context.Context, userID, message string, image []byte, imageName string) ([]dto.ChatTurn, error) {
	s.saveUpload(image, imageName)

	rec, parsed, err := s.extractor.Extract(ctx, bytes.NewReader(image), imageName)
	if err != nil {
		return nil, err
	}

	rec.UserID = userID
	id, err := s.store.Insert(ctx, rec)
	if err != nil {
		return nil, err
	}

	userText := message
	if userText == "" {
		userText = "[receipt image]"
	}

	var summary string
	if parsed {
		summary = fmt.Sprintf("Saved expense #%d: %s — %s (%s) %.2f %s", id, rec.Date, rec.Merchant, rec.Category, rec.Total, rec.Currency)
	} else {
		summary = fmt.Sprintf("Saved receipt #%d, but I couldn't read structured fields from it. The raw model output is kept in the notes.", id)
	}

	return s.appendExchange(userText, summary), nil
}

func (s *ChatService) handleQuestion(ctx context.Context, userID, question string) ([]dto.ChatTurn, error) {
	answer, err := s.answerer.Answer(ctx, userID, question)
	if err != nil {
		return nil, err
	}

	return s.appendExchange(question, answer), nil
}

// History returns a copy of the current transcript.
func (s *ChatService) History() []dto.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]dto.ChatTurn, len(s.history))
	copy(out, s.history)
	return out
}

func (s *ChatService) appendExchange(userText, assistantText string) []dto.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history,
		dto.ChatTurn{Role: dto.RoleUser, Content: userText},
		dto.ChatTurn{Role: dto.RoleAssistant, Content: assistantText},
	)

	out := make([]dto.ChatTurn, len(s.history))
	copy(out, s.history)
	return out
}

// saveUpload keeps a copy of the receipt image for audit. Failure to save is
// logged and ignored; it never blocks the turn.
func (s *ChatService) saveUpload(image []byte, imageName string) {
	if s.uploadDir == "" {
		return
	}

	name := uuid.New().String() + filepath.Ext(imageName)
	path := filepath.Join(s.uploadDir, name)
	if err := os.WriteFile(path, image, 0644); err != nil {
		s.logger.Warn("Failed to save uploaded image", zap.Error(err), zap.String("path", path))
		return
	}

	s.logger.Info("Receipt image saved", zap.String("path", path))
}
