package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"snapspend/internal/models"

	"go.uber.org/zap"
)

// VisionModel is the hosted multimodal model: image plus instruction in, raw
// reply text out.
type VisionModel interface {
	GenerateWithImage(ctx context.Context, image io.Reader, fileName, prompt string) (string, error)
}

var extractPrompt = fmt.Sprintf(`Extract the expense from this receipt photo.

Reply with ONE JSON object and nothing else. No prose before or after it, no markdown fences. The object must have exactly these keys:

{
  "date": "yyyy-mm-dd (ISO date of the purchase)",
  "merchant": "merchant name as printed",
  "category": "one of: %s",
  "total": final total as a number,
  "currency": "ISO code or symbol as printed",
  "notes": "anything else worth keeping, or empty string"
}`, strings.Join(models.SuggestedCategories, ", "))

// ExtractService turns a receipt image into expense fields via one vision
// call. Storage is the caller's responsibility so extraction stays testable
// without a database.
type ExtractService struct {
	vision VisionModel
	logger *zap.Logger
}

func NewExtractService(vision VisionModel, logger *zap.Logger) *ExtractService {
	return &ExtractService{
		vision: vision,
		logger: logger,
	}
}

// extractionPayload mirrors the keys the prompt demands.
type extractionPayload struct {
	Date     string  `json:"date"`
	Merchant string  `json:"merchant"`
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
	Notes    string  `json:"notes"`
}

// Extract sends the image to the vision model and parses its reply. The
// returned record has no identifier, user or creation timestamp; those are
// assigned on insert. The bool reports whether structured parsing succeeded:
// on failure the record is a degraded fallback whose notes carry the full raw
// reply, and no error is returned. Only a failed model call is an error.
func (s *ExtractService) Extract(ctx context.Context, image io.Reader, fileName string) (*models.ExpenseRecord, bool, error) {
	raw, err := s.vision.GenerateWithImage(ctx, image, fileName, extractPrompt)
	if err != nil {
		return nil, false, fmt.Errorf("extraction call failed: %w", err)
	}

	payload, ok := parseExtraction(raw)
	if !ok {
		s.logger.Warn("No parseable JSON in extraction reply, falling back to raw notes",
			zap.Int("reply_length", len(raw)),
		)
		return &models.ExpenseRecord{
			Notes:   sanitizeUTF8(raw),
			RawJSON: sanitizeUTF8(raw),
		}, false, nil
	}

	return &models.ExpenseRecord{
		Date:     payload.Date,
		Merchant: sanitizeUTF8(payload.Merchant),
		Category: sanitizeUTF8(payload.Category),
		Total:    payload.Total,
		Currency: sanitizeUTF8(payload.Currency),
		Notes:    sanitizeUTF8(payload.Notes),
		RawJSON:  sanitizeUTF8(raw),
	}, true, nil
}

// parseExtraction runs the two-stage parse: first the whole reply as JSON,
// then the first balanced object inside it. Markdown fences are stripped
// before each attempt since models wrap output in them despite instructions.
func parseExtraction(raw string) (*extractionPayload, bool) {
	cleaned := stripFences(raw)

	var payload extractionPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err == nil && strings.HasPrefix(cleaned, "{") {
		return &payload, true
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return nil, false
	}

	payload = extractionPayload{}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &payload); err != nil {
		return nil, false
	}

	return &payload, true
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
