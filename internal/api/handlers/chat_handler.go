package handlers

import (
	"io"

	"snapspend/internal/dto"
	"snapspend/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chatService *service.ChatService
	demoUserID  string
	logger      *zap.Logger
}

func NewChatHandler(chatService *service.ChatService, demoUserID string, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		demoUserID:  demoUserID,
		logger:      logger,
	}
}

// HandleTurn accepts one conversational turn as a multipart form with an
// optional "message" field and an optional "image" file, and returns the
// updated transcript. With neither present the turn is a no-op.
func (h *ChatHandler) HandleTurn(c *fiber.Ctx) error {
	userID := resolveUserID(c, h.demoUserID)
	message := c.FormValue("message")

	var (
		image     []byte
		imageName string
	)

	if fileHeader, err := c.FormFile("image"); err == nil && fileHeader != nil {
		src, err := fileHeader.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Failed to open image",
			})
		}
		image, err = io.ReadAll(src)
		src.Close()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Failed to read image",
			})
		}
		imageName = fileHeader.Filename
	}

	history, err := h.chatService.HandleTurn(c.Context(), userID, message, image, imageName)
	if err != nil {
		h.logger.Error("Turn failed", zap.Error(err), zap.String("user_id", userID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process turn",
		})
	}

	return c.JSON(dto.ChatResponse{History: history})
}

// GetHistory returns the ephemeral in-memory transcript.
func (h *ChatHandler) GetHistory(c *fiber.Ctx) error {
	return c.JSON(dto.ChatResponse{History: h.chatService.History()})
}

// resolveUserID reads the user identifier from the X-User-ID header, falling
// back to the configured demo user. It is threaded explicitly through every
// call below this point; nothing reads it from ambient state.
func resolveUserID(c *fiber.Ctx, demoUserID string) string {
	if userID := c.Get("X-User-ID"); userID != "" {
		return userID
	}
	return demoUserID
}
