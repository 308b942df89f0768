package controller

import (
	"errors"
	"io"

	"onboarding-ai-be/internal/dto"
	"onboarding-ai-be/internal/pkg/serverutils"
	"onboarding-ai-be/internal/service"
	"onboarding-ai-be/pkg/agi"

	"github.com/gofiber/fiber/v2"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Ask(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type chatbotController struct {
	chatbotService service.IChatbotService
}

func NewChatbotController(chatbotService service.IChatbotService) IChatbotController {
	return &chatbotController{
		chatbotService: chatbotService,
	}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chatbot/v1")
	h.Post("/upload", c.Upload)
	h.Post("/ask", c.Ask)
	h.Delete("/session/:id", c.DeleteSession)
}

func (c *chatbotController) Upload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Document file is required"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Could not open uploaded file"))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	res, err := c.chatbotService.UploadDocument(ctx.Context(), fileHeader.Filename, data)
	if err != nil {
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Document uploaded", res))
}

func (c *chatbotController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.chatbotService.Ask(ctx.Context(), &req)
	if err != nil {
		return c.mapAskError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Answer", res))
}

func (c *chatbotController) DeleteSession(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("id")
	if sessionId == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Session id is required"))
	}

	if err := c.chatbotService.DeleteSession(ctx.Context(), sessionId); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Session deleted", nil))
}

// mapAskError translates the agent error taxonomy onto HTTP statuses.
func (c *chatbotController) mapAskError(ctx *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrSessionNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	}

	var timeoutErr *agi.TimeoutError
	if errors.As(err, &timeoutErr) {
		return ctx.Status(fiber.StatusGatewayTimeout).JSON(serverutils.ErrorResponse(504, err.Error()))
	}

	var sessionErr *agi.SessionError
	if errors.As(err, &sessionErr) {
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, err.Error()))
	}

	var requestErr *agi.RequestError
	if errors.As(err, &requestErr) {
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, err.Error()))
	}

	return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
}
