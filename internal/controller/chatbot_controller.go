package controller

import (
	"errors"

	"legal-chatbot-be/internal/dto"
	"legal-chatbot-be/internal/pkg/serverutils"
	"legal-chatbot-be/internal/service"
	"legal-chatbot-be/pkg/rag/conversation"

	"github.com/gofiber/fiber/v2"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	NewChat(ctx *fiber.Ctx) error
	ActiveSession(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type chatbotController struct {
	service       service.IChatbotService
	jwtMiddleware fiber.Handler
}

func NewChatbotController(service service.IChatbotService, jwtMiddleware fiber.Handler) IChatbotController {
	return &chatbotController{service: service, jwtMiddleware: jwtMiddleware}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chatbot/v1")
	h.Use(c.jwtMiddleware)
	h.Post("/chat", c.Chat)
	h.Get("/sessions", c.ListSessions)
	h.Post("/sessions/new", c.NewChat)
	h.Get("/sessions/active", c.ActiveSession)
	h.Get("/sessions/:id", c.GetSession)
	h.Delete("/sessions/:id", c.DeleteSession)
}

func (c *chatbotController) Chat(ctx *fiber.Ctx) error {
	userId := ctx.Locals("user_id").(string)

	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Chat(ctx.UserContext(), userId, &req)
	if err != nil {
		var turnErr *conversation.TurnError
		if errors.As(err, &turnErr) && res != nil {
			code := fiber.StatusBadGateway
			if errors.Is(err, conversation.ErrModelTimeout) {
				code = fiber.StatusGatewayTimeout
			}
			return ctx.Status(code).JSON(&serverutils.Response[*dto.ChatResponse]{
				Success: false,
				Code:    code,
				Message: conversation.UserMessage(err),
				Data:    res,
			})
		}
		return chatError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatbotController) ListSessions(ctx *fiber.Ctx) error {
	userId := ctx.Locals("user_id").(string)

	res, err := c.service.ListSessions(ctx.UserContext(), userId)
	if err != nil {
		return chatError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

// NewChat clears the active session; the next message starts a fresh one.
func (c *chatbotController) NewChat(ctx *fiber.Ctx) error {
	userId := ctx.Locals("user_id").(string)
	c.service.NewChat(ctx.UserContext(), userId)
	return ctx.JSON(serverutils.SuccessResponse[any]("Ready for a new conversation", nil))
}

func (c *chatbotController) ActiveSession(ctx *fiber.Ctx) error {
	userId := ctx.Locals("user_id").(string)

	res, err := c.service.ActiveSession(ctx.UserContext(), userId)
	if err != nil {
		return chatError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatbotController) GetSession(ctx *fiber.Ctx) error {
	userId := ctx.Locals("user_id").(string)

	res, err := c.service.SelectSession(ctx.UserContext(), userId, ctx.Params("id"))
	if err != nil {
		return chatError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatbotController) DeleteSession(ctx *fiber.Ctx) error {
	userId := ctx.Locals("user_id").(string)

	if err := c.service.DeleteSession(ctx.UserContext(), userId, ctx.Params("id")); err != nil {
		return chatError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Session deleted", nil))
}

func chatError(err error) error {
	switch {
	case errors.Is(err, conversation.ErrSessionNotFound):
		return serverutils.NewAppError(fiber.StatusNotFound, conversation.UserMessage(err), err)
	case errors.Is(err, conversation.ErrEmptyQuery):
		return serverutils.NewAppError(fiber.StatusBadRequest, conversation.UserMessage(err), err)
	}
	return serverutils.NewAppError(fiber.StatusInternalServerError, conversation.UserMessage(err), err)
}
