package controller

import (
	"errors"

	"legal-chatbot-be/internal/dto"
	"legal-chatbot-be/internal/entity"
	"legal-chatbot-be/internal/pkg/serverutils"
	"legal-chatbot-be/internal/service"
	"legal-chatbot-be/pkg/ingest"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
}

type documentController struct {
	service       service.IIngestService
	jwtMiddleware fiber.Handler
}

func NewDocumentController(service service.IIngestService, jwtMiddleware fiber.Handler) IDocumentController {
	return &documentController{service: service, jwtMiddleware: jwtMiddleware}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/documents/v1")
	h.Use(c.jwtMiddleware, serverutils.RequireRole(string(entity.UserRoleAdmin)))
	h.Post("/", c.Submit)
}

// Submit queues a document for chunking and embedding. Re-submitting a
// source replaces its previous chunks.
func (c *documentController) Submit(ctx *fiber.Ctx) error {
	userId := ctx.Locals("user_id").(string)

	var req dto.SubmitDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Submit(ctx.UserContext(), userId, &req)
	if err != nil {
		if errors.Is(err, ingest.ErrUnsupportedFormat) {
			return serverutils.NewAppError(fiber.StatusBadRequest, "Only .txt, .md and .html documents are supported", err)
		}
		return err
	}
	resp := serverutils.SuccessResponse("Document queued", res)
	resp.Code = fiber.StatusAccepted
	return ctx.Status(fiber.StatusAccepted).JSON(resp)
}
