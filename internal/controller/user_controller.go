package controller

import (
	"legal-chatbot-be/internal/dto"
	"legal-chatbot-be/internal/pkg/serverutils"
	"legal-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	GetProfile(ctx *fiber.Ctx) error
	UpdateProfile(ctx *fiber.Ctx) error
}

type userController struct {
	service       service.IUserService
	jwtMiddleware fiber.Handler
}

func NewUserController(service service.IUserService, jwtMiddleware fiber.Handler) IUserController {
	return &userController{service: service, jwtMiddleware: jwtMiddleware}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/user/v1")
	h.Use(c.jwtMiddleware)
	h.Get("/profile", c.GetProfile)
	h.Put("/profile", c.UpdateProfile)
}

func (c *userController) GetProfile(ctx *fiber.Ctx) error {
	userId, err := uuid.Parse(ctx.Locals("user_id").(string))
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID")
	}

	res, err := c.service.GetProfile(ctx.UserContext(), userId)
	if err != nil {
		return authError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("User profile", res))
}

func (c *userController) UpdateProfile(ctx *fiber.Ctx) error {
	userId, err := uuid.Parse(ctx.Locals("user_id").(string))
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID")
	}

	var req dto.UpdateProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateProfile(ctx.UserContext(), userId, &req)
	if err != nil {
		return authError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Profile updated", res))
}
