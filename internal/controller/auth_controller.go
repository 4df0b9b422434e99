package controller

import (
	"errors"

	"legal-chatbot-be/internal/dto"
	"legal-chatbot-be/internal/pkg/serverutils"
	"legal-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
}

func NewAuthController(service service.IAuthService) IAuthController {
	return &authController{service: service}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/register", c.Register)
	h.Post("/login", c.Login)
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Register(ctx.UserContext(), &req)
	if err != nil {
		return authError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("User registered successfully", res))
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Login(ctx.UserContext(), &req)
	if err != nil {
		return authError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func authError(err error) error {
	var policyErr *service.PasswordPolicyError
	switch {
	case errors.As(err, &policyErr):
		return serverutils.NewAppError(fiber.StatusBadRequest, policyErr.Error(), err)
	case errors.Is(err, service.ErrEmailTaken):
		return serverutils.NewAppError(fiber.StatusConflict, "Email is already registered", err)
	case errors.Is(err, service.ErrInvalidCredentials):
		return serverutils.NewAppError(fiber.StatusUnauthorized, "Invalid email or password", err)
	case errors.Is(err, service.ErrUserNotFound):
		return serverutils.NewAppError(fiber.StatusNotFound, "User not found", err)
	}
	return err
}
