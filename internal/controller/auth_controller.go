package controller

import (
	"github.com/gofiber/fiber/v2"

	"tai-backend/internal/dto"
	"tai-backend/internal/pkg/serverutils"
	"tai-backend/internal/service"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	RegisterInstructor(ctx *fiber.Ctx) error
	VerifyOTP(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	RegisterDevice(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
}

func NewAuthController(service service.IAuthService) IAuthController {
	return &authController{service: service}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth/v1")
	h.Post("/register", c.RegisterInstructor)
	h.Post("/verify-otp", c.VerifyOTP)
	h.Post("/login", c.Login)
	h.Post("/device", c.RegisterDevice)
}

func (c *authController) RegisterInstructor(ctx *fiber.Ctx) error {
	var req dto.RegisterInstructorRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.RegisterInstructor(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Registration started, check your email for the code", res))
}

func (c *authController) VerifyOTP(ctx *fiber.Ctx) error {
	var req dto.VerifyOTPRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.VerifyOTP(ctx.Context(), &req); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Email verified", nil))
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Login(ctx.Context(), &req)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}

	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func (c *authController) RegisterDevice(ctx *fiber.Ctx) error {
	var req dto.RegisterDeviceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.RegisterDevice(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Device registered", res))
}
