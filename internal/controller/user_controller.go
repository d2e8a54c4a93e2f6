package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tai-backend/internal/dto"
	"tai-backend/internal/pkg/serverutils"
	"tai-backend/internal/service"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	GetProfile(ctx *fiber.Ctx) error
	JoinCourse(ctx *fiber.Ctx) error
	LeaveCourse(ctx *fiber.Ctx) error
	GetCourses(ctx *fiber.Ctx) error
}

type userController struct {
	service service.IUserService
}

func NewUserController(service service.IUserService) IUserController {
	return &userController{service: service}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/user/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/me", c.GetProfile)
	h.Get("/courses", c.GetCourses)
	h.Post("/courses/join", c.JoinCourse)
	h.Delete("/courses/:courseId", c.LeaveCourse)
}

func (c *userController) GetProfile(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetProfile(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get profile", res))
}

func (c *userController) JoinCourse(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.JoinCourseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.JoinCourse(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Joined course", res))
}

func (c *userController) LeaveCourse(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	courseId, _ := uuid.Parse(ctx.Params("courseId"))

	if err := c.service.LeaveCourse(ctx.Context(), userId, courseId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Left course", nil))
}

func (c *userController) GetCourses(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetCourses(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get courses", res))
}
