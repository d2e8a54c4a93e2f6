package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tai-backend/internal/dto"
	"tai-backend/internal/pkg/serverutils"
	"tai-backend/internal/service"
)

type ICourseController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	ShowByCode(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	GetGuardrails(ctx *fiber.Ctx) error
	UpdateGuardrails(ctx *fiber.Ctx) error
	GetFiles(ctx *fiber.Ctx) error
	UploadFile(ctx *fiber.Ctx) error
	DeleteFile(ctx *fiber.Ctx) error
	GetActivity(ctx *fiber.Ctx) error
}

type courseController struct {
	courseService service.ICourseService
	uploadService service.IUploadService
}

func NewCourseController(courseService service.ICourseService, uploadService service.IUploadService) ICourseController {
	return &courseController{
		courseService: courseService,
		uploadService: uploadService,
	}
}

func (c *courseController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/course/v1")
	h.Use(serverutils.JwtMiddleware)

	h.Get("code/:code", c.ShowByCode)
	h.Get(":id", c.Show)
	h.Get(":id/guardrails", c.GetGuardrails)
	h.Get(":id/files", c.GetFiles)

	// Instructor-only management surface.
	m := h.Group("")
	m.Use(serverutils.InstructorOnly)
	m.Get("", c.GetAll)
	m.Post("", c.Create)
	m.Delete(":id", c.Delete)
	m.Put(":id/guardrails", c.UpdateGuardrails)
	m.Post(":id/files", c.UploadFile)
	m.Delete(":id/files/:fileId", c.DeleteFile)
	m.Get(":id/activity", c.GetActivity)
}

func (c *courseController) Create(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateCourseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.courseService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Course created", res))
}

func (c *courseController) GetAll(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.courseService.GetAll(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get courses", res))
}

func (c *courseController) Show(ctx *fiber.Ctx) error {
	courseId, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.courseService.Show(ctx.Context(), courseId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show course", res))
}

func (c *courseController) ShowByCode(ctx *fiber.Ctx) error {
	res, err := c.courseService.ShowByCode(ctx.Context(), ctx.Params("code"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show course", res))
}

func (c *courseController) Delete(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	courseId, _ := uuid.Parse(ctx.Params("id"))

	if err := c.courseService.Delete(ctx.Context(), userId, courseId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Course deleted", nil))
}

func (c *courseController) GetGuardrails(ctx *fiber.Ctx) error {
	courseId, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.courseService.GetGuardrails(ctx.Context(), courseId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get guardrails", res))
}

func (c *courseController) UpdateGuardrails(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	courseId, _ := uuid.Parse(ctx.Params("id"))

	var req dto.UpdateGuardrailRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.courseService.UpdateGuardrails(ctx.Context(), userId, courseId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Guardrails updated", res))
}

func (c *courseController) GetFiles(ctx *fiber.Ctx) error {
	courseId, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.courseService.GetFiles(ctx.Context(), courseId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get files", res))
}

func (c *courseController) UploadFile(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	courseId, _ := uuid.Parse(ctx.Params("id"))

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing file")
	}

	res, err := c.uploadService.Upload(ctx.Context(), userId, courseId, fileHeader)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("File queued for indexing", res))
}

func (c *courseController) DeleteFile(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	courseId, _ := uuid.Parse(ctx.Params("id"))
	fileId, _ := uuid.Parse(ctx.Params("fileId"))

	if err := c.courseService.DeleteFile(ctx.Context(), userId, courseId, fileId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("File deleted", nil))
}

func (c *courseController) GetActivity(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	courseId, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.courseService.GetActivity(ctx.Context(), userId, courseId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get activity", res))
}
