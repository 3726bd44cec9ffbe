package controller

import (
	"errors"

	"ai-datachat-be/internal/dto"
	"ai-datachat-be/internal/pkg/serverutils"
	"ai-datachat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IIntegrationController interface {
	RegisterRoutes(r fiber.Router)
	Connect(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Disconnect(ctx *fiber.Ctx) error
}

type integrationController struct {
	service service.IIntegrationService
}

func NewIntegrationController(service service.IIntegrationService) IIntegrationController {
	return &integrationController{service: service}
}

func (c *integrationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/integration/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Connect)
	h.Get("", c.List)
	h.Delete(":source", c.Disconnect)
}

func (c *integrationController) Connect(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.ConnectIntegrationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Connect(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Integration connected", res))
}

func (c *integrationController) List(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.service.List(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list integrations", res))
}

func (c *integrationController) Disconnect(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	if err := c.service.Disconnect(ctx.Context(), userId, ctx.Params("source")); err != nil {
		if errors.Is(err, service.ErrIntegrationNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Integration disconnected", struct{}{}))
}
