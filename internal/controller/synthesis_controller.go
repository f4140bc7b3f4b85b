package controller

import (
	"errors"

	"ai-synthesis-be/internal/dto"
	"ai-synthesis-be/internal/pkg/serverutils"
	"ai-synthesis-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISynthesisController interface {
	RegisterRoutes(r fiber.Router, middlewares ...fiber.Handler)
	Synthesize(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type synthesisController struct {
	synthesisService service.ISynthesisService
}

func NewSynthesisController(synthesisService service.ISynthesisService) ISynthesisController {
	return &synthesisController{
		synthesisService: synthesisService,
	}
}

func (c *synthesisController) RegisterRoutes(r fiber.Router, middlewares ...fiber.Handler) {
	h := r.Group("/synthesis/v1", middlewares...)
	h.Post("", c.Synthesize)
	h.Get("stats", c.Stats)
	h.Get(":id", c.Show)
}

func (c *synthesisController) Synthesize(ctx *fiber.Ctx) error {
	var req dto.SynthesizeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.synthesisService.Synthesize(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	message := "Success synthesize response"
	if res.IsFallback {
		message = "Synthesis unavailable, fallback response returned"
	}
	return ctx.JSON(serverutils.SuccessResponse(message, res))
}

func (c *synthesisController) Show(ctx *fiber.Ctx) error {
	res, err := c.synthesisService.Show(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrSynthesisNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Synthesis not found"))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show synthesis", res))
}

func (c *synthesisController) Stats(ctx *fiber.Ctx) error {
	res, err := c.synthesisService.Stats(ctx.UserContext())
	if err != nil {
		if errors.Is(err, service.ErrStatsUnavailable) {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.ErrorResponse(503, "Synthesis stats unavailable"))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get synthesis stats", res))
}
