package handler

import (
	"errors"

	"go-grain-trade/internal/service"

	"github.com/gofiber/fiber/v2"
)

type GrainHandler struct {
	grainService service.GrainService
}

func NewGrainHandler(grainService service.GrainService) *GrainHandler {
	return &GrainHandler{grainService: grainService}
}

// GetGrains lists all grain types
// GET /api/v1/grains
func (h *GrainHandler) GetGrains(c *fiber.Ctx) error {
	grains, err := h.grainService.GetAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(grains)
}

// CreateGrain registers a new grain type
// POST /api/v1/grains
func (h *GrainHandler) CreateGrain(c *fiber.Ctx) error {
	var req service.GrainRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	grain, err := h.grainService.Create(&req, getUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrGrainNameExists) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Grain created", "data": grain})
}

// UpdateGrain renames a grain type
// PUT /api/v1/grains/:id
func (h *GrainHandler) UpdateGrain(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid grain ID"})
	}

	var req service.GrainRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	grain, err := h.grainService.Update(id, &req, getUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGrainNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrGrainNameExists):
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Grain updated", "data": grain})
}

// DeleteGrain removes an unreferenced grain type
// DELETE /api/v1/grains/:id
func (h *GrainHandler) DeleteGrain(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid grain ID"})
	}

	if err := h.grainService.Delete(id, getUserID(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrGrainNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrGrainReferenced):
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	return c.JSON(fiber.Map{"message": "Grain deleted"})
}
