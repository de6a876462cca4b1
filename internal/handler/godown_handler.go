package handler

import (
	"errors"

	"go-grain-trade/internal/service"

	"github.com/gofiber/fiber/v2"
)

type GodownHandler struct {
	godownService service.GodownService
}

func NewGodownHandler(godownService service.GodownService) *GodownHandler {
	return &GodownHandler{godownService: godownService}
}

// GetGodowns lists all godowns; ?utilization=true includes current usage
// GET /api/v1/godowns
func (h *GodownHandler) GetGodowns(c *fiber.Ctx) error {
	if c.QueryBool("utilization") {
		godowns, err := h.godownService.GetAllWithUtilization()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
		}
		return c.JSON(godowns)
	}

	godowns, err := h.godownService.GetAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(godowns)
}

// CreateGodown registers a new godown
// POST /api/v1/godowns
func (h *GodownHandler) CreateGodown(c *fiber.Ctx) error {
	var req service.GodownRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	godown, err := h.godownService.Create(&req, getUserID(c))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Godown created", "data": godown})
}

// UpdateGodown edits a godown
// PUT /api/v1/godowns/:id
func (h *GodownHandler) UpdateGodown(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid godown ID"})
	}

	var req service.GodownRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	godown, err := h.godownService.Update(id, &req, getUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrGodownNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Godown updated", "data": godown})
}
