package handler

import (
	"go-grain-trade/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
}

func NewInventoryHandler(inventoryService service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// GetInventory lists every (grain, godown) stock row
// GET /api/v1/inventory
func (h *InventoryHandler) GetInventory(c *fiber.Ctx) error {
	rows, err := h.inventoryService.ListAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(rows)
}

// GetLowStock lists rows under the low-stock threshold
// GET /api/v1/inventory/low-stock
func (h *InventoryHandler) GetLowStock(c *fiber.Ctx) error {
	rows, err := h.inventoryService.LowStock()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(rows)
}

// GetGodownStock lists per-godown availability for one grain, zero-filled
// GET /api/v1/inventory/godowns/:grainId
func (h *InventoryHandler) GetGodownStock(c *fiber.Ctx) error {
	grainID, err := parseUUID(c.Params("grainId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid grain ID"})
	}

	stock, err := h.inventoryService.GodownStock(grainID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(stock)
}

// GetSummary returns the per-grain stock rollup with estimated value
// GET /api/v1/inventory/summary
func (h *InventoryHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.inventoryService.Summary()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(summary)
}

// CheckAvailability answers whether a godown can cover a requested sale leg.
// Advisory only: the binding check runs under the row lock at sale time.
// GET /api/v1/inventory/check?grain_id=&godown_id=&bags=
func (h *InventoryHandler) CheckAvailability(c *fiber.Ctx) error {
	grainID, err := parseUUID(c.Query("grain_id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid grain ID"})
	}
	godownID, err := parseUUID(c.Query("godown_id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid godown ID"})
	}
	bags := c.QueryInt("bags")
	if bags <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "bags must be a positive integer"})
	}

	check, err := h.inventoryService.CheckAvailability(grainID, godownID, bags)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(check)
}
