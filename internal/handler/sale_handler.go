package handler

import (
	"errors"

	"go-grain-trade/internal/ledger"
	"go-grain-trade/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SaleHandler struct {
	saleService service.SaleService
}

func NewSaleHandler(saleService service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// GetSales lists sale bills, newest first
// GET /api/v1/sales
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	sales, err := h.saleService.GetAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(sales)
}

// GetSale returns one sale bill with its godown split
// GET /api/v1/sales/:id
func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	sale, err := h.saleService.GetByID(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Sale not found"})
	}
	return c.JSON(sale)
}

// CreateSale records an outgoing bill, debiting every godown leg atomically
// POST /api/v1/sales
func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var req service.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.saleService.Create(&req, getUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGrainNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		case ledger.IsInsufficientStock(err):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Sale recorded", "data": sale})
}

// UpdateSale edits a bill, adjusting per-godown stock by the difference
// PUT /api/v1/sales/:id
func (h *SaleHandler) UpdateSale(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	var req service.UpdateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.saleService.Update(id, &req, getUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSaleNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		case ledger.IsInsufficientStock(err):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Sale updated", "data": sale})
}

// DeleteSale restores the bill's stock to its recorded godowns and removes it
// DELETE /api/v1/sales/:id
func (h *SaleHandler) DeleteSale(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	if err := h.saleService.Delete(id, getUserID(c)); err != nil {
		if errors.Is(err, service.ErrSaleNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	return c.JSON(fiber.Map{"message": "Sale deleted"})
}

// UpdateSalePaymentRequest represents a payment status change
type UpdateSalePaymentRequest struct {
	Status string `json:"status"`
}

// UpdatePaymentStatus flips a sale between pending and paid
// POST /api/v1/sales/:id/payment
func (h *SaleHandler) UpdatePaymentStatus(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	var req UpdateSalePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.saleService.UpdatePaymentStatus(id, req.Status, getUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrSaleNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Payment status updated", "data": sale})
}
