package handler

import (
	"errors"

	"go-grain-trade/internal/ledger"
	"go-grain-trade/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PurchaseHandler struct {
	purchaseService service.PurchaseService
}

func NewPurchaseHandler(purchaseService service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// GetPurchases lists purchase bills, newest first
// GET /api/v1/purchases
func (h *PurchaseHandler) GetPurchases(c *fiber.Ctx) error {
	purchases, err := h.purchaseService.GetAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(purchases)
}

// GetPurchase returns one purchase bill
// GET /api/v1/purchases/:id
func (h *PurchaseHandler) GetPurchase(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid purchase ID"})
	}

	purchase, err := h.purchaseService.GetByID(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Purchase not found"})
	}
	return c.JSON(purchase)
}

// CreatePurchase records an incoming bill and credits stock
// POST /api/v1/purchases
func (h *PurchaseHandler) CreatePurchase(c *fiber.Ctx) error {
	var req service.CreatePurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	purchase, err := h.purchaseService.Create(&req, getUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrGrainNotFound) || errors.Is(err, service.ErrGodownNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Purchase recorded", "data": purchase})
}

// UpdatePurchase edits a bill, rebalancing stock against the old values
// PUT /api/v1/purchases/:id
func (h *PurchaseHandler) UpdatePurchase(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid purchase ID"})
	}

	var req service.UpdatePurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	purchase, err := h.purchaseService.Update(id, &req, getUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPurchaseNotFound), errors.Is(err, service.ErrGodownNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, ledger.ErrInventoryInUse):
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		case ledger.IsInsufficientStock(err):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Purchase updated", "data": purchase})
}

// DeletePurchase reverses the bill's stock and removes it
// DELETE /api/v1/purchases/:id
func (h *PurchaseHandler) DeletePurchase(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid purchase ID"})
	}

	if err := h.purchaseService.Delete(id, getUserID(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrPurchaseNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, ledger.ErrInventoryInUse):
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	return c.JSON(fiber.Map{"message": "Purchase deleted"})
}

// RecordPayment updates payment status and appends to the payment trail
// POST /api/v1/purchases/:id/payment
func (h *PurchaseHandler) RecordPayment(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid purchase ID"})
	}

	var req service.RecordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	purchase, err := h.purchaseService.RecordPayment(id, &req, getUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrPurchaseNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Payment recorded", "data": purchase})
}

// GetPayments lists a bill's payment history
// GET /api/v1/purchases/:id/payments
func (h *PurchaseHandler) GetPayments(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid purchase ID"})
	}

	payments, err := h.purchaseService.GetPayments(id)
	if err != nil {
		if errors.Is(err, service.ErrPurchaseNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(payments)
}
