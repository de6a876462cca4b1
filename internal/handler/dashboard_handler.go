package handler

import (
	"go-grain-trade/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetSummary returns the monthly totals and recent bills
// GET /api/v1/dashboard/summary
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.dashboardService.Summary()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(summary)
}

// GetStockMovement returns daily inbound/outbound bags for a date range
// GET /api/v1/dashboard/stock-movement?start_date=&end_date=
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	movement, err := h.dashboardService.StockMovement(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(movement)
}

// GetMetrics returns the all-time rollup
// GET /api/v1/dashboard/metrics
func (h *DashboardHandler) GetMetrics(c *fiber.Ctx) error {
	metrics, err := h.dashboardService.Metrics()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(metrics)
}
