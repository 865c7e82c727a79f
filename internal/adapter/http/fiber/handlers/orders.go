package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dtc-labs/orderlens/internal/adapter/export"
	"github.com/dtc-labs/orderlens/internal/service/analytics"
)

type OrdersHandler struct {
	analytics *analytics.Service
	export    *export.Builder
	log       *zap.Logger
}

func NewOrdersHandler(service *analytics.Service, builder *export.Builder, log *zap.Logger) *OrdersHandler {
	return &OrdersHandler{
		analytics: service,
		export:    builder,
		log:       log,
	}
}

// Compute handles POST /api/v1/orders/compute: CSV in, the MoM tables plus
// QA and churn out as JSON.
func (h *OrdersHandler) Compute(c *fiber.Ctx) error {
	requestID := uuid.NewString()
	c.Set("X-Request-ID", requestID)

	body, err := csvBody(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid upload"})
	}
	if len(body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Empty CSV body"})
	}

	orders, err := h.analytics.ParseOrders(body)
	if err != nil {
		h.log.Warn("orders csv rejected", zap.String("request_id", requestID), zap.Error(err))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(h.analytics.ComputeOrders(orders))
}

// ComputeWorkbook handles POST /api/v1/orders/compute.xlsx: the same input,
// rendered as a spreadsheet attachment.
func (h *OrdersHandler) ComputeWorkbook(c *fiber.Ctx) error {
	body, err := csvBody(c)
	if err != nil || len(body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Empty CSV body"})
	}

	orders, err := h.analytics.ParseOrders(body)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	result := h.analytics.ComputeOrders(orders)
	catalogue := h.analytics.Catalogue(orders)

	workbook, err := h.export.OrdersWorkbook(result.MomOrders, result.MomOrdersByVertical, &catalogue)
	if err != nil {
		h.log.Error("workbook build failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Workbook build failed"})
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="orders.xlsx"`)
	return c.Send(workbook)
}
