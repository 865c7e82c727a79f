package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dtc-labs/orderlens/internal/adapter/datasets"
	"github.com/dtc-labs/orderlens/internal/service/analytics"
)

type AnalyticsHandler struct {
	analytics *analytics.Service
	datasets  *datasets.Client
	log       *zap.Logger
}

func NewAnalyticsHandler(service *analytics.Service, ds *datasets.Client, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: service,
		datasets:  ds,
		log:       log,
	}
}

// csvBody extracts the uploaded CSV: a multipart "file" part when present,
// otherwise the raw request body.
func csvBody(c *fiber.Ctx) ([]byte, error) {
	if form, err := c.MultipartForm(); err == nil && form != nil {
		if files := form.File["file"]; len(files) > 0 {
			f, err := files[0].Open()
			if err != nil {
				return nil, err
			}
			defer f.Close()
			return io.ReadAll(f)
		}
	}
	return c.Body(), nil
}

// Compute handles POST /api/v1/analytics/compute: a CSV body in, the full
// analytics result out.
func (h *AnalyticsHandler) Compute(c *fiber.Ctx) error {
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

	return c.JSON(h.analytics.ComputeResult(orders))
}

// Get handles GET /api/v1/analytics: computes over the configured remote
// orders dataset, falling back to the bundled sample when the fetch fails.
func (h *AnalyticsHandler) Get(c *fiber.Ctx) error {
	body, err := h.datasets.FetchOrdersCSV(c.Context())
	if err != nil {
		h.log.Warn("orders dataset unavailable, computing over fallback sample", zap.Error(err))
		body = datasets.FallbackOrdersCSV()
	}

	orders, err := h.analytics.ParseOrders(body)
	if err != nil {
		h.log.Error("orders dataset unparsable", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Orders dataset unavailable"})
	}

	return c.JSON(h.analytics.ComputeResult(orders))
}

// ActiveUsers handles GET /api/v1/users/active.
func (h *AnalyticsHandler) ActiveUsers(c *fiber.Ctx) error {
	rows, err := h.datasets.FetchActiveUsers(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"rows": rows})
}
