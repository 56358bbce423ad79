package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"astro-readings/internal/apperr"
	"astro-readings/internal/dto"
	"astro-readings/internal/model"
	"astro-readings/internal/service"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// SubmitBooking handles the classic HTML booking form. Validation problems
// bounce the visitor back to the form; success lands on the thanks modal.
func (h *OrderHandler) SubmitBooking(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.BookingRequest
	if err := c.Bind(&req); err != nil {
		return c.Redirect(http.StatusFound, "/booking")
	}
	req.Agree = c.FormValue("agree") == "on"

	if _, err := h.orderService.CreateBooking(ctx, &req); err != nil {
		if apperr.IsKind(err, apperr.Validation) {
			return c.Redirect(http.StatusFound, "/booking")
		}
		return err
	}

	return c.Redirect(http.StatusFound, "/booking#thanks")
}

// CreateOrder is the JSON twin of SubmitBooking.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.BookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	order, err := h.orderService.CreateBooking(ctx, &req)
	if err != nil {
		return err
	}

	resp := dto.BookingResponse{
		OrderID:  order.OrderID,
		Reading:  order.Reading,
		Mode:     order.Mode,
		Currency: order.Currency,
		Status:   order.Status,
	}
	if order.TotalPrice.Valid {
		resp.TotalPrice = order.TotalPrice.Decimal
	}

	return c.JSON(http.StatusCreated, resp)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID := c.Param("id")
	order, items, err := h.orderService.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orderToResponse(order, items))
}

func orderToResponse(order *model.Order, items []*model.OrderItem) dto.OrderResponse {
	resp := dto.OrderResponse{
		OrderID:       order.OrderID,
		Name:          order.Name,
		Email:         order.Email,
		Reading:       order.Reading,
		Mode:          order.Mode,
		Currency:      order.Currency,
		PaymentStatus: order.PaymentStatus,
		Status:        order.Status,
	}
	if order.TotalPrice.Valid {
		p := order.TotalPrice.Decimal
		resp.TotalPrice = &p
	}
	if order.CapturedAt != nil {
		s := order.CapturedAt.UTC().Format(time.RFC3339)
		resp.CapturedAt = &s
	}
	for _, item := range items {
		ir := dto.OrderItemResponse{
			ItemID:      item.ItemID,
			ReadingType: item.ReadingType,
			ReadingMode: item.ReadingMode,
		}
		if item.Price.Valid {
			p := item.Price.Decimal
			ir.Price = &p
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}
