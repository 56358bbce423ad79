package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"astro-readings/internal/service"
)

const ipnSignatureHeader = "x-nowpayments-sig"

type PaymentHandler struct {
	orderService service.OrderService
}

func NewPaymentHandler(orderService service.OrderService) *PaymentHandler {
	return &PaymentHandler{
		orderService: orderService,
	}
}

func (h *PaymentHandler) PaypalPay(c echo.Context) error {
	ctx := c.Request().Context()

	resp, err := h.orderService.StartPaypalCheckout(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

// PaypalSuccess is where paypal redirects the buyer after approval. The
// token query param is the paypal order id; capture happens here.
func (h *PaymentHandler) PaypalSuccess(c echo.Context) error {
	ctx := c.Request().Context()

	paypalOrderID := c.QueryParam("token")
	if paypalOrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing order token")
	}

	if err := h.orderService.ConfirmPaypalCapture(ctx, paypalOrderID); err != nil {
		return err
	}

	return c.Redirect(http.StatusFound, "/thankyou")
}

func (h *PaymentHandler) PaypalWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	if err := h.orderService.HandlePaypalWebhook(ctx, c.Request().Header, body); err != nil {
		return err
	}

	return c.NoContent(http.StatusOK)
}

func (h *PaymentHandler) CryptoPay(c echo.Context) error {
	ctx := c.Request().Context()

	resp, err := h.orderService.StartCryptoCheckout(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) CryptoIPN(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	sig := c.Request().Header.Get(ipnSignatureHeader)
	if err := h.orderService.HandleCryptoIPN(ctx, body, sig); err != nil {
		return err
	}

	return c.NoContent(http.StatusOK)
}
