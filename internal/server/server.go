package server

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"astro-readings/internal/apperr"
	"astro-readings/internal/catalog"
	"astro-readings/internal/handler"
	"astro-readings/internal/service"
)

type Server struct {
	echo           *echo.Echo
	orderHandler   *handler.OrderHandler
	paymentHandler *handler.PaymentHandler
	catalog        *catalog.Catalog
}

func NewServer(orderService service.OrderService, cat *catalog.Catalog, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:           e,
		orderHandler:   handler.NewOrderHandler(orderService),
		paymentHandler: handler.NewPaymentHandler(orderService),
		catalog:        cat,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	e := s.echo

	// -------- pages --------
	e.File("/", "web/index.html")
	e.File("/about", "web/about.html")
	e.File("/readings", "web/readings.html")
	e.File("/booking", "web/booking.html")
	e.File("/contact", "web/contact.html")
	e.File("/faq", "web/faq.html")
	e.File("/privacy", "web/privacy.html")
	e.File("/thankyou", "web/thankyou.html")
	e.Static("/static", "web/static")

	e.POST("/submit_booking", s.orderHandler.SubmitBooking)

	api := e.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	api.GET("/readings", s.listReadings)

	api.POST("/orders", s.orderHandler.CreateOrder)
	api.GET("/orders/:id", s.orderHandler.GetOrder)

	// -------- paypal --------
	paypal := api.Group("/paypal")
	paypal.POST("/pay/:id", s.paymentHandler.PaypalPay)
	paypal.GET("/success", s.paymentHandler.PaypalSuccess)
	paypal.POST("/webhook", s.paymentHandler.PaypalWebhook)

	// -------- crypto --------
	crypto := api.Group("/crypto")
	crypto.POST("/pay/:id", s.paymentHandler.CryptoPay)
	crypto.POST("/ipn", s.paymentHandler.CryptoIPN)
}

func (s *Server) listReadings(c echo.Context) error {
	type entry struct {
		Key    string            `json:"key"`
		Name   string            `json:"name"`
		Prices map[string]string `json:"prices"`
	}

	out := make([]entry, 0)
	for _, key := range s.catalog.Keys() {
		r, _ := s.catalog.Get(key)
		prices := make(map[string]string, len(r.Prices))
		for mode, p := range r.Prices {
			prices[mode] = p.StringFixed(2)
		}
		out = append(out, entry{Key: r.Key, Name: r.Name, Prices: prices})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"currency": s.catalog.Currency(),
		"readings": out,
	})
}

// errorHandler translates the application error taxonomy into HTTP
// statuses, keeping wrapped causes out of responses.
func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "internal server error"

		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			}
		} else if ae, ok := apperr.As(err); ok {
			status = apperr.HTTPStatus(ae)
			msg = apperr.PublicMessage(ae)
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed", "method", c.Request().Method,
				"path", c.Path(), "err", err)
		}

		if jsonErr := c.JSON(status, map[string]string{"error": msg}); jsonErr != nil {
			logger.Error("write error response", "err", jsonErr)
		}
	}
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
