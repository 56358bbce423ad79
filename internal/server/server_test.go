package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astro-readings/internal/apperr"
	"astro-readings/internal/catalog"
	"astro-readings/internal/dto"
	"astro-readings/internal/model"
)

// stubOrderService lets each test script the outcome per endpoint.
type stubOrderService struct {
	webhookErr error
	ipnErr     error
	bookingErr error
}

func (s *stubOrderService) CreateBooking(ctx context.Context, req *dto.BookingRequest) (*model.Order, error) {
	if s.bookingErr != nil {
		return nil, s.bookingErr
	}
	return &model.Order{OrderID: "o-stub", Reading: req.Reading, Mode: req.Mode,
		PaymentStatus: model.PaymentStatusUnpaid, Status: model.OrderStatusCreated}, nil
}

func (s *stubOrderService) StartPaypalCheckout(ctx context.Context, orderID string) (*dto.CheckoutResponse, error) {
	return &dto.CheckoutResponse{OrderID: orderID, RedirectURL: "https://paypal.example/approve"}, nil
}

func (s *stubOrderService) StartCryptoCheckout(ctx context.Context, orderID string) (*dto.CheckoutResponse, error) {
	return &dto.CheckoutResponse{OrderID: orderID, RedirectURL: "https://nowpayments.example/inv"}, nil
}

func (s *stubOrderService) ConfirmPaypalCapture(ctx context.Context, paypalOrderID string) error {
	return nil
}

func (s *stubOrderService) HandlePaypalWebhook(ctx context.Context, headers http.Header, body []byte) error {
	return s.webhookErr
}

func (s *stubOrderService) HandleCryptoIPN(ctx context.Context, body []byte, sigHeader string) error {
	return s.ipnErr
}

func (s *stubOrderService) GetOrder(ctx context.Context, orderID string) (*model.Order, []*model.OrderItem, error) {
	return nil, nil, apperr.NotFoundErr("order not found")
}

func doRequest(t *testing.T, stub *stubOrderService, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	srv := NewServer(stub, catalog.New(), slog.Default())

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, &stubOrderService{}, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListReadings(t *testing.T) {
	rec := doRequest(t, &stubOrderService{}, http.MethodGet, "/api/readings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "natal")
	assert.Contains(t, rec.Body.String(), "EUR")
}

func TestSignatureFailureMapsToForbidden(t *testing.T) {
	stub := &stubOrderService{
		ipnErr: apperr.SignatureErr(fmt.Errorf("ipn signature mismatch")),
	}
	rec := doRequest(t, stub, http.MethodPost, "/api/crypto/ipn", `{"payment_status":"finished"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestValidationFailureMapsToBadRequest(t *testing.T) {
	stub := &stubOrderService{
		bookingErr: apperr.ValidationErr("unknown reading"),
	}
	rec := doRequest(t, stub, http.MethodPost, "/api/orders", `{"name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPersistenceFailureMapsToServerError(t *testing.T) {
	stub := &stubOrderService{
		webhookErr: apperr.PersistenceErr(fmt.Errorf("disk on fire")),
	}
	rec := doRequest(t, stub, http.MethodPost, "/api/paypal/webhook", `{"id":"WH-1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}

func TestGetOrderNotFound(t *testing.T) {
	rec := doRequest(t, &stubOrderService{}, http.MethodGet, "/api/orders/ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
