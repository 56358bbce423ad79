package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"astro-readings/internal/apperr"
	"astro-readings/internal/catalog"
	"astro-readings/internal/client"
	"astro-readings/internal/dto"
	"astro-readings/internal/model"
	"astro-readings/internal/notify"
	"astro-readings/internal/repository"
)

const paypalCaptureCompleted = "PAYMENT.CAPTURE.COMPLETED"

// OrderService owns the order lifecycle: creation, payment intent creation,
// and settlement application from all three trigger channels. Every
// settlement funnels through the same idempotent upsert, so the channels
// may arrive in any order, duplicated, or before the order exists locally.
type OrderService interface {
	CreateBooking(ctx context.Context, req *dto.BookingRequest) (*model.Order, error)
	StartPaypalCheckout(ctx context.Context, orderID string) (*dto.CheckoutResponse, error)
	StartCryptoCheckout(ctx context.Context, orderID string) (*dto.CheckoutResponse, error)
	ConfirmPaypalCapture(ctx context.Context, paypalOrderID string) error
	HandlePaypalWebhook(ctx context.Context, headers http.Header, body []byte) error
	HandleCryptoIPN(ctx context.Context, body []byte, sigHeader string) error
	GetOrder(ctx context.Context, orderID string) (*model.Order, []*model.OrderItem, error)
}

type orderServiceImpl struct {
	db                *gorm.DB
	catalog           *catalog.Catalog
	paypalClient      client.PaypalClient
	nowpaymentsClient client.NowpaymentsClient
	orderRepo         repository.OrderRepository
	webhookEventRepo  repository.WebhookEventRepository
	sink              notify.Sink
	validate          *validator.Validate
	serviceBaseURL    string
	logger            *slog.Logger
}

func NewOrderService(
	db *gorm.DB,
	cat *catalog.Catalog,
	paypalClient client.PaypalClient,
	nowpaymentsClient client.NowpaymentsClient,
	orderRepo repository.OrderRepository,
	webhookEventRepo repository.WebhookEventRepository,
	sink notify.Sink,
	serviceBaseURL string,
	logger *slog.Logger,
) OrderService {
	return &orderServiceImpl{
		db:                db,
		catalog:           cat,
		paypalClient:      paypalClient,
		nowpaymentsClient: nowpaymentsClient,
		orderRepo:         orderRepo,
		webhookEventRepo:  webhookEventRepo,
		sink:              sink,
		validate:          validator.New(),
		serviceBaseURL:    serviceBaseURL,
		logger:            logger,
	}
}

func (s *orderServiceImpl) CreateBooking(ctx context.Context, req *dto.BookingRequest) (*model.Order, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.ValidationErr(fmt.Sprintf("invalid booking: %v", err))
	}
	if !req.Agree {
		return nil, apperr.ValidationErr("terms must be accepted")
	}

	price, err := s.catalog.PriceFor(req.Reading, req.Mode)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		OrderID:           uuid.NewString(),
		Name:              &req.Name,
		Email:             &req.Email,
		Reading:           req.Reading,
		Mode:              req.Mode,
		TotalPrice:        decimal.NullDecimal{Decimal: price, Valid: true},
		Currency:          s.catalog.Currency(),
		BirthDate:         req.BirthDate,
		BirthTime:         req.BirthTime,
		BirthPlace:        req.BirthPlace,
		PartnerBirthDate:  req.PartnerBirthDate,
		PartnerBirthTime:  req.PartnerBirthTime,
		PartnerBirthPlace: req.PartnerBirthPlace,
		Question:          req.Question,
	}

	item := &model.OrderItem{
		ItemID:      uuid.NewString(),
		OrderID:     order.OrderID,
		ReadingType: req.Reading,
		ReadingMode: req.Mode,
		Price:       decimal.NullDecimal{Decimal: price, Valid: true},
		Question:    req.Question,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return err
		}
		return s.orderRepo.AttachItem(ctx, tx, item)
	})
	if err != nil {
		return nil, err
	}

	s.sink.OrderCreated(ctx, order, item)

	return order, nil
}

func (s *orderServiceImpl) StartPaypalCheckout(ctx context.Context, orderID string) (*dto.CheckoutResponse, error) {
	order, err := s.orderRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.TotalPrice.Valid {
		return nil, apperr.ValidationErr("order has no price")
	}

	resp, err := s.paypalClient.CreateOrder(ctx, order.OrderID, order.TotalPrice.Decimal, order.Currency, s.serviceBaseURL)
	if err != nil {
		return nil, fmt.Errorf("paypal api create order: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.orderRepo.AttachPaypalOrderID(ctx, tx, order.OrderID, resp.PaypalOrderID)
	})
	if err != nil {
		return nil, err
	}

	return &dto.CheckoutResponse{
		OrderID:     order.OrderID,
		RedirectURL: resp.ApproveURL,
	}, nil
}

func (s *orderServiceImpl) StartCryptoCheckout(ctx context.Context, orderID string) (*dto.CheckoutResponse, error) {
	order, err := s.orderRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.TotalPrice.Valid {
		return nil, apperr.ValidationErr("order has no price")
	}

	resp, err := s.nowpaymentsClient.CreateInvoice(ctx, order.OrderID, order.TotalPrice.Decimal, order.Currency, s.serviceBaseURL)
	if err != nil {
		return nil, fmt.Errorf("nowpayments create invoice: %w", err)
	}

	return &dto.CheckoutResponse{
		OrderID:     order.OrderID,
		RedirectURL: resp.InvoiceURL,
	}, nil
}

// ConfirmPaypalCapture is the synchronous, user-initiated settlement
// trigger. It requires a pre-existing local order carrying the paypal
// reference; the capture must report a terminal status before any state
// changes.
func (s *orderServiceImpl) ConfirmPaypalCapture(ctx context.Context, paypalOrderID string) error {
	order, err := s.orderRepo.FindByPaypalOrderID(ctx, paypalOrderID)
	if err != nil {
		return err
	}

	result, err := s.paypalClient.CaptureOrder(ctx, paypalOrderID)
	if err != nil {
		return fmt.Errorf("paypal api capture order: %w", err)
	}

	settlement := &model.Settlement{
		OrderID:       order.OrderID,
		Amount:        result.Amount,
		Currency:      result.Currency,
		ProviderRef:   paypalOrderID,
		PaypalOrderID: &paypalOrderID,
		Reading:       order.Reading,
		Mode:          order.Mode,
		PayerName:     result.PayerName,
		PayerEmail:    result.PayerEmail,
	}

	return s.applySettlement(ctx, settlement)
}

// HandlePaypalWebhook is the asynchronous push channel. Authenticity is
// established remotely before the payload is trusted; only a completed
// capture event applies settlement, and only when it names our order.
func (s *orderServiceImpl) HandlePaypalWebhook(ctx context.Context, headers http.Header, body []byte) error {
	if err := s.paypalClient.VerifyWebhookSignature(ctx, headers, body); err != nil {
		return err
	}

	var event model.PaypalWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperr.ValidationErr(fmt.Sprintf("decode webhook payload: %v", err))
	}

	if event.EventType != paypalCaptureCompleted {
		s.logger.InfoContext(ctx, "ignoring webhook event", "event_type", event.EventType)
		return nil
	}

	if event.ID != "" {
		seen, err := s.webhookEventRepo.Exists(ctx, event.ID)
		if err != nil {
			return err
		}
		if seen {
			s.logger.InfoContext(ctx, "webhook event deduplicated", "event_id", event.ID)
			return nil
		}
	}

	orderID := event.Resource.CustomID
	if orderID == "" {
		// Event not attributable to an order: acknowledge, apply nothing.
		s.logger.WarnContext(ctx, "capture event without custom_id", "event_id", event.ID)
		return nil
	}

	settlement := &model.Settlement{
		OrderID:     orderID,
		Currency:    event.Resource.Amount.Currency,
		ProviderRef: event.Resource.ID,
	}
	if d, err := decimal.NewFromString(event.Resource.Amount.Value); err == nil {
		settlement.Amount = decimal.NullDecimal{Decimal: d, Valid: true}
	}
	if name := event.Resource.Payer.Name.Full(); name != "" {
		settlement.PayerName = &name
	}
	if email := event.Resource.Payer.Email; email != "" {
		settlement.PayerEmail = &email
	}

	// Reading/mode come from the local row when it exists; the upsert keeps
	// them intact either way.
	if order, err := s.orderRepo.FindByOrderID(ctx, orderID); err == nil {
		settlement.Reading = order.Reading
		settlement.Mode = order.Mode
	}

	return s.applySettlementWithEvent(ctx, settlement, event.ID, event.EventType)
}

// HandleCryptoIPN is the crypto push channel. Authenticity is a local
// keyed-hash check; a recognized paid status applies settlement, and the
// row is created on the fly when the IPN beats our own create step.
func (s *orderServiceImpl) HandleCryptoIPN(ctx context.Context, body []byte, sigHeader string) error {
	if err := s.nowpaymentsClient.VerifyIPNSignature(body, sigHeader); err != nil {
		return err
	}

	var ipn model.NowpaymentsIPN
	if err := json.Unmarshal(body, &ipn); err != nil {
		return apperr.ValidationErr(fmt.Sprintf("decode ipn payload: %v", err))
	}

	if ipn.OrderID == "" {
		return apperr.ValidationErr("ipn missing order_id")
	}

	if !ipn.IsPaid() {
		s.logger.InfoContext(ctx, "ignoring ipn status",
			"order_id", ipn.OrderID, "payment_status", ipn.PaymentStatus)
		return nil
	}

	settlement := &model.Settlement{
		OrderID:     ipn.OrderID,
		Amount:      decimal.NullDecimal{Decimal: decimal.NewFromFloat(ipn.PriceAmount), Valid: ipn.PriceAmount > 0},
		Currency:    ipn.PriceCurrency,
		ProviderRef: strconv.FormatInt(ipn.PaymentID, 10),
	}

	if order, err := s.orderRepo.FindByOrderID(ctx, ipn.OrderID); err == nil {
		settlement.Reading = order.Reading
		settlement.Mode = order.Mode
	}

	return s.applySettlement(ctx, settlement)
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID string) (*model.Order, []*model.OrderItem, error) {
	order, err := s.orderRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.orderRepo.GetItems(ctx, s.db, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

func (s *orderServiceImpl) applySettlement(ctx context.Context, settlement *model.Settlement) error {
	return s.applySettlementWithEvent(ctx, settlement, "", "")
}

// applySettlementWithEvent applies one settlement atomically: the order
// upsert, line-item synthesis and webhook dedupe record commit or roll back
// together. The paid notification fires only after the commit.
func (s *orderServiceImpl) applySettlementWithEvent(ctx context.Context, settlement *model.Settlement, eventID, eventType string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.UpsertOnSettlement(ctx, tx, settlement); err != nil {
			return err
		}
		if err := s.orderRepo.SynthesizeItem(ctx, tx, settlement.OrderID); err != nil {
			return err
		}
		if eventID != "" {
			return s.webhookEventRepo.MarkProcessed(ctx, tx, eventID, eventType)
		}
		return nil
	})
	if err != nil {
		return err
	}

	order, err := s.orderRepo.FindByOrderID(ctx, settlement.OrderID)
	if err != nil {
		s.logger.ErrorContext(ctx, "load order after settlement", "order_id", settlement.OrderID, "err", err)
		return nil
	}
	s.sink.OrderPaid(ctx, order, settlement)

	return nil
}
