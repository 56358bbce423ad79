package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"astro-readings/internal/apperr"
	"astro-readings/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	FindByPaypalOrderID(ctx context.Context, paypalOrderID string) (*model.Order, error)
	AttachPaypalOrderID(ctx context.Context, tx *gorm.DB, orderID, paypalOrderID string) error
	UpsertOnSettlement(ctx context.Context, tx *gorm.DB, s *model.Settlement) error
	AttachItem(ctx context.Context, tx *gorm.DB, item *model.OrderItem) error
	SynthesizeItem(ctx context.Context, tx *gorm.DB, orderID string) error
	GetItems(ctx context.Context, tx *gorm.DB, orderID string) ([]*model.OrderItem, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

// Create inserts a fresh created/unpaid row. A duplicate order id surfaces
// as a conflict; callers racing a settlement callback treat that as a no-op.
func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	order.PaymentStatus = model.PaymentStatusUnpaid
	order.Status = model.OrderStatusCreated

	err := tx.WithContext(ctx).Create(order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.ConflictErr("order already exists", err)
		}
		return apperr.PersistenceErr(fmt.Errorf("insert order: %w", err))
	}
	return nil
}

func (r *orderRepoImpl) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&order).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundErr("order not found")
		}
		return nil, apperr.PersistenceErr(fmt.Errorf("find order: %w", err))
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByPaypalOrderID(ctx context.Context, paypalOrderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("paypal_order_id = ?", paypalOrderID).
		First(&order).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundErr("order not found")
		}
		return nil, apperr.PersistenceErr(fmt.Errorf("find order by paypal id: %w", err))
	}

	return &order, nil
}

func (r *orderRepoImpl) AttachPaypalOrderID(ctx context.Context, tx *gorm.DB, orderID, paypalOrderID string) error {
	err := tx.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"paypal_order_id": paypalOrderID,
			"updated_at":      time.Now(),
		}).Error
	if err != nil {
		return apperr.PersistenceErr(fmt.Errorf("attach paypal order id: %w", err))
	}
	return nil
}

// UpsertOnSettlement is the single funnel every settlement channel goes
// through. Insert-if-absent creates a fully paid row (a callback may beat
// the create step); on conflict the merge keeps payment_status and
// captured_at monotonic and never clobbers known customer data with
// provider-reported data.
func (r *orderRepoImpl) UpsertOnSettlement(ctx context.Context, tx *gorm.DB, s *model.Settlement) error {
	now := time.Now()

	row := &model.Order{
		OrderID:       s.OrderID,
		Name:          s.PayerName,
		Email:         s.PayerEmail,
		Reading:       s.Reading,
		Mode:          s.Mode,
		TotalPrice:    s.Amount,
		Currency:      s.Currency,
		PaymentStatus: model.PaymentStatusPaid,
		Status:        model.OrderStatusCaptured,
		PaypalOrderID: s.PaypalOrderID,
		CapturedAt:    &now,
	}

	assignments := map[string]interface{}{
		"payment_status": model.PaymentStatusPaid,
		"status":         model.OrderStatusCaptured,
		"captured_at":    gorm.Expr("COALESCE(orders.captured_at, ?)", now),
		"email":          gorm.Expr("COALESCE(orders.email, ?)", s.PayerEmail),
		"name":           gorm.Expr("COALESCE(orders.name, ?)", s.PayerName),
		"updated_at":     now,
	}
	if s.Amount.Valid {
		assignments["total_price"] = s.Amount.Decimal
		assignments["currency"] = s.Currency
	}
	if s.PaypalOrderID != nil {
		assignments["paypal_order_id"] = gorm.Expr("COALESCE(orders.paypal_order_id, ?)", *s.PaypalOrderID)
	}

	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(row).Error

	if err != nil {
		return apperr.PersistenceErr(fmt.Errorf("upsert order on settlement: %w", err))
	}
	return nil
}

// AttachItem inserts a line item, silently ignoring a replayed item id.
func (r *orderRepoImpl) AttachItem(ctx context.Context, tx *gorm.DB, item *model.OrderItem) error {
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_id"}},
		DoNothing: true,
	}).Create(item).Error

	if err != nil {
		return apperr.PersistenceErr(fmt.Errorf("attach order item: %w", err))
	}
	return nil
}

// SynthesizeItem creates one line item from the order's own reading, mode
// and price when the settlement channel carried no item detail (crypto
// flow). Orders that already have an item are left alone.
func (r *orderRepoImpl) SynthesizeItem(ctx context.Context, tx *gorm.DB, orderID string) error {
	var order model.Order
	if err := tx.WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundErr("order not found")
		}
		return apperr.PersistenceErr(fmt.Errorf("load order for item synthesis: %w", err))
	}

	var count int64
	if err := tx.WithContext(ctx).Model(&model.OrderItem{}).
		Where("order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return apperr.PersistenceErr(fmt.Errorf("count order items: %w", err))
	}
	if count > 0 {
		return nil
	}

	item := &model.OrderItem{
		ItemID:      uuid.NewString(),
		OrderID:     orderID,
		ReadingType: order.Reading,
		ReadingMode: order.Mode,
		Price:       order.TotalPrice,
		Question:    order.Question,
	}
	if err := tx.WithContext(ctx).Create(item).Error; err != nil {
		return apperr.PersistenceErr(fmt.Errorf("synthesize order item: %w", err))
	}
	return nil
}

func (r *orderRepoImpl) GetItems(ctx context.Context, tx *gorm.DB, orderID string) ([]*model.OrderItem, error) {
	var items []*model.OrderItem
	err := tx.WithContext(ctx).Where("order_id = ?", orderID).
		Find(&items).Error

	if err != nil {
		return nil, apperr.PersistenceErr(fmt.Errorf("get order items: %w", err))
	}

	return items, nil
}
