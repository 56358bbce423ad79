package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"astro-readings/internal/apperr"
	"astro-readings/internal/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Order{},
		&model.OrderItem{},
		&model.WebhookEvent{},
	))

	return db
}

func strPtr(s string) *string { return &s }

func amount(s string) decimal.NullDecimal {
	d, _ := decimal.NewFromString(s)
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func newTestOrder(id string) *model.Order {
	return &model.Order{
		OrderID:    id,
		Name:       strPtr("Vera Lind"),
		Email:      strPtr("vera@example.com"),
		Reading:    "natal",
		Mode:       "pdf",
		TotalPrice: amount("90.00"),
		Currency:   "EUR",
		BirthDate:  "1990-04-12",
		Question:   "What does this year hold?",
	}
}

func TestCreateSetsInitialState(t *testing.T) {
	db := openTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, db, newTestOrder("o-create")))

	got, err := repo.FindByOrderID(ctx, "o-create")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusUnpaid, got.PaymentStatus)
	assert.Equal(t, model.OrderStatusCreated, got.Status)
	assert.Nil(t, got.CapturedAt)
}

func TestCreateDuplicateIsConflict(t *testing.T) {
	db := openTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, db, newTestOrder("o-dup")))

	err := repo.Create(ctx, db, newTestOrder("o-dup"))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
}

func TestFindMissingOrder(t *testing.T) {
	db := openTestDB(t)
	repo := NewOrderRepository(db)

	_, err := repo.FindByOrderID(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestUpsertOnSettlementIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, db, newTestOrder("o-idem")))

	settlement := &model.Settlement{
		OrderID:  "o-idem",
		Amount:   amount("90.00"),
		Currency: "EUR",
	}

	require.NoError(t, repo.UpsertOnSettlement(ctx, db, settlement))
	first, err := repo.FindByOrderID(ctx, "o-idem")
	require.NoError(t, err)
	require.NotNil(t, first.CapturedAt)

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, repo.UpsertOnSettlement(ctx, db, settlement))
	second, err := repo.FindByOrderID(ctx, "o-idem")
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStatusPaid, second.PaymentStatus)
	assert.Equal(t, model.OrderStatusCaptured, second.Status)
	assert.True(t, second.TotalPrice.Decimal.Equal(first.TotalPrice.Decimal))
	require.NotNil(t, second.CapturedAt)
	// the replayed settlement must not move the original capture time
	assert.WithinDuration(t, *first.CapturedAt, *second.CapturedAt, 5*time.Millisecond)
}

func TestSettlementBeforeCreateConverges(t *testing.T) {
	db := openTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	settlement := &model.Settlement{
		OrderID:    "o-race",
		Amount:     amount("110.00"),
		Currency:   "EUR",
		Reading:    "synastry",
		Mode:       "pdf",
		PayerEmail: strPtr("payer@example.com"),
	}

	// settlement arrives first: a fully paid row is synthesized
	require.NoError(t, repo.UpsertOnSettlement(ctx, db, settlement))

	paid, err := repo.FindByOrderID(ctx, "o-race")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, model.OrderStatusCaptured, paid.Status)
	require.NotNil(t, paid.CapturedAt)

	// the racing create is a duplicate-key no-op, not a reset
	err = repo.Create(ctx, db, newTestOrder("o-race"))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Conflict))

	after, err := repo.FindByOrderID(ctx, "o-race")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, after.PaymentStatus)
	assert.Equal(t, model.OrderStatusCaptured, after.Status)
	assert.True(t, after.TotalPrice.Decimal.Equal(decimal.RequireFromString("110.00")))
}

func TestPaidIsMonotonic(t *testing.T) {
	db := openTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, db, newTestOrder("o-mono")))
	require.NoError(t, repo.UpsertOnSettlement(ctx, db, &model.Settlement{
		OrderID:  "o-mono",
		Amount:   amount("90.00"),
		Currency: "EUR",
	}))

	// a later settlement with nothing to report must not blank anything
	require.NoError(t, repo.UpsertOnSettlement(ctx, db, &model.Settlement{
		OrderID: "o-mono",
	}))

	got, err := repo.FindByOrderID(ctx, "o-mono")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, got.PaymentStatus)
	require.True(t, got.TotalPrice.Valid)
	assert.True(t, got.TotalPrice.Decimal.Equal(decimal.RequireFromString("90.00")))
	assert.Equal(t, "EUR", got.Currency)
	assert.NotNil(t, got.CapturedAt)
}

func TestSettlementKeepsCustomerData(t *testing.T) {
	db := openTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, db, newTestOrder("o-keep")))

	require.NoError(t, repo.UpsertOnSettlement(ctx, db, &model.Settlement{
		OrderID:    "o-keep",
		Amount:     amount("90.00"),
		Currency:   "EUR",
		PayerName:  strPtr("V. Lind-Shipping"),
		PayerEmail: strPtr("other@paypal.example"),
	}))

	got, err := repo.FindByOrderID(ctx, "o-keep")
	require.NoError(t, err)
	// customer-entered identity wins over provider-reported payer data
	require.NotNil(t, got.Name)
	assert.Equal(t, "Vera Lind", *got.Name)
	require.NotNil(t, got.Email)
	assert.Equal(t, "vera@example.com", *got.Email)
}

func TestSettlementFillsMissingCustomerData(t *testing.T) {
	db := openTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	order := newTestOrder("o-fill")
	order.Name = nil
	order.Email = nil
	require.NoError(t, repo.Create(ctx, db, order))

	require.NoError(t, repo.UpsertOnSettlement(ctx, db, &model.Settlement{
		OrderID:    "o-fill",
		Amount:     amount("90.00"),
		Currency:   "EUR",
		PayerName:  strPtr("Payer Name"),
		PayerEmail: strPtr("payer@paypal.example"),
	}))

	got, err := repo.FindByOrderID(ctx, "o-fill")
	require.NoError(t, err)
	require.NotNil(t, got.Name)
	assert.Equal(t, "Payer Name", *got.Name)
	require.NotNil(t, got.Email)
	assert.Equal(t, "payer@paypal.example", *got.Email)
}

func TestAttachItemIgnoresReplay(t *testing.T) {
	db := openTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, db, newTestOrder("o-item")))

	item := &model.OrderItem{
		ItemID:      "item-1",
		OrderID:     "o-item",
		ReadingType: "natal",
		ReadingMode: "pdf",
		Price:       amount("90.00"),
	}
	require.NoError(t, repo.AttachItem(ctx, db, item))
	require.NoError(t, repo.AttachItem(ctx, db, item))

	items, err := repo.GetItems(ctx, db, "o-item")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSynthesizeItemOnlyWhenEmpty(t *testing.T) {
	db := openTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, db, newTestOrder("o-synth")))

	require.NoError(t, repo.SynthesizeItem(ctx, db, "o-synth"))
	require.NoError(t, repo.SynthesizeItem(ctx, db, "o-synth"))

	items, err := repo.GetItems(ctx, db, "o-synth")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "natal", items[0].ReadingType)
	assert.Equal(t, "pdf", items[0].ReadingMode)
	require.True(t, items[0].Price.Valid)
	assert.True(t, items[0].Price.Decimal.Equal(decimal.RequireFromString("90.00")))
}

func TestSynthesizeItemMissingOrder(t *testing.T) {
	db := openTestDB(t)
	repo := NewOrderRepository(db)

	err := repo.SynthesizeItem(context.Background(), db, "ghost")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestAttachPaypalOrderID(t *testing.T) {
	db := openTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, db, newTestOrder("o-pp")))
	require.NoError(t, repo.AttachPaypalOrderID(ctx, db, "o-pp", "PP-123"))

	got, err := repo.FindByPaypalOrderID(ctx, "PP-123")
	require.NoError(t, err)
	assert.Equal(t, "o-pp", got.OrderID)
}
