package notify

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astro-readings/internal/model"
)

func testOrder() *model.Order {
	name := "Vera Lind"
	email := "vera@example.com"
	return &model.Order{
		OrderID:       "o-csv",
		Name:          &name,
		Email:         &email,
		Reading:       "natal",
		Mode:          "pdf",
		TotalPrice:    decimal.NullDecimal{Decimal: decimal.NewFromInt(90), Valid: true},
		Currency:      "EUR",
		PaymentStatus: model.PaymentStatusUnpaid,
		Status:        model.OrderStatusCreated,
		BirthDate:     "1990-04-12",
		Question:      "What does this year hold?",
	}
}

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVSinkWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookings.csv")
	sink := NewCSVSink(path)
	ctx := context.Background()

	order := testOrder()
	require.NoError(t, sink.OrderCreated(ctx, order, nil))
	require.NoError(t, sink.OrderPaid(ctx, order, &model.Settlement{
		OrderID:  order.OrderID,
		Amount:   decimal.NullDecimal{Decimal: decimal.NewFromInt(90), Valid: true},
		Currency: "EUR",
	}))

	rows := readAll(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])

	created := rows[1]
	require.Len(t, created, len(csvHeader))
	assert.Equal(t, EventCreated, created[1])
	assert.Equal(t, "o-csv", created[2])
	assert.Equal(t, "Vera Lind", created[3])
	assert.Equal(t, "natal", created[5])

	paid := rows[2]
	assert.Equal(t, EventPaid, paid[1])
	assert.Equal(t, "paid", paid[7])
	assert.Equal(t, "90.00", paid[8])
	assert.Equal(t, "EUR", paid[9])
}

func TestCSVSinkCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "bookings.csv")
	sink := NewCSVSink(path)

	require.NoError(t, sink.OrderCreated(context.Background(), testOrder(), nil))

	rows := readAll(t, path)
	require.Len(t, rows, 2)
}
