package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"

	OrderStatusCreated  = "created"
	OrderStatusCaptured = "captured"

	ModePDF   = "pdf"
	ModeVideo = "video"
)

// Order is one purchase intent. Rows are mutated in place by settlement,
// never replaced, and there is no deletion path.
type Order struct {
	OrderID string `gorm:"primaryKey;size:64;not null"`

	Name  *string `gorm:"size:128"`
	Email *string `gorm:"size:128"`

	Reading string `gorm:"size:32;not null"`
	Mode    string `gorm:"size:8;not null"`

	TotalPrice decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	Currency   string              `gorm:"size:8"`

	PaymentStatus string `gorm:"size:16;index;not null"` // unpaid | paid
	Status        string `gorm:"size:16;index;not null"` // created | captured

	PaypalOrderID *string `gorm:"size:64;index"`

	// Birth data and the customer's question are opaque payload: stored,
	// logged, never interpreted by the lifecycle logic.
	BirthDate         string `gorm:"size:32"`
	BirthTime         string `gorm:"size:32"`
	BirthPlace        string `gorm:"size:128"`
	PartnerBirthDate  string `gorm:"size:32"`
	PartnerBirthTime  string `gorm:"size:32"`
	PartnerBirthPlace string `gorm:"size:128"`
	Question          string `gorm:"size:2048"`

	CreatedAt  time.Time
	UpdatedAt  time.Time
	CapturedAt *time.Time
}

type OrderItem struct {
	ItemID string `gorm:"primaryKey;size:64;not null"`
	// FK → orders.order_id
	OrderID string `gorm:"size:64;index;not null"`

	ReadingType string              `gorm:"size:32;not null"`
	ReadingMode string              `gorm:"size:8;not null"`
	Price       decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	Question    string              `gorm:"size:2048"`

	CreatedAt time.Time
}

// WebhookEvent dedupes provider webhook deliveries by their event id.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}

// Settlement is what a confirmed payment reports back, regardless of which
// channel delivered it. Nil optional fields mean "provider did not report".
type Settlement struct {
	OrderID       string
	Amount        decimal.NullDecimal
	Currency      string
	ProviderRef   string
	PaypalOrderID *string
	Reading       string
	Mode          string
	PayerName     *string
	PayerEmail    *string
}
