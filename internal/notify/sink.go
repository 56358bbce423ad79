package notify

import (
	"context"

	"astro-readings/internal/model"
)

const (
	EventCreated = "created"
	EventPaid    = "paid"
)

// Sink receives order lifecycle events. Implementations are best-effort:
// a sink failure must never propagate into the transaction that fired it.
type Sink interface {
	OrderCreated(ctx context.Context, order *model.Order, item *model.OrderItem) error
	OrderPaid(ctx context.Context, order *model.Order, s *model.Settlement) error
}

// Event is the flattened, versioned record every sink sees. Fields a given
// trigger does not know are left empty.
type Event struct {
	Event             string
	OrderID           string
	Name              string
	Email             string
	Reading           string
	Mode              string
	PaymentStatus     string
	Amount            string
	Currency          string
	BirthDate         string
	BirthTime         string
	BirthPlace        string
	PartnerBirthDate  string
	PartnerBirthTime  string
	PartnerBirthPlace string
	Question          string
	PayerName         string
	PayerEmail        string
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func eventFromOrder(event string, order *model.Order) Event {
	e := Event{
		Event:             event,
		OrderID:           order.OrderID,
		Name:              deref(order.Name),
		Email:             deref(order.Email),
		Reading:           order.Reading,
		Mode:              order.Mode,
		PaymentStatus:     order.PaymentStatus,
		Currency:          order.Currency,
		BirthDate:         order.BirthDate,
		BirthTime:         order.BirthTime,
		BirthPlace:        order.BirthPlace,
		PartnerBirthDate:  order.PartnerBirthDate,
		PartnerBirthTime:  order.PartnerBirthTime,
		PartnerBirthPlace: order.PartnerBirthPlace,
		Question:          order.Question,
	}
	if order.TotalPrice.Valid {
		e.Amount = order.TotalPrice.Decimal.StringFixed(2)
	}
	return e
}

func eventFromSettlement(order *model.Order, s *model.Settlement) Event {
	e := eventFromOrder(EventPaid, order)
	e.PaymentStatus = model.PaymentStatusPaid
	e.PayerName = deref(s.PayerName)
	e.PayerEmail = deref(s.PayerEmail)
	if s.Amount.Valid {
		e.Amount = s.Amount.Decimal.StringFixed(2)
		e.Currency = s.Currency
	}
	return e
}
