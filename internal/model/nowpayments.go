package model

// NowpaymentsIPN is the payload NOWPayments pushes on payment status changes.
// Extra fields in the raw body are dropped here at the adapter boundary.
type NowpaymentsIPN struct {
	PaymentID     int64   `json:"payment_id"`
	PaymentStatus string  `json:"payment_status"`
	OrderID       string  `json:"order_id"`
	PayAmount     float64 `json:"pay_amount"`
	PriceAmount   float64 `json:"price_amount"`
	PriceCurrency string  `json:"price_currency"`
	PayCurrency   string  `json:"pay_currency"`
}

// IsPaid reports whether the IPN status unambiguously means funds secured.
// Anything else (waiting, confirming, partially_paid, expired, ...) is not
// a settlement.
func (p *NowpaymentsIPN) IsPaid() bool {
	switch p.PaymentStatus {
	case "finished", "confirmed", "paid":
		return true
	}
	return false
}
