package dto

import "github.com/shopspring/decimal"

type BookingRequest struct {
	Name    string `json:"name" form:"name" validate:"required,max=128"`
	Email   string `json:"email" form:"email" validate:"required,email"`
	Reading string `json:"reading_type" form:"reading_type" validate:"required"`
	Mode    string `json:"mode" form:"mode" validate:"required,oneof=pdf video"`

	BirthDate         string `json:"birth_date" form:"birth_date"`
	BirthTime         string `json:"birth_time" form:"birth_time"`
	BirthPlace        string `json:"birth_place" form:"birth_place"`
	PartnerBirthDate  string `json:"partner_birth_date" form:"partner_birth_date"`
	PartnerBirthTime  string `json:"partner_birth_time" form:"partner_birth_time"`
	PartnerBirthPlace string `json:"partner_birth_place" form:"partner_birth_place"`
	Question          string `json:"question" form:"question" validate:"max=2000"`

	Agree bool `json:"agree" form:"-"`
}

type BookingResponse struct {
	OrderID    string          `json:"order_id"`
	Reading    string          `json:"reading_type"`
	Mode       string          `json:"mode"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Currency   string          `json:"currency"`
	Status     string          `json:"status"`
}

type CheckoutResponse struct {
	OrderID     string `json:"order_id"`
	RedirectURL string `json:"redirect_url"`
}

type OrderResponse struct {
	OrderID       string              `json:"order_id"`
	Name          *string             `json:"name"`
	Email         *string             `json:"email"`
	Reading       string              `json:"reading_type"`
	Mode          string              `json:"mode"`
	TotalPrice    *decimal.Decimal    `json:"total_price"`
	Currency      string              `json:"currency"`
	PaymentStatus string              `json:"payment_status"`
	Status        string              `json:"status"`
	CapturedAt    *string             `json:"captured_at"`
	Items         []OrderItemResponse `json:"items"`
}

type OrderItemResponse struct {
	ItemID      string           `json:"item_id"`
	ReadingType string           `json:"reading_type"`
	ReadingMode string           `json:"reading_mode"`
	Price       *decimal.Decimal `json:"price"`
}
