package models

import "time"

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch m := PaymentMethod(s); m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return m, true
	}
	return "", false
}

type Sale struct {
	ID               int64         `json:"id"`
	OrderID          int64         `json:"order_id"`
	OrderNumber      string        `json:"order_number,omitempty"`
	PaymentMethod    PaymentMethod `json:"payment_method"`
	PaymentReference string        `json:"payment_reference,omitempty"`
	SellerID         *int64        `json:"seller_id,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}
