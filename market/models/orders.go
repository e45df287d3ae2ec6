package models

import (
	"encoding/json"

	"agora/engine/library"
	"github.com/google/uuid"
)

// Order-workflow payloads exchanged over direct messages. The relay never
// sees these in the clear and the client never interprets payment links
// beyond passing them through; see market/payments for the optional
// client-side decode helpers.

// Checkout message types per the NIP-15 order flow.
const (
	MessageTypeOrder               = 0
	MessageTypePaymentRequest      = 1
	MessageTypePaymentVerification = 2
)

// OrderItem references a product within an order.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderContact carries the buyer's reachable addresses.
type OrderContact struct {
	Nostr library.Account `json:"nostr"`
	Phone string          `json:"phone,omitempty"`
	Email string          `json:"email,omitempty"`
}

// Order is the buyer-side checkout message (type 0).
type Order struct {
	ID      string       `json:"id"`
	Type    int          `json:"type"`
	Address string       `json:"address,omitempty"`
	Message string       `json:"message,omitempty"`
	Contact OrderContact `json:"contact"`
	Items   []OrderItem  `json:"items"`
}

// NewOrder returns an order with a fresh id and the correct message type.
func NewOrder(buyer library.Account, items ...OrderItem) Order {
	return Order{
		ID:      uuid.NewString(),
		Type:    MessageTypeOrder,
		Contact: OrderContact{Nostr: buyer},
		Items:   items,
	}
}

// PaymentOption is one way to settle an order; the link is opaque to the
// client (a bolt11 invoice, an lnurl, or a plain URL).
type PaymentOption struct {
	Type string `json:"type"`
	Link string `json:"link"`
}

// PaymentRequest is the merchant-side reply to an order (type 1).
type PaymentRequest struct {
	ID             string          `json:"id"`
	Type           int             `json:"type"`
	Message        string          `json:"message,omitempty"`
	PaymentOptions []PaymentOption `json:"payment_options"`
}

// NewPaymentRequest builds a payment request answering the given order id.
func NewPaymentRequest(orderID, message string, options ...PaymentOption) PaymentRequest {
	return PaymentRequest{
		ID:             orderID,
		Type:           MessageTypePaymentRequest,
		Message:        message,
		PaymentOptions: options,
	}
}

// Reference returns a stable digest of the request payload, used to correlate
// later verification messages with the request they answer.
func (r PaymentRequest) Reference() library.Sha256 {
	b, _ := json.Marshal(r)
	return library.Sha256Sum(b)
}

// PaymentVerification closes the loop on an order (type 2).
type PaymentVerification struct {
	ID      string `json:"id"`
	Type    int    `json:"type"`
	Paid    bool   `json:"paid"`
	Shipped bool   `json:"shipped"`
	Message string `json:"message,omitempty"`
}
