package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	o := NewOrder(testPubKey, OrderItem{ProductID: "p1", Quantity: 2})
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, MessageTypeOrder, o.Type)
	assert.Equal(t, testPubKey, o.Contact.Nostr)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)

	other := NewOrder(testPubKey)
	assert.NotEqual(t, o.ID, other.ID)
}

func TestPaymentRequestWireShape(t *testing.T) {
	r := NewPaymentRequest("order-1", "pay up", PaymentOption{Type: "ln", Link: "lnbc1..."})
	b, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "order-1", raw["id"])
	assert.Equal(t, float64(MessageTypePaymentRequest), raw["type"])
	options, ok := raw["payment_options"].([]interface{})
	require.True(t, ok)
	require.Len(t, options, 1)
}

func TestPaymentRequestReferenceIsStable(t *testing.T) {
	r := NewPaymentRequest("order-1", "pay up", PaymentOption{Type: "url", Link: "https://example.com"})
	assert.Equal(t, r.Reference(), r.Reference())
	assert.NotEqual(t, r.Reference(), NewPaymentRequest("order-2", "pay up").Reference())
}

func TestStallUnparseable(t *testing.T) {
	assert.True(t, Stall{ID: UnknownStallID}.Unparseable())
	assert.False(t, Stall{ID: "s1"}.Unparseable())
}
