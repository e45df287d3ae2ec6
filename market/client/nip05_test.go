package client

import (
	"context"
	"testing"

	"agora/market/models"
	"github.com/stretchr/testify/assert"
)

func TestVerifyNip05WithoutIdentifier(t *testing.T) {
	c := testClient(t)
	p := models.NewProfile(c.keys.Account())
	assert.False(t, c.VerifyNip05(context.Background(), p))
	assert.False(t, p.Nip05Valid)
}

func TestVerifyNip05UnresolvableIdentifier(t *testing.T) {
	c := testClient(t)
	p := models.NewProfile(c.keys.Account())
	p.Nip05 = "alice@example.com"
	p.Nip05Valid = true // stale local state must be reset

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, c.VerifyNip05(ctx, p))
	assert.False(t, p.Nip05Valid)
}
