package commerce_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syncroot/roomsync/pkg/codec"
	"github.com/syncroot/roomsync/pkg/domain"
	"github.com/syncroot/roomsync/pkg/reducer"
	"github.com/syncroot/roomsync/pkg/variants/commerce"
)

func decode(t *testing.T, raw string) domain.Envelope {
	t.Helper()
	env, err := codec.Decode([]byte(raw))
	require.NoError(t, err)
	return env
}

func TestCatalogInit_ReplacesCatalog(t *testing.T) {
	reg := commerce.NewRegistry()
	env := decode(t, `{"type":"CATALOG_INIT","data":[
		{"id":"latte","name":"Latte","price":5},
		{"id":"mocha","name":"Mocha","price":6.5}
	]}`)

	snap, outcome, err := reg.Apply(commerce.NewSnapshot(), env)
	require.NoError(t, err)
	assert.Equal(t, reducer.OutcomeApplied, outcome)
	require.Len(t, snap.Catalog, 2)
	assert.Equal(t, "Latte", snap.Catalog[0].Name)
	assert.Equal(t, 6.5, snap.Catalog[1].Price)
}

func TestCartUpdate_ReplacesCart(t *testing.T) {
	reg := commerce.NewRegistry()
	env := decode(t, `{"type":"CART_UPDATE","data":{
		"items":[{"name":"X","qty":2,"price":5,"total":10}],
		"grand_total":10
	}}`)

	snap, _, err := reg.Apply(commerce.NewSnapshot(), env)
	require.NoError(t, err)
	require.Len(t, snap.Cart.Items, 1)
	assert.Equal(t, "X", snap.Cart.Items[0].Name)
	assert.Equal(t, 2, snap.Cart.Items[0].Qty)
	assert.Equal(t, float64(10), snap.Cart.GrandTotal)
	assert.True(t, snap.Cart.Complete())
}

func TestCartUpdate_Idempotent(t *testing.T) {
	reg := commerce.NewRegistry()
	env := decode(t, `{"type":"CART_UPDATE","data":{
		"items":[{"name":"X","qty":2,"price":5,"total":10}],
		"grand_total":10
	}}`)

	once, _, err := reg.Apply(commerce.NewSnapshot(), env)
	require.NoError(t, err)
	twice, _, err := reg.Apply(once, env)
	require.NoError(t, err)
	assert.Equal(t, once.Cart, twice.Cart)
}

func TestOrderPlaced_SetsLastOrderAndClearsCart(t *testing.T) {
	reg := commerce.NewRegistry()

	snap, _, err := reg.Apply(commerce.NewSnapshot(), decode(t, `{"type":"CART_UPDATE","data":{
		"items":[{"name":"X","qty":2,"price":5,"total":10}],
		"grand_total":10
	}}`))
	require.NoError(t, err)

	snap, _, err = reg.Apply(snap, decode(t, `{"type":"ORDER_PLACED","data":{
		"id":"O1",
		"items":[{"name":"X","qty":2,"price":5,"total":10}],
		"total_amount":42
	}}`))
	require.NoError(t, err)

	require.NotNil(t, snap.LastOrder)
	assert.Equal(t, "O1", snap.LastOrder.ID)
	assert.Equal(t, float64(42), snap.LastOrder.TotalAmount)
	assert.Empty(t, snap.Cart.Items)
	assert.Zero(t, snap.Cart.GrandTotal)
	assert.False(t, snap.Cart.Complete())
}

func TestUnknownKind_LeavesSnapshotUnchanged(t *testing.T) {
	reg := commerce.NewRegistry()
	before := commerce.NewSnapshot()
	before.Cart.GrandTotal = 10

	after, outcome, err := reg.Apply(before, decode(t, `{"type":"UNKNOWN_FUTURE_TYPE","data":{"x":1}}`))
	require.NoError(t, err)
	assert.Equal(t, reducer.OutcomeIgnored, outcome)
	assert.Equal(t, before, after)
}

func TestCartUpdate_RejectsMalformedPayload(t *testing.T) {
	reg := commerce.NewRegistry()
	before := commerce.NewSnapshot()

	cases := map[string]string{
		"payload is a list": `{"type":"CART_UPDATE","data":[1,2,3]}`,
		"missing items":     `{"type":"CART_UPDATE","data":{"grand_total":10}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			after, _, err := reg.Apply(before, decode(t, raw))
			assert.Error(t, err)
			assert.Equal(t, before, after, "rejected envelopes must not mutate the snapshot")
		})
	}
}

func TestOrderPlaced_RejectsMissingID(t *testing.T) {
	reg := commerce.NewRegistry()
	before := commerce.NewSnapshot()

	after, _, err := reg.Apply(before, decode(t, `{"type":"ORDER_PLACED","data":{"total_amount":1}}`))
	assert.Error(t, err)
	assert.Equal(t, before, after)
}
