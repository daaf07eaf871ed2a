package view_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syncroot/roomsync/internal/presentation/view"
	"github.com/syncroot/roomsync/pkg/variants/arcade"
	"github.com/syncroot/roomsync/pkg/variants/commerce"
)

func TestStorefront_Markdown(t *testing.T) {
	s := view.NewStorefront()
	snap := commerce.Snapshot{
		Catalog: []commerce.Item{
			{ID: "sku-1", Name: "Widget", Price: 5},
		},
		Cart: commerce.Cart{
			Items:      []commerce.CartItem{{Name: "Widget", Qty: 2, Price: 5, Total: 10}},
			GrandTotal: 10,
		},
	}

	md := s.Markdown(snap)
	assert.Contains(t, md, "## Catalog")
	assert.Contains(t, md, "| Widget | 5.00 |")
	assert.Contains(t, md, "| Widget | 2 | 5.00 | 10.00 |")
	assert.Contains(t, md, "Grand total: 10.00")
	assert.NotContains(t, md, "## Order", "no order section before checkout")
}

func TestStorefront_EmptyCart(t *testing.T) {
	md := view.NewStorefront().Markdown(commerce.NewSnapshot())
	assert.Contains(t, md, "Your cart is empty")
}

func TestStorefront_OrderReceipt(t *testing.T) {
	snap := commerce.NewSnapshot()
	snap.LastOrder = &commerce.Order{
		ID:          "O1",
		Items:       []commerce.CartItem{{Name: "Widget", Qty: 2}},
		TotalAmount: 10,
	}

	md := view.NewStorefront().Markdown(snap)
	assert.Contains(t, md, "## Order O1")
	assert.Contains(t, md, "- Widget x2")
	assert.Contains(t, md, "Paid: 10.00")
}

func TestStorefront_Render(t *testing.T) {
	out, err := view.NewStorefront().Render(commerce.NewSnapshot())
	require.NoError(t, err)
	assert.Contains(t, out, "Storefront")
}

func TestDashboard_Render(t *testing.T) {
	d := view.NewDashboardPlain()
	out := d.Render(arcade.Snapshot{
		Player:    arcade.Player{Handle: "nyx", Level: 3, HP: 40, MaxHP: 80, Credits: 250},
		Location:  "neon-docks",
		Inventory: []string{"medkit", "deck"},
		Missions: []arcade.Mission{
			{ID: "m1", Title: "Tap the uplink", Status: "active"},
		},
		Flags: map[string]bool{"wanted": true, "stealth": false},
	})

	assert.Contains(t, out, "nyx  lvl 3")
	assert.Contains(t, out, "40/80")
	assert.Contains(t, out, "Credits: 250")
	assert.Contains(t, out, "Location: neon-docks")
	assert.Contains(t, out, "medkit, deck")
	assert.Contains(t, out, "[active] Tap the uplink")
	assert.Contains(t, out, "* wanted")
	assert.NotContains(t, out, "* stealth", "unset flags are hidden")
}

func TestDashboard_HPBarBounds(t *testing.T) {
	d := view.NewDashboardPlain()

	full := d.Render(arcade.Snapshot{Player: arcade.Player{Handle: "a", HP: 80, MaxHP: 80}})
	assert.Equal(t, 20, strings.Count(full, "█"))

	empty := d.Render(arcade.Snapshot{Player: arcade.Player{Handle: "a", HP: 0, MaxHP: 80}})
	assert.Equal(t, 20, strings.Count(empty, "░"))

	unknown := d.Render(arcade.Snapshot{Player: arcade.Player{Handle: "a"}})
	assert.Contains(t, unknown, strings.Repeat("-", 20))
}
