package commerce

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/syncroot/roomsync/pkg/domain"
	"github.com/syncroot/roomsync/pkg/reducer"
)

// Message kinds understood by the storefront variant.
const (
	KindCatalogInit = "CATALOG_INIT"
	KindCartUpdate  = "CART_UPDATE"
	KindOrderPlaced = "ORDER_PLACED"
)

// Register wires the storefront reducers into a registry.
func Register(reg *reducer.Registry[Snapshot]) {
	reg.Handle(domain.RouteKey{Kind: KindCatalogInit}, applyCatalogInit)
	reg.Handle(domain.RouteKey{Kind: KindCartUpdate}, applyCartUpdate)
	reg.Handle(domain.RouteKey{Kind: KindOrderPlaced}, applyOrderPlaced)
}

// NewRegistry returns a registry with the storefront reducers installed.
func NewRegistry() *reducer.Registry[Snapshot] {
	reg := reducer.New[Snapshot]()
	Register(reg)
	return reg
}

// applyCatalogInit replaces the whole catalog. The payload is a JSON
// array, so it is read from the raw bytes rather than the field view.
func applyCatalogInit(snap Snapshot, env domain.Envelope) (Snapshot, error) {
	var items []Item
	if err := json.Unmarshal(env.Raw, &items); err != nil {
		return snap, fmt.Errorf("catalog payload is not an item list: %w", err)
	}
	snap.Catalog = items
	return snap, nil
}

// applyCartUpdate replaces the whole cart (last write wins).
func applyCartUpdate(snap Snapshot, env domain.Envelope) (Snapshot, error) {
	cart, err := decodeCart(env)
	if err != nil {
		return snap, err
	}
	snap.Cart = cart
	return snap, nil
}

// applyOrderPlaced records the order and resets the cart to its default.
func applyOrderPlaced(snap Snapshot, env domain.Envelope) (Snapshot, error) {
	if env.Data == nil {
		return snap, fmt.Errorf("order payload is not an object")
	}
	var order Order
	if err := decodePayload(env.Data, &order); err != nil {
		return snap, fmt.Errorf("invalid order payload: %w", err)
	}
	if order.ID == "" {
		return snap, fmt.Errorf("order payload missing id")
	}
	snap.LastOrder = &order
	snap.Cart = Cart{Items: []CartItem{}}
	return snap, nil
}

func decodeCart(env domain.Envelope) (Cart, error) {
	if env.Data == nil {
		return Cart{}, fmt.Errorf("cart payload is not an object")
	}
	if _, ok := env.Data["items"]; !ok {
		return Cart{}, fmt.Errorf("cart payload missing items")
	}
	var cart Cart
	if err := decodePayload(env.Data, &cart); err != nil {
		return Cart{}, fmt.Errorf("invalid cart payload: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []CartItem{}
	}
	return cart, nil
}

// decodePayload maps a parsed payload object onto a typed struct.
// JSON numbers arrive as float64; weak typing covers the int fields.
func decodePayload(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}
