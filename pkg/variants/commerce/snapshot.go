package commerce

// Item is a catalog entry.
type Item struct {
	ID          string  `json:"id" mapstructure:"id"`
	Name        string  `json:"name" mapstructure:"name"`
	Description string  `json:"description,omitempty" mapstructure:"description"`
	Price       float64 `json:"price" mapstructure:"price"`
}

// CartItem is a catalog item placed in the cart with a quantity.
type CartItem struct {
	Name  string  `json:"name" mapstructure:"name"`
	Qty   int     `json:"qty" mapstructure:"qty"`
	Price float64 `json:"price" mapstructure:"price"`
	Total float64 `json:"total" mapstructure:"total"`
}

// Cart is the live shopping cart as the authority last broadcast it.
type Cart struct {
	Items      []CartItem `json:"items" mapstructure:"items"`
	GrandTotal float64    `json:"grand_total" mapstructure:"grand_total"`
}

// Complete reports whether the cart is ready for checkout.
func (c Cart) Complete() bool {
	return len(c.Items) > 0 && c.GrandTotal > 0
}

// Order is a placed order.
type Order struct {
	ID          string     `json:"id" mapstructure:"id"`
	Items       []CartItem `json:"items" mapstructure:"items"`
	TotalAmount float64    `json:"total_amount" mapstructure:"total_amount"`
}

// Snapshot is the storefront view of authoritative remote state.
type Snapshot struct {
	Catalog   []Item `json:"catalog"`
	Cart      Cart   `json:"cart"`
	LastOrder *Order `json:"last_order,omitempty"`
}

// NewSnapshot returns the session-start default: empty catalog, empty cart.
func NewSnapshot() Snapshot {
	return Snapshot{
		Cart: Cart{Items: []CartItem{}},
	}
}
