package storefront

import (
	"github.com/angelmondragon/catalogcart/internal/catalog"
	"github.com/angelmondragon/catalogcart/internal/filter"
	"github.com/angelmondragon/catalogcart/internal/navigator"
)

// View is the page model for one session.
type View struct {
	SessionID string               `json:"session_id"`
	Menu      []navigator.MenuNode `json:"menu"`
	Selected  *SelectedCategory    `json:"selected_category"`
	Filters   FilterState          `json:"filters"`
	Products  []ProductRow         `json:"products"`
	CartCount int                  `json:"cart_count"`
	CartOpen  bool                 `json:"cart_open"`
	Cart      *CartView            `json:"cart,omitempty"`
}

type SelectedCategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// FilterState mirrors the three selector controls.
type FilterState struct {
	Availability string             `json:"availability"`
	PriceBand    filter.PriceBand   `json:"price_band"`
	SortByStock  bool               `json:"sort_by_stock"`
	PriceBands   []filter.PriceBand `json:"price_bands"`
}

// ProductRow is one card of the product grid.
type ProductRow struct {
	Product *catalog.Product `json:"product"`
	InCart  int              `json:"in_cart"`
	Stock   int              `json:"stock"`
}

// CartView is the open cart panel.
type CartView struct {
	Items      []CartRow `json:"items"`
	TotalItems int       `json:"total_items"`
	Subtotal   string    `json:"subtotal"`
	Unpriced   int       `json:"unpriced_items"`
}

type CartRow struct {
	Product  *catalog.Product `json:"product"`
	Quantity int              `json:"quantity"`
}
