package catalog

// Category is a node of the navigation tree. A node without sublevels (nil or empty) is a leaf.
type Category struct {
	ID        int         `json:"id"`
	Name      string      `json:"name"`
	Sublevels []*Category `json:"sublevels,omitempty"`
}

// HasChildren reports whether the node can be expanded.
func (c *Category) HasChildren() bool {
	return c != nil && len(c.Sublevels) > 0
}

// Product is an immutable catalog entry. Price is display text such as "$5,450".
type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	Price      string `json:"price"`
	Available  bool   `json:"available"`
	SublevelID int    `json:"sublevel_id"`
}

type categoriesDocument struct {
	Categories []*Category `json:"categories"`
}

type productsDocument struct {
	Products []Product `json:"products"`
}
