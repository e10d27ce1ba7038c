package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	CategoriesFile = "categories.json"
	ProductsFile   = "product.json"
)

// Catalog holds the read-only category tree and product list loaded at startup.
type Catalog struct {
	categories     []*Category
	products       []*Product
	productsByID   map[string]*Product
	categoriesByID map[int]*Category
}

// New validates the inputs and indexes them. Products keep their given order.
func New(categories []*Category, products []Product) (*Catalog, error) {
	c := &Catalog{
		categories:     categories,
		products:       make([]*Product, 0, len(products)),
		productsByID:   make(map[string]*Product, len(products)),
		categoriesByID: map[int]*Category{},
	}

	if err := c.indexCategories(categories, map[*Category]struct{}{}); err != nil {
		return nil, err
	}

	for i := range products {
		p := products[i]
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return nil, fmt.Errorf("product at position %d has no id", i)
		}
		if p.Quantity < 0 {
			return nil, fmt.Errorf("product %s has negative quantity %d", p.ID, p.Quantity)
		}
		if _, dup := c.productsByID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %s", p.ID)
		}
		ref := &p
		c.products = append(c.products, ref)
		c.productsByID[p.ID] = ref
	}
	return c, nil
}

// indexCategories walks depth-first; the first node seen for an id owns the id lookup.
func (c *Catalog) indexCategories(nodes []*Category, seen map[*Category]struct{}) error {
	for _, node := range nodes {
		if node == nil {
			return fmt.Errorf("category tree contains a nil node")
		}
		if _, ok := seen[node]; ok {
			return fmt.Errorf("category %d appears twice in the tree", node.ID)
		}
		seen[node] = struct{}{}
		if _, ok := c.categoriesByID[node.ID]; !ok {
			c.categoriesByID[node.ID] = node
		}
		if err := c.indexCategories(node.Sublevels, seen); err != nil {
			return err
		}
	}
	return nil
}

// Parse decodes the two seed documents.
func Parse(categoriesJSON, productsJSON io.Reader) (*Catalog, error) {
	var cats categoriesDocument
	if err := json.NewDecoder(categoriesJSON).Decode(&cats); err != nil {
		return nil, fmt.Errorf("decoding categories: %w", err)
	}
	var prods productsDocument
	if err := json.NewDecoder(productsJSON).Decode(&prods); err != nil {
		return nil, fmt.Errorf("decoding products: %w", err)
	}
	return New(cats.Categories, prods.Products)
}

// LoadDir reads categories.json and product.json from dir.
func LoadDir(dir string) (*Catalog, error) {
	catFile, err := os.Open(filepath.Join(dir, CategoriesFile))
	if err != nil {
		return nil, fmt.Errorf("opening categories: %w", err)
	}
	defer catFile.Close()

	prodFile, err := os.Open(filepath.Join(dir, ProductsFile))
	if err != nil {
		return nil, fmt.Errorf("opening products: %w", err)
	}
	defer prodFile.Close()

	return Parse(catFile, prodFile)
}

// Categories returns the top-level sequence of the tree.
func (c *Catalog) Categories() []*Category {
	out := make([]*Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Products returns every product in catalog order. The slice is fresh; the products are shared.
func (c *Catalog) Products() []*Product {
	out := make([]*Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Product(id string) (*Product, bool) {
	p, ok := c.productsByID[strings.TrimSpace(id)]
	return p, ok
}

func (c *Catalog) Category(id int) (*Category, bool) {
	node, ok := c.categoriesByID[id]
	return node, ok
}

// Walk visits the tree depth-first, stopping when fn returns false.
func (c *Catalog) Walk(fn func(node *Category, depth int) bool) {
	walk(c.categories, 0, fn)
}

func walk(nodes []*Category, depth int, fn func(*Category, int) bool) bool {
	for _, node := range nodes {
		if !fn(node, depth) {
			return false
		}
		if !walk(node.Sublevels, depth+1, fn) {
			return false
		}
	}
	return true
}
