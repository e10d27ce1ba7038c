package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	roots := c.Categories()
	require.Len(t, roots, 4)
	assert.Equal(t, "Beverages", roots[0].Name)
	assert.True(t, roots[0].HasChildren())
	assert.False(t, roots[3].HasChildren())

	coffee, ok := c.Category(8)
	require.True(t, ok)
	assert.NotNil(t, coffee.Sublevels, "empty sublevels should decode as an empty slice")
	assert.False(t, coffee.HasChildren())

	products := c.Products()
	require.Len(t, products, 12)
	assert.Equal(t, "Lemon soda", products[0].Name)

	p, ok := c.Product(" 58b5a5b1c0ffee00c0ffee01 ")
	require.True(t, ok)
	assert.Same(t, products[7], p)
}

func TestProductsReturnsFreshSlice(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	first := c.Products()
	first[0] = nil
	assert.NotNil(t, c.Products()[0])
}

func TestNewRejectsInvalidProducts(t *testing.T) {
	_, err := New(nil, []Product{{ID: "a"}, {ID: "a"}})
	require.Error(t, err)

	_, err = New(nil, []Product{{ID: " "}})
	require.Error(t, err)

	_, err = New(nil, []Product{{ID: "a", Quantity: -1}})
	require.Error(t, err)
}

func TestNewRejectsSharedNodes(t *testing.T) {
	leaf := &Category{ID: 2, Name: "leaf"}
	_, err := New([]*Category{{ID: 1, Sublevels: []*Category{leaf}}, leaf}, nil)
	require.Error(t, err)

	_, err = New([]*Category{nil}, nil)
	require.Error(t, err)
}

func TestCategoryLookupPrefersFirstDepthFirstNode(t *testing.T) {
	first := &Category{ID: 7, Name: "first"}
	second := &Category{ID: 7, Name: "second"}
	c, err := New([]*Category{{ID: 1, Sublevels: []*Category{first}}, second}, nil)
	require.NoError(t, err)

	got, ok := c.Category(7)
	require.True(t, ok)
	assert.Same(t, first, got)

	_, ok = c.Category(99)
	assert.False(t, ok)
}

func TestWalkVisitsDepthFirstAndStops(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	var names []string
	c.Walk(func(node *Category, depth int) bool {
		names = append(names, strings.Repeat("-", depth)+node.Name)
		return node.ID != 3
	})
	assert.Equal(t, []string{"Beverages", "-Soft drinks", "--Sparkling"}, names)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CategoriesFile), []byte(`{"categories":[{"id":5,"name":"Only"}]}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProductsFile), []byte(`{"products":[{"id":"p1","name":"P1","quantity":1,"price":"$2,500","available":true,"sublevel_id":5}]}`), 0o600))

	c, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, c.Products(), 1)
	assert.Equal(t, 5, c.Products()[0].SublevelID)

	_, err = LoadDir(t.TempDir())
	require.Error(t, err)
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	_, err := Parse(strings.NewReader("{"), strings.NewReader(`{"products":[]}`))
	require.Error(t, err)

	_, err = Parse(strings.NewReader(`{"categories":[]}`), strings.NewReader("nope"))
	require.Error(t, err)
}
