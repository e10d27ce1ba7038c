package catalog

import (
	"bytes"
	"embed"
)

//go:embed seed/categories.json seed/product.json
var seedFS embed.FS

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, error) {
	cats, err := seedFS.ReadFile("seed/" + CategoriesFile)
	if err != nil {
		return nil, err
	}
	prods, err := seedFS.ReadFile("seed/" + ProductsFile)
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(cats), bytes.NewReader(prods))
}

// Load picks the seed directory when set, the embedded catalog otherwise.
func Load(dir string) (*Catalog, error) {
	if dir == "" {
		return Default()
	}
	return LoadDir(dir)
}
