package cart

import (
	"encoding/json"
	"fmt"

	"github.com/angelmondragon/catalogcart/internal/catalog"
)

// storedEntry is the value half of a persisted [productId, entry] pair.
type storedEntry struct {
	Quantity int              `json:"quantity"`
	Product  *catalog.Product `json:"product"`
}

// encode writes entries as an ordered list of [productId, {"quantity":n,"product":{...}}] pairs.
func encode(order []string, entries map[string]*Entry) ([]byte, error) {
	pairs := make([][2]any, 0, len(order))
	for _, id := range order {
		e := entries[id]
		pairs = append(pairs, [2]any{id, storedEntry{Quantity: e.Quantity, Product: e.Product}})
	}
	return json.Marshal(pairs)
}

type decoded struct {
	order   []string
	entries map[string]*Entry
	dropped int
}

// decode parses the pair list. The document as a whole must be a JSON array; individual pairs
// that are malformed, have quantity < 1, or whose product id differs from the key are dropped.
// A repeated id keeps its first position and the last value, matching map construction order.
func decode(data []byte, lookup ProductLookup) (decoded, error) {
	out := decoded{entries: map[string]*Entry{}}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return out, fmt.Errorf("decode cart: %w", err)
	}

	for _, item := range raw {
		var pair []json.RawMessage
		if err := json.Unmarshal(item, &pair); err != nil || len(pair) != 2 {
			out.dropped++
			continue
		}
		var id string
		var stored storedEntry
		if err := json.Unmarshal(pair[0], &id); err != nil || id == "" {
			out.dropped++
			continue
		}
		if err := json.Unmarshal(pair[1], &stored); err != nil || stored.Quantity < 1 {
			out.dropped++
			continue
		}

		product := stored.Product
		if lookup != nil {
			if known, ok := lookup.Product(id); ok {
				product = known
			}
		}
		if product == nil || product.ID != id {
			out.dropped++
			continue
		}

		if existing, ok := out.entries[id]; ok {
			existing.Product = product
			existing.Quantity = stored.Quantity
			continue
		}
		out.order = append(out.order, id)
		out.entries[id] = &Entry{Product: product, Quantity: stored.Quantity}
	}
	return out, nil
}
