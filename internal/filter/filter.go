package filter

import (
	"cmp"
	"regexp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalogcart/internal/catalog"
)

var nonNumeric = regexp.MustCompile(`[^0-9.\-]+`)

// PriceRange is a closed interval; both bounds are inclusive.
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Contains reports whether value lies in [Min, Max].
func (r PriceRange) Contains(value decimal.Decimal) bool {
	return value.GreaterThanOrEqual(r.Min) && value.LessThanOrEqual(r.Max)
}

// Criteria narrows the product grid. Nil fields mean "no constraint".
type Criteria struct {
	Category     *catalog.Category
	Availability *bool
	PriceRange   *PriceRange
	SortByStock  bool
}

// Apply returns the products matching every criterion. The input slice is never reordered;
// with SortByStock the result is stable-sorted ascending by stock on hand.
func Apply(products []*catalog.Product, c Criteria) []*catalog.Product {
	out := make([]*catalog.Product, 0, len(products))
	for _, p := range products {
		if p != nil && c.Matches(p) {
			out = append(out, p)
		}
	}
	if c.SortByStock {
		slices.SortStableFunc(out, func(a, b *catalog.Product) int {
			return cmp.Compare(a.Quantity, b.Quantity)
		})
	}
	return out
}

// Matches is the AND of the category, availability and price predicates.
func (c Criteria) Matches(p *catalog.Product) bool {
	return c.matchesCategory(p) && c.matchesAvailability(p) && c.matchesPrice(p)
}

// matchesCategory compares ids directly; descendants of the selection do not match.
func (c Criteria) matchesCategory(p *catalog.Product) bool {
	return c.Category == nil || p.SublevelID == c.Category.ID
}

func (c Criteria) matchesAvailability(p *catalog.Product) bool {
	return c.Availability == nil || p.Available == *c.Availability
}

func (c Criteria) matchesPrice(p *catalog.Product) bool {
	if c.PriceRange == nil {
		return true
	}
	value, ok := ParsePrice(p.Price)
	if !ok {
		return false
	}
	return c.PriceRange.Contains(value)
}

// ParsePrice keeps digits, dots and minus signs from the display text and reads the rest
// as a decimal. Text with nothing numeric left, or leftovers like "1.2.3", does not parse.
func ParsePrice(text string) (decimal.Decimal, bool) {
	cleaned := nonNumeric.ReplaceAllString(text, "")
	if cleaned == "" {
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}
