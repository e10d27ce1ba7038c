package filter

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PriceBand is the value of the price selector control.
type PriceBand string

const (
	BandAll         PriceBand = "null"
	Band0To3000     PriceBand = "0-3000"
	Band3000To8000  PriceBand = "3000-8000"
	Band8000To19000 PriceBand = "8000-19000"
)

var bandRanges = map[PriceBand]PriceRange{
	Band0To3000:     {Min: decimal.NewFromInt(0), Max: decimal.NewFromInt(3000)},
	Band3000To8000:  {Min: decimal.NewFromInt(3000), Max: decimal.NewFromInt(8000)},
	Band8000To19000: {Min: decimal.NewFromInt(8000), Max: decimal.NewFromInt(19000)},
}

// Bands lists the selector options in display order.
func Bands() []PriceBand {
	return []PriceBand{BandAll, Band0To3000, Band3000To8000, Band8000To19000}
}

// NormalizeBand maps any unrecognised selector value onto BandAll, as the selector's
// fallback branch does.
func NormalizeBand(value string) PriceBand {
	band := PriceBand(strings.TrimSpace(value))
	if _, ok := bandRanges[band]; ok {
		return band
	}
	return BandAll
}

// Range returns the interval for the band, nil for BandAll.
func (b PriceBand) Range() *PriceRange {
	r, ok := bandRanges[b]
	if !ok {
		return nil
	}
	return &r
}

// ParseAvailability reads the three-valued availability selector: "null" (or empty) is
// unset, "true"/"false" filter on the flag.
func ParseAvailability(value string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "null":
		return nil, nil
	case "true":
		v := true
		return &v, nil
	case "false":
		v := false
		return &v, nil
	default:
		return nil, fmt.Errorf("availability must be one of null, true, false; got %q", value)
	}
}

// FormatAvailability is the inverse of ParseAvailability.
func FormatAvailability(v *bool) string {
	if v == nil {
		return "null"
	}
	if *v {
		return "true"
	}
	return "false"
}
