package storefront

import (
	"context"
	stdErrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/angelmondragon/catalogcart/internal/cart"
	"github.com/angelmondragon/catalogcart/internal/catalog"
	"github.com/angelmondragon/catalogcart/internal/filter"
	"github.com/angelmondragon/catalogcart/internal/navigator"
	"github.com/angelmondragon/catalogcart/pkg/errors"
	"github.com/angelmondragon/catalogcart/pkg/metrics"
)

// Session holds the page state of one storefront client. Methods are serialized by mu.
type Session struct {
	id      string
	catalog *catalog.Catalog
	ledger  *cart.Ledger
	metrics *metrics.StorefrontMetrics
	clock   func() time.Time
	used    atomic.Int64

	mu           sync.Mutex
	nav          *navigator.Navigator
	availability *bool
	band         filter.PriceBand
	sortByStock  bool
	cartOpen     bool

	grid      []*catalog.Product
	gridStale bool
}

func newSession(id string, cat *catalog.Catalog, ledger *cart.Ledger, m *metrics.StorefrontMetrics) *Session {
	s := &Session{
		id:        id,
		catalog:   cat,
		ledger:    ledger,
		metrics:   m,
		clock:     time.Now,
		band:      filter.BandAll,
		gridStale: true,
	}
	s.nav = navigator.New(cat.Categories(), navigator.OnSelect(func(*catalog.Category) {
		s.gridStale = true
	}))
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) touch(now time.Time) {
	s.used.Store(now.UnixNano())
}

func (s *Session) lastUsed() time.Time {
	return time.Unix(0, s.used.Load())
}

// Ledger exposes the session cart.
func (s *Session) Ledger() *cart.Ledger {
	return s.ledger
}

func (s *Session) category(id int) (*catalog.Category, error) {
	node, ok := s.catalog.Category(id)
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "category not found").WithDetails(map[string]any{"category_id": id})
	}
	return node, nil
}

func (s *Session) product(id string) (*catalog.Product, error) {
	p, ok := s.catalog.Product(id)
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "product not found").WithDetails(map[string]any{"product_id": id})
	}
	return p, nil
}

// SelectCategory makes the category with the given id the active one.
func (s *Session) SelectCategory(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, err := s.category(id)
	if err != nil {
		return err
	}
	return navigatorError(s.nav.ClickLabel(node))
}

func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nav.Select(nil)
}

// ToggleCategory expands or collapses a category and reports whether it is now expanded.
// Collapsing clears the active selection.
func (s *Session) ToggleCategory(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, err := s.category(id)
	if err != nil {
		return false, err
	}
	expanded, err := s.nav.ToggleExpand(node)
	return expanded, navigatorError(err)
}

func navigatorError(err error) error {
	switch {
	case err == nil:
		return nil
	case stdErrors.Is(err, navigator.ErrUnknownCategory):
		return errors.Wrap(errors.CodeNotFound, err, "category not found")
	case stdErrors.Is(err, navigator.ErrNotExpandable):
		return errors.Wrap(errors.CodeValidation, err, "category cannot be expanded")
	case stdErrors.Is(err, navigator.ErrNotVisible):
		return errors.Wrap(errors.CodeConflict, err, "category is not visible")
	default:
		return errors.Wrap(errors.CodeInternal, err, "navigate")
	}
}

// SetAvailability sets the tri-state availability filter; nil means any.
func (s *Session) SetAvailability(v *bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v != nil {
		copied := *v
		v = &copied
	}
	s.availability = v
	s.gridStale = true
}

func (s *Session) SetPriceBand(band filter.PriceBand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.band = filter.NormalizeBand(string(band))
	s.gridStale = true
}

func (s *Session) SetSortByStock(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortByStock = on
	s.gridStale = true
}

// FilterUpdate carries the filter controls to change; nil fields keep their value.
// Availability takes the selector text ("null", "true", "false").
type FilterUpdate struct {
	Availability *string
	PriceBand    *filter.PriceBand
	SortByStock  *bool
}

// UpdateFilters applies every field of u in one step. Nothing changes when the availability
// text is invalid.
func (s *Session) UpdateFilters(u FilterUpdate) error {
	var availability *bool
	if u.Availability != nil {
		parsed, err := filter.ParseAvailability(*u.Availability)
		if err != nil {
			return errors.Wrap(errors.CodeValidation, err, "invalid availability")
		}
		availability = parsed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Availability != nil {
		s.availability = availability
	}
	if u.PriceBand != nil {
		s.band = filter.NormalizeBand(string(*u.PriceBand))
	}
	if u.SortByStock != nil {
		s.sortByStock = *u.SortByStock
	}
	s.gridStale = true
	return nil
}

func (s *Session) ToggleSortByStock() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortByStock = !s.sortByStock
	s.gridStale = true
	return s.sortByStock
}

// AddToCart adds one unit of the product.
func (s *Session) AddToCart(ctx context.Context, productID string) error {
	return s.withProduct(productID, func(p *catalog.Product) error {
		return s.ledger.Add(ctx, p)
	})
}

func (s *Session) IncrementItem(ctx context.Context, productID string) error {
	return s.withProduct(productID, func(p *catalog.Product) error {
		return s.ledger.Increment(ctx, p)
	})
}

// DecrementItem and RemoveItem look the id up in the cart only, which covers stored entries
// the catalog no longer lists.
func (s *Session) DecrementItem(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.DecrementID(ctx, productID)
}

func (s *Session) RemoveItem(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Remove(ctx, productID)
}

func (s *Session) withProduct(productID string, fn func(*catalog.Product) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.product(productID)
	if err != nil {
		return err
	}
	return fn(p)
}

// ToggleCart opens or closes the cart panel and returns the new state.
func (s *Session) ToggleCart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartOpen = !s.cartOpen
	return s.cartOpen
}

func (s *Session) CartOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartOpen
}

func (s *Session) CloseCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartOpen = false
}

// Checkout empties the cart and returns what was in it.
func (s *Session) Checkout(ctx context.Context) (cart.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Checkout(ctx)
}

// Cart returns the cart panel contents regardless of whether the panel is open.
func (s *Session) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartViewLocked()
}

// View composes the page for the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	grid := s.gridLocked()
	rows := make([]ProductRow, 0, len(grid))
	for _, p := range grid {
		rows = append(rows, ProductRow{Product: p, InCart: s.ledger.Quantity(p.ID), Stock: p.Quantity})
	}

	v := View{
		SessionID: s.id,
		Menu:      s.nav.Render(),
		Filters: FilterState{
			Availability: filter.FormatAvailability(s.availability),
			PriceBand:    s.band,
			SortByStock:  s.sortByStock,
			PriceBands:   filter.Bands(),
		},
		Products:  rows,
		CartCount: s.ledger.TotalItemCount(),
		CartOpen:  s.cartOpen,
	}
	if sel := s.nav.Selected(); sel != nil {
		v.Selected = &SelectedCategory{ID: sel.ID, Name: sel.Name}
	}
	if s.cartOpen {
		cv := s.cartViewLocked()
		v.Cart = &cv
	}
	return v
}

func (s *Session) cartViewLocked() CartView {
	entries := s.ledger.Entries()
	items := make([]CartRow, 0, len(entries))
	total := 0
	for _, e := range entries {
		items = append(items, CartRow{Product: e.Product, Quantity: e.Quantity})
		total += e.Quantity
	}
	subtotal, unpriced := s.ledger.Subtotal()
	return CartView{
		Items:      items,
		TotalItems: total,
		Subtotal:   subtotal.StringFixed(2),
		Unpriced:   unpriced,
	}
}

// gridLocked recomputes the filtered grid only when the selection or a filter changed.
func (s *Session) gridLocked() []*catalog.Product {
	if !s.gridStale {
		return s.grid
	}
	started := s.clock()
	s.grid = filter.Apply(s.catalog.Products(), s.criteriaLocked())
	s.gridStale = false
	s.metrics.ObserveFilter(s.clock().Sub(started), len(s.grid))
	return s.grid
}

func (s *Session) criteriaLocked() filter.Criteria {
	return filter.Criteria{
		Category:     s.nav.Selected(),
		Availability: s.availability,
		PriceRange:   s.band.Range(),
		SortByStock:  s.sortByStock,
	}
}
