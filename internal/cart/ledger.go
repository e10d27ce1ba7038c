package cart

import (
	"context"
	stdErrors "errors"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalogcart/internal/catalog"
	"github.com/angelmondragon/catalogcart/internal/filter"
	"github.com/angelmondragon/catalogcart/internal/storage"
	"github.com/angelmondragon/catalogcart/pkg/errors"
	"github.com/angelmondragon/catalogcart/pkg/logger"
)

// DefaultKey is the storage key holding the serialized cart.
const DefaultKey = "cart"

const (
	OpAdd       = "add"
	OpIncrement = "increment"
	OpDecrement = "decrement"
	OpRemove    = "remove"
	OpClear     = "clear"
	OpCheckout  = "checkout"
)

// Entry is one cart line. Quantity is always >= 1 while the entry is in the cart.
type Entry struct {
	Product  *catalog.Product
	Quantity int
}

// ProductLookup resolves product ids against the live catalog; *catalog.Catalog satisfies it.
type ProductLookup interface {
	Product(id string) (*catalog.Product, bool)
}

// Recorder receives mutation and persistence counters; *metrics.StorefrontMetrics satisfies it.
type Recorder interface {
	IncCartMutation(op string)
	IncPersistFailure(op string)
}

// Receipt is the cart snapshot taken at checkout.
type Receipt struct {
	Entries    []Entry
	TotalItems int
	Subtotal   decimal.Decimal
	Unpriced   int
}

type Option func(*Ledger)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(l *Ledger) {
		if key != "" {
			l.key = key
		}
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(l *Ledger) { l.logg = logg }
}

func WithRecorder(rec Recorder) Option {
	return func(l *Ledger) { l.rec = rec }
}

// WithCatalog re-links stored entries to catalog products when the id is known.
func WithCatalog(lookup ProductLookup) Option {
	return func(l *Ledger) { l.lookup = lookup }
}

// Ledger maps product ids to cart entries and writes the whole mapping to storage after every
// mutation. Entries keep insertion order.
type Ledger struct {
	mu      sync.Mutex
	store   storage.Store
	key     string
	logg    *logger.Logger
	rec     Recorder
	lookup  ProductLookup
	order   []string
	entries map[string]*Entry
}

// Load builds a ledger from the value stored under its key. A missing value yields an empty
// cart, and so does an unreadable one (logged as a warning).
func Load(ctx context.Context, store storage.Store, opts ...Option) (*Ledger, error) {
	if store == nil {
		return nil, errors.New(errors.CodeInternal, "cart storage is required")
	}
	l := &Ledger{
		store:   store,
		key:     DefaultKey,
		entries: map[string]*Entry{},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logg == nil {
		l.logg = logger.Nop()
	}

	raw, err := store.Get(ctx, l.key)
	if err != nil {
		if stdErrors.Is(err, storage.ErrNotFound) {
			return l, nil
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "read cart")
	}

	state, err := decode([]byte(raw), l.lookup)
	if err != nil {
		l.logg.Warn(l.logg.WithFields(ctx, map[string]any{"key": l.key, "error": err.Error()}), "stored cart is malformed, starting empty")
		return l, nil
	}
	if state.dropped > 0 {
		l.logg.Warn(l.logg.WithFields(ctx, map[string]any{"key": l.key, "dropped": state.dropped}), "dropped invalid cart entries")
	}
	l.order = state.order
	l.entries = state.entries
	return l, nil
}

// Add puts one unit of product into the cart.
func (l *Ledger) Add(ctx context.Context, product *catalog.Product) error {
	return l.addOne(ctx, product, OpAdd)
}

// Increment is Add issued from a cart row.
func (l *Ledger) Increment(ctx context.Context, product *catalog.Product) error {
	return l.addOne(ctx, product, OpIncrement)
}

func (l *Ledger) addOne(ctx context.Context, product *catalog.Product, op string) error {
	if product == nil || product.ID == "" {
		return errors.New(errors.CodeValidation, "product is required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[product.ID]; ok {
		e.Quantity++
	} else {
		l.order = append(l.order, product.ID)
		l.entries[product.ID] = &Entry{Product: product, Quantity: 1}
	}
	return l.persistLocked(ctx, op)
}

// Decrement removes one unit; the entry goes away when its quantity reaches zero.
// Decrementing an absent product does nothing.
func (l *Ledger) Decrement(ctx context.Context, product *catalog.Product) error {
	if product == nil {
		return errors.New(errors.CodeValidation, "product is required")
	}
	return l.DecrementID(ctx, product.ID)
}

// DecrementID is Decrement keyed by product id, for entries the catalog no longer lists.
func (l *Ledger) DecrementID(ctx context.Context, productID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[productID]
	if !ok {
		return nil
	}
	if e.Quantity > 1 {
		e.Quantity--
	} else {
		l.deleteLocked(productID)
	}
	return l.persistLocked(ctx, OpDecrement)
}

// Remove deletes the entry regardless of quantity.
func (l *Ledger) Remove(ctx context.Context, productID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[productID]; !ok {
		return nil
	}
	l.deleteLocked(productID)
	return l.persistLocked(ctx, OpRemove)
}

// Clear empties the cart.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.resetLocked()
	return l.persistLocked(ctx, OpClear)
}

// Checkout snapshots the cart into a receipt and empties it.
func (l *Ledger) Checkout(ctx context.Context) (Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.entriesLocked()
	subtotal, unpriced := sumEntries(entries)
	receipt := Receipt{
		Entries:    entries,
		TotalItems: l.totalLocked(),
		Subtotal:   subtotal,
		Unpriced:   unpriced,
	}
	l.resetLocked()
	return receipt, l.persistLocked(ctx, OpCheckout)
}

// TotalItemCount is the sum of quantities (the cart badge).
func (l *Ledger) TotalItemCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalLocked()
}

// Quantity returns the in-cart quantity for a product id, 0 when absent.
func (l *Ledger) Quantity(productID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[productID]; ok {
		return e.Quantity
	}
	return 0
}

// Entries returns a copy of the cart lines in insertion order.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entriesLocked()
}

// Subtotal sums price × quantity. Lines whose price text does not parse are skipped and counted.
func (l *Ledger) Subtotal() (decimal.Decimal, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return sumEntries(l.entriesLocked())
}

func (l *Ledger) deleteLocked(id string) {
	delete(l.entries, id)
	l.order = slices.DeleteFunc(l.order, func(v string) bool { return v == id })
}

func (l *Ledger) resetLocked() {
	l.order = nil
	l.entries = map[string]*Entry{}
}

func (l *Ledger) totalLocked() int {
	total := 0
	for _, e := range l.entries {
		total += e.Quantity
	}
	return total
}

func (l *Ledger) entriesLocked() []Entry {
	out := make([]Entry, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.entries[id])
	}
	return out
}

// persistLocked rewrites the whole mapping. The in-memory change stays applied on failure;
// the next successful write carries it.
func (l *Ledger) persistLocked(ctx context.Context, op string) error {
	if l.rec != nil {
		l.rec.IncCartMutation(op)
	}
	payload, err := encode(l.order, l.entries)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "encode cart")
	}
	if err := l.store.Set(ctx, l.key, string(payload)); err != nil {
		if l.rec != nil {
			l.rec.IncPersistFailure(op)
		}
		l.logg.Error(l.logg.WithFields(ctx, map[string]any{"key": l.key, "op": op}), "persist cart", err)
		return errors.Wrap(errors.CodeDependency, err, "persist cart")
	}
	return nil
}

func sumEntries(entries []Entry) (decimal.Decimal, int) {
	total := decimal.Zero
	unpriced := 0
	for _, e := range entries {
		price, ok := filter.ParsePrice(e.Product.Price)
		if !ok {
			unpriced++
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(e.Quantity))))
	}
	return total, unpriced
}
