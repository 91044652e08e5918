package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/Arnau-Gelonch/zara-challenge/internal/modules/products"
	"github.com/Arnau-Gelonch/zara-challenge/internal/storage"
)

// SlotName is the persistence slot holding a session's cart.
const SlotName = "product-cart"

// SlotKey scopes the cart slot to one browser session.
func SlotKey(sessionID string) string {
	return sessionID + "/" + SlotName
}

// Entry is one cart line: a product snapshot and its quantity (always >= 1).
type Entry struct {
	Product  products.Product `json:"product"`
	Quantity int              `json:"quantity"`
}

// Snapshot is the state handed to listeners after a mutation.
type Snapshot struct {
	Items      []Entry
	TotalItems int
	TotalPrice decimal.Decimal
}

type Listener func(Snapshot)

type subscription struct {
	id int
	fn Listener
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIOTimeout bounds each slot read and write. Defaults to 5s.
func WithIOTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.ioTimeout = d
		}
	}
}

const defaultIOTimeout = 5 * time.Second

// Store is the cart of one session. Every mutation rewrites the whole slot
// before returning. Persistence failures are logged, never returned: the cart
// keeps working from memory.
//
// Slot I/O ignores the caller's cancellation and is bounded by the I/O timeout
// instead, so a mutation and its write land together.
type Store struct {
	slot      storage.Storage
	key       string
	log       *slog.Logger
	ioTimeout time.Duration

	mu        sync.Mutex
	entries   []Entry
	listeners []subscription
	nextID    int
	closed    bool
}

// Open builds a store for key and hydrates it from slot. A missing or
// unreadable slot yields an empty cart.
func Open(ctx context.Context, slot storage.Storage, key string, opts ...Option) *Store {
	s, _ := open(ctx, slot, key, opts...)
	return s
}

// open is Open that also reports a transient read failure. Such a store
// starts empty but has not written over the slot.
func open(ctx context.Context, slot storage.Storage, key string, opts ...Option) (*Store, error) {
	s := &Store{
		slot:      slot,
		key:       key,
		log:       slog.Default(),
		ioTimeout: defaultIOTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	s.mustBeValid()

	entries, fresh, err := s.load(ctx)
	s.entries = entries
	if fresh {
		// a new or unreadable cart is stored as [] right away
		s.persistLocked(ctx)
	}
	return s, err
}

func (s *Store) Add(ctx context.Context, p products.Product) {
	s.mutate(ctx, "add", func(entries []Entry) []Entry {
		return append(entries, Entry{Product: p.Clone(), Quantity: 1})
	})
}

// Remove drops the first entry whose product id matches.
func (s *Store) Remove(ctx context.Context, productID string) {
	s.mutate(ctx, "remove", func(entries []Entry) []Entry {
		for i, e := range entries {
			if e.Product.ID == productID {
				return deleteAt(entries, i)
			}
		}
		return entries
	})
}

// RemoveAt drops the entry at index, but only when that entry holds productID.
// This disambiguates duplicate lines of the same product.
func (s *Store) RemoveAt(ctx context.Context, productID string, index int) {
	s.mutate(ctx, "remove_at", func(entries []Entry) []Entry {
		if index < 0 || index >= len(entries) || entries[index].Product.ID != productID {
			return entries
		}
		return deleteAt(entries, index)
	})
}

// UpdateQuantity sets the quantity of the first entry matching productID.
// A quantity of zero or less removes the entry.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	s.mutate(ctx, "update_quantity", func(entries []Entry) []Entry {
		for i, e := range entries {
			if e.Product.ID != productID {
				continue
			}
			if quantity <= 0 {
				return deleteAt(entries, i)
			}
			entries[i].Quantity = quantity
			return entries
		}
		return entries
	})
}

func (s *Store) Clear(ctx context.Context) {
	s.mutate(ctx, "clear", func([]Entry) []Entry {
		return []Entry{}
	})
}

// Items returns a copy of the entries in insertion order.
func (s *Store) Items() []Entry {
	s.mustBeValid()
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneEntries(s.entries)
}

func (s *Store) TotalItems() int {
	s.mustBeValid()
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalItems(s.entries)
}

// TotalPrice sums the price captured at add time times quantity.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mustBeValid()
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalPrice(s.entries)
}

func (s *Store) Snapshot() Snapshot {
	s.mustBeValid()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to run after every successful mutation. The returned
// func unregisters it.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.mustBeValid()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Close ends the store's lifetime. Later mutations are ignored.
func (s *Store) Close() {
	s.mustBeValid()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.listeners = nil
}

func (s *Store) mutate(ctx context.Context, op string, fn func([]Entry) []Entry) {
	s.mustBeValid()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.log.LogAttrs(ctx, slog.LevelWarn, "cart_closed_mutation",
			slog.String("slot", s.key),
			slog.String("op", op),
		)
		return
	}
	s.entries = fn(s.entries)
	s.persistLocked(ctx)
	snap := s.snapshotLocked()
	listeners := append([]subscription(nil), s.listeners...)
	s.mu.Unlock()

	// subscription order
	for _, sub := range listeners {
		sub.fn(snap)
	}
}

func (s *Store) persistLocked(ctx context.Context) {
	b, err := encode(s.entries)
	if err == nil {
		ioCtx, cancel := s.ioContext(ctx)
		err = s.slot.Put(ioCtx, s.key, b)
		cancel()
	}
	if err != nil {
		s.log.LogAttrs(ctx, slog.LevelError, "cart_persist_failed",
			slog.String("slot", s.key),
			slog.Any("err", err),
		)
	}
}

// load reads the slot. fresh means there was nothing usable in it (missing or
// corrupt). err is a read failure that says nothing about the slot contents.
func (s *Store) load(ctx context.Context) (entries []Entry, fresh bool, err error) {
	ioCtx, cancel := s.ioContext(ctx)
	b, err := s.slot.Get(ioCtx, s.key)
	cancel()
	if errors.Is(err, storage.ErrNotFound) {
		return []Entry{}, true, nil
	}
	if err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "cart_load_failed",
			slog.String("slot", s.key),
			slog.Any("err", err),
		)
		return []Entry{}, false, err
	}
	entries, err = decode(b)
	if err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "cart_slot_corrupt",
			slog.String("slot", s.key),
			slog.Any("err", err),
		)
		return []Entry{}, true, nil
	}
	return entries, false, nil
}

func (s *Store) ioContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.ioTimeout)
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Items:      cloneEntries(s.entries),
		TotalItems: totalItems(s.entries),
		TotalPrice: totalPrice(s.entries),
	}
}

func (s *Store) mustBeValid() {
	if s == nil || s.slot == nil {
		panic("cart: store used before cart.Open")
	}
}

func encode(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(entries)
}

// decode parses a slot payload. Entries with a non-positive quantity cannot
// exist in a live cart and are dropped.
func decode(b []byte) ([]Entry, error) {
	var raw []Entry
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(raw))
	for _, e := range raw {
		if e.Quantity > 0 {
			out = append(out, e)
		}
	}
	return out, nil
}

func deleteAt(entries []Entry, i int) []Entry {
	return append(entries[:i:i], entries[i+1:]...)
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{Product: e.Product.Clone(), Quantity: e.Quantity}
	}
	return out
}

func totalItems(entries []Entry) int {
	n := 0
	for _, e := range entries {
		n += e.Quantity
	}
	return n
}

func totalPrice(entries []Entry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Product.BasePrice.Mul(decimal.NewFromInt(int64(e.Quantity))))
	}
	return sum
}
