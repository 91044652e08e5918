package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arnau-Gelonch/zara-challenge/internal/modules/products"
	"github.com/Arnau-Gelonch/zara-challenge/internal/storage"
)

const testKey = "session-1/" + SlotName

func product(id string, price int64) products.Product {
	return products.Product{
		ID:        id,
		Name:      "Phone " + id,
		Brand:     "Brand",
		BasePrice: decimal.NewFromInt(price),
		ImageURL:  "https://example.com/" + id + ".jpg",
	}
}

type brokenStorage struct {
	getErr error
	putErr error
	puts   int
}

func (b *brokenStorage) Get(context.Context, string) ([]byte, error) { return nil, b.getErr }
func (b *brokenStorage) Put(context.Context, string, []byte) error {
	b.puts++
	return b.putErr
}
func (b *brokenStorage) Delete(context.Context, string) error { return nil }

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Product.ID
	}
	return out
}

func TestStore_EmptyCart(t *testing.T) {
	ctx := context.Background()
	slots := storage.NewMemory()
	s := Open(ctx, slots, testKey)

	assert.Equal(t, 0, s.TotalItems())
	assert.True(t, s.TotalPrice().IsZero())
	assert.Empty(t, s.Items())

	raw, err := slots.Get(ctx, testKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestStore_AddNeverMerges(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, storage.NewMemory(), testKey)

	for i := 0; i < 4; i++ {
		s.Add(ctx, product("A", 10))
	}

	assert.Equal(t, 4, s.TotalItems())
	require.Len(t, s.Items(), 4)
	for _, e := range s.Items() {
		assert.Equal(t, 1, e.Quantity)
	}
}

func TestStore_TotalsScenario(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, storage.NewMemory(), testKey)

	s.Add(ctx, product("A", 999))
	s.Add(ctx, product("A", 999))
	s.Add(ctx, product("B", 899))

	assert.Equal(t, 3, s.TotalItems())
	assert.Equal(t, "2897", s.TotalPrice().String())
	assert.Len(t, s.Items(), 3)
	assert.Equal(t, []string{"A", "A", "B"}, ids(s.Items()))
}

func TestStore_TotalItemsSumsQuantities(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, storage.NewMemory(), testKey)

	s.Add(ctx, product("A", 1))
	s.Add(ctx, product("B", 1))
	s.UpdateQuantity(ctx, "A", 2)
	s.UpdateQuantity(ctx, "B", 3)

	assert.Equal(t, 5, s.TotalItems())
	assert.Len(t, s.Items(), 2)
}

func TestStore_UpdateQuantity(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, storage.NewMemory(), testKey)
	a := product("A", 999)

	s.Add(ctx, a)
	s.Add(ctx, product("B", 899))
	s.UpdateQuantity(ctx, "A", 5)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
	assert.Equal(t, 6, s.TotalItems())
	assert.Equal(t, "5894", s.TotalPrice().String())
}

func TestStore_UpdateQuantityOnlyProduct(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, storage.NewMemory(), testKey)
	a := product("A", 999)

	s.Add(ctx, a)
	s.UpdateQuantity(ctx, "A", 5)

	assert.Equal(t, 5, s.TotalItems())
	assert.True(t, a.BasePrice.Mul(decimal.NewFromInt(5)).Equal(s.TotalPrice()))
}

func TestStore_UpdateQuantityNonPositiveRemoves(t *testing.T) {
	for _, qty := range []int{0, -1} {
		ctx := context.Background()
		s := Open(ctx, storage.NewMemory(), testKey)
		s.Add(ctx, product("A", 1))
		s.Add(ctx, product("B", 1))

		s.UpdateQuantity(ctx, "A", qty)

		assert.Equal(t, []string{"B"}, ids(s.Items()), "qty %d", qty)
	}
}

func TestStore_UpdateQuantityFirstMatchOnly(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, storage.NewMemory(), testKey)
	s.Add(ctx, product("A", 1))
	s.Add(ctx, product("A", 1))

	s.UpdateQuantity(ctx, "A", 3)

	items := s.Items()
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestStore_UpdateQuantityUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, storage.NewMemory(), testKey)
	s.Add(ctx, product("A", 1))

	s.UpdateQuantity(ctx, "missing", 7)
	s.UpdateQuantity(ctx, "missing", 0)

	assert.Equal(t, 1, s.TotalItems())
}

func TestStore_RemoveFirstOccurrence(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, storage.NewMemory(), testKey)
	first := product("A", 1)
	first.ImageURL = "first"
	second := product("A", 1)
	second.ImageURL = "second"

	s.Add(ctx, first)
	s.Add(ctx, product("B", 1))
	s.Add(ctx, second)
	s.Remove(ctx, "A")

	items := s.Items()
	assert.Equal(t, []string{"B", "A"}, ids(items))
	assert.Equal(t, "second", items[1].Product.ImageURL)
}

func TestStore_RemoveAtDisambiguatesDuplicates(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, storage.NewMemory(), testKey)
	for _, img := range []string{"black", "pink", "blue"} {
		p := product("A", 1)
		p.ImageURL = img
		s.Add(ctx, p)
	}

	s.RemoveAt(ctx, "A", 1)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "black", items[0].Product.ImageURL)
	assert.Equal(t, "blue", items[1].Product.ImageURL)
}

func TestStore_RemoveAtRequiresMatchingID(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, storage.NewMemory(), testKey)
	s.Add(ctx, product("A", 1))
	s.Add(ctx, product("B", 1))

	s.RemoveAt(ctx, "A", 1)
	s.RemoveAt(ctx, "A", 7)
	s.RemoveAt(ctx, "A", -1)
	s.Remove(ctx, "missing")

	assert.Equal(t, []string{"A", "B"}, ids(s.Items()))
}

func TestStore_PriceSnapshotInsulated(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, storage.NewMemory(), testKey)
	p := product("A", 999)
	p.StorageOptions = []products.StorageOption{{Capacity: "128GB", Price: decimal.NewFromInt(999)}}

	s.Add(ctx, p)
	p.BasePrice = decimal.NewFromInt(1)
	p.StorageOptions[0].Price = decimal.NewFromInt(1)

	items := s.Items()
	assert.Equal(t, "999", s.TotalPrice().String())
	assert.Equal(t, "999", items[0].Product.StorageOptions[0].Price.String())

	// readers get copies
	items[0].Quantity = 50
	items[0].Product.StorageOptions[0].Price = decimal.NewFromInt(2)
	assert.Equal(t, 1, s.TotalItems())
	assert.Equal(t, "999", s.Items()[0].Product.StorageOptions[0].Price.String())
}

func TestStore_PersistRoundTrip(t *testing.T) {
	ctx := context.Background()
	slots := storage.NewMemory()
	s := Open(ctx, slots, testKey)

	s.Add(ctx, product("A", 999))
	s.Add(ctx, product("B", 899))
	s.Add(ctx, product("A", 999))
	s.UpdateQuantity(ctx, "B", 4)
	before := s.Items()

	reloaded := Open(ctx, slots, testKey)
	after := reloaded.Items()

	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Product.ID, after[i].Product.ID)
		assert.Equal(t, before[i].Quantity, after[i].Quantity)
		assert.True(t, before[i].Product.BasePrice.Equal(after[i].Product.BasePrice))
	}
	assert.Equal(t, s.TotalItems(), reloaded.TotalItems())
}

func TestStore_SlotFormat(t *testing.T) {
	ctx := context.Background()
	slots := storage.NewMemory()
	s := Open(ctx, slots, testKey)

	s.Add(ctx, product("1", 999))

	raw, err := slots.Get(ctx, testKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"product":{"id":"1","name":"Phone 1","brand":"Brand","basePrice":999,"imageUrl":"https://example.com/1.jpg"},"quantity":1}]`, string(raw))
}

func TestStore_HydratesFromExistingSlot(t *testing.T) {
	ctx := context.Background()
	slots := storage.NewMemory()
	require.NoError(t, slots.Put(ctx, testKey, []byte(`[
		{"product":{"id":"1","name":"iPhone 15","brand":"Apple","basePrice":999,"imageUrl":"x"},"quantity":2},
		{"product":{"id":"2","name":"Galaxy S24","brand":"Samsung","basePrice":899.5,"imageUrl":"y"},"quantity":1}
	]`)))

	s := Open(ctx, slots, testKey)

	assert.Equal(t, 3, s.TotalItems())
	assert.Equal(t, "2897.5", s.TotalPrice().String())
}

func TestStore_CorruptSlotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	slots := storage.NewMemory()
	require.NoError(t, slots.Put(ctx, testKey, []byte(`{not json`)))

	s := Open(ctx, slots, testKey)

	assert.Empty(t, s.Items())
	raw, err := slots.Get(ctx, testKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))

	s.Add(ctx, product("A", 1))
	assert.Equal(t, 1, s.TotalItems())
}

func TestStore_ReadFailureKeepsSlot(t *testing.T) {
	broken := &brokenStorage{getErr: errors.New("timeout")}

	s, err := open(context.Background(), broken, testKey)

	require.Error(t, err)
	assert.Empty(t, s.Items())
	assert.Zero(t, broken.puts)
}

func TestStore_CanceledContextStillPersists(t *testing.T) {
	slots := storage.NewLocal(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := Open(ctx, slots, testKey)
	s.Add(ctx, product("A", 1))

	assert.Equal(t, 1, Open(context.Background(), slots, testKey).TotalItems())
}

func TestStore_DropsNonPositiveQuantitiesOnLoad(t *testing.T) {
	ctx := context.Background()
	slots := storage.NewMemory()
	require.NoError(t, slots.Put(ctx, testKey, []byte(`[
		{"product":{"id":"1","basePrice":1},"quantity":0},
		{"product":{"id":"2","basePrice":1},"quantity":-3},
		{"product":{"id":"3","basePrice":1},"quantity":2}
	]`)))

	s := Open(ctx, slots, testKey)

	assert.Equal(t, []string{"3"}, ids(s.Items()))
}

func TestStore_StorageFailuresNeverSurface(t *testing.T) {
	ctx := context.Background()
	broken := &brokenStorage{getErr: errors.New("disk gone"), putErr: errors.New("quota exceeded")}

	s := Open(ctx, broken, testKey)
	assert.Empty(t, s.Items())

	s.Add(ctx, product("A", 10))
	s.Add(ctx, product("B", 5))
	s.UpdateQuantity(ctx, "B", 2)

	assert.Equal(t, 3, s.TotalItems())
	assert.Equal(t, "20", s.TotalPrice().String())
	assert.Equal(t, 3, broken.puts)

	// a missing slot is written as [] at open; that write may fail too
	missing := &brokenStorage{getErr: storage.ErrNotFound, putErr: errors.New("read-only")}
	assert.Empty(t, Open(ctx, missing, testKey).Items())
	assert.Equal(t, 1, missing.puts)
}

func TestStore_ListenersSeePersistedState(t *testing.T) {
	ctx := context.Background()
	slots := storage.NewMemory()
	s := Open(ctx, slots, testKey)

	var got []Snapshot
	var persisted []string
	cancel := s.Subscribe(func(snap Snapshot) {
		got = append(got, snap)
		raw, err := slots.Get(ctx, testKey)
		require.NoError(t, err)
		persisted = append(persisted, string(raw))
	})

	s.Add(ctx, product("A", 999))
	s.Add(ctx, product("B", 899))

	require.Len(t, got, 2)
	assert.Equal(t, 2, got[1].TotalItems)
	assert.Equal(t, "1898", got[1].TotalPrice.String())
	assert.Contains(t, persisted[1], `"id":"B"`)

	cancel()
	s.Clear(ctx)
	assert.Len(t, got, 2)
}

func TestStore_ListenersRunInSubscriptionOrder(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, storage.NewMemory(), testKey)

	var order []int
	cancels := make([]func(), 0, 5)
	for i := 0; i < 5; i++ {
		cancels = append(cancels, s.Subscribe(func(Snapshot) { order = append(order, i) }))
	}
	cancels[2]()

	for n := 0; n < 3; n++ {
		order = order[:0]
		s.Add(ctx, product("A", 1))
		assert.Equal(t, []int{0, 1, 3, 4}, order)
	}
}

func TestStore_ListenerMayReadStore(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, storage.NewMemory(), testKey)

	seen := -1
	s.Subscribe(func(Snapshot) { seen = s.TotalItems() })
	s.Add(ctx, product("A", 1))

	assert.Equal(t, 1, seen)
}

func TestStore_ClosedIgnoresMutations(t *testing.T) {
	ctx := context.Background()
	slots := storage.NewMemory()
	s := Open(ctx, slots, testKey)
	s.Add(ctx, product("A", 1))

	calls := 0
	s.Subscribe(func(Snapshot) { calls++ })
	s.Close()
	s.Add(ctx, product("B", 1))
	s.Clear(ctx)

	assert.Equal(t, []string{"A"}, ids(s.Items()))
	assert.Zero(t, calls)
	assert.Equal(t, 1, Open(ctx, slots, testKey).TotalItems())
}

func TestStore_NilStorePanics(t *testing.T) {
	var s *Store
	assert.PanicsWithValue(t, "cart: store used before cart.Open", func() {
		s.Add(context.Background(), product("A", 1))
	})
}
