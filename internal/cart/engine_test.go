package cart

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taxRate = decimal.RequireFromString("0.15")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(id, price string) CartItem {
	return CartItem{ID: id, ProductID: id, Name: "Item " + id, Price: dec(price), Quantity: 1}
}

func reduceAll(s State, actions ...Action) State {
	for _, a := range actions {
		s = Reduce(s, a)
	}
	return s
}

func TestReduce_AddItemMergesById(t *testing.T) {
	s := reduceAll(NewState(taxRate),
		AddItem{Item: item("7", "10")},
		AddItem{Item: item("7", "10")},
		AddItem{Item: item("7", "10")},
	)

	require.Equal(t, 1, s.Len())
	got, ok := s.Find("7")
	require.True(t, ok)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, 3, s.ItemCount())
}

func TestReduce_AddItemUniquenessAcrossIds(t *testing.T) {
	ids := []string{"a", "b", "a", "c", "b", "a"}

	s := NewState(taxRate)
	for _, id := range ids {
		s = Reduce(s, AddItem{Item: item(id, "1")})
	}

	counts := map[string]int{"a": 3, "b": 2, "c": 1}
	require.Equal(t, len(counts), s.Len())
	for id, want := range counts {
		got, ok := s.Find(id)
		require.True(t, ok, id)
		assert.Equal(t, want, got.Quantity, id)
	}

	items := s.Items()
	assert.Equal(t, []string{"a", "b", "c"}, []string{items[0].ID, items[1].ID, items[2].ID})
}

func TestReduce_AddItemKeepsFrozenPrice(t *testing.T) {
	s := Reduce(NewState(taxRate), AddItem{Item: item("1", "45.99")})

	repriced := item("1", "99.00")
	repriced.Name = "Renamed"
	s = Reduce(s, AddItem{Item: repriced})

	got, _ := s.Find("1")
	assert.True(t, dec("45.99").Equal(got.Price))
	assert.Equal(t, "Item 1", got.Name)
	assert.Equal(t, 2, got.Quantity)
}

func TestReduce_AddItemIgnoresIncomingQuantity(t *testing.T) {
	in := item("1", "5")
	in.Quantity = 40

	s := Reduce(NewState(taxRate), AddItem{Item: in})

	got, _ := s.Find("1")
	assert.Equal(t, 1, got.Quantity)
}

func TestReduce_RemoveItem(t *testing.T) {
	s := reduceAll(NewState(taxRate), AddItem{Item: item("1", "5")}, AddItem{Item: item("2", "5")})

	s = Reduce(s, RemoveItem{ID: "1"})
	assert.Equal(t, 1, s.Len())
	_, ok := s.Find("1")
	assert.False(t, ok)

	before := s.Items()
	s = Reduce(s, RemoveItem{ID: "missing"})
	assert.Equal(t, before, s.Items())
}

func TestReduce_UpdateQuantity(t *testing.T) {
	base := reduceAll(NewState(taxRate), AddItem{Item: item("1", "5")}, AddItem{Item: item("1", "5")})

	t.Run("Replace", func(t *testing.T) {
		s := Reduce(base, UpdateQuantity{ID: "1", Quantity: 9})
		got, _ := s.Find("1")
		assert.Equal(t, 9, got.Quantity)
	})

	t.Run("Zero removes", func(t *testing.T) {
		s := Reduce(base, UpdateQuantity{ID: "1", Quantity: 0})
		assert.True(t, s.IsEmpty())
	})

	t.Run("Negative removes", func(t *testing.T) {
		s := Reduce(base, UpdateQuantity{ID: "1", Quantity: -4})
		assert.True(t, s.IsEmpty())
	})

	t.Run("Unknown id is a no-op", func(t *testing.T) {
		s := Reduce(base, UpdateQuantity{ID: "x", Quantity: 3})
		assert.Equal(t, base.Items(), s.Items())
	})
}

func TestReduce_ClearCartKeepsLastOrder(t *testing.T) {
	r := Receipt{OrderID: "ORD-1", ItemCount: 2, Total: dec("11.5"), CreatedAt: time.Now()}
	s := reduceAll(NewState(taxRate),
		AddItem{Item: item("1", "5")},
		SetLastOrder{Receipt: r},
		ClearCart{},
	)

	assert.True(t, s.IsEmpty())
	got, ok := s.LastOrder()
	require.True(t, ok)
	assert.Equal(t, "ORD-1", got.OrderID)
}

func TestReduce_SetLastOrderLeavesItems(t *testing.T) {
	s := Reduce(NewState(taxRate), AddItem{Item: item("1", "5")})
	_, ok := s.LastOrder()
	assert.False(t, ok)

	next := Reduce(s, SetLastOrder{Receipt: Receipt{OrderID: "ORD-2"}})
	assert.Equal(t, s.Items(), next.Items())

	_, ok = s.LastOrder()
	assert.False(t, ok, "previous state must not observe the receipt")
}

func TestReduce_LoadCartReplaces(t *testing.T) {
	s := Reduce(NewState(taxRate), AddItem{Item: item("old", "1")})

	loaded := []CartItem{
		{ID: "1", Price: dec("2"), Quantity: 3},
		{ID: "2", Price: dec("4"), Quantity: 0},
		{ID: "3", Price: dec("1"), Quantity: 1},
	}
	s = Reduce(s, LoadCart{Items: loaded})

	require.Equal(t, 2, s.Len())
	_, ok := s.Find("old")
	assert.False(t, ok)
	assert.Equal(t, 4, s.ItemCount())
}

func TestReduce_NilActionAndZeroState(t *testing.T) {
	var zero State
	s := Reduce(zero, nil)
	assert.True(t, s.IsEmpty())

	s = Reduce(zero, AddItem{Item: item("1", "3")})
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Tax().IsZero(), "zero state has a zero tax rate")
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	s0 := Reduce(NewState(taxRate), AddItem{Item: item("1", "5")})
	_ = Reduce(s0, AddItem{Item: item("1", "5")})
	_ = Reduce(s0, UpdateQuantity{ID: "1", Quantity: 50})

	got, _ := s0.Find("1")
	assert.Equal(t, 1, got.Quantity)

	items := s0.Items()
	items[0].Quantity = 100
	got, _ = s0.Find("1")
	assert.Equal(t, 1, got.Quantity)
}

func TestState_Totals(t *testing.T) {
	s := NewState(taxRate)
	s = Reduce(s, AddItem{Item: item("a", "45.99")})
	s = Reduce(s, AddItem{Item: item("a", "45.99")})
	s = Reduce(s, AddItem{Item: item("b", "29.99")})

	assert.True(t, dec("121.97").Equal(s.Subtotal()))
	assert.True(t, dec("18.2955").Equal(s.Tax()))
	assert.True(t, dec("140.2655").Equal(s.Total()))
	assert.True(t, s.Total().Equal(s.Subtotal().Add(s.Tax())))
	assert.Equal(t, 3, s.ItemCount())

	t.Run("Totals track every transition", func(t *testing.T) {
		actions := []Action{
			UpdateQuantity{ID: "a", Quantity: 5},
			RemoveItem{ID: "b"},
			AddItem{Item: item("c", "0.10")},
			UpdateQuantity{ID: "c", Quantity: -1},
			ClearCart{},
		}
		cur := s
		for _, a := range actions {
			cur = Reduce(cur, a)

			expected := decimal.Zero
			for _, it := range cur.Items() {
				expected = expected.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
			}
			assert.True(t, expected.Equal(cur.Subtotal()), a.Name())
			assert.True(t, cur.Tax().Equal(cur.Subtotal().Mul(taxRate)), a.Name())
			assert.True(t, cur.Total().Equal(cur.Subtotal().Add(cur.Tax())), a.Name())
		}
	})
}

func TestState_View(t *testing.T) {
	s := reduceAll(NewState(taxRate),
		AddItem{Item: item("a", "10")},
		SetLastOrder{Receipt: Receipt{OrderID: "ORD-9"}},
	)

	v := s.View()
	assert.Len(t, v.Items, 1)
	assert.Equal(t, 1, v.ItemCount)
	assert.True(t, dec("11.5").Equal(v.Total))
	require.NotNil(t, v.LastOrder)
	assert.Equal(t, "ORD-9", v.LastOrder.OrderID)
}

func TestActionNames(t *testing.T) {
	assert.Equal(t, "ADD_ITEM", AddItem{}.Name())
	assert.Equal(t, "REMOVE_ITEM", RemoveItem{}.Name())
	assert.Equal(t, "UPDATE_QUANTITY", UpdateQuantity{}.Name())
	assert.Equal(t, "CLEAR_CART", ClearCart{}.Name())
	assert.Equal(t, "SET_LAST_ORDER", SetLastOrder{}.Name())
	assert.Equal(t, "LOAD_CART", LoadCart{}.Name())
}

func TestItemID(t *testing.T) {
	assert.Equal(t, "p-1#0", ItemID("p-1", 0))
	assert.NotEqual(t, ItemID("p-1", 0), ItemID("p-1", 1))
}
