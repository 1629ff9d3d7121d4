package cart

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitrine/internal/domain"
)

func pizza(qty int) domain.AddPayload {
	return domain.AddPayload{
		ProductID:   "p1",
		Name:        "Pizza",
		UnitPrice:   1000,
		Quantity:    qty,
		Additionals: []domain.AdditionalSnapshot{{ID: "a1", Name: "Cheese", Price: 200}},
	}
}

func TestAddMergesSameConfiguration(t *testing.T) {
	s := NewStore()
	s.Add(pizza(0))
	s.Add(pizza(2))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "p1::a1::", lines[0].LineID)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, int64(1000), lines[0].UnitPrice)
	assert.Equal(t, int64(3000), s.Subtotal())
}

func TestAddMergeKeepsOriginalSnapshot(t *testing.T) {
	s := NewStore()
	s.Add(pizza(1))

	later := pizza(1)
	later.UnitPrice = 1500
	later.Name = "Pizza (new)"
	later.Additionals = []domain.AdditionalSnapshot{{ID: "a1", Name: "Cheese", Price: 700}}
	s.Add(later)

	line, ok := s.Line("p1::a1::")
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, int64(1000), line.UnitPrice)
	assert.Equal(t, "Pizza", line.Name)
	assert.Equal(t, int64(200), line.Additionals[0].Price)
}

func TestAddNotesSplitLines(t *testing.T) {
	s := NewStore()
	a := pizza(1)
	a.ItemNotes = "no onion"
	b := pizza(1)
	b.ItemNotes = "extra onion"
	s.Add(a)
	s.Add(b)

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.NotEqual(t, lines[0].LineID, lines[1].LineID)
}

func TestAddNotesCaseInsensitive(t *testing.T) {
	s := NewStore()
	a := pizza(1)
	a.ItemNotes = "No Onion"
	b := pizza(1)
	b.ItemNotes = "  no onion"
	s.Add(a)
	s.Add(b)

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "No Onion", lines[0].ItemNotes)
}

func TestAddCustomNeverMerges(t *testing.T) {
	s := NewStore()
	p := domain.AddPayload{
		ProductID: "cake",
		Name:      "Birthday cake",
		UnitPrice: 8000,
		IsCustom:  true,
		Custom:    &domain.CustomDetails{Name: "Birthday cake", Weight: "2kg"},
	}
	s.Add(p)
	s.Add(p)

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.NotEqual(t, lines[0].LineID, lines[1].LineID)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, "2kg", lines[1].Custom.Weight)
}

func TestDecrementFloorRemovesLine(t *testing.T) {
	s := NewStore()
	s.Add(pizza(2))

	s.Decrement("p1::a1::")
	line, ok := s.Line("p1::a1::")
	require.True(t, ok)
	assert.Equal(t, 1, line.Quantity)

	s.Decrement("p1::a1::")
	_, ok = s.Line("p1::a1::")
	assert.False(t, ok)
	assert.Empty(t, s.Lines())
}

func TestUnknownLineIsNoop(t *testing.T) {
	s := NewStore()
	s.Add(pizza(1))
	before := s.Snapshot()

	s.Increment("missing")
	s.Decrement("missing")
	s.RemoveLine("missing")

	after := s.Snapshot()
	assert.Equal(t, before, after)
}

func TestRemoveKeepsOrder(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"a", "b", "c"} {
		s.Add(domain.AddPayload{ProductID: id, Name: id, UnitPrice: 100})
	}
	s.RemoveLine("b::::")

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "a::::", lines[0].LineID)
	assert.Equal(t, "c::::", lines[1].LineID)
}

func TestLinesReturnsCopies(t *testing.T) {
	s := NewStore()
	s.Add(pizza(1))

	lines := s.Lines()
	lines[0].Quantity = 99
	lines[0].Additionals[0].Price = 0

	line, _ := s.Line("p1::a1::")
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, int64(200), line.Additionals[0].Price)
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	s := NewStore()
	var got []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		got = append(got, snap)
		// listeners may read the store without deadlocking
		_ = s.Subtotal()
	})

	s.Add(pizza(1))
	s.Increment("p1::a1::")
	s.Increment("missing")
	s.Clear()
	s.Clear()

	require.Len(t, got, 3)
	assert.Equal(t, uint64(1), got[0].Version)
	assert.Equal(t, int64(2000), got[1].Subtotal)
	assert.Empty(t, got[2].Lines)

	unsubscribe()
	s.Add(pizza(1))
	assert.Len(t, got, 3)
}

func TestSubtotalNeverDesyncs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	products := []string{"p1", "p2", "p3"}
	additionals := []domain.AdditionalSnapshot{{ID: "a1", Price: 100}, {ID: "a2", Price: 250}}
	notes := []string{"", "no ice", "NO ICE "}

	for run := 0; run < 200; run++ {
		s := NewStore()
		for step := 0; step < 40; step++ {
			lines := s.Lines()
			pick := func() string {
				if len(lines) == 0 || rng.Intn(5) == 0 {
					return fmt.Sprintf("ghost-%d", step)
				}
				return lines[rng.Intn(len(lines))].LineID
			}
			switch rng.Intn(5) {
			case 0, 1:
				p := domain.AddPayload{
					ProductID: products[rng.Intn(len(products))],
					Name:      "item",
					UnitPrice: int64(rng.Intn(5000)),
					Quantity:  rng.Intn(4),
					ItemNotes: notes[rng.Intn(len(notes))],
					IsCustom:  rng.Intn(6) == 0,
				}
				if rng.Intn(2) == 0 {
					p.Additionals = additionals[:rng.Intn(len(additionals)+1)]
				}
				s.Add(p)
			case 2:
				s.Increment(pick())
			case 3:
				s.Decrement(pick())
			case 4:
				s.RemoveLine(pick())
			}

			snap := s.Snapshot()
			var want int64
			for _, l := range snap.Lines {
				require.GreaterOrEqual(t, l.Quantity, 1)
				want += l.UnitPrice * int64(l.Quantity)
			}
			require.Equal(t, want, snap.Subtotal)
			require.Equal(t, want, s.Subtotal())
		}
	}
}

func TestAddRefusesQuantityOverLimit(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(pizza(domain.MaxLineQuantity)))

	var ve *domain.ValidationError
	err := s.Add(pizza(2))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity", ve.Field)

	line, ok := s.Line("p1::a1::")
	require.True(t, ok)
	assert.Equal(t, domain.MaxLineQuantity, line.Quantity)
	assert.Equal(t, int64(1000*domain.MaxLineQuantity), s.Subtotal())

	before := s.Snapshot().Version
	require.Error(t, s.Add(pizza(math.MaxInt)))
	assert.Equal(t, before, s.Snapshot().Version)
	assert.Len(t, s.Lines(), 1)
}

func TestIncrementStopsAtLimit(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(pizza(domain.MaxLineQuantity-1)))

	require.NoError(t, s.Increment("p1::a1::"))
	require.Error(t, s.Increment("p1::a1::"))
	require.NoError(t, s.Increment("missing"))

	line, _ := s.Line("p1::a1::")
	assert.Equal(t, domain.MaxLineQuantity, line.Quantity)
}
