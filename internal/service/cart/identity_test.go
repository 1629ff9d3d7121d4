package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitrine/internal/domain"
)

func TestLineIDFormat(t *testing.T) {
	cases := []struct {
		name    string
		payload domain.AddPayload
		want    string
	}{
		{"bare product", domain.AddPayload{ProductID: "p1"}, "p1::::"},
		{"single additional", domain.AddPayload{ProductID: "p1", Additionals: []domain.AdditionalSnapshot{{ID: "a1"}}}, "p1::a1::"},
		{
			"sorted additionals and notes",
			domain.AddPayload{
				ProductID:   "p2",
				Additionals: []domain.AdditionalSnapshot{{ID: "b"}, {ID: "a"}, {ID: "c"}},
				ItemNotes:   "  No Onion ",
			},
			"p2::a,b,c::no onion",
		},
		{"blank notes", domain.AddPayload{ProductID: "p3", ItemNotes: "   \t"}, "p3::::"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LineID(tc.payload))
		})
	}
}

func TestLineIDStableUnderPermutation(t *testing.T) {
	a := domain.AddPayload{
		ProductID:   "p1",
		Additionals: []domain.AdditionalSnapshot{{ID: "x"}, {ID: "m"}, {ID: "a"}},
		ItemNotes:   "extra crispy",
	}
	b := a
	b.Additionals = []domain.AdditionalSnapshot{{ID: "a"}, {ID: "x"}, {ID: "m"}}
	b.ItemNotes = "EXTRA CRISPY "
	b.Quantity = 9

	require.Equal(t, LineID(a), LineID(a))
	assert.Equal(t, LineID(a), LineID(b))
}

func TestLineIDCustomIsUnique(t *testing.T) {
	p := domain.AddPayload{ProductID: "p1", Name: "Cake", UnitPrice: 5000, IsCustom: true}
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := LineID(p)
		require.False(t, seen[id], "custom id reused: %s", id)
		seen[id] = true
	}
}
