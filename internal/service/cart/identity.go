package cart

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"vitrine/internal/domain"
)

const keySep = "::"

// LineID computes the identity key of an add request. Two non-custom
// payloads share a key iff they have the same product, the same set of
// additional ids and the same notes (trimmed, case-insensitive). Quantity
// never takes part. Custom payloads always get a fresh UUID.
func LineID(p domain.AddPayload) string {
	if p.IsCustom {
		return uuid.NewString()
	}
	ids := make([]string, 0, len(p.Additionals))
	for _, a := range p.Additionals {
		ids = append(ids, a.ID)
	}
	sort.Strings(ids)
	return p.ProductID + keySep + strings.Join(ids, ",") + keySep + normalizeNotesKey(p.ItemNotes)
}

// NormalizeNotes trims item notes; an all-blank value becomes empty.
func NormalizeNotes(notes string) string {
	return strings.TrimSpace(notes)
}

func normalizeNotesKey(notes string) string {
	return strings.ToLower(NormalizeNotes(notes))
}
