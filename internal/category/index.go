package category

import (
	"github.com/finanzio/statement-core/internal/domain"
)

// Index is a read-only lookup over the caller-supplied category taxonomy.
// Names are matched exactly and case-sensitively, scoped to a kind: an income
// category never resolves an expense suggestion and vice versa.
type Index struct {
	ids    map[domain.Kind]map[string]string
	names  map[domain.Kind][]string
	labels map[domain.Kind][]string
}

// NewIndex builds an index from a category list. Later duplicates of the same
// (kind, name) pair are ignored; the first entry wins.
func NewIndex(refs []domain.CategoryRef) *Index {
	ix := &Index{
		ids:    make(map[domain.Kind]map[string]string),
		names:  make(map[domain.Kind][]string),
		labels: make(map[domain.Kind][]string),
	}
	for _, ref := range refs {
		byName := ix.ids[ref.Kind]
		if byName == nil {
			byName = make(map[string]string)
			ix.ids[ref.Kind] = byName
		}
		if _, exists := byName[ref.Name]; exists {
			continue
		}
		byName[ref.Name] = ref.ID
		ix.names[ref.Kind] = append(ix.names[ref.Kind], ref.Name)

		label := `"` + ref.Name + `"`
		if ref.IconHint != "" {
			label += " " + ref.IconHint
		}
		ix.labels[ref.Kind] = append(ix.labels[ref.Kind], label)
	}
	return ix
}

// Resolve returns the category id for an exact name match within the given
// kind. The second result is false when nothing matches.
func (ix *Index) Resolve(kind domain.Kind, name string) (string, bool) {
	byName, ok := ix.ids[kind]
	if !ok {
		return "", false
	}
	id, ok := byName[name]
	return id, ok
}

// Names returns the category names of a kind in insertion order, for prompt
// construction.
func (ix *Index) Names(kind domain.Kind) []string {
	return ix.names[kind]
}

// Labels returns quoted category names with their icon hints appended, the
// shape the extraction prompt embeds.
func (ix *Index) Labels(kind domain.Kind) []string {
	return ix.labels[kind]
}

// Len reports the total number of indexed categories.
func (ix *Index) Len() int {
	n := 0
	for _, byName := range ix.ids {
		n += len(byName)
	}
	return n
}
