package reference

import (
	"fmt"
	"sort"
)

// Reference points at one item (ayat) inside a collection (surah).
type Reference struct {
	Collection int
	Item       int
}

func (r Reference) String() string {
	return fmt.Sprintf("%d:%d", r.Collection, r.Item)
}

// Less orders references by collection, then item.
func (r Reference) Less(other Reference) bool {
	if r.Collection != other.Collection {
		return r.Collection < other.Collection
	}
	return r.Item < other.Item
}

// Valid reports whether both components are positive.
func (r Reference) Valid() bool {
	return r.Collection > 0 && r.Item > 0
}

// Canonicalize returns the deduplicated references in ascending order.
// The input slice is not modified.
func Canonicalize(refs []Reference) []Reference {
	seen := make(map[Reference]struct{}, len(refs))
	out := make([]Reference, 0, len(refs))
	for _, r := range refs {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
