package fixture

import (
	"fmt"
	"strings"
)

// Summary holds aggregate counts over a generated forest
type Summary struct {
	Total    int          `json:"total"`
	Roots    int          `json:"roots"`
	ByKind   map[Kind]int `json:"by_kind"`
	MaxDepth int          `json:"max_depth"`
}

// Summarize counts records per kind and measures the deepest level. Depth is
// counted in levels, so a forest of roots only has MaxDepth 1.
func Summarize(records []Record) Summary {
	s := Summary{Total: len(records), ByKind: make(map[Kind]int)}
	depth := make(map[string]int, len(records))

	for i := range records {
		rec := &records[i]
		s.ByKind[rec.Kind]++

		d := 1
		if rec.IsRoot() {
			s.Roots++
		} else if pd, ok := depth[*rec.ParentID]; ok {
			d = pd + 1
		}
		depth[rec.ObjectID] = d
		if d > s.MaxDepth {
			s.MaxDepth = d
		}
	}
	return s
}

// String renders the summary on one line, kinds sorted by name
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d records, %d roots, depth %d", s.Total, s.Roots, s.MaxDepth)
	for _, kind := range DefaultAdjacency().Kinds() {
		if n := s.ByKind[kind]; n > 0 {
			fmt.Fprintf(&b, ", %s=%d", kind, n)
		}
	}
	return b.String()
}
