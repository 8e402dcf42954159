package mapengine

import (
	"fmt"
	"strings"
)

type pathSegment struct {
	X1, Y1, X2, Y2 float64
}

// PathAggregate is every edge of one render layer collapsed into a single
// drawable geometry. Drawing thousands of individual line primitives is
// prohibitively slow; one aggregate keeps the draw-call count constant no
// matter how many pairs are visible.
type PathAggregate struct {
	// Data is the concatenated path descriptor, one "move-to A, line-to B"
	// per pair whose endpoints both project.
	Data string

	segs []pathSegment
}

// Len reports how many segments made it into the aggregate.
func (a *PathAggregate) Len() int { return len(a.segs) }

// AggregatePath projects every pair and concatenates the resulting segments.
// Pairs with an endpoint outside the projection domain are skipped silently.
func AggregatePath(pairs []PairRecord, proj *Projection) *PathAggregate {
	var b strings.Builder
	segs := make([]pathSegment, 0, len(pairs))
	for _, p := range pairs {
		x1, y1, ok1 := proj.Project(p.Lng1, p.Lat1)
		x2, y2, ok2 := proj.Project(p.Lng2, p.Lat2)
		if !ok1 || !ok2 {
			continue
		}
		fmt.Fprintf(&b, "M%.1f %.1fL%.1f %.1f", x1, y1, x2, y2)
		segs = append(segs, pathSegment{X1: x1, Y1: y1, X2: x2, Y2: y2})
	}
	return &PathAggregate{Data: b.String(), segs: segs}
}

// PairsTouching returns the subset of pairs that have node as an endpoint,
// in the order they appear in pairs.
func PairsTouching(pairs []PairRecord, node *CityNode) []PairRecord {
	key := node.Key()
	var out []PairRecord
	for _, p := range pairs {
		if CoordKey(p.Lat1, p.Lng1) == key || CoordKey(p.Lat2, p.Lng2) == key {
			out = append(out, p)
		}
	}
	return out
}
