package display

import "iter"

// GraphCapacity is the number of points kept by a Graph. At 2 pixels per
// point it spans the full 128 pixel display width.
const GraphCapacity = 64

// Graph is a fixed capacity ring of graph points (pixel rows). Once full,
// each Append silently overwrites the oldest point.
//
// The zero value is an empty graph ready to use.
type Graph struct {
	points [GraphCapacity]uint8
	first  uint8 // slot of the oldest point
	count  uint8
}

// Clear drops all points.
func (g *Graph) Clear() {
	g.first = 0
	g.count = 0
}

// Append adds y as the newest point.
func (g *Graph) Append(y uint8) {
	if g.count == GraphCapacity {
		g.points[g.first] = y
		g.first = next(g.first)
		return
	}
	slot := g.first + g.count
	if slot >= GraphCapacity {
		slot -= GraphCapacity
	}
	g.points[slot] = y
	g.count++
}

// Len returns the number of stored points.
func (g *Graph) Len() int {
	return int(g.count)
}

// Points yields the stored points from oldest to newest. The sequence can
// be ranged over any number of times.
func (g *Graph) Points() iter.Seq[uint8] {
	return func(yield func(uint8) bool) {
		idx := g.first
		for i := uint8(0); i < g.count; i++ {
			if !yield(g.points[idx]) {
				return
			}
			idx = next(idx)
		}
	}
}

func next(idx uint8) uint8 {
	idx++
	if idx >= GraphCapacity {
		return 0
	}
	return idx
}
