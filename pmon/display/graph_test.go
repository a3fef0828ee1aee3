package display

import (
	"slices"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestGraphEmpty(t *testing.T) {
	c := qt.New(t)

	var g Graph
	c.Assert(g.Len(), qt.Equals, 0)
	c.Assert(slices.Collect(g.Points()), qt.HasLen, 0)
}

func TestGraphAppendInOrder(t *testing.T) {
	c := qt.New(t)

	var g Graph
	g.Append(40)
	g.Append(41)
	g.Append(42)

	c.Assert(g.Len(), qt.Equals, 3)
	c.Assert(slices.Collect(g.Points()), qt.DeepEquals, []uint8{40, 41, 42})
}

func TestGraphOverwritesOldest(t *testing.T) {
	c := qt.New(t)

	var g Graph
	for i := 0; i < GraphCapacity+6; i++ {
		g.Append(uint8(i))
	}

	want := make([]uint8, 0, GraphCapacity)
	for i := 6; i < GraphCapacity+6; i++ {
		want = append(want, uint8(i))
	}
	c.Assert(g.Len(), qt.Equals, GraphCapacity)
	c.Assert(slices.Collect(g.Points()), qt.DeepEquals, want)

	// Iterating twice yields the same points.
	c.Assert(slices.Collect(g.Points()), qt.DeepEquals, want)
}

func TestGraphClear(t *testing.T) {
	c := qt.New(t)

	var g Graph
	for i := 0; i < 100; i++ {
		g.Append(50)
	}
	g.Clear()
	c.Assert(g.Len(), qt.Equals, 0)
	c.Assert(slices.Collect(g.Points()), qt.HasLen, 0)

	g.Append(7)
	c.Assert(slices.Collect(g.Points()), qt.DeepEquals, []uint8{7})
}

func TestGraphPointsStopsEarly(t *testing.T) {
	c := qt.New(t)

	var g Graph
	for i := 0; i < 10; i++ {
		g.Append(uint8(i))
	}
	var got []uint8
	for y := range g.Points() {
		if y == 3 {
			break
		}
		got = append(got, y)
	}
	c.Assert(got, qt.DeepEquals, []uint8{0, 1, 2})
}

func TestGraphMappedPointsOrder(t *testing.T) {
	c := qt.New(t)

	var g Graph
	g.Append(CurrentToY(0))
	g.Append(CurrentToY(2000))

	points := slices.Collect(g.Points())
	c.Assert(points, qt.HasLen, 2)
	c.Assert(points[0] > points[1], qt.IsTrue)
}
