package source

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/harveysanders/pmon/pmonsim/config"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func TestSyntheticSegments(t *testing.T) {
	c := qt.New(t)

	clk := &clock{t: time.Unix(0, 0)}
	s := newSynthetic(config.SyntheticConfig{Segments: []config.SegmentConfig{
		{CurrentMA: 100, DurationMs: 1000},
		{CurrentMA: 500, DurationMs: 500},
	}}, clk.now)

	steps := []struct {
		at   time.Duration
		want uint16
	}{
		{at: 0, want: 100},
		{at: 999 * time.Millisecond, want: 100},
		{at: time.Second, want: 500},
		{at: 1499 * time.Millisecond, want: 500},
		{at: 1500 * time.Millisecond, want: 100},
		{at: 4 * time.Second, want: 500},
	}
	for _, step := range steps {
		clk.t = time.Unix(0, 0).Add(step.at)
		got, err := s.Read()
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, step.want, qt.Commentf("at %v", step.at))
	}
}

func TestSyntheticJitter(t *testing.T) {
	c := qt.New(t)

	cfg := config.SyntheticConfig{
		Seed:     42,
		Segments: []config.SegmentConfig{{CurrentMA: 200, DurationMs: 1000, JitterMA: 20}},
	}
	clk := &clock{t: time.Unix(0, 0)}
	a := newSynthetic(cfg, clk.now)
	b := newSynthetic(cfg, clk.now)

	for i := 0; i < 100; i++ {
		va, err := a.Read()
		c.Assert(err, qt.IsNil)
		vb, _ := b.Read()
		c.Assert(va, qt.Equals, vb)
		c.Assert(va >= 180 && va <= 220, qt.IsTrue, qt.Commentf("sample %d: %d", i, va))
	}
}

func TestSyntheticJitterClampsAtZero(t *testing.T) {
	c := qt.New(t)

	clk := &clock{t: time.Unix(0, 0)}
	s := newSynthetic(config.SyntheticConfig{
		Segments: []config.SegmentConfig{{CurrentMA: 0, DurationMs: 10, JitterMA: 50}},
	}, clk.now)
	for i := 0; i < 50; i++ {
		v, err := s.Read()
		c.Assert(err, qt.IsNil)
		c.Assert(v <= 50, qt.IsTrue)
	}
}

func TestSyntheticEmpty(t *testing.T) {
	c := qt.New(t)

	s := NewSynthetic(config.SyntheticConfig{})
	v, err := s.Read()
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, uint16(0))
	c.Assert(s.Close(), qt.IsNil)
}

func TestBuildSynthetic(t *testing.T) {
	c := qt.New(t)

	src, err := Build(config.SimConfig{Source: config.SourceSynthetic})
	c.Assert(err, qt.IsNil)
	_, ok := src.(*Synthetic)
	c.Assert(ok, qt.IsTrue)

	_, err = Build(config.SimConfig{Source: "serial"})
	c.Assert(err, qt.ErrorMatches, `unknown source "serial"`)
}
