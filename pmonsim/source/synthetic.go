package source

import (
	"math/rand/v2"
	"time"

	"github.com/harveysanders/pmon/pmonsim/config"
)

// Synthetic replays a looping profile of current levels with random
// jitter. The same seed produces the same jitter sequence.
type Synthetic struct {
	segments []config.SegmentConfig
	period   time.Duration
	rng      *rand.Rand

	now   func() time.Time
	start time.Time
}

// NewSynthetic returns a Synthetic source starting now.
func NewSynthetic(cfg config.SyntheticConfig) *Synthetic {
	return newSynthetic(cfg, time.Now)
}

func newSynthetic(cfg config.SyntheticConfig, now func() time.Time) *Synthetic {
	s := &Synthetic{
		segments: cfg.Segments,
		rng:      rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)>>1|1)),
		now:      now,
		start:    now(),
	}
	for _, seg := range cfg.Segments {
		s.period += time.Duration(seg.DurationMs) * time.Millisecond
	}
	return s
}

// Read returns the current of the segment active now.
func (s *Synthetic) Read() (uint16, error) {
	seg, ok := s.segment(s.now().Sub(s.start))
	if !ok {
		return 0, nil
	}
	v := float64(seg.CurrentMA)
	if seg.JitterMA > 0 {
		v += float64(s.rng.IntN(2*seg.JitterMA+1) - seg.JitterMA)
	}
	return clamp(v), nil
}

// Close implements Source.
func (s *Synthetic) Close() error {
	return nil
}

func (s *Synthetic) segment(elapsed time.Duration) (config.SegmentConfig, bool) {
	if s.period <= 0 {
		return config.SegmentConfig{}, false
	}
	elapsed %= s.period
	for _, seg := range s.segments {
		d := time.Duration(seg.DurationMs) * time.Millisecond
		if elapsed < d {
			return seg, true
		}
		elapsed -= d
	}
	return config.SegmentConfig{}, false
}
