package workload

import (
	"math/rand"

	"github.com/iosched-sim/iosched-sim/sim"
)

// OffsetSampler picks the byte offset of a client's next request.
// The returned offset is sector aligned and, together with length, stays
// inside the pattern's [start, start+span) window whenever length fits.
type OffsetSampler interface {
	Next(rng *rand.Rand, length int64) int64
}

// sequentialSampler walks the window front to back, wrapping at the end.
type sequentialSampler struct {
	start, span int64
	cursor      int64 // relative to start
	step        int64 // 0 = advance by the request length
}

func (s *sequentialSampler) Next(_ *rand.Rand, length int64) int64 {
	if s.cursor+length > s.span {
		s.cursor = 0
	}
	off := s.start + s.cursor
	if s.step > 0 {
		s.cursor += s.step
	} else {
		s.cursor += length
	}
	if s.cursor >= s.span {
		s.cursor = 0
	}
	return off
}

// randomSampler picks a uniformly random sector in the window. With a hot
// region configured, hotProbability of requests land in its first
// hotFraction of the window.
type randomSampler struct {
	start, span    int64
	hotFraction    float64
	hotProbability float64
}

func (s *randomSampler) Next(rng *rand.Rand, length int64) int64 {
	span := s.span
	if s.hotFraction > 0 && rng.Float64() < s.hotProbability {
		span = int64(float64(s.span) * s.hotFraction)
	}
	return s.start + randomSector(rng, span, length)
}

func randomSector(rng *rand.Rand, span, length int64) int64 {
	sectors := (span - length) / sim.SectorSize
	if sectors <= 0 {
		return 0
	}
	return rng.Int63n(sectors+1) * sim.SectorSize
}

// NewOffsetSampler creates an OffsetSampler from a validated PatternSpec.
func NewOffsetSampler(p PatternSpec) OffsetSampler {
	switch p.Type {
	case "sequential":
		return &sequentialSampler{start: p.Start, span: p.Span}
	case "strided":
		return &sequentialSampler{start: p.Start, span: p.Span, step: p.Stride}
	case "hotspot":
		return &randomSampler{start: p.Start, span: p.Span, hotFraction: p.HotFraction, hotProbability: p.HotProbability}
	default:
		return &randomSampler{start: p.Start, span: p.Span}
	}
}
