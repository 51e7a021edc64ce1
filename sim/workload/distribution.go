package workload

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/iosched-sim/iosched-sim/sim"
)

// SizeSampler generates request extents in bytes.
type SizeSampler interface {
	// Sample returns a positive size rounded up to a whole sector.
	Sample(rng *rand.Rand) int64
}

// ConstantSizeSampler always returns the same size.
type ConstantSizeSampler struct {
	bytes int64
}

func (s *ConstantSizeSampler) Sample(_ *rand.Rand) int64 {
	return s.bytes
}

// UniformSizeSampler draws sizes uniformly from [min, max].
type UniformSizeSampler struct {
	min, max int64
}

func (s *UniformSizeSampler) Sample(rng *rand.Rand) int64 {
	if s.max <= s.min {
		return s.min
	}
	return sectorRound(s.min + rng.Int63n(s.max-s.min+1))
}

// ExponentialSizeSampler draws exponentially-distributed sizes clamped to [min, max].
type ExponentialSizeSampler struct {
	mean     float64
	min, max int64
}

func (s *ExponentialSizeSampler) Sample(rng *rand.Rand) int64 {
	v := int64(math.Round(rng.ExpFloat64() * s.mean))
	return sectorRound(min(max(v, s.min), s.max))
}

// NewSizeSampler creates a SizeSampler from a DistSpec.
//
//	constant:    bytes
//	uniform:     min, max
//	exponential: mean, min (default one sector), max (default 1 MiB)
func NewSizeSampler(spec DistSpec) (SizeSampler, error) {
	p := spec.Params
	switch spec.Type {
	case "constant":
		b := int64(p["bytes"])
		if b <= 0 {
			return nil, errors.Errorf("constant size requires positive bytes, got %d", b)
		}
		return &ConstantSizeSampler{bytes: sectorRound(b)}, nil
	case "uniform":
		lo, hi := int64(p["min"]), int64(p["max"])
		if lo <= 0 || hi < lo {
			return nil, errors.Errorf("uniform size requires 0 < min <= max, got min=%d max=%d", lo, hi)
		}
		return &UniformSizeSampler{min: lo, max: hi}, nil
	case "exponential":
		mean := p["mean"]
		if mean <= 0 {
			return nil, errors.Errorf("exponential size requires positive mean, got %f", mean)
		}
		lo, hi := int64(p["min"]), int64(p["max"])
		if lo <= 0 {
			lo = sim.SectorSize
		}
		if hi <= 0 {
			hi = 1 << 20
		}
		if hi < lo {
			return nil, errors.Errorf("exponential size requires min <= max, got min=%d max=%d", lo, hi)
		}
		return &ExponentialSizeSampler{mean: mean, min: lo, max: hi}, nil
	default:
		return nil, errors.Errorf("unknown size distribution %q", spec.Type)
	}
}

func sectorRound(b int64) int64 {
	if b < sim.SectorSize {
		return sim.SectorSize
	}
	return (b + sim.SectorSize - 1) / sim.SectorSize * sim.SectorSize
}
