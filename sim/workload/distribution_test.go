package workload

import (
	"math"
	"math/rand"
	"testing"

	"github.com/iosched-sim/iosched-sim/sim"
)

func TestConstantSizeSampler_RoundsUpToSector(t *testing.T) {
	s, err := NewSizeSampler(DistSpec{Type: "constant", Params: map[string]float64{"bytes": 1000}})
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Sample(nil); got != 1024 {
		t.Errorf("Sample = %d, want 1024", got)
	}
}

func TestUniformSizeSampler_StaysInRangeAndAligned(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s, err := NewSizeSampler(DistSpec{Type: "uniform", Params: map[string]float64{"min": 4096, "max": 65536}})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10000; i++ {
		v := s.Sample(rng)
		if v < 4096 || v > 65536 {
			t.Fatalf("sample %d: %d outside [4096, 65536]", i, v)
		}
		if v%sim.SectorSize != 0 {
			t.Fatalf("sample %d: %d not sector aligned", i, v)
		}
	}
}

func TestExponentialSizeSampler_MeanMatchesParam(t *testing.T) {
	// GIVEN a mean far from both clamps
	rng := rand.New(rand.NewSource(42))
	s, err := NewSizeSampler(DistSpec{Type: "exponential", Params: map[string]float64{"mean": 64 << 10, "max": 64 << 20}})
	if err != nil {
		t.Fatal(err)
	}

	// WHEN 20000 sizes are sampled
	n := 20000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(s.Sample(rng))
	}

	// THEN the mean is within 5% (sector rounding adds at most half a sector on average)
	mean := sum / float64(n)
	if math.Abs(mean-65536)/65536 > 0.05 {
		t.Errorf("exponential mean = %.1f, want ≈ 65536 (within 5%%)", mean)
	}
}

func TestExponentialSizeSampler_ClampedToDefaults(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	s, err := NewSizeSampler(DistSpec{Type: "exponential", Params: map[string]float64{"mean": 2 << 20}})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5000; i++ {
		v := s.Sample(rng)
		if v < sim.SectorSize || v > 1<<20 {
			t.Fatalf("sample %d: %d outside [512, 1MiB]", i, v)
		}
	}
}

func TestNewSizeSampler_InvalidParams_ReturnError(t *testing.T) {
	tests := []DistSpec{
		{Type: "constant"},
		{Type: "uniform", Params: map[string]float64{"min": 8192, "max": 4096}},
		{Type: "uniform", Params: map[string]float64{"max": 4096}},
		{Type: "exponential"},
		{Type: "exponential", Params: map[string]float64{"mean": 4096, "min": 8192, "max": 4096}},
		{Type: "pareto"},
	}
	for _, spec := range tests {
		if _, err := NewSizeSampler(spec); err == nil {
			t.Errorf("NewSizeSampler(%+v): expected error", spec)
		}
	}
}
