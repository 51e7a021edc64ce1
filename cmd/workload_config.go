package cmd

import (
	"fmt"

	"github.com/iosched-sim/iosched-sim/sim/workload"
)

// WorkloadFlags holds the single-client workload described on the command
// line when no --workload file is given.
type WorkloadFlags struct {
	Rate        float64          // requests per second
	MaxRequests int64            // 0 = horizon only
	Pattern     string           // sequential, random, hotspot, strided
	Size        int64            // bytes per request
	Stride      int64            // strided only
	Mix         map[string]int64 // command name -> weight
}

// synthesizeSpec builds a one-client WorkloadSpec spanning the whole device.
func synthesizeSpec(f WorkloadFlags, seed, capacity int64) *workload.WorkloadSpec {
	mix := make(map[string]float64, len(f.Mix))
	for name, w := range f.Mix {
		mix[name] = float64(w)
	}
	pattern := workload.PatternSpec{Type: f.Pattern, Start: 0, Span: capacity, Stride: f.Stride}
	if f.Pattern == "hotspot" {
		pattern.HotFraction = 0.1
		pattern.HotProbability = 0.9
	}
	return &workload.WorkloadSpec{
		Version:       "1",
		Seed:          seed,
		AggregateRate: f.Rate,
		NumRequests:   f.MaxRequests,
		Clients: []workload.ClientSpec{{
			ID:           "cli",
			RateFraction: 1,
			Arrival:      workload.ArrivalSpec{Process: "poisson"},
			Pattern:      pattern,
			Size:         workload.DistSpec{Type: "constant", Params: map[string]float64{"bytes": float64(f.Size)}},
			Mix:          mix,
		}},
	}
}

// loadWorkload returns the workload spec from path, or one synthesized from
// flags when path is empty. seedChanged reports whether --seed was given
// explicitly, in which case it overrides the file's seed.
func loadWorkload(path string, f WorkloadFlags, seed int64, seedChanged bool, capacity int64) (*workload.WorkloadSpec, error) {
	if path == "" {
		return synthesizeSpec(f, seed, capacity), nil
	}
	spec, err := workload.LoadWorkloadSpec(path)
	if err != nil {
		return nil, fmt.Errorf("loading workload %s: %w", path, err)
	}
	if seedChanged {
		spec.Seed = seed
	}
	if f.MaxRequests > 0 && spec.NumRequests == 0 {
		spec.NumRequests = f.MaxRequests
	}
	return spec, nil
}
