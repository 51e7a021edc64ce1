package workload

import (
	"bytes"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/iosched-sim/iosched-sim/sim"
)

// WorkloadSpec is the top-level workload configuration.
// Loaded from YAML via LoadWorkloadSpec(path).
type WorkloadSpec struct {
	Version       string       `yaml:"version"`
	Seed          int64        `yaml:"seed"`
	AggregateRate float64      `yaml:"aggregate_rate"` // requests per second across all clients
	Horizon       int64        `yaml:"horizon,omitempty"`
	NumRequests   int64        `yaml:"num_requests,omitempty"` // 0 = unlimited (use horizon only)
	Clients       []ClientSpec `yaml:"clients"`
}

// ClientSpec defines a single producer's I/O behavior.
type ClientSpec struct {
	ID           string             `yaml:"id"`
	RateFraction float64            `yaml:"rate_fraction"`
	Arrival      ArrivalSpec        `yaml:"arrival"`
	Pattern      PatternSpec        `yaml:"pattern"`
	Size         DistSpec           `yaml:"size"`
	Mix          map[string]float64 `yaml:"mix,omitempty"` // command name -> weight; empty = all reads
}

// ArrivalSpec configures the inter-arrival time process.
type ArrivalSpec struct {
	Process string   `yaml:"process"`
	CV      *float64 `yaml:"cv,omitempty"`
}

// PatternSpec configures where in the device a client's requests land.
// Offsets are bytes; Start and Span must be sector aligned.
type PatternSpec struct {
	Type           string  `yaml:"type"`
	Start          int64   `yaml:"start"`
	Span           int64   `yaml:"span"`
	Stride         int64   `yaml:"stride,omitempty"`          // strided only
	HotFraction    float64 `yaml:"hot_fraction,omitempty"`    // hotspot only: share of the span that is hot
	HotProbability float64 `yaml:"hot_probability,omitempty"` // hotspot only: chance a request hits the hot region
}

// DistSpec parameterizes a request size distribution in bytes.
type DistSpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// Valid value registries.
var (
	validArrivalProcesses = map[string]bool{
		"poisson": true, "gamma": true, "constant": true,
	}
	validPatterns = map[string]bool{
		"sequential": true, "random": true, "hotspot": true, "strided": true,
	}
	validDistTypes = map[string]bool{
		"constant": true, "uniform": true, "exponential": true,
	}
)

// LoadWorkloadSpec reads and parses a YAML workload specification file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadWorkloadSpec(path string) (*WorkloadSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading workload spec")
	}
	var spec WorkloadSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, errors.Wrap(err, "parsing workload spec")
	}
	if spec.Version == "" {
		spec.Version = "1"
	}
	return &spec, nil
}

// Validate checks that all fields in the spec are valid.
func (s *WorkloadSpec) Validate() error {
	if err := validateFinitePositive("aggregate_rate", s.AggregateRate); err != nil {
		return err
	}
	if s.NumRequests < 0 {
		return errors.Errorf("num_requests must be non-negative, got %d", s.NumRequests)
	}
	if len(s.Clients) == 0 {
		return errors.New("at least one client required")
	}
	for i := range s.Clients {
		if err := validateClient(&s.Clients[i], i); err != nil {
			return err
		}
	}
	return nil
}

func validateClient(c *ClientSpec, idx int) error {
	prefix := "client[" + c.ID + "]"
	if c.ID == "" {
		prefix = "client[#" + strconv.Itoa(idx) + "]"
	}
	if err := validateFinitePositive(prefix+".rate_fraction", c.RateFraction); err != nil {
		return err
	}
	if !validArrivalProcesses[c.Arrival.Process] {
		return errors.Errorf("%s: unknown arrival process %q; valid: poisson, gamma, constant", prefix, c.Arrival.Process)
	}
	if c.Arrival.CV != nil {
		if err := validateFinitePositive(prefix+".arrival.cv", *c.Arrival.CV); err != nil {
			return err
		}
	}
	if err := validatePattern(prefix+".pattern", &c.Pattern); err != nil {
		return err
	}
	if err := validateDistSpec(prefix+".size", &c.Size); err != nil {
		return err
	}
	for name, w := range c.Mix {
		if _, ok := sim.ParseCommand(name); !ok {
			return errors.Errorf("%s.mix: unknown command %q; valid: read, write, delete, getattr, flush", prefix, name)
		}
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return errors.Errorf("%s.mix.%s must be a finite non-negative weight, got %f", prefix, name, w)
		}
	}
	if len(c.Mix) > 0 && totalWeight(c.Mix) == 0 {
		return errors.Errorf("%s.mix: weights must not all be zero", prefix)
	}
	return nil
}

func validatePattern(prefix string, p *PatternSpec) error {
	if !validPatterns[p.Type] {
		return errors.Errorf("%s: unknown pattern %q; valid: sequential, random, hotspot, strided", prefix, p.Type)
	}
	if p.Start < 0 || p.Start%sim.SectorSize != 0 {
		return errors.Errorf("%s.start must be a non-negative multiple of %d, got %d", prefix, sim.SectorSize, p.Start)
	}
	if p.Span <= 0 || p.Span%sim.SectorSize != 0 {
		return errors.Errorf("%s.span must be a positive multiple of %d, got %d", prefix, sim.SectorSize, p.Span)
	}
	switch p.Type {
	case "strided":
		if p.Stride <= 0 || p.Stride%sim.SectorSize != 0 {
			return errors.Errorf("%s.stride must be a positive multiple of %d, got %d", prefix, sim.SectorSize, p.Stride)
		}
	case "hotspot":
		if p.HotFraction <= 0 || p.HotFraction > 1 {
			return errors.Errorf("%s.hot_fraction must be in (0, 1], got %f", prefix, p.HotFraction)
		}
		if p.HotProbability < 0 || p.HotProbability > 1 {
			return errors.Errorf("%s.hot_probability must be in [0, 1], got %f", prefix, p.HotProbability)
		}
	}
	return nil
}

func validateDistSpec(prefix string, d *DistSpec) error {
	if !validDistTypes[d.Type] {
		return errors.Errorf("%s: unknown distribution type %q; valid: constant, uniform, exponential", prefix, d.Type)
	}
	for name, val := range d.Params {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return errors.Errorf("%s.params.%s must be a finite number, got %f", prefix, name, val)
		}
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return errors.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return errors.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}

func totalWeight(mix map[string]float64) float64 {
	total := 0.0
	for _, w := range mix {
		total += w
	}
	return total
}

// sortedCommands returns the mix's command names in a fixed order so that
// sampling is deterministic regardless of map iteration order.
func sortedCommands(mix map[string]float64) []string {
	names := make([]string, 0, len(mix))
	for name := range mix {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
