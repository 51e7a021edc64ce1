package sim

import (
	"fmt"
	"math"
)

const gib = 1 << 30

// Geometry is the cost model of a simulated disk. All times are in ticks (µs).
type Geometry struct {
	Capacity        int64   `yaml:"capacity"`         // device size in bytes (must be > 0)
	SeekBase        int64   `yaml:"seek_base"`        // fixed cost of any head movement
	SeekPerGiB      float64 `yaml:"seek_per_gib"`     // additional cost per GiB of head travel
	TransferRate    float64 `yaml:"transfer_rate"`    // bytes per tick (must be > 0)
	CommandOverhead int64   `yaml:"command_overhead"` // fixed cost of every request
}

// Validate checks that the geometry describes a usable device.
func (g Geometry) Validate() error {
	if g.Capacity <= 0 || g.Capacity%SectorSize != 0 {
		return fmt.Errorf("capacity must be a positive multiple of %d, got %d", SectorSize, g.Capacity)
	}
	if g.SeekBase < 0 || g.CommandOverhead < 0 {
		return fmt.Errorf("seek_base and command_overhead must be non-negative")
	}
	if math.IsNaN(g.SeekPerGiB) || math.IsInf(g.SeekPerGiB, 0) || g.SeekPerGiB < 0 {
		return fmt.Errorf("seek_per_gib must be a finite non-negative number, got %f", g.SeekPerGiB)
	}
	if math.IsNaN(g.TransferRate) || math.IsInf(g.TransferRate, 0) || g.TransferRate <= 0 {
		return fmt.Errorf("transfer_rate must be a finite positive number, got %f", g.TransferRate)
	}
	return nil
}

// ServiceTime returns the ticks needed to move the head by distance bytes
// and transfer length bytes. Always at least 1.
func (g Geometry) ServiceTime(distance, length int64) int64 {
	t := float64(g.CommandOverhead)
	if distance > 0 {
		t += float64(g.SeekBase) + g.SeekPerGiB*float64(distance)/gib
	}
	t += float64(length) / g.TransferRate
	return max(int64(math.Ceil(t)), 1)
}

// FaultConfig controls transient error injection.
type FaultConfig struct {
	ErrorRate  float64 // probability that a dispatched request fails with EIO
	MaxRetries int     // times a failed request is requeued before it is failed for good
}

// SimConfig groups everything NewSimulator needs.
type SimConfig struct {
	Horizon    int64  // stop time in ticks
	Seed       int64  // master seed for all randomness
	DeviceName string // reported in diagnostics
	Geometry   Geometry
	Policy     string // "elevator" (default), "fcfs", "lifo"
	Faults     FaultConfig
	TraceLevel string // "none" (default) or "dispatch"
}
