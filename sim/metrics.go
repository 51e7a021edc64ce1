// Tracks simulation-wide and per-request performance metrics such as
// latency percentiles, head travel and elevator passes.

package sim

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
)

// Metrics aggregates statistics about the simulation
// for final reporting.
type Metrics struct {
	Submitted         int // Requests that reached the device queue
	CompletedRequests int // Requests finished without error
	FailedRequests    int // Requests finished with an error
	AbortedRequests   int // Requests queued or in flight at the horizon, failed with ENXIO
	Retries           int // Requeues after a transient error

	Dispatches        int   // Requests taken off the queue, retries included
	TotalSeekDistance int64 // Bytes of head travel
	Passes            int   // Elevator passes; a new one starts whenever the head moves backwards
	SimEndedTime      int64 // Clock at the end of the run, in ticks

	RequestLatencies map[string]int64 // request ID -> completion - arrival (ticks)
	RequestWaits     map[string]int64 // request ID -> first dispatch - arrival (ticks)

	Device DeviceStats // copied from the device at the end of the run
}

// NewMetrics returns an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestLatencies: make(map[string]int64),
		RequestWaits:     make(map[string]int64),
	}
}

func (m *Metrics) recordDispatch(distance int64, backward bool) {
	if m.Dispatches == 0 || backward {
		m.Passes++
	}
	m.Dispatches++
	m.TotalSeekDistance += distance
}

func (m *Metrics) recordCompletion(req *Request) {
	if req.Error != 0 {
		m.FailedRequests++
	} else {
		m.CompletedRequests++
	}
	m.RequestLatencies[req.ID] = req.CompletionTime - req.ArrivalTime
	m.RequestWaits[req.ID] = req.DispatchTime - req.ArrivalTime
}

// MetricsOutput is the JSON form of a run's results.
type MetricsOutput struct {
	DeviceName        string      `json:"device_name"`
	Policy            string      `json:"policy"`
	Submitted         int         `json:"submitted_requests"`
	CompletedRequests int         `json:"completed_requests"`
	FailedRequests    int         `json:"failed_requests"`
	AbortedRequests   int         `json:"aborted_requests"`
	Retries           int         `json:"retries"`
	Dispatches        int         `json:"dispatches"`
	Passes            int         `json:"passes"`
	TotalSeekBytes    int64       `json:"total_seek_bytes"`
	MeanSeekBytes     float64     `json:"mean_seek_bytes"`
	SimEndedTimeS     float64     `json:"sim_ended_time_s"`
	ResponsesPerSec   float64     `json:"responses_per_sec"`
	LatencyMeanMs     float64     `json:"latency_mean_ms"`
	LatencyP50Ms      float64     `json:"latency_p50_ms"`
	LatencyP90Ms      float64     `json:"latency_p90_ms"`
	LatencyP99Ms      float64     `json:"latency_p99_ms"`
	LatencyMaxMs      float64     `json:"latency_max_ms"`
	WaitMeanMs        float64     `json:"wait_mean_ms"`
	WaitP99Ms         float64     `json:"wait_p99_ms"`
	Device            DeviceStats `json:"device"`
}

// Output computes the derived statistics for the run.
func (m *Metrics) Output(deviceName, policy string) MetricsOutput {
	latencies := sortedValues(m.RequestLatencies)
	waits := sortedValues(m.RequestWaits)
	out := MetricsOutput{
		DeviceName:        deviceName,
		Policy:            policy,
		Submitted:         m.Submitted,
		CompletedRequests: m.CompletedRequests,
		FailedRequests:    m.FailedRequests,
		AbortedRequests:   m.AbortedRequests,
		Retries:           m.Retries,
		Dispatches:        m.Dispatches,
		Passes:            m.Passes,
		TotalSeekBytes:    m.TotalSeekDistance,
		SimEndedTimeS:     float64(m.SimEndedTime) / 1e6,
		LatencyMeanMs:     CalculateMean(latencies),
		LatencyP50Ms:      CalculatePercentile(latencies, 50),
		LatencyP90Ms:      CalculatePercentile(latencies, 90),
		LatencyP99Ms:      CalculatePercentile(latencies, 99),
		LatencyMaxMs:      CalculatePercentile(latencies, 100),
		WaitMeanMs:        CalculateMean(waits),
		WaitP99Ms:         CalculatePercentile(waits, 99),
		Device:            m.Device,
	}
	if m.Dispatches > 0 {
		out.MeanSeekBytes = float64(m.TotalSeekDistance) / float64(m.Dispatches)
	}
	if m.SimEndedTime > 0 {
		out.ResponsesPerSec = float64(m.CompletedRequests+m.FailedRequests) / out.SimEndedTimeS
	}
	return out
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print(deviceName, policy string) {
	out := m.Output(deviceName, policy)
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Device               : %s (%s)\n", out.DeviceName, out.Policy)
	fmt.Printf("Submitted Requests   : %d\n", out.Submitted)
	fmt.Printf("Completed Requests   : %d\n", out.CompletedRequests)
	fmt.Printf("Failed Requests      : %d (retries %d, aborted %d)\n", out.FailedRequests, out.Retries, out.AbortedRequests)
	fmt.Printf("Elevator Passes      : %d\n", out.Passes)
	fmt.Printf("Head Travel          : %s (mean %s per dispatch)\n",
		humanize.IBytes(uint64(out.TotalSeekBytes)), humanize.IBytes(uint64(out.MeanSeekBytes)))
	fmt.Printf("Transferred          : read %s, written %s, deleted %s\n",
		humanize.IBytes(uint64(out.Device.BytesRead)), humanize.IBytes(uint64(out.Device.BytesWritten)),
		humanize.IBytes(uint64(out.Device.BytesDeleted)))
	if out.CompletedRequests+out.FailedRequests > 0 {
		fmt.Printf("Latency mean/p50/p99 : %.3f / %.3f / %.3f ms\n", out.LatencyMeanMs, out.LatencyP50Ms, out.LatencyP99Ms)
		fmt.Printf("Queue wait mean/p99  : %.3f / %.3f ms\n", out.WaitMeanMs, out.WaitP99Ms)
		fmt.Printf("Throughput           : %.2f req/s\n", out.ResponsesPerSec)
	}
}

// SaveResults writes the JSON form of the metrics to path.
func (m *Metrics) SaveResults(deviceName, policy, path string) error {
	data, err := json.MarshalIndent(m.Output(deviceName, policy), "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling metrics: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
