package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDispatches     int
	Passes              int // elevator passes started, counting the first
	MeanSeek            float64
	MaxSeek             int64
	MaxQueueDepth       int
	Retries             int
	CommandDistribution map[string]int // command name → dispatch count
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		CommandDistribution: make(map[string]int),
	}
	if st == nil || len(st.Dispatches) == 0 {
		return summary
	}

	summary.TotalDispatches = len(st.Dispatches)
	summary.Passes = 1
	var totalSeek int64
	for _, d := range st.Dispatches {
		summary.CommandDistribution[d.Cmd]++
		totalSeek += d.SeekDistance
		if d.SeekDistance > summary.MaxSeek {
			summary.MaxSeek = d.SeekDistance
		}
		if d.QueueDepth > summary.MaxQueueDepth {
			summary.MaxQueueDepth = d.QueueDepth
		}
		if d.Wrapped {
			summary.Passes++
		}
		if d.Retry > 0 {
			summary.Retries++
		}
	}
	summary.MeanSeek = float64(totalSeek) / float64(len(st.Dispatches))

	return summary
}
