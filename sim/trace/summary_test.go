package trace

import "testing"

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	if summary.TotalDispatches != 0 || summary.Passes != 0 {
		t.Errorf("expected zero summary, got %+v", summary)
	}
	if summary.CommandDistribution == nil {
		t.Error("expected non-nil command distribution")
	}
}

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDispatch})

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.TotalDispatches != 0 {
		t.Errorf("expected 0 dispatches, got %d", summary.TotalDispatches)
	}
	if summary.Passes != 0 {
		t.Errorf("expected 0 passes, got %d", summary.Passes)
	}
	if summary.MeanSeek != 0 || summary.MaxSeek != 0 {
		t.Error("expected 0 seek values")
	}
	if len(summary.CommandDistribution) != 0 {
		t.Error("expected empty command distribution")
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN two ascending passes: 10, 30, 50 then a wrap to 20
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDispatch})
	st.RecordDispatch(DispatchRecord{RequestID: "r1", Cmd: "read", Offset: 10, SeekDistance: 10, QueueDepth: 3})
	st.RecordDispatch(DispatchRecord{RequestID: "r2", Cmd: "write", Offset: 30, SeekDistance: 20, QueueDepth: 2})
	st.RecordDispatch(DispatchRecord{RequestID: "r3", Cmd: "read", Offset: 50, SeekDistance: 20, QueueDepth: 1})
	st.RecordDispatch(DispatchRecord{RequestID: "r4", Cmd: "read", Offset: 20, SeekDistance: 30, Wrapped: true, Retry: 1})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts match
	if summary.TotalDispatches != 4 {
		t.Errorf("expected 4 dispatches, got %d", summary.TotalDispatches)
	}
	if summary.Passes != 2 {
		t.Errorf("expected 2 passes, got %d", summary.Passes)
	}
	if summary.MaxSeek != 30 {
		t.Errorf("expected max seek 30, got %d", summary.MaxSeek)
	}
	if summary.MeanSeek != 20 {
		t.Errorf("expected mean seek 20, got %f", summary.MeanSeek)
	}
	if summary.MaxQueueDepth != 3 {
		t.Errorf("expected max queue depth 3, got %d", summary.MaxQueueDepth)
	}
	if summary.Retries != 1 {
		t.Errorf("expected 1 retry, got %d", summary.Retries)
	}
	if summary.CommandDistribution["read"] != 3 || summary.CommandDistribution["write"] != 1 {
		t.Errorf("unexpected command distribution %v", summary.CommandDistribution)
	}
}
