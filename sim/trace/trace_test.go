package trace

import (
	"testing"
)

func TestSimulationTrace_RecordDispatch_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for dispatches
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDispatch})

	// WHEN a dispatch record is recorded
	st.RecordDispatch(DispatchRecord{
		RequestID:    "req_1",
		Clock:        1000,
		Cmd:          "read",
		Offset:       4096,
		SeekDistance: 4096,
	})

	// THEN the trace contains one dispatch record with correct data
	if len(st.Dispatches) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(st.Dispatches))
	}
	if st.Dispatches[0].RequestID != "req_1" {
		t.Errorf("expected request ID req_1, got %s", st.Dispatches[0].RequestID)
	}
	if st.Dispatches[0].Offset != 4096 {
		t.Errorf("expected offset 4096, got %d", st.Dispatches[0].Offset)
	}
}

func TestSimulationTrace_MultipleRecords_PreservesOrder(t *testing.T) {
	// GIVEN a trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDispatch})

	// WHEN multiple records are added
	st.RecordDispatch(DispatchRecord{RequestID: "req_2", Clock: 100})
	st.RecordDispatch(DispatchRecord{RequestID: "req_1", Clock: 200})
	st.RecordDispatch(DispatchRecord{RequestID: "req_3", Clock: 300})

	// THEN order is preserved
	if len(st.Dispatches) != 3 {
		t.Fatalf("expected 3 dispatches, got %d", len(st.Dispatches))
	}
	want := []string{"req_2", "req_1", "req_3"}
	for i, id := range want {
		if st.Dispatches[i].RequestID != id {
			t.Errorf("dispatch[%d]: got %s, want %s", i, st.Dispatches[i].RequestID, id)
		}
	}
}

func TestIsValidTraceLevel_ValidLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"dispatch", true},
		{"", true},
		{"decisions", false},
		{"DISPATCH", false},
	}
	for _, tt := range tests {
		if got := IsValidTraceLevel(tt.level); got != tt.valid {
			t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.valid)
		}
	}
}
