// Package testutil provides shared test infrastructure for the iosched
// simulator: the golden queue-trace dataset and assertion helpers used
// across the sim/ test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/bioq_golden.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is a sequence of queue operations and the queue state
// expected after all of them have run.
type GoldenTestCase struct {
	Name string     `json:"name"`
	Ops  []GoldenOp `json:"ops"`

	WantTaken       []int64 `json:"want_taken"`        // offsets returned by "take", in order
	WantOrder       []int64 `json:"want_order"`        // final queue order
	WantLastOffset  int64   `json:"want_last_offset"`  // final lastOffset
	WantInsertPoint int64   `json:"want_insert_point"` // offset of the final insert point, -1 if none
}

// GoldenOp is one queue operation. Op is one of "disksort", "head",
// "tail", "take" or "remove"; remove unlinks the first queued request at
// Offset. Offset is ignored by "take".
type GoldenOp struct {
	Op     string `json:"op"`
	Offset int64  `json:"offset,omitempty"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "bioq_golden.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
