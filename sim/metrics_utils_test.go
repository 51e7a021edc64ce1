package sim

import (
	"testing"

	"github.com/iosched-sim/iosched-sim/sim/internal/testutil"
)

func TestCalculatePercentile_EmptyInput_ReturnsZero(t *testing.T) {
	// GIVEN empty slices
	// WHEN CalculatePercentile is called
	// THEN it returns 0 (not panic)
	if result := CalculatePercentile([]float64{}, 99); result != 0.0 {
		t.Errorf("expected 0.0 for empty input, got %f", result)
	}
	if result := CalculatePercentile([]int64{}, 50); result != 0.0 {
		t.Errorf("expected 0.0 for empty int64 input, got %f", result)
	}
}

func TestCalculatePercentile_SingleElement_ReturnsScaled(t *testing.T) {
	// THEN it returns the element divided by 1000 (ms conversion)
	if result := CalculatePercentile([]float64{1000.0}, 99); result != 1.0 {
		t.Errorf("expected 1.0 for single element 1000.0, got %f", result)
	}
}

func TestCalculatePercentile_Interpolates(t *testing.T) {
	data := []int64{1000, 2000, 3000, 4000, 5000}
	testutil.AssertFloat64Equal(t, "p0", 1.0, CalculatePercentile(data, 0), 1e-9)
	testutil.AssertFloat64Equal(t, "p50", 3.0, CalculatePercentile(data, 50), 1e-9)
	testutil.AssertFloat64Equal(t, "p90", 4.6, CalculatePercentile(data, 90), 1e-9)
	testutil.AssertFloat64Equal(t, "p100", 5.0, CalculatePercentile(data, 100), 1e-9)
}

func TestCalculateMean(t *testing.T) {
	if got := CalculateMean([]int64{}); got != 0 {
		t.Errorf("mean of empty = %f, want 0", got)
	}
	testutil.AssertFloat64Equal(t, "mean", 2.5, CalculateMean([]int64{1000, 4000}), 1e-9)
}

func TestSortedValues_Ascending(t *testing.T) {
	got := sortedValues(map[string]int64{"a": 30, "b": 10, "c": 20})
	want := []int64{10, 20, 30}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sortedValues = %v, want %v", got, want)
		}
	}
}
