package sim

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func liveRequests(n int) []*Request {
	reqs := make([]*Request, n)
	for i := range reqs {
		reqs[i] = NewRequest(fmt.Sprintf("request_%d", i), 0, CmdWrite, int64((i*37)%n)*SectorSize, SectorSize)
	}
	return reqs
}

func TestRunLive_ServicesEveryRequest(t *testing.T) {
	for _, producers := range []int{1, 3, 8} {
		t.Run(fmt.Sprintf("producers=%d", producers), func(t *testing.T) {
			// GIVEN a fresh device and 200 writes
			dev := NewDevice("ada0", testGeometry(), nil)
			reqs := liveRequests(200)

			// WHEN they are submitted concurrently while the device serves them
			res, err := RunLive(context.Background(), dev, reqs, producers)

			// THEN each one is serviced exactly once and accounted for
			require.NoError(t, err)
			assert.Len(t, res.Order, 200)
			assert.Equal(t, 200, res.Metrics.Submitted)
			assert.Equal(t, 200, res.Metrics.CompletedRequests)
			assert.Zero(t, res.Metrics.FailedRequests)
			assert.Equal(t, 200, res.Metrics.Dispatches)
			assert.Equal(t, int64(200), res.Metrics.Device.Writes)
			seen := map[string]bool{}
			for _, r := range res.Order {
				assert.False(t, seen[r.ID], "%s serviced twice", r.ID)
				seen[r.ID] = true
			}
		})
	}
}

func TestRunLive_MediaErrors_CountAsFailed(t *testing.T) {
	dev := NewDevice("ada0", testGeometry(), nil)
	reqs := liveRequests(10)
	reqs[3].Offset = 100 // misaligned

	res, err := RunLive(context.Background(), dev, reqs, 2)

	require.NoError(t, err)
	assert.Equal(t, 9, res.Metrics.CompletedRequests)
	assert.Equal(t, 1, res.Metrics.FailedRequests)
	assert.Equal(t, unix.EINVAL, reqs[3].Error)
}

func TestRunLive_InvalidProducers_ReturnsError(t *testing.T) {
	dev := NewDevice("ada0", testGeometry(), nil)
	_, err := RunLive(context.Background(), dev, liveRequests(1), 0)
	assert.Error(t, err)
}

func TestRunLive_NoRequests_ReturnsEmptyResult(t *testing.T) {
	dev := NewDevice("ada0", testGeometry(), nil)
	res, err := RunLive(context.Background(), dev, nil, 4)
	require.NoError(t, err)
	assert.Empty(t, res.Order)
	assert.Zero(t, res.Metrics.Submitted)
}

func TestRunLive_CancelledContext_ReturnsError(t *testing.T) {
	dev := NewDevice("ada0", testGeometry(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunLive(ctx, dev, liveRequests(5), 1)
	assert.ErrorIs(t, err, context.Canceled)
}
