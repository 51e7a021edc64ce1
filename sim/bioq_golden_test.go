package sim

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iosched-sim/iosched-sim/sim/internal/testutil"
)

func TestBioQueue_GoldenDataset(t *testing.T) {
	dataset := testutil.LoadGoldenDataset(t)
	require.NotEmpty(t, dataset.Tests)

	for _, tc := range dataset.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			q := NewBioQueue()
			taken := []int64{}
			for i, op := range tc.Ops {
				req := newReq(fmt.Sprintf("%s-%d", op.Op, i), op.Offset)
				switch op.Op {
				case "disksort":
					q.Disksort(req)
				case "head":
					q.InsertHead(req)
				case "tail":
					q.InsertTail(req)
				case "take":
					if r := q.TakeFirst(); r != nil {
						taken = append(taken, r.Offset)
					}
				case "remove":
					var target *Request
					for _, r := range q.Items() {
						if r.Offset == op.Offset {
							target = r
							break
						}
					}
					require.NotNil(t, target, "op %d: no queued request at %d", i, op.Offset)
					q.Remove(target)
				default:
					t.Fatalf("op %d: unknown op %q", i, op.Op)
				}
			}

			want := tc.WantTaken
			if want == nil {
				want = []int64{}
			}
			assert.Equal(t, want, taken, "taken")
			assert.Equal(t, append([]int64{}, tc.WantOrder...), offsets(q.Items()), "order")
			assert.Equal(t, tc.WantLastOffset, q.LastOffset(), "lastOffset")
			ip := int64(-1)
			if r := q.InsertPoint(); r != nil {
				ip = r.Offset
			}
			assert.Equal(t, tc.WantInsertPoint, ip, "insert point")
		})
	}
}
