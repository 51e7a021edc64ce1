// Package trace provides dispatch-trace recording for scheduling analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// DispatchRecord captures one request taken off a device queue.
type DispatchRecord struct {
	RequestID    string `json:"request_id"`
	Clock        int64  `json:"clock"`
	Cmd          string `json:"cmd"`
	Offset       int64  `json:"offset"`
	Length       int64  `json:"length"`
	LastOffset   int64  `json:"last_offset"`   // queue scan position before the dispatch
	SeekDistance int64  `json:"seek_distance"` // bytes of head travel to reach Offset
	Wrapped      bool   `json:"wrapped"`       // head moved backwards: a new elevator pass
	QueueDepth   int    `json:"queue_depth"`   // requests still queued after the dispatch
	Retry        int    `json:"retry"`         // 0 for the first attempt
}
