package sim

import (
	"golang.org/x/sys/unix"
)

// FinishFunc completes a request that has left its queue: it records the
// transaction in stats (which may be nil) and releases the request with the
// given status. BioQueue.Flush calls it for every drained request.
type FinishFunc func(req *Request, stats *DeviceStats, status unix.Errno)

// DeviceStats accumulates per-device transaction counts.
type DeviceStats struct {
	Reads   int64 `json:"reads"`
	Writes  int64 `json:"writes"`
	Deletes int64 `json:"deletes"`
	Other   int64 `json:"other"`
	Errors  int64 `json:"errors"`

	BytesRead    int64 `json:"bytes_read"`
	BytesWritten int64 `json:"bytes_written"`
	BytesDeleted int64 `json:"bytes_deleted"`
}

// Transactions returns the number of requests recorded so far.
func (s *DeviceStats) Transactions() int64 {
	return s.Reads + s.Writes + s.Deletes + s.Other
}

func (s *DeviceStats) record(req *Request) {
	done := req.Length - req.Resid
	switch req.Cmd {
	case CmdRead:
		s.Reads++
		s.BytesRead += done
	case CmdWrite:
		s.Writes++
		s.BytesWritten += done
	case CmdDelete:
		s.Deletes++
		s.BytesDeleted += done
	default:
		s.Other++
	}
	if req.Error != 0 {
		s.Errors++
	}
}

// Finish is the standard FinishFunc. A non-zero status marks the whole
// extent as not transferred.
func Finish(req *Request, stats *DeviceStats, status unix.Errno) {
	if req.Linked() {
		panic("Finish: request " + req.ID + " is still linked into a queue")
	}
	if status != 0 {
		req.Error = status
		req.Resid = req.Length
	}
	req.State = StateCompleted
	if stats != nil {
		stats.record(req)
	}
}
