// Defines the Request struct that models one pending block I/O operation.
// Tracks the target offset, the command kind, the extent and the timestamps
// the simulator fills in as the request moves from arrival to completion.

package sim

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Command identifies the kind of block operation carried by a Request.
// It is used for diagnostics and accounting only, never for ordering.
type Command int

const (
	CmdRead Command = iota + 1
	CmdWrite
	CmdDelete
	CmdGetAttr
	CmdFlush
)

func (c Command) String() string {
	switch c {
	case CmdRead:
		return "read"
	case CmdWrite:
		return "write"
	case CmdDelete:
		return "delete"
	case CmdGetAttr:
		return "getattr"
	case CmdFlush:
		return "flush"
	default:
		return "illegal"
	}
}

// ParseCommand maps a command name to its Command. Returns false for unknown names.
func ParseCommand(name string) (Command, bool) {
	switch name {
	case "read":
		return CmdRead, true
	case "write":
		return CmdWrite, true
	case "delete":
		return CmdDelete, true
	case "getattr":
		return CmdGetAttr, true
	case "flush":
		return CmdFlush, true
	}
	return 0, false
}

// RequestState represents the lifecycle state of a request.
type RequestState string

const (
	StateQueued    RequestState = "queued"
	StateRunning   RequestState = "running"
	StateCompleted RequestState = "completed"
)

// Request is owned by whoever currently holds it: the producer until it is
// inserted into a BioQueue, the queue until it is taken or removed, and then
// the servicing loop until Finish releases it.
type Request struct {
	ID string // Unique identifier for the request

	Offset int64   // Byte offset on the device; the only sort key
	Cmd    Command // read, write, delete, getattr, flush
	Length int64   // Extent in bytes
	Resid  int64   // Bytes not transferred, set on completion
	Attr   int64   // getattr result: sectors holding data

	State          RequestState
	Error          unix.Errno // Zero on success
	Retries        int        // Times the request was requeued after a transient error
	ArrivalTime    int64      // Tick the request arrived at the device
	DispatchTime   int64      // Tick the servicing loop took it off the queue
	CompletionTime int64      // Tick Finish was called

	// Link state maintained by BioQueue. A non-nil owner means the request is
	// currently linked into that queue at arena slot `slot`.
	owner *BioQueue
	slot  handle
}

// NewRequest creates a Request in the queued state.
func NewRequest(id string, arrivalTime int64, cmd Command, offset, length int64) *Request {
	return &Request{
		ID:          id,
		ArrivalTime: arrivalTime,
		Cmd:         cmd,
		Offset:      offset,
		Length:      length,
		State:       StateQueued,
		slot:        nilHandle,
	}
}

// Linked reports whether the request is currently held by a BioQueue.
func (req *Request) Linked() bool {
	return req.owner != nil
}

// This method returns a human-readable string representation of a Request.
func (req *Request) String() string {
	return fmt.Sprintf("Request: (ID: %s, Cmd: %s, Offset: %d, Length: %d, State: %s)", req.ID, req.Cmd, req.Offset, req.Length, req.State)
}
