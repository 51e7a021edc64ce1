package sim

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Event defines the interface for all simulation events.
// Each event must have a Timestamp (in ticks) and an Execute method
// that advances simulation state when invoked.
type Event interface {
	Timestamp() int64
	Execute(*Simulator)
}

// ArrivalEvent represents a block request reaching the device.
type ArrivalEvent struct {
	time    int64    // Simulation time of arrival (in ticks)
	Request *Request // The incoming request associated with this event
}

// Timestamp returns the scheduled time of the ArrivalEvent.
func (e *ArrivalEvent) Timestamp() int64 {
	return e.time
}

// Execute queues the request and starts the servicing loop if the device is idle.
func (e *ArrivalEvent) Execute(sim *Simulator) {
	logrus.Debugf("<< Arrival: %s %s@%d at %d ticks", e.Request.ID, e.Request.Cmd, e.Request.Offset, e.time)

	sim.Device.Submit(e.Request)
	sim.Metrics.Submitted++

	if !sim.busy {
		sim.busy = true
		sim.Schedule(&DispatchEvent{time: e.time})
	}
}

// DispatchEvent is the servicing loop taking the next request off the queue.
type DispatchEvent struct {
	time int64
}

// Timestamp returns the scheduled time of the DispatchEvent.
func (e *DispatchEvent) Timestamp() int64 {
	return e.time
}

// Execute the DispatchEvent
func (e *DispatchEvent) Execute(sim *Simulator) {
	sim.dispatch(e.time)
}

// CompletionEvent marks the end of a request's physical transfer.
type CompletionEvent struct {
	time    int64
	Request *Request
	Status  unix.Errno
}

// Timestamp returns the scheduled time of the CompletionEvent.
func (e *CompletionEvent) Timestamp() int64 {
	return e.time
}

// Execute the CompletionEvent
func (e *CompletionEvent) Execute(sim *Simulator) {
	logrus.Debugf("<< Completion: %s at %d ticks (status %d)", e.Request.ID, e.time, e.Status)
	sim.complete(e.Request, e.Status, e.time)
}
