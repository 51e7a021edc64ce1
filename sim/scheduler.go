package sim

import "fmt"

// InsertionPolicy decides where an arriving request goes in a device's queue.
// Implementations only call BioQueue insertion operations.
type InsertionPolicy interface {
	Insert(q *BioQueue, req *Request)
	Name() string
}

// ElevatorPolicy is the one-way elevator sort (default).
type ElevatorPolicy struct{}

func (ElevatorPolicy) Insert(q *BioQueue, req *Request) { q.Disksort(req) }
func (ElevatorPolicy) Name() string                     { return "elevator" }

// FCFSPolicy appends every request, servicing them in arrival order.
type FCFSPolicy struct{}

func (FCFSPolicy) Insert(q *BioQueue, req *Request) { q.InsertTail(req) }
func (FCFSPolicy) Name() string                     { return "fcfs" }

// LIFOPolicy pushes every request to the front of the queue.
// Warning: under sustained load the oldest requests starve.
type LIFOPolicy struct{}

func (LIFOPolicy) Insert(q *BioQueue, req *Request) { q.InsertHead(req) }
func (LIFOPolicy) Name() string                     { return "lifo" }

var validPolicies = map[string]bool{
	"":         true,
	"elevator": true,
	"fcfs":     true,
	"lifo":     true,
}

// IsValidPolicy returns true if name is a recognized insertion policy.
func IsValidPolicy(name string) bool {
	return validPolicies[name]
}

// PolicyNames lists the recognized policies in display order.
func PolicyNames() []string {
	return []string{"elevator", "fcfs", "lifo"}
}

// NewPolicy creates an InsertionPolicy by name.
// Valid names: "elevator" (default), "fcfs", "lifo".
// Empty string defaults to ElevatorPolicy (for CLI flag default compatibility).
// Panics on unrecognized names.
func NewPolicy(name string) InsertionPolicy {
	if !IsValidPolicy(name) {
		panic(fmt.Sprintf("unknown insertion policy %q", name))
	}
	switch name {
	case "", "elevator":
		return ElevatorPolicy{}
	case "fcfs":
		return FCFSPolicy{}
	case "lifo":
		return LIFOPolicy{}
	default:
		panic(fmt.Sprintf("unhandled insertion policy %q", name))
	}
}
