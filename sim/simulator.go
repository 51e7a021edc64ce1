// sim/simulator.go
package sim

import (
	"container/heap"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/iosched-sim/iosched-sim/sim/trace"
)

type scheduledEvent struct {
	ev  Event
	seq uint64
}

// EventQueue implements heap.Interface and orders events by timestamp,
// breaking ties by scheduling order so runs are deterministic.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type EventQueue []scheduledEvent

func (eq EventQueue) Len() int { return len(eq) }
func (eq EventQueue) Less(i, j int) bool {
	ti, tj := eq[i].ev.Timestamp(), eq[j].ev.Timestamp()
	if ti != tj {
		return ti < tj
	}
	return eq[i].seq < eq[j].seq
}
func (eq EventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *EventQueue) Push(x any) {
	*eq = append(*eq, x.(scheduledEvent))
}

func (eq *EventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	*eq = old[0 : n-1]
	return item
}

// Simulator is the core object that holds simulation time, the device
// being simulated and the event loop.
type Simulator struct {
	Clock   int64
	Horizon int64
	// EventQueue has all the simulator events: arrivals, dispatches and completions
	EventQueue EventQueue
	Device     *Device
	Metrics    *Metrics
	Faults     FaultConfig
	// Trace is nil unless dispatch tracing is enabled
	Trace *trace.SimulationTrace

	faultRNG *rand.Rand
	busy     bool     // a dispatch is scheduled or a transfer is in flight
	inflight *Request // request whose transfer is in progress
	seq      uint64
}

// NewSimulator builds a simulator for one device and schedules an arrival
// for every request.
func NewSimulator(cfg SimConfig, requests []*Request) (*Simulator, error) {
	if err := cfg.Geometry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid geometry: %w", err)
	}
	if !IsValidPolicy(cfg.Policy) {
		return nil, fmt.Errorf("unknown insertion policy %q; valid: elevator, fcfs, lifo", cfg.Policy)
	}
	if !trace.IsValidTraceLevel(cfg.TraceLevel) {
		return nil, fmt.Errorf("unknown trace level %q; valid: none, dispatch", cfg.TraceLevel)
	}
	if cfg.Faults.ErrorRate < 0 || cfg.Faults.ErrorRate >= 1 {
		return nil, fmt.Errorf("error rate must be in [0, 1), got %f", cfg.Faults.ErrorRate)
	}
	if cfg.Faults.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries must be non-negative, got %d", cfg.Faults.MaxRetries)
	}
	if cfg.Horizon <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", cfg.Horizon)
	}

	name := cfg.DeviceName
	if name == "" {
		name = "disk0"
	}
	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	s := &Simulator{
		Horizon:    cfg.Horizon,
		EventQueue: make(EventQueue, 0, len(requests)),
		Device:     NewDevice(name, cfg.Geometry, NewPolicy(cfg.Policy)),
		Metrics:    NewMetrics(),
		Faults:     cfg.Faults,
		faultRNG:   rng.ForSubsystem(SubsystemFaults),
	}
	if trace.TraceLevel(cfg.TraceLevel) == trace.TraceLevelDispatch {
		s.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDispatch})
	}
	for _, req := range requests {
		s.InjectArrival(req)
	}
	return s, nil
}

// Schedule pushes an event into the simulator's EventQueue.
func (sim *Simulator) Schedule(ev Event) {
	heap.Push(&sim.EventQueue, scheduledEvent{ev: ev, seq: sim.seq})
	sim.seq++
}

// InjectArrival schedules req to arrive at its ArrivalTime.
func (sim *Simulator) InjectArrival(req *Request) {
	sim.Schedule(&ArrivalEvent{time: req.ArrivalTime, Request: req})
}

// Run processes events until the queue empties or the horizon passes.
// Requests still queued or in flight at that point are failed with ENXIO.
func (sim *Simulator) Run() {
	for len(sim.EventQueue) > 0 {
		next := heap.Pop(&sim.EventQueue).(scheduledEvent).ev
		if next.Timestamp() > sim.Horizon {
			sim.Clock = sim.Horizon
			break
		}
		sim.Clock = next.Timestamp()
		logrus.Tracef("[tick %07d] Executing %T", sim.Clock, next)
		next.Execute(sim)
	}
	sim.Metrics.SimEndedTime = min(sim.Clock, sim.Horizon)

	if req := sim.inflight; req != nil {
		sim.inflight = nil
		req.CompletionTime = sim.Metrics.SimEndedTime
		sim.Device.Complete(req, unix.ENXIO)
		sim.Metrics.AbortedRequests++
	}
	for _, req := range sim.Device.Drain(unix.ENXIO) {
		req.CompletionTime = sim.Metrics.SimEndedTime
		sim.Metrics.AbortedRequests++
	}
	sim.Metrics.Device = *sim.Device.Stats
	logrus.Infof("[tick %07d] Simulation ended", sim.Clock)
}

func (sim *Simulator) dispatch(now int64) {
	lastOffset, _ := sim.Device.ScanState()
	req := sim.Device.Next()
	if req == nil {
		sim.busy = false
		return
	}
	req.DispatchTime = now

	distance, backward := sim.Device.Seek(req)
	service := sim.Device.Geometry.ServiceTime(distance, req.Length)

	var status unix.Errno
	if sim.Faults.ErrorRate > 0 && sim.faultRNG.Float64() < sim.Faults.ErrorRate {
		status = unix.EIO
	} else {
		status = sim.Device.Media.Execute(req)
	}

	sim.Metrics.recordDispatch(distance, backward)
	if sim.Trace != nil {
		sim.Trace.RecordDispatch(trace.DispatchRecord{
			RequestID:    req.ID,
			Clock:        now,
			Cmd:          req.Cmd.String(),
			Offset:       req.Offset,
			Length:       req.Length,
			LastOffset:   lastOffset,
			SeekDistance: distance,
			Wrapped:      backward,
			QueueDepth:   sim.Device.Pending(),
			Retry:        req.Retries,
		})
	}
	sim.inflight = req
	sim.Schedule(&CompletionEvent{time: now + service, Request: req, Status: status})
}

func (sim *Simulator) complete(req *Request, status unix.Errno, now int64) {
	sim.inflight = nil
	if status == unix.EIO && req.Retries < sim.Faults.MaxRetries {
		req.Retries++
		sim.Metrics.Retries++
		logrus.Warn(DiskErr(req, sim.Device.Name, "soft error, retrying", -1))
		sim.Device.Requeue(req)
	} else {
		if status != 0 {
			logrus.Warn(DiskErr(req, sim.Device.Name, "hard error", 0))
		}
		req.CompletionTime = now
		sim.Device.Complete(req, status)
		sim.Metrics.recordCompletion(req)
	}
	sim.Schedule(&DispatchEvent{time: now})
}
