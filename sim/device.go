package sim

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// ExecFunc performs the physical transfer of a request and returns its status.
type ExecFunc func(req *Request) unix.Errno

// Device is one disk context. It owns exactly one BioQueue and serializes
// every queue operation with its own lock, so producers may call Submit
// from any goroutine while a single servicing loop takes requests.
type Device struct {
	Name     string
	Geometry Geometry
	Policy   InsertionPolicy
	Stats    *DeviceStats
	Media    *Media

	mu    sync.Mutex
	queue *BioQueue
	head  int64 // byte position of the head after the last transfer
	kick  chan struct{}
}

// NewDevice creates an idle device with an empty queue and blank media.
func NewDevice(name string, geom Geometry, policy InsertionPolicy) *Device {
	if policy == nil {
		policy = ElevatorPolicy{}
	}
	return &Device{
		Name:     name,
		Geometry: geom,
		Policy:   policy,
		Stats:    &DeviceStats{},
		Media:    NewMedia(geom.Capacity),
		queue:    NewBioQueue(),
		kick:     make(chan struct{}, 1),
	}
}

// Submit queues req according to the device's insertion policy and wakes
// the servicing loop.
func (d *Device) Submit(req *Request) {
	d.mu.Lock()
	req.State = StateQueued
	d.Policy.Insert(d.queue, req)
	d.mu.Unlock()
	d.wake()
}

// Requeue puts req back at the front of the queue so it is serviced next.
func (d *Device) Requeue(req *Request) {
	d.mu.Lock()
	req.State = StateQueued
	d.queue.InsertHead(req)
	d.mu.Unlock()
	d.wake()
}

// Next takes the next request in queue order, or nil if none is pending.
func (d *Device) Next() *Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	req := d.queue.TakeFirst()
	if req != nil {
		req.State = StateRunning
	}
	return req
}

// Pending returns the number of queued requests.
func (d *Device) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queue.Len()
}

// ScanState returns the queue's lastOffset and the offset of its insert
// point (-1 when the queue is empty).
func (d *Device) ScanState() (lastOffset, insertPoint int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	insertPoint = -1
	if ip := d.queue.InsertPoint(); ip != nil {
		insertPoint = ip.Offset
	}
	return d.queue.LastOffset(), insertPoint
}

// Snapshot returns the queued requests in queue order.
func (d *Device) Snapshot() []*Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queue.Items()
}

// Seek moves the head to req and past its extent. It returns the distance
// travelled and whether the head had to move backwards.
func (d *Device) Seek(req *Request) (distance int64, backward bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	distance = req.Offset - d.head
	if distance < 0 {
		distance, backward = -distance, true
	}
	d.head = req.Offset + req.Length
	return distance, backward
}

// Complete finishes req with status and records it in the device stats.
func (d *Device) Complete(req *Request, status unix.Errno) {
	d.mu.Lock()
	defer d.mu.Unlock()
	Finish(req, d.Stats, status)
}

// Drain fails every queued request with status and returns them in the
// order they were drained.
func (d *Device) Drain(status unix.Errno) []*Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	var drained []*Request
	d.queue.Flush(func(req *Request, stats *DeviceStats, status unix.Errno) {
		Finish(req, stats, status)
		drained = append(drained, req)
	}, d.Stats, status)
	if len(drained) > 0 {
		logrus.Infof("%s: drained %d requests with %v", d.Name, len(drained), status)
	}
	return drained
}

// Serve runs the servicing loop: it takes requests in queue order, runs
// them through exec and completes them, waiting for submissions while the
// queue is empty. When ctx is cancelled Serve fails whatever is still
// queued with ENXIO and returns ctx.Err().
func (d *Device) Serve(ctx context.Context, exec ExecFunc) error {
	for {
		if err := ctx.Err(); err != nil {
			d.Drain(unix.ENXIO)
			return err
		}
		req := d.Next()
		if req == nil {
			select {
			case <-ctx.Done():
			case <-d.kick:
			}
			continue
		}
		status := exec(req)
		if status != 0 {
			logrus.Warn(DiskErr(req, d.Name, "hard error", 0))
		}
		d.Complete(req, status)
	}
}

func (d *Device) wake() {
	select {
	case d.kick <- struct{}{}:
	default:
	}
}
