// Package sim provides the block I/O request queue and a discrete-event
// disk simulator built around it.
//
// # Reading Guide
//
// Start with these files to understand the scheduling core:
//   - request.go: Request, the unit of block I/O (offset, command, extent)
//   - bioq.go: BioQueue, the one-way elevator queue (Disksort, TakeFirst, Flush)
//   - finish.go: Finish, the completion collaborator, and DeviceStats
//
// Then the simulation around it:
//   - device.go: Device, one disk context owning one BioQueue behind a lock,
//     with the Serve servicing loop for live use
//   - event.go / simulator.go: arrival, dispatch and completion events and the event loop
//   - scheduler.go: name-selected insertion policies (elevator, fcfs, lifo)
//   - media.go: in-memory backing store executed by the servicing loop
//
// # Sub-packages
//   - sim/workload/: YAML workload specs and deterministic request generation
//   - sim/trace/: dispatch trace recording and summaries
//
// BioQueue itself is not safe for concurrent use. Device supplies the
// per-device lock that every queue operation runs under.
package sim
