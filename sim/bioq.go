// Implements the BioQueue, the per-device queue of pending block requests
// kept in one-way elevator order.

package sim

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// handle addresses a node in a BioQueue's arena. The zero handle is the
// empty sentinel; slot i lives at handle i+1.
type handle int32

const nilHandle handle = 0

type bioNode struct {
	req        *Request
	prev, next handle
}

// BioQueue holds pending requests for one device in ascending offset order,
// wrapping back to the lowest offset once the scan passes the highest.
//
// lastOffset and insertPoint record where the current scan stands so that
// Disksort only has to walk the part of the queue a new request belongs to:
// insertPoint is the first request not yet passed in the current scan and
// lastOffset is the offset of the request most recently removed at that
// boundary (0 after a wrap or when the queue is empty).
//
// BioQueue does no locking. Callers serialize every operation with their
// own per-device lock. The zero value is an empty queue ready for use.
type BioQueue struct {
	nodes []bioNode
	free  []handle
	head  handle
	tail  handle
	n     int

	lastOffset  int64
	insertPoint handle
}

// NewBioQueue returns an empty queue with lastOffset 0 and no insert point.
func NewBioQueue() *BioQueue {
	return &BioQueue{}
}

// Len returns the number of queued requests.
func (q *BioQueue) Len() int {
	return q.n
}

// LastOffset returns the offset of the request that last advanced the scan.
func (q *BioQueue) LastOffset() int64 {
	return q.lastOffset
}

// InsertPoint returns the first request not yet passed by the current scan,
// or nil when the queue is empty.
func (q *BioQueue) InsertPoint() *Request {
	if q.insertPoint == nilHandle {
		return nil
	}
	return q.node(q.insertPoint).req
}

// First returns the request at the head of the queue without removing it.
// Returns nil if the queue is empty.
func (q *BioQueue) First() *Request {
	if q.head == nilHandle {
		return nil
	}
	return q.node(q.head).req
}

// InsertHead places req at the front of the queue regardless of its offset.
// Used to requeue a request that must be serviced next; it does not keep
// the queue sorted.
func (q *BioQueue) InsertHead(req *Request) {
	wasEmpty := q.n == 0
	h := q.claim(req, "InsertHead")
	q.linkBefore(q.head, h)
	if wasEmpty {
		q.insertPoint = h
	}
}

// InsertTail places req at the back of the queue regardless of its offset.
func (q *BioQueue) InsertTail(req *Request) {
	wasEmpty := q.n == 0
	h := q.claim(req, "InsertTail")
	q.linkAfter(q.tail, h)
	if wasEmpty {
		q.insertPoint = h
	}
}

// Disksort inserts req at its place in elevator order. Requests at or past
// lastOffset join the current scan, anything below it waits for the next
// pass. Requests with equal offsets keep their insertion order.
func (q *BioQueue) Disksort(req *Request) {
	if q.n == 0 {
		q.InsertTail(req)
		return
	}
	h := q.claim(req, "Disksort")

	// Sequential I/O: going past the tail needs no scan.
	if req.Offset > q.node(q.tail).req.Offset {
		q.linkAfter(q.tail, h)
		return
	}

	start, fromInsertPoint := q.head, false
	if req.Offset >= q.lastOffset {
		start, fromInsertPoint = q.insertPoint, true
	}

	if req.Offset < q.node(start).req.Offset {
		q.linkBefore(start, h)
		if fromInsertPoint {
			q.insertPoint = h
		}
		return
	}

	cur := start
	for next := q.node(cur).next; next != nilHandle; next = q.node(cur).next {
		if req.Offset < q.node(next).req.Offset {
			break
		}
		cur = next
	}
	q.linkAfter(cur, h)
}

// Remove unlinks req, which may be anywhere in the queue. Removing the
// insert point advances the scan to the next request, wrapping to the head
// of the queue with lastOffset reset to 0 when nothing is left ahead.
// Ownership of req returns to the caller.
func (q *BioQueue) Remove(req *Request) {
	if req == nil {
		panic("BioQueue.Remove: req must not be nil")
	}
	if req.owner != q {
		panic(fmt.Sprintf("BioQueue.Remove: request %q is not linked into this queue", req.ID))
	}
	h := req.slot
	next := q.node(h).next
	if h == q.insertPoint {
		q.lastOffset = req.Offset
		q.insertPoint = next
		if next == nilHandle {
			q.lastOffset = 0
			q.insertPoint = q.head
			if q.insertPoint == h {
				q.insertPoint = nilHandle
			}
		}
	}
	q.unlink(h)
	q.release(h)
	if q.n == 0 {
		q.lastOffset = 0
		q.insertPoint = nilHandle
	}
}

// TakeFirst removes and returns the head of the queue, or nil if the queue
// is empty. Repeated calls drain the queue in elevator order.
func (q *BioQueue) TakeFirst() *Request {
	req := q.First()
	if req != nil {
		q.Remove(req)
	}
	return req
}

// Flush drains the queue, handing every request to finish together with
// stats and status. The queue does not look at either.
func (q *BioQueue) Flush(finish FinishFunc, stats *DeviceStats, status unix.Errno) {
	if finish == nil {
		panic("BioQueue.Flush: finish must not be nil")
	}
	for req := q.TakeFirst(); req != nil; req = q.TakeFirst() {
		finish(req, stats, status)
	}
}

// Items returns the queued requests in queue order. The slice is a copy;
// the requests are still owned by the queue.
func (q *BioQueue) Items() []*Request {
	items := make([]*Request, 0, q.n)
	for h := q.head; h != nilHandle; h = q.node(h).next {
		items = append(items, q.node(h).req)
	}
	return items
}

func (q *BioQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for h := q.head; h != nilHandle; h = q.node(h).next {
		if h == q.insertPoint {
			sb.WriteString("*")
		}
		fmt.Fprintf(&sb, "%d", q.node(h).req.Offset)
		if q.node(h).next != nilHandle {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

func (q *BioQueue) node(h handle) *bioNode {
	return &q.nodes[h-1]
}

// claim takes ownership of req and assigns it an arena slot.
func (q *BioQueue) claim(req *Request, op string) handle {
	if req == nil {
		panic(fmt.Sprintf("BioQueue.%s: req must not be nil", op))
	}
	if req.owner != nil {
		panic(fmt.Sprintf("BioQueue.%s: request %q is already linked into a queue", op, req.ID))
	}
	var h handle
	if n := len(q.free); n > 0 {
		h = q.free[n-1]
		q.free = q.free[:n-1]
	} else {
		q.nodes = append(q.nodes, bioNode{})
		h = handle(len(q.nodes))
	}
	*q.node(h) = bioNode{req: req}
	req.owner = q
	req.slot = h
	return h
}

func (q *BioQueue) release(h handle) {
	nd := q.node(h)
	nd.req.owner = nil
	nd.req.slot = nilHandle
	*nd = bioNode{}
	q.free = append(q.free, h)
}

// linkBefore links h in front of at; a nil at appends to the tail.
func (q *BioQueue) linkBefore(at, h handle) {
	if at == nilHandle {
		q.linkAfter(q.tail, h)
		return
	}
	nd, atNode := q.node(h), q.node(at)
	nd.next = at
	nd.prev = atNode.prev
	if atNode.prev == nilHandle {
		q.head = h
	} else {
		q.node(atNode.prev).next = h
	}
	atNode.prev = h
	q.n++
}

// linkAfter links h behind at; a nil at means the queue is empty.
func (q *BioQueue) linkAfter(at, h handle) {
	nd := q.node(h)
	if at == nilHandle {
		nd.prev, nd.next = nilHandle, nilHandle
		q.head, q.tail = h, h
		q.n++
		return
	}
	atNode := q.node(at)
	nd.prev = at
	nd.next = atNode.next
	if atNode.next == nilHandle {
		q.tail = h
	} else {
		q.node(atNode.next).prev = h
	}
	atNode.next = h
	q.n++
}

func (q *BioQueue) unlink(h handle) {
	nd := q.node(h)
	if nd.prev == nilHandle {
		q.head = nd.next
	} else {
		q.node(nd.prev).next = nd.next
	}
	if nd.next == nilHandle {
		q.tail = nd.prev
	} else {
		q.node(nd.next).prev = nd.prev
	}
	nd.prev, nd.next = nilHandle, nilHandle
	q.n--
}
