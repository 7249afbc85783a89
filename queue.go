package qfield

import "sync/atomic"

// eventQueueSize bounds pending events between ticks. Power of two so the
// ring index is a mask. When the ring fills, the oldest unread events are
// overwritten; the most recent interaction always wins.
const (
	eventQueueSize = 256
	eventQueueMask = eventQueueSize - 1
)

// eventQueue is a lock-free MPSC ring buffer: Emit may run on any number of
// input-handling goroutines, the tick loop is the sole consumer. Published
// flags keep the consumer from observing a slot whose write is still in
// flight.
type eventQueue struct {
	slots     [eventQueueSize]Event
	published [eventQueueSize]atomic.Bool
	head      atomic.Uint64 // read index
	tail      atomic.Uint64 // write index
}

// push appends one event. Safe for concurrent producers; never blocks.
func (q *eventQueue) push(ev Event) {
	for {
		tail := q.tail.Load()
		next := tail + 1
		if !q.tail.CompareAndSwap(tail, next) {
			continue
		}
		idx := tail & eventQueueMask
		q.slots[idx] = ev
		q.published[idx].Store(true) // must follow the slot write

		// If we lapped unread events, drag head forward past them.
		head := q.head.Load()
		if next-head > eventQueueSize {
			q.head.CompareAndSwap(head, next-eventQueueSize)
		}
		return
	}
}

// drain appends all pending events to dst in emission order and returns the
// extended slice. Single-consumer only (the tick loop).
func (q *eventQueue) drain(dst []Event) []Event {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		if tail == head {
			return dst
		}
		available := tail - head
		if available > eventQueueSize {
			available = eventQueueSize
			head = tail - eventQueueSize
		}

		start := len(dst)
		for i := uint64(0); i < available; i++ {
			idx := (head + i) & eventQueueMask
			if !q.published[idx].Load() {
				break // writer not finished with this slot yet
			}
			dst = append(dst, q.slots[idx])
			q.published[idx].Store(false)
		}

		taken := uint64(len(dst) - start)
		if q.head.CompareAndSwap(head, head+taken) {
			return dst
		}
		dst = dst[:start] // a producer lapped us; retry from scratch
	}
}
