package synth

import (
	"container/heap"
	"sync"
)

// Scheduler is the sample-accurate event queue (§4.7): a priority queue
// ordered by sample timestamp, stable FIFO on ties. Submit is the
// single-producer side (the host's control thread); Drain is the
// single-consumer side, called once per render block from the audio
// thread (§5's SPSC handoff, implemented here as a mutex-guarded heap
// since no lock-free queue library appears anywhere in the retrieved
// pack — see DESIGN.md).
type Scheduler struct {
	mu      sync.Mutex
	pending eventHeap
	nextSeq uint64
}

type pendingEvent struct {
	ev  Event
	seq uint64
}

type eventHeap []pendingEvent

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].ev.Timestamp != h[j].ev.Timestamp {
		return h[i].ev.Timestamp < h[j].ev.Timestamp
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)   { *h = append(*h, x.(pendingEvent)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	s := &Scheduler{}
	heap.Init(&s.pending)
	return s
}

// Submit enqueues ev. Safe to call from any goroutine.
func (s *Scheduler) Submit(ev Event) {
	s.mu.Lock()
	heap.Push(&s.pending, pendingEvent{ev: ev, seq: s.nextSeq})
	s.nextSeq++
	s.mu.Unlock()
}

// Drain pops every event with Timestamp < before, in timestamp then
// submission order, appending to out and returning the grown slice. The
// caller (Engine.Render) reuses its out slice across blocks so steady
// -state draining does not allocate.
func (s *Scheduler) Drain(before int64, out []Event) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.pending) > 0 && s.pending[0].ev.Timestamp < before {
		item := heap.Pop(&s.pending).(pendingEvent)
		out = append(out, item.ev)
	}
	return out
}

// Reset discards all pending events (§5 "reset ... clears ... the
// scheduler queue").
func (s *Scheduler) Reset() {
	s.mu.Lock()
	s.pending = s.pending[:0]
	s.mu.Unlock()
}
