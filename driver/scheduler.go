package driver

import "container/heap"

// Action is what a scheduled Callback asks the Scheduler to do next.
type Action int

const (
	// DoNothing means the callback will not run again on its own; a new
	// Schedule call is required to bring it back.
	DoNothing Action = iota
	// rescheduleAfter means "run me again after Result.after seconds".
	rescheduleAfter
)

// Result is a Callback's return value.
type Result struct {
	action Action
	after  float64
}

// DoNothingResult is the result returned by a callback that should not
// run again.
func DoNothingResult() Result { return Result{action: DoNothing} }

// RescheduleAfter asks the Scheduler to invoke this callback again after
// d seconds (measured from its just-completed scheduled time, so a
// regular cadence doesn't drift under lateness).
func RescheduleAfter(d float64) Result { return Result{action: rescheduleAfter, after: d} }

// Callback is a scheduler event body. lateness is how far past its
// scheduled time the callback is actually firing (clock.Now() minus the
// time it was scheduled for).
type Callback func(s *Scheduler, lateness float64) Result

type event struct {
	time float64
	cb   Callback
	seq  int64
}

type eventHeap []*event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].seq < h[j].seq // stable tie-break, FIFO among same-time events
}
func (h eventHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x interface{}) { *h = append(*h, x.(*event)) }
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	ev := old[n-1]
	*h = old[:n-1]
	return ev
}

// Scheduler is a priority queue of time-keyed callbacks, driven by Tick
// against a Clock, per spec §4.H.
type Scheduler struct {
	clock    *Clock
	queue    eventHeap
	nextSeq  int64
	deferred []*event
	ticking  bool
}

// NewScheduler returns an empty scheduler bound to clock.
func NewScheduler(clock *Clock) *Scheduler {
	return &Scheduler{clock: clock}
}

// Schedule enqueues cb to fire at absolute time at. If called from
// inside a currently-firing callback's Tick, the new event is deferred
// to the next Tick even if at <= clock.Now() (spec §4.H's "never
// executed in the same tick" guarantee).
func (s *Scheduler) Schedule(at float64, cb Callback) {
	ev := &event{time: at, cb: cb, seq: s.nextSeq}
	s.nextSeq++
	if s.ticking {
		s.deferred = append(s.deferred, ev)
		return
	}
	heap.Push(&s.queue, ev)
}

// ScheduleAfter enqueues cb to fire d seconds from now.
func (s *Scheduler) ScheduleAfter(d float64, cb Callback) {
	s.Schedule(s.clock.Now()+d, cb)
}

// Tick invokes every callback scheduled at or before clock.Now(), in
// ascending scheduled-time order, then merges any events newly
// scheduled during this tick into the queue for the next Tick call.
func (s *Scheduler) Tick() {
	now := s.clock.Now()
	s.ticking = true
	for s.queue.Len() > 0 && s.queue[0].time <= now {
		ev := heap.Pop(&s.queue).(*event)
		lateness := now - ev.time
		res := ev.cb(s, lateness)
		if res.action == rescheduleAfter {
			s.deferred = append(s.deferred, &event{time: ev.time + res.after, cb: ev.cb, seq: s.nextSeq})
			s.nextSeq++
		}
	}
	s.ticking = false
	for _, ev := range s.deferred {
		heap.Push(&s.queue, ev)
	}
	s.deferred = s.deferred[:0]
}

// Len returns the number of events currently queued (not counting any
// still deferred mid-tick).
func (s *Scheduler) Len() int { return s.queue.Len() }
