package tsnsim

//
// Event kernel: virtual clock, priority queue, run loop
//

import (
	"math/rand"
	"sync"

	"github.com/google/btree"

	"github.com/tsnsim/tsnsim/internal"
)

var _ Logger = &internal.NullLogger{}

// Event is a virtual-time event. The zero value is invalid; obtain one
// from [Engine.Timeout] or [Engine.NewEvent].
//
// An [Event] returned by [Engine.Timeout] fires on its own once virtual
// time reaches its scheduled instant. An [Event] returned by
// [Engine.NewEvent] never fires spontaneously: something else must call
// [Event.Succeed] or [Event.Fail]. This is also how spec.md's "never
// firing sleep" primitive is expressed — an [Engine.NewEvent] that nobody
// ever completes.
type Event struct {
	engine *Engine
	seq    uint64
	at     float64
	queued bool
	fired  bool

	// Value and Err are populated once the event fires.
	Value any
	Err   error
}

// Fired reports whether this event has already fired.
func (ev *Event) Fired() bool {
	ev.engine.mu.Lock()
	defer ev.engine.mu.Unlock()
	return ev.fired
}

// Succeed schedules ev to fire at the current virtual time carrying value,
// unless it is already queued or fired. Firing is deferred to the next
// turn of the run loop and ordered FIFO among events scheduled at the
// same virtual time, per spec.md §4.1's ordering contract.
func (ev *Event) Succeed(value any) {
	ev.engine.mu.Lock()
	defer ev.engine.mu.Unlock()
	if ev.queued || ev.fired {
		return
	}
	ev.Value = value
	ev.engine.enqueueLocked(ev, ev.engine.now)
}

// Fail is like [Event.Succeed] but completes the event with an error.
func (ev *Event) Fail(err error) {
	ev.engine.mu.Lock()
	defer ev.engine.mu.Unlock()
	if ev.queued || ev.fired {
		return
	}
	ev.Err = err
	ev.engine.enqueueLocked(ev, ev.engine.now)
}

// eventQueueItem is the [btree.Item] wrapping a pending [Event], ordered
// by (scheduled time, scheduling sequence number) so that events due at
// the same virtual time fire in the order they were scheduled.
type eventQueueItem struct {
	at  float64
	seq uint64
	ev  *Event
}

var _ btree.Item = &eventQueueItem{}

// Less implements btree.Item.
func (a *eventQueueItem) Less(than btree.Item) bool {
	b := than.(*eventQueueItem)
	if a.at != b.at {
		return a.at < b.at
	}
	return a.seq < b.seq
}

// EngineConfig contains config for creating an [Engine]. Every field is
// OPTIONAL.
type EngineConfig struct {
	// Logger is OPTIONAL; a nil Logger falls back to a silent
	// internal.NullLogger.
	Logger Logger

	// Seed is the OPTIONAL seed for the engine's pseudo-random source.
	// Two engines created with the same seed and driven with the same
	// topology and generators produce byte-identical event tables.
	Seed int64
}

// Engine is the discrete-event kernel: a virtual clock, a time-ordered
// event queue, and the bookkeeping needed to run cooperative [Process]es.
// The zero value is invalid; use [NewEngine].
type Engine struct {
	// mu guards now, queue, seq and waiting. Under correct usage exactly
	// one goroutine ever touches these at a time (see process.go), but
	// the mutex is kept anyway, following the teacher's habit of pairing
	// every piece of shared state with a small, narrowly-scoped lock.
	mu sync.Mutex

	now     float64
	queue   *btree.BTree
	nextSeq uint64
	waiting map[*Event]*Process

	logger Logger
	rng    *rand.Rand

	frames idCounter
	procs  idCounter
}

// NewEngine creates a new [Engine]. A nil cfg.Logger falls back to a
// [internal.NullLogger] that silently discards everything.
func NewEngine(cfg *EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = &internal.NullLogger{}
	}
	return &Engine{
		queue:   btree.New(32),
		waiting: make(map[*Event]*Process),
		logger:  logger,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Now returns the engine's current virtual time.
func (e *Engine) Now() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

// Logger returns the [Logger] this engine was configured with.
func (e *Engine) Logger() Logger {
	return e.logger
}

// NextFrameID returns the next monotonically increasing frame id for this
// engine (spec.md §9: a per-engine counter replaces the source's
// class-level one).
func (e *Engine) NextFrameID() int64 {
	return e.frames.next()
}

// Timeout returns an [Event] that fires at now+delta unless interrupted
// beforehand by whatever holds the [Process] waiting on it.
func (e *Engine) Timeout(delta float64) *Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	ev := &Event{engine: e}
	e.enqueueLocked(ev, e.now+delta)
	return ev
}

// NewEvent returns an [Event] that never fires on its own; see [Event].
func (e *Engine) NewEvent() *Event {
	return &Event{engine: e}
}

// enqueueLocked inserts ev into the time-ordered queue. Callers must hold e.mu.
func (e *Engine) enqueueLocked(ev *Event, at float64) {
	ev.at = at
	ev.queued = true
	e.nextSeq++
	ev.seq = e.nextSeq
	e.queue.ReplaceOrInsert(&eventQueueItem{at: at, seq: ev.seq, ev: ev})
}

// registerWaiter records, under e.mu, that p is the process currently waiting on ev.
func (e *Engine) registerWaiter(ev *Event, p *Process) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.waiting[ev] = p
}

// fireEvent pops an already-dequeued event, marks it fired, and resumes
// whichever [Process] is (still) waiting on it, if any. An event can have
// no waiter left at fire time if [Engine.Interrupt] stole its waiter first.
func (e *Engine) fireEvent(ev *Event) {
	e.mu.Lock()
	ev.fired = true
	p, ok := e.waiting[ev]
	if ok {
		delete(e.waiting, ev)
	}
	e.mu.Unlock()
	if ok {
		e.resumeAndCapture(p, Outcome{Value: ev.Value, Err: ev.Err})
	}
}

// RunUntil advances virtual time, firing due events in scheduling order,
// until now reaches until or the event queue is empty.
func (e *Engine) RunUntil(until float64) error {
	for {
		e.mu.Lock()
		item := e.queue.Min()
		if item == nil {
			e.mu.Unlock()
			return nil
		}
		qi := item.(*eventQueueItem)
		if qi.at >= until {
			e.now = until
			e.mu.Unlock()
			return nil
		}
		e.queue.Delete(qi)
		e.now = qi.at
		e.mu.Unlock()
		e.fireEvent(qi.ev)
	}
}

// RunUntilEvent is like [Engine.RunUntil] except it stops as soon as stop
// fires (or the queue empties, whichever comes first), and returns stop's
// error, if any.
func (e *Engine) RunUntilEvent(stop *Event) error {
	for {
		e.mu.Lock()
		if stop.fired {
			e.mu.Unlock()
			return stop.Err
		}
		item := e.queue.Min()
		if item == nil {
			e.mu.Unlock()
			return nil
		}
		qi := item.(*eventQueueItem)
		e.queue.Delete(qi)
		e.now = qi.at
		e.mu.Unlock()
		e.fireEvent(qi.ev)
	}
}
