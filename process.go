package tsnsim

//
// Cooperative processes: goroutines rendezvousing with the Engine
//

// Interrupt is the signal a [Process] observes, in place of an event's
// normal completion, when [Engine.Interrupt] targets it. spec.md §4.1:
// "the interrupted event is considered consumed; the process decides
// whether to reissue it."
type Interrupt struct {
	// Cause is an opaque, implementation-chosen description of why the
	// process was interrupted (e.g. "stop sending", "continue sending").
	Cause string
}

// Outcome is what a [Process] receives when the [Engine] resumes it: either
// the normal completion of the event it yielded (Value/Err) or an
// [Interrupt] that preempted that wait.
type Outcome struct {
	Interrupt *Interrupt
	Value     any
	Err       error
}

// ProcessFunc is the body of a cooperative process. It receives the
// [Process] handle to call [Process.Yield] on, and returns an error that
// becomes the process's completion [Event]'s Err.
type ProcessFunc func(p *Process) error

// Process is a cooperative task driven by an [Engine]. The zero value is
// invalid; use [Engine.Spawn]. A Process is itself awaitable: yielding
// [Process.Done] suspends the caller until this process's body returns.
type Process struct {
	engine *Engine
	name   string

	toProc   chan Outcome
	fromProc chan *Event
	finished chan struct{}

	err              error
	awaiting         *Event
	pendingInterrupt *Interrupt

	doneEvent *Event
}

// Name returns the process's (purely diagnostic) name.
func (p *Process) Name() string { return p.name }

// Done returns the [Event] that fires once this process's body returns.
func (p *Process) Done() *Event { return p.doneEvent }

// Err returns the error the process's body returned. Only meaningful
// after [Process.Completed] is true.
func (p *Process) Err() error { return p.err }

// Completed reports whether the process's body has already returned.
func (p *Process) Completed() bool {
	select {
	case <-p.finished:
		return true
	default:
		return false
	}
}

// Yield suspends the calling process until ev fires or the process is
// interrupted, whichever happens first. Yield must only be called from
// inside the process's own [ProcessFunc] goroutine.
func (p *Process) Yield(ev *Event) Outcome {
	if p.pendingInterrupt != nil {
		i := p.pendingInterrupt
		p.pendingInterrupt = nil
		return Outcome{Interrupt: i}
	}
	p.awaiting = ev
	p.engine.registerWaiter(ev, p)
	p.fromProc <- ev
	out := <-p.toProc
	p.awaiting = nil
	return out
}

// Spawn registers fn as a new cooperative process and runs it up to its
// first [Process.Yield] call (or to completion, if it never yields).
func (e *Engine) Spawn(name string, fn ProcessFunc) *Process {
	p := &Process{
		engine:    e,
		name:      newProcessName(name, e.procs.next()),
		toProc:    make(chan Outcome),
		fromProc:  make(chan *Event),
		finished:  make(chan struct{}),
		doneEvent: e.NewEvent(),
	}
	go func() {
		defer close(p.finished)
		p.err = fn(p)
	}()
	e.captureNext(p)
	return p
}

// captureNext blocks until p either yields its next awaited [Event] (in
// which case p.awaiting has already been registered by [Process.Yield])
// or finishes.
func (e *Engine) captureNext(p *Process) {
	select {
	case <-p.fromProc:
		// p.awaiting was set and registered by Process.Yield before it
		// sent on fromProc; nothing left to do here.
	case <-p.finished:
		e.onProcessDone(p)
	}
}

// resumeAndCapture hands outcome to p and blocks until p yields again or finishes.
func (e *Engine) resumeAndCapture(p *Process, outcome Outcome) {
	p.toProc <- outcome
	e.captureNext(p)
}

// onProcessDone fires p's completion event at the current virtual time.
func (e *Engine) onProcessDone(p *Process) {
	p.doneEvent.Err = p.err
	e.mu.Lock()
	e.enqueueLocked(p.doneEvent, e.now)
	e.mu.Unlock()
}

// Interrupt causes p, on its next resumption, to observe an [Interrupt]
// carrying cause at the point where it is (or was about to be) waiting,
// rather than the normal completion of its awaited event. The event p was
// waiting on, if any, is consumed: it will not resume p even if it later
// fires normally.
//
// Interrupting a process that has already completed is a protocol-misuse
// programming error ([ErrNotAwaiting]).
func (e *Engine) Interrupt(p *Process, cause string) error {
	if p.Completed() {
		return ErrNotAwaiting
	}
	e.mu.Lock()
	ev := p.awaiting
	if ev == nil {
		// p has not reached its next Yield call yet (or already consumed
		// a previous interrupt and hasn't re-yielded): coalesce per
		// spec.md §5 rather than deliver now.
		p.pendingInterrupt = &Interrupt{Cause: cause}
		e.mu.Unlock()
		return nil
	}
	delete(e.waiting, ev)
	p.awaiting = nil
	e.mu.Unlock()
	e.resumeAndCapture(p, Outcome{Interrupt: &Interrupt{Cause: cause}})
	return nil
}
