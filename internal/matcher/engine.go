package matcher

import (
	"time"

	"doppel/internal/domain"
)

// Command is one instruction to the engine worker. Commands of the same
// kind supersede each other: within one drain cycle only the newest
// search and the newest reload take effect.
type Command interface {
	isCommand()
}

// SearchCommand replaces the active query with the full current string.
type SearchCommand struct {
	Query string
}

// ReloadCommand replaces the whole candidate set. There are no partial
// item updates; any change means a full reload.
type ReloadCommand struct {
	Games []domain.Game
}

func (SearchCommand) isCommand() {}
func (ReloadCommand) isCommand() {}

// Defaults for Options zero values.
const (
	DefaultTickBudget = 10 * time.Millisecond
	DefaultQueueSize  = 128
)

// Options configures the engine.
type Options struct {
	// Scorer ranks columns; nil selects the fzf-backed default.
	Scorer Scorer
	// TickBudget caps the wall-clock time of one ranking slice.
	TickBudget time.Duration
	// QueueSize is the inbound command buffer. It should be large
	// enough that a typing burst never drops a command outright;
	// coalescing handles the superseding.
	QueueSize int
}

// Engine owns the candidate store, the compiled pattern and the ranking
// state, all driven from a single worker goroutine. The only shared
// boundaries are the inbound command queue and the outbound results
// channel.
type Engine struct {
	cmds    chan Command
	results chan Results
	store   *Store
	sched   *Scheduler
	pattern Pattern
	budget  time.Duration
	closing bool
}

// New creates an engine. Call Run on its own goroutine to start it.
func New(opts Options) *Engine {
	if opts.TickBudget <= 0 {
		opts.TickBudget = DefaultTickBudget
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	return &Engine{
		cmds:    make(chan Command, opts.QueueSize),
		results: make(chan Results, 1),
		store:   NewStore(),
		sched:   NewScheduler(opts.Scorer),
		pattern: CompilePattern(""),
		budget:  opts.TickBudget,
	}
}

// Commands returns the inbound queue. Closing it is the designed way to
// stop the worker.
func (e *Engine) Commands() chan<- Command { return e.cmds }

// Results returns the outbound snapshot stream. A snapshot left
// unconsumed is overwritten by the next one; the final snapshot of an
// uninterrupted pass always survives. The channel is closed when the
// worker exits.
func (e *Engine) Results() <-chan Results { return e.results }

// TrySend enqueues a command without blocking and reports whether it was
// accepted. Bursts beyond the queue size are dropped, which coalescing
// makes harmless as long as the producer retries on the next change.
func (e *Engine) TrySend(cmd Command) bool {
	select {
	case e.cmds <- cmd:
		return true
	default:
		return false
	}
}

// Run executes the worker loop: block for a command, drain the rest of
// the burst, apply the newest reload and search, then advance the
// ranking pass in slices until it completes or a new command interrupts
// it. Run returns when the command queue is closed, after finishing any
// pass already in progress, and closes the results channel on the way
// out.
func (e *Engine) Run() {
	defer close(e.results)

	for {
		cmd, ok := <-e.cmds
		if !ok {
			return
		}

		for cmd != nil {
			reload, search := e.drain(cmd)
			cmd = nil

			if reload != nil {
				e.store.Replace(reload.Games)
			}
			if search != nil {
				e.pattern = CompilePattern(search.Query)
			}
			// Either replacement invalidates the pass in progress;
			// partial rankings over an old generation or pattern are
			// never reused.
			e.sched.Reset(e.store.Snapshot(), e.pattern)

			if next, interrupted := e.rank(); interrupted {
				cmd = next
			}
		}

		if e.closing {
			return
		}
	}
}

// drain coalesces cmd plus everything already buffered, keeping only the
// newest command of each kind. Superseded commands have no side effects.
func (e *Engine) drain(cmd Command) (reload *ReloadCommand, search *SearchCommand) {
	apply := func(c Command) {
		switch c := c.(type) {
		case ReloadCommand:
			reload = &c
		case SearchCommand:
			search = &c
		}
	}
	apply(cmd)

	for {
		select {
		case c, ok := <-e.cmds:
			if !ok {
				e.closing = true
				return
			}
			apply(c)
		default:
			return
		}
	}
}

// rank advances the current pass slice by slice, publishing after every
// slice that changed the ordering. Between slices it polls the command
// queue: a buffered command aborts the pass (its partial results stand
// unpublished beyond what already went out) and is returned for the next
// drain cycle. Once the queue is known closed the pass runs to the end
// so the final snapshot still goes out.
func (e *Engine) rank() (next Command, interrupted bool) {
	for {
		st := e.sched.Tick(e.budget)
		if st.Changed {
			e.publish(e.sched.Results())
		}
		if !st.Running {
			return nil, false
		}
		if e.closing {
			continue
		}

		select {
		case c, ok := <-e.cmds:
			if !ok {
				e.closing = true
				continue
			}
			return c, true
		default:
		}
	}
}

// publish delivers a snapshot without ever blocking the worker: when the
// consumer has not picked up the previous snapshot it is dropped in
// favor of the new one.
func (e *Engine) publish(r Results) {
	for {
		select {
		case e.results <- r:
			return
		default:
		}
		select {
		case <-e.results:
		default:
		}
	}
}
