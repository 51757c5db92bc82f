package locks

import "sync"

// Loop is a serial executor: closures posted with Schedule run one at a
// time, in order, on a single goroutine. It supplies the confinement the
// Coordinator requires in hosts that have no UI event loop of their own,
// such as the CLI subcommands and tests. The TUI wires the Coordinator to
// its own update loop instead and never constructs a Loop.
type Loop struct {
	ch   chan func()
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

// NewLoop starts the loop goroutine.
func NewLoop() *Loop {
	l := &Loop{
		ch:   make(chan func(), 64),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case fn := <-l.ch:
			fn()
		case <-l.quit:
			// Run what was already queued, then exit.
			for {
				select {
				case fn := <-l.ch:
					fn()
				default:
					return
				}
			}
		}
	}
}

// Schedule queues fn to run on the loop goroutine. Closures posted after
// Close are silently dropped, so late task completions cannot touch state
// that is being torn down.
func (l *Loop) Schedule(fn func()) {
	select {
	case <-l.quit:
	case l.ch <- fn:
	}
}

// Flush blocks until every closure scheduled before the call has run.
func (l *Loop) Flush() {
	ran := make(chan struct{})
	select {
	case l.ch <- func() { close(ran) }:
	case <-l.quit:
		return
	}
	select {
	case <-ran:
	case <-l.done:
	}
}

// Close stops the loop and waits for its goroutine to exit. Closures
// already queued still run; Close is idempotent.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.quit) })
	<-l.done
}
