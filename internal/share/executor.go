package share

import (
	"sync"
)

// Executor runs presentation work on the UI execution context.
type Executor interface {
	// Run schedules fn. It returns ErrClosed if the executor no longer
	// accepts work.
	Run(fn func()) error
}

// Inline runs fn on the calling goroutine.
type Inline struct{}

func (Inline) Run(fn func()) error {
	fn()
	return nil
}

// MainLoop is a single goroutine draining a queue of calls, standing in for a
// UI thread. Calls run one at a time in submission order.
type MainLoop struct {
	calls chan func()
	quit  chan struct{}
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewMainLoop starts the loop goroutine.
func NewMainLoop() *MainLoop {
	l := &MainLoop{
		calls: make(chan func(), 16),
		quit:  make(chan struct{}),
	}
	l.wg.Add(1)
	go l.loop()
	return l
}

func (l *MainLoop) loop() {
	defer l.wg.Done()
	for {
		select {
		case fn := <-l.calls:
			fn()
		case <-l.quit:
			// Drain what was queued before Close.
			for {
				select {
				case fn := <-l.calls:
					fn()
				default:
					return
				}
			}
		}
	}
}

func (l *MainLoop) Run(fn func()) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrClosed
	}
	l.calls <- fn
	return nil
}

// Close stops accepting calls, runs the ones already queued and waits for
// the loop to exit.
func (l *MainLoop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	close(l.quit)
	l.mu.Unlock()
	l.wg.Wait()
}
