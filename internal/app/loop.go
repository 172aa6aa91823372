// Package app wires the client together and owns its single logic
// goroutine: every handler that touches the element tree runs as a
// closure on the loop, so tree access needs no locking.
package app

import "context"

// Loop serializes closures onto one goroutine.
type Loop struct {
	ops chan func()
}

func NewLoop() *Loop {
	return &Loop{ops: make(chan func(), 64)}
}

// Do schedules fn on the loop. Safe from any goroutine; blocks only
// when the queue is full.
func (l *Loop) Do(fn func()) {
	l.ops <- fn
}

// Run executes queued closures until ctx is done.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.ops:
			fn()
		}
	}
}
