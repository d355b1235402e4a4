package host

import "sync"

// effects runs side effects one at a time, in the order they were queued,
// on a single goroutine. push never blocks.
type effects struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

func newEffects() *effects {
	e := &effects{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *effects) push(fn func()) bool {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	e.queue = append(e.queue, fn)
	e.mu.Unlock()
	e.signal()
	return true
}

func (e *effects) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *effects) run() {
	defer close(e.done)
	for {
		e.mu.Lock()
		if len(e.queue) == 0 {
			closed := e.closed
			e.mu.Unlock()
			if closed {
				return
			}
			<-e.wake
			continue
		}
		fn := e.queue[0]
		e.queue[0] = nil
		e.queue = e.queue[1:]
		e.mu.Unlock()
		fn()
	}
}

// flush waits until everything queued before the call has run.
func (e *effects) flush() {
	done := make(chan struct{})
	if !e.push(func() { close(done) }) {
		<-e.done
		return
	}
	<-done
}

func (e *effects) close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.signal()
	<-e.done
}
