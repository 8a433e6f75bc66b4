package query

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period applied to search input.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer delays fn until no new value has arrived for the configured delay. Only the
// latest value of a burst is delivered.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func(T)
	timer   *time.Timer
	seq     uint64
	pending bool
	value   T
	running sync.WaitGroup
}

// NewDebouncer returns a debouncer calling fn. A non-positive delay uses DefaultDebounce.
func NewDebouncer[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Trigger records v and restarts the quiet period, superseding any pending value.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	d.pending = true
	d.value = v
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.seq != seq || !d.pending {
			d.mu.Unlock()
			return
		}
		v := d.value
		d.pending = false
		d.running.Add(1)
		d.mu.Unlock()

		defer d.running.Done()
		d.fn(v)
	})
}

// Stop cancels a pending call.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancel()
}

// Close waits for a running call of fn, then delivers the pending value right away
// instead of waiting out the quiet period. Calls already delivered are never repeated.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	pending, v := d.pending, d.value
	d.cancel()
	d.mu.Unlock()

	d.running.Wait()
	if pending {
		d.fn(v)
	}
}

func (d *Debouncer[T]) cancel() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
	d.seq++
}
