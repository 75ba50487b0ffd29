package search

import (
	"sync"
	"time"
)

// Debouncer fires the last value passed to Trigger once no other Trigger has
// happened for the wait window. Each Trigger or Cancel starts a new
// generation; a callback is only run for the generation that is still current.
type Debouncer struct {
	wait time.Duration
	fire func(gen uint64, value string)

	mu    sync.Mutex
	gen   uint64
	timer *time.Timer
}

func NewDebouncer(wait time.Duration, fire func(gen uint64, value string)) *Debouncer {
	return &Debouncer{wait: wait, fire: fire}
}

// Trigger restarts the window with value and returns its generation.
func (d *Debouncer) Trigger(value string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.wait, func() {
		if d.Current(gen) {
			d.fire(gen, value)
		}
	})

	return gen
}

// Cancel drops any pending value.
func (d *Debouncer) Cancel() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	return d.gen
}

// Current reports whether gen is the latest generation.
func (d *Debouncer) Current(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return gen == d.gen
}
