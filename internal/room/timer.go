package room

import (
	"time"
)

// roundTimer is the room's single countdown. Start and Cancel are only called
// from the room goroutine; the ticking goroutine only forwards ticks into the
// room inbox, tagged with the generation that started it.
type roundTimer struct {
	newTicker TickerFactory
	deliver   func(gen uint64, stop <-chan struct{}) bool

	gen  uint64
	stop chan struct{}
}

// Start cancels any running countdown and begins a new one whose first tick
// arrives one second from now.
func (t *roundTimer) Start() uint64 {
	t.Cancel()
	t.gen++
	stop := make(chan struct{})
	t.stop = stop

	c, halt := t.newTicker(time.Second)
	go t.loop(t.gen, c, halt, stop)
	return t.gen
}

func (t *roundTimer) Cancel() {
	if t.stop == nil {
		return
	}
	close(t.stop)
	t.stop = nil
}

// live reports whether a tick from gen belongs to the running countdown.
func (t *roundTimer) live(gen uint64) bool {
	return t.stop != nil && gen == t.gen
}

func (t *roundTimer) loop(gen uint64, c <-chan time.Time, halt func(), stop <-chan struct{}) {
	defer halt()
	for {
		select {
		case <-stop:
			return
		case <-c:
			if !t.deliver(gen, stop) {
				return
			}
		}
	}
}
