package observer

import "sync"

// Subscribe wraps Bus.Subscribe with a filter/map closure and an
// unbounded forwarding queue: match decides whether an Event is kept,
// transform projects it to T. The returned channel is closed, and the
// internal goroutine exits, once the bus drops this subscriber (Close)
// or the caller stops draining and calls the returned cancel func.
func Subscribe[T any](bus *Bus, match func(Event) bool, transform func(Event) T) (<-chan T, func()) {
	raw := bus.Subscribe()
	out := make(chan T)
	done := make(chan struct{})
	var closeOnce sync.Once

	go func() {
		defer close(out)
		var pending []T
		for {
			var sendCh chan T
			var next T
			if len(pending) > 0 {
				sendCh = out
				next = pending[0]
			}
			select {
			case e, ok := <-raw:
				if !ok {
					// drain whatever is pending, then exit
					for _, v := range pending {
						select {
						case out <- v:
						case <-done:
							return
						}
					}
					return
				}
				if match == nil || match(e) {
					pending = append(pending, transform(e))
				}
			case sendCh <- next:
				pending = pending[1:]
			case <-done:
				return
			}
		}
	}()

	cancel := func() {
		closeOnce.Do(func() {
			close(done)
			bus.Unsubscribe(raw)
		})
	}
	return out, cancel
}
