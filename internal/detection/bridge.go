package detection

import "sync"

// Bridge broadcasts the latest Outcome from its single writer (the
// Controller) to every subscriber. Delivery is synchronous and follows
// publish order. Publishing the same value twice is legal; subscribers that
// care must dedupe themselves.
type Bridge struct {
	mu       sync.Mutex
	handlers []func(Outcome)
}

func NewBridge() *Bridge {
	return &Bridge{}
}

// Subscribe registers a callback that receives every published outcome.
func (b *Bridge) Subscribe(fn func(Outcome)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, fn)
}

// Publish delivers the outcome to all subscribers before returning. The
// lock is held across delivery so concurrent publishes cannot reorder.
func (b *Bridge) Publish(outcome Outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, fn := range b.handlers {
		fn(outcome)
	}
}
