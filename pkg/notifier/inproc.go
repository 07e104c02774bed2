package notifier

import (
	"context"
	"sync"
)

// inproc fans creation events out to in-process subscribers. It backs
// single-node deployments with no redis configured.
type inproc struct {
	mu   sync.Mutex
	subs map[chan SwapCreated]struct{}
}

func NewInProc() Notifier {
	return &inproc{subs: map[chan SwapCreated]struct{}{}}
}

func (n *inproc) SwapCreated(ctx context.Context, event SwapCreated) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for sub := range n.subs {
		select {
		case sub <- event:
		default:
			// Slow subscribers drop events rather than block creation.
		}
	}
	return nil
}

func (n *inproc) Subscribe(ctx context.Context) (<-chan SwapCreated, error) {
	events := make(chan SwapCreated, 16)
	n.mu.Lock()
	n.subs[events] = struct{}{}
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		n.mu.Lock()
		delete(n.subs, events)
		n.mu.Unlock()
		close(events)
	}()
	return events, nil
}
