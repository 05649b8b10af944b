// ABOUTME: Unbounded queue carrying session changes from listeners into the program
// ABOUTME: Pushing never blocks, so listeners may fire from inside Update

package tui

import (
	"context"
	"sync"

	"github.com/onlinebooking/booking-cli/internal/session"
)

type changeQueue struct {
	mu    sync.Mutex
	items []session.Change
	ready chan struct{} // holds a token while items is non-empty
}

func newChangeQueue() *changeQueue {
	return &changeQueue{ready: make(chan struct{}, 1)}
}

// push appends c and wakes a waiting reader
func (q *changeQueue) push(c session.Change) {
	q.mu.Lock()
	q.items = append(q.items, c)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// next returns the oldest change, waiting until one arrives or ctx ends
func (q *changeQueue) next(ctx context.Context) (session.Change, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			c := q.items[0]
			q.items[0] = session.Change{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return c, true
		}
		q.mu.Unlock()

		select {
		case <-q.ready:
		case <-ctx.Done():
			return session.Change{}, false
		}
	}
}

func (q *changeQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
