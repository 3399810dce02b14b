package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// subscriptionBuffer bounds how far a slow consumer may lag before events are
// dropped. Dropped events are recovered by the consumer's reconcile re-fetch.
const subscriptionBuffer = 64

// PGListener implements Channel on top of Postgres LISTEN/NOTIFY.
type PGListener struct {
	pool *pgxpool.Pool

	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// NewPGListener creates a listener backed by the given connection pool.
func NewPGListener(pool *pgxpool.Pool) *PGListener {
	return &PGListener{
		pool: pool,
		subs: make(map[*Subscription]struct{}),
	}
}

// Subscribe registers a filtered subscription.
func (l *PGListener) Subscribe(f Filter) (*Subscription, error) {
	s := NewSubscription(f, subscriptionBuffer)
	l.mu.Lock()
	l.subs[s] = struct{}{}
	l.mu.Unlock()
	return s, nil
}

// Unsubscribe removes the subscription and closes its event stream.
func (l *PGListener) Unsubscribe(s *Subscription) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.subs[s]; !ok {
		return
	}
	delete(l.subs, s)
	s.Close()
}

// Run listens on the NOTIFY channel until ctx is cancelled. A broken listen
// connection drops all current subscriptions (their streams close) and Run
// reconnects; subscribers resubscribe and reconcile.
func (l *PGListener) Run(ctx context.Context) {
	for {
		if err := l.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("realtime: listener connection lost: %v", err)
			l.dropAll()
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}
		return
	}
}

func (l *PGListener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		return err
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		var e Event
		if err := json.Unmarshal([]byte(n.Payload), &e); err != nil {
			log.Printf("realtime: malformed notification payload: %v", err)
			continue
		}
		l.dispatch(e)
	}
}

func (l *PGListener) dispatch(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for s := range l.subs {
		if !s.filter.Matches(e) {
			continue
		}
		s.Push(e)
	}
}

func (l *PGListener) dropAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for s := range l.subs {
		delete(l.subs, s)
		s.Close()
	}
}
