// Package poll runs fixed-interval fetch loops whose latest result replaces
// the previous one.
package poll

import (
	"context"
	"time"
)

// Observer is told about every fetch.
type Observer interface {
	ObservePoll(stream string, err error)
}

type Poller[T any] struct {
	Name     string
	Interval time.Duration
	Fetch    func(context.Context) (T, error)
	// OnError is called for failed fetches; polling continues.
	OnError  func(error)
	Observer Observer
}

// Run fetches immediately and then every Interval until ctx is done. The
// returned channel holds at most the latest unread result and is closed
// when the loop stops.
func (p *Poller[T]) Run(ctx context.Context) <-chan T {
	out := make(chan T, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(p.Interval)
		defer ticker.Stop()
		for {
			p.once(ctx, out)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return out
}

func (p *Poller[T]) once(ctx context.Context, out chan T) {
	v, err := p.Fetch(ctx)
	if ctx.Err() != nil {
		return
	}
	if p.Observer != nil {
		p.Observer.ObservePoll(p.Name, err)
	}
	if err != nil {
		if p.OnError != nil {
			p.OnError(err)
		}
		return
	}
	// drop an unread stale value so the newest wins
	select {
	case <-out:
	default:
	}
	out <- v
}
