package clock

import (
	"sync"
	"time"
)

// Fake is a Clock that only moves when Advance is called. Tickers fire
// during Advance once per elapsed interval; ticks that overflow the
// one-slot channel are dropped, as with time.Ticker.
type Fake struct {
	mu      sync.Mutex
	current time.Time
	tickers []*fakeTicker
}

type fakeTicker struct {
	next     time.Time
	interval time.Duration
	ch       chan time.Time
	stopped  bool
}

func NewFake(initial time.Time) *Fake {
	return &Fake{current: initial}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *Fake) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	t := &fakeTicker{
		next:     f.current.Add(d),
		interval: d,
		ch:       make(chan time.Time, 1),
	}
	f.tickers = append(f.tickers, t)

	return &Ticker{
		C: t.ch,
		stop: func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			t.stopped = true
		},
	}
}

func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.current = f.current.Add(d)
	for _, t := range f.tickers {
		for !t.stopped && !t.next.After(f.current) {
			select {
			case t.ch <- t.next:
			default:
			}
			t.next = t.next.Add(t.interval)
		}
	}
}
