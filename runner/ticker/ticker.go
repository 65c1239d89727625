/*
MIT License

Copyright (c) 2022 Nicolas JUHEL

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package ticker is the coarse-grained, second-resolution fallback
// scheduler: used when no reactor timer is installed yet (or on a
// platform where the fallback reactor itself wants a plain periodic
// driver), it fires fn on a fixed interval until stopped or its context
// is cancelled.
package ticker

import (
	"context"
	"sync"
	"time"
)

// minInterval floors pathologically small durations so time.NewTicker
// never panics.
const minInterval = time.Millisecond

// Func is invoked on every tick; it receives the running context and the
// underlying time.Ticker so it may Reset it if it wants a variable rate.
type Func func(ctx context.Context, t *time.Ticker) error

// Ticker is the restartable periodic-firing handle.
type Ticker interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error
	IsRunning() bool
	Uptime() time.Duration
}

type ticker struct {
	d  time.Duration
	fn Func

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	running   bool
	startedAt time.Time
}

// New creates a Ticker firing fn every d (floored at 1ms). fn may be nil,
// in which case each tick is simply absorbed.
func New(d time.Duration, fn Func) Ticker {
	if d < minInterval {
		d = minInterval
	}
	return &ticker{d: d, fn: fn}
}

func (t *ticker) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		if err := t.Stop(ctx); err != nil {
			return err
		}
		t.mu.Lock()
	}

	cctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done
	t.running = true
	t.startedAt = time.Now()
	fn := t.fn
	interval := t.d
	t.mu.Unlock()

	go func() {
		defer close(done)
		tk := time.NewTicker(interval)
		defer tk.Stop()
		for {
			select {
			case <-cctx.Done():
				t.mu.Lock()
				t.running = false
				t.mu.Unlock()
				return
			case <-tk.C:
				if fn != nil {
					_ = fn(cctx, tk)
				}
			}
		}
	}()

	return nil
}

func (t *ticker) Stop(ctx context.Context) error {
	t.mu.Lock()
	cancel := t.cancel
	done := t.done
	t.cancel = nil
	t.done = nil
	t.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}
	return nil
}

func (t *ticker) Restart(ctx context.Context) error {
	if err := t.Stop(ctx); err != nil {
		return err
	}
	return t.Start(ctx)
}

func (t *ticker) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *ticker) Uptime() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return 0
	}
	return time.Since(t.startedAt)
}
