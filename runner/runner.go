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

// Package runner wraps a blocking start/stop function pair (the shape of
// one worker's reactor.Run loop) into a restartable, introspectable
// lifecycle: Start/Stop/Restart/IsRunning/Uptime, plus the small error
// history the supervisor's status dump surfaces per worker.
package runner

import (
	"context"
	"sync"
	"time"
)

// FuncAction is the start or stop hook: start typically blocks until its
// context is cancelled (running the reactor's Run loop); stop performs any
// teardown once that context is done.
type FuncAction func(ctx context.Context) error

// StartStop is the restartable lifecycle handle.
type StartStop interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error
	IsRunning() bool
	Uptime() time.Duration
	ErrorsLast() error
	ErrorsList() []error
}

type runner struct {
	start FuncAction
	stop  FuncAction

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	running   bool
	startedAt time.Time

	errMu sync.Mutex
	errs  []error
}

// New wraps start/stop into a StartStop. Either may be nil; a nil start
// produces an instance that is never observed running, a nil stop simply
// skips the teardown call.
func New(start, stop FuncAction) StartStop {
	return &runner{start: start, stop: stop}
}

func (r *runner) recordErr(err error) {
	if err == nil {
		return
	}
	r.errMu.Lock()
	r.errs = append(r.errs, err)
	r.errMu.Unlock()
}

func (r *runner) ErrorsLast() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	if len(r.errs) == 0 {
		return nil
	}
	return r.errs[len(r.errs)-1]
}

func (r *runner) ErrorsList() []error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	out := make([]error, len(r.errs))
	copy(out, r.errs)
	return out
}

// Start launches start in its own goroutine under a context derived from
// ctx, stopping any instance already running first. It returns as soon as
// the new instance is launched; it does not wait for start to return.
func (r *runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		if err := r.Stop(ctx); err != nil {
			return err
		}
		r.mu.Lock()
	}

	cctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done
	r.running = true
	r.startedAt = time.Now()
	fn := r.start
	r.mu.Unlock()

	go func() {
		defer close(done)
		if fn != nil {
			r.recordErr(fn(cctx))
		}
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	return nil
}

// Stop cancels the running instance's context, waits for its goroutine to
// return, then runs the stop hook exactly once. Calling Stop when nothing
// is running, or calling it more than once concurrently, is a no-op past
// the first call.
func (r *runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	r.cancel = nil
	r.done = nil
	r.mu.Unlock()

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

	if r.stop == nil {
		return nil
	}
	err := r.stop(ctx)
	r.recordErr(err)
	return err
}

func (r *runner) Restart(ctx context.Context) error {
	if err := r.Stop(ctx); err != nil {
		return err
	}
	return r.Start(ctx)
}

func (r *runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *runner) Uptime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return 0
	}
	return time.Since(r.startedAt)
}
