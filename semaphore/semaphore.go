/*
MIT License

Copyright (c) 2019 Nicolas JUHEL

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

// Package semaphore bounds how many connection-handler goroutines one
// worker reactor runs concurrently: a weighted admission gate wrapping
// golang.org/x/sync/semaphore, with an optional mpb progress bar for the
// supervisor's fork/fan-out startup UI.
package semaphore

import (
	"context"
	"runtime"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/sync/semaphore"
)

// Bar is a named progress indicator tied to a semaphore's worker count.
type Bar interface {
	NewWorker() error
	NewWorkerTry() bool
	DeferWorker()
	Current() int64
	Total() int64
}

// Sem is the weighted admission-control handle. It embeds context.Context
// so a caller already holding one can select on Done()/Err() the same way
// it would on any other context.
type Sem interface {
	context.Context

	Weighted() int64
	NewWorker() error
	NewWorkerTry() bool
	DeferWorker()
	WaitAll() error

	// DeferMain releases the main-goroutine's conceptual slot and, if this
	// Sem owns an mpb container, waits for its render goroutine to finish.
	DeferMain()

	BarNumber(title, status string, total int64, noUnit bool, extra any) Bar

	// Clone returns an independent Sem with the same weight and context,
	// sharing the mpb progress container (if any) so bars render together.
	Clone() Sem
	// New is an alias of Clone.
	New() Sem
}

type sem struct {
	ctx context.Context
	n   int64
	w   *semaphore.Weighted
	pgb *mpb.Progress
}

// New creates a Sem bounding n concurrently-held workers. n <= 0 means
// unlimited (Weighted reports -1 and NewWorker/NewWorkerTry never block).
// withProgress attaches an mpb.Progress container rendered to stdout.
func New(ctx context.Context, n int64, withProgress bool) Sem {
	if ctx == nil {
		ctx = context.Background()
	}

	s := &sem{ctx: ctx, n: n}
	if n > 0 {
		s.w = semaphore.NewWeighted(n)
	}
	if withProgress {
		s.pgb = mpb.NewWithContext(ctx, mpb.WithWidth(64), mpb.WithAutoRefresh())
	}
	return s
}

// Deadline/Done/Err/Value implement context.Context by delegating to the
// wrapped context, so a Sem can stand in anywhere a context.Context is
// expected.
func (s *sem) Deadline() (time.Time, bool) { return s.ctx.Deadline() }
func (s *sem) Done() <-chan struct{}       { return s.ctx.Done() }
func (s *sem) Err() error                  { return s.ctx.Err() }
func (s *sem) Value(key any) any           { return s.ctx.Value(key) }

func (s *sem) GetMPB() interface{} {
	if s.pgb == nil {
		return nil
	}
	return s.pgb
}

func (s *sem) Weighted() int64 {
	if s.w == nil {
		return -1
	}
	return s.n
}

func (s *sem) NewWorker() error {
	if s.w == nil {
		return nil
	}
	if err := s.w.Acquire(s.ctx, 1); err != nil {
		return ErrorAcquireFailed.Error(err)
	}
	return nil
}

func (s *sem) NewWorkerTry() bool {
	if s.w == nil {
		return true
	}
	return s.w.TryAcquire(1)
}

func (s *sem) DeferWorker() {
	if s.w != nil {
		s.w.Release(1)
	}
}

// WaitAll blocks until every outstanding slot has been released, by
// acquiring (then immediately releasing) the full weight.
func (s *sem) WaitAll() error {
	if s.w == nil {
		return nil
	}
	if err := s.w.Acquire(s.ctx, s.n); err != nil {
		return ErrorAcquireFailed.Error(err)
	}
	s.w.Release(s.n)
	return nil
}

func (s *sem) DeferMain() {
	if s.pgb != nil {
		s.pgb.Wait()
	}
}

func (s *sem) BarNumber(title, status string, total int64, noUnit bool, extra any) Bar {
	b := &bar{sem: s, total: total}
	if s.pgb != nil {
		opts := []mpb.BarOption{
			mpb.PrependDecorators(decor.Name(title), decor.Name(" "+status+" ")),
		}
		if !noUnit {
			opts = append(opts, mpb.AppendDecorators(decor.CountersNoUnit("%d / %d")))
		}
		b.b = s.pgb.AddBar(total, opts...)
	}
	return b
}

func (s *sem) Clone() Sem {
	return &sem{ctx: s.ctx, n: s.n, w: newWeighted(s.n), pgb: s.pgb}
}

func (s *sem) New() Sem { return s.Clone() }

func newWeighted(n int64) *semaphore.Weighted {
	if n <= 0 {
		return nil
	}
	return semaphore.NewWeighted(n)
}

type bar struct {
	sem   *sem
	b     *mpb.Bar
	total int64
	cur   int64
}

func (b *bar) NewWorker() error {
	if err := b.sem.NewWorker(); err != nil {
		return err
	}
	return nil
}

func (b *bar) NewWorkerTry() bool { return b.sem.NewWorkerTry() }

func (b *bar) DeferWorker() {
	b.cur++
	if b.b != nil {
		b.b.Increment()
	}
	b.sem.DeferWorker()
}

func (b *bar) Current() int64 { return b.cur }
func (b *bar) Total() int64   { return b.total }

// MaxSimultaneous reports a sane default ceiling for concurrent
// accepts/handlers on this machine, derived from the CPU count.
func MaxSimultaneous() int {
	if n := runtime.NumCPU() * 256; n > 0 {
		return n
	}
	return 1024
}

var simultaneous = int64(MaxSimultaneous())

// SetSimultaneous overrides the process-wide default weight used by
// callers that don't pick their own; values <= 0 reset to MaxSimultaneous.
func SetSimultaneous(n int64) int64 {
	if n <= 0 {
		simultaneous = int64(MaxSimultaneous())
		return simultaneous
	}
	simultaneous = n
	return simultaneous
}
