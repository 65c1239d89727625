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

// Package fallback is the portable reactor driver, the one that must
// exist on every platform and implement the full contract.
// Rather than reimplementing select(2)/poll(2) by hand, it leans on the Go
// runtime's own netpoller through syscall.RawConn.Read/Write: calling
// rc.Read(func(fd uintptr) bool { return true }) blocks the calling
// goroutine, parked on the runtime poller, until fd is readable, then
// returns. That is exactly a portable, OS-native "wait for readable"
// primitive with none of cgo or platform-specific syscalls — the same
// trick every pure-Go low-level networking library uses to multiplex an
// arbitrary number of sockets onto goroutines.
package fallback

import (
	"os"
	"os/signal"
	"sync"
	"time"

	libreact "github.com/sabouaram/reactord/reactor"
)

type watch struct {
	stream libreact.Stream
	fn     libreact.Fn
	done   chan struct{}
}

type sigWatch struct {
	fn func(os.Signal)
	ch chan os.Signal
}

// Reactor implements libreact.Reactor without any native syscall driver.
type Reactor struct {
	mu    sync.Mutex
	sched *libreact.Scheduler

	readers map[libreact.Stream]*watch
	writers map[libreact.Stream]*watch
	signals map[os.Signal]*sigWatch

	errHandler libreact.ErrorHandler

	wake    chan struct{}
	stop    chan struct{}
	stopped bool
	once    sync.Once
}

func New() *Reactor {
	return &Reactor{
		sched:   libreact.NewScheduler(),
		readers: make(map[libreact.Stream]*watch),
		writers: make(map[libreact.Stream]*watch),
		signals: make(map[os.Signal]*sigWatch),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
}

func (r *Reactor) poke() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Reactor) Delay(d time.Duration, fn libreact.TimerFn, args any) libreact.TimerID {
	r.mu.Lock()
	id := r.sched.Schedule(d, 0, false, fn, args)
	r.mu.Unlock()
	r.poke()
	return id
}

func (r *Reactor) Repeat(interval time.Duration, fn libreact.TimerFn, args any) libreact.TimerID {
	r.mu.Lock()
	id := r.sched.Schedule(interval, interval, true, fn, args)
	r.mu.Unlock()
	r.poke()
	return id
}

func (r *Reactor) OffDelay(id libreact.TimerID) bool  { return r.offTimer(id) }
func (r *Reactor) OffRepeat(id libreact.TimerID) bool { return r.offTimer(id) }

func (r *Reactor) offTimer(id libreact.TimerID) bool {
	r.mu.Lock()
	ok := r.sched.Cancel(id)
	r.mu.Unlock()
	return ok
}

func (r *Reactor) DeleteAllTimer() {
	r.mu.Lock()
	r.sched.DeleteAll()
	r.mu.Unlock()
}

func (r *Reactor) GetTimerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sched.Count()
}

func (r *Reactor) SetErrorHandler(fn libreact.ErrorHandler) {
	r.mu.Lock()
	r.errHandler = fn
	r.mu.Unlock()
}

func (r *Reactor) recover(where string) {
	if rec := recover(); rec != nil {
		r.mu.Lock()
		h := r.errHandler
		r.mu.Unlock()
		if h != nil {
			switch e := rec.(type) {
			case error:
				h(e)
			default:
				h(&panicError{where: where, value: rec})
			}
		}
	}
}

type panicError struct {
	where string
	value any
}

func (p *panicError) Error() string {
	return p.where + ": " + toString(p.value)
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if e, ok := v.(error); ok {
		return e.Error()
	}
	return "panic"
}

// OnReadable spawns one goroutine per stream that blocks on the runtime
// poller until data is available, then invokes fn once per readiness
// event — replacing any previous handler for that stream.
func (r *Reactor) OnReadable(stream libreact.Stream, fn libreact.Fn) error {
	r.OffReadable(stream)

	rc, err := stream.SyscallConn()
	if err != nil {
		return ErrorRawFDFailed.Error(err)
	}

	w := &watch{stream: stream, fn: fn, done: make(chan struct{})}
	r.mu.Lock()
	r.readers[stream] = w
	r.mu.Unlock()

	go func() {
		for {
			select {
			case <-w.done:
				return
			default:
			}
			err := rc.Read(func(fd uintptr) bool { return true })
			if err != nil {
				return
			}
			func() {
				defer r.recover("onReadable")
				fn(stream)
			}()
		}
	}()
	return nil
}

func (r *Reactor) OnWritable(stream libreact.Stream, fn libreact.Fn) error {
	r.OffWritable(stream)

	rc, err := stream.SyscallConn()
	if err != nil {
		return ErrorRawFDFailed.Error(err)
	}

	w := &watch{stream: stream, fn: fn, done: make(chan struct{})}
	r.mu.Lock()
	r.writers[stream] = w
	r.mu.Unlock()

	go func() {
		for {
			select {
			case <-w.done:
				return
			default:
			}
			err := rc.Write(func(fd uintptr) bool { return true })
			if err != nil {
				return
			}
			func() {
				defer r.recover("onWritable")
				fn(stream)
			}()
		}
	}()
	return nil
}

func (r *Reactor) OffReadable(stream libreact.Stream) bool {
	r.mu.Lock()
	w, ok := r.readers[stream]
	if ok {
		delete(r.readers, stream)
	}
	r.mu.Unlock()
	if ok {
		close(w.done)
	}
	return ok
}

func (r *Reactor) OffWritable(stream libreact.Stream) bool {
	r.mu.Lock()
	w, ok := r.writers[stream]
	if ok {
		delete(r.writers, stream)
	}
	r.mu.Unlock()
	if ok {
		close(w.done)
	}
	return ok
}

func (r *Reactor) OnSignal(sig os.Signal, fn func(os.Signal)) error {
	r.OffSignal(sig)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sig)

	sw := &sigWatch{fn: fn, ch: ch}
	r.mu.Lock()
	r.signals[sig] = sw
	r.mu.Unlock()

	go func() {
		for s := range ch {
			func() {
				defer r.recover("onSignal")
				fn(s)
			}()
		}
	}()
	return nil
}

func (r *Reactor) OffSignal(sig os.Signal) bool {
	r.mu.Lock()
	sw, ok := r.signals[sig]
	if ok {
		delete(r.signals, sig)
	}
	r.mu.Unlock()
	if ok {
		signal.Stop(sw.ch)
		close(sw.ch)
	}
	return ok
}

// Run blocks, firing due timers as they come due and sleeping between them
// for no longer than the time to the next deadline — the multiplex-wait
// primitive the portable driver is built around. Readability and
// writability run in their own per-stream goroutines (above); Run's job is
// purely the timer wheel plus the Stop/wake signal.
func (r *Reactor) Run() error {
	for {
		r.mu.Lock()
		if r.stopped {
			r.mu.Unlock()
			return nil
		}
		now := time.Now()
		due := r.sched.PopDue(now)
		next, hasNext := r.sched.NextDeadline()
		r.mu.Unlock()

		for _, e := range due {
			func() {
				defer r.recover("timer")
				e.Invoke()
			}()
		}
		if len(due) > 0 {
			continue
		}

		var timeout time.Duration
		if hasNext {
			timeout = time.Until(next)
			if timeout < 0 {
				timeout = 0
			}
		} else {
			timeout = 250 * time.Millisecond
		}

		timer := time.NewTimer(timeout)
		select {
		case <-r.stop:
			timer.Stop()
			return nil
		case <-r.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (r *Reactor) Stop() {
	r.once.Do(func() {
		r.mu.Lock()
		r.stopped = true
		r.mu.Unlock()
		close(r.stop)
	})
}

// Sleep suspends the calling goroutine for at least d. The fallback
// driver has no native suspension handle, so it block-sleeps directly.
func Sleep(d time.Duration) { time.Sleep(d) }
