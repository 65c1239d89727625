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

//go:build linux

// Package epoll is the native, high-performance Linux reactor driver:
// one epoll instance per worker, level-triggered, dispatched from a single
// goroutine so callback ordering matches the fallback driver exactly.
// Semantically interchangeable with reactor/fallback.
package epoll

import (
	"os"
	"os/signal"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	libreact "github.com/sabouaram/reactord/reactor"
)

type entry struct {
	stream  libreact.Stream
	fd      int
	onRead  libreact.Fn
	onWrite libreact.Fn
}

type sigWatch struct {
	fn func(os.Signal)
	ch chan os.Signal
}

// Reactor implements libreact.Reactor on top of epoll_create1/epoll_ctl/
// epoll_wait.
type Reactor struct {
	mu    sync.Mutex
	sched *libreact.Scheduler

	epfd   int
	wakeFd int

	byFD    map[int]*entry
	signals map[os.Signal]*sigWatch

	errHandler libreact.ErrorHandler

	stopped bool
	once    sync.Once
}

// New creates a new epoll instance. Callers should prefer reactor/fallback
// unless they know they are on Linux and want the native driver.
func New() (*Reactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, ErrorEpollCreateFailed.Error(err)
	}
	wfd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, ErrorEventFDFailed.Error(err)
	}

	r := &Reactor{
		sched:   libreact.NewScheduler(),
		epfd:    epfd,
		wakeFd:  wfd,
		byFD:    make(map[int]*entry),
		signals: make(map[os.Signal]*sigWatch),
	}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wfd, &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wfd)}); err != nil {
		unix.Close(wfd)
		unix.Close(epfd)
		return nil, ErrorEpollCtlFailed.Error(err)
	}
	return r, nil
}

func (r *Reactor) poke() {
	buf := make([]byte, 8)
	buf[0] = 1
	_, _ = unix.Write(r.wakeFd, buf)
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
		if h == nil {
			return
		}
		if e, ok := rec.(error); ok {
			h(e)
		} else {
			h(&panicError{where: where})
		}
	}
}

type panicError struct{ where string }

func (p *panicError) Error() string { return p.where + ": panic in reactor callback" }

func rawFD(stream libreact.Stream) (int, error) {
	rc, err := stream.SyscallConn()
	if err != nil {
		return 0, ErrorRawFDFailed.Error(err)
	}
	var fd int
	cerr := rc.Control(func(f uintptr) { fd = int(f) })
	if cerr != nil {
		return 0, ErrorRawFDFailed.Error(cerr)
	}
	return fd, nil
}

func eventsFor(e *entry) uint32 {
	var ev uint32
	if e.onRead != nil {
		ev |= unix.EPOLLIN
	}
	if e.onWrite != nil {
		ev |= unix.EPOLLOUT
	}
	return ev
}

func (r *Reactor) OnReadable(stream libreact.Stream, fn libreact.Fn) error {
	fd, err := rawFD(stream)
	if err != nil {
		return err
	}

	r.mu.Lock()
	e, existed := r.byFD[fd]
	if !existed {
		e = &entry{stream: stream, fd: fd}
		r.byFD[fd] = e
	}
	e.onRead = fn
	ev := eventsFor(e)
	r.mu.Unlock()

	op := unix.EPOLL_CTL_MOD
	if !existed {
		op = unix.EPOLL_CTL_ADD
	}
	if err := unix.EpollCtl(r.epfd, op, fd, &unix.EpollEvent{Events: ev, Fd: int32(fd)}); err != nil {
		return ErrorEpollCtlFailed.Error(err)
	}
	return nil
}

func (r *Reactor) OnWritable(stream libreact.Stream, fn libreact.Fn) error {
	fd, err := rawFD(stream)
	if err != nil {
		return err
	}

	r.mu.Lock()
	e, existed := r.byFD[fd]
	if !existed {
		e = &entry{stream: stream, fd: fd}
		r.byFD[fd] = e
	}
	e.onWrite = fn
	ev := eventsFor(e)
	r.mu.Unlock()

	op := unix.EPOLL_CTL_MOD
	if !existed {
		op = unix.EPOLL_CTL_ADD
	}
	if err := unix.EpollCtl(r.epfd, op, fd, &unix.EpollEvent{Events: ev, Fd: int32(fd)}); err != nil {
		return ErrorEpollCtlFailed.Error(err)
	}
	return nil
}

func (r *Reactor) OffReadable(stream libreact.Stream) bool {
	fd, err := rawFD(stream)
	if err != nil {
		return false
	}
	return r.clearSide(fd, true)
}

func (r *Reactor) OffWritable(stream libreact.Stream) bool {
	fd, err := rawFD(stream)
	if err != nil {
		return false
	}
	return r.clearSide(fd, false)
}

func (r *Reactor) clearSide(fd int, read bool) bool {
	r.mu.Lock()
	e, ok := r.byFD[fd]
	if !ok {
		r.mu.Unlock()
		return false
	}
	if read {
		e.onRead = nil
	} else {
		e.onWrite = nil
	}
	remove := e.onRead == nil && e.onWrite == nil
	ev := eventsFor(e)
	if remove {
		delete(r.byFD, fd)
	}
	r.mu.Unlock()

	if remove {
		_ = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	} else {
		_ = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{Events: ev, Fd: int32(fd)})
	}
	return true
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

func (r *Reactor) Run() error {
	events := make([]unix.EpollEvent, 128)

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

		timeoutMs := 250
		if hasNext {
			d := time.Until(next)
			if d < 0 {
				d = 0
			}
			timeoutMs = int(d / time.Millisecond)
		}

		n, err := unix.EpollWait(r.epfd, events, timeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return ErrorEpollWaitFailed.Error(err)
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			if fd == r.wakeFd {
				buf := make([]byte, 8)
				_, _ = unix.Read(r.wakeFd, buf)
				continue
			}

			r.mu.Lock()
			e, ok := r.byFD[fd]
			r.mu.Unlock()
			if !ok {
				continue
			}

			mask := events[i].Events
			if mask&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLERR) != 0 && e.onRead != nil {
				func() {
					defer r.recover("onReadable")
					e.onRead(e.stream)
				}()
			}
			if mask&unix.EPOLLOUT != 0 && e.onWrite != nil {
				func() {
					defer r.recover("onWritable")
					e.onWrite(e.stream)
				}()
			}
		}
	}
}

func (r *Reactor) Stop() {
	r.once.Do(func() {
		r.mu.Lock()
		r.stopped = true
		r.mu.Unlock()
		r.poke()
	})
}

func (r *Reactor) Close() error {
	_ = unix.Close(r.wakeFd)
	if err := unix.Close(r.epfd); err != nil {
		return ErrorCloseFailed.Error(err)
	}
	return nil
}
