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

// Package reactor defines the single contract that every
// worker's event loop implements, regardless of which underlying I/O
// notification mechanism backs it: reactor/fallback (portable, built on
// the Go runtime's netpoller through syscall.RawConn, semantically the
// "select-based" driver that exists on every platform) and
// reactor/epoll (the native Linux driver). Both are fully interchangeable
// from a caller's point of view.
package reactor

import (
	"net"
	"os"
	"syscall"
	"time"
)

// TimerID identifies a scheduled delay/repeat registration.
type TimerID uint64

// Stream is anything a reactor can watch for readability/writability: a
// net.Conn, a net.PacketConn, or a raw *os.File (e.g. a pipe used for
// wakeups). All expose the underlying fd through SyscallConn.
type Stream interface {
	SyscallConn() (syscall.RawConn, error)
}

// Fn is a readability/writability callback.
type Fn func(stream Stream)

// TimerFn is a delay/repeat callback.
type TimerFn func(args any)

// ErrorHandler receives a fault raised by any user callback invoked from
// inside the loop.
type ErrorHandler func(err error)

// Reactor is the event loop abstraction.
type Reactor interface {
	// Delay schedules fn(args) once after d. Callable from inside a
	// reactor callback.
	Delay(d time.Duration, fn TimerFn, args any) TimerID
	// Repeat schedules fn(args) every interval, first firing at
	// now+interval. A firing is never skipped even if the previous one
	// overran; firings for one timer never overlap.
	Repeat(interval time.Duration, fn TimerFn, args any) TimerID
	// OffDelay cancels a one-shot timer idempotently.
	OffDelay(id TimerID) bool
	// OffRepeat cancels a periodic timer idempotently.
	OffRepeat(id TimerID) bool

	// OnReadable registers fn to run when stream has at least one
	// readable byte or has reached EOF, replacing any previous handler
	// for that stream.
	OnReadable(stream Stream, fn Fn) error
	// OnWritable is the write-side analogue of OnReadable.
	OnWritable(stream Stream, fn Fn) error
	OffReadable(stream Stream) bool
	OffWritable(stream Stream) bool

	// OnSignal delivers os.Signal arrivals to the loop thread. Coalesced
	// delivery is permitted: one callback invocation per arrival epoch.
	OnSignal(sig os.Signal, fn func(os.Signal)) error
	OffSignal(sig os.Signal) bool

	// Run blocks until Stop or no pending work remains.
	Run() error
	// Stop unblocks Run; subsequent calls are no-ops.
	Stop()

	DeleteAllTimer()
	GetTimerCount() int

	// SetErrorHandler installs the handler a faulting callback is routed
	// through instead of propagating out of the loop.
	SetErrorHandler(fn ErrorHandler)
}

// Conn narrows Stream down to the net.Conn case, the common path for TCP,
// unix and UDP "connected" sockets.
type Conn interface {
	net.Conn
	Stream
}
