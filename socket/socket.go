/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package socket is the shared vocabulary between a plain request/response
// socket endpoint (one handler call per accepted connection, blocking I/O)
// and the reactor-driven listener/connection engine: connection lifecycle
// states, error/info callback shapes, and the Server/Client contracts a
// protocol-specific package (tcp/udp/unix) implements.
package socket

import (
	"context"
	"net"
	"strings"
)

// DefaultBufferSize is the read buffer size a Context allocates when a
// caller doesn't size its own.
const DefaultBufferSize = 32 * 1024

// EOL is the line terminator socket/config's text-oriented handlers split
// requests on.
const EOL = '\n'

// ConnState enumerates the phases a socket connection moves through,
// reported to a FuncInfo callback for monitoring/logging.
type ConnState uint8

const (
	ConnectionDial ConnState = iota
	ConnectionNew
	ConnectionRead
	ConnectionCloseRead
	ConnectionHandler
	ConnectionWrite
	ConnectionCloseWrite
	ConnectionClose
)

func (s ConnState) String() string {
	switch s {
	case ConnectionDial:
		return "Dial Connection"
	case ConnectionNew:
		return "New Connection"
	case ConnectionRead:
		return "Read Incoming Stream"
	case ConnectionCloseRead:
		return "Close Incoming Stream"
	case ConnectionHandler:
		return "Run HandlerFunc"
	case ConnectionWrite:
		return "Write Outgoing Steam"
	case ConnectionCloseWrite:
		return "Close Outgoing Stream"
	case ConnectionClose:
		return "Close Connection"
	default:
		return "unknown connection state"
	}
}

// ErrorFilter drops the noisy, expected-on-shutdown "use of closed network
// connection" error so callers don't have to special-case it at every call
// site; any other error (including nil) passes through unchanged.
func ErrorFilter(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "use of closed network connection") {
		return nil
	}
	return err
}

// FuncError receives one or more errors raised while serving/dialing.
type FuncError func(errs ...error)

// FuncInfo is notified on every ConnState transition of a connection.
type FuncInfo func(local, remote net.Addr, state ConnState)

// FuncUpdateConn lets a caller tune socket options (no-delay, keepalive,
// buffer sizes, deadlines) right after accept/dial, before any I/O.
type FuncUpdateConn func(conn net.Conn)

// FuncResponse processes a client's Once() request/response round trip.
type FuncResponse func(r interface{ Read([]byte) (int, error) })

// Context is the per-connection handle a HandlerFunc is given: connection
// metadata plus blocking read/write against the live socket.
type Context interface {
	context.Context

	IsConnected() bool
	LocalHost() string
	RemoteHost() string

	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// HandlerFunc processes one accepted connection to completion.
type HandlerFunc func(ctx Context)

// Handler is the stateful counterpart of HandlerFunc for servers that need
// to carry dependencies alongside the handling logic.
type Handler interface {
	Handle(ctx Context)
}

// Server is the contract a protocol-specific (tcp/udp/unix) request/response
// socket server implements on top of this vocabulary.
type Server interface {
	RegisterFuncError(fn FuncError)
	RegisterFuncInfo(fn FuncInfo)
	RegisterFuncUpdateConn(fn FuncUpdateConn)

	Listen(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Client is the contract a protocol-specific socket client implements.
type Client interface {
	RegisterFuncError(fn FuncError)
	RegisterFuncUpdateConn(fn FuncUpdateConn)

	Connect(ctx context.Context) error
	Close() error

	Read(p []byte) (int, error)
	Write(p []byte) (int, error)

	// Once writes req then hands the response reader to fn.
	Once(ctx context.Context, req []byte, fn FuncResponse) error
}
