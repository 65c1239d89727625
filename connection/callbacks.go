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

package connection

import (
	"net"

	libptc "github.com/sabouaram/reactord/network/protocol"
)

// Conn is the view of a connection that user callbacks receive: the
// long-lived stream Connection and the per-datagram UDPPacket both
// satisfy it, so one handler serves tcp, unix and udp listeners alike.
type Conn interface {
	ID() uint64
	RemoteAddr() net.Addr
	LocalAddr() net.Addr
	Transport() libptc.NetworkProtocol

	// Send queues (or for datagrams, writes) message, encoding it through
	// the codec unless raw. False means the payload was not accepted.
	Send(message any, raw bool) bool
	// Close sends optional final data then tears the connection down once
	// drained.
	Close(data []byte, raw bool)
}

// Callbacks is the frozen configuration struct of optional function values
// a listener (or a per-connection override) wires in — the redesigned
// replacement for dynamic callback assignment as fields of a mutable
// server object.
type Callbacks struct {
	OnConnect          func(c Conn)
	OnMessage          func(c Conn, message any)
	OnClose            func(c Conn)
	OnError            func(c Conn, kind ErrorKind, reason string)
	OnBufferFull       func(c Conn)
	OnBufferDrain      func(c Conn)
	OnWebSocketConnect func(c Conn)
}

// Owner is the back-reference a Connection holds into its listener's
// connection table — deliberately narrow (not the full listener.Listener
// type) so connection never imports listener, breaking the cyclic strong
// reference chain between a Connection, its owning Listener's map, and
// the user's callback closures.
type Owner interface {
	Remove(id uint64)
	IncConnection()
	DecConnection()
	IncRequest()
	IncException()
	IncSendFail()
	// Fatal escalates an unhandled user-callback panic to a worker stop
	// with exit code 250.
	Fatal(err error)
}
