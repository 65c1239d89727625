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

// Package codec defines the three-function wire contract a listener plugs
// into the connection engine: Input reports frame boundaries, Decode turns
// a frame into an application message, Encode turns a message back into
// bytes. Everything above the socket (HTTP, WebSocket, line, length-prefixed)
// is a consumer of this contract, not a special case of it.
package codec

import "net"

// NeedMore is the Input return value meaning "no complete frame yet".
const NeedMore = 0

// FrameError is the Input return value meaning "protocol violation,
// destroy the connection" (spec §4.3 step 5).
const FrameError = -1

// Conn is the minimal connection surface a codec needs. The connection
// engine's Connection type satisfies this without codec importing it back.
type Conn interface {
	ID() uint64
	RemoteAddr() net.Addr
	LocalAddr() net.Addr
}

// Codec is the Input/Decode/Encode contract every framing plugs in as.
type Codec interface {
	// Input examines the head of buf and reports NeedMore, FrameError, or
	// the exact byte length of the next complete frame.
	Input(buf []byte, conn Conn) int
	// Decode parses exactly one framed message.
	Decode(frame []byte, conn Conn) (any, error)
	// Encode serializes a message for transmission. An empty result means
	// nothing to send.
	Encode(message any, conn Conn) ([]byte, error)
}

// ConnectCloser is implemented by codecs that need to observe connection
// lifecycle. On connect the user callback fires first, then the codec's;
// on close the codec's fires first, then the user's.
type ConnectCloser interface {
	OnConnect(conn Conn)
	OnClose(conn Conn)
}

// Name reports the registry key a codec prefers, for codecs that want to
// self-register via init(). Optional; Registry.Register also takes an
// explicit name.
type Named interface {
	Name() string
}

// Upgrade marks a decoded message that announces the codec has taken over
// the connection's framing entirely (a completed WebSocket handshake):
// the engine stops routing bytes through Input and fires the
// onWebSocketConnect hook instead of onMessage.
type Upgrade interface {
	Upgraded()
}
