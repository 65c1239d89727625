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

// Package websocket hosts gorilla/websocket's upgrade handshake and framing
// behind the Input/Decode/Encode contract (scenario S3). A raw HTTP/1.1
// upgrade request is recognized by Input the same way codec/http finds a
// header block; Decode performs the handshake over a hijacked net.Conn and
// hands back an *UpgradeResult. The connection engine, seeing that result,
// stops watching the socket for reads and fires onWebSocketConnect once; it
// does not keep the *websocket.Conn and does not read or write WebSocket
// frames itself.
package websocket

import (
	"bufio"
	"bytes"
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	libcdc "github.com/sabouaram/reactord/codec"
)

// hijackWriter adapts a raw net.Conn (already owned by our reactor, not by
// net/http) into the http.ResponseWriter + http.Hijacker pair gorilla's
// Upgrader expects, so the handshake can run without a net/http.Server.
type hijackWriter struct {
	conn net.Conn
	buf  *bufio.ReadWriter
	hdr  http.Header
}

func (h *hijackWriter) Header() http.Header         { return h.hdr }
func (h *hijackWriter) Write(b []byte) (int, error)  { return h.buf.Write(b) }
func (h *hijackWriter) WriteHeader(statusCode int)   {}
func (h *hijackWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return h.conn, h.buf, nil
}

// UpgradeResult is the message Decode hands back once the handshake
// completes.
type UpgradeResult struct {
	Conn *websocket.Conn
}

// Upgraded marks the handshake result as a framing takeover for the
// connection engine.
func (*UpgradeResult) Upgraded() {}

type Codec struct {
	Upgrader websocket.Upgrader
}

func New() *Codec {
	return &Codec{
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (c *Codec) Name() string { return "websocket" }

func init() {
	libcdc.Default.Register("websocket", New())
}

const headerTerminator = "\r\n\r\n"

func (c *Codec) Input(buf []byte, _ libcdc.Conn) int {
	idx := bytes.Index(buf, []byte(headerTerminator))
	if idx < 0 {
		return libcdc.NeedMore
	}
	return idx + len(headerTerminator)
}

// Decode performs the WS upgrade handshake over the connection's
// underlying socket. The concrete net.Conn is recovered from conn via the
// rawConner interface the connection engine's Connection type satisfies.
func (c *Codec) Decode(frame []byte, conn libcdc.Conn) (any, error) {
	rc, ok := conn.(rawConner)
	if !ok {
		return nil, ErrorNoRawConn.Error(nil)
	}
	nc := rc.RawConn()

	req, err := http.ReadRequest(bufio.NewReader(bytes.NewReader(frame)))
	if err != nil {
		return nil, ErrorHandshakeRequest.Error(err)
	}

	br := bufio.NewReader(nc)
	bw := bufio.NewWriter(nc)
	w := &hijackWriter{conn: nc, buf: bufio.NewReadWriter(br, bw), hdr: http.Header{}}

	wsConn, err := c.Upgrader.Upgrade(w, req, nil)
	if err != nil {
		return nil, ErrorHandshakeUpgrade.Error(err)
	}
	return &UpgradeResult{Conn: wsConn}, nil
}

func (c *Codec) Encode(message any, _ libcdc.Conn) ([]byte, error) {
	// Encode produces no bytes: the connection engine does not write
	// WebSocket frames, so a Send through this codec sends nothing.
	return nil, nil
}

// rawConner is implemented by connection.Connection to hand its socket to
// codecs that need to take over framing entirely (only websocket does).
type rawConner interface {
	RawConn() net.Conn
}
