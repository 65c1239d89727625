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

// Package connection implements the per-connection state machine for
// stream transports (tcp/unix): read/write buffering, codec framing
// dispatch, backpressure, graceful close, and TLS handshake integration.
// The UDP per-datagram view lives alongside it in udp.go.
package connection

import (
	"crypto/tls"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"

	libcdc "github.com/sabouaram/reactord/codec"
	libptc "github.com/sabouaram/reactord/network/protocol"
	libreact "github.com/sabouaram/reactord/reactor"
	libskt "github.com/sabouaram/reactord/socket"
)

const defaultReadBufferSize = 64 * 1024
const sslChunkSize = 8192

var idSeq atomic.Uint64

// NextID returns a monotonically increasing connection id, wrapping at
// max uint64.
func NextID() uint64 { return idSeq.Add(1) }

// Connection is the per-connection state machine.
type Connection struct {
	id        uint64
	transport libptc.NetworkProtocol

	rawConn libreact.Stream // the fd source registered with the reactor
	ioConn  net.Conn        // the actual Read/Write target (== rawConn, or a *tls.Conn wrapping it)
	remote  net.Addr
	local   net.Addr

	codec libcdc.Codec
	owner Owner
	cb    Callbacks
	react libreact.Reactor

	isTLS       bool
	tlsHandshke bool

	mu          sync.Mutex
	status      Status
	paused      bool
	sendBuf     []byte
	recvBuf     []byte
	curPkgLen   int
	fullFired   bool
	maxSend     int
	maxPkg      int
	bytesRead   uint64
	bytesWrite  uint64
	closeOnce   sync.Once
	errHandler  func(error)
	wsTakenOver bool
}

// Config bundles the construction-time parameters for a new Connection.
type Config struct {
	Transport         libptc.NetworkProtocol
	Codec             libcdc.Codec
	Owner             Owner
	Callbacks         Callbacks
	TLS               *tls.Config
	MaxSendBufferSize int
	MaxPackageSize    int
}

// New wires a freshly accepted (or dialed) net.Conn into a Connection.
// The caller still must call Register to attach a reactor and fire
// onConnect.
func New(nc net.Conn, cfg Config) *Connection {
	maxSend := cfg.MaxSendBufferSize
	if maxSend <= 0 {
		maxSend = 1 << 20
	}
	maxPkg := cfg.MaxPackageSize
	if maxPkg <= 0 {
		maxPkg = 10 << 20
	}

	c := &Connection{
		id:        NextID(),
		transport: cfg.Transport,
		rawConn:   toStream(nc),
		ioConn:    nc,
		remote:    nc.RemoteAddr(),
		local:     nc.LocalAddr(),
		codec:     cfg.Codec,
		owner:     cfg.Owner,
		cb:        cfg.Callbacks,
		status:    StatusInitial,
		maxSend:   maxSend,
		maxPkg:    maxPkg,
	}

	if cfg.TLS != nil {
		c.isTLS = true
		c.ioConn = tls.Server(nc, cfg.TLS)
	} else {
		c.tlsHandshke = true
	}

	return c
}

// toStream asserts the libreact.Stream capability net.TCPConn/UnixConn
// carry natively; callers only ever pass such concrete types in from
// listener.Accept.
func toStream(nc net.Conn) libreact.Stream {
	if s, ok := nc.(libreact.Stream); ok {
		return s
	}
	return nil
}

func (c *Connection) ID() uint64          { return c.id }
func (c *Connection) RemoteAddr() net.Addr { return c.remote }
func (c *Connection) LocalAddr() net.Addr  { return c.local }
func (c *Connection) RawConn() net.Conn    { return c.ioConn }
func (c *Connection) Transport() libptc.NetworkProtocol { return c.transport }

func (c *Connection) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Connection) BytesRead() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytesRead
}

func (c *Connection) BytesWritten() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytesWrite
}

func (c *Connection) SendBufferLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sendBuf)
}

// SetErrorHandler installs the per-connection handler user-callback panics
// route through instead of escalating to a worker stop.
func (c *Connection) SetErrorHandler(fn func(error)) {
	c.mu.Lock()
	c.errHandler = fn
	c.mu.Unlock()
}

// Register attaches the reactor driving this connection and fires
// onConnect exactly once; onConnect always precedes any onMessage. The
// user callback fires before the codec's.
func (c *Connection) Register(r libreact.Reactor) error {
	c.mu.Lock()
	c.react = r
	c.status = StatusEstablished
	c.mu.Unlock()

	c.runSafely("onConnect", func() {
		if c.cb.OnConnect != nil {
			c.cb.OnConnect(c)
		}
		if cc, ok := c.codec.(libcdc.ConnectCloser); ok {
			cc.OnConnect(c)
		}
	})

	if c.rawConn == nil {
		return nil
	}
	if err := r.OnReadable(c.rawConn, func(libreact.Stream) { c.baseRead() }); err != nil {
		return ErrorRegisterFailed.Error(err)
	}
	return nil
}

// runSafely invokes fn, routing any panic through the per-connection error
// handler if set, otherwise escalating to the owning worker's Fatal stop.
func (c *Connection) runSafely(where string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			err := toError(where, rec)
			c.mu.Lock()
			h := c.errHandler
			c.mu.Unlock()
			if h != nil {
				h(err)
				return
			}
			if c.owner != nil {
				c.owner.IncException()
				c.owner.Fatal(err)
			}
		}
	}()
	fn()
}

func toError(where string, rec any) error {
	if e, ok := rec.(error); ok {
		return e
	}
	return &callbackPanic{where: where, value: rec}
}

type callbackPanic struct {
	where string
	value any
}

func (p *callbackPanic) Error() string {
	return p.where + ": " + formatAny(p.value)
}

func formatAny(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return "panic"
}

// baseRead is the reactor-driven read handler: read what's available,
// append to recvBuf, ask the codec for frame boundaries, decode and
// dispatch each complete frame, and destroy the connection on EOF, read
// error, or a codec FrameError.
func (c *Connection) baseRead() {
	c.mu.Lock()
	if c.status != StatusEstablished {
		c.mu.Unlock()
		return
	}
	src := c.ioConn
	needShake := c.isTLS && !c.tlsHandshke
	c.mu.Unlock()

	if needShake {
		tc, ok := src.(*tls.Conn)
		if !ok {
			c.destroy()
			return
		}
		if err := tc.Handshake(); err != nil {
			c.fireError(ErrSSLHandshake, err.Error())
			c.destroy()
			return
		}
		c.mu.Lock()
		c.tlsHandshke = true
		c.mu.Unlock()
	}

	buf := make([]byte, defaultReadBufferSize)
	n, err := src.Read(buf)
	if n > 0 {
		c.mu.Lock()
		c.bytesRead += uint64(n)
		c.recvBuf = append(c.recvBuf, buf[:n]...)
		c.mu.Unlock()
		c.drainFrames()
	}
	if err != nil {
		c.destroy()
	}
}

// drainFrames dispatches whatever complete messages sit in recvBuf. With
// no codec the whole buffer is one message;
// otherwise the codec is asked repeatedly for the next frame boundary. A
// frame error or an over-limit frame length destroys the connection; a
// failed decode fires onError but leaves the stream open for the next
// frame.
func (c *Connection) drainFrames() {
	for {
		c.mu.Lock()
		if c.paused || len(c.recvBuf) == 0 {
			c.mu.Unlock()
			return
		}

		if c.codec == nil {
			raw := c.recvBuf
			c.recvBuf = nil
			c.mu.Unlock()

			if c.owner != nil {
				c.owner.IncRequest()
			}
			c.runSafely("onMessage", func() {
				if c.cb.OnMessage != nil {
					c.cb.OnMessage(c, raw)
				}
			})
			continue
		}

		n := c.curPkgLen
		if n == 0 {
			n = c.codec.Input(c.recvBuf, c)
		}
		if n == libcdc.NeedMore {
			c.mu.Unlock()
			return
		}
		if n == libcdc.FrameError || n > c.maxPkg {
			c.mu.Unlock()
			c.fireError(ErrProtocol, "frame error")
			c.destroy()
			return
		}
		if n > len(c.recvBuf) {
			// incomplete frame: remember the announced length so the codec
			// is not re-asked on every partial read
			c.curPkgLen = n
			c.mu.Unlock()
			return
		}
		c.curPkgLen = 0

		frame := make([]byte, n)
		copy(frame, c.recvBuf[:n])
		c.recvBuf = c.recvBuf[n:]
		c.mu.Unlock()

		msg, derr := c.codec.Decode(frame, c)
		if derr != nil {
			c.fireError(ErrProtocol, derr.Error())
			continue
		}

		// a codec that completed a framing takeover (websocket handshake)
		// owns the socket from here on: stop routing bytes through Input
		// and announce the upgrade instead of a message
		if _, ok := msg.(libcdc.Upgrade); ok {
			c.mu.Lock()
			c.wsTakenOver = true
			react := c.react
			stream := c.rawConn
			c.mu.Unlock()
			if react != nil && stream != nil {
				react.OffReadable(stream)
			}
			c.runSafely("onWebSocketConnect", func() {
				if c.cb.OnWebSocketConnect != nil {
					c.cb.OnWebSocketConnect(c)
				}
			})
			return
		}

		if c.owner != nil {
			c.owner.IncRequest()
		}
		c.runSafely("onMessage", func() {
			if c.cb.OnMessage != nil {
				c.cb.OnMessage(c, msg)
			}
		})
	}
}

func (c *Connection) fireError(kind ErrorKind, reason string) {
	c.runSafely("onError", func() {
		if c.cb.OnError != nil {
			c.cb.OnError(c, kind, reason)
		}
	})
}

// PauseRecv unregisters readability so bytes accumulate in the OS socket
// buffer instead of being read and dispatched.
func (c *Connection) PauseRecv() {
	c.mu.Lock()
	c.paused = true
	react := c.react
	stream := c.rawConn
	c.mu.Unlock()

	if react != nil && stream != nil {
		react.OffReadable(stream)
	}
}

// ResumeRecv re-registers readability and does one synchronous drain of
// anything already buffered, so frames received before the pause are not
// stuck waiting for a fresh read event.
func (c *Connection) ResumeRecv() {
	c.mu.Lock()
	c.paused = false
	react := c.react
	stream := c.rawConn
	c.mu.Unlock()

	if react != nil && stream != nil {
		_ = react.OnReadable(stream, func(libreact.Stream) { c.baseRead() })
	}
	c.drainFrames()
}

// Send queues buf for transmission, encoding it through the codec unless
// raw is true. Returns false if the connection is already closing/closed.
// Crossing maxSend fires onBufferFull once; it can fire again only after
// the buffer has fully drained. Once onBufferFull has fired and the
// buffer hasn't drained yet, a further Send drops its payload and fires
// onError instead of growing sendBuf without bound.
func (c *Connection) Send(message any, raw bool) bool {
	var payload []byte
	if raw || c.codec == nil {
		switch b := message.(type) {
		case []byte:
			payload = b
		case string:
			payload = []byte(b)
		default:
			return false
		}
	} else {
		b, err := c.codec.Encode(message, c)
		if err != nil {
			c.fireError(ErrSendFail, err.Error())
			if c.owner != nil {
				c.owner.IncSendFail()
			}
			return false
		}
		payload = b
	}
	if len(payload) == 0 {
		return true
	}

	c.mu.Lock()
	if c.status == StatusClosed || c.status == StatusClosing {
		c.mu.Unlock()
		return false
	}
	if c.fullFired {
		c.mu.Unlock()
		c.fireError(ErrSendFail, "send buffer full and drop package")
		if c.owner != nil {
			c.owner.IncSendFail()
		}
		return false
	}
	c.sendBuf = append(c.sendBuf, payload...)
	full := len(c.sendBuf) >= c.maxSend
	becameFull := full && !c.fullFired
	c.fullFired = full
	c.mu.Unlock()

	if becameFull {
		c.runSafely("onBufferFull", func() {
			if c.cb.OnBufferFull != nil {
				c.cb.OnBufferFull(c)
			}
		})
	}

	c.flush()
	return true
}

// flush writes the pending send buffer out, in 8192-byte chunks for TLS
// and in one write otherwise. On a full drain it fires onBufferDrain if
// the full threshold had been crossed, and completes a graceful close if
// one is pending.
func (c *Connection) flush() {
	c.mu.Lock()
	dst := c.ioConn
	pending := c.sendBuf
	isTLS := c.isTLS
	c.mu.Unlock()
	if dst == nil || len(pending) == 0 {
		return
	}

	var (
		n   int
		err error
	)
	if isTLS {
		for len(pending) > 0 && err == nil {
			chunk := pending
			if len(chunk) > sslChunkSize {
				chunk = chunk[:sslChunkSize]
			}
			var w int
			w, err = dst.Write(chunk)
			n += w
			pending = pending[w:]
		}
	} else {
		n, err = dst.Write(pending)
	}

	var drained, wasFull, closing bool
	if n > 0 {
		c.mu.Lock()
		c.bytesWrite += uint64(n)
		c.sendBuf = c.sendBuf[n:]
		drained = len(c.sendBuf) == 0
		wasFull = c.fullFired
		closing = c.status == StatusClosing
		if drained {
			c.fullFired = false
		}
		react := c.react
		stream := c.rawConn
		c.mu.Unlock()

		// a partial write leaves the tail for the next writability event;
		// a full drain drops the registration again
		if react != nil && stream != nil {
			if drained {
				react.OffWritable(stream)
			} else {
				_ = react.OnWritable(stream, func(libreact.Stream) { c.flush() })
			}
		}

		if drained && wasFull {
			c.runSafely("onBufferDrain", func() {
				if c.cb.OnBufferDrain != nil {
					c.cb.OnBufferDrain(c)
				}
			})
		}
	}
	if err != nil {
		// a peer that vanished mid-write is torn down silently; anything
		// else is a reportable send failure
		if libskt.ErrorFilter(err) != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
			c.fireError(ErrSendFail, err.Error())
			if c.owner != nil {
				c.owner.IncSendFail()
			}
		}
		c.destroy()
		return
	}
	if drained && closing {
		c.destroy()
	}
}

// Flush retries writing whatever is pending in the send buffer, the same
// path the reactor's writability events drive.
func (c *Connection) Flush() {
	c.flush()
}

// Destroy tears the connection down immediately, discarding any pending
// send buffer — the ungraceful counterpart of Close.
func (c *Connection) Destroy() {
	c.destroy()
}

// Close sends any final data then tears the connection down once the send
// buffer has drained: a connection still CONNECTING is destroyed
// immediately, a closing one with pending bytes stops reading and waits
// for the drain.
func (c *Connection) Close(data []byte, raw bool) {
	c.mu.Lock()
	st := c.status
	c.mu.Unlock()

	if st == StatusClosed || st == StatusClosing {
		return
	}
	if st == StatusConnecting {
		c.destroy()
		return
	}

	if len(data) > 0 {
		c.Send(data, raw)
	}

	c.mu.Lock()
	if c.status == StatusClosed || c.status == StatusClosing {
		c.mu.Unlock()
		return
	}
	c.status = StatusClosing
	pending := len(c.sendBuf)
	c.mu.Unlock()

	if pending == 0 {
		c.destroy()
	} else {
		c.PauseRecv()
	}
}

// destroy is the single teardown path: fires onClose/codec.OnClose at most
// once, releases the reactor registration, closes the socket, and informs
// the owning listener so it can drop the connection from its table.
func (c *Connection) destroy() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.status = StatusClosed
		react := c.react
		stream := c.rawConn
		sock := c.ioConn
		c.mu.Unlock()

		if react != nil && stream != nil {
			react.OffReadable(stream)
			react.OffWritable(stream)
		}

		// the codec observes the teardown first, mirroring the connect
		// ordering where the user hook runs first
		c.runSafely("onClose", func() {
			if cc, ok := c.codec.(libcdc.ConnectCloser); ok {
				cc.OnClose(c)
			}
			if c.cb.OnClose != nil {
				c.cb.OnClose(c)
			}
		})

		if sock != nil {
			_ = sock.Close()
		}
		if c.owner != nil {
			c.owner.DecConnection()
			c.owner.Remove(c.id)
		}

		// release buffers and callback closures so the connection holds
		// nothing alive once CLOSED
		c.mu.Lock()
		c.sendBuf = nil
		c.recvBuf = nil
		c.cb = Callbacks{}
		c.errHandler = nil
		c.mu.Unlock()
	})
}

// Pipe proxies this connection onto dest: every decoded message is
// re-sent on dest, closing here closes dest, and dest's backpressure
// pauses/resumes reading here.
func (c *Connection) Pipe(dest *Connection) {
	c.cb.OnMessage = func(_ Conn, message any) {
		dest.Send(message, false)
	}
	c.cb.OnClose = func(Conn) {
		dest.Close(nil, false)
	}
	dest.cb.OnBufferFull = func(Conn) {
		c.PauseRecv()
	}
	dest.cb.OnBufferDrain = func(Conn) {
		c.ResumeRecv()
	}
}
