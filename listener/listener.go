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

package listener

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"

	libcon "github.com/sabouaram/reactord/connection"
	libptc "github.com/sabouaram/reactord/network/protocol"
	libreact "github.com/sabouaram/reactord/reactor"
	libsem "github.com/sabouaram/reactord/semaphore"
	libsts "github.com/sabouaram/reactord/status"
)

// maxDatagramSize is the largest datagram recvOne reads, the UDP payload
// ceiling.
const maxDatagramSize = 65535

// Listener binds one "scheme://address" endpoint, accepts connections onto
// a reactor, and owns the live connection table a worker reports through
// status/connection dumps.
type Listener struct {
	name      string
	transport libptc.NetworkProtocol
	scheme    libptc.Scheme
	address   string

	ln     net.Listener
	pc     net.PacketConn
	stream libreact.Stream

	react libreact.Reactor
	cb    libcon.Callbacks
	cfg   Config
	tls   *tls.Config

	stats *libsts.Stats
	sem   libsem.Sem

	mu          sync.RWMutex
	conns       map[uint64]*libcon.Connection
	paused      bool
	fatalReason error
	onFatal     func(error)
}

// New parses cfg.Listen, binds the socket (applying SO_REUSEPORT when
// requested), and wraps it in a Listener ready for Serve. It does not yet
// accept connections; call Serve to attach a reactor and start the loop.
func New(cfg Config, cb libcon.Callbacks, stats *libsts.Stats) (*Listener, error) {
	scheme, address, err := parseListen(cfg.Listen)
	if err != nil {
		return nil, err
	}
	s, ok := libptc.ResolveScheme(scheme)
	if !ok {
		// an unregistered scheme names an application codec carried over
		// tcp; the codec itself must exist
		s = libptc.Scheme{Transport: libptc.NetworkTCP, Codec: scheme}
		if _, known := resolveCodec(s.Codec, cfg.Codec); !known {
			return nil, ErrorUnknownScheme.Error(fmt.Errorf("got %q", scheme))
		}
	}

	maxConns := int64(cfg.MaxConnections)
	if maxConns <= 0 {
		maxConns = int64(libsem.MaxSimultaneous())
	}

	l := &Listener{
		name:      cfg.Name,
		transport: s.Transport,
		scheme:    s,
		address:   address,
		cb:        cb,
		cfg:       cfg,
		stats:     stats,
		sem:       libsem.New(context.Background(), maxConns, false),
		conns:     make(map[uint64]*libcon.Connection),
	}
	if s.TLS && cfg.TLS != nil {
		l.tls = cfg.TLS.New().TLS(cfg.Name)
	}

	if s.Transport.IsStream() {
		ln, err := listenStream(s.Transport, address, cfg.ReusePort)
		if err != nil {
			return nil, ErrorBindFailed.Error(err)
		}
		l.ln = ln
		if st, ok := ln.(libreact.Stream); ok {
			l.stream = st
		}
	} else {
		pc, err := listenPacket(s.Transport, address, cfg.ReusePort)
		if err != nil {
			return nil, ErrorBindFailed.Error(err)
		}
		l.pc = pc
		if st, ok := pc.(libreact.Stream); ok {
			l.stream = st
		}
	}

	return l, nil
}

func (l *Listener) Name() string                     { return l.name }
func (l *Listener) Address() string                  { return l.address }
func (l *Listener) Transport() libptc.NetworkProtocol { return l.transport }

// SetFatalHandler installs the callback invoked by Fatal, typically wired
// by the supervisor to stop the worker with exit code 250.
func (l *Listener) SetFatalHandler(fn func(error)) {
	l.mu.Lock()
	l.onFatal = fn
	l.mu.Unlock()
}

// Serve attaches r and starts accepting. For stream transports each
// readability event on the listening socket accepts exactly one
// connection; for datagram transports each event reads exactly one
// packet.
func (l *Listener) Serve(r libreact.Reactor) error {
	l.mu.Lock()
	l.react = r
	l.mu.Unlock()

	if l.stream == nil {
		return ErrorNotRegistrable.Error(fmt.Errorf("listener %s", l.name))
	}

	if l.ln != nil {
		return r.OnReadable(l.stream, func(libreact.Stream) { l.acceptOne() })
	}
	return r.OnReadable(l.stream, func(libreact.Stream) { l.recvOne() })
}

func (l *Listener) acceptOne() {
	l.mu.RLock()
	paused := l.paused
	l.mu.RUnlock()
	if paused {
		return
	}

	nc, err := l.ln.Accept()
	if err != nil {
		return
	}

	// admission control: over the connection budget, shed at the door
	if !l.sem.NewWorkerTry() {
		_ = nc.Close()
		return
	}

	if tc, ok := nc.(*net.TCPConn); ok {
		_ = tc.SetKeepAlive(true)
		_ = tc.SetNoDelay(true)
	}

	codec, _ := resolveCodec(l.scheme.Codec, l.cfg.Codec)

	conn := libcon.New(nc, libcon.Config{
		Transport:         l.transport,
		Codec:             codec,
		Owner:             l,
		Callbacks:         l.cb,
		TLS:               l.tls,
		MaxSendBufferSize: l.cfg.MaxSendBufferSize,
		MaxPackageSize:    l.cfg.MaxPackageSize,
	})

	l.mu.Lock()
	l.conns[conn.ID()] = conn
	l.mu.Unlock()

	l.stats.IncConnection()
	if err := conn.Register(l.react); err != nil {
		l.Remove(conn.ID())
	}
}

// recvOne reads exactly one datagram and dispatches it: with no codec the
// whole datagram is one message; with a codec the frame loop runs against
// the datagram tail, so a codec may pack several frames into one packet.
func (l *Listener) recvOne() {
	l.mu.RLock()
	paused := l.paused
	l.mu.RUnlock()
	if paused {
		return
	}

	buf := make([]byte, maxDatagramSize)
	n, remote, err := l.pc.ReadFrom(buf)
	if err != nil {
		return
	}

	codec, _ := resolveCodec(l.scheme.Codec, l.cfg.Codec)
	pkt := libcon.NewUDPPacket(l.pc, remote, codec)
	data := buf[:n]

	if codec == nil {
		l.stats.IncRequest()
		if l.cb.OnMessage != nil {
			l.cb.OnMessage(pkt, data)
		}
		return
	}

	for len(data) > 0 {
		ln := codec.Input(data, pkt)
		if ln <= 0 || ln > len(data) {
			return
		}
		msg, derr := codec.Decode(data[:ln], pkt)
		data = data[ln:]
		if derr != nil {
			continue
		}
		l.stats.IncRequest()
		if l.cb.OnMessage != nil {
			l.cb.OnMessage(pkt, msg)
		}
	}
}

// PauseAccept stops admitting new connections/datagrams without closing
// the listening socket: the readability registration is dropped, so
// pending peers queue in the kernel backlog until ResumeAccept.
func (l *Listener) PauseAccept() {
	l.mu.Lock()
	l.paused = true
	react := l.react
	stream := l.stream
	l.mu.Unlock()

	if react != nil && stream != nil {
		react.OffReadable(stream)
	}
}

func (l *Listener) ResumeAccept() {
	l.mu.Lock()
	l.paused = false
	react := l.react
	isStream := l.ln != nil
	stream := l.stream
	l.mu.Unlock()

	if react == nil || stream == nil {
		return
	}
	if isStream {
		_ = react.OnReadable(stream, func(libreact.Stream) { l.acceptOne() })
	} else {
		_ = react.OnReadable(stream, func(libreact.Stream) { l.recvOne() })
	}
}

// DestroyConnections tears down every live connection immediately,
// discarding pending buffers — the worker action behind an ungraceful
// stop signal.
func (l *Listener) DestroyConnections() {
	for _, c := range l.Connections() {
		c.Destroy()
	}
}

// DrainConnections blocks until every live connection has finished and
// left the table, or ctx is cancelled. The graceful stop path carries no
// deadline of its own; callers that want one bound ctx.
func (l *Listener) DrainConnections(ctx context.Context) {
	t := time.NewTicker(drainPollInterval)
	defer t.Stop()

	for l.ConnectionCount() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// drainPollInterval paces DrainConnections' check of the live table.
const drainPollInterval = 50 * time.Millisecond

// Close stops accepting and closes the listening socket. Live connections
// are not forcibly closed; callers destroy or drain them first depending
// on the stop mode.
func (l *Listener) Close() error {
	if l.react != nil && l.stream != nil {
		l.react.OffReadable(l.stream)
	}
	if l.ln != nil {
		return l.ln.Close()
	}
	if l.pc != nil {
		return l.pc.Close()
	}
	return nil
}

// Connections returns a snapshot of currently live connections, used by
// the connection dump.
func (l *Listener) Connections() []*libcon.Connection {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*libcon.Connection, 0, len(l.conns))
	for _, c := range l.conns {
		out = append(out, c)
	}
	return out
}

func (l *Listener) ConnectionCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.conns)
}

// Remove implements connection.Owner: drops id from the live table and
// releases its admission slot.
func (l *Listener) Remove(id uint64) {
	l.mu.Lock()
	_, held := l.conns[id]
	delete(l.conns, id)
	l.mu.Unlock()
	if held {
		l.sem.DeferWorker()
	}
}

func (l *Listener) IncConnection() { l.stats.IncConnection() }
func (l *Listener) DecConnection() { l.stats.DecConnection() }
func (l *Listener) IncRequest()    { l.stats.IncRequest() }
func (l *Listener) IncException()  { l.stats.IncException() }
func (l *Listener) IncSendFail()   { l.stats.IncSendFail() }

// Fatal implements connection.Owner: escalates an unhandled user-callback
// panic to the installed fatal handler.
func (l *Listener) Fatal(err error) {
	l.mu.Lock()
	l.fatalReason = err
	fn := l.onFatal
	l.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}
