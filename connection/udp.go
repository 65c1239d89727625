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

	libcdc "github.com/sabouaram/reactord/codec"
	libptc "github.com/sabouaram/reactord/network/protocol"
)

// UDPPacket is the per-datagram view: UDP has no persistent
// connection state, so the listener hands each received datagram to a
// throwaway UDPPacket carrying just enough identity (source address) to let
// a handler reply through the shared socket.
type UDPPacket struct {
	id     uint64
	socket net.PacketConn
	remote net.Addr
	local  net.Addr
	codec  libcdc.Codec
}

// NewUDPPacket wraps a single received datagram's source address and the
// listener's shared *net.UDPConn, so replies go out the one listening
// socket rather than opening a new one per datagram.
func NewUDPPacket(socket net.PacketConn, remote net.Addr, codec libcdc.Codec) *UDPPacket {
	local := net.Addr(nil)
	if socket != nil {
		local = socket.LocalAddr()
	}
	return &UDPPacket{
		id:     NextID(),
		socket: socket,
		remote: remote,
		local:  local,
		codec:  codec,
	}
}

func (p *UDPPacket) ID() uint64                         { return p.id }
func (p *UDPPacket) RemoteAddr() net.Addr               { return p.remote }
func (p *UDPPacket) LocalAddr() net.Addr                { return p.local }
func (p *UDPPacket) Transport() libptc.NetworkProtocol  { return libptc.NetworkUDP }

// Send encodes message through the listener's codec (unless raw) and
// writes it back to the datagram's source address.
// "send replies to the packet's source, not a held connection".
func (p *UDPPacket) Send(message any, raw bool) bool {
	return p.send(message, raw) == nil
}

func (p *UDPPacket) send(message any, raw bool) error {
	payload, err := encodeFor(p.codec, p, message, raw)
	if err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err = p.socket.WriteTo(payload, p.remote); err != nil {
		return ErrorWriteFailed.Error(err)
	}
	return nil
}

// Close sends optional final data; a datagram view holds no socket of its
// own, so there is nothing further to release.
func (p *UDPPacket) Close(data []byte, raw bool) {
	if len(data) > 0 {
		p.Send(data, raw)
	}
}

// encodeFor runs message through codec.Encode unless raw, in which case
// message must already be a byte slice.
func encodeFor(codec libcdc.Codec, conn libcdc.Conn, message any, raw bool) ([]byte, error) {
	if raw {
		b, _ := message.([]byte)
		return b, nil
	}
	if codec == nil {
		b, _ := message.([]byte)
		return b, nil
	}
	b, err := codec.Encode(message, conn)
	if err != nil {
		return nil, ErrorEncodeFailed.Error(err)
	}
	return b, nil
}

// AsyncUDPConnection is the client-side counterpart: a dialed *net.UDPConn
// wrapped with the same Conn surface as a stream Connection, for code that
// issues outbound UDP requests.
type AsyncUDPConnection struct {
	id    uint64
	conn  *net.UDPConn
	codec libcdc.Codec
	cb    Callbacks
}

// DialUDP opens an outbound UDP socket to addr, fires onConnect once, and
// returns the long-lived connection.
func DialUDP(network, addr string, codec libcdc.Codec, cb Callbacks) (*AsyncUDPConnection, error) {
	raddr, err := net.ResolveUDPAddr(network, addr)
	if err != nil {
		return nil, ErrorDialResolveFailed.Error(err)
	}
	conn, err := net.DialUDP(network, nil, raddr)
	if err != nil {
		return nil, ErrorDialFailed.Error(err)
	}
	c := &AsyncUDPConnection{id: NextID(), conn: conn, codec: codec, cb: cb}
	if cb.OnConnect != nil {
		cb.OnConnect(c)
	}
	return c, nil
}

func (c *AsyncUDPConnection) ID() uint64                        { return c.id }
func (c *AsyncUDPConnection) RemoteAddr() net.Addr              { return c.conn.RemoteAddr() }
func (c *AsyncUDPConnection) LocalAddr() net.Addr               { return c.conn.LocalAddr() }
func (c *AsyncUDPConnection) Transport() libptc.NetworkProtocol { return libptc.NetworkUDP }

func (c *AsyncUDPConnection) Send(message any, raw bool) bool {
	return c.send(message, raw) == nil
}

func (c *AsyncUDPConnection) send(message any, raw bool) error {
	payload, err := encodeFor(c.codec, c, message, raw)
	if err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err = c.conn.Write(payload); err != nil {
		return ErrorWriteFailed.Error(err)
	}
	return nil
}

// Recv performs one blocking read and, if the codec frames a complete
// message from it, dispatches onMessage. UDP datagrams arrive whole, so a
// single Input/Decode pass per read suffices; there is no partial-frame
// reassembly as there is for streams.
func (c *AsyncUDPConnection) Recv(buf []byte) error {
	n, err := c.conn.Read(buf)
	if err != nil {
		return ErrorReadFailed.Error(err)
	}
	frame := buf[:n]
	if c.codec == nil {
		if c.cb.OnMessage != nil {
			c.cb.OnMessage(c, frame)
		}
		return nil
	}
	if ln := c.codec.Input(frame, c); ln == libcdc.NeedMore || ln == libcdc.FrameError {
		return nil
	}
	msg, derr := c.codec.Decode(frame, c)
	if derr != nil {
		return ErrorDecodeFailed.Error(derr)
	}
	if c.cb.OnMessage != nil {
		c.cb.OnMessage(c, msg)
	}
	return nil
}

// Close sends optional final data, fires onClose, and releases the socket.
func (c *AsyncUDPConnection) Close(data []byte, raw bool) {
	if len(data) > 0 {
		c.Send(data, raw)
	}
	if c.cb.OnClose != nil {
		c.cb.OnClose(c)
	}
	_ = c.conn.Close()
}
