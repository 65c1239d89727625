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
	"fmt"
	"net"
	"strings"
	"syscall"

	libptc "github.com/sabouaram/reactord/network/protocol"
	"golang.org/x/sys/unix"
)

// parseListen splits a "scheme://address" string into its scheme and
// network address, e.g. "websocket://0.0.0.0:8080" -> ("websocket", "0.0.0.0:8080").
func parseListen(listen string) (scheme, address string, err error) {
	parts := strings.SplitN(listen, "://", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", ErrorMalformedListen.Error(fmt.Errorf("got %q, want scheme://address", listen))
	}
	return parts[0], parts[1], nil
}

// reusePortControl marks the socket SO_REUSEPORT before bind, letting the
// kernel load-balance accepts across one socket per worker process bound
// to the same address.
func reusePortControl(_, _ string, c syscall.RawConn) error {
	var ctlErr error
	err := c.Control(func(fd uintptr) {
		ctlErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return ctlErr
}

// listenStream opens the listening socket for a stream transport
// (tcp/tcp4/tcp6/unix), applying SO_REUSEPORT when requested.
func listenStream(transport libptc.NetworkProtocol, address string, reusePort bool) (net.Listener, error) {
	lc := net.ListenConfig{}
	if reusePort && transport != libptc.NetworkUnix {
		lc.Control = reusePortControl
	}
	return lc.Listen(context.Background(), transport.Code(), address)
}

// listenPacket opens the listening socket for a datagram transport
// (udp/udp4/udp6/unixgram), applying SO_REUSEPORT when requested.
func listenPacket(transport libptc.NetworkProtocol, address string, reusePort bool) (net.PacketConn, error) {
	lc := net.ListenConfig{}
	if reusePort && transport != libptc.NetworkUnixGram {
		lc.Control = reusePortControl
	}
	return lc.ListenPacket(context.Background(), transport.Code(), address)
}
