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
	"os"

	libcon "github.com/sabouaram/reactord/connection"
	libptc "github.com/sabouaram/reactord/network/protocol"
	libskc "github.com/sabouaram/reactord/socket/config"
	libsts "github.com/sabouaram/reactord/status"
)

// NewFromServer builds a Listener from the shared socket/config Server
// description, for callers that describe an endpoint by network+address
// instead of a scheme string. For unix/unixgram servers, the socket file's
// mode and owning group are applied after bind.
func NewFromServer(name string, srv libskc.Server, codec string, cb libcon.Callbacks, stats *libsts.Stats) (*Listener, error) {
	if err := srv.Validate(); err != nil {
		return nil, err
	}

	scheme := srv.Network.Code()
	cfg := Config{
		Name:      name,
		Codec:     codec,
		ReusePort: srv.ReusePort,
	}
	if ok, _ := srv.GetTLS(); ok {
		// the ssl scheme selects the TLS-wrapped tcp transport
		scheme = "ssl"
		tlsCfg := srv.TLS.Config
		cfg.TLS = &tlsCfg
	}
	cfg.Listen = scheme + "://" + srv.Address

	l, err := New(cfg, cb, stats)
	if err != nil {
		return nil, err
	}

	if srv.Network == libptc.NetworkUnix || srv.Network == libptc.NetworkUnixGram {
		if err := applyUnixOwnership(srv); err != nil {
			_ = l.Close()
			return nil, err
		}
	}

	return l, nil
}

// applyUnixOwnership sets the bound socket file's permission bits and
// owning group.
func applyUnixOwnership(srv libskc.Server) error {
	if p := srv.PermFile.FileMode(); p != 0 {
		if err := os.Chmod(srv.Address, p); err != nil {
			return ErrorBindFailed.Error(err)
		}
	}
	if srv.GroupPerm > 0 {
		if err := os.Chown(srv.Address, -1, int(srv.GroupPerm)); err != nil {
			return ErrorBindFailed.Error(err)
		}
	}
	return nil
}
