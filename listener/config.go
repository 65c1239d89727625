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

// Package listener owns accepting connections on one bound address:
// scheme resolution, SO_REUSEPORT bind, TLS wrap, the accept loop
// registered against a reactor, and the connection table a worker
// reports status and connection dumps from.
package listener

import (
	libcrt "github.com/sabouaram/reactord/certificates"
)

// Config is the declarative, validated description of one listener,
// parsed from a "scheme://address" string
type Config struct {
	// Name identifies this listener in status/connection dumps.
	Name string `mapstructure:"name" json:"name" yaml:"name" toml:"name" validate:"required"`
	// Listen is the "scheme://address" string, e.g. "websocket://0.0.0.0:8080".
	Listen string `mapstructure:"listen" json:"listen" yaml:"listen" toml:"listen" validate:"required"`
	// Codec overrides the scheme's default codec name when non-empty.
	Codec string `mapstructure:"codec" json:"codec" yaml:"codec" toml:"codec"`
	// ReusePort enables SO_REUSEPORT so several worker processes can each
	// bind their own socket on the same address.
	ReusePort bool `mapstructure:"reusePort" json:"reusePort" yaml:"reusePort" toml:"reusePort" validate:"-"`
	// MaxSendBufferSize bounds a connection's outbound queue before
	// onBufferFull fires. Zero selects a 1MiB default.
	MaxSendBufferSize int `mapstructure:"maxSendBufferSize" json:"maxSendBufferSize" yaml:"maxSendBufferSize" toml:"maxSendBufferSize"`
	// MaxPackageSize bounds a single decoded frame.
	// Zero selects a 10MiB default.
	MaxPackageSize int `mapstructure:"maxPackageSize" json:"maxPackageSize" yaml:"maxPackageSize" toml:"maxPackageSize"`
	// MaxConnections bounds how many connections this listener services at
	// once; further accepts are shed at the door until a slot frees. Zero
	// selects a CPU-proportional default.
	MaxConnections int `mapstructure:"maxConnections" json:"maxConnections" yaml:"maxConnections" toml:"maxConnections"`
	// TLS configures the certificate/cipher parameters for "ssl://"/"wss://"/"https://"
	// schemes; ignored for plaintext schemes.
	TLS *libcrt.Config `mapstructure:"tls" json:"tls" yaml:"tls" toml:"tls"`
}
