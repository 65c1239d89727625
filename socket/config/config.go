/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

// Package config declares the validated Client/Server descriptors a plain
// request/response socket endpoint is built from: network/address, TLS,
// and (for unix-domain servers) the socket file's permission and group.
package config

import (
	"crypto/tls"
	"fmt"
	"net"
	"runtime"
	"time"

	libtls "github.com/sabouaram/reactord/certificates"
	libprm "github.com/sabouaram/reactord/file/perm"
	libptc "github.com/sabouaram/reactord/network/protocol"
)

// MaxGID is the largest unix group id a Server.GroupPerm may name.
const MaxGID = 32767

// ClientTLS configures outbound TLS for a Client.
type ClientTLS struct {
	Enabled    bool        `mapstructure:"enabled" json:"enabled" yaml:"enabled" toml:"enabled"`
	Config     libtls.Config `mapstructure:"config" json:"config" yaml:"config" toml:"config"`
	ServerName string      `mapstructure:"serverName" json:"serverName" yaml:"serverName" toml:"serverName"`
}

// Client is a validated description of a socket endpoint to dial.
type Client struct {
	Network libptc.NetworkProtocol `mapstructure:"network" json:"network" yaml:"network" toml:"network"`
	Address string                 `mapstructure:"address" json:"address" yaml:"address" toml:"address"`
	TLS     ClientTLS              `mapstructure:"tls" json:"tls" yaml:"tls" toml:"tls"`
}

// Validate checks the protocol is supported, the address resolves for that
// protocol, and (if TLS is enabled) that the protocol is TLS-capable and a
// ServerName was given for certificate verification.
func (c Client) Validate() error {
	if err := validateProtocol(c.Network); err != nil {
		return err
	}
	if err := validateAddress(c.Network, c.Address); err != nil {
		return err
	}
	if c.TLS.Enabled {
		if !c.Network.IsStream() {
			return ErrInvalidTLSConfig()
		}
		if c.TLS.ServerName == "" {
			return ErrorInvalidTLSConfig.Error(fmt.Errorf("serverName is required when TLS is enabled"))
		}
	}
	return nil
}

// GetTLS reports whether TLS is enabled and, if so, its *tls.Config and the
// server name to verify against.
func (c Client) GetTLS() (bool, *tls.Config, string) {
	if !c.TLS.Enabled {
		return false, nil, ""
	}
	cfg := c.TLS.Config
	return true, cfg.New().TLS(c.TLS.ServerName), c.TLS.ServerName
}

// DefaultTLS merges cfg into this Client's TLS config as the inherited
// default (no-op helper kept for parity with the certificates package).
func (c *Client) DefaultTLS(cfg libtls.TLSConfig) {
	if cfg == nil {
		return
	}
	c.TLS.Config = *cfg.Config()
}

// ServerTLS configures inbound TLS for a Server.
type ServerTLS struct {
	Enable bool          `mapstructure:"enable" json:"enable" yaml:"enable" toml:"enable"`
	Config libtls.Config `mapstructure:"config" json:"config" yaml:"config" toml:"config"`
}

// Server is a validated description of a socket endpoint to listen on.
type Server struct {
	Network libptc.NetworkProtocol `mapstructure:"network" json:"network" yaml:"network" toml:"network"`
	Address string                 `mapstructure:"address" json:"address" yaml:"address" toml:"address"`

	// PermFile/GroupPerm only apply to unix/unixgram servers: the socket
	// file's mode and owning group after bind.
	PermFile  libprm.Perm `mapstructure:"permFile" json:"permFile" yaml:"permFile" toml:"permFile"`
	GroupPerm int32       `mapstructure:"groupPerm" json:"groupPerm" yaml:"groupPerm" toml:"groupPerm"`

	// ConIdleTimeout closes an accepted connection that sits idle this
	// long; zero or negative disables the timeout.
	ConIdleTimeout time.Duration `mapstructure:"conIdleTimeout" json:"conIdleTimeout" yaml:"conIdleTimeout" toml:"conIdleTimeout"`

	// ReusePort requests SO_REUSEPORT; Validate rejects it on platforms
	// that can't honor it.
	ReusePort bool `mapstructure:"reusePort" json:"reusePort" yaml:"reusePort" toml:"reusePort"`

	TLS ServerTLS `mapstructure:"tls" json:"tls" yaml:"tls" toml:"tls"`
}

func (s Server) Validate() error {
	if err := validateProtocol(s.Network); err != nil {
		return err
	}
	if err := validateAddress(s.Network, s.Address); err != nil {
		return err
	}
	if s.GroupPerm < 0 || s.GroupPerm > MaxGID {
		return ErrInvalidGroup()
	}
	if s.TLS.Enable && !s.Network.IsStream() {
		return ErrInvalidTLSConfig()
	}
	if s.ReusePort && !reusePortSupported() {
		return ErrInvalidReusePort()
	}
	return nil
}

// GetTLS reports whether TLS is enabled and, if so, its *tls.Config.
func (s Server) GetTLS() (bool, *tls.Config) {
	if !s.TLS.Enable {
		return false, nil
	}
	cfg := s.TLS.Config
	return true, cfg.New().TLS("")
}

func (s *Server) DefaultTLS(cfg libtls.TLSConfig) {
	if cfg == nil {
		return
	}
	s.TLS.Config = *cfg.Config()
}

func validateProtocol(n libptc.NetworkProtocol) error {
	if n == libptc.NetworkEmpty {
		return ErrInvalidProtocol()
	}
	if (n == libptc.NetworkUnix || n == libptc.NetworkUnixGram) && runtime.GOOS == "windows" {
		return ErrInvalidProtocol()
	}
	return nil
}

func validateAddress(n libptc.NetworkProtocol, addr string) error {
	switch {
	case n.IsStream() && (n == libptc.NetworkUnix):
		if _, err := net.ResolveUnixAddr("unix", addr); err != nil {
			return ErrorInvalidAddress.Error(err)
		}
		return nil
	case n == libptc.NetworkUnixGram:
		if _, err := net.ResolveUnixAddr("unixgram", addr); err != nil {
			return ErrorInvalidAddress.Error(err)
		}
		return nil
	case n.IsStream():
		if _, err := net.ResolveTCPAddr(n.String(), addr); err != nil {
			return ErrorInvalidAddress.Error(err)
		}
		return nil
	case n.IsDatagram():
		if _, err := net.ResolveUDPAddr(n.String(), addr); err != nil {
			return ErrorInvalidAddress.Error(err)
		}
		return nil
	default:
		return ErrInvalidProtocol()
	}
}

// reusePortSupported reports whether SO_REUSEPORT is available on this
// build target: true on linux, darwin, freebsd, dragonfly, netbsd and
// openbsd, false everywhere else.
func reusePortSupported() bool {
	switch runtime.GOOS {
	case "linux", "darwin", "freebsd", "dragonfly", "netbsd", "openbsd":
		return true
	default:
		return false
	}
}
