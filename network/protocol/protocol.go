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

// Package protocol enumerates the transports a listener scheme can resolve
// to, and centralizes the scheme-to-transport table used across the repo.
package protocol

import "strings"

type NetworkProtocol uint8

const (
	NetworkEmpty NetworkProtocol = iota
	NetworkTCP
	NetworkTCP4
	NetworkTCP6
	NetworkUDP
	NetworkUDP4
	NetworkUDP6
	NetworkUnix
	NetworkUnixGram
)

func (n NetworkProtocol) Code() string {
	switch n {
	case NetworkTCP:
		return "tcp"
	case NetworkTCP4:
		return "tcp4"
	case NetworkTCP6:
		return "tcp6"
	case NetworkUDP:
		return "udp"
	case NetworkUDP4:
		return "udp4"
	case NetworkUDP6:
		return "udp6"
	case NetworkUnix:
		return "unix"
	case NetworkUnixGram:
		return "unixgram"
	default:
		return ""
	}
}

func (n NetworkProtocol) String() string {
	return n.Code()
}

func (n NetworkProtocol) IsStream() bool {
	switch n {
	case NetworkTCP, NetworkTCP4, NetworkTCP6, NetworkUnix:
		return true
	default:
		return false
	}
}

func (n NetworkProtocol) IsDatagram() bool {
	return !n.IsStream() && n != NetworkEmpty
}

func Parse(s string) NetworkProtocol {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tcp":
		return NetworkTCP
	case "tcp4":
		return NetworkTCP4
	case "tcp6":
		return NetworkTCP6
	case "udp":
		return NetworkUDP
	case "udp4":
		return NetworkUDP4
	case "udp6":
		return NetworkUDP6
	case "unix":
		return NetworkUnix
	case "unixgram":
		return NetworkUnixGram
	default:
		return NetworkEmpty
	}
}

func (n NetworkProtocol) MarshalText() ([]byte, error) {
	return []byte(n.Code()), nil
}

func (n *NetworkProtocol) UnmarshalText(b []byte) error {
	*n = Parse(string(b))
	return nil
}

// ResolveScheme maps the scheme component of a listener address
// (`scheme://address`, e.g. `websocket://0.0.0.0:8080`) to the transport
// that carries it and the codec name that frames it. This is the single
// table consulted by listener.New, per the redesigned scheme handling.
type Scheme struct {
	Transport NetworkProtocol
	Codec     string
	TLS       bool
}

var schemeTable = map[string]Scheme{
	"tcp":         {NetworkTCP, "line", false},
	"tcp4":        {NetworkTCP4, "line", false},
	"tcp6":        {NetworkTCP6, "line", false},
	"udp":         {NetworkUDP, "line", false},
	"udp4":        {NetworkUDP4, "line", false},
	"udp6":        {NetworkUDP6, "line", false},
	"unix":        {NetworkUnix, "line", false},
	"unixgram":    {NetworkUnixGram, "line", false},
	"ssl":         {NetworkTCP, "line", true},
	"websocket":   {NetworkTCP, "websocket", false},
	"wss":         {NetworkTCP, "websocket", true},
	"http":        {NetworkTCP, "http", false},
	"https":       {NetworkTCP, "http", true},
	"text":        {NetworkTCP, "line", false},
	"frame":       {NetworkTCP, "length", false},
}

func ResolveScheme(scheme string) (Scheme, bool) {
	s, ok := schemeTable[strings.ToLower(strings.TrimSpace(scheme))]
	return s, ok
}
