/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

// Package tlsversion names the TLS protocol versions a listener may pin
// as its min/max bounds, with parsing from the many ways configs spell
// them ("TLS1.2", "tls-12", "1.3", ...).
package tlsversion

import (
	"crypto/tls"
	"strings"
)

// Version is one TLS protocol version, wrapping the crypto/tls constants.
type Version int

const (
	VersionUnknown Version = iota

	VersionTLS10 = Version(tls.VersionTLS10)
	VersionTLS11 = Version(tls.VersionTLS11)
	VersionTLS12 = Version(tls.VersionTLS12)
	VersionTLS13 = Version(tls.VersionTLS13)
)

// List returns every known version, newest first.
func List() []Version {
	return []Version{
		VersionTLS13,
		VersionTLS12,
		VersionTLS11,
		VersionTLS10,
	}
}

// ListHigh returns only the versions still considered safe to offer.
func ListHigh() []Version {
	return []Version{
		VersionTLS13,
		VersionTLS12,
	}
}

// Parse maps a version spelling to its Version: quoting, a tls/ssl
// prefix, dots, dashes, underscores and spaces are all ignored, so
// "TLS 1.2", "tls_12" and "1.2" parse alike. Unrecognized input yields
// VersionUnknown.
func Parse(s string) Version {
	s = strings.ToLower(s)
	for _, cut := range []string{"\"", "'", "tls", "ssl", ".", "-", "_", " "} {
		s = strings.ReplaceAll(s, cut, "")
	}
	s = strings.TrimSpace(s)

	switch s {
	case "1", "10":
		return VersionTLS10
	case "11":
		return VersionTLS11
	case "12":
		return VersionTLS12
	case "13":
		return VersionTLS13
	default:
		return VersionUnknown
	}
}

// ParseInt maps a raw crypto/tls version value to its Version, or
// VersionUnknown.
func ParseInt(d int) Version {
	switch d {
	case tls.VersionTLS10:
		return VersionTLS10
	case tls.VersionTLS11:
		return VersionTLS11
	case tls.VersionTLS12:
		return VersionTLS12
	case tls.VersionTLS13:
		return VersionTLS13
	default:
		return VersionUnknown
	}
}

// ParseBytes is Parse over a byte slice.
func ParseBytes(p []byte) Version {
	return Parse(string(p))
}

func (v Version) String() string {
	switch v {
	case VersionTLS10:
		return "TLS 1.0"
	case VersionTLS11:
		return "TLS 1.1"
	case VersionTLS12:
		return "TLS 1.2"
	case VersionTLS13:
		return "TLS 1.3"
	default:
		return ""
	}
}

func (v Version) Code() string {
	s := strings.ToLower(v.String())
	s = strings.Replace(s, " ", "_", -1)
	return s
}

func (v Version) TLS() uint16 {
	return v.Uint16()
}

func (v Version) Uint16() uint16 {
	switch v {
	case VersionTLS10:
		return tls.VersionTLS10
	case VersionTLS11:
		return tls.VersionTLS11
	case VersionTLS12:
		return tls.VersionTLS12
	case VersionTLS13:
		return tls.VersionTLS13
	default:
		return 0
	}
}

func (v Version) Uint() uint {
	return uint(v.Uint16())
}

func (v Version) Uint32() uint32 {
	return uint32(v.Uint16())
}

func (v Version) Uint64() uint64 {
	return uint64(v.Uint16())
}

func (v Version) Int() int {
	return int(v.Uint16())
}

func (v Version) Int32() int32 {
	return int32(v.Uint16())
}

func (v Version) Int64() int64 {
	return int64(v.Uint16())
}
