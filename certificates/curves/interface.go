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

// Package curves names the elliptic curves a TLS listener may offer for
// ECDHE key exchange (X25519 and the NIST P curves), with parsing from
// strings, integers and every config encoding the module loads.
package curves

import (
	"crypto/tls"
	"math"
	"reflect"
	"regexp"
	"strings"

	libmap "github.com/go-viper/mapstructure/v2"
)

// rx extracts the numeric part of a curve spelling, so "P-256",
// "secp256r1" and "256" all parse alike.
var rx = regexp.MustCompile("[0-9]+")

// Curves identifies one ECDHE curve, wrapping tls.CurveID.
type Curves uint16

const (
	Unknown Curves = iota

	X25519 = Curves(tls.X25519)
	P256   = Curves(tls.CurveP256)
	P384   = Curves(tls.CurveP384)
	P521   = Curves(tls.CurveP521)
)

// List returns every supported curve, X25519 first.
func List() []Curves {
	return []Curves{
		X25519,
		P256,
		P384,
		P521,
	}
}

// ListString returns List as the canonical spellings.
func ListString() []string {
	var res = make([]string, 0)
	for _, c := range List() {
		res = append(res, c.String())
	}
	return res
}

// Parse maps any spelling containing a curve's number (25519, 256, 384,
// 521) to that curve, or Unknown.
func Parse(s string) Curves {
	s = strings.ToLower(s)
	s = rx.FindString(s)

	switch {
	case strings.EqualFold(s, "25519"):
		return X25519
	case strings.EqualFold(s, "256"):
		return P256
	case strings.EqualFold(s, "384"):
		return P384
	case strings.EqualFold(s, "521"):
		return P521
	default:
		return Unknown
	}
}

// ParseInt maps a raw tls.CurveID value to its curve, clamping
// out-of-range input, or Unknown.
func ParseInt(d int) Curves {
	var r tls.CurveID
	if d > math.MaxUint16 {
		r = math.MaxUint16
	} else if d < 1 {
		r = 0
	} else {
		r = tls.CurveID(d)
	}

	switch r {
	case tls.X25519:
		return X25519
	case tls.CurveP256:
		return P256
	case tls.CurveP384:
		return P384
	case tls.CurveP521:
		return P521
	default:
		return Unknown
	}
}

// ParseBytes is Parse over a byte slice.
func ParseBytes(p []byte) Curves {
	return Parse(string(p))
}

// Check reports whether the raw value names a supported curve.
func Check(curves uint16) bool {
	return ParseInt(int(curves)) != Unknown
}

// Check reports whether v is one of the supported curves.
func (v Curves) Check() bool {
	switch v {
	case X25519, P256, P384, P521:
		return true
	default:
		return false
	}
}

// ViperDecoderHook lets mapstructure-based config loading decode a curve
// from its string spelling.
func ViperDecoderHook() libmap.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		var (
			z = Curves(0)
			t string
			k bool
		)

		if from.Kind() != reflect.String {
			return data, nil
		} else if t, k = data.(string); !k {
			return data, nil
		}

		if to != reflect.TypeOf(z) {
			return data, nil
		}

		if e := z.unmarshall([]byte(t)); e != nil {
			return nil, e
		} else {
			return z, nil
		}
	}
}

func (v Curves) String() string {
	switch v {
	case X25519:
		return "X25519"
	case P256:
		return "P256"
	case P384:
		return "P384"
	case P521:
		return "P521"
	default:
		return ""
	}
}

func (v Curves) Code() string {
	return strings.ToLower(v.String())
}

func (v Curves) CurveID() tls.CurveID {
	switch v {
	case X25519:
		return tls.X25519
	case P256:
		return tls.CurveP256
	case P384:
		return tls.CurveP384
	case P521:
		return tls.CurveP521
	default:
		return 0
	}
}

func (v Curves) TLS() tls.CurveID {
	return v.CurveID()
}

func (v Curves) Uint16() uint16 {
	return uint16(v.CurveID())
}

func (v Curves) Uint() uint {
	return uint(v.CurveID())
}

func (v Curves) Uint32() uint32 {
	return uint32(v.CurveID())
}

func (v Curves) Uint64() uint64 {
	return uint64(v.CurveID())
}

func (v Curves) Int() int {
	return int(v.CurveID())
}

func (v Curves) Int32() int32 {
	return int32(v.CurveID())
}

func (v Curves) Int64() int64 {
	return int64(v.CurveID())
}
