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

// Package length implements a 4-byte big-endian length-prefixed codec, the
// shape most custom binary application protocols plug in as.
package length

import (
	"encoding/binary"

	libcdc "github.com/sabouaram/reactord/codec"
)

const headerSize = 4

type Codec struct {
	// MaxPayload bounds the decoded frame length (header excluded); zero
	// means no additional bound beyond the listener's maxPackageSize.
	MaxPayload int
}

func New(maxPayload int) *Codec {
	return &Codec{MaxPayload: maxPayload}
}

func (c *Codec) Name() string { return "length" }

func init() {
	libcdc.Default.Register("length", New(0))
}

func (c *Codec) Input(buf []byte, _ libcdc.Conn) int {
	if len(buf) < headerSize {
		return libcdc.NeedMore
	}
	n := int(binary.BigEndian.Uint32(buf[:headerSize]))
	if n < 0 || (c.MaxPayload > 0 && n > c.MaxPayload) {
		return libcdc.FrameError
	}
	return headerSize + n
}

func (c *Codec) Decode(frame []byte, _ libcdc.Conn) (any, error) {
	return append([]byte{}, frame[headerSize:]...), nil
}

func (c *Codec) Encode(message any, _ libcdc.Conn) ([]byte, error) {
	var payload []byte
	switch v := message.(type) {
	case []byte:
		payload = v
	case string:
		payload = []byte(v)
	}
	out := make([]byte, headerSize+len(payload))
	binary.BigEndian.PutUint32(out[:headerSize], uint32(len(payload)))
	copy(out[headerSize:], payload)
	return out, nil
}
