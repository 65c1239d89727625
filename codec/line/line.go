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

// Package line implements the trivial newline-delimited reference codec:
// one message per '\n'-terminated line. It is the default codec for bare
// tcp/udp/unix listeners with no protocol configured.
package line

import (
	"bytes"
	"fmt"

	libcdc "github.com/sabouaram/reactord/codec"
)

type Codec struct{}

func New() *Codec { return &Codec{} }

func (c *Codec) Name() string { return "line" }

func init() {
	libcdc.Default.Register("line", New())
}

func (c *Codec) Input(buf []byte, _ libcdc.Conn) int {
	i := bytes.IndexByte(buf, '\n')
	if i < 0 {
		return libcdc.NeedMore
	}
	return i + 1
}

func (c *Codec) Decode(frame []byte, _ libcdc.Conn) (any, error) {
	return bytes.TrimSuffix(bytes.TrimSuffix(frame, []byte("\n")), []byte("\r")), nil
}

func (c *Codec) Encode(message any, _ libcdc.Conn) ([]byte, error) {
	switch v := message.(type) {
	case []byte:
		return appendNewline(v), nil
	case string:
		return appendNewline([]byte(v)), nil
	default:
		return appendNewline([]byte(fmt.Sprint(v))), nil
	}
}

func appendNewline(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\n' {
		return b
	}
	return append(append([]byte{}, b...), '\n')
}
