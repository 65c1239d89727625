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

// Package http frames HTTP/1.1 requests over the Input/Decode/Encode
// contract using net/http's own parsing and serialization primitives. It
// does not run its own accept loop or listener the way net/http.Server
// does; it is a frame parser plugged into the reactor's accept loop
// (scenario S2).
package http

import (
	"bufio"
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"

	libcdc "github.com/sabouaram/reactord/codec"
)

type Codec struct{}

func New() *Codec { return &Codec{} }

func (c *Codec) Name() string { return "http" }

func init() {
	libcdc.Default.Register("http", New())
}

const headerTerminator = "\r\n\r\n"

func (c *Codec) Input(buf []byte, _ libcdc.Conn) int {
	idx := bytes.Index(buf, []byte(headerTerminator))
	if idx < 0 {
		return libcdc.NeedMore
	}
	headEnd := idx + len(headerTerminator)
	body := contentLength(buf[:headEnd])
	total := headEnd + body
	if len(buf) < total {
		return libcdc.NeedMore
	}
	return total
}

func contentLength(head []byte) int {
	for _, line := range strings.Split(string(head), "\r\n") {
		k, v, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(k), "Content-Length") {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

func (c *Codec) Decode(frame []byte, _ libcdc.Conn) (any, error) {
	return http.ReadRequest(bufio.NewReader(bytes.NewReader(frame)))
}

// Encode accepts *http.Response (the common case) or raw bytes already in
// wire format.
func (c *Codec) Encode(message any, _ libcdc.Conn) ([]byte, error) {
	switch v := message.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case *http.Response:
		var b bytes.Buffer
		if err := v.Write(&b); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	default:
		return nil, nil
	}
}

// Response builds a minimal 200-class response the way scenario S2 expects:
// status line, Content-Length, body, connection kept alive.
func Response(status int, body []byte) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Status:        http.StatusText(status),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Length": {strconv.Itoa(len(body))}},
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
	}
}
