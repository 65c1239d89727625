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

package connection

// Status is the Connection lifecycle state.
type Status uint8

const (
	StatusInitial Status = iota
	StatusConnecting
	StatusEstablished
	StatusClosing
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusInitial:
		return "INITIAL"
	case StatusConnecting:
		return "CONNECTING"
	case StatusEstablished:
		return "ESTABLISHED"
	case StatusClosing:
		return "CLOSING"
	case StatusClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ErrorKind classifies the reason passed to OnError.
type ErrorKind uint8

const (
	ErrSendFail ErrorKind = iota
	ErrConnectFail
	ErrProtocol
	ErrSSLHandshake
)

func (k ErrorKind) String() string {
	switch k {
	case ErrSendFail:
		return "SEND_FAIL"
	case ErrConnectFail:
		return "CONNECT_FAIL"
	case ErrProtocol:
		return "PROTOCOL_ERROR"
	case ErrSSLHandshake:
		return "SSL_HANDSHAKE_FAIL"
	default:
		return "UNKNOWN"
	}
}
