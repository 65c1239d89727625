/*
MIT License

Copyright (c) 2022 Nicolas JUHEL

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

import "github.com/sabouaram/reactord/errors"

const (
	ErrorEncodeFailed errors.CodeError = iota + errors.MinPkgConnection
	ErrorWriteFailed
	ErrorReadFailed
	ErrorDecodeFailed
	ErrorRegisterFailed
	ErrorDialResolveFailed
	ErrorDialFailed
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorEncodeFailed)
	errors.RegisterIdFctMessage(ErrorEncodeFailed, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorEncodeFailed:
		return "codec: cannot encode outgoing message"
	case ErrorWriteFailed:
		return "connection: write to socket failed"
	case ErrorReadFailed:
		return "connection: read from socket failed"
	case ErrorDecodeFailed:
		return "codec: cannot decode incoming message"
	case ErrorRegisterFailed:
		return "connection: cannot register with reactor"
	case ErrorDialResolveFailed:
		return "connection: cannot resolve dial address"
	case ErrorDialFailed:
		return "connection: dial failed"
	}

	return ""
}
