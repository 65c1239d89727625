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

//go:build linux

package epoll

import "github.com/sabouaram/reactord/errors"

const (
	ErrorEpollCreateFailed errors.CodeError = iota + errors.MinPkgReactor
	ErrorEventFDFailed
	ErrorEpollCtlFailed
	ErrorRawFDFailed
	ErrorEpollWaitFailed
	ErrorCloseFailed
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorEpollCreateFailed)
	errors.RegisterIdFctMessage(ErrorEpollCreateFailed, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorEpollCreateFailed:
		return "epoll: epoll_create1 failed"
	case ErrorEventFDFailed:
		return "epoll: eventfd failed"
	case ErrorEpollCtlFailed:
		return "epoll: epoll_ctl failed"
	case ErrorRawFDFailed:
		return "epoll: cannot recover raw file descriptor from stream"
	case ErrorEpollWaitFailed:
		return "epoll: epoll_wait failed"
	case ErrorCloseFailed:
		return "epoll: close failed"
	}

	return ""
}
