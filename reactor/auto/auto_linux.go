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

// Package auto picks the best reactor driver for the current platform:
// the native epoll driver on Linux, falling back to the portable driver
// everywhere else (or if epoll_create1 itself fails, e.g. a restrictive
// seccomp sandbox).
package auto

import (
	"github.com/sabouaram/reactord/reactor"
	"github.com/sabouaram/reactord/reactor/epoll"
	"github.com/sabouaram/reactord/reactor/fallback"
)

// nativeName is the driver name New() returns alongside the epoll driver,
// for the status dump's "event-loop" column.
const nativeName = "epoll"

func New() (reactor.Reactor, string) {
	if r, err := epoll.New(); err == nil {
		return r, nativeName
	}
	return fallback.New(), "fallback"
}
