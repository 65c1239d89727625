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

package errors

import (
	"math"
	"reflect"
	"runtime"
	"strconv"
	"strings"
)

// Message resolves the message for a code. Each package registers one
// Message covering its whole code range (see RegisterIdFctMessage).
type Message func(code CodeError) (message string)

// CodeError is a numeric error code. Each package in this module owns a
// disjoint range starting at its MinPkg constant (see modules.go), so a
// bare code is enough to tell which package produced an error.
type CodeError uint16

const (
	// UnknownError is the zero code, used when no specific code applies.
	UnknownError CodeError = 0

	UnknownMessage = "unknown error"
	NullMessage    = ""
)

// idMsgFct maps each registered range base to its Message resolver.
var idMsgFct = make(map[CodeError]Message)

// ParseCodeError converts i to a CodeError, clamping to [0, MaxUint16].
func ParseCodeError(i int64) CodeError {
	switch {
	case i < 0:
		return UnknownError
	case i >= int64(math.MaxUint16):
		return math.MaxUint16
	default:
		return CodeError(i)
	}
}

// NewCodeError converts a raw uint16 to a CodeError.
func NewCodeError(code uint16) CodeError {
	return CodeError(code)
}

func (c CodeError) Uint16() uint16 { return uint16(c) }
func (c CodeError) Int() int       { return int(c) }

func (c CodeError) String() string {
	return strconv.Itoa(c.Int())
}

// GetMessage returns the string representation of the code.
// Deprecated: see Message.
func (c CodeError) GetMessage() string {
	return c.String()
}

// Message returns the registered message for c, or UnknownMessage when c
// is zero or falls outside every registered range.
func (c CodeError) Message() string {
	if c == UnknownError {
		return UnknownMessage
	}

	if f, ok := idMsgFct[rangeBaseOf(c)]; ok {
		if m := f(c); m != "" {
			return m
		}
	}

	return UnknownMessage
}

// Error builds an Error carrying c, its registered message, and any parent
// errors.
func (c CodeError) Error(p ...error) Error {
	return New(c.Uint16(), c.Message(), p...)
}

// Errorf builds an Error whose registered message is treated as a format
// string when it contains verbs; surplus args beyond the verb count are
// discarded.
func (c CodeError) Errorf(args ...interface{}) Error {
	m := c.Message()

	if !strings.Contains(m, "%") {
		return New(c.Uint16(), m)
	}

	if n := strings.Count(m, "%"); n < len(args) {
		return Newf(c.Uint16(), m, args[:n]...)
	}

	return Newf(c.Uint16(), m, args...)
}

// IfError builds an Error from c only when at least one of e is a real
// error; with nothing to wrap it returns nil.
func (c CodeError) IfError(e ...error) Error {
	return IfError(c.Uint16(), c.Message(), e...)
}

// GetCodePackages maps every registered range base to the source file that
// registered it, with paths rebased below rootPackage.
func GetCodePackages(rootPackage string) map[CodeError]string {
	var res = make(map[CodeError]string)

	for i, f := range idMsgFct {
		p := reflect.ValueOf(f).Pointer()
		n, _ := runtime.FuncForPC(p).FileLine(p)

		if strings.Contains(n, "/vendor/") {
			n = strings.SplitN(n, "/vendor/", 2)[1]
		}

		if strings.Contains(n, rootPackage) {
			n = strings.SplitN(n, rootPackage, 2)[1]
		}

		if !strings.HasPrefix(n, "/") {
			n = "/" + n
		}

		res[i] = n
	}

	return res
}

// RegisterIdFctMessage installs fct as the message resolver for the code
// range starting at minCode. Codes are resolved to the highest registered
// base that does not exceed them, so ranges must not overlap.
func RegisterIdFctMessage(minCode CodeError, fct Message) {
	if idMsgFct == nil {
		idMsgFct = make(map[CodeError]Message)
	}

	idMsgFct[minCode] = fct
}

// ExistInMapMessage reports whether some registered resolver yields a
// non-empty message for code — the collision check each package's init
// runs before claiming its range.
func ExistInMapMessage(code CodeError) bool {
	if f, ok := idMsgFct[rangeBaseOf(code)]; ok {
		if m := f(code); m != NullMessage {
			return true
		}
	}

	return false
}

// rangeBaseOf returns the highest registered range base that is ≤ code,
// or zero when code precedes every registered range.
func rangeBaseOf(code CodeError) CodeError {
	var res CodeError

	for k := range idMsgFct {
		if k <= code && k > res {
			res = k
		}
	}

	return res
}

func unicCodeSlice(slice []CodeError) []CodeError {
	var (
		seen = make(map[CodeError]bool, len(slice))
		res  = make([]CodeError, 0, len(slice))
	)

	for _, c := range slice {
		if !seen[c] {
			seen[c] = true
			res = append(res, c)
		}
	}

	return res
}
