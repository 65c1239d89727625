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

package listener

import (
	"fmt"
	"runtime"

	"github.com/sabouaram/reactord/errors"
)

const (
	ErrorMalformedListen errors.CodeError = iota + errors.MinPkgListener
	ErrorUnknownScheme
	ErrorBindFailed
	ErrorNotRegistrable
	ErrorReusePortUnsupported
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorMalformedListen)
	errors.RegisterIdFctMessage(ErrorMalformedListen, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorMalformedListen:
		return "listener: malformed listen address, want scheme://address"
	case ErrorUnknownScheme:
		return "listener: unknown scheme"
	case ErrorBindFailed:
		return "listener: bind failed"
	case ErrorNotRegistrable:
		return "listener: underlying socket does not support reactor registration"
	case ErrorReusePortUnsupported:
		return "listener: reusePort is not supported on this platform"
	}

	return ""
}

// ErrInvalidReusePort is returned by Config.Validate when ReusePort is
// requested on a platform whose kernel doesn't support SO_REUSEPORT,
// refusing an unsupportable reusePort request at config
// time rather than silently falling back to master-bound + inherited.
// Constructed at call time, not as a package var, since its message is
// only registered once this package's init() has run.
func ErrInvalidReusePort() errors.Error {
	return ErrorReusePortUnsupported.Error(fmt.Errorf("platform is %s", runtime.GOOS))
}
