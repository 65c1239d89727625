/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

package config

import (
	"fmt"
	"runtime"

	"github.com/sabouaram/reactord/errors"
)

const (
	ErrorInvalidProtocol errors.CodeError = iota + errors.MinPkgSocket
	ErrorInvalidTLSConfig
	ErrorInvalidGroup
	ErrorInvalidReusePort
	ErrorInvalidAddress
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorInvalidProtocol)
	errors.RegisterIdFctMessage(ErrorInvalidProtocol, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorInvalidProtocol:
		return "invalid protocol for socket configuration"
	case ErrorInvalidTLSConfig:
		return "invalid TLS config: TLS is only supported on stream (tcp/unix) protocols"
	case ErrorInvalidGroup:
		return fmt.Sprintf("invalid unix group: must be between 0 and %d", MaxGID)
	case ErrorInvalidReusePort:
		return "reusePort is not supported on this platform"
	case ErrorInvalidAddress:
		return "address does not resolve for this protocol"
	}

	return ""
}

// ErrInvalidProtocol is returned by Client.Validate/Server.Validate when
// Network is empty, or is a unix/unixgram socket requested on a platform
// (windows) that doesn't support them.
func ErrInvalidProtocol() errors.Error {
	return ErrorInvalidProtocol.Error(nil)
}

// ErrInvalidTLSConfig is returned when TLS is requested over a non-stream
// protocol, or enabled on a Client without a serverName to verify against.
func ErrInvalidTLSConfig() errors.Error {
	return ErrorInvalidTLSConfig.Error(nil)
}

// ErrInvalidGroup is returned by Server.Validate when GroupPerm falls
// outside 0..MaxGID.
func ErrInvalidGroup() errors.Error {
	return ErrorInvalidGroup.Error(nil)
}

// ErrInvalidReusePort is returned by Server.Validate when ReusePort is
// requested on a platform whose kernel doesn't support SO_REUSEPORT.
func ErrInvalidReusePort() errors.Error {
	return ErrorInvalidReusePort.Error(fmt.Errorf("platform is %s", runtime.GOOS))
}
