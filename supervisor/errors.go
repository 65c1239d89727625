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

package supervisor

import "github.com/sabouaram/reactord/errors"

const (
	ErrorDaemonizeFailed errors.CodeError = iota + errors.MinPkgSupervisor
	ErrorUpgraderFailed
	ErrorUpgraderReadyFailed
	ErrorPIDFileReadFailed
	ErrorPIDFileInvalid
	ErrorMasterNotRunning
	ErrorListenerBindFailed
	ErrorOnServerStartPanic
	ErrorDumpReadFailed
	ErrorDumpWriteFailed
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorDaemonizeFailed)
	errors.RegisterIdFctMessage(ErrorDaemonizeFailed, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorDaemonizeFailed:
		return "supervisor: daemonize failed"
	case ErrorUpgraderFailed:
		return "supervisor: tableflip upgrader init failed"
	case ErrorUpgraderReadyFailed:
		return "supervisor: tableflip ready signal failed"
	case ErrorPIDFileReadFailed:
		return "supervisor: read pid file failed"
	case ErrorPIDFileInvalid:
		return "supervisor: pid file does not contain a pid"
	case ErrorMasterNotRunning:
		return "supervisor: master pid is not running"
	case ErrorListenerBindFailed:
		return "supervisor: bind listener failed"
	case ErrorOnServerStartPanic:
		return "supervisor: onServerStart panicked"
	case ErrorDumpReadFailed:
		return "supervisor: read dump file failed"
	case ErrorDumpWriteFailed:
		return "supervisor: write dump output failed"
	}

	return ""
}
