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

import (
	"os"
	"strconv"
	"strings"
	"syscall"
)

// writePIDFile records this process's own pid, the one real OS pid a
// separate `reactord stop`/`reload`/`status`/`connections` invocation of
// the same binary signals. tableflip.New already manages this file's
// lifecycle across an upgrade when PIDFile is set on its Options, so this
// is only used when RunAll is driving the pid file itself (no Upgrader
// supplied, e.g. in tests).
func (s *Supervisor) writePIDFile() error {
	if s.opts.PIDFile == "" || s.opts.Upgrader != nil {
		return nil
	}
	return os.WriteFile(s.opts.PIDFile, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func (s *Supervisor) removePIDFile() {
	if s.opts.PIDFile == "" || s.opts.Upgrader != nil {
		return
	}
	_ = os.Remove(s.opts.PIDFile)
}

// ReadPIDFile loads the master pid a CLI invocation signals, used by the
// stop/reload/status/connections commands.
func ReadPIDFile(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, ErrorPIDFileReadFailed.Error(err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, ErrorPIDFileInvalid.Error(err)
	}
	return pid, nil
}

// SignalMaster delivers sig to the running master named by the pid file at
// path - the real inter-process half of the control signal table, sent
// from a fresh CLI invocation of the same binary.
func SignalMaster(path string, sig syscall.Signal) error {
	pid, err := ReadPIDFile(path)
	if err != nil {
		return err
	}
	if err := syscall.Kill(pid, 0); err != nil {
		return ErrorMasterNotRunning.Error(err)
	}
	return syscall.Kill(pid, sig)
}
