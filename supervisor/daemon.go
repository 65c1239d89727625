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
	"os/exec"
	"syscall"
)

// Daemonize re-execs the current process detached from the controlling
// terminal (new session, stdio redirected to /dev/null) and exits the
// foreground process once the child is launched, implementing `start -d`.
// The child re-runs with args unchanged; REACTORD_DAEMONIZED guards
// against re-daemonizing itself.
func Daemonize(args []string) error {
	if os.Getenv("REACTORD_DAEMONIZED") == "1" {
		return nil
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return ErrorDaemonizeFailed.Error(err)
	}
	defer devNull.Close()

	self, err := os.Executable()
	if err != nil {
		return ErrorDaemonizeFailed.Error(err)
	}

	cmd := exec.Command(self, args...)
	cmd.Env = append(os.Environ(), "REACTORD_DAEMONIZED=1")
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return ErrorDaemonizeFailed.Error(err)
	}

	os.Exit(0)
	return nil
}
