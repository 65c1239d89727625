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

package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
)

// fileHook appends every log entry to a single file, taking an advisory
// exclusive lock (LOCK_EX) for the duration of each write so that a master
// and its respawned workers sharing the same status/log path never
// interleave partial lines.
type fileHook struct {
	mu   sync.Mutex
	pid  int
	path string
	fh   *os.File
}

func newFileHook(path string, pid int) (*fileHook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logger: cannot create log directory: %w", err)
	}

	fh, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: cannot open log file %q: %w", path, err)
	}

	return &fileHook{pid: pid, path: path, fh: fh}, nil
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(e *logrus.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fh == nil {
		return nil
	}

	if err := syscall.Flock(int(h.fh.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("logger: cannot lock log file: %w", err)
	}
	defer func() {
		_ = syscall.Flock(int(h.fh.Fd()), syscall.LOCK_UN)
	}()

	line := lineFormat(e, h.pid) + "\n"
	_, err := h.fh.WriteString(line)
	return err
}

func (h *fileHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fh == nil {
		return nil
	}

	err := h.fh.Close()
	h.fh = nil
	return err
}
