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
	"sync"

	"github.com/sirupsen/logrus"
)

type logger struct {
	mu  sync.Mutex
	pid int
	log *logrus.Logger
	fld Fields
	fh  *fileHook
}

func (l *logger) SetLevel(lvl Level) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.log.SetLevel(lvl.logrus())
}

func (l *logger) SetFields(f Fields) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	m := make(Fields, len(l.fld)+len(f))
	for k, v := range l.fld {
		m[k] = v
	}
	for k, v := range f {
		m[k] = v
	}

	n := &logger{pid: l.pid, log: l.log, fld: m, fh: l.fh}
	return n
}

func (l *logger) entry(f ...Fields) *logrus.Entry {
	m := make(logrus.Fields, len(l.fld))
	for k, v := range l.fld {
		m[k] = v
	}
	for _, ff := range f {
		for k, v := range ff {
			m[k] = v
		}
	}
	m["pid"] = l.pid

	return l.log.WithFields(m)
}

func (l *logger) Debug(msg string, f ...Fields) { l.entry(f...).Debug(msg) }
func (l *logger) Info(msg string, f ...Fields)  { l.entry(f...).Info(msg) }
func (l *logger) Warn(msg string, f ...Fields)  { l.entry(f...).Warn(msg) }
func (l *logger) Error(msg string, f ...Fields) { l.entry(f...).Error(msg) }
func (l *logger) Fatal(msg string, f ...Fields) { l.entry(f...).Error(msg) }

func (l *logger) Write(p []byte) (n int, err error) {
	l.Info(string(p))
	return len(p), nil
}

func (l *logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fh != nil {
		return l.fh.Close()
	}
	return nil
}

func (l *logger) AddFileHook(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	h, err := newFileHook(path, l.pid)
	if err != nil {
		return err
	}

	l.fh = h
	l.log.AddHook(h)
	return nil
}
