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
	"bytes"
	"fmt"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// lineFormat renders the persisted format shared by the console and file
// hooks: "YYYY-MM-DD HH:MM:SS pid:<pid> <message>".
func lineFormat(e *logrus.Entry, pid int) string {
	return fmt.Sprintf("%s pid:%d %s", e.Time.Format("2006-01-02 15:04:05"), pid, e.Message)
}

type consoleFormatter struct {
	pid      int
	NoColor  bool
}

func (f *consoleFormatter) Format(e *logrus.Entry) ([]byte, error) {
	line := lineFormat(e, f.pid)

	if !f.NoColor {
		switch e.Level {
		case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
			line = color.RedString(line)
		case logrus.WarnLevel:
			line = color.YellowString(line)
		case logrus.DebugLevel:
			line = color.HiBlackString(line)
		}
	}

	buf := bytes.NewBufferString(line)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
