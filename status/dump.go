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

package status

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/sabouaram/reactord/size"
)

// ProcessRow is one line of the PROCESS STATUS table written by a worker in
// response to SIGIOT.
type ProcessRow struct {
	PID          int
	Memory       size.Size
	Listening    string
	ServerName   string
	Connections  int64
	SendFail     int64
	Timers       int
	TotalRequest int64
	QPS          int64
	Status       string
}

// WriteHeader writes the master's header block: version, uptime, loadavg,
// event-loop name, listener count, process count, and the per-listener
// exit-status histogram.
func WriteHeader(w io.Writer, version, eventLoop string, uptime time.Duration, loadavg [3]float64, listenerCount, processCount int, reg *Registry) error {
	if _, err := fmt.Fprintf(w, "reactord %s\n", version); err != nil {
		return ErrorDumpWriteFailed.Error(err)
	}
	if _, err := fmt.Fprintf(w, "uptime: %s\n", uptime.Round(time.Second)); err != nil {
		return ErrorDumpWriteFailed.Error(err)
	}
	if _, err := fmt.Fprintf(w, "load average: %.2f %.2f %.2f\n", loadavg[0], loadavg[1], loadavg[2]); err != nil {
		return ErrorDumpWriteFailed.Error(err)
	}
	if _, err := fmt.Fprintf(w, "event-loop: %s\n", eventLoop); err != nil {
		return ErrorDumpWriteFailed.Error(err)
	}
	if _, err := fmt.Fprintf(w, "listeners: %d   processes: %d\n", listenerCount, processCount); err != nil {
		return ErrorDumpWriteFailed.Error(err)
	}

	if reg != nil {
		for _, id := range reg.Listeners() {
			h := reg.Histogram(id)
			if len(h) == 0 {
				continue
			}
			if _, err := fmt.Fprintf(w, "exit-status[%s]:", id); err != nil {
				return ErrorDumpWriteFailed.Error(err)
			}
			for code, count := range h {
				if _, err := fmt.Fprintf(w, " %d=%d", code, count); err != nil {
					return ErrorDumpWriteFailed.Error(err)
				}
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return ErrorDumpWriteFailed.Error(err)
			}
		}
	}

	if _, err := fmt.Fprintln(w, "PROCESS STATUS"); err != nil {
		return ErrorDumpWriteFailed.Error(err)
	}
	return nil
}

// WriteProcessRow appends one worker's row to the status dump in response
// to SIGIOT, using the exact column set from the status dump format.
func WriteProcessRow(w io.Writer, r ProcessRow) error {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	_, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
		r.PID, r.Memory, r.Listening, r.ServerName, r.Connections, r.SendFail, r.Timers, r.TotalRequest, r.QPS, r.Status)
	if err != nil {
		return ErrorDumpWriteFailed.Error(err)
	}
	if err := tw.Flush(); err != nil {
		return ErrorDumpWriteFailed.Error(err)
	}
	return nil
}

// ConnectionRow is one line of the connection dump, per live TCP
// connection per worker.
type ConnectionRow struct {
	PID      int
	Server   string
	CID      uint64
	Trans    string
	Protocol string
	IPv4     string
	IPv6     string
	RecvQ    int
	SendQ    int
	BytesR   size.Size
	BytesW   size.Size
	Status   string
	Local    string
	Foreign  string
}

// WriteConnectionHeader writes the connection dump's fixed header line.
func WriteConnectionHeader(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "PID Server CID Trans Protocol ipv4 ipv6 Recv-Q Send-Q Bytes-R Bytes-W Status Local Foreign"); err != nil {
		return ErrorDumpWriteFailed.Error(err)
	}
	return nil
}

func WriteConnectionRow(w io.Writer, r ConnectionRow) error {
	if _, err := fmt.Fprintf(w, "%d %s %d %s %s %s %s %d %d %s %s %s %s %s\n",
		r.PID, r.Server, r.CID, r.Trans, r.Protocol, r.IPv4, r.IPv6, r.RecvQ, r.SendQ, r.BytesR, r.BytesW, r.Status, r.Local, r.Foreign); err != nil {
		return ErrorDumpWriteFailed.Error(err)
	}
	return nil
}
