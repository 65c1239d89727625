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
	"io"
	"net"
	"os"
	"strings"

	libsize "github.com/sabouaram/reactord/size"
	libsts "github.com/sabouaram/reactord/status"

	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/process"
)

// writeStatusDump answers SIGIOT: the master's header block followed by
// one PROCESS STATUS row per live worker.
func (s *Supervisor) writeStatusDump(w io.Writer) error {
	pid := os.Getpid()
	avg := loadAvg()

	s.mu.RLock()
	listenerCount := len(s.listeners)
	s.mu.RUnlock()
	loop := s.eventLoopName.Load()
	workers := s.workers.all()
	processCount := len(workers)

	ver := "dev"
	if s.opts.Version != nil {
		ver = s.opts.Version.GetRelease()
	}

	if err := libsts.WriteHeader(w, ver, loop, s.reg.Uptime(), avg, listenerCount, processCount, s.reg); err != nil {
		return err
	}

	mem := processMemory(pid)
	for _, wk := range workers {
		row := libsts.ProcessRow{
			PID:          pid,
			Memory:       mem,
			Listening:    wk.ln.Address(),
			ServerName:   wk.spec.Config.Name,
			Connections:  wk.stats.ConnectionCount(),
			SendFail:     wk.stats.SendFail(),
			Timers:       wk.react.GetTimerCount(),
			TotalRequest: wk.stats.TotalRequest(),
			QPS:          wk.stats.QPS(),
			Status:       "running",
		}
		if err := libsts.WriteProcessRow(w, row); err != nil {
			return err
		}
	}
	return nil
}

// writeConnectionDump answers SIGIO: the connection dump header followed
// by one row per live connection across every worker.
func (s *Supervisor) writeConnectionDump(w io.Writer) error {
	if err := libsts.WriteConnectionHeader(w); err != nil {
		return err
	}

	pid := os.Getpid()
	for _, wk := range s.workers.all() {
		for _, c := range wk.ln.Connections() {
			ipv4, ipv6 := "", ""
			if h, _, err := net.SplitHostPort(c.RemoteAddr().String()); err == nil {
				if strings.Contains(h, ":") {
					ipv6 = h
				} else {
					ipv4 = h
				}
			}

			row := libsts.ConnectionRow{
				PID:      pid,
				Server:   wk.spec.Config.Name,
				CID:      c.ID(),
				Trans:    wk.spec.Config.Listen,
				Protocol: c.Transport().String(),
				IPv4:     ipv4,
				IPv6:     ipv6,
				RecvQ:    0,
				SendQ:    c.SendBufferLen(),
				BytesR:   libsize.Size(c.BytesRead()),
				BytesW:   libsize.Size(c.BytesWritten()),
				Status:   c.Status().String(),
				Local:    c.LocalAddr().String(),
				Foreign:  c.RemoteAddr().String(),
			}
			if err := libsts.WriteConnectionRow(w, row); err != nil {
				return err
			}
		}
	}
	return nil
}

// dumpStatusToFile truncates opts.StatusFile and writes a fresh status
// dump into it, the on-disk half of the SIGIOT protocol: the
// master truncates before any worker appends, so a concurrent reader
// never sees a mix of two dumps.
func (s *Supervisor) dumpStatusToFile() error {
	if s.opts.StatusFile == "" {
		return s.writeStatusDump(os.Stdout)
	}
	f, err := os.OpenFile(s.opts.StatusFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.writeStatusDump(f)
}

// dumpConnectionsToFile is the SIGIO counterpart of dumpStatusToFile.
func (s *Supervisor) dumpConnectionsToFile() error {
	if s.opts.ConnectionsFile == "" {
		return s.writeConnectionDump(os.Stdout)
	}
	f, err := os.OpenFile(s.opts.ConnectionsFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.writeConnectionDump(f)
}

// loadAvg reports the 1/5/15-minute system load average, zeroed out on a
// platform gopsutil can't read it from (e.g. no /proc).
func loadAvg() [3]float64 {
	a, err := load.Avg()
	if err != nil {
		return [3]float64{}
	}
	return [3]float64{a.Load1, a.Load5, a.Load15}
}

// processMemory reports pid's resident set size, zero if it can't be read.
func processMemory(pid int) libsize.Size {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return 0
	}
	mi, err := p.MemoryInfo()
	if err != nil || mi == nil {
		return 0
	}
	return libsize.Size(mi.RSS)
}
