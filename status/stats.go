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

// Package status holds the per-worker counters and master-global registry
// exported on demand by the status and connection dump signal protocol, plus
// a Prometheus gauge mirror of the same counters.
package status

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats is the per-worker-process counter set named in the global
// statistics: connection_count, total_request, throw_exception, send_fail.
type Stats struct {
	connectionCount atomic.Int64
	totalRequest    atomic.Int64
	throwException  atomic.Int64
	sendFail        atomic.Int64
	prevTotal       atomic.Int64
}

func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) IncConnection()  { s.connectionCount.Add(1) }
func (s *Stats) DecConnection()  { s.connectionCount.Add(-1) }
func (s *Stats) IncRequest()     { s.totalRequest.Add(1) }
func (s *Stats) IncException()   { s.throwException.Add(1) }
func (s *Stats) IncSendFail()    { s.sendFail.Add(1) }

func (s *Stats) ConnectionCount() int64 { return s.connectionCount.Load() }
func (s *Stats) TotalRequest() int64    { return s.totalRequest.Load() }
func (s *Stats) ThrowException() int64  { return s.throwException.Load() }
func (s *Stats) SendFail() int64        { return s.sendFail.Load() }

// QPS returns total_request - previous_total_request and advances the
// baseline, matching the status dump's QPS column definition.
func (s *Stats) QPS() int64 {
	cur := s.totalRequest.Load()
	prev := s.prevTotal.Swap(cur)
	return cur - prev
}

// Registry is the master's global bookkeeping: start_timestamp and, per
// listener, a histogram of worker exit statuses.
type Registry struct {
	mu        sync.RWMutex
	start     time.Time
	histogram map[string]map[int]int64
}

func NewRegistry() *Registry {
	return &Registry{
		start:     time.Now(),
		histogram: make(map[string]map[int]int64),
	}
}

func (r *Registry) StartTimestamp() time.Time {
	return r.start
}

func (r *Registry) Uptime() time.Duration {
	return time.Since(r.start)
}

func (r *Registry) RecordExit(listenerID string, exitStatus int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.histogram[listenerID]
	if !ok {
		h = make(map[int]int64)
		r.histogram[listenerID] = h
	}
	h[exitStatus]++
}

func (r *Registry) Histogram(listenerID string) map[int]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[int]int64, len(r.histogram[listenerID]))
	for k, v := range r.histogram[listenerID] {
		out[k] = v
	}
	return out
}

func (r *Registry) Listeners() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.histogram))
	for k := range r.histogram {
		out = append(out, k)
	}
	return out
}
