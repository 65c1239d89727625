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

package status_test

import (
	"bytes"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/sabouaram/reactord/status"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Stats", func() {
	It("tracks the four worker counters independently", func() {
		s := NewStats()
		s.IncConnection()
		s.IncConnection()
		s.DecConnection()
		s.IncRequest()
		s.IncException()
		s.IncSendFail()

		Expect(s.ConnectionCount()).To(Equal(int64(1)))
		Expect(s.TotalRequest()).To(Equal(int64(1)))
		Expect(s.ThrowException()).To(Equal(int64(1)))
		Expect(s.SendFail()).To(Equal(int64(1)))
	})

	It("computes QPS as the request delta since the previous sample", func() {
		s := NewStats()
		for i := 0; i < 5; i++ {
			s.IncRequest()
		}
		Expect(s.QPS()).To(Equal(int64(5)))

		s.IncRequest()
		s.IncRequest()
		Expect(s.QPS()).To(Equal(int64(2)))
		Expect(s.QPS()).To(BeZero())
	})

	It("is safe under concurrent increments", func() {
		s := NewStats()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.IncRequest()
				s.IncConnection()
			}()
		}
		wg.Wait()
		Expect(s.TotalRequest()).To(Equal(int64(50)))
		Expect(s.ConnectionCount()).To(Equal(int64(50)))
	})
})

var _ = Describe("Registry", func() {
	It("accumulates a per-listener exit-status histogram", func() {
		r := NewRegistry()
		r.RecordExit("api", 0)
		r.RecordExit("api", 0)
		r.RecordExit("api", 250)
		r.RecordExit("ws", 0)

		Expect(r.Histogram("api")).To(Equal(map[int]int64{0: 2, 250: 1}))
		Expect(r.Histogram("ws")).To(Equal(map[int]int64{0: 1}))
		Expect(r.Listeners()).To(ConsistOf("api", "ws"))
	})

	It("reports a monotonically growing uptime", func() {
		r := NewRegistry()
		Expect(r.Uptime()).To(BeNumerically(">=", 0))
		Expect(r.StartTimestamp()).To(BeTemporally("<=", time.Now()))
	})
})

var _ = Describe("dump writers", func() {
	It("writes the header block with version, uptime and histogram", func() {
		var b bytes.Buffer
		reg := NewRegistry()
		reg.RecordExit("api", 250)

		err := WriteHeader(&b, "1.2.3", "epoll", 90*time.Second, [3]float64{0.1, 0.2, 0.3}, 1, 2, reg)
		Expect(err).ToNot(HaveOccurred())

		out := b.String()
		Expect(out).To(ContainSubstring("reactord 1.2.3"))
		Expect(out).To(ContainSubstring("uptime: 1m30s"))
		Expect(out).To(ContainSubstring("event-loop: epoll"))
		Expect(out).To(ContainSubstring("listeners: 1   processes: 2"))
		Expect(out).To(ContainSubstring("exit-status[api]: 250=1"))
		Expect(out).To(ContainSubstring("PROCESS STATUS"))
	})

	It("writes one process row per worker", func() {
		var b bytes.Buffer
		err := WriteProcessRow(&b, ProcessRow{
			PID:          42,
			Listening:    "tcp://0.0.0.0:9000",
			ServerName:   "api",
			Connections:  3,
			TotalRequest: 17,
			QPS:          5,
			Status:       "idle",
		})
		Expect(err).ToNot(HaveOccurred())

		out := b.String()
		Expect(out).To(ContainSubstring("42"))
		Expect(out).To(ContainSubstring("tcp://0.0.0.0:9000"))
		Expect(out).To(ContainSubstring("api"))
	})

	It("writes the fixed connection dump header", func() {
		var b bytes.Buffer
		Expect(WriteConnectionHeader(&b)).To(Succeed())
		Expect(strings.TrimSpace(b.String())).To(Equal(
			"PID Server CID Trans Protocol ipv4 ipv6 Recv-Q Send-Q Bytes-R Bytes-W Status Local Foreign"))
	})
})

var _ = Describe("Exporter", func() {
	It("collects one gauge set per worker source", func() {
		s := NewStats()
		s.IncConnection()
		s.IncRequest()

		reg := NewRegistry()
		exp := NewExporter("reactord_test", reg, func() []WorkerSource {
			return []WorkerSource{{Listener: "api", Stats: s}}
		})

		ch := make(chan prometheus.Metric, 16)
		exp.Collect(ch)
		close(ch)

		var n int
		for range ch {
			n++
		}
		// uptime + 4 per-worker gauges
		Expect(n).To(Equal(5))
	})

	It("describes a stable descriptor set", func() {
		exp := NewExporter("reactord_test", nil, nil)
		ch := make(chan *prometheus.Desc, 16)
		exp.Describe(ch)
		close(ch)

		var n int
		for range ch {
			n++
		}
		Expect(n).To(Equal(5))
	})
})
