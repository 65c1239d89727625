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
	"github.com/prometheus/client_golang/prometheus"
)

// WorkerSource names one live worker's counter set for the exporter.
type WorkerSource struct {
	Listener string
	Stats    *Stats
}

// Exporter publishes the same counters the plaintext status dump carries
// (connection_count, total_request, throw_exception, send_fail) as
// Prometheus gauges, labelled by listener. Register it on any
// prometheus.Registerer; collection reads the live Stats at scrape time.
type Exporter struct {
	sources func() []WorkerSource

	connections *prometheus.Desc
	requests    *prometheus.Desc
	exceptions  *prometheus.Desc
	sendFails   *prometheus.Desc
	uptime      *prometheus.Desc

	reg *Registry
}

// NewExporter builds an Exporter over the master Registry and a snapshot
// function returning the current worker set.
func NewExporter(namespace string, reg *Registry, sources func() []WorkerSource) *Exporter {
	lbl := []string{"listener"}

	return &Exporter{
		sources: sources,
		reg:     reg,
		connections: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "worker", "connection_count"),
			"live connections currently serviced by the worker", lbl, nil),
		requests: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "worker", "total_request"),
			"messages dispatched to onMessage since worker start", lbl, nil),
		exceptions: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "worker", "throw_exception"),
			"user-callback panics routed through an error handler", lbl, nil),
		sendFails: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "worker", "send_fail"),
			"payloads dropped on buffer overflow or a dead peer", lbl, nil),
		uptime: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "master", "uptime_seconds"),
			"seconds since the master started", nil, nil),
	}
}

func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.connections
	ch <- e.requests
	ch <- e.exceptions
	ch <- e.sendFails
	ch <- e.uptime
}

func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	if e.reg != nil {
		ch <- prometheus.MustNewConstMetric(e.uptime, prometheus.GaugeValue, e.reg.Uptime().Seconds())
	}
	if e.sources == nil {
		return
	}
	for _, src := range e.sources() {
		ch <- prometheus.MustNewConstMetric(e.connections, prometheus.GaugeValue,
			float64(src.Stats.ConnectionCount()), src.Listener)
		ch <- prometheus.MustNewConstMetric(e.requests, prometheus.GaugeValue,
			float64(src.Stats.TotalRequest()), src.Listener)
		ch <- prometheus.MustNewConstMetric(e.exceptions, prometheus.GaugeValue,
			float64(src.Stats.ThrowException()), src.Listener)
		ch <- prometheus.MustNewConstMetric(e.sendFails, prometheus.GaugeValue,
			float64(src.Stats.SendFail()), src.Listener)
	}
}
