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
	"context"

	liblog "github.com/sabouaram/reactord/logger"
	libsts "github.com/sabouaram/reactord/status"

	"github.com/cloudflare/tableflip"
	"github.com/prometheus/client_golang/prometheus"
)

// RunAll is the master entry point: write the pid file, bind
// every listener with its Count workers, install the signal table, signal
// readiness to an upgrading parent (if any), then block until a stop
// signal (or ctx cancellation) asks it to wind down.
func (s *Supervisor) RunAll(ctx context.Context) error {
	if err := s.writePIDFile(); err != nil {
		return err
	}
	defer s.removePIDFile()

	upg, err := s.upgrader()
	if err != nil {
		return ErrorUpgraderFailed.Error(err)
	}
	s.upg = upg
	defer upg.Stop()

	for idx := range s.listeners {
		spec := s.listeners[idx]
		for n := 0; n < spec.Count; n++ {
			if _, err := s.spawnWorker(ctx, idx); err != nil {
				return err
			}
		}
	}

	s.installSignals(ctx)
	s.registerMetrics()

	if err := upg.Ready(); err != nil {
		return ErrorUpgraderReadyFailed.Error(err)
	}
	s.opts.Logger.Info("reactord master ready", nil)

	select {
	case <-upg.Exit():
	case <-ctx.Done():
	case <-s.sigCh:
	}

	return s.StopAll(context.Background(), true)
}

// registerMetrics publishes the per-worker counters as Prometheus gauges
// next to the plaintext status-file protocol. Re-running after a previous
// master in the same process is tolerated (AlreadyRegisteredError).
func (s *Supervisor) registerMetrics() {
	exp := libsts.NewExporter("reactord", s.reg, func() []libsts.WorkerSource {
		var out []libsts.WorkerSource
		for _, w := range s.workers.all() {
			out = append(out, libsts.WorkerSource{
				Listener: w.spec.Config.Name,
				Stats:    w.stats,
			})
		}
		return out
	})

	if err := prometheus.Register(exp); err != nil {
		s.opts.Logger.Debug("metrics exporter not registered", liblog.Fields{"error": err.Error()})
	}
}

// upgrader returns the configured tableflip.Upgrader, constructing the
// default one (keyed off opts.PIDFile) the first time it's needed.
func (s *Supervisor) upgrader() (*tableflip.Upgrader, error) {
	if s.opts.Upgrader != nil {
		return s.opts.Upgrader, nil
	}
	return tableflip.New(tableflip.Options{PIDFile: s.opts.PIDFile})
}

// StopAll stops every running worker. An ungraceful stop destroys live
// connections outright and escalates each worker through StopTimeout; a
// graceful one stops accepting, waits for every connection to finish with
// no deadline of its own, then stops the worker.
func (s *Supervisor) StopAll(ctx context.Context, graceful bool) error {
	workers := s.workers.all()

	for _, w := range workers {
		w.ln.PauseAccept()
	}

	for _, w := range workers {
		if graceful {
			w.ln.DrainConnections(ctx)
		} else {
			w.ln.DestroyConnections()
		}
		w.stop(ctx, 0, graceful)
	}

	if s.opts.OnMasterStop != nil {
		_ = s.opts.OnMasterStop(ctx)
	}
	return nil
}
