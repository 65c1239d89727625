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
	"fmt"
	"time"

	liblist "github.com/sabouaram/reactord/listener"
	libreact "github.com/sabouaram/reactord/reactor"
	libauto "github.com/sabouaram/reactord/reactor/auto"
	librun "github.com/sabouaram/reactord/runner"
	libsts "github.com/sabouaram/reactord/status"
)

// exitUserCallback is the exit status for an unhandled
// onServerStart exception or a connection callback panic that escalated
// past the per-connection handler.
const exitUserCallback = 250

// worker is one goroutine-reactor accepting on a listener: a worker
// process realized inside a single OS process.
type worker struct {
	id          workerID
	listenerIdx int
	spec        *ListenerSpec

	ln     *liblist.Listener
	react  libreact.Reactor
	eventLoop string
	life   librun.StartStop
	stats  *libsts.Stats

	sup *Supervisor
}

// spawnWorker binds a fresh listener.Listener for specs[idx], registers it
// on a new reactor, and starts it running under life. It does not block;
// life.Start launches the reactor's Run loop in its own goroutine.
func (s *Supervisor) spawnWorker(ctx context.Context, idx int) (*worker, error) {
	spec := s.listeners[idx]
	stats := libsts.NewStats()

	ln, err := liblist.New(spec.Config, spec.Callbacks, stats)
	if err != nil {
		return nil, ErrorListenerBindFailed.Error(err)
	}

	r, loopName := libauto.New()
	if s.eventLoopName.Load() == "" {
		s.eventLoopName.Store(loopName)
	}

	w := &worker{
		listenerIdx: idx,
		spec:        spec,
		ln:          ln,
		react:       r,
		eventLoop:   loopName,
		stats:       stats,
		sup:         s,
	}

	ln.SetFatalHandler(func(err error) {
		w.stop(context.Background(), exitUserCallback, false)
	})

	w.life = librun.New(
		func(rctx context.Context) error {
			if err := ln.Serve(r); err != nil {
				return err
			}
			if spec.OnServerStart != nil {
				if err := w.runOnServerStart(rctx); err != nil {
					w.stop(context.Background(), exitUserCallback, false)
					return err
				}
			}
			// Run only returns once the reactor is stopped; tie that to
			// the runner's cancellation so Stop always unblocks this
			// goroutine instead of abandoning it mid-loop
			go func() {
				<-rctx.Done()
				r.Stop()
			}()
			return r.Run()
		},
		func(sctx context.Context) error {
			_ = ln.Close()
			if spec.OnServerStop != nil {
				return spec.OnServerStop(sctx)
			}
			return nil
		},
	)

	s.workers.add(idx, w)

	if err := w.life.Start(ctx); err != nil {
		s.workers.remove(w.id)
		return nil, err
	}

	return w, nil
}

// runOnServerStart invokes the listener's onServerStart hook, converting a
// panic into the same exit-250 error an ordinary returned error produces.
func (w *worker) runOnServerStart(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = ErrorOnServerStartPanic.Error(fmt.Errorf("%v", rec))
		}
	}()
	return w.spec.OnServerStart(ctx)
}

// stop tears the worker down and records its exit status in the registry.
// exitCode 0 means a clean stop. An ungraceful stop escalates through
// StopTimeout; a graceful one waits as long as the reactor needs.
func (w *worker) stop(ctx context.Context, exitCode int, graceful bool) {
	if exitCode == exitUserCallback {
		time.Sleep(crashRespawnDelay)
	}

	// unblock Run() first, so the runner's goroutine actually finishes
	// and its Stop wait resolves through done rather than the deadline
	w.react.Stop()

	cctx := ctx
	if !graceful {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, w.sup.opts.StopTimeout)
		defer cancel()
	}

	_ = w.life.Stop(cctx)
	w.sup.reg.RecordExit(w.spec.Config.Name, exitCode)
	w.sup.workers.remove(w.id)

	if fn := w.sup.opts.OnServerExit; fn != nil {
		_ = fn(ctx)
	}
}

// crashRespawnDelay is the restart-loop dampener slept before a worker
// that died from an onServerStart exception is allowed to exit for good,
// bounding how fast a persistently-broken listener can busy-loop restarts.
const crashRespawnDelay = time.Second
