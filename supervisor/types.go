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

// Package supervisor is the master: it owns the listener set, spawns and
// replaces their workers, answers the POSIX control signals
// (start/stop/reload/status/connections), and drives the zero-downtime
// binary upgrade through a real OS-process handoff.
//
// A worker is realized here as a goroutine-reactor; the one thing that is
// never virtualized is the master's own OS pid, which is what a separate
// `reactord stop`/`reactord reload` CLI invocation signals through the
// pid file.
package supervisor

import (
	"context"
	"sync"
	"time"

	libatm "github.com/sabouaram/reactord/atomic"
	libcon "github.com/sabouaram/reactord/connection"
	liblist "github.com/sabouaram/reactord/listener"
	liblog "github.com/sabouaram/reactord/logger"
	libsts "github.com/sabouaram/reactord/status"
	libver "github.com/sabouaram/reactord/version"

	"github.com/cloudflare/tableflip"
)

// ListenerSpec is one entry of the listener set a Supervisor runs, the
// declarative counterpart of the master's first startup step: bind every
// configured listener.
type ListenerSpec struct {
	// Config is parsed into a listener.Listener at Run time.
	Config liblist.Config
	// Callbacks are the per-connection hooks this listener's accepted
	// connections are wired with.
	Callbacks libcon.Callbacks
	// Count is how many goroutine-workers accept on this listener
	// concurrently.
	Count int
	// Reloadable marks whether `reload`/`restart` recycle this listener's
	// workers; a listener with Reloadable=false is started once and left
	// alone across reload cycles.
	Reloadable bool

	// OnServerStart runs once per worker right after the listener starts
	// accepting. A panic/error here stops the worker with exit code 250,
	// with no retry within the same process.
	OnServerStart func(ctx context.Context) error
	// OnServerStop runs once per worker during a graceful or ungraceful
	// stop, after the listener has been closed to new connections.
	OnServerStop func(ctx context.Context) error
	// OnServerReload runs once per worker right before a reload recycles
	// it, while the old worker is still serving.
	OnServerReload func(ctx context.Context) error
}

// Options configures a Supervisor's ambient concerns: everything that
// isn't a listener.
type Options struct {
	Version     libver.Version
	Logger      liblog.Logger
	PIDFile     string
	StopTimeout time.Duration

	// StatusFile/ConnectionsFile are the shared files SIGIOT/SIGIO dump
	// into: the master truncates the file, workers append
	// their row, and a separate `status`/`connections` CLI invocation
	// reads it back after signaling. Empty defaults to PIDFile suffixed
	// with ".status"/".connections".
	StatusFile      string
	ConnectionsFile string

	// Upgrader backs the real OS-process handoff on `reload`/SIGHUP. A
	// caller normally leaves this nil and lets New construct one from
	// tableflip.Options{PIDFile: PIDFile}; tests inject a fake.
	Upgrader *tableflip.Upgrader

	// OnServerExit runs after each worker has fully stopped, whatever the
	// reason (stop, reload recycle, crash).
	OnServerExit func(ctx context.Context) error
	// OnMasterReload runs once per reload request, before the first
	// worker is recycled.
	OnMasterReload func(ctx context.Context) error
	// OnMasterStop runs once StopAll has wound every worker down.
	OnMasterStop func(ctx context.Context) error
}

// Supervisor is the master.
type Supervisor struct {
	opts Options
	reg  *libsts.Registry
	// eventLoopName is set once by the first spawnWorker call and read
	// concurrently by the status dump; an atomic.Value spares every other
	// read-only field a lock it doesn't need.
	eventLoopName libatm.Value[string]

	mu        sync.RWMutex
	listeners []*ListenerSpec
	workers   *workerTable

	upg *tableflip.Upgrader

	sigCh chan struct{}
}

// New builds a Supervisor over specs. Run starts accepting; until then the
// Supervisor only validates its listener set.
func New(opts Options, specs ...ListenerSpec) (*Supervisor, error) {
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = liblog.New(0)
	}
	if opts.StatusFile == "" && opts.PIDFile != "" {
		opts.StatusFile = opts.PIDFile + ".status"
	}
	if opts.ConnectionsFile == "" && opts.PIDFile != "" {
		opts.ConnectionsFile = opts.PIDFile + ".connections"
	}

	out := make([]*ListenerSpec, 0, len(specs))
	for i := range specs {
		s := specs[i]
		if s.Count <= 0 {
			s.Count = 1
		}
		if err := s.Config.Validate(); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}

	return &Supervisor{
		opts:          opts,
		reg:           libsts.NewRegistry(),
		eventLoopName: libatm.NewValue[string](),
		listeners:     out,
		workers:       newWorkerTable(),
	}, nil
}
