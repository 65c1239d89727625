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

import "context"

// ReloadAll replaces every Reloadable listener's workers one at a time:
// each worker is stopped, then immediately replaced by a freshly spawned
// one, before the next worker in the queue is touched. graceful mirrors
// StopAll's meaning per worker.
func (s *Supervisor) ReloadAll(ctx context.Context, graceful bool) error {
	if s.opts.OnMasterReload != nil {
		_ = s.opts.OnMasterReload(ctx)
	}

	var ids []workerID
	for idx, spec := range s.listeners {
		if !spec.Reloadable {
			continue
		}
		ids = append(ids, s.workers.idsForListener(idx)...)
	}
	s.workers.queueRestart(ids...)

	for {
		id, ok := s.workers.popRestart()
		if !ok {
			return nil
		}
		if err := s.reloadOne(ctx, id, graceful); err != nil {
			return err
		}
	}
}

// reloadOne stops worker id and spawns its replacement on the same
// listener, preserving the listener's configured Count across the cycle.
// The listener's onServerReload hook fires first, while the old worker is
// still serving; a graceful recycle then drains in-flight connections
// before the old worker goes away.
func (s *Supervisor) reloadOne(ctx context.Context, id workerID, graceful bool) error {
	w, ok := s.workers.get(id)
	if !ok {
		return nil
	}

	if w.spec.OnServerReload != nil {
		_ = w.spec.OnServerReload(ctx)
	}

	w.ln.PauseAccept()
	if graceful {
		w.ln.DrainConnections(ctx)
	} else {
		w.ln.DestroyConnections()
	}
	w.stop(ctx, 0, graceful)

	_, err := s.spawnWorker(ctx, w.listenerIdx)
	return err
}
