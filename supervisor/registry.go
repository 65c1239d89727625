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

import "sync"

// workerID is the synthetic stand-in for a worker pid: since
// a "worker" here is a goroutine-reactor rather than a forked process,
// bookkeeping by a sequential id plays the same role classic
// listener-to-pid / pid-to-listener tables play, without pretending a
// goroutine has a kernel pid.
type workerID uint64

// workerTable is the master's listener->worker and worker->listener
// bookkeeping, plus the set of workers a rolling reload still owes a
// restart to. One table instance is shared by the whole Supervisor.
type workerTable struct {
	mu sync.Mutex

	next workerID

	// byListener[i] lists the live worker ids accepting on listeners[i].
	byListener map[int][]workerID
	// owner maps a worker id back to its listener index, the reverse
	// lookup for "which listener did this worker belong to".
	owner map[workerID]int
	// workers holds the live *worker for each id still running.
	workers map[workerID]*worker

	// pidsToRestart is the rolling-reload queue: worker ids still owed a
	// restart, drained one at a time.
	pidsToRestart []workerID
}

func newWorkerTable() *workerTable {
	return &workerTable{
		byListener: make(map[int][]workerID),
		owner:      make(map[workerID]int),
		workers:    make(map[workerID]*worker),
	}
}

func (t *workerTable) add(listenerIdx int, w *worker) workerID {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	id := t.next
	w.id = id

	t.byListener[listenerIdx] = append(t.byListener[listenerIdx], id)
	t.owner[id] = listenerIdx
	t.workers[id] = w
	return id
}

func (t *workerTable) remove(id workerID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, ok := t.owner[id]
	if !ok {
		return
	}
	delete(t.owner, id)
	delete(t.workers, id)

	ids := t.byListener[idx]
	for i, v := range ids {
		if v == id {
			t.byListener[idx] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
}

func (t *workerTable) get(id workerID) (*worker, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.workers[id]
	return w, ok
}

func (t *workerTable) listenerOf(id workerID) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx, ok := t.owner[id]
	return idx, ok
}

func (t *workerTable) idsForListener(idx int) []workerID {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]workerID, len(t.byListener[idx]))
	copy(out, t.byListener[idx])
	return out
}

func (t *workerTable) all() []*worker {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*worker, 0, len(t.workers))
	for _, w := range t.workers {
		out = append(out, w)
	}
	return out
}

// queueRestart appends ids to the rolling-reload queue, skipping any
// already queued.
func (t *workerTable) queueRestart(ids ...workerID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range ids {
		queued := false
		for _, q := range t.pidsToRestart {
			if q == id {
				queued = true
				break
			}
		}
		if !queued {
			t.pidsToRestart = append(t.pidsToRestart, id)
		}
	}
}

// popRestart removes and returns the next worker id owed a restart, for
// the rolling (one-at-a-time) reload loop.
func (t *workerTable) popRestart() (workerID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.pidsToRestart) == 0 {
		return 0, false
	}
	id := t.pidsToRestart[0]
	t.pidsToRestart = t.pidsToRestart[1:]
	return id, true
}
