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

package reactor

import (
	"container/heap"
	"time"
)

// timerEntry is one delay/repeat registration. seq breaks ties so that
// timers with the same deadline fire in registration order.
type timerEntry struct {
	id         TimerID
	next       time.Time
	interval   time.Duration
	persistent bool
	fn         TimerFn
	args       any
	seq        int64
	canceled   bool
	index      int
}

// TimerHeap is a priority-queue scheduler shared by the fallback and
// native drivers: a min-heap on (next, seq).
type TimerHeap []*timerEntry

func (h TimerHeap) Len() int { return len(h) }

func (h TimerHeap) Less(i, j int) bool {
	if h[i].next.Equal(h[j].next) {
		return h[i].seq < h[j].seq
	}
	return h[i].next.Before(h[j].next)
}

func (h TimerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *TimerHeap) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *TimerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Invoke runs the entry's callback. Exported so other packages in this
// module (the fallback/epoll drivers) can dispatch entries returned by
// PopDue without this package exposing the timerEntry type's fields.
func (e *timerEntry) Invoke() { e.fn(e.args) }

// Scheduler tracks heap entries by id alongside the heap itself so
// OffDelay/OffRepeat can cancel in O(log n) without a linear scan. It is
// the shared timer implementation both reactor/fallback and reactor/epoll
// build their Delay/Repeat/OffDelay/OffRepeat methods on.
type Scheduler struct {
	heap TimerHeap
	byID map[TimerID]*timerEntry
	next TimerID
	seq  int64
}

func NewScheduler() *Scheduler {
	return &Scheduler{byID: make(map[TimerID]*timerEntry)}
}

func (s *Scheduler) Schedule(d time.Duration, interval time.Duration, persistent bool, fn TimerFn, args any) TimerID {
	s.next++
	s.seq++
	e := &timerEntry{
		id:         s.next,
		next:       time.Now().Add(d),
		interval:   interval,
		persistent: persistent,
		fn:         fn,
		args:       args,
		seq:        s.seq,
	}
	heap.Push(&s.heap, e)
	s.byID[e.id] = e
	return e.id
}

func (s *Scheduler) Cancel(id TimerID) bool {
	e, ok := s.byID[id]
	if !ok || e.canceled {
		return false
	}
	e.canceled = true
	delete(s.byID, id)
	if e.index >= 0 && e.index < len(s.heap) {
		heap.Remove(&s.heap, e.index)
	}
	return true
}

func (s *Scheduler) DeleteAll() {
	s.heap = nil
	s.byID = make(map[TimerID]*timerEntry)
}

func (s *Scheduler) Count() int { return len(s.byID) }

// nextDeadline reports the next firing time, or zero+ok=false if empty.
func (s *Scheduler) NextDeadline() (time.Time, bool) {
	if len(s.heap) == 0 {
		return time.Time{}, false
	}
	return s.heap[0].next, true
}

// popDue pops and returns every entry due at or before now, rescheduling
// persistent ones at (now_of_fire + interval) so an overrun firing never
// causes a skip.
func (s *Scheduler) PopDue(now time.Time) []*timerEntry {
	var due []*timerEntry
	for len(s.heap) > 0 && !s.heap[0].next.After(now) {
		e := heap.Pop(&s.heap).(*timerEntry)
		if e.canceled {
			continue
		}
		due = append(due, e)
		if e.persistent {
			e.next = now.Add(e.interval)
			s.seq++
			e.seq = s.seq
			heap.Push(&s.heap, e)
		} else {
			delete(s.byID, e.id)
		}
	}
	return due
}
