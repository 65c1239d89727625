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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("workerTable", func() {
	var t *workerTable

	BeforeEach(func() {
		t = newWorkerTable()
	})

	It("assigns sequential, non-zero ids on add", func() {
		w1 := &worker{}
		w2 := &worker{}
		id1 := t.add(0, w1)
		id2 := t.add(0, w2)

		Expect(id1).NotTo(Equal(workerID(0)))
		Expect(id2).NotTo(Equal(id1))
		Expect(w1.id).To(Equal(id1))
		Expect(w2.id).To(Equal(id2))
	})

	It("retrieves a worker and its owning listener after add", func() {
		w := &worker{}
		id := t.add(3, w)

		got, ok := t.get(id)
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(w))

		idx, ok := t.listenerOf(id)
		Expect(ok).To(BeTrue())
		Expect(idx).To(Equal(3))
	})

	It("lists every id registered against a listener index", func() {
		id1 := t.add(1, &worker{})
		id2 := t.add(1, &worker{})
		t.add(2, &worker{})

		ids := t.idsForListener(1)
		Expect(ids).To(ConsistOf(id1, id2))
		Expect(t.idsForListener(1)).To(HaveLen(2))
	})

	It("forgets a worker on remove, without disturbing its listener siblings", func() {
		id1 := t.add(0, &worker{})
		id2 := t.add(0, &worker{})

		t.remove(id1)

		_, ok := t.get(id1)
		Expect(ok).To(BeFalse())
		_, ok = t.listenerOf(id1)
		Expect(ok).To(BeFalse())

		Expect(t.idsForListener(0)).To(ConsistOf(id2))
	})

	It("tolerates removing an id it never saw", func() {
		Expect(func() { t.remove(workerID(999)) }).NotTo(Panic())
	})

	It("returns every live worker from all", func() {
		w1 := &worker{}
		w2 := &worker{}
		t.add(0, w1)
		t.add(1, w2)

		Expect(t.all()).To(ConsistOf(w1, w2))

		t.remove(w1.id)
		Expect(t.all()).To(ConsistOf(w2))
	})

	Describe("the rolling-reload queue", func() {
		It("drains ids first-in-first-out", func() {
			t.queueRestart(workerID(1), workerID(2), workerID(3))

			id, ok := t.popRestart()
			Expect(ok).To(BeTrue())
			Expect(id).To(Equal(workerID(1)))

			id, ok = t.popRestart()
			Expect(ok).To(BeTrue())
			Expect(id).To(Equal(workerID(2)))

			id, ok = t.popRestart()
			Expect(ok).To(BeTrue())
			Expect(id).To(Equal(workerID(3)))

			_, ok = t.popRestart()
			Expect(ok).To(BeFalse())
		})

		It("dedups an id already queued", func() {
			t.queueRestart(workerID(1))
			t.queueRestart(workerID(1), workerID(2))

			var drained []workerID
			for {
				id, ok := t.popRestart()
				if !ok {
					break
				}
				drained = append(drained, id)
			}

			Expect(drained).To(Equal([]workerID{workerID(1), workerID(2)}))
		})

		It("reports empty on an empty queue", func() {
			_, ok := t.popRestart()
			Expect(ok).To(BeFalse())
		})
	})
})
