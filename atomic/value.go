/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package atomic provides small type-safe wrappers over sync/atomic and
// sync.Map for the few lock-free fields this module keeps: a typed atomic
// value with configurable load/store defaults, and a typed concurrent map.
package atomic

import (
	"reflect"
	"sync/atomic"
)

// Value is a typed atomic value. Load returns the configured load default
// while nothing has been stored; Store substitutes the store default when
// given the zero value of T.
type Value[T any] interface {
	Load() T
	Store(val T)
	// Swap stores new and returns the previous value, or the load default
	// if nothing was stored yet.
	Swap(new T) (old T)
	// CompareAndSwap swaps only if the current value equals old. Zero
	// values for old or new are first replaced by the store default.
	CompareAndSwap(old, new T) bool

	SetDefaultLoad(def T)
	SetDefaultStore(def T)
}

// box wraps every stored value so the underlying atomic.Value always holds
// one concrete type, even when T is an interface or pointer type whose
// dynamic type varies between stores.
type box[T any] struct {
	v T
}

type val[T any] struct {
	av atomic.Value // box[T]
	dl atomic.Value // box[T], default for Load
	ds atomic.Value // box[T], default for Store
}

// NewValue returns a Value whose load and store defaults are the zero
// value of T.
func NewValue[T any]() Value[T] {
	return &val[T]{}
}

// NewValueDefault returns a Value preconfigured with the given load and
// store defaults.
func NewValueDefault[T any](load, store T) Value[T] {
	v := &val[T]{}
	v.SetDefaultLoad(load)
	v.SetDefaultStore(store)
	return v
}

func (o *val[T]) SetDefaultLoad(def T)  { o.dl.Store(box[T]{v: def}) }
func (o *val[T]) SetDefaultStore(def T) { o.ds.Store(box[T]{v: def}) }

func unbox[T any](i any) (T, bool) {
	if b, ok := i.(box[T]); ok {
		return b.v, true
	}
	var zero T
	return zero, false
}

func (o *val[T]) defaultLoad() T {
	v, _ := unbox[T](o.dl.Load())
	return v
}

func (o *val[T]) defaultStore() T {
	v, _ := unbox[T](o.ds.Load())
	return v
}

// isZero reports whether v is the zero value of T, including types that
// are not comparable with ==.
func isZero[T any](v T) bool {
	rv := reflect.ValueOf(&v).Elem()
	return rv.IsZero()
}

func (o *val[T]) Load() T {
	if v, ok := unbox[T](o.av.Load()); ok {
		return v
	}
	return o.defaultLoad()
}

func (o *val[T]) Store(v T) {
	if isZero(v) {
		v = o.defaultStore()
	}
	o.av.Store(box[T]{v: v})
}

func (o *val[T]) Swap(new T) (old T) {
	if isZero(new) {
		new = o.defaultStore()
	}
	if v, ok := unbox[T](o.av.Swap(box[T]{v: new})); ok {
		return v
	}
	return o.defaultLoad()
}

func (o *val[T]) CompareAndSwap(old, new T) bool {
	if isZero(old) {
		old = o.defaultStore()
	}
	if isZero(new) {
		new = o.defaultStore()
	}
	return o.av.CompareAndSwap(box[T]{v: old}, box[T]{v: new})
}
