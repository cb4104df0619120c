// Package observable provides live values that notify registered listeners when they change.
//
// Set delivers on the calling goroutine. Post stores the value immediately and hands delivery to an
// Executor, so a background caller can publish while listeners run on a single dispatch goroutine.
package observable

import (
	"sync"
)

// Listener receives a value each time it changes
type Listener[T any] func(T)

// Executor runs notification work
type Executor interface {
	Execute(fn func())
}

// ExecutorFunc adapts a function to Executor
type ExecutorFunc func(fn func())

// Execute implements Executor
func (f ExecutorFunc) Execute(fn func()) { f(fn) }

// Immediate runs notifications inline; use it in tests to make Post synchronous
var Immediate Executor = ExecutorFunc(func(fn func()) { fn() })

// Value is an observable holder for a single value
type Value[T any] struct {
	mu        sync.RWMutex
	value     T
	hasValue  bool
	version   int
	listeners map[int]Listener[T]
	nextID    int
	executor  Executor
}

// NewValue creates an empty value that posts through executor. A nil executor means Immediate.
func NewValue[T any](executor Executor) *Value[T] {
	if executor == nil {
		executor = Immediate
	}
	return &Value[T]{
		listeners: make(map[int]Listener[T]),
		executor:  executor,
	}
}

// Get returns the current value and whether one has been published
func (v *Value[T]) Get() (T, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value, v.hasValue
}

// Version counts how many times a value has been published
func (v *Value[T]) Version() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.version
}

// Set stores the value and notifies listeners on the caller's goroutine
func (v *Value[T]) Set(value T) {
	listeners := v.store(value)
	for _, l := range listeners {
		l(value)
	}
}

// Post stores the value and schedules notification on the executor
func (v *Value[T]) Post(value T) {
	listeners := v.store(value)
	if len(listeners) == 0 {
		return
	}
	v.executor.Execute(func() {
		for _, l := range listeners {
			l(value)
		}
	})
}

// Observe registers a listener. If a value is already present it is replayed immediately.
// The returned function removes the listener.
func (v *Value[T]) Observe(listener Listener[T]) func() {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.listeners[id] = listener
	current, has := v.value, v.hasValue
	v.mu.Unlock()

	if has {
		listener(current)
	}

	return func() {
		v.mu.Lock()
		delete(v.listeners, id)
		v.mu.Unlock()
	}
}

// ObserverCount returns the number of registered listeners
func (v *Value[T]) ObserverCount() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.listeners)
}

func (v *Value[T]) store(value T) []Listener[T] {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.value = value
	v.hasValue = true
	v.version++

	// registration order
	listeners := make([]Listener[T], 0, len(v.listeners))
	for id := 0; id < v.nextID; id++ {
		if l, ok := v.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	return listeners
}
