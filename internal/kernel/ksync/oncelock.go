package ksync

import (
	"fmt"
	"sync/atomic"
)

// OnceLock is a write-once cell with a lock-free happy-path read, for
// boot-time singletons that refuse reinitialization.
type OnceLock[T any] struct {
	value atomic.Pointer[T]
}

// Set installs value. It returns an error if the cell was already set,
// matching the teacher's debug.Open, which refuses to silently replace an
// already-open writer.
func (o *OnceLock[T]) Set(value T) error {
	v := value
	if !o.value.CompareAndSwap(nil, &v) {
		return fmt.Errorf("ksync: OnceLock already initialized")
	}
	return nil
}

// Get returns the stored value and whether the cell has been set.
func (o *OnceLock[T]) Get() (T, bool) {
	p := o.value.Load()
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// MustGet panics if the cell has not been initialized, so it suits reads
// that are ordered after the cell's Set.
func (o *OnceLock[T]) MustGet() T {
	v, ok := o.Get()
	if !ok {
		panic("ksync: OnceLock read before initialization")
	}
	return v
}
