// Package manager implements the kernel's task table (spec.md §3): a
// bounded pool of task control blocks addressed by ID, with freed TCBs
// recycled rather than returned to the allocator.
//
// Grounded on original_source/kernel/src/task/manager.rs (TaskManager),
// with its HashMap<u64, NonNull<Task>> table kept as a Go map keyed by
// task.ID, and its malloc-backed TASKPOOL_SIZE pool replaced by a plain
// slice-backed free list since Go's GC already owns TCB lifetime.
package manager

import (
	"fmt"

	"github.com/sonhs99/redos-go/internal/kernel/ksync"
	"github.com/sonhs99/redos-go/internal/kernel/task"
)

// DefaultPoolSize mirrors manager.rs's TASKPOOL_SIZE.
const DefaultPoolSize = 1024

var (
	ErrPoolExhausted = fmt.Errorf("manager: task pool exhausted")
	ErrNotFound      = fmt.Errorf("manager: task not found")
)

// Manager owns task identity: allocation, lookup by ID, and recycling.
type Manager struct {
	lock ksync.Spinlock

	free  []*task.TCB
	index map[task.ID]*task.TCB

	maxCount   int
	useCount   int
	allocCount uint64
}

// New builds a manager bounded to maxCount live tasks at once.
func New(maxCount int) *Manager {
	return &Manager{
		index:    make(map[task.ID]*task.TCB),
		maxCount: maxCount,
	}
}

// Allocate reserves the next task ID, builds a primed TCB for it (recycling
// a freed TCB's backing struct when one is available), and registers it in
// the ID table.
func (m *Manager) Allocate(name string, entry, exitAddr, stackAddr, stackSize uint64, flags task.Flags) (*task.TCB, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.useCount >= m.maxCount {
		return nil, ErrPoolExhausted
	}
	m.useCount++
	m.allocCount++
	id := task.ID(m.allocCount)

	fresh := task.New(id, name, entry, exitAddr, stackAddr, stackSize, flags)

	var t *task.TCB
	if n := len(m.free); n > 0 {
		t = m.free[n-1]
		m.free = m.free[:n-1]
		*t = *fresh
	} else {
		t = fresh
	}
	m.index[id] = t
	return t, nil
}

// Free releases a TCB back to the pool: its tree links and context are
// cleared (matching manager.rs's free, which zeroes context and parent/
// child/sibling before recycling), the ID is dropped from the lookup
// table, and the struct itself is kept for reuse on the next Allocate.
func (m *Manager) Free(t *task.TCB) {
	m.lock.Lock()
	defer m.lock.Unlock()

	t.Parent = task.NoTask
	t.Child = task.NoTask
	t.Sibling = task.NoTask
	t.Context = task.Context{}

	delete(m.index, t.ID)
	m.free = append(m.free, t)
	m.useCount--
}

// Get looks up a live task by ID.
func (m *Manager) Get(id task.ID) (*task.TCB, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	t, ok := m.index[id]
	return t, ok
}

// InUse reports the number of currently-allocated tasks.
func (m *Manager) InUse() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.useCount
}
