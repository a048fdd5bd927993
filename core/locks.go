package core

import "sync"

// employeeLocks serializes session and quota mutations per employee.
// Operations for different employees never contend.
type employeeLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newEmployeeLocks() *employeeLocks {
	return &employeeLocks{locks: make(map[uint]*sync.Mutex)}
}

func (l *employeeLocks) get(employeeID uint) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[employeeID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[employeeID] = m
	}
	return m
}

func (l *employeeLocks) Lock(employeeID uint) func() {
	m := l.get(employeeID)
	m.Lock()
	return m.Unlock
}
