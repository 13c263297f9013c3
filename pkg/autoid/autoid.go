// Package autoid allocates the ids handed out by a data service and the ids
// of client side objects.
package autoid

import (
	"sync"

	"github.com/google/uuid"
)

// IDAllocator allocates increasing int64 ids. Ids allocated under
// different scopes never collide: the scope takes the high 32 bits.
type IDAllocator struct {
	sync.Mutex
	scope int64
	last  int64
}

// NewIDAllocator creates an allocator whose first id is scope<<32 + 1.
func NewIDAllocator(scope int64) *IDAllocator {
	return &IDAllocator{scope: scope << 32}
}

// AllocID returns the next id.
func (a *IDAllocator) AllocID() int64 {
	a.Lock()
	defer a.Unlock()
	a.last++
	return a.last + a.scope
}

// Observe makes sure that id is never allocated, e.g. because it was
// assigned elsewhere.
func (a *IDAllocator) Observe(id int64) {
	a.Lock()
	defer a.Unlock()
	if local := id - a.scope; local > a.last {
		a.last = local
	}
}

// UUIDAllocator allocates random string ids.
type UUIDAllocator struct{}

func NewUUIDAllocator() *UUIDAllocator {
	return new(UUIDAllocator)
}

func (a *UUIDAllocator) AllocID() string {
	return uuid.New().String()
}
