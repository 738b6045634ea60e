// Copyright 2026 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mm provides a memory management subsystem for user processes.
//
// Each process owns one MemoryManager: a sparse page table mapping
// page-aligned user addresses to page-sized byte slices. There is no paging
// and no sharing between processes; a page is either present or it is not.
//
// MemoryManager also implements the kernel's side of the user/kernel
// boundary: the address validator (CheckRange, CheckString) and copies to
// and from user memory (usermem.IO).
//
// Lock order:
//
//	MemoryManager.mu
package mm

import (
	"fmt"
	"sync"

	"pintos.dev/userprog/pkg/abi/pintos"
	"pintos.dev/userprog/pkg/errors/kernerr"
	"pintos.dev/userprog/pkg/hostarch"
)

// PageTable translates user virtual addresses.
type PageTable interface {
	// Translate returns the bytes backing addr through the end of its page,
	// or false if the page containing addr is not mapped.
	Translate(addr hostarch.Addr) ([]byte, bool)
}

// Layout describes the user-accessible portion of the address space.
//
// Half-open: MinAddr is included and MaxAddr is excluded.
type Layout struct {
	MinAddr hostarch.Addr
	MaxAddr hostarch.Addr
}

// DefaultLayout is the layout of every user process.
var DefaultLayout = Layout{
	MinAddr: pintos.CodeBase,
	MaxAddr: pintos.PhysBase,
}

// Contains returns true if ar lies within the layout.
func (l Layout) Contains(ar hostarch.AddrRange) bool {
	return ar.WellFormed() && hostarch.AddrRange{Start: l.MinAddr, End: l.MaxAddr}.IsSupersetOf(ar)
}

// MemoryManager implements a process's address space.
type MemoryManager struct {
	layout Layout

	mu sync.RWMutex

	// pages maps page-aligned addresses to their backing store. Every slice
	// in pages has length hostarch.PageSize.
	//
	// pages is protected by mu.
	pages map[hostarch.Addr][]byte
}

// NewMemoryManager returns an empty address space using DefaultLayout.
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		layout: DefaultLayout,
		pages:  make(map[hostarch.Addr][]byte),
	}
}

// Layout returns the layout of mm's address space.
func (mm *MemoryManager) Layout() Layout {
	return mm.layout
}

// MapRange maps zero-filled pages covering [addr, addr+length). Pages that
// are already mapped keep their contents. It returns EINVAL if the range
// falls outside the user layout.
func (mm *MemoryManager) MapRange(addr hostarch.Addr, length uint32) error {
	ar, ok := addr.ToRange(uint64(length))
	if !ok || !mm.layout.Contains(ar) {
		return kernerr.EINVAL
	}
	mm.mu.Lock()
	defer mm.mu.Unlock()
	ar.Pages(func(page hostarch.Addr) bool {
		if _, ok := mm.pages[page]; !ok {
			mm.pages[page] = make([]byte, hostarch.PageSize)
		}
		return true
	})
	return nil
}

// Unmap removes every page touched by [addr, addr+length).
func (mm *MemoryManager) Unmap(addr hostarch.Addr, length uint32) {
	ar, ok := addr.ToRange(uint64(length))
	if !ok {
		ar.End = ^hostarch.Addr(0)
	}
	mm.mu.Lock()
	defer mm.mu.Unlock()
	ar.Pages(func(page hostarch.Addr) bool {
		delete(mm.pages, page)
		return true
	})
}

// Translate implements PageTable.Translate.
func (mm *MemoryManager) Translate(addr hostarch.Addr) ([]byte, bool) {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.translateLocked(addr)
}

// Preconditions: mm.mu must be locked.
func (mm *MemoryManager) translateLocked(addr hostarch.Addr) ([]byte, bool) {
	p, ok := mm.pages[addr.RoundDown()]
	if !ok {
		return nil, false
	}
	return p[addr.PageOffset():], true
}

// MappedPages returns the number of pages currently mapped.
func (mm *MemoryManager) MappedPages() int {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return len(mm.pages)
}

// String implements fmt.Stringer.String.
func (mm *MemoryManager) String() string {
	return fmt.Sprintf("mm{%v-%v, %d pages}", mm.layout.MinAddr, mm.layout.MaxAddr, mm.MappedPages())
}
