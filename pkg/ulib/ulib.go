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

// Package ulib is the user-mode side of the system call interface.
//
// A user program is a Go function that receives a *Process. Everything the
// program shares with the kernel goes through the process's simulated
// memory: strings and buffers are allocated in the data segment, syscall
// arguments are pushed on the user stack, and the trap carries nothing but
// the stack pointer. An access to memory the page table does not map is a
// page fault, which kills the process.
package ulib

import (
	"pintos.dev/userprog/pkg/abi/pintos"
	"pintos.dev/userprog/pkg/hostarch"
	"pintos.dev/userprog/pkg/sentry/arch"
	"pintos.dev/userprog/pkg/sentry/kernel"
	"pintos.dev/userprog/pkg/sentry/mm"
	"pintos.dev/userprog/pkg/usermem"
)

// Process is a running user program's view of itself.
//
// A Process may only be used on the goroutine that runs its program.
type Process struct {
	t     *kernel.Task
	image *mm.MemoryManager

	// sp is the user stack pointer.
	sp hostarch.Addr

	// brk is the next free address in the data segment, and end is the end
	// of the data segment.
	brk hostarch.Addr
	end hostarch.Addr
}

// Main adapts a program body to a kernel entry point. The value fn returns
// is passed to exit.
func Main(fn func(p *Process) int) kernel.EntryFn {
	return func(t *kernel.Task) int {
		data := t.DataSegment()
		p := &Process{
			t:     t,
			image: t.MemoryManager(),
			sp:    t.InitialStack(),
			brk:   data.Start,
			end:   data.End,
		}
		return fn(p)
	}
}

// Task returns the kernel's process. It is exposed for tests.
func (p *Process) Task() *kernel.Task {
	return p.t
}

// Args returns argv, as read back from the initial stack.
func (p *Process) Args() []string {
	sp := p.t.InitialStack()
	argc := p.LoadWord(sp + hostarch.WordSize)
	argv := hostarch.Addr(p.LoadWord(sp + 2*hostarch.WordSize))
	args := make([]string, argc)
	for i := range args {
		args[i] = p.LoadString(hostarch.Addr(p.LoadWord(argv + hostarch.Addr(i*hostarch.WordSize))))
	}
	return args
}

// Load reads n bytes of user memory at addr.
func (p *Process) Load(addr hostarch.Addr, n int) []byte {
	b := make([]byte, n)
	if done, err := p.image.CopyIn(addr, b); err != nil {
		p.t.PageFault(addr + hostarch.Addr(done))
	}
	return b
}

// Store writes b to user memory at addr.
func (p *Process) Store(addr hostarch.Addr, b []byte) {
	if done, err := p.image.CopyOut(addr, b); err != nil {
		p.t.PageFault(addr + hostarch.Addr(done))
	}
}

// LoadWord reads the word at addr.
func (p *Process) LoadWord(addr hostarch.Addr) uint32 {
	v, err := usermem.CopyWordIn(p.image, addr)
	if err != nil {
		p.t.PageFault(addr)
	}
	return v
}

// StoreWord writes v to the word at addr.
func (p *Process) StoreWord(addr hostarch.Addr, v uint32) {
	if err := usermem.CopyWordOut(p.image, addr, v); err != nil {
		p.t.PageFault(addr)
	}
}

// LoadString reads the NUL-terminated string at addr.
func (p *Process) LoadString(addr hostarch.Addr) string {
	s, err := p.image.CopyInString(addr, pintos.MaxStringLen)
	if err != nil {
		p.t.PageFault(addr + hostarch.Addr(len(s)))
	}
	return s
}

// Alloc reserves n bytes, word-aligned, in the data segment. Exhausting the
// data segment faults.
func (p *Process) Alloc(n int) hostarch.Addr {
	addr := p.brk
	size := (uint64(n) + hostarch.WordSize - 1) &^ (hostarch.WordSize - 1)
	end, ok := addr.AddLength(size)
	if !ok || end > p.end {
		p.t.PageFault(p.end)
	}
	p.brk = end
	return addr
}

// Mark returns the current allocation point, to be passed to Release.
func (p *Process) Mark() hostarch.Addr {
	return p.brk
}

// Release frees every allocation made since mark.
func (p *Process) Release(mark hostarch.Addr) {
	p.brk = mark
}

// PutString copies s and a terminating NUL into newly allocated memory.
func (p *Process) PutString(s string) hostarch.Addr {
	addr := p.Alloc(len(s) + 1)
	b := make([]byte, len(s)+1)
	copy(b, s)
	p.Store(addr, b)
	return addr
}

// PutBytes copies b into newly allocated memory.
func (p *Process) PutBytes(b []byte) hostarch.Addr {
	addr := p.Alloc(len(b))
	p.Store(addr, b)
	return addr
}

// push pushes v onto the user stack.
func (p *Process) push(v uint32) {
	p.sp -= hostarch.WordSize
	p.StoreWord(p.sp, v)
}

// Syscall makes system call nr the way lib/user/syscall.c does: arguments
// are pushed right to left, then the number, and the trap is raised with the
// stack pointer at the number. It returns EAX.
func (p *Process) Syscall(nr uint32, args ...uint32) uint32 {
	saved := p.sp
	defer func() { p.sp = saved }()
	for i := len(args) - 1; i >= 0; i-- {
		p.push(args[i])
	}
	p.push(nr)
	tf := &arch.TrapFrame{Vector: pintos.SyscallVector, ESP: p.sp}
	p.t.Trap(tf)
	return tf.EAX
}

// TrapAt raises trap vector with an arbitrary stack pointer, and returns
// EAX. It lets a program hand the kernel a frame that Syscall would never
// build.
func (p *Process) TrapAt(vector uint8, esp hostarch.Addr) uint32 {
	tf := &arch.TrapFrame{Vector: vector, ESP: esp}
	p.t.Trap(tf)
	return tf.EAX
}

// StackPointer returns the current user stack pointer.
func (p *Process) StackPointer() hostarch.Addr {
	return p.sp
}
