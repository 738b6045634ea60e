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

package kernel

import (
	"fmt"

	"pintos.dev/userprog/pkg/sentry/arch"
)

// maxSyscallNum is the highest supported syscall number.
const maxSyscallNum = 255

// SyscallFn is a syscall implementation.
//
// A non-nil error is a protocol violation by the calling process, and kills
// it with status -1. Conditions the process is expected to handle are
// reported through the return value instead.
type SyscallFn func(t *Task, args arch.SyscallArguments) (uintptr, *SyscallControl, error)

// ArgKind describes how the dispatcher interprets one argument word.
type ArgKind int

const (
	// ArgInt is a signed 32-bit integer.
	ArgInt ArgKind = iota

	// ArgUint is an unsigned 32-bit integer.
	ArgUint

	// ArgString is a pointer to a NUL-terminated string. The dispatcher
	// validates every byte up to and including the terminator.
	ArgString

	// ArgBuffer is a pointer to a buffer whose length is the next argument.
	// The dispatcher validates the whole span.
	ArgBuffer
)

// String implements fmt.Stringer.String.
func (k ArgKind) String() string {
	switch k {
	case ArgInt:
		return "int"
	case ArgUint:
		return "uint"
	case ArgString:
		return "string"
	case ArgBuffer:
		return "buffer"
	default:
		return fmt.Sprintf("ArgKind(%d)", int(k))
	}
}

// Syscall describes one entry of a SyscallTable.
type Syscall struct {
	// Name is the syscall name, used in logs.
	Name string

	// Args is the signature. The dispatcher fetches exactly len(Args) words.
	Args []ArgKind

	// Returns is true if the syscall produces a value in EAX.
	Returns bool

	// Fn is the implementation.
	Fn SyscallFn
}

// runState is the action the trap path takes after a syscall.
type runState int

const (
	runApp runState = iota
	runExit
	runHalt
)

// SyscallControl is returned by syscalls to control the behavior of
// Task.Trap.
type SyscallControl struct {
	// next is the state that the task goroutine should switch to.
	next runState
}

var (
	// CtrlDoExit is returned by syscalls that terminate the calling process.
	// The status must already have been set with Task.PrepareExit.
	CtrlDoExit = &SyscallControl{next: runExit}

	// CtrlHalt is returned by syscalls that power off the machine.
	CtrlHalt = &SyscallControl{next: runHalt}
)

// SyscallTable is a lookup table of system calls.
type SyscallTable struct {
	// Table is the collection of functions.
	Table map[uintptr]Syscall

	// lookup is a fixed-size array that holds the syscalls (indexed by
	// their numbers). It is used for fast look ups.
	lookup [maxSyscallNum + 1]*Syscall
}

// Init initializes the lookup table. It panics on a malformed entry.
func (s *SyscallTable) Init() {
	for num, sc := range s.Table {
		if num > maxSyscallNum {
			panic(fmt.Sprintf("syscall %d (%s) exceeds the maximum %d", num, sc.Name, maxSyscallNum))
		}
		if sc.Fn == nil {
			panic(fmt.Sprintf("syscall %d (%s) has no implementation", num, sc.Name))
		}
		if len(sc.Args) > arch.MaxSyscallArgs {
			panic(fmt.Sprintf("syscall %d (%s) takes %d arguments, more than %d", num, sc.Name, len(sc.Args), arch.MaxSyscallArgs))
		}
		for i, kind := range sc.Args {
			if kind == ArgBuffer && (i+1 >= len(sc.Args) || sc.Args[i+1] != ArgUint) {
				panic(fmt.Sprintf("syscall %d (%s): buffer argument %d has no length", num, sc.Name, i))
			}
		}
		sc := sc
		s.lookup[num] = &sc
	}
}

// Lookup returns the syscall for sysno, or nil if there is none.
func (s *SyscallTable) Lookup(sysno uintptr) *Syscall {
	if sysno <= maxSyscallNum {
		return s.lookup[sysno]
	}
	return nil
}
