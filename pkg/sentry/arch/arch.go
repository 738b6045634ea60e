// Copyright 2018 The gVisor Authors.
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

// Package arch describes the machine state that crosses the user/kernel
// boundary on a trap.
package arch

import (
	"fmt"

	"pintos.dev/userprog/pkg/hostarch"
)

// TrapFrame is the snapshot of a user thread's registers taken when it enters
// the kernel. The syscall path only reads ESP and writes EAX.
type TrapFrame struct {
	// Vector is the interrupt vector that delivered the trap.
	Vector uint8

	// ESP is the user stack pointer at the time of the trap.
	ESP hostarch.Addr

	// EAX holds the syscall return value on the way back to user mode.
	EAX uint32
}

// Stack returns the user stack pointer.
func (tf *TrapFrame) Stack() hostarch.Addr {
	return tf.ESP
}

// SetReturn sets the syscall return value. Values wider than a machine word
// are truncated, so ^uintptr(0) reads back as -1 in user mode.
func (tf *TrapFrame) SetReturn(value uintptr) {
	tf.EAX = uint32(value)
}

// Return returns the syscall return value.
func (tf *TrapFrame) Return() uintptr {
	return uintptr(tf.EAX)
}

// String implements fmt.Stringer.String.
func (tf *TrapFrame) String() string {
	return fmt.Sprintf("vec=%#x esp=%v eax=%#x", tf.Vector, tf.ESP, tf.EAX)
}

// SyscallArgument is an argument supplied to a syscall implementation. The
// methods used to access the arguments are named after the ***C type name*** and
// they convert to the closest Go type available. For example, Int() refers to a
// 32-bit signed integer argument represented in Go as an int32.
//
// Using the accessor methods guarantees that the conversion between types is
// correct, taking into account size and signedness (i.e., zero-extension vs
// signed-extension).
type SyscallArgument struct {
	// Prefer to use accessor methods instead of 'Value' directly.
	Value uintptr
}

// MaxSyscallArgs is the largest number of argument words any syscall reads.
const MaxSyscallArgs = 3

// SyscallArguments represents the set of arguments passed to a syscall.
type SyscallArguments [MaxSyscallArgs]SyscallArgument

// Pointer returns the hostarch.Addr representation of a pointer argument.
func (a SyscallArgument) Pointer() hostarch.Addr {
	return hostarch.Addr(a.Value)
}

// Int returns the int32 representation of a 32-bit signed integer argument.
func (a SyscallArgument) Int() int32 {
	return int32(a.Value)
}

// Uint returns the uint32 representation of a 32-bit unsigned integer argument.
func (a SyscallArgument) Uint() uint32 {
	return uint32(a.Value)
}

// SizeT returns the uint representation of a size_t argument.
func (a SyscallArgument) SizeT() uint {
	return uint(uint32(a.Value))
}
