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

// Package pintos contains the constants and types of the Pintos user ABI:
// syscall numbers, the trap vector and the user address-space layout.
package pintos

// SyscallVector is the interrupt vector through which all syscalls arrive.
const SyscallVector = 0x30

// Syscall numbers, from lib/syscall-nr.h.
const (
	SYS_HALT = iota
	SYS_EXIT
	SYS_EXEC
	SYS_WAIT
	SYS_CREATE
	SYS_REMOVE
	SYS_OPEN
	SYS_FILESIZE
	SYS_READ
	SYS_WRITE
	SYS_SEEK
	SYS_TELL
	SYS_CLOSE
)

// Reserved descriptors. These never appear in a process's descriptor table.
const (
	STDIN_FILENO  = 0
	STDOUT_FILENO = 1
)

// TID_ERROR is returned by exec when the new process could not be loaded.
const TID_ERROR = -1
