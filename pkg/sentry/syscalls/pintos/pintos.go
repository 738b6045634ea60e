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

// Package pintos provides the Pintos system call table.
package pintos

import (
	"pintos.dev/userprog/pkg/abi/pintos"
	"pintos.dev/userprog/pkg/sentry/kernel"
)

// Table is the Pintos user program system call interface, numbered as in
// lib/syscall-nr.h.
var Table = &kernel.SyscallTable{
	Table: map[uintptr]kernel.Syscall{
		pintos.SYS_HALT: {
			Name: "halt",
			Fn:   Halt,
		},
		pintos.SYS_EXIT: {
			Name: "exit",
			Args: []kernel.ArgKind{kernel.ArgInt},
			Fn:   Exit,
		},
		pintos.SYS_EXEC: {
			Name:    "exec",
			Args:    []kernel.ArgKind{kernel.ArgString},
			Returns: true,
			Fn:      Exec,
		},
		pintos.SYS_WAIT: {
			Name:    "wait",
			Args:    []kernel.ArgKind{kernel.ArgInt},
			Returns: true,
			Fn:      Wait,
		},
		pintos.SYS_CREATE: {
			Name:    "create",
			Args:    []kernel.ArgKind{kernel.ArgString, kernel.ArgUint},
			Returns: true,
			Fn:      Create,
		},
		pintos.SYS_REMOVE: {
			Name:    "remove",
			Args:    []kernel.ArgKind{kernel.ArgString},
			Returns: true,
			Fn:      Remove,
		},
		pintos.SYS_OPEN: {
			Name:    "open",
			Args:    []kernel.ArgKind{kernel.ArgString},
			Returns: true,
			Fn:      Open,
		},
		pintos.SYS_FILESIZE: {
			Name:    "filesize",
			Args:    []kernel.ArgKind{kernel.ArgInt},
			Returns: true,
			Fn:      Filesize,
		},
		pintos.SYS_READ: {
			Name:    "read",
			Args:    []kernel.ArgKind{kernel.ArgInt, kernel.ArgBuffer, kernel.ArgUint},
			Returns: true,
			Fn:      Read,
		},
		pintos.SYS_WRITE: {
			Name:    "write",
			Args:    []kernel.ArgKind{kernel.ArgInt, kernel.ArgBuffer, kernel.ArgUint},
			Returns: true,
			Fn:      Write,
		},
		pintos.SYS_SEEK: {
			Name: "seek",
			Args: []kernel.ArgKind{kernel.ArgInt, kernel.ArgUint},
			Fn:   Seek,
		},
		pintos.SYS_TELL: {
			Name:    "tell",
			Args:    []kernel.ArgKind{kernel.ArgInt},
			Returns: true,
			Fn:      Tell,
		},
		pintos.SYS_CLOSE: {
			Name: "close",
			Args: []kernel.ArgKind{kernel.ArgInt},
			Fn:   Close,
		},
	},
}

func init() {
	Table.Init()
}

// intRet encodes a signed result for EAX.
func intRet(v int64) uintptr {
	return uintptr(uint32(int32(v)))
}

// boolRet encodes a boolean result for EAX.
func boolRet(b bool) uintptr {
	if b {
		return 1
	}
	return 0
}
