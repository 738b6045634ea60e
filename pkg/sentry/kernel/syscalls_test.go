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
	"testing"

	"pintos.dev/userprog/pkg/sentry/arch"
)

func nopSyscall(*Task, arch.SyscallArguments) (uintptr, *SyscallControl, error) {
	return 0, nil, nil
}

func TestSyscallTableLookup(t *testing.T) {
	table := &SyscallTable{
		Table: map[uintptr]Syscall{
			0: {Name: "zero", Fn: nopSyscall},
			7: {Name: "seven", Args: []ArgKind{ArgInt, ArgBuffer, ArgUint}, Returns: true, Fn: nopSyscall},
		},
	}
	table.Init()

	if s := table.Lookup(7); s == nil || s.Name != "seven" {
		t.Errorf("Lookup(7) = %v, want seven", s)
	}
	for _, sysno := range []uintptr{1, 255, 256, ^uintptr(0)} {
		if s := table.Lookup(sysno); s != nil {
			t.Errorf("Lookup(%d) = %v, want nil", sysno, s.Name)
		}
	}
}

func TestSyscallTableInitRejects(t *testing.T) {
	for _, tc := range []struct {
		name string
		sc   Syscall
		num  uintptr
	}{
		{name: "no implementation", sc: Syscall{Name: "x"}},
		{name: "too many arguments", sc: Syscall{Name: "x", Args: []ArgKind{ArgInt, ArgInt, ArgInt, ArgInt}, Fn: nopSyscall}},
		{name: "buffer without length", sc: Syscall{Name: "x", Args: []ArgKind{ArgInt, ArgBuffer}, Fn: nopSyscall}},
		{name: "buffer with signed length", sc: Syscall{Name: "x", Args: []ArgKind{ArgBuffer, ArgInt}, Fn: nopSyscall}},
		{name: "number too large", sc: Syscall{Name: "x", Fn: nopSyscall}, num: 256},
	} {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("Init did not panic")
				}
			}()
			table := &SyscallTable{Table: map[uintptr]Syscall{tc.num: tc.sc}}
			table.Init()
		})
	}
}

func TestArgKindString(t *testing.T) {
	for kind, want := range map[ArgKind]string{
		ArgInt:       "int",
		ArgUint:      "uint",
		ArgString:    "string",
		ArgBuffer:    "buffer",
		ArgKind(100): "ArgKind(100)",
	} {
		if got := kind.String(); got != want {
			t.Errorf("ArgKind(%d).String() = %q, want %q", int(kind), got, want)
		}
	}
}
