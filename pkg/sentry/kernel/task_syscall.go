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
	"runtime"
	"strings"

	"pintos.dev/userprog/pkg/abi/pintos"
	"pintos.dev/userprog/pkg/errors/kernerr"
	"pintos.dev/userprog/pkg/hostarch"
	"pintos.dev/userprog/pkg/sentry/arch"
	"pintos.dev/userprog/pkg/usermem"
)

// Trap enters the kernel from user mode with the registers in tf. For a
// syscall, the result (if any) is left in tf.EAX when Trap returns. Trap does
// not return if the syscall terminates the process or the machine, or if the
// trap is not a syscall.
//
// Preconditions: The caller must be running on the task goroutine.
func (t *Task) Trap(tf *arch.TrapFrame) {
	if t.k.IsHalted() {
		runtime.Goexit()
	}
	if tf.Vector != pintos.SyscallVector {
		t.Kill(fmt.Errorf("unexpected trap vector %#x", tf.Vector))
	}
	ctrl, err := t.doSyscall(tf)
	if err != nil {
		t.Kill(err)
	}
	if ctrl == nil {
		return
	}
	switch ctrl.next {
	case runExit:
		runtime.Goexit()
	case runHalt:
		t.k.PowerOff()
		runtime.Goexit()
	}
}

// doSyscall reads the syscall number and arguments from the user stack,
// validates them against the syscall's signature and runs it. A non-nil
// error means the process must be killed.
func (t *Task) doSyscall(tf *arch.TrapFrame) (*SyscallControl, error) {
	sp := tf.Stack()
	if err := t.image.CheckRange(sp, hostarch.WordSize); err != nil {
		return nil, fmt.Errorf("bad stack pointer %v: %w", sp, err)
	}
	sysno, err := usermem.CopyWordIn(t.image, sp)
	if err != nil {
		return nil, fmt.Errorf("reading syscall number at %v: %w", sp, err)
	}
	s := t.k.table.Lookup(uintptr(sysno))
	if s == nil {
		return nil, fmt.Errorf("syscall %d: %w", sysno, kernerr.ENOSYS)
	}
	args, err := t.fetchArgs(tf, len(s.Args))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	if err := t.checkArgs(s, args); err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}

	if t.k.strace {
		t.Infof("%s(%s)", s.Name, t.formatArgs(s, args))
	}
	rval, ctrl, err := s.Fn(t, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	if s.Returns && ctrl == nil {
		tf.SetReturn(rval)
		if t.k.strace {
			t.Infof("%s = %d", s.Name, int32(tf.EAX))
		}
	}
	return ctrl, nil
}

// fetchArgs reads count argument words, starting one word above the
// syscall number. Each slot is validated before it is read.
func (t *Task) fetchArgs(tf *arch.TrapFrame, count int) (arch.SyscallArguments, error) {
	var args arch.SyscallArguments
	for i := 0; i < count; i++ {
		addr, ok := tf.Stack().AddLength(uint64(i+1) * hostarch.WordSize)
		if !ok {
			return args, kernerr.EFAULT
		}
		if err := t.image.CheckRange(addr, hostarch.WordSize); err != nil {
			return args, fmt.Errorf("argument %d at %v: %w", i, addr, err)
		}
		v, err := usermem.CopyWordIn(t.image, addr)
		if err != nil {
			return args, fmt.Errorf("argument %d at %v: %w", i, addr, err)
		}
		args[i].Value = uintptr(v)
	}
	return args, nil
}

// checkArgs validates the pointer arguments of s.
func (t *Task) checkArgs(s *Syscall, args arch.SyscallArguments) error {
	for i, kind := range s.Args {
		switch kind {
		case ArgString:
			if err := t.image.CheckString(args[i].Pointer()); err != nil {
				return fmt.Errorf("string argument %d at %v: %w", i, args[i].Pointer(), err)
			}
		case ArgBuffer:
			length := args[i+1].Uint()
			if err := t.image.CheckRange(args[i].Pointer(), length); err != nil {
				return fmt.Errorf("buffer argument %d at %v+%d: %w", i, args[i].Pointer(), length, err)
			}
		}
	}
	return nil
}

// formatArgs renders args for strace output.
func (t *Task) formatArgs(s *Syscall, args arch.SyscallArguments) string {
	parts := make([]string, len(s.Args))
	for i, kind := range s.Args {
		switch kind {
		case ArgInt:
			parts[i] = fmt.Sprintf("%d", args[i].Int())
		case ArgUint:
			parts[i] = fmt.Sprintf("%d", args[i].Uint())
		case ArgString:
			str, err := t.image.CopyInString(args[i].Pointer(), pintos.MaxStringLen)
			if err != nil {
				parts[i] = fmt.Sprintf("%v (error: %v)", args[i].Pointer(), err)
			} else {
				parts[i] = fmt.Sprintf("%v %q", args[i].Pointer(), str)
			}
		case ArgBuffer:
			parts[i] = args[i].Pointer().String()
		}
	}
	return strings.Join(parts, ", ")
}

// CopyInString copies the string argument at addr. The dispatcher has
// already validated it, so any failure here is fatal.
func (t *Task) CopyInString(addr hostarch.Addr) (string, error) {
	return t.image.CopyInString(addr, pintos.MaxStringLen)
}

// CopyInBytes copies len(dst) bytes from addr.
func (t *Task) CopyInBytes(addr hostarch.Addr, dst []byte) error {
	_, err := t.image.CopyIn(addr, dst)
	return err
}

// CopyOutBytes copies src to addr.
func (t *Task) CopyOutBytes(addr hostarch.Addr, src []byte) error {
	_, err := t.image.CopyOut(addr, src)
	return err
}
