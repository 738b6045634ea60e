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

package pintos

import (
	"pintos.dev/userprog/pkg/abi/pintos"
	"pintos.dev/userprog/pkg/sentry/arch"
	"pintos.dev/userprog/pkg/sentry/kernel"
)

// Halt implements halt(). It powers off the machine.
func Halt(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	t.Infof("halt")
	return 0, kernel.CtrlHalt, nil
}

// Exit implements exit(status).
func Exit(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	status := args[0].Int()
	t.PrepareExit(status)
	return 0, kernel.CtrlDoExit, nil
}

// Exec implements exec(cmd_line). It returns the new process's ID, or
// TID_ERROR if the program could not be loaded.
func Exec(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	cmdline, err := t.CopyInString(args[0].Pointer())
	if err != nil {
		return 0, nil, err
	}
	tid, err := t.Kernel().Exec(t, cmdline)
	if err != nil {
		t.Debugf("exec(%q): %v", cmdline, err)
		return intRet(pintos.TID_ERROR), nil, nil
	}
	return intRet(int64(tid)), nil, nil
}

// Wait implements wait(pid). It returns the child's exit status, or -1 if
// pid is not an unwaited child of the caller.
func Wait(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	tid := kernel.ThreadID(args[0].Int())
	status, err := t.Wait(tid)
	if err != nil {
		t.Debugf("wait(%d): %v", tid, err)
		return intRet(-1), nil, nil
	}
	return intRet(int64(status)), nil, nil
}
