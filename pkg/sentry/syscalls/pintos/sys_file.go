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
	"pintos.dev/userprog/pkg/sentry/arch"
	"pintos.dev/userprog/pkg/sentry/kernel"
)

// Create implements create(file, initial_size).
func Create(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	path, err := t.CopyInString(args[0].Pointer())
	if err != nil {
		return 0, nil, err
	}
	size := args[1].Uint()
	return boolRet(t.CreateFile(path, int64(size))), nil, nil
}

// Remove implements remove(file).
func Remove(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	path, err := t.CopyInString(args[0].Pointer())
	if err != nil {
		return 0, nil, err
	}
	return boolRet(t.RemoveFile(path)), nil, nil
}

// Open implements open(file). It returns a new descriptor, or -1.
func Open(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	path, err := t.CopyInString(args[0].Pointer())
	if err != nil {
		return 0, nil, err
	}
	return intRet(int64(t.OpenFile(path))), nil, nil
}

// Filesize implements filesize(fd). It returns -1 for a descriptor that is
// not open.
func Filesize(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	fd := args[0].Int()
	return intRet(t.FileSize(fd)), nil, nil
}

// Seek implements seek(fd, position).
func Seek(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	fd := args[0].Int()
	pos := args[1].Uint()
	t.Seek(fd, int64(pos))
	return 0, nil, nil
}

// Tell implements tell(fd). It returns -1 for a descriptor that is not open.
func Tell(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	fd := args[0].Int()
	return intRet(t.Tell(fd)), nil, nil
}

// Close implements close(fd).
func Close(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	fd := args[0].Int()
	t.CloseFD(fd)
	return 0, nil, nil
}
