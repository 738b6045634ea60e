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

// Read implements read(fd, buffer, size). Reading fd 0 takes size keys from
// the keyboard. It returns the number of bytes read, or -1 for a descriptor
// that is not open.
func Read(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	fd := args[0].Int()
	addr := args[1].Pointer()
	size := args[2].Uint()

	// The dispatcher has validated [addr, addr+size), so size is bounded by
	// the process's mapped memory.
	buf := make([]byte, size)
	n := t.ReadFD(fd, buf)
	if n > 0 {
		if err := t.CopyOutBytes(addr, buf[:n]); err != nil {
			return 0, nil, err
		}
	}
	return intRet(n), nil, nil
}
