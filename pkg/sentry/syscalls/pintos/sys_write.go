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

// Write implements write(fd, buffer, size). Writing fd 1 sends the whole
// buffer to the console in one write. It returns the number of bytes
// written, which is 0 for a descriptor that is not open.
func Write(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	fd := args[0].Int()
	addr := args[1].Pointer()
	size := args[2].Uint()

	buf := make([]byte, size)
	if err := t.CopyInBytes(addr, buf); err != nil {
		return 0, nil, err
	}
	return intRet(t.WriteFD(fd, buf)), nil, nil
}
