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
	"runtime"
)

// Wait blocks until t's child tid exits and returns its exit status. A child
// killed by the kernel reports -1. It returns ECHILD if tid is not a child
// of t or has already been waited for.
//
// Wait holds no lock while blocked. If the machine powers off first, Wait
// does not return.
//
// Preconditions: The caller must be running on t's task goroutine.
func (t *Task) Wait(tid ThreadID) (int32, error) {
	t.k.tasksMu.Lock()
	child, err := takeChildLocked(t.children, tid)
	t.k.tasksMu.Unlock()
	if err != nil {
		return -1, err
	}
	t.Debugf("Waiting for %v", child)
	select {
	case <-child.exited:
		return child.status(), nil
	default:
	}
	select {
	case <-child.exited:
		return child.status(), nil
	case <-t.k.halted:
		runtime.Goexit()
		panic("unreachable")
	}
}

// Parent returns t's parent, or nil if t has none.
func (t *Task) Parent() *Task {
	t.k.tasksMu.Lock()
	defer t.k.tasksMu.Unlock()
	return t.parent
}
