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

// This file implements the process termination path.
//
// Every way out of a process funnels through the deferred handler in
// Task.run: returning from main, the exit syscall, a kill for a protocol
// violation or page fault, and power off. The handler runs exactly once per
// process, on the task goroutine:
//
//	- The exit status is fixed (PrepareExit; -1 if nothing set it).
//	- "<name>: exit(<status>)" is written to the console, unless the machine
//	  has powered off.
//	- Every open file is closed, each under the filesystem lock.
//	- Children are orphaned and waiters are woken.

import (
	"fmt"
	"runtime"

	"pintos.dev/userprog/pkg/hostarch"
)

// PrepareExit sets the status t will exit with.
func (t *Task) PrepareExit(status int32) {
	t.exitMu.Lock()
	defer t.exitMu.Unlock()
	t.exitStatus = status
}

// Exit terminates t with the given status. It must be called on the task
// goroutine, and does not return.
func (t *Task) Exit(status int32) {
	t.PrepareExit(status)
	runtime.Goexit()
}

// Kill terminates t with status -1 for a protocol violation. It must be
// called on the task goroutine, and does not return.
func (t *Task) Kill(reason error) {
	t.k.fatalLog.Warningf("[%v] Killed: %v", t, reason)
	t.Exit(-1)
}

// PageFault handles a user-mode access to addr that the page table could not
// satisfy. The process is killed.
func (t *Task) PageFault(addr hostarch.Addr) {
	t.Debugf("Page fault at %v", addr)
	t.Exit(-1)
}

// exitLine returns the line the console shows when t exits.
func (t *Task) exitLine() string {
	return fmt.Sprintf("%s: exit(%d)\n", t.name, t.status())
}

// finishExit runs the exit path. Only the first call has any effect.
func (t *Task) finishExit() {
	t.exitOnce.Do(func() {
		if !t.k.IsHalted() {
			t.k.console.Write([]byte(t.exitLine()))
		}
		t.Debugf("Exiting with status %d", t.status())
		t.fdTable.destroy()

		t.k.tasksMu.Lock()
		defer t.k.tasksMu.Unlock()
		for _, child := range t.children {
			child.parent = nil
		}
		t.children = nil
		delete(t.k.tasks, t.tid)
		close(t.exited)
	})
}
