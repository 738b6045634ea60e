// Copyright 2018 The gVisor Authors.
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
	"sync"

	"pintos.dev/userprog/pkg/hostarch"
	"pintos.dev/userprog/pkg/log"
	"pintos.dev/userprog/pkg/sentry/mm"
)

// ThreadID is a process identifier. Pintos processes are single-threaded, so
// the thread ID and process ID coincide.
type ThreadID int32

// Task represents a user process.
type Task struct {
	k *Kernel

	// The following fields are immutable.
	tid   ThreadID
	name  string
	entry EntryFn
	image *mm.MemoryManager

	// initialSP is the stack pointer the program starts with, pointing at
	// the fake return address below argc and argv.
	initialSP hostarch.Addr

	// dataBase and dataEnd bound the process's data segment.
	dataBase hostarch.Addr
	dataEnd  hostarch.Addr

	// fdTable is accessed only from the task goroutine.
	fdTable *FDTable

	// parent is the process that exec'd this one, or nil if it was started by
	// the kernel or its parent has exited. Protected by k.tasksMu.
	parent *Task

	// children holds child processes that have not yet been waited for.
	// Protected by k.tasksMu.
	children map[ThreadID]*Task

	// exitStatus is the status t exits with, -1 until PrepareExit is called.
	// Protected by exitMu.
	exitMu     sync.Mutex
	exitStatus int32

	exitOnce sync.Once

	// exited is closed when the process has finished exiting.
	exited chan struct{}
}

// ThreadID returns t's ID.
func (t *Task) ThreadID() ThreadID {
	return t.tid
}

// Name returns t's name, the first word of its command line truncated to
// pintos.MaxNameLen bytes.
func (t *Task) Name() string {
	return t.name
}

// Kernel returns the kernel t belongs to.
func (t *Task) Kernel() *Kernel {
	return t.k
}

// MemoryManager returns t's address space.
func (t *Task) MemoryManager() *mm.MemoryManager {
	return t.image
}

// FDTable returns t's file descriptor table.
func (t *Task) FDTable() *FDTable {
	return t.fdTable
}

// InitialStack returns the stack pointer t's program starts with.
func (t *Task) InitialStack() hostarch.Addr {
	return t.initialSP
}

// DataSegment returns the bounds of t's data segment.
func (t *Task) DataSegment() hostarch.AddrRange {
	return hostarch.AddrRange{Start: t.dataBase, End: t.dataEnd}
}

// Exited returns a channel that is closed once t has exited.
func (t *Task) Exited() <-chan struct{} {
	return t.exited
}

func (t *Task) status() int32 {
	t.exitMu.Lock()
	defer t.exitMu.Unlock()
	return t.exitStatus
}

// String implements fmt.Stringer.String.
func (t *Task) String() string {
	return fmt.Sprintf("%d:%s", t.tid, t.name)
}

// Debugf creates a debug log line prefixed with the task.
func (t *Task) Debugf(format string, v ...any) {
	if log.IsLogging(log.Debug) {
		log.Log().DebugfAtDepth(1, "[%v] "+format, append([]any{t}, v...)...)
	}
}

// Infof creates an info log line prefixed with the task.
func (t *Task) Infof(format string, v ...any) {
	if log.IsLogging(log.Info) {
		log.Log().InfofAtDepth(1, "[%v] "+format, append([]any{t}, v...)...)
	}
}

// Warningf creates a warning log line prefixed with the task.
func (t *Task) Warningf(format string, v ...any) {
	if log.IsLogging(log.Warning) {
		log.Log().WarningfAtDepth(1, "[%v] "+format, append([]any{t}, v...)...)
	}
}

// run is the task goroutine.
func (t *Task) run() {
	defer t.k.taskWG.Done()
	// The entry function unwinds through here on every path: normal return,
	// exit, a kill, or power off.
	defer t.finishExit()
	defer func() {
		// A panicking program is killed like any other faulting one.
		if r := recover(); r != nil {
			t.k.fatalLog.Warningf("[%v] Panic in user program: %v", t, r)
			t.PrepareExit(-1)
		}
	}()
	t.Debugf("Starting with sp=%v", t.initialSP)
	ret := t.entry(t)
	t.Debugf("Returned %d from main", ret)
	t.PrepareExit(int32(ret))
}
