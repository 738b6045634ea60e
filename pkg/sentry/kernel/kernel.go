// Copyright 2018 Google LLC
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

// Package kernel provides an emulation of the kernel side of the Pintos
// user program interface: processes, their file descriptor tables, and the
// system call trap path.
//
// Each process runs on its own goroutine, the task goroutine. The user
// program body and every system call it makes execute synchronously on that
// goroutine.
//
// Lock order:
//
//	Kernel.tasksMu
//
//	Kernel.fsMu
//	  filesystem implementation locks
//
// tasksMu and fsMu are never held at the same time.
package kernel

import (
	"fmt"
	"sync"
	"time"

	"pintos.dev/userprog/pkg/errors/kernerr"
	"pintos.dev/userprog/pkg/log"
	"pintos.dev/userprog/pkg/sentry/fs"
)

// Console is the machine console.
type Console interface {
	// ReadChar blocks until a key is pressed and returns it.
	ReadChar() byte

	// Write displays p. Each call appears contiguously.
	Write(p []byte)
}

// EntryFn is the body of a user program. It runs on the task goroutine and
// its return value is the process exit status.
type EntryFn func(t *Task) int

// Loader resolves program names to program bodies.
type Loader interface {
	// Load returns the program named name, or false if there is none.
	Load(name string) (EntryFn, bool)
}

// Default address space sizes, in pages.
const (
	DefaultStackPages = 1
	DefaultDataPages  = 16
)

// InitKernelArgs holds arguments to Init.
type InitKernelArgs struct {
	// Console is the machine console. Required.
	Console Console

	// Filesystem is the disk. Required.
	Filesystem fs.Filesystem

	// Loader resolves exec command lines. Required.
	Loader Loader

	// SyscallTable is the system call interface. Required.
	SyscallTable *SyscallTable

	// StackPages is the size of each process's stack, mapped just below
	// PhysBase. Zero means DefaultStackPages.
	StackPages int

	// DataPages is the size of each process's data segment, mapped at
	// CodeBase. Zero means DefaultDataPages.
	DataPages int

	// Strace enables logging of every system call.
	Strace bool
}

// Kernel represents an emulated Pintos kernel.
type Kernel struct {
	// The following fields are immutable after Init.
	console    Console
	fs         fs.Filesystem
	loader     Loader
	table      *SyscallTable
	stackPages int
	dataPages  int
	strace     bool

	// fatalLog reports processes killed for protocol violations. A
	// misbehaving program can trigger it in a loop.
	fatalLog log.Logger

	// fsMu serializes every call into fs, from every process.
	fsMu sync.Mutex

	// tasksMu protects the process lifecycle state below and in every Task
	// (parent and children).
	tasksMu sync.Mutex

	// tasks holds every process that has not yet exited.
	tasks map[ThreadID]*Task

	// nextTID is the ID assigned to the next process.
	nextTID ThreadID

	// initChildren holds processes started without a parent that have not
	// yet been waited for.
	initChildren map[ThreadID]*Task

	// taskWG counts live task goroutines.
	taskWG sync.WaitGroup

	haltOnce sync.Once
	halted   chan struct{}
}

// Init initializes a Kernel with no running processes.
func (k *Kernel) Init(args InitKernelArgs) error {
	if args.Console == nil {
		return fmt.Errorf("Console is nil")
	}
	if args.Filesystem == nil {
		return fmt.Errorf("Filesystem is nil")
	}
	if args.Loader == nil {
		return fmt.Errorf("Loader is nil")
	}
	if args.SyscallTable == nil {
		return fmt.Errorf("SyscallTable is nil")
	}
	if args.StackPages < 0 || args.DataPages < 0 {
		return fmt.Errorf("invalid address space size: %d stack pages, %d data pages", args.StackPages, args.DataPages)
	}
	k.console = args.Console
	k.fs = args.Filesystem
	k.loader = args.Loader
	k.table = args.SyscallTable
	k.stackPages = args.StackPages
	if k.stackPages == 0 {
		k.stackPages = DefaultStackPages
	}
	k.dataPages = args.DataPages
	if k.dataPages == 0 {
		k.dataPages = DefaultDataPages
	}
	k.strace = args.Strace
	k.fatalLog = log.BasicRateLimitedLogger(time.Second)
	k.tasks = make(map[ThreadID]*Task)
	k.nextTID = 1
	k.initChildren = make(map[ThreadID]*Task)
	k.halted = make(chan struct{})
	return nil
}

// Console returns the machine console.
func (k *Kernel) Console() Console {
	return k.console
}

// withFS runs fn with the filesystem lock held.
func (k *Kernel) withFS(fn func(fs fs.Filesystem)) {
	k.fsMu.Lock()
	defer k.fsMu.Unlock()
	fn(k.fs)
}

// PowerOff halts the machine. Running processes stop at their next trap
// without exiting. PowerOff is idempotent.
func (k *Kernel) PowerOff() {
	k.haltOnce.Do(func() {
		log.Infof("Powering off")
		close(k.halted)
	})
}

// Halted returns a channel that is closed when the machine powers off.
func (k *Kernel) Halted() <-chan struct{} {
	return k.halted
}

// IsHalted returns true if the machine has powered off.
func (k *Kernel) IsHalted() bool {
	select {
	case <-k.halted:
		return true
	default:
		return false
	}
}

// Start runs cmdline as a process with no parent, as if by exec. The
// returned ID can be passed to WaitExited.
func (k *Kernel) Start(cmdline string) (ThreadID, error) {
	return k.Exec(nil, cmdline)
}

// WaitExited blocks until the parentless process tid exits, and returns its
// exit status. It returns ECHILD if tid was not started by Start or has
// already been waited for, and false for ok if the machine powered off
// first.
func (k *Kernel) WaitExited(tid ThreadID) (status int32, ok bool, err error) {
	k.tasksMu.Lock()
	child, err := takeChildLocked(k.initChildren, tid)
	k.tasksMu.Unlock()
	if err != nil {
		return 0, false, err
	}
	select {
	case <-child.exited:
		return child.status(), true, nil
	default:
	}
	select {
	case <-child.exited:
		return child.status(), true, nil
	case <-k.halted:
		return 0, false, nil
	}
}

// WaitIdle blocks until every task goroutine has returned.
func (k *Kernel) WaitIdle() {
	k.taskWG.Wait()
}

// NumTasks returns the number of processes that have not exited.
func (k *Kernel) NumTasks() int {
	k.tasksMu.Lock()
	defer k.tasksMu.Unlock()
	return len(k.tasks)
}

// takeChildLocked removes tid from children and returns it. Each child can
// be taken once.
//
// Preconditions: k.tasksMu must be locked.
func takeChildLocked(children map[ThreadID]*Task, tid ThreadID) (*Task, error) {
	child, ok := children[tid]
	if !ok {
		return nil, kernerr.ECHILD
	}
	delete(children, tid)
	return child, nil
}
