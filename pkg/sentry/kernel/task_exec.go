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
	"strings"

	"pintos.dev/userprog/pkg/abi/pintos"
	"pintos.dev/userprog/pkg/cleanup"
	"pintos.dev/userprog/pkg/errors/kernerr"
	"pintos.dev/userprog/pkg/hostarch"
	"pintos.dev/userprog/pkg/log"
	"pintos.dev/userprog/pkg/sentry/mm"
	"pintos.dev/userprog/pkg/usermem"
)

// Exec starts cmdline as a child of parent, or as a parentless process if
// parent is nil. The first word of cmdline names the program; all words are
// passed to it as argv. Exec returns once the new process is loaded, before
// it runs.
//
// Exec does not take the filesystem lock: programs come from the loader, not
// the disk.
func (k *Kernel) Exec(parent *Task, cmdline string) (ThreadID, error) {
	argv := strings.Fields(cmdline)
	if len(argv) == 0 {
		return pintos.TID_ERROR, kernerr.ENOEXEC
	}
	entry, ok := k.loader.Load(argv[0])
	if !ok {
		return pintos.TID_ERROR, kernerr.ENOENT
	}

	t, err := k.newTask(parent, processName(argv[0]), entry)
	if err != nil {
		return pintos.TID_ERROR, err
	}
	cu := cleanup.Make(func() {
		k.unregisterTask(t)
	})
	defer cu.Clean()

	if err := k.loadImage(t, argv); err != nil {
		t.Debugf("Exec %q failed: %v", cmdline, err)
		return pintos.TID_ERROR, err
	}

	cu.Release()
	k.taskWG.Add(1)
	go t.run()
	return t.tid, nil
}

// processName derives a process name from a program name.
func processName(prog string) string {
	if len(prog) > pintos.MaxNameLen {
		return prog[:pintos.MaxNameLen]
	}
	return prog
}

// newTask allocates a Task and registers it as a child of parent.
func (k *Kernel) newTask(parent *Task, name string, entry EntryFn) (*Task, error) {
	t := &Task{
		k:          k,
		name:       name,
		entry:      entry,
		image:      mm.NewMemoryManager(),
		children:   make(map[ThreadID]*Task),
		exitStatus: -1,
		exited:     make(chan struct{}),
	}
	t.fdTable = k.NewFDTable()

	k.tasksMu.Lock()
	defer k.tasksMu.Unlock()
	if k.IsHalted() {
		return nil, kernerr.EINVAL
	}
	t.tid = k.nextTID
	k.nextTID++
	k.tasks[t.tid] = t
	if parent != nil {
		t.parent = parent
		parent.children[t.tid] = t
	} else {
		k.initChildren[t.tid] = t
	}
	return t, nil
}

// unregisterTask undoes newTask for a process that never ran.
func (k *Kernel) unregisterTask(t *Task) {
	k.tasksMu.Lock()
	defer k.tasksMu.Unlock()
	delete(k.tasks, t.tid)
	if t.parent != nil {
		delete(t.parent.children, t.tid)
	} else {
		delete(k.initChildren, t.tid)
	}
}

// loadImage maps t's data segment and stack and lays out argv on the stack.
func (k *Kernel) loadImage(t *Task, argv []string) error {
	t.dataBase = pintos.CodeBase
	t.dataEnd = t.dataBase + hostarch.Addr(k.dataPages*hostarch.PageSize)
	if err := t.image.MapRange(t.dataBase, uint32(t.dataEnd-t.dataBase)); err != nil {
		return fmt.Errorf("mapping data segment: %w", err)
	}
	stackBottom := hostarch.Addr(pintos.PhysBase) - hostarch.Addr(k.stackPages*hostarch.PageSize)
	if err := t.image.MapRange(stackBottom, uint32(pintos.PhysBase-stackBottom)); err != nil {
		return fmt.Errorf("mapping stack: %w", err)
	}
	sp, err := setupArgs(t.image, stackBottom, argv)
	if err != nil {
		return err
	}
	t.initialSP = sp
	return nil
}

// argStack builds the initial stack of a process, growing down from
// PhysBase.
type argStack struct {
	image  *mm.MemoryManager
	bottom hostarch.Addr
	sp     hostarch.Addr
}

func (s *argStack) reserve(n uint32) error {
	if uint32(s.sp-s.bottom) < n {
		return kernerr.E2BIG
	}
	s.sp -= hostarch.Addr(n)
	return nil
}

func (s *argStack) pushString(str string) (hostarch.Addr, error) {
	if err := s.reserve(uint32(len(str) + 1)); err != nil {
		return 0, err
	}
	if err := s.image.CopyOutString(s.sp, str); err != nil {
		return 0, err
	}
	return s.sp, nil
}

func (s *argStack) pushWord(v uint32) error {
	if err := s.reserve(hostarch.WordSize); err != nil {
		return err
	}
	return usermem.CopyWordOut(s.image, s.sp, v)
}

// setupArgs lays out argv the way the Pintos loader does:
//
//	argv[n-1] ... argv[0] strings
//	padding to a word boundary
//	argv[n] = NULL
//	argv[n-1] ... argv[0] pointers
//	argv
//	argc
//	fake return address  <- returned stack pointer
//
// It returns E2BIG if the arguments do not fit between bottom and PhysBase.
func setupArgs(image *mm.MemoryManager, bottom hostarch.Addr, argv []string) (hostarch.Addr, error) {
	s := argStack{image: image, bottom: bottom, sp: pintos.PhysBase}
	addrs := make([]hostarch.Addr, len(argv))
	for i := len(argv) - 1; i >= 0; i-- {
		addr, err := s.pushString(argv[i])
		if err != nil {
			return 0, err
		}
		addrs[i] = addr
	}
	if err := s.reserve(s.sp.PageOffset() % hostarch.WordSize); err != nil {
		return 0, err
	}
	if err := s.pushWord(0); err != nil {
		return 0, err
	}
	for i := len(addrs) - 1; i >= 0; i-- {
		if err := s.pushWord(uint32(addrs[i])); err != nil {
			return 0, err
		}
	}
	argvAddr := s.sp
	for _, w := range []uint32{uint32(argvAddr), uint32(len(argv)), 0} {
		if err := s.pushWord(w); err != nil {
			return 0, err
		}
	}
	if log.IsLogging(log.Debug) {
		log.Debugf("Initial stack for %q at %v: %d bytes", argv[0], s.sp, pintos.PhysBase-uint32(s.sp))
	}
	return s.sp, nil
}
