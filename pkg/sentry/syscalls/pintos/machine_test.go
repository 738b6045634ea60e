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

package pintos_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"pintos.dev/userprog/pkg/sentry/devices/ttydev"
	"pintos.dev/userprog/pkg/sentry/fs"
	"pintos.dev/userprog/pkg/sentry/fsimpl/memfs"
	"pintos.dev/userprog/pkg/sentry/kernel"
	"pintos.dev/userprog/pkg/sentry/loader"
	"pintos.dev/userprog/pkg/sentry/syscalls/pintos"
	"pintos.dev/userprog/pkg/ulib"
)

// syncBuffer is a bytes.Buffer safe for use by the console and the test at
// once.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// machine is a booted kernel with an in-memory disk and a captured console.
type machine struct {
	k     *kernel.Kernel
	disk  *memfs.Filesystem
	out   *syncBuffer
	progs *loader.Registry
}

type machineOpts struct {
	stdin string

	// fs replaces the memfs disk as the kernel's filesystem. The memfs disk
	// is still created and may be wrapped.
	fs func(disk *memfs.Filesystem) fs.Filesystem
}

func newMachine(t *testing.T, opts machineOpts) *machine {
	t.Helper()
	m := &machine{
		k:     new(kernel.Kernel),
		disk:  memfs.New(memfs.Options{}),
		out:   new(syncBuffer),
		progs: loader.NewRegistry(),
	}
	var disk fs.Filesystem = m.disk
	if opts.fs != nil {
		disk = opts.fs(m.disk)
	}
	if err := m.k.Init(kernel.InitKernelArgs{
		Console:      ttydev.New(strings.NewReader(opts.stdin), m.out),
		Filesystem:   disk,
		Loader:       m.progs,
		SyscallTable: pintos.Table,
	}); err != nil {
		t.Fatalf("kernel Init failed: %v", err)
	}
	return m
}

// register adds a user program.
func (m *machine) register(name string, fn func(p *ulib.Process) int) {
	m.progs.Register(name, ulib.Main(fn))
}

// put adds a file to the disk.
func (m *machine) put(t *testing.T, name, data string) {
	t.Helper()
	if err := m.disk.Put(name, []byte(data)); err != nil {
		t.Fatalf("Put(%q) failed: %v", name, err)
	}
}

// run starts cmdline, waits for it and every process it started, and
// returns its exit status.
func (m *machine) run(t *testing.T, cmdline string) int32 {
	t.Helper()
	tid, err := m.k.Start(cmdline)
	if err != nil {
		t.Fatalf("Start(%q) failed: %v", cmdline, err)
	}
	status, ok, err := m.k.WaitExited(tid)
	if err != nil {
		t.Fatalf("WaitExited(%d) failed: %v", tid, err)
	}
	m.k.WaitIdle()
	if !ok {
		return -1
	}
	return status
}

// console returns everything written to the console so far.
func (m *machine) console() string {
	return m.out.String()
}
