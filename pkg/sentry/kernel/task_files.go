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
	"pintos.dev/userprog/pkg/abi/pintos"
	"pintos.dev/userprog/pkg/sentry/fs"
)

// The operations in this file implement the descriptor-level semantics of
// the file syscalls. Failures the process is expected to handle are reported
// as sentinel values. The filesystem lock is held only around the call into
// the filesystem or file; callers copy to and from user memory before and
// after.

// CreateFile creates path with the given size.
func (t *Task) CreateFile(path string, size int64) bool {
	var err error
	t.k.withFS(func(disk fs.Filesystem) {
		err = disk.Create(path, size)
	})
	if err != nil {
		t.Debugf("create(%q, %d): %v", path, size, err)
		return false
	}
	return true
}

// RemoveFile removes path.
func (t *Task) RemoveFile(path string) bool {
	var err error
	t.k.withFS(func(disk fs.Filesystem) {
		err = disk.Remove(path)
	})
	if err != nil {
		t.Debugf("remove(%q): %v", path, err)
		return false
	}
	return true
}

// OpenFile opens path and returns a new descriptor for it, or -1.
func (t *Task) OpenFile(path string) int32 {
	var (
		file fs.File
		err  error
	)
	t.k.withFS(func(disk fs.Filesystem) {
		file, err = disk.Open(path)
	})
	if err != nil {
		t.Debugf("open(%q): %v", path, err)
		return -1
	}
	fd, err := t.fdTable.NewFD(file)
	if err != nil {
		t.Debugf("open(%q): %v", path, err)
		t.k.withFS(func(fs.Filesystem) {
			err = file.Close()
		})
		if err != nil {
			t.Warningf("open(%q): closing unused file: %v", path, err)
		}
		return -1
	}
	return fd
}

// CloseFD closes fd. Closing a descriptor that is not open does nothing.
func (t *Task) CloseFD(fd int32) {
	file, ok := t.fdTable.Remove(fd)
	if !ok {
		return
	}
	var err error
	t.k.withFS(func(fs.Filesystem) {
		err = file.Close()
	})
	if err != nil {
		t.Warningf("close(%d): %v", fd, err)
	}
}

// FileSize returns the size of the file open as fd, or -1.
func (t *Task) FileSize(fd int32) int64 {
	file, ok := t.fdTable.Get(fd)
	if !ok {
		return -1
	}
	var n int64
	t.k.withFS(func(fs.Filesystem) {
		n = file.Length()
	})
	return n
}

// Seek sets the position of fd. Seeking a descriptor that is not open does
// nothing.
func (t *Task) Seek(fd int32, pos int64) {
	file, ok := t.fdTable.Get(fd)
	if !ok {
		return
	}
	t.k.withFS(func(fs.Filesystem) {
		file.Seek(pos)
	})
}

// Tell returns the position of fd, or -1.
func (t *Task) Tell(fd int32) int64 {
	file, ok := t.fdTable.Get(fd)
	if !ok {
		return -1
	}
	var pos int64
	t.k.withFS(func(fs.Filesystem) {
		pos = file.Tell()
	})
	return pos
}

// ReadFD reads into dst from fd and returns the number of bytes read.
// Reading the keyboard fills dst one key at a time. Reading the console
// returns 0, and reading a descriptor that is not open returns -1.
func (t *Task) ReadFD(fd int32, dst []byte) int64 {
	switch fd {
	case pintos.STDIN_FILENO:
		for i := range dst {
			dst[i] = t.k.console.ReadChar()
		}
		return int64(len(dst))
	case pintos.STDOUT_FILENO:
		return 0
	}
	file, ok := t.fdTable.Get(fd)
	if !ok {
		return -1
	}
	var (
		n   int
		err error
	)
	t.k.withFS(func(fs.Filesystem) {
		n, err = file.Read(dst)
	})
	if err != nil {
		t.Debugf("read(%d): %v", fd, err)
		if n == 0 {
			return -1
		}
	}
	return int64(n)
}

// WriteFD writes src to fd and returns the number of bytes written. The
// console receives src in a single write. Writing the keyboard or a
// descriptor that is not open returns 0.
func (t *Task) WriteFD(fd int32, src []byte) int64 {
	switch fd {
	case pintos.STDOUT_FILENO:
		t.k.console.Write(src)
		return int64(len(src))
	case pintos.STDIN_FILENO:
		return 0
	}
	file, ok := t.fdTable.Get(fd)
	if !ok {
		return 0
	}
	var (
		n   int
		err error
	)
	t.k.withFS(func(fs.Filesystem) {
		n, err = file.Write(src)
	})
	if err != nil {
		t.Debugf("write(%d): %v", fd, err)
	}
	return int64(n)
}
