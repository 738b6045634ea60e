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

package kernel

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"pintos.dev/userprog/pkg/abi/pintos"
	"pintos.dev/userprog/pkg/errors/kernerr"
	"pintos.dev/userprog/pkg/log"
	"pintos.dev/userprog/pkg/sentry/fs"
)

// firstFD is the first descriptor handed out for files. 0 and 1 are the
// keyboard and console, which have no table entries.
const firstFD = pintos.STDOUT_FILENO + 1

// FDTable maps a process's descriptors to open files.
//
// Descriptors are allocated in increasing order and never reused for the
// life of the table. An FDTable belongs to one task and is only accessed from
// its task goroutine, so it has no lock of its own. The files themselves are
// only touched with the kernel's filesystem lock held.
type FDTable struct {
	k *Kernel

	// next is the descriptor the next NewFD returns.
	next int32

	// files holds the open files.
	files map[int32]fs.File
}

// NewFDTable allocates a new, empty FDTable.
func (k *Kernel) NewFDTable() *FDTable {
	return &FDTable{
		k:     k,
		next:  firstFD,
		files: make(map[int32]fs.File),
	}
}

// NewFD installs file and returns its descriptor. It returns ENOSPC once the
// descriptor space is exhausted.
func (f *FDTable) NewFD(file fs.File) (int32, error) {
	if f.next == math.MaxInt32 {
		return -1, kernerr.ENOSPC
	}
	fd := f.next
	f.next++
	f.files[fd] = file
	return fd, nil
}

// Get returns the file for fd, or false if fd is not open. The keyboard and
// console descriptors are never in the table.
func (f *FDTable) Get(fd int32) (fs.File, bool) {
	if fd < firstFD {
		return nil, false
	}
	file, ok := f.files[fd]
	return file, ok
}

// Remove removes fd from the table and returns its file, which the caller
// must close.
func (f *FDTable) Remove(fd int32) (fs.File, bool) {
	file, ok := f.Get(fd)
	if ok {
		delete(f.files, fd)
	}
	return file, ok
}

// Size returns the number of open descriptors.
func (f *FDTable) Size() int {
	return len(f.files)
}

// fds returns the open descriptors in increasing order.
func (f *FDTable) fds() []int32 {
	fds := make([]int32, 0, len(f.files))
	for fd := range f.files {
		fds = append(fds, fd)
	}
	sort.Slice(fds, func(i, j int) bool { return fds[i] < fds[j] })
	return fds
}

// destroy closes every open file and empties the table. Each file is closed
// under the filesystem lock.
func (f *FDTable) destroy() {
	for _, fd := range f.fds() {
		file, _ := f.Remove(fd)
		f.k.withFS(func(fs.Filesystem) {
			if err := file.Close(); err != nil {
				log.Warningf("Closing fd %d on exit: %v", fd, err)
			}
		})
	}
}

// String implements fmt.Stringer.String.
func (f *FDTable) String() string {
	var b bytes.Buffer
	for _, fd := range f.fds() {
		b.WriteString(fmt.Sprintf("\tfd:%d => %v\n", fd, f.files[fd]))
	}
	return b.String()
}
