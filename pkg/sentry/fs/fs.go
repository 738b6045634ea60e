// Copyright 2018 Google Inc.
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

// Package fs defines the interface between the kernel and the disk.
//
// Implementations are not required to be safe for concurrent use. The kernel
// serializes every call into a Filesystem or File with its filesystem lock.
package fs

import (
	"strings"

	"pintos.dev/userprog/pkg/errors/kernerr"
)

// NameMax is the longest file name a disk accepts.
const NameMax = 14

// CheckName returns ENOENT for an empty name, ENAMETOOLONG for a name longer
// than NameMax, and EINVAL for a name that is not a single path component.
func CheckName(name string) error {
	switch {
	case name == "":
		return kernerr.ENOENT
	case len(name) > NameMax:
		return kernerr.ENAMETOOLONG
	case name == "." || name == ".." || strings.ContainsRune(name, '/') || strings.IndexByte(name, 0) >= 0:
		return kernerr.EINVAL
	}
	return nil
}

// Filesystem is a flat namespace of fixed-size files.
type Filesystem interface {
	// Open opens the file at path. It returns ENOENT if no such file exists.
	Open(path string) (File, error)

	// Create creates a file of the given initial size. It returns EEXIST if
	// path already names a file, and the CheckName error if path is not a
	// valid name.
	Create(path string, size int64) error

	// Remove deletes path from the namespace. Handles already open on the
	// file remain usable until closed. It returns ENOENT if no such file
	// exists.
	Remove(path string) error
}

// File is an open file handle with its own position.
type File interface {
	// Read reads up to len(dst) bytes from the current position and
	// advances it. It returns 0 at or past the end of the file.
	Read(dst []byte) (int, error)

	// Write writes up to len(src) bytes at the current position and advances
	// it. Writes never extend a file; bytes that would fall past the end are
	// not written.
	Write(src []byte) (int, error)

	// Length returns the size of the file in bytes.
	Length() int64

	// Seek sets the position. Positions past the end are allowed.
	Seek(pos int64)

	// Tell returns the position.
	Tell() int64

	// Close releases the handle. A File must be closed exactly once.
	Close() error
}

// Lister is implemented by filesystems that can enumerate their files.
type Lister interface {
	// List returns the names of all files, in order.
	List() []string
}
