// Copyright 2019 The gVisor Authors.
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

// Package memfs provides an in-memory disk: a flat namespace of fixed-size
// files. The name index is the sole source of truth for the state of the
// filesystem.
//
// A file's size is set when it is created and never changes. Removing a file
// unlinks its name, but its data stays alive until the last open handle is
// closed.
//
// Lock order:
//
//	Filesystem.mu
//	  regularFileFD.mu
package memfs

import (
	"fmt"
	"sync"

	"github.com/google/btree"
	"pintos.dev/userprog/pkg/errors/kernerr"
	"pintos.dev/userprog/pkg/sentry/fs"
)

// btreeDegree is the degree of the name index.
const btreeDegree = 8

// DefaultCapacity is the size of a disk built without an explicit Capacity,
// the default Pintos filesystem disk.
const DefaultCapacity = 2 << 20

// Options configures a Filesystem.
type Options struct {
	// Capacity bounds the total size of all live files, in bytes. Zero means
	// DefaultCapacity. A disk is never unbounded: file data is allocated when
	// a file is created.
	Capacity int64
}

// Filesystem implements fs.Filesystem.
type Filesystem struct {
	opts Options

	// mu protects the fields below and every inode's refs and unlinked.
	mu sync.Mutex

	// files indexes dentries by name.
	files *btree.BTreeG[*dentry]

	// used is the total size of all live inodes, linked or not.
	used int64
}

var _ fs.Filesystem = (*Filesystem)(nil)
var _ fs.Lister = (*Filesystem)(nil)

// dentry binds a name to an inode.
type dentry struct {
	name  string
	inode *inode
}

func dentryLess(a, b *dentry) bool {
	return a.name < b.name
}

// inode is a file's contents.
type inode struct {
	// data is immutable in length.
	data []byte

	// refs counts open handles.
	refs int

	// unlinked is true once the name has been removed.
	unlinked bool
}

// New returns an empty filesystem.
func New(opts Options) *Filesystem {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	return &Filesystem{
		opts:  opts,
		files: btree.NewG[*dentry](btreeDegree, dentryLess),
	}
}

var checkName = fs.CheckName

// Preconditions: fs.mu must be locked.
func (fs *Filesystem) lookupLocked(name string) (*dentry, bool) {
	return fs.files.Get(&dentry{name: name})
}

// Open implements fs.Filesystem.Open.
func (fs *Filesystem) Open(name string) (fs.File, error) {
	if err := checkName(name); err != nil {
		return nil, kernerr.ENOENT
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	d, ok := fs.lookupLocked(name)
	if !ok {
		return nil, kernerr.ENOENT
	}
	d.inode.refs++
	return &regularFileFD{fs: fs, inode: d.inode}, nil
}

// Create implements fs.Filesystem.Create.
func (fs *Filesystem) Create(name string, size int64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	_, err := fs.createLocked(name, size)
	return err
}

// Preconditions: fs.mu must be locked.
func (fs *Filesystem) createLocked(name string, size int64) (*inode, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, kernerr.EINVAL
	}
	if _, ok := fs.lookupLocked(name); ok {
		return nil, kernerr.EEXIST
	}
	if size > fs.opts.Capacity-fs.used {
		return nil, kernerr.ENOSPC
	}
	fs.used += size
	i := &inode{data: make([]byte, size)}
	fs.files.ReplaceOrInsert(&dentry{name: name, inode: i})
	return i, nil
}

// Remove implements fs.Filesystem.Remove.
func (fs *Filesystem) Remove(name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	d, ok := fs.files.Delete(&dentry{name: name})
	if !ok {
		return kernerr.ENOENT
	}
	d.inode.unlinked = true
	fs.maybeFreeLocked(d.inode)
	return nil
}

// Preconditions: fs.mu must be locked.
func (fs *Filesystem) maybeFreeLocked(i *inode) {
	if i.unlinked && i.refs == 0 {
		fs.used -= int64(len(i.data))
		i.data = nil
	}
}

// List implements fs.Lister.List.
func (fs *Filesystem) List() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	names := make([]string, 0, fs.files.Len())
	fs.files.Ascend(func(d *dentry) bool {
		names = append(names, d.name)
		return true
	})
	return names
}

// Put creates name with the given contents. The file's size is len(data).
func (fs *Filesystem) Put(name string, data []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	i, err := fs.createLocked(name, int64(len(data)))
	if err != nil {
		return err
	}
	copy(i.data, data)
	return nil
}

// ReadFile returns a copy of name's contents.
func (fs *Filesystem) ReadFile(name string) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	d, ok := fs.lookupLocked(name)
	if !ok {
		return nil, kernerr.ENOENT
	}
	return append([]byte(nil), d.inode.data...), nil
}

// Used returns the number of bytes held by live files.
func (fs *Filesystem) Used() int64 {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.used
}

// regularFileFD implements fs.File.
type regularFileFD struct {
	fs    *Filesystem
	inode *inode

	mu     sync.Mutex
	off    int64
	closed bool
}

// Read implements fs.File.Read.
func (fd *regularFileFD) Read(dst []byte) (int, error) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	if fd.closed {
		return 0, kernerr.EBADF
	}
	if fd.off >= int64(len(fd.inode.data)) {
		return 0, nil
	}
	n := copy(dst, fd.inode.data[fd.off:])
	fd.off += int64(n)
	return n, nil
}

// Write implements fs.File.Write.
func (fd *regularFileFD) Write(src []byte) (int, error) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	if fd.closed {
		return 0, kernerr.EBADF
	}
	if fd.off >= int64(len(fd.inode.data)) {
		return 0, nil
	}
	n := copy(fd.inode.data[fd.off:], src)
	fd.off += int64(n)
	return n, nil
}

// Length implements fs.File.Length.
func (fd *regularFileFD) Length() int64 {
	return int64(len(fd.inode.data))
}

// Seek implements fs.File.Seek.
func (fd *regularFileFD) Seek(pos int64) {
	if pos < 0 {
		pos = 0
	}
	fd.mu.Lock()
	fd.off = pos
	fd.mu.Unlock()
}

// Tell implements fs.File.Tell.
func (fd *regularFileFD) Tell() int64 {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	return fd.off
}

// Close implements fs.File.Close.
func (fd *regularFileFD) Close() error {
	fd.fs.mu.Lock()
	defer fd.fs.mu.Unlock()
	fd.mu.Lock()
	defer fd.mu.Unlock()
	if fd.closed {
		return kernerr.EBADF
	}
	fd.closed = true
	fd.inode.refs--
	fd.fs.maybeFreeLocked(fd.inode)
	return nil
}

// String implements fmt.Stringer.String.
func (fd *regularFileFD) String() string {
	return fmt.Sprintf("memfs.fd{size=%d off=%d}", len(fd.inode.data), fd.Tell())
}
