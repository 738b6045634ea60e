// Copyright 2020 The gVisor Authors.
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

// Package host provides a disk backed by a directory on the host. Each file
// in the disk is a regular file directly inside that directory.
//
// The semantics match memfs: files are fixed-size, handles have independent
// positions, and a removed file stays readable through open handles (the
// host keeps an unlinked inode alive while a descriptor refers to it).
package host

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	"pintos.dev/userprog/pkg/errors/kernerr"
	"pintos.dev/userprog/pkg/log"
	"pintos.dev/userprog/pkg/sentry/fs"
)

// fileMode is the permission of files created on the host.
const fileMode = 0o644

// Filesystem implements fs.Filesystem over a host directory.
type Filesystem struct {
	// dir is the host path of the directory. dir is immutable.
	dir string

	// dirFD is an O_DIRECTORY descriptor for dir. All operations are
	// relative to it, so renaming dir on the host does not affect the disk.
	dirFD int
}

var _ fs.Filesystem = (*Filesystem)(nil)

// New opens dir as a disk. The directory must already exist.
func New(dir string) (*Filesystem, error) {
	dirFD, err := retryEINTR(func() (int, error) {
		return unix.Open(dir, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "opening disk directory %q", dir)
	}
	log.Debugf("Opened host disk %q as FD %d", dir, dirFD)
	return &Filesystem{dir: dir, dirFD: dirFD}, nil
}

// Dir returns the host directory backing fs.
func (fs *Filesystem) Dir() string {
	return fs.dir
}

// Release closes the directory descriptor. Open handles remain usable.
func (fs *Filesystem) Release() error {
	if err := unix.Close(fs.dirFD); err != nil {
		return errors.Wrapf(err, "closing disk directory %q", fs.dir)
	}
	return nil
}

// Open implements fs.Filesystem.Open.
func (fs *Filesystem) Open(name string) (fs.File, error) {
	if err := checkName(name); err != nil {
		return nil, kernerr.ENOENT
	}
	hostFD, err := retryEINTR(func() (int, error) {
		return unix.Openat(fs.dirFD, name, unix.O_RDWR|unix.O_CLOEXEC|unix.O_NOFOLLOW, 0)
	})
	if err != nil {
		return nil, kernerr.ErrorFromUnix(err)
	}
	var st unix.Stat_t
	if err := unix.Fstat(hostFD, &st); err != nil {
		unix.Close(hostFD)
		return nil, kernerr.ErrorFromUnix(err)
	}
	if !isRegular(st.Mode) {
		unix.Close(hostFD)
		return nil, kernerr.EISDIR
	}
	return &fileDescription{hostFD: hostFD, size: st.Size}, nil
}

// Create implements fs.Filesystem.Create.
func (fs *Filesystem) Create(name string, size int64) error {
	if err := checkName(name); err != nil {
		return err
	}
	if size < 0 {
		return kernerr.EINVAL
	}
	hostFD, err := retryEINTR(func() (int, error) {
		return unix.Openat(fs.dirFD, name, unix.O_RDWR|unix.O_CREAT|unix.O_EXCL|unix.O_CLOEXEC|unix.O_NOFOLLOW, fileMode)
	})
	if err != nil {
		return kernerr.ErrorFromUnix(err)
	}
	defer unix.Close(hostFD)
	if err := unix.Ftruncate(hostFD, size); err != nil {
		log.Warningf("Failed to size %q to %d bytes: %v", name, size, err)
		unix.Unlinkat(fs.dirFD, name, 0)
		return kernerr.ErrorFromUnix(err)
	}
	return nil
}

// Remove implements fs.Filesystem.Remove.
func (fs *Filesystem) Remove(name string) error {
	if err := checkName(name); err != nil {
		return kernerr.ENOENT
	}
	if err := unix.Unlinkat(fs.dirFD, name, 0); err != nil {
		return kernerr.ErrorFromUnix(err)
	}
	return nil
}

// fileDescription implements fs.File for a host file.
//
// Not safe for concurrent use; the kernel serializes access.
type fileDescription struct {
	// hostFD is the host descriptor, or -1 after Close.
	hostFD int

	// size is the file's length, fixed at Open.
	size int64

	off int64
}

// Read implements fs.File.Read.
func (fd *fileDescription) Read(dst []byte) (int, error) {
	if fd.hostFD < 0 {
		return 0, kernerr.EBADF
	}
	if int64(len(dst)) > fd.size-fd.off {
		if fd.off >= fd.size {
			return 0, nil
		}
		dst = dst[:fd.size-fd.off]
	}
	n, err := retryEINTR(func() (int, error) {
		return unix.Pread(fd.hostFD, dst, fd.off)
	})
	if n > 0 {
		fd.off += int64(n)
	}
	if err != nil {
		return max(n, 0), kernerr.ErrorFromUnix(err)
	}
	return n, nil
}

// Write implements fs.File.Write.
func (fd *fileDescription) Write(src []byte) (int, error) {
	if fd.hostFD < 0 {
		return 0, kernerr.EBADF
	}
	if int64(len(src)) > fd.size-fd.off {
		if fd.off >= fd.size {
			return 0, nil
		}
		src = src[:fd.size-fd.off]
	}
	n, err := retryEINTR(func() (int, error) {
		return unix.Pwrite(fd.hostFD, src, fd.off)
	})
	if n > 0 {
		fd.off += int64(n)
	}
	if err != nil {
		return max(n, 0), kernerr.ErrorFromUnix(err)
	}
	return n, nil
}

// Length implements fs.File.Length.
func (fd *fileDescription) Length() int64 {
	return fd.size
}

// Seek implements fs.File.Seek.
func (fd *fileDescription) Seek(pos int64) {
	fd.off = max(pos, 0)
}

// Tell implements fs.File.Tell.
func (fd *fileDescription) Tell() int64 {
	return fd.off
}

// Close implements fs.File.Close.
func (fd *fileDescription) Close() error {
	if fd.hostFD < 0 {
		return kernerr.EBADF
	}
	err := unix.Close(fd.hostFD)
	fd.hostFD = -1
	if err != nil {
		return kernerr.ErrorFromUnix(err)
	}
	return nil
}

// String implements fmt.Stringer.String.
func (fd *fileDescription) String() string {
	return fmt.Sprintf("host.fd{fd=%d size=%d off=%d}", fd.hostFD, fd.size, fd.off)
}
