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

// Package kernerr contains the kernel's error values, exported as *Error
// pointers so that they can be compared by identity.
package kernerr

import (
	goerrors "errors"

	"golang.org/x/sys/unix"
	"pintos.dev/userprog/pkg/errors"
)

var (
	ENOENT  = errors.New(errors.Errno(unix.ENOENT), "no such file or directory")
	E2BIG   = errors.New(errors.Errno(unix.E2BIG), "argument list too long")
	ENOEXEC = errors.New(errors.Errno(unix.ENOEXEC), "exec format error")
	EBADF   = errors.New(errors.Errno(unix.EBADF), "bad file number")
	ECHILD  = errors.New(errors.Errno(unix.ECHILD), "no child processes")
	EFAULT  = errors.New(errors.Errno(unix.EFAULT), "bad address")
	EEXIST  = errors.New(errors.Errno(unix.EEXIST), "file exists")
	EISDIR  = errors.New(errors.Errno(unix.EISDIR), "is a directory")
	EINVAL  = errors.New(errors.Errno(unix.EINVAL), "invalid argument")
	ENOSPC  = errors.New(errors.Errno(unix.ENOSPC), "no space left on device")
	EIO     = errors.New(errors.Errno(unix.EIO), "I/O error")
	ENOSYS  = errors.New(errors.Errno(unix.ENOSYS), "invalid system call number")

	// ENAMETOOLONG is returned for string arguments that run past
	// MaxStringLen without a terminator.
	ENAMETOOLONG = errors.New(errors.Errno(unix.ENAMETOOLONG), "file name too long")
)

var errnoToError = map[unix.Errno]*errors.Error{
	unix.ENOENT:       ENOENT,
	unix.E2BIG:        E2BIG,
	unix.ENOEXEC:      ENOEXEC,
	unix.EBADF:        EBADF,
	unix.ECHILD:       ECHILD,
	unix.EFAULT:       EFAULT,
	unix.EEXIST:       EEXIST,
	unix.EISDIR:       EISDIR,
	unix.EINVAL:       EINVAL,
	unix.ENOSPC:       ENOSPC,
	unix.EIO:          EIO,
	unix.ENOSYS:       ENOSYS,
	unix.ENAMETOOLONG: ENAMETOOLONG,
}

// ErrorFromUnix converts a host error to a kernel error. Errors that are not
// a unix.Errno, or are an errno with no kernel equivalent, map to EIO.
func ErrorFromUnix(err error) *errors.Error {
	if err == nil {
		return nil
	}
	var errno unix.Errno
	if goerrors.As(err, &errno) {
		if e, ok := errnoToError[errno]; ok {
			return e
		}
	}
	return EIO
}

// Equals compares a kernel error to a generic error, unwrapping err as
// needed.
func Equals(e *errors.Error, err error) bool {
	var ke *errors.Error
	if goerrors.As(err, &ke) {
		return e == ke
	}
	return false
}
