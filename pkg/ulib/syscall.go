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

package ulib

import (
	"fmt"

	"pintos.dev/userprog/pkg/abi/pintos"
	"pintos.dev/userprog/pkg/hostarch"
)

// Halt powers off the machine. It does not return.
func (p *Process) Halt() {
	p.Syscall(pintos.SYS_HALT)
	panic("halt returned")
}

// Exit terminates the process with status. It does not return.
func (p *Process) Exit(status int32) {
	p.Syscall(pintos.SYS_EXIT, uint32(status))
	panic("exit returned")
}

// Exec runs cmdline as a child process and returns its ID, or
// pintos.TID_ERROR.
func (p *Process) Exec(cmdline string) int32 {
	defer p.Release(p.Mark())
	return int32(p.Syscall(pintos.SYS_EXEC, uint32(p.PutString(cmdline))))
}

// Wait waits for child pid and returns its exit status, or -1.
func (p *Process) Wait(pid int32) int32 {
	return int32(p.Syscall(pintos.SYS_WAIT, uint32(pid)))
}

// Create creates file with the given size.
func (p *Process) Create(file string, size uint32) bool {
	defer p.Release(p.Mark())
	return p.Syscall(pintos.SYS_CREATE, uint32(p.PutString(file)), size) != 0
}

// Remove removes file.
func (p *Process) Remove(file string) bool {
	defer p.Release(p.Mark())
	return p.Syscall(pintos.SYS_REMOVE, uint32(p.PutString(file))) != 0
}

// Open opens file and returns a descriptor, or -1.
func (p *Process) Open(file string) int32 {
	defer p.Release(p.Mark())
	return int32(p.Syscall(pintos.SYS_OPEN, uint32(p.PutString(file))))
}

// Filesize returns the size of fd, or -1.
func (p *Process) Filesize(fd int32) int32 {
	return int32(p.Syscall(pintos.SYS_FILESIZE, uint32(fd)))
}

// Read reads up to size bytes from fd into user memory at buf.
func (p *Process) Read(fd int32, buf hostarch.Addr, size uint32) int32 {
	return int32(p.Syscall(pintos.SYS_READ, uint32(fd), uint32(buf), size))
}

// Write writes size bytes from user memory at buf to fd.
func (p *Process) Write(fd int32, buf hostarch.Addr, size uint32) int32 {
	return int32(p.Syscall(pintos.SYS_WRITE, uint32(fd), uint32(buf), size))
}

// Seek sets the position of fd.
func (p *Process) Seek(fd int32, pos uint32) {
	p.Syscall(pintos.SYS_SEEK, uint32(fd), pos)
}

// Tell returns the position of fd.
func (p *Process) Tell(fd int32) uint32 {
	return p.Syscall(pintos.SYS_TELL, uint32(fd))
}

// Close closes fd.
func (p *Process) Close(fd int32) {
	p.Syscall(pintos.SYS_CLOSE, uint32(fd))
}

// ReadBytes reads up to n bytes from fd. It returns the bytes read and the
// raw result of read.
func (p *Process) ReadBytes(fd int32, n int) ([]byte, int32) {
	defer p.Release(p.Mark())
	buf := p.Alloc(n)
	ret := p.Read(fd, buf, uint32(n))
	if ret <= 0 {
		return nil, ret
	}
	return p.Load(buf, int(ret)), ret
}

// WriteBytes writes b to fd and returns the result of write.
func (p *Process) WriteBytes(fd int32, b []byte) int32 {
	defer p.Release(p.Mark())
	return p.Write(fd, p.PutBytes(b), uint32(len(b)))
}

// Printf formats to the console with one write.
func (p *Process) Printf(format string, v ...any) {
	p.WriteBytes(pintos.STDOUT_FILENO, []byte(fmt.Sprintf(format, v...)))
}
