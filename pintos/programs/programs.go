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

// Package programs contains the built-in user programs. They use only the
// system call interface.
package programs

import (
	"strconv"

	"pintos.dev/userprog/pkg/sentry/loader"
	"pintos.dev/userprog/pkg/ulib"
)

// ioChunk is the buffer size used for file copies.
const ioChunk = 256

// Program is a built-in user program.
type Program struct {
	Name     string
	Synopsis string
	Main     func(p *ulib.Process) int
}

// All returns every built-in program.
func All() []Program {
	return []Program{
		{Name: "echo", Synopsis: "print the arguments", Main: Echo},
		{Name: "cat", Synopsis: "print files", Main: Cat},
		{Name: "cp", Synopsis: "copy a file to a new file", Main: Cp},
		{Name: "mkfile", Synopsis: "create an empty file of a given size", Main: Mkfile},
		{Name: "rm", Synopsis: "remove files", Main: Rm},
		{Name: "halt", Synopsis: "power off the machine", Main: Halt},
		{Name: "shell", Synopsis: "read and run command lines", Main: Shell},
	}
}

// Register adds every built-in program to r.
func Register(r *loader.Registry) {
	for _, prog := range All() {
		r.Register(prog.Name, ulib.Main(prog.Main))
	}
}

func usage(p *ulib.Process, msg string) int {
	p.Printf("usage: %s %s\n", p.Args()[0], msg)
	return 1
}

// Echo prints its arguments separated by spaces.
func Echo(p *ulib.Process) int {
	args := p.Args()
	line := make([]byte, 0, 64)
	for i, arg := range args[1:] {
		if i > 0 {
			line = append(line, ' ')
		}
		line = append(line, arg...)
	}
	line = append(line, '\n')
	p.WriteBytes(1, line)
	return 0
}

// copyFD copies from src to dst until src is exhausted. It returns false if a
// read fails or a write comes up short.
func copyFD(p *ulib.Process, dst, src int32) bool {
	defer p.Release(p.Mark())
	buf := p.Alloc(ioChunk)
	for {
		n := p.Read(src, buf, ioChunk)
		if n < 0 {
			return false
		}
		if n == 0 {
			return true
		}
		if p.Write(dst, buf, uint32(n)) != n {
			return false
		}
	}
}

// Cat prints each named file.
func Cat(p *ulib.Process) int {
	args := p.Args()
	if len(args) < 2 {
		return usage(p, "FILE...")
	}
	status := 0
	for _, name := range args[1:] {
		fd := p.Open(name)
		if fd < 0 {
			p.Printf("%s: open failed\n", name)
			status = 1
			continue
		}
		if !copyFD(p, 1, fd) {
			status = 1
		}
		p.Close(fd)
	}
	return status
}

// Cp copies a file to a newly created file of the same size.
func Cp(p *ulib.Process) int {
	args := p.Args()
	if len(args) != 3 {
		return usage(p, "SRC DST")
	}
	src := p.Open(args[1])
	if src < 0 {
		p.Printf("%s: open failed\n", args[1])
		return 1
	}
	defer p.Close(src)
	if !p.Create(args[2], uint32(p.Filesize(src))) {
		p.Printf("%s: create failed\n", args[2])
		return 1
	}
	dst := p.Open(args[2])
	if dst < 0 {
		p.Printf("%s: open failed\n", args[2])
		return 1
	}
	defer p.Close(dst)
	if !copyFD(p, dst, src) {
		p.Printf("%s: copy failed\n", args[1])
		return 1
	}
	return 0
}

// Mkfile creates a zero-filled file.
func Mkfile(p *ulib.Process) int {
	args := p.Args()
	if len(args) != 3 {
		return usage(p, "NAME SIZE")
	}
	size, err := strconv.ParseUint(args[2], 10, 32)
	if err != nil {
		return usage(p, "NAME SIZE")
	}
	if !p.Create(args[1], uint32(size)) {
		p.Printf("%s: create failed\n", args[1])
		return 1
	}
	return 0
}

// Rm removes each named file.
func Rm(p *ulib.Process) int {
	args := p.Args()
	if len(args) < 2 {
		return usage(p, "FILE...")
	}
	status := 0
	for _, name := range args[1:] {
		if !p.Remove(name) {
			p.Printf("%s: remove failed\n", name)
			status = 1
		}
	}
	return status
}

// Halt powers off the machine.
func Halt(p *ulib.Process) int {
	p.Halt()
	return 0
}
