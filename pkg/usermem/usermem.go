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

// Package usermem governs access to user memory.
package usermem

import (
	"github.com/lunixbochs/struc"
	"pintos.dev/userprog/pkg/errors/kernerr"
	"pintos.dev/userprog/pkg/hostarch"
)

// IO provides access to the contents of a virtual memory space.
type IO interface {
	// CopyOut copies len(src) bytes from src to the memory mapped at addr. It
	// returns the number of bytes copied. If the number of bytes copied is <
	// len(src), it returns a non-nil error explaining why.
	CopyOut(addr hostarch.Addr, src []byte) (int, error)

	// CopyIn copies len(dst) bytes from the memory mapped at addr to dst.
	// It returns the number of bytes copied. If the number of bytes copied is
	// < len(dst), it returns a non-nil error explaining why.
	CopyIn(addr hostarch.Addr, dst []byte) (int, error)
}

// IOReadWriter is an io.ReadWriter that reads from / writes to addresses
// starting at addr in IO. The preconditions that apply to IO.CopyIn and
// IO.CopyOut also apply to IOReadWriter.Read and IOReadWriter.Write
// respectively.
type IOReadWriter struct {
	IO   IO
	Addr hostarch.Addr
}

// Read implements io.Reader.Read.
//
// Note that an address space does not have an "end of file", so Read never
// returns io.EOF. Attempts to read unmapped memory, or beyond the end of the
// address space, return EFAULT.
func (rw *IOReadWriter) Read(dst []byte) (int, error) {
	n, err := rw.IO.CopyIn(rw.Addr, dst)
	end, ok := rw.Addr.AddLength(uint64(n))
	if ok {
		rw.Addr = end
	} else {
		// Disallow wraparound.
		rw.Addr = ^hostarch.Addr(0)
		if err != nil {
			err = kernerr.EFAULT
		}
	}
	return n, err
}

// Write implements io.Writer.Write.
func (rw *IOReadWriter) Write(src []byte) (int, error) {
	n, err := rw.IO.CopyOut(rw.Addr, src)
	end, ok := rw.Addr.AddLength(uint64(n))
	if ok {
		rw.Addr = end
	} else {
		// Disallow wraparound.
		rw.Addr = ^hostarch.Addr(0)
		if err != nil {
			err = kernerr.EFAULT
		}
	}
	return n, err
}

// word is the in-memory layout of a single machine word.
type word struct {
	Value uint32
}

// CopyWordIn reads the machine word at addr.
func CopyWordIn(uio IO, addr hostarch.Addr) (uint32, error) {
	var w word
	r := &IOReadWriter{IO: uio, Addr: addr}
	if err := struc.UnpackWithOrder(r, &w, hostarch.ByteOrder); err != nil {
		return 0, kernerr.EFAULT
	}
	return w.Value, nil
}

// CopyWordOut writes v as a machine word at addr.
func CopyWordOut(uio IO, addr hostarch.Addr, v uint32) error {
	w := &IOReadWriter{IO: uio, Addr: addr}
	if err := struc.PackWithOrder(w, &word{Value: v}, hostarch.ByteOrder); err != nil {
		return kernerr.EFAULT
	}
	return nil
}

// copyStringIncrement is the maximum number of bytes that are copied from
// virtual memory at a time by CopyStringIn.
const copyStringIncrement = 64

// CopyStringIn copies a NUL-terminated string of unknown length from the
// memory mapped at addr in uio and returns it as a string (not including the
// trailing NUL). If the length of the string, including the terminating NUL,
// would exceed maxlen, CopyStringIn returns the string truncated to maxlen and
// ENAMETOOLONG.
//
// Preconditions: maxlen >= 0.
func CopyStringIn(uio IO, addr hostarch.Addr, maxlen int) (string, error) {
	buf := make([]byte, maxlen)
	var done int
	for done < maxlen {
		start, ok := addr.AddLength(uint64(done))
		if !ok {
			return string(buf[:done]), kernerr.EFAULT
		}
		// Read up to copyStringIncrement bytes at a time.
		readlen := copyStringIncrement
		if readlen > maxlen-done {
			readlen = maxlen - done
		}
		end, ok := start.AddLength(uint64(readlen))
		if !ok {
			end = ^hostarch.Addr(0)
		}
		if end == start {
			// Last byte of the address space. Never user-accessible.
			return string(buf[:done]), kernerr.EFAULT
		}
		// Shorten the read to avoid crossing page boundaries, so that a
		// string ending just before an unmapped page is still read.
		if start.RoundDown() != end.RoundDown() && !end.IsPageAligned() {
			end = end.RoundDown()
		}
		n, err := uio.CopyIn(start, buf[done:done+int(end-start)])
		// Look for the terminating zero byte, which may have occurred before
		// hitting err.
		for i, c := range buf[done : done+n] {
			if c == 0 {
				return string(buf[:done+i]), nil
			}
		}
		done += n
		if err != nil {
			return string(buf[:done]), err
		}
	}
	return string(buf), kernerr.ENAMETOOLONG
}
