// Copyright 2018 The gVisor Authors.
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

package mm

import (
	"pintos.dev/userprog/pkg/errors/kernerr"
	"pintos.dev/userprog/pkg/hostarch"
	"pintos.dev/userprog/pkg/usermem"
)

var _ usermem.IO = (*MemoryManager)(nil)

// CopyOut implements usermem.IO.CopyOut.
func (mm *MemoryManager) CopyOut(addr hostarch.Addr, src []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}
	if uint64(len(src)) > uint64(^uint32(0)) {
		return 0, kernerr.EFAULT
	}
	if _, ok := mm.CheckIORange(addr, uint32(len(src))); !ok {
		return 0, kernerr.EFAULT
	}
	return mm.withPages(addr, len(src), func(b []byte, done int) int {
		return copy(b, src[done:])
	})
}

// CopyIn implements usermem.IO.CopyIn.
func (mm *MemoryManager) CopyIn(addr hostarch.Addr, dst []byte) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if uint64(len(dst)) > uint64(^uint32(0)) {
		return 0, kernerr.EFAULT
	}
	if _, ok := mm.CheckIORange(addr, uint32(len(dst))); !ok {
		return 0, kernerr.EFAULT
	}
	return mm.withPages(addr, len(dst), func(b []byte, done int) int {
		return copy(dst[done:], b)
	})
}

// withPages calls fn with the backing bytes of each page in [addr,
// addr+length) in order, until length bytes have been handled or an unmapped
// page is reached. fn returns the number of bytes it consumed.
//
// Preconditions: [addr, addr+length) lies within the layout.
func (mm *MemoryManager) withPages(addr hostarch.Addr, length int, fn func(b []byte, done int) int) (int, error) {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	var done int
	for done < length {
		b, ok := mm.translateLocked(addr + hostarch.Addr(done))
		if !ok {
			return done, kernerr.EFAULT
		}
		if rem := length - done; len(b) > rem {
			b = b[:rem]
		}
		done += fn(b, done)
	}
	return done, nil
}

// CopyInString copies a NUL-terminated string of at most maxlen bytes,
// including the terminator, from addr.
func (mm *MemoryManager) CopyInString(addr hostarch.Addr, maxlen int) (string, error) {
	return usermem.CopyStringIn(mm, addr, maxlen)
}

// CopyOutString writes s followed by a NUL to addr.
func (mm *MemoryManager) CopyOutString(addr hostarch.Addr, s string) error {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	if _, err := mm.CopyOut(addr, buf); err != nil {
		return err
	}
	return nil
}
