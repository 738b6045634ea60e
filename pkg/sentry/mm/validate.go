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

package mm

import (
	"bytes"

	"pintos.dev/userprog/pkg/abi/pintos"
	"pintos.dev/userprog/pkg/errors/kernerr"
	"pintos.dev/userprog/pkg/hostarch"
)

// CheckIORange is similar to hostarch.Addr.ToRange, but also requires the
// range to lie within the user layout.
func (mm *MemoryManager) CheckIORange(addr hostarch.Addr, length uint32) (hostarch.AddrRange, bool) {
	ar, ok := addr.ToRange(uint64(length))
	return ar, ok && mm.layout.Contains(ar)
}

// CheckRange returns EFAULT unless addr is non-null, [addr, addr+length) lies
// within the user layout, and every page the span touches is mapped. A zero
// length checks the single byte at addr.
func (mm *MemoryManager) CheckRange(addr hostarch.Addr, length uint32) error {
	if addr == 0 {
		return kernerr.EFAULT
	}
	if length == 0 {
		length = 1
	}
	ar, ok := mm.CheckIORange(addr, length)
	if !ok {
		return kernerr.EFAULT
	}
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	mapped := true
	ar.Pages(func(page hostarch.Addr) bool {
		_, mapped = mm.translateLocked(page)
		return mapped
	})
	if !mapped {
		return kernerr.EFAULT
	}
	return nil
}

// CheckString validates the NUL-terminated string at addr, byte by byte up to
// and including the terminator. It returns EFAULT if any byte lies outside
// mapped user memory, and ENAMETOOLONG if no terminator appears within
// pintos.MaxStringLen bytes.
func (mm *MemoryManager) CheckString(addr hostarch.Addr) error {
	if addr == 0 {
		return kernerr.EFAULT
	}
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	for done := 0; done < pintos.MaxStringLen; {
		cur, ok := addr.AddLength(uint64(done))
		if !ok || cur < mm.layout.MinAddr || cur >= mm.layout.MaxAddr {
			return kernerr.EFAULT
		}
		b, ok := mm.translateLocked(cur)
		if !ok {
			return kernerr.EFAULT
		}
		if rem := pintos.MaxStringLen - done; len(b) > rem {
			b = b[:rem]
		}
		if bytes.IndexByte(b, 0) >= 0 {
			return nil
		}
		done += len(b)
	}
	return kernerr.ENAMETOOLONG
}
