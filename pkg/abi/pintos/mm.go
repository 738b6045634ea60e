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

package pintos

// User address-space layout.
const (
	// PhysBase is the kernel/user split. User addresses are strictly below
	// it.
	PhysBase = 0xc0000000

	// CodeBase is the lowest address at which the loader maps a program
	// image. Nothing below it is user-accessible.
	CodeBase = 0x08048000
)

// MaxStringLen bounds the length, including the terminating NUL, of a string
// argument copied in from user memory.
const MaxStringLen = 4096

// MaxNameLen is the length of a process name, matching the size of the name
// field of a Pintos thread less its terminator.
const MaxNameLen = 15
