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

package kernel

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pintos.dev/userprog/pkg/abi/pintos"
	"pintos.dev/userprog/pkg/errors/kernerr"
	"pintos.dev/userprog/pkg/hostarch"
	"pintos.dev/userprog/pkg/sentry/mm"
	"pintos.dev/userprog/pkg/usermem"
)

func newStack(t *testing.T) (*mm.MemoryManager, hostarch.Addr) {
	t.Helper()
	image := mm.NewMemoryManager()
	bottom := hostarch.Addr(pintos.PhysBase - hostarch.PageSize)
	if err := image.MapRange(bottom, hostarch.PageSize); err != nil {
		t.Fatalf("MapRange failed: %v", err)
	}
	return image, bottom
}

func readWord(t *testing.T, image *mm.MemoryManager, addr hostarch.Addr) uint32 {
	t.Helper()
	v, err := usermem.CopyWordIn(image, addr)
	if err != nil {
		t.Fatalf("reading word at %v: %v", addr, err)
	}
	return v
}

func TestSetupArgs(t *testing.T) {
	image, bottom := newStack(t)
	argv := []string{"echo", "x", "hello"}
	sp, err := setupArgs(image, bottom, argv)
	if err != nil {
		t.Fatalf("setupArgs failed: %v", err)
	}
	if sp%hostarch.WordSize != 0 {
		t.Errorf("sp %v is not word aligned", sp)
	}
	if ret := readWord(t, image, sp); ret != 0 {
		t.Errorf("fake return address = %#x, want 0", ret)
	}
	if argc := readWord(t, image, sp+4); argc != uint32(len(argv)) {
		t.Errorf("argc = %d, want %d", argc, len(argv))
	}
	argvAddr := hostarch.Addr(readWord(t, image, sp+8))
	if argvAddr != sp+12 {
		t.Errorf("argv = %v, want %v", argvAddr, sp+12)
	}
	var got []string
	for i := range argv {
		ptr := hostarch.Addr(readWord(t, image, argvAddr+hostarch.Addr(4*i)))
		s, err := image.CopyInString(ptr, pintos.MaxStringLen)
		if err != nil {
			t.Fatalf("reading argv[%d] at %v: %v", i, ptr, err)
		}
		got = append(got, s)
	}
	if diff := cmp.Diff(argv, got); diff != "" {
		t.Errorf("argv mismatch (-want +got):\n%s", diff)
	}
	if null := readWord(t, image, argvAddr+hostarch.Addr(4*len(argv))); null != 0 {
		t.Errorf("argv[argc] = %#x, want 0", null)
	}
}

func TestSetupArgsTooBig(t *testing.T) {
	image, bottom := newStack(t)
	argv := []string{"prog", strings.Repeat("a", hostarch.PageSize)}
	if _, err := setupArgs(image, bottom, argv); !kernerr.Equals(kernerr.E2BIG, err) {
		t.Errorf("setupArgs = %v, want %v", err, kernerr.E2BIG)
	}
}

func TestProcessName(t *testing.T) {
	for _, tc := range []struct{ prog, want string }{
		{"echo", "echo"},
		{"a-very-long-program-name", "a-very-long-pro"},
	} {
		prog, want := tc.prog, tc.want
		if got := processName(prog); got != want {
			t.Errorf("processName(%q) = %q, want %q", prog, got, want)
		}
	}
}
