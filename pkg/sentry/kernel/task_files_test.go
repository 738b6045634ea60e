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
	"bytes"
	"math"
	"strings"
	"testing"

	"pintos.dev/userprog/pkg/errors/kernerr"
	"pintos.dev/userprog/pkg/log"
	"pintos.dev/userprog/pkg/sentry/fs"
)

// brokenCloseFile is a countingFile whose Close fails.
type brokenCloseFile struct {
	countingFile
}

func (f *brokenCloseFile) Close() error {
	f.closes++
	return kernerr.EIO
}

// singleFileFS opens every path as file.
type singleFileFS struct {
	file fs.File
}

func (s *singleFileFS) Open(string) (fs.File, error) { return s.file, nil }
func (s *singleFileFS) Create(string, int64) error { return nil }
func (s *singleFileFS) Remove(string) error { return nil }

func TestOpenFileDescriptorsExhausted(t *testing.T) {
	var buf bytes.Buffer
	old := log.Log().Emitter
	log.SetTarget(&log.Writer{Next: &buf})
	t.Cleanup(func() { log.SetTarget(old) })

	file := &brokenCloseFile{}
	k := Kernel{fs: &singleFileFS{file: file}}
	task := &Task{k: &k, tid: 1, name: "proc"}
	task.fdTable = k.NewFDTable()
	task.fdTable.next = math.MaxInt32

	if fd := task.OpenFile("f"); fd != -1 {
		t.Errorf("OpenFile with no descriptors left = %d, want -1", fd)
	}
	if file.closes != 1 {
		t.Errorf("unused file closed %d times, want 1", file.closes)
	}
	if n := task.fdTable.Size(); n != 0 {
		t.Errorf("Size = %d, want 0", n)
	}
	if got := buf.String(); !strings.Contains(got, "closing unused file") {
		t.Errorf("log output %q does not report the failed close", got)
	}
}
