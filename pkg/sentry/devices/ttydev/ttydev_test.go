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

package ttydev

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
)

func TestReadChar(t *testing.T) {
	c := New(strings.NewReader("hi"), &bytes.Buffer{})
	for _, want := range []byte{'h', 'i', EOT, EOT} {
		if got := c.ReadChar(); got != want {
			t.Errorf("ReadChar: got %q, want %q", got, want)
		}
	}
}

func TestWritesAreContiguous(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader(""), &out)
	lines := []string{"aaaa\n", "bbbb\n", "cccc\n", "dddd\n"}
	var wg sync.WaitGroup
	for _, l := range lines {
		wg.Add(1)
		go func(l string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				c.Write([]byte(l))
			}
		}(l)
	}
	wg.Wait()
	for _, got := range strings.SplitAfter(out.String(), "\n") {
		if got == "" {
			continue
		}
		if len(got) != 5 || strings.Count(got, got[:1]) != 4 {
			t.Fatalf("interleaved write: %q", got)
		}
	}
}

func TestMakeRawNotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "input")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	c := New(f, &bytes.Buffer{})
	if err := c.MakeRaw(f); err != nil {
		t.Errorf("MakeRaw on a regular file: %v", err)
	}
	if err := c.Restore(); err != nil {
		t.Errorf("Restore: %v", err)
	}
}
