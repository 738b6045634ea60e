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

package programs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pintos.dev/userprog/pintos/boot"
	"pintos.dev/userprog/pintos/config"
	"pintos.dev/userprog/pkg/sentry/fsimpl/memfs"
	"pintos.dev/userprog/pkg/sentry/loader"
)

type result struct {
	statuses []int32
	console  string
	disk     *memfs.Filesystem
}

// run boots a machine with the built-in programs and the given files, runs
// cmdlines and returns what happened.
func run(t *testing.T, files map[string]string, stdin string, cmdlines ...string) result {
	t.Helper()
	conf := config.Default()
	dir := t.TempDir()
	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		conf.Put = append(conf.Put, path)
	}
	progs := loader.NewRegistry()
	Register(progs)
	var out bytes.Buffer
	m, err := boot.New(boot.Args{
		Config:   conf,
		Programs: progs,
		Stdin:    strings.NewReader(stdin),
		Stdout:   &out,
	})
	if err != nil {
		t.Fatalf("boot failed: %v", err)
	}
	defer m.Destroy()
	statuses, err := m.Run(context.Background(), cmdlines)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return result{statuses: statuses, console: out.String(), disk: m.Disk.(*memfs.Filesystem)}
}

func TestEcho(t *testing.T) {
	r := run(t, nil, "", "echo hello   world")
	if want := "hello world\necho: exit(0)\n"; r.console != want {
		t.Errorf("console = %q, want %q", r.console, want)
	}
}

func TestCat(t *testing.T) {
	long := strings.Repeat("0123456789", 100)
	r := run(t, map[string]string{"a": "first\n", "b": long}, "", "cat a b missing")
	if want := "first\n" + long + "missing: open failed\ncat: exit(1)\n"; r.console != want {
		t.Errorf("console = %q, want %q", r.console, want)
	}
}

func TestCpMkfileRm(t *testing.T) {
	r := run(t, map[string]string{"src": "payload"}, "cp src dst\nmkfile zero 5\nrm src\nexit\n", "shell")
	dst, err := r.disk.ReadFile("dst")
	if err != nil {
		t.Fatalf("ReadFile(dst) failed: %v", err)
	}
	if string(dst) != "payload" {
		t.Errorf("dst = %q, want %q", dst, "payload")
	}
	zero, err := r.disk.ReadFile("zero")
	if err != nil {
		t.Fatalf("ReadFile(zero) failed: %v", err)
	}
	if diff := cmp.Diff(make([]byte, 5), zero); diff != "" {
		t.Errorf("zero mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"dst", "zero"}, r.disk.List()); diff != "" {
		t.Errorf("disk listing mismatch (-want +got):\n%s", diff)
	}
}

func TestShell(t *testing.T) {
	r := run(t, nil, "echo hi\nbogus\nexit\n", "shell")
	want := strings.Join([]string{
		"Shell starting...\n",
		"--echo hi\n",
		"hi\n",
		"echo: exit(0)\n",
		"\"echo hi\": exit code 0\n",
		"--bogus\n",
		"exec failed\n",
		"--exit\n",
		"shell: exit(0)\n",
	}, "")
	if r.console != want {
		t.Errorf("console = %q, want %q", r.console, want)
	}
}

func TestShellEndOfInput(t *testing.T) {
	r := run(t, nil, "", "shell")
	if want := "Shell starting...\n--\nshell: exit(0)\n"; r.console != want {
		t.Errorf("console = %q, want %q", r.console, want)
	}
}

func TestUsage(t *testing.T) {
	r := run(t, nil, "", "mkfile x notanumber")
	if diff := cmp.Diff([]int32{1}, r.statuses); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}
	if want := "usage: mkfile NAME SIZE\nmkfile: exit(1)\n"; r.console != want {
		t.Errorf("console = %q, want %q", r.console, want)
	}
}

func TestHalt(t *testing.T) {
	r := run(t, nil, "", "halt")
	if r.console != "" {
		t.Errorf("console = %q, want nothing", r.console)
	}
}
