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

package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pintos.toml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(Default(), c); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
put = ["/tmp/a.txt", "/tmp/b:renamed"]
data-pages = 4
strace = true
log-format = "json"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := Default()
	want.Put = []string{"/tmp/a.txt", "/tmp/b:renamed"}
	want.DataPages = 4
	want.Strace = true
	want.LogFormat = "json"
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	for name, contents := range map[string]string{
		"syntax":      "data-pages = ",
		"unknown key": "pages = 3",
		"wrong type":  `data-pages = "many"`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, contents)); err == nil {
				t.Errorf("Load succeeded, want error")
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Errorf("Load of a missing file succeeded")
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	c, err := Load(writeConfig(t, "data-pages = 4\nstack-pages = 2\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)
	if err := fs.Parse([]string{"-data-pages=8", "-put=x", "-put=y:z"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if c.DataPages != 8 {
		t.Errorf("DataPages = %d, want 8", c.DataPages)
	}
	if c.StackPages != 2 {
		t.Errorf("StackPages = %d, want 2 from the file", c.StackPages)
	}
	if diff := cmp.Diff([]string{"x", "y:z"}, c.Put); diff != "" {
		t.Errorf("Put mismatch (-want +got):\n%s", diff)
	}
}

func TestOverride(t *testing.T) {
	// Flags are parsed into a config built from defaults, as on the command
	// line, before the file is known.
	cmdline := flag.NewFlagSet("test", flag.ContinueOnError)
	Default().RegisterFlags(cmdline)
	cmdline.String("config", "", "")
	if err := cmdline.Parse([]string{"-config=x", "-strace", "-stack-pages=3", "-put=a", "-put=b"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	c, err := Load(writeConfig(t, "stack-pages = 2\ndata-pages = 5\nput = [\"f\"]\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := c.Override(cmdline); err != nil {
		t.Fatalf("Override failed: %v", err)
	}
	want := Default()
	want.StackPages = 3
	want.DataPages = 5
	want.Strace = true
	want.Put = []string{"f", "a", "b"}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		modify func(c *Config)
	}{
		{"zero data pages", func(c *Config) { c.DataPages = 0 }},
		{"negative stack pages", func(c *Config) { c.StackPages = -1 }},
		{"negative disk size", func(c *Config) { c.DiskSize = -1 }},
		{"zero disk size", func(c *Config) { c.DiskSize = 0 }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
		{"put with root", func(c *Config) { c.RootDir = "/tmp"; c.Put = []string{"a"} }},
		{"empty put name", func(c *Config) { c.Put = []string{"a/"} }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.modify(c)
			if err := c.Validate(); err == nil {
				t.Errorf("Validate succeeded, want error")
			}
		})
	}
}

func TestSplitPut(t *testing.T) {
	for _, tc := range []struct {
		put, path, name string
	}{
		{put: "file", path: "file", name: "file"},
		{put: "/a/b/c.txt", path: "/a/b/c.txt", name: "c.txt"},
		{put: "/a/b/c.txt:d", path: "/a/b/c.txt", name: "d"},
	} {
		path, name, err := SplitPut(tc.put)
		if err != nil {
			t.Errorf("SplitPut(%q) failed: %v", tc.put, err)
			continue
		}
		if path != tc.path || name != tc.name {
			t.Errorf("SplitPut(%q) = %q, %q; want %q, %q", tc.put, path, name, tc.path, tc.name)
		}
	}
}
