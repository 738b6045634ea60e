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

// Package config provides basic infrastructure to set configuration settings
// for pintos. Each setting can be set from a TOML file, and overridden by a
// command line flag of the same name.
package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"pintos.dev/userprog/pkg/log"
	"pintos.dev/userprog/pkg/sentry/fsimpl/memfs"
	"pintos.dev/userprog/pkg/sentry/kernel"
)

// Config holds configuration that is not part of the command lines being run.
type Config struct {
	// RootDir is a host directory used as the disk. Empty means an in-memory
	// disk.
	RootDir string `toml:"root"`

	// Put lists host files copied onto the in-memory disk before boot. Each
	// entry is "path" or "path:name".
	Put []string `toml:"put"`

	// DiskSize bounds the in-memory disk, in bytes.
	DiskSize int64 `toml:"disk-size"`

	// DataPages is the size of each process's data segment, in pages.
	DataPages int `toml:"data-pages"`

	// StackPages is the size of each process's stack, in pages.
	StackPages int `toml:"stack-pages"`

	// Debug indicates that debug logging should be enabled.
	Debug bool `toml:"debug"`

	// Strace indicates that every system call should be logged.
	Strace bool `toml:"strace"`

	// LogFormat is the log format, "text" or "json".
	LogFormat string `toml:"log-format"`

	// LogFile is the path of the log file. Empty means stderr.
	LogFile string `toml:"log"`

	// RawConsole puts a terminal console in raw mode while the machine runs.
	RawConsole bool `toml:"raw-console"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataPages:  kernel.DefaultDataPages,
		StackPages: kernel.DefaultStackPages,
		DiskSize:   memfs.DefaultCapacity,
		LogFormat:  "text",
	}
}

// Load reads a TOML configuration file over the defaults. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, errors.Wrapf(err, "loading config %q", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("config %q: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return c, nil
}

// stringList is a flag.Value appending each occurrence to a list.
type stringList []string

// String implements flag.Value.
func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

// Set implements flag.Value.
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// RegisterFlags registers a flag for each setting, defaulting to the current
// value of c.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.RootDir, "root", c.RootDir, "host directory to use as the disk; empty for an in-memory disk.")
	fs.Var((*stringList)(&c.Put), "put", "host file to copy onto the in-memory disk, as path or path:name. May be repeated.")
	fs.Int64Var(&c.DiskSize, "disk-size", c.DiskSize, "size of the in-memory disk in bytes.")
	fs.IntVar(&c.DataPages, "data-pages", c.DataPages, "size of each process's data segment, in pages.")
	fs.IntVar(&c.StackPages, "stack-pages", c.StackPages, "size of each process's stack, in pages.")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "enable debug logging.")
	fs.BoolVar(&c.Strace, "strace", c.Strace, "log every system call.")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format: text (default) or json.")
	fs.StringVar(&c.LogFile, "log", c.LogFile, "file path where logs will be written; empty for stderr.")
	fs.BoolVar(&c.RawConsole, "raw-console", c.RawConsole, "put a terminal console in raw mode.")
}

// Override sets on c every flag explicitly set in set, so command line flags
// take precedence over a configuration file. Flags not registered by
// RegisterFlags are ignored.
func (c *Config) Override(set *flag.FlagSet) error {
	fs := flag.NewFlagSet("override", flag.ContinueOnError)
	c.RegisterFlags(fs)
	var err error
	set.Visit(func(f *flag.Flag) {
		if err != nil || fs.Lookup(f.Name) == nil {
			return
		}
		if list, ok := f.Value.(*stringList); ok {
			for _, v := range *list {
				if err = fs.Set(f.Name, v); err != nil {
					return
				}
			}
			return
		}
		err = fs.Set(f.Name, f.Value.String())
	})
	return err
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.DataPages <= 0 {
		return fmt.Errorf("data-pages must be positive, got %d", c.DataPages)
	}
	if c.StackPages <= 0 {
		return fmt.Errorf("stack-pages must be positive, got %d", c.StackPages)
	}
	if c.DiskSize <= 0 {
		return fmt.Errorf("disk-size must be positive, got %d", c.DiskSize)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log-format %q, must be 'text' or 'json'", c.LogFormat)
	}
	if c.RootDir != "" && len(c.Put) > 0 {
		return fmt.Errorf("put requires the in-memory disk, but root is %q", c.RootDir)
	}
	for _, p := range c.Put {
		if _, _, err := SplitPut(p); err != nil {
			return err
		}
	}
	return nil
}

// SplitPut splits a Put entry into the host path and the disk name. Without
// an explicit name the host file's base name is used.
func SplitPut(p string) (path, name string, err error) {
	path, name, found := strings.Cut(p, ":")
	if !found {
		name = path[strings.LastIndex(path, "/")+1:]
	}
	if path == "" || name == "" {
		return "", "", fmt.Errorf("invalid put %q, must be path or path:name", p)
	}
	return path, name, nil
}

// Log logs important aspects of the configuration.
func (c *Config) Log() {
	log.Infof("Root: %q, Put: %v, DiskSize: %d", c.RootDir, c.Put, c.DiskSize)
	log.Infof("DataPages: %d, StackPages: %d", c.DataPages, c.StackPages)
	log.Infof("Debug: %t, Strace: %t, LogFormat: %s, RawConsole: %t", c.Debug, c.Strace, c.LogFormat, c.RawConsole)
}
