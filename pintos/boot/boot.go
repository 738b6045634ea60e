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

// Package boot assembles a machine from a configuration and runs init
// processes on it.
package boot

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"pintos.dev/userprog/pintos/config"
	"pintos.dev/userprog/pkg/cleanup"
	"pintos.dev/userprog/pkg/log"
	"pintos.dev/userprog/pkg/sentry/devices/ttydev"
	"pintos.dev/userprog/pkg/sentry/fs"
	"pintos.dev/userprog/pkg/sentry/fsimpl/host"
	"pintos.dev/userprog/pkg/sentry/fsimpl/memfs"
	"pintos.dev/userprog/pkg/sentry/kernel"
	"pintos.dev/userprog/pkg/sentry/syscalls/pintos"
)

// Machine is a kernel together with the devices it was booted with.
type Machine struct {
	// Kernel is the booted kernel.
	Kernel *kernel.Kernel

	// Console is the machine console.
	Console *ttydev.Console

	// Disk is the filesystem the kernel runs on.
	Disk fs.Filesystem

	// release undoes everything New acquired.
	release func()
}

// Args are the arguments to New.
type Args struct {
	// Config is the machine configuration. Required.
	Config *config.Config

	// Programs resolves exec command lines. Required.
	Programs kernel.Loader

	// Stdin and Stdout back the console.
	Stdin  io.Reader
	Stdout io.Writer
}

// New boots a machine. The caller must call Destroy.
func New(args Args) (*Machine, error) {
	conf := args.Config
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	m := &Machine{Console: ttydev.New(args.Stdin, args.Stdout)}
	cu := cleanup.Make(func() {})
	defer cu.Clean()

	if conf.RawConsole {
		if f, ok := args.Stdin.(*os.File); ok {
			if err := m.Console.MakeRaw(f); err != nil {
				return nil, errors.Wrap(err, "setting up console")
			}
			cu.Add(func() {
				if err := m.Console.Restore(); err != nil {
					log.Warningf("Restoring console: %v", err)
				}
			})
		}
	}

	disk, release, err := newDisk(conf)
	if err != nil {
		return nil, err
	}
	cu.Add(release)
	m.Disk = disk

	m.Kernel = new(kernel.Kernel)
	if err := m.Kernel.Init(kernel.InitKernelArgs{
		Console:      m.Console,
		Filesystem:   disk,
		Loader:       args.Programs,
		SyscallTable: pintos.Table,
		StackPages:   conf.StackPages,
		DataPages:    conf.DataPages,
		Strace:       conf.Strace,
	}); err != nil {
		return nil, errors.Wrap(err, "initializing kernel")
	}

	m.release = cu.Release()
	return m, nil
}

// newDisk returns the configured disk and a function that releases it.
func newDisk(conf *config.Config) (fs.Filesystem, func(), error) {
	if conf.RootDir == "" {
		disk := memfs.New(memfs.Options{Capacity: conf.DiskSize})
		for _, p := range conf.Put {
			path, name, err := config.SplitPut(p)
			if err != nil {
				return nil, nil, err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "reading %q", path)
			}
			if err := disk.Put(name, data); err != nil {
				return nil, nil, errors.Wrapf(err, "putting %q as %q", path, name)
			}
			log.Infof("Put %q on the disk as %q (%d bytes)", path, name, len(data))
		}
		return disk, func() {}, nil
	}

	// A host directory is used by at most one machine at a time.
	lock := flock.New(lockPath(conf.RootDir))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "locking disk %q", conf.RootDir)
	}
	if !locked {
		return nil, nil, fmt.Errorf("disk %q is in use by another machine", conf.RootDir)
	}
	disk, err := host.New(conf.RootDir)
	if err != nil {
		lock.Unlock()
		return nil, nil, err
	}
	log.Infof("Using host disk %q", conf.RootDir)
	return disk, func() {
		if err := disk.Release(); err != nil {
			log.Warningf("Releasing disk: %v", err)
		}
		if err := lock.Unlock(); err != nil {
			log.Warningf("Unlocking disk: %v", err)
		}
	}, nil
}

// lockPath returns the lock file guarding dir. It lives beside dir so it is
// not visible as a file on the disk.
func lockPath(dir string) string {
	return filepath.Clean(dir) + ".lock"
}

// Run starts each command line as an init process and waits for all of them
// to exit, then powers off. It returns their exit statuses in order; a
// process still running at power off reports -1. Canceling ctx powers off
// the machine.
func (m *Machine) Run(ctx context.Context, cmdlines []string) ([]int32, error) {
	statuses := make([]int32, len(cmdlines))
	tids := make([]kernel.ThreadID, len(cmdlines))
	for i, cmdline := range cmdlines {
		tid, err := m.Kernel.Start(cmdline)
		if err != nil {
			m.Kernel.PowerOff()
			return nil, errors.Wrapf(err, "starting %q", cmdline)
		}
		tids[i] = tid
	}

	stop := context.AfterFunc(ctx, func() {
		log.Infof("Context done: %v", ctx.Err())
		m.Kernel.PowerOff()
	})
	defer stop()

	var g errgroup.Group
	for i, tid := range tids {
		g.Go(func() error {
			status, ok, err := m.Kernel.WaitExited(tid)
			if err != nil {
				return errors.Wrapf(err, "waiting for %q", cmdlines[i])
			}
			if !ok {
				status = -1
			}
			statuses[i] = status
			return nil
		})
	}
	err := g.Wait()
	m.Kernel.PowerOff()
	return statuses, err
}

// Destroy releases the machine's devices. The machine must be powered off.
func (m *Machine) Destroy() {
	if m.release != nil {
		m.release()
		m.release = nil
	}
}
