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

package cmd

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/google/subcommands"
	"golang.org/x/sys/unix"
	"pintos.dev/userprog/pintos/boot"
	"pintos.dev/userprog/pintos/config"
	"pintos.dev/userprog/pkg/log"
)

// Run implements subcommands.Command for the "run" command.
type Run struct{}

// Name implements subcommands.Command.Name.
func (*Run) Name() string {
	return "run"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Run) Synopsis() string {
	return "boot a machine and run command lines as init processes"
}

// Usage implements subcommands.Command.Usage.
func (*Run) Usage() string {
	return `run [flags] <command line>... - boot a machine, run each command line
as a process, and power off when all of them have exited. The exit status is
that of the first command line.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (*Run) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Run) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := args[0].(*config.Config)
	status := args[1].(*int)

	m, err := boot.New(boot.Args{
		Config:   conf,
		Programs: builtinPrograms(),
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
	})
	if err != nil {
		Fatalf("booting: %v", err)
	}
	defer m.Destroy()

	ctx, stop := signal.NotifyContext(ctx, unix.SIGINT, unix.SIGTERM)
	defer stop()

	statuses, err := m.Run(ctx, f.Args())
	if err != nil {
		log.Warningf("Run failed: %v", err)
		return subcommands.ExitFailure
	}
	for i, s := range statuses {
		log.Infof("%q exited with status %d", f.Arg(i), s)
	}
	*status = int(statuses[0])
	return subcommands.ExitSuccess
}
