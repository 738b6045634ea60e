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

package pintos_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	abi "pintos.dev/userprog/pkg/abi/pintos"
	"pintos.dev/userprog/pkg/ulib"
)

func TestExitStatus(t *testing.T) {
	for _, tc := range []struct {
		name   string
		body   func(p *ulib.Process) int
		status int32
	}{
		{
			name:   "return from main",
			body:   func(p *ulib.Process) int { return 7 },
			status: 7,
		},
		{
			name: "exit",
			body: func(p *ulib.Process) int {
				p.Exit(3)
				return 0
			},
			status: 3,
		},
		{
			name: "negative exit",
			body: func(p *ulib.Process) int {
				p.Exit(-42)
				return 0
			},
			status: -42,
		},
		{
			name: "panic",
			body: func(p *ulib.Process) int {
				panic("bad program")
			},
			status: -1,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m := newMachine(t, machineOpts{})
			m.register("proc", tc.body)
			if got := m.run(t, "proc"); got != tc.status {
				t.Errorf("status = %d, want %d", got, tc.status)
			}
			if want := fmt.Sprintf("proc: exit(%d)\n", tc.status); m.console() != want {
				t.Errorf("console = %q, want %q", m.console(), want)
			}
		})
	}
}

func TestExecArgs(t *testing.T) {
	m := newMachine(t, machineOpts{})
	var args []string
	m.register("args", func(p *ulib.Process) int {
		args = p.Args()
		return 0
	})
	m.register("parent", func(p *ulib.Process) int {
		return int(p.Wait(p.Exec("args   one  two\tthree")))
	})
	m.run(t, "parent")
	if diff := cmp.Diff([]string{"args", "one", "two", "three"}, args); diff != "" {
		t.Errorf("argv mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessNameTruncated(t *testing.T) {
	m := newMachine(t, machineOpts{})
	m.register("averyveryverylongname", func(p *ulib.Process) int { return 1 })
	m.run(t, "averyveryverylongname x")
	if want := "averyveryverylo: exit(1)\n"; m.console() != want {
		t.Errorf("console = %q, want %q", m.console(), want)
	}
}

func TestExecUnknown(t *testing.T) {
	m := newMachine(t, machineOpts{})
	var tids []int32
	m.register("parent", func(p *ulib.Process) int {
		tids = append(tids, p.Exec("no-such-program"), p.Exec(""), p.Exec("   "))
		return 0
	})
	m.run(t, "parent")
	want := []int32{abi.TID_ERROR, abi.TID_ERROR, abi.TID_ERROR}
	if diff := cmp.Diff(want, tids); diff != "" {
		t.Errorf("exec results mismatch (-want +got):\n%s", diff)
	}
}

func TestWait(t *testing.T) {
	m := newMachine(t, machineOpts{})
	m.register("child", func(p *ulib.Process) int { return 81 })
	var got struct {
		First, Second, Stranger, Self int32
	}
	m.register("parent", func(p *ulib.Process) int {
		tid := p.Exec("child")
		got.First = p.Wait(tid)
		got.Second = p.Wait(tid)
		got.Stranger = p.Wait(tid + 100)
		got.Self = p.Wait(int32(p.Task().ThreadID()))
		return 0
	})
	m.run(t, "parent")
	want := struct{ First, Second, Stranger, Self int32 }{First: 81, Second: -1, Stranger: -1, Self: -1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wait results mismatch (-want +got):\n%s", diff)
	}
	if want := "child: exit(81)\nparent: exit(0)\n"; m.console() != want {
		t.Errorf("console = %q, want %q", m.console(), want)
	}
}

func TestWaitGrandchild(t *testing.T) {
	m := newMachine(t, machineOpts{})
	grandchild := make(chan int32, 1)
	var got int32
	m.register("leaf", func(p *ulib.Process) int { return 5 })
	m.register("middle", func(p *ulib.Process) int {
		tid := p.Exec("leaf")
		grandchild <- tid
		return int(p.Wait(tid))
	})
	m.register("top", func(p *ulib.Process) int {
		p.Wait(p.Exec("middle"))
		got = p.Wait(<-grandchild)
		return 0
	})
	m.run(t, "top")
	if got != -1 {
		t.Errorf("wait for a grandchild = %d, want -1", got)
	}
}

func TestWaitKilledChild(t *testing.T) {
	m := newMachine(t, machineOpts{})
	m.register("child", func(p *ulib.Process) int {
		p.WriteBytes(1, []byte("before\n"))
		p.Write(1, 0, 5)
		p.WriteBytes(1, []byte("after\n"))
		return 0
	})
	m.register("parent", func(p *ulib.Process) int {
		p.Printf("wait=%d\n", p.Wait(p.Exec("child")))
		return 0
	})
	m.run(t, "parent")
	if want := "before\nchild: exit(-1)\nwait=-1\nparent: exit(0)\n"; m.console() != want {
		t.Errorf("console = %q, want %q", m.console(), want)
	}
}

func TestOrphanOutlivesParent(t *testing.T) {
	m := newMachine(t, machineOpts{})
	release := make(chan struct{})
	m.register("child", func(p *ulib.Process) int {
		<-release
		return 2
	})
	m.register("parent", func(p *ulib.Process) int {
		p.Exec("child")
		return 1
	})
	tid, err := m.k.Start("parent")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	status, ok, err := m.k.WaitExited(tid)
	if err != nil || !ok || status != 1 {
		t.Fatalf("WaitExited = %d, %v, %v; want 1, true, nil", status, ok, err)
	}
	close(release)
	m.k.WaitIdle()
	if want := "parent: exit(1)\nchild: exit(2)\n"; m.console() != want {
		t.Errorf("console = %q, want %q", m.console(), want)
	}
	if n := m.k.NumTasks(); n != 0 {
		t.Errorf("NumTasks = %d, want 0", n)
	}
}

func TestHalt(t *testing.T) {
	m := newMachine(t, machineOpts{})
	started := make(chan struct{})
	m.register("spinner", func(p *ulib.Process) int {
		close(started)
		for {
			p.Tell(2)
		}
	})
	m.register("blocked", func(p *ulib.Process) int {
		return int(p.Wait(p.Exec("spinner")))
	})
	m.register("halter", func(p *ulib.Process) int {
		<-started
		p.Printf("bye\n")
		p.Halt()
		return 0
	})
	if _, err := m.k.Start("blocked"); err != nil {
		t.Fatalf("Start(blocked) failed: %v", err)
	}
	tid, err := m.k.Start("halter")
	if err != nil {
		t.Fatalf("Start(halter) failed: %v", err)
	}
	if _, _, err := m.k.WaitExited(tid); err != nil {
		t.Errorf("WaitExited(halter) failed: %v", err)
	}
	<-m.k.Halted()
	m.k.WaitIdle()

	// Nothing prints an exit line once the machine is off.
	if want := "bye\n"; m.console() != want {
		t.Errorf("console = %q, want %q", m.console(), want)
	}
	if _, err := m.k.Start("halter"); err == nil {
		t.Errorf("Start after halt succeeded")
	}
}
