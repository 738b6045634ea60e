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
	"strings"

	abi "pintos.dev/userprog/pkg/abi/pintos"
	"pintos.dev/userprog/pkg/sentry/devices/ttydev"
	"pintos.dev/userprog/pkg/ulib"
)

const (
	prompt     = "--"
	maxLineLen = 80
)

// Shell reads command lines from the keyboard and runs each one as a child
// process. It exits on "exit" or at end of input.
func Shell(p *ulib.Process) int {
	p.Printf("Shell starting...\n")
	for {
		p.Printf("%s", prompt)
		line, eof := readLine(p)
		line = strings.TrimSpace(line)
		switch {
		case eof && line == "":
			p.Printf("\n")
			return 0
		case line == "":
		case line == "exit":
			return 0
		default:
			pid := p.Exec(line)
			if pid == abi.TID_ERROR {
				p.Printf("exec failed\n")
				break
			}
			p.Printf("\"%s\": exit code %d\n", line, p.Wait(pid))
		}
		if eof {
			return 0
		}
	}
}

// readLine reads one line from the keyboard, echoing it. Backspace erases
// the previous character. It reports whether input ended.
func readLine(p *ulib.Process) (string, bool) {
	var line []byte
	for {
		b, n := p.ReadBytes(abi.STDIN_FILENO, 1)
		if n != 1 {
			return string(line), true
		}
		switch c := b[0]; {
		case c == ttydev.EOT:
			return string(line), true
		case c == '\r' || c == '\n':
			p.Printf("\n")
			return string(line), false
		case c == '\b' || c == 0x7f:
			if len(line) > 0 {
				line = line[:len(line)-1]
				p.Printf("\b \b")
			}
		case len(line) < maxLineLen:
			line = append(line, c)
			p.WriteBytes(1, b)
		}
	}
}
