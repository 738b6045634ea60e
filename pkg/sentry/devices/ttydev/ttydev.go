// Copyright 2020 The gVisor Authors.
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

// Package ttydev implements the machine console: a keyboard read one
// character at a time and a display written in whole buffers.
package ttydev

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
	"pintos.dev/userprog/pkg/log"
)

// EOT is returned by ReadChar once the keyboard input is exhausted. It is
// also what a raw terminal delivers for ^D.
const EOT = 0x04

// Console implements kernel.Console over an io.Reader and io.Writer.
type Console struct {
	// inMu serializes keyboard reads.
	inMu sync.Mutex
	in   *bufio.Reader

	// outMu serializes display writes, so that each Write appears
	// contiguously.
	outMu sync.Mutex
	out   io.Writer

	// rawFD and rawState are set while the input terminal is in raw mode.
	// Protected by outMu.
	rawFD    int
	rawState *term.State
}

// New returns a console reading from in and writing to out.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// ReadChar blocks until a character is available and returns it.
func (c *Console) ReadChar() byte {
	c.inMu.Lock()
	defer c.inMu.Unlock()
	b, err := c.in.ReadByte()
	if err != nil {
		if err != io.EOF {
			log.Warningf("Console read failed: %v", err)
		}
		return EOT
	}
	return b
}

// Write writes p to the display in a single write.
func (c *Console) Write(p []byte) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	if c.rawState != nil {
		// Raw mode disables output post-processing.
		p = bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))
	}
	if _, err := c.out.Write(p); err != nil {
		log.Warningf("Console write failed: %v", err)
	}
}

// MakeRaw puts the terminal f into raw mode, so that the keyboard delivers
// characters as they are typed. It does nothing if f is not a terminal.
func (c *Console) MakeRaw(f *os.File) error {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		log.Debugf("Console input %q is not a terminal; leaving it cooked", f.Name())
		return nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	c.outMu.Lock()
	defer c.outMu.Unlock()
	c.rawFD, c.rawState = fd, state
	return nil
}

// Restore undoes MakeRaw.
func (c *Console) Restore() error {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	if c.rawState == nil {
		return nil
	}
	err := term.Restore(c.rawFD, c.rawState)
	c.rawState = nil
	return err
}
