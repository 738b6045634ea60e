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

package loader

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"pintos.dev/userprog/pkg/sentry/kernel"
)

func nop(*kernel.Task) int { return 0 }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("b", nop)
	r.Register("a", nop)
	if _, ok := r.Load("a"); !ok {
		t.Errorf("Load(a): not found")
	}
	if _, ok := r.Load("c"); ok {
		t.Errorf("Load(c): found an unregistered program")
	}
	if diff := cmp.Diff([]string{"a", "b"}, r.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterTwicePanics(t *testing.T) {
	r := NewRegistry()
	r.Register("a", nop)
	defer func() {
		if recover() == nil {
			t.Errorf("second Register did not panic")
		}
	}()
	r.Register("a", nop)
}
