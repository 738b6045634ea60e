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

package kernerr

import (
	"fmt"
	"os"
	"testing"

	"golang.org/x/sys/unix"
)

func TestErrorFromUnix(t *testing.T) {
	for _, tc := range []struct {
		err  error
		want error
	}{
		{unix.ENOENT, ENOENT},
		{unix.EEXIST, EEXIST},
		{&os.PathError{Op: "open", Path: "x", Err: unix.ENOENT}, ENOENT},
		{unix.EPIPE, EIO},
		{fmt.Errorf("not an errno"), EIO},
	} {
		if got := ErrorFromUnix(tc.err); got != tc.want {
			t.Errorf("ErrorFromUnix(%v): got %v, want %v", tc.err, got, tc.want)
		}
	}
	if got := ErrorFromUnix(nil); got != nil {
		t.Errorf("ErrorFromUnix(nil): got %v, want nil", got)
	}
}

func TestEquals(t *testing.T) {
	wrapped := fmt.Errorf("opening: %w", ENOENT)
	if !Equals(ENOENT, wrapped) {
		t.Errorf("Equals(ENOENT, %v): got false, want true", wrapped)
	}
	if Equals(EEXIST, wrapped) {
		t.Errorf("Equals(EEXIST, %v): got true, want false", wrapped)
	}
	if Equals(ENOENT, unix.ENOENT) {
		t.Errorf("Equals(ENOENT, unix.ENOENT): got true, want false")
	}
}
