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

package arch

import "testing"

func TestArgumentSignedness(t *testing.T) {
	a := SyscallArgument{Value: 0xffffffff}
	if got := a.Int(); got != -1 {
		t.Errorf("Int(): got %d, want -1", got)
	}
	if got := a.Uint(); got != 0xffffffff {
		t.Errorf("Uint(): got %#x, want 0xffffffff", got)
	}
	if got := a.SizeT(); got != 0xffffffff {
		t.Errorf("SizeT(): got %#x, want 0xffffffff", got)
	}
}

func TestSetReturnTruncates(t *testing.T) {
	var tf TrapFrame
	tf.SetReturn(^uintptr(0))
	if int32(tf.EAX) != -1 {
		t.Errorf("SetReturn(^0): EAX = %#x, want -1", tf.EAX)
	}
}
