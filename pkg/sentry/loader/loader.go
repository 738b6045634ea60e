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

// Package loader resolves program names to user program bodies.
//
// There are no executable images: a program is a Go function run on the
// task goroutine. A Registry stands in for the loader and the disk's
// executables together.
package loader

import (
	"fmt"
	"sort"
	"sync"

	"pintos.dev/userprog/pkg/sentry/kernel"
)

// Registry implements kernel.Loader.
type Registry struct {
	mu       sync.RWMutex
	programs map[string]kernel.EntryFn
}

var _ kernel.Loader = (*Registry)(nil)

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{programs: make(map[string]kernel.EntryFn)}
}

// Register adds a program. It panics if name is already registered.
func (r *Registry) Register(name string, entry kernel.EntryFn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.programs[name]; ok {
		panic(fmt.Sprintf("program %q registered twice", name))
	}
	r.programs[name] = entry
}

// Load implements kernel.Loader.Load.
func (r *Registry) Load(name string) (kernel.EntryFn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.programs[name]
	return entry, ok
}

// Names returns the registered program names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.programs))
	for name := range r.programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
