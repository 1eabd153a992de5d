/*
 * Copyright 2020 grant@lastweekend.com.au
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tester

import (
	"fmt"
	"os"
	"sort"
	"sync"
)

//T is compatible with builtin testing.T
type T interface {
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
	Helper()
}

// TraceEnv enables tracing for every new Registry when set to "1" or "true"
const TraceEnv = "INTEGRATION_TESTER_TRACE"

/*
A Registry owns the spies and stubs installed during a test.

Setup phase

Spy or Stub methods on host objects. A method is a func valued slot: an exported func field of a
struct reached through a pointer, or a func entry in a map with string keys.

Exercise phase

Calls through the slot are recorded on the returned *Spy.

Verify phase

Assertions check the Spy is registered before inspecting its calls.

Teardown phase

RestoreAll (usually deferred) puts every original func back.
*/
type Registry struct {
	t     T
	mutex sync.Mutex
	spies []*Spy
	trace bool
}

/*
NewRegistry constructs an empty Registry for test t.

configurators are used to configure tracing
*/
func NewRegistry(t T, configurators ...func(*Registry)) *Registry {
	r := &Registry{t: t}
	if v := os.Getenv(TraceEnv); v == "1" || v == "true" {
		r.trace = true
	}
	for _, c := range configurators {
		c(r)
	}
	return r
}

// EnableTrace logs all recorded calls (via T.Logf)
func (r *Registry) EnableTrace() {
	r.trace = true
}

func (r *Registry) T() T {
	return r.t
}

func (r *Registry) String() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return fmt.Sprintf("Registry(%d spies)", len(r.spies))
}

/*
Spy installs a recording wrapper around host's method and registers it.

The original func is still called, and its results returned.
*/
func (r *Registry) Spy(host interface{}, method string) *Spy {
	r.t.Helper()
	return r.install(host, method, false, nil)
}

/*
Stub installs a recording wrapper around host's method that does not call the original.

With a replacement, which must be a func compatible with the method's signature, calls are
delegated to the replacement. Without, calls return the zero values of the method's results.
*/
func (r *Registry) Stub(host interface{}, method string, replacement ...interface{}) *Spy {
	r.t.Helper()
	if len(replacement) > 1 {
		r.t.Fatalf("Stub %T.%s expects at most one replacement, got %d", host, method, len(replacement))
		return nil
	}
	var impl interface{}
	if len(replacement) == 1 {
		impl = replacement[0]
	}
	return r.install(host, method, true, impl)
}

func (r *Registry) install(host interface{}, method string, stubbed bool, impl interface{}) *Spy {
	r.t.Helper()
	s, err := newSlot(host, method)
	if err != nil {
		r.t.Fatalf("Cannot spy on %T.%s: %v", host, method, err)
		return nil
	}

	spy, err := newSpy(r, s, stubbed, impl)
	if err != nil {
		r.t.Fatalf("Cannot stub %s: %v", s, err)
		return nil
	}

	r.mutex.Lock()
	r.spies = append(r.spies, spy)
	r.mutex.Unlock()

	s.set(spy.wrapper)
	return spy
}

/*
Restore restores and unregisters each of spies, or all spies if none are given.

Spies are restored most recent first whatever order they are given in, so spies stacked on
the same method unwind to the method's original func.
*/
func (r *Registry) Restore(spies ...*Spy) {
	if len(spies) == 0 {
		r.RestoreAll()
		return
	}
	for _, spy := range r.installOrder(spies) {
		spy.Restore()
		r.remove(spy)
	}
}

// installOrder sorts spies latest installed first. Unregistered spies come last.
func (r *Registry) installOrder(spies []*Spy) []*Spy {
	r.mutex.Lock()
	position := make(map[*Spy]int, len(r.spies))
	for i, s := range r.spies {
		position[s] = i
	}
	r.mutex.Unlock()

	ordered := make([]*Spy, 0, len(spies))
	for _, spy := range spies {
		if spy != nil {
			ordered = append(ordered, spy)
		}
	}
	rank := func(spy *Spy) int {
		if i, ok := position[spy]; ok {
			return i
		}
		return -1
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return rank(ordered[i]) > rank(ordered[j])
	})
	return ordered
}

// RestoreAll restores every registered spy, most recent first, and empties the registry
func (r *Registry) RestoreAll() {
	r.mutex.Lock()
	spies := r.spies
	r.spies = nil
	r.mutex.Unlock()

	for i := len(spies) - 1; i >= 0; i-- {
		spies[i].Restore()
	}
}

func (r *Registry) remove(spy *Spy) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for i, s := range r.spies {
		if s == spy {
			r.spies = append(r.spies[:i], r.spies[i+1:]...)
			return
		}
	}
}

// Spies returns the registered spies in the order they were installed
func (r *Registry) Spies() []*Spy {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]*Spy(nil), r.spies...)
}

// Registered reports whether spy is active in this registry
func (r *Registry) Registered(spy *Spy) bool {
	if spy == nil {
		return false
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, s := range r.spies {
		if s == spy {
			return true
		}
	}
	return false
}

// Lookup returns the most recently installed spy on host's method, or nil
func (r *Registry) Lookup(host interface{}, method string) *Spy {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for i := len(r.spies) - 1; i >= 0; i-- {
		if r.spies[i].slot.is(host, method) {
			return r.spies[i]
		}
	}
	return nil
}

// require fatally fails unless spy is registered
func (r *Registry) require(spy *Spy, operation string) {
	r.t.Helper()
	if !r.Registered(spy) {
		r.t.Fatalf("You must call `.Spy(object, method)` prior to calling `.%s()`.", operation)
	}
}
