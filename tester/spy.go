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
	"reflect"
	"sync"
	"sync/atomic"
)

var tick uint64 //global atomic counter to assist with verifying order of execution

// Call is one recorded invocation of a spied method
type Call struct {
	// Args in the order received; variadic arguments are flattened
	Args []interface{}
	// Results returned to the caller, empty if the method has none or panicked
	Results []interface{}
	// Panic is the recovered value if the method panicked (the panic is re-raised)
	Panic interface{}

	tick uint64
}

func newCall(args []interface{}) *Call {
	return &Call{Args: args, tick: atomic.AddUint64(&tick, 1)}
}

// Return is the first result, or nil
func (c *Call) Return() interface{} {
	if len(c.Results) == 0 {
		return nil
	}
	return c.Results[0]
}

// Seq orders this call relative to every other recorded call
func (c *Call) Seq() uint64 {
	return c.tick
}

func (c *Call) String() string {
	if c.Panic != nil {
		return fmt.Sprintf("%v => panic! %v", c.Args, c.Panic)
	}
	return fmt.Sprintf("%v => %v", c.Args, c.Results)
}

/*
Spy is the handle to a recording wrapper installed on a host method by Registry.Spy or
Registry.Stub.

A spy calls through to the original method. A stub calls its replacement, if any, and
otherwise returns zero values.
*/
type Spy struct {
	registry *Registry
	slot     *slot
	name     string
	stubbed  bool
	original reflect.Value
	impl     reflect.Value
	wrapper  reflect.Value

	mutex    sync.Mutex
	recorded []*Call
	restored bool
}

func newSpy(r *Registry, s *slot, stubbed bool, impl interface{}) (*Spy, error) {
	spy := &Spy{
		registry: r,
		slot:     s,
		name:     s.String(),
		stubbed:  stubbed,
		original: s.get(),
	}
	if impl != nil {
		implV := reflect.ValueOf(impl)
		if err := checkReplacement(s.fnType, implV.Type()); err != nil {
			return nil, err
		}
		spy.impl = implV
	}
	spy.wrapper = reflect.MakeFunc(s.fnType, spy.invoke)
	return spy, nil
}

func (s *Spy) invoke(in []reflect.Value) []reflect.Value {
	call := newCall(flattenArgs(s.slot.fnType, in))

	//Record the call first, in case the actual call panics.
	s.mutex.Lock()
	s.recorded = append(s.recorded, call)
	s.mutex.Unlock()

	defer func() {
		if e := recover(); e != nil {
			s.mutex.Lock()
			call.Panic = e
			s.mutex.Unlock()
			s.trace(call)
			panic(e)
		}
	}()

	out := s.call(in)

	results := make([]interface{}, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	s.mutex.Lock()
	call.Results = results
	s.mutex.Unlock()

	s.trace(call)
	return out
}

func (s *Spy) call(in []reflect.Value) []reflect.Value {
	var target reflect.Value
	switch {
	case s.impl.IsValid():
		target = s.impl
	case !s.stubbed:
		target = s.original
	default:
		return zeroValues(s.slot.fnType)
	}

	var out []reflect.Value
	if s.slot.fnType.IsVariadic() {
		out = target.CallSlice(in)
	} else {
		out = target.Call(in)
	}
	return assignResults(s.slot.fnType, out)
}

func (s *Spy) trace(call *Call) {
	if s.registry.trace {
		s.registry.t.Logf("Called %s%v", s.name, call)
	}
}

func flattenArgs(fnType reflect.Type, in []reflect.Value) []interface{} {
	args := make([]interface{}, 0, len(in))
	for i, v := range in {
		if fnType.IsVariadic() && i == len(in)-1 {
			for j := 0; j < v.Len(); j++ {
				args = append(args, v.Index(j).Interface())
			}
			continue
		}
		args = append(args, v.Interface())
	}
	return args
}

// Name identifies the spied method by host type and method name
func (s *Spy) Name() string {
	return s.name
}

func (s *Spy) String() string {
	if s.stubbed {
		return fmt.Sprintf("stub %s", s.name)
	}
	return fmt.Sprintf("spy %s", s.name)
}

// Stubbed reports whether the original method is bypassed
func (s *Spy) Stubbed() bool {
	return s.stubbed
}

// Func is the recording wrapper installed in place of the original
func (s *Spy) Func() interface{} {
	return s.wrapper.Interface()
}

// Original is the func that was in the slot when the spy was installed
func (s *Spy) Original() interface{} {
	return s.original.Interface()
}

// Called reports whether there is at least one recorded call
func (s *Spy) Called() bool {
	return s.CallCount() > 0
}

// CallCount is the number of recorded calls
func (s *Spy) CallCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.recorded)
}

// Calls returns the recorded calls, oldest first
func (s *Spy) Calls() []*Call {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]*Call(nil), s.recorded...)
}

// LastCall is the most recent call, or nil
func (s *Spy) LastCall() *Call {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if len(s.recorded) == 0 {
		return nil
	}
	return s.recorded[len(s.recorded)-1]
}

// Args returns the argument list of each call, oldest first
func (s *Spy) Args() [][]interface{} {
	calls := s.Calls()
	args := make([][]interface{}, len(calls))
	for i, c := range calls {
		args[i] = c.Args
	}
	return args
}

// Returns returns the first result of each call, aligned with Args
func (s *Spy) Returns() []interface{} {
	calls := s.Calls()
	returns := make([]interface{}, len(calls))
	for i, c := range calls {
		returns[i] = c.Return()
	}
	return returns
}

/*
Matching returns the calls whose arguments match expected.

Each expected argument is either a Matcher or a value compared for deep equality.
The number of arguments must match exactly.
*/
func (s *Spy) Matching(expected ...interface{}) []*Call {
	matcher := argsMatcher(expected)
	var matched []*Call
	for _, c := range s.Calls() {
		if matcher.matches(c.Args) {
			matched = append(matched, c)
		}
	}
	return matched
}

// CalledWith reports whether any call matches expected
func (s *Spy) CalledWith(expected ...interface{}) bool {
	return len(s.Matching(expected...)) > 0
}

// LastCalledWith reports whether the most recent call matches expected
func (s *Spy) LastCalledWith(expected ...interface{}) bool {
	last := s.LastCall()
	return last != nil && argsMatcher(expected).matches(last.Args)
}

// Returned reports whether any call returned a first result matching value
func (s *Spy) Returned(value interface{}) bool {
	matcher := toMatcher(value)
	for _, c := range s.Calls() {
		if c.Panic == nil && len(c.Results) > 0 && matcher.Matches(c.Return()) {
			return true
		}
	}
	return false
}

// Reset forgets all recorded calls
func (s *Spy) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.recorded = nil
}

// Restore puts the original func back in the slot. Restoring again has no effect.
func (s *Spy) Restore() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.restored {
		return
	}
	s.restored = true
	s.slot.set(s.original)
}

// Restored reports whether Restore has been called
func (s *Spy) Restored() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.restored
}
