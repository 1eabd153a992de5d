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

	"github.com/stretchr/testify/assert"
)

/*
Assertion is a fluent chain of assertions over the spies in a Registry.

 tr.Track("event", facade.Fields{"baz": true}).
	Called(logEvent).
	With("event", facade.Fields{"baz": true})

Every method returns the chain when the assertion holds, and fails the test via T.Fatalf
when it does not. Misuse of the chain (asserting on an unregistered spy, With without
Called, To without Changed) is also fatal.
*/
type Assertion struct {
	registry *Registry
	value    interface{}

	current *Spy // pending from Called until Args/With
	from    *pending
}

type pending struct {
	value interface{}
}

// NewAssertion starts a chain over the spies of registry.
// value is whatever was produced by the call under test, see Value.
func NewAssertion(registry *Registry, value interface{}) *Assertion {
	return &Assertion{registry: registry, value: value}
}

// Value is the value produced by the call that started this chain, eg the facade sent to the integration
func (a *Assertion) Value() interface{} {
	return a.value
}

func (a *Assertion) t() T {
	return a.registry.t
}

func (a *Assertion) fail(format string, args ...interface{}) {
	a.t().Helper()
	a.t().Fatalf(format, args...)
}

/*
Called asserts spy has been called and, with expected args, that some call matched them.

spy is remembered for a following Args or With.
*/
func (a *Assertion) Called(spy *Spy, expected ...interface{}) *Assertion {
	a.t().Helper()
	a.registry.require(spy, "Called")
	if !spy.Called() {
		a.fail("Expected %q to have been called.", spy.Name())
		return a
	}
	a.current = spy
	if len(expected) > 0 && !spy.CalledWith(expected...) {
		a.fail("Expected %q to be called with %s,\nbut it was called with %s.", spy.Name(), describe(expected), lastArgs(spy))
	}
	return a
}

// Args asserts the spy from the preceding Called was called with expected
func (a *Assertion) Args(expected ...interface{}) *Assertion {
	a.t().Helper()
	return a.args("Args", expected)
}

// With is an alias for Args
func (a *Assertion) With(expected ...interface{}) *Assertion {
	a.t().Helper()
	return a.args("With", expected)
}

func (a *Assertion) args(operation string, expected []interface{}) *Assertion {
	a.t().Helper()
	if a.current == nil {
		a.fail("You must call `.Called(spy)` prior to calling `.%s()`.", operation)
		return a
	}
	spy := a.current
	a.current = nil
	if !spy.CalledWith(expected...) {
		a.fail("Expected %q to be called with %s,\nbut it was called with %s.", spy.Name(), describe(expected), lastArgs(spy))
	}
	return a
}

// DidNotCall asserts spy was never called or, with expected args, never called with them
func (a *Assertion) DidNotCall(spy *Spy, expected ...interface{}) *Assertion {
	a.t().Helper()
	a.registry.require(spy, "DidNotCall")
	if len(expected) == 0 {
		if spy.Called() {
			a.fail("Expected %q not to have been called.", spy.Name())
		}
		return a
	}
	if spy.CalledWith(expected...) {
		a.fail("Expected %q not to be called with %s,\nbut it was called with %s.", spy.Name(), describe(expected), lastArgs(spy))
	}
	return a
}

// CalledOnce asserts spy was called exactly once
func (a *Assertion) CalledOnce(spy *Spy) *Assertion {
	a.t().Helper()
	return a.calledTimes("CalledOnce", spy, 1)
}

// CalledTwice asserts spy was called exactly twice
func (a *Assertion) CalledTwice(spy *Spy) *Assertion {
	a.t().Helper()
	return a.calledTimes("CalledTwice", spy, 2)
}

// CalledThrice asserts spy was called exactly three times
func (a *Assertion) CalledThrice(spy *Spy) *Assertion {
	a.t().Helper()
	return a.calledTimes("CalledThrice", spy, 3)
}

// CalledTimes asserts spy was called exactly n times
func (a *Assertion) CalledTimes(spy *Spy, n int) *Assertion {
	a.t().Helper()
	return a.calledTimes("CalledTimes", spy, n)
}

func (a *Assertion) calledTimes(operation string, spy *Spy, n int) *Assertion {
	a.t().Helper()
	a.registry.require(spy, operation)
	if m := spy.CallCount(); m != n {
		a.fail("Expected %q to have been called %d %s, but it was called %d %s.",
			spy.Name(), n, plural(n, "time"), m, plural(m, "time"))
	}
	return a
}

// CalledExpect asserts the number of calls to spy meets expect, eg AtLeast(2)
func (a *Assertion) CalledExpect(spy *Spy, expect Expectation) *Assertion {
	a.t().Helper()
	a.registry.require(spy, "CalledExpect")
	if m := spy.CallCount(); !expect.Met(m) {
		a.fail("Expected %q to have been called %v, but it was called %d %s.", spy.Name(), expect, m, plural(m, "time"))
	}
	return a
}

// Returned asserts some call to spy returned value (as its first result)
func (a *Assertion) Returned(spy *Spy, value interface{}) *Assertion {
	a.t().Helper()
	a.registry.require(spy, "Returned")
	if !spy.Returned(value) {
		a.fail("Expected %q to have returned %s,\nbut it returned %s.", spy.Name(), describe([]interface{}{value}), serialize(spy.Returns()))
	}
	return a
}

// DidNotReturn asserts no call to spy returned value (as its first result)
func (a *Assertion) DidNotReturn(spy *Spy, value interface{}) *Assertion {
	a.t().Helper()
	a.registry.require(spy, "DidNotReturn")
	if spy.Returned(value) {
		a.fail("Expected %q not to have returned %s.", spy.Name(), describe([]interface{}{value}))
	}
	return a
}

/*
Changed captures from for a following To.

Changed(from, to) is shorthand for Changed(from).To(to)
*/
func (a *Assertion) Changed(from interface{}, to ...interface{}) *Assertion {
	a.t().Helper()
	if len(to) > 1 {
		a.fail("`.Changed()` expects at most one value to change to, got %d.", len(to))
		return a
	}
	a.from = &pending{value: from}
	if len(to) == 1 {
		return a.To(to[0])
	}
	return a
}

// To asserts the value captured by the preceding Changed deeply equals value
func (a *Assertion) To(value interface{}) *Assertion {
	a.t().Helper()
	if a.from == nil {
		a.fail("You must call `.Changed(value)` prior to calling `.To()`.")
		return a
	}
	from := a.from.value
	a.from = nil
	if !assert.ObjectsAreEqual(from, value) {
		a.fail("Expected %s to deep equal %s.", serialize(from), serialize(value))
	}
	return a
}

// Assert asserts value is truthy: not nil, false, zero or empty
func (a *Assertion) Assert(value interface{}, msgAndArgs ...interface{}) *Assertion {
	a.t().Helper()
	if !truthy(value) {
		if msg := message(msgAndArgs); msg != "" {
			a.fail("%s", msg)
		} else {
			a.fail("Expected %s to be truthy.", serialize(value))
		}
	}
	return a
}

func truthy(value interface{}) bool {
	if value == nil {
		return false
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() > 0
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Ptr:
		return !v.IsNil()
	}
	return !v.IsZero()
}

// captureT records the failure message of a testify assertion
type captureT struct {
	msg string
}

func (c *captureT) Errorf(format string, args ...interface{}) {
	c.msg = fmt.Sprintf(format, args...)
}

func (a *Assertion) passthrough(check func(assert.TestingT) bool) *Assertion {
	a.t().Helper()
	c := &captureT{}
	if !check(c) {
		a.fail("%s", c.msg)
	}
	return a
}

// Equal asserts expected and actual are equal, converting between compatible types (eg 1 and int64(1))
func (a *Assertion) Equal(expected, actual interface{}, msgAndArgs ...interface{}) *Assertion {
	a.t().Helper()
	return a.passthrough(func(c assert.TestingT) bool { return assert.EqualValues(c, expected, actual, msgAndArgs...) })
}

// NotEqual asserts expected and actual are not equal, converting between compatible types
func (a *Assertion) NotEqual(expected, actual interface{}, msgAndArgs ...interface{}) *Assertion {
	a.t().Helper()
	return a.passthrough(func(c assert.TestingT) bool { return assert.NotEqualValues(c, expected, actual, msgAndArgs...) })
}

// DeepEqual asserts expected and actual have the same type and deeply equal contents
func (a *Assertion) DeepEqual(expected, actual interface{}, msgAndArgs ...interface{}) *Assertion {
	a.t().Helper()
	return a.passthrough(func(c assert.TestingT) bool { return assert.Equal(c, expected, actual, msgAndArgs...) })
}

// NotDeepEqual asserts expected and actual are not deeply equal
func (a *Assertion) NotDeepEqual(expected, actual interface{}, msgAndArgs ...interface{}) *Assertion {
	a.t().Helper()
	return a.passthrough(func(c assert.TestingT) bool { return assert.NotEqual(c, expected, actual, msgAndArgs...) })
}

// NoError asserts err is nil
func (a *Assertion) NoError(err error, msgAndArgs ...interface{}) *Assertion {
	a.t().Helper()
	return a.passthrough(func(c assert.TestingT) bool { return assert.NoError(c, err, msgAndArgs...) })
}

// Error asserts err is not nil
func (a *Assertion) Error(err error, msgAndArgs ...interface{}) *Assertion {
	a.t().Helper()
	return a.passthrough(func(c assert.TestingT) bool { return assert.Error(c, err, msgAndArgs...) })
}
