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
	"strings"

	"github.com/stretchr/testify/assert"
)

// Matcher is used in place of an expected argument or return value
type Matcher interface {

	//Matches returns true if arg matches this matcher
	Matches(arg interface{}) bool
}

// toMatcher converts an expected value to a Matcher.
//
// Matchers are used as is, reflect.Types match via IsA, anything else via Eql.
func toMatcher(expected interface{}) Matcher {
	switch m := expected.(type) {
	case Matcher:
		return m
	case reflect.Type:
		return IsA(m)
	default:
		return Eql(expected)
	}
}

type matcherList []Matcher

func (l matcherList) toString(prefix string, lRune rune, rRune rune) string {
	s := strings.Builder{}
	s.WriteString(prefix)
	s.WriteRune(lRune)
	for i, arg := range l {
		if i > 0 {
			s.WriteRune(',')
		}
		s.WriteString(fmt.Sprint(arg))
	}
	s.WriteRune(rRune)
	return s.String()
}

// argumentsMatcher matches a complete argument list, position by position
type argumentsMatcher struct {
	matcherList matcherList
}

func argsMatcher(expected []interface{}) *argumentsMatcher {
	matchers := make(matcherList, len(expected))
	for i, e := range expected {
		matchers[i] = toMatcher(e)
	}
	return &argumentsMatcher{matchers}
}

func (l *argumentsMatcher) matches(args []interface{}) bool {
	if len(args) != len(l.matcherList) {
		return false
	}
	for i, matcher := range l.matcherList {
		if !matcher.Matches(args[i]) {
			return false
		}
	}
	return true
}

func (l *argumentsMatcher) String() string {
	return l.matcherList.toString("Args", '(', ')')
}

type funcMatcher struct {
	reflect.Value
	explanation string
}

func (f funcMatcher) String() string {
	return f.explanation
}

func (f funcMatcher) Matches(arg interface{}) bool {
	in := f.Type().In(0)
	var v reflect.Value
	if arg == nil {
		switch in.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
			v = reflect.Zero(in)
		default:
			return false
		}
	} else {
		v = reflect.ValueOf(arg)
		if !v.Type().AssignableTo(in) {
			return false
		}
	}
	return f.Call([]reflect.Value{v})[0].Bool()
}

// Func returns a matcher from f, which must be a func(x X) bool.
//
// Arguments not assignable to X do not match.
// Optionally include an explanation that will be formatted to string to describe what is being matched
func Func(f interface{}, explanation ...interface{}) Matcher {
	fv := reflect.ValueOf(f)
	ft := fv.Type()
	if ft.Kind() != reflect.Func || ft.NumIn() != 1 || ft.IsVariadic() || ft.NumOut() != 1 || ft.Out(0).Kind() != reflect.Bool {
		panic(fmt.Sprintf("Func matcher expects func(x X) bool, got %v", ft))
	}

	var explainString string
	if len(explanation) == 0 {
		explainString = fmt.Sprintf("%T", f)
	} else {
		explainString = fmt.Sprint(explanation...)
	}

	return funcMatcher{fv, explainString}
}

type eqlMatcher struct {
	expected interface{}
}

func (e eqlMatcher) Matches(arg interface{}) bool {
	return assert.ObjectsAreEqual(e.expected, arg)
}

func (e eqlMatcher) String() string {
	return fmt.Sprintf("Eql(%#v)", e.expected)
}

// Eql matches an argument deeply equal to v (same type, same contents)
func Eql(v interface{}) Matcher {
	return eqlMatcher{v}
}

type eqlValuesMatcher struct {
	expected interface{}
}

func (e eqlValuesMatcher) Matches(arg interface{}) bool {
	return assert.ObjectsAreEqualValues(e.expected, arg)
}

func (e eqlValuesMatcher) String() string {
	return fmt.Sprintf("EqlValues(%#v)", e.expected)
}

// EqlValues matches an argument equal to v after converting v to the argument's type, eg 1 matches int64(1)
func EqlValues(v interface{}) Matcher {
	return eqlValuesMatcher{v}
}

type anythingMatcher struct{}

func (anythingMatcher) Matches(interface{}) bool { return true }
func (anythingMatcher) String() string         { return "Anything" }

// Anything matches any argument, including nil
func Anything() Matcher {
	return anythingMatcher{}
}

type nilMatcher struct{}

func (n nilMatcher) String() string {
	return "Nil"
}

func (n nilMatcher) Matches(arg interface{}) bool {
	if arg == nil {
		return true
	}

	v := reflect.ValueOf(arg)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	}

	return false
}

var singletonNilMatcher = nilMatcher{}

// Nil matches a nil argument of any nil-able type
func Nil() Matcher {
	return singletonNilMatcher
}

type lenMatcher struct {
	Matcher
}

func (l lenMatcher) String() string {
	return fmt.Sprintf("Len(%v)", l.Matcher)
}

func (l lenMatcher) Matches(arg interface{}) bool {
	v := reflect.ValueOf(arg)
	switch v.Kind() {
	case reflect.Array, reflect.Chan, reflect.Map, reflect.Slice, reflect.String:
		return l.Matcher.Matches(v.Len())
	default:
		return false
	}
}

// Len matches an Array, Chan, Map, Slice or String argument whose length matches v
//
// v may be anything that can match an int
// eg
//   Len(0)
//   Len(Func(func(l int) bool { return l <= 10 }))
func Len(v interface{}) Matcher {
	return lenMatcher{toMatcher(v)}
}

//IsA matches an argument that is AssignableTo or Implements the reflect.Type t
//
// if t is not already a reflect.Type it will be converted with reflect.TypeOf
func IsA(t interface{}) Matcher {
	rt, isType := t.(reflect.Type)
	if !isType {
		rt = reflect.TypeOf(t)
	}
	return Func(func(x interface{}) bool {
		if x == nil {
			return false
		}
		argT := reflect.TypeOf(x)
		if rt.Kind() == reflect.Interface {
			return argT.Implements(rt)
		}
		return argT.AssignableTo(rt)
	}, "IsA", "(", rt, ")")
}

type combinationMatcher struct {
	matcherList
	explain string
}

func (a combinationMatcher) String() string {
	return a.matcherList.toString(a.explain, '{', '}')
}

func newCombinationMatcher(expected []interface{}, explain string) combinationMatcher {
	matchers := make(matcherList, len(expected))
	for i, e := range expected {
		matchers[i] = toMatcher(e)
	}
	return combinationMatcher{matchers, explain}
}

type andMatcher struct {
	combinationMatcher
}

func (a andMatcher) Matches(arg interface{}) bool {
	for _, m := range a.matcherList {
		if !m.Matches(arg) {
			return false
		}
	}
	return true
}

// All matches if all the matchers match (returns true for no matchers)
func All(matchers ...interface{}) Matcher {
	return andMatcher{newCombinationMatcher(matchers, "All")}
}

type orMatcher struct {
	combinationMatcher
}

func (a orMatcher) Matches(arg interface{}) bool {
	for _, m := range a.matcherList {
		if m.Matches(arg) {
			return true
		}
	}
	return false
}

// Any matches if any one of matchers match (returns false for no matchers)
func Any(matchers ...interface{}) Matcher {
	return orMatcher{newCombinationMatcher(matchers, "Any")}
}

// Or is Any, for chains that read better as "this or that"
func Or(matchers ...interface{}) Matcher {
	return orMatcher{newCombinationMatcher(matchers, "Or")}
}

type notMatcher struct {
	Matcher
}

func (nm notMatcher) String() string {
	return fmt.Sprintf("Not(%v)", nm.Matcher)
}

func (nm notMatcher) Matches(arg interface{}) bool {
	return !nm.Matcher.Matches(arg)
}

// Not negates matcher, which may also be a value to compare with Eql
func Not(matcher interface{}) Matcher {
	return notMatcher{toMatcher(matcher)}
}
