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
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

type tiface interface {
	test()
}

type tstring string

func (tstring) test() {
	panic("Unexpected call to test()")
}

func TestArgsMatcher(t *testing.T) {
	type test struct {
		name        string
		expected    []interface{}
		matching    []interface{}
		notMatching []interface{}
	}

	regexF := func(x string) bool { return regexp.MustCompile("^t").MatchString(x) }
	ts := tstring("atest")

	tests := []test{
		{"Values", []interface{}{"test", 10}, []interface{}{"test", 10}, []interface{}{"test", 11}},
		{"Func", []interface{}{Func(regexF)}, []interface{}{"test"}, []interface{}{""}},
		{"Type", []interface{}{reflect.TypeOf((*tiface)(nil)).Elem()}, []interface{}{ts}, []interface{}{"plainstring"}},
		{"TooFew", []interface{}{"test"}, []interface{}{"test"}, []interface{}{"test", "extra"}},
		{"TooMany", []interface{}{"test", Anything()}, []interface{}{"test", nil}, []interface{}{"test"}},
		{"None", []interface{}{}, []interface{}{}, []interface{}{"x"}},
		{"DeepEqual", []interface{}{map[string]interface{}{"a": []int{1}}}, []interface{}{map[string]interface{}{"a": []int{1}}}, []interface{}{map[string]interface{}{"a": []int{2}}}},
		{"TypesDiffer", []interface{}{1}, []interface{}{1}, []interface{}{int64(1)}},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			matcher := argsMatcher(test.expected)
			assert.True(t, matcher.matches(test.matching), "Expected %v to match %v", matcher, test.matching)
			assert.False(t, matcher.matches(test.notMatching), "Expected %v not to match %v", matcher, test.notMatching)
		})
	}
}

func TestSingleArgMatchers(t *testing.T) {
	type test struct {
		name        string
		matcher     Matcher
		matching    []interface{}
		notMatching []interface{}
		re          string
	}

	var emptySlice = make([]int, 0)
	var nilSlice []int
	var nilMap map[string]interface{}

	tests := []test{
		{"Eql(string)", Eql("x"), []interface{}{"x"}, []interface{}{"y", ""}, "x"},
		{"Eql(int)", Eql(10), []interface{}{10}, []interface{}{6, -1, 0, int64(10)}, "10"},
		{"EqlValues(int)", EqlValues(10), []interface{}{10, int64(10), 10.0}, []interface{}{6, "10"}, "EqlValues.*10"},
		{"NotEql(int)", Not(Eql(10)), []interface{}{6, -1, 0}, []interface{}{10}, "Not.*10"},
		{"Not(value)", Not("x"), []interface{}{"y"}, []interface{}{"x"}, "Not.*x"},
		{"Nil", Nil(), []interface{}{nil, nilSlice, nilMap}, []interface{}{emptySlice, []int{1}, 0, ""}, "Nil"},
		{"Anything", Anything(), []interface{}{nil, 0, "x", emptySlice}, []interface{}{}, "Anything"},
		{"Len([]int)", Len(2), []interface{}{[]int{0, 0}}, []interface{}{emptySlice, []int{1}, []int{1, 2, 3}, 0}, "Len.*2"},
		{"Len(string)", Len(Eql(3)), []interface{}{"one"}, []interface{}{"", "12"}, "Len.*3"},
		{"Len(map)", Len(1), []interface{}{map[string]int{"a": 1}}, []interface{}{nilMap, nil}, "Len.*1"},
		{"Len(Func(func >=))", Len(Func(func(l int) bool { return l >= 2 })), []interface{}{"one", "xx"}, []interface{}{"x", ""}, "Len.*func.*int.*bool"},
		{"Func(explained)", Func(func(s string) bool { return s != "" }, "non-empty"), []interface{}{"x"}, []interface{}{"", 10, nil}, "non-empty"},
		{"Func(nilable)", Func(func(m map[string]int) bool { return m == nil }), []interface{}{nil}, []interface{}{map[string]int{}}, "func"},
		{"All()", All(), []interface{}{"one", 10, true, emptySlice}, []interface{}{}, "All()"},
		{"Any()", Any(), []interface{}{}, []interface{}{"one", 10, true, emptySlice}, "Any()"},
		{"All", All(All(), "xxx", Len(3)), []interface{}{"xxx"}, []interface{}{"yyy"}, "All.*All.*xxx.*Len.*3"},
		{"Any", Any(Eql("xxx"), Len(2)), []interface{}{"xxx", "ab"}, []interface{}{"yyy", ""}, "Any.*xxx.*Len.*2"},
		{"Or", Or("xxx", Nil()), []interface{}{"xxx", nil}, []interface{}{"yyy", 0}, "Or.*xxx.*Nil"},
		{"IsA", IsA(111), []interface{}{33}, []interface{}{"yyyy", nil}, "int"},
		{"IsAType", IsA(reflect.TypeOf(10)), []interface{}{33}, []interface{}{"yyyy"}, "int"},
		{"IsAIface", IsA(reflect.TypeOf((*tiface)(nil)).Elem()), []interface{}{tstring("x")}, []interface{}{"x"}, "tiface"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			matcher := test.matcher
			assert.Regexp(t, test.re, fmt.Sprint(matcher))

			for _, arg := range test.matching {
				assert.True(t, matcher.Matches(arg), "Expected %s to match %v", matcher, arg)
			}
			for _, notArg := range test.notMatching {
				assert.False(t, matcher.Matches(notArg), "Expected %s to not match %v", matcher, notArg)
			}
		})
	}
}

func TestFunc_PanicsForInvalidFunc(t *testing.T) {
	tests := []struct {
		name string
		f    interface{}
	}{
		{"NotAFunc", "string"},
		{"MultiArgFunc", func(i int, s string) bool { return false }},
		{"NonBoolFunc", func(i int) {}},
		{"MoreReturns", func(s string) (bool, error) { return false, nil }},
		{"ReturnNotBool", func(s string) error { return nil }},
		{"Variadic", func(s ...string) bool { return false }},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			assert.PanicsWithValue(t,
				fmt.Sprintf("Func matcher expects func(x X) bool, got %v", reflect.TypeOf(test.f)),
				func() { Func(test.f) })
		})
	}
}
