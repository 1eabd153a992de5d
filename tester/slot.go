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
	"errors"
	"fmt"
	"reflect"
)

var errNotSwappable = errors.New("host must be a pointer to a struct or a map with string keys")

// slot is a swappable func valued location: a struct field or a map entry
type slot struct {
	host   reflect.Value
	method string
	fnType reflect.Type
	get    func() reflect.Value
	set    func(reflect.Value)
}

func newSlot(host interface{}, method string) (*slot, error) {
	v := reflect.ValueOf(host)
	s := &slot{host: v, method: method}

	switch {
	case v.Kind() == reflect.Ptr && !v.IsNil() && v.Elem().Kind() == reflect.Struct:
		field := v.Elem().FieldByName(method)
		if !field.IsValid() {
			return nil, fmt.Errorf("no method %q", method)
		}
		if !field.CanSet() {
			return nil, fmt.Errorf("%q is not exported", method)
		}
		s.get = func() reflect.Value {
			if field.IsNil() {
				return reflect.Value{}
			}
			return reflect.ValueOf(field.Interface())
		}
		s.set = func(fn reflect.Value) { field.Set(fn) }
		if field.Kind() != reflect.Func {
			return nil, fmt.Errorf("%q is a %v, not a func", method, field.Type())
		}

	case v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String:
		if v.IsNil() {
			return nil, errors.New("host map is nil")
		}
		key := reflect.ValueOf(method).Convert(v.Type().Key())
		s.get = func() reflect.Value {
			entry := v.MapIndex(key)
			if entry.IsValid() && entry.Kind() == reflect.Interface {
				entry = entry.Elem()
			}
			if !entry.IsValid() || (entry.Kind() == reflect.Func && entry.IsNil()) {
				return reflect.Value{}
			}
			return entry
		}
		s.set = func(fn reflect.Value) { v.SetMapIndex(key, fn) }
		if entry := v.MapIndex(key); !entry.IsValid() {
			return nil, fmt.Errorf("no method %q", method)
		}

	default:
		return nil, errNotSwappable
	}

	current := s.get()
	if !current.IsValid() {
		return nil, fmt.Errorf("%q is nil", method)
	}
	if current.Kind() != reflect.Func {
		return nil, fmt.Errorf("%q is a %v, not a func", method, current.Type())
	}
	s.fnType = current.Type()
	return s, nil
}

// is reports whether this slot is host's method
func (s *slot) is(host interface{}, method string) bool {
	if method != s.method {
		return false
	}
	v := reflect.ValueOf(host)
	if !v.IsValid() || v.Type() != s.host.Type() {
		return false
	}
	return v.Pointer() == s.host.Pointer()
}

func (s *slot) String() string {
	return fmt.Sprintf("%v.%s", s.host.Type(), s.method)
}
