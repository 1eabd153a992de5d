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
)

//checkReplacement returns an error unless implType can stand in for a method of type fnType
func checkReplacement(fnType reflect.Type, implType reflect.Type) error {
	if err := checkInputs(fnType, implType); err != nil {
		return err
	}
	return checkOutputs(fnType, implType)
}

//checkInputs returns an error unless implType accepts every argument a method of fnType receives
func checkInputs(fnType reflect.Type, implType reflect.Type) error {
	if implType.Kind() != reflect.Func {
		return fmt.Errorf("expected func, got %v", implType)
	}

	if implType.IsVariadic() != fnType.IsVariadic() {
		return fmt.Errorf("%v expects %v to have variadic=%v, found %v", fnType, implType, fnType.IsVariadic(), implType.IsVariadic())
	}

	if implType.NumIn() != fnType.NumIn() {
		return fmt.Errorf("%v expects %v to have %d arguments, found %d", fnType, implType, fnType.NumIn(), implType.NumIn())
	}

	for i := 0; i < implType.NumIn(); i++ {
		if !fnType.In(i).AssignableTo(implType.In(i)) {
			return fmt.Errorf("%v requires %v arg %d to be assignable from %v", fnType, implType, i, fnType.In(i))
		}
	}
	return nil
}

//checkOutputs returns an error unless implType's results are assignable to fnType's results
func checkOutputs(fnType reflect.Type, implType reflect.Type) error {
	if fnType.NumOut() != implType.NumOut() {
		return fmt.Errorf("%v for %v expects to have %d return values, found %d", implType, fnType, fnType.NumOut(), implType.NumOut())
	}

	for i := 0; i < implType.NumOut(); i++ {
		if out := implType.Out(i); !out.AssignableTo(fnType.Out(i)) {
			return fmt.Errorf("%v for %v expects to have return value %d to be assignable to %v, got %v", implType, fnType, i, fnType.Out(i), out)
		}
	}
	return nil
}

// assignResults converts each result of a replacement to the exact result type of fnType
func assignResults(fnType reflect.Type, out []reflect.Value) []reflect.Value {
	for i, v := range out {
		if want := fnType.Out(i); v.Type() != want {
			converted := reflect.New(want).Elem()
			converted.Set(v)
			out[i] = converted
		}
	}
	return out
}
