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
	"reflect"
)

// zeroValues returns the zeroed results of fnType, used by stubs without a replacement
func zeroValues(fnType reflect.Type) []reflect.Value {
	if fnType.NumOut() == 0 {
		return nil
	}
	results := make([]reflect.Value, fnType.NumOut())
	for i := 0; i < fnType.NumOut(); i++ {
		results[i] = reflect.Zero(fnType.Out(i))
	}
	return results
}
