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

import "fmt"

// An Expectation is a rule for how many times a spy may be called, see Assertion.CalledExpect
type Expectation interface {
	Met(count int) bool
}

const unbounded = -1

// callRange accepts counts from min to max inclusive; max is unbounded when negative
type callRange struct {
	min, max int
}

func (r callRange) Met(count int) bool {
	return count >= r.min && (r.max < 0 || count <= r.max)
}

func (r callRange) String() string {
	switch {
	case r.max == 0:
		return "never"
	case r.min == r.max:
		return fmt.Sprintf("exactly %d %s", r.min, plural(r.min, "time"))
	case r.max < 0:
		return fmt.Sprintf("at least %d %s", r.min, plural(r.min, "time"))
	case r.min <= 0:
		return fmt.Sprintf("at most %d %s", r.max, plural(r.max, "time"))
	}
	return fmt.Sprintf("between %d and %d times", r.min, r.max)
}

func Exactly(n int) Expectation { return callRange{n, n} }

func Once() Expectation   { return Exactly(1) }
func Twice() Expectation  { return Exactly(2) }
func Thrice() Expectation { return Exactly(3) }

// Never is met only by a spy that was not called
func Never() Expectation { return callRange{0, 0} }

func AtLeast(n int) Expectation { return callRange{n, unbounded} }

func AtMost(n int) Expectation { return callRange{0, n} }

// Between is met by min to max calls, inclusive
func Between(min, max int) Expectation { return callRange{min, max} }
