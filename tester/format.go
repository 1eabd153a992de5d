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
	"encoding/json"
	"fmt"
	"strings"
)

// serialize renders v for a failure message as indented JSON, falling back to Go syntax
// for values JSON cannot represent (funcs, channels, cyclic structures).
func serialize(v interface{}) string {
	if b, err := json.MarshalIndent(v, "", "  "); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%#v", v)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// message formats testify style msgAndArgs: a format string followed by its arguments
func message(msgAndArgs []interface{}) string {
	switch len(msgAndArgs) {
	case 0:
		return ""
	case 1:
		if s, ok := msgAndArgs[0].(string); ok {
			return s
		}
		return fmt.Sprintf("%+v", msgAndArgs[0])
	default:
		if format, ok := msgAndArgs[0].(string); ok {
			return fmt.Sprintf(format, msgAndArgs[1:]...)
		}
		return strings.TrimSpace(fmt.Sprintln(msgAndArgs...))
	}
}

// lastArgs describes the most recent call of spy, for "but it was called with" messages
func lastArgs(spy *Spy) string {
	if last := spy.LastCall(); last != nil {
		return serialize(last.Args)
	}
	return "nothing"
}

// describe serializes expected arguments, showing matchers by description
func describe(expected []interface{}) string {
	described := make([]interface{}, len(expected))
	for i, e := range expected {
		if m, isMatcher := e.(Matcher); isMatcher {
			described[i] = fmt.Sprint(m)
		} else {
			described[i] = e
		}
	}
	return serialize(described)
}
