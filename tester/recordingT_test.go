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
	"regexp"
	"sync"
	"testing"
)

// fatal is raised by recordingT.Fatalf to abort the code under test
type fatal struct {
	msg string
}

// recordingT is a T that records messages; Fatalf panics so the failing path stops like testing.T
type recordingT struct {
	mutex  sync.Mutex
	errors []string
	fatals []string
	logs   []string
}

func (r *recordingT) Errorf(format string, args ...interface{}) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *recordingT) Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.mutex.Lock()
	r.fatals = append(r.fatals, msg)
	r.mutex.Unlock()
	panic(fatal{msg})
}

func (r *recordingT) Logf(format string, args ...interface{}) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.logs = append(r.logs, fmt.Sprintf(format, args...))
}

func (r *recordingT) Helper() {}

// expectFatal runs f and fails t unless f fails fatally with a message matching re
func expectFatal(t *testing.T, re string, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		p := recover()
		failure, isFatal := p.(fatal)
		if !isFatal {
			if p != nil {
				panic(p)
			}
			t.Errorf("Expected fatal failure matching /%s/, but there was none", re)
			return
		}
		if !regexp.MustCompile(re).MatchString(failure.msg) {
			t.Errorf("Expected fatal failure matching /%s/, got %q", re, failure.msg)
		}
	}()
	f()
}

// expectPass runs f and fails t if f fails fatally
func expectPass(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		if p := recover(); p != nil {
			if failure, isFatal := p.(fatal); isFatal {
				t.Errorf("Unexpected fatal failure: %s", failure.msg)
				return
			}
			panic(p)
		}
	}()
	f()
}

// window is a host object standing in for a vendor's global
type window struct {
	LogEvent func(event string, properties map[string]interface{})
	Add      func(a, b int) int
	Sum      func(prefix string, values ...int) string
	Fail     func() error
	Missing  func()
	Count    int
	private  func()
}

func newWindow() *window {
	w := &window{}
	w.LogEvent = func(string, map[string]interface{}) { w.Count++ }
	w.Add = func(a, b int) int { w.Count++; return a + b }
	w.Sum = func(prefix string, values ...int) string {
		total := 0
		for _, v := range values {
			total += v
		}
		return fmt.Sprintf("%s%d", prefix, total)
	}
	w.Fail = func() error { panic("boom") }
	w.private = func() {}
	return w
}
