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

package dom

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// never fires, so scripts only resolve by loading
func noTimeout(time.Duration) <-chan time.Time {
	return make(chan time.Time)
}

func TestScriptTracker_WaitWithNothingPendingIsSynchronous(t *testing.T) {
	s := NewScriptTracker()
	called := false
	s.Wait(func() { called = true })
	assert.True(t, called)
	assert.Equal(t, 0, s.Pending())
}

func TestScriptTracker_WaitsForAllScripts(t *testing.T) {
	s := NewScriptTracker(func(s *ScriptTracker) { s.SetTimeout(time.Second, noTimeout) })

	_, loadFirst := s.CreateElement("script", "src", "http://a/1.js")
	_, loadSecond := s.CreateElement("script", "src", "http://a/2.js")
	_, loadImg := s.CreateElement("img", "src", "http://a/p.gif")
	assert.Equal(t, 2, s.Pending())

	count := 0
	s.Wait(func() { count++ })
	assert.Equal(t, 0, count)

	loadImg()
	loadFirst()
	assert.Equal(t, 0, count)
	assert.Equal(t, 1, s.Pending())

	loadSecond()
	assert.Equal(t, 1, count)

	// at most once per registration
	loadSecond()
	loadFirst()
	assert.Equal(t, 1, count)
	assert.Equal(t, 0, s.Pending())
}

func TestScriptTracker_TimeoutResolvesScript(t *testing.T) {
	timeouts := make(chan time.Time, 1)
	s := NewScriptTracker(func(s *ScriptTracker) {
		s.SetTimeout(time.Millisecond, func(time.Duration) <-chan time.Time { return timeouts })
	})

	s.Watch(Script("http://a/never-loads.js"))
	done := s.Done()

	select {
	case <-done:
		t.Fatal("expected wait to be pending until the timeout")
	default:
	}

	timeouts <- time.Now()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected timeout to resolve the outstanding script")
	}
	assert.Equal(t, 0, s.Pending())
}

func TestScriptTracker_DefaultTimeout(t *testing.T) {
	s := NewScriptTracker(func(s *ScriptTracker) { s.SetTimeout(10 * time.Millisecond) })
	s.Watch(Script("http://a/never-loads.js"))

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("expected script to time out")
	}
}
