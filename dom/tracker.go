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
	"sync"
	"time"
)

// DefaultScriptTimeout bounds how long a script is waited for when it never fires a load event
const DefaultScriptTimeout = time.Second

// A Timewarp can be used to simulate the passing of a timeout, eg when testing using a fake clock.
// The canonical Timewarp is
//   time.After
type Timewarp func(d time.Duration) <-chan time.Time

/*
ScriptTracker counts the scripts that have been inserted but not yet loaded, so a test can
wait for vendor scripts to settle before the next test resets state.

A script is outstanding from Watch until either its load func is called or the timeout
expires. Callbacks registered with Wait fire once when the outstanding count reaches zero.
*/
type ScriptTracker struct {
	mutex     sync.Mutex
	waiting   map[int]*Element //held until loaded
	nextID    int
	callbacks []func()
	timeout   time.Duration
	sleeper   Timewarp
}

// NewScriptTracker returns a tracker with nothing outstanding.
//
// configurators can be used to override the timeout and sleeper
func NewScriptTracker(configurators ...func(*ScriptTracker)) *ScriptTracker {
	s := &ScriptTracker{
		waiting: map[int]*Element{},
		timeout: DefaultScriptTimeout,
		sleeper: time.After,
	}
	for _, c := range configurators {
		c(s)
	}
	return s
}

// SetTimeout overrides the default per-script timeout, and optionally the sleeper used to wait for it
func (s *ScriptTracker) SetTimeout(timeout time.Duration, sleeper ...Timewarp) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if len(sleeper) > 0 {
		s.sleeper = sleeper[0]
	}
	s.timeout = timeout
}

// CreateElement creates an element, watching it if it is a script.
// The returned func fires the element's load event.
func (s *ScriptTracker) CreateElement(tagName string, attrs ...string) (*Element, func()) {
	e := NewElement(tagName, attrs...)
	if e.Type() == "script" {
		return e, s.Watch(e)
	}
	return e, func() {}
}

// Watch marks script as outstanding and returns the func to call when it loads.
// Calling the returned func more than once, or after the timeout, has no effect.
func (s *ScriptTracker) Watch(script *Element) (loaded func()) {
	s.mutex.Lock()
	id := s.nextID
	s.nextID++
	s.waiting[id] = script
	timeout := s.sleeper(s.timeout)
	s.mutex.Unlock()

	fired := make(chan struct{})
	once := &sync.Once{}
	onLoad := func() {
		once.Do(func() {
			close(fired)
			s.resolve(id)
		})
	}

	go func() {
		select {
		case <-timeout:
			onLoad()
		case <-fired:
		}
	}()

	return onLoad
}

func (s *ScriptTracker) resolve(id int) {
	s.mutex.Lock()
	delete(s.waiting, id)
	var callbacks []func()
	if len(s.waiting) == 0 {
		callbacks = s.callbacks
		s.callbacks = nil
	}
	s.mutex.Unlock()

	for _, callback := range callbacks {
		callback()
	}
}

// Wait calls callback immediately if no script is outstanding, otherwise once all
// currently outstanding scripts have loaded or timed out.
func (s *ScriptTracker) Wait(callback func()) {
	s.mutex.Lock()
	if len(s.waiting) == 0 {
		s.mutex.Unlock()
		callback()
		return
	}
	s.callbacks = append(s.callbacks, callback)
	s.mutex.Unlock()
}

// Done returns a channel that is closed when Wait would call its callback
func (s *ScriptTracker) Done() <-chan struct{} {
	done := make(chan struct{})
	s.Wait(func() { close(done) })
	return done
}

// Pending is the number of outstanding scripts
func (s *ScriptTracker) Pending() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.waiting)
}
