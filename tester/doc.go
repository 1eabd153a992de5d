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

/*
Package tester drives an analytics integration through its lifecycle and asserts on what it
does to the page and to the vendor's globals.

Spies and Stubs

Vendor SDKs and integrations expose their behaviour as func valued slots: exported func fields
of a struct, or func entries of a map. A Registry swaps such a slot for a recording wrapper.

A Spy calls through to the original and records the arguments, results and any panic of every
call. A Stub records in the same way but never calls the original: it delegates to a
replacement func, or returns zero values.

 reg := tester.NewRegistry(t)
 defer reg.RestoreAll()

 logEvent := reg.Spy(window, "LogEvent")
 setUser := reg.Stub(window, "SetUser", func(id string, traits facade.Fields) {})

Restoring puts the original func back; RestoreAll restores the most recently installed first,
so stacked spies on the same slot unwind correctly.

Assertions

An Assertion is a chain that fails the test through T.Fatalf. Called remembers its spy for a
following Args or With:

 tr.Track("event", facade.Fields{"baz": true}).
	Called(logEvent).
	With("event", facade.Fields{"baz": true})

Expected arguments are compared for deep equality, unless they are a Matcher:

 tr.Called(logEvent, "event", tester.Anything())
 tr.Called(logEvent, tester.Func(func(e string) bool { return strings.HasPrefix(e, "Viewed") }), tester.Len(2))

Loading

Load runs Initialize and Load and asserts the integration reports loaded. Loaded then checks
the nodes returned by the spied Load against an HTML template, ignoring attribute order and
attributes that do not affect what is fetched:

 tr.Spy(acme, "Load")
 tr.Load(func() {
	tr.Loaded(`<script src="//cdn.acme.com/acme.js"></script>`)
 })

Set INTEGRATION_TESTER_TRACE=1 to log every recorded call.
*/
package tester
