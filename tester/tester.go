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
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lwoggardner/integrationtester/facade"
	"github.com/lwoggardner/integrationtester/integration"
)

// ErrAlreadyLoaded is reported by Loads when the integration was loaded before the test
var ErrAlreadyLoaded = errors.New("already loaded")

/*
Tester drives an integration and asserts on its behaviour.

It owns a Registry for spies and stubs and embeds an Assertion over it, so spy assertions
can be made directly on the Tester.

 tr := tester.New(t, Acme.New())
 defer tr.RestoreAll()

 tr.Name("Acme").Global("acme").Option("apiKey", "")

 logEvent := tr.Spy(window, "LogEvent")
 tr.Track("event", facade.Fields{"baz": true}).
	Called(logEvent).
	With("event", facade.Fields{"baz": true})
*/
type Tester struct {
	*Assertion
	registry    *Registry
	integration *integration.Integration
	loadTimeout time.Duration
}

// DefaultLoadTimeout bounds how long Load waits for an integration to call done
const DefaultLoadTimeout = 5 * time.Second

// New returns a Tester for integration i reporting to t
func New(t T, i *integration.Integration, configurators ...func(*Registry)) *Tester {
	registry := NewRegistry(t, configurators...)
	return &Tester{
		Assertion:   NewAssertion(registry, nil),
		registry:    registry,
		integration: i,
		loadTimeout: DefaultLoadTimeout,
	}
}

// Registry holds the spies and stubs installed through this Tester
func (tr *Tester) Registry() *Registry {
	return tr.registry
}

// Integration is the integration under test
func (tr *Tester) Integration() *integration.Integration {
	return tr.integration
}

// Spy installs a recording wrapper on host's method, see Registry.Spy
func (tr *Tester) Spy(host interface{}, method string) *Spy {
	tr.t().Helper()
	return tr.registry.Spy(host, method)
}

// Stub installs a recording replacement for host's method, see Registry.Stub
func (tr *Tester) Stub(host interface{}, method string, replacement ...interface{}) *Spy {
	tr.t().Helper()
	return tr.registry.Stub(host, method, replacement...)
}

// Restore restores spies, or every spy if none are given
func (tr *Tester) Restore(spies ...*Spy) *Tester {
	tr.registry.Restore(spies...)
	return tr
}

// RestoreAll restores every spy and empties the registry
func (tr *Tester) RestoreAll() {
	tr.registry.RestoreAll()
}

// Name asserts the integration is called name
func (tr *Tester) Name(name string) *Tester {
	tr.t().Helper()
	if actual := tr.integration.Name; actual != name {
		tr.fail("Expected name to be %q, but it was %q.", name, actual)
	}
	return tr
}

// Global asserts the integration registers global key
func (tr *Tester) Global(key string) *Tester {
	tr.t().Helper()
	if !contains(tr.integration.Globals, key) {
		tr.fail("Expected global %q to be registered.", key)
	}
	return tr
}

// Option asserts the integration has option key defaulting to value
func (tr *Tester) Option(key string, value interface{}) *Tester {
	tr.t().Helper()
	actual, found := tr.integration.Defaults[key]
	if !found || !assert.ObjectsAreEqual(value, actual) {
		tr.fail("Expected option %q to default to %s, but it defaults to %s.", key, serialize(value), serialize(actual))
	}
	return tr
}

// Mapping asserts the integration has a mapping option called name
func (tr *Tester) Mapping(name string) *Tester {
	tr.t().Helper()
	return tr.Option(name, []interface{}{})
}

// AssumesPageview asserts the integration records a page view on load
func (tr *Tester) AssumesPageview() *Tester {
	tr.t().Helper()
	if !tr.integration.AssumesPageview {
		tr.fail("Expected the integration to assume a pageview.")
	}
	return tr
}

// ReadyOnInitialize asserts the integration is ready once initialised
func (tr *Tester) ReadyOnInitialize() *Tester {
	tr.t().Helper()
	if !tr.integration.ReadyOnInitialize {
		tr.fail("Expected the integration to be ready on initialize.")
	}
	return tr
}

// ReadyOnLoad asserts the integration is ready once loaded
func (tr *Tester) ReadyOnLoad() *Tester {
	tr.t().Helper()
	if !tr.integration.ReadyOnLoad {
		tr.fail("Expected integration to be ready on load.")
	}
	return tr
}

/*
Compare asserts actual is defined like expected: same name, every expected option present
with the same default, every expected global registered and the same readiness flags.
*/
func (tr *Tester) Compare(actual, expected *integration.Definition) *Tester {
	tr.t().Helper()
	a, b := actual.New(), expected.New()

	if a.Name != b.Name {
		tr.fail("Expected name to be %q, but it was %q.", b.Name, a.Name)
	}

	for key, value := range b.Defaults {
		actualValue, found := a.Defaults[key]
		if !found {
			tr.fail("The integration does not have an option named %q.", key)
		}
		if !assert.ObjectsAreEqual(value, actualValue) {
			tr.fail("Expected option %q to default to %s, but it defaults to %s.", key, serialize(value), serialize(actualValue))
		}
	}

	for _, key := range b.Globals {
		if !contains(a.Globals, key) {
			tr.fail("Expected global %q to be registered.", key)
		}
	}

	if a.AssumesPageview != b.AssumesPageview {
		tr.fail("Expected the integration to assume a pageview.")
	}
	if a.ReadyOnInitialize != b.ReadyOnInitialize {
		tr.fail("Expected the integration to be ready on initialize.")
	}
	if a.ReadyOnLoad != b.ReadyOnLoad {
		tr.fail("Expected integration to be ready on load.")
	}
	return tr
}

// Initialize calls the integration's Initialize
func (tr *Tester) Initialize() *Assertion {
	tr.integration.Initialize()
	return NewAssertion(tr.registry, nil)
}

// Loads calls the integration's Load with done, or done with ErrAlreadyLoaded if it is already loaded
func (tr *Tester) Loads(done func(error)) *Tester {
	if tr.integration.Loaded() {
		done(fmt.Errorf("%q is %w", tr.integration.Name, ErrAlreadyLoaded))
		return tr
	}
	tr.integration.Load(done)
	return tr
}

/*
Load asserts the integration goes from not loaded to loaded.

It initialises the integration and loads it, then waits (up to the load timeout) for Load to
report. On success it asserts Loaded and calls done. The assertions and done run on the
calling goroutine after Load has returned, so the nodes Load returned are visible to Loaded.
*/
func (tr *Tester) Load(done func()) {
	tr.t().Helper()
	i := tr.integration
	tr.Assert(!i.Loaded(), "Expected `integration.Loaded()` to be false before loading.")
	i.Initialize()

	result := make(chan error, 1)
	i.Load(func(err error) {
		select {
		case result <- err:
		default:
		}
	})

	select {
	case err := <-result:
		tr.NoError(err, "Expected %q to load", i.Name)
	case <-time.After(tr.loadTimeout):
		tr.fail("Expected %q to finish loading within %v.", i.Name, tr.loadTimeout)
		return
	}
	tr.Assert(i.Loaded(), "Expected `integration.Loaded()` to be true after loading.")
	if done != nil {
		done()
	}
}

// SetLoadTimeout overrides how long Load waits for the integration to report
func (tr *Tester) SetLoadTimeout(timeout time.Duration) *Tester {
	tr.loadTimeout = timeout
	return tr
}

// Reset calls the integration's Reset
func (tr *Tester) Reset() *Tester {
	tr.integration.Reset()
	return tr
}

// Identify sends an Identify built from id, traits and options to the integration
func (tr *Tester) Identify(id string, traits facade.Fields, options ...facade.Fields) *Assertion {
	f := facade.NewIdentify(id, traits, merge(options))
	tr.integration.Identify(f)
	return NewAssertion(tr.registry, f)
}

// Group sends a Group built from id, traits and options to the integration
func (tr *Tester) Group(id string, traits facade.Fields, options ...facade.Fields) *Assertion {
	f := facade.NewGroup(id, traits, merge(options))
	tr.integration.Group(f)
	return NewAssertion(tr.registry, f)
}

// Track sends a Track built from event, properties and options to the integration
func (tr *Tester) Track(event string, properties facade.Fields, options ...facade.Fields) *Assertion {
	f := facade.NewTrack(event, properties, merge(options))
	tr.integration.Track(f)
	return NewAssertion(tr.registry, f)
}

// Page sends a Page built from category, name, properties and options to the integration
func (tr *Tester) Page(category, name string, properties facade.Fields, options ...facade.Fields) *Assertion {
	f := facade.NewPage(category, name, properties, merge(options))
	tr.integration.Page(f)
	return NewAssertion(tr.registry, f)
}

// Alias sends an Alias of from into to, with options, to the integration
func (tr *Tester) Alias(to, from string, options ...facade.Fields) *Assertion {
	f := facade.NewAlias(to, from, merge(options))
	tr.integration.Alias(f)
	return NewAssertion(tr.registry, f)
}

func merge(options []facade.Fields) facade.Fields {
	merged := facade.Fields{}
	for _, o := range options {
		for k, v := range o {
			merged[k] = v
		}
	}
	return merged
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
