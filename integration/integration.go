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
Package integration defines the shape of a vendor integration as seen by the tester.

A Definition describes an integration (name, option defaults, globals, readiness flags) and
creates Integration instances. The lifecycle methods of an Integration are func fields, so that
each one is a slot that can be swapped by a spy or stub and later restored.

 Acme := integration.Create("Acme").
	Global("acme").
	Option("apiKey", "").
	Mapping("events").
	ReadyOnLoad()

 acme := Acme.New(integration.Options{"apiKey": "x"})
 acme.Track = func(t *facade.Track) { ... }
*/
package integration

import (
	"fmt"
	"sync/atomic"

	"github.com/lwoggardner/integrationtester/dom"
	"github.com/lwoggardner/integrationtester/facade"
)

// Options is a map of option name to value
type Options map[string]interface{}

// Definition describes an integration and creates instances of it
type Definition struct {
	name              string
	defaults          Options
	globals           []string
	assumesPageview   bool
	readyOnInitialize bool
	readyOnLoad       bool
}

// Create starts a Definition for the integration called name
func Create(name string) *Definition {
	return &Definition{name: name, defaults: Options{}}
}

// Global registers a global variable the integration owns
func (d *Definition) Global(key string) *Definition {
	d.globals = append(d.globals, key)
	return d
}

// Option registers option key with a default value
func (d *Definition) Option(key string, value interface{}) *Definition {
	d.defaults[key] = value
	return d
}

// Mapping registers a mapping option, which defaults to an empty list
func (d *Definition) Mapping(name string) *Definition {
	return d.Option(name, []interface{}{})
}

// AssumesPageview marks that the integration records a page view on load
func (d *Definition) AssumesPageview() *Definition {
	d.assumesPageview = true
	return d
}

// ReadyOnInitialize marks that the integration is ready as soon as it is initialised
func (d *Definition) ReadyOnInitialize() *Definition {
	d.readyOnInitialize = true
	return d
}

// ReadyOnLoad marks that the integration is ready once its script has loaded
func (d *Definition) ReadyOnLoad() *Definition {
	d.readyOnLoad = true
	return d
}

// Name of the integration
func (d *Definition) Name() string {
	return d.name
}

func (d *Definition) String() string {
	return fmt.Sprintf("Integration(%s)", d.name)
}

/*
New creates an instance with options merged over the defaults.

The lifecycle funcs default to no-ops, except Load which marks the instance loaded
and immediately reports success, and Loaded which reports whether Load has run.
*/
func (d *Definition) New(options ...Options) *Integration {
	i := &Integration{
		Name:              d.name,
		Defaults:          copyOptions(d.defaults),
		Options:           copyOptions(d.defaults),
		Globals:           append([]string(nil), d.globals...),
		AssumesPageview:   d.assumesPageview,
		ReadyOnInitialize: d.readyOnInitialize,
		ReadyOnLoad:       d.readyOnLoad,
	}
	for _, o := range options {
		for k, v := range o {
			i.Options[k] = v
		}
	}

	i.Initialize = func() {}
	i.Load = func(done func(error)) []dom.Node {
		atomic.StoreInt32(&i.loaded, 1)
		if done != nil {
			done(nil)
		}
		return nil
	}
	i.Loaded = func() bool { return atomic.LoadInt32(&i.loaded) == 1 }
	i.Page = func(*facade.Page) {}
	i.Track = func(*facade.Track) {}
	i.Identify = func(*facade.Identify) {}
	i.Group = func(*facade.Group) {}
	i.Alias = func(*facade.Alias) {}
	i.Reset = func() {}
	return i
}

func copyOptions(o Options) Options {
	c := make(Options, len(o))
	for k, v := range o {
		c[k] = v
	}
	return c
}

/*
Integration is an instance of a Definition.

Each lifecycle func is a swappable slot. Vendor implementations replace them; tests wrap
them with spies and stubs.
*/
type Integration struct {
	Name              string
	Defaults          Options
	Options           Options
	Globals           []string
	AssumesPageview   bool
	ReadyOnInitialize bool
	ReadyOnLoad       bool

	Initialize func()
	// Load inserts the vendor's script, image or iframe, calls done when loaded
	// and returns the nodes it created.
	Load     func(done func(error)) []dom.Node
	Loaded   func() bool
	Page     func(*facade.Page)
	Track    func(*facade.Track)
	Identify func(*facade.Identify)
	Group    func(*facade.Group)
	Alias    func(*facade.Alias)
	Reset    func()

	loaded int32
}

// Option returns option key, or nil
func (i *Integration) Option(key string) interface{} {
	return i.Options[key]
}

func (i *Integration) String() string {
	return fmt.Sprintf("Integration(%s)", i.Name)
}
