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
	"strings"

	"github.com/lwoggardner/integrationtester/dom"
	"github.com/lwoggardner/integrationtester/integration"
)

// Loaded asserts the integration under test loaded a tag matching template, see LoadedBy
func (tr *Tester) Loaded(template string) *Tester {
	tr.t().Helper()
	return tr.LoadedBy(tr.integration, template)
}

/*
LoadedBy asserts i's Load produced a script, image or iframe matching template.

Load must be spied (or stubbed) on i. Every node returned by the most recent call is compared
with template after both are reduced to canonical tags, ignoring attribute order and the
attributes that do not affect loading (type, async and defer on scripts; width, height and
style on iframes).

 tr.Spy(acme, "Load")
 tr.Load(func() {
	tr.Loaded(`<script src="//cdn.acme.com/acme.js"></script>`)
 })
*/
func (tr *Tester) LoadedBy(i *integration.Integration, template string) *Tester {
	tr.t().Helper()
	load := tr.registry.Lookup(i, "Load")
	if load == nil {
		tr.fail("You must call `.Spy(integration, \"Load\")` prior to calling `.Loaded()`.")
		return tr
	}

	var nodes []dom.Node
	if last := load.LastCall(); last != nil {
		nodes, _ = last.Return().([]dom.Node)
	}
	observed := dom.Observe(nodes)

	expected, found, err := dom.Contains(observed, template)
	if err != nil {
		tr.fail("Invalid tag template: %v", err)
		return tr
	}
	if len(observed) == 0 {
		tr.fail("No tags were returned.\nExpected %s.", expected)
		return tr
	}
	if !found {
		tr.fail("\nExpected %s.\nFound %s", expected, strings.Join(observed, "\n"))
	}
	return tr
}
