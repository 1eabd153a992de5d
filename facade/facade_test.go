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

package facade

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdentify(t *testing.T) {
	i := NewIdentify("id", Fields{"email": "a@example.com"}, nil)
	assert.Equal(t, TypeIdentify, i.Type)
	assert.Equal(t, "id", i.UserID)
	assert.Equal(t, "a@example.com", i.Email())
	assert.Equal(t, Fields{}, i.Options)

	_, err := uuid.Parse(i.MessageID)
	require.NoError(t, err)
	assert.NotEqual(t, i.MessageID, NewIdentify("id", nil, nil).MessageID)

	assert.Equal(t, "b@example.com", NewIdentify("b@example.com", nil, nil).Email())
	assert.Equal(t, "", NewIdentify("id", nil, nil).Email())
	assert.Equal(t, Fields{}, NewIdentify("id", nil, nil).Traits)
}

func TestNewGroup_MirrorsTraitsToProperties(t *testing.T) {
	g := NewGroup("gid", Fields{"name": "acme"}, Fields{"opt": true})
	assert.Equal(t, "gid", g.GroupID)
	assert.Equal(t, g.Traits, g.Properties)
	assert.Equal(t, Fields{"opt": true}, g.Options)
}

func TestNewTrack_MirrorsPropertiesToTraits(t *testing.T) {
	tr := NewTrack("event", Fields{"revenue": 9.99, "sku": "a"}, nil)
	assert.Equal(t, "event", tr.Event)
	assert.Equal(t, tr.Properties, tr.Traits)
	assert.Equal(t, "a", tr.Property("sku"))
	assert.InDelta(t, 9.99, tr.Revenue(), 0.0001)
	assert.Equal(t, 0.0, NewTrack("e", nil, nil).Revenue())
}

func TestNewPage(t *testing.T) {
	p := NewPage("Docs", "Index", Fields{"url": "/docs"}, nil)
	assert.Equal(t, "Docs Index", p.FullName())
	assert.Equal(t, "Viewed Docs Index Page", p.Event())
	assert.Equal(t, "Loaded a Page", NewPage("", "", nil, nil).Event())

	track := p.Track()
	assert.Equal(t, "Viewed Docs Index Page", track.Event)
	assert.Equal(t, Fields{"url": "/docs", "category": "Docs", "name": "Index"}, track.Properties)
	assert.Equal(t, Fields{"url": "/docs"}, p.Properties)
}

func TestNewAlias(t *testing.T) {
	a := NewAlias("to", "from", nil)
	assert.Equal(t, TypeAlias, a.Type)
	assert.Equal(t, "to", a.To)
	assert.Equal(t, "from", a.From)
}

func TestTimestamp(t *testing.T) {
	fixed := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	defer func(original func() time.Time) { now = original }(now)
	now = func() time.Time { return fixed }

	assert.Equal(t, fixed, NewTrack("e", nil, nil).Timestamp)
}

func TestMessage_Enabled(t *testing.T) {
	tests := []struct {
		name     string
		options  Fields
		expected bool
	}{
		{"Default", nil, true},
		{"Disabled", Fields{"Acme": false}, false},
		{"AllOff", Fields{"all": false}, false},
		{"AllOffButEnabled", Fields{"all": false, "Acme": true}, true},
		{"Nested", Fields{"integrations": Fields{"Acme": false}}, false},
		{"NestedMap", Fields{"integrations": map[string]interface{}{"all": false}}, false},
		{"SettingsEnable", Fields{"all": false, "Acme": Fields{"key": "x"}}, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewTrack("e", nil, tt.options).Enabled("Acme"))
		})
	}
}

func TestMessage_Option(t *testing.T) {
	m := NewTrack("e", nil, Fields{"integrations": Fields{"Acme": Fields{"key": "x"}}})
	assert.Equal(t, Fields{"key": "x"}, m.Option("Acme"))
	assert.Nil(t, m.Option("Other"))
}
