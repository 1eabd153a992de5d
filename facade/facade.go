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

// Package facade builds the canonical event objects handed to integrations:
// Identify, Group, Track, Page and Alias.
package facade

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Fields is a bag of traits, properties or options
type Fields map[string]interface{}

// Event types
const (
	TypeIdentify = "identify"
	TypeGroup    = "group"
	TypeTrack    = "track"
	TypePage     = "page"
	TypeAlias    = "alias"
)

var now = time.Now

// Message carries what every event has in common
type Message struct {
	Type      string
	MessageID string
	Timestamp time.Time
	Options   Fields
}

func newMessage(eventType string, options Fields) Message {
	if options == nil {
		options = Fields{}
	}
	return Message{
		Type:      eventType,
		MessageID: uuid.NewString(),
		Timestamp: now().UTC(),
		Options:   options,
	}
}

/*
Enabled reports whether the message should be sent to integration.

Options may switch integrations on or off by name, either at the top level
or under "integrations", with "all" as the fallback:
  Fields{"integrations": Fields{"all": false, "Acme": true}}
*/
func (m Message) Enabled(integration string) bool {
	options := m.Options
	if nested, ok := asFields(options["integrations"]); ok {
		options = nested
	}
	if enabled, ok := options[integration].(bool); ok {
		return enabled
	}
	if enabled, ok := options[integration]; ok && enabled != nil {
		return true
	}
	if all, ok := options["all"].(bool); ok {
		return all
	}
	return true
}

// Option returns the options specific to integration, nil if there are none
func (m Message) Option(integration string) Fields {
	options := m.Options
	if nested, ok := asFields(options["integrations"]); ok {
		options = nested
	}
	specific, _ := asFields(options[integration])
	return specific
}

func asFields(v interface{}) (Fields, bool) {
	switch f := v.(type) {
	case Fields:
		return f, true
	case map[string]interface{}:
		return Fields(f), true
	}
	return nil, false
}

func orEmpty(f Fields) Fields {
	if f == nil {
		return Fields{}
	}
	return f
}

// Identify associates a user with traits
type Identify struct {
	Message
	UserID string
	Traits Fields
}

// NewIdentify builds an Identify for user id with traits
func NewIdentify(id string, traits Fields, options Fields) *Identify {
	return &Identify{
		Message: newMessage(TypeIdentify, options),
		UserID:  id,
		Traits:  orEmpty(traits),
	}
}

// Email is the email trait, or the user id if it looks like an email
func (i *Identify) Email() string {
	if email, ok := i.Traits["email"].(string); ok && email != "" {
		return email
	}
	if strings.Contains(i.UserID, "@") {
		return i.UserID
	}
	return ""
}

// Trait returns trait key, or nil
func (i *Identify) Trait(key string) interface{} {
	return i.Traits[key]
}

// Group associates a user with a group.
type Group struct {
	Message
	GroupID string
	Traits  Fields
	// Properties mirrors Traits for integrations that still read group properties
	Properties Fields
}

// NewGroup builds a Group for group id with traits
func NewGroup(id string, traits Fields, options Fields) *Group {
	traits = orEmpty(traits)
	return &Group{
		Message:    newMessage(TypeGroup, options),
		GroupID:    id,
		Traits:     traits,
		Properties: traits,
	}
}

// Track records an event performed by a user.
type Track struct {
	Message
	Event      string
	Properties Fields
	// Traits mirrors Properties for integrations that still read track traits
	Traits Fields
}

// NewTrack builds a Track of event with properties
func NewTrack(event string, properties Fields, options Fields) *Track {
	properties = orEmpty(properties)
	return &Track{
		Message:    newMessage(TypeTrack, options),
		Event:      event,
		Properties: properties,
		Traits:     properties,
	}
}

// Property returns property key, or nil
func (t *Track) Property(key string) interface{} {
	return t.Properties[key]
}

// Revenue is the numeric revenue property, or 0
func (t *Track) Revenue() float64 {
	switch r := t.Properties["revenue"].(type) {
	case float64:
		return r
	case float32:
		return float64(r)
	case int:
		return float64(r)
	case int64:
		return float64(r)
	}
	return 0
}

// Page records a page view
type Page struct {
	Message
	Category   string
	Name       string
	Properties Fields
}

// NewPage builds a Page view of category and name
func NewPage(category, name string, properties Fields, options Fields) *Page {
	return &Page{
		Message:    newMessage(TypePage, options),
		Category:   category,
		Name:       name,
		Properties: orEmpty(properties),
	}
}

// FullName is the category and name joined by a space
func (p *Page) FullName() string {
	return strings.TrimSpace(p.Category + " " + p.Name)
}

// Event is the track event name equivalent of this page view, eg "Viewed Docs Index Page"
func (p *Page) Event() string {
	if name := p.FullName(); name != "" {
		return "Viewed " + name + " Page"
	}
	return "Loaded a Page"
}

// Track converts the page view into the equivalent Track
func (p *Page) Track() *Track {
	properties := Fields{}
	for k, v := range p.Properties {
		properties[k] = v
	}
	if p.Category != "" {
		properties["category"] = p.Category
	}
	if p.Name != "" {
		properties["name"] = p.Name
	}
	return NewTrack(p.Event(), properties, p.Options)
}

// Alias merges the identity from into to
type Alias struct {
	Message
	To   string
	From string
}

// NewAlias builds an Alias of from into to
func NewAlias(to, from string, options Fields) *Alias {
	return &Alias{
		Message: newMessage(TypeAlias, options),
		To:      to,
		From:    from,
	}
}
