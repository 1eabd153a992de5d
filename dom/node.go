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

// Package dom models the elements an integration's loader inserts into a page, and normalises
// them into canonical tags so that an expected tag template can be compared against what was
// actually produced.
package dom

import (
	"fmt"
	"sort"
	"strings"
)

// Node is an element observed as the result of an integration load.
//
// It is a closed set: either an *Image (a bare image object created for a tracking pixel)
// or an *Element (a script, iframe, img or any other tag).
type Node interface {
	node()
}

// Image is an image object that only carries a source URL.
type Image struct {
	Src string
}

func (*Image) node() {}

// NewImage returns an Image loading src
func NewImage(src string) *Image {
	return &Image{Src: src}
}

func (i *Image) String() string {
	return fmt.Sprintf("Image(%s)", i.Src)
}

// Element is a generic tag with attributes.
type Element struct {
	TagName string
	attrs   map[string]string
}

func (*Element) node() {}

// NewElement builds an element from tagName and alternating attribute name, value pairs.
// A trailing name without a value is set to the empty string (eg "async").
func NewElement(tagName string, attrs ...string) *Element {
	e := &Element{TagName: tagName, attrs: make(map[string]string, len(attrs)/2)}
	for i := 0; i < len(attrs); i += 2 {
		value := ""
		if i+1 < len(attrs) {
			value = attrs[i+1]
		}
		e.SetAttribute(attrs[i], value)
	}
	return e
}

// Script is shorthand for an async script element loading src
func Script(src string) *Element {
	return NewElement("script", "src", src, "type", "text/javascript", "async", "")
}

// Iframe is shorthand for a hidden iframe element loading src
func Iframe(src string) *Element {
	return NewElement("iframe", "src", src, "width", "1", "height", "1", "style", "display:none")
}

// Img is shorthand for an img element loading src
func Img(src string) *Element {
	return NewElement("img", "src", src)
}

// SetAttribute sets attribute name (lowercased) to value
func (e *Element) SetAttribute(name, value string) {
	if e.attrs == nil {
		e.attrs = map[string]string{}
	}
	e.attrs[strings.ToLower(name)] = value
}

// Attribute returns the value of attribute name and whether it is present
func (e *Element) Attribute(name string) (string, bool) {
	v, ok := e.attrs[strings.ToLower(name)]
	return v, ok
}

// Attributes returns a copy of all attributes
func (e *Element) Attributes() map[string]string {
	attrs := make(map[string]string, len(e.attrs))
	for k, v := range e.attrs {
		attrs[k] = v
	}
	return attrs
}

// Type is the lowercased tag name
func (e *Element) Type() string {
	return strings.ToLower(e.TagName)
}

func (e *Element) String() string {
	return render(e.Type(), e.attrs)
}

func render(tagType string, attrs map[string]string) string {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	sb := strings.Builder{}
	sb.WriteRune('<')
	sb.WriteString(tagType)
	for _, name := range names {
		sb.WriteString(fmt.Sprintf(` %s="%s"`, name, attrs[name]))
	}
	sb.WriteRune('>')
	if tagType != "img" {
		sb.WriteString("</")
		sb.WriteString(tagType)
		sb.WriteRune('>')
	}
	return sb.String()
}
