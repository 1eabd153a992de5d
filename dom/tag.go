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
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// placeholderSrc stands in for src while a template is parsed, so parsing never triggers a fetch.
const placeholderSrc = "data-integration-tester-src"

// attributes that have no bearing on whether the right tag was loaded
var ignoredAttributes = map[string][]string{
	"script": {"type", "async", "defer"},
	"iframe": {"width", "height", "style"},
}

// ErrNoElement is returned when a template does not contain any element
var ErrNoElement = errors.New("template contains no element")

// Tag is the canonical form of an element: its lowercased type and relevant attributes.
type Tag struct {
	Type  string
	Attrs map[string]string
}

// String renders the tag with attributes sorted by name, so attribute order never matters.
// img is rendered self-closing, everything else with a closing tag.
func (t Tag) String() string {
	return render(t.Type, t.Attrs)
}

func newTag(tagType string, attrs map[string]string) Tag {
	tag := Tag{Type: strings.ToLower(tagType), Attrs: make(map[string]string, len(attrs))}
	for name, value := range attrs {
		tag.Attrs[strings.ToLower(name)] = value
	}
	for _, ignored := range ignoredAttributes[tag.Type] {
		delete(tag.Attrs, ignored)
	}
	return tag
}

// Canonical returns the canonical tag for n, false if n is nil
func Canonical(n Node) (Tag, bool) {
	switch node := n.(type) {
	case *Image:
		if node == nil {
			return Tag{}, false
		}
		return newTag("img", map[string]string{"src": node.Src}), true
	case *Element:
		if node == nil {
			return Tag{}, false
		}
		return newTag(node.TagName, node.attrs), true
	default:
		return Tag{}, false
	}
}

// Observe renders the canonical tag strings of nodes, skipping nils
func Observe(nodes []Node) []string {
	observed := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if tag, ok := Canonical(n); ok {
			observed = append(observed, tag.String())
		}
	}
	return observed
}

// ParseTemplate parses an expected tag template, eg `<script src="//cdn.example.com/a.js"></script>`,
// into its canonical tag.
func ParseTemplate(template string) (Tag, error) {
	source := strings.Replace(template, ` src="`, ` `+placeholderSrc+`="`, 1)
	substituted := source != template

	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(source), context)
	if err != nil {
		return Tag{}, fmt.Errorf("parse template %q: %w", template, err)
	}

	for _, n := range nodes {
		if n.Type != html.ElementNode {
			continue
		}
		attrs := make(map[string]string, len(n.Attr))
		for _, attr := range n.Attr {
			name := attr.Key
			if substituted && name == placeholderSrc {
				name = "src"
				substituted = false
			}
			attrs[name] = attr.Val
		}
		return newTag(n.Data, attrs), nil
	}
	return Tag{}, fmt.Errorf("%w: %q", ErrNoElement, template)
}

// Contains reports whether the canonical form of template is among observed
func Contains(observed []string, template string) (expected string, found bool, err error) {
	tag, err := ParseTemplate(template)
	if err != nil {
		return "", false, err
	}
	expected = tag.String()
	for _, o := range observed {
		if o == expected {
			return expected, true, nil
		}
	}
	return expected, false, nil
}
