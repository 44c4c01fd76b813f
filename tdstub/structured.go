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

package tdstub

import (
	"encoding/json"
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"
)

type jsonPathMatcher struct {
	path     string
	x        jp.Expr
	expected interface{}
	err      error
}

func (m jsonPathMatcher) String() string {
	return fmt.Sprintf("JSONPath(%s, %#v)", m.path, m.expected)
}

func (m jsonPathMatcher) validate() error {
	return m.err
}

func (m jsonPathMatcher) Matches(arg interface{}) bool {
	if m.err != nil {
		return false
	}
	data, err := generic(arg)
	if err != nil {
		return false
	}
	for _, result := range m.x.Get(data) {
		if assert.ObjectsAreEqual(m.expected, result) {
			return true
		}
	}
	return false
}

/*
JSONPath matches a single argument where any value selected by path equals expected.

	JSONPath("$.container.size", "S")

The argument and expected are compared in their JSON form, so structs are addressed by their json
field names and numbers compare equal regardless of Go type. An invalid path, or an expected value
with no JSON form, is reported when the rule is added.
*/
func JSONPath(path string, expected interface{}) ArgMatcher {
	m := jsonPathMatcher{path: path}
	var err error
	if m.x, err = jp.ParseString(path); err != nil {
		m.err = fmt.Errorf("%w: JSONPath(%q): %v", ErrInvalidMatcher, path, err)
		return m
	}
	if m.expected, err = generic(expected); err != nil {
		m.err = fmt.Errorf("%w: JSONPath(%q): %v", ErrInvalidMatcher, path, err)
	}
	return m
}

// generic converts v to its JSON form of maps, slices, strings, int64, float64, bool and nil
func generic(v interface{}) (interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return oj.Parse(b)
}
