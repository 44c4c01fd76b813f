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
	"fmt"
	"strings"
)

// A Pattern is the rehearsed argument list of a rule, with one ArgMatcher per position.
type Pattern []ArgMatcher

/*
NewPattern builds a Pattern from rehearsed arguments.

Values that are already an ArgMatcher are used as is, every other value is wrapped with Eql.
Matchers that can detect their own misconfiguration (eg IsA(nil)) are checked here.
*/
func NewPattern(values ...interface{}) (Pattern, error) {
	pattern := make(Pattern, len(values))
	for i, v := range values {
		if m, isMatcher := v.(ArgMatcher); isMatcher {
			if err := validateMatcher(m); err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			pattern[i] = m
		} else {
			pattern[i] = Eql(v)
		}
	}
	return pattern, nil
}

/*
Satisfied reports whether args match this pattern.

Unless ignoreExtraArgs is set, args must have exactly one value per position. With
ignoreExtraArgs, args may be longer and the extra values are never examined.
*/
func (p Pattern) Satisfied(args []interface{}, ignoreExtraArgs bool) (bool, error) {
	if len(args) < len(p) || (!ignoreExtraArgs && len(args) != len(p)) {
		return false, nil
	}
	for i, matcher := range p {
		if ok, err := matchArg(matcher, args[i]); err != nil {
			return false, fmt.Errorf("argument %d: %w", i, err)
		} else if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (p Pattern) String() string {
	s := strings.Builder{}
	s.WriteString("Args(")
	for i, m := range p {
		if i > 0 {
			s.WriteRune(',')
		}
		s.WriteString(fmt.Sprint(m))
	}
	s.WriteRune(')')
	return s.String()
}
