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
	"reflect"
	"strings"

	"github.com/stretchr/testify/assert"
)

// ArgMatcher loosens comparison for one argument position.
//
// Any value with this method can be used in a rehearsed call in place of an exact value,
// including gomock matchers.
type ArgMatcher interface {
	//Matches returns true if arg satisfies this matcher
	Matches(arg interface{}) bool
}

// A FallibleMatcher is an ArgMatcher whose test can fail.
//
// When resolving a call the engine prefers MatchArg and aborts the resolution on error.
type FallibleMatcher interface {
	ArgMatcher
	MatchArg(arg interface{}) (bool, error)
}

// validatingMatcher is implemented by matchers that can be misconfigured
type validatingMatcher interface {
	validate() error
}

func matchArg(m ArgMatcher, arg interface{}) (bool, error) {
	if fm, isFallible := m.(FallibleMatcher); isFallible {
		return fm.MatchArg(arg)
	}
	return m.Matches(arg), nil
}

func validateMatcher(m ArgMatcher) error {
	if vm, isValidating := m.(validatingMatcher); isValidating {
		return vm.validate()
	}
	return nil
}

func genericArgMatcher(matcher interface{}) ArgMatcher {
	switch typedMatcher := matcher.(type) {
	case ArgMatcher:
		return typedMatcher
	case reflect.Type, Kind:
		return IsA(typedMatcher)
	default:
		if matcher != nil && reflect.TypeOf(matcher).Kind() == reflect.Func {
			return ArgThat(matcher)
		}
		return Eql(matcher)
	}
}

type anythingMatcher struct{}

func (anythingMatcher) Matches(interface{}) bool {
	return true
}

func (anythingMatcher) String() string {
	return "Anything()"
}

// Anything matches any value, including nil, in a position the call supplies
func Anything() ArgMatcher {
	return anythingMatcher{}
}

type eqlMatcher struct {
	value interface{}
}

func (e eqlMatcher) Matches(arg interface{}) bool {
	return assert.ObjectsAreEqual(e.value, arg)
}

func (e eqlMatcher) String() string {
	return fmt.Sprintf("Eql(%#v)", e.value)
}

// Eql matches a single argument deeply equal to v
func Eql(v interface{}) ArgMatcher {
	return eqlMatcher{v}
}

type funcMatcher struct {
	reflect.Value
	explanation string
}

func (f funcMatcher) String() string {
	return f.explanation
}

func (f funcMatcher) validate() error {
	if !f.IsValid() || f.Kind() != reflect.Func {
		return fmt.Errorf("%w: ArgThat expected a func, got %v", ErrInvalidMatcher, f.explanation)
	}
	ft := f.Type()
	if ft.NumIn() != 1 || ft.IsVariadic() {
		return fmt.Errorf("%w: %v expected to accept 1 argument", ErrInvalidMatcher, ft)
	}
	switch {
	case ft.NumOut() == 1 && ft.Out(0).Kind() == reflect.Bool:
	case ft.NumOut() == 2 && ft.Out(0).Kind() == reflect.Bool && ft.Out(1) == errorType:
	default:
		return fmt.Errorf("%w: %v expected to return bool or (bool, error)", ErrInvalidMatcher, ft)
	}
	return nil
}

func (f funcMatcher) Matches(arg interface{}) bool {
	ok, err := f.MatchArg(arg)
	return ok && err == nil
}

func (f funcMatcher) MatchArg(arg interface{}) (bool, error) {
	if err := f.validate(); err != nil {
		return false, err
	}
	in := f.Type().In(0)
	var argV reflect.Value
	if arg == nil {
		if !nillable(in) {
			return false, nil
		}
		argV = reflect.Zero(in)
	} else if argT := reflect.TypeOf(arg); argT.AssignableTo(in) {
		argV = reflect.ValueOf(arg)
	} else {
		return false, nil
	}

	out := f.Call([]reflect.Value{argV})
	if len(out) == 2 && !out[1].IsNil() {
		return false, fmt.Errorf("%v: %w", f.explanation, out[1].Interface().(error))
	}
	return out[0].Bool(), nil
}

/*
ArgThat matches a single argument for which predicate returns true.

predicate must be a func(x X) bool or func(x X) (bool, error). Arguments not assignable to X do
not match. An error returned by predicate aborts the resolution of the call.

Optionally include an explanation that will be formatted to string to describe what is being matched
*/
func ArgThat(predicate interface{}, explanation ...interface{}) ArgMatcher {
	var explainString string
	if len(explanation) == 0 {
		explainString = fmt.Sprintf("ArgThat(%T)", predicate)
	} else {
		explainString = fmt.Sprint(explanation...)
	}
	return funcMatcher{reflect.ValueOf(predicate), explainString}
}

type matcherList []ArgMatcher

func (l matcherList) toString(prefix string) string {
	s := strings.Builder{}
	s.WriteString(prefix)
	s.WriteRune('{')
	for i, m := range l {
		if i > 0 {
			s.WriteRune(',')
		}
		s.WriteString(fmt.Sprint(m))
	}
	s.WriteRune('}')
	return s.String()
}

func (l matcherList) validate() error {
	for _, m := range l {
		if err := validateMatcher(m); err != nil {
			return err
		}
	}
	return nil
}

type andMatcher struct {
	matcherList
}

func (a andMatcher) String() string {
	return a.toString("All")
}

func (a andMatcher) Matches(arg interface{}) bool {
	ok, err := a.MatchArg(arg)
	return ok && err == nil
}

func (a andMatcher) MatchArg(arg interface{}) (bool, error) {
	for _, m := range a.matcherList {
		if ok, err := matchArg(m, arg); !ok || err != nil {
			return false, err
		}
	}
	return true, nil
}

// All matches if all the matchers match (returns true for no matchers)
func All(matchers ...ArgMatcher) ArgMatcher {
	return andMatcher{matchers}
}

type orMatcher struct {
	matcherList
}

func (o orMatcher) String() string {
	return o.toString("Any")
}

func (o orMatcher) Matches(arg interface{}) bool {
	ok, err := o.MatchArg(arg)
	return ok && err == nil
}

func (o orMatcher) MatchArg(arg interface{}) (bool, error) {
	for _, m := range o.matcherList {
		if ok, err := matchArg(m, arg); ok || err != nil {
			return ok, err
		}
	}
	return false, nil
}

// Any matches if any one of matchers match (returns false for no matchers)
func Any(matchers ...ArgMatcher) ArgMatcher {
	return orMatcher{matchers}
}

type notMatcher struct {
	ArgMatcher
}

func (n notMatcher) String() string {
	return fmt.Sprintf("Not(%v)", n.ArgMatcher)
}

func (n notMatcher) Matches(arg interface{}) bool {
	ok, err := n.MatchArg(arg)
	return ok && err == nil
}

func (n notMatcher) MatchArg(arg interface{}) (bool, error) {
	ok, err := matchArg(n.ArgMatcher, arg)
	return !ok && err == nil, err
}

func (n notMatcher) validate() error {
	return validateMatcher(n.ArgMatcher)
}

// Not negates matcher
func Not(matcher ArgMatcher) ArgMatcher {
	return notMatcher{matcher}
}

type nilMatcher struct{}

func (nilMatcher) String() string {
	return "Nil()"
}

func (nilMatcher) Matches(arg interface{}) bool {
	if arg == nil {
		return true
	}
	v := reflect.ValueOf(arg)
	return nillable(v.Type()) && v.IsNil()
}

// Nil matches nil or a nil value of any nil-able type
func Nil() ArgMatcher {
	return nilMatcher{}
}

type lenMatcher struct {
	ArgMatcher
}

func (l lenMatcher) String() string {
	return fmt.Sprintf("Len(%v)", l.ArgMatcher)
}

func (l lenMatcher) Matches(arg interface{}) bool {
	ok, err := l.MatchArg(arg)
	return ok && err == nil
}

func (l lenMatcher) MatchArg(arg interface{}) (bool, error) {
	v := reflect.ValueOf(arg)
	switch v.Kind() {
	case reflect.Array, reflect.Chan, reflect.Map, reflect.Slice, reflect.String:
		return matchArg(l.ArgMatcher, v.Len())
	default:
		return false, nil
	}
}

func (l lenMatcher) validate() error {
	return validateMatcher(l.ArgMatcher)
}

// Len matches a single Array, Chan, Map, Slice or String argument whose length matches v
//
// v may be anything that can match an int
// eg
//   Len(0)
//   Len(func(l int) bool { return l <= 10 })
func Len(v interface{}) ArgMatcher {
	return lenMatcher{genericArgMatcher(v)}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return true
	}
	return false
}
