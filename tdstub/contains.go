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

type containsMatcher struct {
	partial interface{}
}

func (c containsMatcher) String() string {
	return fmt.Sprintf("Contains(%#v)", c.partial)
}

func (c containsMatcher) Matches(arg interface{}) bool {
	ok, err := c.MatchArg(arg)
	return ok && err == nil
}

// validate checks every matcher nested in the partial
func (c containsMatcher) validate() error {
	return validatePartial(c.partial)
}

func validatePartial(partial interface{}) error {
	if m, isMatcher := partial.(ArgMatcher); isMatcher {
		return validateMatcher(m)
	}
	pv := indirect(reflect.ValueOf(partial))
	switch pv.Kind() {
	case reflect.Map, reflect.Struct:
		for _, entry := range keyedEntries(pv) {
			if err := validatePartial(entry.value); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < pv.Len(); i++ {
			if err := validatePartial(pv.Index(i).Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c containsMatcher) MatchArg(arg interface{}) (bool, error) {
	pv := reflect.ValueOf(c.partial)
	if pv.Kind() == reflect.String {
		av := reflect.ValueOf(arg)
		return av.Kind() == reflect.String && strings.Contains(av.String(), pv.String()), nil
	}
	return contains(arg, c.partial)
}

/*
Contains matches a single argument that contains partial.

 * a string argument matches if partial is a substring
 * a slice or array argument matches if every element of partial is deeply equal to some element
 * a map or struct argument matches if it has every key of a map partial (or every non-zero
   exported field of a struct partial) with a value that contains the partial's value.
   Nested maps, structs and sequences are compared by containment, anything else by equality.

Matchers may be used as values inside partial.
*/
func Contains(partial interface{}) ArgMatcher {
	return containsMatcher{partial}
}

func contains(actual interface{}, partial interface{}) (bool, error) {
	if m, isMatcher := partial.(ArgMatcher); isMatcher {
		return matchArg(m, actual)
	}
	pv := indirect(reflect.ValueOf(partial))
	switch pv.Kind() {
	case reflect.Map, reflect.Struct:
		return containsKeys(indirect(reflect.ValueOf(actual)), pv)
	case reflect.Slice, reflect.Array:
		return containsElements(indirect(reflect.ValueOf(actual)), pv)
	default:
		return assert.ObjectsAreEqual(partial, actual), nil
	}
}

func containsElements(av reflect.Value, pv reflect.Value) (bool, error) {
	if av.Kind() != reflect.Slice && av.Kind() != reflect.Array {
		return false, nil
	}
	for i := 0; i < pv.Len(); i++ {
		want := pv.Index(i).Interface()
		found := false
		for j := 0; j < av.Len() && !found; j++ {
			if m, isMatcher := want.(ArgMatcher); isMatcher {
				ok, err := matchArg(m, av.Index(j).Interface())
				if err != nil {
					return false, err
				}
				found = ok
			} else {
				found = assert.ObjectsAreEqual(want, av.Index(j).Interface())
			}
		}
		if !found {
			return false, nil
		}
	}
	return true, nil
}

func containsKeys(av reflect.Value, pv reflect.Value) (bool, error) {
	if av.Kind() != reflect.Map && av.Kind() != reflect.Struct {
		return false, nil
	}
	for _, entry := range keyedEntries(pv) {
		actual, found := lookupKey(av, entry.key)
		if !found {
			return false, nil
		}
		if ok, err := contains(actual, entry.value); !ok || err != nil {
			return false, err
		}
	}
	return true, nil
}

type keyedEntry struct {
	key   reflect.Value
	value interface{}
}

// keyedEntries lists the entries of a map, or the non-zero exported fields of a struct
func keyedEntries(pv reflect.Value) []keyedEntry {
	var entries []keyedEntry
	if pv.Kind() == reflect.Map {
		iter := pv.MapRange()
		for iter.Next() {
			entries = append(entries, keyedEntry{iter.Key(), iter.Value().Interface()})
		}
		return entries
	}
	pt := pv.Type()
	for i := 0; i < pt.NumField(); i++ {
		if f := pt.Field(i); f.IsExported() && !pv.Field(i).IsZero() {
			entries = append(entries, keyedEntry{reflect.ValueOf(f.Name), pv.Field(i).Interface()})
		}
	}
	return entries
}

func lookupKey(av reflect.Value, key reflect.Value) (interface{}, bool) {
	if av.Kind() == reflect.Map {
		kt := av.Type().Key()
		if !key.Type().AssignableTo(kt) {
			var converted bool
			if key, converted = convertKey(key, kt); !converted {
				return nil, false
			}
		}
		v := av.MapIndex(key)
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	}

	if key.Kind() != reflect.String {
		return nil, false
	}
	f, found := av.Type().FieldByName(key.String())
	if !found || !f.IsExported() {
		return nil, false
	}
	fv, err := av.FieldByIndexErr(f.Index)
	if err != nil {
		return nil, false
	}
	return fv.Interface(), true
}

// convertKey converts key to kt only between strings, bools or numbers where the value is unchanged
func convertKey(key reflect.Value, kt reflect.Type) (reflect.Value, bool) {
	from, to := keyFamily(key.Kind()), keyFamily(kt.Kind())
	if from == 0 || from != to || !key.Type().ConvertibleTo(kt) {
		return reflect.Value{}, false
	}
	if from != numberKey {
		return key.Convert(kt), true
	}
	switch {
	case isUnsigned(kt.Kind()) && isSigned(key.Kind()) && key.Int() < 0,
		isUnsigned(kt.Kind()) && isFloat(key.Kind()) && key.Float() < 0:
		return reflect.Value{}, false
	}
	converted := key.Convert(kt)
	if isSigned(kt.Kind()) && isUnsigned(key.Kind()) && converted.Int() < 0 {
		return reflect.Value{}, false
	}
	if converted.Convert(key.Type()).Interface() != key.Interface() {
		return reflect.Value{}, false
	}
	return converted, true
}

const (
	stringKey = iota + 1
	boolKey
	numberKey
)

func keyFamily(k reflect.Kind) int {
	switch {
	case k == reflect.String:
		return stringKey
	case k == reflect.Bool:
		return boolKey
	case isSigned(k), isUnsigned(k), isFloat(k):
		return numberKey
	}
	return 0
}

func isSigned(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUnsigned(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr && !v.IsNil() {
		v = v.Elem()
	}
	return v
}
