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
	"sort"
	"sync"
)

// A Kind is a type descriptor for a family of Go types.
type Kind int

const (
	invalidKind Kind = iota
	AnyNumber        // signed, unsigned and floating point numbers
	AnyString
	AnyBool
	AnyFunc
	AnySequence // slices and arrays
	AnyKeyed    // maps and structs
	AnyPointer
	AnyError // any value implementing error
	endKind
)

var kindNames = map[Kind]string{
	AnyNumber:   "number",
	AnyString:   "string",
	AnyBool:     "boolean",
	AnyFunc:     "function",
	AnySequence: "sequence",
	AnyKeyed:    "keyed",
	AnyPointer:  "pointer",
	AnyError:    "error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) valid() bool {
	return k > invalidKind && k < endKind
}

func (k Kind) matches(t reflect.Type) bool {
	if k == AnyError {
		return t.Implements(errorType)
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return k == AnyNumber
	case reflect.String:
		return k == AnyString
	case reflect.Bool:
		return k == AnyBool
	case reflect.Func:
		return k == AnyFunc
	case reflect.Slice, reflect.Array:
		return k == AnySequence
	case reflect.Map, reflect.Struct:
		return k == AnyKeyed
	case reflect.Ptr:
		return k == AnyPointer
	}
	return false
}

type isAMatcher struct {
	kind       Kind
	rt         reflect.Type
	descriptor interface{}
	err        error
}

func (m isAMatcher) String() string {
	if m.rt != nil {
		return fmt.Sprintf("IsA(%v)", m.rt)
	}
	return fmt.Sprintf("IsA(%v)", m.descriptor)
}

func (m isAMatcher) validate() error {
	return m.err
}

func (m isAMatcher) Matches(arg interface{}) bool {
	argT := reflect.TypeOf(arg)
	switch {
	case m.err != nil, argT == nil:
		return false
	case m.rt != nil:
		return argT.AssignableTo(m.rt)
	default:
		return m.kind.matches(argT)
	}
}

/*
IsA matches a single argument by its type.

descriptor may be
 * a Kind (eg AnyNumber) matching a family of types
 * a reflect.Type; interface types match any implementation
 * any other value, whose dynamic type is used

A nil descriptor or an unknown Kind is reported when the rule is added.
*/
func IsA(descriptor interface{}) ArgMatcher {
	m := isAMatcher{descriptor: descriptor}
	switch d := descriptor.(type) {
	case nil:
		m.err = fmt.Errorf("%w: IsA(nil)", ErrInvalidMatcher)
	case Kind:
		m.kind = d
		if !d.valid() {
			m.err = fmt.Errorf("%w: IsA(%v) unknown kind", ErrInvalidMatcher, d)
		}
	case reflect.Type:
		m.rt = d
	default:
		m.rt = reflect.TypeOf(d)
	}
	return m
}

/*
A TypeRegistry names type descriptors so they can be referred to by name, eg from fixtures.

The Kind names ("number", "string", "boolean", "function", "sequence", "keyed", "pointer" and
"error") are always registered.
*/
type TypeRegistry struct {
	mutex  sync.RWMutex
	byName map[string]interface{}
}

func NewTypeRegistry() *TypeRegistry {
	r := &TypeRegistry{byName: make(map[string]interface{}, len(kindNames))}
	for k, name := range kindNames {
		r.byName[name] = k
	}
	return r
}

// Register associates name with descriptor, which can be anything accepted by IsA.
// Re-registering a name with a different type is an error.
func (r *TypeRegistry) Register(name string, descriptor interface{}) error {
	if err := IsA(descriptor).(isAMatcher).err; err != nil {
		return err
	}
	if _, isType := descriptor.(reflect.Type); !isType {
		if _, isKind := descriptor.(Kind); !isKind {
			descriptor = reflect.TypeOf(descriptor)
		}
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if existing, found := r.byName[name]; found && existing != descriptor {
		return fmt.Errorf("%w: type name %q already registered as %v", ErrInvalidMatcher, name, existing)
	}
	r.byName[name] = descriptor
	return nil
}

// Lookup returns the descriptor registered for name
func (r *TypeRegistry) Lookup(name string) (interface{}, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	d, found := r.byName[name]
	return d, found
}

// Names returns the registered names in sorted order
func (r *TypeRegistry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsA returns an IsA matcher for the named descriptor.
// An unknown name is reported when the rule is added.
func (r *TypeRegistry) IsA(name string) ArgMatcher {
	if d, found := r.Lookup(name); found {
		return IsA(d)
	}
	return isAMatcher{descriptor: name, err: fmt.Errorf("%w: IsA(%q) unknown type name", ErrInvalidMatcher, name)}
}
