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

/*
Package fixture loads stubbing rules for tdstub doubles from YAML.

	doubles:
	  - name: fetch
	    stubs:
	      - args: []
	        ignoreExtraArgs: true
	        returns: [default]
	      - args: [{$isA: number}]
	        returns: [foo]
	      - args: [3]
	        returns: [bar]
	        times: 2

Stubs are added in document order, so later stubs take precedence over earlier ones exactly as if
they had been written with ThenReturn.

An argument that is a mapping with a single key starting with '$' is a matcher

	{$anything: true}
	{$nil: true}
	{$isA: <kind or registered type name>}
	{$contains: <partial>}
	{$expr: <expr-lang source over arg>}
	{$jsonPath: {path: <path>, value: <expected>}}
	{$len: <int or matcher>}
	{$not: <matcher or value>}
	{$all: [<matcher or value>...]}
	{$any: [<matcher or value>...]}
	{$eq: <value taken literally>}

Matchers may be nested inside $contains partials and the combinators.
*/
package fixture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"github.com/lwoggardner/tdstub/tdstub"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidFixture = errors.New("invalid fixture")
	ErrUnknownMatcher = errors.New("unknown matcher")
)

var fixtureValidate = validator.New()

// File is one YAML document
type File struct {
	Doubles []DoubleSpec `yaml:"doubles" validate:"dive"`
}

type DoubleSpec struct {
	Name  string     `yaml:"name" validate:"required"`
	Stubs []StubSpec `yaml:"stubs" validate:"dive"`
}

type StubSpec struct {
	Args            []interface{} `yaml:"args"`
	Returns         []interface{} `yaml:"returns" validate:"min=1"`
	Times           *int          `yaml:"times" validate:"omitnil,min=1"`
	IgnoreExtraArgs bool          `yaml:"ignoreExtraArgs"`
}

// A Loader adds stubs from fixtures to the doubles of one engine, creating doubles by name.
type Loader struct {
	engine  *tdstub.Engine
	types   *tdstub.TypeRegistry
	doubles map[string]*tdstub.Double
}

/*
NewLoader creates a Loader for e.

configurators can be used to supply a TypeRegistry (WithTypes) or existing doubles (WithDouble)
*/
func NewLoader(e *tdstub.Engine, configurators ...func(*Loader)) *Loader {
	l := &Loader{
		engine:  e,
		types:   tdstub.NewTypeRegistry(),
		doubles: make(map[string]*tdstub.Double),
	}
	for _, c := range configurators {
		c(l)
	}
	return l
}

// WithTypes resolves $isA names with types
func WithTypes(types *tdstub.TypeRegistry) func(*Loader) {
	return func(l *Loader) {
		l.types = types
	}
}

// WithDouble loads stubs named name into d, eg a method double of a tdstub.Object
func WithDouble(name string, d *tdstub.Double) func(*Loader) {
	return func(l *Loader) {
		l.doubles[name] = d
	}
}

// Double returns the double for name, creating it if necessary
func (l *Loader) Double(name string) *tdstub.Double {
	d, found := l.doubles[name]
	if !found {
		d = l.engine.Func(name)
		l.doubles[name] = d
	}
	return d
}

// Doubles returns every double known to the loader by name
func (l *Loader) Doubles() map[string]*tdstub.Double {
	doubles := make(map[string]*tdstub.Double, len(l.doubles))
	for name, d := range l.doubles {
		doubles[name] = d
	}
	return doubles
}

/*
Load adds the stubs of every YAML document in r.

Stubs before an invalid stub remain added.
*/
func (l *Loader) Load(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	for doc := 0; ; doc++ {
		var file File
		if err := dec.Decode(&file); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("%w: document %d: %v", ErrInvalidFixture, doc, err)
		}
		if err := fixtureValidate.Struct(file); err != nil {
			return fmt.Errorf("%w: document %d: %v", ErrInvalidFixture, doc, err)
		}
		if err := l.add(file); err != nil {
			return fmt.Errorf("document %d: %w", doc, err)
		}
	}
}

// LoadFile loads the fixture at path
func (l *Loader) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening fixture: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := l.Load(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	l.engine.Logger().Debug("fixture loaded", "path", path)
	return nil
}

/*
LoadFiles loads every fixture matching pattern in sorted path order. ** matches any number of
directories. No match is not an error.
*/
func (l *Loader) LoadFiles(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("expanding glob pattern: %w", err)
	}
	sort.Strings(matches)
	for _, match := range matches {
		if err := l.LoadFile(match); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

func (l *Loader) add(file File) error {
	for _, ds := range file.Doubles {
		d := l.Double(ds.Name)
		for i, stub := range ds.Stubs {
			args, err := l.args(stub.Args)
			if err != nil {
				return fmt.Errorf("double %q stub %d: %w", ds.Name, i, err)
			}
			options := tdstub.Options{IgnoreExtraArgs: stub.IgnoreExtraArgs, Times: stub.Times}
			if _, err := d.AddRule(args, options, stub.Returns...); err != nil {
				return fmt.Errorf("double %q stub %d: %w", ds.Name, i, err)
			}
		}
	}
	return nil
}

func (l *Loader) args(values []interface{}) ([]interface{}, error) {
	args := make([]interface{}, len(values))
	for i, v := range values {
		arg, err := l.value(v)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = arg
	}
	return args, nil
}

// value replaces matcher mappings in v, recursively
func (l *Loader) value(v interface{}) (interface{}, error) {
	switch tv := v.(type) {
	case map[string]interface{}:
		if len(tv) == 1 {
			for key, arg := range tv {
				if strings.HasPrefix(key, "$") {
					return l.matcher(key, arg)
				}
			}
		}
		out := make(map[string]interface{}, len(tv))
		for key, x := range tv {
			converted, err := l.value(x)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case []interface{}:
		return l.args(tv)
	default:
		return v, nil
	}
}

func (l *Loader) matcher(key string, arg interface{}) (tdstub.ArgMatcher, error) {
	switch key {
	case "$anything":
		return tdstub.Anything(), nil
	case "$nil":
		return tdstub.Nil(), nil
	case "$eq":
		return tdstub.Eql(arg), nil
	case "$isA":
		name, isString := arg.(string)
		if !isString {
			return nil, fmt.Errorf("%w: $isA expects a type name, got %T", ErrInvalidFixture, arg)
		}
		return l.types.IsA(name), nil
	case "$expr":
		source, isString := arg.(string)
		if !isString {
			return nil, fmt.Errorf("%w: $expr expects a string, got %T", ErrInvalidFixture, arg)
		}
		return tdstub.ArgExpr(source), nil
	case "$jsonPath":
		params, isMap := arg.(map[string]interface{})
		path, isString := params["path"].(string)
		if !isMap || !isString {
			return nil, fmt.Errorf("%w: $jsonPath expects {path, value}", ErrInvalidFixture)
		}
		return tdstub.JSONPath(path, params["value"]), nil
	case "$contains":
		partial, err := l.value(arg)
		if err != nil {
			return nil, err
		}
		return tdstub.Contains(partial), nil
	case "$len":
		m, err := l.toMatcher(arg)
		if err != nil {
			return nil, err
		}
		return tdstub.Len(m), nil
	case "$not":
		m, err := l.toMatcher(arg)
		if err != nil {
			return nil, err
		}
		return tdstub.Not(m), nil
	case "$all", "$any":
		list, isList := arg.([]interface{})
		if !isList {
			return nil, fmt.Errorf("%w: %s expects a list, got %T", ErrInvalidFixture, key, arg)
		}
		matchers := make([]tdstub.ArgMatcher, len(list))
		for i, x := range list {
			m, err := l.toMatcher(x)
			if err != nil {
				return nil, err
			}
			matchers[i] = m
		}
		if key == "$all" {
			return tdstub.All(matchers...), nil
		}
		return tdstub.Any(matchers...), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMatcher, key)
	}
}

// toMatcher converts v, matching by equality unless v is a matcher
func (l *Loader) toMatcher(v interface{}) (tdstub.ArgMatcher, error) {
	converted, err := l.value(v)
	if err != nil {
		return nil, err
	}
	if m, isMatcher := converted.(tdstub.ArgMatcher); isMatcher {
		return m, nil
	}
	return tdstub.Eql(converted), nil
}

// Load creates doubles for the fixture in r, returning them by name
func Load(e *tdstub.Engine, r io.Reader) (map[string]*tdstub.Double, error) {
	l := NewLoader(e)
	if err := l.Load(r); err != nil {
		return nil, err
	}
	return l.Doubles(), nil
}

// LoadFiles creates doubles for every fixture matching pattern, returning them by name
func LoadFiles(e *tdstub.Engine, pattern string) (map[string]*tdstub.Double, error) {
	l := NewLoader(e)
	if _, err := l.LoadFiles(pattern); err != nil {
		return nil, err
	}
	return l.Doubles(), nil
}
