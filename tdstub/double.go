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
	"reflect"

	"github.com/google/uuid"
)

// A Double is a named fake function with its own stubbing rules and call log.
type Double struct {
	id       string
	name     string
	engine   *Engine
	registry *Registry
	calls    *Calls
	method   *reflect.Method // set when the double stands in for an interface method
}

func newDouble(e *Engine, name string, m *reflect.Method) *Double {
	return &Double{
		id:       uuid.NewString(),
		name:     name,
		engine:   e,
		registry: NewRegistry(),
		calls:    &Calls{},
		method:   m,
	}
}

func (d *Double) t() T {
	return d.engine.t
}

func (d *Double) ID() string {
	return d.id
}

func (d *Double) Name() string {
	return d.name
}

func (d *Double) String() string {
	return d.name
}

// Registry returns the stubbing rules of this double
func (d *Double) Registry() *Registry {
	return d.registry
}

// Calls returns the recorded (non rehearsal) calls to this double
func (d *Double) Calls() *Calls {
	return d.calls
}

/*
Call invokes the double.

During a rehearsal for this double the arguments are captured and a Rehearsal is returned.
Otherwise the call is recorded and resolved against the double's rules. The response of the
matching rule is returned, or nil if no rule matches.

A matcher that fails while resolving the call fatally fails the test.
*/
func (d *Double) Call(args ...interface{}) interface{} {
	d.t().Helper()
	if r, rehearsed := d.engine.capture(d, args); rehearsed {
		return r
	}

	d.calls.add(args)
	value, matched, err := d.Resolve(args...)
	if err != nil {
		d.t().Fatalf("Called %v%v: %v", d, args, err)
		return nil
	}
	if !matched {
		return nil
	}
	return value
}

// Func returns Call as a plain function value, for injecting into the system under test
func (d *Double) Func() func(args ...interface{}) interface{} {
	return d.Call
}

// Resolve looks up the response for args without recording a call.
//
// matched is false when no rule applies, which is not an error.
func (d *Double) Resolve(args ...interface{}) (value interface{}, matched bool, err error) {
	value, rule, err := d.registry.Resolve(args)
	logger := d.engine.logger
	switch {
	case err != nil:
		logger.Debug("stub resolution failed", "double", d.name, "args", args, "error", err)
	case rule == nil:
		logger.Debug("no stub matched", "double", d.name, "args", args)
	default:
		logger.Debug("stub matched", "double", d.name, "args", args, "rule", rule.ID(), "seq", rule.Seq(), "response", value)
		if rule.Exhausted() {
			logger.Debug("stub exhausted", "double", d.name, "rule", rule.ID(), "times", rule.Times())
		}
	}
	return value, rule != nil, err
}

// When rehearses a call to this double with args and returns a Stubbing to configure its response.
func (d *Double) When(args ...interface{}) *Stubbing {
	d.t().Helper()
	return d.engine.rehearse(d, func() { d.Call(args...) })
}

/*
AddRule adds a rule for calls shaped like args without a rehearsal, returning configuration errors
instead of failing the test. Stubbing.ThenReturn is the usual way to add rules.
*/
func (d *Double) AddRule(args []interface{}, options Options, values ...interface{}) (*Rule, error) {
	if d.method != nil {
		if err := assertReturnValues(*d.method, values); err != nil {
			return nil, err
		}
	}
	rule, err := d.registry.Add(args, options, values)
	if err != nil {
		return nil, err
	}
	d.engine.logger.Debug("stub added", "double", d.name, "rule", rule.ID(), "seq", rule.Seq(),
		"pattern", rule.Pattern(), "ignoreExtraArgs", rule.IgnoresExtraArgs(), "times", rule.Times())
	return rule, nil
}
