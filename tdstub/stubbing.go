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

	"github.com/go-playground/validator/v10"
)

var optionsValidate = validator.New()

// Options configure how a rule matches and how often it answers.
type Options struct {
	// IgnoreExtraArgs allows calls with more arguments than were rehearsed.
	IgnoreExtraArgs bool

	// Times limits the number of calls the rule answers. nil is unlimited.
	Times *int `validate:"omitnil,min=1"`
}

// Validate reports a Times that is not a positive integer
func (o Options) Validate() error {
	if err := optionsValidate.Struct(o); err != nil {
		if o.Times == nil {
			return err
		}
		return fmt.Errorf("%w: %d", ErrInvalidTimes, *o.Times)
	}
	return nil
}

// An Option sets one field of Options. Options are passed to ThenReturn after the return values.
type Option func(*Options)

// IgnoreExtraArgs lets the rule match calls with more arguments than were rehearsed
func IgnoreExtraArgs() Option {
	return func(o *Options) {
		o.IgnoreExtraArgs = true
	}
}

// Times limits the rule to answering n calls, after which older rules are considered again
func Times(n int) Option {
	return func(o *Options) {
		o.Times = &n
	}
}

// A Stubbing is a rehearsed call waiting for its response.
type Stubbing struct {
	rehearsal Rehearsal
}

// Rehearsal returns the captured call
func (s *Stubbing) Rehearsal() Rehearsal {
	return s.rehearsal
}

/*
ThenReturn adds a rule to the rehearsed double answering matching calls with values in turn,
repeating the last value once the others are used up. It returns the double.

Trailing Option values (or an Options struct) configure the rule

	e.When(func() { f.Call(3) }).ThenReturn("bar", "baz", Times(2))

No values, a non positive Times, an invalid matcher or (for interface doubles) a value not
assignable to the method's result fatally fails the test.
*/
func (s *Stubbing) ThenReturn(values ...interface{}) *Double {
	d := s.rehearsal.Double
	d.t().Helper()
	values, options := splitOptions(values)
	if _, err := d.AddRule(s.rehearsal.Args, options, values...); err != nil {
		d.t().Fatalf("%v.ThenReturn: %v", d, err)
	}
	return d
}

func splitOptions(values []interface{}) ([]interface{}, Options) {
	var options Options
	var found []Option
	n := len(values)
scan:
	for ; n > 0; n-- {
		switch o := values[n-1].(type) {
		case Option:
			found = append(found, o)
		case Options:
			found = append(found, func(dst *Options) { *dst = o })
		case *Options:
			if o == nil {
				break scan
			}
			found = append(found, func(dst *Options) { *dst = *o })
		default:
			break scan
		}
	}
	for i := len(found) - 1; i >= 0; i-- {
		found[i](&options)
	}
	return values[:n], options
}
