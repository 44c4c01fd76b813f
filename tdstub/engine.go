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
	"log/slog"
	"sync"
)

//T is compatible with builtin testing.T
type T interface {
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
	Helper()
}

/*
An Engine creates doubles for a single test and owns the rehearsal slot used while
stubbings are configured.

Setup phase

Each stubbing statement rehearses one call to a double, which is captured instead of being
recorded or resolved, and then attaches return values to a new rule for that double.

	e := tdstub.New(t)
	fetch := e.Func("fetch")
	e.When(func() { fetch.Call(3) }).ThenReturn("bar")

Exercise phase

Calls to a double are recorded and resolved against its rules, most recently added first.
A call that matches no rule returns nil.
*/
type Engine struct {
	t       T
	logger  *slog.Logger
	mutex   sync.Mutex
	pending *rehearsal
}

// rehearsal is the pending slot between BeginRehearsal and EndRehearsal
type rehearsal struct {
	double *Double
	args   []interface{}
	calls  int
}

// Rehearsal is returned by a double called during a rehearsal, in place of a response.
type Rehearsal struct {
	Double *Double
	Args   []interface{}
}

/*
New creates an Engine reporting usage and configuration errors to t.

configurators are used to configure tracing and logging
*/
func New(t T, configurators ...func(*Engine)) *Engine {
	e := &Engine{t: t, logger: nopLogger()}
	for _, c := range configurators {
		c(e)
	}
	return e
}

// EnableTrace logs rule registration and every resolved call via T.Logf
func (e *Engine) EnableTrace() {
	e.logger = traceLogger(e.t)
}

// SetLogger replaces the engine's logger
func (e *Engine) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = nopLogger()
	}
	e.logger = logger
}

func (e *Engine) T() T {
	return e.t
}

func (e *Engine) Logger() *slog.Logger {
	return e.logger
}

// Func creates a new double with the given display name
func (e *Engine) Func(name string) *Double {
	return newDouble(e, name, nil)
}

/*
BeginRehearsal marks the next call to d as a rehearsal.

If d is nil the first double of this engine to be called claims the rehearsal.
Only one rehearsal may be pending at a time.
*/
func (e *Engine) BeginRehearsal(d *Double) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.pending != nil {
		return ErrNestedRehearsal
	}
	e.pending = &rehearsal{double: d}
	return nil
}

// EndRehearsal clears the pending rehearsal and returns the captured call
func (e *Engine) EndRehearsal(d *Double) (Rehearsal, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	p := e.pending
	e.pending = nil

	switch {
	case p == nil:
		return Rehearsal{}, ErrNoPendingRehearsal
	case p.calls == 0, d != nil && p.double != d:
		return Rehearsal{}, ErrNoRehearsedCall
	case p.calls > 1:
		return Rehearsal{}, fmt.Errorf("%w: %d calls to %v", ErrMultipleRehearsals, p.calls, p.double)
	}

	e.logger.Debug("rehearsal captured", "double", p.double.name, "args", p.args)
	return Rehearsal{Double: p.double, Args: p.args}, nil
}

func (e *Engine) abandonRehearsal() {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.pending = nil
}

// capture diverts a call by d into the pending rehearsal, if there is one for d
func (e *Engine) capture(d *Double, args []interface{}) (Rehearsal, bool) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	p := e.pending
	if p == nil {
		return Rehearsal{}, false
	}
	if p.double == nil {
		p.double = d
	} else if p.double != d {
		return Rehearsal{}, false
	}
	p.calls++
	p.args = append([]interface{}(nil), args...)
	return Rehearsal{Double: d, Args: p.args}, true
}

/*
When rehearses the single double call made by rehearse and returns a Stubbing to
configure the response to matching calls.

	e.When(func() { api.SomeQuery("test") }).ThenReturn(Results{"result"})

Nesting When inside rehearse, calling no double or calling the double more than once
fatally fails the test.
*/
func (e *Engine) When(rehearse func()) *Stubbing {
	e.t.Helper()
	return e.rehearse(nil, rehearse)
}

func (e *Engine) rehearse(d *Double, rehearse func()) *Stubbing {
	e.t.Helper()
	if err := e.BeginRehearsal(d); err != nil {
		e.t.Fatalf("When: %v", err)
		return nil
	}
	ended := false
	defer func() {
		if !ended {
			e.abandonRehearsal()
		}
	}()

	rehearse()

	ended = true
	r, err := e.EndRehearsal(d)
	if err != nil {
		e.t.Fatalf("When: %v", err)
		return nil
	}
	return &Stubbing{rehearsal: r}
}
