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
)

/*
An Object is a double for an interface, with one Double per interface method.

Hand written or generated implementations embed *Object and forward each method to Invoke

	type apiDouble struct {
		api
		*tdstub.Object
	}

	func (a *apiDouble) call(in string) int {
		a.T().Helper()
		return a.Invoke("call", in)[0].(int)
	}
*/
type Object struct {
	engine       *Engine
	forInterface reflect.Type
	methods      map[string]*Double
}

/*
Object creates a double for an interface.

forInterface is expected to be the nil implementation of an interface - (*Iface)(nil)
*/
func (e *Engine) Object(forInterface interface{}) *Object {
	e.t.Helper()
	doubleFor := reflect.TypeOf(forInterface)

	if doubleFor == nil || doubleFor.Kind() != reflect.Ptr || doubleFor.Elem().Kind() != reflect.Interface {
		e.t.Fatalf("Expecting '%v' to be a pointer to nil interface", forInterface)
		return nil
	}
	doubleFor = doubleFor.Elem()

	o := &Object{
		engine:       e,
		forInterface: doubleFor,
		methods:      make(map[string]*Double, doubleFor.NumMethod()),
	}
	for i := 0; i < doubleFor.NumMethod(); i++ {
		m := doubleFor.Method(i)
		o.methods[m.Name] = newDouble(e, fmt.Sprintf("%v.%s", doubleFor, m.Name), &m)
	}
	return o
}

func (o *Object) String() string {
	return fmt.Sprintf("DoubleFor(%v)", o.forInterface)
}

func (o *Object) T() T {
	return o.engine.t
}

// Method returns the double standing in for methodName
func (o *Object) Method(methodName string) *Double {
	o.engine.t.Helper()
	d, found := o.methods[methodName]
	if !found {
		o.engine.t.Fatalf("%v: %v %s", o, ErrUnknownMethod, methodName)
	}
	return d
}

/*
Invoke is called by interface implementations to call the double for methodName.

It returns one value per method result. A call that matches no rule, or a rehearsal, returns
zero values. Methods with more than one result are stubbed with Results.
*/
func (o *Object) Invoke(methodName string, args ...interface{}) []interface{} {
	o.engine.t.Helper()
	d := o.Method(methodName)
	if d == nil {
		return nil
	}
	return results(*d.method, d.Call(args...))
}

// Results holds the values for a method with more than one result
type Results []interface{}

func results(m reflect.Method, value interface{}) []interface{} {
	out := m.Type.NumOut()
	if out == 0 {
		return nil
	}
	returns := make([]interface{}, out)
	switch v := value.(type) {
	case Rehearsal:
	case Results:
		copy(returns, v)
	default:
		if out == 1 {
			returns[0] = v
		}
	}
	for i := range returns {
		if returns[i] == nil {
			returns[i] = reflect.Zero(m.Type.Out(i)).Interface()
		}
	}
	return returns
}
