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
Package tdstub is the stubbing core of a TestDouble framework for Go.

A Double is a named fake function. Its responses are configured by rehearsing a call to it and then
saying what that call should return. Live calls are recorded and answered by the most recently
added matching rule.

Stubs

See the canonical sources...

* http://xunitpatterns.com/Test%20Stub.html

* https://martinfowler.com/articles/mocksArentStubs.html

 package examples

 import (
	. "github.com/lwoggardner/tdstub" //Note the dot import which assists with readability
	"testing"
 )

 func Test_Stub(t *testing.T) {
	e := New(t)
	fetch := e.Func("fetch")

	e.When(func() { fetch.Call(IsA(AnyNumber)) }).ThenReturn("foo")
	e.When(func() { fetch.Call(3) }).ThenReturn("bar", Times(2))

	// fetch.Call(3) returns "bar", "bar", then "foo" once the second rule is exhausted
	// fetch.Call(4) returns "foo"
	// fetch.Call("x") matches nothing and returns nil
 }

Argument matching

Each rehearsed argument is either a literal, which must be deeply equal to the actual argument,
or an ArgMatcher. Unless the rule is added with IgnoreExtraArgs() the call must supply exactly as
many arguments as were rehearsed.

 Anything()                    // any value, including nil
 IsA(AnyString)                // a family of types, a reflect.Type, or the type of an example value
 Contains(map[string]interface{}{"container": map[string]interface{}{"size": "S"}})
 ArgThat(func(n int) bool { return n > 0 }, "positive")
 ArgExpr(`arg.Size in ["S", "M"]`)
 JSONPath("$.container.size", "S")

Sequential responses

ThenReturn with several values answers successive matching calls in turn, repeating the last
value forever.

 quack.When().ThenReturn("quack", "honk", "moo") // quack, honk, moo, moo, moo...

Interfaces

An Object stands in for an interface, with one Double per method. See Object and Results.

Misuse (nested rehearsals, rehearsing nothing, a rule without values) fatally fails the test
through T.Fatalf. A call matching no rule is not an error and returns nil, or the zero values of
an interface method's results.
*/
package tdstub
