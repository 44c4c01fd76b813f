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

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

type exprMatcher struct {
	source  string
	program *vm.Program
	err     error
}

func (m exprMatcher) String() string {
	return fmt.Sprintf("ArgExpr(%q)", m.source)
}

func (m exprMatcher) validate() error {
	return m.err
}

func (m exprMatcher) Matches(arg interface{}) bool {
	ok, err := m.MatchArg(arg)
	return ok && err == nil
}

func (m exprMatcher) MatchArg(arg interface{}) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	out, err := expr.Run(m.program, map[string]interface{}{"arg": arg})
	if err != nil {
		return false, fmt.Errorf("%v: %w", m, err)
	}
	result, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("%v: expected bool, got %T", m, out)
	}
	return result, nil
}

/*
ArgExpr matches a single argument for which the expr-lang expression source is true.
The argument is available to the expression as arg

	ArgExpr(`arg > 3 && arg < 10`)
	ArgExpr(`arg.size in ["S", "M"]`)

A source that does not compile is reported when the rule is added. An expression that fails
while running aborts the resolution of the call.
*/
func ArgExpr(source string) ArgMatcher {
	program, err := expr.Compile(source, expr.AllowUndefinedVariables())
	if err != nil {
		err = fmt.Errorf("%w: ArgExpr(%q): %v", ErrInvalidMatcher, source, err)
	}
	return exprMatcher{source: source, program: program, err: err}
}
