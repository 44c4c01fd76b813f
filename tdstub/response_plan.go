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
)

// A ResponsePlan is the sequence of values returned by successive calls matching a rule.
// Once the sequence is used up, the final value repeats.
type ResponsePlan struct {
	values []interface{}
}

// NewResponsePlan returns a plan for values, which must not be empty
func NewResponsePlan(values ...interface{}) (ResponsePlan, error) {
	if len(values) == 0 {
		return ResponsePlan{}, ErrNoReturnValues
	}
	return ResponsePlan{values: append([]interface{}(nil), values...)}, nil
}

// Response returns the value for the k'th (1-indexed) matching call
func (p ResponsePlan) Response(k int) interface{} {
	if len(p.values) == 0 {
		return nil
	}
	if k < 1 {
		k = 1
	}
	if k > len(p.values) {
		k = len(p.values)
	}
	return p.values[k-1]
}

func (p ResponsePlan) Len() int {
	return len(p.values)
}

// Values returns a copy of the planned values
func (p ResponsePlan) Values() []interface{} {
	return append([]interface{}(nil), p.values...)
}

func (p ResponsePlan) String() string {
	if len(p.values) == 1 {
		return fmt.Sprintf("%#v", p.values[0])
	}
	return fmt.Sprintf("Sequence%v", p.values)
}
