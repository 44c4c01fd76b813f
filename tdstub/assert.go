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

//assertReturnValues errors unless every planned value is compatible with method m's results
func assertReturnValues(m reflect.Method, values []interface{}) error {
	numOut := m.Type.NumOut()
	if numOut == 0 {
		return fmt.Errorf("%w: %v returns nothing", ErrReturnType, m.Type)
	}
	for i, v := range values {
		if numOut == 1 {
			if err := assertReturnType(m, 0, v); err != nil {
				return fmt.Errorf("value %d: %w", i, err)
			}
			continue
		}

		rs, isResults := v.(Results)
		if !isResults {
			return fmt.Errorf("%w: %v for value %d expects Results, got %T", ErrReturnType, m.Type, i, v)
		}
		if len(rs) != numOut {
			return fmt.Errorf("%w: %v for value %d expects %d results, found %d", ErrReturnType, m.Type, i, numOut, len(rs))
		}
		for j, r := range rs {
			if err := assertReturnType(m, j, r); err != nil {
				return fmt.Errorf("value %d: %w", i, err)
			}
		}
	}
	return nil
}

func assertReturnType(m reflect.Method, i int, v interface{}) error {
	mType := m.Type.Out(i)
	if v == nil {
		if nillable(mType) {
			return nil
		}
		return fmt.Errorf("%w: %v expects result %d to be %v, got nil", ErrReturnType, m.Type, i, mType)
	}
	if out := reflect.TypeOf(v); !out.AssignableTo(mType) {
		return fmt.Errorf("%w: %v expects result %d to be assignable to %v, got %v", ErrReturnType, m.Type, i, mType, out)
	}
	return nil
}
