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
	"sync"
	"sync/atomic"
)

var tick uint64 //global atomic counter to assist with ordering calls across doubles

// A RecordedCall is one invocation of a double.
type RecordedCall struct {
	Tick uint64 //Record the order of all calls relative to each other.
	Args []interface{}
}

// Calls is the log of invocations of a double. Rehearsals are never recorded.
type Calls struct {
	mutex    sync.Mutex
	recorded []RecordedCall
}

func (c *Calls) add(args []interface{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.recorded = append(c.recorded, RecordedCall{
		Tick: atomic.AddUint64(&tick, 1),
		Args: append([]interface{}(nil), args...),
	})
}

func (c *Calls) NumCalls() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.recorded)
}

// All returns a snapshot of the recorded calls in order
func (c *Calls) All() []RecordedCall {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]RecordedCall(nil), c.recorded...)
}

// Last returns the most recent call, if any
func (c *Calls) Last() (RecordedCall, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if len(c.recorded) == 0 {
		return RecordedCall{}, false
	}
	return c.recorded[len(c.recorded)-1], true
}

/*
Matching returns the recorded calls whose arguments satisfy args exactly as a rule rehearsed
with args would (without extra arguments).
*/
func (c *Calls) Matching(args ...interface{}) ([]RecordedCall, error) {
	pattern, err := NewPattern(args...)
	if err != nil {
		return nil, err
	}
	var subset []RecordedCall
	for _, call := range c.All() {
		ok, err := pattern.Satisfied(call.Args, false)
		if err != nil {
			return nil, err
		}
		if ok {
			subset = append(subset, call)
		}
	}
	return subset, nil
}
