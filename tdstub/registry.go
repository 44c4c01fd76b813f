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
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

var ruleSeq uint64 //global atomic counter recording the order rules were created in

// A Rule is one configured stubbing: the rehearsed pattern, its options and its response plan.
//
// Rules are never removed from their Registry. An exhausted rule is skipped during resolution.
type Rule struct {
	registry        *Registry
	id              string
	seq             uint64
	pattern         Pattern
	ignoreExtraArgs bool
	times           int // 0 is unlimited
	plan            ResponsePlan
	usage           int
}

func (r *Rule) ID() string {
	return r.id
}

// Seq is the creation order of this rule across all registries
func (r *Rule) Seq() uint64 {
	return r.seq
}

func (r *Rule) Pattern() Pattern {
	return r.pattern
}

func (r *Rule) IgnoresExtraArgs() bool {
	return r.ignoreExtraArgs
}

// Times is the configured call limit, 0 if unlimited
func (r *Rule) Times() int {
	return r.times
}

func (r *Rule) Plan() ResponsePlan {
	return r.plan
}

// Usage is the number of calls this rule has answered
func (r *Rule) Usage() int {
	r.registry.mutex.Lock()
	defer r.registry.mutex.Unlock()
	return r.usage
}

func (r *Rule) Exhausted() bool {
	r.registry.mutex.Lock()
	defer r.registry.mutex.Unlock()
	return r.exhausted()
}

func (r *Rule) exhausted() bool {
	return r.times > 0 && r.usage >= r.times
}

func (r *Rule) String() string {
	s := fmt.Sprintf("#%d %v => %v", r.seq, r.pattern, r.plan)
	if r.ignoreExtraArgs {
		s += " ignoring extra args"
	}
	if r.times > 0 {
		s += fmt.Sprintf(" times %d", r.times)
	}
	return s
}

// A Registry holds the stubbing rules of one double in the order they were added.
type Registry struct {
	mutex sync.Mutex
	rules []*Rule
}

func NewRegistry() *Registry {
	return &Registry{}
}

/*
Add appends a rule matching calls shaped like args.

Entries of args that are matchers loosen comparison at that position, all other entries must
be deeply equal to the actual argument. values is the non-empty response plan.
*/
func (reg *Registry) Add(args []interface{}, options Options, values []interface{}) (*Rule, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}
	plan, err := NewResponsePlan(values...)
	if err != nil {
		return nil, err
	}
	pattern, err := NewPattern(args...)
	if err != nil {
		return nil, err
	}

	rule := &Rule{
		registry:        reg,
		id:              uuid.NewString(),
		seq:             atomic.AddUint64(&ruleSeq, 1),
		pattern:         pattern,
		ignoreExtraArgs: options.IgnoreExtraArgs,
		plan:            plan,
	}
	if options.Times != nil {
		rule.times = *options.Times
	}

	reg.mutex.Lock()
	defer reg.mutex.Unlock()
	reg.rules = append(reg.rules, rule)
	return rule, nil
}

/*
Resolve finds the most recently added rule that is not exhausted and is satisfied by args.

The rule's usage is incremented and its response for that usage returned. A nil rule means no
rule matched. A matcher error aborts the search.
*/
func (reg *Registry) Resolve(args []interface{}) (value interface{}, rule *Rule, err error) {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()
	for i := len(reg.rules) - 1; i >= 0; i-- {
		candidate := reg.rules[i]
		if candidate.exhausted() {
			continue
		}
		satisfied, err := candidate.pattern.Satisfied(args, candidate.ignoreExtraArgs)
		if err != nil {
			return nil, nil, fmt.Errorf("rule #%d %v: %w", candidate.seq, candidate.pattern, err)
		}
		if satisfied {
			candidate.usage++
			return candidate.plan.Response(candidate.usage), candidate, nil
		}
	}
	return nil, nil, nil
}

// Rules returns the rules in the order they were added
func (reg *Registry) Rules() []*Rule {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()
	return append([]*Rule(nil), reg.rules...)
}

func (reg *Registry) Len() int {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()
	return len(reg.rules)
}
