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

import "errors"

// Usage errors, reported when a stubbing statement is misconfigured.
var (
	ErrNestedRehearsal    = errors.New("a rehearsal is already pending")
	ErrNoPendingRehearsal = errors.New("no rehearsal is pending")
	ErrNoRehearsedCall    = errors.New("no double was called during the rehearsal")
	ErrMultipleRehearsals = errors.New("more than one call was made during the rehearsal")
)

// Configuration errors, reported when a rule is added.
var (
	ErrNoReturnValues = errors.New("ThenReturn requires at least one value")
	ErrInvalidTimes   = errors.New("times must be a positive integer")
	ErrInvalidMatcher = errors.New("invalid matcher")
	ErrUnknownMethod  = errors.New("unknown method")
	ErrReturnType     = errors.New("return value not assignable")
)
