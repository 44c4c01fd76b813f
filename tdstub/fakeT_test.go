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
	"testing"

	"github.com/stretchr/testify/require"
)

// fatal is panicked by fakeT.Fatalf to stop the statement under test, as testing.T.FailNow would
type fatal struct {
	message string
}

// fakeT records Logf, passes Errorf to the real test and turns Fatalf into a panic
type fakeT struct {
	t     *testing.T
	mutex sync.Mutex
	logs  []string
}

func newFakeT(t *testing.T) *fakeT {
	return &fakeT{t: t}
}

func (f *fakeT) Errorf(format string, args ...interface{}) {
	f.t.Helper()
	f.t.Errorf(format, args...)
}

func (f *fakeT) Fatalf(format string, args ...interface{}) {
	panic(fatal{fmt.Sprintf(format, args...)})
}

func (f *fakeT) Logf(format string, args ...interface{}) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.logs = append(f.logs, fmt.Sprintf(format, args...))
}

func (f *fakeT) Helper() {}

func (f *fakeT) Logs() []string {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]string(nil), f.logs...)
}

// fatalMessage runs fn and returns the Fatalf message it raised, failing t if there was none
func fatalMessage(t *testing.T, fn func()) (message string) {
	t.Helper()
	defer func() {
		r := recover()
		f, isFatal := r.(fatal)
		if !isFatal && r != nil {
			panic(r)
		}
		require.True(t, isFatal, "expected Fatalf")
		message = f.message
	}()
	fn()
	return ""
}
