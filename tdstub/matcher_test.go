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
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tiface interface {
	test()
}

type tstring string

func (tstring) test() {
	panic("Unexpected call to test()")
}

type box struct {
	Size   string
	Colour string
	Count  int
}

type parcel struct {
	Container struct {
		Size string `json:"size"`
	} `json:"container"`
	Items []int `json:"items"`
}

// even is a matcher from outside this package, eg gomock
type even struct{}

func (even) Matches(x interface{}) bool {
	i, isInt := x.(int)
	return isInt && i%2 == 0
}

func TestSingleArgMatchers(t *testing.T) {
	type test struct {
		name        string
		matcher     ArgMatcher
		matching    []interface{}
		notMatching []interface{}
		re          string
	}

	var nilSlice []int
	var nilPtr *int
	one := 1
	ts := tstring("atest")
	startsWithT := func(s string) bool { return strings.HasPrefix(s, "t") }

	tests := []test{
		{"Anything", Anything(), []interface{}{nil, 0, "", []int{}, ts}, nil, `Anything\(\)`},
		{"Eql(string)", Eql("x"), []interface{}{"x"}, []interface{}{"y", "", nil}, "x"},
		{"Eql(int)", Eql(10), []interface{}{10}, []interface{}{6, int64(10), 10.0}, "10"},
		{"Eql(nil)", Eql(nil), []interface{}{nil}, []interface{}{0, ""}, "nil"},
		{"Eql(slice)", Eql([]int{1, 2}), []interface{}{[]int{1, 2}}, []interface{}{[]int{2, 1}, nilSlice}, `\[\]int`},
		{"Eql(bytes)", Eql([]byte("ab")), []interface{}{[]byte("ab")}, []interface{}{"ab"}, "byte"},
		{"Not(Eql)", Not(Eql(10)), []interface{}{6, -1, nil}, []interface{}{10}, `Not\(Eql\(10\)\)`},
		{"Nil", Nil(), []interface{}{nil, nilSlice, nilPtr}, []interface{}{[]int{}, 0, "", &one}, `Nil\(\)`},
		{"Len(int)", Len(2), []interface{}{[]int{0, 0}, "ab", map[int]int{1: 1, 2: 2}}, []interface{}{[]int{}, "abc", 2, nil}, `Len\(Eql\(2\)\)`},
		{"Len(func)", Len(func(l int) bool { return l >= 2 }), []interface{}{"one", "xx"}, []interface{}{"x", ""}, `Len\(ArgThat\(func\(int\) bool\)\)`},
		{"All()", All(), []interface{}{"one", 10, nil}, nil, `All\{\}`},
		{"Any()", Any(), nil, []interface{}{"one", 10, nil}, `Any\{\}`},
		{"All", All(IsA(AnyString), Len(3)), []interface{}{"ttt"}, []interface{}{"tt", 333}, `All\{IsA\(string\),Len`},
		{"Any", Any(Eql("x"), Len(3)), []interface{}{"x", "yyy"}, []interface{}{"yy", 3}, `Any\{Eql`},
		{"Not(Any)", Not(Any(ArgThat(startsWithT), Len(3))), []interface{}{"xxxx"}, []interface{}{"ttt", "xxx"}, `Not\(Any`},
		{"ArgThat", ArgThat(startsWithT, "startswith 't'"), []interface{}{"test"}, []interface{}{"", "x", 1, nil}, "startswith 't'"},
		{"ArgThat(nillable)", ArgThat(func(p *int) bool { return p == nil }), []interface{}{nil, nilPtr}, []interface{}{&one, 1}, `ArgThat\(func\(\*int\) bool\)`},
		{"ArgThat(interface)", ArgThat(func(x interface{}) bool { return x == nil }), []interface{}{nil}, []interface{}{1}, "ArgThat"},
		{"ArgThat(iface)", ArgThat(func(x tiface) bool { return x != nil }), []interface{}{ts}, []interface{}{"atest", nil}, "ArgThat"},
		{"duck typed", even{}, []interface{}{0, 2}, []interface{}{1, "2"}, `\{\}`},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			require.NoError(t, validateMatcher(test.matcher))
			for _, arg := range test.matching {
				ok, err := matchArg(test.matcher, arg)
				assert.NoError(t, err)
				assert.True(t, ok, "expected %v to match %#v", test.matcher, arg)
			}
			for _, arg := range test.notMatching {
				ok, err := matchArg(test.matcher, arg)
				assert.NoError(t, err)
				assert.False(t, ok, "expected %v not to match %#v", test.matcher, arg)
			}
			assert.Regexp(t, regexp.MustCompile(test.re), fmt.Sprintf("%v", test.matcher))
		})
	}
}

func TestIsA(t *testing.T) {
	type test struct {
		name        string
		matcher     ArgMatcher
		matching    []interface{}
		notMatching []interface{}
	}

	one := 1
	ts := tstring("atest")
	tests := []test{
		{"number", IsA(AnyNumber), []interface{}{1, int8(1), uint64(1), 2.5, float32(1)}, []interface{}{"1", nil, true, &one}},
		{"string", IsA(AnyString), []interface{}{"", ts}, []interface{}{1, []byte("x"), nil}},
		{"boolean", IsA(AnyBool), []interface{}{true, false}, []interface{}{0, "true"}},
		{"function", IsA(AnyFunc), []interface{}{func() {}, strings.ToUpper}, []interface{}{"func", nil}},
		{"sequence", IsA(AnySequence), []interface{}{[]int{}, [2]string{}}, []interface{}{"ab", map[int]int{}}},
		{"keyed", IsA(AnyKeyed), []interface{}{map[string]int{}, box{}}, []interface{}{&box{}, []int{}}},
		{"pointer", IsA(AnyPointer), []interface{}{&one, &box{}}, []interface{}{one, nil}},
		{"error", IsA(AnyError), []interface{}{errors.New("x"), fmt.Errorf("y")}, []interface{}{"x", nil}},
		{"reflect.Type", IsA(reflect.TypeOf(box{})), []interface{}{box{}}, []interface{}{&box{}, parcel{}}},
		{"interface type", IsA(reflect.TypeOf((*tiface)(nil)).Elem()), []interface{}{ts}, []interface{}{"plainstring", nil}},
		{"example value", IsA(ts), []interface{}{ts, tstring("")}, []interface{}{"plainstring"}},
		{"example int", IsA(0), []interface{}{5}, []interface{}{int64(5), 5.0}},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			require.NoError(t, validateMatcher(test.matcher))
			for _, arg := range test.matching {
				assert.True(t, test.matcher.Matches(arg), "expected %v to match %#v", test.matcher, arg)
			}
			for _, arg := range test.notMatching {
				assert.False(t, test.matcher.Matches(arg), "expected %v not to match %#v", test.matcher, arg)
			}
		})
	}
}

func TestIsA_Invalid(t *testing.T) {
	for _, m := range []ArgMatcher{IsA(nil), IsA(Kind(0)), IsA(endKind), IsA(Kind(-1))} {
		err := validateMatcher(m)
		assert.True(t, errors.Is(err, ErrInvalidMatcher), "%v: %v", m, err)
		assert.False(t, m.Matches(1))
		assert.False(t, m.Matches(nil))
	}
}

func TestContains(t *testing.T) {
	type test struct {
		name        string
		partial     interface{}
		matching    []interface{}
		notMatching []interface{}
	}

	order := map[string]interface{}{
		"id":        7,
		"container": map[string]interface{}{"size": "S", "colour": "red"},
		"tags":      []string{"fragile", "urgent"},
	}

	tests := []test{
		{"substring", "ell", []interface{}{"hello", "ell"}, []interface{}{"help", 1, []string{"ell"}, nil}},
		{"empty substring", "", []interface{}{"", "x"}, []interface{}{0}},
		{"subset", []int{1, 2}, []interface{}{[]int{3, 2, 1}, [3]int{1, 2, 3}}, []interface{}{[]int{1}, []int{}, "12", nil}},
		{"empty subset", []int{}, []interface{}{[]int{}, []int{1}}, []interface{}{"", map[int]int{}}},
		{"subset with matchers", []interface{}{IsA(AnyString), 2}, []interface{}{[]interface{}{1, 2, "x"}}, []interface{}{[]interface{}{2, 3}, []int{2}}},
		{"deep partial", map[string]interface{}{"container": map[string]interface{}{"size": "S"}},
			[]interface{}{order, map[string]interface{}{"container": map[string]interface{}{"size": "S"}}},
			[]interface{}{
				map[string]interface{}{"container": map[string]interface{}{"size": "M"}},
				map[string]interface{}{"id": 7},
				map[string]interface{}{"container": "S"},
				map[string]interface{}{},
			}},
		{"nested sequence", map[string]interface{}{"tags": []string{"urgent"}}, []interface{}{order}, []interface{}{map[string]interface{}{"tags": []string{"late"}}}},
		{"nested matcher", map[string]interface{}{"id": IsA(AnyNumber)}, []interface{}{order}, []interface{}{map[string]interface{}{"id": "7"}}},
		{"empty map", map[string]interface{}{}, []interface{}{order, box{}, map[int]int{}}, []interface{}{"x", []int{}, nil}},
		{"missing key", map[string]interface{}{"weight": nil}, nil, []interface{}{order}},
		{"map against struct", map[string]interface{}{"Size": "S"}, []interface{}{box{Size: "S", Count: 2}, &box{Size: "S"}}, []interface{}{box{Size: "M"}, map[string]interface{}{"size": "S"}}},
		{"struct partial", box{Size: "S"}, []interface{}{box{Size: "S", Colour: "red"}, &box{Size: "S"}, map[string]string{"Size": "S"}}, []interface{}{box{Colour: "red"}, map[string]string{"size": "S"}}},
		{"typed map keys", map[tstring]int{"a": 1}, []interface{}{map[string]int{"a": 1, "b": 2}}, []interface{}{map[string]int{"b": 2}, map[int]int{1: 1}}},
		{"int keys are not runes", map[int]string{65: "x"}, []interface{}{map[int64]string{65: "x"}}, []interface{}{map[string]string{"A": "x"}}},
		{"numeric keys keep their value", map[float64]string{1.5: "x"}, []interface{}{map[float32]string{1.5: "x"}}, []interface{}{map[int]string{1: "x"}}},
		{"negative keys", map[int]string{-1: "x"}, []interface{}{map[int8]string{-1: "x"}}, []interface{}{map[uint]string{^uint(0): "x"}, map[uint8]string{255: "x"}}},
		{"unsigned keys", map[uint64]string{^uint64(0): "x"}, nil, []interface{}{map[int64]string{-1: "x"}}},
		{"scalar", 5, []interface{}{5}, []interface{}{6, "5"}},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			m := Contains(test.partial)
			for _, arg := range test.matching {
				ok, err := matchArg(m, arg)
				assert.NoError(t, err)
				assert.True(t, ok, "expected %v to match %#v", m, arg)
			}
			for _, arg := range test.notMatching {
				ok, err := matchArg(m, arg)
				assert.NoError(t, err)
				assert.False(t, ok, "expected %v not to match %#v", m, arg)
			}
		})
	}
}

func TestFallibleMatchers_PropagateErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := ArgThat(func(int) (bool, error) { return false, boom }, "failing")

	tests := []struct {
		name    string
		matcher ArgMatcher
		arg     interface{}
	}{
		{"ArgThat", failing, 1},
		{"Not", Not(failing), 1},
		{"All", All(Anything(), failing), 1},
		{"Any", Any(Eql(2), failing), 1},
		{"Len", Len(failing), "x"},
		{"Contains", Contains(map[string]interface{}{"a": failing}), map[string]int{"a": 1}},
		{"Contains sequence", Contains([]interface{}{failing}), []int{1}},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			ok, err := matchArg(test.matcher, test.arg)
			assert.False(t, ok)
			assert.True(t, errors.Is(err, boom), "got %v", err)
			assert.False(t, test.matcher.Matches(test.arg))
		})
	}
}

func TestArgThat_Invalid(t *testing.T) {
	for _, predicate := range []interface{}{
		nil,
		"notafunc",
		func() bool { return true },
		func(a, b int) bool { return true },
		func(a ...int) bool { return true },
		func(string) {},
		func(string) error { return nil },
		func(string) (bool, string) { return true, "" },
	} {
		m := ArgThat(predicate)
		assert.True(t, errors.Is(validateMatcher(m), ErrInvalidMatcher), "%v", m)
	}
}

func TestArgExpr(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		matching    []interface{}
		notMatching []interface{}
	}{
		{"range", `arg > 3 && arg < 10`, []interface{}{4, 9, 5.5}, []interface{}{3, 10}},
		{"field", `arg.Size in ["S", "M"]`, []interface{}{box{Size: "S"}, box{Size: "M"}}, []interface{}{box{Size: "L"}}},
		{"map key", `arg.id == 7`, []interface{}{map[string]interface{}{"id": 7}}, []interface{}{map[string]interface{}{"id": 8}}},
		{"string", `arg startsWith "t"`, []interface{}{"test"}, []interface{}{"x"}},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			m := ArgExpr(test.source)
			require.NoError(t, validateMatcher(m))
			for _, arg := range test.matching {
				ok, err := matchArg(m, arg)
				assert.NoError(t, err)
				assert.True(t, ok, "expected %v to match %#v", m, arg)
			}
			for _, arg := range test.notMatching {
				ok, err := matchArg(m, arg)
				assert.NoError(t, err)
				assert.False(t, ok, "expected %v not to match %#v", m, arg)
			}
		})
	}
}

func TestArgExpr_Errors(t *testing.T) {
	invalid := ArgExpr(`arg >`)
	assert.True(t, errors.Is(validateMatcher(invalid), ErrInvalidMatcher))
	assert.False(t, invalid.Matches(1))

	notBool := ArgExpr(`arg + 1`)
	require.NoError(t, validateMatcher(notBool))
	ok, err := matchArg(notBool, 1)
	assert.False(t, ok)
	assert.ErrorContains(t, err, "expected bool")
	assert.False(t, notBool.Matches(1))
}

func TestJSONPath(t *testing.T) {
	var p parcel
	p.Container.Size = "S"
	p.Items = []int{1, 2}

	tests := []struct {
		name        string
		matcher     ArgMatcher
		matching    []interface{}
		notMatching []interface{}
	}{
		{"map", JSONPath("$.container.size", "S"),
			[]interface{}{map[string]interface{}{"container": map[string]interface{}{"size": "S"}}, p},
			[]interface{}{map[string]interface{}{"container": map[string]interface{}{"size": "M"}}, "S", nil}},
		{"numbers", JSONPath("$.count", 3),
			[]interface{}{map[string]int{"count": 3}, map[string]interface{}{"count": int64(3)}},
			[]interface{}{map[string]int{"count": 4}, map[string]string{"count": "3"}}},
		{"wildcard", JSONPath("$.items[*]", 2), []interface{}{p}, []interface{}{parcel{}}},
		{"unencodable argument", JSONPath("$.a", 1), nil, []interface{}{make(chan int), func() {}}},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			require.NoError(t, validateMatcher(test.matcher))
			for _, arg := range test.matching {
				assert.True(t, test.matcher.Matches(arg), "expected %v to match %#v", test.matcher, arg)
			}
			for _, arg := range test.notMatching {
				assert.False(t, test.matcher.Matches(arg), "expected %v not to match %#v", test.matcher, arg)
			}
		})
	}
}

func TestJSONPath_Invalid(t *testing.T) {
	m := JSONPath("$.a", func() {})
	assert.True(t, errors.Is(validateMatcher(m), ErrInvalidMatcher))
	assert.False(t, m.Matches(map[string]interface{}{"a": 1}))
}

func TestGenericArgMatcher(t *testing.T) {
	assert.IsType(t, isAMatcher{}, genericArgMatcher(AnyString))
	assert.IsType(t, isAMatcher{}, genericArgMatcher(reflect.TypeOf("")))
	assert.IsType(t, funcMatcher{}, genericArgMatcher(func(int) bool { return true }))
	assert.IsType(t, eqlMatcher{}, genericArgMatcher(3))
	assert.IsType(t, eqlMatcher{}, genericArgMatcher(nil))
	assert.Equal(t, even{}, genericArgMatcher(even{}))
}

func TestTypeRegistry(t *testing.T) {
	r := NewTypeRegistry()
	assert.Equal(t, []string{"boolean", "error", "function", "keyed", "number", "pointer", "sequence", "string"}, r.Names())

	require.NoError(t, r.Register("box", box{}))
	require.NoError(t, r.Register("box", reflect.TypeOf(box{})), "same type again")
	assert.ErrorIs(t, r.Register("box", parcel{}), ErrInvalidMatcher)
	assert.ErrorIs(t, r.Register("nothing", nil), ErrInvalidMatcher)
	require.NoError(t, r.Register("count", AnyNumber))

	d, found := r.Lookup("box")
	assert.True(t, found)
	assert.Equal(t, reflect.TypeOf(box{}), d)

	assert.True(t, r.IsA("box").Matches(box{}))
	assert.False(t, r.IsA("box").Matches(parcel{}))
	assert.True(t, r.IsA("count").Matches(3))
	assert.True(t, r.IsA("string").Matches("x"))

	unknown := r.IsA("widget")
	assert.ErrorIs(t, validateMatcher(unknown), ErrInvalidMatcher)
	assert.False(t, unknown.Matches("widget"))
}
