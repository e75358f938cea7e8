// Copyright 2014 Joel Scoble (github:mohae). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// This code is based on code originally written by The Go Authors.
// Their copyright notice immediately follows this one.

// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gotemplate

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

// FuncMap maps a function name, as used in a template action, to a Go
// function. Every value must be a func; see Template.Funcs.
type FuncMap map[string]interface{}

// builtinFuncs returns the fixed, immutable-after-init built-in library
// named in §4.4. Each entry's overload set has exactly one member; user
// registrations may grow their own overload sets but never this one.
func builtinFuncs() map[string][]reflect.Value {
	fns := map[string]interface{}{
		"range":     rangeFunc,
		"index":     indexFunc,
		"print":     fmt.Sprint,
		"println":   fmt.Sprintln,
		"printf":    fmt.Sprintf,
		"add":       arith("add"),
		"sub":       arith("sub"),
		"mul":       arith("mul"),
		"div":       arith("div"),
		"mod":       arith("mod"),
		"eq":        eqFunc,
		"ne":        neFunc,
		"lt":        ltFunc,
		"le":        leFunc,
		"gt":        gtFunc,
		"ge":        geFunc,
		"not":       notFunc,
		"and":       andFunc,
		"or":        orFunc,
		"urlencode": urlencodeFunc,
		"default":   defaultFunc,
	}
	out := make(map[string][]reflect.Value, len(fns))
	for name, fn := range fns {
		out[name] = []reflect.Value{reflect.ValueOf(fn)}
	}
	return out
}

// rangeFunc implements the range(stop) / range(start, stop) /
// range(start, stop, step) builtin: a finite integer sequence materialised
// as a slice so the executor's ordinary for-over-slice path can walk it.
func rangeFunc(args ...int64) ([]int64, error) {
	var start, stop, step int64
	switch len(args) {
	case 1:
		start, stop = 0, args[0]
	case 2:
		start, stop = args[0], args[1]
	case 3:
		start, stop, step = args[0], args[1], args[2]
	default:
		return nil, errors.New("range requires 1 to 3 arguments")
	}
	if len(args) < 3 {
		if start < stop {
			step = 1
		} else {
			step = -1
		}
	}
	if step == 0 {
		return nil, errors.New("range: step must not be zero")
	}
	var out []int64
	if step > 0 {
		for v := start; v < stop; v += step {
			out = append(out, v)
		}
	} else {
		for v := start; v > stop; v += step {
			out = append(out, v)
		}
	}
	return out, nil
}

// indexFunc implements index(container, k1, k2, ...): successive lookup,
// array-like containers indexed by integer, mapping-like by key equality.
func indexFunc(item interface{}, indices ...interface{}) (interface{}, error) {
	v := reflect.ValueOf(item)
	for _, idx := range indices {
		v, _ = indirectValue(v)
		if !v.IsValid() {
			return nil, errors.New("index of nil pointer")
		}
		switch v.Kind() {
		case reflect.Array, reflect.Slice, reflect.String:
			i, err := toInt(idx)
			if err != nil {
				return nil, fmt.Errorf("index: %w", err)
			}
			if i < 0 || i >= int64(v.Len()) {
				return nil, fmt.Errorf("index out of range: %d", i)
			}
			v = v.Index(int(i))
		case reflect.Map:
			key := reflect.ValueOf(idx)
			if !key.IsValid() {
				key = reflect.Zero(v.Type().Key())
			}
			if key.Type() != v.Type().Key() {
				if !key.Type().ConvertibleTo(v.Type().Key()) {
					return nil, fmt.Errorf("index: incompatible key type %s", key.Type())
				}
				key = key.Convert(v.Type().Key())
			}
			v = v.MapIndex(key)
			if !v.IsValid() {
				return nil, nil
			}
		default:
			return nil, fmt.Errorf("index: can't index item of type %s", v.Type())
		}
	}
	return v.Interface(), nil
}

// arith builds add/sub/mul/div/mod: numeric dispatch on the widest common
// numeric kind, with '+' additionally concatenating two textual values.
func arith(op string) func(a, b interface{}) (interface{}, error) {
	return func(a, b interface{}) (interface{}, error) {
		if op == "add" {
			as, aIsString := a.(string)
			bs, bIsString := b.(string)
			if aIsString && bIsString {
				return as + bs, nil
			}
		}
		af, aIsFloat, aErr := asNumber(a)
		bf, bIsFloat, bErr := asNumber(b)
		if aErr != nil || bErr != nil {
			return nil, fmt.Errorf("%s: operands must be numeric", op)
		}
		useFloat := aIsFloat || bIsFloat
		if (op == "div" || op == "mod") && bf == 0 {
			return nil, fmt.Errorf("%s: division by zero", op)
		}
		if useFloat {
			switch op {
			case "add":
				return af + bf, nil
			case "sub":
				return af - bf, nil
			case "mul":
				return af * bf, nil
			case "div":
				return af / bf, nil
			case "mod":
				return nil, errors.New("mod: floating-point operands not supported")
			}
		}
		ai, bi := int64(af), int64(bf)
		switch op {
		case "add":
			return ai + bi, nil
		case "sub":
			return ai - bi, nil
		case "mul":
			return ai * bi, nil
		case "div":
			return ai / bi, nil
		case "mod":
			return ai % bi, nil
		}
		panic("unreached")
	}
}

// asNumber coerces v to a float64 view plus a flag for whether it was
// natively floating point, used to pick the widest common numeric kind.
func asNumber(v interface{}) (value float64, isFloat bool, err error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), false, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), false, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true, nil
	default:
		return 0, false, fmt.Errorf("value %v is not numeric", v)
	}
}

func toInt(v interface{}) (int64, error) {
	f, _, err := asNumber(v)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// eqFunc implements eq(a, b1, ..., bn): true if a equals any bi.
func eqFunc(arg1 interface{}, arg2 ...interface{}) (bool, error) {
	if len(arg2) == 0 {
		return false, errors.New("eq requires at least 2 arguments")
	}
	for _, b := range arg2 {
		truth, err := basicEqual(arg1, b)
		if err != nil {
			return false, err
		}
		if truth {
			return true, nil
		}
	}
	return false, nil
}

func neFunc(arg1, arg2 interface{}) (bool, error) {
	eq, err := basicEqual(arg1, arg2)
	return !eq, err
}

func basicEqual(a, b interface{}) (bool, error) {
	af, aIsFloat, aErr := asNumber(a)
	bf, bIsFloat, bErr := asNumber(b)
	if aErr == nil && bErr == nil {
		_ = aIsFloat
		_ = bIsFloat
		return af == bf, nil
	}
	return reflect.DeepEqual(a, b), nil
}

func numericCompare(name string, a, b interface{}) (int, error) {
	af, _, aErr := asNumber(a)
	if aErr == nil {
		bf, _, bErr := asNumber(b)
		if bErr != nil {
			return 0, fmt.Errorf("%s: %w", name, bErr)
		}
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	as, aIsString := a.(string)
	bs, bIsString := b.(string)
	if aIsString && bIsString {
		return strings.Compare(as, bs), nil
	}
	return 0, fmt.Errorf("%s: mismatched non-numeric operands", name)
}

func ltFunc(a, b interface{}) (bool, error) {
	c, err := numericCompare("lt", a, b)
	return c < 0, err
}

func leFunc(a, b interface{}) (bool, error) {
	c, err := numericCompare("le", a, b)
	return c <= 0, err
}

func gtFunc(a, b interface{}) (bool, error) {
	c, err := numericCompare("gt", a, b)
	return c > 0, err
}

func geFunc(a, b interface{}) (bool, error) {
	c, err := numericCompare("ge", a, b)
	return c >= 0, err
}

// notFunc implements not(v) using the truthiness rule (§4.5).
func notFunc(v interface{}) bool {
	truthy, _ := truth(reflect.ValueOf(v))
	return !truthy
}

// andFunc and orFunc are registered for completeness and for use outside
// of command position (e.g. passed as a value); the executor special-cases
// the identifiers "and"/"or" in evalFunction to get real short-circuiting
// (§4.4's "short-circuits on the first falsy/truthy" requires skipping
// evaluation of later operand nodes, which a plain eagerly-evaluated Go
// function cannot do).
func andFunc(args ...interface{}) interface{} {
	if len(args) == 0 {
		return false
	}
	result := args[0]
	for _, a := range args {
		result = a
		truthy, _ := truth(reflect.ValueOf(a))
		if !truthy {
			break
		}
	}
	return result
}

func orFunc(args ...interface{}) interface{} {
	if len(args) == 0 {
		return false
	}
	result := args[0]
	for _, a := range args {
		result = a
		truthy, _ := truth(reflect.ValueOf(a))
		if truthy {
			break
		}
	}
	return result
}

func urlencodeFunc(v interface{}) string {
	return url.QueryEscape(fmt.Sprint(v))
}

// defaultFunc implements default(fallback, v): the spec's corrected
// semantics (§9), not the confused two-overload original: return v if
// truthy, else the textual rendering of fallback.
func defaultFunc(fallback, v interface{}) string {
	truthy, _ := truth(reflect.ValueOf(v))
	if truthy {
		return fmt.Sprint(v)
	}
	return fmt.Sprint(fallback)
}
