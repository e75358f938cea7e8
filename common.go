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
	"reflect"
	"sync"

	"github.com/carepay/gotemplate/parse"
)

// common holds the state shared by all templates in a group: the
// name-to-template map and the function registries. A new child
// template (Template.New) shares its parent's common; an independently
// created one (New) gets its own.
type common struct {
	mu       sync.RWMutex
	tmpl     map[string]*Template
	treeSet  map[string]*parse.Tree
	builtins map[string][]reflect.Value
	userMu   sync.RWMutex // guards userFuncs against concurrent Funcs/execute per spec.md §5
	userFuncs map[string][]reflect.Value
}

func newCommon() *common {
	return &common{
		tmpl:      make(map[string]*Template),
		treeSet:   make(map[string]*parse.Tree),
		builtins:  builtinFuncs(),
		userFuncs: make(map[string][]reflect.Value),
	}
}

// addFuncs registers fm into the user table. Registering a name that
// already has an entry appends to its overload set (§4.3) rather than
// replacing it, so a caller wanting to shadow a previous registration
// must construct a fresh group.
func (c *common) addFuncs(fm FuncMap) {
	c.userMu.Lock()
	defer c.userMu.Unlock()
	for name, fn := range fm {
		v := reflect.ValueOf(fn)
		if v.Kind() != reflect.Func {
			panic("gotemplate: value for " + name + " not a function")
		}
		c.userFuncs[name] = append(c.userFuncs[name], v)
	}
}

// funcNames returns an existence-only view of both registries, the shape
// parse.Tree.hasFunction needs to validate identifiers at parse time; the
// user table is listed first so §4.3's resolution order is visible to a
// reader, though existence doesn't care about order.
func (c *common) funcNames() []map[string]interface{} {
	c.userMu.RLock()
	defer c.userMu.RUnlock()
	userNames := make(map[string]interface{}, len(c.userFuncs))
	for name := range c.userFuncs {
		userNames[name] = true
	}
	builtinNames := make(map[string]interface{}, len(c.builtins))
	for name := range c.builtins {
		builtinNames[name] = true
	}
	return []map[string]interface{}{userNames, builtinNames}
}

// lookupFunc resolves a name's overload set, preferring the user table
// wholesale over built-ins per §4.3.
func (c *common) lookupFunc(name string) ([]reflect.Value, bool) {
	c.userMu.RLock()
	if fns, ok := c.userFuncs[name]; ok {
		c.userMu.RUnlock()
		return fns, true
	}
	c.userMu.RUnlock()
	fns, ok := c.builtins[name]
	return fns, ok
}
