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
	"io/ioutil"
	"path/filepath"
	"sort"

	"github.com/carepay/gotemplate/parse"
)

// Template is a parsed template, or a handle onto one of the named
// definitions ({{define "name"}}...{{end}}) collected in its group. All
// templates sharing a group (reached from one another via New or Parse)
// share a single function registry and name-to-template map; see common.go.
type Template struct {
	name                  string
	leftDelim, rightDelim string
	Tree                  *parse.Tree
	common                *common
}

// New allocates a new, undefined template group named name.
func New(name string) *Template {
	t := &Template{name: name, common: newCommon()}
	t.common.tmpl[name] = t
	return t
}

// Must panics if err is non-nil; it wraps calls to functions that return
// (*Template, error), such as New(name).Parse(text).
func Must(t *Template, err error) *Template {
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the name of the template.
func (t *Template) Name() string { return t.name }

// New allocates a new, undefined template associated with t, in the same
// group, sharing delimiters and the function registry.
func (t *Template) New(name string) *Template {
	nt := &Template{name: name, common: t.common, leftDelim: t.leftDelim, rightDelim: t.rightDelim}
	t.common.mu.Lock()
	t.common.tmpl[name] = nt
	t.common.mu.Unlock()
	return nt
}

// Funcs adds the functions in fm to the template's group, as described in
// FuncMap. It must be called before Parse for the registered names to be
// visible to the parser's identifier check.
func (t *Template) Funcs(fm FuncMap) *Template {
	t.common.addFuncs(fm)
	return t
}

// Delims sets the action delimiters, to be used in a subsequent Parse, to
// the specified strings. Nested template definitions inherit the
// delimiters in effect when they were parsed. An empty delimiter resets
// it to the default ("{{" / "}}").
func (t *Template) Delims(left, right string) *Template {
	t.leftDelim, t.rightDelim = left, right
	return t
}

// Parse parses text as a template body for t, adding any named
// definitions found in it (via {{define}}) to t's group. Parse may be
// called multiple times to parse definitions incrementally, per the
// non-empty-definition-wins rule recorded in parse.Tree.add.
func (t *Template) Parse(text string) (*Template, error) {
	t.common.mu.Lock()
	defer t.common.mu.Unlock()
	logger.Tracef("parsing template %q", t.name)
	trees, err := parse.Parse(t.name, text, t.leftDelim, t.rightDelim, t.common.funcNames()...)
	if err != nil {
		logger.Errorf("parse %q: %s", t.name, err)
		return nil, err
	}
	for name, tree := range trees {
		if old := t.common.treeSet[name]; old != nil && parse.IsEmptyTree(tree.Root) && !parse.IsEmptyTree(old.Root) {
			tree = old
		}
		t.common.treeSet[name] = tree
		if name == t.name {
			t.Tree = tree
			t.common.tmpl[name] = t
			continue
		}
		nt := t.common.tmpl[name]
		if nt == nil {
			nt = &Template{name: name, common: t.common, leftDelim: t.leftDelim, rightDelim: t.rightDelim}
			t.common.tmpl[name] = nt
		}
		nt.Tree = tree
	}
	return t, nil
}

// Lookup returns the template in t's group with the given name, or nil if
// there is no such template.
func (t *Template) Lookup(name string) *Template {
	t.common.mu.RLock()
	defer t.common.mu.RUnlock()
	return t.common.tmpl[name]
}

// Templates returns a slice of defined templates associated with t, in
// undefined order.
func (t *Template) Templates() []*Template {
	t.common.mu.RLock()
	defer t.common.mu.RUnlock()
	out := make([]*Template, 0, len(t.common.tmpl))
	for _, tmpl := range t.common.tmpl {
		out = append(out, tmpl)
	}
	return out
}

// ParseFiles parses the named files and associates the resulting
// templates with t. Each file's base name becomes the defined template's
// name.
func (t *Template) ParseFiles(filenames ...string) (*Template, error) {
	return parseFiles(t, filenames...)
}

// ParseFiles creates a new Template named for the base of the first file
// and parses the named files into it.
func ParseFiles(filenames ...string) (*Template, error) {
	if len(filenames) == 0 {
		return nil, errors.New("gotemplate: no files named in call to ParseFiles")
	}
	t := New(filepath.Base(filenames[0]))
	return parseFiles(t, filenames...)
}

func parseFiles(t *Template, filenames ...string) (*Template, error) {
	if len(filenames) == 0 {
		return nil, errors.New("gotemplate: no files named in call to ParseFiles")
	}
	for _, filename := range filenames {
		b, err := ioutil.ReadFile(filename)
		if err != nil {
			return nil, err
		}
		name := filepath.Base(filename)
		var tmpl *Template
		if t.Tree == nil && t.name == name {
			tmpl = t
		} else if tmpl = t.common.tmpl[name]; tmpl == nil {
			tmpl = t.New(name)
		}
		if _, err := tmpl.Parse(string(b)); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ParseInputs parses a batch of named template bodies (as might be read
// from a database or bundled asset map) into t's group in a single call.
// Iteration order of inputs is undefined by Go maps, so cross-referencing
// {{template}} invocations work regardless of registration order -
// definitions are only resolved at execution time.
func (t *Template) ParseInputs(inputs map[string]string) (*Template, error) {
	for name, text := range inputs {
		var tmpl *Template
		if name == t.name {
			tmpl = t
		} else if tmpl = t.common.tmpl[name]; tmpl == nil {
			tmpl = t.New(name)
		}
		if _, err := tmpl.Parse(text); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ParseInputs creates a new Template, registers funcs, and parses inputs
// into it, rooted at the first key. Go map iteration order is undefined,
// so "first" is taken to mean lexicographically first, a deterministic
// stand-in for the map's undefined ordering (see DESIGN.md).
func ParseInputs(funcs FuncMap, inputs map[string]string) (*Template, error) {
	if len(inputs) == 0 {
		return nil, errors.New("gotemplate: no inputs named in call to ParseInputs")
	}
	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	t := New(names[0])
	if funcs != nil {
		t.Funcs(funcs)
	}
	return t.ParseInputs(inputs)
}
