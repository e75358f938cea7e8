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
	"bytes"
	"io/ioutil"
)

// Render parses text as an anonymous, one-off template and executes it
// against data, returning the rendered output or the error's textual
// form if either step fails.
func Render(text string, data interface{}) string {
	t, err := New("render").Parse(text)
	if err != nil {
		logger.Errorf("render: %s", err)
		return err.Error()
	}
	var b bytes.Buffer
	if err := t.Execute(&b, data); err != nil {
		logger.Errorf("render: %s", err)
		return err.Error()
	}
	return b.String()
}

// RenderFile reads the named file and renders it as in Render.
func RenderFile(filename string, data interface{}) string {
	text, err := ioutil.ReadFile(filename)
	if err != nil {
		return err.Error()
	}
	return Render(string(text), data)
}
