// Copyright 2014 Joel Scoble (github:mohae). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// This code is based on code originally written by The Go Authors.
// Their copyright notice immediately follows this one.

// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"fmt"
	"testing"
)

// mkItem is a small constructor to keep the test table below readable.
func mkItem(typ itemType, text string) item {
	return item{typ: typ, value: text}
}

var (
	tEOF        = mkItem(itemEOF, "")
	tLeftDelim  = mkItem(itemLeftDelim, "{{")
	tRightDelim = mkItem(itemRightDelim, "}}")
	tSpace      = mkItem(itemSpace, " ")
	tDot        = mkItem(itemDot, ".")
	tPipe       = mkItem(itemPipe, "|")
)

type lexTest struct {
	name  string
	input string
	items []item
}

// collect gathers the emitted items into a slice, stopping at EOF or error.
func collect(lt *lexTest, left, right string) (items []item) {
	l := lex(lt.name, lt.input, left, right)
	for {
		it := l.nextItem()
		items = append(items, it)
		if it.typ == itemEOF || it.typ == itemError {
			break
		}
	}
	return
}

// equal compares two item slices by type and value, and also by position
// when checkPos is set; lines are never compared.
func equal(i1, i2 []item, checkPos bool) bool {
	if len(i1) != len(i2) {
		return false
	}
	for k := range i1 {
		if i1[k].typ != i2[k].typ {
			return false
		}
		if i1[k].value != i2[k].value {
			return false
		}
		if checkPos && i1[k].pos != i2[k].pos {
			return false
		}
	}
	return true
}

var lexTests = []lexTest{
	{"empty", "", []item{tEOF}},
	{"text", "now is the time", []item{
		mkItem(itemText, "now is the time"),
		tEOF,
	}},
	{"comment", "{{/* comment */}}", []item{tEOF}},
	{"dot action", "{{.}}", []item{tLeftDelim, tDot, tRightDelim, tEOF}},
	{"null action", "{{null}}", []item{tLeftDelim, mkItem(itemNull, "null"), tRightDelim, tEOF}},
	{"bools", "{{true}}{{false}}", []item{
		tLeftDelim, mkItem(itemBool, "true"), tRightDelim,
		tLeftDelim, mkItem(itemBool, "false"), tRightDelim,
		tEOF,
	}},
	{"field", "{{.Name}}", []item{
		tLeftDelim, mkItem(itemField, ".Name"), tRightDelim, tEOF,
	}},
	{"chained field", "{{.A.B.C}}", []item{
		tLeftDelim, mkItem(itemField, ".A.B.C"), tRightDelim, tEOF,
	}},
	{"variable", "{{$x}}", []item{
		tLeftDelim, mkItem(itemVariable, "$x"), tRightDelim, tEOF,
	}},
	{"bare dollar", "{{$}}", []item{
		tLeftDelim, mkItem(itemVariable, "$"), tRightDelim, tEOF,
	}},
	{"pipeline", "{{.A | printf}}", []item{
		tLeftDelim, mkItem(itemField, ".A"), tSpace, tPipe, tSpace,
		mkItem(itemIdentifier, "printf"), tRightDelim, tEOF,
	}},
	{"declare", "{{$x := .A}}", []item{
		tLeftDelim, mkItem(itemVariable, "$x"), tSpace, mkItem(itemDeclare, ":="),
		tSpace, mkItem(itemField, ".A"), tRightDelim, tEOF,
	}},
	{"two-var declare", "{{for $k, $v := .M}}{{end}}", []item{
		tLeftDelim, mkItem(itemFor, "for"), tSpace, mkItem(itemVariable, "$k"),
		mkItem(itemComma, ","), tSpace, mkItem(itemVariable, "$v"), tSpace,
		mkItem(itemDeclare, ":="), tSpace, mkItem(itemField, ".M"), tRightDelim,
		tLeftDelim, mkItem(itemEnd, "end"), tRightDelim, tEOF,
	}},
	{"keywords", "{{if}}{{else}}{{end}}{{for}}{{break}}{{continue}}{{with}}{{template}}{{define}}", []item{
		tLeftDelim, mkItem(itemIf, "if"), tRightDelim,
		tLeftDelim, mkItem(itemElse, "else"), tRightDelim,
		tLeftDelim, mkItem(itemEnd, "end"), tRightDelim,
		tLeftDelim, mkItem(itemFor, "for"), tRightDelim,
		tLeftDelim, mkItem(itemBreak, "break"), tRightDelim,
		tLeftDelim, mkItem(itemContinue, "continue"), tRightDelim,
		tLeftDelim, mkItem(itemWith, "with"), tRightDelim,
		tLeftDelim, mkItem(itemTemplate, "template"), tRightDelim,
		tLeftDelim, mkItem(itemDefine, "define"), tRightDelim,
		tEOF,
	}},
	{"numbers", "{{1}}{{1.5}}{{0x1F}}{{-3}}", []item{
		tLeftDelim, mkItem(itemNumber, "1"), tRightDelim,
		tLeftDelim, mkItem(itemNumber, "1.5"), tRightDelim,
		tLeftDelim, mkItem(itemNumber, "0x1F"), tRightDelim,
		tLeftDelim, mkItem(itemNumber, "-3"), tRightDelim,
		tEOF,
	}},
	{"char constant", `{{'a'}}`, []item{
		tLeftDelim, mkItem(itemCharConstant, "'a'"), tRightDelim, tEOF,
	}},
	{"string", `{{"hi"}}`, []item{
		tLeftDelim, mkItem(itemString, `"hi"`), tRightDelim, tEOF,
	}},
	{"raw string", "{{`hi`}}", []item{
		tLeftDelim, mkItem(itemRawString, "`hi`"), tRightDelim, tEOF,
	}},
	{"parens", "{{(.A)}}", []item{
		tLeftDelim, mkItem(itemLeftParen, "("), mkItem(itemField, ".A"),
		mkItem(itemRightParen, ")"), tRightDelim, tEOF,
	}},
	{"assign", "{{$x = .A}}", []item{
		tLeftDelim, mkItem(itemVariable, "$x"), tSpace, mkItem(itemAssign, "="),
		tSpace, mkItem(itemField, ".A"), tRightDelim, tEOF,
	}},
	{"custom delims", "<<.A>>", []item{
		mkItem(itemLeftDelim, "<<"), mkItem(itemField, ".A"),
		mkItem(itemRightDelim, ">>"), tEOF,
	}},
	{"unclosed action", "{{.A", []item{
		tLeftDelim, mkItem(itemField, ".A"), mkItem(itemError, "unclosed action"),
	}},
	{"unclosed comment", "{{/* never closes", []item{
		mkItem(itemError, "unclosed comment"),
	}},
}

func TestLex(t *testing.T) {
	for _, test := range lexTests {
		left, right := "{{", "}}"
		if test.name == "custom delims" {
			left, right = "<<", ">>"
		}
		items := collect(&test, left, right)
		if !equal(items, test.items, false) {
			t.Errorf("%s: got\n\t%+v\nexpected\n\t%v", test.name, items, test.items)
		}
	}
}

func TestLexPositions(t *testing.T) {
	test := lexTest{"field pos", "a{{.Name}}", []item{
		mkItem(itemText, "a"),
		{typ: itemLeftDelim, pos: 1, value: "{{"},
		{typ: itemField, pos: 3, value: ".Name"},
		{typ: itemRightDelim, pos: 8, value: "}}"},
		{typ: itemEOF, pos: 10, value: ""},
	}}
	items := collect(&test, "", "")
	if !equal(items, test.items, true) {
		t.Errorf("got\n\t%v\nexpected\n\t%v", items, test.items)
	}
}

func TestItemString(t *testing.T) {
	it := item{typ: itemText, value: "hello"}
	if got := fmt.Sprint(it); got == "" {
		t.Errorf("item.String returned empty output")
	}
}
