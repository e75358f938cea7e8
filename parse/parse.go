// Copyright 2014 Joel Scoble (github:mohae). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// This code is based on code originally written by The Go Authors.
// Their copyright notice immediately follows this one.

// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parse builds parse trees for templates. The grammar recognized
// is described in spec.md §4.2; the three-token lookahead exists solely
// to disambiguate "$x foo" (a use) from "$x := foo" (a declaration).
package parse

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Tree is the representation of a single parsed template.
type Tree struct {
	Name      string    // name of the template represented by the tree.
	ParseName string    // name of the top-level template during parsing, for error messages.
	Root      *ListNode // top-level root of the tree.
	text      string    // text parsed to create the template (or its parent).

	// Parsing only; cleared after parse via stopParse.
	funcs      []map[string]interface{}
	lex        *lexer
	token      [3]item // three-token lookahead for the parser.
	peekCount  int
	vars       []string // variables declared so far, innermost last.
	rangeDepth int      // nesting depth of for loops, for break/continue validation.
}

// Copy returns a copy of the Tree. Any parsing state is discarded.
func (t *Tree) Copy() *Tree {
	if t == nil {
		return nil
	}
	return &Tree{
		Name:      t.Name,
		ParseName: t.ParseName,
		Root:      t.Root.CopyList(),
		text:      t.text,
	}
}

// Parse returns a map from template name to parse.Tree, created by
// parsing the template text named by name. funcs supplies the known
// function names used to validate identifiers at parse time (§4.2).
func Parse(name, text, leftDelim, rightDelim string, funcs ...map[string]interface{}) (treeSet map[string]*Tree, err error) {
	treeSet = make(map[string]*Tree)
	t := New(name)
	t.text = text
	_, err = t.Parse(text, leftDelim, rightDelim, treeSet, funcs...)
	return
}

// next returns the next token.
func (t *Tree) next() item {
	if t.peekCount > 0 {
		t.peekCount--
	} else {
		t.token[0] = t.lex.nextItem()
	}
	return t.token[t.peekCount]
}

// backup backs the input stream up one token.
func (t *Tree) backup() {
	t.peekCount++
}

// backup2 backs the input stream up two tokens, given the most recently
// read token (the one before the current one).
func (t *Tree) backup2(t1 item) {
	t.token[1] = t1
	t.peekCount = 2
}

// backup3 backs the input stream up three tokens.
func (t *Tree) backup3(t2, t1 item) {
	t.token[1] = t1
	t.token[2] = t2
	t.peekCount = 3
}

// peek returns but does not consume the next token.
func (t *Tree) peek() item {
	if t.peekCount > 0 {
		return t.token[t.peekCount-1]
	}
	t.peekCount = 1
	t.token[0] = t.lex.nextItem()
	return t.token[0]
}

// nextNonSpace returns the next non-space token.
func (t *Tree) nextNonSpace() (token item) {
	for {
		token = t.next()
		if token.typ != itemSpace {
			break
		}
	}
	return token
}

// peekNonSpace returns but does not consume the next non-space token.
func (t *Tree) peekNonSpace() item {
	token := t.nextNonSpace()
	t.backup()
	return token
}

// Parsing.

// New allocates a new parse tree with the given name.
func New(name string, funcs ...map[string]interface{}) *Tree {
	return &Tree{
		Name:  name,
		funcs: funcs,
	}
}

// ErrorContext returns a textual representation of the location of the
// node in the input text, and the (clipped) text of the node itself.
func (t *Tree) ErrorContext(n Node) (location, context string) {
	pos := int(n.Position())
	text := t.text[:pos]
	byteNum := strings.LastIndex(text, "\n")
	if byteNum == -1 {
		byteNum = pos // On first line.
	} else {
		byteNum++ // After the newline.
		byteNum = pos - byteNum
	}
	lineNum := 1 + strings.Count(text, "\n")
	context = n.String()
	if len(context) > 20 {
		context = fmt.Sprintf("%.20s...", context)
	}
	return fmt.Sprintf("%s:%d:%d", t.ParseName, lineNum, byteNum), context
}

// errorf formats the error, attaches the tree's position, and panics so
// the top-level Parse can recover it into a returned error.
func (t *Tree) errorf(format string, args ...interface{}) {
	t.Root = nil
	line := 1
	if t.lex != nil {
		line = t.lex.line
	}
	format = fmt.Sprintf("template: %s:%d: %s", t.ParseName, line, format)
	panic(fmt.Errorf(format, args...))
}

// unexpected complains about the token and terminates processing.
func (t *Tree) unexpected(token item, context string) {
	t.errorf("unexpected %s in %s", token, context)
}

// recover is the handler that turns panics into returns from the top level of Parse.
func (t *Tree) recover(errp *error) {
	e := recover()
	if e != nil {
		if _, ok := e.(runtime.Error); ok {
			panic(e)
		}
		if t != nil {
			t.stopParse()
		}
		*errp = e.(error)
	}
}

// startParse initializes the parser, using the lexer.
func (t *Tree) startParse(funcs []map[string]interface{}, lex *lexer) {
	t.Root = nil
	t.lex = lex
	t.vars = []string{"$"}
	t.rangeDepth = 0
	t.funcs = funcs
}

// stopParse terminates parsing.
func (t *Tree) stopParse() {
	t.lex = nil
	t.vars = nil
	t.funcs = nil
}

// Parse parses the template definition string to construct a
// representation of the template for execution. If either delimiter
// string is empty, the default ("{{" or "}}") is used. Embedded
// {{define}} blocks are added to treeSet.
func (t *Tree) Parse(text, leftDelim, rightDelim string, treeSet map[string]*Tree, funcs ...map[string]interface{}) (tree *Tree, err error) {
	defer t.recover(&err)
	t.ParseName = t.Name
	t.startParse(funcs, lex(t.Name, text, leftDelim, rightDelim))
	t.text = text
	t.parse(treeSet)
	t.add(treeSet)
	t.stopParse()
	return t, nil
}

// add adds tree to the treeSet, honoring the non-empty-wins rule from §3:
// a later empty definition does not replace a prior non-empty one, and two
// non-empty definitions of the same name are a conflict.
func (t *Tree) add(treeSet map[string]*Tree) {
	tree := treeSet[t.Name]
	if tree == nil || IsEmptyTree(tree.Root) {
		treeSet[t.Name] = t
		return
	}
	if !IsEmptyTree(t.Root) {
		t.errorf("multiple definition of template %q", t.Name)
	}
}

// parse is the top-level parser for a template. It runs until EOF,
// installing {{define}} blocks into treeSet as it encounters them.
func (t *Tree) parse(treeSet map[string]*Tree) {
	t.Root = t.newList(t.peek().pos)
	for t.peek().typ != itemEOF {
		if t.peek().typ == itemLeftDelim {
			delim := t.next()
			if t.nextNonSpace().typ == itemDefine {
				newT := New("definition") // name updated once we know it.
				newT.text = t.text
				newT.ParseName = t.ParseName
				newT.startParse(t.funcs, t.lex)
				newT.parseDefinition(treeSet)
				continue
			}
			t.backup2(delim)
		}
		n := t.textOrAction()
		if n.Type() == NodeEnd || n.Type() == NodeElse {
			t.errorf("unexpected %s", n)
		}
		t.Root.append(n)
	}
}

// parseDefinition parses a {{define "name"}} ... {{end}} template definition
// and installs the definition in treeSet. The "define" keyword is past.
func (t *Tree) parseDefinition(treeSet map[string]*Tree) {
	const context = "define clause"
	name := t.expectOneOf(itemString, itemRawString, context)
	var err error
	t.Name, err = unquoteLiteral(name)
	if err != nil {
		t.error(err)
	}
	t.expect(itemRightDelim, context)
	var end Node
	t.Root, end = t.itemList()
	if end.Type() != NodeEnd {
		t.errorf("unexpected %s in %s", end, context)
	}
	t.add(treeSet)
	t.stopParse()
}

// itemList:
//	textOrAction*
// Terminates at {{end}} or {{else}}, whichever is hit first; the
// terminating control node is returned alongside the list so the caller
// can tell which one ended it.
func (t *Tree) itemList() (list *ListNode, next Node) {
	list = t.newList(t.peekNonSpace().pos)
	for t.peekNonSpace().typ != itemEOF {
		n := t.textOrAction()
		switch n.Type() {
		case NodeEnd, NodeElse:
			return list, n
		}
		list.append(n)
	}
	t.errorf("unexpected EOF")
	return
}

// textOrAction parses either a run of plain text or a delimited action.
func (t *Tree) textOrAction() Node {
	switch token := t.nextNonSpace(); token.typ {
	case itemText:
		return t.newText(token.pos, token.value)
	case itemLeftDelim:
		return t.action()
	default:
		t.unexpected(token, "input")
	}
	return nil
}

// action:
//	control
//	pipeline
// Left delim is past. Now get the action itself.
func (t *Tree) action() (n Node) {
	switch token := t.nextNonSpace(); token.typ {
	case itemElse:
		return t.elseControl()
	case itemEnd:
		return t.endControl()
	case itemIf:
		return t.ifControl()
	case itemFor:
		return t.forControl()
	case itemWith:
		return t.withControl()
	case itemTemplate:
		return t.templateControl()
	case itemBreak:
		return t.breakControl(token)
	case itemContinue:
		return t.continueControl(token)
	}
	t.backup()
	token := t.peek()
	return t.newAction(token.pos, t.pipeline("command"))
}

// Break:
//	{{break}}
// Valid only inside a for body (spec.md §3 invariants).
func (t *Tree) breakControl(token item) Node {
	if t.nextNonSpace().typ != itemRightDelim {
		t.errorf("unexpected %s in break", token)
	}
	if t.rangeDepth == 0 {
		t.errorf("{{break}} outside {{for}}")
	}
	return t.newBreak(token.pos)
}

// Continue:
//	{{continue}}
// Valid only inside a for body.
func (t *Tree) continueControl(token item) Node {
	if t.nextNonSpace().typ != itemRightDelim {
		t.errorf("unexpected %s in continue", token)
	}
	if t.rangeDepth == 0 {
		t.errorf("{{continue}} outside {{for}}")
	}
	return t.newContinue(token.pos)
}

// newDeclaredVariable builds the VariableNode for a declaration/assignment
// target and rejects a field-suffixed name ("$x.Y := ..."): a declaration
// or assignment always targets a bare variable slot, never a path through
// one.
func (t *Tree) newDeclaredVariable(tok item) *VariableNode {
	v := t.newVariable(tok.pos, tok.value)
	if len(v.Ident) > 1 {
		t.errorf("variable %s must be a simple name in this context", tok.value)
	}
	return v
}

// Pipeline:
//	declarations? command ('|' command)*
// Disambiguating "$x foo" (a use) from "$x := foo" (a declaration) needs
// only one token of extra lookahead past the variable itself, handled
// here the same way the command loop backs up: read ahead, and if it
// doesn't fit, push both tokens back with backup2.
func (t *Tree) pipeline(context string) (pipe *PipeNode) {
	token := t.peekNonSpace()
	pipe = t.newPipeline(token.pos, nil, false)
decls:
	if v := t.peekNonSpace(); v.typ == itemVariable {
		t.next()
		switch next := t.peekNonSpace(); next.typ {
		case itemComma:
			t.nextNonSpace()
			variable := t.newDeclaredVariable(v)
			pipe.Decl = append(pipe.Decl, variable)
			t.vars = append(t.vars, variable.Ident[0])
			if context == "for" && len(pipe.Decl) < 2 {
				goto decls
			}
			t.errorf("too many declarations in %s", context)
		case itemDeclare:
			t.nextNonSpace()
			variable := t.newDeclaredVariable(v)
			pipe.Decl = append(pipe.Decl, variable)
			t.vars = append(t.vars, variable.Ident[0])
			pipe.IsDecl = true
		case itemAssign:
			t.nextNonSpace()
			variable := t.newDeclaredVariable(v)
			pipe.Decl = append(pipe.Decl, variable)
			if variable.Ident[0] != "$" {
				t.vars = append(t.vars, variable.Ident[0])
			}
		default:
			t.backup2(v)
		}
	}
	for {
		switch tok := t.nextNonSpace(); tok.typ {
		case itemRightDelim:
			t.checkPipeline(pipe, context)
			return
		case itemRightParen:
			t.backup()
			t.checkPipeline(pipe, context)
			return
		case itemEOF:
			t.unexpected(tok, context)
		case itemPipe:
			continue
		default:
			t.backup()
			pipe.append(t.command())
		}
	}
}

// checkPipeline checks for a well-formed pipeline: each non-first command
// must not begin with a literal that cannot execute (§4.2 semantic rules).
func (t *Tree) checkPipeline(pipe *PipeNode, context string) {
	if len(pipe.Cmds) == 0 {
		t.errorf("missing value for %s", context)
	}
	for i, c := range pipe.Cmds[1:] {
		switch c.Args[0].Type() {
		case NodeBool, NodeDot, NodeNull, NodeNumber, NodeString:
			t.errorf("non executable command in pipeline stage %d", i+2)
		}
	}
}

// If:
//	{{if pipeline}} itemList {{end}}
//	{{if pipeline}} itemList {{else}} itemList {{end}}
//	{{if pipeline}} itemList {{else if pipeline}} itemList {{end}}
func (t *Tree) ifControl() Node {
	return t.parseControl(true, NodeIf)
}

// For:
//	{{for pipeline}} itemList {{end}}
//	{{for pipeline}} itemList {{else}} itemList {{end}}
func (t *Tree) forControl() Node {
	t.rangeDepth++
	n := t.parseControl(false, NodeFor)
	t.rangeDepth--
	return n
}

// With:
//	{{with pipeline}} itemList {{end}}
//	{{with pipeline}} itemList {{else}} itemList {{end}}
func (t *Tree) withControl() Node {
	return t.parseControl(false, NodeWith)
}

// popVars truncates the variable-scope stack back to n entries, the
// parse-time mirror of the executor's state.popTo: a variable declared by
// a control's own pipeline or its body is invisible once its {{end}} has
// been parsed (spec.md's variable-scoping rule).
func (t *Tree) popVars(n int) {
	t.vars = t.vars[:n]
}

// parseControl parses the shared structure of if/for/with: a pipeline,
// a body, and an optional else clause (which, for if only, may itself be
// another if, implementing "else if").
func (t *Tree) parseControl(allowElseIf bool, context NodeType) Node {
	defer t.popVars(len(t.vars))
	var contextName string
	switch context {
	case NodeIf:
		contextName = "if"
	case NodeFor:
		contextName = "for"
	case NodeWith:
		contextName = "with"
	}
	pipe := t.pipeline(contextName)
	var body, elseBody *ListNode
	var next Node
	body, next = t.itemList()
	switch next.Type() {
	case NodeEnd:
		// done
	case NodeElse:
		if allowElseIf && t.peekNonSpace().typ == itemIf {
			t.next() // Consume the "if" token.
			elseBody = t.newList(next.Position())
			elseBody.append(t.ifControl())
			// The if control returns, already consuming its own {{end}}.
			break
		}
		elseBody, next = t.itemList()
		if next.Type() != NodeEnd {
			t.errorf("expected end; found %s", next)
		}
	}
	switch context {
	case NodeIf:
		return t.newIf(pipe.Position(), pipe, body, elseBody)
	case NodeFor:
		return t.newFor(pipe.Position(), pipe, body, elseBody)
	case NodeWith:
		return t.newWith(pipe.Position(), pipe, body, elseBody)
	}
	panic("unreached")
}

// End:
//	{{end}}
func (t *Tree) endControl() Node {
	return t.newEnd(t.expect(itemRightDelim, "end").pos)
}

// Else:
//	{{else}}
//	{{else if pipeline}} (rewritten by the caller into {{else}}{{if ...}})
func (t *Tree) elseControl() Node {
	peek := t.peekNonSpace()
	if peek.typ == itemIf {
		return t.newElse(peek.pos)
	}
	return t.newElse(t.expect(itemRightDelim, "else").pos)
}

// Template:
//	{{template "name"}}
//	{{template "name" pipeline}}
func (t *Tree) templateControl() Node {
	var name string
	token := t.nextNonSpace()
	switch token.typ {
	case itemString, itemRawString:
		s, err := unquoteLiteral(token)
		if err != nil {
			t.error(err)
		}
		name = s
	default:
		t.unexpected(token, "template invocation")
	}
	var pipe *PipeNode
	if t.nextNonSpace().typ != itemRightDelim {
		t.backup()
		pipe = t.pipeline("template")
	}
	return t.newTemplate(token.pos, name, pipe)
}

func (t *Tree) error(err error) {
	t.errorf("%s", err)
}

// expect consumes the next non-space token and guarantees it has the required type.
func (t *Tree) expect(expected itemType, context string) item {
	token := t.nextNonSpace()
	if token.typ != expected {
		t.unexpected(token, context)
	}
	return token
}

// expectOneOf consumes the next non-space token and guarantees it has one of two types.
func (t *Tree) expectOneOf(expected1, expected2 itemType, context string) item {
	token := t.nextNonSpace()
	if token.typ != expected1 && token.typ != expected2 {
		t.unexpected(token, context)
	}
	return token
}

// command:
//	operand (space operand)*
// A space-separated chain of arguments. We consume the pipe character
// here but leave the right delimiter to terminate the pipeline.
func (t *Tree) command() *CommandNode {
	cmd := t.newCommand(t.peekNonSpace().pos)
	for {
		t.peekNonSpace() // skip leading spaces.
		operand := t.operand()
		if operand != nil {
			cmd.append(operand)
		}
		switch token := t.next(); token.typ {
		case itemSpace:
			continue
		case itemError:
			t.errorf("%s", token.value)
		case itemRightDelim, itemRightParen:
			t.backup()
		case itemPipe:
			// End of command.
		default:
			t.errorf("unexpected %s in operand; missing space?", token)
		}
		break
	}
	if len(cmd.Args) == 0 {
		t.errorf("empty command")
	}
	return cmd
}

// operand:
//	term .Field*
// An operand is a space-separated component of a command: a term
// possibly followed by field accesses. A nil return means the next item
// is not an operand.
func (t *Tree) operand() Node {
	node := t.term()
	if node == nil {
		return nil
	}
	if t.peek().typ == itemField {
		chain := t.newChain(t.peek().pos, node)
		for t.peek().typ == itemField {
			chain.Add(t.next().value)
		}
		// Compatibility with the common API: if the term is a Field or
		// Variable, fold the chain back into it instead of keeping a
		// separate Chain node.
		switch node.Type() {
		case NodeField:
			node = t.newField(chain.Position(), chain.String())
		case NodeVariable:
			node = t.newVariable(chain.Position(), chain.String())
		default:
			node = chain
		}
	}
	return node
}

// term:
//	literal (number, string, boolean, null)
//	function (identifier)
//	.
//	.Field
//	$
//	$Variable
//	'(' pipeline ')'
// A term is a simple "expression". A nil return means the next item is
// not a term.
func (t *Tree) term() Node {
	switch token := t.nextNonSpace(); token.typ {
	case itemError:
		t.errorf("%s", token.value)
	case itemIdentifier:
		if !t.hasFunction(token.value) {
			t.errorf("function %q not defined", token.value)
		}
		return t.newIdentifier(token.pos, token.value)
	case itemDot:
		return t.newDot(token.pos)
	case itemNull:
		return t.newNull(token.pos)
	case itemVariable:
		return t.useVar(token.pos, token.value)
	case itemField:
		return t.newField(token.pos, token.value)
	case itemBool:
		return t.newBool(token.pos, token.value == "true")
	case itemCharConstant, itemNumber:
		return t.newNumberToken(token)
	case itemLeftParen:
		pipe := t.pipeline("parenthesized pipeline")
		if tok := t.next(); tok.typ != itemRightParen {
			t.errorf("unclosed right paren: unexpected %s", tok)
		}
		return pipe
	case itemString, itemRawString:
		s, err := unquoteLiteral(token)
		if err != nil {
			t.error(err)
		}
		return t.newString(token.pos, token.value, s)
	}
	t.backup()
	return nil
}

// newNumberToken builds a NumberNode from either a NUMBER or a
// CHAR_CONSTANT token, converting a character constant to its integer
// code point first (§4.2: "'x' char constants are converted to their
// integer code point and also kept as an integer node").
func (t *Tree) newNumberToken(token item) Node {
	if token.typ == itemCharConstant {
		r, err := unquoteCharConstant(token.value[1 : len(token.value)-1])
		if err != nil {
			t.error(err)
		}
		n, err := t.newNumber(token.pos, strconv.Itoa(int(r)))
		if err != nil {
			t.error(err)
		}
		n.Text = token.value
		return n
	}
	n, err := t.newNumber(token.pos, token.value)
	if err != nil {
		t.error(err)
	}
	return n
}

// hasFunction reports if a function name exists in the Tree's funcs maps.
func (t *Tree) hasFunction(name string) bool {
	for _, funcMap := range t.funcs {
		if funcMap == nil {
			continue
		}
		if funcMap[name] != nil {
			return true
		}
	}
	return false
}

// useVar returns a node for a variable reference. It errors if the
// variable is not in scope.
func (t *Tree) useVar(pos Pos, name string) Node {
	v := t.newVariable(pos, name)
	for _, varName := range t.vars {
		if varName == v.Ident[0] {
			return v
		}
	}
	t.errorf("undefined variable %q", v.Ident[0])
	return nil
}

// unquoteLiteral unquotes a STRING or RAW_STRING token's raw text into
// its decoded form.
func unquoteLiteral(token item) (string, error) {
	switch token.typ {
	case itemRawString:
		s := token.value[1 : len(token.value)-1]
		return strings.ReplaceAll(s, "\r", ""), nil
	case itemString:
		return unquote(token.value[1 : len(token.value)-1])
	}
	return "", fmt.Errorf("internal error: unquoteLiteral called on %v", token.typ)
}
