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
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/carepay/gotemplate/parse"
)

// maxExecDepth bounds recursive {{template}} self-invocation (§5): exceeding
// it is reported rather than allowed to grow the Go call stack unbounded.
const maxExecDepth = 1500

// noFinal is the sentinel passed as a command's "final" argument when there
// is no preceding pipe stage, distinct from reflect.Value{} - which is a
// legitimate prior stage's null result and must still be threaded through
// as an argument (so `{{.missing | default "x"}}` sees it).
var noFinal = reflect.ValueOf(new(struct{}))

// ctrl is the loop-control signal a body walk can return: propagated
// upward by walkList until a For loop consumes it. Kept as an explicit
// return value rather than panic/recover, since the executor must be able
// to unwind cleanly through a caller's io.Writer that may already hold
// partial output (see SPEC_FULL.md §10.2).
type ctrl int

const (
	ctrlNone ctrl = iota
	ctrlBreak
	ctrlContinue
)

// variable is one entry of the executor's variable stack.
type variable struct {
	name  string
	value reflect.Value
}

// state carries the state of an execution: current template, current
// node (for error reporting), the variable stack, and the template-call
// depth counter.
type state struct {
	tmpl  *Template
	wr    io.Writer
	node  parse.Node
	vars  []variable
	depth int
}

// errorf formats an executor error in the form mandated by §4.5:
// "template: parse_name:line:column: executing TEMPLATE_NAME at <CONTEXT>: MESSAGE".
func (s *state) errorf(format string, args ...interface{}) error {
	name := "<no template>"
	loc := "?"
	ctx := "?"
	if s.tmpl != nil && s.tmpl.Tree != nil {
		name = s.tmpl.Name()
		if s.node != nil {
			loc, ctx = s.tmpl.Tree.ErrorContext(s.node)
		}
	}
	msg := fmt.Sprintf(format, args...)
	logger.Errorf("execution error at %s: %s", loc, msg)
	return fmt.Errorf("template: %s: executing %s at <%s>: %s", loc, name, ctx, msg)
}

// mark returns the current high-water mark of the variable stack, to be
// passed to popTo when the enclosing block (if/for/with body) closes —
// this is what makes a declaration invisible past its block's {{end}}.
func (s *state) mark() int { return len(s.vars) }

func (s *state) popTo(mark int) { s.vars = s.vars[:mark] }

func (s *state) push(name string, value reflect.Value) {
	s.vars = append(s.vars, variable{name, value})
}

// setVar overwrites the nearest matching name (innermost first), per the
// "assignment rewrites the nearest matching name" rule in §3.
func (s *state) setVar(name string, value reflect.Value) {
	for i := len(s.vars) - 1; i >= 0; i-- {
		if s.vars[i].name == name {
			s.vars[i].value = value
			return
		}
	}
	s.push(name, value)
}

func (s *state) varValue(name string) (reflect.Value, bool) {
	for i := len(s.vars) - 1; i >= 0; i-- {
		if s.vars[i].name == name {
			return s.vars[i].value, true
		}
	}
	return reflect.Value{}, false
}

// Execute applies the template's root tree to data, writing output to wr.
func (t *Template) Execute(wr io.Writer, data interface{}) error {
	return t.execute(wr, data)
}

func (t *Template) execute(wr io.Writer, data interface{}) (err error) {
	if t.Tree == nil || t.Tree.Root == nil {
		return fmt.Errorf("template: %q is an incomplete or empty template", t.Name())
	}
	s := &state{tmpl: t, wr: wr}
	dot := reflect.ValueOf(data)
	s.push("$", dot)
	_, err = s.walkList(dot, t.Tree.Root)
	return err
}

// ExecuteTemplate renders the sibling template named name against data.
func (t *Template) ExecuteTemplate(wr io.Writer, name string, data interface{}) error {
	tmpl := t.Lookup(name)
	if tmpl == nil {
		return fmt.Errorf("template: no template %q associated with template %q", name, t.Name())
	}
	return tmpl.execute(wr, data)
}

func (s *state) walkList(dot reflect.Value, list *parse.ListNode) (ctrl, error) {
	if list == nil {
		return ctrlNone, nil
	}
	for _, node := range list.Nodes {
		c, err := s.walk(dot, node)
		if err != nil {
			return ctrlNone, err
		}
		if c != ctrlNone {
			return c, nil
		}
	}
	return ctrlNone, nil
}

func (s *state) walk(dot reflect.Value, node parse.Node) (ctrl, error) {
	s.node = node
	switch n := node.(type) {
	case *parse.TextNode:
		_, err := s.wr.Write(n.Text)
		return ctrlNone, err
	case *parse.ActionNode:
		val, err := s.evalPipeline(dot, n.Pipe)
		if err != nil {
			return ctrlNone, err
		}
		if len(n.Pipe.Decl) == 0 {
			if err := s.printValue(val); err != nil {
				return ctrlNone, err
			}
		}
		return ctrlNone, nil
	case *parse.IfNode:
		return s.walkIfOrWith(dot, &n.BranchNode, false)
	case *parse.WithNode:
		return s.walkIfOrWith(dot, &n.BranchNode, true)
	case *parse.ForNode:
		return s.walkFor(dot, n)
	case *parse.BreakNode:
		return ctrlBreak, nil
	case *parse.ContinueNode:
		return ctrlContinue, nil
	case *parse.TemplateNode:
		return ctrlNone, s.walkTemplate(dot, n)
	case *parse.ListNode:
		return s.walkList(dot, n)
	default:
		return ctrlNone, s.errorf("unknown node: %s", node)
	}
}

func (s *state) printValue(val reflect.Value) error {
	val, _ = indirectValue(val)
	if !val.IsValid() {
		return nil
	}
	_, err := fmt.Fprint(s.wr, val.Interface())
	return err
}

func (s *state) walkIfOrWith(dot reflect.Value, b *parse.BranchNode, with bool) (ctrl, error) {
	mark := s.mark()
	defer s.popTo(mark)
	val, err := s.evalPipeline(dot, b.Pipe)
	if err != nil {
		return ctrlNone, err
	}
	truthy, ok := truth(val)
	if !ok {
		return ctrlNone, s.errorf("if/with can't use %v", val)
	}
	if truthy {
		newDot := dot
		if with {
			newDot = val
		}
		return s.walkList(newDot, b.List)
	}
	if b.ElseList != nil {
		return s.walkList(dot, b.ElseList)
	}
	return ctrlNone, nil
}

func (s *state) walkFor(dot reflect.Value, r *parse.ForNode) (ctrl, error) {
	baseMark := s.mark()
	defer s.popTo(baseMark)
	val, err := s.evalPipeline(dot, r.Pipe)
	if err != nil {
		return ctrlNone, err
	}
	val, _ = indirectValue(val)

	// A single declared variable is overwritten with the element, per the
	// one-variable form. With two declared variables, the first carries
	// the index (array/slice) or key (map) and the second the element,
	// matching how the parser's pipeline() already allows two
	// comma-separated declarations in a for header.
	var oneVar, keyVar string
	switch len(r.Pipe.Decl) {
	case 1:
		oneVar = r.Pipe.Decl[0].Ident[0]
	case 2:
		keyVar = r.Pipe.Decl[0].Ident[0]
		oneVar = r.Pipe.Decl[1].Ident[0]
	}

	runBody := func(key, elem reflect.Value) (ctrl, error) {
		mark := s.mark()
		if keyVar != "" {
			s.push(keyVar, key)
		}
		if oneVar != "" {
			s.push(oneVar, elem)
		}
		c, err := s.walkList(elem, r.List)
		s.popTo(mark)
		return c, err
	}

	empty := true
	if val.IsValid() {
		switch val.Kind() {
		case reflect.Array, reflect.Slice:
			for i := 0; i < val.Len(); i++ {
				empty = false
				c, err := runBody(reflect.ValueOf(i), val.Index(i))
				if err != nil {
					return ctrlNone, err
				}
				if c == ctrlBreak {
					break
				}
			}
		case reflect.Map:
			for _, key := range val.MapKeys() {
				empty = false
				c, err := runBody(key, val.MapIndex(key))
				if err != nil {
					return ctrlNone, err
				}
				if c == ctrlBreak {
					break
				}
			}
		default:
			return ctrlNone, s.errorf("for can't iterate over %v", val)
		}
	}
	if empty && r.ElseList != nil {
		return s.walkList(dot, r.ElseList)
	}
	return ctrlNone, nil
}

func (s *state) walkTemplate(dot reflect.Value, n *parse.TemplateNode) error {
	s.depth++
	defer func() { s.depth-- }()
	if s.depth > maxExecDepth {
		return s.errorf("exceeded maximum template depth")
	}
	tmpl := s.tmpl.Lookup(n.Name)
	if tmpl == nil {
		return s.errorf("template %q not defined", n.Name)
	}
	data := dot
	if n.Pipe != nil {
		var err error
		data, err = s.evalPipeline(dot, n.Pipe)
		if err != nil {
			return err
		}
	}
	ns := &state{tmpl: tmpl, wr: s.wr, depth: s.depth}
	ns.push("$", data)
	_, err := ns.walkList(data, tmpl.Tree.Root)
	return err
}

// evalPipeline folds commands left-to-right per §4.5: each command's
// result becomes the final argument appended to the next command.
func (s *state) evalPipeline(dot reflect.Value, pipe *parse.PipeNode) (value reflect.Value, err error) {
	if pipe == nil {
		return reflect.Value{}, nil
	}
	value = noFinal
	for _, cmd := range pipe.Cmds {
		value, err = s.evalCommand(dot, cmd, value)
		if err != nil {
			return reflect.Value{}, err
		}
	}
	if value == noFinal {
		value = reflect.Value{}
	}
	for _, variableNode := range pipe.Decl {
		if pipe.IsDecl {
			s.push(variableNode.Ident[0], value)
		} else {
			s.setVar(variableNode.Ident[0], value)
		}
	}
	return value, nil
}

// evalCommand dispatches on the first argument's node kind (§4.5).
func (s *state) evalCommand(dot reflect.Value, cmd *parse.CommandNode, final reflect.Value) (reflect.Value, error) {
	firstWord := cmd.Args[0]
	switch n := firstWord.(type) {
	case *parse.IdentifierNode:
		return s.evalFunction(dot, n, cmd, final)
	case *parse.FieldNode:
		return s.evalFieldChain(dot, dot, n.Ident, cmd, final)
	case *parse.ChainNode:
		recv, err := s.evalArg(dot, n.Node)
		if err != nil {
			return reflect.Value{}, err
		}
		return s.evalFieldChain(dot, recv, n.Field, cmd, final)
	case *parse.VariableNode:
		recv, ok := s.varValue(n.Ident[0])
		if !ok {
			return reflect.Value{}, s.errorf("undefined variable %q", n.Ident[0])
		}
		return s.evalFieldChain(dot, recv, n.Ident[1:], cmd, final)
	case *parse.PipeNode:
		if len(cmd.Args) > 1 {
			return reflect.Value{}, s.errorf("can't give argument to non-function")
		}
		return s.evalPipeline(dot, n)
	case *parse.DotNode:
		if len(cmd.Args) > 1 {
			return reflect.Value{}, s.errorf("can't give argument to non-function")
		}
		return dot, nil
	case *parse.NullNode:
		if len(cmd.Args) > 1 {
			return reflect.Value{}, s.errorf("can't give argument to non-function")
		}
		return reflect.Value{}, nil
	case *parse.BoolNode:
		if len(cmd.Args) > 1 {
			return reflect.Value{}, s.errorf("can't give argument to non-function")
		}
		return reflect.ValueOf(n.True), nil
	case *parse.StringNode:
		if len(cmd.Args) > 1 {
			return reflect.Value{}, s.errorf("can't give argument to non-function")
		}
		return reflect.ValueOf(n.Text), nil
	case *parse.NumberNode:
		if len(cmd.Args) > 1 {
			return reflect.Value{}, s.errorf("can't give argument to non-function")
		}
		return s.idealConstant(n), nil
	}
	return reflect.Value{}, s.errorf("can't evaluate command %q", cmd)
}

// idealConstant picks the Number's view per §4.5: textual '.'/'e'/'E' (and
// not hex) means floating, otherwise the integer view when available.
func (s *state) idealConstant(n *parse.NumberNode) reflect.Value {
	if n.IsInt && !strings.ContainsAny(n.Text, ".eE") {
		return reflect.ValueOf(n.Int64)
	}
	if n.IsFloat {
		return reflect.ValueOf(n.Float64)
	}
	return reflect.ValueOf(n.Int64)
}

// evalFunction resolves and calls the named function, with the special
// cases "and"/"or" short-circuiting across the unevaluated operand nodes
// (see funcs.go's andFunc/orFunc doc comment for why this can't live as a
// plain Go function).
func (s *state) evalFunction(dot reflect.Value, n *parse.IdentifierNode, cmd *parse.CommandNode, final reflect.Value) (reflect.Value, error) {
	if n.Ident == "and" || n.Ident == "or" {
		return s.evalShortCircuit(dot, n.Ident, cmd, final)
	}
	fns, ok := s.tmpl.common.lookupFunc(n.Ident)
	if !ok {
		return reflect.Value{}, s.errorf("function %q not defined", n.Ident)
	}
	args, err := s.evalArgs(dot, cmd.Args[1:], final)
	if err != nil {
		return reflect.Value{}, err
	}
	return s.callOverloads(n.Ident, fns, args)
}

func (s *state) evalShortCircuit(dot reflect.Value, name string, cmd *parse.CommandNode, final reflect.Value) (reflect.Value, error) {
	wantTruthy := name == "and"
	operands := cmd.Args[1:]
	var result reflect.Value
	haveFinal := final != noFinal
	total := len(operands)
	if haveFinal {
		total++
	}
	if total == 0 {
		return reflect.Value{}, s.errorf("%s requires at least 1 argument", name)
	}
	evalAt := func(i int) (reflect.Value, error) {
		if i < len(operands) {
			return s.evalArg(dot, operands[i])
		}
		return final, nil
	}
	for i := 0; i < total; i++ {
		v, err := evalAt(i)
		if err != nil {
			return reflect.Value{}, err
		}
		result = v
		truthy, ok := truth(v)
		if !ok {
			return reflect.Value{}, s.errorf("%s: can't use %v as boolean value", name, v)
		}
		if truthy != wantTruthy {
			break
		}
	}
	return result, nil
}

func (s *state) evalArgs(dot reflect.Value, nodes []parse.Node, final reflect.Value) ([]reflect.Value, error) {
	args := make([]reflect.Value, 0, len(nodes)+1)
	for _, node := range nodes {
		v, err := s.evalArg(dot, node)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	if final != noFinal {
		args = append(args, final)
	}
	return args, nil
}

// evalArg evaluates a single operand node to a value, without pipeline
// folding (used for command arguments after the first).
func (s *state) evalArg(dot reflect.Value, node parse.Node) (reflect.Value, error) {
	cmd := &parse.CommandNode{}
	_ = cmd
	switch n := node.(type) {
	case *parse.DotNode:
		return dot, nil
	case *parse.NullNode:
		return reflect.Value{}, nil
	case *parse.BoolNode:
		return reflect.ValueOf(n.True), nil
	case *parse.StringNode:
		return reflect.ValueOf(n.Text), nil
	case *parse.NumberNode:
		return s.idealConstant(n), nil
	case *parse.FieldNode:
		return s.evalFieldChainValue(dot, dot, n.Ident)
	case *parse.VariableNode:
		recv, ok := s.varValue(n.Ident[0])
		if !ok {
			return reflect.Value{}, s.errorf("undefined variable %q", n.Ident[0])
		}
		return s.evalFieldChainValue(dot, recv, n.Ident[1:])
	case *parse.ChainNode:
		recv, err := s.evalArg(dot, n.Node)
		if err != nil {
			return reflect.Value{}, err
		}
		return s.evalFieldChainValue(dot, recv, n.Field)
	case *parse.IdentifierNode:
		fns, ok := s.tmpl.common.lookupFunc(n.Ident)
		if !ok {
			return reflect.Value{}, s.errorf("function %q not defined", n.Ident)
		}
		return s.callOverloads(n.Ident, fns, nil)
	case *parse.PipeNode:
		return s.evalPipeline(dot, n)
	}
	return reflect.Value{}, s.errorf("can't evaluate %s as argument", node)
}

// evalFieldChain resolves a receiver chain, then — if the command supplied
// extra operand arguments — calls the resolved member as a function.
func (s *state) evalFieldChain(dot, recv reflect.Value, idents []string, cmd *parse.CommandNode, final reflect.Value) (reflect.Value, error) {
	args, err := s.evalArgs(dot, cmd.Args[1:], final)
	if err != nil {
		return reflect.Value{}, err
	}
	return s.resolveChain(recv, idents, args)
}

func (s *state) evalFieldChainValue(dot, recv reflect.Value, idents []string) (reflect.Value, error) {
	return s.resolveChain(recv, idents, nil)
}

// resolveChain walks idents off of recv per the field-chain resolution
// order in §4.5. The final component may be invoked with args if the
// caller supplied any (method call) or it may be a plain field/property.
func (s *state) resolveChain(recv reflect.Value, idents []string, args []reflect.Value) (reflect.Value, error) {
	if len(idents) == 0 {
		if len(args) > 0 {
			return reflect.Value{}, s.errorf("can't give argument to non-function")
		}
		return recv, nil
	}
	for i, name := range idents {
		isLast := i == len(idents)-1
		var callArgs []reflect.Value
		if isLast {
			callArgs = args
		}
		var err error
		recv, err = s.resolveOneField(recv, name, callArgs)
		if err != nil {
			return reflect.Value{}, err
		}
	}
	return recv, nil
}

// resolveOneField implements the six-step lookup order of §4.5.
func (s *state) resolveOneField(recv reflect.Value, name string, args []reflect.Value) (reflect.Value, error) {
	receiver, isNil := indirectValue(recv)
	if isNil {
		return reflect.Value{}, s.errorf("null pointer evaluating null.%s", name)
	}
	if !receiver.IsValid() {
		return reflect.Value{}, s.errorf("null pointer evaluating null.%s", name)
	}

	if (receiver.Kind() == reflect.Array || receiver.Kind() == reflect.Slice) && name == "length" {
		return reflect.ValueOf(receiver.Len()), nil
	}

	if receiver.Kind() == reflect.Map {
		key := reflect.ValueOf(name)
		if key.Type().AssignableTo(receiver.Type().Key()) {
			// A present mapping yields null for a missing key, not an error -
			// the same "be nice" treatment truth() and indexFunc already give
			// an absent value, so {{.missing | default "x"}} degrades cleanly.
			return receiver.MapIndex(key), nil
		}
	}

	if receiver.Kind() == reflect.Struct {
		if method, ok := receiver.Type().MethodByName(name); ok && method.PkgPath == "" {
			return s.callMethod(receiver, name, args)
		}
		if receiver.CanAddr() {
			if method, ok := receiver.Addr().Type().MethodByName(name); ok && method.PkgPath == "" {
				return s.callMethod(receiver.Addr(), name, args)
			}
		}
		if field, ok := receiver.Type().FieldByName(name); ok && field.PkgPath == "" {
			if len(args) > 0 {
				return reflect.Value{}, s.errorf("%s is a field, not a function", name)
			}
			return receiver.FieldByName(name), nil
		}
	} else if receiver.IsValid() {
		if method, ok := receiver.Type().MethodByName(name); ok && method.PkgPath == "" {
			return s.callMethod(receiver, name, args)
		}
	}

	return reflect.Value{}, s.errorf("%s is not a field/method of %s", name, receiver.Type())
}

func (s *state) callMethod(receiver reflect.Value, name string, args []reflect.Value) (reflect.Value, error) {
	method := receiver.MethodByName(name)
	return s.callOverloads(name, []reflect.Value{method}, args)
}

// callOverloads tries each overload in registration order (§4.5), keeping
// the first successful invocation and accumulating failures otherwise.
func (s *state) callOverloads(name string, fns []reflect.Value, args []reflect.Value) (reflect.Value, error) {
	var failures []string
	for i, fn := range fns {
		result, err := s.callOne(fn, args)
		if err == nil {
			return result, nil
		}
		failures = append(failures, fmt.Sprintf("overload %d: %s", i, err))
		logger.Debugf("function %q overload %d failed: %s", name, i, err)
	}
	if len(fns) == 1 {
		return reflect.Value{}, s.errorf("error calling %s: %s", name, failures[0])
	}
	return reflect.Value{}, s.errorf("error calling %s: no overload matched: %s", name, strings.Join(failures, "; "))
}

// callOne invokes a single function value, coercing arguments with basic
// assignability/conversion and honoring a trailing variadic parameter.
func (s *state) callOne(fn reflect.Value, args []reflect.Value) (reflect.Value, error) {
	if fn.Kind() != reflect.Func {
		return reflect.Value{}, fmt.Errorf("not a function")
	}
	typ := fn.Type()
	numIn := typ.NumIn()
	if typ.IsVariadic() {
		if len(args) < numIn-1 {
			return reflect.Value{}, fmt.Errorf("too few arguments")
		}
	} else if len(args) != numIn {
		return reflect.Value{}, fmt.Errorf("wrong number of arguments: got %d want %d", len(args), numIn)
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var want reflect.Type
		if typ.IsVariadic() && i >= numIn-1 {
			want = typ.In(numIn - 1).Elem()
		} else {
			want = typ.In(i)
		}
		coerced, err := coerce(a, want)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("argument %d: %w", i, err)
		}
		in[i] = coerced
	}

	out := fn.Call(in)
	switch len(out) {
	case 0:
		return reflect.Value{}, fmt.Errorf("function has no return value")
	case 1:
		return out[0], nil
	case 2:
		if !out[1].IsNil() {
			return reflect.Value{}, out[1].Interface().(error)
		}
		return out[0], nil
	default:
		return reflect.Value{}, fmt.Errorf("function returns too many values")
	}
}

// coerce adapts an argument value to the parameter type want, handling the
// untyped-null case ("assign null to primitive type", per §4.5) and
// int/float widening between the constant views produced by idealConstant.
func coerce(v reflect.Value, want reflect.Type) (reflect.Value, error) {
	if !v.IsValid() {
		if want.Kind() == reflect.Interface || want.Kind() == reflect.Ptr || want.Kind() == reflect.Map || want.Kind() == reflect.Slice {
			return reflect.Zero(want), nil
		}
		return reflect.Value{}, fmt.Errorf("assign null to primitive type %s", want)
	}
	if want.Kind() == reflect.Interface {
		if v.Type().Implements(want) || want.NumMethod() == 0 {
			return v, nil
		}
	}
	if v.Type().AssignableTo(want) {
		return v, nil
	}
	// Numeric widening only: int/uint/float convert between each other, but
	// not to/from string, since Go's numeric->string conversion means
	// "interpret as a Unicode code point", not "format this number" - a
	// surprise no caller passing a number to a string parameter wants.
	if isNumericKind(v.Kind()) && isNumericKind(want.Kind()) && v.Type().ConvertibleTo(want) {
		return v.Convert(want), nil
	}
	if v.Kind() == reflect.String && want.Kind() == reflect.String && v.Type().ConvertibleTo(want) {
		return v.Convert(want), nil
	}
	return reflect.Value{}, fmt.Errorf("can't assign %s to %s", v.Type(), want)
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// indirectValue dereferences pointers and interfaces, reporting whether it
// bottomed out at a nil.
func indirectValue(v reflect.Value) (rv reflect.Value, isNil bool) {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return v, true
		}
		v = v.Elem()
	}
	return v, false
}

// truth implements the truthiness rule of §4.5: null is false; booleans
// keep their value; textual/mapping/collection values are true iff
// non-empty; numeric values are true iff strictly positive; other objects
// are true.
func truth(v reflect.Value) (truthy bool, ok bool) {
	v, isNil := indirectValue(v)
	if isNil || !v.IsValid() {
		return false, true
	}
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), true
	case reflect.String, reflect.Array, reflect.Slice, reflect.Map, reflect.Chan:
		return v.Len() > 0, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() > 0, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() > 0, true
	case reflect.Float32, reflect.Float64:
		return v.Float() > 0, true
	case reflect.Struct:
		return true, true
	default:
		return true, true
	}
}
