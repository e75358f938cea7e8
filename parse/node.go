// Copyright 2014 Joel Scoble (github:mohae). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// This code is based on code originally written by The Go Authors.
// Their copyright notice immediately follows this one.

// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Parse nodes.

package parse

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

var textFormat = "%s" // Changed to "%q" in tests for better error messages.

// A Node is an element in the parse tree. The interface is trivial.
// The interface contains an unexported method so that only
// types local to this package can satisfy it.
type Node interface {
	Type() NodeType
	String() string
	// Copy does a deep copy of the Node and all its components.
	// To avoid type assertions, some XxxNodes also have specialized
	// CopyXxx methods that return *XxxNode.
	Copy() Node
	Position() Pos // byte position of start of node in full original input string
	// tree returns the Tree that contains the Node, for error reporting.
	tree() *Tree
	// Make sure only functions in this package can create Nodes.
	unexported()
}

// NodeType identifies the type of a parse tree node.
type NodeType int

// Pos represents a byte position in the original input text from which
// this template was parsed.
type Pos int

func (p Pos) Position() Pos {
	return p
}

// Type returns itself and provides an easy default implementation
// for embedding in a Node. Embedded in all non-trivial Nodes.
func (t NodeType) Type() NodeType {
	return t
}

const (
	NodeText       NodeType = iota // Plain text.
	NodeList                       // A list of nodes, the root of every parsed template.
	NodeAction                     // A non-control action such as a field or function evaluation.
	NodePipe                       // A pipeline of commands.
	NodeCommand                    // An element of a pipeline.
	NodeIdentifier                 // An identifier; always a function name.
	NodeDot                        // The cursor, dot.
	NodeNull                       // A null literal.
	NodeBool                       // A boolean constant.
	NodeNumber                     // A numerical constant.
	NodeString                     // A string constant.
	NodeField                      // A field or method name.
	NodeVariable                   // A $-prefixed variable.
	NodeChain                      // A term followed by a chain of field accesses.
	NodeIf                         // An if action.
	NodeFor                        // A for action.
	NodeWith                       // A with action.
	NodeBreak                      // A break action inside a for body.
	NodeContinue                   // A continue action inside a for body.
	NodeTemplate                   // A template invocation action.
	NodeEnd                        // An end action. Does not appear in a finished tree.
	NodeElse                       // An else action. Does not appear in a finished tree.
)

// NodeStrings gives a string description for each NodeType. Nothing in
// this module looks it up; it is exported for callers.
var NodeStrings = map[NodeType]string{
	NodeText:       "NodeText",
	NodeList:       "NodeList",
	NodeAction:     "NodeAction",
	NodePipe:       "NodePipe",
	NodeCommand:    "NodeCommand",
	NodeIdentifier: "NodeIdentifier",
	NodeDot:        "NodeDot",
	NodeNull:       "NodeNull",
	NodeBool:       "NodeBool",
	NodeNumber:     "NodeNumber",
	NodeString:     "NodeString",
	NodeField:      "NodeField",
	NodeVariable:   "NodeVariable",
	NodeChain:      "NodeChain",
	NodeIf:         "NodeIf",
	NodeFor:        "NodeFor",
	NodeWith:       "NodeWith",
	NodeBreak:      "NodeBreak",
	NodeContinue:   "NodeContinue",
	NodeTemplate:   "NodeTemplate",
	NodeEnd:        "NodeEnd",
	NodeElse:       "NodeElse",
}

// Nodes.

// nodeBase is embedded in every Node implementation; it carries the
// position and the owning tree (a non-owning back reference used only
// for error positioning, never walked during execution).
type nodeBase struct {
	NodeType
	Pos
	tr *Tree
}

func (n *nodeBase) tree() *Tree { return n.tr }
func (nodeBase) unexported()    {}

// TextNode holds plain text.
type TextNode struct {
	nodeBase
	Text []byte // The text; may span newlines.
}

func (t *Tree) newText(pos Pos, text string) *TextNode {
	return &TextNode{nodeBase: nodeBase{NodeType: NodeText, Pos: pos, tr: t}, Text: []byte(text)}
}

func (t *TextNode) String() string {
	return fmt.Sprintf(textFormat, t.Text)
}

func (t *TextNode) Copy() Node {
	return &TextNode{nodeBase: t.nodeBase, Text: append([]byte{}, t.Text...)}
}

// ListNode holds a sequence of nodes.
type ListNode struct {
	nodeBase
	Nodes []Node // The element nodes in lexical order.
}

func (t *Tree) newList(pos Pos) *ListNode {
	return &ListNode{nodeBase: nodeBase{NodeType: NodeList, Pos: pos, tr: t}}
}

func (l *ListNode) append(n Node) {
	l.Nodes = append(l.Nodes, n)
}

func (l *ListNode) String() string {
	b := new(bytes.Buffer)
	for _, n := range l.Nodes {
		fmt.Fprint(b, n)
	}
	return b.String()
}

func (l *ListNode) CopyList() *ListNode {
	if l == nil {
		return l
	}
	n := l.tr.newList(l.Pos)
	for _, elem := range l.Nodes {
		n.append(elem.Copy())
	}
	return n
}

func (l *ListNode) Copy() Node {
	return l.CopyList()
}

// ActionNode holds an action (something bounded by delimiters).
// Control actions have their own nodes; ActionNode represents simple
// ones such as field evaluations and parenthesized pipelines.
type ActionNode struct {
	nodeBase
	Pipe *PipeNode // The pipeline in the action.
}

func (t *Tree) newAction(pos Pos, pipe *PipeNode) *ActionNode {
	return &ActionNode{nodeBase: nodeBase{NodeType: NodeAction, Pos: pos, tr: t}, Pipe: pipe}
}

func (a *ActionNode) String() string {
	return fmt.Sprintf("{{%s}}", a.Pipe)
}

func (a *ActionNode) Copy() Node {
	return a.tr.newAction(a.Pos, a.Pipe.CopyPipe())
}

// PipeNode holds a pipeline with optional variable declaration/assignment.
type PipeNode struct {
	nodeBase
	Decl   []*VariableNode // Variables in lexical order.
	IsDecl bool            // The variables are being declared, not assigned.
	Cmds   []*CommandNode  // The commands in lexical order.
}

func (t *Tree) newPipeline(pos Pos, decl []*VariableNode, isDecl bool) *PipeNode {
	return &PipeNode{nodeBase: nodeBase{NodeType: NodePipe, Pos: pos, tr: t}, Decl: decl, IsDecl: isDecl}
}

func (p *PipeNode) append(command *CommandNode) {
	p.Cmds = append(p.Cmds, command)
}

func (p *PipeNode) String() string {
	s := ""
	if len(p.Decl) > 0 {
		for i, v := range p.Decl {
			if i > 0 {
				s += ", "
			}
			s += v.String()
		}
		if p.IsDecl {
			s += " := "
		} else {
			s += " = "
		}
	}
	for i, c := range p.Cmds {
		if i > 0 {
			s += " | "
		}
		s += c.String()
	}
	return s
}

func (p *PipeNode) CopyPipe() *PipeNode {
	if p == nil {
		return p
	}
	var decl []*VariableNode
	for _, d := range p.Decl {
		decl = append(decl, d.Copy().(*VariableNode))
	}
	n := p.tr.newPipeline(p.Pos, decl, p.IsDecl)
	for _, c := range p.Cmds {
		n.append(c.Copy().(*CommandNode))
	}
	return n
}

func (p *PipeNode) Copy() Node {
	return p.CopyPipe()
}

// IdentifierNode holds an identifier, always a function name.
type IdentifierNode struct {
	nodeBase
	Ident string
}

func (t *Tree) newIdentifier(pos Pos, ident string) *IdentifierNode {
	return &IdentifierNode{nodeBase: nodeBase{NodeType: NodeIdentifier, Pos: pos, tr: t}, Ident: ident}
}

func (i *IdentifierNode) String() string {
	return i.Ident
}

func (i *IdentifierNode) Copy() Node {
	return i.tr.newIdentifier(i.Pos, i.Ident)
}

// CommandNode holds a command (one stage of a pipeline).
type CommandNode struct {
	nodeBase
	Args []Node // Arguments in lexical order: first may be callable, rest are operands.
}

func (t *Tree) newCommand(pos Pos) *CommandNode {
	return &CommandNode{nodeBase: nodeBase{NodeType: NodeCommand, Pos: pos, tr: t}}
}

func (c *CommandNode) append(arg Node) {
	c.Args = append(c.Args, arg)
}

func (c *CommandNode) String() string {
	s := ""
	for i, arg := range c.Args {
		if i > 0 {
			s += " "
		}
		if arg, ok := arg.(*PipeNode); ok {
			s += "(" + arg.String() + ")"
			continue
		}
		s += arg.String()
	}
	return s
}

func (c *CommandNode) Copy() Node {
	if c == nil {
		return c
	}
	n := c.tr.newCommand(c.Pos)
	for _, a := range c.Args {
		n.append(a.Copy())
	}
	return n
}

// DotNode holds the special identifier '.'.
type DotNode struct {
	nodeBase
}

func (t *Tree) newDot(pos Pos) *DotNode {
	return &DotNode{nodeBase{NodeType: NodeDot, Pos: pos, tr: t}}
}

func (d *DotNode) String() string {
	return "."
}

func (d *DotNode) Copy() Node {
	return d.tr.newDot(d.Pos)
}

// NullNode holds the special identifier 'null'.
type NullNode struct {
	nodeBase
}

func (t *Tree) newNull(pos Pos) *NullNode {
	return &NullNode{nodeBase{NodeType: NodeNull, Pos: pos, tr: t}}
}

func (n *NullNode) String() string {
	return "null"
}

func (n *NullNode) Copy() Node {
	return n.tr.newNull(n.Pos)
}

// BoolNode holds a boolean constant.
type BoolNode struct {
	nodeBase
	True bool
}

func (t *Tree) newBool(pos Pos, v bool) *BoolNode {
	return &BoolNode{nodeBase{NodeType: NodeBool, Pos: pos, tr: t}, v}
}

func (b *BoolNode) String() string {
	if b.True {
		return "true"
	}
	return "false"
}

func (b *BoolNode) Copy() Node {
	return b.tr.newBool(b.Pos, b.True)
}

// NumberNode holds a number, either integer, floating, or both, recording
// both a presence flag and a decoded view for each.
type NumberNode struct {
	nodeBase
	IsInt   bool    // Number has an integer value.
	IsFloat bool    // Number has a floating-point value.
	Int64   int64   // The integer value, if IsInt.
	Float64 float64 // The floating-point value, if IsFloat.
	Text    string  // The original textual representation from the input.
}

// newNumber parses s into a NumberNode, following the textual cues: a
// literal containing '.' or an exponent ('e'/'E', not in a hex literal)
// gets a floating-point view; otherwise it is decoded as an integer,
// supporting decimal, octal ("0...") and hex ("0x...") literals.
// A fractional literal that also has an exact integer value populates
// both views.
func (t *Tree) newNumber(pos Pos, text string) (*NumberNode, error) {
	n := &NumberNode{nodeBase: nodeBase{NodeType: NodeNumber, Pos: pos, tr: t}, Text: text}
	isHex := len(text) > 1 && (strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") ||
		strings.HasPrefix(text, "-0x") || strings.HasPrefix(text, "-0X"))
	looksFloat := !isHex && strings.ContainsAny(text, ".eE")
	if !looksFloat {
		i, err := strconv.ParseInt(text, 0, 64)
		if err == nil {
			if i > 1<<31-1 || i < -(1<<31) {
				return nil, fmt.Errorf("integer overflow: %q", text)
			}
			n.IsInt = true
			n.Int64 = i
		}
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		n.IsFloat = true
		n.Float64 = f
		if !n.IsInt && f == float64(int64(f)) {
			i := int64(f)
			if i <= 1<<31-1 && i >= -(1<<31) {
				n.IsInt = true
				n.Int64 = i
			}
		}
	}
	if !n.IsInt && !n.IsFloat {
		return nil, fmt.Errorf("illegal number syntax: %q", text)
	}
	return n, nil
}

func (n *NumberNode) String() string {
	return n.Text
}

func (n *NumberNode) Copy() Node {
	nn := *n
	return &nn
}

// StringNode holds a string constant, both the quoted-raw form (as it
// appeared in the source) and the decoded (unquoted) text.
type StringNode struct {
	nodeBase
	Quoted string // The original text of the string, with quotes.
	Text   string // The string, after quote processing.
}

func (t *Tree) newString(pos Pos, orig, text string) *StringNode {
	return &StringNode{nodeBase: nodeBase{NodeType: NodeString, Pos: pos, tr: t}, Quoted: orig, Text: text}
}

func (s *StringNode) String() string {
	return s.Quoted
}

func (s *StringNode) Copy() Node {
	return s.tr.newString(s.Pos, s.Quoted, s.Text)
}

// end and elseNode are parse-only sentinels; they never survive to a
// finalised tree.
type endNode struct {
	nodeBase
}

func (t *Tree) newEnd(pos Pos) *endNode {
	return &endNode{nodeBase{NodeType: NodeEnd, Pos: pos, tr: t}}
}

func (e *endNode) String() string { return "{{end}}" }
func (e *endNode) Copy() Node     { return e.tr.newEnd(e.Pos) }

type elseNode struct {
	nodeBase
}

func (t *Tree) newElse(pos Pos) *elseNode {
	return &elseNode{nodeBase{NodeType: NodeElse, Pos: pos, tr: t}}
}

func (e *elseNode) String() string { return "{{else}}" }
func (e *elseNode) Copy() Node     { return e.tr.newElse(e.Pos) }

// BranchNode is the common representation of if, for, and with.
type BranchNode struct {
	nodeBase
	Pipe     *PipeNode // The pipeline to be evaluated.
	List     *ListNode // What to execute if the value is truthy (or non-empty, for for).
	ElseList *ListNode // What to execute otherwise (nil if absent).
}

func (b *BranchNode) String() string {
	name := ""
	switch b.NodeType {
	case NodeIf:
		name = "if"
	case NodeFor:
		name = "for"
	case NodeWith:
		name = "with"
	default:
		panic("unknown branch type")
	}
	if b.ElseList != nil {
		return fmt.Sprintf("{{%s %s}}%s{{else}}%s{{end}}", name, b.Pipe, b.List, b.ElseList)
	}
	return fmt.Sprintf("{{%s %s}}%s{{end}}", name, b.Pipe, b.List)
}

// IfNode represents an {{if}} action and its commands.
type IfNode struct {
	BranchNode
}

func (t *Tree) newIf(pos Pos, pipe *PipeNode, list, elseList *ListNode) *IfNode {
	return &IfNode{BranchNode{nodeBase: nodeBase{NodeType: NodeIf, Pos: pos, tr: t}, Pipe: pipe, List: list, ElseList: elseList}}
}

func (i *IfNode) Copy() Node {
	return i.tr.newIf(i.Pos, i.Pipe.CopyPipe(), i.List.CopyList(), i.ElseList.CopyList())
}

// ForNode represents a {{for}} action and its commands.
type ForNode struct {
	BranchNode
}

func (t *Tree) newFor(pos Pos, pipe *PipeNode, list, elseList *ListNode) *ForNode {
	return &ForNode{BranchNode{nodeBase: nodeBase{NodeType: NodeFor, Pos: pos, tr: t}, Pipe: pipe, List: list, ElseList: elseList}}
}

func (r *ForNode) Copy() Node {
	return r.tr.newFor(r.Pos, r.Pipe.CopyPipe(), r.List.CopyList(), r.ElseList.CopyList())
}

// WithNode represents a {{with}} action and its commands.
type WithNode struct {
	BranchNode
}

func (t *Tree) newWith(pos Pos, pipe *PipeNode, list, elseList *ListNode) *WithNode {
	return &WithNode{BranchNode{nodeBase: nodeBase{NodeType: NodeWith, Pos: pos, tr: t}, Pipe: pipe, List: list, ElseList: elseList}}
}

func (w *WithNode) Copy() Node {
	return w.tr.newWith(w.Pos, w.Pipe.CopyPipe(), w.List.CopyList(), w.ElseList.CopyList())
}

// BreakNode represents a {{break}} action, valid only inside a for body.
type BreakNode struct {
	nodeBase
}

func (t *Tree) newBreak(pos Pos) *BreakNode {
	return &BreakNode{nodeBase{NodeType: NodeBreak, Pos: pos, tr: t}}
}

func (b *BreakNode) String() string { return "{{break}}" }
func (b *BreakNode) Copy() Node     { return b.tr.newBreak(b.Pos) }

// ContinueNode represents a {{continue}} action, valid only inside a for body.
type ContinueNode struct {
	nodeBase
}

func (t *Tree) newContinue(pos Pos) *ContinueNode {
	return &ContinueNode{nodeBase{NodeType: NodeContinue, Pos: pos, tr: t}}
}

func (c *ContinueNode) String() string { return "{{continue}}" }
func (c *ContinueNode) Copy() Node     { return c.tr.newContinue(c.Pos) }

// TemplateNode represents a {{template}} action.
type TemplateNode struct {
	nodeBase
	Name string    // The name of the template (unquoted).
	Pipe *PipeNode // The pipeline to evaluate as dot for the invoked template.
}

func (t *Tree) newTemplate(pos Pos, name string, pipe *PipeNode) *TemplateNode {
	return &TemplateNode{nodeBase: nodeBase{NodeType: NodeTemplate, Pos: pos, tr: t}, Name: name, Pipe: pipe}
}

func (t *TemplateNode) String() string {
	if t.Pipe == nil {
		return fmt.Sprintf("{{template %q}}", t.Name)
	}
	return fmt.Sprintf("{{template %q %s}}", t.Name, t.Pipe)
}

func (t *TemplateNode) Copy() Node {
	return t.tr.newTemplate(t.Pos, t.Name, t.Pipe.CopyPipe())
}

// FieldNode holds a field (identifier starting with '.').
// The names may be chained ('.a.b').
// The period is dropped from each ident.
type FieldNode struct {
	nodeBase
	Ident []string // The identifiers in lexical order.
}

func (t *Tree) newField(pos Pos, ident string) *FieldNode {
	return &FieldNode{nodeBase: nodeBase{NodeType: NodeField, Pos: pos, tr: t}, Ident: strings.Split(ident[1:], ".")}
}

func (f *FieldNode) String() string {
	s := ""
	for _, id := range f.Ident {
		s += "." + id
	}
	return s
}

func (f *FieldNode) Copy() Node {
	return &FieldNode{nodeBase: f.nodeBase, Ident: append([]string{}, f.Ident...)}
}

// VariableNode holds a $-prefixed variable, with its name (including the
// leading '$') and any dot-separated field suffixes.
//
// spec.md §9 flags the degenerate name "$." (a trailing empty suffix) as
// a hole in a naive strings.Split; here that hole is closed one layer
// down, in the lexer: lexFieldOrVariable errors on a '.' not followed by
// an identifier character, so an itemVariable token never carries an
// empty path segment in the first place, and splitVariableIdent can
// split on '.' directly like the original.
type VariableNode struct {
	nodeBase
	Ident []string // Variable name (with '$') followed by field suffixes, in lexical order.
}

func (t *Tree) newVariable(pos Pos, ident string) *VariableNode {
	return &VariableNode{nodeBase: nodeBase{NodeType: NodeVariable, Pos: pos, tr: t}, Ident: splitVariableIdent(ident)}
}

// splitVariableIdent splits a "$name.field.field" identifier into its
// head (the variable name, with '$') plus suffixes.
func splitVariableIdent(ident string) []string {
	return strings.Split(ident, ".")
}

func (v *VariableNode) String() string {
	s := v.Ident[0]
	for _, id := range v.Ident[1:] {
		s += "." + id
	}
	return s
}

func (v *VariableNode) Copy() Node {
	return &VariableNode{nodeBase: v.nodeBase, Ident: append([]string{}, v.Ident...)}
}

// ChainNode holds a term followed by a chain of field accesses.
// The names may be chained ('.x.y'). The periods are dropped from each ident.
type ChainNode struct {
	nodeBase
	Node  Node
	Field []string // The identifiers in lexical order.
}

func (t *Tree) newChain(pos Pos, node Node) *ChainNode {
	return &ChainNode{nodeBase: nodeBase{NodeType: NodeChain, Pos: pos, tr: t}, Node: node}
}

// Add adds the named field (which should start with a period) to the end of the chain.
func (c *ChainNode) Add(field string) {
	if len(field) == 0 || field[0] != '.' {
		panic("no dot in field")
	}
	field = field[1:] // Remove leading dot.
	if field == "" {
		panic("empty field")
	}
	c.Field = append(c.Field, field)
}

func (c *ChainNode) String() string {
	s := c.Node.String()
	if _, ok := c.Node.(*PipeNode); ok {
		s = "(" + s + ")"
	}
	for _, field := range c.Field {
		s += "." + field
	}
	return s
}

func (c *ChainNode) Copy() Node {
	return &ChainNode{nodeBase: c.nodeBase, Node: c.Node.Copy(), Field: append([]string{}, c.Field...)}
}

// IsEmptyTree reports whether this tree (node) is empty of everything but space.
func IsEmptyTree(n Node) bool {
	switch n := n.(type) {
	case nil:
		return true
	case *ActionNode:
	case *IfNode:
	case *ListNode:
		for _, node := range n.Nodes {
			if !IsEmptyTree(node) {
				return false
			}
		}
		return true
	case *ForNode:
	case *TemplateNode:
	case *TextNode:
		return len(bytes.TrimSpace(n.Text)) == 0
	case *WithNode:
	default:
		panic("unknown node: " + n.String())
	}
	return false
}
