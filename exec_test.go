package gotemplate

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, text string, data interface{}) string {
	t.Helper()
	tmpl, err := New("t").Parse(text)
	require.NoError(t, err)
	var b bytes.Buffer
	require.NoError(t, tmpl.Execute(&b, data))
	return b.String()
}

func TestExecuteLiteralText(t *testing.T) {
	assert.Equal(t, "hello, world", render(t, "hello, world", nil))
}

func TestExecuteField(t *testing.T) {
	data := struct{ Name string }{"Ada"}
	assert.Equal(t, "hi Ada", render(t, "hi {{.Name}}", data))
}

func TestExecuteChainedField(t *testing.T) {
	type Inner struct{ Y int }
	type Outer struct{ X Inner }
	assert.Equal(t, "7", render(t, "{{.X.Y}}", Outer{Inner{7}}))
}

func TestExecuteCustomDelims(t *testing.T) {
	tmpl, err := New("t").Delims("<<", ">>").Parse("<<.Name>>!")
	require.NoError(t, err)
	var b bytes.Buffer
	require.NoError(t, tmpl.Execute(&b, struct{ Name string }{"Bo"}))
	assert.Equal(t, "Bo!", b.String())
}

func TestExecuteForOverSliceTwoVar(t *testing.T) {
	out := render(t, "{{for $i, $v := .}}{{$i}}:{{$v}} {{end}}", []string{"a", "b", "c"})
	assert.Equal(t, "0:a 1:b 2:c ", out)
}

func TestExecuteForOverMapOneVar(t *testing.T) {
	out := render(t, "{{for $v := .}}{{$v}}{{end}}", map[string]int{"x": 1})
	assert.Equal(t, "1", out)
}

func TestExecuteForElse(t *testing.T) {
	out := render(t, "{{for .}}x{{else}}empty{{end}}", []int{})
	assert.Equal(t, "empty", out)
}

func TestExecuteForBreakContinue(t *testing.T) {
	out := render(t, "{{for $v := .}}{{if eq $v 2}}{{continue}}{{end}}{{if eq $v 4}}{{break}}{{end}}{{$v}}{{end}}",
		[]int64{1, 2, 3, 4, 5})
	assert.Equal(t, "13", out)
}

func TestExecuteURLEncodePipeline(t *testing.T) {
	out := render(t, "{{.Q | urlencode}}", struct{ Q string }{"a b&c"})
	assert.Equal(t, "a+b%26c", out)
}

func TestExecuteDefaultWithMissingValue(t *testing.T) {
	type Data struct{ Name string }
	assert.Equal(t, "anonymous", render(t, `{{default "anonymous" .Name}}`, Data{}))
	assert.Equal(t, "Ada", render(t, `{{default "anonymous" .Name}}`, Data{"Ada"}))
}

// TestExecuteDefaultWithAbsentMapKey mirrors spec.md's worked example: a
// mapping that simply lacks the key must degrade to null, not error, so
// a chained default still renders.
func TestExecuteDefaultWithAbsentMapKey(t *testing.T) {
	out := render(t, `Hello {{.email | default "user@host.com"}}`, map[string]interface{}{})
	assert.Equal(t, "Hello user@host.com", out)
}

func TestExecuteDefineAndTemplateInvocation(t *testing.T) {
	tmpl, err := New("main").Parse(`{{define "greet"}}hi {{.}}{{end}}{{template "greet" .Name}}`)
	require.NoError(t, err)
	var b bytes.Buffer
	require.NoError(t, tmpl.Execute(&b, struct{ Name string }{"Zed"}))
	assert.Equal(t, "hi Zed", b.String())
}

func TestExecuteParseErrorPosition(t *testing.T) {
	_, err := New("bad").Parse("line1\nline2{{")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad:2:")
}

func TestExecuteWithRebindsDot(t *testing.T) {
	type Inner struct{ Y int }
	type Outer struct{ X Inner }
	assert.Equal(t, "7", render(t, "{{with .X}}{{.Y}}{{end}}", Outer{Inner{7}}))
}

func TestExecuteIfElseIf(t *testing.T) {
	out := render(t, "{{if .X}}a{{else if .Y}}b{{else}}c{{end}}", struct{ X, Y bool }{false, true})
	assert.Equal(t, "b", out)
}

func TestExecuteAndOrShortCircuit(t *testing.T) {
	// or should short-circuit on the first truthy value and never touch b.
	type counter struct{ calls int }
	c := &counter{}
	fm := FuncMap{"sideEffect": func() bool { c.calls++; return true }}
	tmpl, err := New("t").Funcs(fm).Parse(`{{if or true (sideEffect)}}yes{{end}}`)
	require.NoError(t, err)
	var b bytes.Buffer
	require.NoError(t, tmpl.Execute(&b, nil))
	assert.Equal(t, "yes", b.String())
	assert.Equal(t, 0, c.calls)
}

func TestParseRejectsVariableUsedAfterEnd(t *testing.T) {
	_, err := New("t").Parse(`{{with $x := 1}}{{end}}{{$x}}`)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "undefined variable"))
}

func TestParseRejectsForVariableUsedAfterEnd(t *testing.T) {
	_, err := New("t").Parse(`{{for $v := .}}{{end}}{{$v}}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined variable")
}

// TestExecuteNestedShadowDoesNotLeak guards against a construct's own
// declared variable (pushed once, bound to the whole pipeline result)
// outliving its block: an inner with shadowing the same name must not
// overwrite the outer's binding once the inner block closes.
func TestExecuteNestedShadowDoesNotLeak(t *testing.T) {
	out := render(t, `{{with $x := "outer"}}{{with $x := "inner"}}{{$x}}-{{end}}{{$x}}{{end}}`, nil)
	assert.Equal(t, "inner-outer", out)
}

// TestExecuteForLoopDoesNotLeakIntoEnclosingScope guards against the for
// loop's own pipeline-declared variable (bound once to the whole
// collection before the per-element loop starts) surviving past the
// loop's {{end}} and shadowing an outer declaration of the same name
// still in scope.
func TestExecuteForLoopDoesNotLeakIntoEnclosingScope(t *testing.T) {
	out := render(t, `{{with $v := "outer"}}{{for $v := range 3}}{{end}}{{$v}}{{end}}`, nil)
	assert.Equal(t, "outer", out)
}

func TestExecuteLengthPseudoField(t *testing.T) {
	assert.Equal(t, "3", render(t, "{{.length}}", []int{1, 2, 3}))
}

func TestExecuteMethodCall(t *testing.T) {
	assert.Equal(t, "HI", render(t, "{{.Shout}}", shouter{"hi"}))
}

type shouter struct{ s string }

func (s shouter) Shout() string { return strings.ToUpper(s.s) }
