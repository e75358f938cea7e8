package gotemplate

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateParseInputs(t *testing.T) {
	tmpl, err := New("main").ParseInputs(map[string]string{
		"main":    `{{template "greet" .}}`,
		"greet":   `hi {{.}}`,
	})
	require.NoError(t, err)
	var b bytes.Buffer
	require.NoError(t, tmpl.Execute(&b, "Mo"))
	assert.Equal(t, "hi Mo", b.String())
}

func TestPackageParseInputs(t *testing.T) {
	tmpl, err := ParseInputs(nil, map[string]string{"main": "hello"})
	require.NoError(t, err)
	var b bytes.Buffer
	require.NoError(t, tmpl.Execute(&b, nil))
	assert.Equal(t, "hello", b.String())
}

func TestPackageParseInputsRootsAtFirstKey(t *testing.T) {
	tmpl, err := ParseInputs(nil, map[string]string{"zzz": "z", "aaa": "first"})
	require.NoError(t, err)
	assert.Equal(t, "aaa", tmpl.Name())
}

func TestTemplateLookupAndTemplates(t *testing.T) {
	tmpl, err := New("main").ParseInputs(map[string]string{
		"main": "a", "side": "b",
	})
	require.NoError(t, err)
	assert.NotNil(t, tmpl.Lookup("side"))
	assert.Nil(t, tmpl.Lookup("missing"))
	assert.Len(t, tmpl.Templates(), 2)
}

func TestTemplateParseFiles(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "main.tmpl")
	side := filepath.Join(dir, "side.tmpl")
	require.NoError(t, ioutil.WriteFile(main, []byte(`{{template "side.tmpl" .}}`), 0o644))
	require.NoError(t, ioutil.WriteFile(side, []byte("side says {{.}}"), 0o644))

	tmpl, err := ParseFiles(main, side)
	require.NoError(t, err)
	var b bytes.Buffer
	require.NoError(t, tmpl.Execute(&b, "hi"))
	assert.Equal(t, "side says hi", b.String())
}

func TestTemplateParseFilesNoNames(t *testing.T) {
	_, err := ParseFiles()
	assert.Error(t, err)
}

func TestTemplateFuncsOverloadSet(t *testing.T) {
	fm1 := FuncMap{"greet": func(s string) string { return "hi " + s }}
	fm2 := FuncMap{"greet": func(n int64) string { return "num greeting" }}
	tmpl, err := New("t").Funcs(fm1).Funcs(fm2).Parse(`{{greet "Ada"}} {{greet 3}}`)
	require.NoError(t, err)
	var b bytes.Buffer
	require.NoError(t, tmpl.Execute(&b, nil))
	assert.Equal(t, "hi Ada num greeting", b.String())
}

func TestTemplateMust(t *testing.T) {
	assert.NotPanics(t, func() {
		Must(New("t").Parse("ok"))
	})
	assert.Panics(t, func() {
		Must(New("t").Parse("{{.X"))
	})
}

func TestRenderHelper(t *testing.T) {
	assert.Equal(t, "hi Ada", Render("hi {{.}}", "Ada"))
}

func TestRenderHelperParseError(t *testing.T) {
	out := Render("{{.X", nil)
	assert.Contains(t, out, "unclosed action")
}

func TestRenderFile(t *testing.T) {
	f, err := ioutil.TempFile("", "gotemplate-*.tmpl")
	require.NoError(t, err)
	defer os.Remove(f.Name())
	_, err = f.WriteString("hello {{.}}")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Equal(t, "hello Zed", RenderFile(f.Name(), "Zed"))
}

func TestRenderFileMissing(t *testing.T) {
	out := RenderFile("/no/such/file", nil)
	assert.NotEqual(t, "", out)
}
