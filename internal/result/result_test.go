package result

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{
		Line:        3,
		Char:        5,
		Description: "missing )",
		SourceLine:  "foo(",
		Kind:        "SyntaxError",
		File:        "a.js",
		IsError:     true,
	}

	assert.Equal(t, "SyntaxError: missing ) at line 3 character 5\nfoo(\n     ^", d.String())

	d.Char = 0
	assert.Equal(t, "SyntaxError: missing ) at line 3 character 0\nfoo(\n^", d.String())
}

func TestCompiledCodePresence(t *testing.T) {
	r := New()
	assert.False(t, r.HasCompiledCode())
	assert.Empty(t, r.Code())

	r.AppendCode("")
	assert.True(t, r.HasCompiledCode(), "an empty fragment still marks the code as present")

	r.AppendCode("a();")
	r.AppendCode("b();")
	assert.Equal(t, "a();b();", r.Code())
}

func TestSubstituteSources(t *testing.T) {
	r := New()
	r.AppendCode("minified")
	r.OriginalSize = 10
	r.Warnings = append(r.Warnings, Diagnostic{Kind: "W"})

	r.SubstituteSources([]string{"a();", "b();"})

	assert.Equal(t, "a();b();", r.Code())
	assert.Equal(t, 10, r.OriginalSize)
	assert.Len(t, r.Warnings, 1)
}

func TestServerErrorBatch(t *testing.T) {
	batch := &ServerErrorBatch{Errors: []ServerError{
		{Code: 22, Message: "Too many compiles"},
		{Code: 8, Message: "Unknown compilation level"},
	}}

	assert.Equal(t, "compiler service error: 22: Too many compiles; 8: Unknown compilation level", batch.Error())
	assert.Equal(t, "compiler service error (no details)", (&ServerErrorBatch{}).Error())
}

func TestMalformedResponseError(t *testing.T) {
	_, numErr := strconv.Atoi("x")

	err := error(&MalformedResponseError{Section: "error", Attr: "lineno", Offset: 42, Err: numErr})

	require.ErrorIs(t, err, ErrMalformedResponse)
	require.ErrorIs(t, err, strconv.ErrSyntax)
	assert.Equal(t, `malformed compiler response: section "error" attribute "lineno" at offset 42: strconv.Atoi: parsing "x": invalid syntax`, err.Error())

	var mre *MalformedResponseError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, "lineno", mre.Attr)
}
