package response

import (
	"strconv"
	"strings"
	"testing"

	"github.com/crowdsecurity/go-cs-lib/cstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotjs/closure/internal/response/responsetest"
	"github.com/dotjs/closure/internal/result"
)

func syntaxError() result.Diagnostic {
	return result.Diagnostic{
		Line:        3,
		Char:        5,
		Description: "missing )",
		SourceLine:  "foo(",
		Kind:        "SyntaxError",
		File:        "a.js",
		IsError:     true,
	}
}

func warning(n int) result.Diagnostic {
	return result.Diagnostic{
		Line:        n,
		Char:        0,
		Description: "dangerous use of this #" + strconv.Itoa(n),
		SourceLine:  "this.x = 1;",
		Kind:        "JSC_USED_GLOBAL_THIS",
		File:        "Input_0",
	}
}

func TestParseEmptyBody(t *testing.T) {
	for _, body := range []string{"", "  \n", `<?xml version="1.0"?>`, "<compilationResult/>"} {
		res, err := ParseBytes([]byte(body))
		require.NoError(t, err, "body %q", body)

		assert.Empty(t, res.Errors)
		assert.Empty(t, res.Warnings)
		assert.NotNil(t, res.Errors)
		assert.NotNil(t, res.Warnings)
		assert.False(t, res.HasCompiledCode())
		assert.Zero(t, res.OriginalSize)
		assert.Zero(t, res.CompressedSize)
		assert.Zero(t, res.CompileTimeMs)
	}
}

func TestParseSingleError(t *testing.T) {
	body := responsetest.New().Error(syntaxError()).Bytes()

	res, err := ParseBytes(body)
	require.NoError(t, err)

	assert.Equal(t, []result.Diagnostic{syntaxError()}, res.Errors)
	assert.Empty(t, res.Warnings)
	assert.False(t, res.HasCompiledCode())
}

func TestParseDiagnosticOrder(t *testing.T) {
	tests := []struct {
		name     string
		errors   int
		warnings int
		indented bool
	}{
		{name: "none", errors: 0, warnings: 0},
		{name: "warnings only", errors: 0, warnings: 3},
		{name: "mixed", errors: 2, warnings: 4},
		{name: "mixed indented", errors: 2, warnings: 4, indented: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := responsetest.New()

			var wantErrors, wantWarnings []result.Diagnostic

			for i := 0; i < tc.errors; i++ {
				d := syntaxError()
				d.Line = 10 - i // descending, must not be sorted
				wantErrors = append(wantErrors, d)
				b.Error(d)
			}

			for i := 0; i < tc.warnings; i++ {
				d := warning(tc.warnings - i)
				wantWarnings = append(wantWarnings, d)
				b.Warning(d)
			}

			if tc.indented {
				b.Indented()
			}

			res, err := ParseBytes(b.Bytes())
			require.NoError(t, err)

			require.Len(t, res.Errors, tc.errors)
			require.Len(t, res.Warnings, tc.warnings)

			for i := range wantErrors {
				assert.Equal(t, wantErrors[i], res.Errors[i])
			}

			for i := range wantWarnings {
				assert.Equal(t, wantWarnings[i], res.Warnings[i])
			}
		})
	}
}

func TestParseDuplicateDiagnosticsKept(t *testing.T) {
	body := responsetest.New().Warning(warning(1)).Warning(warning(1)).Bytes()

	res, err := ParseBytes(body)
	require.NoError(t, err)
	assert.Equal(t, []result.Diagnostic{warning(1), warning(1)}, res.Warnings)
}

func TestParseChildlessSections(t *testing.T) {
	body := `<compilationResult>
<errors><error lineno="1" charno="0" line="x" type="E" file="f"/></errors>
<warnings><warning lineno="2" charno="4" line="y" type="W" file="f"></warning></warnings>
</compilationResult>`

	res, err := ParseBytes([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, []result.Diagnostic{
		{Line: 1, Char: 0, SourceLine: "x", Kind: "E", File: "f", IsError: true},
	}, res.Errors)
	assert.Equal(t, []result.Diagnostic{
		{Line: 2, Char: 4, SourceLine: "y", Kind: "W", File: "f"},
	}, res.Warnings)

	_, err = ParseBytes([]byte(`<compilationResult><serverErrors><error code="3"/></serverErrors></compilationResult>`))

	var batch *result.ServerErrorBatch
	require.ErrorAs(t, err, &batch)
	assert.Equal(t, []result.ServerError{{Code: 3}}, batch.Errors)
}

func TestParseCompiledCode(t *testing.T) {
	res, err := ParseBytes(responsetest.New().CompiledCode("var a=1;", "alert(a);", "\n").Indented().Bytes())
	require.NoError(t, err)
	assert.Equal(t, "var a=1;alert(a);\n", res.Code())

	res, err = ParseBytes(responsetest.New().CompiledCode("a();").CompiledCode("b();").Bytes())
	require.NoError(t, err)
	assert.Equal(t, "a();b();", res.Code())

	res, err = ParseBytes([]byte("<compilationResult><compiledCode></compiledCode></compilationResult>"))
	require.NoError(t, err)
	assert.False(t, res.HasCompiledCode(), "no fragment was seen")
}

func TestParseStatistics(t *testing.T) {
	body := responsetest.New().
		CompiledCode("x();").
		Statistics(1000, 400, 250).
		Indented().
		Bytes()

	res, err := ParseBytes(body)
	require.NoError(t, err)
	assert.Equal(t, 1000, res.OriginalSize)
	assert.Equal(t, 400, res.CompressedSize)
	assert.Equal(t, 250, res.CompileTimeMs)
	assert.Equal(t, "x();", res.Code())
}

func TestParseStatisticsWhitespace(t *testing.T) {
	body := "<compilationResult><statistics>" +
		"<originalSize>\n  12\n</originalSize><compileTime></compileTime>" +
		"</statistics></compilationResult>"

	res, err := ParseBytes([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, 12, res.OriginalSize)
	assert.Zero(t, res.CompileTimeMs)
}

func TestParseServerErrors(t *testing.T) {
	body := responsetest.New().
		Error(syntaxError()).
		Warning(warning(1)).
		ServerError(22, "Too many compiles performed recently.").
		ServerError(8, "Unknown compilation level.").
		Statistics(10, 5, 1).
		Bytes()

	res, err := ParseBytes(body)
	assert.Nil(t, res)

	var batch *result.ServerErrorBatch
	require.ErrorAs(t, err, &batch)
	assert.Equal(t, []result.ServerError{
		{Code: 22, Message: "Too many compiles performed recently."},
		{Code: 8, Message: "Unknown compilation level."},
	}, batch.Errors)
}

func TestParseServerModeIsSticky(t *testing.T) {
	// an ordinary error section after serverErrors is still a server error
	body := responsetest.New().
		ServerErrors().
		Error(syntaxError()).
		Bytes()

	_, err := ParseBytes(body)
	cstest.RequireErrorContains(t, err, `section "error" attribute "code"`)

	body = []byte(`<compilationResult><serverErrors/>` +
		`<errors><error code="4">late</error></errors></compilationResult>`)

	_, err = ParseBytes(body)

	var batch *result.ServerErrorBatch
	require.ErrorAs(t, err, &batch)
	assert.Equal(t, []result.ServerError{{Code: 4, Message: "late"}}, batch.Errors)
}

func TestParseEmptyServerErrors(t *testing.T) {
	_, err := ParseBytes(responsetest.New().CompiledCode("a();").ServerErrors().Bytes())

	var batch *result.ServerErrorBatch
	require.ErrorAs(t, err, &batch)
	assert.Empty(t, batch.Errors)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectedErr string
	}{
		{
			name:        "non numeric lineno",
			body:        `<errors><error lineno="x" charno="1" line="" type="E" file="f">d</error></errors>`,
			expectedErr: `section "error" attribute "lineno"`,
		},
		{
			name:        "missing charno",
			body:        `<warnings><warning lineno="1" line="" type="W" file="f">d</warning></warnings>`,
			expectedErr: `section "warning" attribute "charno" at offset`,
		},
		{
			name:        "missing file",
			body:        `<errors><error lineno="1" charno="1" line="" type="E">d</error></errors>`,
			expectedErr: `attribute "file" at offset`,
		},
		{
			name:        "non numeric scalar",
			body:        `<statistics><compressedSize>many</compressedSize></statistics>`,
			expectedErr: `section "compressedSize" at offset`,
		},
		{
			name:        "non numeric server error code",
			body:        `<serverErrors><error code="E22">busy</error></serverErrors>`,
			expectedErr: `attribute "code"`,
		},
		{
			name:        "section inside leaf",
			body:        `<compiledCode>a();<originalSize>1</originalSize></compiledCode>`,
			expectedErr: `section "originalSize" opened inside "compiledCode"`,
		},
		{
			name:        "repeated attribute",
			body:        `<errors><error lineno="1" lineno="2" charno="1" line="" type="E" file="f">d</error></errors>`,
			expectedErr: `attribute "lineno" at offset`,
		},
		{
			name:        "truncated document",
			body:        `<compilationResult><compiledCode>a();`,
			expectedErr: "unexpected EOF",
		},
		{
			name:        "unsupported charset",
			body:        `<?xml version="1.0" encoding="x-made-up"?><compilationResult/>`,
			expectedErr: "x-made-up",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Parse(strings.NewReader(tc.body))
			assert.Nil(t, res)
			require.ErrorIs(t, err, result.ErrMalformedResponse)
			cstest.RequireErrorContains(t, err, tc.expectedErr)
		})
	}
}

func TestParseMalformedStopsEarly(t *testing.T) {
	// the server error after the broken section must not be reached
	body := `<compilationResult><errors>` +
		`<error lineno="?" charno="1" line="" type="E" file="f">d</error></errors>` +
		`<serverErrors><error code="1">late</error></serverErrors></compilationResult>`

	_, err := ParseBytes([]byte(body))
	require.ErrorIs(t, err, result.ErrMalformedResponse)

	var batch *result.ServerErrorBatch
	assert.NotErrorAs(t, err, &batch)
}

func TestParseEscapedContent(t *testing.T) {
	d := syntaxError()
	d.SourceLine = `if (a < b && c > "d") {`
	d.Description = "Parse error. missing ; before <statement>"

	res, err := ParseBytes(responsetest.New().Error(d).Bytes())
	require.NoError(t, err)
	assert.Equal(t, []result.Diagnostic{d}, res.Errors)
}

func TestParseLatin1Charset(t *testing.T) {
	body := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><compilationResult><compiledCode>var s=\"caf\xe9\";</compiledCode></compilationResult>")

	res, err := ParseBytes(body)
	require.NoError(t, err)
	assert.Equal(t, `var s="café";`, res.Code())
}

func TestSectionFor(t *testing.T) {
	assert.Equal(t, sectionCompileTime, sectionFor("compileTime"))
	assert.Equal(t, sectionNone, sectionFor("compilationResult"))
	assert.Equal(t, sectionNone, sectionFor("originalGzipSize"))
	assert.True(t, sectionWarning.leaf())
	assert.False(t, sectionServerErrors.leaf())
	assert.Equal(t, "serverErrors", sectionServerErrors.String())
	assert.Equal(t, "none", sectionNone.String())
}
