package result

import (
	"fmt"
	"strings"

	"github.com/crowdsecurity/go-cs-lib/ptr"
)

// Diagnostic is one error or warning reported by the compiler for a source location.
type Diagnostic struct {
	Line        int    `json:"line"`
	Char        int    `json:"char"` // zero-based column
	Description string `json:"description"`
	SourceLine  string `json:"source_line"`
	Kind        string `json:"kind"`
	File        string `json:"file"`
	IsError     bool   `json:"is_error"`
}

// String renders the diagnostic with a caret under the offending column.
func (d Diagnostic) String() string {
	marker := strings.Repeat(" ", max(d.Char, 0)) + "^"
	return fmt.Sprintf("%s: %s at line %d character %d\n%s\n%s",
		d.Kind, d.Description, d.Line, d.Char, d.SourceLine, marker)
}

// CompileResult is the interpreted response of one compilation request.
type CompileResult struct {
	Errors         []Diagnostic `json:"errors"`
	Warnings       []Diagnostic `json:"warnings"`
	CompiledCode   *string      `json:"compiled_code,omitempty"` // nil until a code fragment is seen
	OriginalSize   int          `json:"original_size"`
	CompressedSize int          `json:"compressed_size"`
	CompileTimeMs  int          `json:"compile_time_ms"`
}

// New returns an empty result with non-nil diagnostic slices.
func New() *CompileResult {
	return &CompileResult{
		Errors:   []Diagnostic{},
		Warnings: []Diagnostic{},
	}
}

// HasErrors reports whether the compiler found errors, meaning there is no usable output.
func (r *CompileResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasCompiledCode reports whether any compiled code section was received.
func (r *CompileResult) HasCompiledCode() bool {
	return r.CompiledCode != nil
}

// Code returns the compiled code, or "" when none was received.
func (r *CompileResult) Code() string {
	return ptr.OrEmpty(r.CompiledCode)
}

// AppendCode concatenates a compiled code fragment.
func (r *CompileResult) AppendCode(fragment string) {
	if r.CompiledCode == nil {
		r.CompiledCode = ptr.Of(fragment)
		return
	}
	*r.CompiledCode += fragment
}

// SubstituteSources replaces the compiled code with the plain concatenation
// of the given source texts. Diagnostics and statistics are left untouched.
func (r *CompileResult) SubstituteSources(codes []string) {
	r.CompiledCode = ptr.Of(strings.Join(codes, ""))
}
