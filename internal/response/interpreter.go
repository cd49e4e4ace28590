// Package response interprets the XML document streamed back by the Closure
// Compiler service.
//
// The document is read as a flat sequence of sections: each element opens a
// section, and character data belongs to the innermost open one. Only leaf
// sections (error, warning, compiledCode and the statistics scalars) carry
// content. A serverErrors section switches the whole parse into server error
// mode, after which error sections describe service failures instead of
// problems in the submitted code. That nesting is a quirk of the upstream
// service and is reproduced as is.
package response

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/dotjs/closure/internal/result"
)

// Parse reads a whole response and returns its result, or a
// *result.ServerErrorBatch when the service reported a server error.
func Parse(r io.Reader) (*result.CompileResult, error) {
	in := newInterpreter(r)
	return in.run()
}

// ParseBytes is Parse over an in-memory body.
func ParseBytes(body []byte) (*result.CompileResult, error) {
	return Parse(bytes.NewReader(body))
}

// interpreter holds the state of a single parse. It is never shared.
type interpreter struct {
	dec *xml.Decoder
	res *result.CompileResult

	current section
	name    string
	attrs   map[string]string

	text    strings.Builder
	sawText bool

	serverErrorMode bool
	serverErrors    []result.ServerError
}

func newInterpreter(r io.Reader) *interpreter {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	return &interpreter{
		dec: dec,
		res: result.New(),
	}
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, err
	}

	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}

	return enc.NewDecoder().Reader(input), nil
}

func (p *interpreter) run() (*result.CompileResult, error) {
	for {
		tok, err := p.dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, p.malformed("", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			err = p.enter(t)
		case xml.EndElement:
			err = p.leave()
		case xml.CharData:
			p.content(t)
		}

		if err != nil {
			return nil, err
		}
	}

	if p.serverErrorMode {
		return nil, &result.ServerErrorBatch{Errors: p.serverErrors}
	}

	return p.res, nil
}

// enter handles the start of a section.
func (p *interpreter) enter(el xml.StartElement) error {
	if p.current.leaf() {
		return p.malformed("", fmt.Errorf("section %q opened inside %q", el.Name.Local, p.name))
	}

	attrs := make(map[string]string, len(el.Attr))

	for _, a := range el.Attr {
		if _, dup := attrs[a.Name.Local]; dup {
			p.name = el.Name.Local
			return p.malformed(a.Name.Local, errors.New("repeated attribute"))
		}

		attrs[a.Name.Local] = a.Value
	}

	p.current = sectionFor(el.Name.Local)
	p.name = el.Name.Local
	p.attrs = attrs
	p.text.Reset()
	p.sawText = false

	if p.current == sectionServerErrors {
		p.serverErrorMode = true
	}

	return nil
}

// content handles character data of the current section.
func (p *interpreter) content(data xml.CharData) {
	switch {
	case p.current == sectionCompiledCode:
		p.res.AppendCode(string(data))
	case p.current.leaf():
		p.text.Write(data)
		p.sawText = true
	}
}

// leave closes the current section and dispatches its gathered text.
func (p *interpreter) leave() error {
	var err error

	if p.current.leaf() {
		err = p.dispatch(p.text.String())
	}

	p.current = sectionNone
	p.name = ""
	p.attrs = nil
	p.text.Reset()
	p.sawText = false

	return err
}

// dispatch records a closed leaf section. Entries are created on close, not
// on content, so a childless error or warning still yields one entry.
func (p *interpreter) dispatch(text string) error {
	switch p.current {
	case sectionError:
		if p.serverErrorMode {
			code, err := p.intAttr("code")
			if err != nil {
				return err
			}

			p.serverErrors = append(p.serverErrors, result.ServerError{Code: code, Message: text})

			return nil
		}

		d, err := p.diagnostic(text, true)
		if err != nil {
			return err
		}

		p.res.Errors = append(p.res.Errors, d)
	case sectionWarning:
		d, err := p.diagnostic(text, false)
		if err != nil {
			return err
		}

		p.res.Warnings = append(p.res.Warnings, d)
	case sectionOriginalSize:
		return p.scalar(text, &p.res.OriginalSize)
	case sectionCompressedSize:
		return p.scalar(text, &p.res.CompressedSize)
	case sectionCompileTime:
		return p.scalar(text, &p.res.CompileTimeMs)
	case sectionNone, sectionCompiledCode, sectionServerErrors:
	}

	return nil
}

func (p *interpreter) diagnostic(text string, isError bool) (result.Diagnostic, error) {
	line, err := p.intAttr("lineno")
	if err != nil {
		return result.Diagnostic{}, err
	}

	char, err := p.intAttr("charno")
	if err != nil {
		return result.Diagnostic{}, err
	}

	sourceLine, err := p.attr("line")
	if err != nil {
		return result.Diagnostic{}, err
	}

	kind, err := p.attr("type")
	if err != nil {
		return result.Diagnostic{}, err
	}

	file, err := p.attr("file")
	if err != nil {
		return result.Diagnostic{}, err
	}

	return result.Diagnostic{
		Line:        line,
		Char:        char,
		Description: text,
		SourceLine:  sourceLine,
		Kind:        kind,
		File:        file,
		IsError:     isError,
	}, nil
}

// scalar sets a statistics field. A section without text leaves it untouched.
func (p *interpreter) scalar(text string, dst *int) error {
	if !p.sawText {
		return nil
	}

	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return p.malformed("", err)
	}

	*dst = v

	return nil
}

func (p *interpreter) attr(name string) (string, error) {
	v, ok := p.attrs[name]
	if !ok {
		return "", p.malformed(name, errors.New("missing attribute"))
	}

	return v, nil
}

func (p *interpreter) intAttr(name string) (int, error) {
	v, err := p.attr(name)
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, p.malformed(name, err)
	}

	return n, nil
}

func (p *interpreter) malformed(attr string, err error) error {
	return &result.MalformedResponseError{
		Section: p.name,
		Attr:    attr,
		Offset:  p.dec.InputOffset(),
		Err:     err,
	}
}
