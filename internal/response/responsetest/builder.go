// Package responsetest builds synthetic compiler service responses.
package responsetest

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/dotjs/closure/internal/result"
)

// Builder assembles a compilationResult document. Sections are written in
// call order.
type Builder struct {
	doc    *etree.Document
	root   *etree.Element
	indent bool
}

// New returns a builder for an empty compilationResult document.
func New() *Builder {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	return &Builder{
		doc:  doc,
		root: doc.CreateElement("compilationResult"),
	}
}

// container returns the trailing child named tag, creating one if the last
// child of the root is something else.
func (b *Builder) container(tag string) *etree.Element {
	children := b.root.ChildElements()
	if n := len(children); n > 0 && children[n-1].Tag == tag {
		return children[n-1]
	}

	return b.root.CreateElement(tag)
}

func (b *Builder) diagnostic(parent *etree.Element, tag string, d result.Diagnostic) {
	el := parent.CreateElement(tag)
	el.CreateAttr("type", d.Kind)
	el.CreateAttr("file", d.File)
	el.CreateAttr("lineno", strconv.Itoa(d.Line))
	el.CreateAttr("charno", strconv.Itoa(d.Char))
	el.CreateAttr("line", d.SourceLine)

	if d.Description != "" {
		el.SetText(d.Description)
	}
}

// Error appends an error section.
func (b *Builder) Error(d result.Diagnostic) *Builder {
	b.diagnostic(b.container("errors"), "error", d)
	return b
}

// Warning appends a warning section.
func (b *Builder) Warning(d result.Diagnostic) *Builder {
	b.diagnostic(b.container("warnings"), "warning", d)
	return b
}

// CompiledCode appends a compiledCode section. The first fragment is plain
// text, the following ones are CDATA so the decoder reports them separately.
func (b *Builder) CompiledCode(fragments ...string) *Builder {
	el := b.root.CreateElement("compiledCode")

	for i, f := range fragments {
		if i == 0 {
			el.CreateText(f)
			continue
		}

		el.CreateCData(f)
	}

	return b
}

// Statistics appends a statistics section.
func (b *Builder) Statistics(originalSize, compressedSize, compileTime int) *Builder {
	stats := b.root.CreateElement("statistics")
	stats.CreateElement("originalSize").SetText(strconv.Itoa(originalSize))
	stats.CreateElement("originalGzipSize").SetText(strconv.Itoa(originalSize / 2))
	stats.CreateElement("compressedSize").SetText(strconv.Itoa(compressedSize))
	stats.CreateElement("compressedGzipSize").SetText(strconv.Itoa(compressedSize / 2))
	stats.CreateElement("compileTime").SetText(strconv.Itoa(compileTime))

	return b
}

// ServerErrors appends an empty serverErrors section.
func (b *Builder) ServerErrors() *Builder {
	b.container("serverErrors")
	return b
}

// ServerError appends an error inside a serverErrors section.
func (b *Builder) ServerError(code int, message string) *Builder {
	el := b.container("serverErrors").CreateElement("error")
	el.CreateAttr("code", strconv.Itoa(code))
	el.SetText(message)

	return b
}

// Indented makes the output pretty printed, adding whitespace between sections.
func (b *Builder) Indented() *Builder {
	b.indent = true
	return b
}

// String serializes the document.
func (b *Builder) String() string {
	if b.indent {
		b.doc.Indent(2)
	}

	s, err := b.doc.WriteToString()
	if err != nil {
		panic(err)
	}

	return s
}

// Bytes serializes the document.
func (b *Builder) Bytes() []byte {
	return []byte(b.String())
}
