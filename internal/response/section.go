package response

// section is the kind of the innermost open element of the response.
type section int

const (
	sectionNone section = iota
	sectionError
	sectionWarning
	sectionCompiledCode
	sectionOriginalSize
	sectionCompressedSize
	sectionCompileTime
	sectionServerErrors
)

var sectionByName = map[string]section{
	"error":          sectionError,
	"warning":        sectionWarning,
	"compiledCode":   sectionCompiledCode,
	"originalSize":   sectionOriginalSize,
	"compressedSize": sectionCompressedSize,
	"compileTime":    sectionCompileTime,
	"serverErrors":   sectionServerErrors,
}

// sectionFor maps an element name to its section. Containers such as
// compilationResult, errors or statistics carry no content and map to none.
func sectionFor(name string) section {
	return sectionByName[name]
}

// leaf reports whether the section holds text content and no child sections.
func (s section) leaf() bool {
	return s != sectionNone && s != sectionServerErrors
}

func (s section) String() string {
	for name, v := range sectionByName {
		if v == s {
			return name
		}
	}

	return "none"
}
