package request

import (
	"net/url"

	qs "github.com/google/go-querystring/query"
)

const (
	// CompilationLevel restricts the service to safe transformations that need no type information.
	CompilationLevel = "SIMPLE_OPTIMIZATIONS"
	// OutputFormat selects the streamed XML response shape.
	OutputFormat = "xml"
)

// OutputInfo lists the response channels always requested.
var OutputInfo = []string{"errors", "warnings", "compiled_code", "statistics"}

// Params is the form body of a compilation request. Slices are encoded as repeated keys.
type Params struct {
	CompilationLevel string   `url:"compilation_level"`
	OutputFormat     string   `url:"output_format"`
	OutputInfo       []string `url:"output_info"`
	JSCode           []string `url:"js_code"`
}

// NewParams returns the fixed request parameters with one js_code entry per source.
func NewParams(sources []Source) Params {
	info := make([]string, len(OutputInfo))
	copy(info, OutputInfo)

	return Params{
		CompilationLevel: CompilationLevel,
		OutputFormat:     OutputFormat,
		OutputInfo:       info,
		JSCode:           Codes(sources),
	}
}

// Values encodes the parameters. Repeated keys keep their slice order.
func (p Params) Values() (url.Values, error) {
	return qs.Values(p)
}
