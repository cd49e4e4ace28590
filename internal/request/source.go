package request

import (
	"errors"
	"fmt"
	"os"
)

// ErrNoSources is returned when a compilation is requested without any input.
var ErrNoSources = errors.New("no source to compile")

// Source is one JavaScript input, in the position it will take in the request.
type Source struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// SourceError reports a local read failure for an input file.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("reading source %s: %s", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// ReadSources reads every file fully, in the given order.
func ReadSources(paths ...string) ([]Source, error) {
	if len(paths) == 0 {
		return nil, ErrNoSources
	}

	sources := make([]Source, 0, len(paths))

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &SourceError{Path: path, Err: err}
		}

		sources = append(sources, Source{Name: path, Code: string(data)})
	}

	return sources, nil
}

// Codes returns the source texts in order.
func Codes(sources []Source) []string {
	codes := make([]string, len(sources))
	for i, s := range sources {
		codes[i] = s.Code
	}

	return codes
}
