package result

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse matches every *MalformedResponseError through errors.Is.
var ErrMalformedResponse = errors.New("malformed compiler response")

// ServerError is one (code, message) pair reported by the compiler service itself.
type ServerError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e ServerError) String() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// ServerErrorBatch is returned instead of a result when the service reports
// a server-level failure. Errors keeps the order of the response.
type ServerErrorBatch struct {
	Errors []ServerError
}

func (e *ServerErrorBatch) Error() string {
	if len(e.Errors) == 0 {
		return "compiler service error (no details)"
	}

	msgs := make([]string, 0, len(e.Errors))
	for _, se := range e.Errors {
		msgs = append(msgs, se.String())
	}

	return "compiler service error: " + strings.Join(msgs, "; ")
}

// MalformedResponseError reports a response that violates the expected
// section/attribute layout. Offset is the decoder input offset at the point
// of failure.
type MalformedResponseError struct {
	Section string
	Attr    string
	Offset  int64
	Err     error
}

func (e *MalformedResponseError) Error() string {
	var b strings.Builder

	b.WriteString(ErrMalformedResponse.Error())

	if e.Section != "" {
		fmt.Fprintf(&b, ": section %q", e.Section)
	}

	if e.Attr != "" {
		fmt.Fprintf(&b, " attribute %q", e.Attr)
	}

	fmt.Fprintf(&b, " at offset %d", e.Offset)

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}
