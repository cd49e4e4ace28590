package compiler

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dotjs/closure/internal/request"
	"github.com/dotjs/closure/internal/useragent"
)

// Options configures the compiler behavior.
type Options struct {
	// Endpoint is the compilation service URL.
	Endpoint string
	// Timeout bounds one request, response body included (0 = no timeout).
	Timeout time.Duration
	// UserAgent is sent with every request.
	UserAgent string
	// Debug replaces the compiled code with the plain concatenation of the
	// sources when the service reports no errors.
	Debug bool
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
	// Logger receives request and statistics logs (nil = logrus standard logger).
	Logger log.Ext1FieldLogger
}

// DefaultOptions returns default compiler options.
func DefaultOptions() Options {
	return Options{
		Endpoint:  request.DefaultEndpoint,
		Timeout:   60 * time.Second,
		UserAgent: useragent.Default(),
	}
}
