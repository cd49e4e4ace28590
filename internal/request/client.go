package request

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultEndpoint is the public Closure Compiler service.
const DefaultEndpoint = "https://closure-compiler.appspot.com/compile"

// maxErrorBody bounds how much of a non-2xx body is kept in a NetworkError.
const maxErrorBody = 512

// NetworkError reports a transport failure or an unexpected HTTP status.
type NetworkError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Body       string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		msg := fmt.Sprintf("compiler request to %s: http code %d", e.URL, e.StatusCode)
		if e.Body != "" {
			msg += ", response: " + e.Body
		}

		return msg
	}

	return fmt.Sprintf("compiler request to %s: %s", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Options configures a Client.
type Options struct {
	Endpoint   string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     log.Ext1FieldLogger
}

// Client submits compilation requests to the service.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	logger     log.Ext1FieldLogger
}

// NewClient returns a client for the given options. A nil HTTPClient gets a
// fresh one using Timeout.
func NewClient(opts Options) *Client {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	return &Client{
		endpoint:   endpoint,
		userAgent:  opts.UserAgent,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Endpoint returns the service URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// PrepareRequest builds the form POST for the given sources.
func (c *Client) PrepareRequest(ctx context.Context, sources []Source) (*http.Request, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	values, err := NewParams(sources).Values()
	if err != nil {
		return nil, fmt.Errorf("encoding parameters: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	return req, nil
}

// Submit posts the sources and returns the raw response body, unparsed.
// Failures are not retried.
func (c *Client) Submit(ctx context.Context, sources []Source) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("context must be non-nil")
	}

	req, err := c.PrepareRequest(ctx, sources)
	if err != nil {
		return nil, err
	}

	c.logger.Debugf("[URL] %s %s (%d sources)", req.Method, req.URL, len(sources))

	resp, err := c.httpClient.Do(req)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}

	if err != nil {
		// the context's error is more useful than the transport one
		select {
		case <-ctx.Done():
			err = ctx.Err()
		default:
		}

		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}

		return nil, &NetworkError{URL: c.endpoint, Err: err}
	}

	if traceEnabled(c.logger) {
		if dump, dumpErr := httputil.DumpResponse(resp, true); dumpErr == nil {
			c.logger.Tracef("Response: %s", string(dump))
		}
	}

	if err := checkResponse(c.endpoint, resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: c.endpoint, Err: fmt.Errorf("reading response body: %w", err)}
	}

	return body, nil
}

// SubmitFiles reads the files in order and submits them.
func (c *Client) SubmitFiles(ctx context.Context, paths ...string) ([]byte, error) {
	sources, err := ReadSources(paths...)
	if err != nil {
		return nil, err
	}

	return c.Submit(ctx, sources)
}

func traceEnabled(l log.Ext1FieldLogger) bool {
	switch v := l.(type) {
	case *log.Logger:
		return v.IsLevelEnabled(log.TraceLevel)
	case *log.Entry:
		return v.Logger.IsLevelEnabled(log.TraceLevel)
	}

	return false
}

func checkResponse(endpoint string, r *http.Response) error {
	if c := r.StatusCode; 200 <= c && c <= 299 {
		return nil
	}

	data, _ := io.ReadAll(io.LimitReader(r.Body, maxErrorBody))

	return &NetworkError{
		URL:        endpoint,
		StatusCode: r.StatusCode,
		Body:       strings.TrimSpace(string(data)),
		Err:        errors.New(http.StatusText(r.StatusCode)),
	}
}
