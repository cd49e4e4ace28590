// Package compiler submits JavaScript sources to the Closure Compiler service
// and returns the interpreted result.
package compiler

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/dotjs/closure/internal/request"
	"github.com/dotjs/closure/internal/response"
	"github.com/dotjs/closure/internal/result"
)

// Compiler runs compilations against one service endpoint. It keeps no
// per-call state and can be shared between goroutines.
type Compiler struct {
	opts   Options
	client *request.Client
	logger log.Ext1FieldLogger
}

// New returns a new compiler with the given options.
func New(opts Options) *Compiler {
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	client := request.NewClient(request.Options{
		Endpoint:   opts.Endpoint,
		UserAgent:  opts.UserAgent,
		Timeout:    opts.Timeout,
		HTTPClient: opts.HTTPClient,
		Logger:     logger,
	})

	return &Compiler{
		opts:   opts,
		client: client,
		logger: logger,
	}
}

// Compile reads the files in order, submits them and interprets the response.
// Errors are returned unchanged: *request.SourceError, *request.NetworkError,
// *result.ServerErrorBatch or *result.MalformedResponseError.
func (c *Compiler) Compile(ctx context.Context, files ...string) (*result.CompileResult, error) {
	sources, err := request.ReadSources(files...)
	if err != nil {
		return nil, err
	}

	return c.CompileSources(ctx, sources)
}

// CompileSources compiles sources already held in memory.
func (c *Compiler) CompileSources(ctx context.Context, sources []request.Source) (*result.CompileResult, error) {
	c.logger.Debugf("compiling %d sources with %s", len(sources), c.client.Endpoint())

	// 1. Submit the request
	body, err := c.client.Submit(ctx, sources)
	if err != nil {
		return nil, err
	}

	// 2. Interpret the streamed response
	res, err := response.ParseBytes(body)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(log.Fields{
		"errors":          len(res.Errors),
		"warnings":        len(res.Warnings),
		"original_size":   res.OriginalSize,
		"compressed_size": res.CompressedSize,
		"compile_time_ms": res.CompileTimeMs,
	}).Debug("compilation done")

	// 3. Debug substitution, only when the output is usable
	if c.opts.Debug && !res.HasErrors() {
		res.SubstituteSources(request.Codes(sources))
	}

	return res, nil
}
