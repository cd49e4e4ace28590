package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	log "github.com/sirupsen/logrus"

	"github.com/dotjs/closure/internal/compiler"
	"github.com/dotjs/closure/internal/config"
	"github.com/dotjs/closure/internal/logger"
	"github.com/dotjs/closure/internal/request"
	"github.com/dotjs/closure/internal/result"
)

// compileRequest is the JSON body sent through API Gateway.
type compileRequest struct {
	Sources []request.Source `json:"sources"`
	Debug   bool             `json:"debug,omitempty"`
}

// compileResponse is the JSON body returned to the client.
type compileResponse struct {
	Success      bool                  `json:"success"`
	Result       *result.CompileResult `json:"result,omitempty"`
	ServerErrors []result.ServerError  `json:"serverErrors,omitempty"`
	Error        string                `json:"error,omitempty"`
}

type handler struct {
	opts   compiler.Options
	logger log.Ext1FieldLogger
}

func newHandler(cfg *config.Config, l log.Ext1FieldLogger) (*handler, error) {
	opts, err := cfg.CompilerOptions(l)
	if err != nil {
		return nil, err
	}

	return &handler{opts: opts, logger: l}, nil
}

func (h *handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		dec, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return wrap(http.StatusBadRequest, compileResponse{Error: "invalid base64 body: " + err.Error()}), nil
		}

		body = string(dec)
	}

	var req compileRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return wrap(http.StatusBadRequest, compileResponse{Error: "invalid request JSON: " + err.Error()}), nil
	}

	if len(req.Sources) == 0 {
		return wrap(http.StatusBadRequest, compileResponse{Error: request.ErrNoSources.Error()}), nil
	}

	opts := h.opts
	opts.Debug = opts.Debug || req.Debug

	res, err := compiler.New(opts).CompileSources(ctx, req.Sources)
	if err != nil {
		h.logger.WithField("request_id", event.RequestContext.RequestID).Errorf("compilation failed: %s", err)

		out := compileResponse{Error: err.Error()}

		var batch *result.ServerErrorBatch
		if errors.As(err, &batch) {
			out.ServerErrors = batch.Errors
		}

		return wrap(http.StatusBadGateway, out), nil
	}

	out := compileResponse{Success: !res.HasErrors(), Result: res}
	if res.HasErrors() {
		return wrap(http.StatusUnprocessableEntity, out), nil
	}

	return wrap(http.StatusOK, out), nil
}

func wrap(status int, out compileResponse) events.APIGatewayProxyResponse {
	bodyBytes, _ := json.Marshal(out)

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(bodyBytes),
	}
}

func main() {
	path := os.Getenv("CLOSURE_CONFIG")
	if path == "" {
		path = config.DefaultPath
	}

	cfg, err := config.LoadOptional(path)
	if err != nil {
		logger.Default.Fatal(err)
	}

	l, err := logger.New(cfg.LogLevel, "json")
	if err != nil {
		logger.Default.Fatal(err)
	}

	h, err := newHandler(cfg, l)
	if err != nil {
		l.Fatal(err)
	}

	lambda.Start(h.Handle)
}
