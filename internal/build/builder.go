// Package build compiles the targets declared in the configuration, in
// dependency order, and writes their outputs.
package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dotjs/closure/internal/compiler"
	"github.com/dotjs/closure/internal/config"
	"github.com/dotjs/closure/internal/dependency"
	"github.com/dotjs/closure/internal/result"
)

// Status is the outcome of one target.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"  // compile errors, nothing written
	StatusError   Status = "error"   // the compilation could not complete
	StatusSkipped Status = "skipped" // a dependency did not succeed
)

// TargetResult is the outcome of one target.
type TargetResult struct {
	Name    string                `json:"name"`
	Status  Status                `json:"status"`
	Result  *result.CompileResult `json:"result,omitempty"`
	Err     error                 `json:"-"`
	Written []string              `json:"written,omitempty"`
}

// Report lists target results in dependency order.
type Report struct {
	Targets []TargetResult `json:"targets"`
}

// Success reports whether every target compiled and was written.
func (r *Report) Success() bool {
	for _, t := range r.Targets {
		if t.Status != StatusOK {
			return false
		}
	}

	return true
}

// Options configures a Builder.
type Options struct {
	Compiler compiler.Options
	// MaxParallel bounds the targets compiled at once within a tier (0 = auto).
	MaxParallel int
	// OnDone is called after each target, from the goroutine that ran it.
	OnDone func(TargetResult)
}

// Builder runs builds. It can be reused.
type Builder struct {
	opts   Options
	logger log.Ext1FieldLogger
}

// New returns a builder with the given options.
func New(opts Options) *Builder {
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = runtime.NumCPU()
	}

	if opts.MaxParallel > 32 {
		opts.MaxParallel = 32
	}

	logger := opts.Compiler.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	return &Builder{opts: opts, logger: logger}
}

// Run validates and orders the targets, then compiles them tier by tier.
// The returned error covers invalid declarations and cancellation only.
// Per-target failures are in the report. A canceled context stops the build
// before the next tier.
func (b *Builder) Run(ctx context.Context, targets []config.Target) (*Report, error) {
	// 1. Declaration-level validation
	if verrs := Validate(targets); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, e := range verrs {
			errs[i] = e
		}

		return nil, errors.Join(errs...)
	}

	// 2. Resolve dependency order and tiers
	nodes := make([]dependency.Node, len(targets))
	byName := make(map[string]config.Target, len(targets))

	for i, t := range targets {
		nodes[i] = dependency.Node{ID: t.Name, DependsOn: t.DependsOn}
		byName[t.Name] = t
	}

	_, tiers, err := dependency.Resolve(nodes)
	if err != nil {
		return nil, err
	}

	// 3. Process tier by tier; within each tier compile in parallel
	report := &Report{Targets: make([]TargetResult, 0, len(targets))}
	status := make(map[string]Status, len(targets))

	for _, tier := range tiers {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		results := make([]TargetResult, len(tier))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(b.opts.MaxParallel, len(tier)))

		for i, name := range tier {
			t := byName[name]

			if dep, ok := failedDependency(t, status); ok {
				results[i] = TargetResult{
					Name:   name,
					Status: StatusSkipped,
					Err:    fmt.Errorf("dependency %q did not succeed", dep),
				}
				b.done(results[i])

				continue
			}

			i := i

			g.Go(func() error {
				results[i] = b.runTarget(gctx, t)
				b.done(results[i])

				return nil
			})
		}

		_ = g.Wait()

		for _, res := range results {
			status[res.Name] = res.Status
		}

		report.Targets = append(report.Targets, results...)
	}

	return report, nil
}

func failedDependency(t config.Target, status map[string]Status) (string, bool) {
	for _, dep := range t.DependsOn {
		if status[dep] != StatusOK {
			return dep, true
		}
	}

	return "", false
}

func (b *Builder) done(res TargetResult) {
	if b.opts.OnDone != nil {
		b.opts.OnDone(res)
	}
}

func (b *Builder) runTarget(ctx context.Context, t config.Target) TargetResult {
	logger := b.logger.WithField("target", t.Name)
	logger.Debugf("compiling %d sources", len(t.Sources))

	opts := b.opts.Compiler
	opts.Debug = opts.Debug || t.Debug
	opts.Logger = logger

	res, err := compiler.New(opts).Compile(ctx, t.Sources...)
	if err != nil {
		return TargetResult{Name: t.Name, Status: StatusError, Err: err}
	}

	out := TargetResult{Name: t.Name, Status: StatusOK, Result: res}

	if res.HasErrors() {
		out.Status = StatusFailed
		return out
	}

	for _, path := range t.Outputs {
		if err := WriteOutput(path, res.Code()); err != nil {
			out.Status = StatusError
			out.Err = err

			return out
		}

		out.Written = append(out.Written, path)
		logger.Debugf("wrote %s", path)
	}

	return out
}

// WriteOutput writes code to path, creating missing parent directories.
func WriteOutput(path, code string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}
