package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dotjs/closure/internal/build"
	"github.com/dotjs/closure/internal/compiler"
	"github.com/dotjs/closure/internal/result"
)

var errCompilation = errors.New("compilation failed")

type compileFlags struct {
	debug   bool
	outputs []string
	json    bool
}

func newCompileCmd(cli *cliRoot) *cobra.Command {
	flags := compileFlags{}

	cmd := &cobra.Command{
		Use:   "compile [flags] FILE...",
		Short: "Compile JavaScript files",
		Example: `closure compile src/a.js src/b.js -o dist/app.min.js
closure compile -d src/*.js -o dist/app.js
closure compile --json src/app.js`,
		Args:              cobra.MinimumNArgs(1),
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.loadConfig(); err != nil {
				return err
			}

			return cli.compile(cmd, flags, args)
		},
	}

	fl := cmd.Flags()
	fl.BoolVarP(&flags.debug, "debug", "d", false, "emit the concatenated sources instead of the compiled code")
	fl.StringArrayVarP(&flags.outputs, "out", "o", nil, "write the compiled code to this file (repeatable, default stdout)")
	fl.BoolVar(&flags.json, "json", false, "print the result as JSON")

	return cmd
}

func (cli *cliRoot) compile(cmd *cobra.Command, flags compileFlags, files []string) error {
	opts, err := cli.cfg.CompilerOptions(cli.logger)
	if err != nil {
		return err
	}

	if flags.debug {
		opts.Debug = true
	}

	if cli.httpClient != nil {
		opts.HTTPClient = cli.httpClient
	}

	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	if opts.Debug && !flags.json {
		fmt.Fprintln(stderr, "Debug mode on")
	}

	res, err := compiler.New(opts).Compile(cmd.Context(), files...)

	var batch *result.ServerErrorBatch
	if errors.As(err, &batch) {
		printServerErrors(stderr, batch)
	}

	if err != nil {
		return err
	}

	if flags.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")

		if err := enc.Encode(res); err != nil {
			return err
		}

		if res.HasErrors() {
			return errCompilation
		}

		return nil
	}

	printDiagnostics(stderr, res)

	if res.HasErrors() {
		fmt.Fprintln(stderr, "Errors occurred. Output files will not be produced.")
		return errCompilation
	}

	if len(flags.outputs) == 0 {
		_, err := io.WriteString(stdout, res.Code())
		return err
	}

	for _, path := range flags.outputs {
		if err := build.WriteOutput(path, res.Code()); err != nil {
			return err
		}

		cli.logger.Infof("wrote %s", path)
	}

	return nil
}

func printDiagnostics(w io.Writer, res *result.CompileResult) {
	warn := color.New(color.FgYellow, color.Bold)
	fail := color.New(color.FgRed, color.Bold)

	for _, d := range res.Warnings {
		fmt.Fprintf(w, "%s %s\n", warn.Sprint("WARN:"), d)
	}

	for _, d := range res.Errors {
		fmt.Fprintf(w, "%s %s\n", fail.Sprint("ERROR:"), d)
	}
}

func printServerErrors(w io.Writer, batch *result.ServerErrorBatch) {
	fmt.Fprintln(w, color.RedString("The Closure Compiler returned with a fatal error:"))

	for _, e := range batch.Errors {
		fmt.Fprintln(w, e)
	}
}
