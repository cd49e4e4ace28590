package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dotjs/closure/internal/build"
	"github.com/dotjs/closure/internal/result"
)

var errBuild = errors.New("build failed")

type buildFlags struct {
	debug    bool
	parallel int
	json     bool
}

func newBuildCmd(cli *cliRoot) *cobra.Command {
	flags := buildFlags{}

	cmd := &cobra.Command{
		Use:   "build [flags] [TARGET...]",
		Short: "Compile the targets declared in the configuration file",
		Long: `Compile every target block of the configuration file, or only the named
targets and the targets they depend on. A target is compiled after its
dependencies, and only if they succeeded.`,
		Example: `closure build
closure build dot.min.js -d
closure build --parallel 1 --json`,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.loadConfig(); err != nil {
				return err
			}

			return cli.build(cmd, flags, args)
		},
	}

	fl := cmd.Flags()
	fl.BoolVarP(&flags.debug, "debug", "d", false, "emit the concatenated sources instead of the compiled code")
	fl.IntVar(&flags.parallel, "parallel", 0, "max targets compiled at once (0 = auto)")
	fl.BoolVar(&flags.json, "json", false, "print the build report as JSON")

	return cmd
}

func (cli *cliRoot) build(cmd *cobra.Command, flags buildFlags, names []string) error {
	if len(cli.cfg.Targets) == 0 {
		return errors.New("no target declared in the configuration file")
	}

	targets, err := build.Select(cli.cfg.Targets, names...)
	if err != nil {
		return err
	}

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

	b := build.New(build.Options{
		Compiler:    opts,
		MaxParallel: flags.parallel,
		OnDone: func(res build.TargetResult) {
			cli.logger.WithField("target", res.Name).Infof("target %s", res.Status)
		},
	})

	report, err := b.Run(cmd.Context(), targets)
	if err != nil {
		return err
	}

	if flags.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")

		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		for _, t := range report.Targets {
			printTarget(stderr, t)
		}
	}

	if !report.Success() {
		return errBuild
	}

	return nil
}

func printTarget(w io.Writer, t build.TargetResult) {
	fmt.Fprintf(w, "%s %s\n", color.New(color.Bold).Sprint("Target"), t.Name)

	switch t.Status {
	case build.StatusOK:
		printDiagnostics(w, t.Result)

		for _, path := range t.Written {
			fmt.Fprintf(w, "wrote %s\n", path)
		}

		fmt.Fprintln(w, color.GreenString("Done"))
	case build.StatusFailed:
		printDiagnostics(w, t.Result)
		fmt.Fprintln(w, "Errors occurred. Output files will not be produced.")
	case build.StatusSkipped:
		fmt.Fprintf(w, "%s %s\n", color.YellowString("skipped:"), t.Err)
	case build.StatusError:
		var batch *result.ServerErrorBatch
		if errors.As(t.Err, &batch) {
			printServerErrors(w, batch)
			return
		}

		fmt.Fprintf(w, "%s %s\n", color.RedString("error:"), t.Err)
	}
}
