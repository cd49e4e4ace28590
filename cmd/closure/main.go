package main

import (
	"net/http"
	"os"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dotjs/closure/internal/config"
	"github.com/dotjs/closure/internal/logger"
)

// cliRoot holds the state shared by all subcommands.
type cliRoot struct {
	configPath string
	logLevel   string

	// httpClient overrides the client built from the configuration (tests).
	httpClient *http.Client

	cfg    *config.Config
	logger *log.Logger
}

func (cli *cliRoot) loadConfig() error {
	var (
		cfg *config.Config
		err error
	)

	if cli.configPath == "" {
		cfg, err = config.LoadOptional(config.DefaultPath)
	} else {
		cfg, err = config.Load(cli.configPath)
	}

	if err != nil {
		return err
	}

	if cli.logLevel != "" {
		cfg.LogLevel = cli.logLevel
	}

	l, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	cli.cfg = cfg
	cli.logger = l

	return nil
}

func (cli *cliRoot) NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "closure",
		Short: "closure minifies JavaScript with the Closure Compiler service",
		Long: `closure submits JavaScript sources to the Closure Compiler web service
and reports the resulting warnings, errors, statistics and compiled code.`,
		DisableAutoGenTag: true,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&cli.configPath, "config", "c", "", "path to the configuration file (default: ./"+config.DefaultPath+" if present)")
	flags.StringVar(&cli.logLevel, "log-level", "", "override the configured log level (trace, debug, info, warning, error)")

	cmd.SetOut(color.Output)

	cmd.AddCommand(newCompileCmd(cli))
	cmd.AddCommand(newBuildCmd(cli))
	cmd.AddCommand(newConfigCmd(cli))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func main() {
	cli := &cliRoot{}

	if err := cli.NewCommand().Execute(); err != nil {
		logger.Default.Error(err)
		os.Exit(1)
	}
}
