package main

import (
	"fmt"

	"github.com/crowdsecurity/go-cs-lib/version"
	"github.com/spf13/cobra"

	"github.com/dotjs/closure/internal/useragent"
)

func versionString() string {
	ret := fmt.Sprintf("version: %s\n", version.String())
	ret += fmt.Sprintf("BuildDate: %s\n", version.BuildDate)
	ret += fmt.Sprintf("GoVersion: %s\n", version.GoVersion)
	ret += fmt.Sprintf("Platform: %s\n", version.System)
	ret += fmt.Sprintf("User-Agent: %s\n", useragent.Default())

	return ret
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Display version",
		Args:              cobra.NoArgs,
		DisableAutoGenTag: true,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(cmd.OutOrStdout(), versionString())
		},
	}
}
