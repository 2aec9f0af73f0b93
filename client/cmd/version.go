package cmd

import (
	"github.com/spf13/cobra"

	"github.com/updatectl/updatectl/version"
)

var (
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "prints updatectl version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version.Version())
		},
	}
)
