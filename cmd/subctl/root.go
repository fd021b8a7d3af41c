package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "subctl",
		Short:         "Translate, proofread and re-time SRT subtitle files",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newTranslateCommand(&configFlag))
	rootCmd.AddCommand(newCorrectCommand(&configFlag))
	rootCmd.AddCommand(newSyncCommand(&configFlag))
	rootCmd.AddCommand(newValidateCommand())

	return rootCmd
}
