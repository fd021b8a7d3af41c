package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/subtitle-forge/backend/internal/srt"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check an SRT file against the cue grammar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			ok, report := srt.Validate(string(raw))
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"File", "Valid", "Report"},
				[][]string{{args[0], fmt.Sprintf("%v", ok), report}},
			))
			if !ok {
				return fmt.Errorf("invalid subtitle file")
			}
			return nil
		},
	}
}
