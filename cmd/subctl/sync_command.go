package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/subtitle-forge/backend/internal/srt"
	"github.com/subtitle-forge/backend/internal/timesync"
)

func newSyncCommand(configFlag *string) *cobra.Command {
	var (
		timelinePath string
		maxDiff      float64
		outPath      string
	)

	cmd := &cobra.Command{
		Use:   "sync FILE",
		Short: "Snap cue times to the cut points of an editor timeline XML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCLIConfig(*configFlag)
			if err != nil {
				return err
			}
			if maxDiff <= 0 {
				maxDiff = cfg.MaxDifference
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			records, err := srt.Parse(raw)
			if err != nil {
				return err
			}

			xmlFile, err := os.Open(timelinePath)
			if err != nil {
				return err
			}
			defer xmlFile.Close()

			tl, err := timesync.ParseTimeline(xmlFile)
			if err != nil {
				return err
			}

			adjusted := timesync.Adjust(records, tl, maxDiff)

			if outPath == "" {
				outPath = strings.TrimSuffix(args[0], ".srt") + ".synced.srt"
			}
			if err := os.WriteFile(outPath, []byte(srt.Serialize(adjusted)), 0644); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "frame rate %.2f, %d cut points\n", tl.FrameRate, len(tl.CutPoints))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&timelinePath, "timeline", "t", "", "Editor timeline XML export (required)")
	cmd.MarkFlagRequired("timeline")
	cmd.Flags().Float64Var(&maxDiff, "max-diff", 0, "Max seconds a cue boundary may move")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default FILE.synced.srt)")

	return cmd
}
