package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/subtitle-forge/backend/internal/correct"
	"github.com/subtitle-forge/backend/internal/srt"
	"github.com/subtitle-forge/backend/internal/translate"
)

func newCorrectCommand(configFlag *string) *cobra.Command {
	var (
		engineName string
		termsFile  string
		workers    int
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "correct FILE",
		Short: "Proofread an SRT file against a correction term list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCLIConfig(*configFlag)
			if err != nil {
				return err
			}
			if engineName != "" {
				cfg.Engine = engineName
			}

			terms := cfg.CorrectionTerms
			if termsFile != "" {
				data, err := os.ReadFile(termsFile)
				if err != nil {
					return fmt.Errorf("read terms: %w", err)
				}
				terms = nil
				for _, line := range strings.Split(string(data), "\n") {
					if line = strings.TrimSpace(line); line != "" {
						terms = append(terms, line)
					}
				}
			}

			engine, err := cfg.buildEngine()
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			records, err := srt.Parse(raw)
			if err != nil {
				return err
			}

			client := translate.NewClient(engine, cfg.RetryBudget)
			corrected, changes, err := correct.Run(cmd.Context(), records, client, correct.Options{
				Terms:    terms,
				Workers:  workers,
				Progress: progressLine(cmd),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr())

			if outPath == "" {
				outPath = strings.TrimSuffix(args[0], ".srt") + ".corrected.srt"
			}
			if err := os.WriteFile(outPath, []byte(srt.Serialize(corrected)), 0644); err != nil {
				return err
			}

			if len(changes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no corrections needed")
			} else {
				rows := make([][]string, len(changes))
				for i, c := range changes {
					rows[i] = []string{strconv.Itoa(c.Index), c.Before, c.After}
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Cue", "Before", "After"}, rows))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&engineName, "engine", "e", "", "Translation engine (openai, anthropic)")
	cmd.Flags().StringVar(&termsFile, "terms", "", "File with one correction term per line")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent correction calls (default 5)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default FILE.corrected.srt)")

	return cmd
}
