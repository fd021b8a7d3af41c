package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/subtitle-forge/backend/internal/pipeline"
	"github.com/subtitle-forge/backend/internal/translate"
)

func newTranslateCommand(configFlag *string) *cobra.Command {
	var (
		langs      []string
		styles     []string
		engineName string
		mode       string
		convention string
		outPath    string
		batchLimit int
		retries    int
	)

	cmd := &cobra.Command{
		Use:   "translate FILE",
		Short: "Translate an SRT file into one or two languages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCLIConfig(*configFlag)
			if err != nil {
				return err
			}
			if engineName != "" {
				cfg.Engine = engineName
			}
			if len(langs) > 0 {
				cfg.TargetLanguages = langs
			}
			if convention != "" {
				cfg.Convention = convention
			}
			if batchLimit > 0 {
				cfg.BatchLimit = batchLimit
			}
			if retries > 0 {
				cfg.RetryBudget = retries
			}
			for _, s := range styles {
				k, v, ok := strings.Cut(s, "=")
				if !ok {
					return fmt.Errorf("style %q: want language=prompt", s)
				}
				if cfg.StylePrompts == nil {
					cfg.StylePrompts = map[string]string{}
				}
				cfg.StylePrompts[translate.Label(k)] = v
			}

			if len(cfg.TargetLanguages) == 0 || len(cfg.TargetLanguages) > 2 {
				return fmt.Errorf("need one or two target languages (--lang)")
			}

			engine, err := cfg.buildEngine()
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			targetLangs := make([]string, len(cfg.TargetLanguages))
			for i, l := range cfg.TargetLanguages {
				targetLangs[i] = translate.Label(l)
			}

			res, err := pipeline.Translate(cmd.Context(), raw, engine, pipeline.Config{
				TargetLangs:  targetLangs,
				StylePrompts: cfg.StylePrompts,
				BatchLimit:   cfg.BatchLimit,
				RetryBudget:  cfg.RetryBudget,
				Convention:   pipeline.Convention(cfg.Convention),
				PacingDelay:  cfg.pacingDelay(),
				Progress:     progressLine(cmd),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr())

			doc := pipeline.Format(res.Records, res.Results, pipeline.Mode(mode), targetLangs)

			if outPath == "" {
				outPath = strings.TrimSuffix(args[0], ".srt") + ".translated.srt"
			}
			if err := os.WriteFile(outPath, []byte(doc), 0644); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Cues", "Degraded", "Valid", "Elapsed"},
				[][]string{{
					strconv.Itoa(len(res.Records)),
					strconv.Itoa(res.DegradedCount),
					strconv.FormatBool(res.IsValid),
					fmt.Sprintf("%.1fs", res.ElapsedSeconds),
				}},
			))
			fmt.Fprintln(cmd.OutOrStdout(), res.ValidationReport)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&langs, "lang", "l", nil, "Target language (repeat for a second language)")
	cmd.Flags().StringArrayVar(&styles, "style", nil, "Per-language style prompt, language=prompt")
	cmd.Flags().StringVarP(&engineName, "engine", "e", "", "Translation engine (openai, anthropic)")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(pipeline.ModeSourceParallel), "Output view: bilingual, dual, source, target")
	cmd.Flags().StringVar(&convention, "convention", "", "Model output convention: labeled or json")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default FILE.translated.srt)")
	cmd.Flags().IntVar(&batchLimit, "batch-limit", 0, "Max serialized characters per model batch")
	cmd.Flags().IntVar(&retries, "retries", 0, "Retry attempts per batch")

	return cmd
}

// progressLine writes an in-place percentage to stderr after each batch
func progressLine(cmd *cobra.Command) func(float64) {
	return func(p float64) {
		fmt.Fprintf(cmd.ErrOrStderr(), "\rtranslating… %3.0f%%", p*100)
	}
}
