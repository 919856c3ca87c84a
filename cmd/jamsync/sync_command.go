package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"jamsync/internal/catalog"
	"jamsync/internal/config"
	"jamsync/internal/dataset"
	"jamsync/internal/history"
	"jamsync/internal/logging"
	"jamsync/internal/pipeline"
	"jamsync/internal/sheet"
)

type syncOptions struct {
	workbook  string
	catalog   string
	outputs   []string
	format    string
	threshold float64
	workers   int
	dryRun    bool
	noHistory bool
	json      bool
}

type syncSummary struct {
	Report       *pipeline.Report      `json:"report"`
	CatalogStats catalog.LoadStats     `json:"catalog"`
	Outputs      []dataset.WriteResult `json:"outputs"`
	HistoryRunID int64                 `json:"history_run_id,omitempty"`
	DryRun       bool                  `json:"dry_run"`
}

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var opts syncOptions

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Extract sessions from a workbook export and publish canonical datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applySyncOverrides(cmd, cfg, &opts); err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}

			wb, err := sheet.LoadWorkbook(opts.workbook)
			if err != nil {
				return err
			}
			entries, stats, err := catalog.LoadFile(opts.catalog)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			if stats.Incomplete > 0 || stats.Invalid > 0 {
				logging.WarnWithContext(logger, "catalog records dropped", "catalog_records_dropped",
					logging.Int("incomplete", stats.Incomplete),
					logging.Int("invalid", stats.Invalid),
					logging.String(logging.FieldImpact, "songs matching dropped records stay unmatched"),
					logging.String(logging.FieldErrorHint, "run 'jamsync catalog' to inspect the file"),
				)
			}
			matcher, err := pipeline.BuildMatcher(cfg, entries)
			if err != nil {
				return err
			}

			metrics := pipeline.NewMetrics()
			pipeOpts := pipeline.OptionsFromConfig(cfg, logger)
			pipeOpts.Metrics = metrics
			p, err := pipeline.New(matcher, pipeOpts)
			if err != nil {
				return err
			}

			result, err := p.Run(cmd.Context(), wb)
			if err != nil {
				return err
			}

			summary := syncSummary{Report: result.Report, CatalogStats: stats, DryRun: opts.dryRun}
			if !opts.dryRun {
				writer := dataset.NewWriter(logger)
				for _, output := range cfg.Sync.Outputs {
					res, err := writer.Write(cmd.Context(), output, result.Sessions, dataset.Format(cfg.Sync.Format))
					if err != nil {
						return fmt.Errorf("write %s: %w", output, err)
					}
					summary.Outputs = append(summary.Outputs, res)
				}
				if !opts.noHistory {
					err := ctx.withHistory(func(store *history.Store) error {
						id, err := store.RecordRun(cmd.Context(), historyRun(result.Report, cfg.Sync.Outputs), historyPairs(result.Report))
						summary.HistoryRunID = id
						return err
					})
					if err != nil {
						return err
					}
				}
			}
			if err := metrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
				logging.WarnWithContext(logger, "metrics export failed", "metrics_export_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "textfile collector keeps the previous values"),
				)
			}

			if opts.json {
				return writeJSON(cmd, summary)
			}
			printSyncSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.workbook, "workbook", "w", "", "Workbook export (JSON) holding the session worksheets")
	cmd.Flags().StringVarP(&opts.catalog, "catalog", "k", "", "Song catalog file (.json, .jsonl, .yaml)")
	cmd.Flags().StringArrayVarP(&opts.outputs, "output", "o", nil, "Dataset output path (repeatable; overrides sync.outputs)")
	cmd.Flags().StringVar(&opts.format, "format", "", "Output format: auto, json, or jsonl")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "Override matching.threshold")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Override sync.workers")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Run extraction and matching without writing outputs or history")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record the run in the history ledger")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("workbook")
	_ = cmd.MarkFlagRequired("catalog")

	return cmd
}

func applySyncOverrides(cmd *cobra.Command, cfg *config.Config, opts *syncOptions) error {
	flags := cmd.Flags()
	if flags.Changed("threshold") {
		cfg.Matching.Threshold = opts.threshold
	}
	if flags.Changed("workers") {
		cfg.Sync.Workers = opts.workers
	}
	if flags.Changed("format") {
		cfg.Sync.Format = strings.ToLower(strings.TrimSpace(opts.format))
	}
	if len(opts.outputs) > 0 {
		outputs := make([]string, 0, len(opts.outputs))
		for _, output := range opts.outputs {
			expanded, err := config.ExpandPath(strings.TrimSpace(output))
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}
			outputs = append(outputs, expanded)
		}
		cfg.Sync.Outputs = outputs
	}
	return cfg.Validate()
}

func historyRun(report *pipeline.Report, outputs []string) history.Run {
	return history.Run{
		RunID:      report.RunID,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Sessions:   report.Sessions,
		Skipped:    len(report.Skipped),
		Matched:    report.SongsMatched,
		Unmatched:  report.SongsUnmatched,
		Malformed:  report.Malformed,
		Normalizer: report.Normalizer,
		Threshold:  report.Threshold,
		Outputs:    outputs,
	}
}

func historyPairs(report *pipeline.Report) []history.Pair {
	pairs := make([]history.Pair, 0, len(report.Unmatched))
	for _, p := range report.Unmatched {
		pairs = append(pairs, history.Pair{Song: p.Song, Artist: p.Artist})
	}
	return pairs
}

func printSyncSummary(out io.Writer, summary syncSummary) {
	report := summary.Report
	colors := newPalette(out)

	fmt.Fprintf(out, "%s %s\n", colors.heading.Sprint("Run"), report.RunID)
	fmt.Fprintf(out, "Sessions: %d extracted from %d worksheets in %s\n",
		report.Sessions, report.Worksheets, report.Duration().Round(time.Millisecond))
	fmt.Fprintf(out, "Matching: %s normalizer, threshold %.2f, %d catalog entries\n",
		report.Normalizer, report.Threshold, summary.CatalogStats.Kept())
	fmt.Fprintf(out, "Songs: %s matched, %s unmatched (%d distinct), %d malformed\n",
		colors.good.Sprint(report.SongsMatched),
		colors.warn.Sprint(report.SongsUnmatched),
		len(report.Unmatched),
		report.Malformed,
	)

	if len(report.Skipped) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, colors.heading.Sprint("Skipped worksheets"))
		rows := make([][]string, 0, len(report.Skipped))
		for _, skip := range report.Skipped {
			rows = append(rows, []string{skip.Spreadsheet, skip.Title, string(skip.Reason), skip.Detail})
		}
		fmt.Fprintln(out, renderTable([]string{"Spreadsheet", "Worksheet", "Reason", "Detail"}, rows, nil))
	}

	if len(report.Unmatched) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, colors.heading.Sprint("Unmatched songs"))
		rows := make([][]string, 0, len(report.Unmatched))
		for _, pair := range report.Unmatched {
			rows = append(rows, []string{pair.Song, pair.Artist})
		}
		fmt.Fprintln(out, renderTable([]string{"Song", "Artist"}, rows, nil))
	}

	fmt.Fprintln(out)
	switch {
	case summary.DryRun:
		fmt.Fprintln(out, "Dry run: no outputs written")
	case len(summary.Outputs) == 0:
		fmt.Fprintln(out, "No outputs configured (set sync.outputs or pass --output)")
	default:
		fmt.Fprintln(out, colors.heading.Sprint("Outputs"))
		rows := make([][]string, 0, len(summary.Outputs))
		for _, res := range summary.Outputs {
			state := "unchanged"
			if res.Changed {
				state = "written"
			}
			rows = append(rows, []string{res.Path, string(res.Format), strconv.Itoa(res.Sessions), state})
		}
		fmt.Fprintln(out, renderTable([]string{"Path", "Format", "Sessions", "State"}, rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
	}
	if summary.HistoryRunID > 0 {
		fmt.Fprintf(out, "Recorded as history run #%d\n", summary.HistoryRunID)
	}
}
