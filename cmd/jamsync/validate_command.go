package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jamsync/internal/dataset"
)

type validationResult struct {
	Path    string   `json:"path"`
	Records int      `json:"records"`
	Valid   bool     `json:"valid"`
	Errors  []string `json:"errors,omitempty"`
}

func newValidateCommand() *cobra.Command {
	var format string
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "validate <dataset>...",
		Short:       "Check session dataset files against the session schema",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]validationResult, 0, len(args))
			failed := 0
			for _, path := range args {
				res := validationResult{Path: path, Valid: true}
				records, err := dataset.ReadRecords(path, dataset.Format(format))
				if err == nil {
					res.Records = len(records)
					err = dataset.Validate(records)
				}
				if err != nil {
					res.Valid = false
					res.Errors = splitJoined(err)
					failed++
				}
				results = append(results, res)
			}

			if asJSON {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				w := cmd.OutOrStdout()
				colors := newPalette(w)
				for _, res := range results {
					if res.Valid {
						fmt.Fprintf(w, "%s %s (%d records)\n", colors.good.Sprint("OK"), res.Path, res.Records)
						continue
					}
					fmt.Fprintf(w, "%s %s\n", colors.bad.Sprint("FAIL"), res.Path)
					for _, msg := range res.Errors {
						fmt.Fprintf(w, "  %s\n", msg)
					}
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d dataset(s) failed validation", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "auto", "Dataset format: auto, json, or jsonl")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

// splitJoined flattens an errors.Join result into one message per error.
func splitJoined(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, splitJoined(e)...)
		}
		return out
	}
	return []string{err.Error()}
}
