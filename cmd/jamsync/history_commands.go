package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"jamsync/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent sync runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					if runs == nil {
						runs = []history.Run{}
					}
					return writeJSON(cmd, runs)
				}
				w := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(w, "No sync runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						strconv.FormatInt(run.ID, 10),
						run.StartedAt.Local().Format("2006-01-02 15:04:05"),
						run.Duration().Round(time.Millisecond).String(),
						strconv.Itoa(run.Sessions),
						strconv.Itoa(run.Skipped),
						strconv.Itoa(run.Matched),
						strconv.Itoa(run.Unmatched),
						strconv.Itoa(run.Malformed),
					})
				}
				fmt.Fprintln(w, renderTable(
					[]string{"#", "Started", "Duration", "Sessions", "Skipped", "Matched", "Unmatched", "Malformed"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newUnmatchedCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "unmatched",
		Short: "List song/artist pairs that never matched the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				pairs, err := store.UnmatchedPairs(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					if pairs == nil {
						pairs = []history.UnmatchedPair{}
					}
					return writeJSON(cmd, pairs)
				}
				w := cmd.OutOrStdout()
				if len(pairs) == 0 {
					fmt.Fprintln(w, "No unmatched songs recorded")
					return nil
				}
				rows := make([][]string, 0, len(pairs))
				for _, pair := range pairs {
					rows = append(rows, []string{
						pair.Song,
						pair.Artist,
						strconv.Itoa(pair.Occurrences),
						pair.FirstSeen.Local().Format("2006-01-02"),
						pair.LastSeen.Local().Format("2006-01-02"),
					})
				}
				fmt.Fprintln(w, renderTable(
					[]string{"Song", "Artist", "Runs", "First seen", "Last seen"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum pairs to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
