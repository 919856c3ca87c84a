package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jamsync/internal/catalog"
	"jamsync/internal/matching"
	"jamsync/internal/pipeline"
)

type matchOutput struct {
	Song      string           `json:"song"`
	Artist    string           `json:"artist"`
	Key       string           `json:"key"`
	Threshold float64          `json:"threshold"`
	Accepted  bool             `json:"accepted"`
	Result    *matching.Result `json:"result,omitempty"`
	Best      *bestCandidate   `json:"best,omitempty"`
}

type bestCandidate struct {
	Entry catalog.Entry `json:"entry"`
	Score float64       `json:"score"`
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var catalogPath string
	var threshold float64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "match <song> <artist>",
		Short: "Show how a song/artist pair resolves against the catalog",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("threshold") {
				cfg.Matching.Threshold = threshold
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			entries, _, err := catalog.LoadFile(catalogPath)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			matcher, err := pipeline.BuildMatcher(cfg, entries)
			if err != nil {
				return err
			}

			song, artist := args[0], args[1]
			result, ok, err := matcher.Match(song, artist)
			if err != nil {
				return err
			}
			out := matchOutput{
				Song:      song,
				Artist:    artist,
				Key:       matcher.QueryKey(song, artist),
				Threshold: matcher.Threshold(),
				Accepted:  ok,
			}
			if ok {
				out.Result = &result
			}
			if best, found := matcher.Best(song, artist); found {
				out.Best = &bestCandidate{Entry: best.Entry, Score: best.Score}
			}

			if asJSON {
				return writeJSON(cmd, out)
			}
			w := cmd.OutOrStdout()
			colors := newPalette(w)
			switch {
			case out.Accepted:
				fmt.Fprintf(w, "%s %s - %s [%s] score %.3f\n", colors.good.Sprint("Match:"),
					result.CanonicalSong, result.CanonicalArtist, result.MatchedID, result.Score)
			case out.Best != nil:
				fmt.Fprintf(w, "%s closest is %s - %s [%s] score %.3f, below threshold %.2f\n", colors.bad.Sprint("No match:"),
					out.Best.Entry.Song, out.Best.Entry.Artist, out.Best.Entry.ID, out.Best.Score, out.Threshold)
			default:
				fmt.Fprintf(w, "%s catalog is empty\n", colors.bad.Sprint("No match:"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&catalogPath, "catalog", "k", "", "Song catalog file (.json, .jsonl, .yaml)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Override matching.threshold")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}
