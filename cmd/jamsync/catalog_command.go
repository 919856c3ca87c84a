package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"jamsync/internal/catalog"
	"jamsync/internal/pipeline"
)

type catalogOutput struct {
	Path       string            `json:"path"`
	Stats      catalog.LoadStats `json:"stats"`
	Normalizer string            `json:"normalizer"`
	Tag        string            `json:"tag,omitempty"`
	Tags       map[string]int    `json:"tags"`
	Entries    []catalog.Entry   `json:"entries"`
}

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	var tag string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "catalog <file>",
		Short: "Inspect a song catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("tag") {
				cfg.Matching.RequiredTag = strings.TrimSpace(tag)
			}
			entries, stats, err := catalog.LoadFile(args[0])
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			matcher, err := pipeline.BuildMatcher(cfg, entries)
			if err != nil {
				return err
			}
			c := matcher.Catalog()

			out := catalogOutput{
				Path:       args[0],
				Stats:      stats,
				Normalizer: c.Normalizer().Name(),
				Tag:        cfg.Matching.RequiredTag,
				Tags:       c.TagCounts(),
				Entries:    c.Entries(),
			}
			if limit > 0 && len(out.Entries) > limit {
				out.Entries = out.Entries[:limit]
			}
			if asJSON {
				return writeJSON(cmd, out)
			}

			w := cmd.OutOrStdout()
			colors := newPalette(w)
			fmt.Fprintf(w, "%s %s\n", colors.heading.Sprint("Catalog"), out.Path)
			fmt.Fprintf(w, "Records: %d read, %d kept, %d incomplete, %d invalid\n",
				stats.Records, stats.Kept(), stats.Incomplete, stats.Invalid)
			if out.Tag != "" {
				fmt.Fprintf(w, "Tag filter: %s (%d entries)\n", out.Tag, c.Len())
			}

			if len(out.Tags) > 0 {
				names := make([]string, 0, len(out.Tags))
				for name := range out.Tags {
					names = append(names, name)
				}
				sort.Strings(names)
				rows := make([][]string, 0, len(names))
				for _, name := range names {
					rows = append(rows, []string{name, strconv.Itoa(out.Tags[name])})
				}
				fmt.Fprintln(w)
				fmt.Fprintln(w, renderTable([]string{"Tag", "Entries"}, rows, []columnAlignment{alignLeft, alignRight}))
			}

			rows := make([][]string, 0, len(out.Entries))
			for _, e := range out.Entries {
				rows = append(rows, []string{e.ID, e.Song, e.Artist, strings.Join(e.Tags, ", ")})
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, renderTable([]string{"ID", "Song", "Artist", "Tags"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "Only show entries carrying this tag (overrides matching.required_tag)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum entries to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
