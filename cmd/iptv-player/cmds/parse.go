package cmds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alorle/iptv-player/internal/playlist"
)

func NewParseCLI() *cobra.Command {
	var verbose bool

	parseCmd := &cobra.Command{
		Use:   "parse <file|url>",
		Short: "Parse an M3U playlist and print the channels it yields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			source, _, err := newPlaylistSource(cfg, logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Playlist.FetchTimeout)
			defer cancel()

			content, err := source.Fetch(ctx, args[0])
			if err != nil {
				return err
			}

			result, err := playlist.Parse(content)
			if err != nil {
				var parseErr *playlist.ParseError
				if errors.As(err, &parseErr) && parseErr.Line > 0 {
					return fmt.Errorf("line %d: %w", parseErr.Line, err)
				}
				return err
			}

			return printParseResult(cmd.OutOrStdout(), result, verbose)
		},
	}

	parseCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list every skipped entry")

	return parseCmd
}

func printParseResult(out io.Writer, result playlist.Result, verbose bool) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tNAME\tGROUP\tURL")
	for _, ch := range result.Channels {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", ch.Number(), ch.Name(), ch.GroupTitle(), ch.StreamURL())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d channels, %d skipped lines\n", len(result.Channels), result.SkippedLines)
	if verbose {
		for _, s := range result.Skips {
			fmt.Fprintf(out, "  line %d: %s\n", s.Line, s.Reason)
		}
	}
	return nil
}
