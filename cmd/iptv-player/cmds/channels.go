package cmds

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func NewChannelsCLI() *cobra.Command {
	return &cobra.Command{
		Use:   "channels",
		Short: "List the stored channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.close()

			channels, err := st.channels.FindAll(cmd.Context())
			if err != nil {
				return err
			}
			prefs, err := st.prefs.Get(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NUMBER\tNAME\tGROUP\tORIGIN\tURL")
			for _, ch := range channels {
				marker := ""
				if ch.Number() == prefs.LastChannelNumber() {
					marker = " *"
				}
				fmt.Fprintf(w, "%d%s\t%s\t%s\t%s\t%s\n", ch.Number(), marker, ch.Name(), ch.GroupTitle(), ch.Origin(), ch.StreamURL())
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if prefs.HasPlaylist() {
				fmt.Fprintf(out, "\nplaylist: %s\n", prefs.PlaylistSource())
			}
			return nil
		},
	}
}
