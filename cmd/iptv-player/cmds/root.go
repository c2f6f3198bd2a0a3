package cmds

import (
	"github.com/spf13/cobra"

	"github.com/alorle/iptv-player/internal/config"
)

var cfgFile string

// NewRootCLI builds the iptv-player command tree.
func NewRootCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "iptv-player",
		Short:         "IPTV player driven by an M3U playlist and a remote control",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.AddCommand(NewServeCLI())
	rootCmd.AddCommand(NewParseCLI())
	rootCmd.AddCommand(NewChannelsCLI())
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to the YAML config file (default $CONFIG_FILE or "+config.DefaultPath+")")

	return rootCmd
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}
