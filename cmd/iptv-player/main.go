package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/alorle/iptv-player/cmd/iptv-player/cmds"
)

func main() {
	cobra.CheckErr(cmds.NewRootCLI().ExecuteContext(context.Background()))
}
