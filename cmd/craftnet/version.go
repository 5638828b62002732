package main

import (
	"fmt"
	goruntime "runtime"

	"github.com/spf13/cobra"

	"github.com/linchenxuan/craftnet/network/protocol"
	"github.com/linchenxuan/craftnet/runtime"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "craftnet %s\n", runtime.String())
			fmt.Fprintf(w, "protocol %d\n", protocol.Version)
			fmt.Fprintf(w, "%s %s/%s\n", goruntime.Version(), goruntime.GOOS, goruntime.GOARCH)
		},
	}
}
