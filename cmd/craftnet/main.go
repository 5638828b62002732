// Command craftnet queries and joins Minecraft 1.16.5 servers.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linchenxuan/craftnet"
	"github.com/linchenxuan/craftnet/config"
	"github.com/linchenxuan/craftnet/log"
)

type globalFlags struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "craftnet",
		Short:         "Minecraft protocol client",
		Long:          "craftnet speaks the Minecraft 1.16.5 protocol (754): it pings servers and logs in offline players.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "TOML config file")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	root.AddCommand(
		pingCmd(g),
		joinCmd(g),
		versionCmd(),
	)
	return root
}

// loadApp builds the app from --config and applies --log-level on top.
func loadApp(g *globalFlags) (*craftnet.App, error) {
	file := config.Empty()
	if g.configPath != "" {
		f, err := config.Load(g.configPath)
		if err != nil {
			return nil, err
		}
		file = f
	}
	app, err := craftnet.New(file)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		app.Log.LogLevel = log.ParseLevel(g.logLevel)
		if err := log.Initialize(app.Log); err != nil {
			_ = app.Stop()
			return nil, err
		}
	}
	return app, nil
}
