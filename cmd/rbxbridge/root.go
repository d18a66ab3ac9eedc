package main

import (
	"os"

	"github.com/rbxbridge/rbxbridge/internal/client"
	"github.com/rbxbridge/rbxbridge/internal/config"
	"github.com/rbxbridge/rbxbridge/internal/logger"
	"github.com/spf13/cobra"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configFile string
	server     string
	token      string
	debug      bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:           "rbxbridge",
		Short:         "Bridge between a script editor and running Roblox places",
		Long:          "rbxbridge queues scripts from an editor and hands them to the Roblox places that poll it, keeping track of which place and execution context is targeted.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "path to rbxbridge.toml")
	pf.StringVar(&flags.server, "server", "", "bridge URL for client commands (default $RBXBRIDGE_URL or http://127.0.0.1:9999)")
	pf.StringVar(&flags.token, "token", "", "editor token (default $RBXBRIDGE_TOKEN)")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newServeCmd(flags),
		newExecCmd(flags),
		newTargetCmd(flags),
		newPlacesCmd(flags),
		newStatusCmd(flags),
		newTokenCmd(flags),
	)
	return rootCmd
}

// load reads configuration, applying flags the user set explicitly, and
// configures logging from it.
func (f *globalFlags) load(cmd *cobra.Command) (*config.Config, error) {
	var overrides config.Overrides
	if cmd.Flags().Changed("server") {
		overrides.ServerURL = &f.server
	}
	if cmd.Flags().Changed("debug") {
		overrides.Debug = &f.debug
	}

	cfg, err := config.Load(f.configFile, overrides)
	if err != nil {
		return nil, err
	}
	logger.SetFormat(cfg.LogFormat)
	if cfg.Debug {
		logger.SetLevel(logger.LevelDebug)
	}
	return cfg, nil
}

// client builds an API client for the configured server.
func (f *globalFlags) client(cmd *cobra.Command) (*client.Client, error) {
	cfg, err := f.load(cmd)
	if err != nil {
		return nil, err
	}
	token := f.token
	if token == "" {
		token = os.Getenv("RBXBRIDGE_TOKEN")
	}
	return client.New(cfg.ServerURL, token), nil
}
