package main

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/luxury-retail/productlist/internal/app"
	"github.com/luxury-retail/productlist/internal/logging"
)

type rootFlags struct {
	configPath string
	prefsPath  string
	envFile    string
	offline    bool
	ephemeral  bool
	poll       time.Duration
}

func (f *rootFlags) options() app.Options {
	return app.Options{
		ConfigPath: f.configPath,
		PrefsPath:  f.prefsPath,
		EnvFile:    f.envFile,
		Offline:    f.offline,
		Ephemeral:  f.ephemeral,
		PollEvery:  f.poll,
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "productlist",
		Short: "Browse the luxury product catalog",
		Long: `productlist shows the product catalog with search and category filters.

Products are served from the local cache and fall back to the built-in
collection when it is empty. Requests captured while offline are replayed
when connectivity returns.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), flags.options())
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "config file path (default ~/.config/productlist/config.toml)")
	pf.StringVar(&flags.prefsPath, "prefs", "", "preferences file path (default ~/.config/productlist/prefs.toml)")
	pf.StringVar(&flags.envFile, "env-file", "", "dotenv file loaded before the config (default ./.env)")
	pf.BoolVar(&flags.offline, "offline", false, "start with the network pinned offline")
	pf.BoolVar(&flags.ephemeral, "ephemeral", false, "keep the cache in memory for this run only")
	pf.DurationVar(&flags.poll, "poll", 0, "offline queue poll interval (default 2s)")

	rootCmd.AddCommand(
		newListCmd(flags),
		newSyncCmd(flags),
		newEnqueueCmd(flags),
		newLogsCmd(flags),
		newBridgeSimCmd(),
	)
	return rootCmd
}

// openRuntime assembles the components for a headless command, logging to stderr.
func openRuntime(ctx context.Context, flags *rootFlags, stderr io.Writer) (*app.Runtime, error) {
	opts := flags.options()
	cfg, err := app.LoadConfig(opts)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	log := logging.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}, level)
	return app.Open(logging.WithContext(ctx, log), cfg, opts, log)
}
