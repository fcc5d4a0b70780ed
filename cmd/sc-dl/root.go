package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/handiism/soundcloud-downloader/internal/config"
	"github.com/handiism/soundcloud-downloader/internal/download"
	"github.com/handiism/soundcloud-downloader/internal/logging"
)

type rootOptions struct {
	configPath string
	output     string
	playlist   bool
	verbose    bool
	dryRun     bool
	clientID   string
	logFormat  string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "sc-dl [urls...]",
		Short: "Download tracks and playlists from SoundCloud",
		Long: `Download tracks and playlists from SoundCloud as tagged MP3 files.

Each argument is a track or playlist URL. Arguments may also hold several
whitespace separated URLs. For interactive mode, use sc-tui.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runDownload(cmd, opts, args)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Configuration file path (.json, .yaml or .toml)")
	flags.StringVar(&opts.clientID, "client-id", "", "Use this client_id instead of discovering one")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format: console or json")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output directory (overrides config)")
	rootCmd.Flags().BoolVar(&opts.playlist, "playlist", false, "Create a playlist file for each playlist")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show verbose output")
	rootCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Resolve URLs without downloading")

	rootCmd.AddCommand(newClientIDCommand(opts))
	rootCmd.AddCommand(newResolveCommand(opts))

	return rootCmd
}

// settings loads the configuration file and applies command line overrides.
func (o *rootOptions) settings() (*config.Settings, error) {
	settings := config.DefaultSettings()
	if path := strings.TrimSpace(o.configPath); path != "" {
		var err error
		if settings, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if o.output != "" {
		settings.DownloadsPath = filepath.Join(o.output, "{artist}", "{playlist}")
	}
	if o.playlist {
		settings.CreatePlaylist = true
	}
	if o.clientID != "" {
		settings.SoundCloud.ClientID = o.clientID
	}
	if o.logFormat != "" {
		settings.LogFormat = o.logFormat
	}
	if o.logLevel != "" {
		settings.LogLevel = o.logLevel
	}
	return settings, nil
}

func (o *rootOptions) logger(cmd *cobra.Command, settings *config.Settings) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Level:     settings.LogLevel,
		Format:    settings.LogFormat,
		Output:    cmd.ErrOrStderr(),
		SessionID: logging.NewSessionID(),
	})
}

// setup loads settings and builds a logger and a manager reporting to
// onProgress.
func (o *rootOptions) setup(cmd *cobra.Command, onProgress func(download.ProgressEvent)) (*download.Manager, *zap.Logger, error) {
	settings, err := o.settings()
	if err != nil {
		return nil, nil, err
	}
	logger, err := o.logger(cmd, settings)
	if err != nil {
		return nil, nil, err
	}
	m, err := download.NewManager(settings, onProgress, download.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return m, logger, nil
}

func runDownload(cmd *cobra.Command, opts *rootOptions, args []string) error {
	ctx := cmd.Context()
	p := newPrinter(cmd.OutOrStdout(), opts.verbose)

	m, logger, err := opts.setup(cmd, p.event)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	p.banner()

	if err := m.Initialize(ctx, strings.Join(args, "\n")); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if len(m.Collections()) == 0 {
		return fmt.Errorf("nothing to download")
	}

	if opts.dryRun {
		p.dryRun(m.GetCollectionNames())
		return nil
	}

	p.section("Starting downloads...")
	err = m.StartDownloads(ctx)
	received, total, filesReceived, filesTotal := m.GetProgress()
	if ctx.Err() != nil {
		return context.Canceled
	}
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	p.summary(received, total, filesReceived, filesTotal)
	return nil
}
