package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/handiism/soundcloud-downloader/internal/download"
)

func newClientIDCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "client-id",
		Short: "Discover and print a working client_id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, logger, err := opts.setup(cmd, func(download.ProgressEvent) {})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			id, err := m.Client().ClientID(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newResolveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <url>",
		Short: "Resolve a track or playlist URL and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, logger, err := opts.setup(cmd, func(download.ProgressEvent) {})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			res, err := m.Client().Resolve(cmd.Context(), args[0])
			if res != nil {
				// An incomplete playlist is still printed before the error.
				if encErr := writeJSON(cmd, res); encErr != nil {
					return encErr
				}
			}
			return err
		},
	}
}
