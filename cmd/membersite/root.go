// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/tomripp/member-website-sub001/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the membersite CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "membersite",
		Short: "Membersite - session and authentication backend",
		Long: `Membersite serves the authentication API and guards the
localized members area of the website.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			// Fall back to the XDG config file when --config is not given.
			if configFile == "" {
				configFile = xdg.DefaultConfigFile()
			}
		},
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewCertsCmd())

	return cmd
}
