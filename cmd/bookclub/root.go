// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the bookclub CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookclub",
		Short: "Bookclub - a book tracking API server",
		Long: `Bookclub is an API server for tracking books: user accounts with
token authentication, exclusive reading shelves, public profiles, and a
Google Books search proxy.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
