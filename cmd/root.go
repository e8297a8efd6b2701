// Package cmd contains the CLI entry points.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "schoolmind",
	Short: "SchoolMind - AI assistant service for schools",
	Long: `SchoolMind is an AI assistant service for school management platforms.
It answers questions from students, teachers, and administrators,
grounded in school data through tool calls, with persistent
conversation sessions.

Running schoolmind without a subcommand starts the HTTP server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
