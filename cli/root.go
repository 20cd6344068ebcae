// Package cli wires the command tree. The engine stays pure; logging and
// file I/O happen here.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// New builds the root command.
func New() *cobra.Command {
	root := &cobra.Command{
		Use:           "pzero",
		Short:         "Replay sell-only portfolio rulesets over historical prices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

// Execute runs the CLI and exits with the command's status code.
func Execute() {
	if err := New().Execute(); err != nil {
		log := logger()
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func logger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}
