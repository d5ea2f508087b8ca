package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
	out    *Output
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "spectrum",
		Short: "Play the dial guessing party game from a terminal",
		Long: `spectrum joins a game room on a record store server and plays it.

One participant gives a clue for where a hidden target sits between two
opposing concepts; the others turn the dial to guess it. Every command reads
the shared room, acts and exits; the room you are in is remembered between
commands.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			out = NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())

			var err error
			client, err = NewClient(cmd.Context(), cfg, cmd.ErrOrStderr())
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if client == nil {
				return nil
			}
			return client.Close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: SPECTRUM_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.IdentityFile, "identity-file", cfg.IdentityFile, "Identity file path (env: SPECTRUM_IDENTITY_FILE)")
	rootCmd.PersistentFlags().StringVar(&cfg.StateFile, "state-file", cfg.StateFile, "Room state file path (env: SPECTRUM_STATE_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newIdentityCmd())
	rootCmd.AddCommand(newRoomCmd())
	rootCmd.AddCommand(newClueCmd())
	rootCmd.AddCommand(newGuessCmd())
	rootCmd.AddCommand(newCardCmd())
	rootCmd.AddCommand(newRoundCmd())
	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newDecksCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newQRCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if out == nil {
			out = NewOutput(cfg.Output, os.Stdout, os.Stderr)
		}
		out.PrintError(err)
		os.Exit(1)
	}
}
