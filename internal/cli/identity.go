package cli

import (
	"github.com/spf13/cobra"
)

func newIdentityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "identity",
		Short: "Show your anonymous player identity",
		Long: `Show your anonymous player identity, creating it on first use.

The identity is stored in the identity file and identifies you in every room
you create or join.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out.Print(IdentityResult{PlayerID: client.PlayerID(), File: cfg.IdentityFile})
			return nil
		},
	}
}
