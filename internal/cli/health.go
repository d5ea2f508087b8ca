package cli

import (
	"time"

	"github.com/spf13/cobra"
)

// HealthResult is the server health as seen from this client
type HealthResult struct {
	Server    string `json:"server"`
	Status    string `json:"status"`
	Storage   string `json:"storage"`
	LatencyMS int64  `json:"latency_ms"`
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the room store is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			health, err := client.Health(cmd.Context())
			if err != nil {
				return err
			}

			out.Print(HealthResult{
				Server:    cfg.ServerURL,
				Status:    health.Status,
				Storage:   health.Storage,
				LatencyMS: time.Since(start).Milliseconds(),
			})
			return nil
		},
	}
}
