package cli

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/poller"
)

func newWatchCmd() *cobra.Command {
	var (
		interval time.Duration
		noPush   bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the room until the game ends",
		Long: `Follow the current room, printing it every time it changes.

The room is polled at a fixed interval. Unless --no-push is given, change
notifications from the server trigger an immediate poll as well. Watching
stops when the game ends or on Ctrl+C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := client.Resume(ctx); err != nil {
				return err
			}
			st := client.State()

			p := client.session.Poller(ctx, st.Mode, st.RoomID, poller.Config{
				Interval:    interval,
				StopOnEnded: true,
			})

			var last string
			p.Subscribe(func(model.Snapshot) {
				view := client.View()
				key, _ := json.Marshal(view)
				if string(key) == last {
					return
				}
				last = string(key)
				out.Print(view)
				if err := client.Save(); err != nil {
					client.logger.Warn("failed to save state", slog.String("error", err.Error()))
				}
			})

			if !noPush {
				listener := poller.NewSSEListener(cfg.ServerURL, st.RoomID, client.PlayerID(), client.logger)
				listenCtx, cancel := context.WithCancel(ctx)
				defer cancel()
				go listener.Run(listenCtx, p.Trigger)
			}

			err := p.Run(ctx)
			if saveErr := client.Save(); saveErr != nil {
				return saveErr
			}
			if err != nil && ctx.Err() != nil {
				// Interrupted
				return nil
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", poller.DefaultConfig().Interval, "Polling interval")
	cmd.Flags().BoolVar(&noPush, "no-push", false, "Poll only, ignoring server change notifications")

	return cmd
}
