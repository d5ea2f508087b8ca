package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/services/session"
)

// inRoom resumes the saved room, runs fn against it, saves the state and
// prints the resulting view
func inRoom(fn func(ctx context.Context, ctl roomController) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := client.Resume(ctx); err != nil {
			return err
		}
		if err := fn(ctx, client.controller()); err != nil {
			return err
		}
		if err := client.Save(); err != nil {
			return err
		}
		out.Print(client.View())
		return nil
	}
}

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomShowCmd())
	cmd.AddCommand(newRoomStartCmd())
	cmd.AddCommand(newRoomEndCmd())
	cmd.AddCommand(newRoomLeaveCmd())
	cmd.AddCommand(newRoomSettingsCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var (
		name     string
		avatar   string
		party    bool
		settings session.Settings
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a room and become its first psychic",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := settings.Validate(); err != nil {
				return err
			}
			client.State().Settings = settings
			if err := client.applySettings(); err != nil {
				return err
			}

			var (
				room *model.Room
				err  error
			)
			if party {
				room, err = client.session.Party.CreateRoom(ctx, name, avatar)
			} else {
				room, err = client.session.Classic.CreateRoom(ctx, name, avatar)
			}
			if err != nil {
				return err
			}

			client.Enter(room)
			if err := client.Save(); err != nil {
				return err
			}
			out.Print(client.View())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Your display name")
	cmd.Flags().StringVar(&avatar, "avatar", "", "Your avatar")
	cmd.Flags().BoolVar(&party, "party", false, "Create a party room for any number of players")
	cmd.Flags().StringVar(&settings.Deck, "deck", session.DefaultSettings().Deck, "Deck to draw cards from")
	cmd.Flags().IntVar(&settings.TotalRounds, "rounds", 0, "End the game after this many rounds (0 for no limit)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newRoomJoinCmd() *cobra.Command {
	var (
		name   string
		avatar string
		party  bool
	)

	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a room by its code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := client.applySettings(); err != nil {
				return err
			}

			join := client.session.Classic.JoinRoom
			if party {
				join = client.session.Party.JoinRoom
			}
			room, err := join(ctx, args[0], name, avatar)
			if errors.Is(err, model.ErrWrongGameMode) {
				// The code belongs to a room of the other mode
				if party {
					room, err = client.session.Classic.JoinRoom(ctx, args[0], name, avatar)
				} else {
					room, err = client.session.Party.JoinRoom(ctx, args[0], name, avatar)
				}
			}
			if err != nil {
				return err
			}

			client.Enter(room)
			if err := client.Save(); err != nil {
				return err
			}
			out.Print(client.View())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Your display name")
	cmd.Flags().StringVar(&avatar, "avatar", "", "Your avatar")
	cmd.Flags().BoolVar(&party, "party", false, "Try the code as a party room first")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newRoomShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current room",
		RunE: inRoom(func(ctx context.Context, ctl roomController) error {
			return nil
		}),
	}
}

func newRoomStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game once enough players have joined",
		RunE: inRoom(func(ctx context.Context, ctl roomController) error {
			return ctl.StartGame(ctx)
		}),
	}
}

func newRoomEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end",
		Short: "End the game for everyone",
		RunE: inRoom(func(ctx context.Context, ctl roomController) error {
			return ctl.EndGame(ctx)
		}),
	}
}

func newRoomLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Leave the current room",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			err := client.Resume(ctx)
			switch {
			case err == nil:
				if err := client.controller().LeaveRoom(ctx); err != nil && !errors.Is(err, model.ErrNotInRoom) {
					return err
				}
			case errors.Is(err, errNoRoom):
				return err
			default:
				// The room is gone or no longer ours; just forget it
			}

			if err := client.Forget(); err != nil {
				return err
			}
			out.PrintMessage("Left the room")
			return nil
		},
	}
}

func newRoomSettingsCmd() *cobra.Command {
	var (
		deck   string
		rounds int
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Change your local deck and round limit",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := client.State().Settings
			if cmd.Flags().Changed("deck") {
				settings.Deck = deck
			}
			if cmd.Flags().Changed("rounds") {
				settings.TotalRounds = rounds
			}
			if err := settings.Validate(); err != nil {
				return err
			}
			client.State().Settings = settings
			if err := client.Save(); err != nil {
				return err
			}
			out.Print(settings)
			return nil
		},
	}

	cmd.Flags().StringVar(&deck, "deck", "", "Deck to draw cards from")
	cmd.Flags().IntVar(&rounds, "rounds", 0, "End the game after this many rounds (0 for no limit)")

	return cmd
}
