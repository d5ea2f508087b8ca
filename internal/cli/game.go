package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/services/cards"
)

func parseAngle(s string) (int, error) {
	angle, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid angle %q: %w", s, model.ErrInvalidAngle)
	}
	return angle, nil
}

func newClueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clue",
		Short: "Psychic commands for giving the clue",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "give <clue...>",
		Short: "Give a typed clue and open guessing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clue := strings.Join(args, " ")
			return inRoom(func(ctx context.Context, ctl roomController) error {
				return ctl.SubmitClue(ctx, clue)
			})(cmd, args)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "skip",
		Short: "Give the clue out loud and open guessing",
		RunE: inRoom(func(ctx context.Context, ctl roomController) error {
			return ctl.SkipClue(ctx)
		}),
	})

	return cmd
}

func newGuessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guess",
		Short: "Guesser commands for turning the dial",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <angle>",
		Short: "Move the dial without locking in (0 to 180)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			angle, err := parseAngle(args[0])
			if err != nil {
				return err
			}
			return inRoom(func(ctx context.Context, ctl roomController) error {
				return ctl.UpdateGuessAngle(ctx, angle)
			})(cmd, args)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "lock <angle>",
		Short: "Lock in your guess (0 to 180)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			angle, err := parseAngle(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := client.Resume(ctx); err != nil {
				return err
			}

			result := GuessResult{Angle: angle}
			if client.State().Mode == model.GameModeParty {
				result.Revealed, err = client.session.Party.LockInGuess(ctx, angle)
			} else {
				var points int
				points, err = client.session.Classic.FinalizeGuess(ctx, angle)
				result.Revealed = true
				result.Points = &points
			}
			if errors.Is(err, model.ErrScoreNotRecorded) {
				// The reveal stands; `score add` credits the points
				return errors.Join(err, client.Save())
			}
			if err != nil {
				return err
			}

			if err := client.Save(); err != nil {
				return err
			}
			out.Print(result)
			return nil
		},
	})

	return cmd
}

func newCardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Change the card before the clue is given",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "custom <left> <right>",
		Short: "Replace the card with your own pair of concepts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inRoom(func(ctx context.Context, ctl roomController) error {
				return ctl.SetCustomCard(ctx, args[0], args[1])
			})(cmd, args)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "change",
		Short: "Draw a different card from your deck",
		RunE: inRoom(func(ctx context.Context, ctl roomController) error {
			return ctl.ChangeCard(ctx)
		}),
	})

	return cmd
}

func newRoundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "round",
		Short: "Round commands",
	}

	var deck string
	next := &cobra.Command{
		Use:   "next",
		Short: "Start the next round once the current one is revealed",
		RunE: inRoom(func(ctx context.Context, ctl roomController) error {
			return ctl.NextRound(ctx, deck)
		}),
	}
	next.Flags().StringVar(&deck, "deck", "", "Deck for this round only")
	cmd.AddCommand(next)

	return cmd
}

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Classic score commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <points>",
		Short: "Add points to the counter of the seat you sit in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid points %q", args[0])
			}
			return inRoom(func(ctx context.Context, ctl roomController) error {
				if client.State().Mode != model.GameModeClassic {
					return model.ErrWrongGameMode
				}
				return client.session.Classic.UpdateScore(ctx, points)
			})(cmd, args)
		},
	})

	return cmd
}

func newDecksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decks",
		Short: "List the card decks",
		RunE: func(cmd *cobra.Command, args []string) error {
			out.Print(append(cards.Decks(), cards.DeckRandom))
			return nil
		},
	}
}
