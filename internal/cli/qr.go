package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/spectrumgame-go/internal/share"
)

func newQRCmd() *cobra.Command {
	var (
		joinURL string
		pngFile string
		size    int
	)

	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Show a QR code others can scan to join your room",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := client.State()
			if !st.InRoom() {
				return errNoRoom
			}

			if pngFile != "" {
				png, err := share.PNG(joinURL, st.RoomCode, size)
				if err != nil {
					return err
				}
				if err := os.WriteFile(pngFile, png, 0644); err != nil {
					return err
				}
				out.PrintMessage("Wrote " + pngFile)
				return nil
			}

			code, err := share.Terminal(joinURL, st.RoomCode)
			if err != nil {
				return err
			}
			_, _ = cmd.OutOrStdout().Write([]byte(code))
			out.PrintMessage(share.JoinURL(joinURL, st.RoomCode))
			return nil
		},
	}

	cmd.Flags().StringVar(&joinURL, "join-url", "", "Page the code links to (default: the bare room code)")
	cmd.Flags().StringVar(&pngFile, "png", "", "Write a PNG image to this file instead")
	cmd.Flags().IntVar(&size, "size", share.DefaultSize, "PNG edge length in pixels")

	return cmd
}
