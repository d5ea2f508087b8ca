package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/spectrumgame-go/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// IdentityResult is the local participant's identity
type IdentityResult struct {
	PlayerID model.PlayerID `json:"player_id"`
	File     string         `json:"file"`
}

// GuessResult reports a locked guess
type GuessResult struct {
	Angle    int  `json:"angle"`
	Revealed bool `json:"revealed"`
	Points   *int `json:"points,omitempty"`
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error, with a hint for errors a participant can act on
func (o *Output) PrintError(err error) {
	hint, hasHint := model.LookupUserMessage(err)
	if o.format == "json" {
		errData := map[string]string{"message": err.Error()}
		if hasHint {
			errData["hint"] = hint
		}
		data, _ := json.Marshal(map[string]any{"error": errData})
		_, _ = fmt.Fprintln(o.errW, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errW, "Error: %s\n", err)
		if hasHint {
			_, _ = fmt.Fprintln(o.errW, hint)
		}
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case RoomView:
		o.printRoom(v)
	case IdentityResult:
		_, _ = fmt.Fprintf(o.w, "Player: %s\nIdentity file: %s\n", v.PlayerID, v.File)
	case GuessResult:
		o.printGuess(v)
	case HealthResult:
		_, _ = fmt.Fprintf(o.w, "Server: %s\nStatus: %s\nStorage: %s\nLatency: %dms\n",
			v.Server, v.Status, v.Storage, v.LatencyMS)
	case []string:
		for _, s := range v {
			_, _ = fmt.Fprintln(o.w, s)
		}
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printRoom(v RoomView) {
	w := o.w
	if v.RoomID == "" {
		_, _ = fmt.Fprintln(w, "Not in a room")
		return
	}

	_, _ = fmt.Fprintf(w, "Room: %s (%s)\n", v.RoomCode, v.Mode)
	if v.TotalRounds > 0 {
		_, _ = fmt.Fprintf(w, "Round: %d of %d\n", v.Round, v.TotalRounds)
	} else {
		_, _ = fmt.Fprintf(w, "Round: %d\n", v.Round)
	}
	_, _ = fmt.Fprintf(w, "Phase: %s\n", v.Phase)
	_, _ = fmt.Fprintf(w, "You are: %s\n", v.Role)
	_, _ = fmt.Fprintf(w, "Card: %s <---> %s\n", v.Card.Left, v.Card.Right)
	if v.Clue != nil {
		_, _ = fmt.Fprintf(w, "Clue: %s\n", *v.Clue)
	}

	_, _ = fmt.Fprintln(w, dial(v.GuessAngle, v.TargetAngle))
	_, _ = fmt.Fprintf(w, "Guess: %d\n", v.GuessAngle)
	if v.TargetAngle != nil {
		_, _ = fmt.Fprintf(w, "Target: %d\n", *v.TargetAngle)
	}
	if v.Points != nil {
		_, _ = fmt.Fprintf(w, "Points: %d\n", *v.Points)
	}

	if len(v.Players) > 0 {
		_, _ = fmt.Fprintf(w, "Players (%d):\n", len(v.Players))
		for _, p := range v.Players {
			you := ""
			if p.PlayerID == v.Me {
				you = " [you]"
			}
			status := ""
			if v.Mode == model.GameModeParty && p.Role == roleGuesser {
				status = " waiting"
				if p.LockedIn {
					status = " locked in"
				}
				if p.GuessAngle != nil {
					status += fmt.Sprintf(" at %d", *p.GuessAngle)
				}
			}
			_, _ = fmt.Fprintf(w, "  - %s (%s)%s%s\n", p.Name, p.Role, status, you)
		}
	}
	if v.NextPsychic != "" {
		_, _ = fmt.Fprintf(w, "Next psychic: %s\n", v.NextPsychic)
	}

	_, _ = fmt.Fprintln(w, "Scores:")
	for _, s := range v.Scores {
		_, _ = fmt.Fprintf(w, "  %s: %d\n", s.Label, s.Score)
	}
}

func (o *Output) printGuess(g GuessResult) {
	_, _ = fmt.Fprintf(o.w, "Guess locked at %d\n", g.Angle)
	if g.Revealed {
		_, _ = fmt.Fprintln(o.w, "Round revealed!")
	} else {
		_, _ = fmt.Fprintln(o.w, "Waiting for the other guessers")
	}
	if g.Points != nil {
		_, _ = fmt.Fprintf(o.w, "Points: %d\n", *g.Points)
	}
}

// dialWidth is the number of cells the 0..180 dial is drawn with
const dialWidth = 37

// dial draws the dial with the guess as | and the target as * when known
func dial(guess int, target *int) string {
	cells := []rune(strings.Repeat("-", dialWidth))
	cell := func(angle int) int {
		return angle * (dialWidth - 1) / model.MaxAngle
	}
	if target != nil && model.ValidAngle(*target) {
		cells[cell(*target)] = '*'
	}
	if model.ValidAngle(guess) {
		cells[cell(guess)] = '|'
	}
	return "[" + string(cells) + "]"
}
