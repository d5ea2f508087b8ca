package scoring

// Band is one scoring ring around the target
type Band struct {
	MaxDistance int // inclusive
	Points      int
}

var bands = []Band{
	{MaxDistance: 5, Points: 4},
	{MaxDistance: 13, Points: 3},
	{MaxDistance: 19, Points: 2},
}

// MaxPoints is the best score available in a single round
const MaxPoints = 4

// Bands returns the scoring rings from innermost outward
func Bands() []Band {
	out := make([]Band, len(bands))
	copy(out, bands)
	return out
}

// Distance is the absolute difference between two dial positions
func Distance(target, guess int) int {
	d := target - guess
	if d < 0 {
		return -d
	}
	return d
}

// Score converts a guess into points. The result is symmetric in its
// arguments and depends only on their distance.
func Score(target, guess int) int {
	d := Distance(target, guess)
	for _, b := range bands {
		if d <= b.MaxDistance {
			return b.Points
		}
	}
	return 0
}
