package cards

import "github.com/mcoot/spectrumgame-go/internal/model"

// Deck is a named set of spectrum cards
type Deck struct {
	Name  string
	Cards []model.Card
}

// DeckRandom picks a deck at random for every draw
const DeckRandom = "random"

// DefaultDeck is used when no deck has been chosen
const DefaultDeck = "classic"

var builtinDecks = []Deck{
	{
		Name: "classic",
		Cards: []model.Card{
			{Left: "Hot", Right: "Cold"},
			{Left: "Overrated", Right: "Underrated"},
			{Left: "Useless", Right: "Useful"},
			{Left: "Easy to spell", Right: "Hard to spell"},
			{Left: "Rough", Right: "Smooth"},
			{Left: "Forgettable", Right: "Memorable"},
			{Left: "Cheap", Right: "Expensive"},
			{Left: "Dry", Right: "Wet"},
			{Left: "Bad habit", Right: "Good habit"},
			{Left: "Mainstream", Right: "Niche"},
			{Left: "Fragile", Right: "Durable"},
			{Left: "Boring", Right: "Exciting"},
		},
	},
	{
		Name: "food",
		Cards: []model.Card{
			{Left: "Breakfast food", Right: "Dinner food"},
			{Left: "Bland", Right: "Spicy"},
			{Left: "Healthy", Right: "Unhealthy"},
			{Left: "Snack", Right: "Meal"},
			{Left: "Sweet", Right: "Savory"},
			{Left: "Messy to eat", Right: "Clean to eat"},
			{Left: "Comfort food", Right: "Fancy food"},
			{Left: "Crunchy", Right: "Soft"},
		},
	},
	{
		Name: "culture",
		Cards: []model.Card{
			{Left: "Bad movie", Right: "Good movie"},
			{Left: "Villain", Right: "Hero"},
			{Left: "Underground", Right: "Famous"},
			{Left: "Old-fashioned", Right: "Trendy"},
			{Left: "Guilty pleasure", Right: "Proud favorite"},
			{Left: "Cringe", Right: "Cool"},
			{Left: "Short-lived fad", Right: "Timeless classic"},
			{Left: "Sidekick", Right: "Main character"},
		},
	},
}

// Decks returns the names of the built-in decks
func Decks() []string {
	names := make([]string, len(builtinDecks))
	for i, d := range builtinDecks {
		names[i] = d.Name
	}
	return names
}

// ValidDeck reports whether name selects a built-in deck or the random deck
func ValidDeck(name string) bool {
	if name == DeckRandom {
		return true
	}
	_, ok := findDeck(name)
	return ok
}

func findDeck(name string) (Deck, bool) {
	for _, d := range builtinDecks {
		if d.Name == name {
			return d, true
		}
	}
	return Deck{}, false
}
