package session

import (
	"context"
	"errors"
	"strings"

	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/services/identity"
)

// ResolveIdentity returns the local participant's identity. An identity that
// is still being created is reported as ErrIdentityNotReady.
func ResolveIdentity(ctx context.Context, provider identity.Provider) (model.PlayerID, error) {
	id, err := provider.GetOrCreate(ctx)
	if err != nil {
		if errors.Is(err, model.ErrIdentityNotReady) {
			return "", err
		}
		return "", errors.Join(model.ErrIdentityNotReady, err)
	}
	if id == "" {
		return "", model.ErrIdentityNotReady
	}
	return id, nil
}

// ValidateName trims a display name and rejects blank ones
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", model.ErrEmptyName
	}
	return name, nil
}

// ParseRoomCode normalizes user input into a room code
func ParseRoomCode(input string) (model.RoomCode, error) {
	code := model.NormalizeRoomCode(input)
	if !code.Valid() {
		return "", model.ErrInvalidRoomCode
	}
	return code, nil
}

// ValidateAngle rejects dial positions outside [0, 180]
func ValidateAngle(angle int) error {
	if !model.ValidAngle(angle) {
		return model.ErrInvalidAngle
	}
	return nil
}

// ValidateClue trims a clue and rejects blank ones
func ValidateClue(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", model.ErrEmptyClue
	}
	return text, nil
}

// ValidateCard builds a custom card from two labels
func ValidateCard(left, right string) (model.Card, error) {
	left = strings.TrimSpace(left)
	right = strings.TrimSpace(right)
	if left == "" || right == "" {
		return model.Card{}, model.ErrEmptyCardLabel
	}
	return model.Card{Left: left, Right: right}, nil
}
