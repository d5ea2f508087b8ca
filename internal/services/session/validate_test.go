package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/services/identity"
)

func TestResolveIdentity(t *testing.T) {
	ctx := context.Background()

	id, err := ResolveIdentity(ctx, identity.Fixed("alice"))
	require.NoError(t, err)
	assert.Equal(t, model.PlayerID("alice"), id)

	pending := identity.Pending("bob")
	_, err = ResolveIdentity(ctx, pending)
	assert.ErrorIs(t, err, model.ErrIdentityNotReady)

	pending.Resolve()
	id, err = ResolveIdentity(ctx, pending)
	require.NoError(t, err)
	assert.Equal(t, model.PlayerID("bob"), id)
}

func TestValidateName(t *testing.T) {
	name, err := ValidateName("  Alice ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)

	_, err = ValidateName("   ")
	assert.ErrorIs(t, err, model.ErrEmptyName)
}

func TestParseRoomCode(t *testing.T) {
	code, err := ParseRoomCode(" abcd ")
	require.NoError(t, err)
	assert.Equal(t, model.RoomCode("ABCD"), code)

	for _, bad := range []string{"", "ABC", "ABCDE", "AB1D", "AB D"} {
		_, err := ParseRoomCode(bad)
		assert.ErrorIs(t, err, model.ErrInvalidRoomCode, bad)
	}
}

func TestValidateAngle(t *testing.T) {
	assert.NoError(t, ValidateAngle(0))
	assert.NoError(t, ValidateAngle(180))
	assert.ErrorIs(t, ValidateAngle(-1), model.ErrInvalidAngle)
	assert.ErrorIs(t, ValidateAngle(181), model.ErrInvalidAngle)
}

func TestValidateClueAndCard(t *testing.T) {
	clue, err := ValidateClue(" Coffee ")
	require.NoError(t, err)
	assert.Equal(t, "Coffee", clue)

	_, err = ValidateClue("")
	assert.ErrorIs(t, err, model.ErrEmptyClue)

	card, err := ValidateCard(" Ugly", "Pretty ")
	require.NoError(t, err)
	assert.Equal(t, model.Card{Left: "Ugly", Right: "Pretty"}, card)

	_, err = ValidateCard("Ugly", " ")
	assert.ErrorIs(t, err, model.ErrEmptyCardLabel)
}
