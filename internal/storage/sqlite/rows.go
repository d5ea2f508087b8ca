package sqlite

import (
	"time"

	"github.com/mcoot/spectrumgame-go/internal/model"
)

type roomRow struct {
	ID           string  `gorm:"primaryKey;size:36"`
	RoomCode     string  `gorm:"size:4;not null;index:idx_rooms_code_created,priority:1"`
	PsychicID    string  `gorm:"not null"`
	GuesserID    *string
	TargetAngle  int     `gorm:"not null"`
	GuessAngle   int     `gorm:"not null;default:90"`
	Phase        string  `gorm:"size:16;not null"`
	CardLeft     string  `gorm:"not null"`
	CardRight    string  `gorm:"not null"`
	Clue         *string
	RoundNumber  int     `gorm:"not null;default:1"`
	PsychicScore int     `gorm:"not null;default:0"`
	GuesserScore int     `gorm:"not null;default:0"`
	GameMode     string  `gorm:"size:16;not null;default:classic"`

	Player1Name   *string
	Player1Avatar *string
	Player2Name   *string
	Player2Avatar *string

	CreatedAt time.Time `gorm:"index:idx_rooms_code_created,priority:2"`
	UpdatedAt time.Time
}

func (roomRow) TableName() string { return "rooms" }

// legacyRoomRow is the rooms table as deployed before the display metadata
// columns were added
type legacyRoomRow struct {
	ID           string `gorm:"primaryKey;size:36"`
	RoomCode     string `gorm:"size:4;not null;index:idx_rooms_code_created,priority:1"`
	PsychicID    string `gorm:"not null"`
	GuesserID    *string
	TargetAngle  int    `gorm:"not null"`
	GuessAngle   int    `gorm:"not null;default:90"`
	Phase        string `gorm:"size:16;not null"`
	CardLeft     string `gorm:"not null"`
	CardRight    string `gorm:"not null"`
	Clue         *string
	RoundNumber  int    `gorm:"not null;default:1"`
	PsychicScore int    `gorm:"not null;default:0"`
	GuesserScore int    `gorm:"not null;default:0"`
	GameMode     string `gorm:"size:16;not null;default:classic"`

	CreatedAt time.Time `gorm:"index:idx_rooms_code_created,priority:2"`
	UpdatedAt time.Time
}

func (legacyRoomRow) TableName() string { return "rooms" }

var metadataColumns = []string{"player1_name", "player1_avatar", "player2_name", "player2_avatar"}

type playerRow struct {
	ID         string `gorm:"primaryKey;size:36"`
	RoomID     string `gorm:"size:36;not null;uniqueIndex:idx_players_room_player,priority:1;index:idx_players_room_joined,priority:1"`
	PlayerID   string `gorm:"not null;uniqueIndex:idx_players_room_player,priority:2"`
	Name       string `gorm:"not null"`
	Avatar     string
	Role       string `gorm:"size:16;not null"`
	Score      int    `gorm:"not null;default:0"`
	GuessAngle *int
	LockedIn   bool      `gorm:"not null;default:false"`
	JoinedAt   time.Time `gorm:"index:idx_players_room_joined,priority:2"`
}

func (playerRow) TableName() string { return "players" }

func toRoomRow(r *model.Room) roomRow {
	row := roomRow{
		ID:            string(r.ID),
		RoomCode:      string(r.RoomCode),
		PsychicID:     string(r.PsychicID),
		TargetAngle:   r.TargetAngle,
		GuessAngle:    r.GuessAngle,
		Phase:         string(r.Phase),
		CardLeft:      r.CurrentCard.Left,
		CardRight:     r.CurrentCard.Right,
		Clue:          r.Clue,
		RoundNumber:   r.RoundNumber,
		PsychicScore:  r.PsychicScore,
		GuesserScore:  r.GuesserScore,
		GameMode:      string(r.GameMode),
		Player1Name:   r.Player1Name,
		Player1Avatar: r.Player1Avatar,
		Player2Name:   r.Player2Name,
		Player2Avatar: r.Player2Avatar,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.GuesserID != nil {
		g := string(*r.GuesserID)
		row.GuesserID = &g
	}
	return row
}

func (row roomRow) toModel() *model.Room {
	r := &model.Room{
		ID:            model.RoomID(row.ID),
		RoomCode:      model.RoomCode(row.RoomCode),
		PsychicID:     model.PlayerID(row.PsychicID),
		TargetAngle:   row.TargetAngle,
		GuessAngle:    row.GuessAngle,
		Phase:         model.Phase(row.Phase),
		CurrentCard:   model.Card{Left: row.CardLeft, Right: row.CardRight},
		Clue:          row.Clue,
		RoundNumber:   row.RoundNumber,
		PsychicScore:  row.PsychicScore,
		GuesserScore:  row.GuesserScore,
		GameMode:      model.GameMode(row.GameMode),
		Player1Name:   row.Player1Name,
		Player1Avatar: row.Player1Avatar,
		Player2Name:   row.Player2Name,
		Player2Avatar: row.Player2Avatar,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.GuesserID != nil {
		g := model.PlayerID(*row.GuesserID)
		r.GuesserID = &g
	}
	return r
}

// roomPatchColumns converts a patch into the column map gorm's Updates takes
func roomPatchColumns(p model.RoomPatch) map[string]any {
	cols := map[string]any{}
	if p.PsychicID != nil {
		cols["psychic_id"] = string(*p.PsychicID)
	}
	if p.GuesserID != nil {
		cols["guesser_id"] = string(*p.GuesserID)
	}
	if p.TargetAngle != nil {
		cols["target_angle"] = *p.TargetAngle
	}
	if p.GuessAngle != nil {
		cols["guess_angle"] = *p.GuessAngle
	}
	if p.Phase != nil {
		cols["phase"] = string(*p.Phase)
	}
	if p.CurrentCard != nil {
		cols["card_left"] = p.CurrentCard.Left
		cols["card_right"] = p.CurrentCard.Right
	}
	if p.ClearClue {
		cols["clue"] = nil
	}
	if p.Clue != nil {
		cols["clue"] = *p.Clue
	}
	if p.RoundNumber != nil {
		cols["round_number"] = *p.RoundNumber
	}
	if p.PsychicScore != nil {
		cols["psychic_score"] = *p.PsychicScore
	}
	if p.GuesserScore != nil {
		cols["guesser_score"] = *p.GuesserScore
	}
	if p.Player1Name != nil {
		cols["player1_name"] = *p.Player1Name
	}
	if p.Player1Avatar != nil {
		cols["player1_avatar"] = *p.Player1Avatar
	}
	if p.Player2Name != nil {
		cols["player2_name"] = *p.Player2Name
	}
	if p.Player2Avatar != nil {
		cols["player2_avatar"] = *p.Player2Avatar
	}
	return cols
}

func toPlayerRow(p *model.Player) playerRow {
	return playerRow{
		ID:         string(p.ID),
		RoomID:     string(p.RoomID),
		PlayerID:   string(p.PlayerID),
		Name:       p.Name,
		Avatar:     p.Avatar,
		Role:       string(p.Role),
		Score:      p.Score,
		GuessAngle: p.GuessAngle,
		LockedIn:   p.LockedIn,
		JoinedAt:   p.JoinedAt,
	}
}

func (row playerRow) toModel() model.Player {
	return model.Player{
		ID:         model.RowID(row.ID),
		RoomID:     model.RoomID(row.RoomID),
		PlayerID:   model.PlayerID(row.PlayerID),
		Name:       row.Name,
		Avatar:     row.Avatar,
		Role:       model.PlayerRole(row.Role),
		Score:      row.Score,
		GuessAngle: row.GuessAngle,
		LockedIn:   row.LockedIn,
		JoinedAt:   row.JoinedAt,
	}
}

func playerPatchColumns(p model.PlayerPatch) map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Avatar != nil {
		cols["avatar"] = *p.Avatar
	}
	if p.Role != nil {
		cols["role"] = string(*p.Role)
	}
	if p.Score != nil {
		cols["score"] = *p.Score
	}
	if p.ClearGuessAngle {
		cols["guess_angle"] = nil
	}
	if p.GuessAngle != nil {
		cols["guess_angle"] = *p.GuessAngle
	}
	if p.LockedIn != nil {
		cols["locked_in"] = *p.LockedIn
	}
	return cols
}
