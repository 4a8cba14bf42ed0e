package models

import "time"

// Phase is the league calendar phase. Transitions are owned by the phase
// state machine; nothing else mutates the phase.
type Phase string

const (
	PhaseOffseason       Phase = "OFFSEASON"
	PhasePreseason       Phase = "PRESEASON"
	PhaseRegularSeason   Phase = "REGULAR_SEASON"
	PhasePlayoffs        Phase = "PLAYOFFS"
	PhaseOffseasonHonors Phase = "OFFSEASON_HONORS"
	PhaseOffseasonFA     Phase = "OFFSEASON_FA"
	PhaseOffseasonDraft  Phase = "OFFSEASON_DRAFT"
)

// Dynasty is one isolated save-game.
type Dynasty struct {
	DynastyID string    `json:"dynastyId" bson:"dynasty_id"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// DynastyState is the single authoritative row recording where a dynasty
// sits on the league calendar. It is updated atomically with every advance
// and verified by read-back after each write.
type DynastyState struct {
	DynastyID   string    `json:"dynastyId" bson:"dynasty_id"`
	Season      int       `json:"season" bson:"season"`
	Phase       Phase     `json:"phase" bson:"phase"`
	CurrentDate time.Time `json:"currentDate" bson:"current_date"`
	CurrentWeek int       `json:"currentWeek" bson:"current_week"`
}

// Equal compares the calendar-relevant fields of two states. Dates compare
// by UTC instant so read-back verification survives bson time truncation.
func (s DynastyState) Equal(other DynastyState) bool {
	return s.DynastyID == other.DynastyID &&
		s.Season == other.Season &&
		s.Phase == other.Phase &&
		s.CurrentWeek == other.CurrentWeek &&
		s.CurrentDate.UTC().Equal(other.CurrentDate.UTC())
}
