package models

// StandingsRow is a team's record for one (dynasty, season). Schedule holds
// opponent team ids in game order and feeds strength-of-schedule math.
type StandingsRow struct {
	DynastyID      string `json:"dynastyId" bson:"dynasty_id"`
	Season         int    `json:"season" bson:"season"`
	TeamID         int    `json:"teamId" bson:"team_id"`
	Wins           int    `json:"wins" bson:"wins"`
	Losses         int    `json:"losses" bson:"losses"`
	Ties           int    `json:"ties" bson:"ties"`
	DivisionWins   int    `json:"divisionWins" bson:"division_wins"`
	DivisionLosses int    `json:"divisionLosses" bson:"division_losses"`
	ConferenceWins int    `json:"conferenceWins" bson:"conference_wins"`
	ConferenceLosses int  `json:"conferenceLosses" bson:"conference_losses"`
	PointsFor      int    `json:"pointsFor" bson:"points_for"`
	PointsAgainst  int    `json:"pointsAgainst" bson:"points_against"`
	Schedule       []int  `json:"schedule" bson:"schedule"`
}

// GamesPlayed is the number of decided games on the row.
func (s *StandingsRow) GamesPlayed() int {
	return s.Wins + s.Losses + s.Ties
}

// WinPct treats a tie as half a win, matching league practice.
func (s *StandingsRow) WinPct() float64 {
	played := s.GamesPlayed()
	if played == 0 {
		return 0
	}
	return (float64(s.Wins) + 0.5*float64(s.Ties)) / float64(played)
}

// PointDifferential is points-for minus points-against.
func (s *StandingsRow) PointDifferential() int {
	return s.PointsFor - s.PointsAgainst
}

// PlayoffSeed pairs a team with its bracket position within a conference.
type PlayoffSeed struct {
	Seed       int        `json:"seed" bson:"seed"`
	TeamID     int        `json:"teamId" bson:"team_id"`
	Conference Conference `json:"conference" bson:"conference"`
	Wins       int        `json:"wins" bson:"wins"`
	Losses     int        `json:"losses" bson:"losses"`
	Ties       int        `json:"ties" bson:"ties"`
}

// DraftPick is one slot of a computed draft order.
type DraftPick struct {
	Overall    int    `json:"overall" bson:"overall"`
	Round      int    `json:"round" bson:"round"`
	PickInRound int   `json:"pickInRound" bson:"pick_in_round"`
	TeamID     int    `json:"teamId" bson:"team_id"`
	Reason     string `json:"reason" bson:"reason"`
}
