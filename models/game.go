package models

import "time"

// SeasonType tags stats and games as regular season or playoffs.
type SeasonType string

const (
	SeasonTypeRegular  SeasonType = "regular_season"
	SeasonTypePlayoffs SeasonType = "playoffs"
)

// GameType distinguishes bracket rounds from ordinary games.
type GameType string

const (
	GameTypePreseason  GameType = "preseason"
	GameTypeRegular    GameType = "regular"
	GameTypeWildCard   GameType = "wild_card"
	GameTypeDivisional GameType = "divisional"
	GameTypeConference GameType = "conference"
	GameTypeSuperBowl  GameType = "super_bowl"
)

// GameTypeForRound maps a playoff round to its game type.
func GameTypeForRound(round PlayoffRound) GameType {
	switch round {
	case RoundWildCard:
		return GameTypeWildCard
	case RoundDivisional:
		return GameTypeDivisional
	case RoundConference:
		return GameTypeConference
	case RoundSuperBowl:
		return GameTypeSuperBowl
	default:
		return GameTypeRegular
	}
}

// GameRecord is the persisted box score of one executed game. GameID is the
// structured event id of the GAME event that produced it.
type GameRecord struct {
	GameID          string     `json:"gameId" bson:"game_id"`
	DynastyID       string     `json:"dynastyId" bson:"dynasty_id"`
	Season          int        `json:"season" bson:"season"`
	SeasonType      SeasonType `json:"seasonType" bson:"season_type"`
	Week            int        `json:"week" bson:"week"`
	GameType        GameType   `json:"gameType" bson:"game_type"`
	Date            time.Time  `json:"date" bson:"date"`
	HomeTeamID      int        `json:"homeTeamId" bson:"home_team_id"`
	AwayTeamID      int        `json:"awayTeamId" bson:"away_team_id"`
	HomeScore       int        `json:"homeScore" bson:"home_score"`
	AwayScore       int        `json:"awayScore" bson:"away_score"`
	OvertimePeriods int        `json:"overtimePeriods" bson:"overtime_periods"`
	DurationMinutes int        `json:"durationMinutes" bson:"duration_minutes"`
}

// WinnerTeamID returns the winning team id, or 0 on a tie.
func (g *GameRecord) WinnerTeamID() int {
	switch {
	case g.HomeScore > g.AwayScore:
		return g.HomeTeamID
	case g.AwayScore > g.HomeScore:
		return g.AwayTeamID
	default:
		return 0
	}
}

// LoserTeamID returns the losing team id, or 0 on a tie.
func (g *GameRecord) LoserTeamID() int {
	switch {
	case g.HomeScore > g.AwayScore:
		return g.AwayTeamID
	case g.AwayScore > g.HomeScore:
		return g.HomeTeamID
	default:
		return 0
	}
}

// IsTie reports a drawn game (possible in the regular season only).
func (g *GameRecord) IsTie() bool {
	return g.HomeScore == g.AwayScore
}

// StatLine is one player's statistical output for a single game.
type StatLine struct {
	PassAttempts    int `json:"passAttempts" bson:"pass_attempts"`
	PassCompletions int `json:"passCompletions" bson:"pass_completions"`
	PassYards       int `json:"passYards" bson:"pass_yards"`
	PassTDs         int `json:"passTds" bson:"pass_tds"`
	Interceptions   int `json:"interceptions" bson:"interceptions"`
	RushAttempts    int `json:"rushAttempts" bson:"rush_attempts"`
	RushYards       int `json:"rushYards" bson:"rush_yards"`
	RushTDs         int `json:"rushTds" bson:"rush_tds"`
	Receptions      int `json:"receptions" bson:"receptions"`
	ReceivingYards  int `json:"receivingYards" bson:"receiving_yards"`
	ReceivingTDs    int `json:"receivingTds" bson:"receiving_tds"`
	Tackles         int `json:"tackles" bson:"tackles"`
	Sacks           int `json:"sacks" bson:"sacks"`
	DefInterceptions int `json:"defInterceptions" bson:"def_interceptions"`
	FieldGoalsMade  int `json:"fieldGoalsMade" bson:"field_goals_made"`
	FieldGoalsAtt   int `json:"fieldGoalsAtt" bson:"field_goals_att"`
	ExtraPointsMade int `json:"extraPointsMade" bson:"extra_points_made"`
}

// Add accumulates another line into this one (season rollups).
func (s *StatLine) Add(other StatLine) {
	s.PassAttempts += other.PassAttempts
	s.PassCompletions += other.PassCompletions
	s.PassYards += other.PassYards
	s.PassTDs += other.PassTDs
	s.Interceptions += other.Interceptions
	s.RushAttempts += other.RushAttempts
	s.RushYards += other.RushYards
	s.RushTDs += other.RushTDs
	s.Receptions += other.Receptions
	s.ReceivingYards += other.ReceivingYards
	s.ReceivingTDs += other.ReceivingTDs
	s.Tackles += other.Tackles
	s.Sacks += other.Sacks
	s.DefInterceptions += other.DefInterceptions
	s.FieldGoalsMade += other.FieldGoalsMade
	s.FieldGoalsAtt += other.FieldGoalsAtt
	s.ExtraPointsMade += other.ExtraPointsMade
}

// TotalTDs counts every touchdown a player accounted for.
func (s *StatLine) TotalTDs() int {
	return s.PassTDs + s.RushTDs + s.ReceivingTDs
}

// PlayerGameStats is one player's line for one game.
type PlayerGameStats struct {
	DynastyID  string     `json:"dynastyId" bson:"dynasty_id"`
	GameID     string     `json:"gameId" bson:"game_id"`
	Season     int        `json:"season" bson:"season"`
	SeasonType SeasonType `json:"seasonType" bson:"season_type"`
	PlayerID   int        `json:"playerId" bson:"player_id"`
	TeamID     int        `json:"teamId" bson:"team_id"`
	Line       StatLine   `json:"line" bson:"line"`
}

// PlayerSeasonStats is the UPSERTed per-season aggregate of a player.
type PlayerSeasonStats struct {
	DynastyID   string     `json:"dynastyId" bson:"dynasty_id"`
	Season      int        `json:"season" bson:"season"`
	SeasonType  SeasonType `json:"seasonType" bson:"season_type"`
	PlayerID    int        `json:"playerId" bson:"player_id"`
	TeamID      int        `json:"teamId" bson:"team_id"`
	GamesPlayed int        `json:"gamesPlayed" bson:"games_played"`
	Line        StatLine   `json:"line" bson:"line"`
}
