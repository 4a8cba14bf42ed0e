package models

// RetiredPlayer records a player leaving the league. Contracts they held
// leave a dead-money trail on the cap sheet rather than being erased.
type RetiredPlayer struct {
	DynastyID   string `json:"dynastyId" bson:"dynasty_id"`
	PlayerID    int    `json:"playerId" bson:"player_id"`
	Season      int    `json:"season" bson:"season"`
	Reason      string `json:"reason" bson:"reason"`
	FinalTeamID int    `json:"finalTeamId" bson:"final_team_id"`
}

// CareerSummary is the rollup written when a player retires.
type CareerSummary struct {
	DynastyID     string   `json:"dynastyId" bson:"dynasty_id"`
	PlayerID      int      `json:"playerId" bson:"player_id"`
	Name          string   `json:"name" bson:"name"`
	Position      Position `json:"position" bson:"position"`
	Seasons       int      `json:"seasons" bson:"seasons"`
	GamesPlayed   int      `json:"gamesPlayed" bson:"games_played"`
	Career        StatLine `json:"career" bson:"career"`
	ProBowls      int      `json:"proBowls" bson:"pro_bowls"`
	Championships int      `json:"championships" bson:"championships"`
	HOFScore      float64  `json:"hofScore" bson:"hof_score"`
}

// SeasonHonors is the single offseason-honors row for one (dynasty, season).
type SeasonHonors struct {
	DynastyID        string `json:"dynastyId" bson:"dynasty_id"`
	Season           int    `json:"season" bson:"season"`
	ChampionTeamID   int    `json:"championTeamId" bson:"champion_team_id"`
	RunnerUpTeamID   int    `json:"runnerUpTeamId" bson:"runner_up_team_id"`
	MVPPlayerID      int    `json:"mvpPlayerId" bson:"mvp_player_id"`
	RetiredPlayerIDs []int  `json:"retiredPlayerIds" bson:"retired_player_ids"`
}
