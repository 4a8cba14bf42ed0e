package models

// Position is a player's primary position.
type Position string

const (
	PositionQB   Position = "QB"
	PositionRB   Position = "RB"
	PositionWR   Position = "WR"
	PositionTE   Position = "TE"
	PositionLT   Position = "LT"
	PositionOL   Position = "OL"
	PositionDL   Position = "DL"
	PositionEDGE Position = "EDGE"
	PositionLB   Position = "LB"
	PositionCB   Position = "CB"
	PositionS    Position = "S"
	PositionK    Position = "K"
	PositionP    Position = "P"
)

// AllPositions lists every position the seeder and GM engine work with.
var AllPositions = []Position{
	PositionQB, PositionRB, PositionWR, PositionTE, PositionLT, PositionOL,
	PositionDL, PositionEDGE, PositionLB, PositionCB, PositionS, PositionK, PositionP,
}

// PlayerStatus tracks whether a player is rosterable.
type PlayerStatus string

const (
	PlayerStatusActive    PlayerStatus = "active"
	PlayerStatusFreeAgent PlayerStatus = "free_agent"
	PlayerStatusRetired   PlayerStatus = "retired"
)

// Player is a league player scoped to a dynasty. TeamID is 0 while the
// player is a free agent or retired; the roster is always a query against
// the player collection, never a field on a team.
type Player struct {
	DynastyID string       `json:"dynastyId" bson:"dynasty_id"`
	PlayerID  int          `json:"playerId" bson:"player_id"`
	Name      string       `json:"name" bson:"name"`
	Position  Position     `json:"position" bson:"position"`
	Overall   int          `json:"overall" bson:"overall"` // 40..99
	Age       int          `json:"age" bson:"age"`
	YearsPro  int          `json:"yearsPro" bson:"years_pro"`
	TeamID    int          `json:"teamId" bson:"team_id"` // 0 = no team
	Status    PlayerStatus `json:"status" bson:"status"`
}

// IsFreeAgent reports whether the player can be signed.
func (p *Player) IsFreeAgent() bool {
	return p.Status == PlayerStatusFreeAgent
}

// IsRetired reports whether the player has left the league for good.
func (p *Player) IsRetired() bool {
	return p.Status == PlayerStatusRetired
}

// OnTeam reports whether the player is rostered by the given team.
func (p *Player) OnTeam(teamID int) bool {
	return p.Status == PlayerStatusActive && p.TeamID == teamID
}
