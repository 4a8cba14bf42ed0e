package interfaces

import (
	"context"

	"nfl-dynasty-go/models"
)

// SimulatedPlayerStats is one player's line from a simulated game.
type SimulatedPlayerStats struct {
	PlayerID int
	TeamID   int
	Line     models.StatLine
}

// SimulatedGame is the final output of a game simulation.
type SimulatedGame struct {
	HomeScore       int
	AwayScore       int
	OvertimePeriods int
	DurationMinutes int
	PlayerStats     []SimulatedPlayerStats
}

// GameSimulator produces final scores and player stat lines. The play-by-play
// engine behind it is an external collaborator; the core only consumes its
// result. Implementations must honor the seed for reproducible sims.
type GameSimulator interface {
	Simulate(ctx context.Context, homeTeamID, awayTeamID int, rosters map[int][]models.Player, seed int64) (*SimulatedGame, error)
}
