package services

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"nfl-dynasty-go/interfaces"
	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/models"
)

// RatingSimulator is the built-in GameSimulator: scores derive from roster
// strength plus seeded noise, so the same seed always reproduces the same
// game. It is deliberately coarse; a play-by-play engine can replace it
// behind the same interface.
type RatingSimulator struct {
	logger *logging.Logger
}

func NewRatingSimulator() *RatingSimulator {
	return &RatingSimulator{logger: logging.WithPrefix("simulator")}
}

// teamStrength weighs the starting quarterback heavily and averages the top
// of the roster.
func teamStrength(roster []models.Player) float64 {
	if len(roster) == 0 {
		return 40
	}
	sorted := append([]models.Player(nil), roster...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Overall > sorted[j].Overall })

	var qb float64 = 40
	for _, p := range sorted {
		if p.Position == models.PositionQB {
			qb = float64(p.Overall)
			break
		}
	}

	n := 22
	if len(sorted) < n {
		n = len(sorted)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(sorted[i].Overall)
	}
	return 0.7*(sum/float64(n)) + 0.3*qb
}

func (s *RatingSimulator) Simulate(ctx context.Context, homeTeamID, awayTeamID int, rosters map[int][]models.Player, seed int64) (*interfaces.SimulatedGame, error) {
	home, okHome := rosters[homeTeamID]
	away, okAway := rosters[awayTeamID]
	if !okHome || !okAway {
		return nil, fmt.Errorf("missing roster for matchup %d at %d", awayTeamID, homeTeamID)
	}

	rng := rand.New(rand.NewSource(seed))
	homeStrength := teamStrength(home) + 1.5 // home field
	awayStrength := teamStrength(away)

	homeScore := sampleScore(rng, 21+(homeStrength-awayStrength)*0.45)
	awayScore := sampleScore(rng, 21+(awayStrength-homeStrength)*0.45)

	overtime := 0
	if homeScore == awayScore {
		// One overtime period; roughly one game in ten stays level.
		overtime = 1
		if rng.Float64() >= 0.10 {
			if rng.Float64() < 0.5+(homeStrength-awayStrength)*0.01 {
				homeScore += 3
			} else {
				awayScore += 3
			}
		}
	}

	game := &interfaces.SimulatedGame{
		HomeScore:       homeScore,
		AwayScore:       awayScore,
		OvertimePeriods: overtime,
		DurationMinutes: 180 + rng.Intn(25) + overtime*15,
	}
	game.PlayerStats = append(game.PlayerStats, statLines(rng, homeTeamID, home, homeScore)...)
	game.PlayerStats = append(game.PlayerStats, statLines(rng, awayTeamID, away, awayScore)...)
	return game, nil
}

// sampleScore draws a score around the expectation and snaps it to a
// football-plausible non-negative value.
func sampleScore(rng *rand.Rand, expected float64) int {
	score := int(expected + rng.NormFloat64()*7)
	if score < 0 {
		score = 0
	}
	if score == 1 {
		score = 2
	}
	return score
}

// statLines distributes a team's scoring output across its skill players.
func statLines(rng *rand.Rand, teamID int, roster []models.Player, score int) []interfaces.SimulatedPlayerStats {
	byPosition := func(pos models.Position, limit int) []models.Player {
		var out []models.Player
		for _, p := range roster {
			if p.Position == pos {
				out = append(out, p)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Overall > out[j].Overall })
		if len(out) > limit {
			out = out[:limit]
		}
		return out
	}

	touchdowns := score / 7
	fieldGoals := (score - touchdowns*7) / 3
	passTDs := 0
	for i := 0; i < touchdowns; i++ {
		if rng.Float64() < 0.58 {
			passTDs++
		}
	}
	rushTDs := touchdowns - passTDs

	var stats []interfaces.SimulatedPlayerStats

	qbs := byPosition(models.PositionQB, 1)
	passYards := 0
	if len(qbs) > 0 {
		completions := 16 + rng.Intn(13)
		passYards = completions*8 + rng.Intn(80)
		stats = append(stats, interfaces.SimulatedPlayerStats{
			PlayerID: qbs[0].PlayerID, TeamID: teamID,
			Line: models.StatLine{
				PassAttempts:    completions + 6 + rng.Intn(8),
				PassCompletions: completions,
				PassYards:       passYards,
				PassTDs:         passTDs,
				Interceptions:   rng.Intn(3),
			},
		})
	}

	backs := byPosition(models.PositionRB, 2)
	for i, rb := range backs {
		carries := 14 - 8*i + rng.Intn(6)
		tds := 0
		if i == 0 {
			tds = rushTDs
		}
		stats = append(stats, interfaces.SimulatedPlayerStats{
			PlayerID: rb.PlayerID, TeamID: teamID,
			Line: models.StatLine{
				RushAttempts: carries,
				RushYards:    carries*4 + rng.Intn(40),
				RushTDs:      tds,
			},
		})
	}

	targets := append(byPosition(models.PositionWR, 3), byPosition(models.PositionTE, 1)...)
	remainingYards := passYards
	remainingTDs := passTDs
	for i, wr := range targets {
		share := remainingYards / (len(targets) - i)
		catches := 2 + rng.Intn(6)
		tds := 0
		if remainingTDs > 0 && (i == 0 || rng.Float64() < 0.4) {
			tds = 1
			remainingTDs--
		}
		stats = append(stats, interfaces.SimulatedPlayerStats{
			PlayerID: wr.PlayerID, TeamID: teamID,
			Line: models.StatLine{
				Receptions:     catches,
				ReceivingYards: share,
				ReceivingTDs:   tds,
			},
		})
		remainingYards -= share
	}

	kickers := byPosition(models.PositionK, 1)
	if len(kickers) > 0 {
		stats = append(stats, interfaces.SimulatedPlayerStats{
			PlayerID: kickers[0].PlayerID, TeamID: teamID,
			Line: models.StatLine{
				FieldGoalsMade:  fieldGoals,
				FieldGoalsAtt:   fieldGoals + rng.Intn(2),
				ExtraPointsMade: touchdowns,
			},
		})
	}

	for _, pos := range []models.Position{models.PositionLB, models.PositionEDGE, models.PositionCB} {
		for _, p := range byPosition(pos, 2) {
			line := models.StatLine{Tackles: 3 + rng.Intn(8)}
			if pos == models.PositionEDGE && rng.Float64() < 0.35 {
				line.Sacks = 1
			}
			if pos == models.PositionCB && rng.Float64() < 0.12 {
				line.DefInterceptions = 1
			}
			stats = append(stats, interfaces.SimulatedPlayerStats{
				PlayerID: p.PlayerID, TeamID: teamID, Line: line,
			})
		}
	}
	return stats
}
