package services

import (
	"context"
	"fmt"
	"hash/fnv"

	"nfl-dynasty-go/interfaces"
	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/models"
)

// GameEventService turns a GAME event into persisted results: simulate,
// insert the box score, fold player lines into season aggregates, then
// update standings. The caller wraps the whole sequence in a dynasty
// transaction so a failure at any step leaves no partial game behind.
type GameEventService struct {
	store     interfaces.LeagueStore
	simulator interfaces.GameSimulator
	standings *StandingsService
	logger    *logging.Logger
}

func NewGameEventService(store interfaces.LeagueStore, simulator interfaces.GameSimulator, standings *StandingsService) *GameEventService {
	return &GameEventService{
		store:     store,
		simulator: simulator,
		standings: standings,
		logger:    logging.WithPrefix("games"),
	}
}

// ExecuteGame runs one scheduled game. The simulation seed derives from the
// dynasty and structured id, so re-running a reconstructed event reproduces
// the identical result.
func (g *GameEventService) ExecuteGame(ctx context.Context, event *models.Event, season int) (*models.GameRecord, error) {
	homeTeamID, err := payloadInt(event.Payload, "home_team_id")
	if err != nil {
		return nil, err
	}
	awayTeamID, err := payloadInt(event.Payload, "away_team_id")
	if err != nil {
		return nil, err
	}
	week, _ := payloadInt(event.Payload, "week")
	seasonType := models.SeasonType(payloadString(event.Payload, "season_type"))
	gameType := models.GameType(payloadString(event.Payload, "game_type"))

	homeRoster, err := g.store.Players().TeamRoster(ctx, event.DynastyID, homeTeamID)
	if err != nil {
		return nil, err
	}
	awayRoster, err := g.store.Players().TeamRoster(ctx, event.DynastyID, awayTeamID)
	if err != nil {
		return nil, err
	}

	seed := gameSeed(event.DynastyID, event.StructuredID)
	sim, err := g.simulator.Simulate(ctx, homeTeamID, awayTeamID, map[int][]models.Player{
		homeTeamID: homeRoster,
		awayTeamID: awayRoster,
	}, seed)
	if err != nil {
		return nil, &models.SimulatorError{GameID: event.StructuredID, Err: err}
	}

	// Postseason games cannot end level; the seed decides sudden death.
	if sim.HomeScore == sim.AwayScore && gameType != models.GameTypeRegular && gameType != models.GameTypePreseason {
		sim.OvertimePeriods++
		if seed%2 == 0 {
			sim.HomeScore += 3
		} else {
			sim.AwayScore += 3
		}
	}

	record := &models.GameRecord{
		GameID:          event.StructuredID,
		DynastyID:       event.DynastyID,
		Season:          season,
		SeasonType:      seasonType,
		Week:            week,
		GameType:        gameType,
		Date:            event.Date,
		HomeTeamID:      homeTeamID,
		AwayTeamID:      awayTeamID,
		HomeScore:       sim.HomeScore,
		AwayScore:       sim.AwayScore,
		OvertimePeriods: sim.OvertimePeriods,
		DurationMinutes: sim.DurationMinutes,
	}
	if err := g.store.Games().InsertGame(ctx, record); err != nil {
		return nil, err
	}

	gameStats := make([]models.PlayerGameStats, 0, len(sim.PlayerStats))
	for _, line := range sim.PlayerStats {
		gameStats = append(gameStats, models.PlayerGameStats{
			DynastyID:  event.DynastyID,
			GameID:     record.GameID,
			Season:     season,
			SeasonType: seasonType,
			PlayerID:   line.PlayerID,
			TeamID:     line.TeamID,
			Line:       line.Line,
		})
	}
	if err := g.store.Games().InsertPlayerGameStats(ctx, gameStats); err != nil {
		return nil, err
	}
	for _, line := range sim.PlayerStats {
		if err := g.store.Games().UpsertSeasonStats(ctx, event.DynastyID, season, seasonType, line.PlayerID, line.TeamID, line.Line); err != nil {
			return nil, err
		}
	}

	if err := g.standings.ApplyResult(ctx, record); err != nil {
		return nil, err
	}

	g.logger.Debugf("Game %s: %d at %d final %d-%d",
		record.GameID, awayTeamID, homeTeamID, record.AwayScore, record.HomeScore)
	return record, nil
}

func gameSeed(dynastyID, structuredID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(dynastyID))
	h.Write([]byte{0})
	h.Write([]byte(structuredID))
	return int64(h.Sum64())
}

// payloadInt tolerates the numeric types a payload round-trips through bson
// and json as.
func payloadInt(payload map[string]interface{}, key string) (int, error) {
	v, ok := payload[key]
	if !ok {
		return 0, fmt.Errorf("payload missing %q", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("payload field %q has type %T", key, v)
	}
}

func payloadString(payload map[string]interface{}, key string) string {
	if s, ok := payload[key].(string); ok {
		return s
	}
	return ""
}
