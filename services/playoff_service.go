package services

import (
	"context"
	"fmt"
	"sort"

	"nfl-dynasty-go/interfaces"
	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/models"
)

// PlayoffService owns the postseason bracket. Bracket state is never stored
// directly: it is always derived from playoff events and their game records,
// and every scheduling call is idempotent through structured event ids, so
// crashed or repeated advances never duplicate a round.
type PlayoffService struct {
	store     interfaces.LeagueStore
	standings *StandingsService
	logger    *logging.Logger
}

func NewPlayoffService(store interfaces.LeagueStore, standings *StandingsService) *PlayoffService {
	return &PlayoffService{
		store:     store,
		standings: standings,
		logger:    logging.WithPrefix("playoffs"),
	}
}

var roundOrder = []models.PlayoffRound{
	models.RoundWildCard,
	models.RoundDivisional,
	models.RoundConference,
	models.RoundSuperBowl,
}

// Seeds recomputes both conferences' seven seeds from final regular-season
// standings. Standings are frozen during the playoffs, so this is stable all
// postseason.
func (p *PlayoffService) Seeds(ctx context.Context, dynastyID string, season int) (map[models.Conference][]models.PlayoffSeed, error) {
	rows, err := p.store.Standings().GetStandings(ctx, dynastyID, season)
	if err != nil {
		return nil, err
	}
	split := ConferenceStandings(rows)
	seeds := make(map[models.Conference][]models.PlayoffSeed, 2)
	for _, conf := range []models.Conference{models.ConferenceAFC, models.ConferenceNFC} {
		s, err := p.standings.Seed(split[conf])
		if err != nil {
			return nil, fmt.Errorf("seeding %s: %w", conf, err)
		}
		seeds[conf] = s
	}
	return seeds, nil
}

// Initialize schedules the wild-card round. Calling it again for a season
// that already has playoff events is a no-op.
func (p *PlayoffService) Initialize(ctx context.Context, dynastyID string, season int) error {
	existing, err := p.store.Events().CountByStructuredPrefix(ctx, dynastyID, models.PlayoffPrefix(season), "")
	if err != nil {
		return err
	}
	if existing > 0 {
		p.logger.Debugf("Playoffs %d already initialized (%d events)", season, existing)
		return nil
	}

	seeds, err := p.Seeds(ctx, dynastyID, season)
	if err != nil {
		return err
	}

	// Seed 1 rests; 2v7, 3v6, 4v5. AFC takes game indexes 1-3, NFC 4-6.
	index := 1
	for _, conf := range []models.Conference{models.ConferenceAFC, models.ConferenceNFC} {
		bySeed := seedMap(seeds[conf])
		for _, pair := range [][2]int{{2, 7}, {3, 6}, {4, 5}} {
			if err := p.scheduleGame(ctx, dynastyID, season, models.RoundWildCard, index,
				bySeed[pair[0]], bySeed[pair[1]], conf); err != nil {
				return err
			}
			index++
		}
	}
	p.logger.Infof("Playoffs %d initialized: wild card round scheduled", season)
	return nil
}

// AdvanceBracket inspects the bracket and schedules the next round once the
// current one has fully played out. It returns the champion team id and true
// once the Super Bowl is decided.
func (p *PlayoffService) AdvanceBracket(ctx context.Context, dynastyID string, season int) (int, bool, error) {
	events, err := p.store.Events().EventsByStructuredPrefix(ctx, dynastyID, models.PlayoffPrefix(season))
	if err != nil {
		return 0, false, err
	}
	byRound := make(map[models.PlayoffRound][]*models.Event)
	for _, e := range events {
		round, _, ok := models.ParsePlayoffRound(e.StructuredID)
		if !ok {
			continue
		}
		byRound[round] = append(byRound[round], e)
	}

	var lastComplete models.PlayoffRound
	for _, round := range roundOrder {
		roundEvents := byRound[round]
		if len(roundEvents) == 0 {
			break
		}
		for _, e := range roundEvents {
			if e.Status != models.EventStatusExecuted {
				return 0, false, nil // round still in progress
			}
		}
		lastComplete = round
	}

	switch lastComplete {
	case models.RoundSuperBowl:
		finalID := models.PlayoffStructuredID(season, models.RoundSuperBowl, 1)
		game, err := p.store.Games().GetGame(ctx, dynastyID, finalID)
		if err != nil {
			return 0, false, err
		}
		return game.WinnerTeamID(), true, nil
	case "":
		return 0, false, nil
	}

	seeds, err := p.Seeds(ctx, dynastyID, season)
	if err != nil {
		return 0, false, err
	}
	winners, err := p.roundWinners(ctx, dynastyID, byRound[lastComplete], seeds)
	if err != nil {
		return 0, false, err
	}

	switch lastComplete {
	case models.RoundWildCard:
		// Re-seed: the bye seed faces the worst survivor, the other two meet.
		index := 1
		for _, conf := range []models.Conference{models.ConferenceAFC, models.ConferenceNFC} {
			alive := append([]models.PlayoffSeed{seedMap(seeds[conf])[1]}, winners[conf]...)
			sortSeeds(alive)
			pairs := [][2]models.PlayoffSeed{{alive[0], alive[3]}, {alive[1], alive[2]}}
			for _, pair := range pairs {
				if err := p.scheduleGame(ctx, dynastyID, season, models.RoundDivisional, index,
					pair[0], pair[1], conf); err != nil {
					return 0, false, err
				}
				index++
			}
		}
	case models.RoundDivisional:
		index := 1
		for _, conf := range []models.Conference{models.ConferenceAFC, models.ConferenceNFC} {
			alive := winners[conf]
			sortSeeds(alive)
			if len(alive) != 2 {
				return 0, false, fmt.Errorf("divisional round left %d %s teams, want 2", len(alive), conf)
			}
			if err := p.scheduleGame(ctx, dynastyID, season, models.RoundConference, index,
				alive[0], alive[1], conf); err != nil {
				return 0, false, err
			}
			index++
		}
	case models.RoundConference:
		afc := winners[models.ConferenceAFC]
		nfc := winners[models.ConferenceNFC]
		if len(afc) != 1 || len(nfc) != 1 {
			return 0, false, fmt.Errorf("conference round did not produce two champions")
		}
		// Neutral site: the designated home conference alternates by year.
		home, away := afc[0], nfc[0]
		if season%2 == 1 {
			home, away = away, home
		}
		if err := p.scheduleGame(ctx, dynastyID, season, models.RoundSuperBowl, 1, home, away, ""); err != nil {
			return 0, false, err
		}
	}
	return 0, false, nil
}

// roundWinners resolves each executed playoff event to its winning seed,
// grouped by conference. The Super Bowl carries no conference tag.
func (p *PlayoffService) roundWinners(ctx context.Context, dynastyID string, events []*models.Event, seeds map[models.Conference][]models.PlayoffSeed) (map[models.Conference][]models.PlayoffSeed, error) {
	seedByTeam := make(map[int]models.PlayoffSeed)
	for _, confSeeds := range seeds {
		for _, s := range confSeeds {
			seedByTeam[s.TeamID] = s
		}
	}

	winners := make(map[models.Conference][]models.PlayoffSeed)
	for _, e := range events {
		game, err := p.store.Games().GetGame(ctx, dynastyID, e.StructuredID)
		if err != nil {
			return nil, err
		}
		winner, ok := seedByTeam[game.WinnerTeamID()]
		if !ok {
			return nil, fmt.Errorf("playoff winner %d has no seed", game.WinnerTeamID())
		}
		winners[winner.Conference] = append(winners[winner.Conference], winner)
	}
	return winners, nil
}

func (p *PlayoffService) scheduleGame(ctx context.Context, dynastyID string, season int, round models.PlayoffRound, index int, home, away models.PlayoffSeed, conf models.Conference) error {
	date := PlayoffRoundDate(season, round).AddDate(0, 0, (index-1)%2)
	event := &models.Event{
		DynastyID:    dynastyID,
		Date:         date,
		Kind:         models.EventKindGame,
		StructuredID: models.PlayoffStructuredID(season, round, index),
		Payload: map[string]interface{}{
			"home_team_id": home.TeamID,
			"away_team_id": away.TeamID,
			"home_seed":    home.Seed,
			"away_seed":    away.Seed,
			"conference":   string(conf),
			"week":         0,
			"season":       season,
			"season_type":  string(models.SeasonTypePlayoffs),
			"game_type":    string(models.GameTypeForRound(round)),
		},
	}
	_, err := p.store.Events().Insert(ctx, event)
	return err
}

func seedMap(seeds []models.PlayoffSeed) map[int]models.PlayoffSeed {
	m := make(map[int]models.PlayoffSeed, len(seeds))
	for _, s := range seeds {
		m[s.Seed] = s
	}
	return m
}

func sortSeeds(seeds []models.PlayoffSeed) {
	sort.Slice(seeds, func(i, j int) bool { return seeds[i].Seed < seeds[j].Seed })
}

// BracketGame is one resolved slot of the bracket view.
type BracketGame struct {
	Round      models.PlayoffRound `json:"round"`
	Index      int                 `json:"index"`
	Conference string              `json:"conference,omitempty"`
	HomeTeamID int                 `json:"homeTeamId"`
	AwayTeamID int                 `json:"awayTeamId"`
	HomeSeed   int                 `json:"homeSeed"`
	AwaySeed   int                 `json:"awaySeed"`
	HomeScore  int                 `json:"homeScore"`
	AwayScore  int                 `json:"awayScore"`
	Played     bool                `json:"played"`
	WinnerID   int                 `json:"winnerId,omitempty"`
}

// Bracket assembles the full postseason view for queries.
func (p *PlayoffService) Bracket(ctx context.Context, dynastyID string, season int) ([]BracketGame, error) {
	events, err := p.store.Events().EventsByStructuredPrefix(ctx, dynastyID, models.PlayoffPrefix(season))
	if err != nil {
		return nil, err
	}
	bracket := make([]BracketGame, 0, len(events))
	for _, e := range events {
		round, index, ok := models.ParsePlayoffRound(e.StructuredID)
		if !ok {
			continue
		}
		home, _ := payloadInt(e.Payload, "home_team_id")
		away, _ := payloadInt(e.Payload, "away_team_id")
		homeSeed, _ := payloadInt(e.Payload, "home_seed")
		awaySeed, _ := payloadInt(e.Payload, "away_seed")
		slot := BracketGame{
			Round:      round,
			Index:      index,
			Conference: payloadString(e.Payload, "conference"),
			HomeTeamID: home,
			AwayTeamID: away,
			HomeSeed:   homeSeed,
			AwaySeed:   awaySeed,
		}
		if e.Status == models.EventStatusExecuted {
			game, err := p.store.Games().GetGame(ctx, dynastyID, e.StructuredID)
			if err == nil {
				slot.Played = true
				slot.HomeScore = game.HomeScore
				slot.AwayScore = game.AwayScore
				slot.WinnerID = game.WinnerTeamID()
			} else if !models.IsNotFound(err) {
				return nil, err
			}
		}
		bracket = append(bracket, slot)
	}
	sort.Slice(bracket, func(i, j int) bool {
		ri := roundIndex(bracket[i].Round)
		rj := roundIndex(bracket[j].Round)
		if ri != rj {
			return ri < rj
		}
		return bracket[i].Index < bracket[j].Index
	})
	return bracket, nil
}

func roundIndex(round models.PlayoffRound) int {
	for i, r := range roundOrder {
		if r == round {
			return i
		}
	}
	return len(roundOrder)
}
