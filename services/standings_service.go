package services

import (
	"context"
	"fmt"
	"sort"

	"nfl-dynasty-go/interfaces"
	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/models"
)

// StandingsService maintains win/loss records and produces playoff seeds.
type StandingsService struct {
	store  interfaces.LeagueStore
	logger *logging.Logger
}

func NewStandingsService(store interfaces.LeagueStore) *StandingsService {
	return &StandingsService{
		store:  store,
		logger: logging.WithPrefix("standings"),
	}
}

// ApplyResult folds a completed regular-season game into both teams' rows.
// Playoff games never touch standings.
func (s *StandingsService) ApplyResult(ctx context.Context, game *models.GameRecord) error {
	if game.SeasonType != models.SeasonTypeRegular || game.GameType != models.GameTypeRegular {
		return nil
	}

	home, err := s.rowFor(ctx, game.DynastyID, game.Season, game.HomeTeamID)
	if err != nil {
		return err
	}
	away, err := s.rowFor(ctx, game.DynastyID, game.Season, game.AwayTeamID)
	if err != nil {
		return err
	}

	home.PointsFor += game.HomeScore
	home.PointsAgainst += game.AwayScore
	away.PointsFor += game.AwayScore
	away.PointsAgainst += game.HomeScore
	home.Schedule = append(home.Schedule, game.AwayTeamID)
	away.Schedule = append(away.Schedule, game.HomeTeamID)

	division := models.SameDivision(game.HomeTeamID, game.AwayTeamID)
	conference := models.SameConference(game.HomeTeamID, game.AwayTeamID)

	switch {
	case game.IsTie():
		home.Ties++
		away.Ties++
	case game.WinnerTeamID() == game.HomeTeamID:
		home.Wins++
		away.Losses++
		if division {
			home.DivisionWins++
			away.DivisionLosses++
		}
		if conference {
			home.ConferenceWins++
			away.ConferenceLosses++
		}
	default:
		away.Wins++
		home.Losses++
		if division {
			away.DivisionWins++
			home.DivisionLosses++
		}
		if conference {
			away.ConferenceWins++
			home.ConferenceLosses++
		}
	}

	if err := s.store.Standings().SaveStandings(ctx, home); err != nil {
		return err
	}
	return s.store.Standings().SaveStandings(ctx, away)
}

func (s *StandingsService) rowFor(ctx context.Context, dynastyID string, season, teamID int) (*models.StandingsRow, error) {
	row, err := s.store.Standings().GetTeamStandings(ctx, dynastyID, season, teamID)
	if models.IsNotFound(err) {
		return &models.StandingsRow{DynastyID: dynastyID, Season: season, TeamID: teamID}, nil
	}
	return row, err
}

// rankRows orders rows best-first: win percentage, then division record,
// conference record, point differential, points scored, and finally team id
// so the order is total.
func rankRows(rows []models.StandingsRow) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := &rows[i], &rows[j]
		if a.WinPct() != b.WinPct() {
			return a.WinPct() > b.WinPct()
		}
		da := divisionPct(a)
		db := divisionPct(b)
		if da != db {
			return da > db
		}
		ca := conferencePct(a)
		cb := conferencePct(b)
		if ca != cb {
			return ca > cb
		}
		if a.PointDifferential() != b.PointDifferential() {
			return a.PointDifferential() > b.PointDifferential()
		}
		if a.PointsFor != b.PointsFor {
			return a.PointsFor > b.PointsFor
		}
		return a.TeamID < b.TeamID
	})
}

func divisionPct(r *models.StandingsRow) float64 {
	played := r.DivisionWins + r.DivisionLosses
	if played == 0 {
		return 0
	}
	return float64(r.DivisionWins) / float64(played)
}

func conferencePct(r *models.StandingsRow) float64 {
	played := r.ConferenceWins + r.ConferenceLosses
	if played == 0 {
		return 0
	}
	return float64(r.ConferenceWins) / float64(played)
}

// Seed implements playoff seeding for one conference: the four division
// winners take seeds 1-4 by record, the three best remaining teams are
// wildcards 5-7.
func (s *StandingsService) Seed(conferenceStandings []models.StandingsRow) ([]models.PlayoffSeed, error) {
	if len(conferenceStandings) != 16 {
		return nil, fmt.Errorf("conference seeding needs 16 rows, got %d", len(conferenceStandings))
	}

	byDivision := make(map[models.Division][]models.StandingsRow)
	var conference models.Conference
	for _, row := range conferenceStandings {
		team, ok := models.TeamByID(row.TeamID)
		if !ok {
			return nil, fmt.Errorf("unknown team id %d in standings", row.TeamID)
		}
		conference = team.Conference
		byDivision[team.Division] = append(byDivision[team.Division], row)
	}

	var winners, rest []models.StandingsRow
	for _, rows := range byDivision {
		rankRows(rows)
		winners = append(winners, rows[0])
		rest = append(rest, rows[1:]...)
	}
	rankRows(winners)
	rankRows(rest)

	seeds := make([]models.PlayoffSeed, 0, PlayoffTeamsPerConference)
	for i, row := range winners {
		seeds = append(seeds, models.PlayoffSeed{
			Seed: i + 1, TeamID: row.TeamID, Conference: conference,
			Wins: row.Wins, Losses: row.Losses, Ties: row.Ties,
		})
	}
	for i := 0; i < PlayoffTeamsPerConference-4; i++ {
		row := rest[i]
		seeds = append(seeds, models.PlayoffSeed{
			Seed: 5 + i, TeamID: row.TeamID, Conference: conference,
			Wins: row.Wins, Losses: row.Losses, Ties: row.Ties,
		})
	}
	return seeds, nil
}

// RankStandings orders rows best-first using the seeding tiebreak chain.
func RankStandings(rows []models.StandingsRow) {
	rankRows(rows)
}

// ConferenceStandings splits a full standings slate by conference.
func ConferenceStandings(rows []models.StandingsRow) map[models.Conference][]models.StandingsRow {
	split := make(map[models.Conference][]models.StandingsRow, 2)
	for _, row := range rows {
		if team, ok := models.TeamByID(row.TeamID); ok {
			split[team.Conference] = append(split[team.Conference], row)
		}
	}
	return split
}
