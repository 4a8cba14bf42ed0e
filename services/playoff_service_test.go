package services

import (
	"context"
	"testing"

	"nfl-dynasty-go/database"
	"nfl-dynasty-go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedStandings writes a full 32-team slate with strictly decreasing records
// inside each conference, so every division's lowest team id wins it and the
// seeding is unambiguous: AFC seeds 1-4 are teams 1, 5, 9, 13 and wildcards
// 5-7 are teams 2, 3, 4 (NFC mirrors with 17, 21, 25, 29 and 18, 19, 20).
func seedStandings(t *testing.T, ctx context.Context, store *database.MemoryStore, dynastyID string, season int) {
	t.Helper()
	for teamID := 1; teamID <= models.NumTeams; teamID++ {
		rank := (teamID - 1) % 16
		wins := GamesPerTeam - rank
		require.NoError(t, store.Standings().SaveStandings(ctx, &models.StandingsRow{
			DynastyID: dynastyID,
			Season:    season,
			TeamID:    teamID,
			Wins:      wins,
			Losses:    GamesPerTeam - wins,
		}))
	}
}

func playoffFixture(t *testing.T) (context.Context, *database.MemoryStore, *PlayoffService) {
	t.Helper()
	store := database.NewMemoryStore()
	return context.Background(), store, NewPlayoffService(store, NewStandingsService(store))
}

func TestSeeds(t *testing.T) {
	ctx, store, playoffs := playoffFixture(t)
	seedStandings(t, ctx, store, "d1", 2025)

	seeds, err := playoffs.Seeds(ctx, "d1", 2025)
	require.NoError(t, err)

	afc := seeds[models.ConferenceAFC]
	require.Len(t, afc, PlayoffTeamsPerConference)
	assert.Equal(t, []int{1, 5, 9, 13, 2, 3, 4}, seedTeams(afc))

	nfc := seeds[models.ConferenceNFC]
	require.Len(t, nfc, PlayoffTeamsPerConference)
	assert.Equal(t, []int{17, 21, 25, 29, 18, 19, 20}, seedTeams(nfc))
}

func seedTeams(seeds []models.PlayoffSeed) []int {
	teams := make([]int, len(seeds))
	for i, s := range seeds {
		teams[i] = s.TeamID
	}
	return teams
}

func TestInitializeWildCard(t *testing.T) {
	ctx, store, playoffs := playoffFixture(t)
	seedStandings(t, ctx, store, "d1", 2025)

	require.NoError(t, playoffs.Initialize(ctx, "d1", 2025))

	events, err := store.Events().EventsByStructuredPrefix(ctx, "d1", models.PlayoffPrefix(2025))
	require.NoError(t, err)
	require.Len(t, events, 6)

	// Seed 1 rests; 2v7, 3v6, 4v5 with the better seed at home.
	assertMatchup(t, ctx, store, models.PlayoffStructuredID(2025, models.RoundWildCard, 1), 5, 4)
	assertMatchup(t, ctx, store, models.PlayoffStructuredID(2025, models.RoundWildCard, 2), 9, 3)
	assertMatchup(t, ctx, store, models.PlayoffStructuredID(2025, models.RoundWildCard, 3), 13, 2)
	assertMatchup(t, ctx, store, models.PlayoffStructuredID(2025, models.RoundWildCard, 4), 21, 20)
	assertMatchup(t, ctx, store, models.PlayoffStructuredID(2025, models.RoundWildCard, 5), 25, 19)
	assertMatchup(t, ctx, store, models.PlayoffStructuredID(2025, models.RoundWildCard, 6), 29, 18)

	// Re-running initialization never duplicates the round.
	require.NoError(t, playoffs.Initialize(ctx, "d1", 2025))
	events, err = store.Events().EventsByStructuredPrefix(ctx, "d1", models.PlayoffPrefix(2025))
	require.NoError(t, err)
	assert.Len(t, events, 6)
}

func assertMatchup(t *testing.T, ctx context.Context, store *database.MemoryStore, structuredID string, home, away int) {
	t.Helper()
	event, err := store.Events().GetByStructuredID(ctx, "d1", structuredID)
	require.NoError(t, err)
	gotHome, err := payloadInt(event.Payload, "home_team_id")
	require.NoError(t, err)
	gotAway, err := payloadInt(event.Payload, "away_team_id")
	require.NoError(t, err)
	assert.Equal(t, home, gotHome, "%s home", structuredID)
	assert.Equal(t, away, gotAway, "%s away", structuredID)
}

// playRound records a home win for every scheduled game of the round and
// marks its events executed, then nudges the bracket forward.
func playRound(t *testing.T, ctx context.Context, store *database.MemoryStore, playoffs *PlayoffService, season int, round models.PlayoffRound, games int) {
	t.Helper()
	for i := 1; i <= games; i++ {
		id := models.PlayoffStructuredID(season, round, i)
		event, err := store.Events().GetByStructuredID(ctx, "d1", id)
		require.NoError(t, err)
		home, err := payloadInt(event.Payload, "home_team_id")
		require.NoError(t, err)
		away, err := payloadInt(event.Payload, "away_team_id")
		require.NoError(t, err)

		require.NoError(t, store.Games().InsertGame(ctx, &models.GameRecord{
			GameID: id, DynastyID: "d1", Season: season,
			SeasonType: models.SeasonTypePlayoffs,
			GameType:   models.GameTypeForRound(round),
			Date:       event.Date,
			HomeTeamID: home, AwayTeamID: away,
			HomeScore: 27, AwayScore: 17,
		}))
		require.NoError(t, store.Events().MarkExecuted(ctx, event.EventID, nil, models.EventStatusExecuted))
		_, _, err = playoffs.AdvanceBracket(ctx, "d1", season)
		require.NoError(t, err)
	}
}

func TestBracketReseedsAfterWildCard(t *testing.T) {
	ctx, store, playoffs := playoffFixture(t)
	seedStandings(t, ctx, store, "d1", 2025)
	require.NoError(t, playoffs.Initialize(ctx, "d1", 2025))

	playRound(t, ctx, store, playoffs, 2025, models.RoundWildCard, 6)

	// Home teams swept, so seeds 2-4 survive. The bye seed hosts the worst
	// survivor and the other two meet.
	assertMatchup(t, ctx, store, models.PlayoffStructuredID(2025, models.RoundDivisional, 1), 1, 13)
	assertMatchup(t, ctx, store, models.PlayoffStructuredID(2025, models.RoundDivisional, 2), 5, 9)
	assertMatchup(t, ctx, store, models.PlayoffStructuredID(2025, models.RoundDivisional, 3), 17, 29)
	assertMatchup(t, ctx, store, models.PlayoffStructuredID(2025, models.RoundDivisional, 4), 21, 25)
}

func TestBracketRunsToChampion(t *testing.T) {
	ctx, store, playoffs := playoffFixture(t)
	seedStandings(t, ctx, store, "d1", 2025)
	require.NoError(t, playoffs.Initialize(ctx, "d1", 2025))

	playRound(t, ctx, store, playoffs, 2025, models.RoundWildCard, 6)
	playRound(t, ctx, store, playoffs, 2025, models.RoundDivisional, 4)

	// Conference title games: the surviving top seeds host.
	assertMatchup(t, ctx, store, models.PlayoffStructuredID(2025, models.RoundConference, 1), 1, 5)
	assertMatchup(t, ctx, store, models.PlayoffStructuredID(2025, models.RoundConference, 2), 17, 21)
	playRound(t, ctx, store, playoffs, 2025, models.RoundConference, 2)

	// Odd season: the NFC champion is the designated home team.
	assertMatchup(t, ctx, store, models.PlayoffStructuredID(2025, models.RoundSuperBowl, 1), 17, 1)
	playRound(t, ctx, store, playoffs, 2025, models.RoundSuperBowl, 1)

	champion, done, err := playoffs.AdvanceBracket(ctx, "d1", 2025)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 17, champion)
}

func TestBracketWaitsForRoundToFinish(t *testing.T) {
	ctx, store, playoffs := playoffFixture(t)
	seedStandings(t, ctx, store, "d1", 2025)
	require.NoError(t, playoffs.Initialize(ctx, "d1", 2025))

	// Only half the wild card round is in the books.
	playRound(t, ctx, store, playoffs, 2025, models.RoundWildCard, 3)

	_, err := store.Events().GetByStructuredID(ctx, "d1",
		models.PlayoffStructuredID(2025, models.RoundDivisional, 1))
	assert.True(t, models.IsNotFound(err), "divisional round scheduled early")
}

func TestBracketView(t *testing.T) {
	ctx, store, playoffs := playoffFixture(t)
	seedStandings(t, ctx, store, "d1", 2025)
	require.NoError(t, playoffs.Initialize(ctx, "d1", 2025))
	playRound(t, ctx, store, playoffs, 2025, models.RoundWildCard, 2)

	bracket, err := playoffs.Bracket(ctx, "d1", 2025)
	require.NoError(t, err)
	require.Len(t, bracket, 6)

	assert.True(t, bracket[0].Played)
	assert.Equal(t, 27, bracket[0].HomeScore)
	assert.Equal(t, bracket[0].HomeTeamID, bracket[0].WinnerID)
	assert.False(t, bracket[5].Played)
}
