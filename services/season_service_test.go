package services

import (
	"context"
	"testing"
	"time"

	"nfl-dynasty-go/database"
	"nfl-dynasty-go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leagueFixture(t *testing.T) (context.Context, *database.MemoryStore, *LeagueController) {
	t.Helper()
	store := database.NewMemoryStore()
	phases := NewPhaseMachine()
	capService := NewCapService(store)
	value := NewTradeValueService()
	validator := NewTransactionValidator(phases)
	transactions := NewTransactionService(store, capService, value, validator)
	standings := NewStandingsService(store)
	games := NewGameEventService(store, NewRatingSimulator(), standings)
	freeAgency := NewFreeAgencyService(store, capService, transactions)
	draft := NewDraftService(store, NewDraftOrderService(), capService)
	retirement := NewRetirementService(store, capService)
	playoffs := NewPlayoffService(store, standings)
	gm := NewGMProposalService(store, value)
	dispatcher := NewEventDispatcher(store, phases, games, transactions, freeAgency, draft, retirement, playoffs)
	controller := NewLeagueController(store, dispatcher, phases, NewScheduleService(),
		playoffs, draft, retirement, capService, gm, 450, 0)
	return context.Background(), store, controller
}

func seedDynasty(t *testing.T, ctx context.Context, store *database.MemoryStore, season int) {
	t.Helper()
	require.NoError(t, NewDynastySeedService(store).Seed(ctx, "d1", "Test League", season))
}

func TestAdvanceDaysValidation(t *testing.T) {
	ctx, _, controller := leagueFixture(t)
	_, err := controller.AdvanceDays(ctx, "d1", 0)
	assert.Error(t, err)
}

func TestAdvanceDayMovesClock(t *testing.T) {
	ctx, store, controller := leagueFixture(t)
	seedDynasty(t, ctx, store, 2025)

	report, err := controller.AdvanceDays(ctx, "d1", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Days)
	assert.True(t, report.State.CurrentDate.Equal(date(2025, time.May, 4)))
	assert.Equal(t, models.PhaseOffseason, report.State.Phase)

	// The persisted state matches the report.
	state, err := store.Dynasties().GetState(ctx, "d1")
	require.NoError(t, err)
	assert.True(t, state.Equal(report.State))
}

func TestPhaseExitHookIsSingular(t *testing.T) {
	ctx, store, controller := leagueFixture(t)
	seedDynasty(t, ctx, store, 2025)

	// The hook is re-planted every day; the structured id keeps it to one.
	_, err := controller.AdvanceDays(ctx, "d1", 5)
	require.NoError(t, err)

	count, err := store.Events().CountByStructuredPrefix(ctx, "d1", "hook_2025_start_preseason", "")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPlayoffHookWaitsForFullSlate(t *testing.T) {
	ctx, store, controller := leagueFixture(t)
	seedDynasty(t, ctx, store, 2025)

	// Park the dynasty on the nominal transition date with zero games played.
	state, err := store.Dynasties().GetState(ctx, "d1")
	require.NoError(t, err)
	state.Phase = models.PhaseRegularSeason
	state.CurrentWeek = RegularSeasonWeeks
	state.CurrentDate = WeekStart(2025, RegularSeasonWeeks).AddDate(0, 0, 5)
	require.NoError(t, store.Dynasties().SaveState(ctx, *state))

	// The calendar alone does not end the season.
	report, err := controller.AdvanceDays(ctx, "d1", 1)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseRegularSeason, report.State.Phase)
	count, err := store.Events().CountByStructuredPrefix(ctx, "d1", "hook_2025_start_playoffs", "")
	require.NoError(t, err)
	assert.Zero(t, count)

	// With all 272 results in the books the hook plants and fires, even a
	// day late.
	kickoff := SeasonKickoff(2025)
	for n := 1; n <= models.NumTeams*GamesPerTeam/2; n++ {
		_, err := store.Events().Insert(ctx, &models.Event{
			DynastyID:    "d1",
			Date:         kickoff,
			Kind:         models.EventKindGame,
			Status:       models.EventStatusExecuted,
			StructuredID: models.StructuredID("game", 2025, "week_1", n),
		})
		require.NoError(t, err)
	}
	report, err = controller.AdvanceDays(ctx, "d1", 1)
	require.NoError(t, err)
	assert.Equal(t, models.PhasePlayoffs, report.State.Phase)
	count, err = store.Events().CountByStructuredPrefix(ctx, "d1", "hook_2025_start_playoffs", "")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAdvanceToEndOfPhase(t *testing.T) {
	ctx, store, controller := leagueFixture(t)
	seedDynasty(t, ctx, store, 2025)

	var progressDays int
	report, err := controller.AdvanceToEndOfPhase(ctx, "d1", func(day int, state models.DynastyState) {
		progressDays = day
	})
	require.NoError(t, err)
	assert.Equal(t, models.PhasePreseason, report.State.Phase)
	assert.Equal(t, 2025, report.State.Season)
	assert.Equal(t, report.Days, progressDays)

	// Training camp put the exhibition slate and the cut deadline on the books.
	events, err := store.Events().EventsForDateRange(ctx, "d1",
		PreseasonWeekStart(2025, 1), SeasonKickoff(2025))
	require.NoError(t, err)
	games, deadlines := 0, 0
	for _, e := range events {
		switch e.Kind {
		case models.EventKindGame:
			games++
		case models.EventKindDeadline:
			deadlines++
		}
	}
	assert.Equal(t, PreseasonWeeks*models.NumTeams/2, games)
	assert.Equal(t, 1, deadlines)
}

// TestFullSeasonCycle drives a fresh dynasty through an entire league year:
// camp, preseason, eighteen regular-season weeks, the bracket, honors, free
// agency, the draft, and the rollover into the next offseason.
func TestFullSeasonCycle(t *testing.T) {
	if testing.Short() {
		t.Skip("full season simulation")
	}
	ctx, store, controller := leagueFixture(t)
	seedDynasty(t, ctx, store, 2025)

	report, err := controller.SimulateToEndOfSeason(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, 2026, report.State.Season)
	assert.Equal(t, models.PhaseOffseason, report.State.Phase)
	assert.Zero(t, report.State.CurrentWeek)

	// Every scheduled game went final.
	games, err := store.Games().GamesBySeason(ctx, "d1", 2025, "")
	require.NoError(t, err)
	counts := make(map[models.GameType]int)
	for _, g := range games {
		counts[g.GameType]++
	}
	assert.Equal(t, models.NumTeams*GamesPerTeam/2, counts[models.GameTypeRegular])
	assert.Equal(t, PreseasonWeeks*models.NumTeams/2, counts[models.GameTypePreseason])
	assert.Equal(t, 6, counts[models.GameTypeWildCard])
	assert.Equal(t, 4, counts[models.GameTypeDivisional])
	assert.Equal(t, 2, counts[models.GameTypeConference])
	assert.Equal(t, 1, counts[models.GameTypeSuperBowl])

	// The title game decided the hardware.
	final, err := store.Games().GetGame(ctx, "d1",
		models.PlayoffStructuredID(2025, models.RoundSuperBowl, 1))
	require.NoError(t, err)
	honors, err := store.Careers().GetSeasonHonors(ctx, "d1", 2025)
	require.NoError(t, err)
	assert.Equal(t, final.WinnerTeamID(), honors.ChampionTeamID)
	assert.Equal(t, final.LoserTeamID(), honors.RunnerUpTeamID)
	assert.NotZero(t, honors.MVPPlayerID)

	// Standings played out in full and the new slate is clean.
	rows, err := store.Standings().GetStandings(ctx, "d1", 2025)
	require.NoError(t, err)
	require.Len(t, rows, models.NumTeams)
	for _, row := range rows {
		assert.Equal(t, GamesPerTeam, row.GamesPlayed(), "team %d", row.TeamID)
	}
	fresh, err := store.Standings().GetStandings(ctx, "d1", 2026)
	require.NoError(t, err)
	require.Len(t, fresh, models.NumTeams)
	for _, row := range fresh {
		assert.Zero(t, row.GamesPlayed(), "team %d", row.TeamID)
	}

	// The new league year opened a cap sheet for every team.
	records, err := store.Cap().CapRecordsBySeason(ctx, "d1", 2026)
	require.NoError(t, err)
	require.Len(t, records, models.NumTeams)
	for _, record := range records {
		assert.Equal(t, SalaryCapLimit, record.CapLimit)
		assert.GreaterOrEqual(t, record.Carryover, int64(0), "team %d", record.TeamID)
	}

	// The draft filled every selection and minted picks two years out.
	selections, err := store.Events().CountByStructuredPrefix(ctx, "d1",
		"draft_2025_pick_", models.EventStatusExecuted)
	require.NoError(t, err)
	assert.Equal(t, DraftRounds*models.NumTeams, selections)
	minted, err := store.Picks().PicksBySeason(ctx, "d1", 2028)
	require.NoError(t, err)
	assert.Len(t, minted, DraftRounds*models.NumTeams)

	// Rosters survived the year inside the legal bounds.
	for teamID := 1; teamID <= models.NumTeams; teamID++ {
		roster, err := store.Players().TeamRoster(ctx, "d1", teamID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(roster), RosterMinimum, "team %d", teamID)
		assert.LessOrEqual(t, len(roster), OffseasonRosterMax, "team %d", teamID)
	}
}
