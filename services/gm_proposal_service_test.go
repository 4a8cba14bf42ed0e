package services

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"nfl-dynasty-go/database"
	"nfl-dynasty-go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupRatingDepthWeights(t *testing.T) {
	room := []models.Player{
		{PlayerID: 1, Position: models.PositionWR, Overall: 80},
		{PlayerID: 2, Position: models.PositionWR, Overall: 70},
		{PlayerID: 3, Position: models.PositionWR, Overall: 60},
	}

	// Starter full weight, backup half, third man a quarter.
	assert.InDelta(t, (80+35+15)/1.75, groupRating(room, models.PositionWR), 1e-9)

	// A lone starter scores low because the missing depth counts as zero.
	assert.InDelta(t, 80/1.75, groupRating(room[:1], models.PositionWR), 1e-9)
	assert.Zero(t, groupRating(room, models.PositionQB))
}

func TestPositionNeedsRankWeakestFirst(t *testing.T) {
	var roster []models.Player
	id := 1
	add := func(pos models.Position, overall int) {
		roster = append(roster, models.Player{PlayerID: id, Position: pos, Overall: overall})
		id++
	}
	// A stocked receiver room clears the bar; everything else is a lone body
	// except the missing quarterback and the slightly better running back.
	add(models.PositionWR, 80)
	add(models.PositionWR, 70)
	add(models.PositionWR, 60)
	add(models.PositionRB, 70)
	for _, pos := range []models.Position{
		models.PositionTE, models.PositionLT, models.PositionOL, models.PositionDL,
		models.PositionEDGE, models.PositionLB, models.PositionCB, models.PositionS,
	} {
		add(pos, 60)
	}

	needs := positionNeeds(roster)

	// Everything but WR, K and P sits below starter grade.
	require.Len(t, needs, 10)
	assert.Equal(t, models.PositionQB, needs[0], "the empty group shops first")
	assert.Equal(t, models.PositionRB, needs[len(needs)-1])
	assert.NotContains(t, needs, models.PositionWR)
	assert.NotContains(t, needs, models.PositionK)

	// Same roster, same ordering every time.
	assert.Equal(t, needs, positionNeeds(roster))
}

// gmFixtureRoster puts one sixty-overall body at every position but QB on the
// team, leaving the quarterback group as the clear top need.
func gmFixtureRoster(t *testing.T, ctx context.Context, store *database.MemoryStore, teamID int) {
	t.Helper()
	positions := []models.Position{
		models.PositionRB, models.PositionWR, models.PositionTE, models.PositionLT,
		models.PositionOL, models.PositionDL, models.PositionEDGE, models.PositionLB,
		models.PositionCB, models.PositionS,
	}
	players := make([]models.Player, 0, len(positions))
	for i, pos := range positions {
		players = append(players, models.Player{
			DynastyID: "d1", PlayerID: teamID*100 + i + 1, TeamID: teamID,
			Position: pos, Overall: 60, Age: 27, Status: models.PlayerStatusActive,
		})
	}
	require.NoError(t, store.Players().CreatePlayers(ctx, players))
}

func TestSigningEventShopsWeakestGroup(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	g := NewGMProposalService(store, NewTradeValueService())
	gmFixtureRoster(t, ctx, store, 1)

	// The wire has a better receiver, but the quarterback hole comes first.
	require.NoError(t, store.Players().CreatePlayers(ctx, []models.Player{
		{DynastyID: "d1", PlayerID: 900, Position: models.PositionWR, Overall: 90, Age: 26, Status: models.PlayerStatusFreeAgent},
		{DynastyID: "d1", PlayerID: 901, Position: models.PositionQB, Overall: 82, Age: 28, Status: models.PlayerStatusFreeAgent},
	}))

	event, err := g.signingEvent(ctx, "d1", 1, 2025, 3, date(2025, time.October, 7))
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, models.EventKindSigning, event.Kind)
	assert.Equal(t, "signing_2025_gm_team1_tick_3", event.StructuredID)
	assert.Equal(t, 901, event.Payload["player_id"])
	assert.Equal(t, 1, event.Payload["team_id"])

	years, total, bonus := MarketContract(models.Player{Position: models.PositionQB, Overall: 82, Age: 28})
	assert.Equal(t, years, event.Payload["years"])
	assert.Equal(t, total, event.Payload["total_value"])
	assert.Equal(t, bonus, event.Payload["signing_bonus"])
}

func TestProposeTradeChasesTopNeed(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	g := NewGMProposalService(store, NewTradeValueService())
	gmFixtureRoster(t, ctx, store, 1)

	// The tight end is the roster's last man and the trade's throw-in.
	throwIn := models.Player{
		DynastyID: "d1", PlayerID: 111, TeamID: 1,
		Position: models.PositionTE, Overall: 54, Age: 27, Status: models.PlayerStatusActive,
	}
	// Team 2 carries two startable quarterbacks; the backup is surplus.
	require.NoError(t, store.Players().CreatePlayers(ctx, []models.Player{
		throwIn,
		{DynastyID: "d1", PlayerID: 201, TeamID: 2, Position: models.PositionQB, Overall: 80, Age: 27, Status: models.PlayerStatusActive},
		{DynastyID: "d1", PlayerID: 202, TeamID: 2, Position: models.PositionQB, Overall: 76, Age: 27, Status: models.PlayerStatusActive},
	}))
	require.NoError(t, store.Picks().CreatePicks(ctx, []models.DraftPickAsset{
		{DynastyID: "d1", Season: 2025, Round: 2, PickInRound: 16, OwnerTeamID: 1, OriginTeamID: 1},
		{DynastyID: "d1", Season: 2025, Round: 3, PickInRound: 1, OwnerTeamID: 1, OriginTeamID: 1},
	}))

	proposal, err := g.ProposeTrade(ctx, "d1", 1, 2025, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	require.NotNil(t, proposal)

	// The surplus backup comes over, never the other team's starter.
	assert.Equal(t, []int{202}, proposal.SideB.PlayerIDs)
	assert.Equal(t, []int{111}, proposal.SideA.PlayerIDs)

	// The third-rounder prices closest to the remainder; the second-rounder
	// would be an overpay outside the fair window.
	require.Len(t, proposal.SideA.Picks, 1)
	assert.Equal(t, 3, proposal.SideA.Picks[0].Round)
}

func TestRestructureEventOnlyWhenCapTight(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	g := NewGMProposalService(store, NewTradeValueService())

	contract := func(id string, playerID int, base int64) *models.Contract {
		return &models.Contract{
			ContractID: id, DynastyID: "d1", PlayerID: playerID, TeamID: 1,
			StartSeason: 2025, TotalValue: base,
			Years:  []models.ContractYear{{Season: 2025, BaseSalary: base}},
			Status: models.ContractStatusActive,
		}
	}
	require.NoError(t, store.Contracts().CreateContract(ctx, contract("c11", 11, 20_000_000)))
	require.NoError(t, store.Contracts().CreateContract(ctx, contract("c12", 12, 2_000_000)))

	// Plenty of room: the sheet is left alone.
	require.NoError(t, store.Cap().SaveCapRecord(ctx, &models.SalaryCapRecord{
		DynastyID: "d1", TeamID: 1, Season: 2025, CapLimit: 200_000_000, ActiveCapHits: 100_000_000,
	}))
	event, err := g.restructureEvent(ctx, "d1", 1, 2025, 4, date(2025, time.October, 14))
	require.NoError(t, err)
	assert.Nil(t, event)

	// Tight sheet: the biggest contract gets converted.
	require.NoError(t, store.Cap().SaveCapRecord(ctx, &models.SalaryCapRecord{
		DynastyID: "d1", TeamID: 1, Season: 2025, CapLimit: 200_000_000, ActiveCapHits: 197_000_000,
	}))
	event, err = g.restructureEvent(ctx, "d1", 1, 2025, 4, date(2025, time.October, 14))
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, models.EventKindRestructure, event.Kind)
	assert.Equal(t, 11, event.Payload["player_id"])
}

func TestCutEventShedsCleanContractOnly(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	g := NewGMProposalService(store, NewTradeValueService())

	var players []models.Player
	for i := 1; i <= 47; i++ {
		players = append(players, models.Player{
			DynastyID: "d1", PlayerID: 500 + i, TeamID: 5,
			Position: models.PositionLB, Overall: 80, Age: 27, Status: models.PlayerStatusActive,
		})
	}
	// Two sub-starter players at the back: the worst carries dead money, the
	// next one is a clean release.
	players = append(players,
		models.Player{DynastyID: "d1", PlayerID: 548, TeamID: 5, Position: models.PositionLB, Overall: 60, Age: 27, Status: models.PlayerStatusActive},
		models.Player{DynastyID: "d1", PlayerID: 549, TeamID: 5, Position: models.PositionLB, Overall: 55, Age: 27, Status: models.PlayerStatusActive},
	)
	require.NoError(t, store.Players().CreatePlayers(ctx, players))

	require.NoError(t, store.Contracts().CreateContract(ctx, &models.Contract{
		ContractID: "c549", DynastyID: "d1", PlayerID: 549, TeamID: 5,
		StartSeason: 2025, SigningBonus: 1_000_000, TotalValue: 2_500_000,
		Years:  []models.ContractYear{{Season: 2025, BaseSalary: 1_500_000, BonusProration: 1_000_000}},
		Status: models.ContractStatusActive,
	}))
	require.NoError(t, store.Contracts().CreateContract(ctx, &models.Contract{
		ContractID: "c548", DynastyID: "d1", PlayerID: 548, TeamID: 5,
		StartSeason: 2025, TotalValue: 1_500_000,
		Years:  []models.ContractYear{{Season: 2025, BaseSalary: 1_500_000}},
		Status: models.ContractStatusActive,
	}))

	event, err := g.cutEvent(ctx, "d1", 5, 2025, 2, date(2025, time.September, 30))
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, models.EventKindRelease, event.Kind)
	assert.Equal(t, 548, event.Payload["player_id"])

	// A roster already near the floor sheds nobody.
	var thin []models.Player
	for i := 1; i <= RosterMinimum; i++ {
		thin = append(thin, models.Player{
			DynastyID: "d1", PlayerID: 600 + i, TeamID: 6,
			Position: models.PositionLB, Overall: 60, Age: 27, Status: models.PlayerStatusActive,
		})
	}
	require.NoError(t, store.Players().CreatePlayers(ctx, thin))
	event, err = g.cutEvent(ctx, "d1", 6, 2025, 2, date(2025, time.September, 30))
	require.NoError(t, err)
	assert.Nil(t, event)
}

func TestScheduleProposalsClosesTradesAtDeadline(t *testing.T) {
	ctx, store, _ := leagueFixture(t)
	seedDynasty(t, ctx, store, 2025)
	g := NewGMProposalService(store, NewTradeValueService())

	deadline := TradeDeadlineDate(2025)
	for week := 9; week <= 16; week++ {
		rng := rand.New(rand.NewSource(int64(week)))
		tickDate := deadline.AddDate(0, 0, 7*(week-9))
		_, err := g.ScheduleProposals(ctx, "d1", 2025, week, tickDate, models.PhaseRegularSeason, rng)
		require.NoError(t, err, "week %d", week)
	}

	// From deadline day on, not a single trade hits the wire; the same rolls
	// surface as signings or sheet moves instead.
	trades, err := store.Events().CountByStructuredPrefix(ctx, "d1", "trade_2025_gm_", "")
	require.NoError(t, err)
	assert.Zero(t, trades)
}
