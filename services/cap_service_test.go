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

func capFixture(t *testing.T) (context.Context, *database.MemoryStore, *CapService) {
	t.Helper()
	store := database.NewMemoryStore()
	return context.Background(), store, NewCapService(store)
}

func TestBuildContractLayout(t *testing.T) {
	_, _, cap := capFixture(t)

	c, err := cap.BuildContract("d1", 1, 7, 2025, 4, 20_000_000, 8_000_000)
	require.NoError(t, err)
	require.Len(t, c.Years, 4)

	for i, y := range c.Years {
		assert.Equal(t, 2025+i, y.Season)
		assert.Equal(t, int64(3_000_000), y.BaseSalary)
		assert.Equal(t, int64(2_000_000), y.BonusProration)
		assert.Equal(t, int64(5_000_000), y.CapHit())
	}
	assert.Equal(t, int64(20_000_000), c.ComputedTotalValue())
	assert.Equal(t, 2028, c.FinalSeason())
	assert.Equal(t, int64(5_000_000), c.AverageAnnualValue())
}

func TestBuildContractProrationWindow(t *testing.T) {
	_, _, cap := capFixture(t)

	// Seven-year deal: the bonus spreads over the first five seasons only.
	c, err := cap.BuildContract("d1", 1, 7, 2025, 7, 70_000_000, 10_000_000)
	require.NoError(t, err)
	require.Len(t, c.Years, 7)
	for i, y := range c.Years {
		if i < MaxProrationYears {
			assert.Equal(t, int64(2_000_000), y.BonusProration, "year %d", i)
		} else {
			assert.Zero(t, y.BonusProration, "year %d", i)
		}
	}
	assert.Equal(t, int64(70_000_000), c.ComputedTotalValue())
}

func TestBuildContractRemainders(t *testing.T) {
	_, _, cap := capFixture(t)

	// 10M over 3 years with a 1M bonus: nothing divides evenly, but the
	// totals must reconcile to the dollar.
	c, err := cap.BuildContract("d1", 1, 7, 2025, 3, 10_000_000, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(10_000_000), c.ComputedTotalValue())

	var proration int64
	for _, y := range c.Years {
		proration += y.BonusProration
	}
	assert.Equal(t, c.SigningBonus, proration)
}

func TestBuildContractRejects(t *testing.T) {
	_, _, cap := capFixture(t)

	_, err := cap.BuildContract("d1", 1, 7, 2025, 0, 10_000_000, 0)
	assert.Error(t, err)
	_, err = cap.BuildContract("d1", 1, 7, 2025, MaxContractYears+1, 10_000_000, 0)
	assert.Error(t, err)
	_, err = cap.BuildContract("d1", 1, 7, 2025, 2, 10_000_000, 11_000_000)
	assert.Error(t, err)
}

func TestSignThenReleaseAcceleration(t *testing.T) {
	ctx, store, cap := capFixture(t)
	day := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	c, err := cap.BuildContract("d1", 1, 7, 2025, 4, 20_000_000, 8_000_000)
	require.NoError(t, err)
	require.NoError(t, cap.ApplySigning(ctx, c, 2025, day))

	record, err := store.Cap().GetCapRecord(ctx, "d1", 7, 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(5_000_000), record.ActiveCapHits)
	assert.Zero(t, record.DeadMoney)

	// Cutting him the same season: the hit comes off, all four proration
	// years accelerate into dead money.
	require.NoError(t, cap.ApplyRelease(ctx, c, 2025, day.AddDate(0, 0, 30)))
	record, err = store.Cap().GetCapRecord(ctx, "d1", 7, 2025)
	require.NoError(t, err)
	assert.Zero(t, record.ActiveCapHits)
	assert.Equal(t, int64(8_000_000), record.DeadMoney)
	assert.Equal(t, models.ContractStatusReleased, c.Status)

	stored, err := store.Contracts().GetContract(ctx, "d1", c.ContractID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusReleased, stored.Status)

	// Exactly one ledger row per mutation.
	txns, err := store.Cap().CapTransactions(ctx, "d1", 7, 2025)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, models.CapTransactionSigning, txns[0].Type)
	assert.Equal(t, models.CapTransactionRelease, txns[1].Type)
}

func TestReleaseInLaterSeason(t *testing.T) {
	ctx, store, cap := capFixture(t)
	day := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	c, err := cap.BuildContract("d1", 1, 7, 2025, 4, 20_000_000, 8_000_000)
	require.NoError(t, err)
	require.NoError(t, cap.ApplySigning(ctx, c, 2025, day))

	// A 2026 cut accelerates the three remaining proration years.
	require.NoError(t, cap.ApplyRelease(ctx, c, 2026, day.AddDate(1, 0, 0)))
	record, err := store.Cap().GetCapRecord(ctx, "d1", 7, 2026)
	require.NoError(t, err)
	assert.Equal(t, int64(6_000_000), record.DeadMoney)
}

func TestReleasePostJune1SplitsDeadMoney(t *testing.T) {
	ctx, store, cap := capFixture(t)
	day := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	// 8M bonus over four years: 2M prorates each season.
	c, err := cap.BuildContract("d1", 1, 7, 2025, 4, 20_000_000, 8_000_000)
	require.NoError(t, err)
	require.NoError(t, cap.ApplySigning(ctx, c, 2025, day))

	// Post-June-1 cut: this season eats only its own 2M of proration, the
	// other three years' 6M lands on the 2026 sheet.
	require.NoError(t, cap.ApplyReleasePostJune1(ctx, c, 2025, time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)))

	current, err := store.Cap().GetCapRecord(ctx, "d1", 7, 2025)
	require.NoError(t, err)
	assert.Zero(t, current.ActiveCapHits)
	assert.Equal(t, int64(2_000_000), current.DeadMoney)

	next, err := store.Cap().GetCapRecord(ctx, "d1", 7, 2026)
	require.NoError(t, err)
	assert.Zero(t, next.ActiveCapHits)
	assert.Equal(t, int64(6_000_000), next.DeadMoney)
}

func TestFranchiseTagExtendsContract(t *testing.T) {
	ctx, store, cap := capFixture(t)
	day := time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC)

	// Expiring one-year deal with no bonus: the tender is 120% of the hit.
	c, err := cap.BuildContract("d1", 8, 7, 2025, 1, 10_000_000, 0)
	require.NoError(t, err)
	require.NoError(t, cap.ApplySigning(ctx, c, 2025, day.AddDate(-1, 0, 0)))
	player := models.Player{PlayerID: 8, TeamID: 7, Status: models.PlayerStatusActive, Position: models.PositionEDGE, Overall: 60, Age: 28}

	require.NoError(t, cap.ApplyTag(ctx, c, player, 2025, day))

	assert.Equal(t, 2026, c.FinalSeason())
	assert.True(t, c.FranchiseTag)
	year := c.YearFor(2026)
	require.NotNil(t, year)
	assert.Equal(t, int64(12_000_000), year.BaseSalary)
	assert.Equal(t, int64(12_000_000), year.Guaranteed)
	assert.Equal(t, int64(22_000_000), c.TotalValue)
	assert.Equal(t, c.TotalValue, c.ComputedTotalValue())

	record, err := store.Cap().GetCapRecord(ctx, "d1", 7, 2026)
	require.NoError(t, err)
	assert.Equal(t, int64(12_000_000), record.ActiveCapHits)

	txns, err := store.Cap().CapTransactions(ctx, "d1", 7, 2025)
	require.NoError(t, err)
	require.NotEmpty(t, txns)
	assert.Equal(t, models.CapTransactionFranchiseTag, txns[len(txns)-1].Type)
}

func TestFranchiseTagConvertsVoidYear(t *testing.T) {
	ctx, _, cap := capFixture(t)
	day := time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC)

	c, err := cap.BuildContract("d1", 9, 3, 2025, 1, 12_000_000, 0)
	require.NoError(t, err)
	require.NoError(t, cap.ApplySigning(ctx, c, 2025, day.AddDate(-1, 0, 0)))
	// The restructure hangs proration on void years through 2029.
	require.NoError(t, cap.Restructure(ctx, c, 2025, day.AddDate(0, -6, 0)))
	require.True(t, c.YearFor(2026).VoidYear)

	player := models.Player{PlayerID: 9, TeamID: 3, Status: models.PlayerStatusActive, Position: models.PositionWR, Overall: 72, Age: 29}
	require.NoError(t, cap.ApplyTag(ctx, c, player, 2025, day))

	// 2026 is now a real guaranteed season; its proration stays scheduled
	// instead of accelerating at expiry.
	year := c.YearFor(2026)
	require.NotNil(t, year)
	assert.False(t, year.VoidYear)
	assert.Equal(t, TagSalary(player, c, 2025), year.BaseSalary)
	assert.Equal(t, 2026, c.FinalSeason())
	assert.Equal(t, c.TotalValue, c.ComputedTotalValue())
}

func TestRestructureAddsVoidYears(t *testing.T) {
	ctx, store, cap := capFixture(t)
	day := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)

	c, err := cap.BuildContract("d1", 2, 7, 2025, 3, 30_000_000, 0)
	require.NoError(t, err)
	require.NoError(t, cap.ApplySigning(ctx, c, 2025, day))
	oldHit := c.CapHitFor(2025)

	require.NoError(t, cap.Restructure(ctx, c, 2025, day))

	// Base drops to the veteran minimum; the conversion spreads over the
	// three real years plus two new void years.
	year := c.YearFor(2025)
	require.NotNil(t, year)
	assert.Equal(t, VeteranMinimumSalary, year.BaseSalary)
	require.Len(t, c.Years, MaxProrationYears)
	assert.True(t, c.Years[3].VoidYear)
	assert.True(t, c.Years[4].VoidYear)

	convertible := 10_000_000 - VeteranMinimumSalary
	assert.Equal(t, convertible, c.SigningBonus)

	var proration int64
	for _, y := range c.Years {
		proration += y.BonusProration
	}
	assert.Equal(t, convertible, proration)

	newHit := c.CapHitFor(2025)
	assert.Less(t, newHit, oldHit)

	record, err := store.Cap().GetCapRecord(ctx, "d1", 7, 2025)
	require.NoError(t, err)
	assert.Equal(t, newHit, record.ActiveCapHits)
}

func TestRestructureAtMinimumRejected(t *testing.T) {
	ctx, _, cap := capFixture(t)
	day := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)

	c, err := cap.BuildContract("d1", 2, 7, 2025, 2, 2*VeteranMinimumSalary, 0)
	require.NoError(t, err)
	require.NoError(t, cap.ApplySigning(ctx, c, 2025, day))

	err = cap.Restructure(ctx, c, 2025, day)
	var invalid *models.InvalidTransactionError
	assert.ErrorAs(t, err, &invalid)
}

func TestExpireContractsBooksVoidDeadMoney(t *testing.T) {
	ctx, store, cap := capFixture(t)
	day := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Players().CreatePlayers(ctx, []models.Player{{
		DynastyID: "d1", PlayerID: 3, Position: models.PositionTE,
		Overall: 78, Age: 28, TeamID: 7, Status: models.PlayerStatusActive,
	}}))

	c, err := cap.BuildContract("d1", 3, 7, 2025, 1, 12_000_000, 0)
	require.NoError(t, err)
	require.NoError(t, cap.ApplySigning(ctx, c, 2025, day))
	// The restructure hangs proration on four void years past 2025.
	require.NoError(t, cap.Restructure(ctx, c, 2025, day))
	voidDead := c.RemainingProration(2026)
	require.Positive(t, voidDead)

	require.NoError(t, cap.ExpireContracts(ctx, "d1", 2026, day.AddDate(1, 0, 0)))

	stored, err := store.Contracts().GetContract(ctx, "d1", c.ContractID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusExpired, stored.Status)

	player, err := store.Players().GetPlayer(ctx, "d1", 3)
	require.NoError(t, err)
	assert.Equal(t, models.PlayerStatusFreeAgent, player.Status)
	assert.Zero(t, player.TeamID)

	record, err := store.Cap().GetCapRecord(ctx, "d1", 7, 2026)
	require.NoError(t, err)
	assert.Equal(t, voidDead, record.DeadMoney)
}

func TestExpireContractsLeavesLiveDeals(t *testing.T) {
	ctx, store, cap := capFixture(t)
	day := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Players().CreatePlayers(ctx, []models.Player{{
		DynastyID: "d1", PlayerID: 4, Position: models.PositionLB,
		Overall: 75, Age: 26, TeamID: 2, Status: models.PlayerStatusActive,
	}}))
	c, err := cap.BuildContract("d1", 4, 2, 2025, 3, 15_000_000, 3_000_000)
	require.NoError(t, err)
	require.NoError(t, cap.ApplySigning(ctx, c, 2025, day))

	require.NoError(t, cap.ExpireContracts(ctx, "d1", 2026, day.AddDate(1, 0, 0)))

	stored, err := store.Contracts().GetContract(ctx, "d1", c.ContractID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusActive, stored.Status)
}

func TestRolloverCarryover(t *testing.T) {
	ctx, store, cap := capFixture(t)
	day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	// Team 7 finishes 2025 with 10M of room.
	require.NoError(t, store.Cap().SaveCapRecord(ctx, &models.SalaryCapRecord{
		DynastyID: "d1", TeamID: 7, Season: 2025,
		CapLimit: SalaryCapLimit, ActiveCapHits: SalaryCapLimit - 10_000_000,
	}))
	// A retirement already booked 3M of dead money against 2026.
	require.NoError(t, store.Cap().SaveCapRecord(ctx, &models.SalaryCapRecord{
		DynastyID: "d1", TeamID: 7, Season: 2026, DeadMoney: 3_000_000,
	}))
	// One live deal carries a 7M hit into 2026.
	c, err := cap.BuildContract("d1", 5, 7, 2025, 2, 14_000_000, 0)
	require.NoError(t, err)
	require.NoError(t, store.Contracts().CreateContract(ctx, c))

	require.NoError(t, cap.RolloverCarryover(ctx, "d1", 2025, day))

	next, err := store.Cap().GetCapRecord(ctx, "d1", 7, 2026)
	require.NoError(t, err)
	assert.Equal(t, SalaryCapLimit, next.CapLimit)
	assert.Equal(t, int64(10_000_000), next.Carryover)
	assert.Equal(t, int64(7_000_000), next.ActiveCapHits)
	assert.Equal(t, int64(3_000_000), next.DeadMoney)

	// Teams with no 2025 sheet still open a fresh one without carryover.
	other, err := store.Cap().GetCapRecord(ctx, "d1", 12, 2026)
	require.NoError(t, err)
	assert.Zero(t, other.Carryover)
	assert.Equal(t, SalaryCapLimit, other.CapLimit)
}

func TestRolloverNeverCarriesNegativeSpace(t *testing.T) {
	ctx, store, cap := capFixture(t)
	day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Cap().SaveCapRecord(ctx, &models.SalaryCapRecord{
		DynastyID: "d1", TeamID: 1, Season: 2025,
		CapLimit: SalaryCapLimit, ActiveCapHits: SalaryCapLimit + 5_000_000,
	}))
	require.NoError(t, cap.RolloverCarryover(ctx, "d1", 2025, day))

	next, err := store.Cap().GetCapRecord(ctx, "d1", 1, 2026)
	require.NoError(t, err)
	assert.Zero(t, next.Carryover)
}

func TestCheckCompliance(t *testing.T) {
	ctx, store, cap := capFixture(t)

	require.NoError(t, store.Cap().SaveCapRecord(ctx, &models.SalaryCapRecord{
		DynastyID: "d1", TeamID: 1, Season: 2025,
		CapLimit: SalaryCapLimit, ActiveCapHits: SalaryCapLimit - 1,
	}))
	assert.NoError(t, cap.CheckCompliance(ctx, "d1", 2025))

	require.NoError(t, store.Cap().SaveCapRecord(ctx, &models.SalaryCapRecord{
		DynastyID: "d1", TeamID: 2, Season: 2025,
		CapLimit: SalaryCapLimit, ActiveCapHits: SalaryCapLimit + 400_000,
	}))
	err := cap.CheckCompliance(ctx, "d1", 2025)
	var violation *models.CapViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, 2, violation.TeamID)
	assert.Equal(t, int64(400_000), violation.Overage)
}

func TestTradeContractSplitsMoney(t *testing.T) {
	ctx, store, cap := capFixture(t)
	day := time.Date(2025, time.October, 20, 0, 0, 0, 0, time.UTC)

	c, err := cap.BuildContract("d1", 6, 7, 2025, 4, 20_000_000, 8_000_000)
	require.NoError(t, err)
	require.NoError(t, cap.ApplySigning(ctx, c, 2025, day))

	require.NoError(t, cap.ApplyTradeContract(ctx, c, 2025, 12, day))

	// Sender keeps the full remaining proration as dead money.
	from, err := store.Cap().GetCapRecord(ctx, "d1", 7, 2025)
	require.NoError(t, err)
	assert.Zero(t, from.ActiveCapHits)
	assert.Equal(t, int64(8_000_000), from.DeadMoney)

	// Receiver assumes base salary only.
	to, err := store.Cap().GetCapRecord(ctx, "d1", 12, 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(3_000_000), to.ActiveCapHits)
	assert.Zero(t, to.DeadMoney)

	assert.Equal(t, 12, c.TeamID)
	for _, y := range c.Years {
		assert.Zero(t, y.BonusProration, "season %d", y.Season)
	}

	// The contract the receiver holds sheds the stripped bonus money and the
	// bookkeeping identity survives the move.
	assert.Equal(t, int64(12_000_000), c.TotalValue)
	assert.Zero(t, c.SigningBonus)
	assert.Equal(t, c.TotalValue, c.ComputedTotalValue())

	stored, err := store.Contracts().GetContract(ctx, "d1", c.ContractID)
	require.NoError(t, err)
	assert.Equal(t, stored.TotalValue, stored.ComputedTotalValue())
}
