package services

import (
	"testing"

	"nfl-dynasty-go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wr(overall, age int) models.Player {
	return models.Player{Position: models.PositionWR, Overall: overall, Age: age}
}

func TestPlayerValueCurve(t *testing.T) {
	v := NewTradeValueService()

	// Nothing below replacement level carries trade value.
	assert.Zero(t, v.PlayerValue(wr(50, 25), nil))
	assert.Zero(t, v.PlayerValue(wr(45, 25), nil))

	// Superlinear growth: each rating point is worth more than the last.
	low := v.PlayerValue(wr(70, 25), nil)
	mid := v.PlayerValue(wr(80, 25), nil)
	high := v.PlayerValue(wr(90, 25), nil)
	assert.Greater(t, mid, low)
	assert.Greater(t, high-mid, mid-low)

	// The age curve peaks young and falls off the cliff past 32.
	assert.Greater(t, v.PlayerValue(wr(85, 23), nil), v.PlayerValue(wr(85, 27), nil))
	assert.Greater(t, v.PlayerValue(wr(85, 27), nil), v.PlayerValue(wr(85, 31), nil))
	assert.Greater(t, v.PlayerValue(wr(85, 31), nil), v.PlayerValue(wr(85, 34), nil))
}

func TestPositionMultipliers(t *testing.T) {
	v := NewTradeValueService()
	at := func(pos models.Position) float64 {
		return v.PlayerValue(models.Player{Position: pos, Overall: 85, Age: 27}, nil)
	}

	// Tight ends carry no multiplier and anchor the scale.
	base := at(models.PositionTE)
	require.Positive(t, base)

	assert.InDelta(t, base*2.0, at(models.PositionQB), 1e-9)
	assert.InDelta(t, base*2.0, at(models.PositionEDGE), 1e-9)
	assert.InDelta(t, base*2.0, at(models.PositionLT), 1e-9)
	assert.InDelta(t, base*1.5, at(models.PositionWR), 1e-9)
	assert.InDelta(t, base*1.5, at(models.PositionCB), 1e-9)
	assert.InDelta(t, base*1.2, at(models.PositionRB), 1e-9)
	assert.InDelta(t, base, at(models.PositionLB), 1e-9)
	assert.InDelta(t, base, at(models.PositionS), 1e-9)

	// Specialists trade at a discount regardless of rating.
	assert.Less(t, at(models.PositionK), base)
	assert.Less(t, at(models.PositionP), base)
}

// dealAt builds a three-year contract at the given average annual value.
func dealAt(aav int64) *models.Contract {
	return &models.Contract{
		StartSeason: 2025,
		TotalValue:  aav * 3,
		Years: []models.ContractYear{
			{Season: 2025, BaseSalary: aav},
			{Season: 2026, BaseSalary: aav},
			{Season: 2027, BaseSalary: aav},
		},
	}
}

func TestPlayerValueContractAdjustment(t *testing.T) {
	v := NewTradeValueService()
	p := wr(84, 26)
	years, total, _ := MarketContract(p)
	market := total / int64(years)

	face := v.PlayerValue(p, nil)
	require.Positive(t, face)

	// A team-friendly deal adds twenty percent, an overpay bleeds thirty.
	assert.InDelta(t, face*1.2, v.PlayerValue(p, dealAt(market*6/10)), 1e-9)
	assert.InDelta(t, face, v.PlayerValue(p, dealAt(market)), 1e-9)
	assert.InDelta(t, face*0.7, v.PlayerValue(p, dealAt(market*3/2)), 1e-9)
}

func TestPickSlotChart(t *testing.T) {
	assert.InDelta(t, 3000, pickSlotValue(1), 0.01)
	assert.InDelta(t, 580, pickSlotValue(models.NumTeams+1), 0.01)

	// Monotonically non-increasing through the whole draft.
	last := DraftRounds * models.NumTeams
	for overall := 2; overall <= last; overall++ {
		assert.LessOrEqual(t, pickSlotValue(overall), pickSlotValue(overall-1), "overall %d", overall)
	}

	// Out-of-range slots clamp instead of exploding.
	assert.Equal(t, pickSlotValue(1), pickSlotValue(0))
	assert.Equal(t, pickSlotValue(last), pickSlotValue(last+50))
}

func TestPickValueDiscounting(t *testing.T) {
	v := NewTradeValueService()
	pick := models.DraftPickAsset{Season: 2025, Round: 1, PickInRound: 1}

	current := v.PickValue(pick, 2025)
	assert.InDelta(t, 3000, current, 0.01)

	// Five percent haircut per season out.
	pick.Season = 2026
	assert.InDelta(t, current*0.95, v.PickValue(pick, 2025), 0.01)
	pick.Season = 2027
	assert.InDelta(t, current*0.95*0.95, v.PickValue(pick, 2025), 0.01)

	// Unslotted future picks price at the middle of their round.
	unslotted := models.DraftPickAsset{Season: 2026, Round: 2, PickInRound: 0}
	slotted := models.DraftPickAsset{Season: 2026, Round: 2, PickInRound: models.NumTeams / 2}
	assert.Equal(t, v.PickValue(slotted, 2025), v.PickValue(unslotted, 2025))
}

func TestSideValueAndFairness(t *testing.T) {
	v := NewTradeValueService()
	players := map[int]models.Player{
		1: {PlayerID: 1, Position: models.PositionWR, Overall: 84, Age: 26},
		2: {PlayerID: 2, Position: models.PositionWR, Overall: 84, Age: 26},
	}

	proposal := &models.TradeProposal{
		SideA: models.TradeSide{TeamID: 1, PlayerIDs: []int{1}},
		SideB: models.TradeSide{TeamID: 2, PlayerIDs: []int{2}},
	}
	require.NoError(t, v.ValueProposal(proposal, players, nil, 2025))
	assert.Equal(t, proposal.ValueA, proposal.ValueB)
	assert.InDelta(t, 1.0, proposal.FairnessRatio(), 1e-9)
	assert.Equal(t, models.FairnessVeryFair, proposal.Tier())

	// A bargain contract tilts the same swap toward its holder's side.
	years, total, _ := MarketContract(players[1])
	contracts := map[int]models.Contract{1: *dealAt(total / int64(years) / 2)}
	require.NoError(t, v.ValueProposal(proposal, players, contracts, 2025))
	assert.Greater(t, proposal.ValueA, proposal.ValueB)

	// A star for a late-round pick is a rejection.
	lopsided := &models.TradeProposal{
		SideA: models.TradeSide{TeamID: 1, Picks: []models.DraftPickAsset{{Season: 2025, Round: 7, PickInRound: 16}}},
		SideB: models.TradeSide{TeamID: 2, PlayerIDs: []int{1}},
	}
	require.NoError(t, v.ValueProposal(lopsided, players, nil, 2025))
	assert.Equal(t, models.FairnessReject, lopsided.Tier())

	// Unknown players surface as errors, not zero values.
	bad := &models.TradeProposal{
		SideA: models.TradeSide{TeamID: 1, PlayerIDs: []int{99}},
		SideB: models.TradeSide{TeamID: 2, PlayerIDs: []int{2}},
	}
	assert.Error(t, v.ValueProposal(bad, players, nil, 2025))
}

func TestFairnessTierBoundaries(t *testing.T) {
	cases := []struct {
		a, b float64
		tier models.FairnessTier
	}{
		{100, 100, models.FairnessVeryFair},
		{95, 100, models.FairnessVeryFair},
		{94, 100, models.FairnessFair},
		{80, 100, models.FairnessFair},
		{79, 100, models.FairnessBorderline},
		{70, 100, models.FairnessBorderline},
		{69, 100, models.FairnessReject},
		{0, 100, models.FairnessReject},
	}
	for _, tc := range cases {
		p := &models.TradeProposal{ValueA: tc.a, ValueB: tc.b}
		assert.Equal(t, tc.tier, p.Tier(), "%v vs %v", tc.a, tc.b)
	}
}
