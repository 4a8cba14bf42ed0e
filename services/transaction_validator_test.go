package services

import (
	"testing"
	"time"

	"nfl-dynasty-go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fairContext builds a valid one-for-one swap between teams 1 and 2 during
// the regular season, a week before the deadline. Tests mutate it to trip
// individual rules.
func fairContext() TradeContext {
	players := map[int]models.Player{
		1: {PlayerID: 1, TeamID: 1, Status: models.PlayerStatusActive, Position: models.PositionWR, Overall: 82, Age: 26},
		2: {PlayerID: 2, TeamID: 2, Status: models.PlayerStatusActive, Position: models.PositionWR, Overall: 82, Age: 26},
	}
	deadline := TradeDeadlineDate(2025)
	return TradeContext{
		Proposal: models.TradeProposal{
			SideA:  models.TradeSide{TeamID: 1, PlayerIDs: []int{1}},
			SideB:  models.TradeSide{TeamID: 2, PlayerIDs: []int{2}},
			ValueA: 100,
			ValueB: 100,
		},
		Season:        2025,
		Phase:         models.PhaseRegularSeason,
		Date:          deadline.AddDate(0, 0, -7),
		TradeDeadline: deadline,
		Players:       players,
		Contracts:     map[int]models.Contract{},
		PicksOwned:    map[int][]models.DraftPickAsset{},
		CapSpace:      map[int]int64{1: 20_000_000, 2: 20_000_000},
		RosterSizes:   map[int]int{1: 53, 2: 53},
	}
}

func invalidReasons(t *testing.T, err error) []string {
	t.Helper()
	var invalid *models.InvalidTransactionError
	require.ErrorAs(t, err, &invalid)
	return invalid.Reasons
}

func TestValidateTradeAccepts(t *testing.T) {
	v := NewTransactionValidator(NewPhaseMachine())
	assert.NoError(t, v.ValidateTrade(fairContext()))
}

func TestValidateTradeStructure(t *testing.T) {
	v := NewTransactionValidator(NewPhaseMachine())

	tc := fairContext()
	tc.Proposal.SideB = models.TradeSide{TeamID: 1, PlayerIDs: []int{1}}
	reasons := invalidReasons(t, v.ValidateTrade(tc))
	assert.Contains(t, reasons, "both sides name the same team")
	assert.Contains(t, reasons, "player 1 appears twice")

	tc = fairContext()
	tc.Proposal.SideB.PlayerIDs = nil
	reasons = invalidReasons(t, v.ValidateTrade(tc))
	assert.Contains(t, reasons, "one side of the trade is empty")
}

func TestValidateTradeWindow(t *testing.T) {
	v := NewTransactionValidator(NewPhaseMachine())

	tc := fairContext()
	tc.Date = tc.TradeDeadline.AddDate(0, 0, 1)
	reasons := invalidReasons(t, v.ValidateTrade(tc))
	assert.Contains(t, reasons, "trade deadline has passed")

	// The window is strict: deadline day itself is already closed.
	tc = fairContext()
	tc.Date = tc.TradeDeadline
	reasons = invalidReasons(t, v.ValidateTrade(tc))
	assert.Contains(t, reasons, "trade deadline has passed")

	// The eve of the deadline still trades.
	tc = fairContext()
	tc.Date = tc.TradeDeadline.AddDate(0, 0, -1)
	assert.NoError(t, v.ValidateTrade(tc))

	// The deadline only binds the regular season; the offseason trades freely.
	tc = fairContext()
	tc.Phase = models.PhaseOffseasonFA
	tc.Date = tc.TradeDeadline.AddDate(0, 0, 150)
	assert.NoError(t, v.ValidateTrade(tc))

	// No trades once the bracket starts.
	tc = fairContext()
	tc.Phase = models.PhasePlayoffs
	reasons = invalidReasons(t, v.ValidateTrade(tc))
	assert.Contains(t, reasons, "trades not permitted during PLAYOFFS")
}

func TestValidateTradeOwnership(t *testing.T) {
	v := NewTransactionValidator(NewPhaseMachine())

	tc := fairContext()
	player := tc.Players[1]
	player.TeamID = 3
	tc.Players[1] = player
	reasons := invalidReasons(t, v.ValidateTrade(tc))
	assert.Contains(t, reasons, "player 1 is not on team 1")

	tc = fairContext()
	tc.Proposal.SideA.Picks = []models.DraftPickAsset{{Season: 2026, Round: 1, OriginTeamID: 1}}
	reasons = invalidReasons(t, v.ValidateTrade(tc))
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "does not own")

	// Owning the pick clears the rule.
	tc.PicksOwned[1] = []models.DraftPickAsset{{Season: 2026, Round: 1, OriginTeamID: 1, OwnerTeamID: 1}}
	assert.NoError(t, v.ValidateTrade(tc))
}

func TestValidateTradeCap(t *testing.T) {
	v := NewTransactionValidator(NewPhaseMachine())

	tc := fairContext()
	// Player 2 carries a fat bonus-free salary; team 1 has no room for it.
	tc.Contracts[2] = models.Contract{
		PlayerID: 2, TeamID: 2, StartSeason: 2025,
		Years: []models.ContractYear{{Season: 2025, BaseSalary: 30_000_000}},
	}
	tc.CapSpace[1] = 5_000_000
	reasons := invalidReasons(t, v.ValidateTrade(tc))
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "over the cap")

	// The sender's freed salary counts toward its own room.
	tc.CapSpace[1] = 35_000_000
	assert.NoError(t, v.ValidateTrade(tc))

	// In season, a team may land within the grace of the cap...
	tc.CapSpace[1] = 28_500_000
	assert.NoError(t, v.ValidateTrade(tc))

	// ...but the grace only exists in season.
	tc.Phase = models.PhaseOffseasonFA
	reasons = invalidReasons(t, v.ValidateTrade(tc))
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "over the cap")
}

func TestValidateTradeAssumesBonusStrippedHit(t *testing.T) {
	v := NewTransactionValidator(NewPhaseMachine())

	// The proration stays on the sender's books, so the receiver only has to
	// fit the base salary: exactly the charge the cap ledger will book.
	tc := fairContext()
	tc.Contracts[2] = models.Contract{
		PlayerID: 2, TeamID: 2, StartSeason: 2025, SigningBonus: 10_000_000,
		Years: []models.ContractYear{
			{Season: 2025, BaseSalary: 20_000_000, BonusProration: 5_000_000},
			{Season: 2026, BaseSalary: 20_000_000, BonusProration: 5_000_000},
		},
	}
	tc.CapSpace[1] = 20_000_000
	assert.NoError(t, v.ValidateTrade(tc))
	acquired := tc.Contracts[2]
	assert.Equal(t, acquired.AssumedCapHit(2025), v.capAssumed(tc.Proposal.SideB, tc))

	// A bigger base busts the room even with the bonus left behind.
	contract := tc.Contracts[2]
	contract.Years[0].BaseSalary = 23_000_000
	tc.Contracts[2] = contract
	reasons := invalidReasons(t, v.ValidateTrade(tc))
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "over the cap")
}

func TestValidateTradeRosterBounds(t *testing.T) {
	v := NewTransactionValidator(NewPhaseMachine())

	// An uneven in-season swap busts the 53-man limit.
	tc := fairContext()
	tc.Players[3] = models.Player{PlayerID: 3, TeamID: 2, Status: models.PlayerStatusActive, Position: models.PositionWR, Overall: 82, Age: 26}
	tc.Proposal.SideB.PlayerIDs = []int{2, 3}
	tc.Proposal.ValueB = 200
	tc.Proposal.ValueA = 180
	reasons := invalidReasons(t, v.ValidateTrade(tc))
	assert.Contains(t, reasons, "team 1 would exceed 53 players")

	// The same swap is legal on offseason rosters.
	tc.Phase = models.PhaseOffseasonFA
	assert.NoError(t, v.ValidateTrade(tc))

	// Nobody trades below the roster floor.
	tc = fairContext()
	tc.RosterSizes[2] = RosterMinimum
	tc.Proposal.SideA.PlayerIDs = nil
	tc.Proposal.SideA.Picks = []models.DraftPickAsset{{Season: 2026, Round: 3, OriginTeamID: 1}}
	tc.PicksOwned[1] = tc.Proposal.SideA.Picks
	tc.Proposal.ValueA = 100
	reasons = invalidReasons(t, v.ValidateTrade(tc))
	assert.Contains(t, reasons, "team 2 would fall below 46 players")
}

func TestValidateTradeFairness(t *testing.T) {
	v := NewTransactionValidator(NewPhaseMachine())

	tc := fairContext()
	tc.Proposal.ValueA = 30
	reasons := invalidReasons(t, v.ValidateTrade(tc))
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "lopsided trade")
}

func TestValidateSigning(t *testing.T) {
	v := NewTransactionValidator(NewPhaseMachine())
	freeAgent := models.Player{PlayerID: 9, Status: models.PlayerStatusFreeAgent, Position: models.PositionCB, Overall: 74, Age: 27}

	assert.NoError(t, v.ValidateSigning(freeAgent, 4_000_000, 10_000_000, 60, models.PhaseOffseasonFA))

	// Not a free agent.
	rostered := freeAgent
	rostered.Status = models.PlayerStatusActive
	rostered.TeamID = 4
	err := v.ValidateSigning(rostered, 4_000_000, 10_000_000, 60, models.PhaseOffseasonFA)
	assert.Contains(t, invalidReasons(t, err), "player 9 is not a free agent")

	// Not enough room.
	err = v.ValidateSigning(freeAgent, 4_000_000, 3_000_000, 60, models.PhaseOffseasonFA)
	reasons := invalidReasons(t, err)
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "only $3000000 available")

	// In-season signings respect the active limit, offseason the expanded one.
	err = v.ValidateSigning(freeAgent, 1_000_000, 10_000_000, ActiveRosterSize, models.PhaseRegularSeason)
	assert.Error(t, err)
	assert.NoError(t, v.ValidateSigning(freeAgent, 1_000_000, 10_000_000, ActiveRosterSize, models.PhaseOffseasonFA))
	err = v.ValidateSigning(freeAgent, 1_000_000, 10_000_000, OffseasonRosterMax, models.PhaseOffseasonFA)
	assert.Error(t, err)

	// No signings during the playoffs.
	err = v.ValidateSigning(freeAgent, 1_000_000, 10_000_000, 50, models.PhasePlayoffs)
	assert.Error(t, err)
}

func TestValidateRelease(t *testing.T) {
	v := NewTransactionValidator(NewPhaseMachine())
	player := models.Player{PlayerID: 5, TeamID: 3, Status: models.PlayerStatusActive}

	assert.NoError(t, v.ValidateRelease(player, 3, 53, models.PhaseRegularSeason))

	err := v.ValidateRelease(player, 4, 53, models.PhaseRegularSeason)
	assert.Contains(t, invalidReasons(t, err), "player 5 is not on team 4")

	err = v.ValidateRelease(player, 3, RosterMinimum, models.PhaseRegularSeason)
	reasons := invalidReasons(t, err)
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "below 46 players")

	assert.Error(t, v.ValidateRelease(player, 3, 53, models.PhasePlayoffs))
}

func TestValidateTag(t *testing.T) {
	v := NewTransactionValidator(NewPhaseMachine())
	player := models.Player{PlayerID: 8, TeamID: 6, Status: models.PlayerStatusActive, Position: models.PositionEDGE, Overall: 84, Age: 28}
	contract := &models.Contract{
		PlayerID: 8, TeamID: 6, StartSeason: 2025,
		Years: []models.ContractYear{{Season: 2025, BaseSalary: 14_000_000}},
	}
	inWindow := HonorsDate(2025).AddDate(0, 0, 5)

	assert.NoError(t, v.ValidateTag(player, contract, 6, 2025, false, models.PhaseOffseasonHonors, inWindow))

	// The window closes a week before the new league year.
	late := FranchiseTagDeadline(2025).AddDate(0, 0, 1)
	err := v.ValidateTag(player, contract, 6, 2025, false, models.PhaseOffseasonHonors, late)
	assert.Contains(t, invalidReasons(t, err), "outside the franchise tag window")

	// Tags only exist in the honors phase.
	err = v.ValidateTag(player, contract, 6, 2025, false, models.PhaseRegularSeason, inWindow)
	reasons := invalidReasons(t, err)
	require.NotEmpty(t, reasons)
	assert.Contains(t, reasons[0], "franchise tags not permitted")

	// Only expiring contracts can be tagged.
	live := &models.Contract{
		PlayerID: 8, TeamID: 6, StartSeason: 2025,
		Years: []models.ContractYear{{Season: 2025, BaseSalary: 14_000_000}, {Season: 2026, BaseSalary: 14_000_000}},
	}
	err = v.ValidateTag(player, live, 6, 2025, false, models.PhaseOffseasonHonors, inWindow)
	assert.Contains(t, invalidReasons(t, err), "player 8 is not entering free agency")

	// One tag per team per offseason.
	err = v.ValidateTag(player, contract, 6, 2025, true, models.PhaseOffseasonHonors, inWindow)
	assert.Contains(t, invalidReasons(t, err), "team 6 has already used its franchise tag")

	err = v.ValidateTag(player, contract, 7, 2025, false, models.PhaseOffseasonHonors, inWindow)
	assert.Contains(t, invalidReasons(t, err), "player 8 is not on team 7")
}

func TestTradeContextDateSemantics(t *testing.T) {
	// The window check compares instants; midnight dates keep the boundary
	// exact. The 2025 deadline lands on Tuesday, November 4.
	v := NewTransactionValidator(NewPhaseMachine())

	tc := fairContext()
	tc.TradeDeadline = TradeDeadlineDate(2025)
	tc.Date = time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, v.ValidateTrade(tc))

	tc.Date = time.Date(2025, time.November, 4, 0, 0, 0, 0, time.UTC)
	reasons := invalidReasons(t, v.ValidateTrade(tc))
	assert.Contains(t, reasons, "trade deadline has passed")
}
