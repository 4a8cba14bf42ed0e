package services

import (
	"fmt"
	"time"

	"nfl-dynasty-go/models"
)

// TransactionValidator is the pure rule gate in front of execution. It never
// mutates anything: callers assemble a context snapshot and get back either
// nil or an InvalidTransactionError carrying every failed rule.
type TransactionValidator struct {
	phases *PhaseMachine
}

func NewTransactionValidator(phases *PhaseMachine) *TransactionValidator {
	return &TransactionValidator{phases: phases}
}

// TradeContext is the read-only snapshot a trade is judged against.
type TradeContext struct {
	Proposal      models.TradeProposal
	Season        int
	Phase         models.Phase
	Date          time.Time
	TradeDeadline time.Time

	Players     map[int]models.Player          // every player named in the proposal
	Contracts   map[int]models.Contract       // active contract per named player
	PicksOwned  map[int][]models.DraftPickAsset // per team
	CapSpace    map[int]int64                  // per team, pre-trade
	RosterSizes map[int]int                    // per team, pre-trade
}

// ValidateTrade runs every trade rule and reports all failures at once.
func (v *TransactionValidator) ValidateTrade(tc TradeContext) error {
	var reasons []string

	a, b := tc.Proposal.SideA, tc.Proposal.SideB

	// Structure: two distinct teams, something moving, no duplicated assets.
	if a.TeamID == b.TeamID {
		reasons = append(reasons, "both sides name the same team")
	}
	if len(a.PlayerIDs)+len(a.Picks) == 0 || len(b.PlayerIDs)+len(b.Picks) == 0 {
		reasons = append(reasons, "one side of the trade is empty")
	}
	seen := map[int]bool{}
	for _, id := range append(append([]int{}, a.PlayerIDs...), b.PlayerIDs...) {
		if seen[id] {
			reasons = append(reasons, fmt.Sprintf("player %d appears twice", id))
		}
		seen[id] = true
	}

	// Window: the phase must allow trades, and in-season trades close the
	// moment the deadline date arrives.
	if err := v.phases.CanExecute(tc.Phase, models.EventKindTrade); err != nil {
		reasons = append(reasons, fmt.Sprintf("trades not permitted during %s", tc.Phase))
	} else if tc.Phase == models.PhaseRegularSeason && !tc.Date.Before(tc.TradeDeadline) {
		reasons = append(reasons, "trade deadline has passed")
	}

	// Ownership.
	reasons = append(reasons, v.ownershipReasons(a, tc)...)
	reasons = append(reasons, v.ownershipReasons(b, tc)...)

	// Cap: each team must fit after the swap. The sender frees its current
	// hit but eats the accelerated proration; the receiver takes on the
	// bonus-stripped hit. In-season trades get a small grace that the
	// final-roster deadline squares up.
	grace := int64(0)
	if tc.Phase == models.PhaseRegularSeason {
		grace = InSeasonCapGrace
	}
	for _, pair := range [][2]models.TradeSide{{a, b}, {b, a}} {
		out, in := pair[0], pair[1]
		space, ok := tc.CapSpace[out.TeamID]
		if !ok {
			continue
		}
		after := space + v.capFreed(out, tc) - v.capAssumed(in, tc)
		if after < -grace {
			reasons = append(reasons, fmt.Sprintf("team %d would be $%d over the cap", out.TeamID, -after))
		}
	}

	// Rosters stay inside their bounds.
	maxRoster := ActiveRosterSize
	if tc.Phase != models.PhaseRegularSeason && tc.Phase != models.PhasePlayoffs {
		maxRoster = OffseasonRosterMax
	}
	for _, pair := range [][2]models.TradeSide{{a, b}, {b, a}} {
		out, in := pair[0], pair[1]
		after := tc.RosterSizes[out.TeamID] - len(out.PlayerIDs) + len(in.PlayerIDs)
		if after < RosterMinimum {
			reasons = append(reasons, fmt.Sprintf("team %d would fall below %d players", out.TeamID, RosterMinimum))
		}
		if after > maxRoster {
			reasons = append(reasons, fmt.Sprintf("team %d would exceed %d players", out.TeamID, maxRoster))
		}
	}

	// Fairness floor.
	if tc.Proposal.Tier() == models.FairnessReject {
		reasons = append(reasons, fmt.Sprintf("lopsided trade: fairness ratio %.2f", tc.Proposal.FairnessRatio()))
	}

	if len(reasons) > 0 {
		return &models.InvalidTransactionError{Reasons: reasons}
	}
	return nil
}

func (v *TransactionValidator) ownershipReasons(side models.TradeSide, tc TradeContext) []string {
	var reasons []string
	for _, id := range side.PlayerIDs {
		p, ok := tc.Players[id]
		if !ok {
			reasons = append(reasons, fmt.Sprintf("player %d does not exist", id))
			continue
		}
		if !p.OnTeam(side.TeamID) {
			reasons = append(reasons, fmt.Sprintf("player %d is not on team %d", id, side.TeamID))
		}
	}
	for _, pick := range side.Picks {
		owned := false
		for _, held := range tc.PicksOwned[side.TeamID] {
			if held.Season == pick.Season && held.Round == pick.Round && held.OriginTeamID == pick.OriginTeamID {
				owned = true
				break
			}
		}
		if !owned {
			reasons = append(reasons, fmt.Sprintf("team %d does not own the %d round-%d pick (origin %d)",
				side.TeamID, pick.Season, pick.Round, pick.OriginTeamID))
		}
	}
	return reasons
}

// capFreed is the sender's net relief: the departing hit minus accelerated
// dead money.
func (v *TransactionValidator) capFreed(side models.TradeSide, tc TradeContext) int64 {
	var freed int64
	for _, id := range side.PlayerIDs {
		c, ok := tc.Contracts[id]
		if !ok {
			continue
		}
		freed += c.CapHitFor(tc.Season) - c.RemainingProration(tc.Season)
	}
	return freed
}

// capAssumed is the receiver's new charge: the bonus-stripped hit the cap
// ledger books when the contract actually moves.
func (v *TransactionValidator) capAssumed(side models.TradeSide, tc TradeContext) int64 {
	var assumed int64
	for _, id := range side.PlayerIDs {
		c, ok := tc.Contracts[id]
		if !ok {
			continue
		}
		assumed += c.AssumedCapHit(tc.Season)
	}
	return assumed
}

// ValidateSigning checks a free-agent signing before execution.
func (v *TransactionValidator) ValidateSigning(player models.Player, firstYearHit, capSpace int64, rosterSize int, phase models.Phase) error {
	var reasons []string
	if err := v.phases.CanExecute(phase, models.EventKindSigning); err != nil {
		reasons = append(reasons, fmt.Sprintf("signings not permitted during %s", phase))
	}
	if !player.IsFreeAgent() {
		reasons = append(reasons, fmt.Sprintf("player %d is not a free agent", player.PlayerID))
	}
	if capSpace < firstYearHit {
		reasons = append(reasons, fmt.Sprintf("signing needs $%d but only $%d available", firstYearHit, capSpace))
	}
	maxRoster := ActiveRosterSize
	if phase != models.PhaseRegularSeason && phase != models.PhasePlayoffs {
		maxRoster = OffseasonRosterMax
	}
	if rosterSize+1 > maxRoster {
		reasons = append(reasons, fmt.Sprintf("roster already at the %d-player limit", maxRoster))
	}
	if len(reasons) > 0 {
		return &models.InvalidTransactionError{Reasons: reasons}
	}
	return nil
}

// ValidateTag checks a franchise tag before execution. The tag window runs
// from the honors ceremony until a week before the new league year, and each
// team gets one tag per offseason.
func (v *TransactionValidator) ValidateTag(player models.Player, contract *models.Contract, teamID, season int, teamAlreadyTagged bool, phase models.Phase, date time.Time) error {
	var reasons []string
	if err := v.phases.CanExecute(phase, models.EventKindFranchiseTag); err != nil {
		reasons = append(reasons, fmt.Sprintf("franchise tags not permitted during %s", phase))
	}
	day := models.DateOnly(date)
	if day.Before(HonorsDate(season)) || day.After(FranchiseTagDeadline(season)) {
		reasons = append(reasons, "outside the franchise tag window")
	}
	if !player.OnTeam(teamID) {
		reasons = append(reasons, fmt.Sprintf("player %d is not on team %d", player.PlayerID, teamID))
	}
	if contract.FinalSeason() != season {
		reasons = append(reasons, fmt.Sprintf("player %d is not entering free agency", player.PlayerID))
	}
	if teamAlreadyTagged {
		reasons = append(reasons, fmt.Sprintf("team %d has already used its franchise tag", teamID))
	}
	if len(reasons) > 0 {
		return &models.InvalidTransactionError{Reasons: reasons}
	}
	return nil
}

// ValidateRelease checks a cut before execution.
func (v *TransactionValidator) ValidateRelease(player models.Player, teamID, rosterSize int, phase models.Phase) error {
	var reasons []string
	if err := v.phases.CanExecute(phase, models.EventKindRelease); err != nil {
		reasons = append(reasons, fmt.Sprintf("releases not permitted during %s", phase))
	}
	if !player.OnTeam(teamID) {
		reasons = append(reasons, fmt.Sprintf("player %d is not on team %d", player.PlayerID, teamID))
	}
	if rosterSize-1 < RosterMinimum {
		reasons = append(reasons, fmt.Sprintf("release would drop team %d below %d players", teamID, RosterMinimum))
	}
	if len(reasons) > 0 {
		return &models.InvalidTransactionError{Reasons: reasons}
	}
	return nil
}
