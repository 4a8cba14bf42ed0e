package services

import (
	"context"
	"time"

	"nfl-dynasty-go/interfaces"
	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/models"
)

// TransactionService executes roster moves end to end: snapshot, valuation,
// validation, then mutation. Callers run it inside a dynasty transaction so
// a failure anywhere rolls the whole move back.
type TransactionService struct {
	store     interfaces.LeagueStore
	cap       *CapService
	value     *TradeValueService
	validator *TransactionValidator
	logger    *logging.Logger
}

func NewTransactionService(store interfaces.LeagueStore, cap *CapService, value *TradeValueService, validator *TransactionValidator) *TransactionService {
	return &TransactionService{
		store:     store,
		cap:       cap,
		value:     value,
		validator: validator,
		logger:    logging.WithPrefix("transactions"),
	}
}

// ExecuteTrade values, validates and applies a two-team swap.
func (t *TransactionService) ExecuteTrade(ctx context.Context, proposal models.TradeProposal, season int, phase models.Phase, date time.Time) error {
	tc, err := t.buildTradeContext(ctx, proposal, season, phase, date)
	if err != nil {
		return err
	}
	if err := t.value.ValueProposal(&tc.Proposal, tc.Players, tc.Contracts, season); err != nil {
		return err
	}
	if err := t.validator.ValidateTrade(*tc); err != nil {
		return err
	}

	if err := t.movePlayers(ctx, tc.Proposal.SideA, tc.Proposal.SideB.TeamID, tc, season, date); err != nil {
		return err
	}
	if err := t.movePlayers(ctx, tc.Proposal.SideB, tc.Proposal.SideA.TeamID, tc, season, date); err != nil {
		return err
	}
	if err := t.movePicks(ctx, proposal.DynastyID, tc.Proposal.SideA, tc.Proposal.SideB.TeamID); err != nil {
		return err
	}
	if err := t.movePicks(ctx, proposal.DynastyID, tc.Proposal.SideB, tc.Proposal.SideA.TeamID); err != nil {
		return err
	}

	t.logger.Infof("Trade executed: team %d <-> team %d (ratio %.2f)",
		proposal.SideA.TeamID, proposal.SideB.TeamID, tc.Proposal.FairnessRatio())
	return nil
}

func (t *TransactionService) movePlayers(ctx context.Context, from models.TradeSide, toTeamID int, tc *TradeContext, season int, date time.Time) error {
	for _, playerID := range from.PlayerIDs {
		contract := tc.Contracts[playerID]
		if err := t.cap.ApplyTradeContract(ctx, &contract, season, toTeamID, date); err != nil {
			return err
		}
		player := tc.Players[playerID]
		player.TeamID = toTeamID
		if err := t.store.Players().UpdatePlayer(ctx, &player); err != nil {
			return err
		}
	}
	return nil
}

func (t *TransactionService) movePicks(ctx context.Context, dynastyID string, from models.TradeSide, toTeamID int) error {
	for _, pick := range from.Picks {
		if err := t.store.Picks().TransferPick(ctx, dynastyID, pick.Season, pick.Round, pick.OriginTeamID, toTeamID); err != nil {
			return err
		}
	}
	return nil
}

func (t *TransactionService) buildTradeContext(ctx context.Context, proposal models.TradeProposal, season int, phase models.Phase, date time.Time) (*TradeContext, error) {
	tc := &TradeContext{
		Proposal:      proposal,
		Season:        season,
		Phase:         phase,
		Date:          models.DateOnly(date),
		TradeDeadline: TradeDeadlineDate(season),
		Players:       map[int]models.Player{},
		Contracts:     map[int]models.Contract{},
		PicksOwned:    map[int][]models.DraftPickAsset{},
		CapSpace:      map[int]int64{},
		RosterSizes:   map[int]int{},
	}

	for _, side := range []models.TradeSide{proposal.SideA, proposal.SideB} {
		for _, playerID := range side.PlayerIDs {
			player, err := t.store.Players().GetPlayer(ctx, proposal.DynastyID, playerID)
			if err != nil {
				if models.IsNotFound(err) {
					continue // the validator reports it
				}
				return nil, err
			}
			tc.Players[playerID] = *player
			contract, err := t.store.Contracts().ActiveContractByPlayer(ctx, proposal.DynastyID, playerID)
			if err != nil {
				if models.IsNotFound(err) {
					continue
				}
				return nil, err
			}
			tc.Contracts[playerID] = *contract
		}

		picks, err := t.store.Picks().PicksByOwner(ctx, proposal.DynastyID, side.TeamID)
		if err != nil {
			return nil, err
		}
		tc.PicksOwned[side.TeamID] = picks

		space, err := t.cap.TeamCapSpace(ctx, proposal.DynastyID, side.TeamID, season)
		if err != nil && !models.IsNotFound(err) {
			return nil, err
		}
		tc.CapSpace[side.TeamID] = space

		roster, err := t.store.Players().TeamRoster(ctx, proposal.DynastyID, side.TeamID)
		if err != nil {
			return nil, err
		}
		tc.RosterSizes[side.TeamID] = len(roster)
	}
	return tc, nil
}

// ExecuteSigning builds a contract for a free agent and applies it.
func (t *TransactionService) ExecuteSigning(ctx context.Context, dynastyID string, playerID, teamID, years int, totalValue, signingBonus int64, season int, phase models.Phase, date time.Time) error {
	player, err := t.store.Players().GetPlayer(ctx, dynastyID, playerID)
	if err != nil {
		return err
	}
	contract, err := t.cap.BuildContract(dynastyID, playerID, teamID, season, years, totalValue, signingBonus)
	if err != nil {
		return err
	}

	space, err := t.cap.TeamCapSpace(ctx, dynastyID, teamID, season)
	if err != nil && !models.IsNotFound(err) {
		return err
	}
	roster, err := t.store.Players().TeamRoster(ctx, dynastyID, teamID)
	if err != nil {
		return err
	}
	if err := t.validator.ValidateSigning(*player, contract.CapHitFor(season), space, len(roster), phase); err != nil {
		return err
	}

	if err := t.cap.ApplySigning(ctx, contract, season, date); err != nil {
		return err
	}
	player.TeamID = teamID
	player.Status = models.PlayerStatusActive
	return t.store.Players().UpdatePlayer(ctx, player)
}

// ExecuteRelease cuts a player and books the dead money. The post-June-1
// designation defers future-year proration onto next season's sheet.
func (t *TransactionService) ExecuteRelease(ctx context.Context, dynastyID string, playerID, season int, phase models.Phase, date time.Time, postJune1 bool) error {
	player, err := t.store.Players().GetPlayer(ctx, dynastyID, playerID)
	if err != nil {
		return err
	}
	contract, err := t.store.Contracts().ActiveContractByPlayer(ctx, dynastyID, playerID)
	if err != nil {
		return err
	}
	roster, err := t.store.Players().TeamRoster(ctx, dynastyID, contract.TeamID)
	if err != nil {
		return err
	}
	if err := t.validator.ValidateRelease(*player, contract.TeamID, len(roster), phase); err != nil {
		return err
	}

	apply := t.cap.ApplyRelease
	if postJune1 {
		apply = t.cap.ApplyReleasePostJune1
	}
	if err := apply(ctx, contract, season, date); err != nil {
		return err
	}
	player.TeamID = 0
	player.Status = models.PlayerStatusFreeAgent
	return t.store.Players().UpdatePlayer(ctx, player)
}

// ExecuteTag applies a team's franchise tag: a one-year fully guaranteed
// tender that keeps an expiring player off the open market.
func (t *TransactionService) ExecuteTag(ctx context.Context, dynastyID string, playerID, teamID, season int, phase models.Phase, date time.Time) error {
	player, err := t.store.Players().GetPlayer(ctx, dynastyID, playerID)
	if err != nil {
		return err
	}
	contract, err := t.store.Contracts().ActiveContractByPlayer(ctx, dynastyID, playerID)
	if err != nil {
		return err
	}
	teamContracts, err := t.store.Contracts().ActiveContractsByTeam(ctx, dynastyID, teamID)
	if err != nil {
		return err
	}
	alreadyTagged := false
	for i := range teamContracts {
		if teamContracts[i].FranchiseTag && teamContracts[i].YearFor(season+1) != nil {
			alreadyTagged = true
			break
		}
	}
	if err := t.validator.ValidateTag(*player, contract, teamID, season, alreadyTagged, phase, date); err != nil {
		return err
	}
	if err := t.cap.ApplyTag(ctx, contract, *player, season, date); err != nil {
		return err
	}
	t.logger.Infof("Team %d franchise tagged player %d for %d", teamID, playerID, season+1)
	return nil
}

// ExecuteRestructure converts base salary to bonus for cap room.
func (t *TransactionService) ExecuteRestructure(ctx context.Context, dynastyID string, playerID, season int, date time.Time) error {
	contract, err := t.store.Contracts().ActiveContractByPlayer(ctx, dynastyID, playerID)
	if err != nil {
		return err
	}
	return t.cap.Restructure(ctx, contract, season, date)
}
