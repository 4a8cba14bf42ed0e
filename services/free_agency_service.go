package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"nfl-dynasty-go/interfaces"
	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/models"
)

// FreeAgencyService runs the offseason signing market in waves and enforces
// the final-roster deadline. Wave one moves only the top of the market;
// later waves work down until depth signings clear the pool.
type FreeAgencyService struct {
	store        interfaces.LeagueStore
	cap          *CapService
	transactions *TransactionService
	logger       *logging.Logger
}

func NewFreeAgencyService(store interfaces.LeagueStore, cap *CapService, transactions *TransactionService) *FreeAgencyService {
	return &FreeAgencyService{
		store:        store,
		cap:          cap,
		transactions: transactions,
		logger:       logging.WithPrefix("free_agency"),
	}
}

// waveFloors is the minimum overall that moves in each wave.
var waveFloors = [4]int{75, 68, 60, 0}

// MarketContract prices a free agent: average annual value follows the same
// superlinear curve as trade value, length shortens with age, and roughly a
// third of the money is signing bonus.
func MarketContract(player models.Player) (years int, totalValue, signingBonus int64) {
	switch {
	case player.Age < 26:
		years = 4
	case player.Age < 30:
		years = 3
	case player.Age < 33:
		years = 2
	default:
		years = 1
	}
	aav := int64(math.Pow(math.Max(0, float64(player.Overall-50)), 1.8) * 45_000)
	if aav < VeteranMinimumSalary {
		aav = VeteranMinimumSalary
	}
	totalValue = aav * int64(years)
	signingBonus = totalValue * 30 / 100
	return years, totalValue, signingBonus
}

// RunWave matches the market's current tier to team needs, richest cap
// sheets shopping first. Signings that fail validation (cap, roster) are
// skipped, not fatal.
func (f *FreeAgencyService) RunWave(ctx context.Context, dynastyID string, season, wave int, phase models.Phase, date time.Time) (int, error) {
	floor := waveFloors[len(waveFloors)-1]
	if wave >= 1 && wave <= len(waveFloors) {
		floor = waveFloors[wave-1]
	}

	pool, err := f.store.Players().PlayersByStatus(ctx, dynastyID, models.PlayerStatusFreeAgent)
	if err != nil {
		return 0, err
	}

	type shopper struct {
		teamID int
		space  int64
		needs  map[models.Position]bool
	}
	shoppers := make([]shopper, 0, models.NumTeams)
	for teamID := 1; teamID <= models.NumTeams; teamID++ {
		space, err := f.cap.TeamCapSpace(ctx, dynastyID, teamID, season)
		if err != nil && !models.IsNotFound(err) {
			return 0, err
		}
		roster, err := f.store.Players().TeamRoster(ctx, dynastyID, teamID)
		if err != nil {
			return 0, err
		}
		needs := make(map[models.Position]bool)
		for _, pos := range positionNeeds(roster) {
			needs[pos] = true
		}
		shoppers = append(shoppers, shopper{teamID: teamID, space: space, needs: needs})
	}
	sort.Slice(shoppers, func(i, j int) bool { return shoppers[i].space > shoppers[j].space })

	signed := 0
	signedThisWave := make(map[int]int)
	for _, player := range pool { // pool arrives best-first
		if player.Overall < floor {
			break
		}
		for i := range shoppers {
			s := &shoppers[i]
			if signedThisWave[s.teamID] >= 2 {
				continue
			}
			// Early waves fill needs; the last wave fills depth anywhere.
			if wave < len(waveFloors) && !s.needs[player.Position] {
				continue
			}
			years, total, bonus := MarketContract(player)
			err := f.transactions.ExecuteSigning(ctx, dynastyID, player.PlayerID, s.teamID, years, total, bonus, season, phase, date)
			if err != nil {
				var invalid *models.InvalidTransactionError
				if errors.As(err, &invalid) {
					continue
				}
				return signed, err
			}
			signed++
			signedThisWave[s.teamID]++
			s.needs[player.Position] = false
			s.space -= total / int64(years)
			break
		}
	}
	f.logger.Infof("FA wave %d: %d signings", wave, signed)
	return signed, nil
}

// EnforceFinalRosters trims every roster to the active limit (lowest-rated
// players first) and then forces cap compliance, restructuring the biggest
// contracts before resorting to cuts. Returns CapViolationError only when a
// team cannot possibly comply.
func (f *FreeAgencyService) EnforceFinalRosters(ctx context.Context, dynastyID string, season int, phase models.Phase, date time.Time) error {
	for teamID := 1; teamID <= models.NumTeams; teamID++ {
		roster, err := f.store.Players().TeamRoster(ctx, dynastyID, teamID)
		if err != nil {
			return err
		}
		// TeamRoster sorts best-first; cut from the back.
		for len(roster) > ActiveRosterSize {
			victim := roster[len(roster)-1]
			if err := f.transactions.ExecuteRelease(ctx, dynastyID, victim.PlayerID, season, phase, date, false); err != nil {
				return err
			}
			roster = roster[:len(roster)-1]
		}
		if err := f.makeCompliant(ctx, dynastyID, teamID, season, date); err != nil {
			return err
		}
	}
	return f.cap.CheckCompliance(ctx, dynastyID, season)
}

func (f *FreeAgencyService) makeCompliant(ctx context.Context, dynastyID string, teamID, season int, date time.Time) error {
	space, err := f.cap.TeamCapSpace(ctx, dynastyID, teamID, season)
	if err != nil {
		if models.IsNotFound(err) {
			return nil
		}
		return err
	}
	if space >= 0 {
		return nil
	}

	contracts, err := f.store.Contracts().ActiveContractsByTeam(ctx, dynastyID, teamID)
	if err != nil {
		return err
	}
	sort.Slice(contracts, func(i, j int) bool {
		return contracts[i].CapHitFor(season) > contracts[j].CapHitFor(season)
	})
	for i := range contracts {
		if space >= 0 {
			break
		}
		before := contracts[i].CapHitFor(season)
		if err := f.cap.Restructure(ctx, &contracts[i], season, date); err != nil {
			var invalid *models.InvalidTransactionError
			if errors.As(err, &invalid) {
				continue // already at the minimum
			}
			return err
		}
		space += before - contracts[i].CapHitFor(season)
	}
	return nil
}
