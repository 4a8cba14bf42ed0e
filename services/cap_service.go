package services

import (
	"context"
	"fmt"
	"time"

	"nfl-dynasty-go/interfaces"
	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/models"

	"github.com/google/uuid"
)

// CapService owns all salary-cap math. Every mutation updates the team's cap
// sheet and appends exactly one immutable ledger row per affected team.
// Compliance is enforced once, at the final-roster deadline, not on every
// move.
type CapService struct {
	store  interfaces.LeagueStore
	logger *logging.Logger
}

func NewCapService(store interfaces.LeagueStore) *CapService {
	return &CapService{
		store:  store,
		logger: logging.WithPrefix("cap"),
	}
}

// BuildContract lays out contract years: base salary split evenly with the
// remainder on the final year, signing bonus prorated over at most five
// seasons. Void years are never created at signing; only restructures add
// them.
func (c *CapService) BuildContract(dynastyID string, playerID, teamID, startSeason, years int, totalValue, signingBonus int64) (*models.Contract, error) {
	if years < 1 || years > MaxContractYears {
		return nil, fmt.Errorf("contract length %d outside 1..%d", years, MaxContractYears)
	}
	if signingBonus < 0 || signingBonus > totalValue {
		return nil, fmt.Errorf("signing bonus $%d exceeds total value $%d", signingBonus, totalValue)
	}

	prorationYears := years
	if prorationYears > MaxProrationYears {
		prorationYears = MaxProrationYears
	}
	perYearBonus := signingBonus / int64(prorationYears)
	bonusRemainder := signingBonus - perYearBonus*int64(prorationYears)

	baseTotal := totalValue - signingBonus
	perYearBase := baseTotal / int64(years)
	baseRemainder := baseTotal - perYearBase*int64(years)

	contract := &models.Contract{
		ContractID:   uuid.NewString(),
		DynastyID:    dynastyID,
		PlayerID:     playerID,
		TeamID:       teamID,
		StartSeason:  startSeason,
		SigningBonus: signingBonus,
		TotalValue:   totalValue,
		Status:       models.ContractStatusActive,
	}
	for i := 0; i < years; i++ {
		year := models.ContractYear{
			Season:     startSeason + i,
			BaseSalary: perYearBase,
		}
		if i == years-1 {
			year.BaseSalary += baseRemainder
		}
		if i < prorationYears {
			year.BonusProration = perYearBonus
			if i == 0 {
				year.BonusProration += bonusRemainder
			}
		}
		contract.Years = append(contract.Years, year)
	}

	if contract.ComputedTotalValue() != contract.TotalValue {
		return nil, fmt.Errorf("contract math drift: computed $%d, declared $%d",
			contract.ComputedTotalValue(), contract.TotalValue)
	}
	return contract, nil
}

// ApplySigning persists a new contract and charges its first-year hit.
func (c *CapService) ApplySigning(ctx context.Context, contract *models.Contract, season int, date time.Time) error {
	if contract.ComputedTotalValue() != contract.TotalValue {
		return fmt.Errorf("contract %s totals do not reconcile", contract.ContractID)
	}
	if err := c.store.Contracts().CreateContract(ctx, contract); err != nil {
		return err
	}

	hit := contract.CapHitFor(season)
	if err := c.adjustCap(ctx, contract.DynastyID, contract.TeamID, season, hit, 0); err != nil {
		return err
	}
	return c.ledger(ctx, contract, contract.TeamID, season, date, models.CapTransactionSigning,
		hit, contract.TotalValue-hit,
		fmt.Sprintf("signed player %d: %d years, $%d total", contract.PlayerID, contract.RealYears(), contract.TotalValue))
}

// ApplyRelease cuts a player under the standard designation: the current-year
// hit comes off the books and every remaining bonus proration accelerates into
// the season as dead money.
func (c *CapService) ApplyRelease(ctx context.Context, contract *models.Contract, season int, date time.Time) error {
	return c.release(ctx, contract, season, date, false)
}

// ApplyReleasePostJune1 cuts a player under the post-June-1 designation: only
// this season's proration stays as current dead money, the rest lands on next
// season's sheet.
func (c *CapService) ApplyReleasePostJune1(ctx context.Context, contract *models.Contract, season int, date time.Time) error {
	return c.release(ctx, contract, season, date, true)
}

func (c *CapService) release(ctx context.Context, contract *models.Contract, season int, date time.Time, postJune1 bool) error {
	hit := contract.CapHitFor(season)
	dead := contract.RemainingProration(season)
	futureRelief := c.futureCommitment(contract, season)

	deadNow := dead
	var deadNext int64
	if postJune1 {
		deadNow = 0
		if year := contract.YearFor(season); year != nil {
			deadNow = year.BonusProration
		}
		deadNext = dead - deadNow
	}

	contract.Status = models.ContractStatusReleased
	if err := c.store.Contracts().UpdateContract(ctx, contract); err != nil {
		return err
	}
	if err := c.adjustCap(ctx, contract.DynastyID, contract.TeamID, season, -hit, deadNow); err != nil {
		return err
	}
	if deadNext > 0 {
		if err := c.adjustCap(ctx, contract.DynastyID, contract.TeamID, season+1, 0, deadNext); err != nil {
			return err
		}
	}
	description := fmt.Sprintf("released player %d: $%d dead money", contract.PlayerID, dead)
	if postJune1 {
		description = fmt.Sprintf("released player %d (post-June 1): $%d dead now, $%d in %d",
			contract.PlayerID, deadNow, deadNext, season+1)
	}
	return c.ledger(ctx, contract, contract.TeamID, season, date, models.CapTransactionRelease,
		deadNow-hit, deadNext-futureRelief, description)
}

// TagSalary is the one-year franchise tender: the larger of 120% of the
// player's current cap hit and 120% of his market average annual value.
func TagSalary(player models.Player, contract *models.Contract, season int) int64 {
	tender := contract.CapHitFor(season) * 120 / 100
	years, total, _ := MarketContract(player)
	if market := total / int64(years) * 120 / 100; market > tender {
		tender = market
	}
	if tender < VeteranMinimumSalary {
		tender = VeteranMinimumSalary
	}
	return tender
}

// ApplyTag extends an expiring contract by one fully guaranteed season at the
// tender. A restructure void year at the tag season becomes the real tag year,
// so its proration no longer accelerates at expiry.
func (c *CapService) ApplyTag(ctx context.Context, contract *models.Contract, player models.Player, season int, date time.Time) error {
	salary := TagSalary(player, contract, season)
	tagSeason := season + 1
	if y := contract.YearFor(tagSeason); y != nil {
		y.VoidYear = false
		y.BaseSalary = salary
		y.Guaranteed = salary
	} else {
		contract.Years = append(contract.Years, models.ContractYear{
			Season:     tagSeason,
			BaseSalary: salary,
			Guaranteed: salary,
		})
	}
	contract.TotalValue += salary
	contract.FranchiseTag = true
	if err := c.store.Contracts().UpdateContract(ctx, contract); err != nil {
		return err
	}
	// The league-year rollover recomputes next season's hits from active
	// contracts; booking now keeps the sheet queryable in between.
	if err := c.adjustCap(ctx, contract.DynastyID, contract.TeamID, tagSeason, contract.CapHitFor(tagSeason), 0); err != nil {
		return err
	}
	return c.ledger(ctx, contract, contract.TeamID, season, date, models.CapTransactionFranchiseTag,
		0, salary,
		fmt.Sprintf("franchise tagged player %d: $%d for %d", contract.PlayerID, salary, tagSeason))
}

// ApplyRetirement books the same acceleration as a release but keeps its own
// ledger type.
func (c *CapService) ApplyRetirement(ctx context.Context, contract *models.Contract, season int, date time.Time) error {
	hit := contract.CapHitFor(season)
	dead := contract.RemainingProration(season)
	futureRelief := c.futureCommitment(contract, season)

	contract.Status = models.ContractStatusRetired
	if err := c.store.Contracts().UpdateContract(ctx, contract); err != nil {
		return err
	}
	if err := c.adjustCap(ctx, contract.DynastyID, contract.TeamID, season, -hit, dead); err != nil {
		return err
	}
	return c.ledger(ctx, contract, contract.TeamID, season, date, models.CapTransactionRetirement,
		dead-hit, -futureRelief,
		fmt.Sprintf("player %d retired: $%d dead money", contract.PlayerID, dead))
}

// ApplyTradeContract moves a contract between teams. The sending team keeps
// every remaining bonus proration as dead money; the receiving team assumes
// base salary and cash bonuses only.
func (c *CapService) ApplyTradeContract(ctx context.Context, contract *models.Contract, season, toTeamID int, date time.Time) error {
	fromTeamID := contract.TeamID
	oldHit := contract.CapHitFor(season)
	dead := contract.RemainingProration(season)
	newHit := contract.AssumedCapHit(season)

	contract.TeamID = toTeamID
	for i := range contract.Years {
		if contract.Years[i].Season >= season {
			contract.Years[i].BonusProration = 0
		}
	}
	// The stripped proration stays on the sender's books, so the contract the
	// receiver holds is worth that much less.
	contract.TotalValue -= dead
	contract.SigningBonus -= dead
	if err := c.store.Contracts().UpdateContract(ctx, contract); err != nil {
		return err
	}

	if err := c.adjustCap(ctx, contract.DynastyID, fromTeamID, season, -oldHit, dead); err != nil {
		return err
	}
	if err := c.ledger(ctx, contract, fromTeamID, season, date, models.CapTransactionTrade,
		dead-oldHit, 0,
		fmt.Sprintf("traded player %d away: $%d dead money", contract.PlayerID, dead)); err != nil {
		return err
	}

	if err := c.adjustCap(ctx, contract.DynastyID, toTeamID, season, newHit, 0); err != nil {
		return err
	}
	return c.ledger(ctx, contract, toTeamID, season, date, models.CapTransactionTrade,
		newHit, c.futureCommitment(contract, season),
		fmt.Sprintf("acquired player %d: $%d this season", contract.PlayerID, newHit))
}

// Restructure converts this season's base salary above the veteran minimum
// into signing bonus, prorated over the remaining seasons plus however many
// void years it takes to reach the five-year proration window.
func (c *CapService) Restructure(ctx context.Context, contract *models.Contract, season int, date time.Time) error {
	year := contract.YearFor(season)
	if year == nil || year.VoidYear {
		return fmt.Errorf("contract %s has no restructurable year in %d", contract.ContractID, season)
	}
	convertible := year.BaseSalary - VeteranMinimumSalary
	if convertible <= 0 {
		return &models.InvalidTransactionError{Reasons: []string{
			fmt.Sprintf("player %d base salary already at the minimum", contract.PlayerID)}}
	}

	remaining := 0
	lastSeason := season
	for _, y := range contract.Years {
		if y.Season >= season {
			remaining++
			if y.Season > lastSeason {
				lastSeason = y.Season
			}
		}
	}
	spread := remaining
	voidYearsToAdd := 0
	if spread < MaxProrationYears {
		voidYearsToAdd = MaxProrationYears - spread
		spread = MaxProrationYears
	}
	for i := 0; i < voidYearsToAdd; i++ {
		contract.Years = append(contract.Years, models.ContractYear{
			Season:   lastSeason + i + 1,
			VoidYear: true,
		})
	}

	perYear := convertible / int64(spread)
	remainder := convertible - perYear*int64(spread)
	oldHit := contract.CapHitFor(season)
	for i := range contract.Years {
		if contract.Years[i].Season < season {
			continue
		}
		contract.Years[i].BonusProration += perYear
		if contract.Years[i].Season == season {
			contract.Years[i].BaseSalary = VeteranMinimumSalary
			contract.Years[i].BonusProration += remainder
		}
	}
	contract.SigningBonus += convertible
	newHit := contract.CapHitFor(season)

	if err := c.store.Contracts().UpdateContract(ctx, contract); err != nil {
		return err
	}
	if err := c.adjustCap(ctx, contract.DynastyID, contract.TeamID, season, newHit-oldHit, 0); err != nil {
		return err
	}
	return c.ledger(ctx, contract, contract.TeamID, season, date, models.CapTransactionRestructure,
		newHit-oldHit, oldHit-newHit,
		fmt.Sprintf("restructured player %d: $%d converted over %d years", contract.PlayerID, convertible, spread))
}

// ExpireContracts flips contracts whose final real season has passed to
// expired, accelerating any void-year proration as dead money, and frees the
// players. Runs during the season rollover.
func (c *CapService) ExpireContracts(ctx context.Context, dynastyID string, newSeason int, date time.Time) error {
	for teamID := 1; teamID <= models.NumTeams; teamID++ {
		contracts, err := c.store.Contracts().ActiveContractsByTeam(ctx, dynastyID, teamID)
		if err != nil {
			return err
		}
		for i := range contracts {
			contract := &contracts[i]
			if contract.FinalSeason() >= newSeason {
				continue
			}
			voidDead := contract.RemainingProration(newSeason)
			contract.Status = models.ContractStatusExpired
			if err := c.store.Contracts().UpdateContract(ctx, contract); err != nil {
				return err
			}
			if voidDead > 0 {
				if err := c.adjustCap(ctx, dynastyID, teamID, newSeason, 0, voidDead); err != nil {
					return err
				}
				if err := c.ledger(ctx, contract, teamID, newSeason, date, models.CapTransactionRelease,
					voidDead, 0,
					fmt.Sprintf("void years for player %d: $%d dead money", contract.PlayerID, voidDead)); err != nil {
					return err
				}
			}

			player, err := c.store.Players().GetPlayer(ctx, dynastyID, contract.PlayerID)
			if err != nil {
				return err
			}
			if player.Status == models.PlayerStatusActive {
				player.Status = models.PlayerStatusFreeAgent
				player.TeamID = 0
				if err := c.store.Players().UpdatePlayer(ctx, player); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// RolloverCarryover opens next season's cap sheets, carrying unused space
// forward. Negative space never carries. Runs when the new league year opens
// at free agency, so offseason signings charge the sheet they belong to.
func (c *CapService) RolloverCarryover(ctx context.Context, dynastyID string, fromSeason int, date time.Time) error {
	for teamID := 1; teamID <= models.NumTeams; teamID++ {
		record, err := c.store.Cap().GetCapRecord(ctx, dynastyID, teamID, fromSeason)
		if err != nil && !models.IsNotFound(err) {
			return err
		}
		var carryover int64
		if record != nil {
			if space := record.CapSpace(); space > 0 {
				carryover = space
			}
		}

		// Retirements and void-year acceleration may already have booked
		// dead money against next season; keep it.
		next, err := c.store.Cap().GetCapRecord(ctx, dynastyID, teamID, fromSeason+1)
		if models.IsNotFound(err) {
			next = &models.SalaryCapRecord{
				DynastyID: dynastyID,
				TeamID:    teamID,
				Season:    fromSeason + 1,
			}
		} else if err != nil {
			return err
		}
		next.CapLimit = SalaryCapLimit
		next.Carryover = carryover
		next.ActiveCapHits = 0
		// Next season's hits from contracts already on the books.
		contracts, err := c.store.Contracts().ActiveContractsByTeam(ctx, dynastyID, teamID)
		if err != nil {
			return err
		}
		for i := range contracts {
			next.ActiveCapHits += contracts[i].CapHitFor(fromSeason + 1)
		}
		if err := c.store.Cap().SaveCapRecord(ctx, next); err != nil {
			return err
		}
		if carryover > 0 {
			txn := &models.CapTransaction{
				DynastyID: dynastyID, TeamID: teamID, Season: fromSeason + 1,
				Date: models.DateOnly(date), Type: models.CapTransactionCarryover,
				CapImpactCurrent: -carryover,
				Description:      fmt.Sprintf("carryover from %d", fromSeason),
			}
			if err := c.store.Cap().InsertCapTransaction(ctx, txn); err != nil {
				return err
			}
		}
	}
	return nil
}

// CheckCompliance returns a CapViolationError for the first team over its
// adjusted limit.
func (c *CapService) CheckCompliance(ctx context.Context, dynastyID string, season int) error {
	records, err := c.store.Cap().CapRecordsBySeason(ctx, dynastyID, season)
	if err != nil {
		return err
	}
	for i := range records {
		if !records[i].IsCompliant() {
			return &models.CapViolationError{
				TeamID:  records[i].TeamID,
				Season:  season,
				Overage: -records[i].CapSpace(),
				Detail:  "over the cap at the final-roster deadline",
			}
		}
	}
	return nil
}

// TeamCapSpace is the queryable room under the adjusted limit.
func (c *CapService) TeamCapSpace(ctx context.Context, dynastyID string, teamID, season int) (int64, error) {
	record, err := c.store.Cap().GetCapRecord(ctx, dynastyID, teamID, season)
	if err != nil {
		return 0, err
	}
	return record.CapSpace(), nil
}

func (c *CapService) adjustCap(ctx context.Context, dynastyID string, teamID, season int, hitDelta, deadDelta int64) error {
	record, err := c.store.Cap().GetCapRecord(ctx, dynastyID, teamID, season)
	if models.IsNotFound(err) {
		record = &models.SalaryCapRecord{
			DynastyID: dynastyID,
			TeamID:    teamID,
			Season:    season,
			CapLimit:  SalaryCapLimit,
		}
	} else if err != nil {
		return err
	}
	record.ActiveCapHits += hitDelta
	record.DeadMoney += deadDelta
	return c.store.Cap().SaveCapRecord(ctx, record)
}

func (c *CapService) ledger(ctx context.Context, contract *models.Contract, teamID, season int, date time.Time, kind models.CapTransactionType, current, future int64, description string) error {
	txn := &models.CapTransaction{
		DynastyID:        contract.DynastyID,
		TeamID:           teamID,
		Season:           season,
		Date:             models.DateOnly(date),
		Type:             kind,
		PlayerID:         contract.PlayerID,
		CapImpactCurrent: current,
		CapImpactFuture:  future,
		Description:      description,
	}
	return c.store.Cap().InsertCapTransaction(ctx, txn)
}

// futureCommitment sums cap hits after the given season.
func (c *CapService) futureCommitment(contract *models.Contract, fromSeason int) int64 {
	var total int64
	for _, y := range contract.Years {
		if y.Season > fromSeason {
			total += y.CapHit()
		}
	}
	return total
}
