package models

// ContractStatus tracks whether a contract is counted against a roster.
type ContractStatus string

const (
	ContractStatusActive   ContractStatus = "active"
	ContractStatusReleased ContractStatus = "released"
	ContractStatusRetired  ContractStatus = "retired"
	ContractStatusExpired  ContractStatus = "expired"
)

// ContractYear is one league year of a contract. All amounts are whole
// dollars. BonusProration is the signing-bonus share charged to this year;
// the cap service keeps sum(BonusProration) equal to SigningBonus.
type ContractYear struct {
	Season         int   `json:"season" bson:"season"`
	BaseSalary     int64 `json:"baseSalary" bson:"base_salary"`
	BonusProration int64 `json:"bonusProration" bson:"bonus_proration"`
	RosterBonus    int64 `json:"rosterBonus" bson:"roster_bonus"`
	WorkoutBonus   int64 `json:"workoutBonus" bson:"workout_bonus"`
	Guaranteed     int64 `json:"guaranteed" bson:"guaranteed"`
	VoidYear       bool  `json:"voidYear" bson:"void_year"`
}

// CapHit is the year's total charge while the contract is active.
func (y ContractYear) CapHit() int64 {
	if y.VoidYear {
		return y.BonusProration
	}
	return y.BaseSalary + y.BonusProration + y.RosterBonus + y.WorkoutBonus
}

// Contract binds one player to one team for 1..7 seasons. Void years are
// appended after the real years purely as proration buckets.
type Contract struct {
	ContractID   string         `json:"contractId" bson:"contract_id"`
	DynastyID    string         `json:"dynastyId" bson:"dynasty_id"`
	PlayerID     int            `json:"playerId" bson:"player_id"`
	TeamID       int            `json:"teamId" bson:"team_id"`
	StartSeason  int            `json:"startSeason" bson:"start_season"`
	Years        []ContractYear `json:"years" bson:"years"`
	SigningBonus int64          `json:"signingBonus" bson:"signing_bonus"`
	TotalValue   int64          `json:"totalValue" bson:"total_value"`
	Status       ContractStatus `json:"status" bson:"status"`
	FranchiseTag bool           `json:"franchiseTag,omitempty" bson:"franchise_tag,omitempty"`
}

// YearFor returns the contract year covering the given season, or nil when
// the contract does not cover it.
func (c *Contract) YearFor(season int) *ContractYear {
	for i := range c.Years {
		if c.Years[i].Season == season {
			return &c.Years[i]
		}
	}
	return nil
}

// CapHitFor is the cap charge for a season, zero outside the contract.
func (c *Contract) CapHitFor(season int) int64 {
	if y := c.YearFor(season); y != nil {
		return y.CapHit()
	}
	return 0
}

// RemainingProration sums signing-bonus proration for the given season and
// every later year, including void years. This is the amount that
// accelerates when the player is released or traded.
func (c *Contract) RemainingProration(fromSeason int) int64 {
	var total int64
	for _, y := range c.Years {
		if y.Season >= fromSeason {
			total += y.BonusProration
		}
	}
	return total
}

// AssumedCapHit is the charge a team acquiring the contract takes for a
// season: the year's hit without the bonus proration, which stays behind as
// the sender's dead money. Zero for void years and seasons outside the deal.
func (c *Contract) AssumedCapHit(season int) int64 {
	y := c.YearFor(season)
	if y == nil || y.VoidYear {
		return 0
	}
	return y.CapHit() - y.BonusProration
}

// FinalSeason is the last non-void season of the contract.
func (c *Contract) FinalSeason() int {
	last := c.StartSeason
	for _, y := range c.Years {
		if !y.VoidYear && y.Season > last {
			last = y.Season
		}
	}
	return last
}

// RealYears counts the non-void contract years.
func (c *Contract) RealYears() int {
	n := 0
	for _, y := range c.Years {
		if !y.VoidYear {
			n++
		}
	}
	return n
}

// ComputedTotalValue sums base, proration and bonuses across all years.
// The cap service asserts this equals TotalValue on every write.
func (c *Contract) ComputedTotalValue() int64 {
	var total int64
	for _, y := range c.Years {
		total += y.BaseSalary + y.BonusProration + y.RosterBonus + y.WorkoutBonus
	}
	return total
}

// AverageAnnualValue is TotalValue spread over the real contract years.
func (c *Contract) AverageAnnualValue() int64 {
	years := c.RealYears()
	if years == 0 {
		return 0
	}
	return c.TotalValue / int64(years)
}
