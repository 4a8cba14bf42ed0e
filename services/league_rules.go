package services

// League-wide financial and roster rules. Amounts are whole dollars.
const (
	// SalaryCapLimit is the base per-team cap before carryover.
	SalaryCapLimit int64 = 279_200_000

	// VeteranMinimumSalary is the lowest base salary a signing may carry.
	VeteranMinimumSalary int64 = 1_170_000

	// RookieMinimumSalary anchors the rookie wage scale.
	RookieMinimumSalary int64 = 840_000

	// MaxContractYears caps real (non-void) contract length.
	MaxContractYears = 7

	// MaxProrationYears spreads a signing bonus over at most five seasons
	// regardless of contract length.
	MaxProrationYears = 5

	// ActiveRosterSize is the in-season roster limit.
	ActiveRosterSize = 53

	// OffseasonRosterMax is the limit between the draft and final cuts.
	OffseasonRosterMax = 90

	// RosterMinimum is the floor below which releases are rejected.
	RosterMinimum = 46

	// InSeasonCapGrace is how far over the cap an in-season trade may leave a
	// team; compliance is squared up at the next final-roster deadline.
	InSeasonCapGrace int64 = 2_000_000
)

// Season structure.
const (
	RegularSeasonWeeks = 18
	GamesPerTeam       = 17
	PreseasonWeeks     = 3
	DraftRounds        = 7

	// PlayoffTeamsPerConference: four division winners plus three wildcards.
	PlayoffTeamsPerConference = 7

	// TradeDeadlineWeek is the regular-season week whose Tuesday closes the
	// trade window.
	TradeDeadlineWeek = 9
)
