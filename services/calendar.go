package services

import (
	"time"

	"nfl-dynasty-go/models"
)

// Calendar math for one league year. A "season" is named by its kickoff year:
// season 2025 runs from the August 2025 preseason through the February 2026
// Super Bowl, and its offseason (honors, free agency, draft) runs in spring
// 2026 before the calendar rolls to season 2026. All anchors are UTC midnight.

func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset+7*(n-1))
}

func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	d := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	offset := (int(d.Weekday()) - int(weekday) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

// SeasonKickoff is the Thursday following the first Monday of September.
func SeasonKickoff(season int) time.Time {
	laborDay := nthWeekday(season, time.September, time.Monday, 1)
	return laborDay.AddDate(0, 0, 3)
}

// WeekStart is the Thursday opening the given regular-season week.
func WeekStart(season, week int) time.Time {
	return SeasonKickoff(season).AddDate(0, 0, 7*(week-1))
}

// WeekOfDate maps a date onto regular-season weeks (Thursday through the
// following Wednesday). Returns 0 before kickoff and clamps past week 18.
func WeekOfDate(season int, date time.Time) int {
	kickoff := SeasonKickoff(season)
	day := models.DateOnly(date)
	if day.Before(kickoff) {
		return 0
	}
	week := int(day.Sub(kickoff).Hours()/(24*7)) + 1
	if week > RegularSeasonWeeks {
		return RegularSeasonWeeks
	}
	return week
}

// PreseasonWeekStart is the Thursday opening a preseason week. The three
// preseason weeks fill the month before kickoff.
func PreseasonWeekStart(season, week int) time.Time {
	return SeasonKickoff(season).AddDate(0, 0, -7*(PreseasonWeeks+1)+7*(week-1))
}

// TrainingCampStart opens the preseason phase.
func TrainingCampStart(season int) time.Time {
	return PreseasonWeekStart(season, 1).AddDate(0, 0, -10)
}

// FinalRosterDeadline is the Tuesday before kickoff: rosters must be at the
// active limit and every team cap-compliant.
func FinalRosterDeadline(season int) time.Time {
	return SeasonKickoff(season).AddDate(0, 0, -2)
}

// TradeDeadlineDate is the Tuesday of the deadline week.
func TradeDeadlineDate(season int) time.Time {
	return WeekStart(season, TradeDeadlineWeek).AddDate(0, 0, 5)
}

// PlayoffRoundDate is the Saturday a bracket round begins. Rounds are a week
// apart with the customary bye week before the Super Bowl.
func PlayoffRoundDate(season int, round models.PlayoffRound) time.Time {
	wildCard := WeekStart(season, RegularSeasonWeeks).AddDate(0, 0, 9)
	switch round {
	case models.RoundWildCard:
		return wildCard
	case models.RoundDivisional:
		return wildCard.AddDate(0, 0, 7)
	case models.RoundConference:
		return wildCard.AddDate(0, 0, 14)
	case models.RoundSuperBowl:
		return wildCard.AddDate(0, 0, 28)
	default:
		return wildCard
	}
}

// HonorsDate follows the Super Bowl by three days.
func HonorsDate(season int) time.Time {
	return PlayoffRoundDate(season, models.RoundSuperBowl).AddDate(0, 0, 3)
}

// FranchiseTagDeadline closes the tag window one week before the new league
// year opens. The window opens with the honors phase.
func FranchiseTagDeadline(season int) time.Time {
	return FreeAgencyStart(season).AddDate(0, 0, -7)
}

// FreeAgencyStart is the second Wednesday of March after the season: the new
// league year opens and the signing waves begin.
func FreeAgencyStart(season int) time.Time {
	return nthWeekday(season+1, time.March, time.Wednesday, 2)
}

// FAWaveDates are the weekly signing-wave ticks of an offseason.
func FAWaveDates(season int) []time.Time {
	start := FreeAgencyStart(season)
	dates := make([]time.Time, 0, 4)
	for i := 0; i < 4; i++ {
		dates = append(dates, start.AddDate(0, 0, 7*i))
	}
	return dates
}

// DraftDate is the last Thursday of April after the season.
func DraftDate(season int) time.Time {
	return lastWeekday(season+1, time.April, time.Thursday)
}

// RetirementCheckDate is when the league processes retirements, right after
// the honors ceremony.
func RetirementCheckDate(season int) time.Time {
	return HonorsDate(season).AddDate(0, 0, 1)
}
