package services

import (
	"testing"
	"time"

	"nfl-dynasty-go/models"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSeasonKickoff(t *testing.T) {
	// 2025: Labor Day is Sep 1, so kickoff is Thursday Sep 4.
	assert.Equal(t, date(2025, time.September, 4), SeasonKickoff(2025))
	// 2026: Labor Day is Sep 7.
	assert.Equal(t, date(2026, time.September, 10), SeasonKickoff(2026))

	for season := 2024; season <= 2034; season++ {
		assert.Equal(t, time.Thursday, SeasonKickoff(season).Weekday(), "season %d", season)
	}
}

func TestWeekAnchors(t *testing.T) {
	assert.Equal(t, date(2025, time.September, 4), WeekStart(2025, 1))
	assert.Equal(t, date(2026, time.January, 1), WeekStart(2025, 18))

	// Trade deadline is the Tuesday of week 9.
	deadline := TradeDeadlineDate(2025)
	assert.Equal(t, date(2025, time.November, 4), deadline)
	assert.Equal(t, time.Tuesday, deadline.Weekday())

	// Final cuts land the Tuesday before kickoff.
	cuts := FinalRosterDeadline(2025)
	assert.Equal(t, date(2025, time.September, 2), cuts)
	assert.Equal(t, time.Tuesday, cuts.Weekday())
}

func TestWeekOfDate(t *testing.T) {
	season := 2025
	assert.Equal(t, 0, WeekOfDate(season, date(2025, time.August, 20)))
	assert.Equal(t, 1, WeekOfDate(season, date(2025, time.September, 4)))
	// A week runs Thursday through the following Wednesday.
	assert.Equal(t, 1, WeekOfDate(season, date(2025, time.September, 10)))
	assert.Equal(t, 2, WeekOfDate(season, date(2025, time.September, 11)))
	assert.Equal(t, 18, WeekOfDate(season, date(2026, time.January, 1)))
	// Past the season the week clamps rather than growing.
	assert.Equal(t, 18, WeekOfDate(season, date(2026, time.March, 1)))
}

func TestPreseasonAnchors(t *testing.T) {
	// Three preseason weeks fill the month before kickoff.
	assert.Equal(t, date(2025, time.August, 7), PreseasonWeekStart(2025, 1))
	assert.Equal(t, date(2025, time.August, 28), PreseasonWeekStart(2025, PreseasonWeeks+1).AddDate(0, 0, -7))
	assert.Equal(t, date(2025, time.July, 28), TrainingCampStart(2025))
	assert.True(t, TrainingCampStart(2025).Before(PreseasonWeekStart(2025, 1)))
}

func TestPlayoffDates(t *testing.T) {
	wildCard := PlayoffRoundDate(2025, models.RoundWildCard)
	assert.Equal(t, date(2026, time.January, 10), wildCard)
	assert.Equal(t, time.Saturday, wildCard.Weekday())

	assert.Equal(t, wildCard.AddDate(0, 0, 7), PlayoffRoundDate(2025, models.RoundDivisional))
	assert.Equal(t, wildCard.AddDate(0, 0, 14), PlayoffRoundDate(2025, models.RoundConference))
	// Bye week before the title game.
	assert.Equal(t, wildCard.AddDate(0, 0, 28), PlayoffRoundDate(2025, models.RoundSuperBowl))

	assert.Equal(t, PlayoffRoundDate(2025, models.RoundSuperBowl).AddDate(0, 0, 3), HonorsDate(2025))
	assert.Equal(t, HonorsDate(2025).AddDate(0, 0, 1), RetirementCheckDate(2025))
}

func TestOffseasonDates(t *testing.T) {
	faStart := FreeAgencyStart(2025)
	assert.Equal(t, date(2026, time.March, 11), faStart)
	assert.Equal(t, time.Wednesday, faStart.Weekday())

	waves := FAWaveDates(2025)
	assert.Len(t, waves, 4)
	for i, wave := range waves {
		assert.Equal(t, faStart.AddDate(0, 0, 7*i), wave)
	}

	draft := DraftDate(2025)
	assert.Equal(t, date(2026, time.April, 30), draft)
	assert.Equal(t, time.Thursday, draft.Weekday())
	// The draft always trails the last signing wave.
	assert.True(t, waves[len(waves)-1].Before(draft))
}

func TestLeagueYearOrdering(t *testing.T) {
	// The anchors of one league year must be strictly ordered; the
	// controller relies on this to never schedule into the past.
	for season := 2024; season <= 2032; season++ {
		anchors := []time.Time{
			TrainingCampStart(season),
			PreseasonWeekStart(season, 1),
			FinalRosterDeadline(season),
			SeasonKickoff(season),
			TradeDeadlineDate(season),
			WeekStart(season, RegularSeasonWeeks),
			PlayoffRoundDate(season, models.RoundWildCard),
			PlayoffRoundDate(season, models.RoundSuperBowl),
			HonorsDate(season),
			RetirementCheckDate(season),
			FreeAgencyStart(season),
			DraftDate(season),
			TrainingCampStart(season + 1),
		}
		for i := 1; i < len(anchors); i++ {
			assert.True(t, anchors[i-1].Before(anchors[i]),
				"season %d: anchor %d (%s) not before anchor %d (%s)",
				season, i-1, anchors[i-1], i, anchors[i])
		}
	}
}
