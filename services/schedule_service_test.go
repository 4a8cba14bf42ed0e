package services

import (
	"fmt"
	"testing"

	"nfl-dynasty-go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegularSeasonShape(t *testing.T) {
	svc := NewScheduleService()

	for _, season := range []int{2025, 2026, 2027} {
		season := season
		t.Run(fmt.Sprintf("season_%d", season), func(t *testing.T) {
			games := svc.RegularSeasonGames(season)
			require.Len(t, games, 272)

			perTeam := make(map[int]int)
			perWeek := make(map[int]map[int]bool)
			ids := make(map[string]bool)
			for _, g := range games {
				assert.NotEqual(t, g.HomeTeamID, g.AwayTeamID, "%s pits a team against itself", g.StructuredID)
				assert.False(t, ids[g.StructuredID], "duplicate id %s", g.StructuredID)
				ids[g.StructuredID] = true
				assert.GreaterOrEqual(t, g.Week, 1)
				assert.LessOrEqual(t, g.Week, RegularSeasonWeeks)
				assert.Equal(t, models.SeasonTypeRegular, g.SeasonType)
				assert.Equal(t, models.GameTypeRegular, g.GameType)

				if perWeek[g.Week] == nil {
					perWeek[g.Week] = make(map[int]bool)
				}
				for _, team := range []int{g.HomeTeamID, g.AwayTeamID} {
					assert.False(t, perWeek[g.Week][team], "team %d plays twice in week %d", team, g.Week)
					perWeek[g.Week][team] = true
					perTeam[team]++
				}

				weekStart := WeekStart(season, g.Week)
				assert.False(t, g.Date.Before(weekStart), "%s before its week", g.StructuredID)
				assert.False(t, g.Date.After(weekStart.AddDate(0, 0, 4)), "%s after Monday night", g.StructuredID)
			}

			for team := 1; team <= models.NumTeams; team++ {
				assert.Equal(t, GamesPerTeam, perTeam[team], "team %d game count", team)
			}

			// Byes sit in weeks 6-13 only, one per team, a full division at a time.
			for week := 1; week <= RegularSeasonWeeks; week++ {
				resting := restingTeams(perWeek[week])
				if week >= 6 && week <= 13 {
					require.Len(t, resting, 4, "week %d should rest one division", week)
					for _, team := range resting[1:] {
						assert.True(t, models.SameDivision(resting[0], team),
							"week %d rests teams from different divisions: %v", week, resting)
					}
				} else {
					assert.Empty(t, resting, "week %d should have no byes", week)
				}
			}
		})
	}
}

func restingTeams(playing map[int]bool) []int {
	var resting []int
	for team := 1; team <= models.NumTeams; team++ {
		if !playing[team] {
			resting = append(resting, team)
		}
	}
	return resting
}

func TestDivisionSeries(t *testing.T) {
	games := NewScheduleService().RegularSeasonGames(2025)

	type pair struct{ home, away int }
	meetings := make(map[pair]int)
	for _, g := range games {
		if models.SameDivision(g.HomeTeamID, g.AwayTeamID) {
			meetings[pair{g.HomeTeamID, g.AwayTeamID}]++
		}
	}

	// Every division pair meets home-and-home: exactly once at each venue.
	for a := 1; a <= models.NumTeams; a++ {
		for b := a + 1; b <= models.NumTeams; b++ {
			if !models.SameDivision(a, b) {
				continue
			}
			assert.Equal(t, 1, meetings[pair{a, b}], "%d hosting %d", a, b)
			assert.Equal(t, 1, meetings[pair{b, a}], "%d hosting %d", b, a)
		}
	}
}

func TestScheduleDeterministic(t *testing.T) {
	svc := NewScheduleService()
	assert.Equal(t, svc.RegularSeasonGames(2025), svc.RegularSeasonGames(2025))

	// The rotation changes the slate year over year.
	assert.NotEqual(t, svc.RegularSeasonGames(2025), svc.RegularSeasonGames(2026))
}

func TestPreseasonShape(t *testing.T) {
	games := NewScheduleService().PreseasonGames(2025)
	require.Len(t, games, 48)

	perTeam := make(map[int]int)
	for _, g := range games {
		assert.Equal(t, models.GameTypePreseason, g.GameType)
		assert.True(t, g.Date.Before(SeasonKickoff(2025)), "%s runs into the regular season", g.StructuredID)
		perTeam[g.HomeTeamID]++
		perTeam[g.AwayTeamID]++
	}
	for team := 1; team <= models.NumTeams; team++ {
		assert.Equal(t, PreseasonWeeks, perTeam[team], "team %d preseason games", team)
	}
}

func TestTeamSchedules(t *testing.T) {
	games := NewScheduleService().RegularSeasonGames(2025)
	schedules := TeamSchedules(games)

	require.Len(t, schedules, models.NumTeams)
	for team, opponents := range schedules {
		assert.Len(t, opponents, GamesPerTeam, "team %d", team)
		for _, opp := range opponents {
			assert.NotEqual(t, team, opp)
		}
	}
}
