package services

import (
	"fmt"
	"sort"

	"nfl-dynasty-go/models"
)

// DraftOrderService ranks all 32 teams into a seven-round order. Non-playoff
// teams pick 1-18 worst record first, with lower strength of schedule
// breaking ties toward the earlier pick. Playoff teams pick 19-32 by
// elimination round, the champion always picking last.
type DraftOrderService struct{}

func NewDraftOrderService() *DraftOrderService {
	return &DraftOrderService{}
}

type draftRank struct {
	teamID int
	winPct float64
	sos    float64
	reason string
}

func (d *DraftOrderService) ComputeDraftOrder(standings []models.StandingsRow, playoffResults []models.GameRecord, schedules map[int][]int) ([]models.DraftPick, error) {
	if len(standings) != models.NumTeams {
		return nil, fmt.Errorf("draft order needs %d standings rows, got %d", models.NumTeams, len(standings))
	}

	winPct := make(map[int]float64, len(standings))
	rows := make(map[int]models.StandingsRow, len(standings))
	for _, row := range standings {
		winPct[row.TeamID] = row.WinPct()
		rows[row.TeamID] = row
	}

	// elimination[team] = round the team lost in; the champion is absent.
	elimination := make(map[int]models.GameType)
	var champion, runnerUp int
	for _, g := range playoffResults {
		loser := g.LoserTeamID()
		if loser == 0 {
			return nil, fmt.Errorf("playoff game %s has no decision", g.GameID)
		}
		elimination[loser] = g.GameType
		if g.GameType == models.GameTypeSuperBowl {
			champion = g.WinnerTeamID()
			runnerUp = loser
		}
	}
	if champion == 0 {
		return nil, fmt.Errorf("draft order requires a completed bracket")
	}

	var nonPlayoff []draftRank
	roundBuckets := map[models.GameType][]draftRank{}
	for teamID := 1; teamID <= models.NumTeams; teamID++ {
		rank := draftRank{
			teamID: teamID,
			winPct: winPct[teamID],
			sos:    strengthOfSchedule(schedules[teamID], winPct),
		}
		round, madePlayoffs := elimination[teamID]
		switch {
		case teamID == champion:
			// Seeded directly at pick 32.
		case !madePlayoffs:
			rank.reason = "missed playoffs"
			nonPlayoff = append(nonPlayoff, rank)
		default:
			rank.reason = "eliminated " + string(round)
			roundBuckets[round] = append(roundBuckets[round], rank)
		}
	}

	sortRanks := func(ranks []draftRank) {
		sort.Slice(ranks, func(i, j int) bool {
			if ranks[i].winPct != ranks[j].winPct {
				return ranks[i].winPct < ranks[j].winPct
			}
			if ranks[i].sos != ranks[j].sos {
				return ranks[i].sos < ranks[j].sos
			}
			return ranks[i].teamID < ranks[j].teamID
		})
	}

	sortRanks(nonPlayoff)
	order := append([]draftRank(nil), nonPlayoff...)
	for _, round := range []models.GameType{models.GameTypeWildCard, models.GameTypeDivisional, models.GameTypeConference} {
		bucket := roundBuckets[round]
		sortRanks(bucket)
		order = append(order, bucket...)
	}
	order = append(order,
		draftRank{teamID: runnerUp, reason: "super bowl runner-up"},
		draftRank{teamID: champion, reason: "champion"},
	)

	if len(order) != models.NumTeams {
		return nil, fmt.Errorf("draft order resolved %d slots, want %d", len(order), models.NumTeams)
	}

	picks := make([]models.DraftPick, 0, DraftRounds*models.NumTeams)
	for round := 1; round <= DraftRounds; round++ {
		for slot, rank := range order {
			picks = append(picks, models.DraftPick{
				Overall:     (round-1)*models.NumTeams + slot + 1,
				Round:       round,
				PickInRound: slot + 1,
				TeamID:      rank.teamID,
				Reason:      rank.reason,
			})
		}
	}
	return picks, nil
}

// strengthOfSchedule averages opponents' win percentage across the team's
// schedule. Weaker schedules break record ties toward the earlier pick.
func strengthOfSchedule(opponents []int, winPct map[int]float64) float64 {
	if len(opponents) == 0 {
		return 0
	}
	var total float64
	for _, opp := range opponents {
		total += winPct[opp]
	}
	return total / float64(len(opponents))
}
