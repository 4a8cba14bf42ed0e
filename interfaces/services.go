package interfaces

import (
	"nfl-dynasty-go/models"
)

// DraftOrderService ranks teams into a full draft order. Tiebreaking
// (strength-of-schedule and beyond) is this collaborator's concern; the core
// hands it raw standings, playoff results and schedules.
type DraftOrderService interface {
	ComputeDraftOrder(standings []models.StandingsRow, playoffResults []models.GameRecord, schedules map[int][]int) ([]models.DraftPick, error)
}

// PlayoffSeedingService turns one conference's final standings into seven
// ordered seeds (division winners 1-4, wildcards 5-7).
type PlayoffSeedingService interface {
	Seed(conferenceStandings []models.StandingsRow) ([]models.PlayoffSeed, error)
}
