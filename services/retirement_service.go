package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"nfl-dynasty-go/interfaces"
	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/models"
)

// RetirementService processes the end-of-career pipeline: roll retirement
// odds, accelerate any remaining contract money, write the career rollup and
// record the class on the season's honors row.
type RetirementService struct {
	store  interfaces.LeagueStore
	cap    *CapService
	logger *logging.Logger
}

func NewRetirementService(store interfaces.LeagueStore, cap *CapService) *RetirementService {
	return &RetirementService{
		store:  store,
		cap:    cap,
		logger: logging.WithPrefix("retirement"),
	}
}

// retirementChance rises steeply through the mid-thirties. Declining players
// hang it up sooner.
func retirementChance(age, overall int) float64 {
	var chance float64
	switch {
	case age < 30:
		chance = 0.01
	case age <= 32:
		chance = 0.10
	case age <= 34:
		chance = 0.28
	case age <= 36:
		chance = 0.50
	default:
		chance = 0.75
	}
	if overall < 65 {
		chance += 0.15
	}
	return chance
}

// ProcessRetirements rolls every non-retired player once for the season. The
// rng derives from dynasty and season so the class is reproducible.
func (r *RetirementService) ProcessRetirements(ctx context.Context, dynastyID string, season int, date time.Time) ([]int, error) {
	rng := rand.New(rand.NewSource(gameSeed(dynastyID, fmt.Sprintf("retirement_%d", season))))

	var pool []models.Player
	for _, status := range []models.PlayerStatus{models.PlayerStatusActive, models.PlayerStatusFreeAgent} {
		players, err := r.store.Players().PlayersByStatus(ctx, dynastyID, status)
		if err != nil {
			return nil, err
		}
		pool = append(pool, players...)
	}

	var retired []int
	for _, player := range pool {
		if rng.Float64() >= retirementChance(player.Age, player.Overall) {
			continue
		}
		if err := r.retire(ctx, player, season, date); err != nil {
			return retired, err
		}
		retired = append(retired, player.PlayerID)
	}

	if len(retired) > 0 {
		if err := r.recordHonorsClass(ctx, dynastyID, season, retired); err != nil {
			return retired, err
		}
	}
	r.logger.Infof("Season %d retirement class: %d players", season, len(retired))
	return retired, nil
}

func (r *RetirementService) retire(ctx context.Context, player models.Player, season int, date time.Time) error {
	finalTeamID := player.TeamID

	contract, err := r.store.Contracts().ActiveContractByPlayer(ctx, player.DynastyID, player.PlayerID)
	if err == nil {
		if err := r.cap.ApplyRetirement(ctx, contract, season+1, date); err != nil {
			return err
		}
	} else if !models.IsNotFound(err) {
		return err
	}

	player.Status = models.PlayerStatusRetired
	player.TeamID = 0
	if err := r.store.Players().UpdatePlayer(ctx, &player); err != nil {
		return err
	}

	if err := r.store.Careers().InsertRetiredPlayer(ctx, &models.RetiredPlayer{
		DynastyID:   player.DynastyID,
		PlayerID:    player.PlayerID,
		Season:      season,
		Reason:      retirementReason(player),
		FinalTeamID: finalTeamID,
	}); err != nil {
		return err
	}

	summary, err := r.buildCareerSummary(ctx, player)
	if err != nil {
		return err
	}
	return r.store.Careers().SaveCareerSummary(ctx, summary)
}

func retirementReason(player models.Player) string {
	if player.Age >= 35 {
		return "age"
	}
	if player.Overall < 65 {
		return "declining play"
	}
	return "walked away"
}

func (r *RetirementService) buildCareerSummary(ctx context.Context, player models.Player) (*models.CareerSummary, error) {
	seasons, err := r.store.Games().PlayerCareerStats(ctx, player.DynastyID, player.PlayerID)
	if err != nil {
		return nil, err
	}
	summary := &models.CareerSummary{
		DynastyID: player.DynastyID,
		PlayerID:  player.PlayerID,
		Name:      player.Name,
		Position:  player.Position,
	}
	seen := make(map[int]bool)
	for _, s := range seasons {
		if !seen[s.Season] {
			seen[s.Season] = true
			summary.Seasons++
		}
		summary.GamesPlayed += s.GamesPlayed
		summary.Career.Add(s.Line)
	}
	summary.HOFScore = hofScore(summary)
	return summary, nil
}

// hofScore is a single comparable number across positions: production
// dominates, longevity pads.
func hofScore(s *models.CareerSummary) float64 {
	c := s.Career
	return float64(c.TotalTDs())*3 +
		float64(c.PassYards+c.RushYards+c.ReceivingYards)/500 +
		float64(c.Sacks)*2 +
		float64(c.DefInterceptions)*3 +
		float64(s.Seasons)*2
}

func (r *RetirementService) recordHonorsClass(ctx context.Context, dynastyID string, season int, retired []int) error {
	honors, err := r.store.Careers().GetSeasonHonors(ctx, dynastyID, season)
	if models.IsNotFound(err) {
		honors = &models.SeasonHonors{DynastyID: dynastyID, Season: season}
	} else if err != nil {
		return err
	}
	honors.RetiredPlayerIDs = retired
	return r.store.Careers().SaveSeasonHonors(ctx, honors)
}

// AwardHonors writes the season's honors row: champion, runner-up and the
// regular-season MVP by weighted stat score.
func (r *RetirementService) AwardHonors(ctx context.Context, dynastyID string, season, championTeamID, runnerUpTeamID int) error {
	stats, err := r.store.Games().SeasonStats(ctx, dynastyID, season, models.SeasonTypeRegular)
	if err != nil {
		return err
	}
	mvpID, bestScore := 0, -1.0
	for _, s := range stats {
		score := mvpScore(s.Line)
		if score > bestScore || (score == bestScore && s.PlayerID < mvpID) {
			bestScore = score
			mvpID = s.PlayerID
		}
	}

	honors, err := r.store.Careers().GetSeasonHonors(ctx, dynastyID, season)
	if models.IsNotFound(err) {
		honors = &models.SeasonHonors{DynastyID: dynastyID, Season: season}
	} else if err != nil {
		return err
	}
	honors.ChampionTeamID = championTeamID
	honors.RunnerUpTeamID = runnerUpTeamID
	honors.MVPPlayerID = mvpID
	return r.store.Careers().SaveSeasonHonors(ctx, honors)
}

func mvpScore(line models.StatLine) float64 {
	return float64(line.PassYards)*0.04 + float64(line.PassTDs)*4 - float64(line.Interceptions)*2 +
		float64(line.RushYards)*0.1 + float64(line.RushTDs)*6 +
		float64(line.ReceivingYards)*0.1 + float64(line.ReceivingTDs)*6 +
		float64(line.Sacks)*3 + float64(line.DefInterceptions)*4
}

// AgePlayers bumps every non-retired player's age and experience at the
// season rollover.
func (r *RetirementService) AgePlayers(ctx context.Context, dynastyID string) error {
	for _, status := range []models.PlayerStatus{models.PlayerStatusActive, models.PlayerStatusFreeAgent} {
		players, err := r.store.Players().PlayersByStatus(ctx, dynastyID, status)
		if err != nil {
			return err
		}
		for i := range players {
			players[i].Age++
			players[i].YearsPro++
			if err := r.store.Players().UpdatePlayer(ctx, &players[i]); err != nil {
				return err
			}
		}
	}
	return nil
}
