package services

import (
	"context"
	"fmt"
	"math/rand"

	"nfl-dynasty-go/interfaces"
	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/models"
)

// DraftService turns the completed season into a rookie class: it computes
// the order, schedules one DRAFT_PICK event per selection honoring traded
// pick ownership, and executes picks by generating rookies on slotted
// contracts.
type DraftService struct {
	store  interfaces.LeagueStore
	order  interfaces.DraftOrderService
	cap    *CapService
	logger *logging.Logger
}

func NewDraftService(store interfaces.LeagueStore, order interfaces.DraftOrderService, cap *CapService) *DraftService {
	return &DraftService{
		store:  store,
		order:  order,
		cap:    cap,
		logger: logging.WithPrefix("draft"),
	}
}

// CreatePickAssets stocks each team with its own picks for a draft season.
// Safe to call once per season; the unique pick index rejects duplicates.
func (d *DraftService) CreatePickAssets(ctx context.Context, dynastyID string, season int) error {
	picks := make([]models.DraftPickAsset, 0, DraftRounds*models.NumTeams)
	for round := 1; round <= DraftRounds; round++ {
		for teamID := 1; teamID <= models.NumTeams; teamID++ {
			picks = append(picks, models.DraftPickAsset{
				DynastyID:    dynastyID,
				Season:       season,
				Round:        round,
				OwnerTeamID:  teamID,
				OriginTeamID: teamID,
			})
		}
	}
	return d.store.Picks().CreatePicks(ctx, picks)
}

// ScheduleDraft computes the order from the finished season and inserts one
// event per selection. Round one runs on draft day, rounds two and three the
// next day, the rest on day three. Idempotent through structured ids.
func (d *DraftService) ScheduleDraft(ctx context.Context, dynastyID string, season int) error {
	standings, err := d.store.Standings().GetStandings(ctx, dynastyID, season)
	if err != nil {
		return err
	}
	playoffGames, err := d.store.Games().GamesBySeason(ctx, dynastyID, season, models.SeasonTypePlayoffs)
	if err != nil {
		return err
	}
	schedules := make(map[int][]int, len(standings))
	for _, row := range standings {
		schedules[row.TeamID] = row.Schedule
	}

	order, err := d.order.ComputeDraftOrder(standings, playoffGames, schedules)
	if err != nil {
		return err
	}

	assets, err := d.store.Picks().PicksBySeason(ctx, dynastyID, season+1)
	if err != nil {
		return err
	}
	ownerOf := make(map[string]int, len(assets))
	for _, a := range assets {
		ownerOf[fmt.Sprintf("%d_%d", a.Round, a.OriginTeamID)] = a.OwnerTeamID
	}

	day := DraftDate(season)
	for _, pick := range order {
		owner, ok := ownerOf[fmt.Sprintf("%d_%d", pick.Round, pick.TeamID)]
		if !ok {
			owner = pick.TeamID
		}
		event := &models.Event{
			DynastyID:    dynastyID,
			Date:         day.AddDate(0, 0, draftDay(pick.Round)),
			Kind:         models.EventKindDraftPick,
			StructuredID: models.StructuredID("draft", season, "pick", pick.Overall),
			Payload: map[string]interface{}{
				"overall":        pick.Overall,
				"round":          pick.Round,
				"pick_in_round":  pick.PickInRound,
				"origin_team_id": pick.TeamID,
				"owner_team_id":  owner,
			},
		}
		if _, err := d.store.Events().Insert(ctx, event); err != nil {
			return err
		}
	}
	d.logger.Infof("Draft %d scheduled: %d selections", season+1, len(order))
	return nil
}

func draftDay(round int) int {
	switch {
	case round == 1:
		return 0
	case round <= 3:
		return 1
	default:
		return 2
	}
}

// ExecutePick generates the rookie for one DRAFT_PICK event and signs the
// slotted four-year contract. The rookie plays from the following season.
func (d *DraftService) ExecutePick(ctx context.Context, event *models.Event, season int) (*models.Player, error) {
	overall, err := payloadInt(event.Payload, "overall")
	if err != nil {
		return nil, err
	}
	owner, err := payloadInt(event.Payload, "owner_team_id")
	if err != nil {
		return nil, err
	}
	round, _ := payloadInt(event.Payload, "round")

	rng := rand.New(rand.NewSource(gameSeed(event.DynastyID, event.StructuredID)))

	maxID, err := d.store.Players().MaxPlayerID(ctx, event.DynastyID)
	if err != nil {
		return nil, err
	}

	roster, err := d.store.Players().TeamRoster(ctx, event.DynastyID, owner)
	if err != nil {
		return nil, err
	}
	position := pickPosition(roster, rng)

	rookie := models.Player{
		DynastyID: event.DynastyID,
		PlayerID:  maxID + 1,
		Name:      fmt.Sprintf("%s Rookie %d", position, maxID+1),
		Position:  position,
		Overall:   rookieOverall(round, rng),
		Age:       21 + rng.Intn(3),
		YearsPro:  0,
		TeamID:    owner,
		Status:    models.PlayerStatusActive,
	}
	if err := d.store.Players().CreatePlayers(ctx, []models.Player{rookie}); err != nil {
		return nil, err
	}

	total, bonus := rookieContractValue(overall)
	contract, err := d.cap.BuildContract(event.DynastyID, rookie.PlayerID, owner, season+1, 4, total, bonus)
	if err != nil {
		return nil, err
	}
	if err := d.cap.ApplySigning(ctx, contract, season+1, event.Date); err != nil {
		return nil, err
	}
	return &rookie, nil
}

// pickPosition drafts for need when one exists, best-available otherwise.
func pickPosition(roster []models.Player, rng *rand.Rand) models.Position {
	needs := positionNeeds(roster)
	if len(needs) > 0 {
		return needs[rng.Intn(len(needs))]
	}
	pool := []models.Position{
		models.PositionQB, models.PositionRB, models.PositionWR, models.PositionTE,
		models.PositionLT, models.PositionOL, models.PositionDL, models.PositionEDGE,
		models.PositionLB, models.PositionCB, models.PositionS,
	}
	return pool[rng.Intn(len(pool))]
}

// rookieOverall trends down by round with per-pick variance.
func rookieOverall(round int, rng *rand.Rand) int {
	base := 80 - round*4
	overall := base + rng.Intn(9)
	if overall < 45 {
		overall = 45
	}
	if overall > 88 {
		overall = 88
	}
	return overall
}

// rookieContractValue follows the slot curve: four years, half guaranteed as
// bonus at the top of the draft.
func rookieContractValue(overallPick int) (total, bonus int64) {
	total = int64(pickSlotValue(overallPick)) * 13_000
	floor := RookieMinimumSalary * 4
	if total < floor {
		total = floor
	}
	bonus = total / 2
	return total, bonus
}
