package services

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"nfl-dynasty-go/interfaces"
	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/models"

	"github.com/google/uuid"
)

// DynastySeedService builds a fresh save: 32 rosters, contracts, cap sheets,
// zeroed standings, pick assets for the next two drafts, and the state row
// parked in the offseason before training camp. Seeding is deterministic per
// dynasty id.
type DynastySeedService struct {
	store  interfaces.LeagueStore
	logger *logging.Logger
}

func NewDynastySeedService(store interfaces.LeagueStore) *DynastySeedService {
	return &DynastySeedService{
		store:  store,
		logger: logging.WithPrefix("seeder"),
	}
}

// rosterTemplate is the positional shape of a seeded 53-man roster. The
// first count at each position is the starter block and rates higher.
var rosterTemplate = []struct {
	position models.Position
	count    int
	starters int
}{
	{models.PositionQB, 3, 1},
	{models.PositionRB, 4, 1},
	{models.PositionWR, 7, 3},
	{models.PositionTE, 3, 1},
	{models.PositionLT, 2, 1},
	{models.PositionOL, 7, 4},
	{models.PositionDL, 6, 3},
	{models.PositionEDGE, 4, 2},
	{models.PositionLB, 5, 3},
	{models.PositionCB, 6, 3},
	{models.PositionS, 4, 2},
	{models.PositionK, 1, 1},
	{models.PositionP, 1, 1},
}

var seedFirstNames = []string{
	"Marcus", "Devin", "Jalen", "Trey", "Caleb", "Jordan", "Malik", "Austin",
	"Derek", "Zach", "Tyler", "Brandon", "Chris", "Jamal", "Xavier", "Cole",
	"Isaiah", "Andre", "Kyle", "Darius", "Evan", "Trent", "Nate", "Quinn",
}

var seedLastNames = []string{
	"Washington", "Carter", "Brooks", "Hayes", "Jenkins", "Mitchell", "Rivers",
	"Coleman", "Banks", "Porter", "Fields", "Dawson", "Reeves", "Holloway",
	"Sutton", "Vance", "Mercer", "Walsh", "Boone", "Keller", "Dillard", "Frost",
}

// Seed creates the dynasty and everything a first advance needs.
func (s *DynastySeedService) Seed(ctx context.Context, dynastyID, name string, season int) error {
	if err := s.store.Dynasties().CreateDynasty(ctx, &models.Dynasty{
		DynastyID: dynastyID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(gameSeed(dynastyID, "seed")))
	playerID := 0

	for teamID := 1; teamID <= models.NumTeams; teamID++ {
		var players []models.Player
		for _, slot := range rosterTemplate {
			for i := 0; i < slot.count; i++ {
				playerID++
				players = append(players, models.Player{
					DynastyID: dynastyID,
					PlayerID:  playerID,
					Name:      fmt.Sprintf("%s %s", seedFirstNames[rng.Intn(len(seedFirstNames))], seedLastNames[rng.Intn(len(seedLastNames))]),
					Position:  slot.position,
					Overall:   seededOverall(rng, i < slot.starters),
					Age:       22 + rng.Intn(11),
					YearsPro:  rng.Intn(9),
					TeamID:    teamID,
					Status:    models.PlayerStatusActive,
				})
			}
		}
		if err := s.store.Players().CreatePlayers(ctx, players); err != nil {
			return err
		}
		if err := s.seedContracts(ctx, dynastyID, teamID, season, players, rng); err != nil {
			return err
		}
		if err := s.store.Standings().SaveStandings(ctx, &models.StandingsRow{
			DynastyID: dynastyID,
			Season:    season,
			TeamID:    teamID,
		}); err != nil {
			return err
		}
	}

	// Undrafted depth for the free-agent pool.
	var pool []models.Player
	for i := 0; i < 96; i++ {
		playerID++
		pos := models.AllPositions[rng.Intn(len(models.AllPositions))]
		pool = append(pool, models.Player{
			DynastyID: dynastyID,
			PlayerID:  playerID,
			Name:      fmt.Sprintf("%s %s", seedFirstNames[rng.Intn(len(seedFirstNames))], seedLastNames[rng.Intn(len(seedLastNames))]),
			Position:  pos,
			Overall:   52 + rng.Intn(24),
			Age:       23 + rng.Intn(10),
			YearsPro:  rng.Intn(8),
			Status:    models.PlayerStatusFreeAgent,
		})
	}
	if err := s.store.Players().CreatePlayers(ctx, pool); err != nil {
		return err
	}

	draft := NewDraftService(s.store, NewDraftOrderService(), NewCapService(s.store))
	for _, draftSeason := range []int{season + 1, season + 2} {
		if err := draft.CreatePickAssets(ctx, dynastyID, draftSeason); err != nil {
			return err
		}
	}

	state := models.DynastyState{
		DynastyID:   dynastyID,
		Season:      season,
		Phase:       models.PhaseOffseason,
		CurrentDate: time.Date(season, time.May, 1, 0, 0, 0, 0, time.UTC),
		CurrentWeek: 0,
	}
	if err := s.store.Dynasties().SaveState(ctx, state); err != nil {
		return err
	}

	s.logger.Infof("Dynasty %s seeded: %d players, season %d", dynastyID, playerID, season)
	return nil
}

// seededOverall gives starters a 70-88 band and depth 52-71.
func seededOverall(rng *rand.Rand, starter bool) int {
	if starter {
		return 70 + rng.Intn(19)
	}
	return 52 + rng.Intn(20)
}

// seedContracts prices veteran deals gently enough that every team opens
// under the cap: quadratic in rating above replacement level, with a bonus
// slice on starters so dead money exists from day one.
func (s *DynastySeedService) seedContracts(ctx context.Context, dynastyID string, teamID, season int, players []models.Player, rng *rand.Rand) error {
	record := &models.SalaryCapRecord{
		DynastyID: dynastyID,
		TeamID:    teamID,
		Season:    season,
		CapLimit:  SalaryCapLimit,
	}
	for _, p := range players {
		years := 1 + rng.Intn(4)
		aav := int64(math.Pow(math.Max(0, float64(p.Overall-55)), 2) * 18_000)
		if aav < VeteranMinimumSalary {
			aav = VeteranMinimumSalary
		}
		total := aav * int64(years)
		var bonus int64
		if p.Overall >= 70 {
			bonus = total / 4
		}

		prorationYears := years
		perYearBonus := bonus / int64(prorationYears)
		baseTotal := total - bonus
		perYearBase := baseTotal / int64(years)

		contract := &models.Contract{
			ContractID:   uuid.NewString(),
			DynastyID:    dynastyID,
			PlayerID:     p.PlayerID,
			TeamID:       teamID,
			StartSeason:  season,
			SigningBonus: bonus,
			TotalValue:   total,
			Status:       models.ContractStatusActive,
		}
		for i := 0; i < years; i++ {
			year := models.ContractYear{
				Season:         season + i,
				BaseSalary:     perYearBase,
				BonusProration: perYearBonus,
			}
			if i == years-1 {
				year.BaseSalary += baseTotal - perYearBase*int64(years)
				year.BonusProration += bonus - perYearBonus*int64(prorationYears)
			}
			contract.Years = append(contract.Years, year)
		}
		if err := s.store.Contracts().CreateContract(ctx, contract); err != nil {
			return err
		}
		record.ActiveCapHits += contract.CapHitFor(season)
	}
	return s.store.Cap().SaveCapRecord(ctx, record)
}
