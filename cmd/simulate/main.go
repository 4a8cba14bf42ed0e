// Headless simulation driver: seeds a dynasty into the in-memory store and
// advances it a number of seasons, printing each season's champion. Useful
// for balancing the simulator and cap economy without standing up Mongo.
//
// Usage:
//
//	go run ./cmd/simulate -dynasty dev -season 2025 -seasons 3
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"nfl-dynasty-go/database"
	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logging.Debugf("No .env file: %v", err)
	}

	dynastyID := flag.String("dynasty", "dev", "dynasty id to create")
	seasonYear := flag.Int("season", 2025, "first season year")
	seasons := flag.Int("seasons", 1, "number of seasons to simulate")
	flag.Parse()

	store := database.NewMemoryStore()
	ctx := context.Background()

	seeder := services.NewDynastySeedService(store)
	if err := seeder.Seed(ctx, *dynastyID, *dynastyID, *seasonYear); err != nil {
		logging.Fatalf("Seeding failed: %v", err)
	}

	phases := services.NewPhaseMachine()
	capService := services.NewCapService(store)
	value := services.NewTradeValueService()
	transactions := services.NewTransactionService(store, capService, value, services.NewTransactionValidator(phases))
	standings := services.NewStandingsService(store)
	games := services.NewGameEventService(store, services.NewRatingSimulator(), standings)
	freeAgency := services.NewFreeAgencyService(store, capService, transactions)
	draft := services.NewDraftService(store, services.NewDraftOrderService(), capService)
	retirement := services.NewRetirementService(store, capService)
	playoffs := services.NewPlayoffService(store, standings)

	dispatcher := services.NewEventDispatcher(store, phases, games, transactions, freeAgency, draft, retirement, playoffs)
	controller := services.NewLeagueController(store, dispatcher, phases, services.NewScheduleService(),
		playoffs, draft, retirement, capService, services.NewGMProposalService(store, value), 400, 0)

	start := time.Now()
	for i := 0; i < *seasons; i++ {
		report, err := controller.SimulateToEndOfSeason(ctx, *dynastyID)
		if err != nil {
			logging.Errorf("Season simulation failed: %v", err)
			os.Exit(1)
		}
		season := report.State.Season - 1
		honors, err := store.Careers().GetSeasonHonors(ctx, *dynastyID, season)
		if err != nil {
			logging.Fatalf("No honors row for season %d: %v", season, err)
		}
		fmt.Printf("Season %d: champion team %d, runner-up %d, MVP player %d (%d events, %d failed, %d days)\n",
			season, honors.ChampionTeamID, honors.RunnerUpTeamID, honors.MVPPlayerID,
			report.Executed, report.Failed, report.Days)
	}
	fmt.Printf("Simulated %d season(s) in %s\n", *seasons, time.Since(start).Round(time.Millisecond))
}
