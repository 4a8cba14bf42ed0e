package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nfl-dynasty-go/config"
	"nfl-dynasty-go/database"
	"nfl-dynasty-go/handlers"
	"nfl-dynasty-go/interfaces"
	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/middleware"
	"nfl-dynasty-go/services"

	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Configure(logging.Config{
		Level:       cfg.Logging.Level,
		Output:      os.Stdout,
		Prefix:      cfg.Logging.Prefix,
		EnableColor: cfg.Logging.EnableColor,
	})
	cfg.LogConfiguration()

	store, cleanup, err := buildStore(cfg)
	if err != nil {
		logging.Fatalf("Failed to initialize store: %v", err)
	}
	defer cleanup()

	// Service graph. The dispatcher executes events; the controller owns the
	// calendar and installs itself as the dispatcher's phase-hook handler.
	phases := services.NewPhaseMachine()
	capService := services.NewCapService(store)
	value := services.NewTradeValueService()
	validator := services.NewTransactionValidator(phases)
	transactions := services.NewTransactionService(store, capService, value, validator)
	standings := services.NewStandingsService(store)
	simulator := services.NewRatingSimulator()
	games := services.NewGameEventService(store, simulator, standings)
	freeAgency := services.NewFreeAgencyService(store, capService, transactions)
	draft := services.NewDraftService(store, services.NewDraftOrderService(), capService)
	retirement := services.NewRetirementService(store, capService)
	playoffs := services.NewPlayoffService(store, standings)
	gm := services.NewGMProposalService(store, value)
	schedule := services.NewScheduleService()

	dispatcher := services.NewEventDispatcher(store, phases, games, transactions, freeAgency, draft, retirement, playoffs)
	controller := services.NewLeagueController(store, dispatcher, phases, schedule, playoffs, draft, retirement,
		capService, gm, cfg.League.MaxAdvanceDays, cfg.League.DayDeadline)

	seeder := services.NewDynastySeedService(store)
	authService := services.NewAuthService(cfg.Auth.CommissionerPasswordHash, cfg.Auth.JWTSecret)

	authHandler := handlers.NewAuthHandler(authService, !cfg.League.IsDevelopment)
	dynastyHandler := handlers.NewDynastyHandler(store, seeder, controller, cfg.League.SeasonYear)
	leagueHandler := handlers.NewLeagueHandler(store, playoffs)

	router := buildRouter(authService, authHandler, dynastyHandler, leagueHandler)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      middleware.SecurityMiddleware(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // season advances are long requests
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Infof("Server listening on %s", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logging.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Errorf("Shutdown error: %v", err)
	}
}

// buildStore picks the backing store: Mongo in normal operation, the
// in-memory store for development and tests.
func buildStore(cfg *config.Config) (interfaces.LeagueStore, func(), error) {
	if cfg.Database.InMemory {
		logging.Warn("Running with the in-memory store; data will not survive restarts")
		return database.NewMemoryStore(), func() {}, nil
	}

	db, err := database.NewMongoConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := db.Close(); err != nil {
			logging.Errorf("Error closing MongoDB connection: %v", err)
		}
	}
	return database.NewMongoStore(db), cleanup, nil
}

func buildRouter(authService *services.AuthService, auth *handlers.AuthHandler, dynasty *handlers.DynastyHandler, league *handlers.LeagueHandler) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	router.HandleFunc("/api/login", auth.Login).Methods("POST")
	router.HandleFunc("/api/logout", auth.Logout).Methods("POST")

	// Read side: open.
	api := router.PathPrefix("/api/dynasties/{dynastyID}").Subrouter()
	api.HandleFunc("/state", dynasty.State).Methods("GET")
	api.HandleFunc("/standings", league.Standings).Methods("GET")
	api.HandleFunc("/bracket", league.Bracket).Methods("GET")
	api.HandleFunc("/cap", league.CapSummary).Methods("GET")
	api.HandleFunc("/teams/{teamID}/cap", league.TeamCap).Methods("GET")
	api.HandleFunc("/teams/{teamID}/roster", league.TeamRoster).Methods("GET")
	api.HandleFunc("/teams/{teamID}/contracts", league.TeamContracts).Methods("GET")
	api.HandleFunc("/teams/{teamID}/picks", league.TeamPicks).Methods("GET")
	api.HandleFunc("/leaders", league.StatLeaders).Methods("GET")
	api.HandleFunc("/honors", league.Honors).Methods("GET")
	api.HandleFunc("/players/{playerID}/career", league.Career).Methods("GET")
	api.HandleFunc("/games", league.Games).Methods("GET")
	api.HandleFunc("/events", league.Events).Methods("GET")

	// Write side: commissioner only.
	authMW := middleware.NewAuthMiddleware(authService)
	router.Handle("/api/dynasties", authMW.RequireCommissioner(http.HandlerFunc(dynasty.Create))).Methods("POST")
	protected := router.PathPrefix("/api/dynasties/{dynastyID}").Subrouter()
	protected.Use(authMW.RequireCommissioner)
	protected.HandleFunc("/advance", dynasty.Advance).Methods("POST")
	protected.HandleFunc("/advance/week", dynasty.AdvanceWeek).Methods("POST")
	protected.HandleFunc("/advance/phase", dynasty.AdvancePhase).Methods("POST")
	protected.HandleFunc("/advance/season", dynasty.AdvanceSeason).Methods("POST")
	protected.HandleFunc("/transactions", dynasty.ScheduleTransaction).Methods("POST")

	return router
}
