package interfaces

import (
	"context"
	"time"

	"nfl-dynasty-go/models"
)

// DynastyRepository owns the dynasties and dynasty_state tables. SaveState
// implementations must verify the write by reading the row back and
// comparing it to the intended values; a mismatch is a persistence failure.
type DynastyRepository interface {
	CreateDynasty(ctx context.Context, dynasty *models.Dynasty) error
	GetDynasty(ctx context.Context, dynastyID string) (*models.Dynasty, error)
	SaveState(ctx context.Context, state models.DynastyState) error
	GetState(ctx context.Context, dynastyID string) (*models.DynastyState, error)
}

// EventRepository is the append-only event log keyed by (dynasty, date).
// Insert is idempotent on structured id: when the same structured id already
// exists for the dynasty the duplicate is dropped and the prior event id is
// returned. Duplicate detection never uses the internal record id.
type EventRepository interface {
	Insert(ctx context.Context, event *models.Event) (string, error)
	EventsForDate(ctx context.Context, dynastyID string, date time.Time) ([]*models.Event, error)
	EventsForDateRange(ctx context.Context, dynastyID string, from, to time.Time) ([]*models.Event, error)
	EventsByStructuredPrefix(ctx context.Context, dynastyID, prefix string) ([]*models.Event, error)
	CountByStructuredPrefix(ctx context.Context, dynastyID, prefix string, status models.EventStatus) (int, error)
	GetByStructuredID(ctx context.Context, dynastyID, structuredID string) (*models.Event, error)
	MarkExecuted(ctx context.Context, eventID string, result map[string]interface{}, status models.EventStatus) error
}

// GameRepository stores box scores and per-player stats.
type GameRepository interface {
	InsertGame(ctx context.Context, game *models.GameRecord) error
	GetGame(ctx context.Context, dynastyID, gameID string) (*models.GameRecord, error)
	GamesBySeason(ctx context.Context, dynastyID string, season int, seasonType models.SeasonType) ([]models.GameRecord, error)
	InsertPlayerGameStats(ctx context.Context, stats []models.PlayerGameStats) error
	UpsertSeasonStats(ctx context.Context, dynastyID string, season int, seasonType models.SeasonType, playerID, teamID int, delta models.StatLine) error
	SeasonStats(ctx context.Context, dynastyID string, season int, seasonType models.SeasonType) ([]models.PlayerSeasonStats, error)
	PlayerCareerStats(ctx context.Context, dynastyID string, playerID int) ([]models.PlayerSeasonStats, error)
}

// StandingsRepository stores win/loss records per (dynasty, season, team).
type StandingsRepository interface {
	SaveStandings(ctx context.Context, row *models.StandingsRow) error
	GetStandings(ctx context.Context, dynastyID string, season int) ([]models.StandingsRow, error)
	GetTeamStandings(ctx context.Context, dynastyID string, season, teamID int) (*models.StandingsRow, error)
}

// PlayerRepository stores dynasty-scoped players. Rosters are queries here,
// never fields on a team.
type PlayerRepository interface {
	CreatePlayers(ctx context.Context, players []models.Player) error
	GetPlayer(ctx context.Context, dynastyID string, playerID int) (*models.Player, error)
	UpdatePlayer(ctx context.Context, player *models.Player) error
	TeamRoster(ctx context.Context, dynastyID string, teamID int) ([]models.Player, error)
	PlayersByStatus(ctx context.Context, dynastyID string, status models.PlayerStatus) ([]models.Player, error)
	MaxPlayerID(ctx context.Context, dynastyID string) (int, error)
}

// ContractRepository stores contracts. Contracts are never deleted; release,
// trade and retirement flip status and leave the dead-money trail in the cap
// ledger.
type ContractRepository interface {
	CreateContract(ctx context.Context, contract *models.Contract) error
	UpdateContract(ctx context.Context, contract *models.Contract) error
	GetContract(ctx context.Context, dynastyID, contractID string) (*models.Contract, error)
	ActiveContractByPlayer(ctx context.Context, dynastyID string, playerID int) (*models.Contract, error)
	ActiveContractsByTeam(ctx context.Context, dynastyID string, teamID int) ([]models.Contract, error)
}

// CapRepository stores the per-team cap sheet and the immutable cap
// transaction log.
type CapRepository interface {
	SaveCapRecord(ctx context.Context, record *models.SalaryCapRecord) error
	GetCapRecord(ctx context.Context, dynastyID string, teamID, season int) (*models.SalaryCapRecord, error)
	CapRecordsBySeason(ctx context.Context, dynastyID string, season int) ([]models.SalaryCapRecord, error)
	InsertCapTransaction(ctx context.Context, txn *models.CapTransaction) error
	CapTransactions(ctx context.Context, dynastyID string, teamID, season int) ([]models.CapTransaction, error)
}

// PickRepository stores tradable draft pick assets.
type PickRepository interface {
	CreatePicks(ctx context.Context, picks []models.DraftPickAsset) error
	PicksByOwner(ctx context.Context, dynastyID string, teamID int) ([]models.DraftPickAsset, error)
	TransferPick(ctx context.Context, dynastyID string, season, round, originTeamID, newOwnerID int) error
	PicksBySeason(ctx context.Context, dynastyID string, season int) ([]models.DraftPickAsset, error)
}

// CareerRepository stores retirements, career summaries and season honors.
type CareerRepository interface {
	InsertRetiredPlayer(ctx context.Context, retired *models.RetiredPlayer) error
	RetiredPlayers(ctx context.Context, dynastyID string, season int) ([]models.RetiredPlayer, error)
	SaveCareerSummary(ctx context.Context, summary *models.CareerSummary) error
	GetCareerSummary(ctx context.Context, dynastyID string, playerID int) (*models.CareerSummary, error)
	SaveSeasonHonors(ctx context.Context, honors *models.SeasonHonors) error
	GetSeasonHonors(ctx context.Context, dynastyID string, season int) (*models.SeasonHonors, error)
}

// LeagueStore aggregates every repository plus dynasty-scoped write
// serialization and transactions. One dynasty is single-writer: the store
// serializes WithDynastyTransaction per dynasty while different dynasties
// proceed in parallel. A returned error from fn rolls the transaction back.
type LeagueStore interface {
	Dynasties() DynastyRepository
	Events() EventRepository
	Games() GameRepository
	Standings() StandingsRepository
	Players() PlayerRepository
	Contracts() ContractRepository
	Cap() CapRepository
	Picks() PickRepository
	Careers() CareerRepository

	WithDynastyTransaction(ctx context.Context, dynastyID string, fn func(ctx context.Context) error) error
}
