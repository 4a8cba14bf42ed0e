package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"nfl-dynasty-go/interfaces"
	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/models"

	"github.com/google/uuid"
)

// MemoryStore is a full in-process implementation of the store contract.
// It backs tests and demo mode; the semantics mirror the Mongo store,
// including idempotent event inserts, read-back verification on dynasty
// state, and transactional rollback (by snapshot) on handler failure.
type MemoryStore struct {
	mu sync.RWMutex

	dynasties   map[string]models.Dynasty
	states      map[string]models.DynastyState
	events      map[string]models.Event // keyed by internal event id
	structured  map[string]string       // dynasty|structured_id -> event id
	games       map[string]models.GameRecord
	gameStats   []models.PlayerGameStats
	seasonStats map[string]models.PlayerSeasonStats
	standings   map[string]models.StandingsRow
	players     map[string]models.Player
	contracts   map[string]models.Contract
	capRecords  map[string]models.SalaryCapRecord
	capTxns     []models.CapTransaction
	picks       map[string]models.DraftPickAsset
	retired     []models.RetiredPlayer
	summaries   map[string]models.CareerSummary
	honors      map[string]models.SeasonHonors

	insertCounter int64

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex

	logger *logging.Logger
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		dynasties:   make(map[string]models.Dynasty),
		states:      make(map[string]models.DynastyState),
		events:      make(map[string]models.Event),
		structured:  make(map[string]string),
		games:       make(map[string]models.GameRecord),
		seasonStats: make(map[string]models.PlayerSeasonStats),
		standings:   make(map[string]models.StandingsRow),
		players:     make(map[string]models.Player),
		contracts:   make(map[string]models.Contract),
		capRecords:  make(map[string]models.SalaryCapRecord),
		picks:       make(map[string]models.DraftPickAsset),
		summaries:   make(map[string]models.CareerSummary),
		honors:      make(map[string]models.SeasonHonors),
		locks:       make(map[string]*sync.Mutex),
		logger:      logging.WithPrefix("memory_store"),
	}
}

// Every repository view is the store itself.
func (s *MemoryStore) Dynasties() interfaces.DynastyRepository   { return s }
func (s *MemoryStore) Events() interfaces.EventRepository        { return s }
func (s *MemoryStore) Games() interfaces.GameRepository          { return s }
func (s *MemoryStore) Standings() interfaces.StandingsRepository { return s }
func (s *MemoryStore) Players() interfaces.PlayerRepository      { return s }
func (s *MemoryStore) Contracts() interfaces.ContractRepository  { return s }
func (s *MemoryStore) Cap() interfaces.CapRepository             { return s }
func (s *MemoryStore) Picks() interfaces.PickRepository          { return s }
func (s *MemoryStore) Careers() interfaces.CareerRepository      { return s }

func (s *MemoryStore) dynastyLock(dynastyID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.locks[dynastyID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[dynastyID] = lock
	}
	return lock
}

// WithDynastyTransaction serializes writers per dynasty and rolls that
// dynasty's rows back to their pre-transaction snapshot when fn fails.
// The snapshot is scoped to the one dynasty: other dynasties advance in
// parallel under their own locks, and their committed writes must survive
// a neighbor's rollback.
func (s *MemoryStore) WithDynastyTransaction(ctx context.Context, dynastyID string, fn func(ctx context.Context) error) error {
	lock := s.dynastyLock(dynastyID)
	lock.Lock()
	defer lock.Unlock()

	snapshot := s.snapshotDynasty(dynastyID)
	if err := fn(ctx); err != nil {
		s.restoreDynasty(dynastyID, snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	dynasties   map[string]models.Dynasty
	states      map[string]models.DynastyState
	events      map[string]models.Event
	structured  map[string]string
	games       map[string]models.GameRecord
	gameStats   []models.PlayerGameStats
	seasonStats map[string]models.PlayerSeasonStats
	standings   map[string]models.StandingsRow
	players     map[string]models.Player
	contracts   map[string]models.Contract
	capRecords  map[string]models.SalaryCapRecord
	capTxns     []models.CapTransaction
	picks       map[string]models.DraftPickAsset
	retired     []models.RetiredPlayer
	summaries   map[string]models.CareerSummary
	honors      map[string]models.SeasonHonors
}

// snapshotDynasty copies one dynasty's rows out of every table. Maps whose
// keys do not start with the dynasty id (events keyed by internal uuid)
// filter on the row's DynastyID field instead.
func (s *MemoryStore) snapshotDynasty(dynastyID string) memorySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := memorySnapshot{
		dynasties:   make(map[string]models.Dynasty),
		states:      make(map[string]models.DynastyState),
		events:      make(map[string]models.Event),
		structured:  make(map[string]string),
		games:       make(map[string]models.GameRecord),
		seasonStats: make(map[string]models.PlayerSeasonStats),
		standings:   make(map[string]models.StandingsRow),
		players:     make(map[string]models.Player),
		contracts:   make(map[string]models.Contract),
		capRecords:  make(map[string]models.SalaryCapRecord),
		picks:       make(map[string]models.DraftPickAsset),
		summaries:   make(map[string]models.CareerSummary),
		honors:      make(map[string]models.SeasonHonors),
	}
	if d, ok := s.dynasties[dynastyID]; ok {
		snap.dynasties[dynastyID] = d
	}
	if st, ok := s.states[dynastyID]; ok {
		snap.states[dynastyID] = st
	}
	for k, v := range s.events {
		if v.DynastyID == dynastyID {
			snap.events[k] = cloneEvent(v)
		}
	}
	prefix := dynastyID + "|"
	for k, v := range s.structured {
		if strings.HasPrefix(k, prefix) {
			snap.structured[k] = v
		}
	}
	for k, v := range s.games {
		if v.DynastyID == dynastyID {
			snap.games[k] = v
		}
	}
	for _, v := range s.gameStats {
		if v.DynastyID == dynastyID {
			snap.gameStats = append(snap.gameStats, v)
		}
	}
	for k, v := range s.seasonStats {
		if v.DynastyID == dynastyID {
			snap.seasonStats[k] = v
		}
	}
	for k, v := range s.standings {
		if v.DynastyID == dynastyID {
			snap.standings[k] = cloneStandings(v)
		}
	}
	for k, v := range s.players {
		if v.DynastyID == dynastyID {
			snap.players[k] = v
		}
	}
	for k, v := range s.contracts {
		if v.DynastyID == dynastyID {
			snap.contracts[k] = cloneContract(v)
		}
	}
	for k, v := range s.capRecords {
		if v.DynastyID == dynastyID {
			snap.capRecords[k] = v
		}
	}
	for _, v := range s.capTxns {
		if v.DynastyID == dynastyID {
			snap.capTxns = append(snap.capTxns, v)
		}
	}
	for k, v := range s.picks {
		if v.DynastyID == dynastyID {
			snap.picks[k] = v
		}
	}
	for _, v := range s.retired {
		if v.DynastyID == dynastyID {
			snap.retired = append(snap.retired, v)
		}
	}
	for k, v := range s.summaries {
		if v.DynastyID == dynastyID {
			snap.summaries[k] = v
		}
	}
	for k, v := range s.honors {
		if v.DynastyID == dynastyID {
			snap.honors[k] = v
		}
	}
	return snap
}

// restoreDynasty drops the dynasty's current rows and puts the snapshot's
// back. The global insert counter is left alone: it only has to stay
// monotonic, and winding it back would collide with ids handed out to other
// dynasties mid-transaction.
func (s *MemoryStore) restoreDynasty(dynastyID string, snap memorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.dynasties, dynastyID)
	delete(s.states, dynastyID)
	for k, v := range s.events {
		if v.DynastyID == dynastyID {
			delete(s.events, k)
		}
	}
	prefix := dynastyID + "|"
	for k := range s.structured {
		if strings.HasPrefix(k, prefix) {
			delete(s.structured, k)
		}
	}
	for k, v := range s.games {
		if v.DynastyID == dynastyID {
			delete(s.games, k)
		}
	}
	s.gameStats = dropDynastyRows(s.gameStats, func(v models.PlayerGameStats) bool { return v.DynastyID == dynastyID })
	for k, v := range s.seasonStats {
		if v.DynastyID == dynastyID {
			delete(s.seasonStats, k)
		}
	}
	for k, v := range s.standings {
		if v.DynastyID == dynastyID {
			delete(s.standings, k)
		}
	}
	for k, v := range s.players {
		if v.DynastyID == dynastyID {
			delete(s.players, k)
		}
	}
	for k, v := range s.contracts {
		if v.DynastyID == dynastyID {
			delete(s.contracts, k)
		}
	}
	for k, v := range s.capRecords {
		if v.DynastyID == dynastyID {
			delete(s.capRecords, k)
		}
	}
	s.capTxns = dropDynastyRows(s.capTxns, func(v models.CapTransaction) bool { return v.DynastyID == dynastyID })
	for k, v := range s.picks {
		if v.DynastyID == dynastyID {
			delete(s.picks, k)
		}
	}
	s.retired = dropDynastyRows(s.retired, func(v models.RetiredPlayer) bool { return v.DynastyID == dynastyID })
	for k, v := range s.summaries {
		if v.DynastyID == dynastyID {
			delete(s.summaries, k)
		}
	}
	for k, v := range s.honors {
		if v.DynastyID == dynastyID {
			delete(s.honors, k)
		}
	}

	for k, v := range snap.dynasties {
		s.dynasties[k] = v
	}
	for k, v := range snap.states {
		s.states[k] = v
	}
	for k, v := range snap.events {
		s.events[k] = v
	}
	for k, v := range snap.structured {
		s.structured[k] = v
	}
	for k, v := range snap.games {
		s.games[k] = v
	}
	s.gameStats = append(s.gameStats, snap.gameStats...)
	for k, v := range snap.seasonStats {
		s.seasonStats[k] = v
	}
	for k, v := range snap.standings {
		s.standings[k] = v
	}
	for k, v := range snap.players {
		s.players[k] = v
	}
	for k, v := range snap.contracts {
		s.contracts[k] = v
	}
	for k, v := range snap.capRecords {
		s.capRecords[k] = v
	}
	s.capTxns = append(s.capTxns, snap.capTxns...)
	for k, v := range snap.picks {
		s.picks[k] = v
	}
	s.retired = append(s.retired, snap.retired...)
	for k, v := range snap.summaries {
		s.summaries[k] = v
	}
	for k, v := range snap.honors {
		s.honors[k] = v
	}
}

func dropDynastyRows[T any](rows []T, owned func(T) bool) []T {
	kept := rows[:0]
	for _, row := range rows {
		if !owned(row) {
			kept = append(kept, row)
		}
	}
	return kept
}

func cloneEvent(e models.Event) models.Event {
	clone := e
	if e.Payload != nil {
		clone.Payload = make(map[string]interface{}, len(e.Payload))
		for k, v := range e.Payload {
			clone.Payload[k] = v
		}
	}
	if e.Result != nil {
		clone.Result = make(map[string]interface{}, len(e.Result))
		for k, v := range e.Result {
			clone.Result[k] = v
		}
	}
	return clone
}

func cloneContract(c models.Contract) models.Contract {
	clone := c
	clone.Years = append([]models.ContractYear(nil), c.Years...)
	return clone
}

func cloneStandings(r models.StandingsRow) models.StandingsRow {
	clone := r
	clone.Schedule = append([]int(nil), r.Schedule...)
	return clone
}

// ---- DynastyRepository ----

func (s *MemoryStore) CreateDynasty(ctx context.Context, dynasty *models.Dynasty) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dynasty.CreatedAt.IsZero() {
		dynasty.CreatedAt = time.Now().UTC()
	}
	if _, exists := s.dynasties[dynasty.DynastyID]; exists {
		return &models.PersistenceError{Op: "create dynasty", Err: fmt.Errorf("dynasty %s already exists", dynasty.DynastyID)}
	}
	s.dynasties[dynasty.DynastyID] = *dynasty
	return nil
}

func (s *MemoryStore) GetDynasty(ctx context.Context, dynastyID string) (*models.Dynasty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dynasty, ok := s.dynasties[dynastyID]
	if !ok {
		return nil, &models.NotFoundError{Entity: "dynasty", Key: dynastyID}
	}
	return &dynasty, nil
}

func (s *MemoryStore) SaveState(ctx context.Context, state models.DynastyState) error {
	state.CurrentDate = models.DateOnly(state.CurrentDate)

	s.mu.Lock()
	s.states[state.DynastyID] = state
	s.mu.Unlock()

	// Read-back verification, same contract as the Mongo repository.
	stored, err := s.GetState(ctx, state.DynastyID)
	if err != nil {
		return &models.PersistenceError{Op: "verify dynasty state", Err: err}
	}
	if !stored.Equal(state) {
		return &models.PersistenceError{
			Op:  "verify dynasty state",
			Err: fmt.Errorf("read-back mismatch: wrote %+v, stored %+v", state, *stored),
		}
	}
	return nil
}

func (s *MemoryStore) GetState(ctx context.Context, dynastyID string) (*models.DynastyState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[dynastyID]
	if !ok {
		return nil, &models.NotFoundError{Entity: "dynasty state", Key: dynastyID}
	}
	return &state, nil
}

// ---- EventRepository ----

func structuredKey(dynastyID, structuredID string) string {
	return dynastyID + "|" + structuredID
}

func (s *MemoryStore) Insert(ctx context.Context, event *models.Event) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := structuredKey(event.DynastyID, event.StructuredID)
	if existingID, ok := s.structured[key]; ok {
		return existingID, nil
	}

	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	event.Date = models.DateOnly(event.Date)
	if event.Priority == 0 {
		event.Priority = event.Kind.Priority()
	}
	s.insertCounter++
	if event.InsertOrder == 0 {
		event.InsertOrder = s.insertCounter
	}
	if event.Status == "" {
		event.Status = models.EventStatusScheduled
	}

	s.events[event.EventID] = cloneEvent(*event)
	s.structured[key] = event.EventID
	return event.EventID, nil
}

func (s *MemoryStore) GetByStructuredID(ctx context.Context, dynastyID, structuredID string) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.structured[structuredKey(dynastyID, structuredID)]
	if !ok {
		return nil, &models.NotFoundError{Entity: "event", Key: structuredID}
	}
	event := cloneEvent(s.events[id])
	return &event, nil
}

func (s *MemoryStore) EventsForDate(ctx context.Context, dynastyID string, date time.Time) ([]*models.Event, error) {
	day := models.DateOnly(date)
	return s.filterEvents(func(e models.Event) bool {
		return e.DynastyID == dynastyID && e.Date.Equal(day)
	}), nil
}

func (s *MemoryStore) EventsForDateRange(ctx context.Context, dynastyID string, from, to time.Time) ([]*models.Event, error) {
	lo, hi := models.DateOnly(from), models.DateOnly(to)
	return s.filterEvents(func(e models.Event) bool {
		return e.DynastyID == dynastyID && !e.Date.Before(lo) && !e.Date.After(hi)
	}), nil
}

func (s *MemoryStore) EventsByStructuredPrefix(ctx context.Context, dynastyID, prefix string) ([]*models.Event, error) {
	return s.filterEvents(func(e models.Event) bool {
		return e.DynastyID == dynastyID && strings.HasPrefix(e.StructuredID, prefix)
	}), nil
}

func (s *MemoryStore) CountByStructuredPrefix(ctx context.Context, dynastyID, prefix string, status models.EventStatus) (int, error) {
	count := 0
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.events {
		if e.DynastyID == dynastyID && strings.HasPrefix(e.StructuredID, prefix) {
			if status == "" || e.Status == status {
				count++
			}
		}
	}
	return count, nil
}

func (s *MemoryStore) MarkExecuted(ctx context.Context, eventID string, result map[string]interface{}, status models.EventStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok || event.Status == models.EventStatusExecuted {
		return &models.NotFoundError{Entity: "schedulable event", Key: eventID}
	}
	event.Status = status
	event.Result = result
	s.events[eventID] = cloneEvent(event)
	return nil
}

func (s *MemoryStore) filterEvents(keep func(models.Event) bool) []*models.Event {
	s.mu.RLock()
	var matched []models.Event
	for _, e := range s.events {
		if keep(e) {
			matched = append(matched, cloneEvent(e))
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.Before(matched[j].Date)
		}
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority < matched[j].Priority
		}
		return matched[i].InsertOrder < matched[j].InsertOrder
	})

	events := make([]*models.Event, len(matched))
	for i := range matched {
		events[i] = &matched[i]
	}
	return events
}

// ---- GameRepository ----

func gameKey(dynastyID, gameID string) string {
	return dynastyID + "|" + gameID
}

func (s *MemoryStore) InsertGame(ctx context.Context, game *models.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game.Date = models.DateOnly(game.Date)
	key := gameKey(game.DynastyID, game.GameID)
	if _, exists := s.games[key]; exists {
		return &models.PersistenceError{Op: "insert game", Err: fmt.Errorf("game %s already recorded", game.GameID)}
	}
	s.games[key] = *game
	return nil
}

func (s *MemoryStore) GetGame(ctx context.Context, dynastyID, gameID string) (*models.GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[gameKey(dynastyID, gameID)]
	if !ok {
		return nil, &models.NotFoundError{Entity: "game", Key: gameID}
	}
	return &game, nil
}

func (s *MemoryStore) GamesBySeason(ctx context.Context, dynastyID string, season int, seasonType models.SeasonType) ([]models.GameRecord, error) {
	s.mu.RLock()
	var games []models.GameRecord
	for _, g := range s.games {
		if g.DynastyID == dynastyID && g.Season == season && (seasonType == "" || g.SeasonType == seasonType) {
			games = append(games, g)
		}
	}
	s.mu.RUnlock()

	sort.Slice(games, func(i, j int) bool {
		if !games[i].Date.Equal(games[j].Date) {
			return games[i].Date.Before(games[j].Date)
		}
		return games[i].GameID < games[j].GameID
	})
	return games, nil
}

func (s *MemoryStore) InsertPlayerGameStats(ctx context.Context, stats []models.PlayerGameStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameStats = append(s.gameStats, stats...)
	return nil
}

func seasonStatsKey(dynastyID string, season int, seasonType models.SeasonType, playerID int) string {
	return fmt.Sprintf("%s|%d|%s|%d", dynastyID, season, seasonType, playerID)
}

func (s *MemoryStore) UpsertSeasonStats(ctx context.Context, dynastyID string, season int, seasonType models.SeasonType, playerID, teamID int, delta models.StatLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := seasonStatsKey(dynastyID, season, seasonType, playerID)
	agg, ok := s.seasonStats[key]
	if !ok {
		agg = models.PlayerSeasonStats{
			DynastyID:  dynastyID,
			Season:     season,
			SeasonType: seasonType,
			PlayerID:   playerID,
		}
	}
	agg.TeamID = teamID
	agg.GamesPlayed++
	agg.Line.Add(delta)
	s.seasonStats[key] = agg
	return nil
}

func (s *MemoryStore) SeasonStats(ctx context.Context, dynastyID string, season int, seasonType models.SeasonType) ([]models.PlayerSeasonStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stats []models.PlayerSeasonStats
	for _, agg := range s.seasonStats {
		if agg.DynastyID == dynastyID && agg.Season == season && agg.SeasonType == seasonType {
			stats = append(stats, agg)
		}
	}
	return stats, nil
}

func (s *MemoryStore) PlayerCareerStats(ctx context.Context, dynastyID string, playerID int) ([]models.PlayerSeasonStats, error) {
	s.mu.RLock()
	var stats []models.PlayerSeasonStats
	for _, agg := range s.seasonStats {
		if agg.DynastyID == dynastyID && agg.PlayerID == playerID {
			stats = append(stats, agg)
		}
	}
	s.mu.RUnlock()

	sort.Slice(stats, func(i, j int) bool { return stats[i].Season < stats[j].Season })
	return stats, nil
}

// ---- StandingsRepository ----

func standingsKey(dynastyID string, season, teamID int) string {
	return fmt.Sprintf("%s|%d|%d", dynastyID, season, teamID)
}

func (s *MemoryStore) SaveStandings(ctx context.Context, row *models.StandingsRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.standings[standingsKey(row.DynastyID, row.Season, row.TeamID)] = cloneStandings(*row)
	return nil
}

func (s *MemoryStore) GetStandings(ctx context.Context, dynastyID string, season int) ([]models.StandingsRow, error) {
	s.mu.RLock()
	var rows []models.StandingsRow
	for _, row := range s.standings {
		if row.DynastyID == dynastyID && row.Season == season {
			rows = append(rows, cloneStandings(row))
		}
	}
	s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool { return rows[i].TeamID < rows[j].TeamID })
	return rows, nil
}

func (s *MemoryStore) GetTeamStandings(ctx context.Context, dynastyID string, season, teamID int) (*models.StandingsRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.standings[standingsKey(dynastyID, season, teamID)]
	if !ok {
		return nil, &models.NotFoundError{Entity: "standings row", Key: dynastyID}
	}
	clone := cloneStandings(row)
	return &clone, nil
}

// ---- PlayerRepository ----

func playerKey(dynastyID string, playerID int) string {
	return fmt.Sprintf("%s|%d", dynastyID, playerID)
}

func (s *MemoryStore) CreatePlayers(ctx context.Context, players []models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range players {
		key := playerKey(p.DynastyID, p.PlayerID)
		if _, exists := s.players[key]; exists {
			return &models.PersistenceError{Op: "create players", Err: fmt.Errorf("player %d already exists", p.PlayerID)}
		}
		s.players[key] = p
	}
	return nil
}

func (s *MemoryStore) GetPlayer(ctx context.Context, dynastyID string, playerID int) (*models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[playerKey(dynastyID, playerID)]
	if !ok {
		return nil, &models.NotFoundError{Entity: "player", Key: fmt.Sprintf("%s/%d", dynastyID, playerID)}
	}
	return &player, nil
}

func (s *MemoryStore) UpdatePlayer(ctx context.Context, player *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := playerKey(player.DynastyID, player.PlayerID)
	if _, ok := s.players[key]; !ok {
		return &models.NotFoundError{Entity: "player", Key: key}
	}
	s.players[key] = *player
	return nil
}

func (s *MemoryStore) TeamRoster(ctx context.Context, dynastyID string, teamID int) ([]models.Player, error) {
	s.mu.RLock()
	var roster []models.Player
	for _, p := range s.players {
		if p.DynastyID == dynastyID && p.OnTeam(teamID) {
			roster = append(roster, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(roster, func(i, j int) bool {
		if roster[i].Overall != roster[j].Overall {
			return roster[i].Overall > roster[j].Overall
		}
		return roster[i].PlayerID < roster[j].PlayerID
	})
	return roster, nil
}

func (s *MemoryStore) PlayersByStatus(ctx context.Context, dynastyID string, status models.PlayerStatus) ([]models.Player, error) {
	s.mu.RLock()
	var players []models.Player
	for _, p := range s.players {
		if p.DynastyID == dynastyID && p.Status == status {
			players = append(players, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(players, func(i, j int) bool {
		if players[i].Overall != players[j].Overall {
			return players[i].Overall > players[j].Overall
		}
		return players[i].PlayerID < players[j].PlayerID
	})
	return players, nil
}

func (s *MemoryStore) MaxPlayerID(ctx context.Context, dynastyID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	max := 0
	for _, p := range s.players {
		if p.DynastyID == dynastyID && p.PlayerID > max {
			max = p.PlayerID
		}
	}
	return max, nil
}

// ---- ContractRepository ----

func contractKey(dynastyID, contractID string) string {
	return dynastyID + "|" + contractID
}

func (s *MemoryStore) CreateContract(ctx context.Context, contract *models.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := contractKey(contract.DynastyID, contract.ContractID)
	if _, exists := s.contracts[key]; exists {
		return &models.PersistenceError{Op: "create contract", Err: fmt.Errorf("contract %s already exists", contract.ContractID)}
	}
	s.contracts[key] = cloneContract(*contract)
	return nil
}

func (s *MemoryStore) UpdateContract(ctx context.Context, contract *models.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := contractKey(contract.DynastyID, contract.ContractID)
	if _, ok := s.contracts[key]; !ok {
		return &models.NotFoundError{Entity: "contract", Key: contract.ContractID}
	}
	s.contracts[key] = cloneContract(*contract)
	return nil
}

func (s *MemoryStore) GetContract(ctx context.Context, dynastyID, contractID string) (*models.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contract, ok := s.contracts[contractKey(dynastyID, contractID)]
	if !ok {
		return nil, &models.NotFoundError{Entity: "contract", Key: contractID}
	}
	clone := cloneContract(contract)
	return &clone, nil
}

func (s *MemoryStore) ActiveContractByPlayer(ctx context.Context, dynastyID string, playerID int) (*models.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.contracts {
		if c.DynastyID == dynastyID && c.PlayerID == playerID && c.Status == models.ContractStatusActive {
			clone := cloneContract(c)
			return &clone, nil
		}
	}
	return nil, &models.NotFoundError{Entity: "active contract", Key: fmt.Sprintf("%s/%d", dynastyID, playerID)}
}

func (s *MemoryStore) ActiveContractsByTeam(ctx context.Context, dynastyID string, teamID int) ([]models.Contract, error) {
	s.mu.RLock()
	var contracts []models.Contract
	for _, c := range s.contracts {
		if c.DynastyID == dynastyID && c.TeamID == teamID && c.Status == models.ContractStatusActive {
			contracts = append(contracts, cloneContract(c))
		}
	}
	s.mu.RUnlock()

	sort.Slice(contracts, func(i, j int) bool { return contracts[i].PlayerID < contracts[j].PlayerID })
	return contracts, nil
}

// ---- CapRepository ----

func capKey(dynastyID string, teamID, season int) string {
	return fmt.Sprintf("%s|%d|%d", dynastyID, teamID, season)
}

func (s *MemoryStore) SaveCapRecord(ctx context.Context, record *models.SalaryCapRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capRecords[capKey(record.DynastyID, record.TeamID, record.Season)] = *record
	return nil
}

func (s *MemoryStore) GetCapRecord(ctx context.Context, dynastyID string, teamID, season int) (*models.SalaryCapRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.capRecords[capKey(dynastyID, teamID, season)]
	if !ok {
		return nil, &models.NotFoundError{Entity: "cap record", Key: fmt.Sprintf("%s/%d/%d", dynastyID, teamID, season)}
	}
	return &record, nil
}

func (s *MemoryStore) CapRecordsBySeason(ctx context.Context, dynastyID string, season int) ([]models.SalaryCapRecord, error) {
	s.mu.RLock()
	var records []models.SalaryCapRecord
	for _, r := range s.capRecords {
		if r.DynastyID == dynastyID && r.Season == season {
			records = append(records, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool { return records[i].TeamID < records[j].TeamID })
	return records, nil
}

func (s *MemoryStore) InsertCapTransaction(ctx context.Context, txn *models.CapTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	s.capTxns = append(s.capTxns, *txn)
	return nil
}

func (s *MemoryStore) CapTransactions(ctx context.Context, dynastyID string, teamID, season int) ([]models.CapTransaction, error) {
	s.mu.RLock()
	var txns []models.CapTransaction
	for _, t := range s.capTxns {
		if t.DynastyID == dynastyID && t.Season == season && (teamID == 0 || t.TeamID == teamID) {
			txns = append(txns, t)
		}
	}
	s.mu.RUnlock()

	sort.Slice(txns, func(i, j int) bool { return txns[i].Date.Before(txns[j].Date) })
	return txns, nil
}

// ---- PickRepository ----

func pickKey(dynastyID string, season, round, originTeamID int) string {
	return fmt.Sprintf("%s|%d|%d|%d", dynastyID, season, round, originTeamID)
}

func (s *MemoryStore) CreatePicks(ctx context.Context, picks []models.DraftPickAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range picks {
		key := pickKey(p.DynastyID, p.Season, p.Round, p.OriginTeamID)
		if _, exists := s.picks[key]; exists {
			return &models.PersistenceError{Op: "create picks", Err: fmt.Errorf("pick %s already exists", key)}
		}
		s.picks[key] = p
	}
	return nil
}

func (s *MemoryStore) PicksByOwner(ctx context.Context, dynastyID string, teamID int) ([]models.DraftPickAsset, error) {
	s.mu.RLock()
	var picks []models.DraftPickAsset
	for _, p := range s.picks {
		if p.DynastyID == dynastyID && p.OwnerTeamID == teamID {
			picks = append(picks, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(picks, func(i, j int) bool {
		if picks[i].Season != picks[j].Season {
			return picks[i].Season < picks[j].Season
		}
		return picks[i].Round < picks[j].Round
	})
	return picks, nil
}

func (s *MemoryStore) TransferPick(ctx context.Context, dynastyID string, season, round, originTeamID, newOwnerID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pickKey(dynastyID, season, round, originTeamID)
	pick, ok := s.picks[key]
	if !ok {
		return &models.NotFoundError{Entity: "draft pick", Key: key}
	}
	pick.OwnerTeamID = newOwnerID
	s.picks[key] = pick
	return nil
}

func (s *MemoryStore) PicksBySeason(ctx context.Context, dynastyID string, season int) ([]models.DraftPickAsset, error) {
	s.mu.RLock()
	var picks []models.DraftPickAsset
	for _, p := range s.picks {
		if p.DynastyID == dynastyID && p.Season == season {
			picks = append(picks, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(picks, func(i, j int) bool {
		if picks[i].Round != picks[j].Round {
			return picks[i].Round < picks[j].Round
		}
		return picks[i].PickInRound < picks[j].PickInRound
	})
	return picks, nil
}

// ---- CareerRepository ----

func (s *MemoryStore) InsertRetiredPlayer(ctx context.Context, player *models.RetiredPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retired = append(s.retired, *player)
	return nil
}

func (s *MemoryStore) RetiredPlayers(ctx context.Context, dynastyID string, season int) ([]models.RetiredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var players []models.RetiredPlayer
	for _, p := range s.retired {
		if p.DynastyID == dynastyID && (season == 0 || p.Season == season) {
			players = append(players, p)
		}
	}
	return players, nil
}

func (s *MemoryStore) SaveCareerSummary(ctx context.Context, summary *models.CareerSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[playerKey(summary.DynastyID, summary.PlayerID)] = *summary
	return nil
}

func (s *MemoryStore) GetCareerSummary(ctx context.Context, dynastyID string, playerID int) (*models.CareerSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary, ok := s.summaries[playerKey(dynastyID, playerID)]
	if !ok {
		return nil, &models.NotFoundError{Entity: "career summary", Key: fmt.Sprintf("%s/%d", dynastyID, playerID)}
	}
	return &summary, nil
}

func (s *MemoryStore) SaveSeasonHonors(ctx context.Context, honors *models.SeasonHonors) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.honors[fmt.Sprintf("%s|%d", honors.DynastyID, honors.Season)] = *honors
	return nil
}

func (s *MemoryStore) GetSeasonHonors(ctx context.Context, dynastyID string, season int) (*models.SeasonHonors, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	honors, ok := s.honors[fmt.Sprintf("%s|%d", dynastyID, season)]
	if !ok {
		return nil, &models.NotFoundError{Entity: "season honors", Key: fmt.Sprintf("%s/%d", dynastyID, season)}
	}
	return &honors, nil
}
