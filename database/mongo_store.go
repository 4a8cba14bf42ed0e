package database

import (
	"context"
	"sync"

	"nfl-dynasty-go/interfaces"
	"nfl-dynasty-go/logging"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStore aggregates the Mongo-backed repositories behind the
// interfaces.LeagueStore contract. Writes for one dynasty are serialized
// through a per-dynasty mutex; different dynasties proceed in parallel.
type MongoStore struct {
	db     *MongoDB
	logger *logging.Logger

	dynasties *MongoDynastyRepository
	events    *MongoEventRepository
	games     *MongoGameRepository
	standings *MongoStandingsRepository
	players   *MongoPlayerRepository
	contracts *MongoContractRepository
	cap       *MongoCapRepository
	picks     *MongoPickRepository
	careers   *MongoCareerRepository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMongoStore wires every repository against one database handle.
func NewMongoStore(db *MongoDB) *MongoStore {
	return &MongoStore{
		db:        db,
		logger:    logging.WithPrefix("mongo_store"),
		dynasties: NewMongoDynastyRepository(db),
		events:    NewMongoEventRepository(db),
		games:     NewMongoGameRepository(db),
		standings: NewMongoStandingsRepository(db),
		players:   NewMongoPlayerRepository(db),
		contracts: NewMongoContractRepository(db),
		cap:       NewMongoCapRepository(db),
		picks:     NewMongoPickRepository(db),
		careers:   NewMongoCareerRepository(db),
		locks:     make(map[string]*sync.Mutex),
	}
}

func (s *MongoStore) Dynasties() interfaces.DynastyRepository  { return s.dynasties }
func (s *MongoStore) Events() interfaces.EventRepository       { return s.events }
func (s *MongoStore) Games() interfaces.GameRepository         { return s.games }
func (s *MongoStore) Standings() interfaces.StandingsRepository { return s.standings }
func (s *MongoStore) Players() interfaces.PlayerRepository     { return s.players }
func (s *MongoStore) Contracts() interfaces.ContractRepository { return s.contracts }
func (s *MongoStore) Cap() interfaces.CapRepository            { return s.cap }
func (s *MongoStore) Picks() interfaces.PickRepository         { return s.picks }
func (s *MongoStore) Careers() interfaces.CareerRepository     { return s.careers }

// dynastyLock returns the mutex serializing writes for one dynasty.
func (s *MongoStore) dynastyLock(dynastyID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[dynastyID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[dynastyID] = lock
	}
	return lock
}

// WithDynastyTransaction runs fn inside a Mongo session transaction while
// holding the dynasty's write lock. Deployments without replica sets do not
// support multi-document transactions; in that case fn runs directly under
// the lock and a warning is logged once per call.
func (s *MongoStore) WithDynastyTransaction(ctx context.Context, dynastyID string, fn func(ctx context.Context) error) error {
	lock := s.dynastyLock(dynastyID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.db.client.StartSession()
	if err != nil {
		s.logger.Warnf("Sessions unavailable (%v); running without transaction for dynasty %s", err, dynastyID)
		return fn(ctx)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
