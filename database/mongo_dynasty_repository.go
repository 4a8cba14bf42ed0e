package database

import (
	"context"
	"fmt"
	"time"

	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDynastyRepository struct {
	dynasties *mongo.Collection
	state     *mongo.Collection
	logger    *logging.Logger
}

func NewMongoDynastyRepository(db *MongoDB) *MongoDynastyRepository {
	dynasties := db.GetCollection("dynasties")
	state := db.GetCollection("dynasty_state")
	logger := logging.WithPrefix("mongo_dynasty_repo")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for col, keys := range map[*mongo.Collection]bson.D{
		dynasties: {{Key: "dynasty_id", Value: 1}},
		state:     {{Key: "dynasty_id", Value: 1}},
	} {
		indexModel := mongo.IndexModel{
			Keys:    keys,
			Options: options.Index().SetUnique(true),
		}
		if _, err := col.Indexes().CreateOne(ctx, indexModel); err != nil {
			logger.Errorf("Failed to create index on %s: %v", col.Name(), err)
		}
	}

	return &MongoDynastyRepository{
		dynasties: dynasties,
		state:     state,
		logger:    logger,
	}
}

func (r *MongoDynastyRepository) CreateDynasty(ctx context.Context, dynasty *models.Dynasty) error {
	if dynasty.CreatedAt.IsZero() {
		dynasty.CreatedAt = time.Now().UTC()
	}
	if _, err := r.dynasties.InsertOne(ctx, dynasty); err != nil {
		return &models.PersistenceError{Op: "create dynasty", Err: err}
	}
	return nil
}

func (r *MongoDynastyRepository) GetDynasty(ctx context.Context, dynastyID string) (*models.Dynasty, error) {
	var dynasty models.Dynasty
	err := r.dynasties.FindOne(ctx, bson.M{"dynasty_id": dynastyID}).Decode(&dynasty)
	if err == mongo.ErrNoDocuments {
		return nil, &models.NotFoundError{Entity: "dynasty", Key: dynastyID}
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "get dynasty", Err: err}
	}
	return &dynasty, nil
}

// SaveState upserts the dynasty's single calendar row, then reads it back
// and compares against the intended values. A silent write failure here is
// exactly the legacy drift bug; the read-back check closes it.
func (r *MongoDynastyRepository) SaveState(ctx context.Context, state models.DynastyState) error {
	state.CurrentDate = models.DateOnly(state.CurrentDate)

	filter := bson.M{"dynasty_id": state.DynastyID}
	opts := options.Replace().SetUpsert(true)

	if _, err := r.state.ReplaceOne(ctx, filter, state, opts); err != nil {
		return &models.PersistenceError{Op: "save dynasty state", Err: err}
	}

	stored, err := r.GetState(ctx, state.DynastyID)
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

func (r *MongoDynastyRepository) GetState(ctx context.Context, dynastyID string) (*models.DynastyState, error) {
	var state models.DynastyState
	err := r.state.FindOne(ctx, bson.M{"dynasty_id": dynastyID}).Decode(&state)
	if err == mongo.ErrNoDocuments {
		return nil, &models.NotFoundError{Entity: "dynasty state", Key: dynastyID}
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "get dynasty state", Err: err}
	}
	return &state, nil
}
