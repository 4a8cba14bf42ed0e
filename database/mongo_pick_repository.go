package database

import (
	"context"
	"time"

	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoPickRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoPickRepository(db *MongoDB) *MongoPickRepository {
	collection := db.GetCollection("draft_picks")
	logger := logging.WithPrefix("mongo_pick_repo")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// A pick is identified by the team whose finish creates it.
	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "dynasty_id", Value: 1},
			{Key: "season", Value: 1},
			{Key: "round", Value: 1},
			{Key: "origin_team_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Errorf("Failed to create index on draft_picks collection: %v", err)
	}

	return &MongoPickRepository{
		collection: collection,
		logger:     logger,
	}
}

func (r *MongoPickRepository) CreatePicks(ctx context.Context, picks []models.DraftPickAsset) error {
	if len(picks) == 0 {
		return nil
	}
	docs := make([]interface{}, len(picks))
	for i := range picks {
		docs[i] = picks[i]
	}
	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return &models.PersistenceError{Op: "create draft picks", Err: err}
	}
	return nil
}

func (r *MongoPickRepository) PicksByOwner(ctx context.Context, dynastyID string, teamID int) ([]models.DraftPickAsset, error) {
	filter := bson.M{"dynasty_id": dynastyID, "owner_team_id": teamID}

	sortOptions := options.Find().SetSort(bson.D{
		{Key: "season", Value: 1},
		{Key: "round", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, filter, sortOptions)
	if err != nil {
		return nil, &models.PersistenceError{Op: "find picks by owner", Err: err}
	}
	defer cursor.Close(ctx)

	var picks []models.DraftPickAsset
	if err := cursor.All(ctx, &picks); err != nil {
		return nil, &models.PersistenceError{Op: "decode picks", Err: err}
	}
	return picks, nil
}

func (r *MongoPickRepository) TransferPick(ctx context.Context, dynastyID string, season, round, originTeamID, newOwnerID int) error {
	filter := bson.M{
		"dynasty_id":     dynastyID,
		"season":         season,
		"round":          round,
		"origin_team_id": originTeamID,
	}
	update := bson.M{"$set": bson.M{"owner_team_id": newOwnerID}}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return &models.PersistenceError{Op: "transfer pick", Err: err}
	}
	if res.MatchedCount == 0 {
		return &models.NotFoundError{Entity: "draft pick", Key: dynastyID}
	}
	return nil
}

func (r *MongoPickRepository) PicksBySeason(ctx context.Context, dynastyID string, season int) ([]models.DraftPickAsset, error) {
	filter := bson.M{"dynasty_id": dynastyID, "season": season}

	sortOptions := options.Find().SetSort(bson.D{
		{Key: "round", Value: 1},
		{Key: "pick_in_round", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, filter, sortOptions)
	if err != nil {
		return nil, &models.PersistenceError{Op: "find picks by season", Err: err}
	}
	defer cursor.Close(ctx)

	var picks []models.DraftPickAsset
	if err := cursor.All(ctx, &picks); err != nil {
		return nil, &models.PersistenceError{Op: "decode picks", Err: err}
	}
	return picks, nil
}
