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

type MongoStandingsRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoStandingsRepository(db *MongoDB) *MongoStandingsRepository {
	collection := db.GetCollection("standings")
	logger := logging.WithPrefix("mongo_standings_repo")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "dynasty_id", Value: 1},
			{Key: "season", Value: 1},
			{Key: "team_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Errorf("Failed to create index on standings collection: %v", err)
	}

	return &MongoStandingsRepository{
		collection: collection,
		logger:     logger,
	}
}

func (r *MongoStandingsRepository) SaveStandings(ctx context.Context, row *models.StandingsRow) error {
	filter := bson.M{
		"dynasty_id": row.DynastyID,
		"season":     row.Season,
		"team_id":    row.TeamID,
	}
	opts := options.Replace().SetUpsert(true)

	if _, err := r.collection.ReplaceOne(ctx, filter, row, opts); err != nil {
		return &models.PersistenceError{Op: "save standings", Err: err}
	}
	return nil
}

func (r *MongoStandingsRepository) GetStandings(ctx context.Context, dynastyID string, season int) ([]models.StandingsRow, error) {
	filter := bson.M{"dynasty_id": dynastyID, "season": season}

	sortOptions := options.Find().SetSort(bson.D{{Key: "team_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, sortOptions)
	if err != nil {
		return nil, &models.PersistenceError{Op: "find standings", Err: err}
	}
	defer cursor.Close(ctx)

	var rows []models.StandingsRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, &models.PersistenceError{Op: "decode standings", Err: err}
	}
	return rows, nil
}

func (r *MongoStandingsRepository) GetTeamStandings(ctx context.Context, dynastyID string, season, teamID int) (*models.StandingsRow, error) {
	var row models.StandingsRow
	err := r.collection.FindOne(ctx, bson.M{
		"dynasty_id": dynastyID,
		"season":     season,
		"team_id":    teamID,
	}).Decode(&row)
	if err == mongo.ErrNoDocuments {
		return nil, &models.NotFoundError{Entity: "standings row", Key: dynastyID}
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "get team standings", Err: err}
	}
	return &row, nil
}
