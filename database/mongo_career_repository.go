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

type MongoCareerRepository struct {
	retired   *mongo.Collection
	summaries *mongo.Collection
	honors    *mongo.Collection
	logger    *logging.Logger
}

func NewMongoCareerRepository(db *MongoDB) *MongoCareerRepository {
	retired := db.GetCollection("retired_players")
	summaries := db.GetCollection("career_summaries")
	honors := db.GetCollection("season_honors")
	logger := logging.WithPrefix("mongo_career_repo")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for col, keys := range map[*mongo.Collection]bson.D{
		retired:   {{Key: "dynasty_id", Value: 1}, {Key: "player_id", Value: 1}},
		summaries: {{Key: "dynasty_id", Value: 1}, {Key: "player_id", Value: 1}},
		honors:    {{Key: "dynasty_id", Value: 1}, {Key: "season", Value: 1}},
	} {
		indexModel := mongo.IndexModel{
			Keys:    keys,
			Options: options.Index().SetUnique(true),
		}
		if _, err := col.Indexes().CreateOne(ctx, indexModel); err != nil {
			logger.Errorf("Failed to create index on %s: %v", col.Name(), err)
		}
	}

	return &MongoCareerRepository{
		retired:   retired,
		summaries: summaries,
		honors:    honors,
		logger:    logger,
	}
}

func (r *MongoCareerRepository) InsertRetiredPlayer(ctx context.Context, player *models.RetiredPlayer) error {
	if _, err := r.retired.InsertOne(ctx, player); err != nil {
		return &models.PersistenceError{Op: "insert retired player", Err: err}
	}
	return nil
}

func (r *MongoCareerRepository) RetiredPlayers(ctx context.Context, dynastyID string, season int) ([]models.RetiredPlayer, error) {
	filter := bson.M{"dynasty_id": dynastyID}
	if season != 0 {
		filter["season"] = season
	}

	cursor, err := r.retired.Find(ctx, filter)
	if err != nil {
		return nil, &models.PersistenceError{Op: "find retired players", Err: err}
	}
	defer cursor.Close(ctx)

	var players []models.RetiredPlayer
	if err := cursor.All(ctx, &players); err != nil {
		return nil, &models.PersistenceError{Op: "decode retired players", Err: err}
	}
	return players, nil
}

func (r *MongoCareerRepository) SaveCareerSummary(ctx context.Context, summary *models.CareerSummary) error {
	filter := bson.M{
		"dynasty_id": summary.DynastyID,
		"player_id":  summary.PlayerID,
	}
	opts := options.Replace().SetUpsert(true)

	if _, err := r.summaries.ReplaceOne(ctx, filter, summary, opts); err != nil {
		return &models.PersistenceError{Op: "save career summary", Err: err}
	}
	return nil
}

func (r *MongoCareerRepository) GetCareerSummary(ctx context.Context, dynastyID string, playerID int) (*models.CareerSummary, error) {
	var summary models.CareerSummary
	err := r.summaries.FindOne(ctx, bson.M{
		"dynasty_id": dynastyID,
		"player_id":  playerID,
	}).Decode(&summary)
	if err == mongo.ErrNoDocuments {
		return nil, &models.NotFoundError{Entity: "career summary", Key: dynastyID}
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "get career summary", Err: err}
	}
	return &summary, nil
}

func (r *MongoCareerRepository) SaveSeasonHonors(ctx context.Context, honors *models.SeasonHonors) error {
	filter := bson.M{
		"dynasty_id": honors.DynastyID,
		"season":     honors.Season,
	}
	opts := options.Replace().SetUpsert(true)

	if _, err := r.honors.ReplaceOne(ctx, filter, honors, opts); err != nil {
		return &models.PersistenceError{Op: "save season honors", Err: err}
	}
	return nil
}

func (r *MongoCareerRepository) GetSeasonHonors(ctx context.Context, dynastyID string, season int) (*models.SeasonHonors, error) {
	var honors models.SeasonHonors
	err := r.honors.FindOne(ctx, bson.M{
		"dynasty_id": dynastyID,
		"season":     season,
	}).Decode(&honors)
	if err == mongo.ErrNoDocuments {
		return nil, &models.NotFoundError{Entity: "season honors", Key: dynastyID}
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "get season honors", Err: err}
	}
	return &honors, nil
}
