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

type MongoGameRepository struct {
	games       *mongo.Collection
	gameStats   *mongo.Collection
	seasonStats *mongo.Collection
	logger      *logging.Logger
}

func NewMongoGameRepository(db *MongoDB) *MongoGameRepository {
	games := db.GetCollection("games")
	gameStats := db.GetCollection("player_game_stats")
	seasonStats := db.GetCollection("player_season_stats")
	logger := logging.WithPrefix("mongo_game_repo")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	gameIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "dynasty_id", Value: 1}, {Key: "game_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "dynasty_id", Value: 1}, {Key: "season", Value: 1}, {Key: "season_type", Value: 1}},
		},
	}
	if _, err := games.Indexes().CreateMany(ctx, gameIndexes); err != nil {
		logger.Errorf("Failed to create indexes on games collection: %v", err)
	}

	statIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "dynasty_id", Value: 1}, {Key: "game_id", Value: 1}, {Key: "player_id", Value: 1}},
	}
	if _, err := gameStats.Indexes().CreateOne(ctx, statIndex); err != nil {
		logger.Errorf("Failed to create index on player_game_stats: %v", err)
	}

	seasonIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "dynasty_id", Value: 1}, {Key: "season", Value: 1},
			{Key: "season_type", Value: 1}, {Key: "player_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	if _, err := seasonStats.Indexes().CreateOne(ctx, seasonIndex); err != nil {
		logger.Errorf("Failed to create index on player_season_stats: %v", err)
	}

	return &MongoGameRepository{
		games:       games,
		gameStats:   gameStats,
		seasonStats: seasonStats,
		logger:      logger,
	}
}

func (r *MongoGameRepository) InsertGame(ctx context.Context, game *models.GameRecord) error {
	game.Date = models.DateOnly(game.Date)
	if _, err := r.games.InsertOne(ctx, game); err != nil {
		return &models.PersistenceError{Op: "insert game", Err: err}
	}
	return nil
}

func (r *MongoGameRepository) GetGame(ctx context.Context, dynastyID, gameID string) (*models.GameRecord, error) {
	var game models.GameRecord
	err := r.games.FindOne(ctx, bson.M{"dynasty_id": dynastyID, "game_id": gameID}).Decode(&game)
	if err == mongo.ErrNoDocuments {
		return nil, &models.NotFoundError{Entity: "game", Key: gameID}
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "get game", Err: err}
	}
	return &game, nil
}

func (r *MongoGameRepository) GamesBySeason(ctx context.Context, dynastyID string, season int, seasonType models.SeasonType) ([]models.GameRecord, error) {
	filter := bson.M{"dynasty_id": dynastyID, "season": season}
	if seasonType != "" {
		filter["season_type"] = seasonType
	}

	sortOptions := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "game_id", Value: 1},
	})

	cursor, err := r.games.Find(ctx, filter, sortOptions)
	if err != nil {
		return nil, &models.PersistenceError{Op: "find games", Err: err}
	}
	defer cursor.Close(ctx)

	var games []models.GameRecord
	if err := cursor.All(ctx, &games); err != nil {
		return nil, &models.PersistenceError{Op: "decode games", Err: err}
	}
	return games, nil
}

func (r *MongoGameRepository) InsertPlayerGameStats(ctx context.Context, stats []models.PlayerGameStats) error {
	if len(stats) == 0 {
		return nil
	}
	docs := make([]interface{}, len(stats))
	for i := range stats {
		docs[i] = stats[i]
	}
	if _, err := r.gameStats.InsertMany(ctx, docs); err != nil {
		return &models.PersistenceError{Op: "insert player game stats", Err: err}
	}
	return nil
}

// UpsertSeasonStats accumulates a game line into the player's season
// aggregate row with $inc so repeated upserts never clobber earlier totals.
func (r *MongoGameRepository) UpsertSeasonStats(ctx context.Context, dynastyID string, season int, seasonType models.SeasonType, playerID, teamID int, delta models.StatLine) error {
	filter := bson.M{
		"dynasty_id":  dynastyID,
		"season":      season,
		"season_type": seasonType,
		"player_id":   playerID,
	}
	update := bson.M{
		"$set": bson.M{"team_id": teamID},
		"$inc": bson.M{
			"games_played":           1,
			"line.pass_attempts":     delta.PassAttempts,
			"line.pass_completions":  delta.PassCompletions,
			"line.pass_yards":        delta.PassYards,
			"line.pass_tds":          delta.PassTDs,
			"line.interceptions":     delta.Interceptions,
			"line.rush_attempts":     delta.RushAttempts,
			"line.rush_yards":        delta.RushYards,
			"line.rush_tds":          delta.RushTDs,
			"line.receptions":        delta.Receptions,
			"line.receiving_yards":   delta.ReceivingYards,
			"line.receiving_tds":     delta.ReceivingTDs,
			"line.tackles":           delta.Tackles,
			"line.sacks":             delta.Sacks,
			"line.def_interceptions": delta.DefInterceptions,
			"line.field_goals_made":  delta.FieldGoalsMade,
			"line.field_goals_att":   delta.FieldGoalsAtt,
			"line.extra_points_made": delta.ExtraPointsMade,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.seasonStats.UpdateOne(ctx, filter, update, opts); err != nil {
		return &models.PersistenceError{Op: "upsert season stats", Err: err}
	}
	return nil
}

func (r *MongoGameRepository) SeasonStats(ctx context.Context, dynastyID string, season int, seasonType models.SeasonType) ([]models.PlayerSeasonStats, error) {
	filter := bson.M{"dynasty_id": dynastyID, "season": season, "season_type": seasonType}

	cursor, err := r.seasonStats.Find(ctx, filter)
	if err != nil {
		return nil, &models.PersistenceError{Op: "find season stats", Err: err}
	}
	defer cursor.Close(ctx)

	var stats []models.PlayerSeasonStats
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, &models.PersistenceError{Op: "decode season stats", Err: err}
	}
	return stats, nil
}

func (r *MongoGameRepository) PlayerCareerStats(ctx context.Context, dynastyID string, playerID int) ([]models.PlayerSeasonStats, error) {
	filter := bson.M{"dynasty_id": dynastyID, "player_id": playerID}

	sortOptions := options.Find().SetSort(bson.D{{Key: "season", Value: 1}})
	cursor, err := r.seasonStats.Find(ctx, filter, sortOptions)
	if err != nil {
		return nil, &models.PersistenceError{Op: "find career stats", Err: err}
	}
	defer cursor.Close(ctx)

	var stats []models.PlayerSeasonStats
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, &models.PersistenceError{Op: "decode career stats", Err: err}
	}
	return stats, nil
}
