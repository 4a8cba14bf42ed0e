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

type MongoPlayerRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoPlayerRepository(db *MongoDB) *MongoPlayerRepository {
	collection := db.GetCollection("players")
	logger := logging.WithPrefix("mongo_player_repo")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "dynasty_id", Value: 1}, {Key: "player_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "dynasty_id", Value: 1}, {Key: "team_id", Value: 1}, {Key: "status", Value: 1}},
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Errorf("Failed to create indexes on players collection: %v", err)
	}

	return &MongoPlayerRepository{
		collection: collection,
		logger:     logger,
	}
}

func (r *MongoPlayerRepository) CreatePlayers(ctx context.Context, players []models.Player) error {
	if len(players) == 0 {
		return nil
	}
	docs := make([]interface{}, len(players))
	for i := range players {
		docs[i] = players[i]
	}
	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return &models.PersistenceError{Op: "create players", Err: err}
	}
	return nil
}

func (r *MongoPlayerRepository) GetPlayer(ctx context.Context, dynastyID string, playerID int) (*models.Player, error) {
	var player models.Player
	err := r.collection.FindOne(ctx, bson.M{
		"dynasty_id": dynastyID,
		"player_id":  playerID,
	}).Decode(&player)
	if err == mongo.ErrNoDocuments {
		return nil, &models.NotFoundError{Entity: "player", Key: dynastyID}
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "get player", Err: err}
	}
	return &player, nil
}

func (r *MongoPlayerRepository) UpdatePlayer(ctx context.Context, player *models.Player) error {
	filter := bson.M{
		"dynasty_id": player.DynastyID,
		"player_id":  player.PlayerID,
	}
	res, err := r.collection.ReplaceOne(ctx, filter, player)
	if err != nil {
		return &models.PersistenceError{Op: "update player", Err: err}
	}
	if res.MatchedCount == 0 {
		return &models.NotFoundError{Entity: "player", Key: player.DynastyID}
	}
	return nil
}

// TeamRoster is a query, never a stored field: the player collection is the
// single source of roster membership.
func (r *MongoPlayerRepository) TeamRoster(ctx context.Context, dynastyID string, teamID int) ([]models.Player, error) {
	filter := bson.M{
		"dynasty_id": dynastyID,
		"team_id":    teamID,
		"status":     models.PlayerStatusActive,
	}

	sortOptions := options.Find().SetSort(bson.D{
		{Key: "overall", Value: -1},
		{Key: "player_id", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, filter, sortOptions)
	if err != nil {
		return nil, &models.PersistenceError{Op: "find roster", Err: err}
	}
	defer cursor.Close(ctx)

	var players []models.Player
	if err := cursor.All(ctx, &players); err != nil {
		return nil, &models.PersistenceError{Op: "decode roster", Err: err}
	}
	return players, nil
}

func (r *MongoPlayerRepository) PlayersByStatus(ctx context.Context, dynastyID string, status models.PlayerStatus) ([]models.Player, error) {
	filter := bson.M{"dynasty_id": dynastyID, "status": status}

	sortOptions := options.Find().SetSort(bson.D{{Key: "overall", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, sortOptions)
	if err != nil {
		return nil, &models.PersistenceError{Op: "find players by status", Err: err}
	}
	defer cursor.Close(ctx)

	var players []models.Player
	if err := cursor.All(ctx, &players); err != nil {
		return nil, &models.PersistenceError{Op: "decode players", Err: err}
	}
	return players, nil
}

func (r *MongoPlayerRepository) MaxPlayerID(ctx context.Context, dynastyID string) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "player_id", Value: -1}})

	var player models.Player
	err := r.collection.FindOne(ctx, bson.M{"dynasty_id": dynastyID}, opts).Decode(&player)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, &models.PersistenceError{Op: "max player id", Err: err}
	}
	return player.PlayerID, nil
}
