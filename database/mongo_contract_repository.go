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

type MongoContractRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoContractRepository(db *MongoDB) *MongoContractRepository {
	collection := db.GetCollection("player_contracts")
	logger := logging.WithPrefix("mongo_contract_repo")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "dynasty_id", Value: 1}, {Key: "contract_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "dynasty_id", Value: 1}, {Key: "player_id", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "dynasty_id", Value: 1}, {Key: "team_id", Value: 1}, {Key: "status", Value: 1}},
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Errorf("Failed to create indexes on player_contracts collection: %v", err)
	}

	return &MongoContractRepository{
		collection: collection,
		logger:     logger,
	}
}

func (r *MongoContractRepository) CreateContract(ctx context.Context, contract *models.Contract) error {
	if _, err := r.collection.InsertOne(ctx, contract); err != nil {
		return &models.PersistenceError{Op: "create contract", Err: err}
	}
	return nil
}

func (r *MongoContractRepository) UpdateContract(ctx context.Context, contract *models.Contract) error {
	filter := bson.M{
		"dynasty_id":  contract.DynastyID,
		"contract_id": contract.ContractID,
	}
	res, err := r.collection.ReplaceOne(ctx, filter, contract)
	if err != nil {
		return &models.PersistenceError{Op: "update contract", Err: err}
	}
	if res.MatchedCount == 0 {
		return &models.NotFoundError{Entity: "contract", Key: contract.ContractID}
	}
	return nil
}

func (r *MongoContractRepository) GetContract(ctx context.Context, dynastyID, contractID string) (*models.Contract, error) {
	var contract models.Contract
	err := r.collection.FindOne(ctx, bson.M{
		"dynasty_id":  dynastyID,
		"contract_id": contractID,
	}).Decode(&contract)
	if err == mongo.ErrNoDocuments {
		return nil, &models.NotFoundError{Entity: "contract", Key: contractID}
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "get contract", Err: err}
	}
	return &contract, nil
}

func (r *MongoContractRepository) ActiveContractByPlayer(ctx context.Context, dynastyID string, playerID int) (*models.Contract, error) {
	var contract models.Contract
	err := r.collection.FindOne(ctx, bson.M{
		"dynasty_id": dynastyID,
		"player_id":  playerID,
		"status":     models.ContractStatusActive,
	}).Decode(&contract)
	if err == mongo.ErrNoDocuments {
		return nil, &models.NotFoundError{Entity: "active contract", Key: dynastyID}
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "get active contract", Err: err}
	}
	return &contract, nil
}

func (r *MongoContractRepository) ActiveContractsByTeam(ctx context.Context, dynastyID string, teamID int) ([]models.Contract, error) {
	filter := bson.M{
		"dynasty_id": dynastyID,
		"team_id":    teamID,
		"status":     models.ContractStatusActive,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, &models.PersistenceError{Op: "find team contracts", Err: err}
	}
	defer cursor.Close(ctx)

	var contracts []models.Contract
	if err := cursor.All(ctx, &contracts); err != nil {
		return nil, &models.PersistenceError{Op: "decode contracts", Err: err}
	}
	return contracts, nil
}
