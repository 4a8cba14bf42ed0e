package database

import (
	"context"
	"time"

	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoCapRepository struct {
	capRecords   *mongo.Collection
	transactions *mongo.Collection
	logger       *logging.Logger
}

func NewMongoCapRepository(db *MongoDB) *MongoCapRepository {
	capRecords := db.GetCollection("team_salary_cap")
	transactions := db.GetCollection("cap_transactions")
	logger := logging.WithPrefix("mongo_cap_repo")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	capIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "dynasty_id", Value: 1},
			{Key: "team_id", Value: 1},
			{Key: "season", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	if _, err := capRecords.Indexes().CreateOne(ctx, capIndex); err != nil {
		logger.Errorf("Failed to create index on team_salary_cap: %v", err)
	}

	txnIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "dynasty_id", Value: 1},
			{Key: "team_id", Value: 1},
			{Key: "season", Value: 1},
			{Key: "date", Value: 1},
		},
	}
	if _, err := transactions.Indexes().CreateOne(ctx, txnIndex); err != nil {
		logger.Errorf("Failed to create index on cap_transactions: %v", err)
	}

	return &MongoCapRepository{
		capRecords:   capRecords,
		transactions: transactions,
		logger:       logger,
	}
}

func (r *MongoCapRepository) SaveCapRecord(ctx context.Context, record *models.SalaryCapRecord) error {
	filter := bson.M{
		"dynasty_id": record.DynastyID,
		"team_id":    record.TeamID,
		"season":     record.Season,
	}
	opts := options.Replace().SetUpsert(true)

	if _, err := r.capRecords.ReplaceOne(ctx, filter, record, opts); err != nil {
		return &models.PersistenceError{Op: "save cap record", Err: err}
	}
	return nil
}

func (r *MongoCapRepository) GetCapRecord(ctx context.Context, dynastyID string, teamID, season int) (*models.SalaryCapRecord, error) {
	var record models.SalaryCapRecord
	err := r.capRecords.FindOne(ctx, bson.M{
		"dynasty_id": dynastyID,
		"team_id":    teamID,
		"season":     season,
	}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, &models.NotFoundError{Entity: "cap record", Key: dynastyID}
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "get cap record", Err: err}
	}
	return &record, nil
}

func (r *MongoCapRepository) CapRecordsBySeason(ctx context.Context, dynastyID string, season int) ([]models.SalaryCapRecord, error) {
	filter := bson.M{"dynasty_id": dynastyID, "season": season}

	sortOptions := options.Find().SetSort(bson.D{{Key: "team_id", Value: 1}})
	cursor, err := r.capRecords.Find(ctx, filter, sortOptions)
	if err != nil {
		return nil, &models.PersistenceError{Op: "find cap records", Err: err}
	}
	defer cursor.Close(ctx)

	var records []models.SalaryCapRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, &models.PersistenceError{Op: "decode cap records", Err: err}
	}
	return records, nil
}

func (r *MongoCapRepository) InsertCapTransaction(ctx context.Context, txn *models.CapTransaction) error {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	if _, err := r.transactions.InsertOne(ctx, txn); err != nil {
		return &models.PersistenceError{Op: "insert cap transaction", Err: err}
	}
	return nil
}

func (r *MongoCapRepository) CapTransactions(ctx context.Context, dynastyID string, teamID, season int) ([]models.CapTransaction, error) {
	filter := bson.M{"dynasty_id": dynastyID, "season": season}
	if teamID != 0 {
		filter["team_id"] = teamID
	}

	sortOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.transactions.Find(ctx, filter, sortOptions)
	if err != nil {
		return nil, &models.PersistenceError{Op: "find cap transactions", Err: err}
	}
	defer cursor.Close(ctx)

	var txns []models.CapTransaction
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, &models.PersistenceError{Op: "decode cap transactions", Err: err}
	}
	return txns, nil
}
