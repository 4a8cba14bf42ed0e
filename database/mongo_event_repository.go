package database

import (
	"context"
	"time"

	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoEventRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoEventRepository(db *MongoDB) *MongoEventRepository {
	collection := db.GetCollection("events")
	logger := logging.WithPrefix("mongo_event_repo")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Duplicate detection runs on the structured id, never the internal
	// record id, so reconstructions cannot double-schedule.
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "dynasty_id", Value: 1}, {Key: "structured_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "dynasty_id", Value: 1}, {Key: "date", Value: 1}, {Key: "priority", Value: 1}, {Key: "insert_order", Value: 1}},
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Errorf("Failed to create indexes on events collection: %v", err)
	}

	return &MongoEventRepository{
		collection: collection,
		logger:     logger,
	}
}

// Insert appends an event. When the dynasty already holds an event with the
// same structured id the duplicate is silently dropped and the prior event
// id returned (the playoff-reconstruction contract).
func (r *MongoEventRepository) Insert(ctx context.Context, event *models.Event) (string, error) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	event.Date = models.DateOnly(event.Date)
	if event.Priority == 0 {
		event.Priority = event.Kind.Priority()
	}
	if event.InsertOrder == 0 {
		event.InsertOrder = time.Now().UnixNano()
	}
	if event.Status == "" {
		event.Status = models.EventStatusScheduled
	}

	existing, err := r.GetByStructuredID(ctx, event.DynastyID, event.StructuredID)
	if err == nil {
		r.logger.Debugf("Duplicate event %s for dynasty %s, keeping %s",
			event.StructuredID, event.DynastyID, existing.EventID)
		return existing.EventID, nil
	}
	if !models.IsNotFound(err) {
		return "", err
	}

	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Lost a race with a concurrent insert of the same structured id.
			if existing, lookupErr := r.GetByStructuredID(ctx, event.DynastyID, event.StructuredID); lookupErr == nil {
				return existing.EventID, nil
			}
		}
		return "", &models.PersistenceError{Op: "insert event", Err: err}
	}
	return event.EventID, nil
}

func (r *MongoEventRepository) GetByStructuredID(ctx context.Context, dynastyID, structuredID string) (*models.Event, error) {
	var event models.Event
	err := r.collection.FindOne(ctx, bson.M{
		"dynasty_id":    dynastyID,
		"structured_id": structuredID,
	}).Decode(&event)
	if err == mongo.ErrNoDocuments {
		return nil, &models.NotFoundError{Entity: "event", Key: structuredID}
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "get event", Err: err}
	}
	return &event, nil
}

func (r *MongoEventRepository) EventsForDate(ctx context.Context, dynastyID string, date time.Time) ([]*models.Event, error) {
	filter := bson.M{
		"dynasty_id": dynastyID,
		"date":       models.DateOnly(date),
	}
	return r.findOrdered(ctx, filter)
}

func (r *MongoEventRepository) EventsForDateRange(ctx context.Context, dynastyID string, from, to time.Time) ([]*models.Event, error) {
	filter := bson.M{
		"dynasty_id": dynastyID,
		"date": bson.M{
			"$gte": models.DateOnly(from),
			"$lte": models.DateOnly(to),
		},
	}
	return r.findOrdered(ctx, filter)
}

func (r *MongoEventRepository) EventsByStructuredPrefix(ctx context.Context, dynastyID, prefix string) ([]*models.Event, error) {
	filter := bson.M{
		"dynasty_id":    dynastyID,
		"structured_id": bson.M{"$regex": primitive.Regex{Pattern: "^" + prefix}},
	}
	return r.findOrdered(ctx, filter)
}

func (r *MongoEventRepository) CountByStructuredPrefix(ctx context.Context, dynastyID, prefix string, status models.EventStatus) (int, error) {
	filter := bson.M{
		"dynasty_id":    dynastyID,
		"structured_id": bson.M{"$regex": primitive.Regex{Pattern: "^" + prefix}},
	}
	if status != "" {
		filter["status"] = status
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, &models.PersistenceError{Op: "count events", Err: err}
	}
	return int(count), nil
}

// MarkExecuted finalizes an event. Executed events are immutable: a second
// call for the same event is rejected by the filter and surfaces as an
// error.
func (r *MongoEventRepository) MarkExecuted(ctx context.Context, eventID string, result map[string]interface{}, status models.EventStatus) error {
	filter := bson.M{
		"event_id": eventID,
		"status":   bson.M{"$ne": models.EventStatusExecuted},
	}
	update := bson.M{"$set": bson.M{
		"status":      status,
		"result_blob": result,
	}}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return &models.PersistenceError{Op: "mark event executed", Err: err}
	}
	if res.MatchedCount == 0 {
		return &models.NotFoundError{Entity: "schedulable event", Key: eventID}
	}
	return nil
}

func (r *MongoEventRepository) findOrdered(ctx context.Context, filter bson.M) ([]*models.Event, error) {
	sortOptions := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "priority", Value: 1},
		{Key: "insert_order", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, sortOptions)
	if err != nil {
		return nil, &models.PersistenceError{Op: "find events", Err: err}
	}
	defer cursor.Close(ctx)

	var events []*models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, &models.PersistenceError{Op: "decode events", Err: err}
	}
	return events, nil
}
