package settlerServiceRepo

import (
	"context"
	"fmt"
	"time"

	"settisfy/database"
	"settisfy/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSettlerServiceRepo implements SettlerServiceRepository using MongoDB.
type MongoSettlerServiceRepo struct {
	coll *mongo.Collection
}

// NewMongoSettlerServiceRepo creates a new SettlerServiceRepository using MongoDB.
func NewMongoSettlerServiceRepo() SettlerServiceRepository {
	coll := database.MongoClient.Database(database.DatabaseName).Collection("settler_services")
	repo := &MongoSettlerServiceRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoSettlerServiceRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "settler_id", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetByID retrieves a settler service profile by its unique ID.
func (r *MongoSettlerServiceRepo) GetByID(ctx context.Context, id string) (*models.SettlerService, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var svc models.SettlerService
	err := r.coll.FindOne(ctxWithTimeout, bson.M{"id": id}).Decode(&svc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching settler service %s: %w", id, err)
	}
	return &svc, nil
}

// IncrementJobsCount credits one completed job, exactly once per booking.
// The credited bookings list doubles as the idempotency guard: a document is
// only matched while the booking has not been credited yet.
func (r *MongoSettlerServiceRepo) IncrementJobsCount(ctx context.Context, id, bookingID string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "credited_bookings": bson.M{"$ne": bookingID}}
	update := bson.M{
		"$inc":  bson.M{"jobs_count": 1},
		"$push": bson.M{"credited_bookings": bookingID},
	}
	res, err := r.coll.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error incrementing jobs count for service %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		// Either the service is missing or the booking was already credited.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
	}
	return nil
}

// AddRating folds one review rating into the running aggregates.
func (r *MongoSettlerServiceRepo) AddRating(ctx context.Context, id string, rating int) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$inc": bson.M{"ratings_sum": rating, "ratings_count": 1}}
	res, err := r.coll.UpdateOne(ctxWithTimeout, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("error adding rating for service %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
