package bookingRepo

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

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a new instance of BookingRepository using MongoDB.
func NewMongoBookingRepo() BookingRepository {
	coll := database.MongoClient.Database(database.DatabaseName).Collection("bookings")
	repo := &MongoBookingRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "customer_id", Value: 1}}},
		{Keys: bson.D{{Key: "settler_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new booking document.
func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctxWithTimeout, booking); err != nil {
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its ID.
func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := r.coll.FindOne(ctxWithTimeout, bson.M{"id": id}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return &booking, nil
}

func (r *MongoBookingRepo) list(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctxWithTimeout, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var bookings []models.Booking
	if err := cursor.All(ctxWithTimeout, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

// ListByCustomer retrieves all bookings created by the given customer.
func (r *MongoBookingRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	return r.list(ctx, bson.M{"customer_id": customerID})
}

// ListBySettler retrieves all bookings where the given settler is selected
// or has an outstanding bid.
func (r *MongoBookingRepo) ListBySettler(ctx context.Context, settlerID string) ([]models.Booking, error) {
	return r.list(ctx, bson.M{"$or": []bson.M{
		{"settler_id": settlerID},
		{"acceptors.settler_id": settlerID},
	}})
}

// guardFailure inspects a booking after a conditional write matched nothing,
// so the caller gets a precise error instead of a silent no-op.
func (r *MongoBookingRepo) guardFailure(ctx context.Context, id string, expected models.BookingStatus) error {
	booking, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if booking.Status != expected {
		return fmt.Errorf("expected status %s, found %s: %w", expected, booking.Status, ErrStaleStatus)
	}
	return nil
}

// AppendAcceptor records a settler's bid while the booking is broadcasting.
func (r *MongoBookingRepo) AppendAcceptor(ctx context.Context, id string, acc models.Acceptor) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":                   id,
		"status":               models.StatusBroadcasting,
		"acceptors.settler_id": bson.M{"$ne": acc.SettlerID},
	}
	update := bson.M{
		"$push": bson.M{"acceptors": acc},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error appending acceptor to booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		if err := r.guardFailure(ctx, id, models.StatusBroadcasting); err != nil {
			return err
		}
		return ErrBidExists
	}
	return nil
}

// CommitSelection writes the selected settler, the service start code and
// the status advance in a single update.
func (r *MongoBookingRepo) CommitSelection(ctx context.Context, id string, sel models.SettlerSelection) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":         id,
		"status":     models.StatusBroadcasting,
		"settler_id": bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{
		"settler_id":         sel.SettlerID,
		"settler_service_id": sel.SettlerServiceID,
		"settler_first_name": sel.FirstName,
		"settler_last_name":  sel.LastName,
		"service_start_code": sel.ServiceStartCode,
		"status":             models.StatusSettlerSelected,
		"updated_at":         time.Now().UTC(),
	}}
	res, err := r.coll.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error committing settler selection for booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		booking, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return getErr
		}
		if booking.HasSettler() {
			return ErrAlreadySelected
		}
		return fmt.Errorf("expected status %s, found %s: %w",
			models.StatusBroadcasting, booking.Status, ErrStaleStatus)
	}
	return nil
}

// UpdateStatus moves status from -> to, conditioned on from.
func (r *MongoBookingRepo) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}}
	res, err := r.coll.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error updating booking %s status: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return r.guardFailure(ctx, id, from)
	}
	return nil
}

// ApplyQuoteProposal writes the new_* revision fields in one update.
func (r *MongoBookingRepo) ApplyQuoteProposal(ctx context.Context, id string, from models.BookingStatus, prop models.QuoteProposal) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{
		"status":     models.StatusQuoteUpdatePending,
		"updated_at": time.Now().UTC(),
	}
	if prop.Description != "" {
		set["new_manual_quote_description"] = prop.Description
	}
	if prop.Price != nil {
		set["new_manual_quote_price"] = *prop.Price
	}
	if len(prop.Addons) > 0 {
		set["new_addons"] = prop.Addons
	}
	if prop.Total != nil {
		set["new_total"] = *prop.Total
	}

	filter := bson.M{"id": id, "status": from}
	res, err := r.coll.UpdateOne(ctxWithTimeout, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("error proposing quote update for booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return r.guardFailure(ctx, id, from)
	}
	return nil
}

// ResolveQuoteUpdate resolves a pending revision with a single aggregation
// pipeline update, so the copy-and-clear is atomic on the document.
func (r *MongoBookingRepo) ResolveQuoteUpdate(ctx context.Context, id string, accept bool) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	newFields := []string{
		"new_manual_quote_description",
		"new_manual_quote_price",
		"new_addons",
		"new_total",
	}

	var update mongo.Pipeline
	if accept {
		update = mongo.Pipeline{
			{{Key: "$set", Value: bson.M{
				"manual_quote_description": bson.M{"$ifNull": bson.A{"$new_manual_quote_description", "$manual_quote_description"}},
				"manual_quote_price":       bson.M{"$ifNull": bson.A{"$new_manual_quote_price", "$manual_quote_price"}},
				// A freshly accepted manual quote line starts completed, so
				// later derivations count it and disputes can toggle it off.
				"is_manual_quote_completed": bson.M{"$cond": bson.A{
					bson.M{"$gt": bson.A{"$new_manual_quote_price", nil}},
					true,
					"$is_manual_quote_completed",
				}},
				"addons":     bson.M{"$ifNull": bson.A{"$new_addons", "$addons"}},
				"total":      bson.M{"$ifNull": bson.A{"$new_total", "$total"}},
				"status":     models.StatusActiveService,
				"updated_at": time.Now().UTC(),
			}}},
			{{Key: "$unset", Value: newFields}},
		}
	} else {
		update = mongo.Pipeline{
			{{Key: "$set", Value: bson.M{
				"status":     models.StatusActiveService,
				"updated_at": time.Now().UTC(),
			}}},
			{{Key: "$unset", Value: newFields}},
		}
	}

	filter := bson.M{"id": id, "status": models.StatusQuoteUpdatePending}
	res, err := r.coll.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error resolving quote update for booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return r.guardFailure(ctx, id, models.StatusQuoteUpdatePending)
	}
	return nil
}

// SetProblemReport files dispute evidence during cooldown, write-once.
func (r *MongoBookingRepo) SetProblemReport(ctx context.Context, id string, remark string, imageURLs []string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":                    id,
		"status":                models.StatusCooldown,
		"problem_report_remark": bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{
		"problem_report_remark":     remark,
		"problem_report_image_urls": imageURLs,
		"updated_at":                time.Now().UTC(),
	}}
	res, err := r.coll.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error filing problem report for booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		booking, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return getErr
		}
		if booking.HasProblemReport() {
			return ErrReportExists
		}
		return fmt.Errorf("expected status %s, found %s: %w",
			models.StatusCooldown, booking.Status, ErrStaleStatus)
	}
	return nil
}

// ClearProblemReport removes the filed evidence fields entirely.
func (r *MongoBookingRepo) ClearProblemReport(ctx context.Context, id string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.StatusCooldown}
	update := bson.M{
		"$unset": bson.M{
			"problem_report_remark":     "",
			"problem_report_image_urls": "",
		},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error clearing problem report for booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return r.guardFailure(ctx, id, models.StatusCooldown)
	}
	return nil
}

// FlagIncompletion writes the disputed completion state and proposed total.
func (r *MongoBookingRepo) FlagIncompletion(ctx context.Context, id string, addons []models.AddonGroup, manualQuoteCompleted bool, newTotal float64) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.StatusCooldown}
	update := bson.M{"$set": bson.M{
		"addons":                    addons,
		"is_manual_quote_completed": manualQuoteCompleted,
		"new_total":                 newTotal,
		"status":                    models.StatusIncompletionFlagged,
		"updated_at":                time.Now().UTC(),
	}}
	res, err := r.coll.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error flagging incompletion for booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return r.guardFailure(ctx, id, models.StatusCooldown)
	}
	return nil
}

// SetAdvisoryFlags updates the banner flags; nil pointers are left untouched.
func (r *MongoBookingRepo) SetAdvisoryFlags(ctx context.Context, id string, visitAndFix, updateEvidence *bool) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if visitAndFix != nil {
		set["is_doing_visit_and_fix"] = *visitAndFix
	}
	if updateEvidence != nil {
		set["is_doing_update_evidence"] = *updateEvidence
	}

	res, err := r.coll.UpdateOne(ctxWithTimeout, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("error updating advisory flags for booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Watch opens a change stream on the booking and streams the full document
// on every update until ctx is cancelled.
func (r *MongoBookingRepo) Watch(ctx context.Context, id string) (<-chan models.Booking, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"fullDocument.id": id}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := r.coll.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, fmt.Errorf("error watching booking %s: %w", id, err)
	}

	ch := make(chan models.Booking)
	go func() {
		defer close(ch)
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			var event struct {
				FullDocument models.Booking `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				continue
			}
			select {
			case ch <- event.FullDocument:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
