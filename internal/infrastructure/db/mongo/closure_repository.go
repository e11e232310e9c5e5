package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/prevencar/inspection-system/internal/core/domain"
)

const (
	collectionClosures    = "closures"
	collectionClosureLogs = "closure_logs"
)

type ClosureRepository struct {
	closures *mongo.Collection
	logs     *mongo.Collection
}

func NewClosureRepository(db *mongo.Database) *ClosureRepository {
	return &ClosureRepository{
		closures: db.Collection(collectionClosures),
		logs:     db.Collection(collectionClosureLogs),
	}
}

// Insert creates the closure document. The month string is the _id, so a
// second insert for the same month fails with a duplicate-key error, which is
// surfaced as domain.ErrClosureExists.
func (r *ClosureRepository) Insert(ctx context.Context, c *domain.Closure) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.closures.InsertOne(ctx, c)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrClosureExists
	}
	return err
}

// Update replaces the whole closure document.
func (r *ClosureRepository) Update(ctx context.Context, c *domain.Closure) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.closures.ReplaceOne(ctx, bson.M{"_id": c.Mes}, c)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrClosureNotFound
	}
	return nil
}

// FindByMes retrieves the closure for a month (YYYY-MM).
func (r *ClosureRepository) FindByMes(ctx context.Context, mes string) (*domain.Closure, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c domain.Closure
	err := r.closures.FindOne(ctx, bson.M{"_id": mes}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClosureNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns every closure, newest month first. The month string sorts
// lexicographically in chronological order.
func (r *ClosureRepository) List(ctx context.Context) ([]*domain.Closure, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	cur, err := r.closures.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.Closure
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AppendLog inserts one closure transition record. Entries are never updated.
func (r *ClosureRepository) AppendLog(ctx context.Context, log *domain.ClosureLog) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.logs.InsertOne(ctx, log)
	return err
}

// ListLogs returns the transition log of one closure in chronological order.
func (r *ClosureRepository) ListLogs(ctx context.Context, closureID string) ([]*domain.ClosureLog, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "performed_at", Value: 1}})
	cur, err := r.logs.Find(ctx, bson.M{"closure_id": closureID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.ClosureLog
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureIndexes creates necessary indexes on the closure log collection.
func (r *ClosureRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "closure_id", Value: 1}, {Key: "performed_at", Value: 1}}},
	}

	_, err := r.logs.Indexes().CreateMany(ctx, indexes)
	return err
}
