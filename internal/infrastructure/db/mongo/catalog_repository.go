package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/prevencar/inspection-system/internal/core/domain"
)

const (
	collectionServices    = "services"
	collectionIndications = "indications"
)

// ServiceRepository persists the billable service catalog.
type ServiceRepository struct {
	col *mongo.Collection
}

func NewServiceRepository(db *mongo.Database) *ServiceRepository {
	return &ServiceRepository{col: db.Collection(collectionServices)}
}

// Save upserts the catalog entry by id.
func (r *ServiceRepository) Save(ctx context.Context, s *domain.ServiceItem) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": s.ID}, s, opts)
	return err
}

func (r *ServiceRepository) FindByID(ctx context.Context, id string) (*domain.ServiceItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var s domain.ServiceItem
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrServiceNotFound
		}
		return nil, err
	}
	return &s, nil
}

// List returns the whole catalog in display order (by name).
func (r *ServiceRepository) List(ctx context.Context) ([]*domain.ServiceItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.ServiceItem
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ServiceRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrServiceNotFound
	}
	return nil
}

// IndicationRepository persists referral partners.
type IndicationRepository struct {
	col *mongo.Collection
}

func NewIndicationRepository(db *mongo.Database) *IndicationRepository {
	return &IndicationRepository{col: db.Collection(collectionIndications)}
}

// Save upserts the referral partner by id.
func (r *IndicationRepository) Save(ctx context.Context, i *domain.Indication) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": i.ID}, i, opts)
	return err
}

func (r *IndicationRepository) FindByID(ctx context.Context, id string) (*domain.Indication, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var i domain.Indication
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&i)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIndicationNotFound
		}
		return nil, err
	}
	return &i, nil
}

func (r *IndicationRepository) List(ctx context.Context) ([]*domain.Indication, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.Indication
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *IndicationRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrIndicationNotFound
	}
	return nil
}
