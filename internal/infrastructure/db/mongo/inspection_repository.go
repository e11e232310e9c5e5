package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/prevencar/inspection-system/internal/core/domain"
	"github.com/prevencar/inspection-system/internal/core/ports"
)

const collectionInspections = "inspections"

type InspectionRepository struct {
	col *mongo.Collection
}

func NewInspectionRepository(db *mongo.Database) *InspectionRepository {
	return &InspectionRepository{col: db.Collection(collectionInspections)}
}

// Create inserts a new inspection document.
func (r *InspectionRepository) Create(ctx context.Context, i *domain.Inspection) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, i)
	return err
}

// Update replaces the whole inspection document (last-write-wins).
func (r *InspectionRepository) Update(ctx context.Context, i *domain.Inspection) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": i.ID}, i)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrInspectionNotFound
	}
	return nil
}

// FindByID retrieves one inspection by its id.
func (r *InspectionRepository) FindByID(ctx context.Context, id string) (*domain.Inspection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var i domain.Inspection
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&i)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInspectionNotFound
		}
		return nil, err
	}
	return &i, nil
}

// Delete removes one inspection.
func (r *InspectionRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrInspectionNotFound
	}
	return nil
}

// List returns a page of inspections matching filter plus the total count.
// Results are ordered newest intake date first.
func (r *InspectionRepository) List(ctx context.Context, filter ports.ListInspectionsFilter) ([]*domain.Inspection, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := buildListQuery(filter)

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := int64(filter.Limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}}).
		SetSkip(int64(page-1) * limit).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []*domain.Inspection
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func buildListQuery(filter ports.ListInspectionsFilter) bson.M {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.PaymentStatus != "" {
		query["payment_status"] = filter.PaymentStatus
	}
	if filter.IndicationID != "" {
		query["indication_id"] = filter.IndicationID
	}
	if filter.ServiceName != "" {
		query["selected_services.name"] = filter.ServiceName
	}
	if filter.Mes != "" {
		query["mes_referencia"] = filter.Mes
	}
	if filter.DateFrom != "" || filter.DateTo != "" {
		dateRange := bson.M{}
		if filter.DateFrom != "" {
			dateRange["$gte"] = filter.DateFrom
		}
		if filter.DateTo != "" {
			dateRange["$lte"] = filter.DateTo
		}
		query["date"] = dateRange
	}
	if filter.MinValue > 0 || filter.MaxValue > 0 {
		valueRange := bson.M{}
		if filter.MinValue > 0 {
			valueRange["$gte"] = filter.MinValue
		}
		if filter.MaxValue > 0 {
			valueRange["$lte"] = filter.MaxValue
		}
		query["total_value"] = valueRange
	}
	if filter.Search != "" {
		re := primitive.Regex{Pattern: regexEscape(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"license_plate": re},
			bson.M{"vehicle_model": re},
			bson.M{"client.name": re},
		}
	}
	return query
}

// regexEscape quotes regex metacharacters so user input is matched literally.
func regexEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '.', '+', '*', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|', '\\':
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}

// FindByMes returns every inspection of the reference month, in intake order.
func (r *InspectionRepository) FindByMes(ctx context.Context, mes string) ([]*domain.Inspection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"mes_referencia": mes}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.Inspection
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureIndexes creates necessary indexes on the inspections collection.
func (r *InspectionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "mes_referencia", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "payment_status", Value: 1}}},
		{Keys: bson.D{{Key: "indication_id", Value: 1}}},
		{Keys: bson.D{{Key: "license_plate", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
