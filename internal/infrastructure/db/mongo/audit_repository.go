package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/prevencar/inspection-system/internal/core/domain"
)

const collectionFinancialLogs = "financial_logs"

// AuditRepository stores the append-only financial event log.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionFinancialLogs)}
}

// Append inserts one financial event. There is no update or delete path.
func (r *AuditRepository) Append(ctx context.Context, e *domain.FinancialEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, e)
	return err
}

// ListByFiche returns every financial event of one fiche, oldest first.
func (r *AuditRepository) ListByFiche(ctx context.Context, ficheID string) ([]*domain.FinancialEvent, error) {
	return r.list(ctx, bson.M{"fiche_id": ficheID})
}

// ListByMes returns every financial event of one reference month, oldest first.
func (r *AuditRepository) ListByMes(ctx context.Context, mes string) ([]*domain.FinancialEvent, error) {
	return r.list(ctx, bson.M{"mes": mes})
}

func (r *AuditRepository) list(ctx context.Context, filter bson.M) ([]*domain.FinancialEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "when", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.FinancialEvent
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureIndexes creates necessary indexes on the financial log collection.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "fiche_id", Value: 1}, {Key: "when", Value: 1}}},
		{Keys: bson.D{{Key: "mes", Value: 1}, {Key: "when", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
