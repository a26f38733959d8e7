package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
)

const (
	auditCollection = "portal_audit"
	maxAuditLimit   = 500
)

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	col *mongo.Collection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(auditCollection)}
}

type auditDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Action     string             `bson:"action"`
	Sheet      string             `bson:"sheet"`
	Subject    string             `bson:"subject"`
	Actor      string             `bson:"actor,omitempty"`
	Detail     string             `bson:"detail,omitempty"`
	Timestamp  time.Time          `bson:"timestamp"`
	RecordedAt time.Time          `bson:"recorded_at"`
}

// InsertEvent persists one audit event and sets its ID.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AuditEvent) error {
	doc := auditDoc{
		Action:     string(event.Action),
		Sheet:      event.Sheet,
		Subject:    event.Subject,
		Actor:      event.Actor,
		Detail:     event.Detail,
		Timestamp:  event.Timestamp.UTC(),
		RecordedAt: time.Now().UTC(),
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		event.ID = oid.Hex()
	}
	return nil
}

// ListRecent returns at most limit events, newest first.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	if limit <= 0 || limit > maxAuditLimit {
		limit = maxAuditLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []auditDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode audit events: %w", err)
	}

	out := make([]domain.AuditEvent, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.AuditEvent{
			ID:        d.ID.Hex(),
			Action:    domain.AuditAction(d.Action),
			Sheet:     d.Sheet,
			Subject:   d.Subject,
			Actor:     d.Actor,
			Detail:    d.Detail,
			Timestamp: d.Timestamp,
		})
	}
	return out, nil
}

// EnsureIndexes creates the indexes used by ListRecent and subject lookups.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "subject", Value: 1}, {Key: "action", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

var _ ports.AuditRepository = (*AuditRepository)(nil)
