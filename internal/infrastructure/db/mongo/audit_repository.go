package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wasp-platform/user-service/internal/core/ports"
)

const auditCollection = "audit_events"

// MongoAuditRepository persists identity audit events. Events are append-only
// and never read back by this service.
type MongoAuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *MongoAuditRepository {
	return &MongoAuditRepository{coll: db.Collection(auditCollection)}
}

type auditDoc struct {
	Action  string    `bson:"action"`
	UserID  string    `bson:"user_id"`
	ActorID string    `bson:"actor_id"`
	At      time.Time `bson:"at"`
}

func (r *MongoAuditRepository) Insert(ctx context.Context, event ports.AuditEvent) error {
	doc := auditDoc{
		Action:  event.Action,
		UserID:  event.UserID,
		ActorID: event.ActorID,
		At:      event.At,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
