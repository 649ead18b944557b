// Package mongo implements the outbox repository on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/quiverlabs/platform-commons/pkg/outbox"
	"github.com/quiverlabs/platform-commons/pkg/persistence/mongo"
)

const collectionName = "outbox_messages"

type messageDoc struct {
	ID           string         `bson:"_id"`
	Type         string         `bson:"type"`
	Payload      []byte         `bson:"payload"`
	Metadata     map[string]any `bson:"metadata,omitempty"`
	Status       string         `bson:"status"`
	Attempts     int            `bson:"attempts"`
	CreatedAt    time.Time      `bson:"createdAt"`
	ProcessAfter *time.Time     `bson:"processAfter,omitempty"`
	Priority     string         `bson:"priority"`
	LastError    string         `bson:"lastError,omitempty"`
}

func toDoc(msg *outbox.Message) messageDoc {
	return messageDoc{
		ID:           msg.ID,
		Type:         msg.Type,
		Payload:      msg.Payload,
		Metadata:     msg.Metadata,
		Status:       msg.Status.String(),
		Attempts:     msg.Attempts,
		CreatedAt:    msg.CreatedAt.UTC(),
		ProcessAfter: msg.ProcessAfter,
		Priority:     msg.Priority.String(),
		LastError:    msg.LastError,
	}
}

func fromDoc(doc messageDoc) *outbox.Message {
	return &outbox.Message{
		ID:           doc.ID,
		Type:         doc.Type,
		Payload:      doc.Payload,
		Metadata:     doc.Metadata,
		Status:       outbox.Status(doc.Status),
		Attempts:     doc.Attempts,
		CreatedAt:    doc.CreatedAt,
		ProcessAfter: doc.ProcessAfter,
		Priority:     outbox.Priority(doc.Priority),
		LastError:    doc.LastError,
	}
}

type repository struct {
	coll mongo.Collection
}

// NewRepository builds an outbox.Repository backed by the outbox_messages
// collection.
func NewRepository(m mongo.Mongo) outbox.Repository {
	return &repository{coll: m.GetCollection(collectionName)}
}

func (r *repository) Save(ctx context.Context, msg *outbox.Message) (string, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	if _, err := r.coll.InsertOne(ctx, toDoc(msg)); err != nil {
		return "", fmt.Errorf("failed to insert outbox message: %w", err)
	}
	return msg.ID, nil
}

func (r *repository) SaveBatch(ctx context.Context, msgs []*outbox.Message) ([]string, error) {
	if len(msgs) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	docs := lo.Map(msgs, func(msg *outbox.Message, _ int) messageDoc {
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = now
		}
		return toDoc(msg)
	})

	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return nil, fmt.Errorf("failed to insert outbox messages: %w", err)
	}
	return lo.Map(msgs, func(msg *outbox.Message, _ int) string { return msg.ID }), nil
}

// GetUnprocessed queries one priority tier at a time so any caller-supplied
// tier order is honored without encoding rank into the documents. Within a
// tier messages come back oldest first.
func (r *repository) GetUnprocessed(ctx context.Context, limit int, priorityOrder []outbox.Priority) ([]*outbox.Message, error) {
	if len(priorityOrder) == 0 {
		priorityOrder = outbox.DefaultPriorityOrder()
	}

	now := time.Now().UTC()
	result := make([]*outbox.Message, 0, limit)

	for _, priority := range priorityOrder {
		remaining := limit - len(result)
		if remaining <= 0 {
			break
		}

		filter := bson.M{
			"status":   outbox.StatusPending.String(),
			"priority": priority.String(),
			"$or": []bson.M{
				{"processAfter": bson.M{"$exists": false}},
				{"processAfter": nil},
				{"processAfter": bson.M{"$lte": now}},
			},
		}
		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: 1}}).
			SetLimit(int64(remaining))

		cursor, err := r.coll.Find(ctx, filter, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch unprocessed messages: %w", err)
		}

		var docs []messageDoc
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, fmt.Errorf("failed to decode unprocessed messages: %w", err)
		}
		for _, doc := range docs {
			result = append(result, fromDoc(doc))
		}
	}
	return result, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*outbox.Message, error) {
	var doc messageDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("message %s: %w", id, outbox.ErrMessageNotFound)
		}
		return nil, fmt.Errorf("failed to fetch outbox message: %w", err)
	}
	return fromDoc(doc), nil
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status outbox.Status, cause error) error {
	set := bson.M{"status": status.String()}
	if status == outbox.StatusFailed && cause != nil {
		set["lastError"] = cause.Error()
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update outbox message status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("message %s: %w", id, outbox.ErrMessageNotFound)
	}
	return nil
}

func (r *repository) UpdateStatusBatch(ctx context.Context, ids []string, status outbox.Status) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"status": status.String()}})
	if err != nil {
		return fmt.Errorf("failed to update outbox message statuses: %w", err)
	}
	return nil
}

func (r *repository) IncrementAttempt(ctx context.Context, id string) (int, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc messageDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"attempts": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return 0, fmt.Errorf("message %s: %w", id, outbox.ErrMessageNotFound)
		}
		return 0, fmt.Errorf("failed to increment attempt counter: %w", err)
	}
	return doc.Attempts, nil
}

func (r *repository) GetFailed(ctx context.Context, limit int, maxAttempts int) ([]*outbox.Message, error) {
	filter := bson.M{
		"status":   outbox.StatusFailed.String(),
		"attempts": bson.M{"$lt": maxAttempts},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch failed messages: %w", err)
	}

	var docs []messageDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode failed messages: %w", err)
	}
	return lo.Map(docs, func(doc messageDoc, _ int) *outbox.Message { return fromDoc(doc) }), nil
}

func (r *repository) Requeue(ctx context.Context, id string, processAfter time.Time) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": outbox.StatusFailed.String()},
		bson.M{"$set": bson.M{
			"status":       outbox.StatusPending.String(),
			"processAfter": processAfter.UTC(),
		}})
	if err != nil {
		return fmt.Errorf("failed to requeue outbox message: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("failed message %s: %w", id, outbox.ErrMessageNotFound)
	}
	return nil
}

func (r *repository) DeleteByStatusAndAge(ctx context.Context, olderThan time.Time, status outbox.Status) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.M{
		"status":    status.String(),
		"createdAt": bson.M{"$lt": olderThan.UTC()},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete outbox messages: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *repository) Schedule(ctx context.Context, msg *outbox.Message, processAfter time.Time) (string, error) {
	after := processAfter.UTC()
	msg.ProcessAfter = &after
	return r.Save(ctx, msg)
}
