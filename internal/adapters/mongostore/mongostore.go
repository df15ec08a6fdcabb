// Package mongostore implements ports.Store on MongoDB. Unlike the
// sqlite backend it also carries a change feed: venues running several
// tills point them at one replica set and get push notifications
// through a change stream instead of waiting for the next poll.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"playtab/internal/domain"
	"playtab/internal/logging"
	"playtab/internal/ports"
)

const (
	sessionsCollection = "sessions"
	historyCollection  = "history"
	countersCollection = "counters"
)

// MongoStore implements ports.Store and ports.ChangeFeed.
type MongoStore struct {
	client   *mongo.Client
	database string
}

var (
	_ ports.Store      = (*MongoStore)(nil)
	_ ports.ChangeFeed = (*MongoStore)(nil)
)

// New connects to the replica set at uri and prepares indexes.
func New(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	store := &MongoStore{client: client, database: database}
	if err := store.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// ensureIndexes creates the open-history uniqueness anchor and the
// reporting index.
func (m *MongoStore) ensureIndexes(ctx context.Context) error {
	history := m.collection(historyCollection)

	_, err := history.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"end_reason": string(domain.EndReasonInProgress)}),
		},
		{
			Keys: bson.D{{Key: "session_date", Value: 1}, {Key: "shift", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create history indexes: %w", err)
	}
	return nil
}

func (m *MongoStore) collection(name string) *mongo.Collection {
	return m.client.Database(m.database).Collection(name)
}

// Close disconnects from the server.
func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// nextSessionID reserves a monotonically increasing id. Ids come from a
// counter document, so they are never reused even after deletes.
func (m *MongoStore) nextSessionID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}

	err := m.collection(countersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": sessionsCollection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate session id: %w", err)
	}
	return counter.Seq, nil
}

// ListSessions implements ports.SessionStore.ListSessions
func (m *MongoStore) ListSessions(ctx context.Context) ([]domain.Session, error) {
	cursor, err := m.collection(sessionsCollection).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []sessionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	result := make([]domain.Session, len(docs))
	for i, d := range docs {
		result[i] = docToSession(d)
	}
	return result, nil
}

// GetSession implements ports.SessionStore.GetSession
func (m *MongoStore) GetSession(ctx context.Context, id int64) (*domain.Session, error) {
	var doc sessionDoc
	err := m.collection(sessionsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	s := docToSession(doc)
	return &s, nil
}

// CreateSession implements ports.SessionStore.CreateSession
func (m *MongoStore) CreateSession(ctx context.Context, s domain.Session) (int64, error) {
	id, err := m.nextSessionID(ctx)
	if err != nil {
		return 0, err
	}

	s.ID = id
	if _, err := m.collection(sessionsCollection).InsertOne(ctx, sessionToDoc(s)); err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}
	return id, nil
}

// UpdateSession implements ports.SessionStore.UpdateSession
func (m *MongoStore) UpdateSession(ctx context.Context, s domain.Session) error {
	result, err := m.collection(sessionsCollection).ReplaceOne(ctx,
		bson.M{"_id": s.ID}, sessionToDoc(s))
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// RestoreSession implements ports.SessionStore.RestoreSession
func (m *MongoStore) RestoreSession(ctx context.Context, s domain.Session) error {
	_, err := m.collection(sessionsCollection).ReplaceOne(ctx,
		bson.M{"_id": s.ID}, sessionToDoc(s),
		options.Replace().SetUpsert(true))
	return err
}

// DeleteSession implements ports.SessionStore.DeleteSession
func (m *MongoStore) DeleteSession(ctx context.Context, id int64) error {
	result, err := m.collection(sessionsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// OpenHistory implements ports.HistoryStore.OpenHistory
func (m *MongoStore) OpenHistory(ctx context.Context, rec domain.HistoryRecord) error {
	if _, err := m.collection(historyCollection).InsertOne(ctx, historyToDoc(rec)); err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	return nil
}

// GetOpenHistory implements ports.HistoryStore.GetOpenHistory
func (m *MongoStore) GetOpenHistory(ctx context.Context, sessionID int64) (*domain.HistoryRecord, error) {
	var doc historyDoc
	err := m.collection(historyCollection).FindOne(ctx, bson.M{
		"session_id": sessionID,
		"end_reason": string(domain.EndReasonInProgress),
	}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoOpenHistory
		}
		return nil, err
	}

	rec := docToHistory(doc)
	return &rec, nil
}

// UpdateOpenHistory implements ports.HistoryStore.UpdateOpenHistory
func (m *MongoStore) UpdateOpenHistory(ctx context.Context, rec domain.HistoryRecord) error {
	result, err := m.collection(historyCollection).UpdateOne(ctx,
		bson.M{
			"session_id": rec.SessionID,
			"end_reason": string(domain.EndReasonInProgress),
		},
		bson.M{"$set": bson.M{
			"name":           rec.Name,
			"location":       rec.Location,
			"note":           rec.Note,
			"shift":          int(rec.Shift),
			"is_paid":        rec.IsPaid,
			"payment_method": string(rec.PaymentMethod),
		}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrNoOpenHistory
	}
	return nil
}

// FinalizeHistory implements ports.HistoryStore.FinalizeHistory
func (m *MongoStore) FinalizeHistory(ctx context.Context, sessionID int64, close domain.HistoryClose) (bool, error) {
	result, err := m.collection(historyCollection).UpdateOne(ctx,
		bson.M{
			"session_id": sessionID,
			"end_reason": string(domain.EndReasonInProgress),
		},
		bson.M{"$set": bson.M{
			"end_time":         close.EndTime,
			"duration_minutes": close.DurationMinutes,
			"final_cost":       close.FinalCost.String(),
			"is_paid":          close.IsPaid,
			"payment_method":   string(close.PaymentMethod),
			"end_reason":       string(close.Reason),
		}})
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// ReopenHistory implements ports.HistoryStore.ReopenHistory
func (m *MongoStore) ReopenHistory(ctx context.Context, sessionID int64) error {
	err := m.collection(historyCollection).FindOneAndUpdate(ctx,
		bson.M{
			"session_id": sessionID,
			"end_reason": bson.M{"$ne": string(domain.EndReasonInProgress)},
		},
		bson.M{
			"$set":   bson.M{"end_reason": string(domain.EndReasonInProgress), "final_cost": "0"},
			"$unset": bson.M{"end_time": ""},
		},
		options.FindOneAndUpdate().SetSort(bson.D{{Key: "end_time", Value: -1}}),
	).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrNoOpenHistory
		}
		return err
	}
	return nil
}

// ListHistory implements ports.HistoryStore.ListHistory
func (m *MongoStore) ListHistory(ctx context.Context, businessDay time.Time, shift domain.Shift) ([]domain.HistoryRecord, error) {
	day := time.Date(businessDay.Year(), businessDay.Month(), businessDay.Day(),
		0, 0, 0, 0, businessDay.Location())

	filter := bson.M{"session_date": day}
	if shift != domain.ShiftAll {
		filter["shift"] = int(shift)
	}

	cursor, err := m.collection(historyCollection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []historyDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	result := make([]domain.HistoryRecord, len(docs))
	for i, d := range docs {
		result[i] = docToHistory(d)
	}
	return result, nil
}

// Changes implements ports.ChangeFeed using a database change stream.
// The returned channel closes when the stream ends; the coordinator
// then falls back to poll-only operation.
func (m *MongoStore) Changes(ctx context.Context) (<-chan ports.Change, error) {
	stream, err := m.client.Database(m.database).Watch(ctx, mongo.Pipeline{},
		options.ChangeStream().SetFullDocument(options.Default))
	if err != nil {
		return nil, fmt.Errorf("failed to open change stream: %w", err)
	}

	ch := make(chan ports.Change, 16)
	go func() {
		defer close(ch)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var event struct {
				NS struct {
					Coll string `bson:"coll"`
				} `bson:"ns"`
			}
			if err := stream.Decode(&event); err != nil {
				logging.Logger.Warn("Failed to decode change event", "error", err)
				continue
			}
			if event.NS.Coll == countersCollection {
				continue
			}

			select {
			case ch <- ports.Change{Collection: event.NS.Coll, At: time.Now()}:
			default:
				// Consumer is behind; it debounces into a refetch anyway.
			}
		}

		if err := stream.Err(); err != nil && ctx.Err() == nil {
			logging.Logger.Warn("Change stream ended", "error", err)
		}
	}()

	return ch, nil
}
