package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps each collection in a MongoDB collection of the same
// name, keyed by _id.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore connects to uri and pings the server before returning.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

// Drop removes every collection of the database. Used by tests.
func (s *MongoStore) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

func (s *MongoStore) Exists(ctx context.Context, collection string, id int64) (bool, error) {
	n, err := s.db.Collection(collection).CountDocuments(ctx, bson.M{IDField: id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("counting %s: %w", collection, err)
	}
	return n > 0, nil
}

func (s *MongoStore) Get(ctx context.Context, collection string, id int64) (Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{IDField: id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", collection, err)
	}
	return fromBSON(raw), nil
}

func (s *MongoStore) Put(ctx context.Context, collection string, id int64, doc Document) error {
	_, err := s.db.Collection(collection).ReplaceOne(ctx,
		bson.M{IDField: id},
		toBSON(withID(doc, id)),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("writing %s: %w", collection, err)
	}
	return nil
}

func (s *MongoStore) Patch(ctx context.Context, collection string, id int64, fields Document) (bool, error) {
	set := toBSON(fields)
	delete(set, IDField)
	if len(set) == 0 {
		return s.Exists(ctx, collection, id)
	}
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{IDField: id}, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("updating %s: %w", collection, err)
	}
	return res.MatchedCount > 0, nil
}

func (s *MongoStore) Remove(ctx context.Context, collection string, id int64) (bool, error) {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{IDField: id})
	if err != nil {
		return false, fmt.Errorf("deleting %s: %w", collection, err)
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoStore) Scan(ctx context.Context, collection string, match Predicate) ([]Document, error) {
	cur, err := s.db.Collection(collection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: IDField, Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var docs []Document
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", collection, err)
		}
		docs = append(docs, fromBSON(raw))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	return filter(docs, match), nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toBSON(doc Document) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		switch t := v.(type) {
		case time.Time:
			v = primitive.NewDateTimeFromTime(t)
		case decimal.Decimal:
			if d, err := primitive.ParseDecimal128(t.String()); err == nil {
				v = d
			}
		}
		out[k] = v
	}
	return out
}

// fromBSON maps driver types back to plain Go values.
func fromBSON(raw bson.M) Document {
	doc := make(Document, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case primitive.DateTime:
			doc[k] = t.Time().UTC()
		case int32:
			doc[k] = int64(t)
		case primitive.Decimal128:
			doc[k] = t.String()
		default:
			doc[k] = v
		}
	}
	return doc
}
