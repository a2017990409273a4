package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/dyluth/coursecat/pkg/catalog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	fieldID        = "_id"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
)

// Store reads and writes YearDocuments in a MongoDB collection.
// Slot fields are named by the schema; timestamps follow the createdAt/updatedAt
// convention of document mappers.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	schema catalog.Schema
	now    func() time.Time
}

// Connect dials MongoDB and returns a store bound to database.collection.
// The connection is verified with a ping before returning.
func Connect(ctx context.Context, uri, database, collection string, schema catalog.Schema) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	s := New(client.Database(database).Collection(collection), schema)
	s.client = client

	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDB not accessible: %w", err)
	}

	return s, nil
}

// New wraps an existing collection.
func New(coll *mongo.Collection, schema catalog.Schema) *Store {
	return &Store{
		coll:   coll,
		schema: schema,
		now:    time.Now,
	}
}

// Close disconnects the client if the store owns it. Implements io.Closer.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ping verifies MongoDB connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, readpref.Primary())
}

// ListYearDocuments returns every document in the collection in natural order.
func (s *Store) ListYearDocuments(ctx context.Context) ([]*catalog.YearDocument, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer cur.Close(ctx)

	docs := []*catalog.YearDocument{}
	for cur.Next(ctx) {
		d, err := s.decode(cur.Current)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

// PutYearDocument upserts a document. createdAt is only written on insert.
func (s *Store) PutYearDocument(ctx context.Context, d *catalog.YearDocument) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	d.Touch(s.now())

	set := bson.D{{Key: fieldUpdatedAt, Value: d.UpdatedAt}}
	for i, label := range s.schema.Slots {
		courses := d.Years[i]
		if courses == nil {
			courses = []catalog.Course{}
		}
		set = append(set, bson.E{Key: label, Value: courses})
	}

	update := bson.D{
		{Key: "$set", Value: set},
		{Key: "$setOnInsert", Value: bson.D{{Key: fieldCreatedAt, Value: d.CreatedAt}}},
	}

	_, err := s.coll.UpdateOne(ctx, bson.D{{Key: fieldID, Value: documentID(d.ID)}}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to write document to MongoDB: %w", err)
	}
	return nil
}

// DeleteYearDocument removes a document. Deleting a missing document is not an error.
func (s *Store) DeleteYearDocument(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.D{{Key: fieldID, Value: documentID(id)}}); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// decode maps a raw document onto a YearDocument. Absent or null slots are empty.
func (s *Store) decode(raw bson.Raw) (*catalog.YearDocument, error) {
	d := &catalog.YearDocument{}

	if val, err := raw.LookupErr(fieldID); err == nil {
		d.ID = idString(val)
	}

	for i, label := range s.schema.Slots {
		d.Years[i] = []catalog.Course{}

		// Lookup yields a zero value for absent keys
		val := raw.Lookup(label)
		if val.Type == 0 || val.Type == bsontype.Null {
			continue
		}

		var courses []catalog.Course
		if err := val.Unmarshal(&courses); err != nil {
			return nil, fmt.Errorf("document %s: failed to decode slot %q: %w", d.ID, label, err)
		}
		for j := range courses {
			if courses[j].Tags == nil {
				courses[j].Tags = []string{}
			}
		}
		if courses != nil {
			d.Years[i] = courses
		}
	}

	d.CreatedAt = timeField(raw, fieldCreatedAt)
	d.UpdatedAt = timeField(raw, fieldUpdatedAt)

	return d, nil
}

// documentID stores 24-hex identifiers as ObjectIDs and anything else verbatim.
func documentID(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func idString(val bson.RawValue) string {
	if oid, ok := val.ObjectIDOK(); ok {
		return oid.Hex()
	}
	if s, ok := val.StringValueOK(); ok {
		return s
	}
	return val.String()
}

func timeField(raw bson.Raw, key string) time.Time {
	val, err := raw.LookupErr(key)
	if err != nil {
		return time.Time{}
	}
	t, ok := val.TimeOK()
	if !ok {
		return time.Time{}
	}
	return t.UTC()
}
