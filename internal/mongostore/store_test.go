package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/dyluth/coursecat/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func courseDoc(code, description string, units int32, tags ...string) bson.D {
	tagArray := bson.A{}
	for _, tag := range tags {
		tagArray = append(tagArray, tag)
	}
	return bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "code", Value: code},
		{Key: "description", Value: description},
		{Key: "units", Value: units},
		{Key: "tags", Value: tagArray},
	}
}

func TestListYearDocuments(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	oid := primitive.NewObjectID()

	mt.Run("decodes slots ids and timestamps", func(mt *mtest.T) {
		first := bson.D{
			{Key: "_id", Value: oid},
			{Key: "1st Year", Value: bson.A{courseDoc("CS101", "Zebra Systems", 3, "BSIT")}},
			{Key: "2nd Year", Value: bson.A{courseDoc("CS102", "Alpha Logic", 3, "BSIS")}},
			{Key: "3rd Year", Value: bson.A{}},
			{Key: "createdAt", Value: primitive.NewDateTimeFromTime(created)},
			{Key: "updatedAt", Value: primitive.NewDateTimeFromTime(created.Add(time.Hour))},
			{Key: "__v", Value: int32(0)},
		}
		second := bson.D{
			{Key: "_id", Value: "plan-b"},
			{Key: "4th Year", Value: bson.A{courseDoc("CS401", "Capstone", 6, "BSIT", "BSIS")}},
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "mongo-test.courses", mtest.FirstBatch, first, second))

		store := New(mt.Coll, catalog.SchemaOrdinal)
		docs, err := store.ListYearDocuments(context.Background())
		require.NoError(mt, err)
		require.Len(mt, docs, 2)

		assert.Equal(mt, oid.Hex(), docs[0].ID)
		assert.Equal(mt, []catalog.Course{{Code: "CS101", Description: "Zebra Systems", Units: 3, Tags: []string{"BSIT"}}}, docs[0].Years[0])
		assert.Equal(mt, "Alpha Logic", docs[0].Years[1][0].Description)
		assert.Empty(mt, docs[0].Years[2])
		assert.NotNil(mt, docs[0].Years[3])
		assert.Equal(mt, created, docs[0].CreatedAt)
		assert.Equal(mt, created.Add(time.Hour), docs[0].UpdatedAt)

		assert.Equal(mt, "plan-b", docs[1].ID)
		assert.Equal(mt, float64(6), docs[1].Years[3][0].Units)
		assert.True(mt, docs[1].CreatedAt.IsZero())
	})

	mt.Run("camel schema reads camel slots", func(mt *mtest.T) {
		doc := bson.D{
			{Key: "_id", Value: oid},
			{Key: "FirstYear", Value: bson.A{courseDoc("CS101", "Intro", 3, "BSIT")}},
			{Key: "1st Year", Value: bson.A{courseDoc("XX", "ignored", 3)}},
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "mongo-test.courses", mtest.FirstBatch, doc))

		store := New(mt.Coll, catalog.SchemaCamel)
		docs, err := store.ListYearDocuments(context.Background())
		require.NoError(mt, err)
		require.Len(mt, docs, 1)
		require.Len(mt, docs[0].Years[0], 1)
		assert.Equal(mt, "CS101", docs[0].Years[0][0].Code)
	})

	mt.Run("missing tags decode as empty list", func(mt *mtest.T) {
		doc := bson.D{
			{Key: "_id", Value: "untagged"},
			{Key: "1st Year", Value: bson.A{bson.D{
				{Key: "code", Value: "CS100"},
				{Key: "description", Value: "Orientation"},
				{Key: "units", Value: int32(1)},
			}}},
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "mongo-test.courses", mtest.FirstBatch, doc))

		store := New(mt.Coll, catalog.SchemaOrdinal)
		docs, err := store.ListYearDocuments(context.Background())
		require.NoError(mt, err)
		require.Len(mt, docs[0].Years[0], 1)
		assert.NotNil(mt, docs[0].Years[0][0].Tags)
		assert.Empty(mt, docs[0].Years[0][0].Tags)
	})

	mt.Run("empty collection", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "mongo-test.courses", mtest.FirstBatch))

		store := New(mt.Coll, catalog.SchemaOrdinal)
		docs, err := store.ListYearDocuments(context.Background())
		require.NoError(mt, err)
		assert.NotNil(mt, docs)
		assert.Empty(mt, docs)
	})

	mt.Run("malformed slot", func(mt *mtest.T) {
		doc := bson.D{
			{Key: "_id", Value: "broken"},
			{Key: "1st Year", Value: "not an array"},
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "mongo-test.courses", mtest.FirstBatch, doc))

		store := New(mt.Coll, catalog.SchemaOrdinal)
		_, err := store.ListYearDocuments(context.Background())
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), `failed to decode slot "1st Year"`)
	})

	mt.Run("query failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized on mongo-test",
		}))

		store := New(mt.Coll, catalog.SchemaOrdinal)
		_, err := store.ListYearDocuments(context.Background())
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to query documents")
		assert.Contains(mt, err.Error(), "not authorized on mongo-test")
	})
}

func TestPutYearDocument(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("upserts and stamps timestamps", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		store := New(mt.Coll, catalog.SchemaOrdinal)
		fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		store.now = func() time.Time { return fixed }

		doc := &catalog.YearDocument{ID: "plan-a"}
		doc.Years[0] = []catalog.Course{{Code: "CS101", Description: "Intro", Units: 3, Tags: []string{"BSIT"}}}

		require.NoError(mt, store.PutYearDocument(context.Background(), doc))
		assert.Equal(mt, fixed, doc.CreatedAt)
		assert.Equal(mt, fixed, doc.UpdatedAt)
	})

	mt.Run("rejects invalid document", func(mt *mtest.T) {
		store := New(mt.Coll, catalog.SchemaOrdinal)
		err := store.PutYearDocument(context.Background(), &catalog.YearDocument{})
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "invalid document")
	})
}

func TestPing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("ping succeeds", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		store := New(mt.Coll, catalog.SchemaOrdinal)
		assert.NoError(mt, store.Ping(context.Background()))
		assert.NoError(mt, store.Close())
	})
}

func TestDocumentID(t *testing.T) {
	oid := primitive.NewObjectID()
	assert.Equal(t, oid, documentID(oid.Hex()))
	assert.Equal(t, "plan-a", documentID("plan-a"))
}
