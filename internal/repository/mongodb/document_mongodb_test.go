package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"ocrdocs/internal/model"
	"ocrdocs/internal/repository"
)

func strPtr(s string) *string { return &s }

func newRepo(mt *mtest.T) *DocumentMongo {
	return NewDocumentMongo(mt.Client, mt.Coll)
}

func ns(mt *mtest.T) string {
	return mt.DB.Name() + "." + mt.Coll.Name()
}

func TestDocumentMongo_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assigns id and date", func(mt *mtest.T) {
		fixed := time.Date(2025, 3, 4, 5, 6, 7, 891_234_567, time.UTC)
		orig := now
		now = func() time.Time { return fixed.Truncate(time.Millisecond) }
		defer func() { now = orig }()

		mt.AddMockResponses(mtest.CreateSuccessResponse())

		doc, err := newRepo(mt).Create(context.Background(), &model.Document{
			Title:   strPtr("receipt"),
			OCRText: strPtr("total: 42"),
		})

		require.NoError(mt, err)
		assert.True(mt, primitive.IsValidObjectID(doc.ID))
		assert.Equal(mt, fixed.Truncate(time.Millisecond), doc.UploadedAt)
		assert.Equal(mt, "receipt", *doc.Title)
		assert.Nil(mt, doc.FileURL)
	})

	mt.Run("ids are unique", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())
		repo := newRepo(mt)

		a, err := repo.Create(context.Background(), &model.Document{})
		require.NoError(mt, err)
		b, err := repo.Create(context.Background(), &model.Document{})
		require.NoError(mt, err)

		assert.NotEqual(mt, a.ID, b.ID)
	})

	mt.Run("write error is a persistence error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		doc, err := newRepo(mt).Create(context.Background(), &model.Document{})

		assert.Nil(mt, doc)
		var pe *repository.PersistenceError
		assert.ErrorAs(mt, err, &pe)
		assert.Contains(mt, err.Error(), "duplicate key error")
	})
}

func TestDocumentMongo_FindByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		date := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "title", Value: "receipt"},
			{Key: "date", Value: date},
			{Key: "ocrText", Value: "total: 42"},
			{Key: "fileUrl", Value: nil},
		}))

		doc, err := newRepo(mt).FindByID(context.Background(), oid.Hex())

		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), doc.ID)
		assert.Equal(mt, "receipt", *doc.Title)
		assert.Equal(mt, "total: 42", *doc.OCRText)
		assert.Nil(mt, doc.FileURL)
		assert.True(mt, date.Equal(doc.UploadedAt))
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		doc, err := newRepo(mt).FindByID(context.Background(), primitive.NewObjectID().Hex())

		assert.ErrorIs(mt, err, repository.ErrNotFound)
		assert.Nil(mt, doc)
	})

	mt.Run("invalid id", func(mt *mtest.T) {
		doc, err := newRepo(mt).FindByID(context.Background(), "12345")

		assert.ErrorIs(mt, err, repository.ErrInvalidID)
		assert.Nil(mt, doc)
	})

	mt.Run("command error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized on docsDB",
		}))

		doc, err := newRepo(mt).FindByID(context.Background(), primitive.NewObjectID().Hex())

		var pe *repository.PersistenceError
		assert.ErrorAs(mt, err, &pe)
		assert.Contains(mt, err.Error(), "not authorized on docsDB")
		assert.Nil(mt, doc)
	})
}

func TestDocumentMongo_ListRecent(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns documents in server order", func(mt *mtest.T) {
		base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		c, b, a := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: c}, {Key: "title", Value: "C"}, {Key: "date", Value: base.Add(2 * time.Second)}, {Key: "fileUrl", Value: nil}},
			bson.D{{Key: "_id", Value: b}, {Key: "title", Value: "B"}, {Key: "date", Value: base.Add(time.Second)}, {Key: "fileUrl", Value: nil}},
			bson.D{{Key: "_id", Value: a}, {Key: "title", Value: "A"}, {Key: "date", Value: base}, {Key: "fileUrl", Value: "/uploads/1-a.png"}},
		))

		items, err := newRepo(mt).ListRecent(context.Background())

		require.NoError(mt, err)
		require.Len(mt, items, 3)
		assert.Equal(mt, []string{c.Hex(), b.Hex(), a.Hex()}, []string{items[0].ID, items[1].ID, items[2].ID})
		assert.Equal(mt, "/uploads/1-a.png", *items[2].FileURL)
	})

	mt.Run("sorts by date then _id descending", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		_, err := newRepo(mt).ListRecent(context.Background())
		require.NoError(mt, err)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "find", started.CommandName)

		sort, ok := started.Command.Lookup("sort").DocumentOK()
		require.True(mt, ok, "find command carries no sort document")
		elems, err := sort.Elements()
		require.NoError(mt, err)
		require.Len(mt, elems, 2)
		assert.Equal(mt, "date", elems[0].Key())
		assert.Equal(mt, int64(-1), elems[0].Value().AsInt64())
		assert.Equal(mt, "_id", elems[1].Key())
		assert.Equal(mt, int64(-1), elems[1].Value().AsInt64())
	})

	mt.Run("empty collection", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		items, err := newRepo(mt).ListRecent(context.Background())

		require.NoError(mt, err)
		assert.NotNil(mt, items)
		assert.Empty(mt, items)
	})

	mt.Run("find error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad sort specification",
		}))

		items, err := newRepo(mt).ListRecent(context.Background())

		var pe *repository.PersistenceError
		assert.ErrorAs(mt, err, &pe)
		assert.Nil(mt, items)
	})
}

func TestDocumentMongo_Ping(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("ok", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		assert.NoError(mt, newRepo(mt).Ping(context.Background()))
	})
}
