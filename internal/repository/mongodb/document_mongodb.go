package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"ocrdocs/internal/model"
	"ocrdocs/internal/repository"
)

// DocumentMongo is a MongoDB implementation of repository.DocumentRepository.
// Records live in a single collection keyed by ObjectID.
type DocumentMongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// documentItem is the stored shape of a document.
type documentItem struct {
	ID      primitive.ObjectID `bson:"_id"`
	Title   *string            `bson:"title,omitempty"`
	Date    time.Time          `bson:"date"`
	OCRText *string            `bson:"ocrText,omitempty"`
	FileURL *string            `bson:"fileUrl"`
}

// NewDocumentMongo creates a repository over the given collection.
func NewDocumentMongo(client *mongo.Client, coll *mongo.Collection) *DocumentMongo {
	return &DocumentMongo{client: client, coll: coll}
}

var _ repository.DocumentRepository = (*DocumentMongo)(nil)

// now is truncated to milliseconds, the resolution of BSON dates, so the
// returned record equals what a later read returns.
var now = func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

// Create assigns a new ObjectID, defaults the date, and inserts the record.
func (r *DocumentMongo) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	item := documentItem{
		ID:      primitive.NewObjectID(),
		Title:   doc.Title,
		Date:    doc.UploadedAt.UTC().Truncate(time.Millisecond),
		OCRText: doc.OCRText,
		FileURL: doc.FileURL,
	}
	if doc.UploadedAt.IsZero() {
		item.Date = now()
	}

	if _, err := r.coll.InsertOne(ctx, item); err != nil {
		return nil, repository.Persistence("insert document", err)
	}
	return item.toModel(), nil
}

// FindByID fetches a single document by its hex ObjectID.
func (r *DocumentMongo) FindByID(ctx context.Context, id string) (*model.Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", repository.ErrInvalidID, id)
	}

	var item documentItem
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, repository.Persistence("find document", err)
	}
	return item.toModel(), nil
}

// ListRecent returns all documents sorted by date descending, _id breaking ties.
func (r *DocumentMongo) ListRecent(ctx context.Context) ([]model.Document, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: -1},
		{Key: "_id", Value: -1},
	})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, repository.Persistence("list documents", err)
	}
	defer cur.Close(ctx)

	items := make([]model.Document, 0)
	for cur.Next(ctx) {
		var item documentItem
		if err := cur.Decode(&item); err != nil {
			return nil, repository.Persistence("list documents", err)
		}
		items = append(items, *item.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, repository.Persistence("list documents", err)
	}
	return items, nil
}

// Ping checks the primary is reachable.
func (r *DocumentMongo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the index backing ListRecent.
func (r *DocumentMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: -1}},
		Options: options.Index().SetName("date_desc"),
	})
	if err != nil {
		return fmt.Errorf("create date index: %w", err)
	}
	return nil
}

func (i documentItem) toModel() *model.Document {
	return &model.Document{
		ID:         i.ID.Hex(),
		Title:      i.Title,
		UploadedAt: i.Date.UTC(),
		OCRText:    i.OCRText,
		FileURL:    i.FileURL,
	}
}
