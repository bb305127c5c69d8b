package record

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/multierr"

	"go.hostsense.dev/hostsense/config"
)

const (
	defaultDatabase   = "hostsense"
	defaultCollection = "readings"
)

// readingDocument is the shape of one stored reading. Batches are
// flattened to one document per reading so queries by sensor name do not
// need to unwind arrays.
type readingDocument struct {
	BatchID    string      `bson:"batch_id"`
	RecordedAt time.Time   `bson:"recorded_at"`
	Name       string      `bson:"name"`
	Value      interface{} `bson:"value,omitempty"`
	Unit       string      `bson:"unit,omitempty"`
	Display    string      `bson:"display,omitempty"`
	Error      string      `bson:"error,omitempty"`
}

type mongoSink struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func newMongoSink(ctx context.Context, conf config.MongoSink) (*mongoSink, error) {
	client, err := mongo.NewClient(options.Client().ApplyURI(conf.URI))
	if err != nil {
		return nil, errors.Wrap(err, "cannot create mongo client")
	}
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, multierr.Combine(err, client.Disconnect(ctx))
	}
	database := conf.Database
	if database == "" {
		database = defaultDatabase
	}
	collection := conf.Collection
	if collection == "" {
		collection = defaultCollection
	}
	return &mongoSink{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

func (s *mongoSink) Store(ctx context.Context, batch Batch) error {
	docs := documentsFromBatch(batch)
	if len(docs) == 0 {
		return nil
	}
	_, err := s.coll.InsertMany(ctx, docs)
	return err
}

func documentsFromBatch(batch Batch) []interface{} {
	docs := make([]interface{}, 0, len(batch.Readings))
	for _, reading := range batch.Readings {
		docs = append(docs, readingDocument{
			BatchID:    batch.ID,
			RecordedAt: batch.RecordedAt,
			Name:       reading.Name,
			Value:      reading.Value,
			Unit:       reading.Unit,
			Display:    reading.Display,
			Error:      reading.Error,
		})
	}
	return docs
}

func (s *mongoSink) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
