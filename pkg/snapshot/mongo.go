package snapshot

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/groupfit/pkg/errors"
)

// MongoConfig configures a [MongoStore].
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps one document per snapshot, keyed by snapshot ID.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoDocument is the stored form: the snapshot plus the counts that
// listing needs without loading the diagram.
type mongoDocument struct {
	Snapshot   `bson:",inline"`
	NodeCount  int `bson:"node_count"`
	GroupCount int `bson:"group_count"`
}

// NewMongoStore connects to MongoDB, verifies the connection and ensures the
// listing index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "groupfit"
	}
	if cfg.Collection == "" {
		cfg.Collection = "snapshots"
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(5 * time.Second).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, classifyMongo(err, "connect")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, classifyMongo(err, "ping")
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, classifyMongo(err, "create index")
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// Save implements [Store].
func (m *MongoStore) Save(ctx context.Context, s *Snapshot) error {
	if err := validate(s); err != nil {
		return err
	}
	doc := mongoDocument{
		Snapshot:   *s,
		NodeCount:  len(s.Diagram.Nodes),
		GroupCount: s.Diagram.GroupCount(),
	}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": s.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return classifyMongo(err, "save %s", s.ID)
	}
	return nil
}

// Get implements [Store].
func (m *MongoStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	var doc mongoDocument
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, classifyMongo(err, "get %s", id)
	}
	return &doc.Snapshot, nil
}

// List implements [Store].
func (m *MongoStore) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"diagram": 0})
	cur, err := m.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, classifyMongo(err, "list")
	}
	defer cur.Close(ctx)

	out := []Summary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, classifyMongo(err, "list")
	}
	return out, nil
}

// Delete implements [Store].
func (m *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classifyMongo(err, "delete %s", id)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

// Close implements [Store].
func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// Kind implements [Store].
func (m *MongoStore) Kind() string { return "mongo" }

// Server error codes for failed authentication and missing privileges.
const (
	mongoCodeUnauthorized         = 13
	mongoCodeAuthenticationFailed = 18
)

func classifyMongo(err error, format string, args ...any) error {
	var cmdErr mongo.CommandError
	if stderrors.As(err, &cmdErr) &&
		(cmdErr.Code == mongoCodeUnauthorized || cmdErr.Code == mongoCodeAuthenticationFailed) {
		return errors.Wrap(errors.ErrCodeUnauthorized, err, "mongo store: "+format, args...)
	}
	if strings.Contains(strings.ToLower(err.Error()), "authentication failed") {
		return errors.Wrap(errors.ErrCodeUnauthorized, err, "mongo store: "+format, args...)
	}
	if mongo.IsTimeout(err) {
		return errors.Wrap(errors.ErrCodeTimeout, err, "mongo store: "+format, args...)
	}
	return unavailable("mongo", err, format, args...)
}

var _ Store = (*MongoStore)(nil)
