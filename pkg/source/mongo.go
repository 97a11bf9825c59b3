package source

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/stormgraph/pkg/cache"
	errs "github.com/matzehuels/stormgraph/pkg/errors"
	"github.com/matzehuels/stormgraph/pkg/graph"
)

// MongoOptions configures a [Mongo] source.
type MongoOptions struct {
	URI        string        `toml:"uri"`
	Database   string        `toml:"database"`
	Collection string        `toml:"collection"`
	Limit      int           `toml:"limit"`
	Timeout    time.Duration `toml:"timeout"`
}

// Mongo summarizes a collection of storm event documents with
// BeginLocation and EndLocation fields.
type Mongo struct {
	opts MongoOptions
}

// NewMongo creates a Mongo source. The client connects on each Fetch.
func NewMongo(opts MongoOptions) (*Mongo, error) {
	if opts.URI == "" {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "mongo uri is required")
	}
	if opts.Database == "" {
		opts.Database = DefaultDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultTable
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	opts.Limit = limitOrDefault(opts.Limit)
	return &Mongo{opts: opts}, nil
}

// Name implements Source.
func (m *Mongo) Name() string { return "mongo" }

// CacheKey implements Keyed.
func (m *Mongo) CacheKey() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		Endpoint: m.opts.URI,
		Database: m.opts.Database,
		Query:    fmt.Sprintf("%s limit %d", m.opts.Collection, m.opts.Limit),
	}
}

// Options returns the effective options.
func (m *Mongo) Options() MongoOptions { return m.opts }

// summaryPipeline groups events by (begin, end), drops same-location
// events and caps the number of rows.
func summaryPipeline(limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "$expr", Value: bson.D{{Key: "$ne", Value: bson.A{"$BeginLocation", "$EndLocation"}}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "begin", Value: "$BeginLocation"},
				{Key: "end", Value: "$EndLocation"},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.begin", Value: 1}, {Key: "_id.end", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "begin", Value: "$_id.begin"},
			{Key: "end", Value: "$_id.end"},
			{Key: "count", Value: 1},
		}}},
	}
}

// Fetch implements Source.
func (m *Mongo) Fetch(ctx context.Context) (graph.Graph, error) {
	ctx, cancel := context.WithTimeout(ctx, m.opts.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.opts.URI))
	if err != nil {
		return graph.Graph{}, errs.Wrap(errs.ErrCodeFetchFailed, err, "connect mongo")
	}
	defer func() { _ = client.Disconnect(context.WithoutCancel(ctx)) }()

	coll := client.Database(m.opts.Database).Collection(m.opts.Collection)
	cur, err := coll.Aggregate(ctx, summaryPipeline(m.opts.Limit))
	if err != nil {
		return graph.Graph{}, errs.Wrap(errs.ErrCodeFetchFailed, err, "aggregate %s.%s", m.opts.Database, m.opts.Collection)
	}

	var rows []Row
	if err := cur.All(ctx, &rows); err != nil {
		return graph.Graph{}, errs.Wrap(errs.ErrCodeFetchFailed, err, "read %s.%s", m.opts.Database, m.opts.Collection)
	}
	return BuildGraph(rows), nil
}
