package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shaiso/nodehub/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	// nodesCollection — коллекция с документами nodes.
	nodesCollection = "nodes"

	// defaultMongoDatabase — база по умолчанию, если её нет ни в конфиге, ни в DSN.
	defaultMongoDatabase = "test"
)

// MongoRepo — хранилище nodes в MongoDB.
type MongoRepo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoRepo подключается к MongoDB и проверяет соединение.
func NewMongoRepo(ctx context.Context, uri, database string) (*MongoRepo, error) {
	if database == "" {
		database = databaseFromURI(uri)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &MongoRepo{
		client: client,
		coll:   client.Database(database).Collection(nodesCollection),
	}, nil
}

// Find возвращает документы по фильтру в порядке _id.
func (r *MongoRepo) Find(ctx context.Context, filter Filter, opts FindOptions) ([]domain.Node, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if opts.Skip > 0 {
		findOpts.SetSkip(int64(opts.Skip))
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}
	if proj := mongoProjection(opts.Fields); proj != nil {
		findOpts.SetProjection(proj)
	}

	cur, err := r.coll.Find(ctx, mongoFilter(filter), findOpts)
	if err != nil {
		return nil, fmt.Errorf("find nodes: %w", err)
	}
	defer cur.Close(ctx)

	nodes := make([]domain.Node, 0)
	for cur.Next(ctx) {
		node, err := nodeFromRaw(cur.Current)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}
	return nodes, nil
}

// Count возвращает число документов по фильтру.
func (r *MongoRepo) Count(ctx context.Context, filter Filter) (int, error) {
	n, err := r.coll.CountDocuments(ctx, mongoFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("count nodes: %w", err)
	}
	return int(n), nil
}

// GetByID возвращает документ по ObjectID в hex.
func (r *MongoRepo) GetByID(ctx context.Context, id string, fields ...string) (*domain.Node, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	findOpts := options.FindOne()
	if proj := mongoProjection(fields); proj != nil {
		findOpts.SetProjection(proj)
	}

	var raw bson.Raw
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}, findOpts).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get node by id: %w", err)
	}

	node, err := nodeFromRaw(raw)
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// Ping проверяет соединение с MongoDB.
func (r *MongoRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// Close отключается от MongoDB.
func (r *MongoRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// mongoFilter строит фильтр MongoDB. Подстроки экранируются,
// чтобы метасимволы регулярных выражений совпадали буквально.
func mongoFilter(filter Filter) bson.M {
	var conds []bson.M

	if filter.DisplayName != "" {
		conds = append(conds, bson.M{domain.FieldDisplayName: filter.DisplayName})
	}
	if filter.NameContains != "" {
		conds = append(conds, bson.M{domain.FieldDisplayName: containsRegex(filter.NameContains)})
	}
	if filter.CredentialContains != "" {
		conds = append(conds, bson.M{domain.FieldCredentials + ".name": containsRegex(filter.CredentialContains)})
	}

	switch len(conds) {
	case 0:
		return bson.M{}
	case 1:
		return conds[0]
	default:
		and := make(bson.A, len(conds))
		for i, c := range conds {
			and[i] = c
		}
		return bson.M{"$and": and}
	}
}

func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// mongoProjection переводит проекцию в формат MongoDB. _id включается всегда.
func mongoProjection(fields []string) bson.M {
	if len(fields) == 0 {
		return nil
	}
	proj := bson.M{}
	for _, f := range fields {
		if f == domain.FieldID {
			continue
		}
		proj[f] = 1
	}
	if len(proj) == 0 {
		proj["_id"] = 1
	}
	return proj
}

// nodeFromRaw декодирует BSON-документ в Node.
// Документ переводится в relaxed Extended JSON, _id становится строковым id.
func nodeFromRaw(raw bson.Raw) (domain.Node, error) {
	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return domain.Node{}, fmt.Errorf("marshal node document: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Node{}, fmt.Errorf("unmarshal node document: %w", err)
	}

	delete(doc, "_id")
	doc[domain.FieldID] = rawID(raw.Lookup("_id"))

	return domain.NodeFromDocument(doc), nil
}

// rawID приводит _id к строке.
func rawID(v bson.RawValue) string {
	if oid, ok := v.ObjectIDOK(); ok {
		return oid.Hex()
	}
	if s, ok := v.StringValueOK(); ok {
		return s
	}
	return v.String()
}

// databaseFromURI извлекает имя базы из пути URI.
// url.Parse не подходит: в списке хостов MongoDB допустимы запятые.
func databaseFromURI(uri string) string {
	_, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return defaultMongoDatabase
	}
	_, path, ok := strings.Cut(rest, "/")
	if !ok {
		return defaultMongoDatabase
	}
	name, _, _ := strings.Cut(path, "?")
	if name == "" {
		return defaultMongoDatabase
	}
	return name
}
