package rawdb

import (
	"context"
	"time"

	"github.com/deedlabs/deedseed/schema"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	MongoType   = "mongodb"
	mongoDbName = "deedseed"
)

type MongoDB struct {
	client *mongo.Client
}

type mongoDoc struct {
	Key  string `bson:"_id"`
	Data []byte `bson:"data"`
}

func NewMongoDB(uri string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	log.Info("run with mongo store success")
	return &MongoDB{client: client}, nil
}

func (m *MongoDB) coll(bucket string) *mongo.Collection {
	return m.client.Database(mongoDbName).Collection(bucket)
}

func (m *MongoDB) Type() string {
	return MongoType
}

func (m *MongoDB) Put(bucket, key string, value []byte) error {
	opts := options.Replace().SetUpsert(true)
	_, err := m.coll(bucket).ReplaceOne(context.Background(), bson.M{"_id": key}, mongoDoc{Key: key, Data: value}, opts)
	return err
}

func (m *MongoDB) Get(bucket, key string) ([]byte, error) {
	doc := mongoDoc{}
	err := m.coll(bucket).FindOne(context.Background(), bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, schema.ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}

func (m *MongoDB) GetAllKey(bucket string) (keys []string, err error) {
	cur, err := m.coll(bucket).Find(context.Background(), bson.M{})
	if err != nil {
		return
	}
	defer cur.Close(context.Background())
	keys = make([]string, 0)
	for cur.Next(context.Background()) {
		doc := mongoDoc{}
		if err = cur.Decode(&doc); err != nil {
			return
		}
		keys = append(keys, doc.Key)
	}
	return keys, cur.Err()
}

func (m *MongoDB) Delete(bucket, key string) error {
	_, err := m.coll(bucket).DeleteOne(context.Background(), bson.M{"_id": key})
	return err
}

func (m *MongoDB) Exist(bucket, key string) bool {
	_, err := m.Get(bucket, key)
	return err == nil
}

func (m *MongoDB) Close() error {
	return m.client.Disconnect(context.Background())
}
