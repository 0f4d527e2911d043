package deedseed

import (
	"encoding/json"

	"github.com/deedlabs/deedseed/rawdb"
	"github.com/deedlabs/deedseed/schema"
)

// Store mirrors pinned metadata documents and attempt journals into a raw
// KV backend so they stay readable even when the gateway is slow or the
// attempt registry is gone.
type Store struct {
	KVDb rawdb.KeyValueDB
}

func NewBoltStore(boltDirPath string) (*Store, error) {
	db, err := rawdb.NewBoltDB(boltDirPath)
	if err != nil {
		return nil, err
	}
	return &Store{KVDb: db}, nil
}

func NewS3Store(accKey, secretKey, region, bucketPrefix, endpoint string) (*Store, error) {
	db, err := rawdb.NewS3DB(accKey, secretKey, region, bucketPrefix, endpoint)
	if err != nil {
		return nil, err
	}
	return &Store{KVDb: db}, nil
}

func NewMongoStore(uri string) (*Store, error) {
	db, err := rawdb.NewMongoDB(uri)
	if err != nil {
		return nil, err
	}
	return &Store{KVDb: db}, nil
}

func (s *Store) SaveMetadata(cid string, meta schema.MintMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return s.KVDb.Put(schema.MetadataBucket, cid, data)
}

func (s *Store) LoadMetadata(cid string) ([]byte, error) {
	return s.KVDb.Get(schema.MetadataBucket, cid)
}

func (s *Store) ExistMetadata(cid string) bool {
	return s.KVDb.Exist(schema.MetadataBucket, cid)
}

func (s *Store) SaveAttemptJournal(attemptId string, snapshot schema.RespAttempt) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.KVDb.Put(schema.AttemptBucket, attemptId, data)
}

func (s *Store) LoadAttemptJournal(attemptId string) (schema.RespAttempt, error) {
	resp := schema.RespAttempt{}
	data, err := s.KVDb.Get(schema.AttemptBucket, attemptId)
	if err != nil {
		return resp, err
	}
	err = json.Unmarshal(data, &resp)
	return resp, err
}

func (s *Store) AllMetadataCids() ([]string, error) {
	return s.KVDb.GetAllKey(schema.MetadataBucket)
}

func (s *Store) Close() error {
	return s.KVDb.Close()
}
