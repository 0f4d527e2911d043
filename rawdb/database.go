package rawdb

import (
	"github.com/deedlabs/deedseed/common"
)

var log = common.NewLog("deedseed")

// KeyValueDB is the raw mirror of pinned documents and attempt journals.
// Implementations: bolt (default), s3 (4EVERLAND compatible), mongo.
type KeyValueDB interface {
	Put(bucket, key string, value []byte) (err error)

	Get(bucket, key string) (data []byte, err error)

	GetAllKey(bucket string) (keys []string, err error)

	Delete(bucket, key string) (err error)

	Close() (err error)

	Type() string

	Exist(bucket, key string) bool
}
