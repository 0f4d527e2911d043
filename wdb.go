package deedseed

import (
	"os"
	"path"

	"github.com/deedlabs/deedseed/schema"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const sqliteName = "deed.sqlite"

type Wdb struct {
	Db *gorm.DB
}

func NewMysqlDb(dsn string) *Wdb {
	logLevel := logger.Error
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:          logger.Default.LogMode(logLevel),
		CreateBatchSize: 200,
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect mysql db success")
	return &Wdb{Db: db}
}

func NewSqliteDb(dbDir string) *Wdb {
	if err := os.MkdirAll(dbDir, os.ModePerm); err != nil {
		panic(err)
	}
	db, err := gorm.Open(sqlite.Open(path.Join(dbDir, sqliteName)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect sqlite db success")
	return &Wdb{Db: db}
}

func (w *Wdb) Migrate() error {
	return w.Db.AutoMigrate(&schema.DeedRecord{}, &schema.AttemptRecord{})
}

func (w *Wdb) InsertDeed(deed schema.DeedRecord) error {
	return w.Db.Clauses(clause.OnConflict{DoNothing: true}).Create(&deed).Error
}

func (w *Wdb) GetDeedByTokenId(tokenId int64) (res schema.DeedRecord, err error) {
	err = w.Db.Where("token_id = ?", tokenId).First(&res).Error
	return
}

func (w *Wdb) GetDeeds(offset, limit int) ([]schema.DeedRecord, error) {
	res := make([]schema.DeedRecord, 0, limit)
	err := w.Db.Order("token_id desc").Offset(offset).Limit(limit).Find(&res).Error
	return res, err
}

// ExistNormalizedAddress is the local duplicate pre-check; the contract's
// isAddressUsed stays authoritative.
func (w *Wdb) ExistNormalizedAddress(normalized string) (bool, error) {
	var count int64
	err := w.Db.Model(&schema.DeedRecord{}).Where("normalized_address = ?", normalized).Count(&count).Error
	return count > 0, err
}

func (w *Wdb) InsertAttempt(rec schema.AttemptRecord) error {
	return w.Db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error
}

func (w *Wdb) GetAttempt(attemptId string) (res schema.AttemptRecord, err error) {
	err = w.Db.Where("attempt_id = ?", attemptId).First(&res).Error
	return
}

func (w *Wdb) Close() {
	if db, err := w.Db.DB(); err == nil {
		db.Close()
	}
}
