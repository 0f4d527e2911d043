package schema

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DeedRecord is the audit row written for every successfully minted deed.
type DeedRecord struct {
	gorm.Model
	TokenId           int64  `gorm:"uniqueIndex"`
	TxHash            string `gorm:"index;size:66"`
	Minter            string `gorm:"index;size:42"`
	PropertyType      uint8
	PropertySize      int64
	PropertyAddress   string `gorm:"size:200"`
	NormalizedAddress string `gorm:"index;size:200"`
	LegalDescription  string `gorm:"size:500"`
	MetadataCid       string `gorm:"size:64"`
	MetadataUri       string `gorm:"size:80"`
	PriceWei          string `gorm:"size:32"`
	Metadata          datatypes.JSON
}

// AttemptRecord is the audit row for a finished mint attempt, success or
// not. The live attempt stays in memory; this is history only.
type AttemptRecord struct {
	gorm.Model
	AttemptId   string `gorm:"uniqueIndex;size:36"`
	Wallet      string `gorm:"index;size:42"`
	Status      string `gorm:"size:24"`
	TxHash      string `gorm:"size:66"`
	TokenId     int64
	MetadataUri string `gorm:"size:80"`
	ErrMsg      string `gorm:"type:text"`
	FinishedAt  time.Time
}
