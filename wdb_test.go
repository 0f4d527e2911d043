package deedseed

import (
	"testing"
	"time"

	"github.com/deedlabs/deedseed/schema"
	"github.com/stretchr/testify/assert"
)

func testWdb(t *testing.T) *Wdb {
	t.Helper()
	w := NewSqliteDb(t.TempDir())
	assert.NoError(t, w.Migrate())
	t.Cleanup(w.Close)
	return w
}

func sampleDeed(tokenId int64) schema.DeedRecord {
	return schema.DeedRecord{
		TokenId:           tokenId,
		TxHash:            testHash.Hex(),
		Minter:            testWallet.Hex(),
		PropertyType:      0,
		PropertySize:      150,
		PropertyAddress:   "123 Main Street, Springfield",
		NormalizedAddress: schema.NormalizeAddress("123 Main Street, Springfield"),
		LegalDescription:  "Lot 12, Block 7",
		MetadataCid:       "QmTestMeta",
		MetadataUri:       "ipfs://QmTestMeta",
		PriceWei:          "20000000000000000",
	}
}

func TestWdbDeeds(t *testing.T) {
	w := testWdb(t)

	assert.NoError(t, w.InsertDeed(sampleDeed(1)))
	// replayed insert of the same token is swallowed, not duplicated
	assert.NoError(t, w.InsertDeed(sampleDeed(1)))
	assert.NoError(t, w.InsertDeed(sampleDeed(2)))

	deed, err := w.GetDeedByTokenId(1)
	assert.NoError(t, err)
	assert.Equal(t, "123 Main Street, Springfield", deed.PropertyAddress)

	_, err = w.GetDeedByTokenId(404)
	assert.Error(t, err)

	deeds, err := w.GetDeeds(0, 10)
	assert.NoError(t, err)
	assert.Len(t, deeds, 2)

	deeds, err = w.GetDeeds(1, 1)
	assert.NoError(t, err)
	assert.Len(t, deeds, 1)

	used, err := w.ExistNormalizedAddress(schema.NormalizeAddress("123  MAIN   Street, Springfield"))
	assert.NoError(t, err)
	assert.True(t, used)

	used, err = w.ExistNormalizedAddress(schema.NormalizeAddress("456 Oak Avenue"))
	assert.NoError(t, err)
	assert.False(t, used)
}

func TestWdbAttempts(t *testing.T) {
	w := testWdb(t)

	rec := schema.AttemptRecord{
		AttemptId:   "attempt-1",
		Wallet:      testWallet.Hex(),
		Status:      string(schema.StatusSuccess),
		TxHash:      testHash.Hex(),
		TokenId:     42,
		MetadataUri: "ipfs://QmTestMeta",
		FinishedAt:  time.Now(),
	}
	assert.NoError(t, w.InsertAttempt(rec))

	got, err := w.GetAttempt("attempt-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), got.TokenId)
	assert.Equal(t, string(schema.StatusSuccess), got.Status)

	_, err = w.GetAttempt("attempt-2")
	assert.Error(t, err)
}
