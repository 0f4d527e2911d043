package deedseed

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/deedlabs/deedseed/schema"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
)

type fakePinner struct {
	failTimes int
	calls     int
	verifyErr error
}

func (p *fakePinner) PinJSON(doc interface{}, name string) (*schema.RespPin, error) {
	p.calls++
	if p.calls <= p.failTimes {
		return nil, errors.New("pin gateway 500")
	}
	return &schema.RespPin{ContentId: "QmTestMeta", Uri: "ipfs://QmTestMeta"}, nil
}

func (p *fakePinner) VerifyUri(uri string) error {
	return p.verifyErr
}

type fakeChain struct {
	hash       common.Hash
	submitErr  error
	receipt    *types.Receipt
	receiptErr error
	submitted  []SubmitMintParams
}

func (c *fakeChain) SubmitMint(ctx context.Context, p SubmitMintParams) (common.Hash, error) {
	c.submitted = append(c.submitted, p)
	return c.hash, c.submitErr
}

func (c *fakeChain) AwaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return c.receipt, c.receiptErr
}

func validForm() schema.DeedForm {
	return schema.DeedForm{
		PropertyType:     schema.House,
		PropertySize:     150,
		PropertyAddress:  "123 Main Street, Springfield",
		LegalDescription: "Lot 12, Block 7, Springfield subdivision",
	}
}

func mintReceipt(tokenId int64) *types.Receipt {
	return &types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		Logs: []*types.Log{
			{
				Topics: []common.Hash{
					TransferTopic,
					{}, // from = zero address, the mint signal
					common.HexToHash("0x000000000000000000000000ab5801a7d398351b8be11c439e05c5b3259aec9b"),
					common.BigToHash(big.NewInt(tokenId)),
				},
			},
		},
	}
}

var testWallet = common.HexToAddress("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B")
var testHash = common.HexToHash("0x1111111111111111111111111111111111111111111111111111111111111111")

func newTestAttempt(pin MetadataPinner, chain ChainCaller, onComplete func(schema.MintResult)) *MintAttempt {
	a := NewMintAttempt(validForm(), testWallet, pin, chain, onComplete)
	a.sleep = func(time.Duration) {}
	return a
}

func TestMintAttempt_Success(t *testing.T) {
	pin := &fakePinner{}
	chain := &fakeChain{hash: testHash, receipt: mintReceipt(42)}

	var notified []schema.MintResult
	a := newTestAttempt(pin, chain, func(res schema.MintResult) {
		notified = append(notified, res)
	})
	res := a.Run(context.Background())

	assert.True(t, res.Success)
	assert.Equal(t, int64(42), res.TokenId)
	assert.Equal(t, testHash.Hex(), res.TransactionHash)
	assert.Equal(t, schema.StatusSuccess, a.Status())
	assert.Equal(t, "ipfs://QmTestMeta", a.MetadataUri())
	assert.Len(t, notified, 1)
	assert.Equal(t, res, notified[0])

	// House 150m2 is 0.02 ETH, submitted exactly in wei
	assert.Len(t, chain.submitted, 1)
	p := chain.submitted[0]
	assert.Equal(t, "20000000000000000", p.Value.String())
	assert.Equal(t, testWallet, p.To)
	assert.Equal(t, uint8(0), p.PropertyType)
	assert.Equal(t, int64(150), p.PropertySize)
	assert.Equal(t, "ipfs://QmTestMeta", p.MetadataUri)
}

func TestMintAttempt_UploadRetryThenSuccess(t *testing.T) {
	pin := &fakePinner{failTimes: 2}
	chain := &fakeChain{hash: testHash, receipt: mintReceipt(7)}

	a := NewMintAttempt(validForm(), testWallet, pin, chain, nil)
	slept := []time.Duration{}
	a.sleep = func(d time.Duration) { slept = append(slept, d) }

	res := a.Run(context.Background())
	assert.True(t, res.Success)
	assert.Equal(t, 3, pin.calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, slept)
}

func TestMintAttempt_UploadExhausted(t *testing.T) {
	pin := &fakePinner{failTimes: 3}
	chain := &fakeChain{hash: testHash, receipt: mintReceipt(7)}

	a := newTestAttempt(pin, chain, nil)
	res := a.Run(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, "failed to upload metadata to IPFS after 3 attempts, please check your internet connection and try again", res.Error)
	assert.Equal(t, 3, pin.calls)
	assert.Equal(t, schema.StatusError, a.Status())
	// never reached the chain
	assert.Empty(t, chain.submitted)
	assert.Empty(t, res.TransactionHash)
}

func TestMintAttempt_GatewayVerifyIsAdvisory(t *testing.T) {
	pin := &fakePinner{verifyErr: errors.New("503 from gateway")}
	chain := &fakeChain{hash: testHash, receipt: mintReceipt(9)}

	a := newTestAttempt(pin, chain, nil)
	res := a.Run(context.Background())
	assert.True(t, res.Success)
}

func TestMintAttempt_SubmitFailsNoHash(t *testing.T) {
	pin := &fakePinner{}
	chain := &fakeChain{submitErr: errors.New("insufficient funds for gas")}

	a := newTestAttempt(pin, chain, nil)
	res := a.Run(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, "insufficient funds for gas", res.Error)
	assert.Empty(t, res.TransactionHash)
}

func TestMintAttempt_LateSubmitErrorIgnored(t *testing.T) {
	// a hash exists, so the receipt alone decides the outcome
	pin := &fakePinner{}
	chain := &fakeChain{
		hash:      testHash,
		submitErr: errors.New("websocket closed after broadcast"),
		receipt:   mintReceipt(11),
	}

	a := newTestAttempt(pin, chain, nil)
	res := a.Run(context.Background())

	assert.True(t, res.Success)
	assert.Equal(t, int64(11), res.TokenId)
	assert.Equal(t, testHash.Hex(), res.TransactionHash)
}

func TestMintAttempt_Reverted(t *testing.T) {
	pin := &fakePinner{}
	receipt := mintReceipt(5)
	receipt.Status = types.ReceiptStatusFailed
	chain := &fakeChain{hash: testHash, receipt: receipt}

	a := newTestAttempt(pin, chain, nil)
	res := a.Run(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, "transaction reverted on-chain, please check your inputs and try again", res.Error)
	assert.Zero(t, res.TokenId)
	// the hash is still reported so the user can inspect the revert
	assert.Equal(t, testHash.Hex(), res.TransactionHash)
}

func TestMintAttempt_MissingMintLog(t *testing.T) {
	pin := &fakePinner{}
	chain := &fakeChain{hash: testHash, receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful}}

	a := newTestAttempt(pin, chain, nil)
	res := a.Run(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, "failed to extract token id from transaction", res.Error)
	assert.Equal(t, testHash.Hex(), res.TransactionHash)
}

func TestMintAttempt_ReceiptTimeout(t *testing.T) {
	pin := &fakePinner{}
	chain := &fakeChain{hash: testHash, receiptErr: ErrReceiptTimeout}

	a := newTestAttempt(pin, chain, nil)
	res := a.Run(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, ErrReceiptTimeout.Error(), res.Error)
	assert.Equal(t, testHash.Hex(), res.TransactionHash)
}

func TestMintAttempt_FirstResultWins(t *testing.T) {
	pin := &fakePinner{}
	chain := &fakeChain{hash: testHash, receipt: mintReceipt(3)}

	notified := 0
	a := newTestAttempt(pin, chain, func(schema.MintResult) { notified++ })
	first := a.Run(context.Background())
	assert.True(t, first.Success)

	// a settled outcome is never contradicted
	late := a.fail("late poll error")
	assert.True(t, late.Success)
	assert.Equal(t, first, late)
	assert.Equal(t, schema.StatusSuccess, a.Status())
	assert.Equal(t, 1, notified)
}

func TestMintAttempt_TerminalStatusSticky(t *testing.T) {
	pin := &fakePinner{failTimes: 3}
	chain := &fakeChain{}

	a := newTestAttempt(pin, chain, nil)
	a.Run(context.Background())
	assert.Equal(t, schema.StatusError, a.Status())

	a.setStatus(schema.StatusMinting)
	assert.Equal(t, schema.StatusError, a.Status())
}

func TestMintAttempt_DuplicateErrorNotReReported(t *testing.T) {
	a := newTestAttempt(&fakePinner{}, &fakeChain{}, nil)
	notified := 0
	a.onComplete = func(schema.MintResult) { notified++ }

	first := a.fail("boom")
	assert.Equal(t, first, a.fail("boom"))
	// any later failure reports the original error, not its own
	assert.Equal(t, "boom", a.fail("other").Error)
	assert.Equal(t, 1, notified)
}

func TestMintAttempt_Snapshot(t *testing.T) {
	pin := &fakePinner{}
	chain := &fakeChain{hash: testHash, receipt: mintReceipt(21)}

	a := newTestAttempt(pin, chain, nil)
	snap := a.Snapshot()
	assert.Equal(t, schema.StatusPreparing, snap.Status)
	assert.Empty(t, snap.TxHash)
	assert.Nil(t, snap.Result)

	a.Run(context.Background())
	snap = a.Snapshot()
	assert.Equal(t, schema.StatusSuccess, snap.Status)
	assert.Equal(t, "Deed NFT minted", snap.Label)
	assert.Equal(t, testHash.Hex(), snap.TxHash)
	if assert.NotNil(t, snap.Result) {
		assert.Equal(t, int64(21), snap.Result.TokenId)
	}
}
