package deedseed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/deedlabs/deedseed/schema"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
)

const uploadMaxAttempts = 3

// MetadataPinner is the storage uploader boundary the orchestrator depends
// on. *pinner.Client satisfies it.
type MetadataPinner interface {
	PinJSON(doc interface{}, name string) (*schema.RespPin, error)
	VerifyUri(uri string) error
}

// ChainCaller is the write/wait slice of the chain client.
type ChainCaller interface {
	SubmitMint(ctx context.Context, p SubmitMintParams) (common.Hash, error)
	AwaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// MintAttempt is one run through the mint pipeline:
//
//	preparing -> uploading_metadata -> minting -> confirming -> success|error
//
// Stages run strictly in order; a later stage never starts before the
// prior network call settles. The attempt owns its form, derived metadata,
// uploaded uri, transaction hash and final result. An errored attempt is
// never resumed; "try again" is a brand-new attempt from preparing.
type MintAttempt struct {
	Id        string
	Wallet    common.Address
	Form      schema.DeedForm
	CreatedAt time.Time

	pin   MetadataPinner
	chain ChainCaller

	clock func() time.Time
	sleep func(time.Duration)

	onComplete func(schema.MintResult)
	notifyOnce sync.Once

	mu          sync.RWMutex
	status      schema.MintStatus
	metadata    *schema.MintMetadata
	metadataUri string
	txHash      common.Hash
	result      *schema.MintResult
	flushed     bool
}

func NewMintAttempt(form schema.DeedForm, wallet common.Address, pin MetadataPinner, chain ChainCaller, onComplete func(schema.MintResult)) *MintAttempt {
	return &MintAttempt{
		Id:         uuid.NewString(),
		Wallet:     wallet,
		Form:       form,
		CreatedAt:  time.Now(),
		pin:        pin,
		chain:      chain,
		clock:      time.Now,
		sleep:      time.Sleep,
		onComplete: onComplete,
		status:     schema.StatusPreparing,
	}
}

// Run drives the attempt to a terminal state and returns the single
// MintResult. It is called once, on its own goroutine in service use.
func (a *MintAttempt) Run(ctx context.Context) schema.MintResult {
	a.setStatus(schema.StatusPreparing)
	meta := BuildMetadata(a.Form, a.Wallet.Hex(), a.clock())
	a.mu.Lock()
	a.metadata = &meta
	a.mu.Unlock()

	a.setStatus(schema.StatusUploadingMetadata)
	pinResp, err := a.uploadWithRetry(meta)
	if err != nil {
		return a.fail(err.Error())
	}
	// upload success is trusted; gateway verification is advisory only
	if verr := a.pin.VerifyUri(pinResp.Uri); verr != nil {
		log.Warn("metadata gateway verification failed", "attemptId", a.Id, "uri", pinResp.Uri, "err", verr)
	}
	a.mu.Lock()
	a.metadataUri = pinResp.Uri
	a.mu.Unlock()

	a.setStatus(schema.StatusMinting)
	hash, submitErr := a.chain.SubmitMint(ctx, SubmitMintParams{
		To:               a.Wallet,
		PropertyAddress:  a.Form.PropertyAddress,
		PropertyType:     a.Form.PropertyType.ChainEnum(),
		PropertySize:     a.Form.PropertySize,
		LegalDescription: a.Form.LegalDescription,
		MetadataUri:      pinResp.Uri,
		Value:            EthToWei(a.Form.Price()),
	})
	if hash == (common.Hash{}) {
		if submitErr == nil {
			submitErr = errors.New("mint submission returned no transaction hash")
		}
		return a.fail(submitErr.Error())
	}
	if submitErr != nil {
		// a hash exists, so the transaction may still land; the receipt
		// alone decides the terminal state
		log.Warn("submission error after hash obtained, ignored", "attemptId", a.Id, "txHash", hash.Hex(), "err", submitErr)
	}
	a.mu.Lock()
	a.txHash = hash
	a.mu.Unlock()

	a.setStatus(schema.StatusConfirming)
	receipt, err := a.chain.AwaitReceipt(ctx, hash)
	if err != nil {
		return a.fail(err.Error())
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return a.fail("transaction reverted on-chain, please check your inputs and try again")
	}
	tokenId, ok := ExtractTokenId(receipt)
	if !ok {
		// funds may already have moved; never retried
		return a.fail("failed to extract token id from transaction")
	}
	return a.succeed(tokenId, hash)
}

func (a *MintAttempt) uploadWithRetry(meta schema.MintMetadata) (*schema.RespPin, error) {
	name := fmt.Sprintf("deed-metadata-%d.json", a.clock().UnixMilli())
	for i := 1; i <= uploadMaxAttempts; i++ {
		pinResp, err := a.pin.PinJSON(meta, name)
		if err == nil {
			return pinResp, nil
		}
		log.Warn("pin metadata failed", "attemptId", a.Id, "try", i, "err", err)
		if i == uploadMaxAttempts {
			break
		}
		a.sleep(time.Duration(1<<uint(i)) * time.Second) // 2s, 4s
	}
	return nil, fmt.Errorf("failed to upload metadata to IPFS after %d attempts, please check your internet connection and try again", uploadMaxAttempts)
}

// fail records a terminal error result. First write wins: once a terminal
// result exists, later failures (late submission errors, repeated polls)
// are dropped so a settled outcome is never contradicted or re-reported.
func (a *MintAttempt) fail(msg string) schema.MintResult {
	a.mu.Lock()
	if a.result != nil {
		res := *a.result
		a.mu.Unlock()
		return res
	}
	res := schema.MintResult{Success: false, Error: msg}
	if a.txHash != (common.Hash{}) {
		res.TransactionHash = a.txHash.Hex()
	}
	a.result = &res
	a.status = schema.StatusError
	a.mu.Unlock()

	a.notify(res)
	return res
}

func (a *MintAttempt) succeed(tokenId int64, hash common.Hash) schema.MintResult {
	a.mu.Lock()
	if a.result != nil {
		res := *a.result
		a.mu.Unlock()
		return res
	}
	res := schema.MintResult{
		Success:         true,
		TokenId:         tokenId,
		TransactionHash: hash.Hex(),
	}
	a.result = &res
	a.status = schema.StatusSuccess
	a.mu.Unlock()

	a.notify(res)
	return res
}

func (a *MintAttempt) notify(res schema.MintResult) {
	if a.onComplete == nil {
		return
	}
	a.notifyOnce.Do(func() {
		a.onComplete(res)
	})
}

func (a *MintAttempt) setStatus(st schema.MintStatus) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status.Terminal() {
		return
	}
	a.status = st
}

func (a *MintAttempt) Status() schema.MintStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

func (a *MintAttempt) Metadata() *schema.MintMetadata {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.metadata
}

func (a *MintAttempt) MetadataUri() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.metadataUri
}

func (a *MintAttempt) TxHash() common.Hash {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.txHash
}

func (a *MintAttempt) Result() *schema.MintResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.result == nil {
		return nil
	}
	res := *a.result
	return &res
}

func (a *MintAttempt) Snapshot() schema.RespAttempt {
	a.mu.RLock()
	defer a.mu.RUnlock()
	resp := schema.RespAttempt{
		Id:          a.Id,
		Status:      a.status,
		Label:       a.status.Label(),
		MetadataUri: a.metadataUri,
	}
	if a.txHash != (common.Hash{}) {
		resp.TxHash = a.txHash.Hex()
	}
	if a.result != nil {
		res := *a.result
		resp.Result = &res
	}
	return resp
}
