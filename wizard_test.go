package deedseed

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/deedlabs/deedseed/schema"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

type fakeReader struct {
	deployed    bool
	active      bool
	remaining   int64
	addressUsed bool
	hasDeed     bool
	reads       int
}

func (r *fakeReader) Deployed() bool { return r.deployed }

func (r *fakeReader) IsMintingActive(ctx context.Context) (bool, error) {
	r.reads++
	return r.active, nil
}

func (r *fakeReader) GetRemainingSupply(ctx context.Context) (*big.Int, error) {
	return big.NewInt(r.remaining), nil
}

func (r *fakeReader) IsAddressUsed(ctx context.Context, propertyAddress string) (bool, error) {
	return r.addressUsed, nil
}

func (r *fakeReader) HasWalletDeed(ctx context.Context, wallet common.Address) (bool, error) {
	return r.hasDeed, nil
}

func openReader() *fakeReader {
	return &fakeReader{deployed: true, active: true, remaining: 100}
}

func fillForm(t *testing.T, w *Wizard, id string) {
	t.Helper()
	pt := schema.House
	size := int64(150)
	addr := "123 Main Street, Springfield"
	legal := "Lot 12, Block 7"
	_, err := w.Update(id, schema.FormPatch{
		PropertyType:     &pt,
		PropertySize:     &size,
		PropertyAddress:  &addr,
		LegalDescription: &legal,
	})
	assert.NoError(t, err)
}

func advanceToReview(t *testing.T, w *Wizard, id string) {
	t.Helper()
	for i := 0; i < 4; i++ {
		_, err := w.Next(context.Background(), id)
		assert.NoError(t, err)
	}
}

func TestWizardSessionLifecycle(t *testing.T) {
	w := NewWizard(openReader())

	_, err := w.NewSession("not-an-address")
	assert.Error(t, err)

	s, err := w.NewSession(testWallet.Hex())
	assert.NoError(t, err)
	assert.Equal(t, schema.StepPropertyType, s.Step())

	got, err := w.Get(s.Id)
	assert.NoError(t, err)
	assert.Equal(t, s.Id, got.Id)

	_, err = w.Get("missing")
	assert.Equal(t, ErrNotFound, err)

	w.Del(s.Id)
	_, err = w.Get(s.Id)
	assert.Equal(t, ErrNotFound, err)
}

func TestWizardStepGating(t *testing.T) {
	w := NewWizard(openReader())
	s, _ := w.NewSession(testWallet.Hex())

	// empty form holds at step 1: type 0 is House, valid, so break size
	pt := schema.Apartment
	_, err := w.Update(s.Id, schema.FormPatch{PropertyType: &pt})
	assert.NoError(t, err)
	_, err = w.Next(context.Background(), s.Id)
	assert.NoError(t, err)
	assert.Equal(t, schema.StepPropertySize, s.Step())

	// size not chosen yet
	_, err = w.Next(context.Background(), s.Id)
	assert.Equal(t, schema.ErrInvalidPropertySize, err)

	size := int64(150) // a house size, not an apartment size
	_, err = w.Update(s.Id, schema.FormPatch{PropertySize: &size})
	assert.NoError(t, err)
	_, err = w.Next(context.Background(), s.Id)
	assert.Equal(t, schema.ErrInvalidPropertySize, err)

	size = 120
	w.Update(s.Id, schema.FormPatch{PropertySize: &size})
	_, err = w.Next(context.Background(), s.Id)
	assert.NoError(t, err)
	assert.Equal(t, schema.StepAddress, s.Step())

	// an empty address holds the session at the address step
	_, err = w.Next(context.Background(), s.Id)
	assert.Equal(t, schema.ErrAddressRequired, err)
	assert.Equal(t, schema.StepAddress, s.Step())

	addr := "too short"
	w.Update(s.Id, schema.FormPatch{PropertyAddress: &addr})
	_, err = w.Next(context.Background(), s.Id)
	assert.Equal(t, schema.ErrAddressTooShort, err)
	assert.Equal(t, schema.StepAddress, s.Step())

	addr = "123 Main Street #401, Springfield"
	w.Update(s.Id, schema.FormPatch{PropertyAddress: &addr})
	_, err = w.Next(context.Background(), s.Id)
	assert.Equal(t, schema.ErrAddressCharset, err)

	addr = "456 Oak Avenue, Metropolis"
	w.Update(s.Id, schema.FormPatch{PropertyAddress: &addr})
	_, err = w.Next(context.Background(), s.Id)
	assert.NoError(t, err)
	assert.Equal(t, schema.StepLegalDescription, s.Step())

	// legal description optional, straight to review
	_, err = w.Next(context.Background(), s.Id)
	assert.NoError(t, err)
	assert.Equal(t, schema.StepReviewAndMint, s.Step())

	// next from review stays put
	_, err = w.Next(context.Background(), s.Id)
	assert.NoError(t, err)
	assert.Equal(t, schema.StepReviewAndMint, s.Step())

	w.Previous(s.Id)
	assert.Equal(t, schema.StepLegalDescription, s.Step())
}

func TestWizardSizeResetOnTypeChange(t *testing.T) {
	w := NewWizard(openReader())
	s, _ := w.NewSession(testWallet.Hex())
	fillForm(t, w, s.Id)
	assert.Equal(t, int64(150), s.Form().PropertySize)

	// 150 is not an apartment size, so the selection resets
	pt := schema.Apartment
	w.Update(s.Id, schema.FormPatch{PropertyType: &pt})
	assert.Equal(t, int64(0), s.Form().PropertySize)

	// 500 is valid for commercial and for nothing else; switching keeps it
	pt = schema.Commercial
	size := int64(500)
	w.Update(s.Id, schema.FormPatch{PropertyType: &pt, PropertySize: &size})
	assert.Equal(t, int64(500), s.Form().PropertySize)
}

func TestWizardEligibility(t *testing.T) {
	reader := openReader()
	w := NewWizard(reader)
	s, _ := w.NewSession(testWallet.Hex())
	fillForm(t, w, s.Id)

	resp, err := w.Eligibility(context.Background(), s.Id)
	assert.NoError(t, err)
	assert.True(t, resp.Eligible)
	assert.Empty(t, resp.Reasons)
	assert.Equal(t, "100", resp.RemainingSupply)

	reader.active = false
	reader.hasDeed = true
	resp, err = w.Eligibility(context.Background(), s.Id)
	assert.NoError(t, err)
	assert.False(t, resp.Eligible)
	assert.Contains(t, resp.Reasons, "minting is currently disabled")
	assert.Contains(t, resp.Reasons, "you can only mint one deed NFT per wallet")
}

func TestWizardEligibilityNotDeployed(t *testing.T) {
	w := NewWizard(&fakeReader{deployed: false})
	s, _ := w.NewSession(testWallet.Hex())

	resp, err := w.Eligibility(context.Background(), s.Id)
	assert.NoError(t, err)
	assert.False(t, resp.Eligible)
	assert.Contains(t, resp.Reasons, "contract is not deployed on this network")
}

func TestWizardReadyForMint(t *testing.T) {
	reader := openReader()
	w := NewWizard(reader)
	s, _ := w.NewSession(testWallet.Hex())
	fillForm(t, w, s.Id)

	// mint is locked until the review step
	_, _, err := w.ReadyForMint(context.Background(), s.Id)
	assert.Equal(t, ErrStepLocked, err)

	advanceToReview(t, w, s.Id)
	form, wallet, err := w.ReadyForMint(context.Background(), s.Id)
	assert.NoError(t, err)
	assert.Equal(t, testWallet, wallet)
	assert.Equal(t, int64(150), form.PropertySize)
}

func TestWizardReadyForMintBlocked(t *testing.T) {
	reader := openReader()
	w := NewWizard(reader)
	s, _ := w.NewSession(testWallet.Hex())
	fillForm(t, w, s.Id)
	advanceToReview(t, w, s.Id)

	reader.addressUsed = true
	// editing the address drops the cached snapshot, forcing a re-check
	addr := "789 Pine Road, Gotham City"
	w.Update(s.Id, schema.FormPatch{PropertyAddress: &addr})

	_, _, err := w.ReadyForMint(context.Background(), s.Id)
	assert.Equal(t, ErrAddressUsed, err)
}

func TestWizardReadyForMintSoldOut(t *testing.T) {
	reader := openReader()
	w := NewWizard(reader)
	s, _ := w.NewSession(testWallet.Hex())
	fillForm(t, w, s.Id)
	advanceToReview(t, w, s.Id)

	// contracts report remaining supply as max minus minted; a negative
	// value still means sold out
	for _, remaining := range []int64{0, -1} {
		reader.remaining = remaining
		addr := "789 Pine Road, Gotham City"
		w.Update(s.Id, schema.FormPatch{PropertyAddress: &addr})
		_, _, err := w.ReadyForMint(context.Background(), s.Id)
		assert.Equal(t, ErrSoldOut, err)
	}
}

func TestWizardEligibilityInvalidatedByEdit(t *testing.T) {
	reader := openReader()
	w := NewWizard(reader)
	s, _ := w.NewSession(testWallet.Hex())
	fillForm(t, w, s.Id)
	advanceToReview(t, w, s.Id)

	before := reader.reads
	addr := "789 Pine Road, Gotham City"
	w.Update(s.Id, schema.FormPatch{PropertyAddress: &addr})
	_, _, err := w.ReadyForMint(context.Background(), s.Id)
	assert.NoError(t, err)
	assert.Greater(t, reader.reads, before)
}

func TestWizardCleanStale(t *testing.T) {
	w := NewWizard(openReader())
	s, _ := w.NewSession(testWallet.Hex())
	fresh, _ := w.NewSession("0x71C7656EC7ab88b098defB751B7401B5f6d8976F")

	s.mu.Lock()
	s.updatedAt = time.Now().Add(-3 * time.Hour)
	s.mu.Unlock()

	assert.Equal(t, 1, w.CleanStale(2*time.Hour))
	_, err := w.Get(s.Id)
	assert.Equal(t, ErrNotFound, err)
	_, err = w.Get(fresh.Id)
	assert.NoError(t, err)
}

func TestWizardSnapshot(t *testing.T) {
	w := NewWizard(openReader())
	s, _ := w.NewSession(testWallet.Hex())
	snap := s.Snapshot()
	assert.Equal(t, schema.StepPropertyType, snap.Step)
	assert.Equal(t, "Select Property Type", snap.Title)
	assert.Empty(t, snap.PriceEth)

	fillForm(t, w, s.Id)
	snap = s.Snapshot()
	assert.Equal(t, "0.02", snap.PriceEth)
}
