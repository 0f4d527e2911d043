package deedseed

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/deedlabs/deedseed/schema"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// ChainReader is the read-only slice of the chain client the wizard uses
// for eligibility checks. The contract stays the source of truth; these
// reads only spare the user one avoidable failed transaction.
type ChainReader interface {
	Deployed() bool
	IsMintingActive(ctx context.Context) (bool, error)
	GetRemainingSupply(ctx context.Context) (*big.Int, error)
	IsAddressUsed(ctx context.Context, propertyAddress string) (bool, error)
	HasWalletDeed(ctx context.Context, wallet common.Address) (bool, error)
}

// eligibility is an advisory snapshot of the contract reads, valid only
// for the form state it was taken against.
type eligibility struct {
	resp       schema.RespEligibility
	forAddress string // property address the snapshot was taken for
	takenAt    time.Time
}

// WizardSession is one user's walk through the five form steps.
type WizardSession struct {
	Id     string
	Wallet common.Address

	mu        sync.RWMutex
	step      schema.FormStep
	form      schema.DeedForm
	elig      *eligibility
	updatedAt time.Time
}

// Wizard manages form sessions: local validation gates step advancement,
// contract eligibility gates the final mint.
type Wizard struct {
	sessions map[string]*WizardSession
	chain    ChainReader
	locker   sync.RWMutex
}

func NewWizard(chain ChainReader) *Wizard {
	return &Wizard{
		sessions: make(map[string]*WizardSession),
		chain:    chain,
	}
}

func (w *Wizard) NewSession(wallet string) (*WizardSession, error) {
	if !common.IsHexAddress(wallet) {
		return nil, ErrNotReady
	}
	s := &WizardSession{
		Id:        uuid.NewString(),
		Wallet:    common.HexToAddress(wallet),
		step:      schema.StepPropertyType,
		updatedAt: time.Now(),
	}
	w.locker.Lock()
	w.sessions[s.Id] = s
	w.locker.Unlock()
	return s, nil
}

func (w *Wizard) Get(id string) (*WizardSession, error) {
	w.locker.RLock()
	defer w.locker.RUnlock()
	s, ok := w.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (w *Wizard) Del(id string) {
	w.locker.Lock()
	defer w.locker.Unlock()
	delete(w.sessions, id)
}

// CleanStale drops sessions idle longer than maxAge.
func (w *Wizard) CleanStale(maxAge time.Duration) int {
	w.locker.Lock()
	defer w.locker.Unlock()
	n := 0
	for id, s := range w.sessions {
		s.mu.RLock()
		stale := time.Since(s.updatedAt) > maxAge
		s.mu.RUnlock()
		if stale {
			delete(w.sessions, id)
			n++
		}
	}
	return n
}

// Update applies a partial edit. Any edit to a validated field invalidates
// the cached eligibility snapshot and forces a re-check before mint.
func (w *Wizard) Update(id string, patch schema.FormPatch) (*WizardSession, error) {
	s, err := w.Get(id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if patch.PropertyType != nil {
		s.form.PropertyType = *patch.PropertyType
		if !schema.ValidSize(s.form.PropertyType, s.form.PropertySize) {
			s.form.PropertySize = 0
		}
	}
	if patch.PropertySize != nil {
		s.form.PropertySize = *patch.PropertySize
	}
	if patch.PropertyAddress != nil {
		s.form.PropertyAddress = *patch.PropertyAddress
	}
	if patch.LegalDescription != nil {
		s.form.LegalDescription = *patch.LegalDescription
	}
	s.elig = nil
	s.updatedAt = time.Now()
	return s, nil
}

// Next validates the current step locally and advances. Reaching the
// review step triggers a fresh contract eligibility check.
func (w *Wizard) Next(ctx context.Context, id string) (*WizardSession, error) {
	s, err := w.Get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	step := s.step
	form := s.form
	s.mu.Unlock()

	if err := validateStep(step, form); err != nil {
		return nil, err
	}
	if step >= schema.StepReviewAndMint {
		return s, nil
	}
	next := step + 1
	s.mu.Lock()
	s.step = next
	s.updatedAt = time.Now()
	s.mu.Unlock()

	if next == schema.StepReviewAndMint {
		if _, err := w.Eligibility(ctx, id); err != nil {
			return s, err
		}
	}
	return s, nil
}

func (w *Wizard) Previous(id string) (*WizardSession, error) {
	s, err := w.Get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step > schema.StepPropertyType {
		s.step--
	}
	s.updatedAt = time.Now()
	return s, nil
}

// validateStep applies the local (client-only) rules for one step.
func validateStep(step schema.FormStep, form schema.DeedForm) error {
	switch step {
	case schema.StepPropertyType:
		if !form.PropertyType.Valid() {
			return schema.ErrInvalidPropertyType
		}
	case schema.StepPropertySize:
		if !schema.ValidSize(form.PropertyType, form.PropertySize) {
			return schema.ErrInvalidPropertySize
		}
	case schema.StepAddress:
		if err := schema.ValidateAddress(form.PropertyAddress); err != nil {
			return err
		}
	case schema.StepLegalDescription:
		if len(form.LegalDescription) > schema.LegalMaxLen {
			return schema.ErrLegalTooLong
		}
	case schema.StepReviewAndMint:
		return form.Validate()
	}
	return nil
}

// Eligibility runs the four contract reads for the session's current form
// snapshot and caches the result against that snapshot.
func (w *Wizard) Eligibility(ctx context.Context, id string) (schema.RespEligibility, error) {
	s, err := w.Get(id)
	if err != nil {
		return schema.RespEligibility{}, err
	}
	s.mu.RLock()
	propertyAddress := s.form.PropertyAddress
	wallet := s.Wallet
	s.mu.RUnlock()

	resp := schema.RespEligibility{Deployed: w.chain.Deployed()}
	if !resp.Deployed {
		// blocking and non-retryable at this network
		resp.Reasons = append(resp.Reasons, "contract is not deployed on this network")
		s.setEligibility(resp, propertyAddress)
		return resp, nil
	}

	active, err := w.chain.IsMintingActive(ctx)
	if err != nil {
		return resp, err
	}
	resp.MintingActive = active
	if !active {
		resp.Reasons = append(resp.Reasons, "minting is currently disabled")
	}

	remaining, err := w.chain.GetRemainingSupply(ctx)
	if err != nil {
		return resp, err
	}
	resp.RemainingSupply = remaining.String()
	if remaining.Sign() <= 0 {
		resp.Reasons = append(resp.Reasons, "no more deed NFTs available for minting")
	}

	if propertyAddress != "" {
		used, err := w.chain.IsAddressUsed(ctx, propertyAddress)
		if err != nil {
			return resp, err
		}
		resp.AddressUsed = used
		if used {
			resp.Reasons = append(resp.Reasons, "this property address has already been used to mint an NFT")
		}
	}

	hasDeed, err := w.chain.HasWalletDeed(ctx, wallet)
	if err != nil {
		return resp, err
	}
	resp.WalletHasDeed = hasDeed
	if hasDeed {
		resp.Reasons = append(resp.Reasons, "you can only mint one deed NFT per wallet")
	}

	resp.Eligible = len(resp.Reasons) == 0
	s.setEligibility(resp, propertyAddress)
	return resp, nil
}

func (s *WizardSession) setEligibility(resp schema.RespEligibility, forAddress string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elig = &eligibility{resp: resp, forAddress: forAddress, takenAt: time.Now()}
}

// ReadyForMint returns the immutable form for a new attempt. It requires
// the review step, a fully valid form, and an eligibility snapshot taken
// for the current address; a stale or missing snapshot is refreshed first.
func (w *Wizard) ReadyForMint(ctx context.Context, id string) (schema.DeedForm, common.Address, error) {
	s, err := w.Get(id)
	if err != nil {
		return schema.DeedForm{}, common.Address{}, err
	}
	s.mu.RLock()
	step := s.step
	form := s.form
	wallet := s.Wallet
	elig := s.elig
	s.mu.RUnlock()

	if step != schema.StepReviewAndMint {
		return schema.DeedForm{}, common.Address{}, ErrStepLocked
	}
	if err := form.Validate(); err != nil {
		return schema.DeedForm{}, common.Address{}, err
	}
	if elig == nil || elig.forAddress != form.PropertyAddress {
		resp, err := w.Eligibility(ctx, id)
		if err != nil {
			return schema.DeedForm{}, common.Address{}, err
		}
		elig = &eligibility{resp: resp, forAddress: form.PropertyAddress}
	}
	if !elig.resp.Deployed {
		return schema.DeedForm{}, common.Address{}, ErrNotDeployed
	}
	if !elig.resp.Eligible {
		return schema.DeedForm{}, common.Address{}, eligibilityErr(elig.resp)
	}
	return form, wallet, nil
}

func eligibilityErr(resp schema.RespEligibility) error {
	switch {
	case !resp.MintingActive:
		return ErrMintingNotActive
	case resp.AddressUsed:
		return ErrAddressUsed
	case resp.WalletHasDeed:
		return ErrWalletHasDeed
	}
	if remaining, ok := new(big.Int).SetString(resp.RemainingSupply, 10); ok && remaining.Sign() <= 0 {
		return ErrSoldOut
	}
	return ErrNotReady
}

func (s *WizardSession) Snapshot() schema.RespSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := schema.RespSession{
		Id:     s.Id,
		Wallet: s.Wallet.Hex(),
		Step:   s.step,
		Title:  s.step.Title(),
		Form:   s.form,
	}
	if price, ok := schema.MintingPriceETH(s.form.PropertySize); ok {
		resp.PriceEth = price.String()
	}
	return resp
}

func (s *WizardSession) Step() schema.FormStep {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.step
}

func (s *WizardSession) Form() schema.DeedForm {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.form
}
