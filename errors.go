package deedseed

import (
	"errors"
)

var (
	ErrNotExist = errors.New("not_exist_record")
	ErrNotFound = errors.New("not_found")

	ErrNotDeployed    = errors.New("contract_not_deployed")
	ErrNoSigner       = errors.New("no_signer")
	ErrReceiptTimeout = errors.New("receipt_wait_timeout")

	ErrMintingNotActive = errors.New("minting_not_active")
	ErrAddressUsed      = errors.New("address_already_minted")
	ErrWalletHasDeed    = errors.New("wallet_already_has_deed")
	ErrSoldOut          = errors.New("max_supply_reached")

	ErrAttemptRunning = errors.New("attempt_running")
	ErrAttemptExist   = errors.New("attempt_exist")
	ErrNotCancelable  = errors.New("attempt_not_cancelable")
	ErrStepLocked     = errors.New("step_locked")
	ErrNotReady       = errors.New("session_not_ready")
	ErrDataTooBig     = errors.New("pin_data_too_big")
	ErrNullData       = errors.New("null_data")
)
