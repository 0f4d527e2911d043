package schema

// MintStatus is the orchestration stage of a mint attempt. Stages run in
// fixed order; success and error are terminal.
type MintStatus string

const (
	StatusPreparing         MintStatus = "preparing"
	StatusUploadingMetadata MintStatus = "uploading_metadata"
	StatusMinting           MintStatus = "minting"
	StatusConfirming        MintStatus = "confirming"
	StatusSuccess           MintStatus = "success"
	StatusError             MintStatus = "error"
)

func (s MintStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusError
}

var statusLabels = map[MintStatus]string{
	StatusPreparing:         "Preparing minting process...",
	StatusUploadingMetadata: "Uploading metadata to IPFS...",
	StatusMinting:           "Minting your deed NFT...",
	StatusConfirming:        "Confirming transaction...",
	StatusSuccess:           "Deed NFT minted",
	StatusError:             "Minting failed",
}

func (s MintStatus) Label() string {
	return statusLabels[s]
}

// MintResult is the sole output of a mint attempt, reported exactly once.
type MintResult struct {
	Success         bool   `json:"success"`
	TokenId         int64  `json:"tokenId,omitempty"`
	TransactionHash string `json:"transactionHash,omitempty"`
	Error           string `json:"error,omitempty"`
}

// FormStep is the wizard step index; steps advance strictly in order.
type FormStep int

const (
	StepPropertyType FormStep = iota + 1
	StepPropertySize
	StepAddress
	StepLegalDescription
	StepReviewAndMint
)

var stepTitles = map[FormStep]string{
	StepPropertyType:     "Select Property Type",
	StepPropertySize:     "Select Property Size",
	StepAddress:          "Property Address",
	StepLegalDescription: "Legal Description",
	StepReviewAndMint:    "Review & Mint",
}

func (s FormStep) Title() string {
	return stepTitles[s]
}

func (s FormStep) Valid() bool {
	return s >= StepPropertyType && s <= StepReviewAndMint
}
